package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"fact_checker/internal/domain"
)

type RequestStore struct {
	db *sqlx.DB
}

func NewRequestStore(db *sqlx.DB) *RequestStore {
	return &RequestStore{db: db}
}

const requestColumns = `id, author_id, title, content, articles, redactor_id, entry_id, created_at, closed_at`

func (s *RequestStore) Create(ctx context.Context, req *domain.Request) (int64, error) {
	query := `
		INSERT INTO requests (author_id, title, content, articles)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`

	err := GetExecutor(ctx, s.db).QueryRowxContext(ctx, query,
		req.AuthorID, req.Title, req.Content, pq.StringArray(req.Articles),
	).Scan(&req.ID, &req.CreatedAt)
	if err != nil {
		return 0, err
	}

	return req.ID, nil
}

func (s *RequestStore) LinkTags(ctx context.Context, requestID int64, tagIDs []int64) error {
	if len(tagIDs) == 0 {
		return nil
	}

	var sb strings.Builder
	sb.WriteString("INSERT INTO request_tags (request_id, tag_id) VALUES ")
	valueArgs := make([]interface{}, 0, len(tagIDs)+1)
	valueArgs = append(valueArgs, requestID)

	for i, tagID := range tagIDs {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString("($1, $")
		sb.WriteString(itoa(i + 2))
		sb.WriteString(")")
		valueArgs = append(valueArgs, tagID)
	}
	sb.WriteString(" ON CONFLICT DO NOTHING")

	_, err := GetExecutor(ctx, s.db).ExecContext(ctx, sb.String(), valueArgs...)
	return err
}

func (s *RequestStore) GetByID(ctx context.Context, id int64) (*domain.Request, error) {
	query := `SELECT ` + requestColumns + ` FROM requests WHERE id = $1`

	row := GetExecutor(ctx, s.db).QueryRowxContext(ctx, query, id)
	req, err := scanRequest(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("request %d: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}

	if err := s.attachTags(ctx, []*domain.Request{req}); err != nil {
		return nil, err
	}

	return req, nil
}

// ListUnassigned returns every open request with no redactor, in stable id
// order.
func (s *RequestStore) ListUnassigned(ctx context.Context) ([]domain.Request, error) {
	query := `SELECT ` + requestColumns + ` FROM requests WHERE redactor_id IS NULL ORDER BY id`
	return s.list(ctx, query)
}

// ListUnassignedMatching returns open requests sharing at least one tag with
// the redactor's assignment set.
func (s *RequestStore) ListUnassignedMatching(ctx context.Context, redactorID int64) ([]domain.Request, error) {
	query := `
		SELECT ` + requestColumns + `
		FROM requests r
		WHERE r.redactor_id IS NULL
		  AND EXISTS (
			SELECT 1
			FROM request_tags rt
			INNER JOIN redactor_tags a ON a.tag_id = rt.tag_id
			WHERE rt.request_id = r.id AND a.redactor_id = $1
		  )
		ORDER BY r.id`
	return s.list(ctx, query, redactorID)
}

// Claim assigns the request to the redactor via compare-and-set. It reports
// whether this call won the assignment; a false return with no error means
// the redactor column was already set.
func (s *RequestStore) Claim(ctx context.Context, id, redactorID int64) (bool, error) {
	res, err := GetExecutor(ctx, s.db).ExecContext(ctx,
		`UPDATE requests SET redactor_id = $1 WHERE id = $2 AND redactor_id IS NULL`,
		redactorID, id)
	if err != nil {
		return false, err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}

	return affected > 0, nil
}

func (s *RequestStore) ClearRedactor(ctx context.Context, id int64) error {
	_, err := GetExecutor(ctx, s.db).ExecContext(ctx,
		`UPDATE requests SET redactor_id = NULL WHERE id = $1`, id)
	return err
}

// AttachEntry closes the request by pointing it at its entry. The entry
// column is compare-and-set so a request can only ever be resolved once.
func (s *RequestStore) AttachEntry(ctx context.Context, id, entryID int64, closedAt time.Time) (bool, error) {
	res, err := GetExecutor(ctx, s.db).ExecContext(ctx,
		`UPDATE requests SET entry_id = $1, closed_at = $2 WHERE id = $3 AND entry_id IS NULL`,
		entryID, closedAt, id)
	if err != nil {
		return false, err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}

	return affected > 0, nil
}

func (s *RequestStore) UnlinkTag(ctx context.Context, tagID int64) error {
	_, err := GetExecutor(ctx, s.db).ExecContext(ctx,
		`DELETE FROM request_tags WHERE tag_id = $1`, tagID)
	return err
}

func (s *RequestStore) list(ctx context.Context, query string, args ...interface{}) ([]domain.Request, error) {
	rows, err := GetExecutor(ctx, s.db).QueryxContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var requests []domain.Request
	for rows.Next() {
		req, err := scanRequest(rows)
		if err != nil {
			return nil, err
		}
		requests = append(requests, *req)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	refs := make([]*domain.Request, len(requests))
	for i := range requests {
		refs[i] = &requests[i]
	}
	if err := s.attachTags(ctx, refs); err != nil {
		return nil, err
	}

	return requests, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanRequest(row rowScanner) (*domain.Request, error) {
	var req domain.Request
	var articles pq.StringArray

	err := row.Scan(
		&req.ID,
		&req.AuthorID,
		&req.Title,
		&req.Content,
		&articles,
		&req.RedactorID,
		&req.EntryID,
		&req.CreatedAt,
		&req.ClosedAt,
	)
	if err != nil {
		return nil, err
	}

	req.Articles = articles
	return &req, nil
}

func (s *RequestStore) attachTags(ctx context.Context, requests []*domain.Request) error {
	if len(requests) == 0 {
		return nil
	}

	ids := make([]int64, len(requests))
	for i, r := range requests {
		ids[i] = r.ID
	}

	query := `
		SELECT rt.request_id, t.id, t.name
		FROM request_tags rt
		INNER JOIN tags t ON t.id = rt.tag_id
		WHERE rt.request_id = ANY($1)
		ORDER BY t.id`

	rows, err := GetExecutor(ctx, s.db).QueryxContext(ctx, query, pq.Array(ids))
	if err != nil {
		return err
	}
	defer rows.Close()

	byID := make(map[int64][]domain.Tag)
	for rows.Next() {
		var requestID int64
		var t domain.Tag
		if err := rows.Scan(&requestID, &t.ID, &t.Name); err != nil {
			return err
		}
		byID[requestID] = append(byID[requestID], t)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	for _, r := range requests {
		r.Tags = byID[r.ID]
	}

	return nil
}
