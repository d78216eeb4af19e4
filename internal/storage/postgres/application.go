package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"fact_checker/internal/domain"
)

type ApplicationStore struct {
	db *sqlx.DB
}

func NewApplicationStore(db *sqlx.DB) *ApplicationStore {
	return &ApplicationStore{db: db}
}

func (s *ApplicationStore) Create(ctx context.Context, app *domain.Application) (int64, error) {
	query := `
		INSERT INTO applications (author_id, title, content)
		VALUES ($1, $2, $3)
		RETURNING id, created_at`

	err := GetExecutor(ctx, s.db).QueryRowxContext(ctx, query,
		app.AuthorID, app.Title, app.Content,
	).Scan(&app.ID, &app.CreatedAt)
	if err != nil {
		return 0, err
	}

	return app.ID, nil
}

func (s *ApplicationStore) LinkTags(ctx context.Context, applicationID int64, tagIDs []int64) error {
	if len(tagIDs) == 0 {
		return nil
	}

	var sb strings.Builder
	sb.WriteString("INSERT INTO application_tags (application_id, tag_id) VALUES ")
	valueArgs := make([]interface{}, 0, len(tagIDs)+1)
	valueArgs = append(valueArgs, applicationID)

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

func (s *ApplicationStore) AddDocument(ctx context.Context, doc *domain.ApplicationDocument) error {
	query := `
		INSERT INTO application_documents (application_id, storage_key, content_type)
		VALUES ($1, $2, $3)
		RETURNING id, uploaded_at`

	return GetExecutor(ctx, s.db).QueryRowxContext(ctx, query,
		doc.ApplicationID, doc.StorageKey, doc.ContentType,
	).Scan(&doc.ID, &doc.UploadedAt)
}

func (s *ApplicationStore) GetByID(ctx context.Context, id int64) (*domain.Application, error) {
	query := `
		SELECT id, author_id, title, content, accepted, created_at
		FROM applications
		WHERE id = $1`

	var app domain.Application
	err := GetExecutor(ctx, s.db).QueryRowxContext(ctx, query, id).
		Scan(&app.ID, &app.AuthorID, &app.Title, &app.Content, &app.Accepted, &app.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("application %d: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}

	if app.RequestedTagIDs, err = s.requestedTagIDs(ctx, app.ID); err != nil {
		return nil, err
	}

	return &app, nil
}

// LatestPending returns the author's most recent unaccepted application, or
// nil when there is none.
func (s *ApplicationStore) LatestPending(ctx context.Context, authorID int64) (*domain.Application, error) {
	query := `
		SELECT id, author_id, title, content, accepted, created_at
		FROM applications
		WHERE author_id = $1 AND NOT accepted
		ORDER BY created_at DESC, id DESC
		LIMIT 1`

	var app domain.Application
	err := GetExecutor(ctx, s.db).QueryRowxContext(ctx, query, authorID).
		Scan(&app.ID, &app.AuthorID, &app.Title, &app.Content, &app.Accepted, &app.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	if app.RequestedTagIDs, err = s.requestedTagIDs(ctx, app.ID); err != nil {
		return nil, err
	}

	return &app, nil
}

func (s *ApplicationStore) MarkAccepted(ctx context.Context, id int64) error {
	_, err := GetExecutor(ctx, s.db).ExecContext(ctx,
		`UPDATE applications SET accepted = TRUE WHERE id = $1`, id)
	return err
}

// DeleteAcceptedByAuthor removes accepted applications (with their tag links
// and documents) when a redactor reverts to standard. Pending applications
// are left untouched.
func (s *ApplicationStore) DeleteAcceptedByAuthor(ctx context.Context, authorID int64) error {
	exec := GetExecutor(ctx, s.db)

	ids, err := s.acceptedIDs(ctx, authorID)
	if err != nil {
		return err
	}
	if len(ids) == 0 {
		return nil
	}

	if _, err := exec.ExecContext(ctx,
		`DELETE FROM application_tags WHERE application_id = ANY($1)`, pq.Array(ids)); err != nil {
		return err
	}
	if _, err := exec.ExecContext(ctx,
		`DELETE FROM application_documents WHERE application_id = ANY($1)`, pq.Array(ids)); err != nil {
		return err
	}

	_, err = exec.ExecContext(ctx,
		`DELETE FROM applications WHERE id = ANY($1)`, pq.Array(ids))
	return err
}

func (s *ApplicationStore) ListPending(ctx context.Context) ([]domain.Application, error) {
	query := `
		SELECT id, author_id, title, content, accepted, created_at
		FROM applications
		WHERE NOT accepted
		ORDER BY created_at, id`

	rows, err := GetExecutor(ctx, s.db).QueryxContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var apps []domain.Application
	for rows.Next() {
		var app domain.Application
		if err := rows.Scan(&app.ID, &app.AuthorID, &app.Title, &app.Content, &app.Accepted, &app.CreatedAt); err != nil {
			return nil, err
		}
		apps = append(apps, app)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range apps {
		if apps[i].RequestedTagIDs, err = s.requestedTagIDs(ctx, apps[i].ID); err != nil {
			return nil, err
		}
	}

	return apps, nil
}

func (s *ApplicationStore) Documents(ctx context.Context, applicationID int64) ([]domain.ApplicationDocument, error) {
	query := `
		SELECT id, application_id, storage_key, content_type, uploaded_at
		FROM application_documents
		WHERE application_id = $1
		ORDER BY id`

	rows, err := GetExecutor(ctx, s.db).QueryxContext(ctx, query, applicationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var docs []domain.ApplicationDocument
	for rows.Next() {
		var d domain.ApplicationDocument
		if err := rows.Scan(&d.ID, &d.ApplicationID, &d.StorageKey, &d.ContentType, &d.UploadedAt); err != nil {
			return nil, err
		}
		docs = append(docs, d)
	}

	return docs, rows.Err()
}

func (s *ApplicationStore) UnlinkTag(ctx context.Context, tagID int64) error {
	_, err := GetExecutor(ctx, s.db).ExecContext(ctx,
		`DELETE FROM application_tags WHERE tag_id = $1`, tagID)
	return err
}

func (s *ApplicationStore) requestedTagIDs(ctx context.Context, applicationID int64) ([]int64, error) {
	rows, err := GetExecutor(ctx, s.db).QueryxContext(ctx,
		`SELECT tag_id FROM application_tags WHERE application_id = $1 ORDER BY tag_id`, applicationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}

	return ids, rows.Err()
}

func (s *ApplicationStore) acceptedIDs(ctx context.Context, authorID int64) ([]int64, error) {
	rows, err := GetExecutor(ctx, s.db).QueryxContext(ctx,
		`SELECT id FROM applications WHERE author_id = $1 AND accepted`, authorID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}

	return ids, rows.Err()
}
