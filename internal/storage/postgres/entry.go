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

// foreignKeyViolation is the postgres error code for a missing referenced row.
const foreignKeyViolation = "23503"

type EntryStore struct {
	db *sqlx.DB
}

func NewEntryStore(db *sqlx.DB) *EntryStore {
	return &EntryStore{db: db}
}

func (s *EntryStore) Create(ctx context.Context, entry *domain.Entry) (int64, error) {
	query := `
		INSERT INTO entries (author_id, title, content, sources, articles, is_truthful)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at`

	err := GetExecutor(ctx, s.db).QueryRowxContext(ctx, query,
		entry.AuthorID,
		entry.Title,
		entry.Content,
		pq.StringArray(entry.Sources),
		pq.StringArray(entry.Articles),
		entry.IsTruthful,
	).Scan(&entry.ID, &entry.CreatedAt)
	if err != nil {
		return 0, err
	}

	return entry.ID, nil
}

func (s *EntryStore) LinkTags(ctx context.Context, entryID int64, tagIDs []int64) error {
	if len(tagIDs) == 0 {
		return nil
	}

	var sb strings.Builder
	sb.WriteString("INSERT INTO entry_tags (entry_id, tag_id) VALUES ")
	valueArgs := make([]interface{}, 0, len(tagIDs)+1)
	valueArgs = append(valueArgs, entryID)

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

const entryColumns = `
	e.id, e.author_id, e.title, e.content, e.sources, e.articles, e.is_truthful, e.created_at,
	(SELECT COUNT(*) FROM upvotes u WHERE u.entry_id = e.id) AS upvotes`

func (s *EntryStore) GetByID(ctx context.Context, id int64) (*domain.Entry, error) {
	query := `SELECT ` + entryColumns + ` FROM entries e WHERE e.id = $1`

	row := GetExecutor(ctx, s.db).QueryRowxContext(ctx, query, id)
	entry, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("entry %d: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}

	if err := s.attachTags(ctx, []*domain.Entry{entry}); err != nil {
		return nil, err
	}

	return entry, nil
}

func (s *EntryStore) List(ctx context.Context) ([]domain.Entry, error) {
	query := `SELECT ` + entryColumns + ` FROM entries e ORDER BY e.created_at DESC, e.id DESC`

	rows, err := GetExecutor(ctx, s.db).QueryxContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []domain.Entry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, *entry)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	refs := make([]*domain.Entry, len(entries))
	for i := range entries {
		refs[i] = &entries[i]
	}
	if err := s.attachTags(ctx, refs); err != nil {
		return nil, err
	}

	return entries, nil
}

// FalseEntryArticles returns the article URLs of every untruthful entry, in
// stable entry order, for the source ranking scan.
func (s *EntryStore) FalseEntryArticles(ctx context.Context) ([]string, error) {
	query := `SELECT articles FROM entries WHERE NOT is_truthful ORDER BY id`

	rows, err := GetExecutor(ctx, s.db).QueryxContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var urls []string
	for rows.Next() {
		var articles pq.StringArray
		if err := rows.Scan(&articles); err != nil {
			return nil, err
		}
		urls = append(urls, articles...)
	}

	return urls, rows.Err()
}

func (s *EntryStore) Upvote(ctx context.Context, entryID, userID int64) error {
	_, err := GetExecutor(ctx, s.db).ExecContext(ctx,
		`INSERT INTO upvotes (user_id, entry_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
		userID, entryID)

	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == foreignKeyViolation {
		return fmt.Errorf("entry %d: %w", entryID, domain.ErrNotFound)
	}

	return err
}

func (s *EntryStore) RemoveUpvote(ctx context.Context, entryID, userID int64) error {
	_, err := GetExecutor(ctx, s.db).ExecContext(ctx,
		`DELETE FROM upvotes WHERE user_id = $1 AND entry_id = $2`, userID, entryID)
	return err
}

func (s *EntryStore) UnlinkTag(ctx context.Context, tagID int64) error {
	_, err := GetExecutor(ctx, s.db).ExecContext(ctx,
		`DELETE FROM entry_tags WHERE tag_id = $1`, tagID)
	return err
}

func scanEntry(row rowScanner) (*domain.Entry, error) {
	var entry domain.Entry
	var sources, articles pq.StringArray

	err := row.Scan(
		&entry.ID,
		&entry.AuthorID,
		&entry.Title,
		&entry.Content,
		&sources,
		&articles,
		&entry.IsTruthful,
		&entry.CreatedAt,
		&entry.Upvotes,
	)
	if err != nil {
		return nil, err
	}

	entry.Sources = sources
	entry.Articles = articles
	return &entry, nil
}

func (s *EntryStore) attachTags(ctx context.Context, entries []*domain.Entry) error {
	if len(entries) == 0 {
		return nil
	}

	ids := make([]int64, len(entries))
	for i, e := range entries {
		ids[i] = e.ID
	}

	query := `
		SELECT et.entry_id, t.id, t.name
		FROM entry_tags et
		INNER JOIN tags t ON t.id = et.tag_id
		WHERE et.entry_id = ANY($1)
		ORDER BY t.id`

	rows, err := GetExecutor(ctx, s.db).QueryxContext(ctx, query, pq.Array(ids))
	if err != nil {
		return err
	}
	defer rows.Close()

	byID := make(map[int64][]domain.Tag)
	for rows.Next() {
		var entryID int64
		var t domain.Tag
		if err := rows.Scan(&entryID, &t.ID, &t.Name); err != nil {
			return err
		}
		byID[entryID] = append(byID[entryID], t)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	for _, e := range entries {
		e.Tags = byID[e.ID]
	}

	return nil
}
