package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"fact_checker/internal/domain"
)

type TagStore struct {
	db *sqlx.DB
}

func NewTagStore(db *sqlx.DB) *TagStore {
	return &TagStore{db: db}
}

func (s *TagStore) Create(ctx context.Context, name string) (*domain.Tag, error) {
	var tag domain.Tag
	err := GetExecutor(ctx, s.db).QueryRowxContext(ctx,
		`INSERT INTO tags (name) VALUES ($1) RETURNING id, name`, name).
		Scan(&tag.ID, &tag.Name)
	if err != nil {
		return nil, err
	}
	return &tag, nil
}

func (s *TagStore) Delete(ctx context.Context, id int64) error {
	res, err := GetExecutor(ctx, s.db).ExecContext(ctx, `DELETE FROM tags WHERE id = $1`, id)
	if err != nil {
		return err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("tag %d: %w", id, domain.ErrNotFound)
	}

	return nil
}

func (s *TagStore) List(ctx context.Context) ([]domain.Tag, error) {
	rows, err := GetExecutor(ctx, s.db).QueryxContext(ctx, `SELECT id, name FROM tags ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tags []domain.Tag
	for rows.Next() {
		var t domain.Tag
		if err := rows.Scan(&t.ID, &t.Name); err != nil {
			return nil, err
		}
		tags = append(tags, t)
	}

	return tags, rows.Err()
}

// ExistingIDs returns the subset of ids that are present in the registry.
func (s *TagStore) ExistingIDs(ctx context.Context, ids []int64) ([]int64, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	rows, err := GetExecutor(ctx, s.db).QueryxContext(ctx,
		`SELECT id FROM tags WHERE id = ANY($1)`, pq.Array(ids))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		result = append(result, id)
	}

	return result, rows.Err()
}
