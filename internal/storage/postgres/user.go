package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"fact_checker/internal/domain"
)

type UserStore struct {
	db *sqlx.DB
}

func NewUserStore(db *sqlx.DB) *UserStore {
	return &UserStore{db: db}
}

func (s *UserStore) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	query := `SELECT id, username, role, is_staff, created_at FROM users WHERE id = $1`

	var u domain.User
	err := GetExecutor(ctx, s.db).QueryRowxContext(ctx, query, id).
		Scan(&u.ID, &u.Username, &u.Role, &u.Staff, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("user %d: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}

	return &u, nil
}

func (s *UserStore) UpdateRole(ctx context.Context, id int64, role domain.Role) error {
	res, err := GetExecutor(ctx, s.db).ExecContext(ctx,
		`UPDATE users SET role = $1 WHERE id = $2`, role, id)
	if err != nil {
		return err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("user %d: %w", id, domain.ErrNotFound)
	}

	return nil
}
