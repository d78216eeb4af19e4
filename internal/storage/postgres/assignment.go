package postgres

import (
	"context"
	"strings"

	"github.com/jmoiron/sqlx"

	"fact_checker/internal/domain"
)

// AssignmentStore owns the redactor-tag junction rows that drive request
// routing.
type AssignmentStore struct {
	db *sqlx.DB
}

func NewAssignmentStore(db *sqlx.DB) *AssignmentStore {
	return &AssignmentStore{db: db}
}

// UpsertBatch grants the given tags to a redactor. Already-granted pairs are
// left untouched, so reprocessing an accepted application cannot duplicate
// assignments.
func (s *AssignmentStore) UpsertBatch(ctx context.Context, redactorID int64, tagIDs []int64) error {
	if len(tagIDs) == 0 {
		return nil
	}

	var sb strings.Builder
	sb.WriteString("INSERT INTO redactor_tags (redactor_id, tag_id) VALUES ")
	valueArgs := make([]interface{}, 0, len(tagIDs)+1)
	valueArgs = append(valueArgs, redactorID)

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

func (s *AssignmentStore) DeleteByRedactor(ctx context.Context, redactorID int64) error {
	_, err := GetExecutor(ctx, s.db).ExecContext(ctx,
		`DELETE FROM redactor_tags WHERE redactor_id = $1`, redactorID)
	return err
}

func (s *AssignmentStore) DeleteByTag(ctx context.Context, tagID int64) error {
	_, err := GetExecutor(ctx, s.db).ExecContext(ctx,
		`DELETE FROM redactor_tags WHERE tag_id = $1`, tagID)
	return err
}

func (s *AssignmentStore) ListTags(ctx context.Context, redactorID int64) ([]domain.Tag, error) {
	query := `
		SELECT t.id, t.name
		FROM tags t
		INNER JOIN redactor_tags rt ON rt.tag_id = t.id
		WHERE rt.redactor_id = $1
		ORDER BY t.id`

	rows, err := GetExecutor(ctx, s.db).QueryxContext(ctx, query, redactorID)
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

func itoa(i int) string {
	if i < 10 {
		return string(rune('0' + i))
	}
	return itoa(i/10) + string(rune('0'+i%10))
}
