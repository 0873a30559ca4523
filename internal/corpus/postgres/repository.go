package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/rampgpt/rampgpt/internal/corpus"
)

type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) HealthCheck(ctx context.Context) error {
	if err := r.db.PingContext(ctx); err != nil {
		return fmt.Errorf("ping corpus db: %w", err)
	}
	return nil
}

func (r *Repository) AddExample(ctx context.Context, in corpus.AddExampleInput) (corpus.Example, error) {
	question := strings.TrimSpace(in.Question)
	sqlQuery := strings.TrimSpace(in.SQLQuery)
	if question == "" {
		return corpus.Example{}, fmt.Errorf("add example: question is required")
	}
	if sqlQuery == "" {
		return corpus.Example{}, fmt.Errorf("add example: sql_query is required")
	}

	query := `
INSERT INTO sql_examples (question, sql_query)
VALUES ($1, $2)
RETURNING id, created_at`

	example := corpus.Example{Question: question, SQLQuery: sqlQuery}
	if err := r.db.QueryRowContext(ctx, query, question, sqlQuery).Scan(&example.ID, &example.CreatedAt); err != nil {
		return corpus.Example{}, fmt.Errorf("add example: %w", err)
	}
	return example, nil
}

func (r *Repository) GetExample(ctx context.Context, id int64) (corpus.Example, error) {
	query := `
SELECT id, question, sql_query, created_at
FROM sql_examples
WHERE id = $1`

	var example corpus.Example
	if err := r.db.QueryRowContext(ctx, query, id).Scan(
		&example.ID,
		&example.Question,
		&example.SQLQuery,
		&example.CreatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return corpus.Example{}, corpus.ErrNotFound
		}
		return corpus.Example{}, fmt.Errorf("get example: %w", err)
	}
	return example, nil
}

func (r *Repository) ListExamples(ctx context.Context) ([]corpus.Example, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT id, question, sql_query, created_at
FROM sql_examples
ORDER BY id ASC`)
	if err != nil {
		return nil, fmt.Errorf("list examples: %w", err)
	}
	defer func() { _ = rows.Close() }()

	examples := make([]corpus.Example, 0)
	for rows.Next() {
		var example corpus.Example
		if err := rows.Scan(&example.ID, &example.Question, &example.SQLQuery, &example.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan example row: %w", err)
		}
		examples = append(examples, example)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate example rows: %w", err)
	}
	return examples, nil
}
