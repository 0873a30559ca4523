// Package corpus defines the append-only store of curated
// (question, sql) example pairs used to ground SQL generation.
package corpus

import (
	"context"
	"errors"
	"time"
)

var ErrNotFound = errors.New("corpus: example not found")

// Example is one curated question with its reference SQL answer.
type Example struct {
	ID        int64     `json:"id"`
	Question  string    `json:"question"`
	SQLQuery  string    `json:"sql_query"`
	CreatedAt time.Time `json:"created_at"`
}

type AddExampleInput struct {
	Question string
	SQLQuery string
}

// Store is the persistence surface for the example corpus.
type Store interface {
	AddExample(ctx context.Context, in AddExampleInput) (Example, error)
	ListExamples(ctx context.Context) ([]Example, error)
	GetExample(ctx context.Context, id int64) (Example, error)
	HealthCheck(ctx context.Context) error
}
