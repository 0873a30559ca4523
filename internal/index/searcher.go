package index

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

// Retriever returns the indexed examples most similar to a question,
// flattened to "question | sql" lines.
type Retriever interface {
	RetrieveSimilar(ctx context.Context, question string, k int) ([]string, error)
}

// Searcher serves nearest-neighbour lookups from a built index file.
type Searcher struct {
	db       *sql.DB
	embedder Embedder
}

func NewSearcher(path string, embedder Embedder) (*Searcher, error) {
	// mode=ro only applies in file: URI form.
	db, err := sql.Open("sqlite3", "file:"+path+"?mode=ro")
	if err != nil {
		return nil, fmt.Errorf("open index file: %w", err)
	}
	return &Searcher{db: db, embedder: embedder}, nil
}

func (s *Searcher) Close() error {
	return s.db.Close()
}

func (s *Searcher) HealthCheck(ctx context.Context) error {
	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM examples`).Scan(&count); err != nil {
		return fmt.Errorf("ping index: %w", err)
	}
	return nil
}

func (s *Searcher) RetrieveSimilar(ctx context.Context, question string, k int) ([]string, error) {
	if k <= 0 {
		k = 3
	}

	vectors, err := s.embedder.Embed(ctx, []string{question})
	if err != nil {
		return nil, fmt.Errorf("embed question: %w", err)
	}
	if len(vectors) != 1 {
		return nil, fmt.Errorf("expected one question vector, got %d", len(vectors))
	}
	blob, err := encodeVector(vectors[0])
	if err != nil {
		return nil, err
	}

	// L2 distance, lower is more similar.
	rows, err := s.db.QueryContext(ctx, `
SELECT e.question, e.sql_query, vec_distance_L2(v.embedding, ?) AS distance
FROM vec_examples v
JOIN examples e ON e.id = v.example_id
ORDER BY distance
LIMIT ?`, blob, k)
	if err != nil {
		return nil, fmt.Errorf("search index: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var entries []string
	for rows.Next() {
		var entry Entry
		var distance float64
		if err := rows.Scan(&entry.Question, &entry.SQLQuery, &distance); err != nil {
			return nil, fmt.Errorf("scan index row: %w", err)
		}
		entries = append(entries, entry.Flatten())
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate index rows: %w", err)
	}
	return entries, nil
}
