package index

import (
	"context"
	"database/sql"
	"fmt"
	"os"

	_ "github.com/mattn/go-sqlite3"

	"github.com/rampgpt/rampgpt/internal/corpus"
)

// Builder writes a self-contained index file from the example corpus.
// The output is a regular sqlite database with one vec0 virtual table,
// rebuilt from scratch on every run.
type Builder struct {
	embedder Embedder
}

func NewBuilder(embedder Embedder) *Builder {
	return &Builder{embedder: embedder}
}

func (b *Builder) Build(ctx context.Context, path string, examples []corpus.Example) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove stale index file: %w", err)
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return fmt.Errorf("open index file: %w", err)
	}
	defer func() { _ = db.Close() }()

	if err := createIndexSchema(ctx, db, b.embedder.Dimensions()); err != nil {
		return err
	}
	if len(examples) == 0 {
		return nil
	}

	texts := make([]string, len(examples))
	for i, example := range examples {
		texts[i] = Entry{Question: example.Question, SQLQuery: example.SQLQuery}.Flatten()
	}
	vectors, err := b.embedder.Embed(ctx, texts)
	if err != nil {
		return fmt.Errorf("embed corpus questions: %w", err)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin index tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	exampleStmt, err := tx.PrepareContext(ctx, `INSERT INTO examples (id, question, sql_query) VALUES (?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare example insert: %w", err)
	}
	defer func() { _ = exampleStmt.Close() }()

	vecStmt, err := tx.PrepareContext(ctx, `INSERT INTO vec_examples (example_id, embedding) VALUES (?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare vector insert: %w", err)
	}
	defer func() { _ = vecStmt.Close() }()

	for i, example := range examples {
		blob, err := encodeVector(vectors[i])
		if err != nil {
			return err
		}
		if _, err := exampleStmt.ExecContext(ctx, example.ID, example.Question, example.SQLQuery); err != nil {
			return fmt.Errorf("insert example %d: %w", example.ID, err)
		}
		if _, err := vecStmt.ExecContext(ctx, example.ID, blob); err != nil {
			return fmt.Errorf("insert vector for example %d: %w", example.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit index tx: %w", err)
	}
	return nil
}

func createIndexSchema(ctx context.Context, db *sql.DB, dimensions int) error {
	if _, err := db.ExecContext(ctx, `
CREATE TABLE IF NOT EXISTS examples (
	id INTEGER PRIMARY KEY,
	question TEXT NOT NULL,
	sql_query TEXT NOT NULL
)`); err != nil {
		return fmt.Errorf("create examples table: %w", err)
	}

	vecTable := fmt.Sprintf(`
CREATE VIRTUAL TABLE IF NOT EXISTS vec_examples USING vec0(
	example_id integer primary key,
	embedding float[%d]
)`, dimensions)
	if _, err := db.ExecContext(ctx, vecTable); err != nil {
		return fmt.Errorf("create vec_examples table: %w", err)
	}
	return nil
}
