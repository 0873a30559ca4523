package postgres

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"

	"github.com/rampgpt/rampgpt/internal/corpus"
)

func TestAddExample(t *testing.T) {
	db, mock := newSQLMock(t)
	repo := NewRepository(db)
	now := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta(`
INSERT INTO sql_examples (question, sql_query)
VALUES ($1, $2)
RETURNING id, created_at`)).
		WithArgs("How many vehicles were serviced?", "SELECT COUNT(*) FROM vehicle_svc;").
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(int64(7), now))

	example, err := repo.AddExample(context.Background(), corpus.AddExampleInput{
		Question: "  How many vehicles were serviced?  ",
		SQLQuery: "SELECT COUNT(*) FROM vehicle_svc;",
	})
	if err != nil {
		t.Fatalf("AddExample() error = %v", err)
	}
	if example.ID != 7 {
		t.Fatalf("ID = %d", example.ID)
	}
	if example.Question != "How many vehicles were serviced?" {
		t.Fatalf("Question = %q", example.Question)
	}
	if !example.CreatedAt.Equal(now) {
		t.Fatalf("CreatedAt = %v, want %v", example.CreatedAt, now)
	}
	assertSQLMock(t, mock)
}

func TestAddExampleRejectsBlankQuestion(t *testing.T) {
	db, mock := newSQLMock(t)
	repo := NewRepository(db)

	if _, err := repo.AddExample(context.Background(), corpus.AddExampleInput{
		Question: "   ",
		SQLQuery: "SELECT 1;",
	}); err == nil {
		t.Fatal("expected error for blank question")
	}
	assertSQLMock(t, mock)
}

func TestGetExampleNotFound(t *testing.T) {
	db, mock := newSQLMock(t)
	repo := NewRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta(`
SELECT id, question, sql_query, created_at
FROM sql_examples
WHERE id = $1`)).
		WithArgs(int64(42)).
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetExample(context.Background(), 42)
	if !errors.Is(err, corpus.ErrNotFound) {
		t.Fatalf("error = %v, want corpus.ErrNotFound", err)
	}
	assertSQLMock(t, mock)
}

func TestListExamples(t *testing.T) {
	db, mock := newSQLMock(t)
	repo := NewRepository(db)
	now := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta(`
SELECT id, question, sql_query, created_at
FROM sql_examples
ORDER BY id ASC`)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "question", "sql_query", "created_at"}).
			AddRow(int64(1), "total revenue?", "SELECT SUM(vsd.amount) FROM vehicle_svc_dtl vsd;", now).
			AddRow(int64(2), "how many services?", "SELECT COUNT(*) FROM vehicle_svc;", now))

	examples, err := repo.ListExamples(context.Background())
	if err != nil {
		t.Fatalf("ListExamples() error = %v", err)
	}
	if len(examples) != 2 {
		t.Fatalf("len = %d, want 2", len(examples))
	}
	if examples[0].ID != 1 || examples[1].ID != 2 {
		t.Fatalf("unexpected ids: %d, %d", examples[0].ID, examples[1].ID)
	}
	assertSQLMock(t, mock)
}

func newSQLMock(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New() error = %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db, mock
}

func assertSQLMock(t *testing.T, mock sqlmock.Sqlmock) {
	t.Helper()
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet sql expectations: %v", err)
	}
}
