package nlsql

import (
	"context"
	"database/sql"
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
)

func TestExecuteQueryMaterializesRows(t *testing.T) {
	db, mock := newSQLMock(t)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT brand, amount FROM t")).
		WillReturnRows(sqlmock.NewRows([]string{"brand", "amount"}).
			AddRow([]byte("Audi"), 1234.5).
			AddRow([]byte("BMW"), 99.0))

	state := ExecuteQuery(context.Background(), db, PipelineState{GeneratedQuery: "SELECT brand, amount FROM t"})
	if state.HasError {
		t.Fatalf("unexpected failure: %q", state.Result.Message)
	}
	if state.Result.Kind != ResultSuccess {
		t.Fatalf("Kind = %d", state.Result.Kind)
	}
	if len(state.Result.Rows) != 2 {
		t.Fatalf("rows = %d", len(state.Result.Rows))
	}
	if got := state.Result.Rows[0]["brand"]; got != "Audi" {
		t.Fatalf("brand = %v (%T), want string Audi", got, got)
	}
	if got := state.Result.Columns; len(got) != 2 || got[0] != "brand" || got[1] != "amount" {
		t.Fatalf("columns = %v", got)
	}
	assertSQLMock(t, mock)
}

func TestExecuteQueryCapturesExecutionError(t *testing.T) {
	db, mock := newSQLMock(t)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT x FROM t")).
		WillReturnError(sql.ErrConnDone)

	state := ExecuteQuery(context.Background(), db, PipelineState{GeneratedQuery: "SELECT x FROM t"})
	if !state.HasError {
		t.Fatal("HasError = false, want true")
	}
	if state.Result.Kind != ResultFailure {
		t.Fatalf("Kind = %d", state.Result.Kind)
	}
	if state.Result.Message == "" {
		t.Fatal("failure message empty")
	}
	assertSQLMock(t, mock)
}

func TestExecuteQueryRejectsWrites(t *testing.T) {
	db, mock := newSQLMock(t)

	state := ExecuteQuery(context.Background(), db, PipelineState{GeneratedQuery: "DELETE FROM t"})
	if !state.HasError {
		t.Fatal("write statement passed the read-only guard")
	}
	assertSQLMock(t, mock)
}

func TestExecuteQueryStateInvariant(t *testing.T) {
	db, mock := newSQLMock(t)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT 1")).
		WillReturnRows(sqlmock.NewRows([]string{"1"}).AddRow(int64(1)))

	state := ExecuteQuery(context.Background(), db, PipelineState{GeneratedQuery: "SELECT 1"})
	if state.HasError != (state.Result.Kind == ResultFailure) {
		t.Fatalf("invariant broken: HasError=%v Kind=%d", state.HasError, state.Result.Kind)
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
