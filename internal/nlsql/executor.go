package nlsql

import (
	"context"
	"database/sql"
	"strings"
	"time"
)

// ExecuteQuery runs the sanitized query on the per-request session and
// materializes all rows. Execution errors are captured into the state,
// never returned; the orchestrator always receives a terminal state.
func ExecuteQuery(ctx context.Context, db *sql.DB, state PipelineState) PipelineState {
	query := strings.TrimSpace(state.GeneratedQuery)
	if !isReadOnly(query) {
		return state.withFailure("Database error: only SELECT statements are allowed")
	}

	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return state.withFailure("Database error: " + err.Error())
	}
	defer func() { _ = rows.Close() }()

	columns, err := rows.Columns()
	if err != nil {
		return state.withFailure("Database error: " + err.Error())
	}

	var out []Row
	for rows.Next() {
		values := make([]any, len(columns))
		pointers := make([]any, len(columns))
		for i := range values {
			pointers[i] = &values[i]
		}
		if err := rows.Scan(pointers...); err != nil {
			return state.withFailure("Database error: " + err.Error())
		}

		row := make(Row, len(columns))
		for i, column := range columns {
			row[column] = normalizeValue(values[i])
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return state.withFailure("Database error: " + err.Error())
	}

	return state.withSuccess(out, columns)
}

func isReadOnly(query string) bool {
	lower := strings.ToLower(query)
	return strings.HasPrefix(lower, "select") || strings.HasPrefix(lower, "with")
}

// normalizeValue flattens driver types into plain scalars: []byte
// columns (MySQL strings and decimals) become strings, times stay as
// time.Time, everything else passes through.
func normalizeValue(value any) any {
	switch v := value.(type) {
	case []byte:
		return string(v)
	case time.Time:
		return v
	default:
		return value
	}
}
