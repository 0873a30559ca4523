package schema

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

// Table is one introspected table with its columns in definition order.
type Table struct {
	Name    string   `json:"name"`
	Columns []string `json:"columns"`
}

// Snapshot is the live structure of a garage database, fetched fresh per
// request. It is never cached or mutated by the pipeline.
type Snapshot []Table

func (s Snapshot) IsEmpty() bool {
	return len(s) == 0
}

// Render produces the schema listing used in generation prompts.
func (s Snapshot) Render() string {
	if len(s) == 0 {
		return "(schema unavailable)"
	}
	var b strings.Builder
	for _, table := range s {
		b.WriteString(table.Name)
		b.WriteString(": ")
		b.WriteString(strings.Join(table.Columns, ", "))
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

// Introspect reads table and column names from the session's database via
// SHOW TABLES and DESC. On failure it returns an empty snapshot together with
// the error; callers log and continue with a schema-less prompt.
func Introspect(ctx context.Context, db *sql.DB) (Snapshot, error) {
	tableRows, err := db.QueryContext(ctx, "SHOW TABLES")
	if err != nil {
		return Snapshot{}, fmt.Errorf("list tables: %w", err)
	}
	defer func() { _ = tableRows.Close() }()

	names := make([]string, 0)
	for tableRows.Next() {
		var name string
		if err := tableRows.Scan(&name); err != nil {
			return Snapshot{}, fmt.Errorf("scan table name: %w", err)
		}
		names = append(names, name)
	}
	if err := tableRows.Err(); err != nil {
		return Snapshot{}, fmt.Errorf("iterate tables: %w", err)
	}

	snapshot := make(Snapshot, 0, len(names))
	for _, name := range names {
		columns, err := describeTable(ctx, db, name)
		if err != nil {
			return Snapshot{}, err
		}
		snapshot = append(snapshot, Table{Name: name, Columns: columns})
	}
	return snapshot, nil
}

func describeTable(ctx context.Context, db *sql.DB, table string) ([]string, error) {
	rows, err := db.QueryContext(ctx, "DESC "+quoteIdent(table))
	if err != nil {
		return nil, fmt.Errorf("describe table %q: %w", table, err)
	}
	defer func() { _ = rows.Close() }()

	resultColumns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("describe columns for %q: %w", table, err)
	}

	columns := make([]string, 0)
	for rows.Next() {
		values := make([]any, len(resultColumns))
		scanTargets := make([]any, len(resultColumns))
		for i := range values {
			scanTargets[i] = &values[i]
		}
		if err := rows.Scan(scanTargets...); err != nil {
			return nil, fmt.Errorf("scan column row for %q: %w", table, err)
		}
		// Field name is the first DESC column.
		switch field := values[0].(type) {
		case string:
			columns = append(columns, field)
		case []byte:
			columns = append(columns, string(field))
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate columns for %q: %w", table, err)
	}
	return columns, nil
}

func quoteIdent(value string) string {
	return "`" + strings.ReplaceAll(value, "`", "``") + "`"
}
