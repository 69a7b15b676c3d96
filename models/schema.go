package models

import (
	"context"
	"errors"
	"fmt"
)

// ErrTableNotFound is returned when introspection finds no columns for the
// requested table.
var ErrTableNotFound = errors.New("table not found")

// ColumnInfo describes one column as reported by information_schema.
type ColumnInfo struct {
	Name     string `json:"name"`
	Type     string `json:"type"`
	Nullable bool   `json:"nullable"`
}

// TableSchema is the introspected shape of one table, used both to build
// generation prompts and to answer the schema endpoint.
type TableSchema struct {
	TableName string       `json:"table_name"`
	Columns   []ColumnInfo `json:"columns"`
}

// PrimaryKey returns the name of the table's primary key column, or "" when
// none is known.
func (d *DAO) PrimaryKey(ctx context.Context, table string) (string, error) {
	var name string
	err := d.db.WithContext(ctx).Raw(`
		SELECT kcu.column_name
		FROM information_schema.table_constraints tc
		JOIN information_schema.key_column_usage kcu
		  ON tc.constraint_name = kcu.constraint_name
		 AND tc.table_schema = kcu.table_schema
		WHERE tc.constraint_type = 'PRIMARY KEY' AND tc.table_name = ?
		LIMIT 1`, table).Scan(&name).Error
	if err != nil {
		return "", fmt.Errorf("can't look up primary key for %q: %w", table, err)
	}
	return name, nil
}

// ListTables returns the names of all user tables in the public schema.
func (d *DAO) ListTables(ctx context.Context) ([]string, error) {
	var tables []string
	err := d.db.WithContext(ctx).Raw(`
		SELECT table_name FROM information_schema.tables
		WHERE table_schema = 'public' AND table_type = 'BASE TABLE'
		ORDER BY table_name`).Scan(&tables).Error
	if err != nil {
		return nil, fmt.Errorf("can't list tables: %w", err)
	}
	return tables, nil
}

// TableSchema introspects one table. An unknown table yields
// ErrTableNotFound.
func (d *DAO) TableSchema(ctx context.Context, table string) (TableSchema, error) {
	rows, err := d.db.WithContext(ctx).Raw(`
		SELECT column_name, data_type, is_nullable
		FROM information_schema.columns
		WHERE table_name = ?
		ORDER BY ordinal_position`, table).Rows()
	if err != nil {
		return TableSchema{}, fmt.Errorf("can't fetch schema for %q: %w", table, err)
	}
	defer rows.Close()

	ts := TableSchema{TableName: table}
	for rows.Next() {
		var col ColumnInfo
		var nullable string
		if err := rows.Scan(&col.Name, &col.Type, &nullable); err != nil {
			return TableSchema{}, fmt.Errorf("can't scan column of %q: %w", table, err)
		}
		col.Nullable = nullable == "YES"
		ts.Columns = append(ts.Columns, col)
	}
	if err := rows.Err(); err != nil {
		return TableSchema{}, fmt.Errorf("can't read columns of %q: %w", table, err)
	}

	if len(ts.Columns) == 0 {
		return TableSchema{}, fmt.Errorf("%w: %q", ErrTableNotFound, table)
	}
	return ts, nil
}

// RunQuery executes a generated statement and scans the full result set
// generically. Column order follows the result, rows follow the cursor.
func (d *DAO) RunQuery(ctx context.Context, query string) ([]string, []map[string]any, error) {
	rows, err := d.db.WithContext(ctx).Raw(query).Rows()
	if err != nil {
		return nil, nil, fmt.Errorf("can't execute query: %w", err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, nil, fmt.Errorf("can't read result columns: %w", err)
	}

	results := []map[string]any{}
	for rows.Next() {
		values := make([]any, len(cols))
		pointers := make([]any, len(cols))
		for i := range values {
			pointers[i] = &values[i]
		}

		if err := rows.Scan(pointers...); err != nil {
			return nil, nil, fmt.Errorf("can't scan result row: %w", err)
		}

		rowMap := map[string]any{}
		for i, name := range cols {
			if b, ok := values[i].([]byte); ok {
				rowMap[name] = string(b)
				continue
			}
			rowMap[name] = values[i]
		}
		results = append(results, rowMap)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("can't read result rows: %w", err)
	}

	return cols, results, nil
}
