package db

import (
	"context"
	"database/sql"
)

// Row is an ordered-by-query mapping from column name to scalar value.
// Its shape is dictated entirely by the query.
type Row map[string]any

// Column describes one result column as reported by the driver. The
// Has* flags record whether the driver supplied the attribute at all.
type Column struct {
	Name         string
	DatabaseType string

	Nullable    bool
	HasNullable bool

	Length    int64
	HasLength bool

	Precision      int64
	Scale          int64
	HasDecimalSize bool
}

// ResultSet carries rows together with their column descriptors,
// returned by value so metadata never travels through out-parameters.
type ResultSet struct {
	Columns []Column
	Rows    []Row
}

/*
FetchAll executes the query and returns every result row as a
name-to-value mapping. Zero matching rows yield an empty, non-nil
slice, never an error.
*/
func (c *Conn) FetchAll(ctx context.Context, query string, args ...any) ([]Row, error) {
	rows, err := c.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []Row{}
	names, err := rows.Columns()
	if err != nil {
		return nil, statementError(query, err)
	}
	for rows.Next() {
		row, err := scanRow(rows, names)
		if err != nil {
			return nil, statementError(query, err)
		}
		result = append(result, row)
	}
	if err := rows.Err(); err != nil {
		return nil, statementError(query, err)
	}
	return result, nil
}

// FetchAllWithColumns is FetchAll plus the driver-reported column
// descriptors for the result set.
func (c *Conn) FetchAllWithColumns(ctx context.Context, query string, args ...any) (*ResultSet, error) {
	rows, err := c.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	types, err := rows.ColumnTypes()
	if err != nil {
		return nil, statementError(query, err)
	}
	columns := make([]Column, len(types))
	names := make([]string, len(types))
	for i, ct := range types {
		col := Column{
			Name:         ct.Name(),
			DatabaseType: ct.DatabaseTypeName(),
		}
		col.Nullable, col.HasNullable = ct.Nullable()
		col.Length, col.HasLength = ct.Length()
		col.Precision, col.Scale, col.HasDecimalSize = ct.DecimalSize()
		columns[i] = col
		names[i] = ct.Name()
	}

	result := &ResultSet{Columns: columns, Rows: []Row{}}
	for rows.Next() {
		row, err := scanRow(rows, names)
		if err != nil {
			return nil, statementError(query, err)
		}
		result.Rows = append(result.Rows, row)
	}
	if err := rows.Err(); err != nil {
		return nil, statementError(query, err)
	}
	return result, nil
}

/*
FetchRow executes the query and returns the first result row. Zero
matching rows yield an empty, non-nil mapping - deliberately not nil,
so callers can index it without a presence check. This differs from
FetchScalar, whose absence sentinel is the ok bool.
*/
func (c *Conn) FetchRow(ctx context.Context, query string, args ...any) (Row, error) {
	rows, err := c.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, statementError(query, err)
		}
		return Row{}, nil
	}
	names, err := rows.Columns()
	if err != nil {
		return nil, statementError(query, err)
	}
	row, err := scanRow(rows, names)
	if err != nil {
		return nil, statementError(query, err)
	}
	return row, nil
}

// FetchColumn executes the query and returns the first column's value
// from every result row. Zero matching rows yield an empty, non-nil
// slice.
func (c *Conn) FetchColumn(ctx context.Context, query string, args ...any) ([]any, error) {
	rows, err := c.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	names, err := rows.Columns()
	if err != nil {
		return nil, statementError(query, err)
	}
	result := []any{}
	for rows.Next() {
		values, err := scanValues(rows, len(names))
		if err != nil {
			return nil, statementError(query, err)
		}
		result = append(result, values[0])
	}
	if err := rows.Err(); err != nil {
		return nil, statementError(query, err)
	}
	return result, nil
}

// FetchScalar executes the query and returns the first column of the
// first result row. ok is false when no row matched; that is the "no
// match" sentinel, not an error.
func (c *Conn) FetchScalar(ctx context.Context, query string, args ...any) (value any, ok bool, err error) {
	rows, err := c.Query(ctx, query, args...)
	if err != nil {
		return nil, false, err
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, false, statementError(query, err)
		}
		return nil, false, nil
	}
	names, err := rows.Columns()
	if err != nil {
		return nil, false, statementError(query, err)
	}
	values, err := scanValues(rows, len(names))
	if err != nil {
		return nil, false, statementError(query, err)
	}
	return values[0], true, nil
}

func scanRow(rows *sql.Rows, names []string) (Row, error) {
	values, err := scanValues(rows, len(names))
	if err != nil {
		return nil, err
	}
	row := make(Row, len(names))
	for i, name := range names {
		row[name] = values[i]
	}
	return row, nil
}

func scanValues(rows *sql.Rows, n int) ([]any, error) {
	values := make([]any, n)
	dests := make([]any, n)
	for i := range values {
		dests[i] = &values[i]
	}
	if err := rows.Scan(dests...); err != nil {
		return nil, err
	}
	return values, nil
}
