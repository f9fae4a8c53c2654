package db

import (
	"fmt"
	"strconv"
	"strings"
)

// emptyInFragment is syntactically valid SQL that matches zero rows for
// a column of any scalar type, so an empty value list never taints the
// caller's query.
const emptyInFragment = "(SELECT NULL WHERE 1=0)"

/*
BuildInClause returns a parenthesized fragment of exactly len(values)
positional `?` placeholders, for use after IN with a parallel argument
list:

	ids := []int{4, 8, 15}
	rows, err := conn.FetchAll(ctx,
		"SELECT * FROM project WHERE id IN "+db.BuildInClause(ids),
		16, 23, 42,
	)

An empty value list yields a fragment that matches zero rows. Only the
length of values is consulted; binding the values is the caller's job.
*/
func BuildInClause[T any](values []T) string {
	if len(values) == 0 {
		return emptyInFragment
	}
	var b strings.Builder
	b.WriteString("(")
	for i := range values {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString("?")
	}
	b.WriteString(")")
	return b.String()
}

// BuildInClauseNumbered is BuildInClause for the $N placeholder dialect:
// n placeholders starting at $start.
func BuildInClauseNumbered[T any](values []T, start int) string {
	if len(values) == 0 {
		return emptyInFragment
	}
	var b strings.Builder
	b.WriteString("(")
	for i := range values {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString("$")
		b.WriteString(strconv.Itoa(start + i))
	}
	b.WriteString(")")
	return b.String()
}

// EscapeLikePattern escapes s for use as a literal substring inside a
// LIKE pattern, using backslash as the escape character.
func EscapeLikePattern(s string) string {
	return EscapeLikePatternWith(s, '\\')
}

/*
EscapeLikePatternWith prefixes every literal `%` and `_` in s with the
escape character, so that the result matches s literally inside a LIKE
pattern. No other character is altered. The caller appends its own
wildcards and declares `ESCAPE` where the engine requires it:

	needle := db.EscapeLikePattern(userInput) + "%"
	rows, err := conn.FetchAll(ctx,
		`SELECT * FROM project WHERE slug LIKE ? ESCAPE '\'`, needle)
*/
func EscapeLikePatternWith(s string, escape rune) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r == '%' || r == '_' {
			b.WriteRune(escape)
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Placeholder selects the parameter-marker dialect a QueryBuilder
// emits: `?` for sqlite-style drivers, `$N` for postgres.
type Placeholder int

const (
	PlaceholderQuestion Placeholder = iota
	PlaceholderDollar
)

// QueryBuilder incrementally assembles a query and its argument list.
// Occurrences of `$?` in added chunks become placeholders in the
// builder's dialect.
type QueryBuilder struct {
	placeholder Placeholder
	sql         strings.Builder
	args        []interface{}
}

func NewQueryBuilder(placeholder Placeholder) *QueryBuilder {
	return &QueryBuilder{placeholder: placeholder}
}

/*
Add appends the given SQL and arguments to the query. Any occurrence
of `$?` is replaced with the next placeholder:

	foo $? bar $? baz $?
	foo ? bar ? baz ?        (PlaceholderQuestion)
	foo $1 bar $2 baz $3     (PlaceholderDollar)
*/
func (qb *QueryBuilder) Add(sql string, args ...interface{}) {
	numPlaceholders := strings.Count(sql, "$?")
	if numPlaceholders != len(args) {
		panic(fmt.Errorf("cannot add chunk to query; expected %d arguments but got %d", numPlaceholders, len(args)))
	}

	for _, arg := range args {
		sql = strings.Replace(sql, "$?", qb.nextPlaceholder(), 1)
		qb.args = append(qb.args, arg)
	}

	qb.sql.WriteString(sql)
	qb.sql.WriteString("\n")
}

// In appends `column IN (...)` with one placeholder per value, binding
// the values. An empty value list appends a fragment matching zero
// rows and binds nothing.
func (qb *QueryBuilder) In(column string, values []interface{}) {
	qb.sql.WriteString(column)
	qb.sql.WriteString(" IN ")
	if len(values) == 0 {
		qb.sql.WriteString(emptyInFragment)
	} else {
		qb.sql.WriteString("(")
		for i, v := range values {
			if i > 0 {
				qb.sql.WriteString(", ")
			}
			qb.sql.WriteString(qb.nextPlaceholder())
			qb.args = append(qb.args, v)
		}
		qb.sql.WriteString(")")
	}
	qb.sql.WriteString("\n")
}

func (qb *QueryBuilder) nextPlaceholder() string {
	if qb.placeholder == PlaceholderDollar {
		return "$" + strconv.Itoa(len(qb.args)+1)
	}
	return "?"
}

func (qb *QueryBuilder) String() string {
	return qb.sql.String()
}

func (qb *QueryBuilder) Args() []interface{} {
	return qb.args
}
