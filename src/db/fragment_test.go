package db

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildInClause(t *testing.T) {
	assert.Equal(t, "(?)", BuildInClause([]int{1}))
	assert.Equal(t, "(?, ?)", BuildInClause([]string{"a", "b"}))
	assert.Equal(t, "(?, ?, ?)", BuildInClause([]int{1, 2, 3}))
	assert.Equal(t, "(SELECT NULL WHERE 1=0)", BuildInClause([]int{}))
	assert.Equal(t, "(SELECT NULL WHERE 1=0)", BuildInClause[int](nil))
}

func TestBuildInClauseNumbered(t *testing.T) {
	assert.Equal(t, "($1)", BuildInClauseNumbered([]int{1}, 1))
	assert.Equal(t, "($3, $4)", BuildInClauseNumbered([]string{"a", "b"}, 3))
	assert.Equal(t, "(SELECT NULL WHERE 1=0)", BuildInClauseNumbered([]int{}, 1))
}

func TestEscapeLikePattern(t *testing.T) {
	assert.Equal(t, `\%`, EscapeLikePattern(`%`))
	assert.Equal(t, `\_`, EscapeLikePattern(`_`))
	assert.Equal(t, `100\%`, EscapeLikePattern(`100%`))
	assert.Equal(t, `a\%b\_c`, EscapeLikePattern(`a%b_c`))
	assert.Equal(t, `no wildcards`, EscapeLikePattern(`no wildcards`))
	assert.Equal(t, ``, EscapeLikePattern(``))

	// Only % and _ are altered; the escape character itself passes
	// through untouched.
	assert.Equal(t, `a\b`, EscapeLikePattern(`a\b`))

	assert.Equal(t, `100!%`, EscapeLikePatternWith(`100%`, '!'))
	assert.Equal(t, `über!_schrift`, EscapeLikePatternWith(`über_schrift`, '!'))
}

func TestQueryBuilder(t *testing.T) {
	t.Run("question dialect", func(t *testing.T) {
		var qb QueryBuilder
		qb.Add("SELECT * FROM test")
		qb.Add("WHERE age > $?", 21)
		qb.Add("AND name <> $?", "Eve")
		assert.Equal(t, "SELECT * FROM test\nWHERE age > ?\nAND name <> ?\n", qb.String())
		assert.Equal(t, []interface{}{21, "Eve"}, qb.Args())
	})

	t.Run("dollar dialect", func(t *testing.T) {
		qb := NewQueryBuilder(PlaceholderDollar)
		qb.Add("SELECT * FROM test")
		qb.Add("WHERE age > $? AND age < $?", 21, 65)
		assert.Equal(t, "SELECT * FROM test\nWHERE age > $1 AND age < $2\n", qb.String())
		assert.Equal(t, []interface{}{21, 65}, qb.Args())
	})

	t.Run("in clause", func(t *testing.T) {
		qb := NewQueryBuilder(PlaceholderDollar)
		qb.Add("SELECT * FROM test WHERE")
		qb.In("name", []interface{}{"Alice", "Bob"})
		assert.Equal(t, "SELECT * FROM test WHERE\nname IN ($1, $2)\n", qb.String())
		assert.Equal(t, []interface{}{"Alice", "Bob"}, qb.Args())
	})

	t.Run("empty in clause", func(t *testing.T) {
		qb := NewQueryBuilder(PlaceholderQuestion)
		qb.In("id", nil)
		assert.Equal(t, "id IN (SELECT NULL WHERE 1=0)\n", qb.String())
		assert.Empty(t, qb.Args())
	})

	t.Run("argument count mismatch panics", func(t *testing.T) {
		qb := NewQueryBuilder(PlaceholderQuestion)
		assert.Panics(t, func() {
			qb.Add("WHERE a = $? AND b = $?", 1)
		})
	})
}
