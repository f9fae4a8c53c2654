package db

import (
	"context"
	"fmt"
	"reflect"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFieldPathsByColumn(t *testing.T) {
	type CustomInt int
	type Base struct {
		ID CustomInt `db:"id"`
	}
	type Person struct {
		Base
		Name     string `db:"name"`
		Age      *int   `db:"age"`
		Nickname string // no tag: matched as "nickname"
		Ignored  string `db:"-"`

		unexported int
	}
	_ = Person{unexported: 0}

	paths := fieldPathsByColumn(reflect.TypeOf(Person{}))
	assert.Equal(t, fieldPath{0, 0}, paths["id"])
	assert.Equal(t, fieldPath{1}, paths["name"])
	assert.Equal(t, fieldPath{2}, paths["age"])
	assert.Equal(t, fieldPath{3}, paths["nickname"])
	_, hasIgnored := paths["ignored"]
	assert.False(t, hasIgnored)
	_, hasUnexported := paths["unexported"]
	assert.False(t, hasUnexported)
}

func TestFollowFieldPath(t *testing.T) {
	type Inner struct {
		N int `db:"n"`
	}
	type Outer struct {
		Inner
		P *int `db:"p"`
	}

	var out Outer
	val := followFieldPath(reflect.ValueOf(&out), fieldPath{0, 0})
	val.SetInt(12)
	assert.Equal(t, 12, out.N)

	val = followFieldPath(reflect.ValueOf(&out), fieldPath{1})
	val.SetInt(34)
	require.NotNil(t, out.P)
	assert.Equal(t, 34, *out.P)
}

func TestFetchAs(t *testing.T) {
	type Person struct {
		ID   int    `db:"id"`
		Name string `db:"name"`
		Age  int    `db:"age"`
	}

	ctx := context.Background()
	conn := newTestConn(t)
	seedTestTable(t, conn)

	t.Run("all", func(t *testing.T) {
		people, err := FetchAllAs[Person](ctx, conn, "SELECT * FROM test ORDER BY id")
		require.NoError(t, err)
		require.Len(t, people, 2)
		assert.Equal(t, Person{ID: 1, Name: "Alice", Age: 30}, *people[0])
		assert.Equal(t, Person{ID: 2, Name: "Bob", Age: 40}, *people[1])
	})

	t.Run("one", func(t *testing.T) {
		bob, ok, err := FetchOneAs[Person](ctx, conn, "SELECT * FROM test WHERE name = "+ph(conn, 1), "Bob")
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, Person{ID: 2, Name: "Bob", Age: 40}, *bob)
	})

	t.Run("one with no match reports ok false", func(t *testing.T) {
		p, ok, err := FetchOneAs[Person](ctx, conn, "SELECT * FROM test WHERE name = "+ph(conn, 1), "Charlie")
		require.NoError(t, err)
		assert.False(t, ok)
		assert.Nil(t, p)
	})

	t.Run("all with no match is an empty sequence", func(t *testing.T) {
		people, err := FetchAllAs[Person](ctx, conn, "SELECT * FROM test WHERE age > "+ph(conn, 1), 100)
		require.NoError(t, err)
		assert.NotNil(t, people)
		assert.Len(t, people, 0)
	})

	t.Run("extra columns are ignored", func(t *testing.T) {
		type NameOnly struct {
			Name string `db:"name"`
		}
		one, ok, err := FetchOneAs[NameOnly](ctx, conn, "SELECT * FROM test WHERE id = "+ph(conn, 1), 1)
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, "Alice", one.Name)
	})
}

func TestFetchAsNullColumns(t *testing.T) {
	type Record struct {
		ID   int     `db:"id"`
		Note *string `db:"note"`
		Hits int     `db:"hits"`
	}

	ctx := context.Background()
	conn := newTestConn(t)

	_, err := conn.Exec(ctx, "DROP TABLE IF EXISTS records")
	require.NoError(t, err)
	_, err = conn.Exec(ctx, "CREATE TABLE records (id INTEGER PRIMARY KEY, note TEXT, hits INTEGER)")
	require.NoError(t, err)
	insert := fmt.Sprintf("INSERT INTO records (id, note, hits) VALUES (%s, %s, %s)", ph(conn, 1), ph(conn, 2), ph(conn, 3))
	_, err = conn.Exec(ctx, insert, 1, nil, nil)
	require.NoError(t, err)

	rec, ok, err := FetchOneAs[Record](ctx, conn, "SELECT * FROM records")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 1, rec.ID)
	assert.Nil(t, rec.Note)
	assert.Equal(t, 0, rec.Hits)
}

func TestSetValueFromDB(t *testing.T) {
	set := func(t *testing.T, dest any, val any) {
		t.Helper()
		require.NoError(t, setValueFromDB(reflect.ValueOf(dest).Elem(), val))
	}

	var i int
	set(t, &i, int64(42))
	assert.Equal(t, 42, i)

	var s string
	set(t, &s, []byte("hello"))
	assert.Equal(t, "hello", s)

	var b bool
	set(t, &b, int64(1))
	assert.True(t, b)

	var f float64
	set(t, &f, int64(3))
	assert.Equal(t, 3.0, f)

	type level int
	var lvl level
	set(t, &lvl, int64(5))
	assert.Equal(t, level(5), lvl)

	var id uuid.UUID
	want := uuid.MustParse("b3050ef1-92ba-4b21-a7da-f19df1cdbed2")
	set(t, &id, "b3050ef1-92ba-4b21-a7da-f19df1cdbed2")
	assert.Equal(t, want, id)
	set(t, &id, want[:])
	assert.Equal(t, want, id)

	var mismatch bool
	err := setValueFromDB(reflect.ValueOf(&mismatch).Elem(), "not a bool")
	assert.Error(t, err)
}
