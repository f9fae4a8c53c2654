/*
This package is a thin convenience wrapper around a database/sql
session. It streamlines the everyday fetch shapes - all rows, one row,
one column, one scalar, rows as structs - while letting you write
arbitrary SQL. Everything else (pooling, the wire protocol, statement
lifecycle) is the driver's business.

Connecting

A DSN selects the engine by its prefix and is otherwise passed through
untouched:

	conn, err := db.Connect(ctx, "sqlite3::memory:", "", "", nil)
	conn, err := db.Connect(ctx, "postgres://localhost:5432/app", "user", "pass", nil)

Two connect-time settings are forced and cannot be overridden by
options: driver errors are always surfaced to the caller, and postgres
statements always run as real server-side prepared statements.

Fetching

Each fetch helper executes and fetches in one call and closes its
cursor on every path:

	rows, err := conn.FetchAll(ctx, "SELECT * FROM test WHERE age > ?", 21)
	row, err := conn.FetchRow(ctx, "SELECT * FROM test WHERE name = ?", "Bob")
	ages, err := conn.FetchColumn(ctx, "SELECT age FROM test")
	age, ok, err := conn.FetchScalar(ctx, "SELECT age FROM test WHERE name = ?", "Alice")

"No matching rows" is never an error here: collection shapes come back
empty and non-nil, FetchRow comes back as an empty mapping, and the
scalar/struct helpers report ok == false.

To fetch rows as structs, tag fields with `db:"column_name"` (or rely
on the lowercased field name) and provide the type argument explicitly:

	type Person struct {
		ID   int    `db:"id"`
		Name string `db:"name"`
		Age  int    `db:"age"`
	}
	people, err := db.FetchAllAs[Person](ctx, conn, "SELECT * FROM test")
	bob, ok, err := db.FetchOneAs[Person](ctx, conn, "SELECT * FROM test WHERE name = ?", "Bob")

Placeholders use whatever syntax the driver understands ($1 for
postgres, ? for sqlite); this package does no placeholder rewriting.
*/
package db
