package db

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/a-le/microdbal/src/config"
	"github.com/a-le/microdbal/src/logging"
	"github.com/a-le/microdbal/src/utils"
	zerologadapter "github.com/jackc/pgx-zerolog"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/jackc/pgx/v5/tracelog"
	_ "github.com/mattn/go-sqlite3"
)

/*
Conn wraps exactly one live database session and forwards typed
convenience operations to it. It is not safe for concurrent use: the
affected-row count and the transaction flag are plain fields overwritten
by each call.
*/
type Conn struct {
	db      *sql.DB
	session *sql.Conn
	driver  string

	tx           *sql.Tx
	lastResult   sql.Result
	lastAffected int64
}

// Options are forwarded to the underlying driver at connect time.
// Two settings are forced and cannot be supplied here: errors are
// always surfaced to the caller, and postgres statements always run as
// real server-side prepared statements.
type Options struct {
	// Query log verbosity for postgres sessions. Defaults to warn.
	LogLevel tracelog.LogLevel

	ConnectTimeout time.Duration

	// Extra driver parameters, forwarded verbatim.
	RuntimeParams map[string]string
}

// Connect establishes one session to the database named by dsn. The
// DSN is opaque apart from its engine prefix, which selects the
// registered driver: postgres:// and postgresql:// URLs go through the
// pgx stdlib adapter, sqlite3: and sqlite: prefixes go through
// go-sqlite3, and any other prefix is tried verbatim as a registered
// driver name. user and password, when non-empty, take precedence over
// credentials embedded in the DSN.
func Connect(ctx context.Context, dsn, user, password string, opts *Options) (*Conn, error) {
	if opts == nil {
		opts = &Options{}
	}

	driver, rest := resolveDriver(dsn)

	var sqldb *sql.DB
	switch driver {
	case "pgx":
		pgcfg, err := pgx.ParseConfig(rest)
		if err != nil {
			return nil, &ConnectionError{Driver: driver, Wrapped: err}
		}
		if user != "" {
			pgcfg.User = user
		}
		if password != "" {
			pgcfg.Password = password
		}
		if opts.ConnectTimeout != 0 {
			pgcfg.ConnectTimeout = opts.ConnectTimeout
		}
		for k, v := range opts.RuntimeParams {
			pgcfg.RuntimeParams[k] = v
		}
		pgcfg.Tracer = &tracelog.TraceLog{
			Logger:   zerologadapter.NewLogger(*logging.GlobalLogger()),
			LogLevel: utils.OrDefault(opts.LogLevel, tracelog.LogLevelWarn),
		}
		// Forced: extended-protocol prepared statements, applied after
		// all caller-supplied options so they cannot be overridden.
		pgcfg.DefaultQueryExecMode = pgx.QueryExecModeCacheStatement
		sqldb = stdlib.OpenDB(*pgcfg)
	default:
		var err error
		sqldb, err = sql.Open(driver, rest)
		if err != nil {
			return nil, &ConnectionError{Driver: driver, Wrapped: err}
		}
	}

	// Pin a single session. Besides matching the one-session contract,
	// this is required for sqlite3::memory:, where every new pool
	// connection would see a distinct database.
	session, err := sqldb.Conn(ctx)
	if err != nil {
		sqldb.Close()
		return nil, &ConnectionError{Driver: driver, Wrapped: err}
	}

	return &Conn{
		db:      sqldb,
		session: session,
		driver:  driver,
	}, nil
}

// ConnectDefault connects using the DSN and credentials from the
// environment-driven configuration (the test-runner's variables).
func ConnectDefault(ctx context.Context) (*Conn, error) {
	dbcfg := config.Config.Database
	return Connect(ctx, dbcfg.DSN, dbcfg.User, dbcfg.Password, nil)
}

func resolveDriver(dsn string) (driver, rest string) {
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		return "pgx", dsn
	}
	prefix, rest, found := strings.Cut(dsn, ":")
	if !found {
		return dsn, ""
	}
	switch prefix {
	case "pgx", "postgres", "postgresql":
		return "pgx", rest
	case "sqlite", "sqlite3":
		return "sqlite3", rest
	case "file":
		// sqlite URI filenames keep their file: prefix.
		return "sqlite3", dsn
	default:
		return prefix, rest
	}
}

// DriverName reports the driver selected at connect time.
func (c *Conn) DriverName() string {
	return c.driver
}

// Close rolls back any open transaction and releases the session.
func (c *Conn) Close() error {
	if c.tx != nil {
		c.tx.Rollback()
		c.tx = nil
	}
	sessionErr := c.session.Close()
	dbErr := c.db.Close()
	if sessionErr != nil {
		return sessionErr
	}
	return dbErr
}

// ExecResult carries the outcome of an Exec call by value.
type ExecResult struct {
	RowsAffected int64
}

// Exec prepares and executes one statement that returns no rows, and
// records its result for AffectedRows and LastInsertID.
func (c *Conn) Exec(ctx context.Context, query string, args ...any) (ExecResult, error) {
	var res sql.Result
	var err error
	if c.tx != nil {
		res, err = c.tx.ExecContext(ctx, query, args...)
	} else {
		res, err = c.session.ExecContext(ctx, query, args...)
	}
	if err != nil {
		return ExecResult{}, statementError(query, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		affected = 0
	}
	c.lastResult = res
	c.lastAffected = affected
	return ExecResult{RowsAffected: affected}, nil
}

// Query prepares and executes one statement and returns the raw result
// cursor. The caller owns the cursor and must close it. Prefer the
// Fetch helpers, which close it on every path.
func (c *Conn) Query(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	var rows *sql.Rows
	var err error
	if c.tx != nil {
		rows, err = c.tx.QueryContext(ctx, query, args...)
	} else {
		rows, err = c.session.QueryContext(ctx, query, args...)
	}
	if err != nil {
		return nil, statementError(query, err)
	}
	return rows, nil
}

// AffectedRows reports the row count recorded by the most recent Exec
// on this connection. Overwritten by each Exec.
func (c *Conn) AffectedRows() int64 {
	return c.lastAffected
}

/*
LastInsertID reports the driver-recorded identifier of the most recent
insert. With a non-empty sequence name on postgres, it reads
currval(sequence) instead, since the pgx driver does not implement
last-insert-id. Engines with neither capability yield
*UnsupportedOperationError. With no prior insert recorded it reports 0.
*/
func (c *Conn) LastInsertID(ctx context.Context, sequence string) (int64, error) {
	if sequence != "" {
		if c.driver != "pgx" {
			return 0, &UnsupportedOperationError{Op: "sequence introspection", Driver: c.driver}
		}
		val, ok, err := c.FetchScalar(ctx, "SELECT currval($1)", sequence)
		if err != nil {
			return 0, err
		}
		if !ok {
			return 0, nil
		}
		id, iderr := toInt64(val)
		if iderr != nil {
			return 0, statementError("SELECT currval($1)", iderr)
		}
		return id, nil
	}

	if c.lastResult == nil {
		return 0, nil
	}
	id, err := c.lastResult.LastInsertId()
	if err != nil {
		return 0, &UnsupportedOperationError{Op: "last insert id", Driver: c.driver, Wrapped: err}
	}
	return id, nil
}

// Begin starts a transaction. All statements route through it until
// Commit or Rollback. Nested transactions are not supported.
func (c *Conn) Begin(ctx context.Context) error {
	if c.tx != nil {
		return &TransactionStateError{Op: "begin", Active: true}
	}
	tx, err := c.session.BeginTx(ctx, nil)
	if err != nil {
		return statementError("BEGIN", err)
	}
	c.tx = tx
	return nil
}

func (c *Conn) Commit() error {
	if c.tx == nil {
		return &TransactionStateError{Op: "commit"}
	}
	err := c.tx.Commit()
	c.tx = nil
	if err != nil {
		return statementError("COMMIT", err)
	}
	return nil
}

func (c *Conn) Rollback() error {
	if c.tx == nil {
		return &TransactionStateError{Op: "rollback"}
	}
	err := c.tx.Rollback()
	c.tx = nil
	if err != nil {
		return statementError("ROLLBACK", err)
	}
	return nil
}

func (c *Conn) InTransaction() bool {
	return c.tx != nil
}
