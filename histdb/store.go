package histdb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	sqlite "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// Record is the capability a row type must provide to be inserted through
// [Store.Insert]. Columns and Values must have the same length and a stable
// matching order.
type Record interface {
	// Table returns the name of the table the record belongs to.
	Table() string

	// CreateTableSQL returns the authoritative CREATE TABLE statement for
	// the record's table.
	CreateTableSQL() string

	// Columns returns the column names populated by Values.
	Columns() []string

	// Values returns the values to bind, one per column.
	Values() []any
}

// Store is a schema-checked wrapper around the history database. Construct
// one with [Open] and pass it to whoever needs it; its lifetime is the run
// of the tool.
type Store struct {
	db  *sql.DB
	log *zap.Logger
}

// Open opens the history database at path, creating the backing file if it
// does not exist. An error from Open is fatal to the process: without the
// database nothing else can function, and returning empty results instead
// would masquerade as "no history".
func Open(path string, log *zap.Logger) (*Store, error) {
	if path == "" {
		return nil, errors.New("no history database configured (set ASH_CFG_HISTORY_DB)")
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening history database %s: %w", path, err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("opening history database %s: %w", path, err)
	}
	return &Store{db: db, log: log}, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// EnsureTable checks the database catalog for a table named name. If the
// table is absent the create statement is executed and committed. If it is
// present its stored DDL is compared against createSQL after trimming
// trailing semicolons and whitespace; on mismatch a warning is logged and
// the table is left untouched. No destructive auto-migration ever happens.
//
// Calling EnsureTable repeatedly is a no-op once the table matches.
func (s *Store) EnsureTable(ctx context.Context, name, createSQL string) error {
	var existing string
	err := s.db.QueryRowContext(ctx,
		`SELECT sql FROM sqlite_master WHERE type = 'table' AND name = ?`, name).
		Scan(&existing)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		if _, err := s.db.ExecContext(ctx, createSQL); err != nil {
			return fmt.Errorf("creating table %s: %w", name, err)
		}
		s.log.Debug("created table", zap.String("table", name))
		return nil
	case err != nil:
		return fmt.Errorf("inspecting schema of table %s: %w", name, err)
	}

	if trimDDL(existing) != trimDDL(createSQL) {
		s.log.Warn("table exists, but has an unexpected schema",
			zap.String("table", name))
	}
	return nil
}

// trimDDL normalizes a CREATE TABLE statement for comparison against
// sqlite_master, which stores the statement without its trailing semicolon.
// The comparison is trim-only: no semantic DDL diffing.
func trimDDL(ddl string) string {
	return strings.TrimSpace(strings.TrimRight(strings.TrimSpace(ddl), ";"))
}

// Insert builds and executes a parameterized INSERT for rec. It returns the
// rowid of the new row, or 0 when a uniqueness constraint rejected the row.
// Duplicate command numbers within a session are an expected race between
// concurrently logging shells, so the violation is logged at debug level
// and not propagated.
func (s *Store) Insert(ctx context.Context, rec Record) (int64, error) {
	cols := rec.Columns()
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(cols)), ", ")
	query := fmt.Sprintf("INSERT INTO %s ( %s ) VALUES ( %s )",
		rec.Table(), strings.Join(cols, ", "), placeholders)
	return s.Execute(ctx, query, rec.Values()...)
}

// Execute runs a parameterized statement in its own transaction and returns
// the last inserted rowid. Constraint violations are swallowed the same way
// as in [Store.Insert]. The transaction is committed and released on every
// exit path, including the violation path.
func (s *Store) Execute(ctx context.Context, query string, args ...any) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		if !isConstraintViolation(err) {
			return 0, fmt.Errorf("executing %q: %w", query, err)
		}
		s.log.Debug("constraint violation", zap.String("query", query), zap.Error(err))
		if err := tx.Commit(); err != nil {
			return 0, fmt.Errorf("committing transaction: %w", err)
		}
		return 0, nil
	}

	id, err := res.LastInsertId()
	if err != nil {
		id = 0
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing transaction: %w", err)
	}
	return id, nil
}

// isConstraintViolation reports whether err is a SQLITE_CONSTRAINT error,
// including extended result codes such as SQLITE_CONSTRAINT_UNIQUE.
func isConstraintViolation(err error) bool {
	var se *sqlite.Error
	return errors.As(err, &se) && se.Code()&0xff == sqlite3.SQLITE_CONSTRAINT
}

// Fetch executes a query and returns its result set. The statement must be
// syntactically complete (terminated by a semicolon); incomplete statements
// are rejected before execution and yield a nil ResultSet with no error.
// A query that matches zero rows also yields a nil ResultSet.
//
// Headings are discovered from the executed statement, not from any static
// schema, so ad hoc SELECT projections work. If limit is positive at most
// limit rows are read; otherwise all rows are read.
func (s *Store) Fetch(ctx context.Context, query string, params []any, limit int) (*ResultSet, error) {
	if !CompleteStatement(query) {
		s.log.Debug("rejecting incomplete statement", zap.String("query", query))
		return nil, nil
	}

	rows, err := s.db.QueryContext(ctx, query, params...)
	if err != nil {
		return nil, fmt.Errorf("executing query %q: %w", query, err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("reading column names: %w", err)
	}

	rs := &ResultSet{Headings: cols}
	for rows.Next() {
		if limit > 0 && len(rs.Rows) >= limit {
			break
		}
		vals := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}
		for i, v := range vals {
			if b, ok := v.([]byte); ok {
				vals[i] = string(b)
			}
		}
		rs.Rows = append(rs.Rows, vals)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading rows: %w", err)
	}

	if len(rs.Rows) == 0 {
		return nil, nil
	}
	return rs, nil
}

// CloseSession marks the session row as ended, recording the end time and
// the session duration.
func (s *Store) CloseSession(ctx context.Context, sessionID int64) error {
	const update = `
		UPDATE sessions
		SET
			end_time = ?,
			duration = ? - start_time
		WHERE id == ?;`
	ts := time.Now().Unix()
	_, err := s.Execute(ctx, update, ts, ts, sessionID)
	return err
}
