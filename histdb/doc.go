// Package histdb owns the on-disk shell history database. It guarantees
// that each logical table exists with its expected schema before any read
// or write, inserts session and command rows through a generic [Record]
// capability, and fetches ad hoc query results as a [ResultSet].
//
// Every statement runs in its own short-lived transaction that is committed
// and released before the call returns, on every exit path. Uniqueness
// violations on insert are expected (two shells racing on the same command
// number) and are swallowed: the insert logs at debug level and returns 0.
//
// The package uses modernc.org/sqlite, a pure-Go SQLite driver, behind
// database/sql.
package histdb
