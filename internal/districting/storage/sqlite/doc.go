// Package sqlite persists districting instances and solved runs in SQLite.
//
// The schema is owned by the embedded migrations under migrations/ and is
// applied with golang-migrate when a Store is opened. A run row records the
// parameters a solution was built with; its clusters, members and objective
// values hang off it in child tables so the whole run can be browsed with
// plain SQL.
package sqlite
