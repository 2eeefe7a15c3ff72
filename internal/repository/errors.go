package repository

import "errors"

// ErrNotFound is returned when a group has no stored document yet.
// This abstracts away the underlying storage implementation (SQL, Redis, Mongo,
// remote host) from the service layer.
var ErrNotFound = errors.New("record not found")

// ErrUnsupportedDriver is returned by New for SQL drivers other than sqlite3 and postgres.
var ErrUnsupportedDriver = errors.New("unsupported database driver")
