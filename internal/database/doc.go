// Package database provides SQLite-based storage of load run history.
//
// Every load is recorded with its counts, its messages and the index it
// produced, so past loads of a device or disk can be listed and compared.
//
// The database is a single pdscload.db file opened through the CGO-free
// modernc.org/sqlite driver with WAL journaling.
package database
