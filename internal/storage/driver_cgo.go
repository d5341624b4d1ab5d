//go:build cgo

package storage

import _ "github.com/mattn/go-sqlite3"

const driverName = "sqlite3"

func sqliteDSN(path string) string {
	return "file:" + path + "?_busy_timeout=5000&_foreign_keys=on"
}
