package database

import (
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/lib/pq"
)

// Connect opens a PostgreSQL connection and verifies it with a ping.
func Connect(host string, port int, database string, username string, password string, sslmode string) (*sql.DB, error) {
	db, err := sql.Open("postgres", connString(host, port, database, username, password, sslmode))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return db, nil
}

// connString builds a key='value' DSN, escaping quotes and backslashes.
func connString(host string, port int, database string, username string, password string, sslmode string) string {
	return fmt.Sprintf("host=%s port=%d dbname=%s user=%s password=%s sslmode=%s",
		quoteDSNValue(host), port, quoteDSNValue(database), quoteDSNValue(username),
		quoteDSNValue(password), quoteDSNValue(sslmode))
}

var dsnEscaper = strings.NewReplacer(`\`, `\\`, `'`, `\'`)

func quoteDSNValue(v string) string {
	return "'" + dsnEscaper.Replace(v) + "'"
}
