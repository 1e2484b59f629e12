package db

import (
	"database/sql"
	"fmt"
	"net/url"

	"github.com/crucial707/notes-api/internal/config"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

// Connect opens and pings the database selected by cfg.DBDriver.
func Connect(cfg config.Config) (*sql.DB, error) {
	var (
		driver string
		dsn    string
	)
	switch cfg.DBDriver {
	case config.DriverSQLite:
		driver, dsn = config.DriverSQLite, SQLiteDSN(cfg.DBPath)
	case config.DriverPostgres:
		driver = config.DriverPostgres
		dsn = fmt.Sprintf(
			"host=%s port=%s dbname=%s user=%s password=%s sslmode=disable",
			cfg.DBHost, cfg.DBPort, cfg.DBName, cfg.DBUser, cfg.DBPass,
		)
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", cfg.DBDriver)
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, err
	}

	if driver == config.DriverSQLite {
		// SQLite serializes writers; one connection avoids "database is locked".
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
	} else {
		db.SetMaxOpenConns(cfg.DBMaxOpenConns)
		db.SetMaxIdleConns(cfg.DBMaxIdleConns)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, err
	}

	return db, nil
}

// SQLiteDSN enables foreign keys, WAL and a busy timeout for the given file.
func SQLiteDSN(path string) string {
	q := url.Values{}
	q.Set("_foreign_keys", "on")
	q.Set("_busy_timeout", "5000")
	q.Set("_journal_mode", "WAL")
	return "file:" + path + "?" + q.Encode()
}
