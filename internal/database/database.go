package database

import (
	"database/sql"
	"fmt"
	"os"

	_ "github.com/lib/pq"
)

type Database struct {
	db *sql.DB
}

// NewDatabase connects to postgres using the DB_* environment variables.
// It returns (nil, nil) when DB_HOST is unset so the bot can run without
// activity persistence.
func NewDatabase() (*Database, error) {
	if os.Getenv("DB_HOST") == "" {
		return nil, nil
	}

	connStr := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		os.Getenv("DB_HOST"),
		os.Getenv("DB_PORT"),
		os.Getenv("DB_USER"),
		os.Getenv("DB_PASSWORD"),
		os.Getenv("DB_NAME"),
	)

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, err
	}

	if err := db.Ping(); err != nil {
		return nil, err
	}

	return &Database{db: db}, nil
}

func (d *Database) LogUserActivity(userID int64, command string) error {
	_, err := d.db.Exec("INSERT INTO user_activity (user_id, command) VALUES ($1, $2)", userID, command)
	return err
}

func (d *Database) LogSearch(userID int64, query, quality string, resultCount int) error {
	_, err := d.db.Exec(
		"INSERT INTO search_history (user_id, query, quality, result_count) VALUES ($1, $2, $3, $4)",
		userID, query, quality, resultCount,
	)
	return err
}

func (d *Database) LogSentTorrent(userID int64, title, quality string, sizeBytes int64) error {
	_, err := d.db.Exec(
		"INSERT INTO sent_torrents (user_id, title, quality, size_bytes) VALUES ($1, $2, $3, $4)",
		userID, title, quality, sizeBytes,
	)
	return err
}

func (d *Database) Close() error {
	return d.db.Close()
}
