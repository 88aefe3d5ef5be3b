package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
)

// Open connects to MySQL and verifies the connection.
func Open(user, pass, host, port, name string) (*sql.DB, error) {
	auth := user
	if pass != "" {
		auth = fmt.Sprintf("%s:%s", user, pass)
	}
	// parseTime=true -> DATE -> time.Time | loc=UTC keeps dates stable
	dsn := fmt.Sprintf("%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=true&loc=UTC",
		auth, host, port, name)

	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, err
	}

	// The schedule is small and claims are serialized, so a modest pool is plenty.
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// schema mirrors the sheet columns Date | Guest Artist | Name | Instrument |
// Piece | Duration | Remarks.  line is the sheet line number (header is 1).
const schema = `CREATE TABLE IF NOT EXISTS schedule_rows (
    line         INT UNSIGNED  NOT NULL PRIMARY KEY,
    date_label   VARCHAR(64)   NOT NULL DEFAULT '',
    date_value   DATE          NULL,
    guest_artist VARCHAR(255)  NOT NULL DEFAULT '',
    name         VARCHAR(255)  NOT NULL DEFAULT '',
    instrument   VARCHAR(128)  NOT NULL DEFAULT '',
    piece        VARCHAR(512)  NOT NULL DEFAULT '',
    duration     VARCHAR(64)   NOT NULL DEFAULT '',
    remarks      VARCHAR(1024) NOT NULL DEFAULT '',
    updated_at   DATETIME      NULL
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`

// Migrate creates the schedule table if needed.
func Migrate(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("create schedule_rows: %w", err)
	}
	return nil
}
