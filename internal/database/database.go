package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/R1das67/globex-security/internal/models"

	_ "modernc.org/sqlite"
)

type Database struct {
	db *sql.DB
}

// Open creates the SQLite database at path and makes sure the schema exists.
func Open(path string) (*Database, error) {
	db, err := sql.Open("sqlite", path+"?_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(8)
	db.SetMaxIdleConns(4)
	db.SetConnMaxLifetime(time.Hour)
	db.SetConnMaxIdleTime(10 * time.Minute)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable WAL: %w", err)
	}

	if _, err := db.Exec("PRAGMA synchronous=NORMAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set synchronous mode: %w", err)
	}

	d := &Database{db: db}
	if err := d.createTables(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return d, nil
}

// Ping checks the connection is alive.
func (d *Database) Ping(ctx context.Context) error {
	if d == nil || d.db == nil {
		return fmt.Errorf("database closed: %w", models.ErrStoreUnavailable)
	}
	if err := d.db.PingContext(ctx); err != nil {
		return fmt.Errorf("%w: %v", models.ErrStoreUnavailable, err)
	}
	return nil
}

func (d *Database) Close() error {
	if d != nil && d.db != nil {
		return d.db.Close()
	}
	return nil
}

func statusColumn(m models.Module) string {
	return string(m) + "_status"
}

func punishColumn(m models.Module) string {
	return string(m) + "_punish"
}

func (d *Database) createTables() error {
	var settings strings.Builder
	settings.WriteString("CREATE TABLE IF NOT EXISTS settings (\n\t\tguild_id TEXT PRIMARY KEY,\n")
	for _, m := range models.AllModules {
		fmt.Fprintf(&settings, "\t\t%s INTEGER NOT NULL DEFAULT 0,\n\t\t%s TEXT,\n", statusColumn(m), punishColumn(m))
	}
	settings.WriteString("\t\tlog_status INTEGER NOT NULL DEFAULT 0,\n\t\tlog_channel TEXT,\n\t\tcreated_at INTEGER NOT NULL DEFAULT 0,\n\t\tupdated_at INTEGER NOT NULL DEFAULT 0\n\t);")

	schema := settings.String() + `

	CREATE TABLE IF NOT EXISTS limits (
		guild_id TEXT PRIMARY KEY,
		invite_limit INTEGER,
		invite_time INTEGER,
		ping_limit INTEGER,
		ping_time INTEGER,
		webhook_limit INTEGER,
		bot_limit INTEGER,
		updated_at INTEGER NOT NULL DEFAULT 0
	);

	CREATE TABLE IF NOT EXISTS lists (
		guild_id TEXT NOT NULL,
		user_id TEXT NOT NULL,
		list_type TEXT NOT NULL,
		created_at INTEGER NOT NULL,
		PRIMARY KEY (guild_id, user_id, list_type)
	);

	CREATE INDEX IF NOT EXISTS idx_lists_guild_type ON lists(guild_id, list_type);
	`

	_, err := d.db.Exec(schema)
	return err
}

func storeErr(op string, err error) error {
	return fmt.Errorf("%s: %w: %v", op, models.ErrStoreUnavailable, err)
}
