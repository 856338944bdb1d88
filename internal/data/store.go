package data

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// OpenDB opens the SQLite file shared by the durable stores and creates the schema
func OpenDB(dbPath string) (*sql.DB, error) {
	// Ensure directory exists
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create db directory: %w", err)
	}

	// Several processors may write the same file; wait on locks instead of failing
	dsn := dbPath + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := migrate(db); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

func migrate(db *sql.DB) error {
	// Delay queue
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS queued_messages (
			id TEXT PRIMARY KEY,
			conversation_id TEXT NOT NULL,
			sender_id TEXT NOT NULL,
			recipient_id TEXT NOT NULL,
			body TEXT NOT NULL,
			scheduled_at INTEGER NOT NULL,
			sent_at INTEGER,
			attempts INTEGER NOT NULL DEFAULT 0,
			last_error TEXT NOT NULL DEFAULT '',
			claim_token TEXT,
			claimed_until INTEGER,
			created_at INTEGER NOT NULL
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create queued_messages table: %w", err)
	}
	_, _ = db.Exec(`CREATE INDEX IF NOT EXISTS idx_queued_due ON queued_messages(sent_at, scheduled_at)`)
	_, _ = db.Exec(`CREATE INDEX IF NOT EXISTS idx_queued_conversation ON queued_messages(conversation_id, scheduled_at)`)

	// Conversation store
	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS messages (
			id TEXT PRIMARY KEY,
			conversation_id TEXT NOT NULL,
			sender_id TEXT NOT NULL,
			body TEXT NOT NULL,
			created_at INTEGER NOT NULL
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create messages table: %w", err)
	}
	_, _ = db.Exec(`CREATE INDEX IF NOT EXISTS idx_messages_conversation ON messages(conversation_id, created_at)`)

	// Profile store
	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS profiles (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL DEFAULT '',
			gender TEXT NOT NULL DEFAULT '',
			interested_in TEXT NOT NULL DEFAULT '[]',
			birth_date TEXT,
			age INTEGER NOT NULL DEFAULT 0,
			city TEXT NOT NULL DEFAULT '',
			latitude REAL,
			longitude REAL,
			interests TEXT NOT NULL DEFAULT '[]',
			bio TEXT NOT NULL DEFAULT '',
			photo_count INTEGER NOT NULL DEFAULT 0,
			verified INTEGER NOT NULL DEFAULT 0,
			updated_at INTEGER NOT NULL
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create profiles table: %w", err)
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS blocks (
			blocker_id TEXT NOT NULL,
			blocked_id TEXT NOT NULL,
			created_at INTEGER NOT NULL,
			PRIMARY KEY (blocker_id, blocked_id)
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create blocks table: %w", err)
	}
	_, _ = db.Exec(`CREATE INDEX IF NOT EXISTS idx_blocks_blocked ON blocks(blocked_id)`)

	// Swipe log
	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS swipes (
			id TEXT PRIMARY KEY,
			actor_id TEXT NOT NULL,
			target_id TEXT NOT NULL,
			kind TEXT NOT NULL,
			created_at INTEGER NOT NULL
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create swipes table: %w", err)
	}
	_, _ = db.Exec(`CREATE INDEX IF NOT EXISTS idx_swipes_actor ON swipes(actor_id, created_at)`)

	// Context memory fallback when Redis is not configured
	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS conversation_contexts (
			conversation_id TEXT PRIMARY KEY,
			data TEXT NOT NULL,
			updated_at INTEGER NOT NULL
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create conversation_contexts table: %w", err)
	}

	return nil
}

func toMillis(t time.Time) int64 {
	return t.UnixMilli()
}

func fromMillis(ms int64) time.Time {
	return time.UnixMilli(ms)
}

func nullMillis(v sql.NullInt64) *time.Time {
	if !v.Valid {
		return nil
	}
	t := fromMillis(v.Int64)
	return &t
}
