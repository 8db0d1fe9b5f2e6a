// Package database provides database connectivity and schema management.
package database

import (
	"database/sql"
	"fmt"

	"github.com/rs/zerolog/log"

	_ "github.com/mattn/go-sqlite3" // Import sqlite3 driver
)

// DB wraps the SQL database connection
type DB struct {
	*sql.DB
}

// NewDB creates a new database connection
func NewDB(dataSourceName string) (*DB, error) {
	db, err := sql.Open("sqlite3", dataSourceName)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{db}, nil
}

// InitSchema initializes the database schema
func (db *DB) InitSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS users (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		username TEXT UNIQUE NOT NULL,
		password_hash TEXT NOT NULL,
		email TEXT,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		is_active BOOLEAN DEFAULT TRUE
	);

	CREATE TABLE IF NOT EXISTS video_metadata (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		video_path TEXT UNIQUE NOT NULL,
		cover_image TEXT,
		views INTEGER DEFAULT 0,
		upload_date DATE,
		duration TEXT,
		uploaded_by INTEGER,
		FOREIGN KEY (uploaded_by) REFERENCES users (id)
	);

	CREATE INDEX IF NOT EXISTS idx_video_metadata_video_path ON video_metadata(video_path);
	CREATE INDEX IF NOT EXISTS idx_video_metadata_uploaded_by ON video_metadata(uploaded_by);

	CREATE TABLE IF NOT EXISTS iptv_channels (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL,
		stream_url TEXT NOT NULL,
		category TEXT,
		group_title TEXT DEFAULT 'General',
		logo_url TEXT,
		is_live BOOLEAN DEFAULT TRUE,
		quality TEXT DEFAULT 'HD',
		country_code TEXT,
		added_by INTEGER,
		added_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		is_active BOOLEAN DEFAULT TRUE,
		FOREIGN KEY (added_by) REFERENCES users (id)
	);

	CREATE INDEX IF NOT EXISTS idx_iptv_channels_group_title ON iptv_channels(group_title);
	CREATE INDEX IF NOT EXISTS idx_iptv_channels_is_active ON iptv_channels(is_active);

	CREATE TABLE IF NOT EXISTS iptv_playlists (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL,
		m3u_content TEXT,
		created_by INTEGER,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		FOREIGN KEY (created_by) REFERENCES users (id)
	);
	`

	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	log.Info().Msg("Database schema initialized")
	return nil
}
