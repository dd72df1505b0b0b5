package storage

import (
	"context"
	"database/sql"
	"fmt"
)

var schemaStatements = []string{
	`CREATE EXTENSION IF NOT EXISTS vector`,
	`CREATE TABLE IF NOT EXISTS troll_analyses (
		id UUID PRIMARY KEY,
		conversation_hash TEXT NOT NULL,
		message_count INTEGER,
		participant_count INTEGER,
		platform TEXT,
		overall_score INTEGER,
		verdict TEXT,
		signal_profile vector(5),
		llm_enhanced BOOLEAN DEFAULT FALSE,
		ip_address TEXT,
		user_agent TEXT,
		country TEXT,
		is_bot BOOLEAN DEFAULT FALSE,
		created_at TIMESTAMP DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS troll_visitors (
		id UUID PRIMARY KEY,
		ip_address TEXT,
		user_agent TEXT,
		country TEXT,
		referrer TEXT,
		is_bot BOOLEAN DEFAULT FALSE,
		created_at TIMESTAMP DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_troll_analyses_created_at ON troll_analyses (created_at)`,
	`CREATE INDEX IF NOT EXISTS idx_troll_analyses_hash ON troll_analyses (conversation_hash)`,
}

// InitSchema creates the tables if they do not exist yet. Safe to run on
// every startup.
func InitSchema(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schemaStatements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("init schema: %w", err)
		}
	}
	return nil
}
