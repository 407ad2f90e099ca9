package config

import (
	"database/sql"
	"fmt"
	"os"

	_ "github.com/lib/pq"
)

// InitDB opens the Postgres connection for the optional persistent
// store backend. Callers only reach this path when DATABASE_URL is set;
// the default deployment runs on the in-memory store.
func InitDB() (*sql.DB, error) {
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable is required")
	}

	db, err := sql.Open("postgres", dbURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)

	return db, nil
}

// RunMigrations creates the entity tables. One table per collection,
// keyed by its identifier; bank.user_id and the transfer bank columns
// act as foreign keys.
func RunMigrations(db *sql.DB) error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id VARCHAR(64) PRIMARY KEY,
			email VARCHAR(255) UNIQUE NOT NULL,
			password_hash VARCHAR(255) NOT NULL,
			first_name VARCHAR(255) NOT NULL,
			last_name VARCHAR(255) NOT NULL,
			address1 VARCHAR(255) DEFAULT '',
			city VARCHAR(255) DEFAULT '',
			state VARCHAR(64) DEFAULT '',
			postal_code VARCHAR(32) DEFAULT '',
			date_of_birth VARCHAR(32) DEFAULT '',
			ssn VARCHAR(32) DEFAULT '',
			totp_secret VARCHAR(255) DEFAULT '',
			totp_enabled BOOLEAN DEFAULT FALSE,
			payment_customer_id VARCHAR(128) DEFAULT '',
			payment_customer_url VARCHAR(255) DEFAULT '',
			created_at TIMESTAMPTZ DEFAULT NOW()
		)`,

		`CREATE TABLE IF NOT EXISTS sessions (
			id VARCHAR(64) PRIMARY KEY,
			user_id VARCHAR(64) REFERENCES users(id) ON DELETE CASCADE,
			refresh_token VARCHAR(500) UNIQUE NOT NULL,
			expires_at TIMESTAMPTZ NOT NULL,
			created_at TIMESTAMPTZ DEFAULT NOW()
		)`,

		`CREATE TABLE IF NOT EXISTS institutions (
			id VARCHAR(64) PRIMARY KEY,
			name VARCHAR(255) NOT NULL,
			primary_color VARCHAR(16) DEFAULT '',
			url VARCHAR(255) DEFAULT ''
		)`,

		`CREATE TABLE IF NOT EXISTS accounts (
			id VARCHAR(64) PRIMARY KEY,
			name VARCHAR(255) NOT NULL,
			official_name VARCHAR(255) DEFAULT '',
			mask VARCHAR(8) DEFAULT '',
			type VARCHAR(32) NOT NULL,
			subtype VARCHAR(32) NOT NULL,
			available_balance NUMERIC(18,2) NOT NULL DEFAULT 0,
			current_balance NUMERIC(18,2) NOT NULL DEFAULT 0,
			institution_id VARCHAR(64) REFERENCES institutions(id)
		)`,

		`CREATE TABLE IF NOT EXISTS banks (
			id VARCHAR(64) PRIMARY KEY,
			user_id VARCHAR(64) REFERENCES users(id),
			account_id VARCHAR(64) REFERENCES accounts(id),
			institution_id VARCHAR(64) REFERENCES institutions(id),
			access_token VARCHAR(255) DEFAULT '',
			funding_source_url VARCHAR(255) DEFAULT '',
			shareable_id VARCHAR(128) DEFAULT '',
			created_at TIMESTAMPTZ DEFAULT NOW()
		)`,

		`CREATE TABLE IF NOT EXISTS transactions (
			id VARCHAR(64) PRIMARY KEY,
			account_id VARCHAR(64) REFERENCES accounts(id),
			name VARCHAR(255) NOT NULL,
			amount NUMERIC(18,2) NOT NULL,
			date TIMESTAMPTZ NOT NULL,
			category VARCHAR(64) DEFAULT '',
			payment_channel VARCHAR(32) DEFAULT 'other',
			pending BOOLEAN DEFAULT FALSE
		)`,

		`CREATE TABLE IF NOT EXISTS transfers (
			id VARCHAR(64) PRIMARY KEY,
			name VARCHAR(255) NOT NULL,
			amount NUMERIC(18,2) NOT NULL,
			sender_id VARCHAR(64) REFERENCES users(id),
			sender_bank_id VARCHAR(64) REFERENCES banks(id),
			receiver_id VARCHAR(64) REFERENCES users(id),
			receiver_bank_id VARCHAR(64) REFERENCES banks(id),
			email VARCHAR(255) DEFAULT '',
			channel VARCHAR(32) DEFAULT 'online',
			category VARCHAR(32) DEFAULT 'Transfer',
			created_at TIMESTAMPTZ DEFAULT NOW()
		)`,

		`CREATE INDEX IF NOT EXISTS idx_banks_user_id ON banks(user_id)`,
		`CREATE INDEX IF NOT EXISTS idx_banks_account_id ON banks(account_id)`,
		`CREATE INDEX IF NOT EXISTS idx_transactions_account_id ON transactions(account_id)`,
		`CREATE INDEX IF NOT EXISTS idx_transfers_sender_bank_id ON transfers(sender_bank_id)`,
		`CREATE INDEX IF NOT EXISTS idx_transfers_receiver_bank_id ON transfers(receiver_bank_id)`,
		`CREATE INDEX IF NOT EXISTS idx_sessions_refresh_token ON sessions(refresh_token)`,
	}

	for _, migration := range migrations {
		if _, err := db.Exec(migration); err != nil {
			return fmt.Errorf("failed to run migration: %w", err)
		}
	}

	return nil
}
