package database

import (
	"fmt"

	"github.com/jmoiron/sqlx"
)

var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id TEXT PRIMARY KEY,
		external_id TEXT UNIQUE NOT NULL,
		name TEXT NOT NULL DEFAULT '',
		level INTEGER NOT NULL DEFAULT 1,
		experience INTEGER NOT NULL DEFAULT 0,
		strength INTEGER NOT NULL DEFAULT 10,
		endurance INTEGER NOT NULL DEFAULT 10,
		agility INTEGER NOT NULL DEFAULT 10,
		intelligence INTEGER NOT NULL DEFAULT 10,
		willpower INTEGER NOT NULL DEFAULT 10,
		setup_completed BOOLEAN NOT NULL DEFAULT false,
		last_login TIMESTAMP NOT NULL,
		created_at TIMESTAMP NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS goals (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		title TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		category TEXT NOT NULL DEFAULT 'other',
		progress INTEGER NOT NULL DEFAULT 0,
		status TEXT NOT NULL DEFAULT 'active',
		target_date TIMESTAMP,
		created_at TIMESTAMP NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS daily_quests (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		title TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		category TEXT NOT NULL DEFAULT 'general',
		difficulty TEXT NOT NULL DEFAULT 'medium',
		experience_reward INTEGER NOT NULL DEFAULT 10,
		completed BOOLEAN NOT NULL DEFAULT false,
		streak INTEGER NOT NULL DEFAULT 0,
		last_completed TIMESTAMP,
		created_at TIMESTAMP NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS achievements (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		title TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		icon TEXT NOT NULL DEFAULT '',
		unlocked_at TIMESTAMP NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS conversation_history (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		user_message TEXT NOT NULL,
		response TEXT NOT NULL,
		created_at TIMESTAMP NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_goals_user ON goals(user_id)`,
	`CREATE INDEX IF NOT EXISTS idx_daily_quests_user ON daily_quests(user_id)`,
	`CREATE INDEX IF NOT EXISTS idx_achievements_user ON achievements(user_id)`,
	`CREATE INDEX IF NOT EXISTS idx_conversation_user ON conversation_history(user_id, created_at)`,
}

var postgresSchema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id TEXT PRIMARY KEY,
		external_id TEXT UNIQUE NOT NULL,
		name TEXT NOT NULL DEFAULT '',
		level INTEGER NOT NULL DEFAULT 1,
		experience INTEGER NOT NULL DEFAULT 0,
		strength INTEGER NOT NULL DEFAULT 10,
		endurance INTEGER NOT NULL DEFAULT 10,
		agility INTEGER NOT NULL DEFAULT 10,
		intelligence INTEGER NOT NULL DEFAULT 10,
		willpower INTEGER NOT NULL DEFAULT 10,
		setup_completed BOOLEAN NOT NULL DEFAULT false,
		last_login TIMESTAMPTZ NOT NULL,
		created_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS goals (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		title TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		category TEXT NOT NULL DEFAULT 'other',
		progress INTEGER NOT NULL DEFAULT 0,
		status TEXT NOT NULL DEFAULT 'active',
		target_date TIMESTAMPTZ,
		created_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS daily_quests (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		title TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		category TEXT NOT NULL DEFAULT 'general',
		difficulty TEXT NOT NULL DEFAULT 'medium',
		experience_reward INTEGER NOT NULL DEFAULT 10,
		completed BOOLEAN NOT NULL DEFAULT false,
		streak INTEGER NOT NULL DEFAULT 0,
		last_completed TIMESTAMPTZ,
		created_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS achievements (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		title TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		icon TEXT NOT NULL DEFAULT '',
		unlocked_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS conversation_history (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		user_message TEXT NOT NULL,
		response TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_goals_user ON goals(user_id)`,
	`CREATE INDEX IF NOT EXISTS idx_daily_quests_user ON daily_quests(user_id)`,
	`CREATE INDEX IF NOT EXISTS idx_achievements_user ON achievements(user_id)`,
	`CREATE INDEX IF NOT EXISTS idx_conversation_user ON conversation_history(user_id, created_at)`,
}

// InitSchema creates the tables if they don't exist.
func InitSchema(db *sqlx.DB) error {
	stmts := sqliteSchema
	if db.DriverName() == DriverPostgres {
		stmts = postgresSchema
	}
	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("failed to initialize schema: %w", err)
		}
	}
	return nil
}
