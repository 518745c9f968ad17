package db

import (
	"fmt"
	"log/slog"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

// Connect initializes the database connection and runs migrations.
func Connect(dsn string, logger *slog.Logger) (*sqlx.DB, error) {
	db, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("connect db: %w", err)
	}

	if err := runMigrations(db); err != nil {
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	logger.Info("database migrations applied")
	return db, nil
}

func runMigrations(db *sqlx.DB) error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS users (
            id VARCHAR PRIMARY KEY,
            email VARCHAR UNIQUE,
            first_name VARCHAR,
            last_name VARCHAR,
            profile_image_url VARCHAR,
            location VARCHAR NOT NULL DEFAULT '성수동',
            max_distance INT NOT NULL DEFAULT 2000,
            rating NUMERIC(3,2) NOT NULL DEFAULT 5.00,
            completed_errands INT NOT NULL DEFAULT 0,
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
            updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
        );`,
		`CREATE TABLE IF NOT EXISTS errands (
            id SERIAL PRIMARY KEY,
            title VARCHAR(200) NOT NULL,
            description TEXT NOT NULL,
            start_location_lat NUMERIC(10,8),
            start_location_lng NUMERIC(11,8),
            start_location_address VARCHAR(500),
            end_location_lat NUMERIC(10,8),
            end_location_lng NUMERIC(11,8),
            end_location_address VARCHAR(500),
            urgency VARCHAR(20) NOT NULL DEFAULT 'normal',
            tip INT NOT NULL DEFAULT 0 CHECK (tip >= 0),
            status VARCHAR(20) NOT NULL DEFAULT 'waiting',
            requester_id VARCHAR NOT NULL REFERENCES users(id),
            runner_id VARCHAR REFERENCES users(id),
            estimated_distance INT,
            estimated_time INT,
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
            updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
        );`,
		`CREATE INDEX IF NOT EXISTS idx_errands_status_created ON errands (status, created_at DESC);`,
		`CREATE TABLE IF NOT EXISTS chat_rooms (
            id SERIAL PRIMARY KEY,
            errand_id INT NOT NULL UNIQUE REFERENCES errands(id),
            requester_id VARCHAR NOT NULL REFERENCES users(id),
            runner_id VARCHAR NOT NULL REFERENCES users(id),
            last_message_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
        );`,
		`CREATE TABLE IF NOT EXISTS chat_messages (
            id SERIAL PRIMARY KEY,
            chat_room_id INT NOT NULL REFERENCES chat_rooms(id) ON DELETE CASCADE,
            sender_id VARCHAR NOT NULL REFERENCES users(id),
            message TEXT NOT NULL,
            message_type VARCHAR(20) NOT NULL DEFAULT 'text',
            is_read BOOLEAN NOT NULL DEFAULT FALSE,
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
        );`,
		`CREATE INDEX IF NOT EXISTS idx_chat_messages_room_created ON chat_messages (chat_room_id, created_at);`,
		`CREATE TABLE IF NOT EXISTS sessions (
            id VARCHAR PRIMARY KEY,
            user_id VARCHAR NOT NULL REFERENCES users(id),
            expires_at TIMESTAMPTZ NOT NULL,
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
        );`,
		`CREATE INDEX IF NOT EXISTS idx_sessions_expire ON sessions (expires_at);`,
	}

	for _, m := range migrations {
		if _, err := db.Exec(m); err != nil {
			return err
		}
	}
	return nil
}
