package repositories

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/answjddnjs04/errand-app/internal/models"
)

var ErrSessionNotFound = errors.New("session not found")

// SessionRepository abstracts login-session persistence.
type SessionRepository interface {
	CreateSession(ctx context.Context, id, userID string, expiresAt time.Time) (models.Session, error)
	GetSession(ctx context.Context, id string) (models.Session, error)
	DeleteSession(ctx context.Context, id string) error
}

// SessionRepo is a sqlx implementation of SessionRepository.
type SessionRepo struct {
	db *sqlx.DB
}

// NewSessionRepo constructs a SessionRepo.
func NewSessionRepo(db *sqlx.DB) *SessionRepo {
	return &SessionRepo{db: db}
}

// CreateSession stores a new session row.
func (r *SessionRepo) CreateSession(ctx context.Context, id, userID string, expiresAt time.Time) (models.Session, error) {
	var sess models.Session
	err := r.db.GetContext(ctx, &sess, `INSERT INTO sessions (id, user_id, expires_at) VALUES ($1, $2, $3)
        RETURNING id, user_id, expires_at, created_at`, id, userID, expiresAt)
	return sess, err
}

// GetSession returns the session if it exists and has not expired.
func (r *SessionRepo) GetSession(ctx context.Context, id string) (models.Session, error) {
	var sess models.Session
	err := r.db.GetContext(ctx, &sess, `SELECT id, user_id, expires_at, created_at
        FROM sessions WHERE id=$1 AND expires_at > NOW()`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Session{}, ErrSessionNotFound
	}
	return sess, err
}

// DeleteSession removes a session row. Deleting a missing session is a no-op.
func (r *SessionRepo) DeleteSession(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM sessions WHERE id=$1`, id)
	return err
}
