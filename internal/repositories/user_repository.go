package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"github.com/answjddnjs04/errand-app/internal/models"
)

var ErrUserNotFound = errors.New("user not found")

// UserRepository abstracts user persistence.
type UserRepository interface {
	GetUser(ctx context.Context, id string) (models.User, error)
	UpsertUser(ctx context.Context, u models.UpsertUser) (models.User, error)
	UpdateProfile(ctx context.Context, id string, location *string, maxDistance *int) (models.User, error)
}

// UserRepo is a sqlx implementation of UserRepository.
type UserRepo struct {
	db *sqlx.DB
}

// NewUserRepo constructs a UserRepo.
func NewUserRepo(db *sqlx.DB) *UserRepo {
	return &UserRepo{db: db}
}

const userColumns = `id, email, first_name, last_name, profile_image_url, location, max_distance, rating, completed_errands, created_at, updated_at`

// GetUser fetches a user by id.
func (r *UserRepo) GetUser(ctx context.Context, id string) (models.User, error) {
	var user models.User
	err := r.db.GetContext(ctx, &user, `SELECT `+userColumns+` FROM users WHERE id=$1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return models.User{}, ErrUserNotFound
	}
	return user, err
}

// UpsertUser creates the user on first sign-in and refreshes the display
// fields on every later sign-in. Marketplace fields keep their stored values.
func (r *UserRepo) UpsertUser(ctx context.Context, u models.UpsertUser) (models.User, error) {
	var user models.User
	err := r.db.GetContext(ctx, &user, `INSERT INTO users (id, email, first_name, last_name, profile_image_url)
        VALUES ($1, $2, $3, $4, $5)
        ON CONFLICT (id) DO UPDATE SET
            email = EXCLUDED.email,
            first_name = EXCLUDED.first_name,
            last_name = EXCLUDED.last_name,
            profile_image_url = EXCLUDED.profile_image_url,
            updated_at = NOW()
        RETURNING `+userColumns,
		u.ID, u.Email, u.FirstName, u.LastName, u.ProfileImageURL)
	return user, err
}

// UpdateProfile applies a partial update; nil fields keep their stored values.
func (r *UserRepo) UpdateProfile(ctx context.Context, id string, location *string, maxDistance *int) (models.User, error) {
	var user models.User
	err := r.db.GetContext(ctx, &user, `UPDATE users SET
            location = COALESCE($2, location),
            max_distance = COALESCE($3, max_distance),
            updated_at = NOW()
        WHERE id=$1
        RETURNING `+userColumns, id, location, maxDistance)
	if errors.Is(err, sql.ErrNoRows) {
		return models.User{}, ErrUserNotFound
	}
	return user, err
}
