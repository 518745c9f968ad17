package models

import "time"

// User is a marketplace participant, created on first OAuth sign-in.
type User struct {
	ID               string    `db:"id" json:"id"`
	Email            *string   `db:"email" json:"email"`
	FirstName        *string   `db:"first_name" json:"firstName"`
	LastName         *string   `db:"last_name" json:"lastName"`
	ProfileImageURL  *string   `db:"profile_image_url" json:"profileImageUrl"`
	Location         string    `db:"location" json:"location"`
	MaxDistance      int       `db:"max_distance" json:"maxDistance"`
	Rating           string    `db:"rating" json:"rating"`
	CompletedErrands int       `db:"completed_errands" json:"completedErrands"`
	CreatedAt        time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt        time.Time `db:"updated_at" json:"updatedAt"`
}

// UpsertUser carries the identity fields supplied by the OAuth provider.
// Everything else on the user row keeps its stored value.
type UpsertUser struct {
	ID              string
	Email           *string
	FirstName       *string
	LastName        *string
	ProfileImageURL *string
}
