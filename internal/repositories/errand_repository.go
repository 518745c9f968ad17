package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/answjddnjs04/errand-app/internal/models"
)

var (
	ErrErrandNotFound    = errors.New("errand not found")
	ErrErrandUnavailable = errors.New("errand is no longer available")
	ErrSelfAccept        = errors.New("cannot accept own errand")
)

// ErrandFilters narrows the open-errand listing. Distance filters are
// accepted for API compatibility but not applied: there is no geo backend
// in this service.
type ErrandFilters struct {
	Urgency     string
	MaxDistance *int
	UserLat     *float64
	UserLng     *float64
}

// ErrandRepository abstracts errand persistence and the accept transition.
type ErrandRepository interface {
	CreateErrand(ctx context.Context, requesterID string, in models.NewErrand) (models.Errand, error)
	ListOpenErrands(ctx context.Context, filters ErrandFilters) ([]models.ErrandWithRequester, error)
	GetErrand(ctx context.Context, id int) (models.ErrandWithRequester, error)
	AcceptErrand(ctx context.Context, id int, runnerID string) (models.Errand, models.ChatRoom, error)
	ListUserErrands(ctx context.Context, userID string, role string) ([]models.ErrandWithRequester, error)
}

// ErrandRepo is a sqlx implementation of ErrandRepository.
type ErrandRepo struct {
	db *sqlx.DB
}

// NewErrandRepo constructs an ErrandRepo.
func NewErrandRepo(db *sqlx.DB) *ErrandRepo {
	return &ErrandRepo{db: db}
}

const errandColumns = `id, title, description, start_location_lat, start_location_lng, start_location_address,
    end_location_lat, end_location_lng, end_location_address, urgency, tip, status,
    requester_id, runner_id, estimated_distance, estimated_time, created_at, updated_at`

const errandJoinColumns = `e.id, e.title, e.description, e.start_location_lat, e.start_location_lng, e.start_location_address,
    e.end_location_lat, e.end_location_lng, e.end_location_address, e.urgency, e.tip, e.status,
    e.requester_id, e.runner_id, e.estimated_distance, e.estimated_time, e.created_at, e.updated_at,
    u.id AS "requester.id", u.email AS "requester.email", u.first_name AS "requester.first_name",
    u.last_name AS "requester.last_name", u.profile_image_url AS "requester.profile_image_url",
    u.location AS "requester.location", u.max_distance AS "requester.max_distance",
    u.rating AS "requester.rating", u.completed_errands AS "requester.completed_errands",
    u.created_at AS "requester.created_at", u.updated_at AS "requester.updated_at"`

// CreateErrand inserts a new errand. Status and runner are server-controlled:
// every new errand starts waiting with no runner.
func (r *ErrandRepo) CreateErrand(ctx context.Context, requesterID string, in models.NewErrand) (models.Errand, error) {
	var errand models.Errand
	err := r.db.GetContext(ctx, &errand, `INSERT INTO errands
        (title, description, start_location_lat, start_location_lng, start_location_address,
         end_location_lat, end_location_lng, end_location_address, urgency, tip,
         requester_id, estimated_distance, estimated_time)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
        RETURNING `+errandColumns,
		in.Title, in.Description, in.StartLocationLat, in.StartLocationLng, in.StartLocationAddress,
		in.EndLocationLat, in.EndLocationLng, in.EndLocationAddress, in.Urgency, in.Tip,
		requesterID, in.EstimatedDistance, in.EstimatedTime)
	return errand, err
}

// ListOpenErrands returns waiting errands joined with their requester,
// ordered by urgency tier (most urgent first) then recency.
func (r *ErrandRepo) ListOpenErrands(ctx context.Context, filters ErrandFilters) ([]models.ErrandWithRequester, error) {
	query := `SELECT ` + errandJoinColumns + `
        FROM errands e
        JOIN users u ON u.id = e.requester_id
        WHERE e.status = $1 AND ($2 = '' OR e.urgency = $2)
        ORDER BY CASE e.urgency
            WHEN 'super-urgent' THEN 1
            WHEN 'urgent' THEN 2
            ELSE 3
        END, e.created_at DESC`

	errands := []models.ErrandWithRequester{}
	err := r.db.SelectContext(ctx, &errands, query, models.StatusWaiting, filters.Urgency)
	return errands, err
}

// GetErrand fetches one errand joined with its requester.
func (r *ErrandRepo) GetErrand(ctx context.Context, id int) (models.ErrandWithRequester, error) {
	var errand models.ErrandWithRequester
	err := r.db.GetContext(ctx, &errand, `SELECT `+errandJoinColumns+`
        FROM errands e
        JOIN users u ON u.id = e.requester_id
        WHERE e.id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return models.ErrandWithRequester{}, ErrErrandNotFound
	}
	return errand, err
}

// AcceptErrand assigns the runner and creates the errand's single chat room
// in one transaction. The row lock serializes concurrent accepts so exactly
// one caller wins; the loser sees ErrErrandUnavailable.
func (r *ErrandRepo) AcceptErrand(ctx context.Context, id int, runnerID string) (models.Errand, models.ChatRoom, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return models.Errand{}, models.ChatRoom{}, err
	}
	defer tx.Rollback()

	var current models.Errand
	err = tx.GetContext(ctx, &current, `SELECT `+errandColumns+` FROM errands WHERE id=$1 FOR UPDATE`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Errand{}, models.ChatRoom{}, ErrErrandNotFound
	}
	if err != nil {
		return models.Errand{}, models.ChatRoom{}, err
	}
	if current.Status != models.StatusWaiting {
		return models.Errand{}, models.ChatRoom{}, ErrErrandUnavailable
	}
	if current.RequesterID == runnerID {
		return models.Errand{}, models.ChatRoom{}, ErrSelfAccept
	}

	var updated models.Errand
	err = tx.GetContext(ctx, &updated, `UPDATE errands SET runner_id=$1, status=$2, updated_at=NOW()
        WHERE id=$3 RETURNING `+errandColumns, runnerID, models.StatusMatched, id)
	if err != nil {
		return models.Errand{}, models.ChatRoom{}, err
	}

	var room models.ChatRoom
	err = tx.GetContext(ctx, &room, `INSERT INTO chat_rooms (errand_id, requester_id, runner_id)
        VALUES ($1, $2, $3)
        RETURNING id, errand_id, requester_id, runner_id, last_message_at, created_at`,
		id, current.RequesterID, runnerID)
	if err != nil {
		return models.Errand{}, models.ChatRoom{}, err
	}

	if err := tx.Commit(); err != nil {
		return models.Errand{}, models.ChatRoom{}, err
	}
	return updated, room, nil
}

// ListUserErrands returns the caller's errands by role, newest first.
// Role is "requested" (caller posted it) or "accepted" (caller runs it).
func (r *ErrandRepo) ListUserErrands(ctx context.Context, userID string, role string) ([]models.ErrandWithRequester, error) {
	var condition string
	switch role {
	case "requested":
		condition = "e.requester_id = $1"
	case "accepted":
		condition = "e.runner_id = $1"
	default:
		return nil, fmt.Errorf("unknown errand role %q", role)
	}

	query := `SELECT ` + errandJoinColumns + `
        FROM errands e
        JOIN users u ON u.id = e.requester_id
        WHERE ` + condition + `
        ORDER BY e.created_at DESC`

	errands := []models.ErrandWithRequester{}
	err := r.db.SelectContext(ctx, &errands, query, userID)
	return errands, err
}
