package models

import "time"

// Urgency tiers. Each tier adds a fixed surcharge on top of the base fee
// and moves the errand up in the open listing.
const (
	UrgencyNormal      = "normal"
	UrgencyUrgent      = "urgent"
	UrgencySuperUrgent = "super-urgent"
)

// Errand lifecycle statuses. Only waiting and matched are reachable today;
// the rest are reserved for progress/completion transitions.
const (
	StatusWaiting    = "waiting"
	StatusMatched    = "matched"
	StatusInProgress = "in-progress"
	StatusCompleted  = "completed"
	StatusCancelled  = "cancelled"
)

// BaseFee is the flat fee in KRW charged for every errand.
const BaseFee = 3000

var urgencySurcharge = map[string]int{
	UrgencyNormal:      0,
	UrgencyUrgent:      1000,
	UrgencySuperUrgent: 2000,
}

// ValidUrgency reports whether u names a known urgency tier.
func ValidUrgency(u string) bool {
	_, ok := urgencySurcharge[u]
	return ok
}

// TotalPrice is the single source of truth for errand pricing:
// base fee + urgency surcharge + tip.
func TotalPrice(urgency string, tip int) int {
	return BaseFee + urgencySurcharge[urgency] + tip
}

// UrgencyRank orders tiers for listing, most urgent first.
func UrgencyRank(urgency string) int {
	switch urgency {
	case UrgencySuperUrgent:
		return 1
	case UrgencyUrgent:
		return 2
	default:
		return 3
	}
}

// Errand is a task a requester posts for a runner to fulfill.
type Errand struct {
	ID                   int       `db:"id" json:"id"`
	Title                string    `db:"title" json:"title"`
	Description          string    `db:"description" json:"description"`
	StartLocationLat     *float64  `db:"start_location_lat" json:"startLocationLat"`
	StartLocationLng     *float64  `db:"start_location_lng" json:"startLocationLng"`
	StartLocationAddress *string   `db:"start_location_address" json:"startLocationAddress"`
	EndLocationLat       *float64  `db:"end_location_lat" json:"endLocationLat"`
	EndLocationLng       *float64  `db:"end_location_lng" json:"endLocationLng"`
	EndLocationAddress   *string   `db:"end_location_address" json:"endLocationAddress"`
	Urgency              string    `db:"urgency" json:"urgency"`
	Tip                  int       `db:"tip" json:"tip"`
	Status               string    `db:"status" json:"status"`
	RequesterID          string    `db:"requester_id" json:"requesterId"`
	RunnerID             *string   `db:"runner_id" json:"runnerId"`
	EstimatedDistance    *int      `db:"estimated_distance" json:"estimatedDistance"`
	EstimatedTime        *int      `db:"estimated_time" json:"estimatedTime"`
	CreatedAt            time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt            time.Time `db:"updated_at" json:"updatedAt"`
}

// TotalPrice returns the displayed price for this errand.
func (e Errand) TotalPrice() int {
	return TotalPrice(e.Urgency, e.Tip)
}

// ErrandWithRequester joins an errand with its requester's public profile.
type ErrandWithRequester struct {
	Errand
	Requester User `db:"requester" json:"requester"`
}

// NewErrand carries the caller-supplied fields for creating an errand.
// Status and runner are never caller-controlled.
type NewErrand struct {
	Title                string
	Description          string
	StartLocationLat     *float64
	StartLocationLng     *float64
	StartLocationAddress *string
	EndLocationLat       *float64
	EndLocationLng       *float64
	EndLocationAddress   *string
	Urgency              string
	Tip                  int
	EstimatedDistance    *int
	EstimatedTime        *int
}
