package models

import "time"

// Plan is a subscription plan.
type Plan string

const (
	// PlanFree is metered by the daily quota.
	PlanFree Plan = "free"
	// PlanPro is never metered.
	PlanPro Plan = "pro"
)

// Favorite associates a user with a saved fault code.
type Favorite struct {
	UserID    string    `json:"userId"`
	FaultID   string    `json:"faultId"`
	CreatedAt time.Time `json:"createdAt"`
}
