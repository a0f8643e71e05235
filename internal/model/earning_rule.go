package model

import "time"

// Trigger actions emitted by the primary operations and consumed by the
// earning rule engine. Kept as an explicit enumerated set instead of an
// event bus.
const (
	TriggerUserRegistered = "user_registered"
	TriggerUserLogin      = "user_login"
	TriggerBetPlaced      = "bet_placed"
	TriggerBetWon         = "bet_won"
	TriggerProfileUpdated = "profile_updated"
)

// EarningRule maps a trigger action to a point award. Lower Priority runs
// first. Nil caps mean unlimited.
type EarningRule struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	Name           string    `gorm:"size:100;not null" json:"name"`
	TriggerAction  string    `gorm:"size:50;index;not null" json:"trigger_action"`
	PointTypeSlug  string    `gorm:"size:50;not null" json:"point_type_slug"`
	PointsAwarded  int64     `gorm:"not null" json:"points_awarded"`
	MaxDailyAwards *int      `json:"max_daily_awards,omitempty"`
	MaxTotalAwards *int      `json:"max_total_awards,omitempty"`
	Priority       int       `gorm:"default:10" json:"priority"`
	Active         bool      `gorm:"default:true" json:"active"`
	CreatedAt      time.Time `gorm:"autoCreateTime" json:"created_at"`
}
