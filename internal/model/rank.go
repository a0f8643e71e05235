package model

import (
	"time"

	"github.com/google/uuid"
)

// Rank is a tier in the static experience ladder. Ordered by PointsRequired
// ascending; OrderPosition breaks ties.
type Rank struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	Slug           string    `gorm:"size:50;uniqueIndex;not null" json:"slug"`
	Name           string    `gorm:"size:100;not null" json:"name"`
	Icon           string    `gorm:"type:text" json:"icon"`
	BadgeColor     string    `gorm:"size:20" json:"badge_color"`
	PointsRequired int64     `gorm:"not null" json:"points_required"`
	OrderPosition  int       `gorm:"not null" json:"order_position"`
	CreatedAt      time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// UserRank is one row per user, updated in place on rank change.
type UserRank struct {
	UserID     uuid.UUID `gorm:"type:uuid;primaryKey" json:"user_id"`
	RankID     uint      `gorm:"not null" json:"rank_id"`
	Rank       Rank      `gorm:"foreignKey:RankID" json:"rank"`
	AchievedAt time.Time `gorm:"autoUpdateTime" json:"achieved_at"`
}
