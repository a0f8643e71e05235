package model

import (
	"time"

	"github.com/google/uuid"
)

// UserStats aggregates betting activity per user. Maintained by the betting
// service on placement/resolution and read by achievement predicates.
type UserStats struct {
	UserID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"user_id"`
	BetsPlaced    int64     `gorm:"default:0" json:"bets_placed"`
	BetsWon       int64     `gorm:"default:0" json:"bets_won"`
	BetsLost      int64     `gorm:"default:0" json:"bets_lost"`
	CurrentStreak int64     `gorm:"default:0" json:"current_streak"`
	BestStreak    int64     `gorm:"default:0" json:"best_streak"`
	TotalWagered  int64     `gorm:"default:0" json:"total_wagered"`
	TotalWon      int64     `gorm:"default:0" json:"total_won"`
	LastUpdatedAt time.Time `gorm:"autoUpdateTime" json:"last_updated_at"`
}
