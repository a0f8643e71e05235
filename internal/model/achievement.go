package model

import (
	"time"

	"github.com/google/uuid"
)

// Achievement condition types evaluated against UserStats.
const (
	ConditionBetsPlaced   = "bets_placed"
	ConditionBetsWon      = "bets_won"
	ConditionWinStreak    = "win_streak"
	ConditionTotalWagered = "total_wagered"
	ConditionTotalWon     = "total_won"
	ConditionExperience   = "experience"
)

type Achievement struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	Slug          string    `gorm:"size:50;uniqueIndex;not null" json:"slug"`
	Name          string    `gorm:"size:100;not null" json:"name"`
	Description   string    `gorm:"type:text" json:"description"`
	Icon          string    `gorm:"type:text" json:"icon"`
	ConditionType string    `gorm:"size:50;not null" json:"condition_type"`
	Threshold     int64     `gorm:"not null" json:"threshold"`
	PointsReward  int64     `gorm:"default:0" json:"points_reward"`
	RewardType    string    `gorm:"size:50;default:betcoins" json:"reward_type"`
	IsSecret      bool      `gorm:"default:false" json:"is_secret"`
	Active        bool      `gorm:"default:true" json:"active"`
	CreatedAt     time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// UserAchievement is unique per (user, achievement); the unique index makes
// awarding idempotent.
type UserAchievement struct {
	ID            uint        `gorm:"primaryKey" json:"id"`
	UserID        uuid.UUID   `gorm:"type:uuid;uniqueIndex:idx_user_achievement;not null" json:"user_id"`
	AchievementID uint        `gorm:"uniqueIndex:idx_user_achievement;not null" json:"achievement_id"`
	Achievement   Achievement `gorm:"foreignKey:AchievementID" json:"achievement"`
	UnlockedAt    time.Time   `gorm:"autoCreateTime" json:"unlocked_at"`
}
