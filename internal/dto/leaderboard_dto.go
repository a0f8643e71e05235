package dto

import "github.com/google/uuid"

type LeaderboardEntry struct {
	Position    int       `json:"position"`
	UserID      uuid.UUID `json:"user_id"`
	Username    string    `json:"username"`
	Balance     int64     `json:"balance"`
	TotalEarned int64     `json:"total_earned"`
}
