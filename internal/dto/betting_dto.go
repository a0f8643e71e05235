package dto

import (
	"time"

	"github.com/google/uuid"
)

type PlaceBetRequest struct {
	PredictionID uuid.UUID `json:"prediction_id" binding:"required"`
	Amount       int64     `json:"amount" binding:"required,gt=0"`
	Choice       string    `json:"choice" binding:"required"`
}

type ResolveBetRequest struct {
	Outcome string `json:"outcome" binding:"required"`
}

type CreatePredictionRequest struct {
	Title    string     `json:"title" binding:"required,max=255"`
	Choices  []string   `json:"choices" binding:"required,min=2"`
	OddsBps  int64      `json:"odds_bps" binding:"required,gt=10000"`
	ClosesAt *time.Time `json:"closes_at"`
}
