package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type BetStatus string

const (
	BetStatusPending BetStatus = "pending"
	BetStatusWon     BetStatus = "won"
	BetStatusLost    BetStatus = "lost"
	// Cancelled is only reachable through the place-bet compensating path,
	// never from a persisted pending bet.
	BetStatusCancelled BetStatus = "cancelled"
	// Refunded marks pending bets whose prediction was cancelled by an admin.
	BetStatusRefunded BetStatus = "refunded"
)

func (s BetStatus) Terminal() bool {
	return s != BetStatusPending
}

type PredictionStatus string

const (
	PredictionStatusOpen      PredictionStatus = "open"
	PredictionStatusResolved  PredictionStatus = "resolved"
	PredictionStatusCancelled PredictionStatus = "cancelled"
)

// Prediction is the market bets are placed against. OddsBps is the payout
// multiplier in basis points (20000 = 2x stake).
type Prediction struct {
	ID        uuid.UUID        `gorm:"type:uuid;primaryKey" json:"id"`
	Title     string           `gorm:"size:255;not null" json:"title"`
	Choices   string           `gorm:"type:text;not null" json:"choices"`
	OddsBps   int64            `gorm:"not null;default:20000" json:"odds_bps"`
	Status    PredictionStatus `gorm:"size:20;default:open" json:"status"`
	Outcome   *string          `gorm:"size:100" json:"outcome,omitempty"`
	ClosesAt  *time.Time       `json:"closes_at,omitempty"`
	CreatedAt time.Time        `gorm:"autoCreateTime" json:"created_at"`
}

func (p *Prediction) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

type Bet struct {
	ID           uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	UserID       uuid.UUID  `gorm:"type:uuid;index;not null" json:"user_id"`
	PredictionID uuid.UUID  `gorm:"type:uuid;index;not null" json:"prediction_id"`
	Amount       int64      `gorm:"not null" json:"amount"`
	Choice       string     `gorm:"size:100;not null" json:"choice"`
	Status       BetStatus  `gorm:"size:20;default:pending;index" json:"status"`
	Payout       int64      `gorm:"default:0" json:"payout"`
	PlacedAt     time.Time  `gorm:"autoCreateTime" json:"placed_at"`
	ResolvedAt   *time.Time `json:"resolved_at,omitempty"`
}

func (b *Bet) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}
