package model

import (
	"time"

	"github.com/google/uuid"
)

// UserBalance holds the current balance per (user, point type) pair.
// Invariant: Balance = TotalEarned - TotalSpent and Balance >= 0, reconciled
// on every mutation inside LedgerRepository.AtomicMutate.
type UserBalance struct {
	UserID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"user_id"`
	PointTypeSlug string    `gorm:"size:50;primaryKey" json:"point_type_slug"`
	Balance       int64     `gorm:"not null;default:0" json:"balance"`
	TotalEarned   int64     `gorm:"not null;default:0" json:"total_earned"`
	TotalSpent    int64     `gorm:"not null;default:0" json:"total_spent"`
	UpdatedAt     time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

type TransactionKind string

const (
	TransactionKindEarn     TransactionKind = "earn"
	TransactionKindSpend    TransactionKind = "spend"
	TransactionKindAdjust   TransactionKind = "adjust"
	TransactionKindPurchase TransactionKind = "purchase"
	TransactionKindRefund   TransactionKind = "refund"
)

// Credits reports whether the kind moves the balance up. Adjust carries its
// own sign and is handled by the caller.
func (k TransactionKind) Credits() bool {
	switch k {
	case TransactionKindEarn, TransactionKindPurchase, TransactionKindRefund:
		return true
	}
	return false
}

// Transaction is the append-only audit trail. Rows are never updated or
// deleted; Amount is the unsigned magnitude and Kind carries the direction.
type Transaction struct {
	ID            uint            `gorm:"primaryKey" json:"id"`
	UserID        uuid.UUID       `gorm:"type:uuid;index:idx_tx_user_type,priority:1;not null" json:"user_id"`
	PointTypeSlug string          `gorm:"size:50;index:idx_tx_user_type,priority:2;not null" json:"point_type_slug"`
	Kind          TransactionKind `gorm:"size:20;not null" json:"kind"`
	Amount        int64           `gorm:"not null" json:"amount"`
	BalanceBefore int64           `gorm:"not null" json:"balance_before"`
	BalanceAfter  int64           `gorm:"not null" json:"balance_after"`
	Reason        string          `gorm:"size:255" json:"reason"`
	ReferenceType *string         `gorm:"size:50;index:idx_tx_reference,priority:1" json:"reference_type,omitempty"`
	ReferenceID   *string         `gorm:"size:64;index:idx_tx_reference,priority:2" json:"reference_id,omitempty"`
	AdminID       *uuid.UUID      `gorm:"type:uuid" json:"admin_id,omitempty"`
	CreatedAt     time.Time       `gorm:"index:idx_tx_user_type,priority:3;autoCreateTime" json:"created_at"`
}

// Reference ties a transaction to the entity that caused it ("bet", bet id).
type Reference struct {
	Type string
	ID   string
}

const (
	ReferenceTypeBet         = "bet"
	ReferenceTypeEarningRule = "earning_rule"
	ReferenceTypeAchievement = "achievement"
	ReferenceTypePrediction  = "prediction"
)
