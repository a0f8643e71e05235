package dto

import "github.com/google/uuid"

type AdjustRequest struct {
	UserID    uuid.UUID `json:"user_id" binding:"required"`
	PointType string    `json:"point_type" binding:"required"`
	// Amount is signed: positive credits, negative debits.
	Amount int64  `json:"amount" binding:"required"`
	Reason string `json:"reason" binding:"required,max=255"`
}

type PurchaseRequest struct {
	UserID uuid.UUID `json:"user_id" binding:"required"`
	// Amount in betcoins, already verified against the payment by the
	// payment collaborator.
	Amount    int64  `json:"amount" binding:"required,gt=0"`
	PaymentID string `json:"payment_id" binding:"required"`
}

type BalanceResponse struct {
	PointType   string `json:"point_type"`
	Balance     int64  `json:"balance"`
	TotalEarned int64  `json:"total_earned"`
	TotalSpent  int64  `json:"total_spent"`
}

type TriggerRequest struct {
	Action  string         `json:"action" binding:"required"`
	Context map[string]any `json:"context"`
}
