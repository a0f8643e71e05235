package model

import "time"

// PointType defines a currency managed by the ledger (e.g. betcoins, experience).
// DecimalPlaces is presentation-only: every amount is stored as int64 minor units.
type PointType struct {
	Slug          string    `gorm:"size:50;primaryKey" json:"slug"`
	Name          string    `gorm:"size:100;not null" json:"name"`
	Icon          string    `gorm:"type:text" json:"icon"`
	DecimalPlaces int       `gorm:"default:0" json:"decimal_places"`
	Active        bool      `gorm:"default:true" json:"active"`
	CreatedAt     time.Time `gorm:"autoCreateTime" json:"created_at"`
}

const (
	PointTypeBetcoins   = "betcoins"
	PointTypeExperience = "experience"
)
