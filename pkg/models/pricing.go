package models

import (
	"time"

	"github.com/rs/xid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// PriceHistory is an append-only price point for an asset. Rows are never
// mutated or deleted.
type PriceHistory struct {
	ID        string          `gorm:"primaryKey" json:"id"`
	AssetID   string          `gorm:"not null;index" json:"asset_id"`
	Price     decimal.Decimal `gorm:"type:decimal(20,8);not null" json:"price"`
	Timestamp time.Time       `gorm:"index" json:"timestamp"`
	Source    *string         `json:"source,omitempty"` // e.g. "api", "manual", "oracle"

	// Relationships
	Asset Asset `gorm:"foreignKey:AssetID" json:"-"`
}

// BeforeCreate hook for PriceHistory
func (p *PriceHistory) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = xid.New().String()
	}
	if p.Timestamp.IsZero() {
		p.Timestamp = time.Now().UTC()
	}
	return nil
}

func (PriceHistory) TableName() string { return "price_history" }
