package models

import (
	"time"

	"github.com/rs/xid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// OrderStatus represents the status of a trade order
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusFilled    OrderStatus = "filled"
	OrderStatusCancelled OrderStatus = "cancelled"
	// OrderStatusExpired is declared for schema compatibility. No code path
	// sets it; orders would only expire via an external time-based sweep.
	OrderStatusExpired OrderStatus = "expired"
)

// IsValid reports whether s is a known order status.
func (s OrderStatus) IsValid() bool {
	switch s {
	case OrderStatusPending, OrderStatusFilled, OrderStatusCancelled, OrderStatusExpired:
		return true
	}
	return false
}

// IsTerminal reports whether no further transition may leave s.
func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusFilled || s == OrderStatusCancelled || s == OrderStatusExpired
}

// OrderType represents the side of a trade order
type OrderType string

const (
	OrderTypeBuy  OrderType = "buy"
	OrderTypeSell OrderType = "sell"
)

// IsValid reports whether t is a known order type.
func (t OrderType) IsValid() bool {
	return t == OrderTypeBuy || t == OrderTypeSell
}

// TradeOrder represents a buy or sell order against a specific asset
type TradeOrder struct {
	ID           string          `gorm:"primaryKey" json:"id"`
	AssetID      string          `gorm:"not null;index" json:"asset_id"`
	OwnerID      string          `gorm:"not null;index" json:"owner_id"`
	OrderType    OrderType       `gorm:"not null" json:"order_type"`
	Quantity     decimal.Decimal `gorm:"type:decimal(20,8);not null" json:"quantity"`
	PricePerUnit decimal.Decimal `gorm:"type:decimal(20,8);not null" json:"price_per_unit"`
	Status       OrderStatus     `gorm:"not null;default:'pending';index" json:"status"`
	ExpiresAt    *time.Time      `json:"expires_at,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`

	// Relationships
	Asset Asset `gorm:"foreignKey:AssetID" json:"-"`
	Owner User  `gorm:"foreignKey:OwnerID" json:"-"`
}

// BeforeCreate hook for TradeOrder
func (o *TradeOrder) BeforeCreate(tx *gorm.DB) error {
	if o.ID == "" {
		o.ID = xid.New().String()
	}
	if o.Status == "" {
		o.Status = OrderStatusPending
	}
	return nil
}

func (TradeOrder) TableName() string { return "trade_orders" }
