package models

import (
	"time"

	"github.com/rs/xid"
	"gorm.io/gorm"
)

// User represents a marketplace participant identified by a wallet address.
type User struct {
	ID            string    `gorm:"primaryKey" json:"id"`
	WalletAddress string    `gorm:"unique;not null;index" json:"wallet_address"`
	Username      *string   `gorm:"unique" json:"username,omitempty"`
	Email         *string   `gorm:"unique" json:"email,omitempty"`
	IsActive      bool      `gorm:"default:true" json:"is_active"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`

	// Relationships
	Assets      []Asset      `gorm:"foreignKey:OwnerID" json:"assets,omitempty"`
	TradeOrders []TradeOrder `gorm:"foreignKey:OwnerID" json:"trade_orders,omitempty"`
}

// BeforeCreate hook for User
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = xid.New().String()
	}
	return nil
}

func (User) TableName() string { return "users" }
