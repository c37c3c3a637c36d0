package models

import (
	"time"

	"github.com/rs/xid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// AssetType enumerates the supported precious asset materials
type AssetType string

const (
	AssetTypeGold      AssetType = "gold"
	AssetTypeSilver    AssetType = "silver"
	AssetTypePlatinum  AssetType = "platinum"
	AssetTypePalladium AssetType = "palladium"
	AssetTypeDiamond   AssetType = "diamond"
	AssetTypeRuby      AssetType = "ruby"
	AssetTypeEmerald   AssetType = "emerald"
	AssetTypeSapphire  AssetType = "sapphire"
)

// AllAssetTypes lists every supported asset type in a stable order.
var AllAssetTypes = []AssetType{
	AssetTypeGold,
	AssetTypeSilver,
	AssetTypePlatinum,
	AssetTypePalladium,
	AssetTypeDiamond,
	AssetTypeRuby,
	AssetTypeEmerald,
	AssetTypeSapphire,
}

// IsValid reports whether t is one of the supported asset types.
func (t AssetType) IsValid() bool {
	for _, known := range AllAssetTypes {
		if t == known {
			return true
		}
	}
	return false
}

// Asset represents a tokenized precious asset owned by a single user
type Asset struct {
	ID            string          `gorm:"primaryKey" json:"id"`
	OwnerID       string          `gorm:"not null;index" json:"owner_id"`
	AssetType     AssetType       `gorm:"not null;index" json:"asset_type"`
	Weight        decimal.Decimal `gorm:"type:decimal(20,8);not null" json:"weight"` // grams
	Purity        decimal.Decimal `gorm:"type:decimal(5,2);not null" json:"purity"`  // percentage 0-100
	Certification *string         `gorm:"type:text" json:"certification,omitempty"`
	CurrentPrice  decimal.Decimal `gorm:"type:decimal(20,8);not null" json:"current_price"` // USD
	IsActive      bool            `gorm:"default:true" json:"is_active"`

	// Chain-specific identifiers, populated once the asset is minted
	MintAddress  *string `gorm:"unique" json:"mint_address,omitempty"`
	TokenAccount *string `json:"token_account,omitempty"`

	CreatedAt       time.Time  `json:"created_at"`
	LastPriceUpdate *time.Time `json:"last_price_update,omitempty"`

	// Relationships
	Owner        User           `gorm:"foreignKey:OwnerID" json:"-"`
	TradeOrders  []TradeOrder   `gorm:"foreignKey:AssetID" json:"trade_orders,omitempty"`
	PriceHistory []PriceHistory `gorm:"foreignKey:AssetID" json:"price_history,omitempty"`
}

// BeforeCreate hook for Asset
func (a *Asset) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = xid.New().String()
	}
	return nil
}

func (Asset) TableName() string { return "assets" }
