// Package pricing produces mock market quotes and maintains per-asset price
// history. Quotes substitute for a real market feed: each one is a fixed base
// price per material with a bounded pseudo-random variation.
package pricing

import (
	"hash/fnv"
	"math/rand"
	"time"

	"github.com/shopspring/decimal"

	"vwa-api/pkg/models"
)

// Base prices in USD per unit, one per supported material.
var basePrices = map[models.AssetType]decimal.Decimal{
	models.AssetTypeGold:      decimal.NewFromInt(2000),
	models.AssetTypeSilver:    decimal.NewFromInt(25),
	models.AssetTypePlatinum:  decimal.NewFromInt(1000),
	models.AssetTypePalladium: decimal.NewFromInt(2000),
	models.AssetTypeDiamond:   decimal.NewFromInt(5000),
	models.AssetTypeRuby:      decimal.NewFromInt(1000),
	models.AssetTypeEmerald:   decimal.NewFromInt(800),
	models.AssetTypeSapphire:  decimal.NewFromInt(600),
}

// maxVariation bounds the mock quote movement to ±5%.
const maxVariation = 0.05

// Quote is a mock market price for one asset type.
type Quote struct {
	AssetType   models.AssetType `json:"asset_type"`
	Price       decimal.Decimal  `json:"price"`
	Change24h   float64          `json:"change_24h"`
	Volume24h   decimal.Decimal  `json:"volume_24h"`
	LastUpdated time.Time        `json:"last_updated"`
}

// BasePrice returns the base price for t and whether t is known.
func BasePrice(t models.AssetType) (decimal.Decimal, bool) {
	price, ok := basePrices[t]
	return price, ok
}

// variationAt draws a uniform variation in [-maxVariation, +maxVariation]
// from an explicitly seeded generator, so identical seeds yield identical
// quotes.
func variationAt(seed int64) float64 {
	rng := rand.New(rand.NewSource(seed))
	return (rng.Float64()*2 - 1) * maxVariation
}

// assetSeed mixes the timestamp with the asset id so a bulk repricing pass
// moves each asset independently.
func assetSeed(ts time.Time, assetID string) int64 {
	h := fnv.New64a()
	h.Write([]byte(assetID))
	return ts.Unix() + int64(h.Sum64())
}

// QuoteAt computes the mock quote for t at the given instant. The second
// return value is false for unknown asset types.
func QuoteAt(t models.AssetType, ts time.Time) (Quote, bool) {
	base, ok := basePrices[t]
	if !ok {
		return Quote{}, false
	}

	variation := variationAt(ts.Unix())
	price := base.Mul(decimal.NewFromFloat(1 + variation)).Round(2)

	return Quote{
		AssetType:   t,
		Price:       price,
		Change24h:   roundTo(variation*100, 2),
		Volume24h:   decimal.NewFromInt(1000), // mock volume
		LastUpdated: ts,
	}, true
}

// QuotesAt computes mock quotes for every supported asset type.
func QuotesAt(ts time.Time) []Quote {
	quotes := make([]Quote, 0, len(models.AllAssetTypes))
	for _, t := range models.AllAssetTypes {
		if q, ok := QuoteAt(t, ts); ok {
			quotes = append(quotes, q)
		}
	}
	return quotes
}

func roundTo(v float64, places int32) float64 {
	f, _ := decimal.NewFromFloat(v).Round(places).Float64()
	return f
}
