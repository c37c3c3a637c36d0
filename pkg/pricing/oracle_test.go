package pricing

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vwa-api/pkg/models"
)

func TestQuoteAt_Deterministic(t *testing.T) {
	ts := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	q1, ok := QuoteAt(models.AssetTypeGold, ts)
	require.True(t, ok)
	q2, ok := QuoteAt(models.AssetTypeGold, ts)
	require.True(t, ok)

	assert.True(t, q1.Price.Equal(q2.Price), "same instant must yield the same quote")
	assert.Equal(t, q1.Change24h, q2.Change24h)
}

func TestQuoteAt_VariationBounds(t *testing.T) {
	base := decimal.NewFromInt(2000)
	low := base.Mul(decimal.NewFromFloat(1 - maxVariation))
	high := base.Mul(decimal.NewFromFloat(1 + maxVariation))

	for i := 0; i < 200; i++ {
		ts := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC).Add(time.Duration(i) * time.Minute)
		q, ok := QuoteAt(models.AssetTypeGold, ts)
		require.True(t, ok)

		assert.True(t, q.Price.GreaterThanOrEqual(low.Round(2)), "price %s below bound at %s", q.Price, ts)
		assert.True(t, q.Price.LessThanOrEqual(high.Round(2)), "price %s above bound at %s", q.Price, ts)
		assert.GreaterOrEqual(t, q.Change24h, -maxVariation*100)
		assert.LessOrEqual(t, q.Change24h, maxVariation*100)
	}
}

func TestQuoteAt_UnknownType(t *testing.T) {
	_, ok := QuoteAt(models.AssetType("uranium"), time.Now())
	assert.False(t, ok)
}

func TestQuotesAt_CoversAllTypes(t *testing.T) {
	quotes := QuotesAt(time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC))
	require.Len(t, quotes, len(models.AllAssetTypes))

	seen := map[models.AssetType]bool{}
	for _, q := range quotes {
		seen[q.AssetType] = true
		assert.True(t, q.Price.IsPositive())
	}
	for _, at := range models.AllAssetTypes {
		assert.True(t, seen[at], "missing quote for %s", at)
	}
}

func TestBasePrice(t *testing.T) {
	price, ok := BasePrice(models.AssetTypeSilver)
	require.True(t, ok)
	assert.True(t, price.Equal(decimal.NewFromInt(25)))

	_, ok = BasePrice(models.AssetType("mithril"))
	assert.False(t, ok)
}

func TestAssetSeed_VariesPerAsset(t *testing.T) {
	ts := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	assert.NotEqual(t, assetSeed(ts, "asset-a"), assetSeed(ts, "asset-b"))
	assert.Equal(t, assetSeed(ts, "asset-a"), assetSeed(ts, "asset-a"))
}
