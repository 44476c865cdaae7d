package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/internal/apperr"
)

func TestProductMarshalJSON(t *testing.T) {
	created := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	alt := "front"
	p := Product{
		Base:          Base{ID: 7, CreatedAt: created, UpdatedAt: created},
		Name:          "Silk Dress",
		Description:   "Evening wear",
		Price:         decimal.RequireFromString("129.5"),
		Image:         "/static/img/silk.jpg",
		CategoryID:    2,
		Category:      &Category{ID: 2, Name: "Dresses"},
		IsFeatured:    true,
		StockQuantity: 4,
		Images: []ProductImage{
			{ID: 1, ProductID: 7, ImageURL: "/static/img/silk-1.jpg", IsPrimary: true, AltText: &alt, CreatedAt: created},
		},
	}

	raw, err := json.Marshal(p)
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal(raw, &got))
	assert.Equal(t, 129.5, got["price"])
	assert.Contains(t, string(raw), `"price":129.50`)
	assert.Equal(t, "Dresses", got["category_name"])
	assert.Equal(t, float64(2), got["category_id"])
	assert.Equal(t, "2024-03-01T10:00:00Z", got["created_at"])

	images := got["images"].([]any)
	require.Len(t, images, 1)
	img := images[0].(map[string]any)
	assert.Equal(t, "/static/img/silk-1.jpg", img["image_url"])
	assert.Equal(t, "front", img["alt_text"])
	assert.Equal(t, true, img["is_primary"])
}

func TestProductMarshalJSON_NoCategoryNoImages(t *testing.T) {
	raw, err := json.Marshal(Product{Name: "Plain", Price: decimal.NewFromInt(3)})
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"category_name":null`)
	assert.Contains(t, string(raw), `"images":[]`)
	assert.Contains(t, string(raw), `"price":3.00`)
}

func TestProductBeforeSave(t *testing.T) {
	p := &Product{Price: decimal.RequireFromString("-1")}
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(p.BeforeSave(nil)))

	p = &Product{Price: decimal.NewFromInt(1), StockQuantity: -2}
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(p.BeforeSave(nil)))

	p = &Product{Price: decimal.RequireFromString("9.999")}
	require.NoError(t, p.BeforeSave(nil))
	assert.Equal(t, "10.00", p.Price.StringFixed(2))
}
