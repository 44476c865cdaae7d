package models

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"storefront/internal/apperr"
)

// Product is one row of products. Every product belongs to exactly one category.
type Product struct {
	Base
	Name          string          `gorm:"size:200;not null"`
	Description   string          `gorm:"type:text;not null"`
	Price         decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	Image         string          `gorm:"size:500;not null"` // primary image URL
	CategoryID    uint            `gorm:"index;not null"`
	Category      *Category
	IsFeatured    bool `gorm:"not null;default:false"`
	StockQuantity int  `gorm:"not null;default:0"`

	Images []ProductImage `gorm:"constraint:OnDelete:CASCADE"`
}

// BeforeSave keeps price and stock non-negative.
func (p *Product) BeforeSave(*gorm.DB) error {
	if p.Price.IsNegative() {
		return apperr.Invalid("price", "must not be negative")
	}
	if p.StockQuantity < 0 {
		return apperr.Invalid("stock_quantity", "must not be negative")
	}
	p.Price = p.Price.Round(2)
	return nil
}

type productJSON struct {
	ID            uint           `json:"id"`
	Name          string         `json:"name"`
	Description   string         `json:"description"`
	Price         json.Number    `json:"price"`
	Image         string         `json:"image"`
	CategoryID    uint           `json:"category_id"`
	CategoryName  *string        `json:"category_name"`
	IsFeatured    bool           `json:"is_featured"`
	StockQuantity int            `json:"stock_quantity"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	Images        []ProductImage `json:"images"`
}

// MarshalJSON renders the API shape: price as a plain decimal number,
// the category's name alongside its id, images never null.
func (p Product) MarshalJSON() ([]byte, error) {
	out := productJSON{
		ID:            p.ID,
		Name:          p.Name,
		Description:   p.Description,
		Price:         json.Number(p.Price.StringFixed(2)),
		Image:         p.Image,
		CategoryID:    p.CategoryID,
		IsFeatured:    p.IsFeatured,
		StockQuantity: p.StockQuantity,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
		Images:        p.Images,
	}
	if p.Category != nil {
		name := p.Category.Name
		out.CategoryName = &name
	}
	if out.Images == nil {
		out.Images = []ProductImage{}
	}
	return json.Marshal(out)
}
