package catalog

import (
	"context"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"storefront/internal/apperr"
	"storefront/internal/models"
)

type seedProduct struct {
	name, description, price, image string
	featured                        bool
	stock                           int
}

type seedCategory struct {
	name, description string
	products          []seedProduct
}

var sampleCatalog = []seedCategory{
	{
		name:        "Dresses",
		description: "Day and evening dresses",
		products: []seedProduct{
			{"Silk Evening Dress", "Floor-length silk dress with a draped back.", "189.00", "/static/images/silk-evening-dress.jpg", true, 8},
			{"Linen Summer Dress", "Breathable linen midi dress.", "89.50", "/static/images/linen-summer-dress.jpg", false, 15},
			{"Wrap Dress", "Jersey wrap dress in navy.", "74.99", "/static/images/wrap-dress.jpg", false, 12},
		},
	},
	{
		name:        "Tops",
		description: "Blouses, shirts and knitwear",
		products: []seedProduct{
			{"Cashmere Sweater", "Fine-knit cashmere crew neck.", "149.00", "/static/images/cashmere-sweater.jpg", true, 10},
			{"Cotton Blouse", "Crisp white cotton blouse.", "59.00", "/static/images/cotton-blouse.jpg", false, 20},
		},
	},
	{
		name:        "Accessories",
		description: "Bags, scarves and jewellery",
		products: []seedProduct{
			{"Leather Tote", "Full-grain leather tote bag.", "210.00", "/static/images/leather-tote.jpg", true, 5},
			{"Silk Scarf", "Hand-rolled printed silk scarf.", "45.00", "/static/images/silk-scarf.jpg", false, 30},
		},
	},
}

// Seed fills an empty store with the sample catalog. When any product already
// exists it does nothing and reports false.
func Seed(ctx context.Context, db *gorm.DB, log *zap.Logger) (bool, error) {
	seeded := false
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var n int64
		if err := tx.Model(&models.Product{}).Count(&n).Error; err != nil {
			return err
		}
		if n > 0 {
			return nil
		}

		for _, sc := range sampleCatalog {
			desc := sc.description
			cat := models.Category{Name: sc.name, Description: &desc}
			if err := tx.Where(models.Category{Name: sc.name}).FirstOrCreate(&cat).Error; err != nil {
				return err
			}
			for _, sp := range sc.products {
				p := models.Product{
					Name:          sp.name,
					Description:   sp.description,
					Price:         decimal.RequireFromString(sp.price),
					Image:         sp.image,
					CategoryID:    cat.ID,
					IsFeatured:    sp.featured,
					StockQuantity: sp.stock,
				}
				if err := tx.Create(&p).Error; err != nil {
					return err
				}
				alt := sp.name
				img := models.ProductImage{ProductID: p.ID, ImageURL: sp.image, IsPrimary: true, AltText: &alt}
				if err := tx.Create(&img).Error; err != nil {
					return err
				}
			}
		}
		seeded = true
		return nil
	})
	if err != nil {
		return false, apperr.Storage("seed", err)
	}
	if seeded {
		log.Info("sample catalog seeded", zap.Int("categories", len(sampleCatalog)))
	} else {
		log.Info("catalog already populated, skipping seed")
	}
	return seeded, nil
}
