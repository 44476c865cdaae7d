package catalog

import (
	"context"
	"errors"
	"strings"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"storefront/internal/apperr"
	"storefront/internal/models"
)

// NewProduct is the input for CreateProduct.
type NewProduct struct {
	Name          string
	Description   string
	Price         decimal.Decimal
	Image         string
	CategoryID    uint
	IsFeatured    bool
	StockQuantity int
}

// ProductChanges lists the fields UpdateProduct may change. Nil fields are
// left alone.
type ProductChanges struct {
	Name          *string
	Description   *string
	Price         *decimal.Decimal
	Image         *string
	IsFeatured    *bool
	StockQuantity *int
}

func (r *Repository) CreateCategory(ctx context.Context, name, description string) (models.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return models.Category{}, apperr.Invalid("name", "is required")
	}
	c := models.Category{Name: name}
	if d := strings.TrimSpace(description); d != "" {
		c.Description = &d
	}
	if err := r.db.WithContext(ctx).Create(&c).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return models.Category{}, apperr.Invalid("name", "already exists")
		}
		return models.Category{}, apperr.Storage("create category", err)
	}
	return c, nil
}

// CreateProduct inserts a product under an existing category.
func (r *Repository) CreateProduct(ctx context.Context, in NewProduct) (models.Product, error) {
	if strings.TrimSpace(in.Name) == "" {
		return models.Product{}, apperr.Invalid("name", "is required")
	}
	p := models.Product{
		Name:          strings.TrimSpace(in.Name),
		Description:   in.Description,
		Price:         in.Price,
		Image:         in.Image,
		CategoryID:    in.CategoryID,
		IsFeatured:    in.IsFeatured,
		StockQuantity: in.StockQuantity,
	}
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := mustExist(tx, &models.Category{}, in.CategoryID, "category"); err != nil {
			return err
		}
		return tx.Create(&p).Error
	})
	if err != nil {
		return models.Product{}, classify("create product", err)
	}
	return r.GetProduct(ctx, p.ID)
}

// UpdateProduct applies changes and refreshes updated_at.
func (r *Repository) UpdateProduct(ctx context.Context, id uint, ch ProductChanges) (models.Product, error) {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var p models.Product
		if err := tx.First(&p, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFound("product")
			}
			return err
		}
		if ch.Name != nil {
			p.Name = *ch.Name
		}
		if ch.Description != nil {
			p.Description = *ch.Description
		}
		if ch.Price != nil {
			p.Price = *ch.Price
		}
		if ch.Image != nil {
			p.Image = *ch.Image
		}
		if ch.IsFeatured != nil {
			p.IsFeatured = *ch.IsFeatured
		}
		if ch.StockQuantity != nil {
			p.StockQuantity = *ch.StockQuantity
		}
		return tx.Save(&p).Error
	})
	if err != nil {
		return models.Product{}, classify("update product", err)
	}
	return r.GetProduct(ctx, id)
}

// AddImage attaches an extra image to an existing product.
func (r *Repository) AddImage(ctx context.Context, productID uint, url, alt string, primary bool) (models.ProductImage, error) {
	if strings.TrimSpace(url) == "" {
		return models.ProductImage{}, apperr.Invalid("image_url", "is required")
	}
	img := models.ProductImage{ProductID: productID, ImageURL: url, IsPrimary: primary}
	if alt != "" {
		img.AltText = &alt
	}
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := mustExist(tx, &models.Product{}, productID, "product"); err != nil {
			return err
		}
		return tx.Create(&img).Error
	})
	if err != nil {
		return models.ProductImage{}, classify("add image", err)
	}
	return img, nil
}

// DeleteProduct removes a product and its images.
func (r *Repository) DeleteProduct(ctx context.Context, id uint) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("product_id = ?", id).Delete(&models.ProductImage{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&models.Product{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return apperr.NotFound("product")
		}
		return nil
	})
	return classify("delete product", err)
}

// DeleteCategory removes a category, its products and their images in one
// transaction.
func (r *Repository) DeleteCategory(ctx context.Context, id uint) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		owned := tx.Model(&models.Product{}).Select("id").Where("category_id = ?", id)
		if err := tx.Where("product_id IN (?)", owned).Delete(&models.ProductImage{}).Error; err != nil {
			return err
		}
		if err := tx.Where("category_id = ?", id).Delete(&models.Product{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&models.Category{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return apperr.NotFound("category")
		}
		return nil
	})
	return classify("delete category", err)
}

func mustExist(tx *gorm.DB, model any, id uint, what string) error {
	var n int64
	if err := tx.Model(model).Where("id = ?", id).Count(&n).Error; err != nil {
		return err
	}
	if n == 0 {
		return apperr.NotFound(what)
	}
	return nil
}

// classify passes taxonomy errors through and wraps everything else as a
// storage failure.
func classify(op string, err error) error {
	switch apperr.KindOf(err) {
	case apperr.KindOK:
		return nil
	case apperr.KindNotFound, apperr.KindValidation:
		return err
	}
	if errors.Is(err, gorm.ErrForeignKeyViolated) {
		return apperr.Invalid("", "referenced record does not exist")
	}
	return apperr.Storage(op, err)
}
