// Package catalog is the read side of the storefront plus the few mutations
// the seeding command and admin tooling need. All relations (category →
// products → images) are loaded and deleted explicitly.
package catalog

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"storefront/internal/apperr"
	"storefront/internal/models"
)

// AllCategories is the filter value meaning "no category filter".
const AllCategories = "all"

// DefaultRelatedLimit is how many related products the detail page shows.
const DefaultRelatedLimit = 4

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// withRelations preloads what the product JSON needs.
func withRelations(tx *gorm.DB) *gorm.DB {
	return tx.Preload("Category").Preload("Images", func(db *gorm.DB) *gorm.DB {
		return db.Order("is_primary desc, id asc")
	})
}

// ListFeatured returns the first limit products in primary-key order. Fewer
// than limit products is not an error.
func (r *Repository) ListFeatured(ctx context.Context, limit int) ([]models.Product, error) {
	if limit <= 0 {
		return []models.Product{}, nil
	}
	var items []models.Product
	err := withRelations(r.db.WithContext(ctx)).
		Order("products.id asc").
		Limit(limit).
		Find(&items).Error
	if err != nil {
		return nil, apperr.Storage("list featured", err)
	}
	return items, nil
}

// ListProducts returns every product when filter is empty or "all", otherwise
// the products whose category name equals filter ignoring case. An unknown
// category yields an empty slice.
func (r *Repository) ListProducts(ctx context.Context, filter string) ([]models.Product, error) {
	filter = strings.TrimSpace(filter)
	q := withRelations(r.db.WithContext(ctx)).Order("products.id asc")
	if filter != "" && !strings.EqualFold(filter, AllCategories) {
		q = q.Joins("JOIN categories ON categories.id = products.category_id").
			Where("LOWER(categories.name) = ?", strings.ToLower(filter))
	}
	items := []models.Product{}
	if err := q.Find(&items).Error; err != nil {
		return nil, apperr.Storage("list products", err)
	}
	return items, nil
}

// ListCategoryNames returns the distinct names of categories that currently
// own at least one product, sorted by name.
func (r *Repository) ListCategoryNames(ctx context.Context) ([]string, error) {
	names := []string{}
	err := r.db.WithContext(ctx).
		Model(&models.Category{}).
		Distinct("categories.name").
		Joins("JOIN products ON products.category_id = categories.id").
		Order("categories.name asc").
		Pluck("categories.name", &names).Error
	if err != nil {
		return nil, apperr.Storage("list category names", err)
	}
	return names, nil
}

// GetProduct returns the product with its category and images, or an
// apperr.ErrNotFound.
func (r *Repository) GetProduct(ctx context.Context, id uint) (models.Product, error) {
	var p models.Product
	err := withRelations(r.db.WithContext(ctx)).First(&p, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.Product{}, apperr.NotFound("product")
	}
	if err != nil {
		return models.Product{}, apperr.Storage("get product", err)
	}
	return p, nil
}

// GetRelated returns up to limit other products in p's category by id.
func (r *Repository) GetRelated(ctx context.Context, p models.Product, limit int) ([]models.Product, error) {
	items := []models.Product{}
	if limit <= 0 {
		return items, nil
	}
	err := withRelations(r.db.WithContext(ctx)).
		Where("category_id = ? AND id <> ?", p.CategoryID, p.ID).
		Order("id asc").
		Limit(limit).
		Find(&items).Error
	if err != nil {
		return nil, apperr.Storage("get related", err)
	}
	return items, nil
}

// ListCategories returns every category, including empty ones.
func (r *Repository) ListCategories(ctx context.Context) ([]models.Category, error) {
	items := []models.Category{}
	if err := r.db.WithContext(ctx).Order("name asc").Find(&items).Error; err != nil {
		return nil, apperr.Storage("list categories", err)
	}
	return items, nil
}

func (r *Repository) CategoryByName(ctx context.Context, name string) (models.Category, error) {
	var c models.Category
	err := r.db.WithContext(ctx).
		Where("LOWER(name) = ?", strings.ToLower(strings.TrimSpace(name))).
		First(&c).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.Category{}, apperr.NotFound("category")
	}
	if err != nil {
		return models.Category{}, apperr.Storage("get category", err)
	}
	return c, nil
}

// Ping checks the store is reachable.
func (r *Repository) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return apperr.Storage("ping", err)
	}
	return apperr.Storage("ping", sqlDB.PingContext(ctx))
}
