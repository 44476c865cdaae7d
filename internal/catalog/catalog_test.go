package catalog

import (
	"context"
	"fmt"
	"slices"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"storefront/internal/apperr"
	"storefront/internal/db/dbtest"
	"storefront/internal/models"
)

type fixture struct {
	repo *Repository
	cats map[string]models.Category
	byID map[uint]models.Product
}

// newFixture creates Dresses (6 products), Tops (2), Shoes (1) and an empty
// Hats category.
func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	f := &fixture{
		repo: NewRepository(dbtest.New(t)),
		cats: map[string]models.Category{},
		byID: map[uint]models.Product{},
	}
	counts := []struct {
		name string
		n    int
	}{{"Dresses", 6}, {"Tops", 2}, {"Shoes", 1}, {"Hats", 0}}

	for _, c := range counts {
		cat, err := f.repo.CreateCategory(ctx, c.name, "")
		require.NoError(t, err)
		f.cats[c.name] = cat
		for i := 0; i < c.n; i++ {
			p, err := f.repo.CreateProduct(ctx, NewProduct{
				Name:          fmt.Sprintf("%s %d", c.name, i),
				Description:   "sample",
				Price:         decimal.NewFromFloat(10.25).Add(decimal.NewFromInt(int64(i))),
				Image:         "/img.jpg",
				CategoryID:    cat.ID,
				IsFeatured:    c.name == "Tops" && i == 1,
				StockQuantity: 3,
			})
			require.NoError(t, err)
			f.byID[p.ID] = p
		}
	}
	return f
}

func (f *fixture) sortedIDs() []uint {
	out := make([]uint, 0, len(f.byID))
	for id := range f.byID {
		out = append(out, id)
	}
	slices.Sort(out)
	return out
}

func ids(items []models.Product) []uint {
	out := make([]uint, 0, len(items))
	for _, p := range items {
		out = append(out, p.ID)
	}
	return out
}

func TestListProducts_FilterIsCaseInsensitive(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for _, filter := range []string{"Dresses", "dresses", "DRESSES", "  dresses "} {
		items, err := f.repo.ListProducts(ctx, filter)
		require.NoError(t, err)
		require.Len(t, items, 6, filter)
		for _, p := range items {
			assert.Equal(t, f.cats["Dresses"].ID, p.CategoryID)
			require.NotNil(t, p.Category)
			assert.Equal(t, "Dresses", p.Category.Name)
		}
	}
}

func TestListProducts_UnknownCategoryIsEmpty(t *testing.T) {
	f := newFixture(t)
	items, err := f.repo.ListProducts(context.Background(), "Jackets")
	require.NoError(t, err)
	assert.NotNil(t, items)
	assert.Empty(t, items)
}

func TestListProducts_AllIsUnionOfCategories(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	all, err := f.repo.ListProducts(ctx, AllCategories)
	require.NoError(t, err)
	noFilter, err := f.repo.ListProducts(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, ids(all), ids(noFilter))

	names, err := f.repo.ListCategoryNames(ctx)
	require.NoError(t, err)

	seen := map[uint]bool{}
	for _, name := range names {
		items, err := f.repo.ListProducts(ctx, name)
		require.NoError(t, err)
		for _, p := range items {
			assert.False(t, seen[p.ID], "product %d listed twice", p.ID)
			seen[p.ID] = true
		}
	}
	assert.Len(t, seen, len(all))
	for _, id := range ids(all) {
		assert.True(t, seen[id])
	}
}

func TestListCategoryNames_OnlyCategoriesWithProducts(t *testing.T) {
	f := newFixture(t)
	names, err := f.repo.ListCategoryNames(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"Dresses", "Shoes", "Tops"}, names)

	cats, err := f.repo.ListCategories(context.Background())
	require.NoError(t, err)
	assert.Len(t, cats, 4)
}

func TestListFeatured(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	items, err := f.repo.ListFeatured(ctx, 3)
	require.NoError(t, err)
	require.Len(t, items, 3)
	assert.Equal(t, f.sortedIDs()[:3], ids(items))

	items, err = f.repo.ListFeatured(ctx, 100)
	require.NoError(t, err)
	assert.Equal(t, f.sortedIDs(), ids(items))

	items, err = f.repo.ListFeatured(ctx, 0)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestGetProduct(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	var some models.Product
	for _, p := range f.byID {
		some = p
		break
	}
	got, err := f.repo.GetProduct(ctx, some.ID)
	require.NoError(t, err)
	assert.Equal(t, some.Name, got.Name)
	assert.True(t, some.Price.Equal(got.Price))

	_, err = f.repo.GetProduct(ctx, 9999)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestGetRelated(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for _, p := range f.byID {
		related, err := f.repo.GetRelated(ctx, p, DefaultRelatedLimit)
		require.NoError(t, err)
		assert.LessOrEqual(t, len(related), DefaultRelatedLimit)
		for _, r := range related {
			assert.NotEqual(t, p.ID, r.ID)
			assert.Equal(t, p.CategoryID, r.CategoryID)
		}
	}

	dresses, err := f.repo.ListProducts(ctx, "Dresses")
	require.NoError(t, err)
	related, err := f.repo.GetRelated(ctx, dresses[0], DefaultRelatedLimit)
	require.NoError(t, err)
	assert.Len(t, related, 4)

	shoes, err := f.repo.ListProducts(ctx, "Shoes")
	require.NoError(t, err)
	related, err = f.repo.GetRelated(ctx, shoes[0], DefaultRelatedLimit)
	require.NoError(t, err)
	assert.Empty(t, related)
}

func TestDeleteCategory_Cascades(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	dresses, err := f.repo.ListProducts(ctx, "Dresses")
	require.NoError(t, err)
	_, err = f.repo.AddImage(ctx, dresses[0].ID, "/extra.jpg", "side", false)
	require.NoError(t, err)

	require.NoError(t, f.repo.DeleteCategory(ctx, f.cats["Dresses"].ID))

	for _, p := range dresses {
		_, err := f.repo.GetProduct(ctx, p.ID)
		assert.ErrorIs(t, err, apperr.ErrNotFound)
	}
	var images int64
	require.NoError(t, f.repo.db.Model(&models.ProductImage{}).Count(&images).Error)
	assert.Zero(t, images)

	tops, err := f.repo.ListProducts(ctx, "Tops")
	require.NoError(t, err)
	assert.Len(t, tops, 2)

	assert.ErrorIs(t, f.repo.DeleteCategory(ctx, f.cats["Dresses"].ID), apperr.ErrNotFound)
}

func TestDeleteProduct(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	shoes, err := f.repo.ListProducts(ctx, "Shoes")
	require.NoError(t, err)
	require.NoError(t, f.repo.DeleteProduct(ctx, shoes[0].ID))
	assert.ErrorIs(t, f.repo.DeleteProduct(ctx, shoes[0].ID), apperr.ErrNotFound)
}

func TestCreateProduct_Validation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.repo.CreateProduct(ctx, NewProduct{Name: "Ghost", Price: decimal.NewFromInt(1), CategoryID: 9999})
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	_, err = f.repo.CreateProduct(ctx, NewProduct{Name: "Cheap", Price: decimal.NewFromInt(-1), CategoryID: f.cats["Hats"].ID})
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))

	_, err = f.repo.CreateProduct(ctx, NewProduct{Name: "Short", Price: decimal.NewFromInt(1), CategoryID: f.cats["Hats"].ID, StockQuantity: -1})
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))

	_, err = f.repo.CreateProduct(ctx, NewProduct{Name: " ", Price: decimal.NewFromInt(1), CategoryID: f.cats["Hats"].ID})
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))

	_, err = f.repo.CreateCategory(ctx, "Hats", "")
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))

	_, err = f.repo.AddImage(ctx, 9999, "/x.jpg", "", false)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestUpdateProduct_RefreshesUpdatedAt(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	shoes, err := f.repo.ListProducts(ctx, "Shoes")
	require.NoError(t, err)
	before := shoes[0]

	time.Sleep(20 * time.Millisecond)
	price := decimal.RequireFromString("42.10")
	stock := 0
	got, err := f.repo.UpdateProduct(ctx, before.ID, ProductChanges{Price: &price, StockQuantity: &stock})
	require.NoError(t, err)

	assert.True(t, got.Price.Equal(price))
	assert.Zero(t, got.StockQuantity)
	assert.Equal(t, before.Name, got.Name)
	assert.True(t, got.UpdatedAt.After(before.UpdatedAt))
	assert.True(t, got.CreatedAt.Equal(before.CreatedAt))

	negative := -5
	_, err = f.repo.UpdateProduct(ctx, before.ID, ProductChanges{StockQuantity: &negative})
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))

	_, err = f.repo.UpdateProduct(ctx, 9999, ProductChanges{})
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestCategoryByName(t *testing.T) {
	f := newFixture(t)
	c, err := f.repo.CategoryByName(context.Background(), "tops")
	require.NoError(t, err)
	assert.Equal(t, "Tops", c.Name)

	_, err = f.repo.CategoryByName(context.Background(), "nope")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestSeed_Idempotent(t *testing.T) {
	gdb := dbtest.New(t)
	ctx := context.Background()
	log := zap.NewNop()

	seeded, err := Seed(ctx, gdb, log)
	require.NoError(t, err)
	assert.True(t, seeded)

	seeded, err = Seed(ctx, gdb, log)
	require.NoError(t, err)
	assert.False(t, seeded)

	var total int64
	require.NoError(t, gdb.Model(&models.Product{}).Count(&total).Error)
	want := 0
	for _, c := range sampleCatalog {
		want += len(c.products)
	}
	assert.EqualValues(t, want, total)

	var names []string
	require.NoError(t, gdb.Model(&models.Product{}).Distinct("name").Pluck("name", &names).Error)
	assert.Len(t, names, want)

	repo := NewRepository(gdb)
	featured, err := repo.ListFeatured(ctx, 6)
	require.NoError(t, err)
	require.Len(t, featured, 6)
	for i := 1; i < len(featured); i++ {
		assert.Less(t, featured[i-1].ID, featured[i].ID)
	}
	assert.True(t, featured[0].IsFeatured)
	require.Len(t, featured[0].Images, 1)
	assert.True(t, featured[0].Images[0].IsPrimary)
}

func TestPing(t *testing.T) {
	f := newFixture(t)
	assert.NoError(t, f.repo.Ping(context.Background()))
}
