package services_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/gmcandra/mebelshop/app/repositories"
	"github.com/gmcandra/mebelshop/app/services"
	"github.com/gmcandra/mebelshop/pkg/httpcache"
	"github.com/gmcandra/mebelshop/pkg/kv"
	"github.com/gmcandra/mebelshop/pkg/search"
)

func newCatalogService(t *testing.T) (*services.CatalogService, *gorm.DB) {
	t.Helper()

	db := testDB(t)
	seedCatalog(t, db)

	svc := services.NewCatalogService(
		repositories.NewProductRepository(db),
		repositories.NewCategoryRepository(db),
		search.NewIndex(),
		httpcache.New(kv.NewMemory()),
	)
	require.NoError(t, svc.RebuildIndex())
	return svc, db
}

func TestProductsListsByCategory(t *testing.T) {
	svc, _ := newCatalogService(t)

	products, pagination, err := svc.Products("kursi", 1, 10)
	require.NoError(t, err)
	assert.Len(t, products, 2)
	assert.Equal(t, int64(2), pagination.Total)

	none, _, err := svc.Products("lemari", 1, 10)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestSearchToleratesTypos(t *testing.T) {
	svc, _ := newCatalogService(t)

	products, err := svc.Search("kursi jti", 5)
	require.NoError(t, err)
	require.NotEmpty(t, products)
	assert.Equal(t, "Kursi Jati Minimalis", products[0].Name)
}

func TestSearchMissReturnsEmpty(t *testing.T) {
	svc, _ := newCatalogService(t)

	products, err := svc.Search("zzzzzz", 5)
	require.NoError(t, err)
	assert.Empty(t, products)
}

func TestCreateCategoryDerivesSlug(t *testing.T) {
	svc, _ := newCatalogService(t)

	category, err := svc.CreateCategory(context.Background(), services.CategoryInput{Name: "Tempat Tidur & Kasur"})
	require.NoError(t, err)
	assert.Equal(t, "tempat-tidur-kasur", category.Slug)
}

func TestCreateProductRejectsUnknownCategory(t *testing.T) {
	svc, _ := newCatalogService(t)

	_, err := svc.CreateProduct(context.Background(), services.ProductInput{
		Name:       "Rak Dinding",
		Price:      250000,
		Stock:      5,
		CategoryID: 999,
	}, nil, "")
	assert.Error(t, err)
}

func TestCreateProductRefreshesIndex(t *testing.T) {
	svc, db := newCatalogService(t)
	ctx := context.Background()

	var kursi struct{ ID uint }
	require.NoError(t, db.Table("categories").Where("slug = ?", "kursi").Select("id").Scan(&kursi).Error)

	created, err := svc.CreateProduct(ctx, services.ProductInput{
		Name:       "Bangku Taman Jati",
		Price:      650000,
		Stock:      4,
		CategoryID: kursi.ID,
	}, nil, "")
	require.NoError(t, err)
	assert.NotZero(t, created.ID)

	products, err := svc.Search("bangku taman", 5)
	require.NoError(t, err)
	require.NotEmpty(t, products, "new product is searchable immediately")
	assert.Equal(t, "Bangku Taman Jati", products[0].Name)
}

func TestDeleteProductDropsFromIndex(t *testing.T) {
	svc, db := newCatalogService(t)
	ctx := context.Background()

	var meja struct{ ID uint }
	require.NoError(t, db.Table("products").Where("name = ?", "Meja Makan Jati").Select("id").Scan(&meja).Error)

	require.NoError(t, svc.DeleteProduct(ctx, meja.ID))

	products, err := svc.Search("meja makan", 5)
	require.NoError(t, err)
	assert.Empty(t, products)
}
