package services

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/gmcandra/mebelshop/app/models"
	"github.com/gmcandra/mebelshop/app/repositories"
	"github.com/gmcandra/mebelshop/pkg/collection"
	"github.com/gmcandra/mebelshop/pkg/database"
	"github.com/gmcandra/mebelshop/pkg/httpcache"
	"github.com/gmcandra/mebelshop/pkg/logger"
	"github.com/gmcandra/mebelshop/pkg/metrics"
	"github.com/gmcandra/mebelshop/pkg/search"
	"github.com/gmcandra/mebelshop/pkg/storage"
)

// CatalogService serves the product catalog: listing, fuzzy search, and
// the admin CRUD that feeds both.
type CatalogService struct {
	products   *repositories.ProductRepository
	categories *repositories.CategoryRepository
	index      *search.Index
	cache      *httpcache.Cache
}

func NewCatalogService(
	products *repositories.ProductRepository,
	categories *repositories.CategoryRepository,
	index *search.Index,
	cache *httpcache.Cache,
) *CatalogService {
	return &CatalogService{
		products:   products,
		categories: categories,
		index:      index,
		cache:      cache,
	}
}

// Products lists the catalog page by page, optionally by category slug.
func (s *CatalogService) Products(categorySlug string, page, limit int) ([]models.Product, database.Pagination, error) {
	return s.products.List(categorySlug, page, limit)
}

// Product loads a single catalog entry.
func (s *CatalogService) Product(id uint) (models.Product, error) {
	return s.products.FindByID(id)
}

// Categories lists all categories.
func (s *CatalogService) Categories() ([]models.Category, error) {
	return s.categories.All()
}

// Search runs a fuzzy query over the index and resolves the matches to
// full products.
func (s *CatalogService) Search(q string, limit int) ([]models.Product, error) {
	results := s.index.Query(q, limit)
	if len(results) == 0 {
		metrics.SearchQueries.WithLabelValues("miss").Inc()
		return nil, nil
	}
	metrics.SearchQueries.WithLabelValues("hit").Inc()

	ids := collection.Map(results, func(r search.Result) uint { return r.Document.ID })
	products, err := s.products.FindByIDs(ids)
	if err != nil {
		return nil, err
	}

	// Keep the index's relevance order.
	byID := collection.KeyBy(products, func(p models.Product) uint { return p.ID })
	ordered := make([]models.Product, 0, len(ids))
	for _, id := range ids {
		if p, ok := byID[id]; ok {
			ordered = append(ordered, p)
		}
	}
	return ordered, nil
}

// RebuildIndex reloads the fuzzy index from the full catalog. Called at
// boot and after every catalog write.
func (s *CatalogService) RebuildIndex() error {
	products, err := s.products.All()
	if err != nil {
		return fmt.Errorf("catalog: rebuild index: %w", err)
	}

	s.index.Reload(collection.Map(products, func(p models.Product) search.Document {
		return search.Document{ID: p.ID, Name: p.Name, Category: p.Category.Name}
	}))
	logger.Info("catalog: search index rebuilt", "products", len(products))
	return nil
}

// ProductInput is the admin create/update payload.
type ProductInput struct {
	SKU         string  `json:"sku"         validate:"nullable,max=64"`
	Name        string  `json:"name"        validate:"required,min=2,max=255"`
	Description string  `json:"description" validate:"nullable,max=5000"`
	Price       float64 `json:"price"       validate:"required,gt=0"`
	Stock       int     `json:"stock"       validate:"required,gte=0"`
	CategoryID  uint    `json:"category_id" validate:"required"`
}

// CreateProduct adds a catalog entry, optionally storing an uploaded image.
func (s *CatalogService) CreateProduct(ctx context.Context, in ProductInput, image []byte, imageName string) (models.Product, error) {
	if _, err := s.categories.FindByID(in.CategoryID); err != nil {
		return models.Product{}, err
	}

	product := models.Product{
		SKU:         in.SKU,
		Name:        in.Name,
		Description: in.Description,
		Price:       in.Price,
		Stock:       in.Stock,
		CategoryID:  in.CategoryID,
	}

	if len(image) > 0 {
		path, err := s.storeImage(image, imageName)
		if err != nil {
			return models.Product{}, err
		}
		product.Image = path
	}

	if err := s.products.Create(&product); err != nil {
		return models.Product{}, err
	}

	s.afterCatalogWrite(ctx)
	return s.products.FindByID(product.ID)
}

// UpdateProduct edits a catalog entry.
func (s *CatalogService) UpdateProduct(ctx context.Context, id uint, in ProductInput, image []byte, imageName string) (models.Product, error) {
	product, err := s.products.FindByID(id)
	if err != nil {
		return models.Product{}, err
	}

	product.SKU = in.SKU
	product.Name = in.Name
	product.Description = in.Description
	product.Price = in.Price
	product.Stock = in.Stock
	product.CategoryID = in.CategoryID

	if len(image) > 0 {
		path, err := s.storeImage(image, imageName)
		if err != nil {
			return models.Product{}, err
		}
		if product.Image != "" {
			storage.Delete(product.Image) //nolint:errcheck
		}
		product.Image = path
	}

	if err := s.products.Update(&product); err != nil {
		return models.Product{}, err
	}

	s.afterCatalogWrite(ctx)
	return s.products.FindByID(product.ID)
}

// DeleteProduct removes a catalog entry.
func (s *CatalogService) DeleteProduct(ctx context.Context, id uint) error {
	if err := s.products.Delete(id); err != nil {
		return err
	}
	s.afterCatalogWrite(ctx)
	return nil
}

// CategoryInput is the admin category payload.
type CategoryInput struct {
	Name string `json:"name" validate:"required,min=2,max=255"`
}

// CreateCategory adds a category; the slug is derived from the name.
func (s *CatalogService) CreateCategory(ctx context.Context, in CategoryInput) (models.Category, error) {
	category := models.Category{Name: in.Name, Slug: slugify(in.Name)}
	if err := s.categories.Create(&category); err != nil {
		return models.Category{}, err
	}
	s.afterCatalogWrite(ctx)
	return category, nil
}

// UpdateCategory renames a category, refreshing its slug.
func (s *CatalogService) UpdateCategory(ctx context.Context, id uint, in CategoryInput) (models.Category, error) {
	category, err := s.categories.FindByID(id)
	if err != nil {
		return models.Category{}, err
	}

	category.Name = in.Name
	category.Slug = slugify(in.Name)
	if err := s.categories.Update(&category); err != nil {
		return models.Category{}, err
	}
	s.afterCatalogWrite(ctx)
	return category, nil
}

// DeleteCategory removes a category.
func (s *CatalogService) DeleteCategory(ctx context.Context, id uint) error {
	if err := s.categories.Delete(id); err != nil {
		return err
	}
	s.afterCatalogWrite(ctx)
	return nil
}

// afterCatalogWrite refreshes everything derived from the catalog.
func (s *CatalogService) afterCatalogWrite(ctx context.Context) {
	if err := s.RebuildIndex(); err != nil {
		logger.Warn("catalog: index rebuild failed", "error", err)
	}
	if s.cache != nil {
		s.cache.Invalidate(ctx, "/api/products")
		s.cache.Invalidate(ctx, "/api/categories")
	}
}

func (s *CatalogService) storeImage(image []byte, name string) (string, error) {
	ext := strings.ToLower(filepath.Ext(name))
	if ext == "" {
		ext = ".jpg"
	}
	path := fmt.Sprintf("products/%d%s", time.Now().UnixNano(), ext)
	if err := storage.Put(path, image); err != nil {
		return "", fmt.Errorf("catalog: store image: %w", err)
	}
	return path, nil
}

// slugify lowercases the name and replaces runs of non-alphanumerics
// with single hyphens.
func slugify(name string) string {
	var b strings.Builder
	lastDash := true
	for _, c := range strings.ToLower(name) {
		switch {
		case c >= 'a' && c <= 'z' || c >= '0' && c <= '9':
			b.WriteRune(c)
			lastDash = false
		default:
			if !lastDash {
				b.WriteByte('-')
				lastDash = true
			}
		}
	}
	return strings.TrimRight(b.String(), "-")
}
