package repositories

import (
	"errors"

	"gorm.io/gorm"

	"github.com/gmcandra/mebelshop/app/models"
	"github.com/gmcandra/mebelshop/pkg/database"
)

// ErrInsufficientStock is returned when an order asks for more units
// than the catalog holds.
var ErrInsufficientStock = errors.New("insufficient stock")

// ProductRepository handles database operations for Product.
type ProductRepository struct {
	db *gorm.DB
}

func NewProductRepository(db *gorm.DB) *ProductRepository {
	return &ProductRepository{db: db}
}

// List returns products page by page, optionally filtered by category slug.
func (r *ProductRepository) List(categorySlug string, page, limit int) ([]models.Product, database.Pagination, error) {
	tx := r.db.Model(&models.Product{}).Preload("Category").Order("products.id")
	if categorySlug != "" {
		tx = tx.Joins("JOIN categories ON categories.id = products.category_id").
			Where("categories.slug = ?", categorySlug)
	}

	var products []models.Product
	p, err := database.Paginate(tx, &products, page, limit)
	return products, p, err
}

// FindByID loads one product with its category.
func (r *ProductRepository) FindByID(id uint) (models.Product, error) {
	var product models.Product
	err := r.db.Preload("Category").First(&product, id).Error
	return product, err
}

// FindByIDs loads products by primary key, preserving no particular order.
func (r *ProductRepository) FindByIDs(ids []uint) ([]models.Product, error) {
	var products []models.Product
	err := r.db.Preload("Category").Where("id IN ?", ids).Find(&products).Error
	return products, err
}

// All returns the whole catalog, for the search index.
func (r *ProductRepository) All() ([]models.Product, error) {
	var products []models.Product
	err := r.db.Preload("Category").Find(&products).Error
	return products, err
}

// Create persists a new product.
func (r *ProductRepository) Create(product *models.Product) error {
	return r.db.Create(product).Error
}

// Update persists changes to an existing product.
func (r *ProductRepository) Update(product *models.Product) error {
	return r.db.Save(product).Error
}

// Delete removes a product (soft delete via gorm.Model).
func (r *ProductRepository) Delete(id uint) error {
	return r.db.Delete(&models.Product{}, id).Error
}

// DecrementStock atomically reduces stock inside tx, failing when fewer
// than qty units remain.
func (r *ProductRepository) DecrementStock(tx *gorm.DB, productID uint, qty int) error {
	res := tx.Model(&models.Product{}).
		Where("id = ? AND stock >= ?", productID, qty).
		UpdateColumn("stock", gorm.Expr("stock - ?", qty))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrInsufficientStock
	}
	return nil
}
