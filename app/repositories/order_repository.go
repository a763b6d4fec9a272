package repositories

import (
	"gorm.io/gorm"

	"github.com/gmcandra/mebelshop/app/models"
	"github.com/gmcandra/mebelshop/pkg/database"
)

// OrderRepository handles database operations for Order and its items.
type OrderRepository struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

// CreateWithStock persists the order and decrements stock for every item
// in one transaction. The whole order fails if any line is short.
func (r *OrderRepository) CreateWithStock(order *models.Order, products *ProductRepository) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		for _, item := range order.Items {
			if err := products.DecrementStock(tx, item.ProductID, item.Quantity); err != nil {
				return err
			}
		}
		return tx.Create(order).Error
	})
}

// FindByCode loads an order with its items by external code.
func (r *OrderRepository) FindByCode(code string) (models.Order, error) {
	var order models.Order
	err := r.db.Preload("Items").Where("code = ?", code).First(&order).Error
	return order, err
}

// FindByID loads an order with its items.
func (r *OrderRepository) FindByID(id uint) (models.Order, error) {
	var order models.Order
	err := r.db.Preload("Items").First(&order, id).Error
	return order, err
}

// ForUser returns one user's orders, newest first.
func (r *OrderRepository) ForUser(userID uint, page, limit int) ([]models.Order, database.Pagination, error) {
	tx := r.db.Model(&models.Order{}).
		Preload("Items").
		Where("user_id = ?", userID).
		Order("id desc")

	var orders []models.Order
	p, err := database.Paginate(tx, &orders, page, limit)
	return orders, p, err
}

// All returns every order, newest first, for the admin dashboard.
func (r *OrderRepository) All(page, limit int) ([]models.Order, database.Pagination, error) {
	tx := r.db.Model(&models.Order{}).Preload("Items").Order("id desc")

	var orders []models.Order
	p, err := database.Paginate(tx, &orders, page, limit)
	return orders, p, err
}

// SavePayment stores the gateway session on the order.
func (r *OrderRepository) SavePayment(code, snapToken, paymentURL string) error {
	return r.db.Model(&models.Order{}).
		Where("code = ?", code).
		Updates(map[string]interface{}{
			"snap_token":  snapToken,
			"payment_url": paymentURL,
		}).Error
}

// UpdateStatus sets the order status by code.
func (r *OrderRepository) UpdateStatus(code, status string) error {
	return r.db.Model(&models.Order{}).
		Where("code = ?", code).
		Update("status", status).Error
}
