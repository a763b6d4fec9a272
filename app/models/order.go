package models

import "gorm.io/gorm"

// Order statuses.
const (
	OrderPending   = "pending"
	OrderPaid      = "paid"
	OrderShipped   = "shipped"
	OrderCompleted = "completed"
	OrderCancelled = "cancelled"
)

// Order is a checkout snapshot. Code is the external reference sent to
// the payment gateway.
type Order struct {
	gorm.Model
	Code        string      `gorm:"uniqueIndex;size:64;not null" json:"code"`
	UserID      uint        `gorm:"not null;index"               json:"user_id"`
	User        User        `json:"-"`
	Total       float64     `gorm:"not null;default:0"           json:"total"`
	Status      string      `gorm:"size:50;default:pending"      json:"status"`
	SnapToken   string      `gorm:"size:255"                     json:"snap_token,omitempty"`
	PaymentURL  string      `gorm:"size:512"                     json:"payment_url,omitempty"`
	ShippingTo  string      `gorm:"type:text"                    json:"shipping_to"`
	Items       []OrderItem `json:"items,omitempty"`
}

// OrderItem freezes one cart line at checkout time. Price is the unit
// price at purchase, independent of later catalog edits.
type OrderItem struct {
	gorm.Model
	OrderID   uint    `gorm:"not null;index" json:"order_id"`
	ProductID uint    `gorm:"not null;index" json:"product_id"`
	Name      string  `gorm:"size:255;not null" json:"name"`
	Price     float64 `gorm:"not null"          json:"price"`
	Quantity  int     `gorm:"not null"          json:"quantity"`
}
