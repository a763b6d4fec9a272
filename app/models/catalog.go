package models

import "gorm.io/gorm"

// Category groups products for storefront filtering.
type Category struct {
	gorm.Model
	Name string `gorm:"uniqueIndex;size:255;not null" json:"name"`
	Slug string `gorm:"uniqueIndex;size:255;not null" json:"slug"`
}

// Product is one catalog entry. Stock is the ceiling cart quantities are
// clamped against; Image is a path on the storage disk.
type Product struct {
	gorm.Model
	SKU         string   `gorm:"size:64;index"           json:"sku"`
	Name        string   `gorm:"size:255;not null;index" json:"name"`
	Description string   `gorm:"type:text"               json:"description"`
	Price       float64  `gorm:"not null;default:0"      json:"price"`
	Stock       int      `gorm:"not null;default:0"      json:"stock"`
	Image       string   `gorm:"size:512"                json:"image"`
	CategoryID  uint     `gorm:"not null;index"          json:"category_id"`
	Category    Category `json:"category,omitempty"`
}
