package seeders

import (
	"errors"

	"gorm.io/gorm"

	"github.com/gmcandra/mebelshop/app/models"
	"github.com/gmcandra/mebelshop/pkg/auth"
)

func init() {
	Register("admin", SeedAdmin)
	Register("categories", SeedCategories)
	Register("products", SeedProducts)
}

// SeedAdmin creates the shop owner account if it does not exist yet.
func SeedAdmin(db *gorm.DB) error {
	var existing models.User
	err := db.Where("email = ?", "admin@gmcandramebel.id").First(&existing).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	hash, err := auth.HashPassword("password")
	if err != nil {
		return err
	}
	return db.Create(&models.User{
		Name:     "Candra Wijaya",
		Email:    "admin@gmcandramebel.id",
		Password: hash,
		Role:     auth.RoleAdmin,
		Phone:    "+62 812-3456-7890",
		Address:  "Jl. Raya Mebel No. 12, Jepara",
	}).Error
}

// SeedCategories inserts the base furniture categories.
func SeedCategories(db *gorm.DB) error {
	categories := []models.Category{
		{Name: "Kursi", Slug: "kursi"},
		{Name: "Meja", Slug: "meja"},
		{Name: "Lemari", Slug: "lemari"},
		{Name: "Tempat Tidur", Slug: "tempat-tidur"},
		{Name: "Rak", Slug: "rak"},
	}
	for _, c := range categories {
		var existing models.Category
		err := db.Where("slug = ?", c.Slug).First(&existing).Error
		if err == nil {
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		if err := db.Create(&c).Error; err != nil {
			return err
		}
	}
	return nil
}

// SeedProducts inserts a starter catalog. Skips entirely when products
// already exist so it stays safe to re-run.
func SeedProducts(db *gorm.DB) error {
	var count int64
	if err := db.Model(&models.Product{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	bySlug := map[string]uint{}
	var categories []models.Category
	if err := db.Find(&categories).Error; err != nil {
		return err
	}
	for _, c := range categories {
		bySlug[c.Slug] = c.ID
	}

	products := []models.Product{
		{SKU: "KRS-001", Name: "Kursi Jati Ukir", Description: "Kursi kayu jati solid dengan ukiran khas Jepara.", Price: 1250000, Stock: 8, CategoryID: bySlug["kursi"]},
		{SKU: "KRS-002", Name: "Kursi Tamu Minimalis", Description: "Set kursi tamu gaya minimalis modern.", Price: 3500000, Stock: 4, CategoryID: bySlug["kursi"]},
		{SKU: "MJA-001", Name: "Meja Makan Jati", Description: "Meja makan keluarga untuk 6 orang, finishing natural.", Price: 4200000, Stock: 3, CategoryID: bySlug["meja"]},
		{SKU: "MJA-002", Name: "Meja Kerja Mahoni", Description: "Meja kerja kayu mahoni dengan dua laci.", Price: 1800000, Stock: 6, CategoryID: bySlug["meja"]},
		{SKU: "LMR-001", Name: "Lemari Pakaian 3 Pintu", Description: "Lemari pakaian tiga pintu dengan cermin.", Price: 5600000, Stock: 2, CategoryID: bySlug["lemari"]},
		{SKU: "TTD-001", Name: "Tempat Tidur Queen", Description: "Rangka tempat tidur ukuran queen, kayu jati.", Price: 6900000, Stock: 2, CategoryID: bySlug["tempat-tidur"]},
		{SKU: "RAK-001", Name: "Rak Buku Tingkat 5", Description: "Rak buku lima tingkat, cocok untuk ruang kerja.", Price: 950000, Stock: 10, CategoryID: bySlug["rak"]},
	}
	return db.Create(&products).Error
}
