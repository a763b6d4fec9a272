package services_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/gmcandra/mebelshop/app/models"
	"github.com/gmcandra/mebelshop/pkg/notification"
)

// testDB opens a fresh in-memory database with the full schema.
func testDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Category{},
		&models.Product{},
		&models.Order{},
		&models.OrderItem{},
		&notification.Record{},
	))
	return db
}

// seedCatalog inserts one category and two products, returning them.
func seedCatalog(t *testing.T, db *gorm.DB) (models.Category, []models.Product) {
	t.Helper()

	category := models.Category{Name: "Kursi", Slug: "kursi"}
	require.NoError(t, db.Create(&category).Error)

	products := []models.Product{
		{Name: "Kursi Jati Minimalis", Description: "Kursi jati solid.", Price: 450000, Stock: 5, CategoryID: category.ID},
		{Name: "Meja Makan Jati", Description: "Meja makan 6 kursi.", Price: 750000, Stock: 3, CategoryID: category.ID},
	}
	require.NoError(t, db.Create(&products).Error)
	return category, products
}

func seedUser(t *testing.T, db *gorm.DB, email string) models.User {
	t.Helper()

	user := models.User{
		Name:     "Budi Santoso",
		Email:    email,
		Password: "not-a-real-hash",
		Role:     "USER",
	}
	require.NoError(t, db.Create(&user).Error)
	return user
}
