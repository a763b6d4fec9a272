// Package repositories wraps all GORM access behind constructor-injected
// types so services and tests never touch a global connection.
package repositories

import (
	"gorm.io/gorm"

	"github.com/gmcandra/mebelshop/app/models"
	"github.com/gmcandra/mebelshop/pkg/database"
)

// UserRepository handles database operations for User.
type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

// FindByEmail looks up a user by their email address.
func (r *UserRepository) FindByEmail(email string) (models.User, error) {
	var user models.User
	err := r.db.Where("email = ?", email).First(&user).Error
	return user, err
}

// FindByID looks up a user by primary key.
func (r *UserRepository) FindByID(id uint) (models.User, error) {
	var user models.User
	err := r.db.First(&user, id).Error
	return user, err
}

// Create persists a new user record.
func (r *UserRepository) Create(user *models.User) error {
	return r.db.Create(user).Error
}

// Update persists changes to an existing user.
func (r *UserRepository) Update(user *models.User) error {
	return r.db.Save(user).Error
}

// All returns users page by page.
func (r *UserRepository) All(page, limit int) ([]models.User, database.Pagination, error) {
	var users []models.User
	p, err := database.Paginate(r.db.Model(&models.User{}).Order("id"), &users, page, limit)
	return users, p, err
}

// Delete removes a user (soft delete via gorm.Model).
func (r *UserRepository) Delete(id uint) error {
	return r.db.Delete(&models.User{}, id).Error
}
