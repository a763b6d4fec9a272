// Package services holds the shop's business logic between controllers
// and repositories.
package services

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/gmcandra/mebelshop/app/models"
	"github.com/gmcandra/mebelshop/app/repositories"
	"github.com/gmcandra/mebelshop/app/stores"
	"github.com/gmcandra/mebelshop/pkg/auth"
	"github.com/gmcandra/mebelshop/pkg/database"
	"github.com/gmcandra/mebelshop/pkg/kv"
)

var (
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
)

// AuthService handles registration, login, and server-side sessions.
type AuthService struct {
	users *repositories.UserRepository
	kv    kv.Store
}

func NewAuthService(users *repositories.UserRepository, store kv.Store) *AuthService {
	return &AuthService{users: users, kv: store}
}

// sessionFor returns the session container persisting under the user's key.
func (s *AuthService) sessionFor(userID uint) *stores.Session {
	return stores.NewSession(s.kv, fmt.Sprintf("session:%d", userID))
}

// Register creates a new customer account. All self-registered accounts
// get the USER role; admins are seeded or promoted directly.
func (s *AuthService) Register(name, email, password, phone, address string) (models.User, error) {
	if _, err := s.users.FindByEmail(email); err == nil {
		return models.User{}, ErrEmailTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return models.User{}, err
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return models.User{}, err
	}

	user := models.User{
		Name:     name,
		Email:    email,
		Password: hash,
		Role:     auth.RoleUser,
		Phone:    phone,
		Address:  address,
	}
	if err := s.users.Create(&user); err != nil {
		return models.User{}, err
	}
	return user, nil
}

// Login verifies credentials, issues a token, and opens the server-side
// session for the user.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, models.User, error) {
	user, err := s.users.FindByEmail(email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", models.User{}, ErrInvalidCredentials
		}
		return "", models.User{}, err
	}

	if !auth.CheckPassword(user.Password, password) {
		return "", models.User{}, ErrInvalidCredentials
	}

	token, err := auth.GenerateToken(user.ID, user.Role, user.Name, user.Email)
	if err != nil {
		return "", models.User{}, err
	}

	if err := s.sessionFor(user.ID).Login(ctx, token); err != nil {
		// A token we just issued always decodes; treat failure as fatal.
		return "", models.User{}, err
	}

	return token, user, nil
}

// Logout closes the user's server-side session.
func (s *AuthService) Logout(ctx context.Context, userID uint) {
	s.sessionFor(userID).Logout(ctx)
}

// Session restores the user's persisted session.
func (s *AuthService) Session(ctx context.Context, userID uint) *stores.Session {
	session := s.sessionFor(userID)
	session.Load(ctx)
	return session
}

// Profile returns the account for id.
func (s *AuthService) Profile(id uint) (models.User, error) {
	return s.users.FindByID(id)
}

// Users lists accounts for the admin dashboard.
func (s *AuthService) Users(page, limit int) ([]models.User, database.Pagination, error) {
	return s.users.All(page, limit)
}

// UpdateRole promotes or demotes an account.
func (s *AuthService) UpdateRole(ctx context.Context, id uint, role string) (models.User, error) {
	user, err := s.users.FindByID(id)
	if err != nil {
		return models.User{}, err
	}

	user.Role = role
	if err := s.users.Update(&user); err != nil {
		return models.User{}, err
	}

	// An open session carries the old role in its token; close it.
	s.sessionFor(user.ID).Logout(ctx)
	return user, nil
}

// DeleteUser removes an account and its open session.
func (s *AuthService) DeleteUser(ctx context.Context, id uint) error {
	if err := s.users.Delete(id); err != nil {
		return err
	}
	s.sessionFor(id).Logout(ctx)
	return nil
}
