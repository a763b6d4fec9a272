// Package controllers maps HTTP requests onto the service layer.
package controllers

import (
	"errors"
	"net/http"

	"gorm.io/gorm"

	"github.com/gmcandra/mebelshop/app/services"
	"github.com/gmcandra/mebelshop/pkg/bind"
	"github.com/gmcandra/mebelshop/pkg/middleware"
	"github.com/gmcandra/mebelshop/pkg/response"
)

type AuthController struct {
	service *services.AuthService
}

func NewAuthController(service *services.AuthService) *AuthController {
	return &AuthController{service: service}
}

type registerRequest struct {
	Name     string `json:"name"     validate:"required,min=2,max=255"`
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=72"`
	Phone    string `json:"phone"    validate:"nullable,max=32"`
	Address  string `json:"address"  validate:"nullable,max=1000"`
}

func (c *AuthController) Register(w http.ResponseWriter, r *http.Request) {
	var body registerRequest
	if errs, err := bind.JSON(r, &body); err != nil {
		response.Error(w, http.StatusBadRequest, err.Error())
		return
	} else if errs != nil {
		response.ValidationError(w, errs)
		return
	}

	user, err := c.service.Register(body.Name, body.Email, body.Password, body.Phone, body.Address)
	if err != nil {
		if errors.Is(err, services.ErrEmailTaken) {
			response.Error(w, http.StatusConflict, err.Error())
			return
		}
		response.Error(w, http.StatusInternalServerError, "registration failed")
		return
	}

	response.Created(w, user)
}

type loginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func (c *AuthController) Login(w http.ResponseWriter, r *http.Request) {
	var body loginRequest
	if errs, err := bind.JSON(r, &body); err != nil {
		response.Error(w, http.StatusBadRequest, err.Error())
		return
	} else if errs != nil {
		response.ValidationError(w, errs)
		return
	}

	token, user, err := c.service.Login(r.Context(), body.Email, body.Password)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			response.Error(w, http.StatusUnauthorized, err.Error())
			return
		}
		response.Error(w, http.StatusInternalServerError, "login failed")
		return
	}

	response.Success(w, map[string]interface{}{
		"token": token,
		"user":  user,
	})
}

func (c *AuthController) Logout(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromCtx(r)
	if !ok {
		response.Unauthorized(w)
		return
	}

	c.service.Logout(r.Context(), userID)
	response.Success(w, map[string]string{"message": "logged out"})
}

func (c *AuthController) Profile(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromCtx(r)
	if !ok {
		response.Unauthorized(w)
		return
	}

	user, err := c.service.Profile(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			response.NotFound(w)
			return
		}
		response.Error(w, http.StatusInternalServerError, "profile lookup failed")
		return
	}

	response.Success(w, user)
}

// Session reports the caller's restored session state, mainly so clients
// can resync after a reload.
func (c *AuthController) Session(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromCtx(r)
	if !ok {
		response.Unauthorized(w)
		return
	}

	session := c.service.Session(r.Context(), userID)
	response.Success(w, map[string]interface{}{
		"authenticated": session.IsAuthenticated(),
		"role":          session.Role(),
		"identity":      session.Identity(),
	})
}
