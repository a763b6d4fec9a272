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

// UserController is the admin account-management surface.
type UserController struct {
	auth *services.AuthService
}

func NewUserController(authService *services.AuthService) *UserController {
	return &UserController{auth: authService}
}

func (c *UserController) Index(w http.ResponseWriter, r *http.Request) {
	page, limit := pageParams(r)
	users, pagination, err := c.auth.Users(page, limit)
	if err != nil {
		response.Error(w, http.StatusInternalServerError, "users unavailable")
		return
	}
	response.Paginated(w, users, pagination)
}

func (c *UserController) Show(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		response.Error(w, http.StatusBadRequest, "invalid user id")
		return
	}

	user, err := c.auth.Profile(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			response.NotFound(w)
			return
		}
		response.Error(w, http.StatusInternalServerError, "user lookup failed")
		return
	}
	response.Success(w, user)
}

type updateRoleRequest struct {
	Role string `json:"role" validate:"required,in=ADMIN,USER"`
}

func (c *UserController) UpdateRole(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		response.Error(w, http.StatusBadRequest, "invalid user id")
		return
	}

	var body updateRoleRequest
	if errs, err := bind.JSON(r, &body); err != nil {
		response.Error(w, http.StatusBadRequest, err.Error())
		return
	} else if errs != nil {
		response.ValidationError(w, errs)
		return
	}

	user, err := c.auth.UpdateRole(r.Context(), id, body.Role)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			response.NotFound(w)
			return
		}
		response.Error(w, http.StatusInternalServerError, "update role failed")
		return
	}
	response.Success(w, user)
}

func (c *UserController) Destroy(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		response.Error(w, http.StatusBadRequest, "invalid user id")
		return
	}

	// Admins cannot delete their own account while using it.
	if callerID, ok := middleware.UserIDFromCtx(r); ok && callerID == id {
		response.Error(w, http.StatusConflict, "cannot delete your own account")
		return
	}

	if err := c.auth.DeleteUser(r.Context(), id); err != nil {
		response.Error(w, http.StatusInternalServerError, "delete user failed")
		return
	}
	response.Success(w, map[string]string{"message": "user deleted"})
}
