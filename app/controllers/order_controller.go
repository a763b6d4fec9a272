package controllers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"gorm.io/gorm"

	"github.com/gmcandra/mebelshop/app/repositories"
	"github.com/gmcandra/mebelshop/app/services"
	"github.com/gmcandra/mebelshop/pkg/auth"
	"github.com/gmcandra/mebelshop/pkg/bind"
	"github.com/gmcandra/mebelshop/pkg/middleware"
	"github.com/gmcandra/mebelshop/pkg/payment"
	"github.com/gmcandra/mebelshop/pkg/response"
)

type OrderController struct {
	checkout *services.CheckoutService
	auth     *services.AuthService
}

func NewOrderController(checkout *services.CheckoutService, authService *services.AuthService) *OrderController {
	return &OrderController{checkout: checkout, auth: authService}
}

type checkoutRequest struct {
	ShippingTo string `json:"shipping_to" validate:"required,min=10,max=1000"`
}

// Store runs checkout for the caller's cart.
func (c *OrderController) Store(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromCtx(r)
	if !ok {
		response.Unauthorized(w)
		return
	}

	var body checkoutRequest
	if errs, err := bind.JSON(r, &body); err != nil {
		response.Error(w, http.StatusBadRequest, err.Error())
		return
	} else if errs != nil {
		response.ValidationError(w, errs)
		return
	}

	user, err := c.auth.Profile(userID)
	if err != nil {
		response.Unauthorized(w)
		return
	}

	order, err := c.checkout.Checkout(r.Context(), user, body.ShippingTo)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrCartEmpty):
			response.Error(w, http.StatusUnprocessableEntity, err.Error())
		case errors.Is(err, repositories.ErrInsufficientStock):
			response.Error(w, http.StatusConflict, err.Error())
		default:
			response.Error(w, http.StatusInternalServerError, "checkout failed")
		}
		return
	}
	response.Created(w, order)
}

// Index lists the caller's orders.
func (c *OrderController) Index(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromCtx(r)
	if !ok {
		response.Unauthorized(w)
		return
	}

	page, limit := pageParams(r)
	orders, pagination, err := c.checkout.Orders(userID, page, limit)
	if err != nil {
		response.Error(w, http.StatusInternalServerError, "orders unavailable")
		return
	}
	response.Paginated(w, orders, pagination)
}

// Show loads one order by code. Admins can read any order.
func (c *OrderController) Show(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromCtx(r)
	if !ok {
		response.Unauthorized(w)
		return
	}
	role, _ := middleware.RoleFromCtx(r)

	code := chi.URLParam(r, "code")
	order, err := c.checkout.Order(code, userID, role == auth.RoleAdmin)
	if err != nil {
		response.NotFound(w)
		return
	}
	response.Success(w, order)
}

// AdminIndex lists every order.
func (c *OrderController) AdminIndex(w http.ResponseWriter, r *http.Request) {
	page, limit := pageParams(r)
	orders, pagination, err := c.checkout.AllOrders(page, limit)
	if err != nil {
		response.Error(w, http.StatusInternalServerError, "orders unavailable")
		return
	}
	response.Paginated(w, orders, pagination)
}

type updateStatusRequest struct {
	Status string `json:"status" validate:"required,in=pending,paid,shipped,completed,cancelled"`
}

// UpdateStatus moves an order along fulfilment.
func (c *OrderController) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	var body updateStatusRequest
	if errs, err := bind.JSON(r, &body); err != nil {
		response.Error(w, http.StatusBadRequest, err.Error())
		return
	} else if errs != nil {
		response.ValidationError(w, errs)
		return
	}

	code := chi.URLParam(r, "code")
	order, err := c.checkout.UpdateStatus(code, body.Status)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			response.NotFound(w)
			return
		}
		response.Error(w, http.StatusInternalServerError, "update status failed")
		return
	}
	response.Success(w, order)
}

// Webhook receives payment gateway callbacks. The gateway expects a 200
// on success and retries otherwise.
func (c *OrderController) Webhook(w http.ResponseWriter, r *http.Request) {
	var payload payment.WebhookPayload
	if _, err := bind.JSON(r, &payload); err != nil {
		response.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := c.checkout.HandleWebhook(r.Context(), payload); err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidSignature):
			response.Forbidden(w)
		case errors.Is(err, services.ErrUnknownOrder):
			response.NotFound(w)
		default:
			response.Error(w, http.StatusInternalServerError, "webhook processing failed")
		}
		return
	}
	response.Success(w, map[string]string{"message": "ok"})
}
