package controllers

import (
	"errors"
	"net/http"

	"gorm.io/gorm"

	"github.com/gmcandra/mebelshop/app/services"
	"github.com/gmcandra/mebelshop/app/stores"
	"github.com/gmcandra/mebelshop/pkg/bind"
	"github.com/gmcandra/mebelshop/pkg/middleware"
	"github.com/gmcandra/mebelshop/pkg/response"
)

type CartController struct {
	checkout *services.CheckoutService
}

func NewCartController(checkout *services.CheckoutService) *CartController {
	return &CartController{checkout: checkout}
}

// cartView is the API shape of a cart.
type cartView struct {
	Lines      []stores.Line `json:"lines"`
	TotalItems int           `json:"total_items"`
	TotalPrice float64       `json:"total_price"`
}

func viewOf(cart *stores.Cart) cartView {
	lines := cart.Lines()
	if lines == nil {
		lines = []stores.Line{}
	}
	return cartView{
		Lines:      lines,
		TotalItems: cart.TotalItems(),
		TotalPrice: cart.TotalPrice(),
	}
}

func (c *CartController) Show(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromCtx(r)
	if !ok {
		response.Unauthorized(w)
		return
	}
	response.Success(w, viewOf(c.checkout.CartFor(r.Context(), userID)))
}

type addToCartRequest struct {
	ProductID uint `json:"product_id" validate:"required"`
	Quantity  int  `json:"quantity"   validate:"required,gte=1"`
}

func (c *CartController) Add(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromCtx(r)
	if !ok {
		response.Unauthorized(w)
		return
	}

	var body addToCartRequest
	if errs, err := bind.JSON(r, &body); err != nil {
		response.Error(w, http.StatusBadRequest, err.Error())
		return
	} else if errs != nil {
		response.ValidationError(w, errs)
		return
	}

	cart, err := c.checkout.AddToCart(r.Context(), userID, body.ProductID, body.Quantity)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			response.Error(w, http.StatusUnprocessableEntity, "unknown product")
			return
		}
		response.Error(w, http.StatusInternalServerError, "add to cart failed")
		return
	}
	response.Success(w, viewOf(cart))
}

type updateQuantityRequest struct {
	Quantity int `json:"quantity" validate:"required"`
}

func (c *CartController) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromCtx(r)
	if !ok {
		response.Unauthorized(w)
		return
	}
	productID, ok := idParam(r)
	if !ok {
		response.Error(w, http.StatusBadRequest, "invalid product id")
		return
	}

	var body updateQuantityRequest
	if errs, err := bind.JSON(r, &body); err != nil {
		response.Error(w, http.StatusBadRequest, err.Error())
		return
	} else if errs != nil {
		response.ValidationError(w, errs)
		return
	}

	cart := c.checkout.UpdateCartQuantity(r.Context(), userID, productID, body.Quantity)
	response.Success(w, viewOf(cart))
}

func (c *CartController) Remove(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromCtx(r)
	if !ok {
		response.Unauthorized(w)
		return
	}
	productID, ok := idParam(r)
	if !ok {
		response.Error(w, http.StatusBadRequest, "invalid product id")
		return
	}

	cart := c.checkout.RemoveFromCart(r.Context(), userID, productID)
	response.Success(w, viewOf(cart))
}

func (c *CartController) Clear(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromCtx(r)
	if !ok {
		response.Unauthorized(w)
		return
	}

	cart := c.checkout.ClearCart(r.Context(), userID)
	response.Success(w, viewOf(cart))
}
