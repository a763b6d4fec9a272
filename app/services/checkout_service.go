package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/gmcandra/mebelshop/app/jobs"
	"github.com/gmcandra/mebelshop/app/models"
	"github.com/gmcandra/mebelshop/app/repositories"
	"github.com/gmcandra/mebelshop/app/stores"
	"github.com/gmcandra/mebelshop/pkg/collection"
	"github.com/gmcandra/mebelshop/pkg/database"
	"github.com/gmcandra/mebelshop/pkg/kv"
	"github.com/gmcandra/mebelshop/pkg/logger"
	"github.com/gmcandra/mebelshop/pkg/metrics"
	"github.com/gmcandra/mebelshop/pkg/payment"
	"github.com/gmcandra/mebelshop/pkg/queue"
	"github.com/gmcandra/mebelshop/pkg/ws"
)

var (
	ErrCartEmpty        = errors.New("cart is empty")
	ErrInvalidSignature = errors.New("webhook signature mismatch")
	ErrUnknownOrder     = errors.New("unknown order code")
)

// CheckoutService turns carts into orders and tracks their payment state.
type CheckoutService struct {
	orders   *repositories.OrderRepository
	products *repositories.ProductRepository
	kv       kv.Store
	gateway  *payment.Client
	hub      *ws.Hub
}

func NewCheckoutService(
	orders *repositories.OrderRepository,
	products *repositories.ProductRepository,
	store kv.Store,
	gateway *payment.Client,
	hub *ws.Hub,
) *CheckoutService {
	return &CheckoutService{
		orders:   orders,
		products: products,
		kv:       store,
		gateway:  gateway,
		hub:      hub,
	}
}

// CartFor restores the user's persisted cart.
func (s *CheckoutService) CartFor(ctx context.Context, userID uint) *stores.Cart {
	cart := stores.NewCart(s.kv, fmt.Sprintf("cart:%d", userID))
	cart.Load(ctx)
	return cart
}

// AddToCart snapshots the product into the user's cart. Quantity is
// clamped inside the cart against the product's stock.
func (s *CheckoutService) AddToCart(ctx context.Context, userID, productID uint, qty int) (*stores.Cart, error) {
	product, err := s.products.FindByID(productID)
	if err != nil {
		return nil, err
	}

	cart := s.CartFor(ctx, userID)
	cart.Add(ctx, product, qty)
	return cart, nil
}

// UpdateCartQuantity sets a line's quantity, clamped to stock.
func (s *CheckoutService) UpdateCartQuantity(ctx context.Context, userID, productID uint, qty int) *stores.Cart {
	cart := s.CartFor(ctx, userID)
	cart.UpdateQuantity(ctx, productID, qty)
	return cart
}

// RemoveFromCart drops a line; removing an absent product is a no-op.
func (s *CheckoutService) RemoveFromCart(ctx context.Context, userID, productID uint) *stores.Cart {
	cart := s.CartFor(ctx, userID)
	cart.Remove(ctx, productID)
	return cart
}

// ClearCart empties the user's cart.
func (s *CheckoutService) ClearCart(ctx context.Context, userID uint) *stores.Cart {
	cart := s.CartFor(ctx, userID)
	cart.Clear(ctx)
	return cart
}

// Checkout freezes the user's cart into an order, decrements stock, and
// opens a payment session. Quantities are re-clamped against live stock
// first so a stale cart cannot oversell.
func (s *CheckoutService) Checkout(ctx context.Context, user models.User, shippingTo string) (models.Order, error) {
	cart := s.CartFor(ctx, user.ID)
	lines := cart.Lines()
	if len(lines) == 0 {
		return models.Order{}, ErrCartEmpty
	}

	ids := collection.Map(lines, func(l stores.Line) uint { return l.ProductID })
	live, err := s.products.FindByIDs(ids)
	if err != nil {
		return models.Order{}, err
	}
	stock := collection.KeyBy(live, func(p models.Product) uint { return p.ID })

	order := models.Order{
		Code:       orderCode(),
		UserID:     user.ID,
		Status:     models.OrderPending,
		ShippingTo: shippingTo,
	}
	for _, line := range lines {
		product, ok := stock[line.ProductID]
		if !ok {
			// Product removed from the catalog since it was added.
			continue
		}
		qty := line.Quantity
		if product.Stock > 0 && qty > product.Stock {
			qty = product.Stock
			metrics.QuantityClamped.WithLabelValues("stock").Inc()
		}
		if qty < 1 {
			continue
		}
		order.Items = append(order.Items, models.OrderItem{
			ProductID: product.ID,
			Name:      product.Name,
			Price:     product.Price,
			Quantity:  qty,
		})
		order.Total += product.Price * float64(qty)
	}
	if len(order.Items) == 0 {
		return models.Order{}, ErrCartEmpty
	}

	if err := s.orders.CreateWithStock(&order, s.products); err != nil {
		return models.Order{}, err
	}

	session, err := s.gateway.CreateSession(ctx, payment.SnapRequest{
		OrderID:     order.Code,
		GrossAmount: int64(order.Total),
		Items: collection.Map(order.Items, func(i models.OrderItem) payment.ItemDetail {
			return payment.ItemDetail{
				ID:       fmt.Sprintf("%d", i.ProductID),
				Name:     i.Name,
				Price:    int64(i.Price),
				Quantity: i.Quantity,
			}
		}),
		CustomerName:  user.Name,
		CustomerEmail: user.Email,
	})
	if err != nil {
		// The order stays pending; the customer can retry payment later.
		logger.Error("checkout: payment session failed", "order", order.Code, "error", err)
	} else {
		order.SnapToken = session.Token
		order.PaymentURL = session.RedirectURL
		if err := s.orders.SavePayment(order.Code, session.Token, session.RedirectURL); err != nil {
			logger.Error("checkout: save payment session", "order", order.Code, "error", err)
		}
	}

	cart.Clear(ctx)
	metrics.OrdersPlaced.WithLabelValues(models.OrderPending).Inc()

	if err := queue.Dispatch(&jobs.SendOrderPlaced{OrderCode: order.Code}); err != nil {
		logger.Warn("checkout: dispatch order mail", "order", order.Code, "error", err)
	}

	return order, nil
}

// HandleWebhook processes a payment gateway callback, moving the order
// to paid or cancelled and notifying the customer.
func (s *CheckoutService) HandleWebhook(ctx context.Context, p payment.WebhookPayload) error {
	if !s.gateway.VerifySignature(p) {
		return ErrInvalidSignature
	}

	order, err := s.orders.FindByCode(p.OrderID)
	if err != nil {
		return ErrUnknownOrder
	}

	var status string
	switch {
	case payment.IsPaid(p):
		status = models.OrderPaid
	case payment.IsClosed(p):
		status = models.OrderCancelled
	default:
		// pending/challenge notifications carry no state change for us
		return nil
	}

	if order.Status == status {
		return nil
	}
	if err := s.orders.UpdateStatus(order.Code, status); err != nil {
		return err
	}
	metrics.OrdersPlaced.WithLabelValues(status).Inc()
	s.announceStatus(order, status)
	return nil
}

// UpdateStatus is the admin path for moving an order along fulfilment
// (shipped, completed, cancelled).
func (s *CheckoutService) UpdateStatus(code, status string) (models.Order, error) {
	order, err := s.orders.FindByCode(code)
	if err != nil {
		return models.Order{}, err
	}
	if err := s.orders.UpdateStatus(code, status); err != nil {
		return models.Order{}, err
	}
	order.Status = status
	s.announceStatus(order, status)
	return order, nil
}

// Orders returns one user's order history.
func (s *CheckoutService) Orders(userID uint, page, limit int) ([]models.Order, database.Pagination, error) {
	return s.orders.ForUser(userID, page, limit)
}

// AllOrders returns every order for the admin dashboard.
func (s *CheckoutService) AllOrders(page, limit int) ([]models.Order, database.Pagination, error) {
	return s.orders.All(page, limit)
}

// Order loads one order by code, enforcing ownership unless admin.
func (s *CheckoutService) Order(code string, userID uint, admin bool) (models.Order, error) {
	order, err := s.orders.FindByCode(code)
	if err != nil {
		return models.Order{}, err
	}
	if !admin && order.UserID != userID {
		return models.Order{}, ErrUnknownOrder
	}
	return order, nil
}

// announceStatus pushes the change to the customer over every channel:
// background mail/push/database job plus the live websocket feed.
func (s *CheckoutService) announceStatus(order models.Order, status string) {
	if err := queue.Dispatch(&jobs.SendOrderStatus{OrderCode: order.Code, Status: status}); err != nil {
		logger.Warn("checkout: dispatch status mail", "order", order.Code, "error", err)
	}

	if s.hub != nil {
		event, _ := json.Marshal(map[string]interface{}{
			"event":      "order.status_changed",
			"order_code": order.Code,
			"status":     status,
		})
		s.hub.SendToUser(order.UserID, event)
	}
}

// orderCode builds an external reference like ORD-20260829-4F7K2M.
func orderCode() string {
	const alphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
	suffix := make([]byte, 6)
	for i := range suffix {
		suffix[i] = alphabet[rand.Intn(len(alphabet))]
	}
	return fmt.Sprintf("ORD-%s-%s", time.Now().Format("20060102"), suffix)
}
