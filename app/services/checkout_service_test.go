package services_test

import (
	"bytes"
	"context"
	"crypto/sha512"
	"encoding/hex"
	"io"
	gohttp "net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/gmcandra/mebelshop/app/models"
	"github.com/gmcandra/mebelshop/app/repositories"
	"github.com/gmcandra/mebelshop/app/services"
	"github.com/gmcandra/mebelshop/pkg/http"
	"github.com/gmcandra/mebelshop/pkg/kv"
	"github.com/gmcandra/mebelshop/pkg/payment"
)

const testServerKey = "SB-test-server-key"

// snapTransport fakes the payment gateway at the transport level.
type snapTransport struct {
	status int
	body   string
}

func (t *snapTransport) RoundTrip(*gohttp.Request) (*gohttp.Response, error) {
	return &gohttp.Response{
		StatusCode: t.status,
		Header:     gohttp.Header{"Content-Type": []string{"application/json"}},
		Body:       io.NopCloser(bytes.NewBufferString(t.body)),
	}, nil
}

func fakeGateway(t *testing.T) {
	t.Helper()
	http.DefaultClient.Transport = &snapTransport{
		status: 201,
		body:   `{"token":"snap-token-1","redirect_url":"https://app.sandbox.midtrans.com/snap/v2/vtweb/snap-token-1"}`,
	}
	t.Cleanup(http.ResetTransport)
}

type checkoutFixture struct {
	svc      *services.CheckoutService
	orders   *repositories.OrderRepository
	products []models.Product
	user     models.User
	db       *gorm.DB
}

func newCheckoutService(t *testing.T) (*services.CheckoutService, *repositories.OrderRepository, []models.Product, models.User) {
	f := newCheckoutFixture(t)
	return f.svc, f.orders, f.products, f.user
}

func newCheckoutFixture(t *testing.T) checkoutFixture {
	t.Helper()

	db := testDB(t)
	_, products := seedCatalog(t, db)
	user := seedUser(t, db, "budi@example.com")

	orders := repositories.NewOrderRepository(db)
	svc := services.NewCheckoutService(
		orders,
		repositories.NewProductRepository(db),
		kv.NewMemory(),
		payment.NewClientWith(testServerKey, "https://app.sandbox.midtrans.com"),
		nil,
	)
	return checkoutFixture{svc: svc, orders: orders, products: products, user: user, db: db}
}

func TestAddToCartSnapshotsProduct(t *testing.T) {
	svc, _, products, user := newCheckoutService(t)
	ctx := context.Background()

	cart, err := svc.AddToCart(ctx, user.ID, products[0].ID, 2)
	require.NoError(t, err)

	lines := cart.Lines()
	require.Len(t, lines, 1)
	assert.Equal(t, products[0].Name, lines[0].Name)
	assert.Equal(t, products[0].Price, lines[0].Price)
	assert.Equal(t, "Kursi", lines[0].Category)
	assert.Equal(t, 2, lines[0].Quantity)
}

func TestAddToCartUnknownProduct(t *testing.T) {
	svc, _, _, user := newCheckoutService(t)

	_, err := svc.AddToCart(context.Background(), user.ID, 999, 1)
	assert.Error(t, err)
}

func TestCheckoutCreatesOrderAndDecrementsStock(t *testing.T) {
	f := newCheckoutFixture(t)
	fakeGateway(t)
	ctx := context.Background()

	_, err := f.svc.AddToCart(ctx, f.user.ID, f.products[0].ID, 2)
	require.NoError(t, err)
	_, err = f.svc.AddToCart(ctx, f.user.ID, f.products[1].ID, 1)
	require.NoError(t, err)

	order, err := f.svc.Checkout(ctx, f.user, "Jl. Mawar No. 3, Semarang, Jawa Tengah")
	require.NoError(t, err)

	assert.Equal(t, models.OrderPending, order.Status)
	assert.Equal(t, 2*450000+750000.0, order.Total)
	require.Len(t, order.Items, 2)
	assert.Equal(t, "snap-token-1", order.SnapToken)
	assert.Contains(t, order.PaymentURL, "snap-token-1")

	fresh := f.svc.CartFor(ctx, f.user.ID)
	assert.Empty(t, fresh.Lines(), "checkout clears the cart")

	var kursi models.Product
	require.NoError(t, f.db.First(&kursi, f.products[0].ID).Error)
	assert.Equal(t, 3, kursi.Stock, "stock decremented with the order")

	stored, err := f.orders.FindByCode(order.Code)
	require.NoError(t, err)
	assert.Equal(t, "snap-token-1", stored.SnapToken)
}

func TestCheckoutEmptyCart(t *testing.T) {
	svc, _, _, user := newCheckoutService(t)

	_, err := svc.Checkout(context.Background(), user, "Jl. Mawar No. 3, Semarang")
	assert.ErrorIs(t, err, services.ErrCartEmpty)
}

func TestCheckoutReclampsAgainstLiveStock(t *testing.T) {
	f := newCheckoutFixture(t)
	fakeGateway(t)
	ctx := context.Background()

	// Cart holds 5 but only 2 remain by checkout time.
	_, err := f.svc.AddToCart(ctx, f.user.ID, f.products[0].ID, 5)
	require.NoError(t, err)

	err = f.db.Model(&models.Product{}).
		Where("id = ?", f.products[0].ID).
		Update("stock", 2).Error
	require.NoError(t, err)

	order, err := f.svc.Checkout(ctx, f.user, "Jl. Mawar No. 3, Semarang")
	require.NoError(t, err)
	require.Len(t, order.Items, 1)
	assert.Equal(t, 2, order.Items[0].Quantity, "quantity clamps to the live stock")
}

// webhookPayload builds a payload with a valid signature for the test key.
func webhookPayload(orderCode, status, fraud string) payment.WebhookPayload {
	p := payment.WebhookPayload{
		OrderID:           orderCode,
		StatusCode:        "200",
		GrossAmount:       "1650000.00",
		TransactionStatus: status,
		FraudStatus:       fraud,
	}
	sum := sha512.Sum512([]byte(p.OrderID + p.StatusCode + p.GrossAmount + testServerKey))
	p.SignatureKey = hex.EncodeToString(sum[:])
	return p
}

func TestWebhookSettlementMarksPaid(t *testing.T) {
	svc, orders, products, user := newCheckoutService(t)
	fakeGateway(t)
	ctx := context.Background()

	_, err := svc.AddToCart(ctx, user.ID, products[0].ID, 1)
	require.NoError(t, err)
	order, err := svc.Checkout(ctx, user, "Jl. Mawar No. 3, Semarang")
	require.NoError(t, err)

	err = svc.HandleWebhook(ctx, webhookPayload(order.Code, payment.StatusSettlement, ""))
	require.NoError(t, err)

	stored, err := orders.FindByCode(order.Code)
	require.NoError(t, err)
	assert.Equal(t, models.OrderPaid, stored.Status)
}

func TestUpdateStatusMovesOrderToCompleted(t *testing.T) {
	svc, orders, products, user := newCheckoutService(t)
	fakeGateway(t)
	ctx := context.Background()

	_, err := svc.AddToCart(ctx, user.ID, products[0].ID, 1)
	require.NoError(t, err)
	order, err := svc.Checkout(ctx, user, "Jl. Mawar No. 3, Semarang")
	require.NoError(t, err)

	_, err = svc.UpdateStatus(order.Code, models.OrderCompleted)
	require.NoError(t, err)

	stored, err := orders.FindByCode(order.Code)
	require.NoError(t, err)
	assert.Equal(t, "completed", stored.Status)
}

func TestWebhookExpiryCancels(t *testing.T) {
	svc, orders, products, user := newCheckoutService(t)
	fakeGateway(t)
	ctx := context.Background()

	_, err := svc.AddToCart(ctx, user.ID, products[0].ID, 1)
	require.NoError(t, err)
	order, err := svc.Checkout(ctx, user, "Jl. Mawar No. 3, Semarang")
	require.NoError(t, err)

	err = svc.HandleWebhook(ctx, webhookPayload(order.Code, payment.StatusExpire, ""))
	require.NoError(t, err)

	stored, err := orders.FindByCode(order.Code)
	require.NoError(t, err)
	assert.Equal(t, models.OrderCancelled, stored.Status)
}

func TestWebhookRejectsForgedSignature(t *testing.T) {
	svc, _, products, user := newCheckoutService(t)
	fakeGateway(t)
	ctx := context.Background()

	_, err := svc.AddToCart(ctx, user.ID, products[0].ID, 1)
	require.NoError(t, err)
	order, err := svc.Checkout(ctx, user, "Jl. Mawar No. 3, Semarang")
	require.NoError(t, err)

	p := webhookPayload(order.Code, payment.StatusSettlement, "")
	p.SignatureKey = "forged"
	assert.ErrorIs(t, svc.HandleWebhook(ctx, p), services.ErrInvalidSignature)
}

func TestWebhookUnknownOrder(t *testing.T) {
	svc, _, _, _ := newCheckoutService(t)

	err := svc.HandleWebhook(context.Background(), webhookPayload("ORD-NOPE", payment.StatusSettlement, ""))
	assert.ErrorIs(t, err, services.ErrUnknownOrder)
}
