package payment_test

import (
	"bytes"
	"context"
	"crypto/sha512"
	"encoding/hex"
	"encoding/json"
	"io"
	gohttp "net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gmcandra/mebelshop/pkg/http"
	"github.com/gmcandra/mebelshop/pkg/payment"
)

// snapTransport fakes the Snap API at the transport level.
type snapTransport struct {
	lastReq *gohttp.Request
	status  int
	body    string
}

func (t *snapTransport) RoundTrip(req *gohttp.Request) (*gohttp.Response, error) {
	t.lastReq = req
	return &gohttp.Response{
		StatusCode: t.status,
		Header:     gohttp.Header{"Content-Type": []string{"application/json"}},
		Body:       io.NopCloser(bytes.NewBufferString(t.body)),
	}, nil
}

func TestCreateSession(t *testing.T) {
	fake := &snapTransport{
		status: 201,
		body:   `{"token":"abc123","redirect_url":"https://app.sandbox.midtrans.com/snap/v2/vtweb/abc123"}`,
	}
	http.DefaultClient.Transport = fake
	defer http.ResetTransport()

	client := payment.NewClientWith("SB-server-key", "https://app.sandbox.midtrans.com")
	session, err := client.CreateSession(context.Background(), payment.SnapRequest{
		OrderID:     "ORDER-42",
		GrossAmount: 1650000,
		Items: []payment.ItemDetail{
			{ID: "1", Name: "Kursi Jati Minimalis", Price: 450000, Quantity: 2},
			{ID: "2", Name: "Meja Makan Jati", Price: 750000, Quantity: 1},
		},
		CustomerName:  "Budi Santoso",
		CustomerEmail: "budi@example.com",
	})

	require.NoError(t, err)
	assert.Equal(t, "abc123", session.Token)
	assert.Contains(t, session.RedirectURL, "abc123")

	require.NotNil(t, fake.lastReq)
	assert.Equal(t, "/snap/v1/transactions", fake.lastReq.URL.Path)
	assert.Contains(t, fake.lastReq.Header.Get("Authorization"), "Basic ")

	raw, _ := io.ReadAll(fake.lastReq.Body)
	var sent map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &sent))
	td := sent["transaction_details"].(map[string]interface{})
	assert.Equal(t, "ORDER-42", td["order_id"])
	assert.Equal(t, float64(1650000), td["gross_amount"])
}

func TestCreateSessionGatewayError(t *testing.T) {
	http.DefaultClient.Transport = &snapTransport{status: 401, body: `{"error_messages":["unauthorized"]}`}
	defer http.ResetTransport()

	client := payment.NewClientWith("bad-key", "https://app.sandbox.midtrans.com")
	_, err := client.CreateSession(context.Background(), payment.SnapRequest{OrderID: "X", GrossAmount: 1})
	assert.Error(t, err)
}

func TestCreateSessionRequiresServerKey(t *testing.T) {
	client := payment.NewClientWith("", "https://app.sandbox.midtrans.com")
	_, err := client.CreateSession(context.Background(), payment.SnapRequest{OrderID: "X"})
	assert.Error(t, err)
}

func TestVerifySignature(t *testing.T) {
	const key = "SB-server-key"
	p := payment.WebhookPayload{
		OrderID:     "ORDER-42",
		StatusCode:  "200",
		GrossAmount: "1650000.00",
	}
	sum := sha512.Sum512([]byte(p.OrderID + p.StatusCode + p.GrossAmount + key))
	p.SignatureKey = hex.EncodeToString(sum[:])

	client := payment.NewClientWith(key, "")
	assert.True(t, client.VerifySignature(p))

	p.SignatureKey = "forged"
	assert.False(t, client.VerifySignature(p))
}

func TestPaidAndClosedStates(t *testing.T) {
	assert.True(t, payment.IsPaid(payment.WebhookPayload{TransactionStatus: "settlement"}))
	assert.True(t, payment.IsPaid(payment.WebhookPayload{TransactionStatus: "capture", FraudStatus: "accept"}))
	assert.False(t, payment.IsPaid(payment.WebhookPayload{TransactionStatus: "capture", FraudStatus: "challenge"}))
	assert.False(t, payment.IsPaid(payment.WebhookPayload{TransactionStatus: "pending"}))

	assert.True(t, payment.IsClosed(payment.WebhookPayload{TransactionStatus: "expire"}))
	assert.True(t, payment.IsClosed(payment.WebhookPayload{TransactionStatus: "cancel"}))
	assert.False(t, payment.IsClosed(payment.WebhookPayload{TransactionStatus: "settlement"}))
}
