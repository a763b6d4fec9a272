// Package payment talks to the Midtrans Snap gateway: creating payment
// sessions at checkout and verifying status webhooks.
package payment

import (
	"context"
	"crypto/sha512"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/gmcandra/mebelshop/config"
	"github.com/gmcandra/mebelshop/pkg/http"
)

// Status values reported by the gateway.
const (
	StatusPending    = "pending"
	StatusSettlement = "settlement"
	StatusCapture    = "capture"
	StatusDeny       = "deny"
	StatusCancel     = "cancel"
	StatusExpire     = "expire"
)

// Client calls the Snap API.
type Client struct {
	serverKey string
	baseURL   string
}

// NewClient builds a Client from MIDTRANS_SERVER_KEY and
// MIDTRANS_BASE_URL (defaults to the sandbox).
func NewClient() *Client {
	return &Client{
		serverKey: config.Get("MIDTRANS_SERVER_KEY", ""),
		baseURL:   config.Get("MIDTRANS_BASE_URL", "https://app.sandbox.midtrans.com"),
	}
}

// NewClientWith builds a Client with explicit credentials, for tests.
func NewClientWith(serverKey, baseURL string) *Client {
	return &Client{serverKey: serverKey, baseURL: baseURL}
}

// ItemDetail describes one order line sent to the gateway.
type ItemDetail struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Price    int64  `json:"price"`
	Quantity int    `json:"quantity"`
}

// SnapRequest is the checkout payload.
type SnapRequest struct {
	OrderID       string
	GrossAmount   int64
	Items         []ItemDetail
	CustomerName  string
	CustomerEmail string
}

// SnapSession is the created payment session.
type SnapSession struct {
	Token       string `json:"token"`
	RedirectURL string `json:"redirect_url"`
}

type snapBody struct {
	TransactionDetails struct {
		OrderID     string `json:"order_id"`
		GrossAmount int64  `json:"gross_amount"`
	} `json:"transaction_details"`
	ItemDetails     []ItemDetail `json:"item_details"`
	CustomerDetails struct {
		FirstName string `json:"first_name"`
		Email     string `json:"email"`
	} `json:"customer_details"`
}

// CreateSession opens a Snap payment session for an order.
func (c *Client) CreateSession(ctx context.Context, req SnapRequest) (*SnapSession, error) {
	if c.serverKey == "" {
		return nil, fmt.Errorf("payment: MIDTRANS_SERVER_KEY not configured")
	}

	var body snapBody
	body.TransactionDetails.OrderID = req.OrderID
	body.TransactionDetails.GrossAmount = req.GrossAmount
	body.ItemDetails = req.Items
	body.CustomerDetails.FirstName = req.CustomerName
	body.CustomerDetails.Email = req.CustomerEmail

	resp, err := http.Post(c.baseURL+"/snap/v1/transactions").
		BasicAuth(c.serverKey, "").
		Body(body).
		Timeout(15 * time.Second).
		Retry(3, time.Second).
		WithContext(ctx).
		Send()
	if err != nil {
		return nil, fmt.Errorf("payment: create session: %w", err)
	}
	if err := resp.Throw(); err != nil {
		return nil, fmt.Errorf("payment: create session: %w", err)
	}

	var session SnapSession
	if err := resp.JSON(&session); err != nil {
		return nil, fmt.Errorf("payment: decode session: %w", err)
	}
	return &session, nil
}

// WebhookPayload is the notification the gateway POSTs on status change.
type WebhookPayload struct {
	OrderID           string `json:"order_id"`
	StatusCode        string `json:"status_code"`
	GrossAmount       string `json:"gross_amount"`
	SignatureKey      string `json:"signature_key"`
	TransactionStatus string `json:"transaction_status"`
	FraudStatus       string `json:"fraud_status"`
}

// VerifySignature checks the webhook's SHA-512 signature:
// sha512(order_id + status_code + gross_amount + server_key).
func (c *Client) VerifySignature(p WebhookPayload) bool {
	sum := sha512.Sum512([]byte(p.OrderID + p.StatusCode + p.GrossAmount + c.serverKey))
	return hex.EncodeToString(sum[:]) == p.SignatureKey
}

// IsPaid reports whether the payload marks the order as successfully paid.
// A capture only counts when fraud screening accepted it.
func IsPaid(p WebhookPayload) bool {
	switch p.TransactionStatus {
	case StatusSettlement:
		return true
	case StatusCapture:
		return p.FraudStatus == "" || p.FraudStatus == "accept"
	}
	return false
}

// IsClosed reports whether the payload terminates the order without payment.
func IsClosed(p WebhookPayload) bool {
	switch p.TransactionStatus {
	case StatusDeny, StatusCancel, StatusExpire:
		return true
	}
	return false
}
