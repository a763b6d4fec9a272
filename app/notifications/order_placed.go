// Package notifications holds the shop's notification types. Each one
// decides its channels via Via and renders per-channel payloads.
package notifications

import (
	"fmt"

	"github.com/gmcandra/mebelshop/app/models"
	"github.com/gmcandra/mebelshop/pkg/notification"
)

// OrderPlaced is sent to the customer right after checkout, carrying the
// payment link.
type OrderPlaced struct {
	Order models.Order
}

func (n OrderPlaced) Via() []string {
	return []string{"mail", "database"}
}

func (n OrderPlaced) ToMail() notification.MailData {
	body := fmt.Sprintf(`<h2>Terima kasih atas pesanan Anda!</h2>
<p>Pesanan <strong>%s</strong> senilai Rp %.0f sedang menunggu pembayaran.</p>
<p><a href="%s">Selesaikan pembayaran</a> untuk memproses pesanan Anda.</p>
<p>Salam hangat,<br>GM Candra Mebel</p>`,
		n.Order.Code, n.Order.Total, n.Order.PaymentURL)

	return notification.MailData{
		Subject: fmt.Sprintf("Pesanan %s menunggu pembayaran", n.Order.Code),
		Body:    body,
		Text: fmt.Sprintf(
			"Pesanan %s senilai Rp %.0f menunggu pembayaran. Bayar di: %s",
			n.Order.Code, n.Order.Total, n.Order.PaymentURL),
	}
}

func (n OrderPlaced) ToDatabase() notification.DatabaseData {
	return notification.DatabaseData{
		Type:    "order.placed",
		Message: fmt.Sprintf("Pesanan %s dibuat, menunggu pembayaran.", n.Order.Code),
		Data: map[string]interface{}{
			"order_code":  n.Order.Code,
			"total":       n.Order.Total,
			"payment_url": n.Order.PaymentURL,
		},
	}
}
