package notifications

import (
	"fmt"

	"github.com/gmcandra/mebelshop/app/models"
	"github.com/gmcandra/mebelshop/pkg/notification"
)

// statusCopy maps order statuses to customer-facing Indonesian phrasing.
var statusCopy = map[string]string{
	models.OrderPaid:      "telah dibayar dan sedang kami siapkan",
	models.OrderShipped:   "sedang dalam pengiriman",
	models.OrderCompleted: "telah selesai",
	models.OrderCancelled: "dibatalkan",
}

// OrderStatusChanged is sent whenever an order moves to a new status,
// most often from the payment webhook.
type OrderStatusChanged struct {
	Order  models.Order
	Status string
}

func (n OrderStatusChanged) Via() []string {
	return []string{"mail", "push", "database"}
}

func (n OrderStatusChanged) message() string {
	copy, ok := statusCopy[n.Status]
	if !ok {
		copy = fmt.Sprintf("berstatus %s", n.Status)
	}
	return fmt.Sprintf("Pesanan %s %s.", n.Order.Code, copy)
}

func (n OrderStatusChanged) ToMail() notification.MailData {
	return notification.MailData{
		Subject: fmt.Sprintf("Pembaruan pesanan %s", n.Order.Code),
		Body: fmt.Sprintf(`<h2>Pembaruan Pesanan</h2>
<p>%s</p>
<p>Salam hangat,<br>GM Candra Mebel</p>`, n.message()),
		Text: n.message(),
	}
}

func (n OrderStatusChanged) ToPush() notification.PushData {
	return notification.PushData{
		Title: "Pembaruan pesanan",
		Body:  n.message(),
		Data: map[string]interface{}{
			"order_code": n.Order.Code,
			"status":     n.Status,
		},
	}
}

func (n OrderStatusChanged) ToDatabase() notification.DatabaseData {
	return notification.DatabaseData{
		Type:    "order.status_changed",
		Message: n.message(),
		Data: map[string]interface{}{
			"order_code": n.Order.Code,
			"status":     n.Status,
		},
	}
}
