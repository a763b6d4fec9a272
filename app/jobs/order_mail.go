// Package jobs holds the shop's background jobs. Register every job type
// with RegisterAll at boot so workers can deserialize them by name.
package jobs

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/gmcandra/mebelshop/app/notifications"
	"github.com/gmcandra/mebelshop/app/repositories"
	"github.com/gmcandra/mebelshop/pkg/notification"
	"github.com/gmcandra/mebelshop/pkg/queue"
)

// RegisterAll wires every job type into the queue registry with its
// dependencies. Dispatched instances only carry the JSON fields; the
// worker-side instance built here carries the repositories.
func RegisterAll(db *gorm.DB) {
	orders := repositories.NewOrderRepository(db)
	users := repositories.NewUserRepository(db)

	queue.Register("jobs.send_order_placed", func() queue.Job {
		return &SendOrderPlaced{orders: orders, users: users}
	})
	queue.Register("jobs.send_order_status", func() queue.Job {
		return &SendOrderStatus{orders: orders, users: users}
	})
}

// notify runs a notification and folds the per-channel errors into one.
func notify(address string, userID uint, n notification.Notification) error {
	if errs := notification.Send(address, userID, n); len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

// SendOrderPlaced mails the payment link for a fresh order.
type SendOrderPlaced struct {
	OrderCode string `json:"order_code"`

	orders *repositories.OrderRepository
	users  *repositories.UserRepository
}

func (j *SendOrderPlaced) Name() string { return "jobs.send_order_placed" }

func (j *SendOrderPlaced) Handle(ctx context.Context) error {
	order, err := j.orders.FindByCode(j.OrderCode)
	if err != nil {
		return fmt.Errorf("jobs: load order %s: %w", j.OrderCode, err)
	}
	user, err := j.users.FindByID(order.UserID)
	if err != nil {
		return fmt.Errorf("jobs: load user %d: %w", order.UserID, err)
	}
	return notify(user.Email, user.ID, notifications.OrderPlaced{Order: order})
}

// SendOrderStatus tells the customer their order moved to a new status.
type SendOrderStatus struct {
	OrderCode string `json:"order_code"`
	Status    string `json:"status"`

	orders *repositories.OrderRepository
	users  *repositories.UserRepository
}

func (j *SendOrderStatus) Name() string { return "jobs.send_order_status" }

func (j *SendOrderStatus) Handle(ctx context.Context) error {
	order, err := j.orders.FindByCode(j.OrderCode)
	if err != nil {
		return fmt.Errorf("jobs: load order %s: %w", j.OrderCode, err)
	}
	user, err := j.users.FindByID(order.UserID)
	if err != nil {
		return fmt.Errorf("jobs: load user %d: %w", order.UserID, err)
	}
	return notify(user.Email, user.ID, notifications.OrderStatusChanged{
		Order:  order,
		Status: j.Status,
	})
}
