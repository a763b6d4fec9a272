// Package notification fans shop events out over multiple channels.
//
// Define a Notification:
//
//	type OrderPaid struct { Order models.Order }
//	func (n *OrderPaid) Via() []string { return []string{"mail", "push", "database"} }
//	func (n *OrderPaid) ToMail() notification.MailData { ... }
//	func (n *OrderPaid) ToPush() notification.PushData { ... }
//
// Send:
//
//	notification.Send(user.Email, user.ID, &OrderPaid{Order: order})
package notification

import (
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/gmcandra/mebelshop/pkg/http"
	"github.com/gmcandra/mebelshop/pkg/logger"
	"github.com/gmcandra/mebelshop/pkg/mail"
)

// ------------------- Channel data structs -------------------

// MailData carries the data needed for an email notification.
type MailData struct {
	To      string // overrides the notifiable address if set
	Subject string
	Body    string // HTML
	Text    string // plain-text fallback
}

// PushData is the payload POSTed to the push relay. The relay forwards it
// to the subscriber's device.
type PushData struct {
	Title string      `json:"title"`
	Body  string      `json:"body"`
	URL   string      `json:"url,omitempty"`
	Data  interface{} `json:"data,omitempty"`
}

// DatabaseData is stored in the notifications table for the in-app inbox.
type DatabaseData struct {
	Type    string
	Message string
	Data    interface{}
}

// ------------------- Notification interface -------------------

// Notification is the interface every notification must satisfy.
type Notification interface {
	// Via returns the channel names: "mail", "push", "database".
	Via() []string
}

// Mailable supports the mail channel.
type Mailable interface {
	ToMail() MailData
}

// Pushable supports the push channel.
type Pushable interface {
	ToPush() PushData
}

// Databaseable stores the notification for the in-app inbox.
type Databaseable interface {
	ToDatabase() DatabaseData
}

// ------------------- Global config -------------------

var (
	pushRelayURL string
	db           *gorm.DB
)

// SetPushRelay sets the push relay endpoint used by the push channel.
func SetPushRelay(url string) { pushRelayURL = url }

// UseDB enables the database channel. Creates the notifications table.
func UseDB(g *gorm.DB) {
	db = g
	g.AutoMigrate(&Record{}) //nolint:errcheck
}

// Record is the GORM model behind the in-app notification inbox.
type Record struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID    uint      `gorm:"not null;index"           json:"user_id"`
	Type      string    `gorm:"size:255;not null"        json:"type"`
	Message   string    `gorm:"type:text;not null"       json:"message"`
	Data      string    `gorm:"type:text"                json:"data"`
	ReadAt    *time.Time `json:"read_at"`
	CreatedAt time.Time `json:"created_at"`
}

func (Record) TableName() string { return "notifications" }

// Inbox returns the user's latest notifications, newest first.
func Inbox(userID uint, limit int) ([]Record, error) {
	if db == nil {
		return nil, fmt.Errorf("notification: database channel not configured")
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	var records []Record
	err := db.Where("user_id = ?", userID).
		Order("id desc").
		Limit(limit).
		Find(&records).Error
	return records, err
}

// MarkRead stamps one of the user's notifications as read.
func MarkRead(userID, id uint) error {
	if db == nil {
		return fmt.Errorf("notification: database channel not configured")
	}
	now := time.Now()
	return db.Model(&Record{}).
		Where("id = ? AND user_id = ?", id, userID).
		Update("read_at", &now).Error
}

// ------------------- Send -------------------

// Send dispatches the notification through all channels returned by Via().
// address feeds the mail channel, userID the database channel.
func Send(address string, userID uint, n Notification) []error {
	var errs []error
	for _, channel := range n.Via() {
		if err := dispatch(address, userID, channel, n); err != nil {
			logger.Error("notification: channel failed",
				"channel", channel, "error", err)
			errs = append(errs, err)
		}
	}
	return errs
}

// SendAsync dispatches in a background goroutine.
func SendAsync(address string, userID uint, n Notification) {
	go func() {
		if errs := Send(address, userID, n); len(errs) > 0 {
			for _, e := range errs {
				logger.Error("notification: async error", "error", e)
			}
		}
	}()
}

func dispatch(address string, userID uint, channel string, n Notification) error {
	switch channel {
	case "mail":
		m, ok := n.(Mailable)
		if !ok {
			return fmt.Errorf("notification: %T does not implement Mailable", n)
		}
		return sendMail(address, m.ToMail())

	case "push":
		p, ok := n.(Pushable)
		if !ok {
			return fmt.Errorf("notification: %T does not implement Pushable", n)
		}
		return sendPush(userID, p.ToPush())

	case "database":
		d, ok := n.(Databaseable)
		if !ok {
			return fmt.Errorf("notification: %T does not implement Databaseable", n)
		}
		return store(userID, d.ToDatabase())

	default:
		return fmt.Errorf("notification: unknown channel %q", channel)
	}
}

// ------------------- Mail channel -------------------

func sendMail(address string, d MailData) error {
	to := d.To
	if to == "" {
		to = address
	}

	body := d.Body
	if body == "" {
		body = d.Text
	}

	return mail.To(to).Subject(d.Subject).Body(body).Send()
}

// ------------------- Push channel -------------------

type pushEnvelope struct {
	UserID uint     `json:"user_id"`
	Push   PushData `json:"notification"`
}

func sendPush(userID uint, d PushData) error {
	if pushRelayURL == "" {
		return fmt.Errorf("notification: push relay URL not configured")
	}

	resp, err := http.Post(pushRelayURL).
		Body(pushEnvelope{UserID: userID, Push: d}).
		Timeout(10 * time.Second).
		Retry(2, time.Second).
		Send()
	if err != nil {
		return fmt.Errorf("notification: push post: %w", err)
	}
	return resp.Throw()
}

// ------------------- Database channel -------------------

func store(userID uint, d DatabaseData) error {
	if db == nil {
		return fmt.Errorf("notification: database channel not configured")
	}

	raw, err := json.Marshal(d.Data)
	if err != nil {
		raw = []byte("{}")
	}

	rec := Record{
		UserID:  userID,
		Type:    d.Type,
		Message: d.Message,
		Data:    string(raw),
	}
	if err := db.Create(&rec).Error; err != nil {
		return fmt.Errorf("notification: store: %w", err)
	}
	return nil
}
