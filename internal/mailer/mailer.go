// Package mailer delivers customer notifications.
package mailer

import (
	"bytes"
	"context"
	"embed"
	"html/template"
	"strconv"

	"github.com/go-faster/errors"
	"go.uber.org/zap"

	"github.com/kickboxbd/kickbox-backend/internal/models"
)

//go:generate mockgen -source=mailer.go -destination=mailermock/mailer.go -package=mailermock

//go:embed templates/*.html
var templateFS embed.FS

var orderConfirmation = template.Must(
	template.New("order_confirmation.html").
		Funcs(template.FuncMap{"amount": formatAmount}).
		ParseFS(templateFS, "templates/order_confirmation.html"),
)

// Message is a single HTML email.
type Message struct {
	To      string
	Subject string
	HTML    string
}

// Sender delivers messages.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// OrderConfirmation renders the "order received" notification for order.
func OrderConfirmation(brand, to string, order *models.Order) (Message, error) {
	var buf bytes.Buffer
	err := orderConfirmation.Execute(&buf, struct {
		*models.Order
		Email string
	}{Order: order, Email: to})
	if err != nil {
		return Message{}, errors.Wrap(err, "render order confirmation")
	}
	return Message{
		To:      to,
		Subject: brand + " Order Received",
		HTML:    buf.String(),
	}, nil
}

func formatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// LogSender only logs messages. It stands in when SMTP is not configured.
type LogSender struct {
	lg *zap.Logger
}

func NewLogSender(lg *zap.Logger) *LogSender {
	return &LogSender{lg: lg}
}

func (s *LogSender) Send(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.lg.Info("Email not sent, SMTP disabled",
		zap.String("to", msg.To),
		zap.String("subject", msg.Subject),
	)
	return nil
}
