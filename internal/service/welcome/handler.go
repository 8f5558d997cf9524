package welcome

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"

	"github.com/NordCoder/Authly/internal/domain/event"
	"github.com/NordCoder/Authly/internal/obs/retry"
)

var (
	mConsumed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "welcome_worker_events_consumed_total",
		Help: "UserCreated events consumed",
	})
	mSent = promauto.NewCounter(prometheus.CounterOpts{
		Name: "welcome_worker_emails_sent_total",
		Help: "Welcome emails sent",
	})
	mErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "welcome_worker_errors_total",
		Help: "Errors",
	})
)

// EmailSender delivers one message to one recipient.
type EmailSender interface {
	Send(ctx context.Context, to, subject, body string) error
}

// Handler reacts to UserCreated events. Delivery is at-least-once, so a
// redelivered event at worst sends a duplicate welcome email; no state is
// corrupted by that.
type Handler struct {
	out EmailSender
	log *zap.Logger
}

func NewHandler(out EmailSender, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.L()
	}
	return &Handler{out: out, log: log.With(zap.String("component", "welcome.handler"))}
}

func (h *Handler) HandleUserCreated(ctx context.Context, _ []byte, ev event.UserCreated) error {
	mConsumed.Inc()

	if ev.UserID == "" || ev.Email == "" {
		// Bad payloads are dropped, not retried: redelivery cannot fix them.
		h.log.Warn("user.created with missing fields; dropping",
			zap.String("user_id", ev.UserID),
			zap.String("email", ev.Email),
		)
		return nil
	}

	subject := "Welcome!"
	body := fmt.Sprintf("Hello!\n\nYour account is ready. Sign in any time with %s.\n\n— Authly", ev.Email)

	// Transient SMTP hiccups are retried in place; only an exhausted send
	// goes back to the broker for redelivery.
	err := retry.Do(ctx, func() error {
		return h.out.Send(ctx, ev.Email, subject, body)
	}, retry.MailSendPolicy(h.log))
	if err != nil {
		mErrors.Inc()
		return fmt.Errorf("send welcome email: %w", err)
	}
	mSent.Inc()

	h.log.Info("welcome email sent", zap.String("user_id", ev.UserID), zap.String("email", ev.Email))
	return nil
}
