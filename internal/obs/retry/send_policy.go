package retry

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
)

// MailSendPolicy retries transient SMTP failures a few times before the
// message goes back to the broker for redelivery.
func MailSendPolicy(log *zap.Logger) Policy {
	return Policy{
		Name:     "mail_send",
		Attempts: 3,
		Backoff:  ExpoJitter{Base: 200 * time.Millisecond, Max: 2 * time.Second, Jitter: 0.2},
		Retryable: func(err error) bool {
			return err != nil && !errors.Is(err, context.Canceled)
		},
		OnAttempt: func(i int, err error) {
			if log != nil {
				log.Warn("mail send retry", zap.Int("attempt", i+1), zap.Error(err))
			}
		},
		OnExhaust: func(err error) {
			if log != nil && !errors.Is(err, context.Canceled) {
				log.Error("mail send retries exhausted", zap.Error(err))
			}
		},
	}
}
