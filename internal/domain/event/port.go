package event

import "context"

// Publisher is a best-effort producer of domain events. Callers that must
// not fail on publish errors (registration) log and drop them.
type Publisher interface {
	PublishUserCreated(ctx context.Context, ev UserCreated) error
}
