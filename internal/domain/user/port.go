package user

import "context"

// Repo is the durable user store. Implementations must enforce email
// uniqueness at the storage layer: the service's pre-insert existence check
// is not serialized across concurrent registrations.
type Repo interface {
	Create(ctx context.Context, u *User) error
	GetByID(ctx context.Context, id string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
}
