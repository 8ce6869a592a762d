package interfaces

import (
	"context"

	"github.com/facepay-lab/facepay/pkg/domain/model"
	"github.com/facepay-lab/facepay/pkg/domain/types"
)

// Repository is the storage boundary. Backends: firestore (production),
// localfile (single device, JSON), memory (tests/dev).
type Repository interface {
	Registration() RegistrationRepository
	Close() error
}

// RegistrationRepository owns the registered-account records. At most one
// registration exists per account ID; Put replaces wholesale.
type RegistrationRepository interface {
	// Put upserts a registration, overwriting any existing record for the
	// same account ID.
	Put(ctx context.Context, reg *model.Registration) error
	// Get returns the registration, or ErrNotFound.
	Get(ctx context.Context, id types.AccountID) (*model.Registration, error)
	// List returns all registrations sorted by account ID so repeated loads
	// of the same persisted state observe the same order.
	List(ctx context.Context) ([]*model.Registration, error)
	// Remove deletes the registration. Removing an absent ID is a no-op.
	Remove(ctx context.Context, id types.AccountID) error
	// Clear wipes all registrations (demo reset).
	Clear(ctx context.Context) error
}
