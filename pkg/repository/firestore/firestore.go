package firestore

import (
	"context"

	"cloud.google.com/go/firestore"
	"github.com/facepay-lab/facepay/pkg/domain/interfaces"
	"github.com/m-mizutani/goerr/v2"
)

// Firestore is the managed durable backend: one document per registered
// account, embeddings stored as firestore.Vector32.
type Firestore struct {
	client       *firestore.Client
	registration *registrationRepository
}

var _ interfaces.Repository = &Firestore{}

type Option func(*Firestore)

// WithCollectionPrefix namespaces the registrations collection, used by
// tests to isolate runs against a shared project.
func WithCollectionPrefix(prefix string) Option {
	return func(f *Firestore) {
		f.registration.collectionPrefix = prefix
	}
}

func New(ctx context.Context, projectID, databaseID string, opts ...Option) (*Firestore, error) {
	var client *firestore.Client
	var err error
	if databaseID != "" {
		client, err = firestore.NewClientWithDatabase(ctx, projectID, databaseID)
	} else {
		client, err = firestore.NewClient(ctx, projectID)
	}
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create firestore client", goerr.V("projectID", projectID))
	}

	f := &Firestore{
		client:       client,
		registration: newRegistrationRepository(client),
	}

	for _, opt := range opts {
		opt(f)
	}

	return f, nil
}

func (f *Firestore) Registration() interfaces.RegistrationRepository {
	return f.registration
}

func (f *Firestore) Close() error {
	if f.client != nil {
		return f.client.Close()
	}
	return nil
}
