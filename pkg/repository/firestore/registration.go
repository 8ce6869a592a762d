package firestore

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/facepay-lab/facepay/pkg/domain/model"
	"github.com/facepay-lab/facepay/pkg/domain/types"
	"github.com/facepay-lab/facepay/pkg/repository"
	"github.com/m-mizutani/goerr/v2"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const registrationCollection = "registrations"

// registrationDoc is the Firestore document representation of
// model.Registration. Embedding is stored as firestore.Vector32 so that
// FindNearest vector search stays available for larger deployments.
type registrationDoc struct {
	AccountID    string             `firestore:"AccountID"`
	DisplayName  string             `firestore:"DisplayName"`
	Embedding    firestore.Vector32 `firestore:"Embedding"`
	Provenance   string             `firestore:"Provenance"`
	RegisteredAt time.Time          `firestore:"RegisteredAt"`
}

func toRegistrationDoc(reg *model.Registration) *registrationDoc {
	return &registrationDoc{
		AccountID:    string(reg.AccountID),
		DisplayName:  reg.DisplayName,
		Embedding:    firestore.Vector32(reg.Embedding),
		Provenance:   string(reg.Provenance),
		RegisteredAt: reg.RegisteredAt,
	}
}

func fromRegistrationDoc(d *registrationDoc) *model.Registration {
	return &model.Registration{
		AccountID:    types.AccountID(d.AccountID),
		DisplayName:  d.DisplayName,
		Embedding:    model.Embedding(d.Embedding),
		Provenance:   types.Provenance(d.Provenance),
		RegisteredAt: d.RegisteredAt,
	}
}

func docToRegistration(doc *firestore.DocumentSnapshot) (*model.Registration, error) {
	var d registrationDoc
	if err := doc.DataTo(&d); err != nil {
		return nil, err
	}
	return fromRegistrationDoc(&d), nil
}

type registrationRepository struct {
	client           *firestore.Client
	collectionPrefix string
}

func newRegistrationRepository(client *firestore.Client) *registrationRepository {
	return &registrationRepository{client: client}
}

func (r *registrationRepository) collection() *firestore.CollectionRef {
	return r.client.Collection(r.collectionPrefix + registrationCollection)
}

func (r *registrationRepository) Put(ctx context.Context, reg *model.Registration) error {
	if err := reg.Validate(); err != nil {
		return goerr.Wrap(err, "invalid registration")
	}

	stored := reg.Clone()
	if stored.RegisteredAt.IsZero() {
		stored.RegisteredAt = time.Now().UTC()
	}
	stored.AccountID = stored.AccountID.Normalize()

	docRef := r.collection().Doc(string(stored.AccountID))
	if _, err := docRef.Set(ctx, toRegistrationDoc(stored)); err != nil {
		return goerr.Wrap(err, "failed to put registration", goerr.V("account_id", stored.AccountID))
	}
	return nil
}

func (r *registrationRepository) Get(ctx context.Context, id types.AccountID) (*model.Registration, error) {
	docRef := r.collection().Doc(string(id.Normalize()))
	doc, err := docRef.Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(repository.ErrNotFound, "registration not found", goerr.V("account_id", id))
		}
		return nil, goerr.Wrap(err, "failed to get registration", goerr.V("account_id", id))
	}

	reg, err := docToRegistration(doc)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to unmarshal registration", goerr.V("account_id", id))
	}
	return reg, nil
}

func (r *registrationRepository) List(ctx context.Context) ([]*model.Registration, error) {
	iter := r.collection().OrderBy("AccountID", firestore.Asc).Documents(ctx)
	defer iter.Stop()

	regs := make([]*model.Registration, 0)
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate registrations")
		}

		reg, err := docToRegistration(doc)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to unmarshal registration")
		}
		regs = append(regs, reg)
	}

	return regs, nil
}

func (r *registrationRepository) Remove(ctx context.Context, id types.AccountID) error {
	// Delete is idempotent in Firestore; absent documents are a no-op, which
	// matches the store contract.
	if _, err := r.collection().Doc(string(id.Normalize())).Delete(ctx); err != nil {
		return goerr.Wrap(err, "failed to remove registration", goerr.V("account_id", id))
	}
	return nil
}

func (r *registrationRepository) Clear(ctx context.Context) error {
	iter := r.collection().Documents(ctx)
	defer iter.Stop()

	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return goerr.Wrap(err, "failed to iterate registrations for clear")
		}
		if _, err := doc.Ref.Delete(ctx); err != nil {
			return goerr.Wrap(err, "failed to delete registration", goerr.V("doc", doc.Ref.ID))
		}
	}

	return nil
}
