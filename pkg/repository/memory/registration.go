package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/facepay-lab/facepay/pkg/domain/model"
	"github.com/facepay-lab/facepay/pkg/domain/types"
	"github.com/facepay-lab/facepay/pkg/repository"
	"github.com/m-mizutani/goerr/v2"
)

type registrationRepository struct {
	mu   sync.RWMutex
	regs map[types.AccountID]*model.Registration
}

func newRegistrationRepository() *registrationRepository {
	return &registrationRepository{
		regs: make(map[types.AccountID]*model.Registration),
	}
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

	r.mu.Lock()
	defer r.mu.Unlock()
	r.regs[stored.AccountID] = stored
	return nil
}

func (r *registrationRepository) Get(ctx context.Context, id types.AccountID) (*model.Registration, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	reg, exists := r.regs[id.Normalize()]
	if !exists {
		return nil, goerr.Wrap(repository.ErrNotFound, "registration not found", goerr.V("account_id", id))
	}
	return reg.Clone(), nil
}

func (r *registrationRepository) List(ctx context.Context) ([]*model.Registration, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*model.Registration, 0, len(r.regs))
	for _, reg := range r.regs {
		out = append(out, reg.Clone())
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].AccountID < out[j].AccountID
	})
	return out, nil
}

func (r *registrationRepository) Remove(ctx context.Context, id types.AccountID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.regs, id.Normalize())
	return nil
}

func (r *registrationRepository) Clear(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.regs = make(map[types.AccountID]*model.Registration)
	return nil
}
