package localfile

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/facepay-lab/facepay/pkg/domain/interfaces"
	"github.com/facepay-lab/facepay/pkg/domain/model"
	"github.com/facepay-lab/facepay/pkg/domain/types"
	"github.com/facepay-lab/facepay/pkg/repository"
	"github.com/facepay-lab/facepay/pkg/utils/logging"
	"github.com/m-mizutani/goerr/v2"
)

// LocalFile persists registrations as a single JSON document, rewritten
// wholesale on every mutation. A corrupt or missing file on open starts an
// empty store instead of failing: losing demo registrations is preferable to
// refusing to start.
type LocalFile struct {
	registration *registrationRepository
}

var _ interfaces.Repository = &LocalFile{}

// New opens (or initializes) the JSON store at path.
func New(ctx context.Context, path string) (*LocalFile, error) {
	repo, err := newRegistrationRepository(ctx, path)
	if err != nil {
		return nil, err
	}
	return &LocalFile{registration: repo}, nil
}

func (l *LocalFile) Registration() interfaces.RegistrationRepository {
	return l.registration
}

func (l *LocalFile) Close() error {
	return nil
}

// registrationDoc is the on-disk representation of one registration.
// Embeddings round-trip exactly: float32 values survive JSON encoding
// because encoding/json emits the shortest representation that parses back
// to the same value.
type registrationDoc struct {
	AccountID    string    `json:"wallet_address"`
	DisplayName  string    `json:"user_name"`
	Embedding    []float32 `json:"embedding"`
	Provenance   string    `json:"provenance"`
	RegisteredAt time.Time `json:"registered_at"`
}

type storeDoc struct {
	Registrations map[string]registrationDoc `json:"embeddings"`
}

type registrationRepository struct {
	mu   sync.Mutex
	path string
	regs map[types.AccountID]*model.Registration
}

func newRegistrationRepository(ctx context.Context, path string) (*registrationRepository, error) {
	r := &registrationRepository{
		path: path,
		regs: make(map[types.AccountID]*model.Registration),
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			logging.From(ctx).Info("no embeddings file found, starting fresh", "path", path)
			return r, nil
		}
		return nil, goerr.Wrap(err, "failed to read embeddings file", goerr.V("path", path))
	}

	var doc storeDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		// Recoverable: a corrupt file resets the store rather than bricking
		// the terminal.
		logging.From(ctx).Error("embeddings file is corrupt, starting fresh",
			"path", path, "error", err.Error())
		return r, nil
	}

	for _, d := range doc.Registrations {
		reg := &model.Registration{
			AccountID:    types.AccountID(d.AccountID).Normalize(),
			DisplayName:  d.DisplayName,
			Embedding:    model.Embedding(d.Embedding),
			Provenance:   types.Provenance(d.Provenance),
			RegisteredAt: d.RegisteredAt,
		}
		r.regs[reg.AccountID] = reg
	}

	logging.From(ctx).Info("loaded face embeddings", "path", path, "count", len(r.regs))
	return r, nil
}

// save rewrites the whole file. Caller must hold the mutex.
func (r *registrationRepository) save() error {
	doc := storeDoc{Registrations: make(map[string]registrationDoc, len(r.regs))}
	for id, reg := range r.regs {
		doc.Registrations[string(id)] = registrationDoc{
			AccountID:    string(reg.AccountID),
			DisplayName:  reg.DisplayName,
			Embedding:    []float32(reg.Embedding),
			Provenance:   string(reg.Provenance),
			RegisteredAt: reg.RegisteredAt,
		}
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return goerr.Wrap(err, "failed to encode embeddings")
	}

	if dir := filepath.Dir(r.path); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return goerr.Wrap(err, "failed to create store directory", goerr.V("dir", dir))
		}
	}
	if err := os.WriteFile(r.path, data, 0o600); err != nil {
		return goerr.Wrap(err, "failed to write embeddings file", goerr.V("path", r.path))
	}
	return nil
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

	prev, had := r.regs[stored.AccountID]
	r.regs[stored.AccountID] = stored
	if err := r.save(); err != nil {
		// Keep memory and disk consistent on write failure.
		if had {
			r.regs[stored.AccountID] = prev
		} else {
			delete(r.regs, stored.AccountID)
		}
		return err
	}
	return nil
}

func (r *registrationRepository) Get(ctx context.Context, id types.AccountID) (*model.Registration, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	reg, exists := r.regs[id.Normalize()]
	if !exists {
		return nil, goerr.Wrap(repository.ErrNotFound, "registration not found", goerr.V("account_id", id))
	}
	return reg.Clone(), nil
}

func (r *registrationRepository) List(ctx context.Context) ([]*model.Registration, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

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

	key := id.Normalize()
	prev, had := r.regs[key]
	if !had {
		return nil
	}
	delete(r.regs, key)
	if err := r.save(); err != nil {
		r.regs[key] = prev
		return err
	}
	return nil
}

func (r *registrationRepository) Clear(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	prev := r.regs
	r.regs = make(map[types.AccountID]*model.Registration)
	if err := r.save(); err != nil {
		r.regs = prev
		return err
	}
	return nil
}
