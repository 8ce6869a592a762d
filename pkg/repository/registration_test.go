package repository_test

import (
	"context"
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/m-mizutani/gt"

	"github.com/facepay-lab/facepay/pkg/domain/interfaces"
	"github.com/facepay-lab/facepay/pkg/domain/model"
	"github.com/facepay-lab/facepay/pkg/domain/types"
	"github.com/facepay-lab/facepay/pkg/repository"
	"github.com/facepay-lab/facepay/pkg/repository/firestore"
	"github.com/facepay-lab/facepay/pkg/repository/localfile"
	"github.com/facepay-lab/facepay/pkg/repository/memory"
)

const (
	addrAlex   = types.AccountID("0x9f93EebD463d4B7c991986a082d974E77b5a02Dc")
	addrJordan = types.AccountID("0xa999F0CB16b55516BD82fd77Dc19f495b41f0770")
)

func testEmbedding(seed float32) model.Embedding {
	e := make(model.Embedding, model.EmbeddingDimension)
	for i := range e {
		e[i] = seed + float32(i)*0.001
	}
	return e
}

func runRegistrationRepositoryTest(t *testing.T, newRepo func(t *testing.T) interfaces.Repository) {
	t.Helper()

	t.Run("Put and Get round-trip", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		reg := &model.Registration{
			AccountID:   addrAlex,
			DisplayName: "Alex Chen",
			Embedding:   testEmbedding(0.5),
			Provenance:  types.ProvenanceEngineered,
		}
		gt.NoError(t, repo.Registration().Put(ctx, reg)).Required()

		got, err := repo.Registration().Get(ctx, addrAlex)
		gt.NoError(t, err).Required()
		gt.Value(t, got.AccountID).Equal(addrAlex.Normalize())
		gt.Value(t, got.DisplayName).Equal("Alex Chen")
		gt.Value(t, got.Provenance).Equal(types.ProvenanceEngineered)
		gt.Bool(t, got.RegisteredAt.IsZero()).False()

		// Embedding values must survive bit-for-bit
		gt.Number(t, len(got.Embedding)).Equal(model.EmbeddingDimension)
		for i := range reg.Embedding {
			if got.Embedding[i] != reg.Embedding[i] {
				t.Fatalf("embedding[%d] changed: %v != %v", i, got.Embedding[i], reg.Embedding[i])
			}
		}
	})

	t.Run("Get is case-insensitive on account ID", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		gt.NoError(t, repo.Registration().Put(ctx, &model.Registration{
			AccountID:   addrAlex,
			DisplayName: "Alex Chen",
			Embedding:   testEmbedding(0.1),
			Provenance:  types.ProvenanceNeural,
		})).Required()

		got, err := repo.Registration().Get(ctx, types.AccountID("0x9F93EEBD463D4B7C991986A082D974E77B5A02DC"))
		gt.NoError(t, err).Required()
		gt.Value(t, got.DisplayName).Equal("Alex Chen")
	})

	t.Run("Put overwrites existing registration", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		gt.NoError(t, repo.Registration().Put(ctx, &model.Registration{
			AccountID:   addrAlex,
			DisplayName: "Alex Chen",
			Embedding:   testEmbedding(0.1),
			Provenance:  types.ProvenanceEngineered,
		})).Required()

		gt.NoError(t, repo.Registration().Put(ctx, &model.Registration{
			AccountID:   addrAlex,
			DisplayName: "Alex C.",
			Embedding:   testEmbedding(0.9),
			Provenance:  types.ProvenanceNeural,
		})).Required()

		regs, err := repo.Registration().List(ctx)
		gt.NoError(t, err).Required()
		gt.Number(t, len(regs)).Equal(1)
		gt.Value(t, regs[0].DisplayName).Equal("Alex C.")
		gt.Value(t, regs[0].Provenance).Equal(types.ProvenanceNeural)
	})

	t.Run("Get of absent account returns ErrNotFound", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		_, err := repo.Registration().Get(ctx, addrJordan)
		gt.Value(t, err).NotNil()
		gt.Bool(t, errors.Is(err, repository.ErrNotFound)).True()
	})

	t.Run("List is sorted by account ID", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		for _, reg := range []*model.Registration{
			{AccountID: addrJordan, DisplayName: "Jordan Smith", Embedding: testEmbedding(0.2), Provenance: types.ProvenanceEngineered},
			{AccountID: addrAlex, DisplayName: "Alex Chen", Embedding: testEmbedding(0.3), Provenance: types.ProvenanceEngineered},
		} {
			gt.NoError(t, repo.Registration().Put(ctx, reg)).Required()
		}

		regs, err := repo.Registration().List(ctx)
		gt.NoError(t, err).Required()
		gt.Number(t, len(regs)).Equal(2)
		gt.Value(t, regs[0].AccountID).Equal(addrAlex.Normalize())
		gt.Value(t, regs[1].AccountID).Equal(addrJordan.Normalize())
	})

	t.Run("Remove deletes and is a no-op when absent", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		gt.NoError(t, repo.Registration().Put(ctx, &model.Registration{
			AccountID:   addrAlex,
			DisplayName: "Alex Chen",
			Embedding:   testEmbedding(0.4),
			Provenance:  types.ProvenanceEngineered,
		})).Required()

		gt.NoError(t, repo.Registration().Remove(ctx, addrAlex))
		_, err := repo.Registration().Get(ctx, addrAlex)
		gt.Bool(t, errors.Is(err, repository.ErrNotFound)).True()

		// Removing again must not fail
		gt.NoError(t, repo.Registration().Remove(ctx, addrAlex))
	})

	t.Run("Clear wipes all registrations", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		for _, id := range []types.AccountID{addrAlex, addrJordan} {
			gt.NoError(t, repo.Registration().Put(ctx, &model.Registration{
				AccountID:   id,
				DisplayName: "User",
				Embedding:   testEmbedding(0.5),
				Provenance:  types.ProvenanceHashFallback,
			})).Required()
		}

		gt.NoError(t, repo.Registration().Clear(ctx))
		regs, err := repo.Registration().List(ctx)
		gt.NoError(t, err).Required()
		gt.Number(t, len(regs)).Equal(0)
	})

	t.Run("Put rejects invalid registrations", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		err := repo.Registration().Put(ctx, &model.Registration{
			AccountID:   "not-an-address",
			DisplayName: "X",
			Embedding:   testEmbedding(0.1),
			Provenance:  types.ProvenanceEngineered,
		})
		gt.Value(t, err).NotNil()
	})
}

func TestRegistrationRepository_Memory(t *testing.T) {
	runRegistrationRepositoryTest(t, func(t *testing.T) interfaces.Repository {
		return memory.New()
	})
}

func TestRegistrationRepository_LocalFile(t *testing.T) {
	runRegistrationRepositoryTest(t, func(t *testing.T) interfaces.Repository {
		path := filepath.Join(t.TempDir(), "face_embeddings.json")
		repo, err := localfile.New(context.Background(), path)
		gt.NoError(t, err).Required()
		return repo
	})
}

func TestRegistrationRepository_Firestore(t *testing.T) {
	projectID := os.Getenv("TEST_FIRESTORE_PROJECT_ID")
	if projectID == "" {
		t.Skip("TEST_FIRESTORE_PROJECT_ID not set")
	}
	databaseID := os.Getenv("TEST_FIRESTORE_DATABASE_ID")

	runRegistrationRepositoryTest(t, func(t *testing.T) interfaces.Repository {
		repo, err := firestore.New(context.Background(), projectID, databaseID,
			firestore.WithCollectionPrefix("test-"+uuid.NewString()[:8]+"-"))
		gt.NoError(t, err).Required()
		t.Cleanup(func() {
			_ = repo.Registration().Clear(context.Background())
			_ = repo.Close()
		})
		return repo
	})
}

func TestLocalFilePersistence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "face_embeddings.json")
	ctx := context.Background()

	emb := make(model.Embedding, model.EmbeddingDimension)
	for i := range emb {
		// Awkward values that expose float precision loss in round-trips
		emb[i] = float32(math.Pi) / float32(i+1)
	}

	repo, err := localfile.New(ctx, path)
	gt.NoError(t, err).Required()
	gt.NoError(t, repo.Registration().Put(ctx, &model.Registration{
		AccountID:    addrAlex,
		DisplayName:  "Alex Chen",
		Embedding:    emb,
		Provenance:   types.ProvenanceNeural,
		RegisteredAt: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	})).Required()

	// Re-open from disk and verify exact round-trip
	reopened, err := localfile.New(ctx, path)
	gt.NoError(t, err).Required()

	got, err := reopened.Registration().Get(ctx, addrAlex)
	gt.NoError(t, err).Required()
	gt.Value(t, got.DisplayName).Equal("Alex Chen")
	gt.Value(t, got.Provenance).Equal(types.ProvenanceNeural)
	gt.Bool(t, got.RegisteredAt.Equal(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))).True()
	for i := range emb {
		if got.Embedding[i] != emb[i] {
			t.Fatalf("embedding[%d] lost precision: %v != %v", i, got.Embedding[i], emb[i])
		}
	}
}

func TestLocalFileCorruptStartsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "face_embeddings.json")
	gt.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600)).Required()

	repo, err := localfile.New(context.Background(), path)
	gt.NoError(t, err).Required()

	regs, err := repo.Registration().List(context.Background())
	gt.NoError(t, err).Required()
	gt.Number(t, len(regs)).Equal(0)
}
