package usecase_test

import (
	"context"
	"errors"
	"image"
	"math/big"
	"testing"

	"github.com/facepay-lab/facepay/pkg/domain/mock"
	"github.com/facepay-lab/facepay/pkg/domain/model"
	"github.com/facepay-lab/facepay/pkg/domain/types"
	"github.com/facepay-lab/facepay/pkg/repository/memory"
	"github.com/facepay-lab/facepay/pkg/service/matcher"
	"github.com/facepay-lab/facepay/pkg/service/recognizer"
	"github.com/facepay-lab/facepay/pkg/usecase"
	"github.com/m-mizutani/gt"
)

// pixelBackend derives an axis-aligned embedding from one pixel so tests
// control exactly which registrations a frame can match.
type pixelBackend struct{}

func (pixelBackend) Provenance() types.Provenance {
	return types.ProvenanceEngineered
}

func (pixelBackend) Extract(ctx context.Context, img image.Image) (model.Embedding, error) {
	r, _, _, _ := img.At(1, 0).RGBA()
	emb := make(model.Embedding, model.EmbeddingDimension)
	emb[int(r>>8)%model.EmbeddingDimension] = 1
	return emb, nil
}

func matchUseCases(t *testing.T, repo *memory.Memory) *usecase.UseCases {
	t.Helper()
	m, err := matcher.New(model.DefaultMatchPolicy())
	gt.NoError(t, err).Required()
	return usecase.New(repo,
		usecase.WithRecognizer(recognizer.New(pixelBackend{})),
		usecase.WithMatcher(m),
	)
}

func TestMatchFindsRegisteredFace(t *testing.T) {
	repo := memory.New()
	uc := matchUseCases(t, repo)
	ctx := context.Background()

	accountID := types.AccountID("0x742d35Cc6634C0532925a3b844Bc9e7595f0bEb0")
	_, err := uc.Register(ctx, accountID, "Alice", [][]byte{facePNG(t, 3)})
	gt.NoError(t, err).Required()

	result, err := uc.Match(ctx, facePNG(t, 3))
	gt.NoError(t, err).Required()
	gt.Value(t, result).NotNil()
	gt.Value(t, result.AccountID).Equal(accountID.Normalize())
	gt.Value(t, result.DisplayName).Equal("Alice")
	gt.Bool(t, result.Accepted).True()
}

func TestMatchUnknownFaceIsNotAnError(t *testing.T) {
	repo := memory.New()
	uc := matchUseCases(t, repo)
	ctx := context.Background()

	_, err := uc.Register(ctx, "0x742d35Cc6634C0532925a3b844Bc9e7595f0bEb0", "Alice", [][]byte{facePNG(t, 3)})
	gt.NoError(t, err).Required()

	// A frame mapping to an orthogonal embedding matches nobody.
	result, err := uc.Match(ctx, facePNG(t, 7))
	gt.NoError(t, err).Required()
	gt.Value(t, result).Nil()
}

func TestMatchEmptyStore(t *testing.T) {
	uc := matchUseCases(t, memory.New())

	result, err := uc.Match(context.Background(), facePNG(t, 3))
	gt.NoError(t, err).Required()
	gt.Value(t, result).Nil()
}

func TestMatchBadImage(t *testing.T) {
	uc := matchUseCases(t, memory.New())

	_, err := uc.Match(context.Background(), []byte("not an image"))
	gt.Error(t, err)
}

func TestPayByFaceMatch(t *testing.T) {
	repo := memory.New()
	m, err := matcher.New(model.DefaultMatchPolicy())
	gt.NoError(t, err).Required()

	chainMock := happyChain(big.NewInt(100_000_000))
	uc := usecase.New(repo,
		usecase.WithRecognizer(recognizer.New(pixelBackend{})),
		usecase.WithMatcher(m),
		usecase.WithChainClient(chainMock),
		usecase.WithPaymentConfig(paymentConfig()),
	)
	ctx := context.Background()

	accountID := payerAccount(t)
	_, err = uc.Register(ctx, accountID, "Payer", [][]byte{facePNG(t, 3)})
	gt.NoError(t, err).Required()

	result, err := uc.Pay(ctx, &usecase.PayRequest{
		Image:  facePNG(t, 3),
		Amount: "10.5",
	})
	gt.NoError(t, err).Required()
	gt.Value(t, result.Stage).Equal(types.StageConfirmed)
}

func TestPayByFaceNotRecognized(t *testing.T) {
	repo := memory.New()
	m, err := matcher.New(model.DefaultMatchPolicy())
	gt.NoError(t, err).Required()

	chainMock := happyChain(big.NewInt(100_000_000))
	sink := &mock.EventSink{}
	uc := usecase.New(repo,
		usecase.WithRecognizer(recognizer.New(pixelBackend{})),
		usecase.WithMatcher(m),
		usecase.WithChainClient(chainMock),
		usecase.WithEventSink(sink),
		usecase.WithPaymentConfig(paymentConfig()),
	)

	_, err = uc.Pay(context.Background(), &usecase.PayRequest{
		Image:  facePNG(t, 3),
		Amount: "10.5",
	})
	gt.Bool(t, errors.Is(err, usecase.ErrNotRecognized)).True()

	// Nothing on-chain happens for an unrecognized face, and the failure
	// event carries only the generic message.
	gt.Array(t, chainMock.Calls()).Length(0)
	events := sink.Events()
	last := events[len(events)-1]
	gt.Value(t, last.Stage).Equal(types.StageFailed)
	gt.Value(t, last.Message).Equal("no matching face found")
}
