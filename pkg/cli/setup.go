package cli

import (
	"context"

	"github.com/m-mizutani/goerr/v2"

	"github.com/facepay-lab/facepay/pkg/cli/config"
	"github.com/facepay-lab/facepay/pkg/usecase"
	"github.com/facepay-lab/facepay/pkg/utils/logging"
)

// buildUseCases assembles the use case layer from the shared config structs.
// The returned cleanup closes the repository and must always be called. When
// requireRecognizer is false the face pipeline is left unwired; when
// requireChain is false and no RPC endpoint is configured, the chain side is
// left unwired and payment operations report not configured.
func buildUseCases(
	ctx context.Context,
	appCfg *config.App,
	repoCfg *config.Repository,
	recogCfg *config.Recognizer,
	chainCfg *config.Chain,
	requireRecognizer bool,
	requireChain bool,
) (*usecase.UseCases, func(), error) {
	cfg, err := appCfg.Configure()
	if err != nil {
		return nil, nil, goerr.Wrap(err, "failed to load application configuration")
	}
	if cfg != nil {
		cfg.ApplyMatchPolicy(recogCfg)
		if err := cfg.ResolveToken(chainCfg); err != nil {
			return nil, nil, err
		}
	}

	repo, err := repoCfg.Configure(ctx)
	if err != nil {
		return nil, nil, goerr.Wrap(err, "failed to initialize repository")
	}
	cleanup := func() {
		if err := repo.Close(); err != nil {
			logging.Default().Error("failed to close repository", "error", err.Error())
		}
	}

	var opts []usecase.Option
	if requireRecognizer {
		recogSvc, matchSvc, err := recogCfg.Configure()
		if err != nil {
			cleanup()
			return nil, nil, goerr.Wrap(err, "failed to configure recognizer")
		}
		opts = append(opts,
			usecase.WithRecognizer(recogSvc),
			usecase.WithMatcher(matchSvc),
		)
	}

	if requireChain || chainCfg.IsConfigured() {
		client, payCfg, err := chainCfg.Configure()
		if err != nil {
			cleanup()
			return nil, nil, goerr.Wrap(err, "failed to configure chain client")
		}
		opts = append(opts,
			usecase.WithChainClient(client),
			usecase.WithPaymentConfig(payCfg),
		)
	} else {
		logging.Default().Info("RPC endpoint not configured, payment features disabled")
	}

	return usecase.New(repo, opts...), cleanup, nil
}
