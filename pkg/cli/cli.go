package cli

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/facepay-lab/facepay/pkg/cli/config"
	"github.com/facepay-lab/facepay/pkg/utils/logging"
)

func Run(ctx context.Context, args []string, version string) error {
	var loggerCfg config.Logger
	var closer func()

	app := &cli.Command{
		Name:    "facepay",
		Usage:   "Face recognition payment gateway for ERC20 tokens",
		Version: version,
		Flags:   loggerCfg.Flags(),
		Before: func(ctx context.Context, c *cli.Command) (context.Context, error) {
			f, err := loggerCfg.Configure()
			if err != nil {
				return ctx, err
			}
			closer = f

			logging.Default().Info("Starting facepay", "logger", loggerCfg)
			return ctx, nil
		},
		After: func(ctx context.Context, c *cli.Command) error {
			if closer != nil {
				closer()
			}
			return nil
		},
		Commands: []*cli.Command{
			cmdServe(),
			cmdRegister(),
			cmdMatch(),
			cmdPay(),
			cmdBalance(),
			cmdFaces(),
			cmdReset(),
			cmdMigrate(),
		},
	}

	if err := app.Run(ctx, args); err != nil {
		logging.Default().Error("failed to run app", "error", err)
		return err
	}

	return nil
}
