package cli

import (
	"context"

	"github.com/fatih/color"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/facepay-lab/facepay/pkg/cli/config"
	"github.com/facepay-lab/facepay/pkg/domain/types"
)

func cmdReset() *cli.Command {
	var accountID string
	var all bool
	var appCfg config.App
	var repoCfg config.Repository
	var recogCfg config.Recognizer
	var chainCfg config.Chain

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "account-id",
			Usage:       "Remove a single registration",
			Destination: &accountID,
		},
		&cli.BoolFlag{
			Name:        "all",
			Usage:       "Remove every registration",
			Destination: &all,
		},
	}
	flags = append(flags, appCfg.Flags()...)
	flags = append(flags, repoCfg.Flags()...)
	flags = append(flags, recogCfg.Flags()...)

	return &cli.Command{
		Name:  "reset",
		Usage: "Remove face registrations",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			if accountID == "" && !all {
				return goerr.New("either --account-id or --all is required")
			}

			uc, cleanup, err := buildUseCases(ctx, &appCfg, &repoCfg, &recogCfg, &chainCfg, false, false)
			if err != nil {
				return err
			}
			defer cleanup()

			if all {
				if err := uc.Reset(ctx); err != nil {
					return err
				}
				color.Green("All registrations removed")
				return nil
			}

			if err := uc.Deregister(ctx, types.AccountID(accountID)); err != nil {
				return err
			}
			color.Green("Removed registration for %s", accountID)
			return nil
		},
	}
}
