package cli

import (
	"context"

	"github.com/fatih/color"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/facepay-lab/facepay/pkg/cli/config"
	"github.com/facepay-lab/facepay/pkg/domain/types"
)

func cmdBalance() *cli.Command {
	var appCfg config.App
	var repoCfg config.Repository
	var recogCfg config.Recognizer
	var chainCfg config.Chain

	var flags []cli.Flag
	flags = append(flags, appCfg.Flags()...)
	flags = append(flags, repoCfg.Flags()...)
	flags = append(flags, recogCfg.Flags()...)
	flags = append(flags, chainCfg.Flags()...)

	return &cli.Command{
		Name:      "balance",
		Usage:     "Show the token balance of an account",
		ArgsUsage: "<address>",
		Flags:     flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			if c.Args().Len() != 1 {
				return goerr.New("exactly one account address is required")
			}
			id := types.AccountID(c.Args().First())
			if err := id.Validate(); err != nil {
				return goerr.Wrap(err, "invalid account address")
			}

			uc, cleanup, err := buildUseCases(ctx, &appCfg, &repoCfg, &recogCfg, &chainCfg, false, true)
			if err != nil {
				return err
			}
			defer cleanup()

			bal, err := uc.Balance(ctx, id)
			if err != nil {
				return err
			}

			color.White("%s: %s (decimals: %d)", bal.AccountID, bal.Amount, bal.Decimals)
			return nil
		},
	}
}
