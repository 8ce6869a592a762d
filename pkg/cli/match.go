package cli

import (
	"context"
	"os"

	"github.com/fatih/color"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/facepay-lab/facepay/pkg/cli/config"
)

func cmdMatch() *cli.Command {
	var appCfg config.App
	var repoCfg config.Repository
	var recogCfg config.Recognizer
	var chainCfg config.Chain

	var flags []cli.Flag
	flags = append(flags, appCfg.Flags()...)
	flags = append(flags, repoCfg.Flags()...)
	flags = append(flags, recogCfg.Flags()...)

	return &cli.Command{
		Name:      "match",
		Usage:     "Identify the account behind a face image",
		ArgsUsage: "<image>",
		Flags:     flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			if c.Args().Len() != 1 {
				return goerr.New("exactly one face image is required")
			}

			data, err := os.ReadFile(c.Args().First())
			if err != nil {
				return goerr.Wrap(err, "failed to read image", goerr.V("path", c.Args().First()))
			}

			uc, cleanup, err := buildUseCases(ctx, &appCfg, &repoCfg, &recogCfg, &chainCfg, true, false)
			if err != nil {
				return err
			}
			defer cleanup()

			result, err := uc.Match(ctx, data)
			if err != nil {
				return err
			}
			if result == nil {
				color.Yellow("No matching face found")
				return nil
			}

			color.Green("Matched %s", result.AccountID)
			if result.DisplayName != "" {
				color.White("  name: %s", result.DisplayName)
			}
			return nil
		},
	}
}
