package cli

import (
	"context"
	"os"

	"github.com/fatih/color"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/facepay-lab/facepay/pkg/cli/config"
	"github.com/facepay-lab/facepay/pkg/domain/types"
)

func cmdRegister() *cli.Command {
	var accountID string
	var displayName string
	var appCfg config.App
	var repoCfg config.Repository
	var recogCfg config.Recognizer
	var chainCfg config.Chain

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "account-id",
			Usage:       "Ethereum address of the account to register",
			Required:    true,
			Destination: &accountID,
		},
		&cli.StringFlag{
			Name:        "name",
			Usage:       "Display name for the account",
			Destination: &displayName,
		},
	}
	flags = append(flags, appCfg.Flags()...)
	flags = append(flags, repoCfg.Flags()...)
	flags = append(flags, recogCfg.Flags()...)

	return &cli.Command{
		Name:      "register",
		Aliases:   []string{"r"},
		Usage:     "Register a face for an account",
		ArgsUsage: "<image> [image...]",
		Flags:     flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			paths := c.Args().Slice()
			if len(paths) == 0 {
				return goerr.New("at least one face image is required")
			}

			images := make([][]byte, 0, len(paths))
			for _, path := range paths {
				data, err := os.ReadFile(path)
				if err != nil {
					return goerr.Wrap(err, "failed to read image", goerr.V("path", path))
				}
				images = append(images, data)
			}

			uc, cleanup, err := buildUseCases(ctx, &appCfg, &repoCfg, &recogCfg, &chainCfg, true, false)
			if err != nil {
				return err
			}
			defer cleanup()

			reg, err := uc.Register(ctx, types.AccountID(accountID), displayName, images)
			if err != nil {
				return err
			}

			color.Green("Registered %s", reg.AccountID)
			color.White("  name:       %s", reg.DisplayName)
			color.White("  provenance: %s", reg.Provenance)
			color.White("  samples:    %d", len(images))
			return nil
		},
	}
}
