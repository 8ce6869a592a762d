package cli

import (
	"context"

	"github.com/fatih/color"
	"github.com/urfave/cli/v3"

	"github.com/facepay-lab/facepay/pkg/cli/config"
)

func cmdFaces() *cli.Command {
	var appCfg config.App
	var repoCfg config.Repository
	var recogCfg config.Recognizer
	var chainCfg config.Chain

	var flags []cli.Flag
	flags = append(flags, appCfg.Flags()...)
	flags = append(flags, repoCfg.Flags()...)
	flags = append(flags, recogCfg.Flags()...)

	return &cli.Command{
		Name:  "faces",
		Usage: "List registered faces",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			uc, cleanup, err := buildUseCases(ctx, &appCfg, &repoCfg, &recogCfg, &chainCfg, false, false)
			if err != nil {
				return err
			}
			defer cleanup()

			faces, err := uc.Faces(ctx)
			if err != nil {
				return err
			}
			if len(faces) == 0 {
				color.Yellow("No faces registered")
				return nil
			}

			for _, reg := range faces {
				name := reg.DisplayName
				if name == "" {
					name = "-"
				}
				color.White("%s  %-20s %s  %s",
					reg.AccountID, name, reg.Provenance,
					reg.RegisteredAt.Format("2006-01-02 15:04:05"))
			}
			color.White("%d face(s) registered", len(faces))
			return nil
		},
	}
}
