package cli

import (
	"context"
	"errors"
	"os"

	"github.com/fatih/color"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/facepay-lab/facepay/pkg/cli/config"
	"github.com/facepay-lab/facepay/pkg/domain/model"
	"github.com/facepay-lab/facepay/pkg/domain/types"
	"github.com/facepay-lab/facepay/pkg/usecase"
)

// progressSink prints payment stage transitions to the terminal.
type progressSink struct{}

func (progressSink) Publish(ctx context.Context, ev model.PaymentEvent) {
	switch ev.Stage {
	case types.StageConfirmed:
		color.Green("[%s] %s", ev.Stage, ev.Message)
	case types.StageFailed:
		color.Red("[%s] %s", ev.Stage, ev.Message)
	default:
		if ev.TxHash != "" {
			color.Cyan("[%s] %s (tx: %s)", ev.Stage, ev.Message, ev.TxHash)
		} else {
			color.Cyan("[%s] %s", ev.Stage, ev.Message)
		}
	}
}

func cmdPay() *cli.Command {
	var accountID string
	var amount string
	var recipient string
	var imagePath string
	var appCfg config.App
	var repoCfg config.Repository
	var recogCfg config.Recognizer
	var chainCfg config.Chain

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "amount",
			Usage:       "Token amount in human units, e.g. 10.5",
			Required:    true,
			Destination: &amount,
		},
		&cli.StringFlag{
			Name:        "account-id",
			Usage:       "Pay from a known account without face matching",
			Destination: &accountID,
		},
		&cli.StringFlag{
			Name:        "recipient",
			Usage:       "Recipient address (defaults to the configured merchant)",
			Destination: &recipient,
		},
		&cli.StringFlag{
			Name:        "image",
			Usage:       "Face image identifying the payer",
			Destination: &imagePath,
		},
	}
	flags = append(flags, appCfg.Flags()...)
	flags = append(flags, repoCfg.Flags()...)
	flags = append(flags, recogCfg.Flags()...)
	flags = append(flags, chainCfg.Flags()...)

	return &cli.Command{
		Name:  "pay",
		Usage: "Run a face-authorized ERC20 transfer",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			req := &usecase.PayRequest{
				Amount:    amount,
				AccountID: types.AccountID(accountID),
			}
			if imagePath != "" {
				data, err := os.ReadFile(imagePath)
				if err != nil {
					return goerr.Wrap(err, "failed to read image", goerr.V("path", imagePath))
				}
				req.Image = data
			}
			if recipient != "" {
				id := types.AccountID(recipient)
				if err := id.Validate(); err != nil {
					return goerr.Wrap(err, "invalid recipient address")
				}
				req.Recipient = id.Address()
			}

			uc, cleanup, err := buildUseCases(ctx, &appCfg, &repoCfg, &recogCfg, &chainCfg, imagePath != "", true)
			if err != nil {
				return err
			}
			defer cleanup()

			result, err := uc.PayWithSink(ctx, req, progressSink{})
			if err != nil {
				if errors.Is(err, usecase.ErrNotRecognized) {
					color.Yellow("No matching face found")
				}
				return err
			}

			color.Green("Payment confirmed")
			color.White("  tx:    %s", result.TxHash.Hex())
			color.White("  block: %d", result.BlockNumber)
			color.White("  gas:   %d", result.GasUsed)
			return nil
		},
	}
}
