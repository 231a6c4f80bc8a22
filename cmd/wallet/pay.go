package main

import (
	"github.com/spf13/cobra"

	"xrpl-wallet/internal/core/domain"
	"xrpl-wallet/internal/core/ports"
	"xrpl-wallet/pkg/apperror"
)

func newPayCmd(opts *rootOptions) *cobra.Command {
	var (
		to     string
		amount string
		tag    uint32
		source uint32
		key    string
	)

	cmd := &cobra.Command{
		Use:   "pay",
		Short: "Send XRP from the configured wallet and wait for validation",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), opts, func(a *app) error {
				// The in-memory cache dies with this process, so a key could
				// never catch a retry from the next invocation.
				if key != "" && !a.cfg.Redis.Enabled {
					return apperror.Validation("--idempotency-key needs redis.enabled so outcomes outlive the process")
				}
				xrp, err := parseXRPFlag("amount", amount)
				if err != nil {
					return err
				}
				wallet, err := a.configuredWallet()
				if err != nil {
					return err
				}

				payOpts := ports.PaymentOptions{IdempotencyKey: key}
				if cmd.Flags().Changed("destination-tag") {
					payOpts.DestinationTag = &tag
				}
				if cmd.Flags().Changed("source-tag") {
					payOpts.SourceTag = &source
				}

				a.printer.PaymentStarted(xrp, to)
				outcome, err := a.payments.Submit(cmd.Context(), wallet, to, xrp, payOpts)
				if err != nil {
					a.printer.PaymentFailed(domain.ResultOf(nil, err))
					return err
				}
				a.printer.PaymentSucceeded(outcome)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&to, "to", "", "Destination classic address")
	cmd.Flags().StringVar(&amount, "amount", "", "XRP to send, e.g. 1.5")
	cmd.Flags().Uint32Var(&tag, "destination-tag", 0, "Destination tag")
	cmd.Flags().Uint32Var(&source, "source-tag", 0, "Source tag")
	cmd.Flags().StringVar(&key, "idempotency-key", "", "Reuse to replay the first outcome instead of paying twice (requires redis)")
	_ = cmd.MarkFlagRequired("to")
	_ = cmd.MarkFlagRequired("amount")
	return cmd
}
