package main

import (
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"xrpl-wallet/internal/core/domain"
	"xrpl-wallet/internal/service"
	"xrpl-wallet/pkg/apperror"
)

func newRunCmd(opts *rootOptions) *cobra.Command {
	var (
		destination string
		amount      string
		threshold   string
		tag         uint32
		showSeed    bool
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Show the wallet and balance, then pay when the balance exceeds the threshold",
		Long: "Loads the wallet from XRPLW_WALLET_SEED (or generates a throwaway one), prints its\n" +
			"address and validated balance, and sends --amount XRP to --destination only when the\n" +
			"balance is strictly greater than --threshold. Defaults come from the demo config section.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), opts, func(a *app) error {
				if !cmd.Flags().Changed("destination") {
					destination = a.cfg.Demo.Destination
				}
				if !cmd.Flags().Changed("amount") {
					amount = a.cfg.Demo.Amount
				}
				if !cmd.Flags().Changed("threshold") {
					threshold = a.cfg.Demo.Threshold
				}

				params := service.RunParams{
					Seed:        a.cfg.Wallet.Seed,
					Destination: destination,
					ShowSeed:    showSeed,
				}
				var err error
				if params.Algorithm, err = a.algorithm(""); err != nil {
					return err
				}
				if params.Amount, err = parseXRPFlag("amount", amount); err != nil {
					return err
				}
				if params.Threshold, err = parseThreshold(threshold); err != nil {
					return err
				}
				if cmd.Flags().Changed("destination-tag") {
					params.DestinationTag = &tag
				}

				runner := service.NewRunner(a.wallets, a.balances, a.payments, a.printer, a.log)
				_, err = runner.Run(cmd.Context(), params)
				return err
			})
		},
	}

	cmd.Flags().StringVar(&destination, "destination", "", "Destination classic address")
	cmd.Flags().StringVar(&amount, "amount", "", "XRP to send")
	cmd.Flags().StringVar(&threshold, "threshold", "", "Pay only when the balance is greater than this many XRP")
	cmd.Flags().Uint32Var(&tag, "destination-tag", 0, "Destination tag")
	cmd.Flags().BoolVar(&showSeed, "show-seed", false, "Print the seed of a freshly generated wallet")
	return cmd
}

func parseXRPFlag(name, value string) (decimal.Decimal, error) {
	d, err := domain.ParseXRP(value)
	if err != nil {
		return decimal.Zero, apperror.ErrInvalidAmount("--" + name + ": " + err.Error())
	}
	return d, nil
}

// parseThreshold accepts zero, unlike payment amounts.
func parseThreshold(value string) (decimal.Decimal, error) {
	d, err := domain.ParseXRP(value)
	if err != nil || d.IsNegative() {
		return decimal.Zero, apperror.ErrInvalidAmount("--threshold must be a non-negative XRP amount")
	}
	return d, nil
}

