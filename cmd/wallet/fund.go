package main

import (
	"github.com/spf13/cobra"

	"xrpl-wallet/internal/xrpl/signing"
	"xrpl-wallet/pkg/apperror"
)

func newFundCmd(opts *rootOptions) *cobra.Command {
	var address string

	cmd := &cobra.Command{
		Use:   "fund",
		Short: "Request test XRP from the testnet faucet",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), opts, func(a *app) error {
				if address == "" {
					w, err := a.configuredWallet()
					if err != nil {
						return err
					}
					address = w.Address
				}
				if err := signing.ValidateAddress(address); err != nil {
					return apperror.ErrInvalidAddress(err)
				}
				if a.cfg.Ledger.FaucetURL == "" {
					return apperror.Validation("ledger.faucet_url is not set")
				}

				grant, err := a.faucet.Fund(cmd.Context(), address)
				if err != nil {
					return apperror.ErrFaucetFailed(err)
				}
				a.printer.Funded(grant)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&address, "address", "", "Address to fund (default: the configured wallet)")
	return cmd
}
