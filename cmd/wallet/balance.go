package main

import (
	"github.com/spf13/cobra"
)

func newBalanceCmd(opts *rootOptions) *cobra.Command {
	var address string

	cmd := &cobra.Command{
		Use:   "balance",
		Short: "Print the validated XRP balance of the wallet or --address",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), opts, func(a *app) error {
				if address == "" {
					w, err := a.configuredWallet()
					if err != nil {
						return err
					}
					address = w.Address
					a.printer.Wallet(w)
				}

				snap, err := a.balances.GetBalance(cmd.Context(), address)
				if err != nil {
					return err
				}
				a.printer.Balance(snap)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&address, "address", "", "Classic address to query (default: the configured wallet)")
	return cmd
}
