package main

import (
	"github.com/spf13/cobra"
)

func newGenerateCmd(opts *rootOptions) *cobra.Command {
	var (
		algorithm string
		showSeed  bool
	)

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Create a new wallet from fresh entropy",
		Long: "Creates a wallet offline. The seed is printed only with --show-seed; store it in\n" +
			"XRPLW_WALLET_SEED (or .env) to reuse the wallet.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), opts, func(a *app) error {
				algo, err := a.algorithm(algorithm)
				if err != nil {
					return err
				}
				w, err := a.wallets.Generate(algo)
				if err != nil {
					return err
				}
				a.printer.Wallet(w)
				if showSeed {
					a.printer.Seed(w)
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&algorithm, "algorithm", "", "ed25519 or secp256k1 (default from wallet.algorithm)")
	cmd.Flags().BoolVar(&showSeed, "show-seed", false, "Print the family seed")
	return cmd
}
