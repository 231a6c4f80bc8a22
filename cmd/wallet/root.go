package main

import (
	"io"

	"github.com/spf13/cobra"

	"xrpl-wallet/internal/service"
	"xrpl-wallet/pkg/apperror"
)

type rootOptions struct {
	configPath string
	output     string
	stdout     io.Writer
}

func newRootCmd(stdout io.Writer) *cobra.Command {
	opts := &rootOptions{stdout: stdout}

	root := &cobra.Command{
		Use:   "wallet",
		Short: "XRP Ledger wallet client",
		Long: "Derive a wallet from XRPLW_WALLET_SEED, read its balance and send XRP payments.\n" +
			"Without a subcommand it runs the demonstration script (see `wallet run --help`).",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			_, err := service.NewPrinter(io.Discard, opts.output)
			if err != nil {
				return apperror.Validation(err.Error())
			}
			return nil
		},
	}
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return apperror.Validation(err.Error())
	})

	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "Config file (default ./config.yaml or ./config/config.yaml)")
	root.PersistentFlags().StringVarP(&opts.output, "output", "o", service.FormatText, "Output format: text or kv")

	run := newRunCmd(opts)
	root.RunE = run.RunE
	root.Flags().AddFlagSet(run.Flags())

	root.AddCommand(
		run,
		newBalanceCmd(opts),
		newPayCmd(opts),
		newGenerateCmd(opts),
		newFundCmd(opts),
		newTokenCmd(opts),
		newServeCmd(opts),
	)
	return root
}
