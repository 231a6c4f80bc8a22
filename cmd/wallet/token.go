package main

import (
	"github.com/spf13/cobra"

	"xrpl-wallet/pkg/apperror"
)

func newTokenCmd(opts *rootOptions) *cobra.Command {
	var subject string

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint a bearer token for the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), opts, func(a *app) error {
				token, expiresAt, err := a.tokens.Generate(subject)
				if err != nil {
					return apperror.Validation(err.Error())
				}
				a.printer.Token(token, expiresAt)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&subject, "subject", "", "Token subject, used as the rate limit identity")
	_ = cmd.MarkFlagRequired("subject")
	return cmd
}
