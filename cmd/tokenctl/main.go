package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/spec-kit/token-auth/internal/auth"
	"github.com/spec-kit/token-auth/internal/clock"
	"github.com/spec-kit/token-auth/internal/config"
)

func main() {
	if err := newRootCmd(loadTokens).Execute(); err != nil {
		os.Exit(1)
	}
}

type tokensLoader func() (*auth.Tokens, error)

func loadTokens() (*auth.Tokens, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	return auth.NewTokens(cfg.Auth, clock.System{})
}

func newRootCmd(load tokensLoader) *cobra.Command {
	root := &cobra.Command{
		Use:          "tokenctl",
		Short:        "Issue and inspect tokens with the service's configured secrets",
		SilenceUsage: true,
	}
	root.AddCommand(newIssueCmd(load), newInspectCmd(load))
	return root
}

func newIssueCmd(load tokensLoader) *cobra.Command {
	var subject, kind string

	cmd := &cobra.Command{
		Use:   "issue",
		Short: "Sign a token for a subject",
		RunE: func(cmd *cobra.Command, _ []string) error {
			tokens, err := load()
			if err != nil {
				return err
			}
			issued, err := tokens.Issue(auth.Kind(kind), subject)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, issued.Value)
			fmt.Fprintf(out, "kind=%s expires_at=%s\n", issued.Kind, issued.ExpiresAt.Format(time.RFC3339))
			return nil
		},
	}
	cmd.Flags().StringVar(&subject, "subject", "", "subject (user id) to embed")
	cmd.Flags().StringVar(&kind, "kind", string(auth.KindAccess), "token kind: access or refresh")
	_ = cmd.MarkFlagRequired("subject")
	return cmd
}

func newInspectCmd(load tokensLoader) *cobra.Command {
	var kind string

	cmd := &cobra.Command{
		Use:   "inspect TOKEN",
		Short: "Validate a token and print its subject and expiry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tokens, err := load()
			if err != nil {
				return err
			}
			validator, err := tokens.Validator(auth.Kind(kind))
			if err != nil {
				return err
			}

			payload, err := validator.Validate(args[0])
			switch {
			case errors.Is(err, auth.ErrExpiredToken):
				return fmt.Errorf("token expired: obtain a new one via refresh")
			case errors.Is(err, auth.ErrInvalidToken):
				return fmt.Errorf("invalid token: %w", err)
			case err != nil:
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "subject=%s expires_at=%s\n", payload.Subject, payload.ExpiresAt.Format(time.RFC3339))
			return nil
		},
	}
	cmd.Flags().StringVar(&kind, "kind", string(auth.KindAccess), "token kind: access or refresh")
	return cmd
}
