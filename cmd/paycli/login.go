package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"societypay/util/httpx"
)

func loginCmd(load func() (*Config, error)) *cobra.Command {
	var email, password string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and remember the member token",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}
			if password == "" {
				password = os.Getenv("PAYCLI_PASSWORD")
			}
			if password == "" {
				return errors.New("password required: use --password or PAYCLI_PASSWORD")
			}
			tok, err := login(cmd.Context(), cfg.Server, email, password)
			if err != nil {
				return err
			}
			if err := cfg.SaveToken(tok); err != nil {
				return fmt.Errorf("save token: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "logged in as %s\n", email)
			return nil
		},
	}
	cmd.Flags().StringVarP(&email, "email", "e", "", "member email")
	cmd.Flags().StringVarP(&password, "password", "p", "", "member password")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func login(ctx context.Context, server, email, password string) (string, error) {
	var out struct {
		Token string `json:"token"`
	}
	api := newAPIClient(server, "", httpx.Client())
	if err := api.do(ctx, "POST", "/auth/login", map[string]string{"email": email, "password": password}, &out); err != nil {
		return "", err
	}
	if out.Token == "" {
		return "", errors.New("server returned no token")
	}
	return out.Token, nil
}
