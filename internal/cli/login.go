package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newLoginCommand() *cobra.Command {
	var (
		token  string
		verify bool
	)

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Store an API token in the system keyring",
		Long: `Store an API token for the configured server in the system keyring.

Later runs use it unless --token or api.token is set.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := getRuntime(cmd.Context())
			if err != nil {
				return err
			}
			token = strings.TrimSpace(token)
			if token == "" {
				return errors.New("--token is required")
			}

			server := rt.cfg.API.BaseURL
			if verify {
				rt.cfg.API.Token = token
				if _, err := rt.gateway().ListProjects(cmd.Context()); err != nil {
					return fmt.Errorf("token rejected by %s: %w", server, err)
				}
			}

			if err := rt.tokens.Save(server, token); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Token saved for %s\n", server)
			return nil
		},
	}

	cmd.Flags().StringVar(&token, "token", "", "API token to store")
	cmd.Flags().BoolVar(&verify, "verify", true, "check the token against the server before saving")
	return cmd
}

func newLogoutCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Remove the stored API token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := getRuntime(cmd.Context())
			if err != nil {
				return err
			}

			server := rt.cfg.API.BaseURL
			if err := rt.tokens.Delete(server); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Token removed for %s\n", server)
			return nil
		},
	}
}
