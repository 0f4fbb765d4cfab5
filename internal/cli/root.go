// Package cli provides the command-line interface for lazybrowse.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rebeliceyang/lazybrowse/internal/config"
	"github.com/rebeliceyang/lazybrowse/internal/credentials"
	"github.com/rebeliceyang/lazybrowse/internal/gateway"
	"github.com/rebeliceyang/lazybrowse/internal/logging"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Version information (set at build time).
var Version = "0.1.0"

// runtimeKey is used to store the loaded runtime in the command context.
type runtimeKey struct{}

// runtime is what every command needs once flags and config are resolved
type runtime struct {
	cfg    *config.Config
	tokens *credentials.TokenStore
	logs   io.Closer
}

// gateway builds an API client with the resolved token
func (rt *runtime) gateway() *gateway.Client {
	token := rt.tokens.Resolve(rt.cfg.API.BaseURL, rt.cfg.API.Token)
	return gateway.NewClient(
		gateway.StaticConfig{ServerURL: rt.cfg.API.BaseURL, Token: token},
		gateway.WithTimeout(time.Duration(rt.cfg.API.TimeoutMs)*time.Millisecond),
	)
}

func getRuntime(ctx context.Context) (*runtime, error) {
	rt, ok := ctx.Value(runtimeKey{}).(*runtime)
	if !ok {
		return nil, errors.New("configuration not loaded")
	}
	return rt, nil
}

// NewRootCmd creates and returns the root command.
func NewRootCmd() *cobra.Command {
	var cfgFile string

	rootCmd := &cobra.Command{
		Use:   "lazybrowse",
		Short: "lazybrowse - terminal client for the database worker API",
		Long: `lazybrowse browses the databases of your projects through the database
worker API: the schema tree, ad-hoc queries in tabs and the schema commit history.

Run without a subcommand to start the terminal UI.`,
		Version: Version,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Name() == "help" || cmd.Name() == "completion" || cmd.Name() == "__complete" {
				return nil
			}

			v := config.New(cfgFile)
			if err := bindFlags(v, cmd); err != nil {
				return err
			}

			cfg, err := config.Load(v)
			if err != nil {
				return err
			}

			rt := &runtime{cfg: cfg, tokens: credentials.NewTokenStore()}
			if closer, err := logging.Init(cfg.Log.File, cfg.Log.Level); err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "Warning: logging disabled: %v\n", err)
				logging.Discard()
			} else {
				rt.logs = closer
			}

			log.Debug().Str("command", cmd.CommandPath()).Str("server", cfg.API.BaseURL).Msg("starting")
			cmd.SetContext(context.WithValue(cmd.Context(), runtimeKey{}, rt))
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, _ []string) error {
			if rt, err := getRuntime(cmd.Context()); err == nil && rt.logs != nil {
				return rt.logs.Close()
			}
			return nil
		},
		RunE:          runTUI,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.SetVersionTemplate("{{.Name}} {{.Version}}\n")

	// Global persistent flags
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "config file (default: $XDG_CONFIG_HOME/lazybrowse/config.yaml)")
	pf.String("server", "", "API base URL (overrides api.base_url)")
	pf.String("token", "", "API token (overrides the stored token)")
	pf.String("log-level", "", "log level (debug|info|warn|error)")

	rootCmd.Flags().IntP("project", "p", 0, "project to open")
	rootCmd.Flags().String("location", "", `initial view state, e.g. "?history=1&commit=42"`)
	rootCmd.Flags().String("theme", "", "color theme (default|catppuccin)")

	rootCmd.AddCommand(newProjectsCommand())
	rootCmd.AddCommand(newQueryCommand())
	rootCmd.AddCommand(newCommitsCommand())
	rootCmd.AddCommand(newLoginCommand())
	rootCmd.AddCommand(newLogoutCommand())

	return rootCmd
}

// bindFlags maps command line flags onto config keys
func bindFlags(v *viper.Viper, cmd *cobra.Command) error {
	bindings := map[string]string{
		"api.base_url": "server",
		"api.token":    "token",
		"log.level":    "log-level",
		"ui.theme":     "theme",
	}
	for key, name := range bindings {
		flag := cmd.Flags().Lookup(name)
		if flag == nil {
			continue
		}
		if err := v.BindPFlag(key, flag); err != nil {
			return fmt.Errorf("failed to bind flag %s: %w", name, err)
		}
	}
	return nil
}

// Execute runs the root command.
func Execute() error {
	rootCmd := NewRootCmd()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	return nil
}
