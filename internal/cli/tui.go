package cli

import (
	"fmt"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	zone "github.com/lrstanley/bubblezone"
	"github.com/rebeliceyang/lazybrowse/internal/app"
	"github.com/rebeliceyang/lazybrowse/internal/config"
	"github.com/rebeliceyang/lazybrowse/internal/favorites"
	"github.com/rebeliceyang/lazybrowse/internal/querylog"
	"github.com/rebeliceyang/lazybrowse/internal/session"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// runTUI starts the terminal UI
func runTUI(cmd *cobra.Command, _ []string) error {
	rt, err := getRuntime(cmd.Context())
	if err != nil {
		return err
	}
	cfg := rt.cfg

	projectID, _ := cmd.Flags().GetInt("project")
	rawLocation, _ := cmd.Flags().GetString("location")

	location := session.NewMemoryLocation("/")
	if rawLocation != "" {
		location, err = session.ParseLocation(rawLocation)
		if err != nil {
			return fmt.Errorf("invalid --location: %w", err)
		}
	}

	configDir, err := config.GetConfigPath()
	if err != nil {
		return fmt.Errorf("failed to locate config directory: %w", err)
	}

	favs, err := favorites.NewManager(configDir)
	if err != nil {
		return fmt.Errorf("failed to load favourites: %w", err)
	}

	opts := session.Options{
		DefaultLimit: cfg.Query.DefaultLimit,
		Location:     location,
		Favorites:    favs,
	}

	var store *querylog.Store
	if cfg.Query.LogEnabled || cfg.History.PersistLocation {
		store, err = querylog.NewStore(filepath.Join(configDir, "queries.db"), cfg.Query.LogMaxEntries)
		if err != nil {
			// The UI works without the log
			log.Warn().Err(err).Msg("query log unavailable")
			store = nil
		} else {
			defer store.Close()
		}
	}
	if store != nil && cfg.Query.LogEnabled {
		opts.Recorder = store
	}

	s := session.New(rt.gateway(), opts)
	log.Info().Str("session", s.ID).Int("project", projectID).Msg("starting tui")

	zone.NewGlobal()
	model := app.New(app.Options{
		Config:         cfg,
		Session:        s,
		Location:       location,
		QueryLog:       store,
		ProjectID:      projectID,
		PinnedLocation: rawLocation != "",
	})

	programOpts := []tea.ProgramOption{tea.WithAltScreen()}
	if cfg.UI.MouseEnabled {
		programOpts = append(programOpts, tea.WithMouseCellMotion())
	}

	p := tea.NewProgram(model, programOpts...)
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running program: %w", err)
	}
	return nil
}
