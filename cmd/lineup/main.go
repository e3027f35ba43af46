package main

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/odelheim/lineup/internal/catalog"
	"github.com/odelheim/lineup/internal/config"
	"github.com/odelheim/lineup/internal/engine"
	"github.com/odelheim/lineup/internal/flags"
	"github.com/odelheim/lineup/internal/logging"
	"github.com/odelheim/lineup/internal/prefs"
	"github.com/odelheim/lineup/internal/ui"
)

const fetchTimeout = 30 * time.Second

func main() {
	if err := logging.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to initialize logging: %v\n", err)
	}
	defer logging.Close()

	cfg, err := config.Load()
	if err != nil {
		fatal("Failed to load config: %v", err)
	}
	sources := cfg.EnabledSources()
	if len(sources) == 0 {
		fatal("No enabled sources in %s", config.ConfigPath())
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		fatal("Failed to get home directory: %v", err)
	}
	dataDir := filepath.Join(homeDir, ".lineup")
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		fatal("Failed to create data directory: %v", err)
	}

	store, err := flags.Open(filepath.Join(dataDir, "flags.db"))
	if err != nil {
		fatal("Failed to open flag store: %v", err)
	}
	defer store.Close()

	collapse := prefs.Load(prefs.DefaultPath())
	eng := engine.New(store, collapse, cfg.UI.BatchSize)
	if cfg.UI.ShowHidden {
		eng.SetShowHidden(true)
	}

	panel := catalog.NewPanelClient(fetchTimeout)
	playlist := catalog.NewPlaylistClient(fetchTimeout)
	merger := catalog.NewMerger(panel, playlist)

	sourceByID := make(map[string]catalog.Source, len(sources))
	for _, s := range sources {
		sourceByID[s.ID] = s
	}

	loadCollection := func(selected []catalog.Source) tea.Cmd {
		return func() tea.Msg {
			channels, _, err := merger.Load(context.Background(), selected)
			return ui.CollectionLoaded{Channels: channels, Err: err}
		}
	}

	runMutation := func(mut *engine.Mutation) tea.Cmd {
		return func() tea.Msg {
			return ui.MutationResolved{Mut: mut, Err: engine.ExecuteMutation(store, mut)}
		}
	}

	resolveStream := func(ch catalog.Channel) (string, error) {
		src, ok := sourceByID[ch.SourceID]
		if !ok {
			return "", fmt.Errorf("unknown source %q", ch.SourceID)
		}
		if ch.SourceType == catalog.SourceAggregator {
			return panel.StreamURL(src, ch.StreamRef.StreamID), nil
		}
		return ch.StreamRef.URL, nil
	}

	play := func(url string) tea.Cmd {
		return func() tea.Msg {
			cmd := exec.Command(cfg.UI.Player, url)
			return ui.PlaybackStarted{Err: cmd.Start()}
		}
	}

	app := ui.NewApp(eng, sources, loadCollection, runMutation, resolveStream, play)

	p := tea.NewProgram(app, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		logging.Error("Application error", "error", err)
		fatal("Error: %v", err)
	}
}

func fatal(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
