package commands

import (
	"fmt"
	"io"

	"github.com/charmbracelet/log"

	"tableflip.dev/campus/pkg/app"
	"tableflip.dev/campus/pkg/config"
	"tableflip.dev/campus/pkg/listview"
	"tableflip.dev/campus/pkg/pages"
	"tableflip.dev/campus/pkg/source"
	"tableflip.dev/campus/pkg/store"
)

// loadApp reads the configuration and wires the backend, the history and
// the page registry into an application service. Logs go to logOut.
func loadApp(logOut io.Writer) (*app.Service, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	logger := log.NewWithOptions(logOut, log.Options{
		Level:           cfg.LogLevel,
		Prefix:          "campus",
		ReportTimestamp: true,
	})

	var backend source.Backend
	switch cfg.Source {
	case config.SourceFile:
		backend = source.NewFiles(cfg.FixturesPath, logger)
	default:
		rest, err := source.NewREST(cfg.BaseURL, cfg.Timeout, logger)
		if err != nil {
			return nil, err
		}
		backend = rest
	}

	history, err := store.Load(cfg)
	if err != nil {
		return nil, fmt.Errorf("open history: %w", err)
	}

	logger.Debug("configuration loaded", "source", cfg.Source, "scope", cfg.Scope(), "history", cfg.HistoryPath)
	return &app.Service{
		Backend: backend,
		History: history,
		Scope:   cfg.Scope(),
		Pages:   pages.Default().WithPageSizes(cfg.PageSizes),
		Policy: listview.ViewportPolicy{
			Breakpoint:              cfg.Breakpoint,
			ResizeOverridesExplicit: cfg.ResizeOverridesExplicit,
		},
		Classifier: cfg.Classifier(),
		Logger:     logger,
	}, nil
}

func pageNames() []string {
	return pages.Default().Names()
}
