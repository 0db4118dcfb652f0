package main

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/fwojciec/advisor"
	"github.com/fwojciec/advisor/bedrock"
	"github.com/fwojciec/advisor/csv"
	"github.com/fwojciec/advisor/gemini"
	"github.com/fwojciec/advisor/logging"
	"github.com/fwojciec/advisor/sqlite"
	"go.uber.org/zap"
)

// resolveGenerator constructs the generation backend named by cfg.Provider.
func resolveGenerator(ctx context.Context, cfg config) (advisor.Generator, error) {
	switch cfg.Provider {
	case "bedrock":
		client, err := bedrock.New(ctx, bedrock.WithRegion(cfg.Region))
		if err != nil {
			return nil, err
		}
		return client, nil
	case "gemini":
		client, err := gemini.New(ctx, cfg.Project, cfg.Location)
		if err != nil {
			return nil, err
		}
		return client, nil
	default:
		return nil, fmt.Errorf("unknown provider %q: must be \"bedrock\" or \"gemini\"", cfg.Provider)
	}
}

// rosterSource picks the roster reader from the file extension. SQLite
// databases are read from a table; anything else is parsed as CSV.
func rosterSource(cfg config) advisor.RosterSource {
	switch strings.ToLower(filepath.Ext(cfg.Roster)) {
	case ".db", ".sqlite", ".sqlite3":
		return &sqlite.Source{Path: cfg.Roster, Table: cfg.Table, IDColumn: cfg.IDColumn}
	default:
		return &csv.Source{Path: cfg.Roster, IDColumn: cfg.IDColumn}
	}
}

// preloadRoster loads the roster once at startup so an unreadable file fails
// the command instead of the first login. A missing file is tolerated.
func preloadRoster(ctx context.Context, roster *advisor.RosterCache, logger *zap.Logger) error {
	defer logging.Timed(logger, "roster.load")()
	if _, err := roster.Get(ctx); err != nil && !errors.Is(err, advisor.ErrRosterUnavailable) {
		return fmt.Errorf("load roster: %w", err)
	}
	return nil
}
