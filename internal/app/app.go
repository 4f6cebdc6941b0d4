// Package app wires configuration, persistence, the task store and the
// exporter together for the taskpop binaries.
package app

import (
	"context"
	"fmt"

	"github.com/dsjohal14/taskpop/internal/libs/config"
	"github.com/dsjohal14/taskpop/internal/libs/obs"
	"github.com/dsjohal14/taskpop/internal/scope/db"
	"github.com/dsjohal14/taskpop/internal/scope/export"
	"github.com/dsjohal14/taskpop/internal/scope/tasks"
	"github.com/rs/zerolog"
)

// App bundles the long-lived components of a taskpop process
type App struct {
	Config   *config.Config
	KV       db.KV
	Store    *tasks.Store
	Exporter *export.Exporter
	Logger   zerolog.Logger
}

// Open builds the store from cfg and restores persisted state
func Open(ctx context.Context, cfg *config.Config) (*App, error) {
	logger := obs.Logger("app")

	kv, err := db.Open(ctx, db.Options{
		Backend:     cfg.StoreBackend,
		DataDir:     cfg.DataDir,
		DatabaseURL: cfg.DatabaseURL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open %s store: %w", cfg.StoreBackend, err)
	}

	store := tasks.NewStore(
		tasks.WithPersistence(kv, cfg.StateKey),
		tasks.WithLogger(obs.Logger("tasks")),
		tasks.WithAutoExportEvery(cfg.AutoExportEvery),
		tasks.WithChecklistImport(cfg.ChecklistImport),
	)
	store.LoadPersisted()

	exporter := export.NewExporter(cfg.ExportDir, obs.Logger("export"))
	store.Subscribe(exporter.Listener())

	logger.Debug().
		Str("backend", cfg.StoreBackend).
		Str("data_dir", cfg.DataDir).
		Int("tasks", store.Len()).
		Msg("store opened")

	return &App{
		Config:   cfg,
		KV:       kv,
		Store:    store,
		Exporter: exporter,
		Logger:   logger,
	}, nil
}

// Close releases the persistence backend
func (a *App) Close() error {
	return a.KV.Close()
}
