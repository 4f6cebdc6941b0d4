// Package main implements the HTTP API server for taskpop.
package main

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/dsjohal14/taskpop/internal/app"
	apihttp "github.com/dsjohal14/taskpop/internal/http"
	"github.com/dsjohal14/taskpop/internal/libs/config"
	"github.com/dsjohal14/taskpop/internal/libs/obs"
)

func main() {
	// Load config
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	// Init logger
	obs.InitLogger(cfg.LogLevel)
	logger := obs.Logger("api")

	a, err := app.Open(context.Background(), cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize store")
	}
	defer func() { _ = a.Close() }()

	logger.Info().
		Str("backend", cfg.StoreBackend).
		Int("tasks", a.Store.Len()).
		Int("pop_count", a.Store.PopCount()).
		Msg("store loaded")

	// Create HTTP handler
	handler := apihttp.NewHandler(a.Store, a.Exporter, obs.Logger("http"))
	r := apihttp.NewRouter(handler)

	// Start server
	addr := fmt.Sprintf("%s:%s", cfg.APIHost, cfg.APIPort)
	logger.Info().Str("addr", addr).Msg("starting API server")

	if err := http.ListenAndServe(addr, r); err != nil {
		logger.Fatal().Err(err).Msg("server failed")
	}
}
