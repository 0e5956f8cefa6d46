/* Copyright (c) 2025 gitlab-project-dashboard authors
 * SPDX-License-Identifier: BSD-3-Clause */
package main

import (
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alambare/gitlab-project-dashboard/internal/adapters/gitlab"
	"github.com/alambare/gitlab-project-dashboard/internal/config"
	httpx "github.com/alambare/gitlab-project-dashboard/internal/http"
	"github.com/alambare/gitlab-project-dashboard/internal/logger"
	"github.com/alambare/gitlab-project-dashboard/internal/services"
	"github.com/alambare/gitlab-project-dashboard/internal/settings"
)

func main() {
	cfg := config.Load()
	log := logger.New(cfg)

	// Settings store (env values act as defaults until saved)
	store, err := settings.Open(cfg.SettingsDBPath, cfg.GitLabBaseURL, cfg.GitLabToken)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.SettingsDBPath).Msg("open settings store failed")
	}
	defer store.Close()

	// Adapters
	gl := gitlab.NewClient(store, cfg.HTTPTimeout, log)

	// Services
	svc := services.New(cfg, log, gl, store)

	// HTTP server (Gin)
	router := httpx.NewRouter(cfg, log, svc)

	errCh := make(chan error, 1)
	go func() { errCh <- router.Run(cfg.HTTPAddr) }()
	log.Info().Str("addr", cfg.HTTPAddr).Str("gitlab", store.APIBaseURL()).Msg("listening")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case <-sigCh:
		log.Info().Msg("shutting down...")
	case err := <-errCh:
		if err != nil { log.Error().Err(err).Msg("http server error") }
	}

	time.Sleep(500 * time.Millisecond)
}
