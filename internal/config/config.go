/* Copyright (c) 2025 gitlab-project-dashboard authors
 * SPDX-License-Identifier: BSD-3-Clause */
package config

import (
	"log"
	"os"
	"strconv"
	"time"
)

type Config struct {
	AppEnv   string
	TZ       string
	HTTPAddr string

	GitLabBaseURL string
	GitLabToken   string
	GitLabGroup   string // legacy single-group mode; empty disables it

	HoursPerDay int
	PageSize    int
	HTTPTimeout time.Duration

	SettingsDBPath string
}

func getenv(key, def string) string {
	v := os.Getenv(key)
	if v == "" { return def }
	return v
}

func atoi(key string, def int) int {
	v := os.Getenv(key)
	if v == "" { return def }
	i, err := strconv.Atoi(v)
	if err != nil { return def }
	return i
}

func dur(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" { return def }
	d, err := time.ParseDuration(v)
	if err != nil { return def }
	return d
}

func Load() Config {
	cfg := Config{
		AppEnv:   getenv("APP_ENV", "dev"),
		TZ:       getenv("APP_TZ", "UTC"),
		HTTPAddr: getenv("HTTP_ADDR", ":8080"),

		GitLabBaseURL: getenv("GITLAB_URL", ""),
		GitLabToken:   getenv("GITLAB_ACCESS_TOKEN", ""),
		GitLabGroup:   getenv("GITLAB_GROUP", ""),

		HoursPerDay: atoi("HOURS_PER_DAY", 7),
		PageSize:    atoi("PAGE_SIZE", 100),
		HTTPTimeout: dur("HTTP_TIMEOUT", 30*time.Second),

		SettingsDBPath: getenv("SETTINGS_DB", "settings.db"),
	}

	if cfg.HoursPerDay <= 0 { cfg.HoursPerDay = 7 }
	if cfg.PageSize <= 0 || cfg.PageSize > 100 { cfg.PageSize = 100 }

	if loc, err := time.LoadLocation(cfg.TZ); err == nil {
		time.Local = loc
	} else {
		log.Printf("warning: cannot load TZ %s: %v", cfg.TZ, err)
	}
	return cfg
}
