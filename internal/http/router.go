/* Copyright (c) 2025 gitlab-project-dashboard authors
 * SPDX-License-Identifier: BSD-3-Clause */
package http

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/alambare/gitlab-project-dashboard/internal/config"
)

func NewRouter(cfg config.Config, log zerolog.Logger, svc service) *gin.Engine {
	if cfg.AppEnv != "dev" { gin.SetMode(gin.ReleaseMode) }
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(func(c *gin.Context) {
		id := c.GetHeader("X-Request-ID")
		if id == "" { id = uuid.NewString() }
		c.Header("X-Request-ID", id)
		c.Next()
		log.Info().Str("rid", id).Str("m", c.Request.Method).Str("p", c.FullPath()).Int("s", c.Writer.Status()).Msg("http")
	})

	h := NewHandlers(cfg, log, svc)

	r.GET("/healthz", h.Healthz)

	api := r.Group("/api")
	api.GET("/gitlab-issues", h.Issues)
	api.GET("/containers", h.Containers)
	api.PUT("/container", h.SelectContainer)
	api.GET("/aggregate", h.Aggregate)
	api.GET("/chart", h.Chart)
	api.GET("/settings", h.GetSettings)
	api.PUT("/settings", h.PutSettings)
	api.GET("/gitlab/version", h.Version)

	return r
}
