/* Copyright (c) 2025 gitlab-project-dashboard authors
 * SPDX-License-Identifier: BSD-3-Clause */
package http

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/alambare/gitlab-project-dashboard/internal/config"
	"github.com/alambare/gitlab-project-dashboard/internal/domain"
)

type service interface {
	FetchIssues(ctx context.Context) ([]domain.Issue, error)
	ListContainers(ctx context.Context) []domain.Container
	Current() *domain.Container
	SelectContainer(c domain.Container) error
	Aggregate(ctx context.Context, period string) (domain.TimeData, error)
	Chart(ctx context.Context, unit string) (domain.ChartData, error)
	Version(ctx context.Context) (json.RawMessage, error)
	UpdateSettings(baseURL, token string) error
	APIBaseURL() string
}

type Handlers struct {
	cfg config.Config
	log zerolog.Logger
	svc service
}

func NewHandlers(cfg config.Config, log zerolog.Logger, svc service) *Handlers {
	return &Handlers{cfg: cfg, log: log, svc: svc}
}

func (h *Handlers) Healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// Issues returns the full issue list for the selected container. The fetch
// layer already folds transport failures into an empty list, so a 500 here
// means a configuration or data defect (no selection, malformed issue id).
func (h *Handlers) Issues(c *gin.Context) {
	issues, err := h.svc.FetchIssues(c.Request.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("fetch issues failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch issues"})
		return
	}
	c.JSON(http.StatusOK, issues)
}

func (h *Handlers) Containers(c *gin.Context) {
	c.JSON(http.StatusOK, h.svc.ListContainers(c.Request.Context()))
}

func (h *Handlers) SelectContainer(c *gin.Context) {
	var in domain.Container
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid container"})
		return
	}
	if err := h.svc.SelectContainer(in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (h *Handlers) Aggregate(c *gin.Context) {
	period := c.DefaultQuery("period", "day")
	if period != "day" && period != "month" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "period must be day or month"})
		return
	}
	data, err := h.svc.Aggregate(c.Request.Context(), period)
	if err != nil {
		h.log.Error().Err(err).Str("period", period).Msg("aggregate failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, data)
}

func (h *Handlers) Chart(c *gin.Context) {
	unit := c.DefaultQuery("unit", domain.TimeUnitHours)
	if unit != domain.TimeUnitHours && unit != domain.TimeUnitDays {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unit must be hours or days"})
		return
	}
	chart, err := h.svc.Chart(c.Request.Context(), unit)
	if err != nil {
		h.log.Error().Err(err).Str("unit", unit).Msg("chart projection failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, chart)
}

func (h *Handlers) GetSettings(c *gin.Context) {
	// token is write-only
	c.JSON(http.StatusOK, gin.H{
		"apiBaseUrl":  h.svc.APIBaseURL(),
		"hoursPerDay": h.cfg.HoursPerDay,
		"container":   h.svc.Current(),
	})
}

func (h *Handlers) PutSettings(c *gin.Context) {
	var in struct {
		APIBaseURL  string `json:"apiBaseUrl"`
		AccessToken string `json:"accessToken"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid settings"})
		return
	}
	if err := h.svc.UpdateSettings(in.APIBaseURL, in.AccessToken); err != nil {
		h.log.Error().Err(err).Msg("settings update failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (h *Handlers) Version(c *gin.Context) {
	v, err := h.svc.Version(c.Request.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("version probe failed")
		c.JSON(http.StatusBadGateway, gin.H{"error": "gitlab unreachable"})
		return
	}
	c.Data(http.StatusOK, "application/json", v)
}
