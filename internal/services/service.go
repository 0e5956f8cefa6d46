/* Copyright (c) 2025 gitlab-project-dashboard authors
 * SPDX-License-Identifier: BSD-3-Clause */
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"sort"
	"sync"
	"time"

	"github.com/alambare/gitlab-project-dashboard/internal/adapters/gitlab"
	"github.com/alambare/gitlab-project-dashboard/internal/apperrors"
	"github.com/alambare/gitlab-project-dashboard/internal/config"
	"github.com/alambare/gitlab-project-dashboard/internal/domain"
	"github.com/rs/zerolog"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

type GitLabClient interface {
	IssuesPage(ctx context.Context, containerType, fullPath, after string, first int) (*gitlab.IssuesPage, error)
	ContainersPage(ctx context.Context, projectCursor, groupCursor string, includeProjects, includeGroups bool, first int) (*gitlab.ContainersPage, error)
	RestJSON(ctx context.Context, endpoint string) (json.RawMessage, error)
}

type SettingsStore interface {
	APIBaseURL() string
	SetAPIBaseURL(string) error
	SetAccessToken(string) error
	CurrentContainer() (*domain.Container, error)
	SetCurrentContainer(domain.Container) error
}

type Service struct {
	cfg      config.Config
	log      zerolog.Logger
	gl       GitLabClient
	settings SettingsStore

	mu      sync.RWMutex
	current *domain.Container
}

func New(cfg config.Config, log zerolog.Logger, gl GitLabClient, settings SettingsStore) *Service {
	s := &Service{cfg: cfg, log: log, gl: gl, settings: settings}
	if settings != nil {
		if c, err := settings.CurrentContainer(); err != nil {
			log.Error().Err(err).Msg("settings: load current container failed")
		} else {
			s.current = c
		}
	}
	return s
}

// Current returns the selected container, falling back to the persisted one
// loaded at startup. Nil when nothing was ever selected.
func (s *Service) Current() *domain.Container {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

func (s *Service) SelectContainer(c domain.Container) error {
	if c.Type != domain.ContainerProject && c.Type != domain.ContainerGroup {
		return fmt.Errorf("unknown container type %q", c.Type)
	}
	s.mu.Lock()
	cc := c
	s.current = &cc
	s.mu.Unlock()
	if s.settings != nil {
		return s.settings.SetCurrentContainer(c)
	}
	return nil
}

var issueIDSuffix = regexp.MustCompile(`(\d+)$`)

// FetchIssues drains the cursor-paginated issue collection for the selected
// container. Transport and API failures are swallowed into an empty slice so
// the dashboard renders an empty state; a malformed issue id or a missing
// selection propagates, since those are defects rather than transient faults.
func (s *Service) FetchIssues(ctx context.Context) ([]domain.Issue, error) {
	container := s.Current()
	if container == nil && s.cfg.GitLabGroup != "" {
		// legacy single-group mode
		container = &domain.Container{FullPath: s.cfg.GitLabGroup, Name: s.cfg.GitLabGroup, Type: domain.ContainerGroup}
	}
	if container == nil {
		return nil, apperrors.ErrNoContainerSelected
	}

	issues := []domain.Issue{}
	cursor := ""
	for {
		page, err := s.gl.IssuesPage(ctx, container.Type, container.FullPath, cursor, s.cfg.PageSize)
		if err != nil {
			s.log.Error().Err(err).Str("container", container.FullPath).Msg("gitlab: issue fetch failed")
			return []domain.Issue{}, nil
		}
		for _, n := range page.Nodes {
			issue, err := issueFromNode(n)
			if err != nil { return nil, err }
			issues = append(issues, issue)
		}
		if !page.PageInfo.HasNextPage { break }
		cursor = page.PageInfo.EndCursor
	}
	return issues, nil
}

func issueFromNode(n gitlab.IssueNode) (domain.Issue, error) {
	if n.ID == nil {
		return domain.Issue{}, apperrors.Wrap(apperrors.ErrMalformedIssueID, "issue id is null")
	}
	m := issueIDSuffix.FindString(*n.ID)
	if m == "" {
		return domain.Issue{}, apperrors.Wrap(apperrors.ErrMalformedIssueID, "invalid id format: "+*n.ID)
	}
	issue := domain.Issue{
		ID:             m,
		IID:            n.IID,
		Title:          n.Title,
		CreatedAt:      parseTimePtr(n.CreatedAt),
		ClosedAt:       parseTimePtr(n.ClosedAt),
		DueDate:        parseTimePtr(n.DueDate),
		TimeEstimate:   n.TimeEstimate,
		TotalTimeSpent: n.TotalTimeSpent,
		ProjectID:      n.ProjectID,
		WebURL:         n.WebURL,
	}
	for _, l := range n.Labels.Nodes {
		issue.Labels = append(issue.Labels, domain.Label{Title: l.Title, Color: l.Color})
	}
	for _, t := range n.Timelogs.Nodes {
		issue.Timelogs = append(issue.Timelogs, domain.Timelog{
			Summary:   t.Summary,
			TimeSpent: t.TimeSpent,
			SpentAt:   t.SpentAt,
			Username:  t.User.Username,
		})
	}
	return issue, nil
}

func parseTimePtr(s string) *time.Time {
	if s == "" { return nil }
	if t, err := time.Parse(time.RFC3339, s); err == nil { return &t }
	if t, err := time.Parse("2006-01-02", s); err == nil { return &t }
	return nil
}

// ListContainers merges the paginated projects and groups collections into one
// list sorted by display name. A combined query serves whichever collection
// still has pages, so a drained one stops costing round trips. Any failure
// yields an empty list.
func (s *Service) ListContainers(ctx context.Context) []domain.Container {
	out := []domain.Container{}
	hasNextProjects, hasNextGroups := true, true
	projectCursor, groupCursor := "", ""

	for hasNextProjects || hasNextGroups {
		page, err := s.gl.ContainersPage(ctx, projectCursor, groupCursor, hasNextProjects, hasNextGroups, s.cfg.PageSize)
		if err != nil {
			s.log.Error().Err(err).Msg("gitlab: container list failed")
			return []domain.Container{}
		}
		if hasNextProjects {
			if page.Projects == nil {
				hasNextProjects = false
			} else {
				for _, p := range page.Projects.Nodes {
					out = append(out, domain.Container{FullPath: p.FullPath, Name: p.NameWithNamespace, Type: domain.ContainerProject})
				}
				hasNextProjects = page.Projects.PageInfo.HasNextPage
				projectCursor = page.Projects.PageInfo.EndCursor
			}
		}
		if hasNextGroups {
			if page.Groups == nil {
				hasNextGroups = false
			} else {
				for _, g := range page.Groups.Nodes {
					out = append(out, domain.Container{FullPath: g.FullPath, Name: g.FullName, Type: domain.ContainerGroup})
				}
				hasNextGroups = page.Groups.PageInfo.HasNextPage
				groupCursor = page.Groups.PageInfo.EndCursor
			}
		}
	}

	coll := collate.New(language.Und, collate.IgnoreCase)
	sort.SliceStable(out, func(i, j int) bool {
		return coll.CompareString(out[i].Name, out[j].Name) < 0
	})
	return out
}

// Version probes the instance over the REST API.
func (s *Service) Version(ctx context.Context) (json.RawMessage, error) {
	return s.gl.RestJSON(ctx, "version")
}

// UpdateSettings persists the API base URL and, when non-empty, the token.
func (s *Service) UpdateSettings(baseURL, token string) error {
	if s.settings == nil { return nil }
	if baseURL != "" {
		if err := s.settings.SetAPIBaseURL(baseURL); err != nil { return err }
	}
	if token != "" {
		if err := s.settings.SetAccessToken(token); err != nil { return err }
	}
	return nil
}

func (s *Service) APIBaseURL() string {
	if s.settings == nil { return "" }
	return s.settings.APIBaseURL()
}

// Aggregate fetches the selected container's issues and folds them into the
// per-user time matrix. period is "day" or "month".
func (s *Service) Aggregate(ctx context.Context, period string) (domain.TimeData, error) {
	issues, err := s.FetchIssues(ctx)
	if err != nil { return nil, err }
	if period == "month" {
		return AggregateByMonth(issues)
	}
	return AggregateByDay(issues)
}

// Chart projects the day-level aggregation into chart series in the given
// unit ("hours" or "days").
func (s *Service) Chart(ctx context.Context, unit string) (domain.ChartData, error) {
	timeData, err := s.Aggregate(ctx, "day")
	if err != nil { return domain.ChartData{}, err }
	return ProjectChart(timeData, unit, s.cfg.HoursPerDay), nil
}
