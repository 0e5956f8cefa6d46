/* Copyright (c) 2025 gitlab-project-dashboard authors
 * SPDX-License-Identifier: BSD-3-Clause */
package gitlab

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/alambare/gitlab-project-dashboard/internal/apperrors"
	"github.com/rs/zerolog"
)

// Source yields the endpoint and token for each request. Implementations
// re-read persisted settings so credential changes apply without a restart.
type Source interface {
	APIBaseURL() string
	AccessToken() string
}

type Client struct {
	src  Source
	http *http.Client
	log  zerolog.Logger
}

func NewClient(src Source, timeout time.Duration, log zerolog.Logger) *Client {
	if timeout <= 0 { timeout = 30 * time.Second }
	return &Client{src: src, http: &http.Client{Timeout: timeout}, log: log}
}

// Wire shapes of the GraphQL issue query, matching the fields the dashboard
// consumes. Timestamps stay strings here; parsing happens in the service layer.

type PageInfo struct {
	HasNextPage bool   `json:"hasNextPage"`
	EndCursor   string `json:"endCursor"`
}

type LabelNode struct {
	Title string `json:"title"`
	Color string `json:"color"`
}

type TimelogNode struct {
	Summary   string `json:"summary"`
	TimeSpent int    `json:"timeSpent"`
	SpentAt   string `json:"spentAt"`
	User      struct {
		Username string `json:"username"`
	} `json:"user"`
}

type IssueNode struct {
	ID             *string `json:"id"`
	IID            string  `json:"iid"`
	Title          string  `json:"title"`
	CreatedAt      string  `json:"createdAt"`
	ClosedAt       string  `json:"closedAt"`
	DueDate        string  `json:"dueDate"`
	TimeEstimate   int     `json:"timeEstimate"`
	TotalTimeSpent int     `json:"totalTimeSpent"`
	ProjectID      int     `json:"projectId"`
	WebURL         string  `json:"webUrl"`
	Labels         struct {
		Nodes []LabelNode `json:"nodes"`
	} `json:"labels"`
	Timelogs struct {
		Nodes []TimelogNode `json:"nodes"`
	} `json:"timelogs"`
}

type IssuesPage struct {
	Nodes    []IssueNode
	PageInfo PageInfo
}

type ContainerNode struct {
	FullPath          string `json:"fullPath"`
	NameWithNamespace string `json:"nameWithNamespace"`
	FullName          string `json:"fullName"`
}

type ContainerPage struct {
	Nodes    []ContainerNode `json:"nodes"`
	PageInfo PageInfo        `json:"pageInfo"`
}

// ContainersPage carries one combined response; a collection already drained
// in a previous round trip decodes as nil.
type ContainersPage struct {
	Projects *ContainerPage `json:"projects"`
	Groups   *ContainerPage `json:"groups"`
}

const issueFields = `
title
createdAt
closedAt
dueDate
timeEstimate
totalTimeSpent
projectId
labels {
    nodes {
        title
        color
    }
}
iid
id
timelogs {
    nodes {
        summary
        timeSpent
        spentAt
        user {
            username
        }
    }
}
webUrl`

// IssuesPage fetches one page of issues for a project or group. An empty
// cursor requests the first page.
func (c *Client) IssuesPage(ctx context.Context, containerType, fullPath, after string, first int) (*IssuesPage, error) {
	if containerType != "project" && containerType != "group" {
		return nil, fmt.Errorf("gitlab: unknown container type %q", containerType)
	}
	query := fmt.Sprintf(`{
    %s(fullPath: %q) {
        issues(first: %d, after: %q) {
            nodes {%s
            }
            pageInfo {
                hasNextPage
                endCursor
            }
        }
    }
}`, containerType, fullPath, first, after, issueFields)

	data, err := c.GraphQL(ctx, query)
	if err != nil { return nil, err }

	var out map[string]struct {
		Issues *struct {
			Nodes    []IssueNode `json:"nodes"`
			PageInfo PageInfo    `json:"pageInfo"`
		} `json:"issues"`
	}
	if err := json.Unmarshal(data, &out); err != nil { return nil, err }
	container, ok := out[containerType]
	if !ok || container.Issues == nil {
		// fall back to the project shape before giving up
		p, ok := out["project"]
		if !ok || p.Issues == nil {
			return nil, fmt.Errorf("gitlab: no issues in %s %s", containerType, fullPath)
		}
		container = p
	}
	return &IssuesPage{Nodes: container.Issues.Nodes, PageInfo: container.Issues.PageInfo}, nil
}

// ContainersPage fetches one combined page of projects and/or groups. Either
// cursor may be empty for that collection's first page; a collection whose
// pages are exhausted is excluded to save round trips.
func (c *Client) ContainersPage(ctx context.Context, projectCursor, groupCursor string, includeProjects, includeGroups bool, first int) (*ContainersPage, error) {
	if !includeProjects && !includeGroups {
		return &ContainersPage{}, nil
	}
	var b strings.Builder
	b.WriteString("{\n")
	if includeProjects {
		fmt.Fprintf(&b, `    projects(first: %d, after: %s) {
        nodes {
            fullPath
            nameWithNamespace
        }
        pageInfo {
            hasNextPage
            endCursor
        }
    }
`, first, cursorArg(projectCursor))
	}
	if includeGroups {
		fmt.Fprintf(&b, `    groups(first: %d, after: %s) {
        nodes {
            fullPath
            fullName
        }
        pageInfo {
            hasNextPage
            endCursor
        }
    }
`, first, cursorArg(groupCursor))
	}
	b.WriteString("}")

	data, err := c.GraphQL(ctx, b.String())
	if err != nil { return nil, err }
	var out ContainersPage
	if err := json.Unmarshal(data, &out); err != nil { return nil, err }
	return &out, nil
}

func cursorArg(cursor string) string {
	if cursor == "" { return "null" }
	return fmt.Sprintf("%q", cursor)
}

// GraphQL posts one query and returns the raw data payload. A non-2xx status
// or a top-level errors array fails the call.
func (c *Client) GraphQL(ctx context.Context, query string) (json.RawMessage, error) {
	base := strings.TrimRight(c.src.APIBaseURL(), "/")
	if base == "" { return nil, errors.New("gitlab: empty base URL") }
	body, err := json.Marshal(map[string]string{"query": query})
	if err != nil { return nil, err }

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, base+"/api/graphql", bytes.NewReader(body))
	if err != nil { return nil, err }
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.src.AccessToken())

	resp, err := c.http.Do(req)
	if err != nil { return nil, err }
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("gitlab api status=%d body=%s", resp.StatusCode, strings.TrimSpace(string(b)))
	}

	var out struct {
		Data   json.RawMessage `json:"data"`
		Errors []struct {
			Message string `json:"message"`
		} `json:"errors"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil { return nil, err }
	if len(out.Errors) > 0 {
		msgs := make([]string, 0, len(out.Errors))
		for _, e := range out.Errors { msgs = append(msgs, e.Message) }
		return nil, apperrors.Wrap(apperrors.ErrAPIError, strings.Join(msgs, "; "))
	}
	return out.Data, nil
}

// RestJSON issues an authenticated GET against the v4 REST API, for auxiliary
// lookups outside the aggregation path.
func (c *Client) RestJSON(ctx context.Context, endpoint string) (json.RawMessage, error) {
	base := strings.TrimRight(c.src.APIBaseURL(), "/")
	if base == "" { return nil, errors.New("gitlab: empty base URL") }
	u := base + "/api/v4/" + strings.TrimLeft(endpoint, "/")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil { return nil, err }
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.src.AccessToken())

	resp, err := c.http.Do(req)
	if err != nil { return nil, err }
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("gitlab api status=%d body=%s", resp.StatusCode, strings.TrimSpace(string(b)))
	}
	raw, err := io.ReadAll(resp.Body)
	if err != nil { return nil, err }
	return json.RawMessage(raw), nil
}
