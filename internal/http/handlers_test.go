package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alambare/gitlab-project-dashboard/internal/apperrors"
	"github.com/alambare/gitlab-project-dashboard/internal/config"
	"github.com/alambare/gitlab-project-dashboard/internal/domain"
)

type fakeService struct {
	issues     []domain.Issue
	fetchErr   error
	containers []domain.Container
	current    *domain.Container
	selected   *domain.Container
	timeData   domain.TimeData
	aggErr     error
	chart      domain.ChartData
	baseURL    string
	savedBase  string
	savedToken string
}

func (f *fakeService) FetchIssues(context.Context) ([]domain.Issue, error) {
	return f.issues, f.fetchErr
}
func (f *fakeService) ListContainers(context.Context) []domain.Container { return f.containers }
func (f *fakeService) Current() *domain.Container                        { return f.current }
func (f *fakeService) SelectContainer(c domain.Container) error {
	f.selected = &c
	return nil
}
func (f *fakeService) Aggregate(context.Context, string) (domain.TimeData, error) {
	return f.timeData, f.aggErr
}
func (f *fakeService) Chart(context.Context, string) (domain.ChartData, error) {
	return f.chart, f.aggErr
}
func (f *fakeService) Version(context.Context) (json.RawMessage, error) {
	return json.RawMessage(`{"version":"17.0.0"}`), nil
}
func (f *fakeService) UpdateSettings(baseURL, token string) error {
	f.savedBase, f.savedToken = baseURL, token
	return nil
}
func (f *fakeService) APIBaseURL() string { return f.baseURL }

func testRouter(svc service) *gin.Engine {
	gin.SetMode(gin.TestMode)
	return NewRouter(config.Config{AppEnv: "test", HoursPerDay: 7}, zerolog.Nop(), svc)
}

func doReq(t *testing.T, r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestIssues_OK(t *testing.T) {
	svc := &fakeService{issues: []domain.Issue{{ID: "12345", Title: "a"}}}
	w := doReq(t, testRouter(svc), http.MethodGet, "/api/gitlab-issues", "")

	require.Equal(t, http.StatusOK, w.Code)
	var got []domain.Issue
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	require.Len(t, got, 1)
	assert.Equal(t, "12345", got[0].ID)
}

func TestIssues_EmptyOnFailSoft(t *testing.T) {
	// the fetch layer already swallowed the upstream failure
	svc := &fakeService{issues: []domain.Issue{}}
	w := doReq(t, testRouter(svc), http.MethodGet, "/api/gitlab-issues", "")

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())
}

func TestIssues_PropagatedErrorIs500(t *testing.T) {
	svc := &fakeService{fetchErr: apperrors.ErrNoContainerSelected}
	w := doReq(t, testRouter(svc), http.MethodGet, "/api/gitlab-issues", "")

	require.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "error")
}

func TestContainers_OK(t *testing.T) {
	svc := &fakeService{containers: []domain.Container{
		{FullPath: "a", Name: "A", Type: domain.ContainerProject},
	}}
	w := doReq(t, testRouter(svc), http.MethodGet, "/api/containers", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"fullPath":"a"`)
}

func TestSelectContainer_PersistsSelection(t *testing.T) {
	svc := &fakeService{}
	w := doReq(t, testRouter(svc), http.MethodPut, "/api/container",
		`{"fullPath":"grp/app","name":"App","type":"group"}`)

	require.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, svc.selected)
	assert.Equal(t, "grp/app", svc.selected.FullPath)
}

func TestSelectContainer_BadBody(t *testing.T) {
	w := doReq(t, testRouter(&fakeService{}), http.MethodPut, "/api/container", `{bad`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAggregate_BadPeriod(t *testing.T) {
	w := doReq(t, testRouter(&fakeService{}), http.MethodGet, "/api/aggregate?period=week", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAggregate_OK(t *testing.T) {
	svc := &fakeService{timeData: domain.TimeData{
		"alice": {{Period: "2024-01-05", TotalSeconds: 5400}},
	}}
	w := doReq(t, testRouter(svc), http.MethodGet, "/api/aggregate", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"totalSeconds":5400`)
}

func TestChart_BadUnit(t *testing.T) {
	w := doReq(t, testRouter(&fakeService{}), http.MethodGet, "/api/chart?unit=weeks", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestChart_OK(t *testing.T) {
	svc := &fakeService{chart: domain.ChartData{
		Labels:   []string{"2024-01-05"},
		Datasets: []domain.Dataset{{Label: "Total Time Spent"}},
	}}
	w := doReq(t, testRouter(svc), http.MethodGet, "/api/chart?unit=days", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Total Time Spent")
}

func TestSettings_RoundTrip(t *testing.T) {
	svc := &fakeService{baseURL: "https://gitlab.com"}
	r := testRouter(svc)

	w := doReq(t, r, http.MethodPut, "/api/settings",
		`{"apiBaseUrl":"https://self.hosted","accessToken":"glpat-x"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "https://self.hosted", svc.savedBase)
	assert.Equal(t, "glpat-x", svc.savedToken)

	w = doReq(t, r, http.MethodGet, "/api/settings", "")
	require.Equal(t, http.StatusOK, w.Code)
	// token never comes back
	assert.NotContains(t, w.Body.String(), "glpat-x")
	assert.Contains(t, w.Body.String(), `"hoursPerDay":7`)
}

func TestHealthz(t *testing.T) {
	w := doReq(t, testRouter(&fakeService{}), http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRequestIDHeader(t *testing.T) {
	w := doReq(t, testRouter(&fakeService{}), http.MethodGet, "/healthz", "")
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestVersionProbe(t *testing.T) {
	w := doReq(t, testRouter(&fakeService{}), http.MethodGet, "/api/gitlab/version", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"version":"17.0.0"}`, w.Body.String())
}
