package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	promtestutil "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/nhle/taskboard/internal/metrics"
	"github.com/nhle/taskboard/internal/model"
	"github.com/nhle/taskboard/internal/service"
	"github.com/nhle/taskboard/internal/store"
	"github.com/nhle/taskboard/internal/testutil"
)

type testServer struct {
	*Server
	store   *store.Store
	logs    *observer.ObservedLogs
	metrics *metrics.Metrics
}

func newTestServer(t *testing.T, stores ...*store.Store) *testServer {
	t.Helper()

	core, logs := observer.New(zapcore.DebugLevel)
	logger := zap.New(core)
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	st := store.New()
	if len(stores) > 0 {
		st = stores[0]
	}

	srv, err := NewServer(model.DefaultAppConfig().Server, Deps{
		Projects: service.NewProjectService(st, logger, m),
		Tasks:    service.NewTaskService(st, logger, m, service.TaskOptions{}),
		Store:    st,
		Logger:   logger,
		Registry: reg,
		Metrics:  m,
	})
	require.NoError(t, err)

	return &testServer{Server: srv, store: st, logs: logs, metrics: m}
}

func (ts *testServer) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	ts.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

type projectEnvelope struct {
	Message string        `json:"message"`
	Data    model.Project `json:"data"`
}

type taskEnvelope struct {
	Message string     `json:"message"`
	Data    model.Task `json:"data"`
}

func TestNewServer(t *testing.T) {
	t.Run("returns error when logger is nil", func(t *testing.T) {
		st := store.New()
		_, err := NewServer(model.ServerConfig{}, Deps{
			Projects: service.NewProjectService(st, nil, nil),
			Tasks:    service.NewTaskService(st, nil, nil, service.TaskOptions{}),
		})
		assert.ErrorContains(t, err, "logger is required")
	})

	t.Run("returns error when services are missing", func(t *testing.T) {
		_, err := NewServer(model.ServerConfig{}, Deps{Logger: zap.NewNop()})
		assert.ErrorContains(t, err, "services are required")
	})
}

func TestProjects(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodGet, "/api/v1/projects", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())

	rec = ts.do(t, http.MethodPost, "/api/v1/projects", `{"name":"Demo","description":"d"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	created := decode[projectEnvelope](t, rec)
	assert.Equal(t, "Project created successfully", created.Message)
	assert.Equal(t, "Demo", created.Data.Name)
	assert.NotEmpty(t, created.Data.ID)

	rec = ts.do(t, http.MethodGet, "/api/v1/projects", "")
	list := decode[[]model.Project](t, rec)
	assert.Equal(t, []model.Project{created.Data}, list)
}

func TestCreateProject_MissingName(t *testing.T) {
	ts := newTestServer(t)

	for _, body := range []string{`{"description":"x"}`, `{"name":""}`, ""} {
		rec := ts.do(t, http.MethodPost, "/api/v1/projects", body)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.JSONEq(t, `{"error":"name is required"}`, rec.Body.String())
	}
	n, _ := ts.store.Counts()
	assert.Zero(t, n)
}

func TestMalformedBody(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodPost, "/api/v1/projects", `{"name":`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"error":"invalid request body"}`, rec.Body.String())

	rec = ts.do(t, http.MethodPut, "/api/v1/tasks/x", `["completed"]`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"error":"invalid request body"}`, rec.Body.String())
}

func TestTasks_Lifecycle(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodPost, "/api/v1/projects", `{"name":"Demo","description":"d"}`)
	p1 := decode[projectEnvelope](t, rec).Data

	rec = ts.do(t, http.MethodPost, "/api/v1/projects/"+p1.ID+"/tasks",
		`{"title":"Write outline","status":"completed","createdAt":"2000-01-01T00:00:00Z"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	created := decode[taskEnvelope](t, rec)
	assert.Equal(t, "Task created successfully", created.Message)
	t1 := created.Data
	assert.Equal(t, model.StatusPending, t1.Status, "status is forced to pending")
	assert.Equal(t, p1.ID, t1.ProjectID)
	assert.WithinDuration(t, time.Now(), t1.CreatedAt, time.Minute, "createdAt is stamped server side")

	rec = ts.do(t, http.MethodPut, "/api/v1/tasks/"+t1.ID, `{"status":"in-progress"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, model.StatusInProgress, decode[model.Task](t, rec).Status)

	rec = ts.do(t, http.MethodGet, "/api/v1/projects/"+p1.ID+"/tasks", "")
	require.Equal(t, http.StatusOK, rec.Code)
	tasks := decode[[]model.Task](t, rec)
	require.Len(t, tasks, 1)
	assert.Equal(t, model.StatusInProgress, tasks[0].Status)

	rec = ts.do(t, http.MethodDelete, "/api/v1/tasks/"+t1.ID, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"message":"Task deleted successfully","data":{"id":"`+t1.ID+`"}}`, rec.Body.String())

	rec = ts.do(t, http.MethodDelete, "/api/v1/tasks/"+t1.ID, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"error":"Task not found"}`, rec.Body.String())

	rec = ts.do(t, http.MethodGet, "/api/v1/projects/"+p1.ID+"/tasks", "")
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestCreateTask_MissingTitle(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodPost, "/api/v1/projects/p1/tasks", `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"error":"title is required"}`, rec.Body.String())
}

func TestUpdateTask_Validation(t *testing.T) {
	ts := newTestServer(t)
	task, err := ts.tasks.CreateTask(context.Background(), service.TaskInput{ProjectID: "p1", Title: "a"})
	require.NoError(t, err)

	tests := []struct {
		name string
		body string
		want string
	}{
		{
			name: "missing status",
			body: `{}`,
			want: `{"errors":["status is required","status must be one of pending, in-progress, completed"]}`,
		},
		{
			name: "empty body",
			body: "",
			want: `{"errors":["status is required","status must be one of pending, in-progress, completed"]}`,
		},
		{
			name: "null status",
			body: `{"status":null}`,
			want: `{"errors":["status is required","status must be one of pending, in-progress, completed"]}`,
		},
		{
			name: "unknown status",
			body: `{"status":"archived"}`,
			want: `{"errors":["status must be one of pending, in-progress, completed"]}`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := ts.do(t, http.MethodPut, "/api/v1/tasks/"+task.ID, tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.JSONEq(t, tt.want, rec.Body.String())
		})
	}

	got, _ := ts.tasks.GetTaskByID(context.Background(), task.ID)
	assert.Equal(t, model.StatusPending, got.Status)
}

func TestUpdateTask_NotFound(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodPut, "/api/v1/tasks/missing", `{"status":"completed"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"error":"Task not found"}`, rec.Body.String())
}

func TestUnmatchedRoutes(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodGet, "/api/v1/nothing", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"error":"Route not found"}`, rec.Body.String())

	rec = ts.do(t, http.MethodPatch, "/api/v1/projects", "")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.JSONEq(t, `{"error":"Method not allowed"}`, rec.Body.String())

	assert.Equal(t, 1.0, promtestutil.ToFloat64(
		ts.metrics.HTTPRequestsTotal.WithLabelValues(http.MethodGet, unmatchedRoute, "404")))
}

func TestPanicIsInternalError(t *testing.T) {
	ts := newTestServer(t)
	ts.echo.GET("/boom", func(c echo.Context) error { panic("kaboom") })

	rec := ts.do(t, http.MethodGet, "/boom", "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"Internal server error"}`, rec.Body.String())
	assert.NotContains(t, rec.Body.String(), "kaboom")

	panics := ts.logs.FilterMessage("panic recovered").All()
	require.Len(t, panics, 1)
	assert.NotEmpty(t, panics[0].ContextMap()["stack"])

	requests := ts.logs.FilterMessage("http request").All()
	require.Len(t, requests, 1)
	assert.Equal(t, int64(http.StatusInternalServerError), requests[0].ContextMap()["status"])
	assert.Equal(t, 1.0, promtestutil.ToFloat64(
		ts.metrics.HTTPRequestsTotal.WithLabelValues(http.MethodGet, unmatchedRoute, "500")))
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t, testutil.NewTestStore(t,
		[]model.Project{{ID: "p1", Name: "A"}},
		[]model.Task{{ID: "t1", ProjectID: "p1", Title: "x", Status: model.StatusPending}},
	))

	rec := ts.do(t, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok","projects":1,"tasks":1}`, rec.Body.String())
}

func TestMetricsEndpoint(t *testing.T) {
	ts := newTestServer(t)
	ts.do(t, http.MethodPost, "/api/v1/projects", `{"name":"Demo"}`)

	rec := ts.do(t, http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "taskboard_projects_created_total 1")
	assert.Contains(t, rec.Body.String(), `taskboard_http_requests_total{method="POST",route="/api/v1/projects",status="201"} 1`)
}

func TestRequestLogging(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodGet, "/api/v1/projects", "")
	requestID := rec.Header().Get("X-Request-Id")
	assert.NotEmpty(t, requestID)

	entries := ts.logs.FilterMessage("http request").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "/api/v1/projects", fields["route"])
	assert.Equal(t, int64(http.StatusOK), fields["status"])
	assert.Equal(t, requestID, fields["request_id"])
}

func TestCORS(t *testing.T) {
	ts := newTestServer(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/projects", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	ts.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, rec.Header().Get("Access-Control-Allow-Methods"), http.MethodPut)
}
