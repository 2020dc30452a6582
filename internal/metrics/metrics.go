// Package metrics holds the Prometheus collectors for the task service.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds Prometheus metrics for the service core and the HTTP
// boundary. A nil *Metrics is valid and records nothing.
type Metrics struct {
	// Domain events
	ProjectsCreatedTotal   prometheus.Counter
	TasksCreatedTotal      prometheus.Counter
	TaskStatusUpdatesTotal *prometheus.CounterVec
	TasksDeletedTotal      prometheus.Counter

	// HTTP traffic
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
}

// New creates the collectors and registers them on reg.
//
// Metrics:
//   - taskboard_projects_created_total
//   - taskboard_tasks_created_total
//   - taskboard_task_status_updates_total{status}
//   - taskboard_tasks_deleted_total
//   - taskboard_http_requests_total{method,route,status}
//   - taskboard_http_request_duration_seconds{method,route}
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		ProjectsCreatedTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "taskboard_projects_created_total",
			Help: "Total number of projects created",
		}),
		TasksCreatedTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "taskboard_tasks_created_total",
			Help: "Total number of tasks created",
		}),
		TaskStatusUpdatesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "taskboard_task_status_updates_total",
				Help: "Total number of task status changes, by new status",
			},
			[]string{"status"},
		),
		TasksDeletedTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "taskboard_tasks_deleted_total",
			Help: "Total number of tasks deleted",
		}),
		HTTPRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "taskboard_http_requests_total",
				Help: "Total number of HTTP requests served",
			},
			[]string{"method", "route", "status"},
		),
		HTTPRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "taskboard_http_request_duration_seconds",
				Help:    "Duration of HTTP requests in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
	}
}

// ProjectCreated records a new project.
func (m *Metrics) ProjectCreated() {
	if m == nil {
		return
	}
	m.ProjectsCreatedTotal.Inc()
}

// TaskCreated records a new task.
func (m *Metrics) TaskCreated() {
	if m == nil {
		return
	}
	m.TasksCreatedTotal.Inc()
}

// TaskStatusUpdated records a status change to status.
func (m *Metrics) TaskStatusUpdated(status string) {
	if m == nil {
		return
	}
	m.TaskStatusUpdatesTotal.WithLabelValues(status).Inc()
}

// TaskDeleted records a task removal.
func (m *Metrics) TaskDeleted() {
	if m == nil {
		return
	}
	m.TasksDeletedTotal.Inc()
}

// ObserveRequest records one served HTTP request. route is the matched
// route pattern, not the raw path, to keep label cardinality bounded.
func (m *Metrics) ObserveRequest(method, route string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.HTTPRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}
