package httpapi

import (
	"errors"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/nhle/taskboard/internal/model"
	"github.com/nhle/taskboard/internal/service"
	"github.com/nhle/taskboard/internal/validate"
)

// payloadKey holds the decoded body after validateBody has run.
const payloadKey = "payload"

var taskStatusValidator = validate.MustNew(validate.Schema{
	{Field: "status", Required: true, Enum: model.StatusNames()},
})

// handleHealth reports liveness and the current record counts.
func (s *Server) handleHealth(c echo.Context) error {
	resp := HealthResponse{Status: "ok"}
	if s.store != nil {
		resp.Projects, resp.Tasks = s.store.Counts()
	}
	return c.JSON(http.StatusOK, resp)
}

func (s *Server) handleListProjects(c echo.Context) error {
	return c.JSON(http.StatusOK, s.projects.ListProjects(c.Request().Context()))
}

func (s *Server) handleCreateProject(c echo.Context) error {
	var req createProjectRequest
	if err := decodeBody(c, &req); err != nil {
		return err
	}

	p, err := s.projects.CreateProject(c.Request().Context(), service.ProjectInput{
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, MessageResponse{Message: "Project created successfully", Data: p})
}

func (s *Server) handleListTasks(c echo.Context) error {
	tasks, err := s.tasks.ListTasksByProject(c.Request().Context(), c.Param("projectId"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, tasks)
}

// handleCreateTask always starts the task as pending, stamped now.
func (s *Server) handleCreateTask(c echo.Context) error {
	var req createTaskRequest
	if err := decodeBody(c, &req); err != nil {
		return err
	}

	t, err := s.tasks.CreateTask(c.Request().Context(), service.TaskInput{
		ProjectID: c.Param("projectId"),
		Title:     req.Title,
		Status:    model.StatusPending,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, MessageResponse{Message: "Task created successfully", Data: t})
}

func (s *Server) handleUpdateTask(c echo.Context) error {
	payload, _ := c.Get(payloadKey).(map[string]any)
	status, _ := payload["status"].(string)

	t, err := s.tasks.UpdateTaskStatus(c.Request().Context(), c.Param("taskId"), model.Status(status))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, t)
}

func (s *Server) handleDeleteTask(c echo.Context) error {
	t, err := s.tasks.DeleteTask(c.Request().Context(), c.Param("taskId"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, MessageResponse{Message: "Task deleted successfully", Data: DeletedRef{ID: t.ID}})
}

// validateBody decodes the JSON body and rejects it with every violation
// of v before the handler runs.
func (s *Server) validateBody(v *validate.Validator) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			var payload map[string]any
			if err := decodeBody(c, &payload); err != nil {
				return err
			}
			if res := v.Validate(payload); !res.OK() {
				return res.Err()
			}
			c.Set(payloadKey, payload)
			return next(c)
		}
	}
}

// decodeBody reads a JSON body into v. An empty body leaves v untouched.
func decodeBody(c echo.Context, v any) error {
	err := c.Echo().JSONSerializer.Deserialize(c, v)
	if err == nil || errors.Is(err, io.EOF) {
		return nil
	}
	return errInvalidBody
}
