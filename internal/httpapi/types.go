package httpapi

// MessageResponse wraps the result of a mutating request.
type MessageResponse struct {
	Message string `json:"message"`
	Data    any    `json:"data"`
}

// DeletedRef identifies a removed record.
type DeletedRef struct {
	ID string `json:"id"`
}

// ErrorResponse is the body for a single failure.
type ErrorResponse struct {
	Error string `json:"error"`
}

// ErrorsResponse is the body for aggregated validation failures.
type ErrorsResponse struct {
	Errors []string `json:"errors"`
}

// HealthResponse is the response body for GET /health.
type HealthResponse struct {
	Status   string `json:"status"`
	Projects int    `json:"projects"`
	Tasks    int    `json:"tasks"`
}

type createProjectRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type createTaskRequest struct {
	Title string `json:"title"`
}
