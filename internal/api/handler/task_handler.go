package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/taskforge/task-system/internal/api/metrics"
	"github.com/taskforge/task-system/internal/core/domain"
	"github.com/taskforge/task-system/internal/core/ports"
)

// TaskHandler handles HTTP requests for task operations. Every route is
// behind the Auth middleware; ownership enforcement lives in the service.
type TaskHandler struct {
	service ports.TaskService
}

func NewTaskHandler(service ports.TaskService) *TaskHandler {
	return &TaskHandler{service: service}
}

// Create adds a task for the current user.
//
// @Summary      Create a task
// @Tags         tasks
// @Accept       json
// @Produce      json
// @Param        body  body      createTaskRequest  true  "Task details"
// @Success      201   {object}  taskEnvelope
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Security     BearerAuth
// @Router       /api/tasks [post]
func (h *TaskHandler) Create(c echo.Context) error {
	userID, err := ctxUserID(c)
	if err != nil {
		return err
	}

	var req createTaskRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	task, err := h.service.CreateTask(c.Request().Context(), userID, ports.CreateTaskInput{
		Title:       req.Title,
		Description: req.Description,
		Completed:   req.Completed,
		DueDate:     req.DueDate,
		Priority:    req.Priority,
	})
	if err != nil {
		return trackTask("create", err)
	}

	metrics.TaskOperationsTotal.WithLabelValues("create", "ok").Inc()
	return c.JSON(http.StatusCreated, taskEnvelope{Task: toTaskResponse(task)})
}

// List returns the current user's tasks with optional filter and sort.
//
// @Summary      List tasks
// @Tags         tasks
// @Produce      json
// @Param        status  query     string  false  "Filter: all, pending, completed"
// @Param        sort    query     string  false  "Sort: created, title, due_date"
// @Success      200     {object}  taskListEnvelope
// @Failure      401     {object}  errorResponse
// @Security     BearerAuth
// @Router       /api/tasks [get]
func (h *TaskHandler) List(c echo.Context) error {
	userID, err := ctxUserID(c)
	if err != nil {
		return err
	}

	tasks, err := h.service.ListTasks(c.Request().Context(), userID, ports.ListTasksInput{
		Status: c.QueryParam("status"),
		Sort:   c.QueryParam("sort"),
	})
	if err != nil {
		return trackTask("list", err)
	}

	metrics.TaskOperationsTotal.WithLabelValues("list", "ok").Inc()
	return c.JSON(http.StatusOK, toTaskListResponse(tasks))
}

// Get returns a single owned task.
//
// @Summary      Get a task
// @Tags         tasks
// @Produce      json
// @Param        id   path      string  true  "Task id"
// @Success      200  {object}  taskEnvelope
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Security     BearerAuth
// @Router       /api/tasks/{id} [get]
func (h *TaskHandler) Get(c echo.Context) error {
	userID, err := ctxUserID(c)
	if err != nil {
		return err
	}

	task, err := h.service.GetTask(c.Request().Context(), userID, c.Param("id"))
	if err != nil {
		return trackTask("get", err)
	}

	metrics.TaskOperationsTotal.WithLabelValues("get", "ok").Inc()
	return c.JSON(http.StatusOK, taskEnvelope{Task: toTaskResponse(task)})
}

// Update applies a partial update to an owned task.
//
// @Summary      Update a task
// @Tags         tasks
// @Accept       json
// @Produce      json
// @Param        id    path      string             true  "Task id"
// @Param        body  body      updateTaskRequest  true  "Fields to update"
// @Success      200   {object}  taskEnvelope
// @Failure      403   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Security     BearerAuth
// @Router       /api/tasks/{id} [put]
func (h *TaskHandler) Update(c echo.Context) error {
	userID, err := ctxUserID(c)
	if err != nil {
		return err
	}

	var req updateTaskRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	task, err := h.service.UpdateTask(c.Request().Context(), userID, c.Param("id"), ports.UpdateTaskInput{
		Title:       req.Title,
		Description: req.Description,
		Completed:   req.Completed,
		DueDate:     req.DueDate,
		Priority:    req.Priority,
	})
	if err != nil {
		return trackTask("update", err)
	}

	metrics.TaskOperationsTotal.WithLabelValues("update", "ok").Inc()
	return c.JSON(http.StatusOK, taskEnvelope{Task: toTaskResponse(task)})
}

// Delete removes an owned task.
//
// @Summary      Delete a task
// @Tags         tasks
// @Param        id  path  string  true  "Task id"
// @Success      204
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Security     BearerAuth
// @Router       /api/tasks/{id} [delete]
func (h *TaskHandler) Delete(c echo.Context) error {
	userID, err := ctxUserID(c)
	if err != nil {
		return err
	}

	if err := h.service.DeleteTask(c.Request().Context(), userID, c.Param("id")); err != nil {
		return trackTask("delete", err)
	}

	metrics.TaskOperationsTotal.WithLabelValues("delete", "ok").Inc()
	return c.NoContent(http.StatusNoContent)
}

// Complete sets the completion flag on an owned task.
//
// @Summary      Set task completion
// @Tags         tasks
// @Produce      json
// @Param        id         path      string  true  "Task id"
// @Param        completed  query     bool    true  "New completion status"
// @Success      200        {object}  taskEnvelope
// @Failure      400        {object}  errorResponse
// @Failure      403        {object}  errorResponse
// @Failure      404        {object}  errorResponse
// @Security     BearerAuth
// @Router       /api/tasks/{id}/complete [patch]
func (h *TaskHandler) Complete(c echo.Context) error {
	userID, err := ctxUserID(c)
	if err != nil {
		return err
	}

	completed, err := strconv.ParseBool(c.QueryParam("completed"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "completed must be true or false")
	}

	task, err := h.service.SetCompleted(c.Request().Context(), userID, c.Param("id"), completed)
	if err != nil {
		return trackTask("complete", err)
	}

	metrics.TaskOperationsTotal.WithLabelValues("complete", "ok").Inc()
	return c.JSON(http.StatusOK, taskEnvelope{Task: toTaskResponse(task)})
}

// trackTask records the failure outcome of a task operation and passes the
// error through to the central handler.
func trackTask(op string, err error) error {
	result := "error"
	switch {
	case errors.Is(err, domain.ErrTaskNotFound):
		result = "not_found"
	case errors.Is(err, domain.ErrForbidden):
		result = "forbidden"
	}
	metrics.TaskOperationsTotal.WithLabelValues(op, result).Inc()
	return err
}
