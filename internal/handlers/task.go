package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/yukikurage/task-user-api/internal/dto"
	apierrors "github.com/yukikurage/task-user-api/internal/errors"
	"github.com/yukikurage/task-user-api/internal/middleware"
	"github.com/yukikurage/task-user-api/internal/services"
	"github.com/yukikurage/task-user-api/internal/utils"
	"github.com/yukikurage/task-user-api/internal/validation"
)

type TaskHandler struct {
	service   *services.TaskService
	validator *validation.Validator
	log       *logrus.Logger
}

func NewTaskHandler(service *services.TaskService, validator *validation.Validator, log *logrus.Logger) *TaskHandler {
	return &TaskHandler{
		service:   service,
		validator: validator,
		log:       log,
	}
}

// ListTasks returns the matching tasks, or only their count when count=true
func (h *TaskHandler) ListTasks(c *gin.Context) {
	input, err := utils.GetListParams(c)
	if err != nil {
		h.fail(c, err)
		return
	}

	result, err := h.service.ListTasks(c.Request.Context(), input)
	if err != nil {
		h.fail(c, err)
		return
	}

	message := "Get task list success"
	if result.CountOnly {
		message = "Count task success"
	}
	c.JSON(http.StatusOK, dto.NewResponse(message, result.Data()))
}

// CreateTask creates a task and registers it with its assignee
func (h *TaskHandler) CreateTask(c *gin.Context) {
	var req dto.CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid body parameter: "+err.Error())
		return
	}
	if err := h.validator.Struct(&req); err != nil {
		h.fail(c, err)
		return
	}

	task, warning, err := h.service.CreateTask(c.Request.Context(), req.ToInput())
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.NewResponse(dto.WithWarning("Create task success", warning), task))
}

// GetTask returns a single task
func (h *TaskHandler) GetTask(c *gin.Context) {
	task, err := h.service.GetTask(c.Request.Context(), c.Param("id"), c.Query("select"))
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewResponse("Get task success", task))
}

// UpdateTask applies a partial update to a task
func (h *TaskHandler) UpdateTask(c *gin.Context) {
	var req dto.UpdateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid body parameter: "+err.Error())
		return
	}
	if err := h.validator.Struct(&req); err != nil {
		h.fail(c, err)
		return
	}

	task, warning, err := h.service.UpdateTask(c.Request.Context(), c.Param("id"), req.ToInput())
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewResponse(dto.WithWarning("Update task success", warning), task))
}

// DeleteTask deletes a task
func (h *TaskHandler) DeleteTask(c *gin.Context) {
	if err := h.service.DeleteTask(c.Request.Context(), c.Param("id")); err != nil {
		h.fail(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *TaskHandler) fail(c *gin.Context, err error) {
	_ = c.Error(err)
	apierrors.Respond(c, middleware.RequestLogger(c, h.log), err)
}
