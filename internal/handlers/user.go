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

type UserHandler struct {
	service   *services.UserService
	validator *validation.Validator
	log       *logrus.Logger
}

func NewUserHandler(service *services.UserService, validator *validation.Validator, log *logrus.Logger) *UserHandler {
	return &UserHandler{
		service:   service,
		validator: validator,
		log:       log,
	}
}

// ListUsers returns the matching users, or only their count when count=true
func (h *UserHandler) ListUsers(c *gin.Context) {
	input, err := utils.GetListParams(c)
	if err != nil {
		h.fail(c, err)
		return
	}

	result, err := h.service.ListUsers(c.Request.Context(), input)
	if err != nil {
		h.fail(c, err)
		return
	}

	message := "Get user list success"
	if result.CountOnly {
		message = "Count user success"
	}
	c.JSON(http.StatusOK, dto.NewResponse(message, result.Data()))
}

func (h *UserHandler) CreateUser(c *gin.Context) {
	var req dto.CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid body parameter: "+err.Error())
		return
	}
	if err := h.validator.Struct(&req); err != nil {
		h.fail(c, err)
		return
	}

	user, err := h.service.CreateUser(c.Request.Context(), req.ToInput())
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.NewResponse("Create user success", user))
}

func (h *UserHandler) GetUser(c *gin.Context) {
	user, err := h.service.GetUser(c.Request.Context(), c.Param("id"), c.Query("select"))
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewResponse("Get user success", user))
}

func (h *UserHandler) UpdateUser(c *gin.Context) {
	var req dto.UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid body parameter: "+err.Error())
		return
	}
	if err := h.validator.Struct(&req); err != nil {
		h.fail(c, err)
		return
	}

	user, err := h.service.UpdateUser(c.Request.Context(), c.Param("id"), req.ToInput())
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewResponse("Update user success", user))
}

func (h *UserHandler) DeleteUser(c *gin.Context) {
	if err := h.service.DeleteUser(c.Request.Context(), c.Param("id")); err != nil {
		h.fail(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *UserHandler) fail(c *gin.Context, err error) {
	_ = c.Error(err)
	apierrors.Respond(c, middleware.RequestLogger(c, h.log), err)
}
