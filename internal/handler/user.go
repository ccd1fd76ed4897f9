package handler

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pdfdesk/backend/internal/model"
	"github.com/pdfdesk/backend/internal/service"
)

type UserHandler struct {
	svc    *service.UserService
	logger *slog.Logger
}

func NewUserHandler(svc *service.UserService, logger *slog.Logger) *UserHandler {
	return &UserHandler{svc: svc, logger: logger}
}

// CreateStudent godoc
// @Summary Register a user
// @Tags user
// @Accept json
// @Produce json
// @Param request body model.CreateUserRequest true "New user"
// @Success 201 {object} model.Response{data=model.User}
// @Failure 400 {object} model.ErrorResponse
// @Failure 409 {object} model.ErrorResponse
// @Router /user/create-student [post]
func (h *UserHandler) CreateStudent(c *gin.Context) {
	var req model.CreateUserRequest
	if !bindJSON(c, h.logger, &req) {
		return
	}

	user, err := h.svc.CreateUser(c.Request.Context(), req)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	respond(c, http.StatusCreated, "User is created successfully", user)
}

// ListStudents godoc
// @Summary List users
// @Tags user
// @Produce json
// @Success 200 {object} model.Response{data=[]model.User}
// @Router /user/students [get]
func (h *UserHandler) ListStudents(c *gin.Context) {
	users, err := h.svc.ListUsers(c.Request.Context())
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	respond(c, http.StatusOK, "Users are retrieved successfully", users)
}

// GetStudent godoc
// @Summary Get a user by id
// @Tags user
// @Produce json
// @Security BearerAuth
// @Param id path string true "User ID"
// @Success 200 {object} model.Response{data=model.User}
// @Failure 401 {object} model.ErrorResponse
// @Failure 403 {object} model.ErrorResponse
// @Failure 404 {object} model.ErrorResponse
// @Router /user/student/{id} [get]
func (h *UserHandler) GetStudent(c *gin.Context) {
	user, err := h.svc.GetUser(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	respond(c, http.StatusOK, "User is retrieved successfully", user)
}

// ChangeStatus godoc
// @Summary Block or unblock a user
// @Tags user
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "User ID"
// @Param request body model.ChangeStatusRequest true "New status"
// @Success 200 {object} model.Response{data=model.User}
// @Failure 400 {object} model.ErrorResponse
// @Failure 401 {object} model.ErrorResponse
// @Failure 403 {object} model.ErrorResponse
// @Failure 404 {object} model.ErrorResponse
// @Router /user/change-status/{id} [post]
func (h *UserHandler) ChangeStatus(c *gin.Context) {
	var req model.ChangeStatusRequest
	if !bindJSON(c, h.logger, &req) {
		return
	}

	user, err := h.svc.ChangeStatus(c.Request.Context(), c.Param("id"), req.Status)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	respond(c, http.StatusOK, "Status is updated successfully", user)
}

// Me godoc
// @Summary Get current user
// @Tags user
// @Produce json
// @Security BearerAuth
// @Success 200 {object} model.Response{data=model.User}
// @Failure 401 {object} model.ErrorResponse
// @Failure 403 {object} model.ErrorResponse
// @Router /user/me [get]
func (h *UserHandler) Me(c *gin.Context) {
	identity := GetIdentity(c)
	if identity == nil {
		writeError(c, h.logger, service.ErrMissingToken)
		return
	}

	user, err := h.svc.GetMe(c.Request.Context(), *identity)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	respond(c, http.StatusOK, "User is retrieved successfully", user)
}
