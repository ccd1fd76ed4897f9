package handler

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pdfdesk/backend/internal/model"
	"github.com/pdfdesk/backend/internal/service"
)

type AuthHandler struct {
	svc    *service.AuthService
	logger *slog.Logger
}

func NewAuthHandler(svc *service.AuthService, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{svc: svc, logger: logger}
}

// Login godoc
// @Summary Login
// @Description Returns an access token and sets the refreshToken http-only cookie.
// @Tags auth
// @Accept json
// @Produce json
// @Param request body model.LoginRequest true "Email and password"
// @Success 200 {object} model.Response{data=model.AccessTokenResponse}
// @Failure 400 {object} model.ErrorResponse
// @Failure 401 {object} model.ErrorResponse
// @Failure 403 {object} model.ErrorResponse
// @Failure 404 {object} model.ErrorResponse
// @Router /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req model.LoginRequest
	if !bindJSON(c, h.logger, &req) {
		return
	}

	pair, err := h.svc.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	h.setRefreshCookie(c, pair.RefreshToken)
	respond(c, http.StatusOK, "User logged in successfully", model.AccessTokenResponse{
		AccessToken: pair.AccessToken,
	})
}

// ChangePassword godoc
// @Summary Change password
// @Description Tokens issued before the change stop working.
// @Tags auth
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body model.ChangePasswordRequest true "Old and new password"
// @Success 200 {object} model.Response
// @Failure 400 {object} model.ErrorResponse
// @Failure 401 {object} model.ErrorResponse
// @Failure 403 {object} model.ErrorResponse
// @Router /auth/change-password [post]
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	identity := GetIdentity(c)
	if identity == nil {
		writeError(c, h.logger, service.ErrMissingToken)
		return
	}

	var req model.ChangePasswordRequest
	if !bindJSON(c, h.logger, &req) {
		return
	}

	if err := h.svc.ChangePassword(c.Request.Context(), *identity, req.OldPassword, req.NewPassword); err != nil {
		writeError(c, h.logger, err)
		return
	}

	respond(c, http.StatusOK, "Password is updated successfully", nil)
}

// RefreshToken godoc
// @Summary Refresh access token
// @Description Uses the refreshToken cookie. The refresh token is not rotated.
// @Tags auth
// @Produce json
// @Success 200 {object} model.Response{data=model.AccessTokenResponse}
// @Failure 401 {object} model.ErrorResponse
// @Failure 403 {object} model.ErrorResponse
// @Router /auth/refresh-token [post]
func (h *AuthHandler) RefreshToken(c *gin.Context) {
	refreshToken, _ := c.Cookie(h.svc.CookieConfig().Name)

	accessToken, err := h.svc.RefreshAccessToken(c.Request.Context(), refreshToken)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	respond(c, http.StatusOK, "Access token is refreshed successfully", model.AccessTokenResponse{
		AccessToken: accessToken,
	})
}

// ForgotPassword godoc
// @Summary Request a password reset link
// @Tags auth
// @Accept json
// @Produce json
// @Param request body model.ForgotPasswordRequest true "Account email"
// @Success 200 {object} model.Response
// @Failure 400 {object} model.ErrorResponse
// @Failure 403 {object} model.ErrorResponse
// @Failure 404 {object} model.ErrorResponse
// @Router /auth/forgot-password [post]
func (h *AuthHandler) ForgotPassword(c *gin.Context) {
	var req model.ForgotPasswordRequest
	if !bindJSON(c, h.logger, &req) {
		return
	}

	if err := h.svc.ForgotPassword(c.Request.Context(), req.Email); err != nil {
		writeError(c, h.logger, err)
		return
	}

	respond(c, http.StatusOK, "Reset link is generated successfully", nil)
}

// ResetPassword godoc
// @Summary Reset password
// @Description The reset token from the emailed link goes in the Authorization header.
// @Tags auth
// @Accept json
// @Produce json
// @Param Authorization header string true "Reset token"
// @Param request body model.ResetPasswordRequest true "Email and new password"
// @Success 200 {object} model.Response
// @Failure 400 {object} model.ErrorResponse
// @Failure 401 {object} model.ErrorResponse
// @Failure 403 {object} model.ErrorResponse
// @Failure 404 {object} model.ErrorResponse
// @Router /auth/reset-password [post]
func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var req model.ResetPasswordRequest
	if !bindJSON(c, h.logger, &req) {
		return
	}

	err := h.svc.ResetPassword(c.Request.Context(), req.Email, req.NewPassword, c.GetHeader("Authorization"))
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	respond(c, http.StatusOK, "Password reset successful!", nil)
}

func (h *AuthHandler) setRefreshCookie(c *gin.Context, token string) {
	cfg := h.svc.CookieConfig()
	c.SetSameSite(cfg.SameSite)
	c.SetCookie(cfg.Name, token, cfg.MaxAge, cfg.Path, cfg.Domain, cfg.Secure, true)
}
