package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/platewise/recipebox/internal/application"
	"github.com/platewise/recipebox/pkg/response"
	"github.com/platewise/recipebox/pkg/validation"
)

type PasswordResetHandler struct {
	Users  *application.UserService
	Logger *logrus.Logger
}

func NewPasswordResetHandler(users *application.UserService, logger *logrus.Logger) *PasswordResetHandler {
	return &PasswordResetHandler{Users: users, Logger: logger}
}

// Init handles POST /users/password-reset. Always 200 for well-formed
// requests so the endpoint can't be used to enumerate accounts.
func (h *PasswordResetHandler) Init(c *gin.Context) {
	var req struct {
		Email string `json:"email" binding:"required,email"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	if err := h.Users.InitPasswordReset(c.Request.Context(), req.Email); err != nil {
		var verr *application.ValidationError
		if errors.As(err, &verr) {
			response.Error[any](c, http.StatusBadRequest, "invalid payload", verr.Fields)
			return
		}
		if h.Logger != nil {
			h.Logger.WithError(err).Warn("password reset init failed")
		}
		response.Error[any](c, http.StatusInternalServerError, "reset unavailable", nil)
		return
	}
	response.Success[any](c, http.StatusOK, gin.H{"sent": true}, "reset email sent if the account exists", nil)
}

// Confirm handles POST /users/password-reset/confirm {uid, token, new_password}.
func (h *PasswordResetHandler) Confirm(c *gin.Context) {
	var req struct {
		UID         string `json:"uid" binding:"required"`
		Token       string `json:"token" binding:"required"`
		NewPassword string `json:"new_password" binding:"required,pwd"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	if err := h.Users.ConfirmPasswordReset(c.Request.Context(), req.UID, req.Token, req.NewPassword); err != nil {
		writeServiceError(c, err)
		return
	}
	response.Success[any](c, http.StatusOK, gin.H{"reset": true}, "password updated", nil)
}
