package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/platewise/recipebox/internal/application"
	"github.com/platewise/recipebox/internal/interface/middleware"
	"github.com/platewise/recipebox/pkg/helpers"
	"github.com/platewise/recipebox/pkg/response"
	"github.com/platewise/recipebox/pkg/validation"
)

type UserHandler struct {
	Users   *application.UserService
	Auth    *application.AuthService
	Logger  *logrus.Logger
	Cookies *helpers.CookieManager
}

func NewUserHandler(users *application.UserService, auth *application.AuthService, logger *logrus.Logger, cookieDomain string, cookieSecure bool) *UserHandler {
	return &UserHandler{
		Users:   users,
		Auth:    auth,
		Logger:  logger,
		Cookies: helpers.NewCookieManager(middleware.SessionCookieName, cookieDomain, cookieSecure),
	}
}

type createUserRequest struct {
	Email     string `json:"email" binding:"required,email"`
	Password  string `json:"password" binding:"required,pwd"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

type credentialsRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type loginRequest struct {
	Email      string `json:"email" binding:"required,email"`
	Password   string `json:"password" binding:"required"`
	RememberMe bool   `json:"remember_me"`
}

type updateProfileRequest struct {
	Email     string  `json:"email"`
	Password  string  `json:"password"`
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
}

// Create handles POST /users/create.
func (h *UserHandler) Create(c *gin.Context) {
	var req createUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	u, err := h.Users.Register(c.Request.Context(), application.RegisterInput{
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	})
	if err != nil {
		writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, userJSON(u), "user created", nil)
}

// Token handles POST /users/token: credential exchange for an opaque token.
func (h *UserHandler) Token(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	token, err := h.Auth.MintToken(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, application.ErrInvalidCredentials) {
			response.Error[any](c, http.StatusBadRequest, "invalid payload",
				map[string]string{"non_field_errors": "incorrect login information"})
			return
		}
		writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"token": token}, "token issued", nil)
}

// Login handles POST /users/login in session mode. remember_me extends the
// session to two weeks; otherwise the cookie lasts for the browser session.
func (h *UserHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	u, err := h.Auth.Authenticate(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload",
			map[string]string{"non_field_errors": "incorrect login information"})
		return
	}
	sid, maxAge, err := h.Auth.Login(c.Request.Context(), u, req.RememberMe)
	if err != nil {
		response.Error[any](c, http.StatusInternalServerError, "login failed", nil)
		return
	}
	h.Cookies.Set(c, sid, maxAge)
	response.Success(c, http.StatusOK, userJSON(u), "login successful", nil)
}

// Logout handles POST /users/logout.
func (h *UserHandler) Logout(c *gin.Context) {
	if sid, err := c.Cookie(middleware.SessionCookieName); err == nil && sid != "" {
		_ = h.Auth.Logout(c.Request.Context(), sid)
	}
	h.Cookies.Clear(c)
	response.Success[any](c, http.StatusOK, gin.H{"logged_out": true}, "logged out", nil)
}

// Me handles GET /users/me.
func (h *UserHandler) Me(c *gin.Context) {
	uid := c.GetString(middleware.CtxUserIDKey)
	u, err := h.Users.GetProfile(c.Request.Context(), uid)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, userJSON(u), "profile", nil)
}

// UpdateMe handles PATCH /users/me. Password changes are re-hashed and never
// echoed back.
func (h *UserHandler) UpdateMe(c *gin.Context) {
	uid := c.GetString(middleware.CtxUserIDKey)
	var req updateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	u, err := h.Users.UpdateProfile(c.Request.Context(), uid, application.UpdateProfileInput{
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	})
	if err != nil {
		writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, userJSON(u), "profile updated", nil)
}
