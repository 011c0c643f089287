package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	iauth "github.com/ecoles/schoolmanager/internal/auth"
	"github.com/ecoles/schoolmanager/internal/middleware"
	"github.com/ecoles/schoolmanager/internal/models"
	"github.com/ecoles/schoolmanager/internal/services"
	"github.com/ecoles/schoolmanager/pkg/metrics"
	"github.com/ecoles/schoolmanager/pkg/response"
)

// AuthHandler issues access tokens for local accounts.
type AuthHandler struct {
	users *services.UserService
	jwt   *iauth.JWTService
}

func NewAuthHandler(users *services.UserService, jwt *iauth.JWTService) *AuthHandler {
	return &AuthHandler{users: users, jwt: jwt}
}

type loginRequest struct {
	Username string `json:"username" validate:"required,max=150"`
	Password string `json:"password" validate:"required"`
}

type loginResponse struct {
	*iauth.Token
	User *models.User `json:"user"`
}

// POST /api/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if !bindAndValidate(c, &req) {
		return
	}

	user, err := h.users.Authenticate(requestContext(c), req.Username, req.Password)
	if err != nil {
		metrics.AuthAttempts.WithLabelValues("failure").Inc()
		respondError(c, err)
		return
	}

	token, err := h.jwt.Issue(user.ID, user.Username)
	if err != nil {
		metrics.AuthAttempts.WithLabelValues("failure").Inc()
		respondError(c, err)
		return
	}

	metrics.AuthAttempts.WithLabelValues("success").Inc()
	response.Success(c, http.StatusOK, loginResponse{Token: token, User: user})
}

// GET /api/auth/me
func (h *AuthHandler) Me(c *gin.Context) {
	user, err := h.users.GetByID(requestContext(c), middleware.UserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, user)
}
