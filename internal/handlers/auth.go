package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	iauth "github.com/foreningshub/backend/internal/auth"
	"github.com/foreningshub/backend/internal/middleware"
	"github.com/foreningshub/backend/internal/models"
	"github.com/foreningshub/backend/internal/services"
	appErrors "github.com/foreningshub/backend/pkg/errors"
	"github.com/foreningshub/backend/pkg/response"
)

// AuthHandler serves signup, login and the current-user endpoint.
type AuthHandler struct {
	auth *services.AuthService
	jwt  *iauth.JWTService
}

// NewAuthHandler constructs an AuthHandler.
func NewAuthHandler(auth *services.AuthService, jwt *iauth.JWTService) *AuthHandler {
	return &AuthHandler{auth: auth, jwt: jwt}
}

type loginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type authResponse struct {
	Token string   `json:"token"`
	User  *userDTO `json:"user"`
}

type userDTO struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	FullName  string `json:"full_name,omitempty"`
	Phone     string `json:"phone,omitempty"`
	BirthDate string `json:"birth_date,omitempty"`
}

func toUserDTO(user *models.User) *userDTO {
	if user == nil {
		return nil
	}
	return &userDTO{
		ID:        user.ID,
		Email:     user.Email,
		FullName:  user.FullName,
		Phone:     user.Phone,
		BirthDate: user.BirthDate,
	}
}

// POST /api/auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req services.RegisterInput
	if !bindAndValidate(c, &req) {
		return
	}

	user, err := h.auth.Register(requestContext(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	token, err := h.jwt.GenerateAccessToken(iauth.AccessTokenInput{UserID: user.ID, Email: user.Email})
	if err != nil {
		response.Error(c, appErrors.ErrInternalServer.WithInternal(err))
		return
	}

	response.Success(c, http.StatusCreated, authResponse{Token: token, User: toUserDTO(user)})
}

// POST /api/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if !bindAndValidate(c, &req) {
		return
	}

	user, err := h.auth.Authenticate(requestContext(c), req.Email, req.Password)
	if err != nil {
		response.Error(c, err)
		return
	}

	token, err := h.jwt.GenerateAccessToken(iauth.AccessTokenInput{UserID: user.ID, Email: user.Email})
	if err != nil {
		response.Error(c, appErrors.ErrInternalServer.WithInternal(err))
		return
	}

	response.Success(c, http.StatusOK, authResponse{Token: token, User: toUserDTO(user)})
}

// POST /api/auth/logout
//
// Access tokens are stateless, so signing out amounts to the client
// discarding its token; the endpoint exists so the frontend has a
// uniform call to make.
func (h *AuthHandler) Logout(c *gin.Context) {
	userID := c.GetString(middleware.CtxUserIDKey)
	if userID == "" {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"signed_out": true})
}

// GET /api/auth/me
func (h *AuthHandler) Me(c *gin.Context) {
	userID := c.GetString(middleware.CtxUserIDKey)
	if userID == "" {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	user, err := h.auth.GetUser(requestContext(c), userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"user": toUserDTO(user)})
}
