package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/foreningshub/backend/internal/services"
	"github.com/foreningshub/backend/pkg/response"
)

// AcceptanceHandler serves the public invitation lookup and acceptance
// endpoints; both are reachable without authentication since the token
// itself is the credential.
type AcceptanceHandler struct {
	acceptance *services.AcceptanceService
}

// NewAcceptanceHandler constructs an AcceptanceHandler.
func NewAcceptanceHandler(acceptance *services.AcceptanceService) *AcceptanceHandler {
	return &AcceptanceHandler{acceptance: acceptance}
}

// GET /api/invitations/:token
func (h *AcceptanceHandler) Lookup(c *gin.Context) {
	prefill, err := h.acceptance.Prefill(requestContext(c), c.Param("token"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, prefill)
}

type acceptRequest struct {
	FullName        string `json:"full_name"`
	Phone           string `json:"phone"`
	BirthDate       string `json:"birth_date"`
	Password        string `json:"password"`
	PasswordConfirm string `json:"password_confirm"`
}

// POST /api/invitations/:token/accept
func (h *AcceptanceHandler) Accept(c *gin.Context) {
	var req acceptRequest
	if !bindAndValidate(c, &req) {
		return
	}

	result, err := h.acceptance.Accept(requestContext(c), services.AcceptInput{
		Token:           c.Param("token"),
		FullName:        req.FullName,
		Phone:           req.Phone,
		BirthDate:       req.BirthDate,
		Password:        req.Password,
		PasswordConfirm: req.PasswordConfirm,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusCreated, result)
}
