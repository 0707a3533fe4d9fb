package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/foreningshub/backend/internal/middleware"
	"github.com/foreningshub/backend/internal/models"
	"github.com/foreningshub/backend/internal/services"
	"github.com/foreningshub/backend/pkg/response"
)

// MemberHandler serves roster CRUD endpoints.
type MemberHandler struct {
	members *services.MemberService
}

// NewMemberHandler constructs a MemberHandler.
func NewMemberHandler(members *services.MemberService) *MemberHandler {
	return &MemberHandler{members: members}
}

// POST /api/associations/:id/members
func (h *MemberHandler) Create(c *gin.Context) {
	userID := c.GetString(middleware.CtxUserIDKey)

	var req services.CreateMemberInput
	if !bindAndValidate(c, &req) {
		return
	}

	member, err := h.members.Create(requestContext(c), c.Param("id"), userID, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"member": member})
}

// GET /api/associations/:id/members
//
// Supports ?status= and ?search= query filters.
func (h *MemberHandler) List(c *gin.Context) {
	userID := c.GetString(middleware.CtxUserIDKey)

	filter := services.MemberFilter{
		Status: models.MembershipStatus(c.Query("status")),
		Search: c.Query("search"),
	}

	members, err := h.members.List(requestContext(c), c.Param("id"), userID, filter)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"members": members})
}

// GET /api/members/:memberID
func (h *MemberHandler) Get(c *gin.Context) {
	userID := c.GetString(middleware.CtxUserIDKey)

	member, err := h.members.Get(requestContext(c), c.Param("memberID"), userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"member": member})
}

// PATCH /api/members/:memberID
func (h *MemberHandler) Update(c *gin.Context) {
	userID := c.GetString(middleware.CtxUserIDKey)

	var req services.UpdateMemberInput
	if !bindAndValidate(c, &req) {
		return
	}

	member, err := h.members.Update(requestContext(c), c.Param("memberID"), userID, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"member": member})
}

// DELETE /api/members/:memberID
func (h *MemberHandler) Delete(c *gin.Context) {
	userID := c.GetString(middleware.CtxUserIDKey)

	if err := h.members.Delete(requestContext(c), c.Param("memberID"), userID); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}
