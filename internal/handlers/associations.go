package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/foreningshub/backend/internal/middleware"
	"github.com/foreningshub/backend/internal/services"
	appErrors "github.com/foreningshub/backend/pkg/errors"
	"github.com/foreningshub/backend/pkg/response"
)

// AssociationHandler serves association CRUD endpoints.
type AssociationHandler struct {
	associations *services.AssociationService
}

// NewAssociationHandler constructs an AssociationHandler.
func NewAssociationHandler(associations *services.AssociationService) *AssociationHandler {
	return &AssociationHandler{associations: associations}
}

// POST /api/associations
func (h *AssociationHandler) Create(c *gin.Context) {
	userID := c.GetString(middleware.CtxUserIDKey)
	if userID == "" {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req services.CreateAssociationInput
	if !bindAndValidate(c, &req) {
		return
	}

	result, err := h.associations.Create(requestContext(c), userID, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusCreated, result)
}

// GET /api/associations
func (h *AssociationHandler) List(c *gin.Context) {
	userID := c.GetString(middleware.CtxUserIDKey)
	if userID == "" {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	associations, err := h.associations.ListForUser(requestContext(c), userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"associations": associations})
}

// GET /api/associations/:id
func (h *AssociationHandler) Get(c *gin.Context) {
	userID := c.GetString(middleware.CtxUserIDKey)
	association, err := h.associations.Get(requestContext(c), c.Param("id"), userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"association": association})
}

// PATCH /api/associations/:id
func (h *AssociationHandler) Update(c *gin.Context) {
	userID := c.GetString(middleware.CtxUserIDKey)

	var req services.UpdateAssociationInput
	if !bindAndValidate(c, &req) {
		return
	}

	association, err := h.associations.Update(requestContext(c), c.Param("id"), userID, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"association": association})
}
