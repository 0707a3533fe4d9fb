package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/foreningshub/backend/internal/importer"
	"github.com/foreningshub/backend/internal/middleware"
	"github.com/foreningshub/backend/internal/services"
	appErrors "github.com/foreningshub/backend/pkg/errors"
	"github.com/foreningshub/backend/pkg/response"
)

// InvitationHandler serves invitation creation, CSV import and listing.
type InvitationHandler struct {
	invitations *services.InvitationService
}

// NewInvitationHandler constructs an InvitationHandler.
func NewInvitationHandler(invitations *services.InvitationService) *InvitationHandler {
	return &InvitationHandler{invitations: invitations}
}

type createInvitationRequest struct {
	Email     string `json:"email"`
	FullName  string `json:"full_name"`
	Phone     string `json:"phone"`
	BirthDate string `json:"birth_date"`
}

// POST /api/associations/:id/invitations
func (h *InvitationHandler) Create(c *gin.Context) {
	userID := c.GetString(middleware.CtxUserIDKey)

	var req createInvitationRequest
	if !bindAndValidate(c, &req) {
		return
	}

	result, err := h.invitations.Invite(requestContext(c), services.SingleInviteInput{
		AssociationID: c.Param("id"),
		ActorID:       userID,
		Email:         req.Email,
		FullName:      req.FullName,
		Phone:         req.Phone,
		BirthDate:     req.BirthDate,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusCreated, result)
}

// GET /api/associations/:id/invitations
func (h *InvitationHandler) List(c *gin.Context) {
	userID := c.GetString(middleware.CtxUserIDKey)

	invitations, err := h.invitations.List(requestContext(c), c.Param("id"), userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"invitations": invitations})
}

// POST /api/associations/:id/invitations/import/preview
//
// Accepts a multipart upload under the "file" field and returns the
// parsed rows plus validation errors; nothing is persisted.
func (h *InvitationHandler) ImportPreview(c *gin.Context) {
	userID := c.GetString(middleware.CtxUserIDKey)

	fileHeader, err := c.FormFile("file")
	if err != nil {
		response.Error(c, appErrors.NewBadRequest("CSV-fil saknas"))
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		response.Error(c, appErrors.NewBadRequest("CSV-filen kunde inte läsas"))
		return
	}
	defer file.Close()

	preview, err := h.invitations.Preview(requestContext(c), c.Param("id"), userID, file)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"preview":       preview,
		"can_commit":    preview.CanCommit(),
		"summary":       preview.Summary(),
		"commit_label":  preview.CommitLabel(),
		"error_heading": preview.ErrorHeading(),
		"error_lines":   preview.ErrorLines(),
	})
}

type importCommitRequest struct {
	Rows []importer.ImportRow `json:"rows" validate:"required"`
}

// POST /api/associations/:id/invitations/import
func (h *InvitationHandler) ImportCommit(c *gin.Context) {
	userID := c.GetString(middleware.CtxUserIDKey)

	var req importCommitRequest
	if !bindAndValidate(c, &req) {
		return
	}

	result, err := h.invitations.ImportBulk(requestContext(c), services.BulkImportInput{
		AssociationID: c.Param("id"),
		ActorID:       userID,
		Rows:          req.Rows,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusCreated, result)
}
