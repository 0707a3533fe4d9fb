package services

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/foreningshub/backend/internal/models"
	"github.com/foreningshub/backend/pkg/crypto"
	apperrors "github.com/foreningshub/backend/pkg/errors"
	"github.com/foreningshub/backend/pkg/logger"
)

var (
	// ErrAssociationNameRequired is returned when the creation form has no name.
	ErrAssociationNameRequired = apperrors.NewBadRequest("Föreningsnamn krävs")
	// ErrAssociationForbidden is returned when the actor may not manage the association.
	ErrAssociationForbidden = apperrors.NewForbidden("Du har inte behörighet att hantera denna förening")
)

// AdminLinkFailedMessage is surfaced when the association exists but the
// creator could not be linked as its administrator.
const AdminLinkFailedMessage = "Föreningen skapades, men kunde inte lägga till dig som administratör."

var slugStrip = regexp.MustCompile(`[^a-z0-9-]+`)

// AssociationService manages associations and their admin memberships.
type AssociationService struct {
	db    *gorm.DB
	clock func() time.Time
	log   *zap.Logger
}

// NewAssociationService constructs an AssociationService.
func NewAssociationService(db *gorm.DB) (*AssociationService, error) {
	if db == nil {
		return nil, errors.New("association service: db is required")
	}
	return &AssociationService{
		db:    db,
		clock: time.Now,
		log:   logger.WithModule("associations"),
	}, nil
}

// CreateAssociationInput carries the creation form fields.
type CreateAssociationInput struct {
	Name           string `json:"name" validate:"required"`
	Description    string `json:"description"`
	PrimaryColor   string `json:"primary_color"`
	SecondaryColor string `json:"secondary_color"`
}

// CreateAssociationResult is returned after creating an association. The
// Warning field is set when the association exists but the creator could
// not be linked as admin; the association is not rolled back.
type CreateAssociationResult struct {
	Association *models.Association `json:"association"`
	Warning     string              `json:"warning,omitempty"`
}

// Create inserts the association and then links the creator as its
// admin. The two writes are sequential: a membership failure leaves the
// association in place and is reported via Warning instead of an error.
func (s *AssociationService) Create(ctx context.Context, actorID string, input CreateAssociationInput) (*CreateAssociationResult, error) {
	ctx = ensureContext(ctx)

	if actorID == "" {
		return nil, apperrors.ErrUnauthorized
	}

	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, ErrAssociationNameRequired
	}

	slug, err := s.uniqueSlug(ctx, name)
	if err != nil {
		return nil, err
	}

	association := models.Association{
		Name:           name,
		Slug:           slug,
		Description:    input.Description,
		PrimaryColor:   input.PrimaryColor,
		SecondaryColor: input.SecondaryColor,
		CreatedBy:      actorID,
	}
	if err := s.db.WithContext(ctx).Create(&association).Error; err != nil {
		return nil, fmt.Errorf("association service: create association: %w", err)
	}

	membership := models.AssociationMember{
		AssociationID: association.ID,
		UserID:        actorID,
		Role:          models.RoleAdmin,
		Status:        models.StatusActive,
		JoinedAt:      s.clock(),
	}
	if err := s.db.WithContext(ctx).Create(&membership).Error; err != nil {
		s.log.Error("failed to link creator as admin",
			zap.String("association_id", association.ID),
			zap.String("user_id", actorID),
			zap.Error(err))
		return &CreateAssociationResult{
			Association: &association,
			Warning:     AdminLinkFailedMessage,
		}, nil
	}

	return &CreateAssociationResult{Association: &association}, nil
}

// Get loads an association visible to the actor: any active member, or
// its creator.
func (s *AssociationService) Get(ctx context.Context, associationID, actorID string) (*models.Association, error) {
	ctx = ensureContext(ctx)

	var association models.Association
	err := s.db.WithContext(ctx).Where("id = ?", associationID).First(&association).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("association service: get association: %w", err)
	}

	if association.CreatedBy != actorID {
		if _, err := s.membershipRole(ctx, associationID, actorID); err != nil {
			return nil, apperrors.ErrNotFound
		}
	}
	return &association, nil
}

// ListForUser returns the associations where the user holds an active
// membership, newest first.
func (s *AssociationService) ListForUser(ctx context.Context, userID string) ([]models.Association, error) {
	ctx = ensureContext(ctx)

	var associations []models.Association
	err := s.db.WithContext(ctx).
		Joins("JOIN association_members ON association_members.association_id = associations.id").
		Where("association_members.user_id = ? AND association_members.status = ?", userID, models.StatusActive).
		Order("associations.created_at DESC").
		Find(&associations).Error
	if err != nil {
		return nil, fmt.Errorf("association service: list associations: %w", err)
	}
	return associations, nil
}

// UpdateAssociationInput carries optional fields; nil means unchanged.
type UpdateAssociationInput struct {
	Name           *string `json:"name"`
	Description    *string `json:"description"`
	PrimaryColor   *string `json:"primary_color"`
	SecondaryColor *string `json:"secondary_color"`
}

// Update applies partial changes; only admins may update.
func (s *AssociationService) Update(ctx context.Context, associationID, actorID string, input UpdateAssociationInput) (*models.Association, error) {
	ctx = ensureContext(ctx)

	role, err := s.membershipRole(ctx, associationID, actorID)
	if err != nil || role != models.RoleAdmin {
		return nil, ErrAssociationForbidden
	}

	updates := map[string]any{}
	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, ErrAssociationNameRequired
		}
		updates["name"] = name
	}
	if input.Description != nil {
		updates["description"] = *input.Description
	}
	if input.PrimaryColor != nil {
		updates["primary_color"] = *input.PrimaryColor
	}
	if input.SecondaryColor != nil {
		updates["secondary_color"] = *input.SecondaryColor
	}

	if len(updates) > 0 {
		err := s.db.WithContext(ctx).Model(&models.Association{}).Where("id = ?", associationID).Updates(updates).Error
		if err != nil {
			return nil, fmt.Errorf("association service: update association: %w", err)
		}
	}

	var association models.Association
	if err := s.db.WithContext(ctx).Where("id = ?", associationID).First(&association).Error; err != nil {
		return nil, fmt.Errorf("association service: reload association: %w", err)
	}
	return &association, nil
}

func (s *AssociationService) membershipRole(ctx context.Context, associationID, userID string) (models.Role, error) {
	var membership models.AssociationMember
	err := s.db.WithContext(ctx).
		Where("association_id = ? AND user_id = ? AND status = ?", associationID, userID, models.StatusActive).
		First(&membership).Error
	if err != nil {
		return "", err
	}
	return membership.Role, nil
}

// uniqueSlug folds the name to a URL slug and appends a random suffix if
// the slug is already taken.
func (s *AssociationService) uniqueSlug(ctx context.Context, name string) (string, error) {
	slug := Slugify(name)
	if slug == "" {
		slug = "forening"
	}

	var count int64
	if err := s.db.WithContext(ctx).Model(&models.Association{}).Where("slug = ?", slug).Count(&count).Error; err != nil {
		return "", fmt.Errorf("association service: check slug: %w", err)
	}
	if count == 0 {
		return slug, nil
	}

	suffix, err := crypto.GenerateToken(4)
	if err != nil {
		return "", fmt.Errorf("association service: slug suffix: %w", err)
	}
	return slug + "-" + strings.ToLower(suffix), nil
}

// Slugify lowercases the name, folds the Swedish letters å/ä to a and ö
// to o, turns whitespace into hyphens, and drops everything else.
func Slugify(name string) string {
	slug := strings.ToLower(strings.TrimSpace(name))
	slug = strings.NewReplacer("å", "a", "ä", "a", "ö", "o", "é", "e").Replace(slug)
	slug = strings.Join(strings.Fields(slug), "-")
	slug = slugStrip.ReplaceAllString(slug, "")
	slug = strings.Trim(slug, "-")
	return slug
}
