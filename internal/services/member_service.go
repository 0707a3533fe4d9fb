package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/foreningshub/backend/internal/models"
	apperrors "github.com/foreningshub/backend/pkg/errors"
	"github.com/foreningshub/backend/pkg/validate"
)

var (
	// ErrMemberAddForbidden is returned when the actor may not add members.
	ErrMemberAddForbidden = apperrors.NewForbidden("Du har inte behörighet att lägga till medlemmar")
	// ErrMemberManageForbidden is returned when the actor may not change members.
	ErrMemberManageForbidden = apperrors.NewForbidden("Du har inte behörighet att hantera medlemmar")
	// ErrMemberNotFound is returned for an unknown member id.
	ErrMemberNotFound = apperrors.New("MEMBER_NOT_FOUND", "Medlemmen hittades inte", http.StatusNotFound)
	// ErrMemberNameRequired is returned when a member has no full name.
	ErrMemberNameRequired = apperrors.NewBadRequest("Fullständigt namn krävs")
)

// MemberService manages the member roster of an association.
type MemberService struct {
	db    *gorm.DB
	clock func() time.Time
}

// NewMemberService constructs a MemberService.
func NewMemberService(db *gorm.DB) (*MemberService, error) {
	if db == nil {
		return nil, errors.New("member service: db is required")
	}
	return &MemberService{db: db, clock: time.Now}, nil
}

// CreateMemberInput carries the add-member form fields.
type CreateMemberInput struct {
	FullName     string `json:"full_name" validate:"required"`
	Email        string `json:"email"`
	Phone        string `json:"phone"`
	BirthDate    string `json:"birth_date"`
	MemberNumber string `json:"member_number"`
	Notes        string `json:"notes"`
}

// Create adds a member directly to the roster, without an invitation.
// Only admins and leaders may add members.
func (s *MemberService) Create(ctx context.Context, associationID, actorID string, input CreateMemberInput) (*models.Member, error) {
	ctx = ensureContext(ctx)

	role, err := s.activeRole(ctx, associationID, actorID)
	if err != nil || !role.CanManageMembers() {
		return nil, ErrMemberAddForbidden
	}

	if err := validateMemberFields(input.FullName, input.Email, input.Phone, input.BirthDate, s.clock()); err != nil {
		return nil, err
	}

	member := models.Member{
		AssociationID: associationID,
		FullName:      input.FullName,
		Email:         normaliseEmail(input.Email),
		Phone:         input.Phone,
		BirthDate:     input.BirthDate,
		MemberNumber:  input.MemberNumber,
		Notes:         input.Notes,
		Status:        models.StatusActive,
		CreatedBy:     actorID,
		JoinedDate:    s.clock(),
	}
	if err := s.db.WithContext(ctx).Create(&member).Error; err != nil {
		return nil, fmt.Errorf("member service: create member: %w", err)
	}
	return &member, nil
}

// MemberFilter narrows List results; zero value selects everything.
type MemberFilter struct {
	Status models.MembershipStatus
	Search string
}

// List returns the association's members for any active member of it,
// optionally filtered by status and a name/email search term.
func (s *MemberService) List(ctx context.Context, associationID, actorID string, filter MemberFilter) ([]models.Member, error) {
	ctx = ensureContext(ctx)

	if _, err := s.activeRole(ctx, associationID, actorID); err != nil {
		return nil, apperrors.ErrForbidden
	}

	query := s.db.WithContext(ctx).Where("association_id = ?", associationID)
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if term := strings.TrimSpace(filter.Search); term != "" {
		pattern := "%" + strings.ToLower(term) + "%"
		query = query.Where("LOWER(full_name) LIKE ? OR LOWER(email) LIKE ?", pattern, pattern)
	}

	var members []models.Member
	if err := query.Order("full_name ASC").Find(&members).Error; err != nil {
		return nil, fmt.Errorf("member service: list members: %w", err)
	}
	return members, nil
}

// Get loads one member, visible to any active member of the association.
func (s *MemberService) Get(ctx context.Context, memberID, actorID string) (*models.Member, error) {
	ctx = ensureContext(ctx)

	member, err := s.loadMember(ctx, memberID)
	if err != nil {
		return nil, err
	}
	if _, err := s.activeRole(ctx, member.AssociationID, actorID); err != nil {
		return nil, ErrMemberNotFound
	}
	return member, nil
}

// UpdateMemberInput carries optional fields; nil means unchanged.
type UpdateMemberInput struct {
	FullName     *string                  `json:"full_name"`
	Email        *string                  `json:"email"`
	Phone        *string                  `json:"phone"`
	BirthDate    *string                  `json:"birth_date"`
	MemberNumber *string                  `json:"member_number"`
	Notes        *string                  `json:"notes"`
	Status       *models.MembershipStatus `json:"status"`
}

// Update applies partial changes; admins and leaders only.
func (s *MemberService) Update(ctx context.Context, memberID, actorID string, input UpdateMemberInput) (*models.Member, error) {
	ctx = ensureContext(ctx)

	member, err := s.loadMember(ctx, memberID)
	if err != nil {
		return nil, err
	}
	role, err := s.activeRole(ctx, member.AssociationID, actorID)
	if err != nil || !role.CanManageMembers() {
		return nil, ErrMemberManageForbidden
	}

	updates := map[string]any{}
	if input.FullName != nil {
		if *input.FullName == "" {
			return nil, ErrMemberNameRequired
		}
		updates["full_name"] = *input.FullName
	}
	if input.Email != nil {
		email := normaliseEmail(*input.Email)
		if email != "" && !validate.Email(email) {
			return nil, ErrInviteEmailInvalid
		}
		updates["email"] = email
	}
	if input.Phone != nil {
		if *input.Phone != "" && !validate.Phone(*input.Phone) {
			return nil, ErrInvitePhoneInvalid
		}
		updates["phone"] = *input.Phone
	}
	if input.BirthDate != nil {
		if *input.BirthDate != "" && !validate.PastDateAt(*input.BirthDate, s.clock()) {
			return nil, ErrInviteBirthDateInvalid
		}
		updates["birth_date"] = *input.BirthDate
	}
	if input.MemberNumber != nil {
		updates["member_number"] = *input.MemberNumber
	}
	if input.Notes != nil {
		updates["notes"] = *input.Notes
	}
	if input.Status != nil {
		updates["status"] = *input.Status
	}

	if len(updates) > 0 {
		err := s.db.WithContext(ctx).Model(&models.Member{}).Where("id = ?", memberID).Updates(updates).Error
		if err != nil {
			return nil, fmt.Errorf("member service: update member: %w", err)
		}
	}
	return s.loadMember(ctx, memberID)
}

// Delete removes a member from the roster; admins and leaders only.
func (s *MemberService) Delete(ctx context.Context, memberID, actorID string) error {
	ctx = ensureContext(ctx)

	member, err := s.loadMember(ctx, memberID)
	if err != nil {
		return err
	}
	role, err := s.activeRole(ctx, member.AssociationID, actorID)
	if err != nil || !role.CanManageMembers() {
		return ErrMemberManageForbidden
	}

	if err := s.db.WithContext(ctx).Delete(&models.Member{}, "id = ?", memberID).Error; err != nil {
		return fmt.Errorf("member service: delete member: %w", err)
	}
	return nil
}

func (s *MemberService) loadMember(ctx context.Context, memberID string) (*models.Member, error) {
	var member models.Member
	err := s.db.WithContext(ctx).Where("id = ?", memberID).First(&member).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrMemberNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("member service: load member: %w", err)
	}
	return &member, nil
}

func (s *MemberService) activeRole(ctx context.Context, associationID, userID string) (models.Role, error) {
	var membership models.AssociationMember
	err := s.db.WithContext(ctx).
		Where("association_id = ? AND user_id = ? AND status = ?", associationID, userID, models.StatusActive).
		First(&membership).Error
	if err != nil {
		return "", err
	}
	return membership.Role, nil
}

func validateMemberFields(fullName, email, phone, birthDate string, now time.Time) error {
	if fullName == "" {
		return ErrMemberNameRequired
	}
	if email != "" && !validate.Email(email) {
		return ErrInviteEmailInvalid
	}
	if phone != "" && !validate.Phone(phone) {
		return ErrInvitePhoneInvalid
	}
	if birthDate != "" && !validate.PastDateAt(birthDate, now) {
		return ErrInviteBirthDateInvalid
	}
	return nil
}
