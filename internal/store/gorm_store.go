package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/foreningshub/backend/internal/models"
	"github.com/foreningshub/backend/pkg/crypto"
)

// GormStore implements Store on top of a gorm database handle.
type GormStore struct {
	db *gorm.DB
}

// NewGormStore constructs a GormStore.
func NewGormStore(db *gorm.DB) (*GormStore, error) {
	if db == nil {
		return nil, errors.New("store: db is required")
	}
	return &GormStore{db: db}, nil
}

// FindMembershipRole returns the role of an active membership.
func (s *GormStore) FindMembershipRole(ctx context.Context, associationID, userID string) (models.Role, error) {
	var membership models.AssociationMember
	err := s.db.WithContext(ctx).
		Where("association_id = ? AND user_id = ? AND status = ?", associationID, userID, models.StatusActive).
		First(&membership).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", ErrMembershipNotFound
	}
	if err != nil {
		return "", fmt.Errorf("store: find membership: %w", err)
	}
	return membership.Role, nil
}

// CreateInvitation inserts a single invitation row.
func (s *GormStore) CreateInvitation(ctx context.Context, record CreateInvitationRecord) (*models.Invitation, error) {
	invitation := invitationFromRecord(record)
	if err := s.db.WithContext(ctx).Create(&invitation).Error; err != nil {
		return nil, fmt.Errorf("store: create invitation: %w", err)
	}
	return &invitation, nil
}

// CreateInvitationsBulk inserts every record inside one transaction so a
// failure leaves no invitations behind.
func (s *GormStore) CreateInvitationsBulk(ctx context.Context, records []CreateInvitationRecord) ([]models.Invitation, error) {
	if len(records) == 0 {
		return nil, nil
	}

	invitations := make([]models.Invitation, len(records))
	for i, record := range records {
		invitations[i] = invitationFromRecord(record)
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(&invitations).Error
	})
	if err != nil {
		return nil, fmt.Errorf("store: create invitations: %w", err)
	}
	return invitations, nil
}

// FindInvitationByToken loads an invitation by its token. The lookup
// itself has no side effects; lifecycle checks live in the orchestrator.
func (s *GormStore) FindInvitationByToken(ctx context.Context, token string) (*models.Invitation, error) {
	var invitation models.Invitation
	err := s.db.WithContext(ctx).Where("token = ?", token).First(&invitation).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrInvitationNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("store: find invitation: %w", err)
	}
	return &invitation, nil
}

// ListInvitations returns every invitation for the association, newest first.
func (s *GormStore) ListInvitations(ctx context.Context, associationID string) ([]models.Invitation, error) {
	var invitations []models.Invitation
	err := s.db.WithContext(ctx).
		Where("association_id = ?", associationID).
		Order("created_at DESC").
		Find(&invitations).Error
	if err != nil {
		return nil, fmt.Errorf("store: list invitations: %w", err)
	}
	return invitations, nil
}

// UpdateInvitationStatus persists a status transition.
func (s *GormStore) UpdateInvitationStatus(ctx context.Context, id string, status models.InvitationStatus, acceptedAt *time.Time) error {
	updates := map[string]any{"status": status}
	if acceptedAt != nil {
		updates["accepted_at"] = *acceptedAt
	}

	result := s.db.WithContext(ctx).Model(&models.Invitation{}).Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		return fmt.Errorf("store: update invitation status: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrInvitationNotFound
	}
	return nil
}

// CreateMember inserts a roster row.
func (s *GormStore) CreateMember(ctx context.Context, record CreateMemberRecord) (*models.Member, error) {
	member := models.Member{
		AssociationID: record.AssociationID,
		FullName:      record.FullName,
		Email:         record.Email,
		Phone:         record.Phone,
		BirthDate:     record.BirthDate,
		Status:        record.Status,
		JoinedDate:    record.JoinedDate,
	}
	if record.InvitationID != "" {
		id := record.InvitationID
		member.InvitationID = &id
	}
	if record.UserID != "" {
		id := record.UserID
		member.UserID = &id
	}

	if err := s.db.WithContext(ctx).Create(&member).Error; err != nil {
		return nil, fmt.Errorf("store: create member: %w", err)
	}
	return &member, nil
}

// CreateMembership inserts an association_members row.
func (s *GormStore) CreateMembership(ctx context.Context, record CreateMembershipRecord) error {
	membership := models.AssociationMember{
		AssociationID: record.AssociationID,
		UserID:        record.UserID,
		Role:          record.Role,
		Status:        record.Status,
		JoinedAt:      record.JoinedAt,
	}
	if err := s.db.WithContext(ctx).Create(&membership).Error; err != nil {
		return fmt.Errorf("store: create membership: %w", err)
	}
	return nil
}

// CreateAccount provisions a User with a bcrypt-hashed password.
func (s *GormStore) CreateAccount(ctx context.Context, email, password string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return "", errors.New("store: email is required")
	}

	hashed, err := crypto.HashPassword(password)
	if err != nil {
		return "", fmt.Errorf("store: hash password: %w", err)
	}

	user := models.User{
		Email:    email,
		Password: hashed,
		IsActive: true,
	}
	if err := s.db.WithContext(ctx).Create(&user).Error; err != nil {
		if isUniqueConstraintError(err) {
			return "", ErrEmailTaken
		}
		return "", fmt.Errorf("store: create account: %w", err)
	}
	return user.ID, nil
}

func invitationFromRecord(record CreateInvitationRecord) models.Invitation {
	invitation := models.Invitation{
		AssociationID: record.AssociationID,
		Email:         record.Email,
		FullName:      record.FullName,
		Phone:         record.Phone,
		BirthDate:     record.BirthDate,
		Status:        models.InvitationPending,
		Token:         record.Token,
		CreatedBy:     record.CreatedBy,
		ExpiresAt:     record.ExpiresAt,
	}
	if len(record.MemberData) > 0 {
		data := make(datatypes.JSONMap, len(record.MemberData))
		for k, v := range record.MemberData {
			data[k] = v
		}
		invitation.MemberData = data
	}
	return invitation
}

// isUniqueConstraintError detects database uniqueness constraint violations across vendors.
func isUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr != nil && pgErr.Code == "23505" {
		return true
	}

	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) && myErr != nil && myErr.Number == 1062 {
		return true
	}

	lower := strings.ToLower(err.Error())
	return strings.Contains(lower, "unique") ||
		strings.Contains(lower, "duplicate") ||
		strings.Contains(lower, "constraint")
}
