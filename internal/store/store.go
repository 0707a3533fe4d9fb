// Package store defines the persistence contract consumed by the
// invitation and acceptance orchestrators, with one explicit request
// struct per table operation.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/foreningshub/backend/internal/models"
)

var (
	// ErrMembershipNotFound indicates the user has no active membership
	// in the association.
	ErrMembershipNotFound = errors.New("store: membership not found")
	// ErrInvitationNotFound indicates no invitation matches the token.
	ErrInvitationNotFound = errors.New("store: invitation not found")
	// ErrEmailTaken indicates an account already exists for the email.
	ErrEmailTaken = errors.New("store: email already registered")
)

// CreateInvitationRecord describes a row to insert into invitations.
type CreateInvitationRecord struct {
	AssociationID string
	Email         string
	FullName      string
	Phone         string
	BirthDate     string
	MemberData    map[string]string
	Token         string
	CreatedBy     string
	ExpiresAt     time.Time
}

// CreateMemberRecord describes a row to insert into members.
type CreateMemberRecord struct {
	AssociationID string
	FullName      string
	Email         string
	Phone         string
	BirthDate     string
	Status        models.MembershipStatus
	InvitationID  string
	UserID        string
	JoinedDate    time.Time
}

// CreateMembershipRecord describes a row to insert into association_members.
type CreateMembershipRecord struct {
	AssociationID string
	UserID        string
	Role          models.Role
	Status        models.MembershipStatus
	JoinedAt      time.Time
}

// Store is the external-facing persistence and identity contract used
// by the orchestrators.
type Store interface {
	// FindMembershipRole returns the role of the user's active
	// membership in the association, or ErrMembershipNotFound.
	FindMembershipRole(ctx context.Context, associationID, userID string) (models.Role, error)

	CreateInvitation(ctx context.Context, record CreateInvitationRecord) (*models.Invitation, error)
	// CreateInvitationsBulk inserts all records in one transaction; on
	// error no invitation is created.
	CreateInvitationsBulk(ctx context.Context, records []CreateInvitationRecord) ([]models.Invitation, error)
	FindInvitationByToken(ctx context.Context, token string) (*models.Invitation, error)
	// ListInvitations returns the association's invitations, newest first.
	ListInvitations(ctx context.Context, associationID string) ([]models.Invitation, error)
	UpdateInvitationStatus(ctx context.Context, id string, status models.InvitationStatus, acceptedAt *time.Time) error

	CreateMember(ctx context.Context, record CreateMemberRecord) (*models.Member, error)
	CreateMembership(ctx context.Context, record CreateMembershipRecord) error

	// CreateAccount provisions an authenticated account with a hashed
	// password and returns its identifier.
	CreateAccount(ctx context.Context, email, password string) (string, error)
}
