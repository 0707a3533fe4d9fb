package services

import (
	"context"
	"fmt"
	"time"

	"github.com/foreningshub/backend/internal/models"
	"github.com/foreningshub/backend/internal/store"
)

// stubStore is an in-memory Store with per-call fault injection, used to
// exercise the orchestrators' partial-failure paths.
type stubStore struct {
	roles       map[string]models.Role // "associationID/userID" -> role
	invitations map[string]*models.Invitation

	createInvitationErr error
	createBulkErr       error
	findInvitationErr   error
	updateStatusErr     error
	createAccountErr    error
	createMemberErr     error
	createMembershipErr error

	accounts    []string
	members     []store.CreateMemberRecord
	memberships []store.CreateMembershipRecord

	nextID int
}

func newStubStore() *stubStore {
	return &stubStore{
		roles:       make(map[string]models.Role),
		invitations: make(map[string]*models.Invitation),
	}
}

func (s *stubStore) grantRole(associationID, userID string, role models.Role) {
	s.roles[associationID+"/"+userID] = role
}

func (s *stubStore) addInvitation(inv *models.Invitation) {
	if inv.ID == "" {
		inv.ID = s.newID()
	}
	s.invitations[inv.Token] = inv
}

func (s *stubStore) newID() string {
	s.nextID++
	return fmt.Sprintf("id-%d", s.nextID)
}

func (s *stubStore) FindMembershipRole(_ context.Context, associationID, userID string) (models.Role, error) {
	role, ok := s.roles[associationID+"/"+userID]
	if !ok {
		return "", store.ErrMembershipNotFound
	}
	return role, nil
}

func (s *stubStore) CreateInvitation(_ context.Context, record store.CreateInvitationRecord) (*models.Invitation, error) {
	if s.createInvitationErr != nil {
		return nil, s.createInvitationErr
	}
	inv := invitationFromStubRecord(record)
	inv.ID = s.newID()
	s.invitations[inv.Token] = inv
	return inv, nil
}

func (s *stubStore) CreateInvitationsBulk(_ context.Context, records []store.CreateInvitationRecord) ([]models.Invitation, error) {
	if s.createBulkErr != nil {
		return nil, s.createBulkErr
	}
	out := make([]models.Invitation, 0, len(records))
	for _, record := range records {
		inv := invitationFromStubRecord(record)
		inv.ID = s.newID()
		s.invitations[inv.Token] = inv
		out = append(out, *inv)
	}
	return out, nil
}

func (s *stubStore) FindInvitationByToken(_ context.Context, token string) (*models.Invitation, error) {
	if s.findInvitationErr != nil {
		return nil, s.findInvitationErr
	}
	inv, ok := s.invitations[token]
	if !ok {
		return nil, store.ErrInvitationNotFound
	}
	cpy := *inv
	return &cpy, nil
}

func (s *stubStore) ListInvitations(_ context.Context, associationID string) ([]models.Invitation, error) {
	var out []models.Invitation
	for _, inv := range s.invitations {
		if inv.AssociationID == associationID {
			out = append(out, *inv)
		}
	}
	return out, nil
}

func (s *stubStore) UpdateInvitationStatus(_ context.Context, id string, status models.InvitationStatus, acceptedAt *time.Time) error {
	if s.updateStatusErr != nil {
		return s.updateStatusErr
	}
	for _, inv := range s.invitations {
		if inv.ID == id {
			inv.Status = status
			inv.AcceptedAt = acceptedAt
			return nil
		}
	}
	return store.ErrInvitationNotFound
}

func (s *stubStore) CreateMember(_ context.Context, record store.CreateMemberRecord) (*models.Member, error) {
	if s.createMemberErr != nil {
		return nil, s.createMemberErr
	}
	s.members = append(s.members, record)
	member := &models.Member{
		AssociationID: record.AssociationID,
		FullName:      record.FullName,
		Email:         record.Email,
		Phone:         record.Phone,
		BirthDate:     record.BirthDate,
		Status:        record.Status,
		JoinedDate:    record.JoinedDate,
	}
	member.ID = s.newID()
	return member, nil
}

func (s *stubStore) CreateMembership(_ context.Context, record store.CreateMembershipRecord) error {
	if s.createMembershipErr != nil {
		return s.createMembershipErr
	}
	s.memberships = append(s.memberships, record)
	return nil
}

func (s *stubStore) CreateAccount(_ context.Context, email, _ string) (string, error) {
	if s.createAccountErr != nil {
		return "", s.createAccountErr
	}
	s.accounts = append(s.accounts, email)
	return "user-" + email, nil
}

func invitationFromStubRecord(record store.CreateInvitationRecord) *models.Invitation {
	inv := &models.Invitation{
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
		inv.MemberData = map[string]interface{}{}
		for k, v := range record.MemberData {
			inv.MemberData[k] = v
		}
	}
	return inv
}
