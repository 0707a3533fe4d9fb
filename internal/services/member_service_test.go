package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/foreningshub/backend/internal/models"
)

func seedUser(t *testing.T, db *gorm.DB, id string) {
	t.Helper()

	user := models.User{
		BaseModel: models.BaseModel{ID: id},
		Email:     id + "@example.com",
		Password:  "x",
	}
	require.NoError(t, db.Create(&user).Error)
}

func seedAssociation(t *testing.T, db *gorm.DB, id string) {
	t.Helper()

	association := models.Association{
		BaseModel: models.BaseModel{ID: id},
		Name:      id,
		Slug:      id,
	}
	require.NoError(t, db.Create(&association).Error)
}

func seedMembership(t *testing.T, db *gorm.DB, associationID, userID string, role models.Role) {
	t.Helper()

	membership := models.AssociationMember{
		AssociationID: associationID,
		UserID:        userID,
		Role:          role,
		Status:        models.StatusActive,
	}
	require.NoError(t, db.Create(&membership).Error)
}

func newMemberFixture(t *testing.T) (*MemberService, *gorm.DB) {
	t.Helper()

	db := openServiceDB(t)
	svc, err := NewMemberService(db)
	require.NoError(t, err)

	seedAssociation(t, db, "assoc-1")
	seedUser(t, db, "admin-1")
	seedUser(t, db, "leader-1")
	seedUser(t, db, "member-1")

	seedMembership(t, db, "assoc-1", "admin-1", models.RoleAdmin)
	seedMembership(t, db, "assoc-1", "leader-1", models.RoleLeader)
	seedMembership(t, db, "assoc-1", "member-1", models.RoleMember)
	return svc, db
}

func TestCreateMemberRoleGate(t *testing.T) {
	svc, _ := newMemberFixture(t)

	_, err := svc.Create(context.Background(), "assoc-1", "member-1", CreateMemberInput{FullName: "Nils Nilsson"})
	require.ErrorIs(t, err, ErrMemberAddForbidden)
	require.EqualError(t, err, "Du har inte behörighet att lägga till medlemmar")

	_, err = svc.Create(context.Background(), "assoc-1", "stranger", CreateMemberInput{FullName: "Nils Nilsson"})
	require.ErrorIs(t, err, ErrMemberAddForbidden)

	member, err := svc.Create(context.Background(), "assoc-1", "leader-1", CreateMemberInput{
		FullName:  "Nils Nilsson",
		Email:     "Nils@Example.com",
		BirthDate: "2012-03-15",
	})
	require.NoError(t, err)
	require.Equal(t, "nils@example.com", member.Email)
	require.Equal(t, models.StatusActive, member.Status)
}

func TestCreateMemberValidation(t *testing.T) {
	svc, _ := newMemberFixture(t)

	_, err := svc.Create(context.Background(), "assoc-1", "admin-1", CreateMemberInput{})
	require.ErrorIs(t, err, ErrMemberNameRequired)

	_, err = svc.Create(context.Background(), "assoc-1", "admin-1", CreateMemberInput{
		FullName: "Nils Nilsson",
		Email:    "broken",
	})
	require.ErrorIs(t, err, ErrInviteEmailInvalid)

	_, err = svc.Create(context.Background(), "assoc-1", "admin-1", CreateMemberInput{
		FullName:  "Nils Nilsson",
		BirthDate: "2099-01-01",
	})
	require.ErrorIs(t, err, ErrInviteBirthDateInvalid)
}

func TestListMembersRequiresMembership(t *testing.T) {
	svc, _ := newMemberFixture(t)

	_, err := svc.Create(context.Background(), "assoc-1", "admin-1", CreateMemberInput{FullName: "Nils Nilsson"})
	require.NoError(t, err)

	_, err = svc.List(context.Background(), "assoc-1", "stranger", MemberFilter{})
	require.Error(t, err)

	members, err := svc.List(context.Background(), "assoc-1", "member-1", MemberFilter{})
	require.NoError(t, err)
	require.Len(t, members, 1)
}

func TestListMembersFiltered(t *testing.T) {
	svc, _ := newMemberFixture(t)

	_, err := svc.Create(context.Background(), "assoc-1", "admin-1", CreateMemberInput{FullName: "Nils Nilsson", Email: "nils@example.com"})
	require.NoError(t, err)
	inactive, err := svc.Create(context.Background(), "assoc-1", "admin-1", CreateMemberInput{FullName: "Karin Karlsson"})
	require.NoError(t, err)

	status := models.StatusInactive
	_, err = svc.Update(context.Background(), inactive.ID, "admin-1", UpdateMemberInput{Status: &status})
	require.NoError(t, err)

	members, err := svc.List(context.Background(), "assoc-1", "member-1", MemberFilter{Status: models.StatusActive})
	require.NoError(t, err)
	require.Len(t, members, 1)
	require.Equal(t, "Nils Nilsson", members[0].FullName)

	members, err = svc.List(context.Background(), "assoc-1", "member-1", MemberFilter{Search: "karin"})
	require.NoError(t, err)
	require.Len(t, members, 1)
	require.Equal(t, "Karin Karlsson", members[0].FullName)

	members, err = svc.List(context.Background(), "assoc-1", "member-1", MemberFilter{Search: "nils@example"})
	require.NoError(t, err)
	require.Len(t, members, 1)
	require.Equal(t, "Nils Nilsson", members[0].FullName)
}

func TestUpdateMember(t *testing.T) {
	svc, _ := newMemberFixture(t)

	member, err := svc.Create(context.Background(), "assoc-1", "admin-1", CreateMemberInput{FullName: "Nils Nilsson"})
	require.NoError(t, err)

	phone := "070-123 45 67"
	status := models.StatusInactive
	updated, err := svc.Update(context.Background(), member.ID, "admin-1", UpdateMemberInput{
		Phone:  &phone,
		Status: &status,
	})
	require.NoError(t, err)
	require.Equal(t, phone, updated.Phone)
	require.Equal(t, models.StatusInactive, updated.Status)

	// Plain members may not update.
	_, err = svc.Update(context.Background(), member.ID, "member-1", UpdateMemberInput{Phone: &phone})
	require.ErrorIs(t, err, ErrMemberManageForbidden)
}

func TestDeleteMember(t *testing.T) {
	svc, db := newMemberFixture(t)

	member, err := svc.Create(context.Background(), "assoc-1", "admin-1", CreateMemberInput{FullName: "Nils Nilsson"})
	require.NoError(t, err)

	require.ErrorIs(t, svc.Delete(context.Background(), member.ID, "member-1"), ErrMemberManageForbidden)
	require.NoError(t, svc.Delete(context.Background(), member.ID, "admin-1"))

	var count int64
	require.NoError(t, db.Model(&models.Member{}).Count(&count).Error)
	require.Zero(t, count)

	require.ErrorIs(t, svc.Delete(context.Background(), member.ID, "admin-1"), ErrMemberNotFound)
}
