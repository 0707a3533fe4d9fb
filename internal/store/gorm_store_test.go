package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/foreningshub/backend/internal/models"
	"github.com/foreningshub/backend/pkg/crypto"
)

func openStoreTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Association{},
		&models.AssociationMember{},
		&models.Member{},
		&models.Invitation{},
	))

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = sqlDB.Close()
	})

	return db
}

func TestFindMembershipRole(t *testing.T) {
	db := openStoreTestDB(t)
	s, err := NewGormStore(db)
	require.NoError(t, err)

	assoc := models.Association{Name: "IK Söder", Slug: "ik-soder"}
	require.NoError(t, db.Create(&assoc).Error)
	user := models.User{Email: "leader@example.com", Password: "x"}
	require.NoError(t, db.Create(&user).Error)

	require.NoError(t, db.Create(&models.AssociationMember{
		AssociationID: assoc.ID,
		UserID:        user.ID,
		Role:          models.RoleLeader,
		Status:        models.StatusActive,
	}).Error)

	role, err := s.FindMembershipRole(context.Background(), assoc.ID, user.ID)
	require.NoError(t, err)
	require.Equal(t, models.RoleLeader, role)

	_, err = s.FindMembershipRole(context.Background(), assoc.ID, "unknown")
	require.ErrorIs(t, err, ErrMembershipNotFound)
}

func TestFindMembershipRoleIgnoresInactive(t *testing.T) {
	db := openStoreTestDB(t)
	s, err := NewGormStore(db)
	require.NoError(t, err)

	require.NoError(t, db.Create(&models.AssociationMember{
		AssociationID: "assoc-1",
		UserID:        "user-1",
		Role:          models.RoleAdmin,
		Status:        models.StatusInactive,
	}).Error)

	_, err = s.FindMembershipRole(context.Background(), "assoc-1", "user-1")
	require.ErrorIs(t, err, ErrMembershipNotFound)
}

func TestCreateAndFindInvitation(t *testing.T) {
	db := openStoreTestDB(t)
	s, err := NewGormStore(db)
	require.NoError(t, err)

	expires := time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)
	created, err := s.CreateInvitation(context.Background(), CreateInvitationRecord{
		AssociationID: "assoc-1",
		Email:         "new@example.com",
		FullName:      "Ny Medlem",
		MemberData:    map[string]string{"email": "new@example.com", "shirt_size": "M"},
		Token:         "tok-abc",
		CreatedBy:     "admin-1",
		ExpiresAt:     expires,
	})
	require.NoError(t, err)
	require.Equal(t, models.InvitationPending, created.Status)
	require.NotEmpty(t, created.ID)

	found, err := s.FindInvitationByToken(context.Background(), "tok-abc")
	require.NoError(t, err)
	require.Equal(t, created.ID, found.ID)
	require.Equal(t, "M", found.MemberDataString("shirt_size"))

	_, err = s.FindInvitationByToken(context.Background(), "missing")
	require.ErrorIs(t, err, ErrInvitationNotFound)
}

func TestCreateInvitationsBulkAllOrNothing(t *testing.T) {
	db := openStoreTestDB(t)
	s, err := NewGormStore(db)
	require.NoError(t, err)

	expires := time.Now().Add(24 * time.Hour)
	records := []CreateInvitationRecord{
		{AssociationID: "a", Email: "one@example.com", Token: "bulk-1", ExpiresAt: expires},
		{AssociationID: "a", Email: "two@example.com", Token: "bulk-2", ExpiresAt: expires},
	}

	created, err := s.CreateInvitationsBulk(context.Background(), records)
	require.NoError(t, err)
	require.Len(t, created, 2)

	// Duplicate token in the second row must roll back the whole batch.
	bad := []CreateInvitationRecord{
		{AssociationID: "a", Email: "three@example.com", Token: "bulk-3", ExpiresAt: expires},
		{AssociationID: "a", Email: "four@example.com", Token: "bulk-1", ExpiresAt: expires},
	}
	_, err = s.CreateInvitationsBulk(context.Background(), bad)
	require.Error(t, err)

	var count int64
	require.NoError(t, db.Model(&models.Invitation{}).Count(&count).Error)
	require.EqualValues(t, 2, count)
}

func TestUpdateInvitationStatus(t *testing.T) {
	db := openStoreTestDB(t)
	s, err := NewGormStore(db)
	require.NoError(t, err)

	created, err := s.CreateInvitation(context.Background(), CreateInvitationRecord{
		AssociationID: "a", Email: "x@example.com", Token: "tok-upd", ExpiresAt: time.Now().Add(time.Hour),
	})
	require.NoError(t, err)

	accepted := time.Date(2025, 6, 2, 10, 0, 0, 0, time.UTC)
	require.NoError(t, s.UpdateInvitationStatus(context.Background(), created.ID, models.InvitationAccepted, &accepted))

	found, err := s.FindInvitationByToken(context.Background(), "tok-upd")
	require.NoError(t, err)
	require.Equal(t, models.InvitationAccepted, found.Status)
	require.NotNil(t, found.AcceptedAt)

	err = s.UpdateInvitationStatus(context.Background(), "missing-id", models.InvitationExpired, nil)
	require.ErrorIs(t, err, ErrInvitationNotFound)
}

func TestCreateAccountHashesPasswordAndRejectsDuplicates(t *testing.T) {
	db := openStoreTestDB(t)
	s, err := NewGormStore(db)
	require.NoError(t, err)

	id, err := s.CreateAccount(context.Background(), "Person@Example.COM", "lösenord123")
	require.NoError(t, err)
	require.NotEmpty(t, id)

	var user models.User
	require.NoError(t, db.First(&user, "id = ?", id).Error)
	require.Equal(t, "person@example.com", user.Email)
	require.NotEqual(t, "lösenord123", user.Password)
	require.True(t, crypto.VerifyPassword(user.Password, "lösenord123"))

	_, err = s.CreateAccount(context.Background(), "person@example.com", "annat")
	require.ErrorIs(t, err, ErrEmailTaken)
}

func TestCreateMemberAndMembership(t *testing.T) {
	db := openStoreTestDB(t)
	s, err := NewGormStore(db)
	require.NoError(t, err)

	joined := time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)
	member, err := s.CreateMember(context.Background(), CreateMemberRecord{
		AssociationID: "assoc-1",
		FullName:      "Test User",
		Email:         "test@example.com",
		Status:        models.StatusActive,
		InvitationID:  "inv-1",
		UserID:        "user-1",
		JoinedDate:    joined,
	})
	require.NoError(t, err)
	require.NotNil(t, member.InvitationID)
	require.Equal(t, "inv-1", *member.InvitationID)

	require.NoError(t, s.CreateMembership(context.Background(), CreateMembershipRecord{
		AssociationID: "assoc-1",
		UserID:        "user-1",
		Role:          models.RoleMember,
		Status:        models.StatusActive,
		JoinedAt:      joined,
	}))

	// The association+user pair is unique.
	err = s.CreateMembership(context.Background(), CreateMembershipRecord{
		AssociationID: "assoc-1",
		UserID:        "user-1",
		Role:          models.RoleMember,
		Status:        models.StatusActive,
	})
	require.Error(t, err)
}
