package services

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/foreningshub/backend/internal/models"
)

func TestSlugify(t *testing.T) {
	cases := map[string]string{
		"Höllvikens IF Fotboll": "hollvikens-if-fotboll",
		"Västerås SK":           "vasteras-sk",
		"IFK Göteborg":          "ifk-goteborg",
		"  Spaced   Out  ":      "spaced-out",
		"Düsseldorf!":           "dsseldorf",
	}
	for input, want := range cases {
		require.Equal(t, want, Slugify(input), input)
	}
}

func TestCreateAssociationLinksCreatorAsAdmin(t *testing.T) {
	db := openServiceDB(t)
	svc, err := NewAssociationService(db)
	require.NoError(t, err)

	seedUser(t, db, "user-1")

	result, err := svc.Create(context.Background(), "user-1", CreateAssociationInput{
		Name:        "Höllvikens IF Fotboll",
		Description: "Fotboll för alla åldrar",
	})
	require.NoError(t, err)
	require.Empty(t, result.Warning)
	require.Equal(t, "hollvikens-if-fotboll", result.Association.Slug)
	require.Equal(t, "user-1", result.Association.CreatedBy)

	var membership models.AssociationMember
	require.NoError(t, db.Where("association_id = ? AND user_id = ?", result.Association.ID, "user-1").
		First(&membership).Error)
	require.Equal(t, models.RoleAdmin, membership.Role)
	require.Equal(t, models.StatusActive, membership.Status)
}

func TestCreateAssociationSlugCollision(t *testing.T) {
	db := openServiceDB(t)
	svc, err := NewAssociationService(db)
	require.NoError(t, err)

	first, err := svc.Create(context.Background(), "user-1", CreateAssociationInput{Name: "Samma Namn"})
	require.NoError(t, err)
	second, err := svc.Create(context.Background(), "user-2", CreateAssociationInput{Name: "Samma Namn"})
	require.NoError(t, err)

	require.Equal(t, "samma-namn", first.Association.Slug)
	require.NotEqual(t, first.Association.Slug, second.Association.Slug)
	require.True(t, strings.HasPrefix(second.Association.Slug, "samma-namn-"))
}

func TestCreateAssociationRequiresName(t *testing.T) {
	db := openServiceDB(t)
	svc, err := NewAssociationService(db)
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), "user-1", CreateAssociationInput{Name: "   "})
	require.ErrorIs(t, err, ErrAssociationNameRequired)
	require.EqualError(t, err, "Föreningsnamn krävs")
}

func TestListForUserOnlyReturnsMemberships(t *testing.T) {
	db := openServiceDB(t)
	svc, err := NewAssociationService(db)
	require.NoError(t, err)

	seedUser(t, db, "user-1")
	seedUser(t, db, "user-2")

	mine, err := svc.Create(context.Background(), "user-1", CreateAssociationInput{Name: "Min Förening"})
	require.NoError(t, err)
	_, err = svc.Create(context.Background(), "user-2", CreateAssociationInput{Name: "Någon Annans"})
	require.NoError(t, err)

	associations, err := svc.ListForUser(context.Background(), "user-1")
	require.NoError(t, err)
	require.Len(t, associations, 1)
	require.Equal(t, mine.Association.ID, associations[0].ID)
}

func TestUpdateAssociationRequiresAdmin(t *testing.T) {
	db := openServiceDB(t)
	svc, err := NewAssociationService(db)
	require.NoError(t, err)

	seedUser(t, db, "user-1")

	created, err := svc.Create(context.Background(), "user-1", CreateAssociationInput{Name: "Uppdaterbar"})
	require.NoError(t, err)

	name := "Nytt Namn"
	_, err = svc.Update(context.Background(), created.Association.ID, "user-2", UpdateAssociationInput{Name: &name})
	require.ErrorIs(t, err, ErrAssociationForbidden)

	updated, err := svc.Update(context.Background(), created.Association.ID, "user-1", UpdateAssociationInput{Name: &name})
	require.NoError(t, err)
	require.Equal(t, "Nytt Namn", updated.Name)
	// Slug is stable across renames.
	require.Equal(t, created.Association.Slug, updated.Slug)
}

func TestGetAssociationVisibility(t *testing.T) {
	db := openServiceDB(t)
	svc, err := NewAssociationService(db)
	require.NoError(t, err)

	created, err := svc.Create(context.Background(), "user-1", CreateAssociationInput{Name: "Privat"})
	require.NoError(t, err)

	_, err = svc.Get(context.Background(), created.Association.ID, "user-1")
	require.NoError(t, err)

	_, err = svc.Get(context.Background(), created.Association.ID, "stranger")
	require.Error(t, err)
}
