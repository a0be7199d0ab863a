package keeper

import (
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/memorium/core/internal/database"
	"github.com/memorium/core/internal/models"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	return db
}

func seedActorAndMemorial(t *testing.T, db *gorm.DB) (*models.UserModel, *models.MemorialModel) {
	t.Helper()
	u := models.UserModel{Username: "keeper1", Name: "Keeper One", Password: "x"}
	require.NoError(t, db.Create(&u).Error)
	m := models.MemorialModel{Slug: "jan-kowalski-test", Name: "Jan", Surname: "Kowalski", OwnerID: u.ID}
	require.NoError(t, db.Create(&m).Error)
	return &u, &m
}

func TestAssignInitialTerm(t *testing.T) {
	db := openTestDB(t)
	svc := NewService(db)
	u, m := seedActorAndMemorial(t, db)

	before := time.Now().AddDate(0, 0, initialTermDays).Add(-time.Minute)
	k, err := svc.Assign(u.ID, &AssignDTO{MemorialID: m.ID, Relation: "son"})
	require.NoError(t, err)
	after := time.Now().AddDate(0, 0, initialTermDays).Add(time.Minute)

	require.True(t, k.ExpiresAt.After(before) && k.ExpiresAt.Before(after),
		"expiry is 60 days out")
	require.Equal(t, "Keeper One", k.DisplayName, "falls back to the actor name")
	require.False(t, k.Notified)
}

func TestAssignRejectsDuplicatePair(t *testing.T) {
	db := openTestDB(t)
	svc := NewService(db)
	u, m := seedActorAndMemorial(t, db)

	_, err := svc.Assign(u.ID, &AssignDTO{MemorialID: m.ID})
	require.NoError(t, err)

	_, err = svc.Assign(u.ID, &AssignDTO{MemorialID: m.ID})
	require.ErrorIs(t, err, ErrAlreadyAssigned)

	// a second memorial for the same actor is fine
	m2 := models.MemorialModel{Slug: "second", Name: "B", Surname: "C", OwnerID: u.ID}
	require.NoError(t, db.Create(&m2).Error)
	_, err = svc.Assign(u.ID, &AssignDTO{MemorialID: m2.ID})
	require.NoError(t, err)
}

func TestAssignUnknownActorOrMemorial(t *testing.T) {
	db := openTestDB(t)
	svc := NewService(db)
	u, m := seedActorAndMemorial(t, db)

	_, err := svc.Assign("no-such-actor", &AssignDTO{MemorialID: m.ID})
	require.ErrorIs(t, err, ErrActorNotFound)

	_, err = svc.Assign(u.ID, &AssignDTO{MemorialID: "no-such-memorial"})
	require.ErrorIs(t, err, ErrMemorialNotFound)
}

func TestExtendStacksFromCurrentExpiry(t *testing.T) {
	db := openTestDB(t)
	svc := NewService(db)
	u, m := seedActorAndMemorial(t, db)

	k, err := svc.Assign(u.ID, &AssignDTO{MemorialID: m.ID})
	require.NoError(t, err)
	firstExpiry := k.ExpiresAt

	k, err = svc.ExtendBySlug(u.ID, m.Slug, 3)
	require.NoError(t, err)
	require.WithinDuration(t, firstExpiry.AddDate(0, 3, 0), k.ExpiresAt, time.Second,
		"extension is measured from the previous expiry, not from now")
	require.NotNil(t, k.ExtendedAt)

	// extensions stack
	k, err = svc.ExtendBySlug(u.ID, m.Slug, 12)
	require.NoError(t, err)
	require.WithinDuration(t, firstExpiry.AddDate(0, 15, 0), k.ExpiresAt, time.Second)
}

func TestExtendErrors(t *testing.T) {
	db := openTestDB(t)
	svc := NewService(db)
	u, m := seedActorAndMemorial(t, db)

	_, err := svc.ExtendBySlug(u.ID, "no-such-slug", 1)
	require.ErrorIs(t, err, ErrMemorialNotFound)

	_, err = svc.ExtendBySlug(u.ID, m.Slug, 1)
	require.ErrorIs(t, err, ErrNoAssignment)
}

func TestIsActiveKeeper(t *testing.T) {
	db := openTestDB(t)
	svc := NewService(db)
	u, m := seedActorAndMemorial(t, db)

	active, err := svc.IsActiveKeeper(u.ID, m.ID)
	require.NoError(t, err)
	require.False(t, active, "no assignment yet")

	k, err := svc.Assign(u.ID, &AssignDTO{MemorialID: m.ID})
	require.NoError(t, err)

	active, err = svc.IsActiveKeeper(u.ID, m.ID)
	require.NoError(t, err)
	require.True(t, active)

	// an expired assignment carries no authority
	require.NoError(t, db.Model(k).
		UpdateColumn("expires_at", time.Now().Add(-time.Hour)).Error)
	active, err = svc.IsActiveKeeper(u.ID, m.ID)
	require.NoError(t, err)
	require.False(t, active)
}

func TestExpiringWithinAndMarkNotified(t *testing.T) {
	db := openTestDB(t)
	svc := NewService(db)
	u, m := seedActorAndMemorial(t, db)

	k, err := svc.Assign(u.ID, &AssignDTO{MemorialID: m.ID})
	require.NoError(t, err)

	// 60 days out: not in the 7-day window
	rows, err := svc.ExpiringWithin(7 * 24 * time.Hour)
	require.NoError(t, err)
	require.Empty(t, rows)

	require.NoError(t, db.Model(k).
		UpdateColumn("expires_at", time.Now().Add(48*time.Hour)).Error)
	rows, err = svc.ExpiringWithin(7 * 24 * time.Hour)
	require.NoError(t, err)
	require.Len(t, rows, 1)

	require.NoError(t, svc.MarkNotified(k.ID))
	rows, err = svc.ExpiringWithin(7 * 24 * time.Hour)
	require.NoError(t, err)
	require.Empty(t, rows, "notified assignments are not picked up again")
}
