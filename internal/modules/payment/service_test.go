package payment

import (
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/memorium/core/internal/database"
	"github.com/memorium/core/internal/models"
	"github.com/memorium/core/internal/modules/keeper"
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

func seedKeptMemorial(t *testing.T, db *gorm.DB, keeperSvc *keeper.Service) (*models.UserModel, *models.MemorialModel, *models.KeeperAssignmentModel) {
	t.Helper()
	u := models.UserModel{Username: "actor1", Name: "Actor", Password: "x"}
	require.NoError(t, db.Create(&u).Error)
	m := models.MemorialModel{Slug: "jan-kowalski-test", Name: "Jan", Surname: "Kowalski", OwnerID: u.ID}
	require.NoError(t, db.Create(&m).Error)
	k, err := keeperSvc.Assign(u.ID, &keeper.AssignDTO{MemorialID: m.ID})
	require.NoError(t, err)
	return &u, &m, k
}

func TestProcessEventExtendsAssignment(t *testing.T) {
	db := openTestDB(t)
	keeperSvc := keeper.NewService(db)
	svc := NewService(db, keeperSvc)
	u, m, assignment := seedKeptMemorial(t, db, keeperSvc)

	ev, k, err := svc.ProcessEvent(&EventDTO{
		MemorialSlug: m.Slug,
		ActorID:      u.ID,
		Package:      "memory_page_three_months",
	})
	require.NoError(t, err)
	require.True(t, ev.Processed)
	require.Equal(t, 3, ev.DurationMonths)
	require.WithinDuration(t, assignment.ExpiresAt.AddDate(0, 3, 0), k.ExpiresAt, time.Second)
}

func TestProcessEventPackageDurations(t *testing.T) {
	cases := map[string]int{
		"memory_page_one_month":    1,
		"memory_page_three_months": 3,
		"memory_page_one_year":     12,
	}
	for pkg, months := range cases {
		db := openTestDB(t)
		keeperSvc := keeper.NewService(db)
		svc := NewService(db, keeperSvc)
		u, m, assignment := seedKeptMemorial(t, db, keeperSvc)

		_, k, err := svc.ProcessEvent(&EventDTO{MemorialSlug: m.Slug, ActorID: u.ID, Package: pkg})
		require.NoError(t, err, pkg)
		require.WithinDuration(t, assignment.ExpiresAt.AddDate(0, months, 0), k.ExpiresAt, time.Second, pkg)
	}
}

func TestProcessEventUnknownPackage(t *testing.T) {
	db := openTestDB(t)
	svc := NewService(db, keeper.NewService(db))

	_, _, err := svc.ProcessEvent(&EventDTO{
		MemorialSlug: "whatever",
		ActorID:      "whoever",
		Package:      "memory_page_forever",
	})
	require.ErrorIs(t, err, errUnknownPackage)

	// nothing recorded for an invalid package
	var count int64
	require.NoError(t, db.Model(&models.PaymentEventModel{}).Count(&count).Error)
	require.EqualValues(t, 0, count)
}

func TestProcessEventKeepsAuditRowWhenExtensionFails(t *testing.T) {
	db := openTestDB(t)
	keeperSvc := keeper.NewService(db)
	svc := NewService(db, keeperSvc)

	m := models.MemorialModel{Slug: "unkept", Name: "A", Surname: "B", OwnerID: "o"}
	require.NoError(t, db.Create(&m).Error)

	ev, _, err := svc.ProcessEvent(&EventDTO{
		MemorialSlug: m.Slug,
		ActorID:      "not-a-keeper",
		Package:      "memory_page_one_month",
	})
	require.ErrorIs(t, err, keeper.ErrNoAssignment)
	require.NotNil(t, ev, "the audit row survives the failed extension")
	require.False(t, ev.Processed)

	var fresh models.PaymentEventModel
	require.NoError(t, db.First(&fresh, "id = ?", ev.ID).Error)
	require.False(t, fresh.Processed)
}
