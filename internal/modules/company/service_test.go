package company

import (
	"strings"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/memorium/core/internal/database"
	"github.com/memorium/core/internal/models"
	"github.com/memorium/core/internal/pkg/pagination"
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

func TestApplyStartsPending(t *testing.T) {
	svc := NewService(openTestDB(t))

	p, err := svc.Apply("owner-1", &ApplyDTO{Name: "Kwiaciarnia Róża", Kind: models.CompanyFlorist})
	require.NoError(t, err)
	require.Equal(t, models.StatusPending, p.Status)
	require.True(t, strings.HasPrefix(p.Slug, "kwiaciarnia-r"), p.Slug)
}

func TestModerationLifecycle(t *testing.T) {
	svc := NewService(openTestDB(t))

	p, err := svc.Apply("owner-1", &ApplyDTO{Name: "Florist", Kind: models.CompanyFlorist})
	require.NoError(t, err)

	_, err = svc.Moderate(p.ID, "publish")
	require.ErrorIs(t, err, models.ErrInvalidModerationAction)

	_, err = svc.Moderate("no-such-id", "approve")
	require.ErrorIs(t, err, errCompanyNotFound)

	out, err := svc.Moderate(p.ID, "approve")
	require.NoError(t, err)
	require.Equal(t, models.StatusApproved, out.Status)

	// terminal states never transition again
	_, err = svc.Moderate(p.ID, "reject")
	require.ErrorIs(t, err, errAlreadyModerated)
}

func TestListApprovedFilters(t *testing.T) {
	svc := NewService(openTestDB(t))

	florist, err := svc.Apply("o", &ApplyDTO{Name: "Florist", Kind: models.CompanyFlorist, Region: "mazowieckie"})
	require.NoError(t, err)
	_, err = svc.Moderate(florist.ID, "approve")
	require.NoError(t, err)

	// pending page stays off the public directory
	_, err = svc.Apply("o", &ApplyDTO{Name: "Funeral Home", Kind: models.CompanyFuneralHome})
	require.NoError(t, err)

	items, pag, err := svc.ListApproved(nil, "", pagination.Query{Page: 1, Size: 10})
	require.NoError(t, err)
	require.EqualValues(t, 1, pag.Total)
	require.Equal(t, florist.ID, items[0].ID)

	fh := models.CompanyFuneralHome
	items, _, err = svc.ListApproved(&fh, "", pagination.Query{Page: 1, Size: 10})
	require.NoError(t, err)
	require.Empty(t, items)

	items, _, err = svc.ListApproved(nil, "pomorskie", pagination.Query{Page: 1, Size: 10})
	require.NoError(t, err)
	require.Empty(t, items)
}

func TestUpdateKeepsSlugAndKind(t *testing.T) {
	db := openTestDB(t)
	svc := NewService(db)

	p, err := svc.Apply("o", &ApplyDTO{Name: "Florist", Kind: models.CompanyFlorist})
	require.NoError(t, err)

	phone := "+48 123 456 789"
	out, err := svc.Update(p.ID, &UpdateCompanyDTO{Phone: &phone})
	require.NoError(t, err)
	require.Equal(t, p.Slug, out.Slug)
	require.Equal(t, models.CompanyFlorist, out.Kind)

	var fresh models.CompanyPageModel
	require.NoError(t, db.First(&fresh, "id = ?", p.ID).Error)
	require.Equal(t, phone, fresh.Phone)
}
