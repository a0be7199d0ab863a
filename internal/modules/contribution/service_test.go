package contribution

import (
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/memorium/core/internal/database"
	"github.com/memorium/core/internal/models"
	"github.com/memorium/core/internal/pkg/pagination"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type stubKeeper struct{ active map[string]bool }

func (s *stubKeeper) IsActiveKeeper(actorID, memorialID string) (bool, error) {
	return s.active[actorID+":"+memorialID], nil
}

type recordingNotifier struct{ calls []string }

func (n *recordingNotifier) Notify(recipientID, kind, title, body, relatedID string) {
	n.calls = append(n.calls, recipientID+":"+kind)
}

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

func newTestService(t *testing.T) (*Service, *gorm.DB, *stubKeeper, *recordingNotifier) {
	t.Helper()
	db := openTestDB(t)
	svc := NewService(db, zap.NewNop())
	sk := &stubKeeper{active: map[string]bool{}}
	rn := &recordingNotifier{}
	svc.SetKeeperChecker(sk)
	svc.SetNotifier(rn)
	return svc, db, sk, rn
}

func paginationDefault() pagination.Query {
	return pagination.Query{Page: 1, Size: 10}
}

func seedMemorial(t *testing.T, db *gorm.DB) *models.MemorialModel {
	t.Helper()
	m := models.MemorialModel{
		Slug:    "anna-nowak-test",
		Name:    "Anna",
		Surname: "Nowak",
		OwnerID: "owner-1",
	}
	require.NoError(t, db.Create(&m).Error)
	return &m
}

func TestSubmitStartsPending(t *testing.T) {
	svc, db, _, _ := newTestService(t)
	m := seedMemorial(t, db)

	cm, err := svc.Submit(m.ID, "visitor-1", &SubmitDTO{
		Kind:       models.KindCondolence,
		AuthorName: "A friend",
		Message:    "Rest in peace.",
	})
	require.NoError(t, err)
	require.Equal(t, models.StatusPending, cm.Status)

	// the activity log mirrors the new record with the same status
	var entry models.ActivityLogModel
	require.NoError(t, db.First(&entry, "contribution_id = ?", cm.ID).Error)
	require.Equal(t, models.StatusPending, entry.Status)
	require.Equal(t, models.KindCondolence, entry.Kind)
	require.Equal(t, "Condolence", entry.KindLabel)
	require.Equal(t, "A friend", entry.DisplayName)
}

func TestSubmitByActiveKeeperAutoApproves(t *testing.T) {
	svc, db, sk, _ := newTestService(t)
	m := seedMemorial(t, db)
	sk.active["keeper-1:"+m.ID] = true

	cm, err := svc.Submit(m.ID, "keeper-1", &SubmitDTO{
		Kind:       models.KindDedication,
		AuthorName: "The keeper",
		Message:    "Always remembered.",
	})
	require.NoError(t, err)
	require.Equal(t, models.StatusApproved, cm.Status)

	var entry models.ActivityLogModel
	require.NoError(t, db.First(&entry, "contribution_id = ?", cm.ID).Error)
	require.Equal(t, models.StatusApproved, entry.Status)
}

func TestSubmitTemplateCondolenceAutoApproves(t *testing.T) {
	svc, db, _, _ := newTestService(t)
	m := seedMemorial(t, db)

	tpl := "template-roses"
	cm, err := svc.Submit(m.ID, "visitor-1", &SubmitDTO{
		Kind:       models.KindCondolence,
		AuthorName: "A friend",
		TemplateID: &tpl,
	})
	require.NoError(t, err)
	require.Equal(t, models.StatusApproved, cm.Status)
}

func TestSubmitValidation(t *testing.T) {
	svc, db, _, _ := newTestService(t)
	m := seedMemorial(t, db)

	// condolence without message or template
	_, err := svc.Submit(m.ID, "v", &SubmitDTO{Kind: models.KindCondolence, AuthorName: "x"})
	require.ErrorIs(t, err, errValidation)

	// photo without URL
	_, err = svc.Submit(m.ID, "v", &SubmitDTO{Kind: models.KindPhoto, AuthorName: "x"})
	require.ErrorIs(t, err, errValidation)

	// unknown kind
	_, err = svc.Submit(m.ID, "v", &SubmitDTO{Kind: "poem", AuthorName: "x", Message: "y"})
	require.ErrorIs(t, err, errValidation)
}

func TestSubmitToMissingOrBlockedMemorial(t *testing.T) {
	svc, db, _, _ := newTestService(t)
	m := seedMemorial(t, db)

	dto := &SubmitDTO{Kind: models.KindDedication, AuthorName: "x", Message: "y"}

	_, err := svc.Submit("no-such-id", "v", dto)
	require.ErrorIs(t, err, errMemorialNotFound)

	require.NoError(t, db.Model(m).UpdateColumn("is_memory_blocked", true).Error)
	_, err = svc.Submit(m.ID, "v", dto)
	require.ErrorIs(t, err, errContributionsBlocked)

	require.NoError(t, db.Model(m).UpdateColumns(map[string]interface{}{
		"is_memory_blocked": false,
		"is_hidden":         true,
	}).Error)
	_, err = svc.Submit(m.ID, "v", dto)
	require.ErrorIs(t, err, errMemorialNotFound)
}

func TestSorrowbookSingleEntryPerSubmitter(t *testing.T) {
	svc, db, _, _ := newTestService(t)
	m := seedMemorial(t, db)

	dto := &SubmitDTO{Kind: models.KindSorrowbook, AuthorName: "x", Message: "farewell"}
	_, err := svc.Submit(m.ID, "visitor-1", dto)
	require.NoError(t, err)

	_, err = svc.Submit(m.ID, "visitor-1", dto)
	require.ErrorIs(t, err, errDuplicateSubmission)

	// other submitters and other memorials are unaffected
	_, err = svc.Submit(m.ID, "visitor-2", dto)
	require.NoError(t, err)

	m2 := models.MemorialModel{Slug: "second", Name: "B", Surname: "C", OwnerID: "o"}
	require.NoError(t, db.Create(&m2).Error)
	_, err = svc.Submit(m2.ID, "visitor-1", dto)
	require.NoError(t, err)
}

func TestModerateApprove(t *testing.T) {
	svc, db, _, rn := newTestService(t)
	m := seedMemorial(t, db)

	cm, err := svc.Submit(m.ID, "visitor-1", &SubmitDTO{
		Kind: models.KindCondolence, AuthorName: "x", Message: "y",
	})
	require.NoError(t, err)

	out, err := svc.Moderate(cm.ID, "admin-1", &ModerateDTO{Action: "approve"})
	require.NoError(t, err)
	require.Equal(t, models.StatusApproved, out.Status)
	require.NotNil(t, out.ModeratedBy)
	require.Equal(t, "admin-1", *out.ModeratedBy)
	require.NotNil(t, out.ModeratedAt)

	// the activity log entry follows the transition
	var entry models.ActivityLogModel
	require.NoError(t, db.First(&entry, "contribution_id = ?", cm.ID).Error)
	require.Equal(t, models.StatusApproved, entry.Status)

	// the submitter was told
	require.Equal(t, []string{"visitor-1:contribution_approved"}, rn.calls)
}

func TestModerateRejectWithReason(t *testing.T) {
	svc, db, _, _ := newTestService(t)
	m := seedMemorial(t, db)

	cm, err := svc.Submit(m.ID, "visitor-1", &SubmitDTO{
		Kind: models.KindPhoto, AuthorName: "x", PhotoURL: "https://img.example/1.jpg",
	})
	require.NoError(t, err)

	out, err := svc.Moderate(cm.ID, "admin-1", &ModerateDTO{Action: "reject", Reason: "off topic"})
	require.NoError(t, err)
	require.Equal(t, models.StatusRejected, out.Status)
	require.Equal(t, "off topic", out.ModerationReason)
}

func TestModerateTerminalAndInvalid(t *testing.T) {
	svc, db, _, _ := newTestService(t)
	m := seedMemorial(t, db)

	cm, err := svc.Submit(m.ID, "visitor-1", &SubmitDTO{
		Kind: models.KindCondolence, AuthorName: "x", Message: "y",
	})
	require.NoError(t, err)

	_, err = svc.Moderate(cm.ID, "admin-1", &ModerateDTO{Action: "publish"})
	require.ErrorIs(t, err, models.ErrInvalidModerationAction)

	_, err = svc.Moderate("no-such-id", "admin-1", &ModerateDTO{Action: "approve"})
	require.ErrorIs(t, err, errContributionNotFound)

	_, err = svc.Moderate(cm.ID, "admin-1", &ModerateDTO{Action: "approve"})
	require.NoError(t, err)

	// approved and rejected records never transition again
	_, err = svc.Moderate(cm.ID, "admin-1", &ModerateDTO{Action: "reject"})
	require.ErrorIs(t, err, errAlreadyModerated)
}

func TestListFiltersStatus(t *testing.T) {
	svc, db, sk, _ := newTestService(t)
	m := seedMemorial(t, db)
	sk.active["keeper-1:"+m.ID] = true

	_, err := svc.Submit(m.ID, "visitor-1", &SubmitDTO{
		Kind: models.KindCondolence, AuthorName: "x", Message: "pending one",
	})
	require.NoError(t, err)
	_, err = svc.Submit(m.ID, "keeper-1", &SubmitDTO{
		Kind: models.KindCondolence, AuthorName: "k", Message: "approved one",
	})
	require.NoError(t, err)

	approved := models.StatusApproved
	items, pag, err := svc.List(m.ID, nil, &approved, paginationDefault())
	require.NoError(t, err)
	require.EqualValues(t, 1, pag.Total)
	require.Equal(t, "approved one", items[0].Message)

	items, pag, err = svc.List(m.ID, nil, nil, paginationDefault())
	require.NoError(t, err)
	require.EqualValues(t, 2, pag.Total)
	require.Len(t, items, 2)
}

func TestActivityQueueDefaultsToPending(t *testing.T) {
	svc, db, sk, _ := newTestService(t)
	m := seedMemorial(t, db)
	sk.active["keeper-1:"+m.ID] = true

	_, err := svc.Submit(m.ID, "visitor-1", &SubmitDTO{
		Kind: models.KindCondolence, AuthorName: "x", Message: "pending",
	})
	require.NoError(t, err)
	_, err = svc.Submit(m.ID, "keeper-1", &SubmitDTO{
		Kind: models.KindCondolence, AuthorName: "k", Message: "approved",
	})
	require.NoError(t, err)

	pending := models.StatusPending
	entries, pag, err := svc.ActivityQueue(m.ID, &pending, paginationDefault())
	require.NoError(t, err)
	require.EqualValues(t, 1, pag.Total)
	require.Equal(t, models.StatusPending, entries[0].Status)
}
