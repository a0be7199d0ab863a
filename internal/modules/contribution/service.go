package contribution

import (
	"errors"
	"time"

	"github.com/memorium/core/internal/models"
	"github.com/memorium/core/internal/pkg/pagination"
	"github.com/memorium/core/internal/pkg/response"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Service struct {
	db     *gorm.DB
	logger *zap.Logger

	keeper   KeeperChecker
	notifier Notifier
}

func NewService(db *gorm.DB, logger *zap.Logger) *Service {
	return &Service{db: db, logger: logger}
}

// SetKeeperChecker wires the custodianship lookup used for auto-approval.
func (s *Service) SetKeeperChecker(k KeeperChecker) { s.keeper = k }

// SetNotifier wires the best-effort notification sink.
func (s *Service) SetNotifier(n Notifier) { s.notifier = n }

// Submit records a contribution against a memorial. Submissions from an
// active keeper and template-based condolences skip the moderation queue;
// everything else starts pending.
func (s *Service) Submit(memorialID, submitterID string, dto *SubmitDTO) (*models.ContributionModel, error) {
	if err := dto.validate(); err != nil {
		return nil, err
	}

	var m models.MemorialModel
	if err := s.db.First(&m, "id = ?", memorialID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errMemorialNotFound
		}
		return nil, err
	}
	if m.IsHidden {
		return nil, errMemorialNotFound
	}
	if m.IsMemoryBlocked {
		return nil, errContributionsBlocked
	}

	status := models.StatusPending
	if s.keeper != nil {
		active, err := s.keeper.IsActiveKeeper(submitterID, memorialID)
		if err != nil {
			return nil, err
		}
		if active {
			status = models.StatusApproved
		}
	}
	if status == models.StatusPending && dto.Kind == models.KindCondolence && dto.TemplateID != nil {
		status = models.StatusApproved
	}

	cm := models.ContributionModel{
		Kind:        dto.Kind,
		MemorialID:  memorialID,
		SubmitterID: submitterID,
		AuthorName:  dto.AuthorName,
		Message:     dto.Message,
		PhotoURL:    dto.PhotoURL,
		TemplateID:  dto.TemplateID,
		Status:      status,
	}

	if dto.Kind == models.KindSorrowbook {
		key := submitterID + ":" + memorialID
		var count int64
		if err := s.db.Model(&models.ContributionModel{}).
			Where("dedup_key = ?", key).Count(&count).Error; err != nil {
			return nil, err
		}
		if count > 0 {
			return nil, errDuplicateSubmission
		}
		cm.DedupKey = &key
	}

	if err := s.db.Create(&cm).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, errDuplicateSubmission
		}
		return nil, err
	}

	s.appendActivity(&cm)
	return &cm, nil
}

// appendActivity mirrors the contribution into the activity log. Failures
// are logged and swallowed: the log is a derived view, the contribution row
// is the source of truth.
func (s *Service) appendActivity(cm *models.ContributionModel) {
	entry := models.ActivityLogModel{
		Kind:           cm.Kind,
		KindLabel:      cm.Kind.KindLabel(),
		MemorialID:     cm.MemorialID,
		ActorID:        cm.SubmitterID,
		ContributionID: cm.ID,
		Status:         cm.Status,
		DisplayName:    cm.AuthorName,
	}
	if err := s.db.Create(&entry).Error; err != nil {
		s.logger.Warn("activity log append failed",
			zap.String("contribution", cm.ID),
			zap.Error(err))
	}
}

// Moderate applies an approve/reject action to a pending contribution.
// Terminal records do not transition again.
func (s *Service) Moderate(contributionID, moderatorID string, dto *ModerateDTO) (*models.ContributionModel, error) {
	status, err := models.ParseModerationAction(dto.Action)
	if err != nil {
		return nil, err
	}

	var cm models.ContributionModel
	if err := s.db.First(&cm, "id = ?", contributionID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errContributionNotFound
		}
		return nil, err
	}
	if cm.Status.Terminal() {
		return nil, errAlreadyModerated
	}

	now := time.Now()
	cm.Status = status
	cm.ModeratedBy = &moderatorID
	cm.ModerationReason = dto.Reason
	cm.ModeratedAt = &now
	if err := s.db.Model(&cm).UpdateColumns(map[string]interface{}{
		"status":            status,
		"moderated_by":      moderatorID,
		"moderation_reason": dto.Reason,
		"moderated_at":      now,
	}).Error; err != nil {
		return nil, err
	}

	if err := s.db.Model(&models.ActivityLogModel{}).
		Where("contribution_id = ?", cm.ID).
		UpdateColumn("status", status).Error; err != nil {
		s.logger.Warn("activity log status sync failed",
			zap.String("contribution", cm.ID),
			zap.Error(err))
	}

	if s.notifier != nil {
		title := cm.Kind.KindLabel() + " approved"
		if status == models.StatusRejected {
			title = cm.Kind.KindLabel() + " rejected"
		}
		s.notifier.Notify(cm.SubmitterID, "contribution_"+string(status), title, dto.Reason, cm.ID)
	}
	return &cm, nil
}

// List returns contributions on a memorial, optionally filtered by kind and
// status. Public callers always pass status approved.
func (s *Service) List(memorialID string, kind *models.ContributionKind, status *models.ModerationStatus, q pagination.Query) ([]models.ContributionModel, response.Pagination, error) {
	tx := s.db.Model(&models.ContributionModel{}).
		Where("memorial_id = ?", memorialID).
		Order("created_at DESC")
	if kind != nil {
		tx = tx.Where("kind = ?", *kind)
	}
	if status != nil {
		tx = tx.Where("status = ?", *status)
	}
	var out []models.ContributionModel
	pag, err := pagination.Paginate(tx, q, &out)
	return out, pag, err
}

// GetByID returns nil when no contribution matches.
func (s *Service) GetByID(id string) (*models.ContributionModel, error) {
	var cm models.ContributionModel
	if err := s.db.First(&cm, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &cm, nil
}

// ActivityQueue reads the activity log for a memorial, defaulting to pending
// entries: the moderation inbox.
func (s *Service) ActivityQueue(memorialID string, status *models.ModerationStatus, q pagination.Query) ([]models.ActivityLogModel, response.Pagination, error) {
	tx := s.db.Model(&models.ActivityLogModel{}).
		Where("memorial_id = ?", memorialID).
		Order("created_at DESC")
	if status != nil {
		tx = tx.Where("status = ?", *status)
	}
	var out []models.ActivityLogModel
	pag, err := pagination.Paginate(tx, q, &out)
	return out, pag, err
}
