package keeper

import (
	"errors"
	"time"

	"github.com/memorium/core/internal/models"
	"gorm.io/gorm"
)

type Service struct{ db *gorm.DB }

func NewService(db *gorm.DB) *Service { return &Service{db: db} }

// Assign grants the actor custodianship over the memorial for the initial
// term. The (actor, memorial) pair is unique; a second assignment attempt is
// rejected.
func (s *Service) Assign(actorID string, dto *AssignDTO) (*models.KeeperAssignmentModel, error) {
	var actor models.UserModel
	if err := s.db.First(&actor, "id = ?", actorID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrActorNotFound
		}
		return nil, err
	}

	var m models.MemorialModel
	if err := s.db.First(&m, "id = ?", dto.MemorialID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMemorialNotFound
		}
		return nil, err
	}

	var count int64
	if err := s.db.Model(&models.KeeperAssignmentModel{}).
		Where("actor_id = ? AND memorial_id = ?", actorID, dto.MemorialID).
		Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, ErrAlreadyAssigned
	}

	displayName := dto.DisplayName
	if displayName == "" {
		displayName = actor.Name
	}

	k := models.KeeperAssignmentModel{
		ActorID:        actorID,
		MemorialID:     dto.MemorialID,
		Relation:       dto.Relation,
		DisplayName:    displayName,
		DeathReportURL: dto.DeathReportURL,
		ExpiresAt:      time.Now().AddDate(0, 0, initialTermDays),
	}
	if err := s.db.Create(&k).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrAlreadyAssigned
		}
		return nil, err
	}
	return &k, nil
}

// ExtendBySlug pushes the assignment expiry forward by whole months measured
// from the current expiry, never from now. An extension can only lengthen the
// term.
func (s *Service) ExtendBySlug(actorID, memorialSlug string, months int) (*models.KeeperAssignmentModel, error) {
	var m models.MemorialModel
	if err := s.db.First(&m, "slug = ?", memorialSlug).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMemorialNotFound
		}
		return nil, err
	}

	var k models.KeeperAssignmentModel
	if err := s.db.First(&k, "actor_id = ? AND memorial_id = ?", actorID, m.ID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNoAssignment
		}
		return nil, err
	}

	now := time.Now()
	k.ExpiresAt = k.ExpiresAt.AddDate(0, months, 0)
	k.ExtendedAt = &now
	k.Notified = false
	if err := s.db.Model(&k).UpdateColumns(map[string]interface{}{
		"expires_at":  k.ExpiresAt,
		"extended_at": k.ExtendedAt,
		"notified":    false,
	}).Error; err != nil {
		return nil, err
	}
	return &k, nil
}

// IsActiveKeeper reports whether the actor holds unexpired custodianship.
func (s *Service) IsActiveKeeper(actorID, memorialID string) (bool, error) {
	var k models.KeeperAssignmentModel
	err := s.db.First(&k, "actor_id = ? AND memorial_id = ?", actorID, memorialID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return k.Active(time.Now()), nil
}

// ListByActor returns all assignments held by the actor, newest first.
func (s *Service) ListByActor(actorID string) ([]models.KeeperAssignmentModel, error) {
	var out []models.KeeperAssignmentModel
	err := s.db.Where("actor_id = ?", actorID).Order("created_at DESC").Find(&out).Error
	return out, err
}

// ListByMemorial returns all assignments on the memorial.
func (s *Service) ListByMemorial(memorialID string) ([]models.KeeperAssignmentModel, error) {
	var out []models.KeeperAssignmentModel
	err := s.db.Where("memorial_id = ?", memorialID).Order("created_at DESC").Find(&out).Error
	return out, err
}

// ExpiringWithin returns unnotified assignments whose expiry falls inside the
// next d, for the daily expiry-notice job.
func (s *Service) ExpiringWithin(d time.Duration) ([]models.KeeperAssignmentModel, error) {
	now := time.Now()
	var out []models.KeeperAssignmentModel
	err := s.db.
		Where("notified = ? AND expires_at > ? AND expires_at <= ?", false, now, now.Add(d)).
		Find(&out).Error
	return out, err
}

// MarkNotified flips the notified flag after the expiry notice went out.
func (s *Service) MarkNotified(id string) error {
	return s.db.Model(&models.KeeperAssignmentModel{}).
		Where("id = ?", id).
		UpdateColumn("notified", true).Error
}
