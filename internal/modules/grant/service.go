package grant

import (
	"errors"
	"net"
	"strings"
	"time"

	"github.com/memorium/core/internal/models"
	"gorm.io/gorm"
)

type Service struct{ db *gorm.DB }

func NewService(db *gorm.DB) *Service { return &Service{db: db} }

// NormalizeIP strips the IPv4-mapped prefix and validates the literal.
func NormalizeIP(raw string) (string, error) {
	ip := strings.TrimSpace(raw)
	ip = strings.TrimPrefix(ip, "::ffff:")
	if net.ParseIP(ip) == nil {
		return "", errGrantBadIP
	}
	return ip, nil
}

// Record registers a candle or visit grant for the given origin address and
// increments the matching memorial counter in the same transaction. A grant
// of the same kind from the same address within the trailing 24 hours is
// rejected with errAlreadyGranted.
func (s *Service) Record(kind models.GrantKind, memorialID string, actorID *string, originIP string) (*models.GrantModel, error) {
	ip, err := NormalizeIP(originIP)
	if err != nil {
		return nil, err
	}

	var m models.MemorialModel
	if err := s.db.First(&m, "id = ?", memorialID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errGrantMemorialNotFound
		}
		return nil, err
	}
	if kind == models.GrantCandle && (m.IsHidden || m.IsMemoryBlocked) {
		return nil, errGrantMemoryBlocked
	}

	now := time.Now()
	granted, err := s.grantedWithin(kind, memorialID, ip, now)
	if err != nil {
		return nil, err
	}
	if granted {
		return nil, errAlreadyGranted
	}

	g := models.GrantModel{
		Kind:       kind,
		MemorialID: memorialID,
		ActorID:    actorID,
		IP:         ip,
		DayBucket:  now.Format("2006-01-02"),
		ExpiresAt:  now.Add(grantWindow),
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&g).Error; err != nil {
			return err
		}
		return s.applyCounter(tx, kind, &m, now)
	})
	if err != nil {
		// concurrent insert into the same window slot lands here
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, errAlreadyGranted
		}
		return nil, err
	}
	return &g, nil
}

func (s *Service) grantedWithin(kind models.GrantKind, memorialID, ip string, now time.Time) (bool, error) {
	var count int64
	err := s.db.Model(&models.GrantModel{}).
		Where("kind = ? AND memorial_id = ? AND ip = ? AND created_at >= ?",
			kind, memorialID, ip, now.Add(-grantWindow)).
		Count(&count).Error
	return count > 0, err
}

func (s *Service) applyCounter(tx *gorm.DB, kind models.GrantKind, m *models.MemorialModel, now time.Time) error {
	base := tx.Model(&models.MemorialModel{}).Where("id = ?", m.ID)
	switch kind {
	case models.GrantCandle:
		return base.UpdateColumn("total_candles", gorm.Expr("total_candles + 1")).Error
	case models.GrantVisit:
		updates := map[string]interface{}{
			"total_visits": gorm.Expr("total_visits + 1"),
		}
		if m.LastWeeklyReset == nil || m.LastWeeklyReset.Before(isoWeekStart(now)) {
			updates["current_week_visits"] = 1
			updates["last_weekly_reset"] = now
		} else {
			updates["current_week_visits"] = gorm.Expr("current_week_visits + 1")
		}
		return base.UpdateColumns(updates).Error
	default:
		return errGrantMemorialNotFound
	}
}

// isoWeekStart returns Monday 00:00 local time of the week containing t.
func isoWeekStart(t time.Time) time.Time {
	weekday := int(t.Weekday())
	if weekday == 0 {
		weekday = 7
	}
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	return day.AddDate(0, 0, -(weekday - 1))
}

// Summarize builds the public counter view for one kind, including the
// caller's own recency so clients can grey out the action. Hidden memorials
// are invisible here unless includeHidden is set, matching the page itself.
func (s *Service) Summarize(kind models.GrantKind, memorialID, callerIP string, includeHidden bool) (*Summary, error) {
	var m models.MemorialModel
	if err := s.db.First(&m, "id = ?", memorialID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errGrantMemorialNotFound
		}
		return nil, err
	}
	if m.IsHidden && !includeHidden {
		return nil, errGrantMemorialNotFound
	}

	out := Summary{CallerMayGrant: true}
	switch kind {
	case models.GrantCandle:
		out.Total = m.TotalCandles
	case models.GrantVisit:
		out.Total = m.TotalVisits
		week := m.CurrentWeekVisits
		if m.LastWeeklyReset == nil || m.LastWeeklyReset.Before(isoWeekStart(time.Now())) {
			week = 0
		}
		out.CurrentWeekVisits = &week
	}

	var last models.GrantModel
	err := s.db.Where("kind = ? AND memorial_id = ?", kind, memorialID).
		Order("created_at DESC").First(&last).Error
	if err == nil {
		at := last.CreatedAt
		out.LastID = last.ID
		out.LastAt = &at
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	if ip, err := NormalizeIP(callerIP); err == nil {
		var own models.GrantModel
		err := s.db.Where("kind = ? AND memorial_id = ? AND ip = ?", kind, memorialID, ip).
			Order("created_at DESC").First(&own).Error
		if err == nil {
			at := own.CreatedAt
			out.CallerLastAt = &at
			out.CallerMayGrant = at.Before(time.Now().Add(-grantWindow))
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
	}

	return &out, nil
}

// CleanupExpired hard-deletes grant rows whose window has lapsed. Rows must
// leave the table for the unique window index to accept a new grant on the
// same calendar day after a soft delete would otherwise block it.
func (s *Service) CleanupExpired() (int64, error) {
	res := s.db.Unscoped().
		Where("expires_at < ?", time.Now().Add(-grantWindow)).
		Delete(&models.GrantModel{})
	return res.RowsAffected, res.Error
}
