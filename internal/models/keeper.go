package models

import "time"

// KeeperAssignmentModel grants an actor custodianship over one memorial for a
// bounded validity period. The (actor, memorial) pair is unique.
type KeeperAssignmentModel struct {
	Base
	ActorID        string     `json:"actor_id"    gorm:"not null;index;uniqueIndex:idx_keeper_pair"`
	MemorialID     string     `json:"memorial_id" gorm:"not null;index;uniqueIndex:idx_keeper_pair"`
	Relation       string     `json:"relation"`
	DisplayName    string     `json:"display_name"`
	ExpiresAt      time.Time  `json:"expires_at"  gorm:"index;not null"`
	DeathReportURL string     `json:"death_report_url,omitempty"`
	Notified       bool       `json:"notified"    gorm:"default:false"`
	ExtendedAt     *time.Time `json:"extended_at"`
}

func (KeeperAssignmentModel) TableName() string { return "keeper_assignments" }

// Active reports whether the assignment still carries authority at t.
func (k *KeeperAssignmentModel) Active(t time.Time) bool {
	return t.Before(k.ExpiresAt)
}
