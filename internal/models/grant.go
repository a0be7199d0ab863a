package models

import "time"

// GrantKind distinguishes candle-lighting from visit grants.
type GrantKind string

const (
	GrantCandle GrantKind = "candle"
	GrantVisit  GrantKind = "visit"
)

// GrantModel records a single-use, time-windowed action keyed by
// (origin address, memorial, kind).
//
// DayBucket backs the unique index; a duplicate-key error on insert is the
// canonical rejection signal when two requests race past the read check.
type GrantModel struct {
	Base
	Kind       GrantKind `json:"kind"        gorm:"not null;uniqueIndex:idx_grant_window"`
	MemorialID string    `json:"memorial_id" gorm:"not null;index;uniqueIndex:idx_grant_window"`
	ActorID    *string   `json:"actor_id"    gorm:"index"`
	IP         string    `json:"-"           gorm:"not null;index;uniqueIndex:idx_grant_window"`
	DayBucket  string    `json:"-"           gorm:"not null;uniqueIndex:idx_grant_window"`
	ExpiresAt  time.Time `json:"expires_at"  gorm:"not null"`
}

func (GrantModel) TableName() string { return "grants" }
