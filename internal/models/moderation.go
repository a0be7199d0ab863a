package models

import "errors"

// ModerationStatus is the shared pending/approved/rejected lifecycle used by
// contributions, company pages and memorial publishing.
type ModerationStatus string

const (
	StatusPending  ModerationStatus = "pending"
	StatusApproved ModerationStatus = "approved"
	StatusRejected ModerationStatus = "rejected"
)

// Terminal reports whether no further transition is allowed from s.
func (s ModerationStatus) Terminal() bool {
	return s == StatusApproved || s == StatusRejected
}

var ErrInvalidModerationAction = errors.New("invalid moderation action")

// ParseModerationAction maps the two-action moderation vocabulary to the
// resulting status.
func ParseModerationAction(action string) (ModerationStatus, error) {
	switch action {
	case "approve":
		return StatusApproved, nil
	case "reject":
		return StatusRejected, nil
	default:
		return "", ErrInvalidModerationAction
	}
}
