package grant

import (
	"errors"
	"time"
)

const grantWindow = 24 * time.Hour

var (
	errGrantMemorialNotFound = errors.New("memorial not found")
	errGrantMemoryBlocked    = errors.New("memorial does not accept candles")
	errGrantBadIP            = errors.New("invalid origin address")
	errAlreadyGranted        = errors.New("already granted within the window")
)

// Summary is the public counter view for one grant kind on a memorial.
type Summary struct {
	Total             int64      `json:"total"`
	LastID            string     `json:"last_id,omitempty"`
	LastAt            *time.Time `json:"last_at,omitempty"`
	CallerLastAt      *time.Time `json:"caller_last_at,omitempty"`
	CallerMayGrant    bool       `json:"caller_may_grant"`
	CurrentWeekVisits *int64     `json:"current_week_visits,omitempty"`
}
