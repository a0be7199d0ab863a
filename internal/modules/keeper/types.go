package keeper

import "errors"

// Initial custodianship runs 60 days from assignment.
const initialTermDays = 60

// Exported so the payment module can map extension failures to responses.
var (
	ErrActorNotFound    = errors.New("actor not found")
	ErrMemorialNotFound = errors.New("memorial not found")
	ErrAlreadyAssigned  = errors.New("keeper already assigned for this memorial")
	ErrNoAssignment     = errors.New("no keeper assignment found")
)

type AssignDTO struct {
	MemorialID     string `json:"memorial_id" binding:"required"`
	Relation       string `json:"relation"`
	DisplayName    string `json:"display_name"`
	DeathReportURL string `json:"death_report_url"`
}
