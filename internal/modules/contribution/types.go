package contribution

import (
	"errors"

	"github.com/memorium/core/internal/models"
)

var (
	errMemorialNotFound     = errors.New("memorial not found")
	errContributionNotFound = errors.New("contribution not found")
	errContributionsBlocked = errors.New("memorial does not accept contributions")
	errDuplicateSubmission  = errors.New("duplicate submission")
	errAlreadyModerated     = errors.New("contribution already moderated")
	errValidation           = errors.New("invalid contribution payload")
)

// KeeperChecker answers whether an actor holds active custodianship. Wired
// at startup to keep this package free of a direct module dependency.
type KeeperChecker interface {
	IsActiveKeeper(actorID, memorialID string) (bool, error)
}

// Notifier delivers best-effort notifications.
type Notifier interface {
	Notify(recipientID, kind, title, body, relatedID string)
}

type SubmitDTO struct {
	Kind       models.ContributionKind `json:"kind"        binding:"required"`
	AuthorName string                  `json:"author_name" binding:"required"`
	Message    string                  `json:"message"`
	PhotoURL   string                  `json:"photo_url"`
	TemplateID *string                 `json:"template_id"`
}

type ModerateDTO struct {
	Action string `json:"action" binding:"required"`
	Reason string `json:"reason"`
}

// validate enforces the per-kind payload requirements.
func (dto *SubmitDTO) validate() error {
	switch dto.Kind {
	case models.KindCondolence:
		if dto.Message == "" && dto.TemplateID == nil {
			return errValidation
		}
	case models.KindDedication, models.KindSorrowbook:
		if dto.Message == "" {
			return errValidation
		}
	case models.KindPhoto:
		if dto.PhotoURL == "" {
			return errValidation
		}
	default:
		return errValidation
	}
	return nil
}
