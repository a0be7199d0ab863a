package models

import "time"

// ContributionKind indicates what kind of content a contribution carries.
type ContributionKind string

const (
	KindCondolence ContributionKind = "condolence"
	KindDedication ContributionKind = "dedication"
	KindPhoto      ContributionKind = "photo"
	KindSorrowbook ContributionKind = "sorrowbook"
)

// KindLabel returns the human-readable label mirrored into the activity log.
func (k ContributionKind) KindLabel() string {
	switch k {
	case KindCondolence:
		return "Condolence"
	case KindDedication:
		return "Dedication"
	case KindPhoto:
		return "Photo"
	case KindSorrowbook:
		return "Sorrow book entry"
	default:
		return string(k)
	}
}

// ContributionModel is the generic envelope for user-submitted content
// attached to a memorial.
type ContributionModel struct {
	Base
	Kind        ContributionKind `json:"kind"         gorm:"not null;index"`
	MemorialID  string           `json:"memorial_id"  gorm:"not null;index"`
	SubmitterID string           `json:"submitter_id" gorm:"not null;index"`
	AuthorName  string           `json:"author_name"  gorm:"not null"`
	Message     string           `json:"message"      gorm:"type:text"`
	PhotoURL    string           `json:"photo_url"`
	TemplateID  *string          `json:"template_id"`

	Status ModerationStatus `json:"status" gorm:"default:pending;index"`

	// DedupKey is set only for kinds with single-submission-per-memorial
	// semantics (sorrowbook); the unique index is the storage-level guard
	// behind the duplicate check.
	DedupKey *string `json:"-" gorm:"uniqueIndex"`

	ModeratedBy      *string    `json:"moderated_by"`
	ModerationReason string     `json:"moderation_reason,omitempty"`
	ModeratedAt      *time.Time `json:"moderated_at"`
}

func (ContributionModel) TableName() string { return "contributions" }

// ActivityLogModel mirrors a contribution's lifecycle for the owning
// memorial's moderation queue. Written once at creation; the status field is
// kept in sync with the contribution on every transition.
type ActivityLogModel struct {
	Base
	Kind           ContributionKind `json:"kind"            gorm:"not null;index"`
	KindLabel      string           `json:"kind_label"`
	MemorialID     string           `json:"memorial_id"     gorm:"not null;index"`
	ActorID        string           `json:"actor_id"        gorm:"index"`
	ContributionID string           `json:"contribution_id" gorm:"not null;index"`
	Status         ModerationStatus `json:"status"          gorm:"index"`
	DisplayName    string           `json:"display_name"`
}

func (ActivityLogModel) TableName() string { return "activity_log" }
