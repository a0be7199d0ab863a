package models

// CompanyKind identifies which trade a company page belongs to.
type CompanyKind string

const (
	CompanyFlorist     CompanyKind = "florist"
	CompanyFuneralHome CompanyKind = "funeral_home"
)

// CompanyPageModel is a florist or funeral home page. New pages start
// pending and go through the same two-action moderation as contributions.
type CompanyPageModel struct {
	Base
	Slug        string           `json:"slug"        gorm:"uniqueIndex;not null"`
	Name        string           `json:"name"        gorm:"not null"`
	Kind        CompanyKind      `json:"kind"        gorm:"not null;index"`
	Description string           `json:"description" gorm:"type:text"`
	Region      string           `json:"region"      gorm:"index"`
	City        string           `json:"city"`
	Address     string           `json:"address"`
	Phone       string           `json:"phone"`
	Email       string           `json:"email"`
	Website     string           `json:"website"`
	LogoURL     string           `json:"logo_url"`
	Status      ModerationStatus `json:"status"      gorm:"default:pending;index"`
	OwnerID     string           `json:"owner_id"    gorm:"index;not null"`
}

func (CompanyPageModel) TableName() string { return "company_pages" }
