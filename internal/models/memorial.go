package models

import "time"

// Gender of the person a memorial commemorates.
type Gender string

const (
	GenderFemale Gender = "female"
	GenderMale   Gender = "male"
	GenderOther  Gender = "other"
)

// MemorialModel represents one deceased person's page.
//
// The counters are owned exclusively by the grant ledger; handlers never
// write them directly.
type MemorialModel struct {
	Base
	Slug    string `json:"slug"    gorm:"uniqueIndex;not null"`
	Name    string `json:"name"    gorm:"not null"`
	Surname string `json:"surname" gorm:"not null"`
	Gender  Gender `json:"gender"`
	Region  string `json:"region"  gorm:"index"`
	City    string `json:"city"`

	BirthDate *time.Time `json:"birth_date"`
	DeathDate *time.Time `json:"death_date"`
	Obituary  string     `json:"obituary" gorm:"type:longtext"`
	PhotoURL  string     `json:"photo_url"`

	FuneralLocation string     `json:"funeral_location"`
	Cemetery        string     `json:"cemetery"`
	FuneralAt       *time.Time `json:"funeral_at"`

	TotalCandles      int64      `json:"total_candles"       gorm:"default:0"`
	TotalVisits       int64      `json:"total_visits"        gorm:"default:0"`
	CurrentWeekVisits int64      `json:"current_week_visits" gorm:"default:0"`
	LastWeeklyReset   *time.Time `json:"last_weekly_reset"`

	IsHidden        bool `json:"is_hidden"         gorm:"default:false;index"`
	IsMemoryBlocked bool `json:"is_memory_blocked" gorm:"default:false"`

	OwnerID   string  `json:"owner_id"   gorm:"index;not null"`
	CompanyID *string `json:"company_id" gorm:"index"`
}

func (MemorialModel) TableName() string { return "memorials" }
