package memorial

import (
	"errors"
	"time"

	"github.com/memorium/core/internal/models"
)

var (
	errMemorialNotFound = errors.New("memorial not found")
	errSlugImmutable    = errors.New("slug cannot be changed")
)

type CreateMemorialDTO struct {
	Name    string        `json:"name"    binding:"required"`
	Surname string        `json:"surname" binding:"required"`
	Gender  models.Gender `json:"gender"`
	Region  string        `json:"region"`
	City    string        `json:"city"`

	BirthDate *time.Time `json:"birth_date"`
	DeathDate *time.Time `json:"death_date"`
	Obituary  string     `json:"obituary"`
	PhotoURL  string     `json:"photo_url"`

	FuneralLocation string     `json:"funeral_location"`
	Cemetery        string     `json:"cemetery"`
	FuneralAt       *time.Time `json:"funeral_at"`

	CompanyID *string `json:"company_id"`
}

type UpdateMemorialDTO struct {
	Slug    *string        `json:"slug"`
	Name    *string        `json:"name"`
	Surname *string        `json:"surname"`
	Gender  *models.Gender `json:"gender"`
	Region  *string        `json:"region"`
	City    *string        `json:"city"`

	BirthDate *time.Time `json:"birth_date"`
	DeathDate *time.Time `json:"death_date"`
	Obituary  *string    `json:"obituary"`
	PhotoURL  *string    `json:"photo_url"`

	FuneralLocation *string    `json:"funeral_location"`
	Cemetery        *string    `json:"cemetery"`
	FuneralAt       *time.Time `json:"funeral_at"`

	IsMemoryBlocked *bool   `json:"is_memory_blocked"`
	CompanyID       *string `json:"company_id"`
}
