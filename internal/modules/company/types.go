package company

import (
	"errors"

	"github.com/memorium/core/internal/models"
)

var (
	errCompanyNotFound  = errors.New("company page not found")
	errAlreadyModerated = errors.New("company page already moderated")
	errSlugTaken        = errors.New("company slug already taken")
)

type ApplyDTO struct {
	Name        string             `json:"name" binding:"required"`
	Kind        models.CompanyKind `json:"kind" binding:"required"`
	Description string             `json:"description"`
	Region      string             `json:"region"`
	City        string             `json:"city"`
	Address     string             `json:"address"`
	Phone       string             `json:"phone"`
	Email       string             `json:"email"`
	Website     string             `json:"website"`
	LogoURL     string             `json:"logo_url"`
}

type UpdateCompanyDTO struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Region      *string `json:"region"`
	City        *string `json:"city"`
	Address     *string `json:"address"`
	Phone       *string `json:"phone"`
	Email       *string `json:"email"`
	Website     *string `json:"website"`
	LogoURL     *string `json:"logo_url"`
}
