package company

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/memorium/core/internal/models"
	"github.com/memorium/core/internal/pkg/pagination"
	"github.com/memorium/core/internal/pkg/response"
	"gorm.io/gorm"
)

type Service struct{ db *gorm.DB }

func NewService(db *gorm.DB) *Service { return &Service{db: db} }

var slugStrip = regexp.MustCompile(`[^a-z0-9]+`)

func slugify(name string) string {
	base := strings.Trim(slugStrip.ReplaceAllString(strings.ToLower(name), "-"), "-")
	if base == "" {
		base = "company"
	}
	return fmt.Sprintf("%s-%s", base, uuid.New().String()[:8])
}

// Apply files a new company page. It starts pending and stays off the public
// list until approved.
func (s *Service) Apply(ownerID string, dto *ApplyDTO) (*models.CompanyPageModel, error) {
	p := models.CompanyPageModel{
		Slug:        slugify(dto.Name),
		Name:        dto.Name,
		Kind:        dto.Kind,
		Description: dto.Description,
		Region:      dto.Region,
		City:        dto.City,
		Address:     dto.Address,
		Phone:       dto.Phone,
		Email:       dto.Email,
		Website:     dto.Website,
		LogoURL:     dto.LogoURL,
		OwnerID:     ownerID,
	}
	if err := s.db.Create(&p).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, errSlugTaken
		}
		return nil, err
	}
	return &p, nil
}

// ListApproved is the public directory, filterable by kind and region.
func (s *Service) ListApproved(kind *models.CompanyKind, region string, q pagination.Query) ([]models.CompanyPageModel, response.Pagination, error) {
	tx := s.db.Model(&models.CompanyPageModel{}).
		Where("status = ?", models.StatusApproved).
		Order("name ASC")
	if kind != nil {
		tx = tx.Where("kind = ?", *kind)
	}
	if region != "" {
		tx = tx.Where("region = ?", region)
	}
	var out []models.CompanyPageModel
	pag, err := pagination.Paginate(tx, q, &out)
	return out, pag, err
}

// ListAll returns every page regardless of status (admin view).
func (s *Service) ListAll(status *models.ModerationStatus, q pagination.Query) ([]models.CompanyPageModel, response.Pagination, error) {
	tx := s.db.Model(&models.CompanyPageModel{}).Order("created_at DESC")
	if status != nil {
		tx = tx.Where("status = ?", *status)
	}
	var out []models.CompanyPageModel
	pag, err := pagination.Paginate(tx, q, &out)
	return out, pag, err
}

// GetBySlugOrID resolves a page by slug first, then by raw id.
func (s *Service) GetBySlugOrID(key string) (*models.CompanyPageModel, error) {
	var p models.CompanyPageModel
	err := s.db.First(&p, "slug = ?", key).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		err = s.db.First(&p, "id = ?", key).Error
	}
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errCompanyNotFound
		}
		return nil, err
	}
	return &p, nil
}

// Moderate applies approve/reject to a pending page.
func (s *Service) Moderate(id string, action string) (*models.CompanyPageModel, error) {
	status, err := models.ParseModerationAction(action)
	if err != nil {
		return nil, err
	}

	var p models.CompanyPageModel
	if err := s.db.First(&p, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errCompanyNotFound
		}
		return nil, err
	}
	if p.Status.Terminal() {
		return nil, errAlreadyModerated
	}

	if err := s.db.Model(&p).UpdateColumn("status", status).Error; err != nil {
		return nil, err
	}
	p.Status = status
	return &p, nil
}

// Update applies the partial update; the slug and kind are fixed at apply
// time.
func (s *Service) Update(id string, dto *UpdateCompanyDTO) (*models.CompanyPageModel, error) {
	var p models.CompanyPageModel
	if err := s.db.First(&p, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errCompanyNotFound
		}
		return nil, err
	}

	updates := map[string]interface{}{}
	if dto.Name != nil {
		updates["name"] = *dto.Name
	}
	if dto.Description != nil {
		updates["description"] = *dto.Description
	}
	if dto.Region != nil {
		updates["region"] = *dto.Region
	}
	if dto.City != nil {
		updates["city"] = *dto.City
	}
	if dto.Address != nil {
		updates["address"] = *dto.Address
	}
	if dto.Phone != nil {
		updates["phone"] = *dto.Phone
	}
	if dto.Email != nil {
		updates["email"] = *dto.Email
	}
	if dto.Website != nil {
		updates["website"] = *dto.Website
	}
	if dto.LogoURL != nil {
		updates["logo_url"] = *dto.LogoURL
	}
	if len(updates) == 0 {
		return &p, nil
	}
	updates["updated_at"] = time.Now()
	if err := s.db.Model(&p).UpdateColumns(updates).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *Service) Delete(id string) error {
	res := s.db.Delete(&models.CompanyPageModel{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return errCompanyNotFound
	}
	return nil
}
