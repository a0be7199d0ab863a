package memorial

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"github.com/memorium/core/internal/models"
	"github.com/memorium/core/internal/pkg/pagination"
	"github.com/memorium/core/internal/pkg/response"
	"gorm.io/gorm"
)

type Service struct{ db *gorm.DB }

func NewService(db *gorm.DB) *Service { return &Service{db: db} }

var slugStrip = regexp.MustCompile(`[^a-z0-9]+`)

// slugify builds the immutable page slug from the person's name plus a short
// random suffix, so common names never collide.
func slugify(name, surname string) string {
	base := strings.ToLower(strings.TrimSpace(name + " " + surname))
	base = strings.Trim(slugStrip.ReplaceAllString(base, "-"), "-")
	if base == "" {
		base = "memorial"
	}
	return fmt.Sprintf("%s-%s", base, uuid.New().String()[:8])
}

func (s *Service) Create(ownerID string, dto *CreateMemorialDTO) (*models.MemorialModel, error) {
	m := models.MemorialModel{
		Slug:            slugify(dto.Name, dto.Surname),
		Name:            dto.Name,
		Surname:         dto.Surname,
		Gender:          dto.Gender,
		Region:          dto.Region,
		City:            dto.City,
		BirthDate:       dto.BirthDate,
		DeathDate:       dto.DeathDate,
		Obituary:        dto.Obituary,
		PhotoURL:        dto.PhotoURL,
		FuneralLocation: dto.FuneralLocation,
		Cemetery:        dto.Cemetery,
		FuneralAt:       dto.FuneralAt,
		OwnerID:         ownerID,
		CompanyID:       dto.CompanyID,
	}
	if err := s.db.Create(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			// regenerate once on the astronomically unlikely suffix clash
			m.Slug = slugify(dto.Name, dto.Surname)
			if err := s.db.Create(&m).Error; err != nil {
				return nil, err
			}
			return &m, nil
		}
		return nil, err
	}
	return &m, nil
}

// GetBySlugOrID resolves a memorial by its slug first, then by raw id.
func (s *Service) GetBySlugOrID(key string) (*models.MemorialModel, error) {
	var m models.MemorialModel
	err := s.db.First(&m, "slug = ?", key).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		err = s.db.First(&m, "id = ?", key).Error
	}
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errMemorialNotFound
		}
		return nil, err
	}
	return &m, nil
}

// ListPublic returns visible memorials, optionally filtered by region, most
// recent first.
func (s *Service) ListPublic(region string, q pagination.Query) ([]models.MemorialModel, response.Pagination, error) {
	tx := s.db.Model(&models.MemorialModel{}).
		Where("is_hidden = ?", false).
		Order("created_at DESC")
	if region != "" {
		tx = tx.Where("region = ?", region)
	}
	var out []models.MemorialModel
	pag, err := pagination.Paginate(tx, q, &out)
	return out, pag, err
}

// ListAll returns every memorial regardless of visibility (admin view).
func (s *Service) ListAll(q pagination.Query) ([]models.MemorialModel, response.Pagination, error) {
	tx := s.db.Model(&models.MemorialModel{}).Order("created_at DESC")
	var out []models.MemorialModel
	pag, err := pagination.Paginate(tx, q, &out)
	return out, pag, err
}

// Update applies the partial update. The slug is immutable: any attempt to
// change it is rejected outright. Counters are never touched here.
func (s *Service) Update(id string, dto *UpdateMemorialDTO) (*models.MemorialModel, error) {
	var m models.MemorialModel
	if err := s.db.First(&m, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errMemorialNotFound
		}
		return nil, err
	}
	if dto.Slug != nil && *dto.Slug != m.Slug {
		return nil, errSlugImmutable
	}

	updates := map[string]interface{}{}
	if dto.Name != nil {
		updates["name"] = *dto.Name
	}
	if dto.Surname != nil {
		updates["surname"] = *dto.Surname
	}
	if dto.Gender != nil {
		updates["gender"] = *dto.Gender
	}
	if dto.Region != nil {
		updates["region"] = *dto.Region
	}
	if dto.City != nil {
		updates["city"] = *dto.City
	}
	if dto.BirthDate != nil {
		updates["birth_date"] = dto.BirthDate
	}
	if dto.DeathDate != nil {
		updates["death_date"] = dto.DeathDate
	}
	if dto.Obituary != nil {
		updates["obituary"] = *dto.Obituary
	}
	if dto.PhotoURL != nil {
		updates["photo_url"] = *dto.PhotoURL
	}
	if dto.FuneralLocation != nil {
		updates["funeral_location"] = *dto.FuneralLocation
	}
	if dto.Cemetery != nil {
		updates["cemetery"] = *dto.Cemetery
	}
	if dto.FuneralAt != nil {
		updates["funeral_at"] = dto.FuneralAt
	}
	if dto.IsMemoryBlocked != nil {
		updates["is_memory_blocked"] = *dto.IsMemoryBlocked
	}
	if dto.CompanyID != nil {
		updates["company_id"] = dto.CompanyID
	}
	if len(updates) == 0 {
		return &m, nil
	}
	if err := s.db.Model(&m).Updates(updates).Error; err != nil {
		return nil, err
	}
	return &m, nil
}

// SetHidden flips page visibility (the publish/unpublish switch).
func (s *Service) SetHidden(id string, hidden bool) (*models.MemorialModel, error) {
	var m models.MemorialModel
	if err := s.db.First(&m, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errMemorialNotFound
		}
		return nil, err
	}
	if err := s.db.Model(&m).UpdateColumn("is_hidden", hidden).Error; err != nil {
		return nil, err
	}
	m.IsHidden = hidden
	return &m, nil
}

// Delete soft-deletes the page; the slug stays reserved.
func (s *Service) Delete(id string) error {
	res := s.db.Delete(&models.MemorialModel{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return errMemorialNotFound
	}
	return nil
}
