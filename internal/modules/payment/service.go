package payment

import (
	"errors"

	"github.com/memorium/core/internal/models"
	"github.com/memorium/core/internal/modules/keeper"
	"github.com/memorium/core/internal/pkg/pagination"
	"github.com/memorium/core/internal/pkg/response"
	"gorm.io/gorm"
)

var errUnknownPackage = errors.New("unknown payment package")

// packageDurations maps provider package names to the extension length in
// whole months.
var packageDurations = map[string]int{
	"memory_page_one_month":    1,
	"memory_page_three_months": 3,
	"memory_page_one_year":     12,
}

type Service struct {
	db        *gorm.DB
	keeperSvc *keeper.Service
}

func NewService(db *gorm.DB, keeperSvc *keeper.Service) *Service {
	return &Service{db: db, keeperSvc: keeperSvc}
}

// ProcessEvent records a successful purchase reported by the payment
// provider and extends the matching keeper assignment. The event row is the
// audit trail; it is written even when the extension fails, with the
// processed flag left unset.
func (s *Service) ProcessEvent(dto *EventDTO) (*models.PaymentEventModel, *models.KeeperAssignmentModel, error) {
	months, ok := packageDurations[dto.Package]
	if !ok {
		return nil, nil, errUnknownPackage
	}

	ev := models.PaymentEventModel{
		MemorialSlug:   dto.MemorialSlug,
		ActorID:        dto.ActorID,
		Package:        dto.Package,
		DurationMonths: months,
	}
	if err := s.db.Create(&ev).Error; err != nil {
		return nil, nil, err
	}

	k, err := s.keeperSvc.ExtendBySlug(dto.ActorID, dto.MemorialSlug, months)
	if err != nil {
		return &ev, nil, err
	}

	if err := s.db.Model(&ev).UpdateColumn("processed", true).Error; err != nil {
		return &ev, k, err
	}
	ev.Processed = true
	return &ev, k, nil
}

// ListEvents returns the audit trail, newest first.
func (s *Service) ListEvents(q pagination.Query) ([]models.PaymentEventModel, response.Pagination, error) {
	tx := s.db.Model(&models.PaymentEventModel{}).Order("created_at DESC")
	var out []models.PaymentEventModel
	pag, err := pagination.Paginate(tx, q, &out)
	return out, pag, err
}
