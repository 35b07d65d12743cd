package mileage

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/vkuznets/upkeep/internal/domain"
	"github.com/vkuznets/upkeep/internal/pkg/logger"
	"github.com/vkuznets/upkeep/internal/repository"
)

// SubmitMileageRequest - запрос на внесение пробега
type SubmitMileageRequest struct {
	OwnerID     uuid.UUID `json:"-"`
	EquipmentID uuid.UUID `json:"equipment_id" validate:"required"`
	RecordDate  time.Time `json:"record_date" validate:"required"`
	Kilometers  int       `json:"kilometers"`
}

// Service содержит бизнес-логику записей пробега.
// На пару (техника, дата) существует не более одной записи: повторное
// внесение пробега на ту же дату обновляет существующую запись
type Service struct {
	mileageRepo   repository.MileageRecordRepository
	equipmentRepo repository.EquipmentRepository
	logger        logger.Logger
}

// NewService создает новый экземпляр MileageService
func NewService(
	mileageRepo repository.MileageRecordRepository,
	equipmentRepo repository.EquipmentRepository,
	logger logger.Logger,
) *Service {
	return &Service{
		mileageRepo:   mileageRepo,
		equipmentRepo: equipmentRepo,
		logger:        logger,
	}
}

// SubmitMileage вносит пробег техники на дату. Существующая запись на эту
// дату обновляется, иначе создается новая
func (s *Service) SubmitMileage(ctx context.Context, req *SubmitMileageRequest) (*domain.MileageRecord, error) {
	if err := s.checkEquipment(ctx, req.OwnerID, req.EquipmentID); err != nil {
		return nil, err
	}

	m := &domain.MileageRecord{
		OwnerID:     req.OwnerID,
		EquipmentID: req.EquipmentID,
		RecordDate:  req.RecordDate,
		Kilometers:  req.Kilometers,
	}

	if err := m.Validate(); err != nil {
		return nil, err
	}

	existing, err := s.mileageRepo.GetByEquipmentAndDate(ctx, req.EquipmentID, req.RecordDate.Format("2006-01-02"))
	if err != nil && err != domain.ErrMileageNotFound {
		return nil, fmt.Errorf("failed to check existing mileage: %w", err)
	}

	if existing != nil {
		existing.Kilometers = req.Kilometers
		if err := s.mileageRepo.Update(ctx, existing); err != nil {
			return nil, fmt.Errorf("failed to update mileage record: %w", err)
		}
		s.logger.Info("Mileage record updated", map[string]interface{}{
			"mileage_id":   existing.ID,
			"equipment_id": existing.EquipmentID,
		})
		return existing, nil
	}

	if err := s.mileageRepo.Create(ctx, m); err != nil {
		s.logger.Error("Failed to create mileage record", map[string]interface{}{
			"error": err.Error(),
		})
		return nil, fmt.Errorf("failed to create mileage record: %w", err)
	}

	s.logger.Info("Mileage record created", map[string]interface{}{
		"mileage_id":   m.ID,
		"equipment_id": m.EquipmentID,
	})

	return m, nil
}

// GetMileage возвращает запись пробега по ID с проверкой владельца
func (s *Service) GetMileage(ctx context.Context, ownerID, id uuid.UUID) (*domain.MileageRecord, error) {
	m, err := s.mileageRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if m.OwnerID != ownerID {
		return nil, domain.ErrMileageNotFound
	}
	return m, nil
}

// DeleteMileage удаляет запись пробега. Запись, на которую ссылается
// запись обслуживания, не удаляется
func (s *Service) DeleteMileage(ctx context.Context, ownerID, id uuid.UUID) error {
	if _, err := s.GetMileage(ctx, ownerID, id); err != nil {
		return err
	}

	return s.mileageRepo.Delete(ctx, id)
}

// ListMileage возвращает записи пробега техники в обратном хронологическом
// порядке с пагинацией
func (s *Service) ListMileage(ctx context.Context, ownerID, equipmentID uuid.UUID, params domain.PageParams) (*domain.Page, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}

	if err := s.checkEquipment(ctx, ownerID, equipmentID); err != nil {
		return nil, err
	}

	records, total, err := s.mileageRepo.ListByEquipment(ctx, equipmentID, params.Limit, params.Offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list mileage records: %w", err)
	}

	return domain.NewPage(params, total, records), nil
}

func (s *Service) checkEquipment(ctx context.Context, ownerID, equipmentID uuid.UUID) error {
	eq, err := s.equipmentRepo.GetByID(ctx, equipmentID)
	if err != nil {
		return err
	}
	if eq.OwnerID != ownerID {
		return domain.ErrEquipmentNotFound
	}
	return nil
}
