package equipment

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/vkuznets/upkeep/internal/domain"
	"github.com/vkuznets/upkeep/internal/pkg/logger"
	"github.com/vkuznets/upkeep/internal/repository"
)

// CreateEquipmentRequest - запрос на создание техники
type CreateEquipmentRequest struct {
	OwnerID           uuid.UUID  `json:"-"`
	EquipmentType     string     `json:"equipment_type" validate:"required"`
	LicensePlate      string     `json:"license_plate" validate:"required"`
	Code              string     `json:"code" validate:"required"`
	MaintenancePlanID *uuid.UUID `json:"maintenance_plan_id,omitempty"`
}

// UpdateEquipmentRequest - запрос на обновление техники
type UpdateEquipmentRequest struct {
	EquipmentType     string     `json:"equipment_type" validate:"required"`
	LicensePlate      string     `json:"license_plate" validate:"required"`
	Code              string     `json:"code" validate:"required"`
	MaintenancePlanID *uuid.UUID `json:"maintenance_plan_id,omitempty"`
}

// ListFilter - фильтры списка техники по последней записи обслуживания
type ListFilter struct {
	Statuses   []domain.RecordStatus
	Priorities []domain.RecordPriority
}

// Service содержит бизнес-логику работы с техникой
type Service struct {
	equipmentRepo repository.EquipmentRepository
	planRepo      repository.MaintenancePlanRepository
	logger        logger.Logger
}

// NewService создает новый экземпляр EquipmentService
func NewService(
	equipmentRepo repository.EquipmentRepository,
	planRepo repository.MaintenancePlanRepository,
	logger logger.Logger,
) *Service {
	return &Service{
		equipmentRepo: equipmentRepo,
		planRepo:      planRepo,
		logger:        logger,
	}
}

// CreateEquipment создает новую единицу техники
func (s *Service) CreateEquipment(ctx context.Context, req *CreateEquipmentRequest) (*domain.Equipment, error) {
	s.logger.Info("Creating new equipment", map[string]interface{}{
		"owner_id": req.OwnerID,
		"code":     req.Code,
	})

	eq := &domain.Equipment{
		OwnerID:           req.OwnerID,
		EquipmentType:     req.EquipmentType,
		LicensePlate:      req.LicensePlate,
		Code:              req.Code,
		MaintenancePlanID: req.MaintenancePlanID,
	}

	// Validate нормализует инвентарный код
	if err := eq.Validate(); err != nil {
		return nil, err
	}

	// Проверяем, что код еще не занят у этого владельца
	existing, err := s.equipmentRepo.GetByCode(ctx, req.OwnerID, eq.Code)
	if err != nil && err != domain.ErrEquipmentNotFound {
		return nil, fmt.Errorf("failed to check existing equipment: %w", err)
	}
	if existing != nil {
		s.logger.Warn("Equipment code already taken", map[string]interface{}{
			"owner_id": req.OwnerID,
			"code":     eq.Code,
		})
		return nil, domain.ErrEquipmentAlreadyExists
	}

	// План обслуживания, если указан, должен существовать и принадлежать владельцу
	if req.MaintenancePlanID != nil {
		if err := s.checkPlan(ctx, req.OwnerID, *req.MaintenancePlanID); err != nil {
			return nil, err
		}
	}

	if err := s.equipmentRepo.Create(ctx, eq); err != nil {
		s.logger.Error("Failed to create equipment", map[string]interface{}{
			"error": err.Error(),
		})
		return nil, fmt.Errorf("failed to create equipment: %w", err)
	}

	s.logger.Info("Equipment created successfully", map[string]interface{}{
		"equipment_id": eq.ID,
	})

	return eq, nil
}

// GetEquipment возвращает технику по ID с проверкой владельца
func (s *Service) GetEquipment(ctx context.Context, ownerID, id uuid.UUID) (*domain.Equipment, error) {
	eq, err := s.equipmentRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if eq.OwnerID != ownerID {
		return nil, domain.ErrEquipmentNotFound
	}
	return eq, nil
}

// UpdateEquipment обновляет данные техники
func (s *Service) UpdateEquipment(ctx context.Context, ownerID, id uuid.UUID, req *UpdateEquipmentRequest) (*domain.Equipment, error) {
	eq, err := s.GetEquipment(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}

	eq.EquipmentType = req.EquipmentType
	eq.LicensePlate = req.LicensePlate
	eq.Code = req.Code
	eq.MaintenancePlanID = req.MaintenancePlanID

	if err := eq.Validate(); err != nil {
		return nil, err
	}

	// Новый код не должен конфликтовать с другой техникой владельца
	existing, err := s.equipmentRepo.GetByCode(ctx, ownerID, eq.Code)
	if err != nil && err != domain.ErrEquipmentNotFound {
		return nil, fmt.Errorf("failed to check existing equipment: %w", err)
	}
	if existing != nil && existing.ID != eq.ID {
		return nil, domain.ErrEquipmentAlreadyExists
	}

	if req.MaintenancePlanID != nil {
		if err := s.checkPlan(ctx, ownerID, *req.MaintenancePlanID); err != nil {
			return nil, err
		}
	}

	if err := s.equipmentRepo.Update(ctx, eq); err != nil {
		return nil, fmt.Errorf("failed to update equipment: %w", err)
	}

	return eq, nil
}

// DeleteEquipment удаляет технику. Техника с записями обслуживания не удаляется
func (s *Service) DeleteEquipment(ctx context.Context, ownerID, id uuid.UUID) error {
	if _, err := s.GetEquipment(ctx, ownerID, id); err != nil {
		return err
	}

	if err := s.equipmentRepo.Delete(ctx, id); err != nil {
		if err == domain.ErrEquipmentInUse {
			s.logger.Warn("Equipment delete blocked by maintenance records", map[string]interface{}{
				"equipment_id": id,
			})
		}
		return err
	}

	s.logger.Info("Equipment deleted", map[string]interface{}{
		"equipment_id": id,
	})

	return nil
}

// ListEquipment возвращает технику владельца с пагинацией
func (s *Service) ListEquipment(ctx context.Context, ownerID uuid.UUID, params domain.PageParams) (*domain.Page, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}

	items, total, err := s.equipmentRepo.ListByOwner(ctx, ownerID, params.Limit, params.Offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list equipment: %w", err)
	}

	return domain.NewPage(params, total, items), nil
}

// ListEquipmentWithLastRecord возвращает технику владельца вместе с последней
// записью обслуживания. Фильтры применяются к этой записи: значения внутри
// одной оси объединяются через OR, оси между собой - через AND
func (s *Service) ListEquipmentWithLastRecord(ctx context.Context, ownerID uuid.UUID, filter ListFilter, params domain.PageParams) (*domain.Page, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}

	for _, st := range filter.Statuses {
		if !domain.ValidStatus(st) {
			return nil, domain.ErrInvalidStatus
		}
	}
	for _, pr := range filter.Priorities {
		if !domain.ValidPriority(pr) {
			return nil, domain.ErrInvalidPriority
		}
	}

	repoFilter := repository.RecordFilter{
		Statuses:   filter.Statuses,
		Priorities: filter.Priorities,
	}

	items, total, err := s.equipmentRepo.ListWithLastRecord(ctx, ownerID, repoFilter, params.Limit, params.Offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list equipment with records: %w", err)
	}

	return domain.NewPage(params, total, items), nil
}

func (s *Service) checkPlan(ctx context.Context, ownerID, planID uuid.UUID) error {
	plan, err := s.planRepo.GetByID(ctx, planID)
	if err != nil {
		return err
	}
	if plan.OwnerID != ownerID {
		return domain.ErrPlanNotFound
	}
	return nil
}
