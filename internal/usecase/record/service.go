package record

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/vkuznets/upkeep/internal/domain"
	"github.com/vkuznets/upkeep/internal/pkg/logger"
	"github.com/vkuznets/upkeep/internal/repository"
)

// SparePartLine - строка запчасти в запросе
type SparePartLine struct {
	ID          *uuid.UUID `json:"id,omitempty"`
	SparePartID uuid.UUID  `json:"spare_part_id" validate:"required"`
	Quantity    int        `json:"quantity" validate:"required,gt=0"`
	UnitPrice   float64    `json:"unit_price"`
}

// ActivityLine - строка работы в запросе
type ActivityLine struct {
	ID         *uuid.UUID `json:"id,omitempty"`
	ActivityID uuid.UUID  `json:"activity_id" validate:"required"`
	Notes      string     `json:"notes,omitempty"`
}

// CreateRecordRequest - запрос на создание записи об обслуживании
type CreateRecordRequest struct {
	OwnerID      uuid.UUID             `json:"-"`
	EquipmentID  uuid.UUID             `json:"equipment_id" validate:"required"`
	TypeID       uuid.UUID             `json:"maintenance_type_id" validate:"required"`
	StartedAt    time.Time             `json:"started_at" validate:"required"`
	EndedAt      *time.Time            `json:"ended_at,omitempty"`
	Observations string                `json:"observations,omitempty"`
	Status       domain.RecordStatus   `json:"status"`
	Priority     domain.RecordPriority `json:"priority"`
	Kilometers   *int                  `json:"kilometers,omitempty"`
	SpareParts   []SparePartLine       `json:"spare_parts,omitempty"`
	Activities   []ActivityLine        `json:"activities,omitempty"`
}

// UpdateRecordRequest - запрос на обновление записи об обслуживании.
// Строки запчастей и работ присылаются целиком: строки без ID создаются,
// строки с ID обновляются, отсутствующие строки удаляются
type UpdateRecordRequest struct {
	EquipmentID  uuid.UUID             `json:"equipment_id" validate:"required"`
	TypeID       uuid.UUID             `json:"maintenance_type_id" validate:"required"`
	StartedAt    time.Time             `json:"started_at" validate:"required"`
	EndedAt      *time.Time            `json:"ended_at,omitempty"`
	Observations string                `json:"observations,omitempty"`
	Status       domain.RecordStatus   `json:"status"`
	Priority     domain.RecordPriority `json:"priority"`
	Kilometers   *int                  `json:"kilometers,omitempty"`
	SpareParts   []SparePartLine       `json:"spare_parts,omitempty"`
	Activities   []ActivityLine        `json:"activities,omitempty"`
}

// ListFilter - фильтры списка записей
type ListFilter struct {
	Statuses   []domain.RecordStatus
	Priorities []domain.RecordPriority
}

// Service содержит бизнес-логику записей об обслуживании.
// Запись - составная сущность: сама запись, опциональная запись пробега и
// строки запчастей/работ сохраняются одной транзакцией
type Service struct {
	recordRepo    repository.MaintenanceRecordRepository
	equipmentRepo repository.EquipmentRepository
	typeRepo      repository.MaintenanceTypeRepository
	mileageRepo   repository.MileageRecordRepository
	logger        logger.Logger
}

// NewService создает новый экземпляр RecordService
func NewService(
	recordRepo repository.MaintenanceRecordRepository,
	equipmentRepo repository.EquipmentRepository,
	typeRepo repository.MaintenanceTypeRepository,
	mileageRepo repository.MileageRecordRepository,
	logger logger.Logger,
) *Service {
	return &Service{
		recordRepo:    recordRepo,
		equipmentRepo: equipmentRepo,
		typeRepo:      typeRepo,
		mileageRepo:   mileageRepo,
		logger:        logger,
	}
}

// CreateRecord создает запись об обслуживании. Если в запросе указан пробег,
// запись пробега на дату начала обслуживания создается или обновляется в той
// же транзакции
func (s *Service) CreateRecord(ctx context.Context, req *CreateRecordRequest) (*domain.MaintenanceRecord, error) {
	s.logger.Info("Creating maintenance record", map[string]interface{}{
		"owner_id":     req.OwnerID,
		"equipment_id": req.EquipmentID,
	})

	if err := s.checkEquipment(ctx, req.OwnerID, req.EquipmentID); err != nil {
		return nil, err
	}
	if err := s.checkType(ctx, req.OwnerID, req.TypeID); err != nil {
		return nil, err
	}

	rec := &domain.MaintenanceRecord{
		OwnerID:      req.OwnerID,
		EquipmentID:  req.EquipmentID,
		TypeID:       req.TypeID,
		StartedAt:    req.StartedAt,
		EndedAt:      req.EndedAt,
		Observations: req.Observations,
		Status:       req.Status,
		Priority:     req.Priority,
		SpareParts:   buildSpareParts(req.SpareParts),
		Activities:   buildActivities(req.Activities),
	}

	applyDefaults(rec)

	if err := rec.Validate(); err != nil {
		return nil, err
	}

	mileage, err := s.resolveMileage(ctx, req.OwnerID, req.EquipmentID, req.StartedAt, req.Kilometers)
	if err != nil {
		return nil, err
	}

	if err := s.recordRepo.CreateWithItems(ctx, rec, mileage); err != nil {
		s.logger.Error("Failed to create maintenance record", map[string]interface{}{
			"error": err.Error(),
		})
		return nil, fmt.Errorf("failed to create maintenance record: %w", err)
	}

	s.logger.Info("Maintenance record created", map[string]interface{}{
		"record_id": rec.ID,
	})

	return rec, nil
}

// GetRecord возвращает запись вместе со строками запчастей и работ
func (s *Service) GetRecord(ctx context.Context, ownerID, id uuid.UUID) (*domain.MaintenanceRecord, error) {
	rec, err := s.recordRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if rec.OwnerID != ownerID {
		return nil, domain.ErrRecordNotFound
	}
	return rec, nil
}

// UpdateRecord обновляет запись, пробег и строки одной транзакцией.
// Строки, отсутствующие в запросе, удаляются
func (s *Service) UpdateRecord(ctx context.Context, ownerID, id uuid.UUID, req *UpdateRecordRequest) (*domain.MaintenanceRecord, error) {
	existing, err := s.GetRecord(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}

	if err := s.checkEquipment(ctx, ownerID, req.EquipmentID); err != nil {
		return nil, err
	}
	if err := s.checkType(ctx, ownerID, req.TypeID); err != nil {
		return nil, err
	}

	rec := &domain.MaintenanceRecord{
		ID:              existing.ID,
		OwnerID:         ownerID,
		EquipmentID:     req.EquipmentID,
		TypeID:          req.TypeID,
		StartedAt:       req.StartedAt,
		EndedAt:         req.EndedAt,
		Observations:    req.Observations,
		Status:          req.Status,
		Priority:        req.Priority,
		MileageRecordID: existing.MileageRecordID,
		CreatedAt:       existing.CreatedAt,
		SpareParts:      buildSpareParts(req.SpareParts),
		Activities:      buildActivities(req.Activities),
	}

	applyDefaults(rec)

	if err := rec.Validate(); err != nil {
		return nil, err
	}

	mileage, err := s.resolveMileage(ctx, ownerID, req.EquipmentID, req.StartedAt, req.Kilometers)
	if err != nil {
		return nil, err
	}

	removedParts := domain.DiffSpareParts(existing.SpareParts, rec.SpareParts)
	removedActivities := domain.DiffActivities(existing.Activities, rec.Activities)

	if err := s.recordRepo.UpdateWithItems(ctx, rec, mileage, removedParts, removedActivities); err != nil {
		s.logger.Error("Failed to update maintenance record", map[string]interface{}{
			"error": err.Error(),
		})
		return nil, fmt.Errorf("failed to update maintenance record: %w", err)
	}

	return rec, nil
}

// DeleteRecord удаляет запись вместе со строками
func (s *Service) DeleteRecord(ctx context.Context, ownerID, id uuid.UUID) error {
	if _, err := s.GetRecord(ctx, ownerID, id); err != nil {
		return err
	}

	if err := s.recordRepo.Delete(ctx, id); err != nil {
		return err
	}

	s.logger.Info("Maintenance record deleted", map[string]interface{}{
		"record_id": id,
	})

	return nil
}

// ListRecords возвращает записи владельца с фильтрами и пагинацией
func (s *Service) ListRecords(ctx context.Context, ownerID uuid.UUID, filter ListFilter, params domain.PageParams) (*domain.Page, error) {
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

	records, total, err := s.recordRepo.ListByOwner(ctx, ownerID, repoFilter, params.Limit, params.Offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list maintenance records: %w", err)
	}

	return domain.NewPage(params, total, records), nil
}

// resolveMileage готовит запись пробега для сохранения вместе с записью
// обслуживания. Если на дату начала обслуживания пробег уже внесен,
// обновляется существующая запись, иначе создается новая
func (s *Service) resolveMileage(ctx context.Context, ownerID, equipmentID uuid.UUID, startedAt time.Time, kilometers *int) (*domain.MileageRecord, error) {
	if kilometers == nil {
		return nil, nil
	}

	mileage := &domain.MileageRecord{
		OwnerID:     ownerID,
		EquipmentID: equipmentID,
		RecordDate:  startedAt,
		Kilometers:  *kilometers,
	}

	if err := mileage.Validate(); err != nil {
		return nil, err
	}

	existing, err := s.mileageRepo.GetByEquipmentAndDate(ctx, equipmentID, startedAt.Format("2006-01-02"))
	if err != nil && err != domain.ErrMileageNotFound {
		return nil, fmt.Errorf("failed to check existing mileage: %w", err)
	}
	if existing != nil && domain.SameDate(existing.RecordDate, startedAt) {
		mileage.ID = existing.ID
		mileage.CreatedAt = existing.CreatedAt
	}

	return mileage, nil
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

func (s *Service) checkType(ctx context.Context, ownerID, typeID uuid.UUID) error {
	mt, err := s.typeRepo.GetByID(ctx, typeID)
	if err != nil {
		return err
	}
	if mt.OwnerID != ownerID {
		return domain.ErrTypeNotFound
	}
	return nil
}

func applyDefaults(rec *domain.MaintenanceRecord) {
	if rec.Status == "" {
		rec.Status = domain.StatusScheduled
	}
	if rec.Priority == "" {
		rec.Priority = domain.PriorityMedium
	}
}

func buildSpareParts(lines []SparePartLine) []*domain.MaintenanceSparePart {
	var parts []*domain.MaintenanceSparePart
	for _, l := range lines {
		sp := &domain.MaintenanceSparePart{
			SparePartID: l.SparePartID,
			Quantity:    l.Quantity,
			UnitPrice:   l.UnitPrice,
		}
		if l.ID != nil {
			sp.ID = *l.ID
		}
		parts = append(parts, sp)
	}
	return parts
}

func buildActivities(lines []ActivityLine) []*domain.MaintenanceActivity {
	var acts []*domain.MaintenanceActivity
	for _, l := range lines {
		a := &domain.MaintenanceActivity{
			ActivityID: l.ActivityID,
			Notes:      l.Notes,
		}
		if l.ID != nil {
			a.ID = *l.ID
		}
		acts = append(acts, a)
	}
	return acts
}
