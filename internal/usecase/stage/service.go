package stage

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/vkuznets/upkeep/internal/domain"
	"github.com/vkuznets/upkeep/internal/pkg/logger"
	"github.com/vkuznets/upkeep/internal/repository"
)

// CreateStageRequest - запрос на создание этапа плана
type CreateStageRequest struct {
	PlanID     uuid.UUID `json:"-"`
	TypeID     uuid.UUID `json:"maintenance_type_id" validate:"required"`
	Kilometers int       `json:"kilometers"`
	Days       int       `json:"days"`
}

// UpdateStageRequest - запрос на обновление этапа плана
type UpdateStageRequest struct {
	TypeID     uuid.UUID `json:"maintenance_type_id" validate:"required"`
	Kilometers int       `json:"kilometers"`
	Days       int       `json:"days"`
}

// Service содержит бизнес-логику работы с этапами планов.
// Порядок этапов внутри плана не задается клиентом: stage_index всегда
// выводится из порогов (kilometers, days) и пересчитывается при каждой
// мутации в той же транзакции
type Service struct {
	stageRepo repository.MaintenanceStageRepository
	planRepo  repository.MaintenancePlanRepository
	typeRepo  repository.MaintenanceTypeRepository
	logger    logger.Logger
}

// NewService создает новый экземпляр StageService
func NewService(
	stageRepo repository.MaintenanceStageRepository,
	planRepo repository.MaintenancePlanRepository,
	typeRepo repository.MaintenanceTypeRepository,
	logger logger.Logger,
) *Service {
	return &Service{
		stageRepo: stageRepo,
		planRepo:  planRepo,
		typeRepo:  typeRepo,
		logger:    logger,
	}
}

// CreateStage создает этап плана и пересчитывает порядок этапов
func (s *Service) CreateStage(ctx context.Context, ownerID uuid.UUID, req *CreateStageRequest) (*domain.MaintenanceStage, error) {
	if _, err := s.getOwnedPlan(ctx, ownerID, req.PlanID); err != nil {
		return nil, err
	}
	if err := s.checkType(ctx, ownerID, req.TypeID); err != nil {
		return nil, err
	}

	candidate := &domain.MaintenanceStage{
		ID:         uuid.New(),
		PlanID:     req.PlanID,
		TypeID:     req.TypeID,
		Kilometers: req.Kilometers,
		Days:       req.Days,
	}

	if err := candidate.Validate(); err != nil {
		return nil, err
	}

	stages, err := s.stageRepo.ListByPlan(ctx, req.PlanID)
	if err != nil {
		return nil, fmt.Errorf("failed to list plan stages: %w", err)
	}

	// Пороги нового этапа не должны дублировать существующие ни по одной оси
	if err := domain.CheckThresholds(stages, candidate); err != nil {
		s.logger.Warn("Stage thresholds conflict", map[string]interface{}{
			"plan_id":    req.PlanID,
			"kilometers": req.Kilometers,
			"days":       req.Days,
		})
		return nil, err
	}

	orderedIDs := s.placeStage(stages, candidate)

	if err := s.stageRepo.Create(ctx, candidate, orderedIDs); err != nil {
		s.logger.Error("Failed to create stage", map[string]interface{}{
			"error": err.Error(),
		})
		return nil, fmt.Errorf("failed to create stage: %w", err)
	}

	s.logger.Info("Stage created", map[string]interface{}{
		"stage_id":    candidate.ID,
		"plan_id":     candidate.PlanID,
		"stage_index": candidate.StageIndex,
	})

	return candidate, nil
}

// GetStage возвращает этап по ID с проверкой владельца плана
func (s *Service) GetStage(ctx context.Context, ownerID, id uuid.UUID) (*domain.MaintenanceStage, error) {
	stage, err := s.stageRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if _, err := s.getOwnedPlan(ctx, ownerID, stage.PlanID); err != nil {
		return nil, domain.ErrStageNotFound
	}
	return stage, nil
}

// UpdateStage обновляет этап и пересчитывает порядок этапов плана
func (s *Service) UpdateStage(ctx context.Context, ownerID, id uuid.UUID, req *UpdateStageRequest) (*domain.MaintenanceStage, error) {
	stage, err := s.GetStage(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}
	if err := s.checkType(ctx, ownerID, req.TypeID); err != nil {
		return nil, err
	}

	stage.TypeID = req.TypeID
	stage.Kilometers = req.Kilometers
	stage.Days = req.Days

	if err := stage.Validate(); err != nil {
		return nil, err
	}

	stages, err := s.stageRepo.ListByPlan(ctx, stage.PlanID)
	if err != nil {
		return nil, fmt.Errorf("failed to list plan stages: %w", err)
	}

	if err := domain.CheckThresholds(stages, stage); err != nil {
		return nil, err
	}

	orderedIDs := s.placeStage(stages, stage)

	if err := s.stageRepo.Update(ctx, stage, orderedIDs); err != nil {
		return nil, fmt.Errorf("failed to update stage: %w", err)
	}

	return stage, nil
}

// DeleteStage удаляет этап; индексы оставшихся этапов плана уплотняются
func (s *Service) DeleteStage(ctx context.Context, ownerID, id uuid.UUID) error {
	if _, err := s.GetStage(ctx, ownerID, id); err != nil {
		return err
	}

	if err := s.stageRepo.Delete(ctx, id); err != nil {
		return err
	}

	s.logger.Info("Stage deleted", map[string]interface{}{
		"stage_id": id,
	})

	return nil
}

// ListStages возвращает этапы плана в порядке stage_index
func (s *Service) ListStages(ctx context.Context, ownerID, planID uuid.UUID) ([]*domain.MaintenanceStage, error) {
	if _, err := s.getOwnedPlan(ctx, ownerID, planID); err != nil {
		return nil, err
	}
	return s.stageRepo.ListByPlan(ctx, planID)
}

// ReorderStages переиндексирует этапы плана. Явный список stageIDs задает
// порядок напрямую и обязан совпадать с множеством этапов плана; без списка
// порядок приводится к каноническому по (kilometers, days)
func (s *Service) ReorderStages(ctx context.Context, ownerID, planID uuid.UUID, stageIDs []uuid.UUID) ([]*domain.MaintenanceStage, error) {
	if _, err := s.getOwnedPlan(ctx, ownerID, planID); err != nil {
		return nil, err
	}

	stages, err := s.stageRepo.ListByPlan(ctx, planID)
	if err != nil {
		return nil, fmt.Errorf("failed to list plan stages: %w", err)
	}

	ids := stageIDs
	if len(ids) > 0 {
		if err := matchStageSet(stages, ids); err != nil {
			s.logger.Warn("Stage reorder rejected: id set mismatch", map[string]interface{}{
				"plan_id":   planID,
				"submitted": len(ids),
				"stages":    len(stages),
			})
			return nil, err
		}
	} else {
		var changed bool
		ids, changed = domain.ReindexedIDs(stages)
		if !changed {
			return stages, nil
		}
	}

	if err := s.stageRepo.Reindex(ctx, planID, ids); err != nil {
		return nil, fmt.Errorf("failed to reindex plan stages: %w", err)
	}
	s.logger.Info("Plan stages reindexed", map[string]interface{}{
		"plan_id": planID,
		"stages":  len(ids),
	})

	stages, err = s.stageRepo.ListByPlan(ctx, planID)
	if err != nil {
		return nil, fmt.Errorf("failed to list plan stages: %w", err)
	}

	return stages, nil
}

// matchStageSet проверяет, что ids - перестановка множества этапов плана
func matchStageSet(stages []*domain.MaintenanceStage, ids []uuid.UUID) error {
	if len(ids) != len(stages) {
		return domain.ErrStageSetMismatch
	}

	known := make(map[uuid.UUID]bool, len(stages))
	for _, st := range stages {
		known[st.ID] = true
	}
	for _, id := range ids {
		if !known[id] {
			return domain.ErrStageSetMismatch
		}
		// Повторы в списке не проходят
		delete(known, id)
	}
	return nil
}

// placeStage вливает кандидата в набор этапов плана, проставляет ему
// stage_index по каноническому порядку и возвращает полный упорядоченный
// список ID, если хотя бы один индекс требует пересчета
func (s *Service) placeStage(stages []*domain.MaintenanceStage, candidate *domain.MaintenanceStage) []uuid.UUID {
	merged := domain.MergeStage(stages, candidate)
	sorted := domain.SortStages(merged)

	for i, st := range sorted {
		if st.ID == candidate.ID {
			candidate.StageIndex = i + 1
			break
		}
	}

	ids, changed := domain.ReindexedIDs(merged)
	if !changed {
		return nil
	}
	return ids
}

func (s *Service) getOwnedPlan(ctx context.Context, ownerID, planID uuid.UUID) (*domain.MaintenancePlan, error) {
	plan, err := s.planRepo.GetByID(ctx, planID)
	if err != nil {
		return nil, err
	}
	if plan.OwnerID != ownerID {
		return nil, domain.ErrPlanNotFound
	}
	return plan, nil
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
