package plan

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/vkuznets/upkeep/internal/domain"
	"github.com/vkuznets/upkeep/internal/pkg/logger"
	"github.com/vkuznets/upkeep/internal/repository"
)

// CreatePlanRequest - запрос на создание плана обслуживания
type CreatePlanRequest struct {
	OwnerID     uuid.UUID `json:"-"`
	Name        string    `json:"name" validate:"required"`
	Description string    `json:"description,omitempty"`
}

// UpdatePlanRequest - запрос на обновление плана обслуживания
type UpdatePlanRequest struct {
	Name        string `json:"name" validate:"required"`
	Description string `json:"description,omitempty"`
}

// Service содержит бизнес-логику работы с планами обслуживания
type Service struct {
	planRepo  repository.MaintenancePlanRepository
	stageRepo repository.MaintenanceStageRepository
	logger    logger.Logger
}

// NewService создает новый экземпляр PlanService
func NewService(
	planRepo repository.MaintenancePlanRepository,
	stageRepo repository.MaintenanceStageRepository,
	logger logger.Logger,
) *Service {
	return &Service{
		planRepo:  planRepo,
		stageRepo: stageRepo,
		logger:    logger,
	}
}

// CreatePlan создает новый план обслуживания
func (s *Service) CreatePlan(ctx context.Context, req *CreatePlanRequest) (*domain.MaintenancePlan, error) {
	s.logger.Info("Creating maintenance plan", map[string]interface{}{
		"owner_id": req.OwnerID,
		"name":     req.Name,
	})

	plan := &domain.MaintenancePlan{
		OwnerID:     req.OwnerID,
		Name:        req.Name,
		Description: req.Description,
	}

	if err := plan.Validate(); err != nil {
		return nil, err
	}

	if err := s.planRepo.Create(ctx, plan); err != nil {
		s.logger.Error("Failed to create plan", map[string]interface{}{
			"error": err.Error(),
		})
		return nil, fmt.Errorf("failed to create plan: %w", err)
	}

	return plan, nil
}

// GetPlan возвращает план вместе с этапами в порядке stage_index
func (s *Service) GetPlan(ctx context.Context, ownerID, id uuid.UUID) (*domain.MaintenancePlan, error) {
	plan, err := s.getOwned(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}

	stages, err := s.stageRepo.ListByPlan(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to list plan stages: %w", err)
	}
	plan.Stages = stages

	return plan, nil
}

// UpdatePlan обновляет данные плана
func (s *Service) UpdatePlan(ctx context.Context, ownerID, id uuid.UUID, req *UpdatePlanRequest) (*domain.MaintenancePlan, error) {
	plan, err := s.getOwned(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}

	plan.Name = req.Name
	plan.Description = req.Description

	if err := plan.Validate(); err != nil {
		return nil, err
	}

	if err := s.planRepo.Update(ctx, plan); err != nil {
		return nil, fmt.Errorf("failed to update plan: %w", err)
	}

	return plan, nil
}

// CanDeletePlan сообщает, удалим ли план: план с этапами не удаляется.
// Используется клиентом перед показом действия удаления
func (s *Service) CanDeletePlan(ctx context.Context, ownerID, id uuid.UUID) (bool, error) {
	if _, err := s.getOwned(ctx, ownerID, id); err != nil {
		return false, err
	}

	count, err := s.planRepo.CountStages(ctx, id)
	if err != nil {
		return false, fmt.Errorf("failed to count plan stages: %w", err)
	}

	return count == 0, nil
}

// DeletePlan удаляет план. План с этапами не удаляется
func (s *Service) DeletePlan(ctx context.Context, ownerID, id uuid.UUID) error {
	canDelete, err := s.CanDeletePlan(ctx, ownerID, id)
	if err != nil {
		return err
	}
	if !canDelete {
		s.logger.Warn("Plan delete blocked by stages", map[string]interface{}{
			"plan_id": id,
		})
		return domain.ErrPlanHasStages
	}

	if err := s.planRepo.Delete(ctx, id); err != nil {
		return err
	}

	s.logger.Info("Plan deleted", map[string]interface{}{
		"plan_id": id,
	})

	return nil
}

// ListPlans возвращает планы владельца с пагинацией
func (s *Service) ListPlans(ctx context.Context, ownerID uuid.UUID, params domain.PageParams) (*domain.Page, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}

	plans, total, err := s.planRepo.ListByOwner(ctx, ownerID, params.Limit, params.Offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list plans: %w", err)
	}

	return domain.NewPage(params, total, plans), nil
}

func (s *Service) getOwned(ctx context.Context, ownerID, id uuid.UUID) (*domain.MaintenancePlan, error) {
	plan, err := s.planRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if plan.OwnerID != ownerID {
		return nil, domain.ErrPlanNotFound
	}
	return plan, nil
}
