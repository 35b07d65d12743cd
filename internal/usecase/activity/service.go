package activity

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/vkuznets/upkeep/internal/domain"
	"github.com/vkuznets/upkeep/internal/pkg/logger"
	"github.com/vkuznets/upkeep/internal/repository"
)

// CreateActivityRequest - запрос на создание вида работ
type CreateActivityRequest struct {
	OwnerID     uuid.UUID   `json:"-"`
	Name        string      `json:"name" validate:"required"`
	Description string      `json:"description,omitempty"`
	TypeIDs     []uuid.UUID `json:"maintenance_type_ids,omitempty"`
}

// UpdateActivityRequest - запрос на обновление вида работ
type UpdateActivityRequest struct {
	Name        string      `json:"name" validate:"required"`
	Description string      `json:"description,omitempty"`
	TypeIDs     []uuid.UUID `json:"maintenance_type_ids,omitempty"`
}

// Service содержит бизнес-логику видов работ
type Service struct {
	activityRepo repository.ActivityRepository
	typeRepo     repository.MaintenanceTypeRepository
	logger       logger.Logger
}

// NewService создает новый экземпляр ActivityService
func NewService(
	activityRepo repository.ActivityRepository,
	typeRepo repository.MaintenanceTypeRepository,
	logger logger.Logger,
) *Service {
	return &Service{
		activityRepo: activityRepo,
		typeRepo:     typeRepo,
		logger:       logger,
	}
}

// CreateActivity создает вид работ вместе со связями с категориями
func (s *Service) CreateActivity(ctx context.Context, req *CreateActivityRequest) (*domain.Activity, error) {
	a := &domain.Activity{
		OwnerID:     req.OwnerID,
		Name:        req.Name,
		Description: req.Description,
		TypeIDs:     req.TypeIDs,
	}

	if err := a.Validate(); err != nil {
		return nil, err
	}

	if err := s.checkTypes(ctx, req.OwnerID, req.TypeIDs); err != nil {
		return nil, err
	}

	if err := s.activityRepo.Create(ctx, a); err != nil {
		s.logger.Error("Failed to create activity", map[string]interface{}{
			"error": err.Error(),
		})
		return nil, fmt.Errorf("failed to create activity: %w", err)
	}

	s.logger.Info("Activity created", map[string]interface{}{
		"activity_id": a.ID,
	})

	return a, nil
}

// GetActivity возвращает вид работ по ID с проверкой владельца
func (s *Service) GetActivity(ctx context.Context, ownerID, id uuid.UUID) (*domain.Activity, error) {
	a, err := s.activityRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if a.OwnerID != ownerID {
		return nil, domain.ErrActivityNotFound
	}
	return a, nil
}

// UpdateActivity обновляет вид работ и заменяет связи с категориями
func (s *Service) UpdateActivity(ctx context.Context, ownerID, id uuid.UUID, req *UpdateActivityRequest) (*domain.Activity, error) {
	a, err := s.GetActivity(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}

	a.Name = req.Name
	a.Description = req.Description
	a.TypeIDs = req.TypeIDs

	if err := a.Validate(); err != nil {
		return nil, err
	}

	if err := s.checkTypes(ctx, ownerID, req.TypeIDs); err != nil {
		return nil, err
	}

	if err := s.activityRepo.Update(ctx, a); err != nil {
		return nil, fmt.Errorf("failed to update activity: %w", err)
	}

	return a, nil
}

// DeleteActivity удаляет вид работ. Вид работ, на который ссылаются записи
// обслуживания, не удаляется
func (s *Service) DeleteActivity(ctx context.Context, ownerID, id uuid.UUID) error {
	if _, err := s.GetActivity(ctx, ownerID, id); err != nil {
		return err
	}

	if err := s.activityRepo.Delete(ctx, id); err != nil {
		if err == domain.ErrActivityInUse {
			s.logger.Warn("Activity delete blocked by maintenance records", map[string]interface{}{
				"activity_id": id,
			})
		}
		return err
	}

	s.logger.Info("Activity deleted", map[string]interface{}{
		"activity_id": id,
	})

	return nil
}

// ListActivities возвращает виды работ владельца с пагинацией
func (s *Service) ListActivities(ctx context.Context, ownerID uuid.UUID, params domain.PageParams) (*domain.Page, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}

	items, total, err := s.activityRepo.ListByOwner(ctx, ownerID, params.Limit, params.Offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list activities: %w", err)
	}

	return domain.NewPage(params, total, items), nil
}

func (s *Service) checkTypes(ctx context.Context, ownerID uuid.UUID, typeIDs []uuid.UUID) error {
	for _, typeID := range typeIDs {
		mt, err := s.typeRepo.GetByID(ctx, typeID)
		if err != nil {
			return err
		}
		if mt.OwnerID != ownerID {
			return domain.ErrTypeNotFound
		}
	}
	return nil
}
