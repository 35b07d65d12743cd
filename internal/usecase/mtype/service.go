package mtype

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/vkuznets/upkeep/internal/domain"
	"github.com/vkuznets/upkeep/internal/pkg/logger"
	"github.com/vkuznets/upkeep/internal/repository"
)

// CreateTypeRequest - запрос на создание категории обслуживания
type CreateTypeRequest struct {
	OwnerID  uuid.UUID  `json:"-"`
	Type     string     `json:"type" validate:"required"`
	ParentID *uuid.UUID `json:"parent_id,omitempty"`
}

// UpdateTypeRequest - запрос на переименование и/или перенос категории
type UpdateTypeRequest struct {
	Type     string     `json:"type" validate:"required"`
	ParentID *uuid.UUID `json:"parent_id,omitempty"`
}

// Service содержит бизнес-логику дерева категорий обслуживания.
// Level и Path узлов - материализованные производные: пересчитываются
// здесь при создании и переносе, вместе со всем поддеревом
type Service struct {
	typeRepo repository.MaintenanceTypeRepository
	logger   logger.Logger
}

// NewService создает новый экземпляр TypeService
func NewService(typeRepo repository.MaintenanceTypeRepository, logger logger.Logger) *Service {
	return &Service{
		typeRepo: typeRepo,
		logger:   logger,
	}
}

// CreateType создает узел дерева категорий
func (s *Service) CreateType(ctx context.Context, req *CreateTypeRequest) (*domain.MaintenanceType, error) {
	mt := &domain.MaintenanceType{
		OwnerID: req.OwnerID,
		Type:    req.Type,
	}

	if err := mt.Validate(); err != nil {
		return nil, err
	}

	var parent *domain.MaintenanceType
	if req.ParentID != nil {
		var err error
		parent, err = s.getOwned(ctx, req.OwnerID, *req.ParentID)
		if err != nil {
			return nil, err
		}
	}

	// Одинаковые имена соседей дали бы узлам один материализованный путь
	taken, err := s.typeRepo.SiblingExists(ctx, req.OwnerID, req.ParentID, req.Type, uuid.Nil)
	if err != nil {
		return nil, fmt.Errorf("failed to check sibling names: %w", err)
	}
	if taken {
		return nil, domain.ErrTypeAlreadyExists
	}

	mt.Rebase(parent)

	if err := s.typeRepo.Create(ctx, mt); err != nil {
		s.logger.Error("Failed to create maintenance type", map[string]interface{}{
			"error": err.Error(),
		})
		return nil, fmt.Errorf("failed to create maintenance type: %w", err)
	}

	s.logger.Info("Maintenance type created", map[string]interface{}{
		"type_id": mt.ID,
		"path":    mt.Path,
	})

	return mt, nil
}

// GetType возвращает узел по ID с проверкой владельца
func (s *Service) GetType(ctx context.Context, ownerID, id uuid.UUID) (*domain.MaintenanceType, error) {
	return s.getOwned(ctx, ownerID, id)
}

// UpdateType переименовывает узел и/или переносит его под нового родителя.
// Перенос узла под собственного потомка запрещен. Level и Path всего
// поддерева переписываются в одной транзакции
func (s *Service) UpdateType(ctx context.Context, ownerID, id uuid.UUID, req *UpdateTypeRequest) (*domain.MaintenanceType, error) {
	mt, err := s.getOwned(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}

	oldPath := mt.Path
	oldLevel := mt.Level

	var parent *domain.MaintenanceType
	if req.ParentID != nil {
		parent, err = s.getOwned(ctx, ownerID, *req.ParentID)
		if err != nil {
			return nil, err
		}

		// Полная проверка цикла по материализованным путям: новый родитель
		// не может быть самим узлом или его потомком
		if parent.IsDescendantOf(mt) {
			s.logger.Warn("Type move rejected: cycle", map[string]interface{}{
				"type_id":   id,
				"parent_id": parent.ID,
			})
			return nil, domain.ErrTypeCycle
		}
	}

	mt.Type = req.Type
	if err := mt.Validate(); err != nil {
		return nil, err
	}

	taken, err := s.typeRepo.SiblingExists(ctx, ownerID, req.ParentID, req.Type, mt.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to check sibling names: %w", err)
	}
	if taken {
		return nil, domain.ErrTypeAlreadyExists
	}

	mt.Rebase(parent)

	if err := s.typeRepo.Update(ctx, mt, oldPath, oldLevel); err != nil {
		return nil, fmt.Errorf("failed to update maintenance type: %w", err)
	}

	s.logger.Info("Maintenance type updated", map[string]interface{}{
		"type_id":  mt.ID,
		"old_path": oldPath,
		"new_path": mt.Path,
	})

	return mt, nil
}

// DeleteType удаляет узел. Узел с дочерними категориями не удаляется
func (s *Service) DeleteType(ctx context.Context, ownerID, id uuid.UUID) error {
	if _, err := s.getOwned(ctx, ownerID, id); err != nil {
		return err
	}

	hasChildren, err := s.typeRepo.HasChildren(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to check type children: %w", err)
	}
	if hasChildren {
		return domain.ErrTypeHasChildren
	}

	if err := s.typeRepo.Delete(ctx, id); err != nil {
		return err
	}

	s.logger.Info("Maintenance type deleted", map[string]interface{}{
		"type_id": id,
	})

	return nil
}

// ListTypes возвращает все узлы владельца в порядке path.
// Порядок path дает обход дерева сверху вниз
func (s *Service) ListTypes(ctx context.Context, ownerID uuid.UUID) ([]*domain.MaintenanceType, error) {
	return s.typeRepo.ListByOwner(ctx, ownerID)
}

func (s *Service) getOwned(ctx context.Context, ownerID, id uuid.UUID) (*domain.MaintenanceType, error) {
	mt, err := s.typeRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if mt.OwnerID != ownerID {
		return nil, domain.ErrTypeNotFound
	}
	return mt, nil
}
