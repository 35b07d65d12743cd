package sparepart

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/vkuznets/upkeep/internal/domain"
	"github.com/vkuznets/upkeep/internal/pkg/logger"
	"github.com/vkuznets/upkeep/internal/repository"
)

// CreateSparePartRequest - запрос на создание запчасти
type CreateSparePartRequest struct {
	OwnerID     uuid.UUID `json:"-"`
	FactoryCode string    `json:"factory_code" validate:"required"`
	Name        string    `json:"name" validate:"required"`
	Description string    `json:"description,omitempty"`
	Price       float64   `json:"price"`
}

// UpdateSparePartRequest - запрос на обновление запчасти
type UpdateSparePartRequest struct {
	FactoryCode string  `json:"factory_code" validate:"required"`
	Name        string  `json:"name" validate:"required"`
	Description string  `json:"description,omitempty"`
	Price       float64 `json:"price"`
}

// Service содержит бизнес-логику справочника запчастей
type Service struct {
	partRepo repository.SparePartRepository
	logger   logger.Logger
}

// NewService создает новый экземпляр SparePartService
func NewService(partRepo repository.SparePartRepository, logger logger.Logger) *Service {
	return &Service{
		partRepo: partRepo,
		logger:   logger,
	}
}

// CreateSparePart создает запчасть в справочнике владельца
func (s *Service) CreateSparePart(ctx context.Context, req *CreateSparePartRequest) (*domain.SparePart, error) {
	p := &domain.SparePart{
		OwnerID:     req.OwnerID,
		FactoryCode: req.FactoryCode,
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
	}

	// Validate нормализует заводской код
	if err := p.Validate(); err != nil {
		return nil, err
	}

	existing, err := s.partRepo.GetByFactoryCode(ctx, req.OwnerID, p.FactoryCode)
	if err != nil && err != domain.ErrSparePartNotFound {
		return nil, fmt.Errorf("failed to check existing spare part: %w", err)
	}
	if existing != nil {
		s.logger.Warn("Spare part factory code already taken", map[string]interface{}{
			"owner_id":     req.OwnerID,
			"factory_code": p.FactoryCode,
		})
		return nil, domain.ErrSparePartAlreadyExists
	}

	if err := s.partRepo.Create(ctx, p); err != nil {
		s.logger.Error("Failed to create spare part", map[string]interface{}{
			"error": err.Error(),
		})
		return nil, fmt.Errorf("failed to create spare part: %w", err)
	}

	s.logger.Info("Spare part created", map[string]interface{}{
		"spare_part_id": p.ID,
	})

	return p, nil
}

// GetSparePart возвращает запчасть по ID с проверкой владельца
func (s *Service) GetSparePart(ctx context.Context, ownerID, id uuid.UUID) (*domain.SparePart, error) {
	p, err := s.partRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.OwnerID != ownerID {
		return nil, domain.ErrSparePartNotFound
	}
	return p, nil
}

// UpdateSparePart обновляет запчасть
func (s *Service) UpdateSparePart(ctx context.Context, ownerID, id uuid.UUID, req *UpdateSparePartRequest) (*domain.SparePart, error) {
	p, err := s.GetSparePart(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}

	p.FactoryCode = req.FactoryCode
	p.Name = req.Name
	p.Description = req.Description
	p.Price = req.Price

	if err := p.Validate(); err != nil {
		return nil, err
	}

	existing, err := s.partRepo.GetByFactoryCode(ctx, ownerID, p.FactoryCode)
	if err != nil && err != domain.ErrSparePartNotFound {
		return nil, fmt.Errorf("failed to check existing spare part: %w", err)
	}
	if existing != nil && existing.ID != p.ID {
		return nil, domain.ErrSparePartAlreadyExists
	}

	if err := s.partRepo.Update(ctx, p); err != nil {
		return nil, fmt.Errorf("failed to update spare part: %w", err)
	}

	return p, nil
}

// DeleteSparePart удаляет запчасть. Запчасть, на которую ссылаются записи
// обслуживания, не удаляется
func (s *Service) DeleteSparePart(ctx context.Context, ownerID, id uuid.UUID) error {
	if _, err := s.GetSparePart(ctx, ownerID, id); err != nil {
		return err
	}

	if err := s.partRepo.Delete(ctx, id); err != nil {
		if err == domain.ErrSparePartInUse {
			s.logger.Warn("Spare part delete blocked by maintenance records", map[string]interface{}{
				"spare_part_id": id,
			})
		}
		return err
	}

	s.logger.Info("Spare part deleted", map[string]interface{}{
		"spare_part_id": id,
	})

	return nil
}

// ListSpareParts возвращает запчасти владельца с пагинацией
func (s *Service) ListSpareParts(ctx context.Context, ownerID uuid.UUID, params domain.PageParams) (*domain.Page, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}

	parts, total, err := s.partRepo.ListByOwner(ctx, ownerID, params.Limit, params.Offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list spare parts: %w", err)
	}

	return domain.NewPage(params, total, parts), nil
}
