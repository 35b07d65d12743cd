package cached

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	redisv9 "github.com/redis/go-redis/v9"
	"github.com/vkuznets/upkeep/internal/domain"
	"github.com/vkuznets/upkeep/internal/pkg/redis"
	"github.com/vkuznets/upkeep/internal/repository"
)

const (
	typeTreeCachePrefix = "type-tree:"
	typeTreeCacheTTL    = 1 * time.Hour
)

// MaintenanceTypeRepository добавляет кэширование дерева категорий.
// Кэшируется полный список узлов владельца; любая мутация инвалидирует
// кэш этого владельца
type MaintenanceTypeRepository struct {
	repo  repository.MaintenanceTypeRepository
	cache *redis.Client
}

// NewMaintenanceTypeRepository создает новый кэшируемый repository дерева категорий
func NewMaintenanceTypeRepository(repo repository.MaintenanceTypeRepository, cache *redis.Client) *MaintenanceTypeRepository {
	return &MaintenanceTypeRepository{
		repo:  repo,
		cache: cache,
	}
}

// ListByOwner возвращает дерево владельца (с кэшированием)
func (r *MaintenanceTypeRepository) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*domain.MaintenanceType, error) {
	cacheKey := typeTreeCachePrefix + ownerID.String()

	// 1. Проверяем кэш
	cachedVal, err := r.cache.Get(ctx, cacheKey)
	if err == nil {
		var types []*domain.MaintenanceType
		if jsonErr := json.Unmarshal([]byte(cachedVal), &types); jsonErr == nil {
			return types, nil
		}
		// Нечитаемое значение в кэше - сбрасываем и идем в БД
		_ = r.cache.Del(ctx, cacheKey)
	} else if err != redisv9.Nil {
		// Ошибка кэша не фатальна - продолжаем работу с БД
	}

	// 2. Cache miss - идем в БД
	types, err := r.repo.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	// 3. Сохраняем результат в кэш, ошибку записи игнорируем
	if data, jsonErr := json.Marshal(types); jsonErr == nil {
		_ = r.cache.Set(ctx, cacheKey, string(data), typeTreeCacheTTL)
	}

	return types, nil
}

// Create создает узел и инвалидирует кэш владельца
func (r *MaintenanceTypeRepository) Create(ctx context.Context, mt *domain.MaintenanceType) error {
	if err := r.repo.Create(ctx, mt); err != nil {
		return err
	}
	r.invalidate(ctx, mt.OwnerID)
	return nil
}

// Update обновляет узел (вместе с поддеревом) и инвалидирует кэш владельца
func (r *MaintenanceTypeRepository) Update(ctx context.Context, mt *domain.MaintenanceType, oldPath string, oldLevel int) error {
	if err := r.repo.Update(ctx, mt, oldPath, oldLevel); err != nil {
		return err
	}
	r.invalidate(ctx, mt.OwnerID)
	return nil
}

// Delete удаляет узел и инвалидирует кэш владельца
func (r *MaintenanceTypeRepository) Delete(ctx context.Context, id uuid.UUID) error {
	// Владельца нужно знать до удаления строки
	mt, err := r.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := r.repo.Delete(ctx, id); err != nil {
		return err
	}
	r.invalidate(ctx, mt.OwnerID)
	return nil
}

// GetByID возвращает узел по ID (без кэширования - точечные чтения редки)
func (r *MaintenanceTypeRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.MaintenanceType, error) {
	return r.repo.GetByID(ctx, id)
}

// HasChildren проверяет наличие дочерних узлов
func (r *MaintenanceTypeRepository) HasChildren(ctx context.Context, id uuid.UUID) (bool, error) {
	return r.repo.HasChildren(ctx, id)
}

// SiblingExists проверяет занятость имени среди соседей узла
func (r *MaintenanceTypeRepository) SiblingExists(ctx context.Context, ownerID uuid.UUID, parentID *uuid.UUID, name string, excludeID uuid.UUID) (bool, error) {
	return r.repo.SiblingExists(ctx, ownerID, parentID, name, excludeID)
}

func (r *MaintenanceTypeRepository) invalidate(ctx context.Context, ownerID uuid.UUID) {
	_ = r.cache.Del(ctx, typeTreeCachePrefix+ownerID.String())
}
