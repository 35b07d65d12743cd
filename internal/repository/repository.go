package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/vkuznets/upkeep/internal/domain"
)

// RecordFilter - фильтры списка техники с записями обслуживания
// Значения внутри каждой оси объединяются через OR, оси между собой - через AND
type RecordFilter struct {
	Statuses   []domain.RecordStatus
	Priorities []domain.RecordPriority
}

// UserRepository определяет методы для работы с пользователями
type UserRepository interface {
	// Create создает нового пользователя
	Create(ctx context.Context, user *domain.User) error

	// GetByID возвращает пользователя по ID
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)

	// GetByEmail возвращает пользователя по email
	GetByEmail(ctx context.Context, email string) (*domain.User, error)

	// Update обновляет данные пользователя
	Update(ctx context.Context, user *domain.User) error

	// Delete удаляет пользователя (мягкое удаление - is_active = false)
	Delete(ctx context.Context, id uuid.UUID) error

	// List возвращает список пользователей с пагинацией
	List(ctx context.Context, limit, offset int) ([]*domain.User, int, error)

	// UpdateLastLogin обновляет время последнего входа
	UpdateLastLogin(ctx context.Context, id uuid.UUID) error
}

// RefreshTokenRepository определяет методы для работы с refresh токенами
type RefreshTokenRepository interface {
	// Create сохраняет новый refresh token
	Create(ctx context.Context, token *domain.RefreshToken) error

	// GetByTokenHash возвращает refresh token по хешу
	GetByTokenHash(ctx context.Context, tokenHash string) (*domain.RefreshToken, error)

	// Revoke отзывает refresh token
	Revoke(ctx context.Context, tokenHash string) error

	// RevokeAllUserTokens отзывает все токены пользователя
	RevokeAllUserTokens(ctx context.Context, userID uuid.UUID) error

	// DeleteExpired удаляет истекшие токены
	DeleteExpired(ctx context.Context) error
}

// EquipmentRepository определяет методы для работы с техникой
type EquipmentRepository interface {
	// Create создает новую единицу техники
	Create(ctx context.Context, eq *domain.Equipment) error

	// GetByID возвращает технику по ID
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Equipment, error)

	// GetByCode возвращает технику владельца по инвентарному коду
	GetByCode(ctx context.Context, ownerID uuid.UUID, code string) (*domain.Equipment, error)

	// Update обновляет данные техники
	Update(ctx context.Context, eq *domain.Equipment) error

	// Delete удаляет технику; блокируется ссылками из записей обслуживания
	Delete(ctx context.Context, id uuid.UUID) error

	// ListByOwner возвращает технику владельца с пагинацией и общим числом строк
	ListByOwner(ctx context.Context, ownerID uuid.UUID, limit, offset int) ([]*domain.Equipment, int, error)

	// ListWithLastRecord возвращает технику владельца вместе с последней записью
	// обслуживания, отфильтрованную по статусам/приоритетам этой записи
	ListWithLastRecord(ctx context.Context, ownerID uuid.UUID, filter RecordFilter, limit, offset int) ([]*domain.Equipment, int, error)
}

// MaintenancePlanRepository определяет методы для работы с планами обслуживания
type MaintenancePlanRepository interface {
	// Create создает новый план
	Create(ctx context.Context, plan *domain.MaintenancePlan) error

	// GetByID возвращает план по ID (без этапов)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.MaintenancePlan, error)

	// Update обновляет данные плана
	Update(ctx context.Context, plan *domain.MaintenancePlan) error

	// Delete удаляет план
	Delete(ctx context.Context, id uuid.UUID) error

	// ListByOwner возвращает планы владельца с пагинацией
	ListByOwner(ctx context.Context, ownerID uuid.UUID, limit, offset int) ([]*domain.MaintenancePlan, int, error)

	// CountStages возвращает число этапов плана (проверка can-delete)
	CountStages(ctx context.Context, planID uuid.UUID) (int, error)
}

// MaintenanceStageRepository определяет методы для работы с этапами планов
type MaintenanceStageRepository interface {
	// Create создает этап и, если передан порядок, переиндексирует план
	// в той же транзакции
	Create(ctx context.Context, stage *domain.MaintenanceStage, orderedIDs []uuid.UUID) error

	// GetByID возвращает этап по ID
	GetByID(ctx context.Context, id uuid.UUID) (*domain.MaintenanceStage, error)

	// Update обновляет этап и, если передан порядок, переиндексирует план
	// в той же транзакции
	Update(ctx context.Context, stage *domain.MaintenanceStage, orderedIDs []uuid.UUID) error

	// Delete удаляет этап и уплотняет индексы оставшихся этапов плана
	Delete(ctx context.Context, id uuid.UUID) error

	// ListByPlan возвращает все этапы плана в порядке stage_index
	ListByPlan(ctx context.Context, planID uuid.UUID) ([]*domain.MaintenanceStage, error)

	// Reindex присваивает этапам плана stage_index = позиция+1 в порядке
	// переданного списка ID одной логической операцией
	Reindex(ctx context.Context, planID uuid.UUID, orderedIDs []uuid.UUID) error
}

// MaintenanceTypeRepository определяет методы для работы с деревом категорий
type MaintenanceTypeRepository interface {
	// Create создает узел дерева
	Create(ctx context.Context, mt *domain.MaintenanceType) error

	// GetByID возвращает узел по ID
	GetByID(ctx context.Context, id uuid.UUID) (*domain.MaintenanceType, error)

	// Update обновляет узел и переписывает level/path всего его поддерева
	// в одной транзакции
	Update(ctx context.Context, mt *domain.MaintenanceType, oldPath string, oldLevel int) error

	// Delete удаляет узел
	Delete(ctx context.Context, id uuid.UUID) error

	// ListByOwner возвращает все узлы владельца в порядке path
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*domain.MaintenanceType, error)

	// HasChildren проверяет наличие дочерних узлов
	HasChildren(ctx context.Context, id uuid.UUID) (bool, error)

	// SiblingExists проверяет наличие у владельца другого узла с тем же
	// именем под тем же родителем (parentID == nil - среди корней).
	// excludeID исключает сам узел при переименовании
	SiblingExists(ctx context.Context, ownerID uuid.UUID, parentID *uuid.UUID, name string, excludeID uuid.UUID) (bool, error)
}

// MaintenanceRecordRepository определяет методы для работы с записями обслуживания
type MaintenanceRecordRepository interface {
	// CreateWithItems создает запись вместе с записью пробега и строками
	// запчастей/работ одной транзакцией. mileage может быть nil
	CreateWithItems(ctx context.Context, rec *domain.MaintenanceRecord, mileage *domain.MileageRecord) error

	// UpdateWithItems обновляет запись, запись пробега и строки одной
	// транзакцией: removedParts/removedActivities удаляются, строки из
	// rec вставляются или обновляются
	UpdateWithItems(ctx context.Context, rec *domain.MaintenanceRecord, mileage *domain.MileageRecord, removedParts, removedActivities []uuid.UUID) error

	// GetByID возвращает запись вместе со строками запчастей и работ
	GetByID(ctx context.Context, id uuid.UUID) (*domain.MaintenanceRecord, error)

	// ListByOwner возвращает записи владельца с фильтрами и пагинацией
	ListByOwner(ctx context.Context, ownerID uuid.UUID, filter RecordFilter, limit, offset int) ([]*domain.MaintenanceRecord, int, error)

	// Delete удаляет запись вместе со строками
	Delete(ctx context.Context, id uuid.UUID) error
}

// MileageRecordRepository определяет методы для работы с записями пробега
type MileageRecordRepository interface {
	// Create создает запись пробега
	Create(ctx context.Context, m *domain.MileageRecord) error

	// GetByID возвращает запись пробега по ID
	GetByID(ctx context.Context, id uuid.UUID) (*domain.MileageRecord, error)

	// GetByEquipmentAndDate возвращает запись пробега техники на дату
	GetByEquipmentAndDate(ctx context.Context, equipmentID uuid.UUID, date string) (*domain.MileageRecord, error)

	// Update обновляет запись пробега
	Update(ctx context.Context, m *domain.MileageRecord) error

	// Delete удаляет запись пробега
	Delete(ctx context.Context, id uuid.UUID) error

	// ListByEquipment возвращает записи пробега техники с пагинацией
	ListByEquipment(ctx context.Context, equipmentID uuid.UUID, limit, offset int) ([]*domain.MileageRecord, int, error)
}

// ActivityRepository определяет методы для работы с видами работ
type ActivityRepository interface {
	// Create создает вид работ вместе со связями с категориями
	Create(ctx context.Context, a *domain.Activity) error

	// GetByID возвращает вид работ по ID
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Activity, error)

	// Update обновляет вид работ и заменяет связи с категориями
	Update(ctx context.Context, a *domain.Activity) error

	// Delete удаляет вид работ; блокируется ссылками из записей обслуживания
	Delete(ctx context.Context, id uuid.UUID) error

	// ListByOwner возвращает виды работ владельца с пагинацией
	ListByOwner(ctx context.Context, ownerID uuid.UUID, limit, offset int) ([]*domain.Activity, int, error)
}

// SparePartRepository определяет методы для работы со справочником запчастей
type SparePartRepository interface {
	// Create создает запчасть
	Create(ctx context.Context, p *domain.SparePart) error

	// GetByID возвращает запчасть по ID
	GetByID(ctx context.Context, id uuid.UUID) (*domain.SparePart, error)

	// GetByFactoryCode возвращает запчасть владельца по заводскому коду
	GetByFactoryCode(ctx context.Context, ownerID uuid.UUID, factoryCode string) (*domain.SparePart, error)

	// Update обновляет запчасть
	Update(ctx context.Context, p *domain.SparePart) error

	// Delete удаляет запчасть; блокируется ссылками из записей обслуживания
	Delete(ctx context.Context, id uuid.UUID) error

	// ListByOwner возвращает запчасти владельца с пагинацией
	ListByOwner(ctx context.Context, ownerID uuid.UUID, limit, offset int) ([]*domain.SparePart, int, error)
}
