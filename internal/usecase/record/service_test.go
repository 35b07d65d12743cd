package record

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/vkuznets/upkeep/internal/domain"
	"github.com/vkuznets/upkeep/internal/pkg/logger"
	"github.com/vkuznets/upkeep/internal/repository"
)

// MockRecordRepository - mock репозитория записей обслуживания
type MockRecordRepository struct {
	mock.Mock
}

func (m *MockRecordRepository) CreateWithItems(ctx context.Context, rec *domain.MaintenanceRecord, mileage *domain.MileageRecord) error {
	args := m.Called(ctx, rec, mileage)
	return args.Error(0)
}

func (m *MockRecordRepository) UpdateWithItems(ctx context.Context, rec *domain.MaintenanceRecord, mileage *domain.MileageRecord, removedParts, removedActivities []uuid.UUID) error {
	args := m.Called(ctx, rec, mileage, removedParts, removedActivities)
	return args.Error(0)
}

func (m *MockRecordRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.MaintenanceRecord, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.MaintenanceRecord), args.Error(1)
}

func (m *MockRecordRepository) ListByOwner(ctx context.Context, ownerID uuid.UUID, filter repository.RecordFilter, limit, offset int) ([]*domain.MaintenanceRecord, int, error) {
	args := m.Called(ctx, ownerID, filter, limit, offset)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]*domain.MaintenanceRecord), args.Int(1), args.Error(2)
}

func (m *MockRecordRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockEquipmentRepository - mock репозитория техники
type MockEquipmentRepository struct {
	mock.Mock
}

func (m *MockEquipmentRepository) Create(ctx context.Context, eq *domain.Equipment) error {
	args := m.Called(ctx, eq)
	return args.Error(0)
}

func (m *MockEquipmentRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Equipment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Equipment), args.Error(1)
}

func (m *MockEquipmentRepository) GetByCode(ctx context.Context, ownerID uuid.UUID, code string) (*domain.Equipment, error) {
	args := m.Called(ctx, ownerID, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Equipment), args.Error(1)
}

func (m *MockEquipmentRepository) Update(ctx context.Context, eq *domain.Equipment) error {
	args := m.Called(ctx, eq)
	return args.Error(0)
}

func (m *MockEquipmentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockEquipmentRepository) ListByOwner(ctx context.Context, ownerID uuid.UUID, limit, offset int) ([]*domain.Equipment, int, error) {
	args := m.Called(ctx, ownerID, limit, offset)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]*domain.Equipment), args.Int(1), args.Error(2)
}

func (m *MockEquipmentRepository) ListWithLastRecord(ctx context.Context, ownerID uuid.UUID, filter repository.RecordFilter, limit, offset int) ([]*domain.Equipment, int, error) {
	args := m.Called(ctx, ownerID, filter, limit, offset)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]*domain.Equipment), args.Int(1), args.Error(2)
}

// MockTypeRepository - mock репозитория категорий обслуживания
type MockTypeRepository struct {
	mock.Mock
}

func (m *MockTypeRepository) Create(ctx context.Context, mt *domain.MaintenanceType) error {
	args := m.Called(ctx, mt)
	return args.Error(0)
}

func (m *MockTypeRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.MaintenanceType, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.MaintenanceType), args.Error(1)
}

func (m *MockTypeRepository) Update(ctx context.Context, mt *domain.MaintenanceType, oldPath string, oldLevel int) error {
	args := m.Called(ctx, mt, oldPath, oldLevel)
	return args.Error(0)
}

func (m *MockTypeRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockTypeRepository) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*domain.MaintenanceType, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.MaintenanceType), args.Error(1)
}

func (m *MockTypeRepository) HasChildren(ctx context.Context, id uuid.UUID) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *MockTypeRepository) SiblingExists(ctx context.Context, ownerID uuid.UUID, parentID *uuid.UUID, name string, excludeID uuid.UUID) (bool, error) {
	args := m.Called(ctx, ownerID, parentID, name, excludeID)
	return args.Bool(0), args.Error(1)
}

// MockMileageRepository - mock репозитория записей пробега
type MockMileageRepository struct {
	mock.Mock
}

func (m *MockMileageRepository) Create(ctx context.Context, mr *domain.MileageRecord) error {
	args := m.Called(ctx, mr)
	return args.Error(0)
}

func (m *MockMileageRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.MileageRecord, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.MileageRecord), args.Error(1)
}

func (m *MockMileageRepository) GetByEquipmentAndDate(ctx context.Context, equipmentID uuid.UUID, date string) (*domain.MileageRecord, error) {
	args := m.Called(ctx, equipmentID, date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.MileageRecord), args.Error(1)
}

func (m *MockMileageRepository) Update(ctx context.Context, mr *domain.MileageRecord) error {
	args := m.Called(ctx, mr)
	return args.Error(0)
}

func (m *MockMileageRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockMileageRepository) ListByEquipment(ctx context.Context, equipmentID uuid.UUID, limit, offset int) ([]*domain.MileageRecord, int, error) {
	args := m.Called(ctx, equipmentID, limit, offset)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]*domain.MileageRecord), args.Int(1), args.Error(2)
}

type recordServiceMocks struct {
	recordRepo    *MockRecordRepository
	equipmentRepo *MockEquipmentRepository
	typeRepo      *MockTypeRepository
	mileageRepo   *MockMileageRepository
}

func newRecordService() (*Service, *recordServiceMocks) {
	m := &recordServiceMocks{
		recordRepo:    new(MockRecordRepository),
		equipmentRepo: new(MockEquipmentRepository),
		typeRepo:      new(MockTypeRepository),
		mileageRepo:   new(MockMileageRepository),
	}
	svc := NewService(m.recordRepo, m.equipmentRepo, m.typeRepo, m.mileageRepo, logger.NewNoop())
	return svc, m
}

// TestService_CreateRecord тестирует создание составной записи
func TestService_CreateRecord(t *testing.T) {
	ownerID := uuid.New()
	equipmentID := uuid.New()
	typeID := uuid.New()
	startedAt := time.Date(2026, 8, 20, 10, 0, 0, 0, time.UTC)

	eq := &domain.Equipment{ID: equipmentID, OwnerID: ownerID}
	mt := &domain.MaintenanceType{ID: typeID, OwnerID: ownerID, Type: "Engine", Path: "Engine"}

	t.Run("без пробега запись пробега не создается", func(t *testing.T) {
		svc, m := newRecordService()

		m.equipmentRepo.On("GetByID", mock.Anything, equipmentID).Return(eq, nil)
		m.typeRepo.On("GetByID", mock.Anything, typeID).Return(mt, nil)
		m.recordRepo.On("CreateWithItems", mock.Anything, mock.AnythingOfType("*domain.MaintenanceRecord"), (*domain.MileageRecord)(nil)).
			Return(nil)

		rec, err := svc.CreateRecord(context.Background(), &CreateRecordRequest{
			OwnerID:     ownerID,
			EquipmentID: equipmentID,
			TypeID:      typeID,
			StartedAt:   startedAt,
		})

		assert.NoError(t, err)
		// Дефолты статуса и приоритета
		assert.Equal(t, domain.StatusScheduled, rec.Status)
		assert.Equal(t, domain.PriorityMedium, rec.Priority)
		m.recordRepo.AssertExpectations(t)
	})

	t.Run("пробег на новую дату создает новую запись пробега", func(t *testing.T) {
		svc, m := newRecordService()

		km := 54300
		m.equipmentRepo.On("GetByID", mock.Anything, equipmentID).Return(eq, nil)
		m.typeRepo.On("GetByID", mock.Anything, typeID).Return(mt, nil)
		m.mileageRepo.On("GetByEquipmentAndDate", mock.Anything, equipmentID, "2026-08-20").
			Return(nil, domain.ErrMileageNotFound)
		m.recordRepo.On("CreateWithItems", mock.Anything, mock.AnythingOfType("*domain.MaintenanceRecord"), mock.AnythingOfType("*domain.MileageRecord")).
			Run(func(args mock.Arguments) {
				mileage := args.Get(2).(*domain.MileageRecord)
				assert.Equal(t, uuid.Nil, mileage.ID)
				assert.Equal(t, km, mileage.Kilometers)
			}).
			Return(nil)

		_, err := svc.CreateRecord(context.Background(), &CreateRecordRequest{
			OwnerID:     ownerID,
			EquipmentID: equipmentID,
			TypeID:      typeID,
			StartedAt:   startedAt,
			Kilometers:  &km,
		})

		assert.NoError(t, err)
		m.recordRepo.AssertExpectations(t)
	})

	t.Run("пробег на дату с существующей записью обновляет ее", func(t *testing.T) {
		svc, m := newRecordService()

		km := 54300
		existing := &domain.MileageRecord{
			ID:          uuid.New(),
			OwnerID:     ownerID,
			EquipmentID: equipmentID,
			RecordDate:  startedAt,
			Kilometers:  50000,
		}

		m.equipmentRepo.On("GetByID", mock.Anything, equipmentID).Return(eq, nil)
		m.typeRepo.On("GetByID", mock.Anything, typeID).Return(mt, nil)
		m.mileageRepo.On("GetByEquipmentAndDate", mock.Anything, equipmentID, "2026-08-20").
			Return(existing, nil)
		m.recordRepo.On("CreateWithItems", mock.Anything, mock.AnythingOfType("*domain.MaintenanceRecord"), mock.AnythingOfType("*domain.MileageRecord")).
			Run(func(args mock.Arguments) {
				mileage := args.Get(2).(*domain.MileageRecord)
				assert.Equal(t, existing.ID, mileage.ID)
				assert.Equal(t, km, mileage.Kilometers)
			}).
			Return(nil)

		_, err := svc.CreateRecord(context.Background(), &CreateRecordRequest{
			OwnerID:     ownerID,
			EquipmentID: equipmentID,
			TypeID:      typeID,
			StartedAt:   startedAt,
			Kilometers:  &km,
		})

		assert.NoError(t, err)
		m.recordRepo.AssertExpectations(t)
	})

	t.Run("окончание раньше начала отклоняется", func(t *testing.T) {
		svc, m := newRecordService()

		endedAt := startedAt.Add(-24 * time.Hour)
		m.equipmentRepo.On("GetByID", mock.Anything, equipmentID).Return(eq, nil)
		m.typeRepo.On("GetByID", mock.Anything, typeID).Return(mt, nil)

		_, err := svc.CreateRecord(context.Background(), &CreateRecordRequest{
			OwnerID:     ownerID,
			EquipmentID: equipmentID,
			TypeID:      typeID,
			StartedAt:   startedAt,
			EndedAt:     &endedAt,
		})

		assert.ErrorIs(t, err, domain.ErrInvalidDateRange)
		m.recordRepo.AssertNotCalled(t, "CreateWithItems", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("чужая техника недоступна", func(t *testing.T) {
		svc, m := newRecordService()

		foreign := &domain.Equipment{ID: equipmentID, OwnerID: uuid.New()}
		m.equipmentRepo.On("GetByID", mock.Anything, equipmentID).Return(foreign, nil)

		_, err := svc.CreateRecord(context.Background(), &CreateRecordRequest{
			OwnerID:     ownerID,
			EquipmentID: equipmentID,
			TypeID:      typeID,
			StartedAt:   startedAt,
		})

		assert.ErrorIs(t, err, domain.ErrEquipmentNotFound)
	})
}

// TestService_UpdateRecord тестирует полную замену строк запчастей и работ
func TestService_UpdateRecord(t *testing.T) {
	ownerID := uuid.New()
	equipmentID := uuid.New()
	typeID := uuid.New()
	recordID := uuid.New()
	startedAt := time.Date(2026, 8, 20, 10, 0, 0, 0, time.UTC)

	eq := &domain.Equipment{ID: equipmentID, OwnerID: ownerID}
	mt := &domain.MaintenanceType{ID: typeID, OwnerID: ownerID, Type: "Engine", Path: "Engine"}

	t.Run("отсутствующие в запросе строки удаляются", func(t *testing.T) {
		svc, m := newRecordService()

		keptPart := &domain.MaintenanceSparePart{ID: uuid.New(), RecordID: recordID, SparePartID: uuid.New(), Quantity: 1}
		droppedPart := &domain.MaintenanceSparePart{ID: uuid.New(), RecordID: recordID, SparePartID: uuid.New(), Quantity: 2}
		droppedActivity := &domain.MaintenanceActivity{ID: uuid.New(), RecordID: recordID, ActivityID: uuid.New()}

		existing := &domain.MaintenanceRecord{
			ID:          recordID,
			OwnerID:     ownerID,
			EquipmentID: equipmentID,
			TypeID:      typeID,
			StartedAt:   startedAt,
			Status:      domain.StatusScheduled,
			Priority:    domain.PriorityMedium,
			SpareParts:  []*domain.MaintenanceSparePart{keptPart, droppedPart},
			Activities:  []*domain.MaintenanceActivity{droppedActivity},
		}

		m.recordRepo.On("GetByID", mock.Anything, recordID).Return(existing, nil)
		m.equipmentRepo.On("GetByID", mock.Anything, equipmentID).Return(eq, nil)
		m.typeRepo.On("GetByID", mock.Anything, typeID).Return(mt, nil)
		m.recordRepo.On("UpdateWithItems", mock.Anything, mock.AnythingOfType("*domain.MaintenanceRecord"), (*domain.MileageRecord)(nil),
			[]uuid.UUID{droppedPart.ID}, []uuid.UUID{droppedActivity.ID}).
			Return(nil)

		rec, err := svc.UpdateRecord(context.Background(), ownerID, recordID, &UpdateRecordRequest{
			EquipmentID: equipmentID,
			TypeID:      typeID,
			StartedAt:   startedAt,
			Status:      domain.StatusCompleted,
			Priority:    domain.PriorityHigh,
			SpareParts: []SparePartLine{
				{ID: &keptPart.ID, SparePartID: keptPart.SparePartID, Quantity: 3},
			},
		})

		assert.NoError(t, err)
		assert.Equal(t, domain.StatusCompleted, rec.Status)
		assert.Len(t, rec.SpareParts, 1)
		m.recordRepo.AssertExpectations(t)
	})

	t.Run("чужая запись недоступна", func(t *testing.T) {
		svc, m := newRecordService()

		foreign := &domain.MaintenanceRecord{ID: recordID, OwnerID: uuid.New()}
		m.recordRepo.On("GetByID", mock.Anything, recordID).Return(foreign, nil)

		_, err := svc.UpdateRecord(context.Background(), ownerID, recordID, &UpdateRecordRequest{
			EquipmentID: equipmentID,
			TypeID:      typeID,
			StartedAt:   startedAt,
		})

		assert.ErrorIs(t, err, domain.ErrRecordNotFound)
	})
}

// TestService_ListRecords тестирует валидацию фильтров списка
func TestService_ListRecords(t *testing.T) {
	ownerID := uuid.New()

	t.Run("неизвестный статус отклоняется", func(t *testing.T) {
		svc, _ := newRecordService()

		_, err := svc.ListRecords(context.Background(), ownerID, ListFilter{
			Statuses: []domain.RecordStatus{"unknown"},
		}, domain.PageParams{Limit: 10})

		assert.ErrorIs(t, err, domain.ErrInvalidStatus)
	})

	t.Run("фильтры передаются в репозиторий", func(t *testing.T) {
		svc, m := newRecordService()

		filter := repository.RecordFilter{
			Statuses:   []domain.RecordStatus{domain.StatusScheduled, domain.StatusInProgress},
			Priorities: []domain.RecordPriority{domain.PriorityHigh},
		}
		m.recordRepo.On("ListByOwner", mock.Anything, ownerID, filter, 10, 0).
			Return([]*domain.MaintenanceRecord{}, 0, nil)

		page, err := svc.ListRecords(context.Background(), ownerID, ListFilter{
			Statuses:   filter.Statuses,
			Priorities: filter.Priorities,
		}, domain.PageParams{Limit: 10})

		assert.NoError(t, err)
		assert.Equal(t, 0, page.Total)
		m.recordRepo.AssertExpectations(t)
	})

	t.Run("отрицательная пагинация отклоняется", func(t *testing.T) {
		svc, _ := newRecordService()

		_, err := svc.ListRecords(context.Background(), ownerID, ListFilter{}, domain.PageParams{Limit: -1})

		assert.ErrorIs(t, err, domain.ErrInvalidPagination)
	})
}
