package stage

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/vkuznets/upkeep/internal/domain"
	"github.com/vkuznets/upkeep/internal/pkg/logger"
)

// MockStageRepository - mock репозитория этапов
type MockStageRepository struct {
	mock.Mock
}

func (m *MockStageRepository) Create(ctx context.Context, stage *domain.MaintenanceStage, orderedIDs []uuid.UUID) error {
	args := m.Called(ctx, stage, orderedIDs)
	return args.Error(0)
}

func (m *MockStageRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.MaintenanceStage, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.MaintenanceStage), args.Error(1)
}

func (m *MockStageRepository) Update(ctx context.Context, stage *domain.MaintenanceStage, orderedIDs []uuid.UUID) error {
	args := m.Called(ctx, stage, orderedIDs)
	return args.Error(0)
}

func (m *MockStageRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockStageRepository) ListByPlan(ctx context.Context, planID uuid.UUID) ([]*domain.MaintenanceStage, error) {
	args := m.Called(ctx, planID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.MaintenanceStage), args.Error(1)
}

func (m *MockStageRepository) Reindex(ctx context.Context, planID uuid.UUID, orderedIDs []uuid.UUID) error {
	args := m.Called(ctx, planID, orderedIDs)
	return args.Error(0)
}

// MockPlanRepository - mock репозитория планов
type MockPlanRepository struct {
	mock.Mock
}

func (m *MockPlanRepository) Create(ctx context.Context, plan *domain.MaintenancePlan) error {
	args := m.Called(ctx, plan)
	return args.Error(0)
}

func (m *MockPlanRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.MaintenancePlan, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.MaintenancePlan), args.Error(1)
}

func (m *MockPlanRepository) Update(ctx context.Context, plan *domain.MaintenancePlan) error {
	args := m.Called(ctx, plan)
	return args.Error(0)
}

func (m *MockPlanRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockPlanRepository) ListByOwner(ctx context.Context, ownerID uuid.UUID, limit, offset int) ([]*domain.MaintenancePlan, int, error) {
	args := m.Called(ctx, ownerID, limit, offset)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]*domain.MaintenancePlan), args.Int(1), args.Error(2)
}

func (m *MockPlanRepository) CountStages(ctx context.Context, planID uuid.UUID) (int, error) {
	args := m.Called(ctx, planID)
	return args.Int(0), args.Error(1)
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

type stageServiceMocks struct {
	stageRepo *MockStageRepository
	planRepo  *MockPlanRepository
	typeRepo  *MockTypeRepository
}

func newStageService() (*Service, *stageServiceMocks) {
	m := &stageServiceMocks{
		stageRepo: new(MockStageRepository),
		planRepo:  new(MockPlanRepository),
		typeRepo:  new(MockTypeRepository),
	}
	svc := NewService(m.stageRepo, m.planRepo, m.typeRepo, logger.NewNoop())
	return svc, m
}

func planStage(planID uuid.UUID, km, days, index int) *domain.MaintenanceStage {
	return &domain.MaintenanceStage{
		ID:         uuid.New(),
		PlanID:     planID,
		TypeID:     uuid.New(),
		Kilometers: km,
		Days:       days,
		StageIndex: index,
	}
}

// TestService_CreateStage тестирует создание этапа с выводом stage_index
func TestService_CreateStage(t *testing.T) {
	ownerID := uuid.New()
	planID := uuid.New()
	typeID := uuid.New()

	plan := &domain.MaintenancePlan{ID: planID, OwnerID: ownerID}
	mt := &domain.MaintenanceType{ID: typeID, OwnerID: ownerID, Type: "Engine", Path: "Engine"}

	t.Run("вставка между существующими этапами сдвигает порядок", func(t *testing.T) {
		svc, m := newStageService()

		a := planStage(planID, 10000, 180, 1)
		b := planStage(planID, 30000, 540, 2)

		m.planRepo.On("GetByID", mock.Anything, planID).Return(plan, nil)
		m.typeRepo.On("GetByID", mock.Anything, typeID).Return(mt, nil)
		m.stageRepo.On("ListByPlan", mock.Anything, planID).
			Return([]*domain.MaintenanceStage{a, b}, nil)
		m.stageRepo.On("Create", mock.Anything, mock.AnythingOfType("*domain.MaintenanceStage"), mock.Anything).
			Run(func(args mock.Arguments) {
				created := args.Get(1).(*domain.MaintenanceStage)
				ids := args.Get(2).([]uuid.UUID)
				assert.Equal(t, 2, created.StageIndex)
				assert.Equal(t, []uuid.UUID{a.ID, created.ID, b.ID}, ids)
			}).
			Return(nil)

		stage, err := svc.CreateStage(context.Background(), ownerID, &CreateStageRequest{
			PlanID:     planID,
			TypeID:     typeID,
			Kilometers: 20000,
			Days:       365,
		})

		assert.NoError(t, err)
		assert.Equal(t, 2, stage.StageIndex)
		m.stageRepo.AssertExpectations(t)
	})

	t.Run("добавление в конец не требует переиндексации", func(t *testing.T) {
		svc, m := newStageService()

		a := planStage(planID, 10000, 180, 1)

		m.planRepo.On("GetByID", mock.Anything, planID).Return(plan, nil)
		m.typeRepo.On("GetByID", mock.Anything, typeID).Return(mt, nil)
		m.stageRepo.On("ListByPlan", mock.Anything, planID).
			Return([]*domain.MaintenanceStage{a}, nil)
		m.stageRepo.On("Create", mock.Anything, mock.AnythingOfType("*domain.MaintenanceStage"), mock.Anything).
			Run(func(args mock.Arguments) {
				assert.Nil(t, args.Get(2))
			}).
			Return(nil)

		stage, err := svc.CreateStage(context.Background(), ownerID, &CreateStageRequest{
			PlanID:     planID,
			TypeID:     typeID,
			Kilometers: 20000,
			Days:       365,
		})

		assert.NoError(t, err)
		assert.Equal(t, 2, stage.StageIndex)
		m.stageRepo.AssertExpectations(t)
	})

	t.Run("дублирующийся пробег отклоняется", func(t *testing.T) {
		svc, m := newStageService()

		a := planStage(planID, 10000, 180, 1)

		m.planRepo.On("GetByID", mock.Anything, planID).Return(plan, nil)
		m.typeRepo.On("GetByID", mock.Anything, typeID).Return(mt, nil)
		m.stageRepo.On("ListByPlan", mock.Anything, planID).
			Return([]*domain.MaintenanceStage{a}, nil)

		_, err := svc.CreateStage(context.Background(), ownerID, &CreateStageRequest{
			PlanID:     planID,
			TypeID:     typeID,
			Kilometers: 10000,
			Days:       365,
		})

		assert.ErrorIs(t, err, domain.ErrDuplicateKilometers)
		m.stageRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("чужой план недоступен", func(t *testing.T) {
		svc, m := newStageService()

		foreign := &domain.MaintenancePlan{ID: planID, OwnerID: uuid.New()}
		m.planRepo.On("GetByID", mock.Anything, planID).Return(foreign, nil)

		_, err := svc.CreateStage(context.Background(), ownerID, &CreateStageRequest{
			PlanID:     planID,
			TypeID:     typeID,
			Kilometers: 10000,
			Days:       180,
		})

		assert.ErrorIs(t, err, domain.ErrPlanNotFound)
	})
}

// TestService_UpdateStage тестирует обновление порогов с пересчетом порядка
func TestService_UpdateStage(t *testing.T) {
	ownerID := uuid.New()
	planID := uuid.New()
	typeID := uuid.New()

	plan := &domain.MaintenancePlan{ID: planID, OwnerID: ownerID}
	mt := &domain.MaintenanceType{ID: typeID, OwnerID: ownerID, Type: "Engine", Path: "Engine"}

	t.Run("увеличение порога перемещает этап в конец", func(t *testing.T) {
		svc, m := newStageService()

		a := planStage(planID, 10000, 180, 1)
		b := planStage(planID, 20000, 365, 2)

		m.stageRepo.On("GetByID", mock.Anything, a.ID).Return(a, nil)
		m.planRepo.On("GetByID", mock.Anything, planID).Return(plan, nil)
		m.typeRepo.On("GetByID", mock.Anything, typeID).Return(mt, nil)
		m.stageRepo.On("ListByPlan", mock.Anything, planID).
			Return([]*domain.MaintenanceStage{a, b}, nil)
		m.stageRepo.On("Update", mock.Anything, mock.AnythingOfType("*domain.MaintenanceStage"), mock.Anything).
			Run(func(args mock.Arguments) {
				ids := args.Get(2).([]uuid.UUID)
				assert.Equal(t, []uuid.UUID{b.ID, a.ID}, ids)
			}).
			Return(nil)

		updated, err := svc.UpdateStage(context.Background(), ownerID, a.ID, &UpdateStageRequest{
			TypeID:     typeID,
			Kilometers: 30000,
			Days:       540,
		})

		assert.NoError(t, err)
		assert.Equal(t, 2, updated.StageIndex)
		m.stageRepo.AssertExpectations(t)
	})

	t.Run("конфликт срока с другим этапом", func(t *testing.T) {
		svc, m := newStageService()

		a := planStage(planID, 10000, 180, 1)
		b := planStage(planID, 20000, 365, 2)

		m.stageRepo.On("GetByID", mock.Anything, a.ID).Return(a, nil)
		m.planRepo.On("GetByID", mock.Anything, planID).Return(plan, nil)
		m.typeRepo.On("GetByID", mock.Anything, typeID).Return(mt, nil)
		m.stageRepo.On("ListByPlan", mock.Anything, planID).
			Return([]*domain.MaintenanceStage{a, b}, nil)

		_, err := svc.UpdateStage(context.Background(), ownerID, a.ID, &UpdateStageRequest{
			TypeID:     typeID,
			Kilometers: 15000,
			Days:       365,
		})

		assert.ErrorIs(t, err, domain.ErrDuplicateDays)
		m.stageRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
	})
}

// TestService_ReorderStages тестирует ручную нормализацию порядка
func TestService_ReorderStages(t *testing.T) {
	ownerID := uuid.New()
	planID := uuid.New()
	plan := &domain.MaintenancePlan{ID: planID, OwnerID: ownerID}

	t.Run("рассинхронизированные индексы пересчитываются", func(t *testing.T) {
		svc, m := newStageService()

		a := planStage(planID, 20000, 365, 1)
		b := planStage(planID, 10000, 180, 2)

		m.planRepo.On("GetByID", mock.Anything, planID).Return(plan, nil)
		m.stageRepo.On("ListByPlan", mock.Anything, planID).
			Return([]*domain.MaintenanceStage{a, b}, nil)
		m.stageRepo.On("Reindex", mock.Anything, planID, []uuid.UUID{b.ID, a.ID}).Return(nil)

		_, err := svc.ReorderStages(context.Background(), ownerID, planID, nil)

		assert.NoError(t, err)
		m.stageRepo.AssertExpectations(t)
	})

	t.Run("явный список ID задает порядок напрямую", func(t *testing.T) {
		svc, m := newStageService()

		a := planStage(planID, 10000, 180, 1)
		b := planStage(planID, 20000, 365, 2)

		m.planRepo.On("GetByID", mock.Anything, planID).Return(plan, nil)
		m.stageRepo.On("ListByPlan", mock.Anything, planID).
			Return([]*domain.MaintenanceStage{a, b}, nil)
		m.stageRepo.On("Reindex", mock.Anything, planID, []uuid.UUID{b.ID, a.ID}).Return(nil)

		_, err := svc.ReorderStages(context.Background(), ownerID, planID, []uuid.UUID{b.ID, a.ID})

		assert.NoError(t, err)
		m.stageRepo.AssertExpectations(t)
	})

	t.Run("список с чужим этапом отклоняется", func(t *testing.T) {
		svc, m := newStageService()

		a := planStage(planID, 10000, 180, 1)
		b := planStage(planID, 20000, 365, 2)

		m.planRepo.On("GetByID", mock.Anything, planID).Return(plan, nil)
		m.stageRepo.On("ListByPlan", mock.Anything, planID).
			Return([]*domain.MaintenanceStage{a, b}, nil)

		_, err := svc.ReorderStages(context.Background(), ownerID, planID, []uuid.UUID{a.ID, uuid.New()})

		assert.ErrorIs(t, err, domain.ErrStageSetMismatch)
		m.stageRepo.AssertNotCalled(t, "Reindex", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("неполный список отклоняется", func(t *testing.T) {
		svc, m := newStageService()

		a := planStage(planID, 10000, 180, 1)
		b := planStage(planID, 20000, 365, 2)

		m.planRepo.On("GetByID", mock.Anything, planID).Return(plan, nil)
		m.stageRepo.On("ListByPlan", mock.Anything, planID).
			Return([]*domain.MaintenanceStage{a, b}, nil)

		_, err := svc.ReorderStages(context.Background(), ownerID, planID, []uuid.UUID{a.ID})

		assert.ErrorIs(t, err, domain.ErrStageSetMismatch)
		m.stageRepo.AssertNotCalled(t, "Reindex", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("дубль в списке отклоняется", func(t *testing.T) {
		svc, m := newStageService()

		a := planStage(planID, 10000, 180, 1)
		b := planStage(planID, 20000, 365, 2)

		m.planRepo.On("GetByID", mock.Anything, planID).Return(plan, nil)
		m.stageRepo.On("ListByPlan", mock.Anything, planID).
			Return([]*domain.MaintenanceStage{a, b}, nil)

		_, err := svc.ReorderStages(context.Background(), ownerID, planID, []uuid.UUID{a.ID, a.ID})

		assert.ErrorIs(t, err, domain.ErrStageSetMismatch)
		m.stageRepo.AssertNotCalled(t, "Reindex", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("актуальные индексы не трогаются", func(t *testing.T) {
		svc, m := newStageService()

		a := planStage(planID, 10000, 180, 1)
		b := planStage(planID, 20000, 365, 2)

		m.planRepo.On("GetByID", mock.Anything, planID).Return(plan, nil)
		m.stageRepo.On("ListByPlan", mock.Anything, planID).
			Return([]*domain.MaintenanceStage{a, b}, nil)

		stages, err := svc.ReorderStages(context.Background(), ownerID, planID, nil)

		assert.NoError(t, err)
		assert.Len(t, stages, 2)
		m.stageRepo.AssertNotCalled(t, "Reindex", mock.Anything, mock.Anything, mock.Anything)
	})
}

// TestService_DeleteStage тестирует удаление этапа
func TestService_DeleteStage(t *testing.T) {
	ownerID := uuid.New()
	planID := uuid.New()
	plan := &domain.MaintenancePlan{ID: planID, OwnerID: ownerID}

	svc, m := newStageService()

	st := planStage(planID, 10000, 180, 1)

	m.stageRepo.On("GetByID", mock.Anything, st.ID).Return(st, nil)
	m.planRepo.On("GetByID", mock.Anything, planID).Return(plan, nil)
	m.stageRepo.On("Delete", mock.Anything, st.ID).Return(nil)

	err := svc.DeleteStage(context.Background(), ownerID, st.ID)

	assert.NoError(t, err)
	m.stageRepo.AssertExpectations(t)
}
