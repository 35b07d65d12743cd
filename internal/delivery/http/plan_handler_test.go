package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/vkuznets/upkeep/internal/domain"
	"github.com/vkuznets/upkeep/internal/pkg/logger"
	"github.com/vkuznets/upkeep/internal/usecase/plan"
)

// MockPlanService - mock сервиса планов обслуживания
type MockPlanService struct {
	mock.Mock
}

func (m *MockPlanService) CreatePlan(ctx context.Context, req *plan.CreatePlanRequest) (*domain.MaintenancePlan, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.MaintenancePlan), args.Error(1)
}

func (m *MockPlanService) GetPlan(ctx context.Context, ownerID, id uuid.UUID) (*domain.MaintenancePlan, error) {
	args := m.Called(ctx, ownerID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.MaintenancePlan), args.Error(1)
}

func (m *MockPlanService) UpdatePlan(ctx context.Context, ownerID, id uuid.UUID, req *plan.UpdatePlanRequest) (*domain.MaintenancePlan, error) {
	args := m.Called(ctx, ownerID, id, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.MaintenancePlan), args.Error(1)
}

func (m *MockPlanService) DeletePlan(ctx context.Context, ownerID, id uuid.UUID) error {
	args := m.Called(ctx, ownerID, id)
	return args.Error(0)
}

func (m *MockPlanService) CanDeletePlan(ctx context.Context, ownerID, id uuid.UUID) (bool, error) {
	args := m.Called(ctx, ownerID, id)
	return args.Bool(0), args.Error(1)
}

func (m *MockPlanService) ListPlans(ctx context.Context, ownerID uuid.UUID, params domain.PageParams) (*domain.Page, error) {
	args := m.Called(ctx, ownerID, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Page), args.Error(1)
}

// TestPlanHandler_CanDeletePlan тестирует предварительную проверку удаления плана
func TestPlanHandler_CanDeletePlan(t *testing.T) {
	userID := uuid.New()
	planID := uuid.New()

	tests := []struct {
		name           string
		mockSetup      func(*MockPlanService)
		expectedStatus int
		checkResponse  func(*testing.T, map[string]interface{})
	}{
		{
			name: "план без этапов можно удалить",
			mockSetup: func(m *MockPlanService) {
				m.On("CanDeletePlan", mock.Anything, userID, planID).Return(true, nil)
			},
			expectedStatus: http.StatusOK,
			checkResponse: func(t *testing.T, response map[string]interface{}) {
				AssertSuccess(t, response)
				data := response["data"].(map[string]interface{})
				assert.Equal(t, true, data["can_delete"])
			},
		},
		{
			name: "план с этапами удалить нельзя",
			mockSetup: func(m *MockPlanService) {
				m.On("CanDeletePlan", mock.Anything, userID, planID).Return(false, nil)
			},
			expectedStatus: http.StatusOK,
			checkResponse: func(t *testing.T, response map[string]interface{}) {
				AssertSuccess(t, response)
				data := response["data"].(map[string]interface{})
				assert.Equal(t, false, data["can_delete"])
			},
		},
		{
			name: "план не найден",
			mockSetup: func(m *MockPlanService) {
				m.On("CanDeletePlan", mock.Anything, userID, planID).Return(false, domain.ErrPlanNotFound)
			},
			expectedStatus: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockPlanService)
			tt.mockSetup(mockService)

			handler := NewPlanHandler(mockService, logger.NewDevelopment())

			req := stageRequestContext(t, userID, planID.String(), nil,
				http.MethodGet, "/api/v1/plans/"+planID.String()+"/can-delete")

			w := httptest.NewRecorder()
			handler.CanDeletePlan(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)

			if tt.checkResponse != nil {
				var response map[string]interface{}
				err := json.Unmarshal(w.Body.Bytes(), &response)
				assert.NoError(t, err)
				tt.checkResponse(t, response)
			}
			mockService.AssertExpectations(t)
		})
	}
}

// TestPlanHandler_DeletePlan тестирует удаление плана
func TestPlanHandler_DeletePlan(t *testing.T) {
	userID := uuid.New()
	planID := uuid.New()

	t.Run("успешное удаление", func(t *testing.T) {
		mockService := new(MockPlanService)
		mockService.On("DeletePlan", mock.Anything, userID, planID).Return(nil)

		handler := NewPlanHandler(mockService, logger.NewDevelopment())

		req := stageRequestContext(t, userID, planID.String(), nil,
			http.MethodDelete, "/api/v1/plans/"+planID.String())

		w := httptest.NewRecorder()
		handler.DeletePlan(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		mockService.AssertExpectations(t)
	})

	t.Run("план с этапами дает конфликт", func(t *testing.T) {
		mockService := new(MockPlanService)
		mockService.On("DeletePlan", mock.Anything, userID, planID).Return(domain.ErrPlanHasStages)

		handler := NewPlanHandler(mockService, logger.NewDevelopment())

		req := stageRequestContext(t, userID, planID.String(), nil,
			http.MethodDelete, "/api/v1/plans/"+planID.String())

		w := httptest.NewRecorder()
		handler.DeletePlan(w, req)

		assert.Equal(t, http.StatusConflict, w.Code)

		var response map[string]interface{}
		err := json.Unmarshal(w.Body.Bytes(), &response)
		assert.NoError(t, err)
		AssertError(t, response)
		mockService.AssertExpectations(t)
	})
}
