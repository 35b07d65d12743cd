package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/vkuznets/upkeep/internal/domain"
	"github.com/vkuznets/upkeep/internal/pkg/logger"
	"github.com/vkuznets/upkeep/internal/usecase/equipment"
)

// MockEquipmentService - mock сервиса техники
type MockEquipmentService struct {
	mock.Mock
}

func (m *MockEquipmentService) CreateEquipment(ctx context.Context, req *equipment.CreateEquipmentRequest) (*domain.Equipment, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Equipment), args.Error(1)
}

func (m *MockEquipmentService) GetEquipment(ctx context.Context, ownerID, id uuid.UUID) (*domain.Equipment, error) {
	args := m.Called(ctx, ownerID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Equipment), args.Error(1)
}

func (m *MockEquipmentService) UpdateEquipment(ctx context.Context, ownerID, id uuid.UUID, req *equipment.UpdateEquipmentRequest) (*domain.Equipment, error) {
	args := m.Called(ctx, ownerID, id, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Equipment), args.Error(1)
}

func (m *MockEquipmentService) DeleteEquipment(ctx context.Context, ownerID, id uuid.UUID) error {
	args := m.Called(ctx, ownerID, id)
	return args.Error(0)
}

func (m *MockEquipmentService) ListEquipment(ctx context.Context, ownerID uuid.UUID, params domain.PageParams) (*domain.Page, error) {
	args := m.Called(ctx, ownerID, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Page), args.Error(1)
}

func (m *MockEquipmentService) ListEquipmentWithLastRecord(ctx context.Context, ownerID uuid.UUID, filter equipment.ListFilter, params domain.PageParams) (*domain.Page, error) {
	args := m.Called(ctx, ownerID, filter, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Page), args.Error(1)
}

// TestEquipmentHandler_CreateEquipment тестирует создание техники
func TestEquipmentHandler_CreateEquipment(t *testing.T) {
	userID := uuid.New()

	tests := []struct {
		name           string
		requestBody    interface{}
		mockSetup      func(*MockEquipmentService)
		expectedStatus int
		checkResponse  func(*testing.T, map[string]interface{})
	}{
		{
			name: "успешное создание",
			requestBody: map[string]interface{}{
				"equipment_type": "truck",
				"license_plate":  "А123ВС777",
				"code":           "EXC-001",
			},
			mockSetup: func(m *MockEquipmentService) {
				m.On("CreateEquipment", mock.Anything, mock.AnythingOfType("*equipment.CreateEquipmentRequest")).
					Return(CreateTestEquipment(uuid.New(), userID, "EXC-001"), nil)
			},
			expectedStatus: http.StatusCreated,
			checkResponse: func(t *testing.T, response map[string]interface{}) {
				AssertSuccess(t, response)
				data := response["data"].(map[string]interface{})
				assert.Equal(t, "EXC-001", data["code"])
			},
		},
		{
			name: "дублирующийся инвентарный код",
			requestBody: map[string]interface{}{
				"equipment_type": "truck",
				"license_plate":  "А123ВС777",
				"code":           "EXC-001",
			},
			mockSetup: func(m *MockEquipmentService) {
				m.On("CreateEquipment", mock.Anything, mock.AnythingOfType("*equipment.CreateEquipmentRequest")).
					Return(nil, domain.ErrEquipmentAlreadyExists)
			},
			expectedStatus: http.StatusConflict,
			checkResponse: func(t *testing.T, response map[string]interface{}) {
				AssertError(t, response)
			},
		},
		{
			name:           "невалидное тело запроса",
			requestBody:    "not a json",
			mockSetup:      func(m *MockEquipmentService) {},
			expectedStatus: http.StatusBadRequest,
			checkResponse: func(t *testing.T, response map[string]interface{}) {
				AssertError(t, response)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockEquipmentService)
			tt.mockSetup(mockService)

			handler := NewEquipmentHandler(mockService, logger.NewDevelopment())

			var body []byte
			if s, ok := tt.requestBody.(string); ok {
				body = []byte(s)
			} else {
				body, _ = json.Marshal(tt.requestBody)
			}

			req := httptest.NewRequest(http.MethodPost, "/api/v1/equipment", bytes.NewReader(body))
			req = req.WithContext(CreateAuthContext(t, userID, "test@example.com", domain.RoleUser))

			w := httptest.NewRecorder()
			handler.CreateEquipment(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)

			var response map[string]interface{}
			err := json.Unmarshal(w.Body.Bytes(), &response)
			assert.NoError(t, err)

			tt.checkResponse(t, response)
			mockService.AssertExpectations(t)
		})
	}
}

// TestEquipmentHandler_GetEquipment тестирует получение техники по ID
func TestEquipmentHandler_GetEquipment(t *testing.T) {
	userID := uuid.New()
	equipmentID := uuid.New()

	tests := []struct {
		name           string
		equipmentID    string
		mockSetup      func(*MockEquipmentService)
		expectedStatus int
	}{
		{
			name:        "техника найдена",
			equipmentID: equipmentID.String(),
			mockSetup: func(m *MockEquipmentService) {
				m.On("GetEquipment", mock.Anything, userID, equipmentID).
					Return(CreateTestEquipment(equipmentID, userID, "EXC-001"), nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:        "техника не найдена",
			equipmentID: equipmentID.String(),
			mockSetup: func(m *MockEquipmentService) {
				m.On("GetEquipment", mock.Anything, userID, equipmentID).
					Return(nil, domain.ErrEquipmentNotFound)
			},
			expectedStatus: http.StatusNotFound,
		},
		{
			name:           "невалидный ID",
			equipmentID:    "not-a-uuid",
			mockSetup:      func(m *MockEquipmentService) {},
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockEquipmentService)
			tt.mockSetup(mockService)

			handler := NewEquipmentHandler(mockService, logger.NewDevelopment())

			req := httptest.NewRequest(http.MethodGet, "/api/v1/equipment/"+tt.equipmentID, nil)
			req = req.WithContext(CreateAuthContext(t, userID, "test@example.com", domain.RoleUser))

			rctx := chi.NewRouteContext()
			rctx.URLParams.Add("id", tt.equipmentID)
			req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))

			w := httptest.NewRecorder()
			handler.GetEquipment(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			mockService.AssertExpectations(t)
		})
	}
}

// TestEquipmentHandler_ListEquipment тестирует списочный ответ с пагинацией
func TestEquipmentHandler_ListEquipment(t *testing.T) {
	userID := uuid.New()

	t.Run("конверт содержит метаданные пагинации", func(t *testing.T) {
		mockService := new(MockEquipmentService)

		items := []*domain.Equipment{
			CreateTestEquipment(uuid.New(), userID, "EXC-001"),
			CreateTestEquipment(uuid.New(), userID, "EXC-002"),
		}
		page := domain.NewPage(domain.PageParams{Limit: 10, Offset: 0}, 42, items)
		mockService.On("ListEquipment", mock.Anything, userID, domain.PageParams{Limit: 10, Offset: 0}).
			Return(page, nil)

		handler := NewEquipmentHandler(mockService, logger.NewDevelopment())

		req := httptest.NewRequest(http.MethodGet, "/api/v1/equipment?limit=10&offset=0", nil)
		req = req.WithContext(CreateAuthContext(t, userID, "test@example.com", domain.RoleUser))

		w := httptest.NewRecorder()
		handler.ListEquipment(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		var response map[string]interface{}
		err := json.Unmarshal(w.Body.Bytes(), &response)
		assert.NoError(t, err)

		AssertSuccess(t, response)
		assert.Equal(t, float64(42), response["total"])
		assert.Equal(t, float64(10), response["limit"])
		assert.Equal(t, float64(5), response["pages"])
		mockService.AssertExpectations(t)
	})

	t.Run("отрицательный limit отклоняется", func(t *testing.T) {
		mockService := new(MockEquipmentService)
		handler := NewEquipmentHandler(mockService, logger.NewDevelopment())

		req := httptest.NewRequest(http.MethodGet, "/api/v1/equipment?limit=-1", nil)
		req = req.WithContext(CreateAuthContext(t, userID, "test@example.com", domain.RoleUser))

		w := httptest.NewRecorder()
		handler.ListEquipment(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		mockService.AssertNotCalled(t, "ListEquipment", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("без аутентификации возвращается 401", func(t *testing.T) {
		mockService := new(MockEquipmentService)
		handler := NewEquipmentHandler(mockService, logger.NewDevelopment())

		req := httptest.NewRequest(http.MethodGet, "/api/v1/equipment", nil)

		w := httptest.NewRecorder()
		handler.ListEquipment(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

// TestEquipmentHandler_ListEquipmentWithRecords тестирует фильтры по статусу
// и приоритету последней записи
func TestEquipmentHandler_ListEquipmentWithRecords(t *testing.T) {
	userID := uuid.New()

	t.Run("повторяющиеся параметры собираются в фильтр", func(t *testing.T) {
		mockService := new(MockEquipmentService)

		expectedFilter := equipment.ListFilter{
			Statuses:   []domain.RecordStatus{domain.StatusScheduled, domain.StatusInProgress},
			Priorities: []domain.RecordPriority{domain.PriorityHigh},
		}
		page := domain.NewPage(domain.PageParams{Limit: 20}, 0, []*domain.Equipment{})
		mockService.On("ListEquipmentWithLastRecord", mock.Anything, userID, expectedFilter, domain.PageParams{Limit: 20}).
			Return(page, nil)

		handler := NewEquipmentHandler(mockService, logger.NewDevelopment())

		req := httptest.NewRequest(http.MethodGet,
			"/api/v1/equipment/with-records?status=scheduled&status=in_progress&priority=high&limit=20", nil)
		req = req.WithContext(CreateAuthContext(t, userID, "test@example.com", domain.RoleUser))

		w := httptest.NewRecorder()
		handler.ListEquipmentWithRecords(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		mockService.AssertExpectations(t)
	})

	t.Run("неизвестный статус возвращает 400", func(t *testing.T) {
		mockService := new(MockEquipmentService)
		mockService.On("ListEquipmentWithLastRecord", mock.Anything, userID, mock.Anything, mock.Anything).
			Return(nil, domain.ErrInvalidStatus)

		handler := NewEquipmentHandler(mockService, logger.NewDevelopment())

		req := httptest.NewRequest(http.MethodGet, "/api/v1/equipment/with-records?status=bogus", nil)
		req = req.WithContext(CreateAuthContext(t, userID, "test@example.com", domain.RoleUser))

		w := httptest.NewRecorder()
		handler.ListEquipmentWithRecords(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

// TestEquipmentHandler_DeleteEquipment тестирует удаление техники
func TestEquipmentHandler_DeleteEquipment(t *testing.T) {
	userID := uuid.New()
	equipmentID := uuid.New()

	tests := []struct {
		name           string
		mockSetup      func(*MockEquipmentService)
		expectedStatus int
	}{
		{
			name: "успешное удаление",
			mockSetup: func(m *MockEquipmentService) {
				m.On("DeleteEquipment", mock.Anything, userID, equipmentID).Return(nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name: "техника используется записями обслуживания",
			mockSetup: func(m *MockEquipmentService) {
				m.On("DeleteEquipment", mock.Anything, userID, equipmentID).
					Return(domain.ErrEquipmentInUse)
			},
			expectedStatus: http.StatusConflict,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockEquipmentService)
			tt.mockSetup(mockService)

			handler := NewEquipmentHandler(mockService, logger.NewDevelopment())

			req := httptest.NewRequest(http.MethodDelete, "/api/v1/equipment/"+equipmentID.String(), nil)
			req = req.WithContext(CreateAuthContext(t, userID, "test@example.com", domain.RoleUser))

			rctx := chi.NewRouteContext()
			rctx.URLParams.Add("id", equipmentID.String())
			req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))

			w := httptest.NewRecorder()
			handler.DeleteEquipment(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			mockService.AssertExpectations(t)
		})
	}
}
