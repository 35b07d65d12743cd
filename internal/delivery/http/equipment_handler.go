package http

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/vkuznets/upkeep/internal/delivery/http/middleware"
	"github.com/vkuznets/upkeep/internal/domain"
	"github.com/vkuznets/upkeep/internal/pkg/logger"
	"github.com/vkuznets/upkeep/internal/usecase/equipment"
)

// EquipmentService определяет интерфейс для сервиса техники
type EquipmentService interface {
	CreateEquipment(ctx context.Context, req *equipment.CreateEquipmentRequest) (*domain.Equipment, error)
	GetEquipment(ctx context.Context, ownerID, id uuid.UUID) (*domain.Equipment, error)
	UpdateEquipment(ctx context.Context, ownerID, id uuid.UUID, req *equipment.UpdateEquipmentRequest) (*domain.Equipment, error)
	DeleteEquipment(ctx context.Context, ownerID, id uuid.UUID) error
	ListEquipment(ctx context.Context, ownerID uuid.UUID, params domain.PageParams) (*domain.Page, error)
	ListEquipmentWithLastRecord(ctx context.Context, ownerID uuid.UUID, filter equipment.ListFilter, params domain.PageParams) (*domain.Page, error)
}

// EquipmentHandler обрабатывает запросы связанные с техникой
type EquipmentHandler struct {
	equipmentService EquipmentService
	logger           logger.Logger
}

// NewEquipmentHandler создает новый handler
func NewEquipmentHandler(equipmentService EquipmentService, logger logger.Logger) *EquipmentHandler {
	return &EquipmentHandler{
		equipmentService: equipmentService,
		logger:           logger,
	}
}

// CreateEquipment создает новую единицу техники
// POST /api/v1/equipment
func (h *EquipmentHandler) CreateEquipment(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetUserClaims(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req equipment.CreateEquipmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	req.OwnerID = claims.UserID

	eq, err := h.equipmentService.CreateEquipment(r.Context(), &req)
	if err != nil {
		if respondDomainError(w, err) {
			return
		}
		h.logger.Error("Failed to create equipment", map[string]interface{}{
			"error": err.Error(),
		})
		respondError(w, http.StatusInternalServerError, "Failed to create equipment")
		return
	}

	respondData(w, http.StatusCreated, eq)
}

// GetEquipment возвращает технику по ID
// GET /api/v1/equipment/{id}
func (h *EquipmentHandler) GetEquipment(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetUserClaims(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	id, err := parseUUIDParam(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid equipment ID")
		return
	}

	eq, err := h.equipmentService.GetEquipment(r.Context(), claims.UserID, id)
	if err != nil {
		if respondDomainError(w, err) {
			return
		}
		h.logger.Error("Failed to get equipment", map[string]interface{}{
			"error": err.Error(),
		})
		respondError(w, http.StatusInternalServerError, "Failed to get equipment")
		return
	}

	respondData(w, http.StatusOK, eq)
}

// UpdateEquipment обновляет данные техники
// PUT /api/v1/equipment/{id}
func (h *EquipmentHandler) UpdateEquipment(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetUserClaims(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	id, err := parseUUIDParam(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid equipment ID")
		return
	}

	var req equipment.UpdateEquipmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	eq, err := h.equipmentService.UpdateEquipment(r.Context(), claims.UserID, id, &req)
	if err != nil {
		if respondDomainError(w, err) {
			return
		}
		h.logger.Error("Failed to update equipment", map[string]interface{}{
			"error": err.Error(),
		})
		respondError(w, http.StatusInternalServerError, "Failed to update equipment")
		return
	}

	respondData(w, http.StatusOK, eq)
}

// DeleteEquipment удаляет технику
// DELETE /api/v1/equipment/{id}
func (h *EquipmentHandler) DeleteEquipment(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetUserClaims(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	id, err := parseUUIDParam(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid equipment ID")
		return
	}

	if err := h.equipmentService.DeleteEquipment(r.Context(), claims.UserID, id); err != nil {
		if respondDomainError(w, err) {
			return
		}
		h.logger.Error("Failed to delete equipment", map[string]interface{}{
			"error": err.Error(),
		})
		respondError(w, http.StatusInternalServerError, "Failed to delete equipment")
		return
	}

	respondData(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// ListEquipment возвращает технику текущего пользователя
// GET /api/v1/equipment
func (h *EquipmentHandler) ListEquipment(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetUserClaims(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	params, err := parsePagination(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid pagination parameters")
		return
	}

	page, err := h.equipmentService.ListEquipment(r.Context(), claims.UserID, params)
	if err != nil {
		if respondDomainError(w, err) {
			return
		}
		h.logger.Error("Failed to list equipment", map[string]interface{}{
			"error": err.Error(),
		})
		respondError(w, http.StatusInternalServerError, "Failed to list equipment")
		return
	}

	respondPage(w, page)
}

// ListEquipmentWithRecords возвращает технику вместе с последней записью
// обслуживания, с фильтрами по ее статусу и приоритету
// GET /api/v1/equipment/with-records?status=...&priority=...
func (h *EquipmentHandler) ListEquipmentWithRecords(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetUserClaims(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	params, err := parsePagination(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid pagination parameters")
		return
	}

	filter := equipment.ListFilter{
		Statuses:   parseStatusFilter(r),
		Priorities: parsePriorityFilter(r),
	}

	page, err := h.equipmentService.ListEquipmentWithLastRecord(r.Context(), claims.UserID, filter, params)
	if err != nil {
		if respondDomainError(w, err) {
			return
		}
		h.logger.Error("Failed to list equipment with records", map[string]interface{}{
			"error": err.Error(),
		})
		respondError(w, http.StatusInternalServerError, "Failed to list equipment")
		return
	}

	respondPage(w, page)
}
