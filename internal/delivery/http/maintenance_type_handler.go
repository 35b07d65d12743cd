package http

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/vkuznets/upkeep/internal/delivery/http/middleware"
	"github.com/vkuznets/upkeep/internal/domain"
	"github.com/vkuznets/upkeep/internal/pkg/logger"
	"github.com/vkuznets/upkeep/internal/usecase/mtype"
)

// TypeService определяет интерфейс для сервиса категорий обслуживания
type TypeService interface {
	CreateType(ctx context.Context, req *mtype.CreateTypeRequest) (*domain.MaintenanceType, error)
	GetType(ctx context.Context, ownerID, id uuid.UUID) (*domain.MaintenanceType, error)
	UpdateType(ctx context.Context, ownerID, id uuid.UUID, req *mtype.UpdateTypeRequest) (*domain.MaintenanceType, error)
	DeleteType(ctx context.Context, ownerID, id uuid.UUID) error
	ListTypes(ctx context.Context, ownerID uuid.UUID) ([]*domain.MaintenanceType, error)
}

// TypeHandler обрабатывает запросы связанные с деревом категорий обслуживания
type TypeHandler struct {
	typeService TypeService
	logger      logger.Logger
}

// NewTypeHandler создает новый handler
func NewTypeHandler(typeService TypeService, logger logger.Logger) *TypeHandler {
	return &TypeHandler{
		typeService: typeService,
		logger:      logger,
	}
}

// CreateType создает узел дерева категорий
// POST /api/v1/maintenance-types
func (h *TypeHandler) CreateType(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetUserClaims(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req mtype.CreateTypeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	req.OwnerID = claims.UserID

	mt, err := h.typeService.CreateType(r.Context(), &req)
	if err != nil {
		if respondDomainError(w, err) {
			return
		}
		h.logger.Error("Failed to create maintenance type", map[string]interface{}{
			"error": err.Error(),
		})
		respondError(w, http.StatusInternalServerError, "Failed to create maintenance type")
		return
	}

	respondData(w, http.StatusCreated, mt)
}

// GetType возвращает узел по ID
// GET /api/v1/maintenance-types/{id}
func (h *TypeHandler) GetType(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetUserClaims(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	id, err := parseUUIDParam(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid type ID")
		return
	}

	mt, err := h.typeService.GetType(r.Context(), claims.UserID, id)
	if err != nil {
		if respondDomainError(w, err) {
			return
		}
		h.logger.Error("Failed to get maintenance type", map[string]interface{}{
			"error": err.Error(),
		})
		respondError(w, http.StatusInternalServerError, "Failed to get maintenance type")
		return
	}

	respondData(w, http.StatusOK, mt)
}

// UpdateType переименовывает и/или переносит узел
// PUT /api/v1/maintenance-types/{id}
func (h *TypeHandler) UpdateType(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetUserClaims(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	id, err := parseUUIDParam(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid type ID")
		return
	}

	var req mtype.UpdateTypeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	mt, err := h.typeService.UpdateType(r.Context(), claims.UserID, id, &req)
	if err != nil {
		if respondDomainError(w, err) {
			return
		}
		h.logger.Error("Failed to update maintenance type", map[string]interface{}{
			"error": err.Error(),
		})
		respondError(w, http.StatusInternalServerError, "Failed to update maintenance type")
		return
	}

	respondData(w, http.StatusOK, mt)
}

// DeleteType удаляет узел без дочерних категорий
// DELETE /api/v1/maintenance-types/{id}
func (h *TypeHandler) DeleteType(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetUserClaims(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	id, err := parseUUIDParam(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid type ID")
		return
	}

	if err := h.typeService.DeleteType(r.Context(), claims.UserID, id); err != nil {
		if respondDomainError(w, err) {
			return
		}
		h.logger.Error("Failed to delete maintenance type", map[string]interface{}{
			"error": err.Error(),
		})
		respondError(w, http.StatusInternalServerError, "Failed to delete maintenance type")
		return
	}

	respondData(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// ListTypes возвращает дерево категорий текущего пользователя в порядке path
// GET /api/v1/maintenance-types
func (h *TypeHandler) ListTypes(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetUserClaims(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	types, err := h.typeService.ListTypes(r.Context(), claims.UserID)
	if err != nil {
		if respondDomainError(w, err) {
			return
		}
		h.logger.Error("Failed to list maintenance types", map[string]interface{}{
			"error": err.Error(),
		})
		respondError(w, http.StatusInternalServerError, "Failed to list maintenance types")
		return
	}

	respondData(w, http.StatusOK, types)
}
