package http

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/vkuznets/upkeep/internal/delivery/http/middleware"
	"github.com/vkuznets/upkeep/internal/domain"
	"github.com/vkuznets/upkeep/internal/pkg/logger"
	"github.com/vkuznets/upkeep/internal/usecase/mileage"
)

// MileageService определяет интерфейс для сервиса записей пробега
type MileageService interface {
	SubmitMileage(ctx context.Context, req *mileage.SubmitMileageRequest) (*domain.MileageRecord, error)
	GetMileage(ctx context.Context, ownerID, id uuid.UUID) (*domain.MileageRecord, error)
	DeleteMileage(ctx context.Context, ownerID, id uuid.UUID) error
	ListMileage(ctx context.Context, ownerID, equipmentID uuid.UUID, params domain.PageParams) (*domain.Page, error)
}

// MileageHandler обрабатывает запросы связанные с записями пробега
type MileageHandler struct {
	mileageService MileageService
	logger         logger.Logger
}

// NewMileageHandler создает новый handler
func NewMileageHandler(mileageService MileageService, logger logger.Logger) *MileageHandler {
	return &MileageHandler{
		mileageService: mileageService,
		logger:         logger,
	}
}

// SubmitMileage вносит пробег техники на дату (upsert по дате)
// POST /api/v1/mileage
func (h *MileageHandler) SubmitMileage(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetUserClaims(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req mileage.SubmitMileageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	req.OwnerID = claims.UserID

	m, err := h.mileageService.SubmitMileage(r.Context(), &req)
	if err != nil {
		if respondDomainError(w, err) {
			return
		}
		h.logger.Error("Failed to submit mileage", map[string]interface{}{
			"error": err.Error(),
		})
		respondError(w, http.StatusInternalServerError, "Failed to submit mileage")
		return
	}

	respondData(w, http.StatusCreated, m)
}

// GetMileage возвращает запись пробега по ID
// GET /api/v1/mileage/{id}
func (h *MileageHandler) GetMileage(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetUserClaims(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	id, err := parseUUIDParam(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid mileage ID")
		return
	}

	m, err := h.mileageService.GetMileage(r.Context(), claims.UserID, id)
	if err != nil {
		if respondDomainError(w, err) {
			return
		}
		h.logger.Error("Failed to get mileage", map[string]interface{}{
			"error": err.Error(),
		})
		respondError(w, http.StatusInternalServerError, "Failed to get mileage")
		return
	}

	respondData(w, http.StatusOK, m)
}

// DeleteMileage удаляет запись пробега
// DELETE /api/v1/mileage/{id}
func (h *MileageHandler) DeleteMileage(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetUserClaims(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	id, err := parseUUIDParam(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid mileage ID")
		return
	}

	if err := h.mileageService.DeleteMileage(r.Context(), claims.UserID, id); err != nil {
		if respondDomainError(w, err) {
			return
		}
		h.logger.Error("Failed to delete mileage", map[string]interface{}{
			"error": err.Error(),
		})
		respondError(w, http.StatusInternalServerError, "Failed to delete mileage")
		return
	}

	respondData(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// ListMileage возвращает записи пробега техники
// GET /api/v1/equipment/{id}/mileage
func (h *MileageHandler) ListMileage(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetUserClaims(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	equipmentID, err := parseUUIDParam(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid equipment ID")
		return
	}

	params, err := parsePagination(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid pagination parameters")
		return
	}

	page, err := h.mileageService.ListMileage(r.Context(), claims.UserID, equipmentID, params)
	if err != nil {
		if respondDomainError(w, err) {
			return
		}
		h.logger.Error("Failed to list mileage", map[string]interface{}{
			"error": err.Error(),
		})
		respondError(w, http.StatusInternalServerError, "Failed to list mileage")
		return
	}

	respondPage(w, page)
}
