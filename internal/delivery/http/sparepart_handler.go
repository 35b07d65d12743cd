package http

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/vkuznets/upkeep/internal/delivery/http/middleware"
	"github.com/vkuznets/upkeep/internal/domain"
	"github.com/vkuznets/upkeep/internal/pkg/logger"
	"github.com/vkuznets/upkeep/internal/usecase/sparepart"
)

// SparePartService определяет интерфейс для сервиса запчастей
type SparePartService interface {
	CreateSparePart(ctx context.Context, req *sparepart.CreateSparePartRequest) (*domain.SparePart, error)
	GetSparePart(ctx context.Context, ownerID, id uuid.UUID) (*domain.SparePart, error)
	UpdateSparePart(ctx context.Context, ownerID, id uuid.UUID, req *sparepart.UpdateSparePartRequest) (*domain.SparePart, error)
	DeleteSparePart(ctx context.Context, ownerID, id uuid.UUID) error
	ListSpareParts(ctx context.Context, ownerID uuid.UUID, params domain.PageParams) (*domain.Page, error)
}

// SparePartHandler обрабатывает запросы связанные со справочником запчастей
type SparePartHandler struct {
	partService SparePartService
	logger      logger.Logger
}

// NewSparePartHandler создает новый handler
func NewSparePartHandler(partService SparePartService, logger logger.Logger) *SparePartHandler {
	return &SparePartHandler{
		partService: partService,
		logger:      logger,
	}
}

// CreateSparePart создает запчасть
// POST /api/v1/spare-parts
func (h *SparePartHandler) CreateSparePart(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetUserClaims(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req sparepart.CreateSparePartRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	req.OwnerID = claims.UserID

	p, err := h.partService.CreateSparePart(r.Context(), &req)
	if err != nil {
		if respondDomainError(w, err) {
			return
		}
		h.logger.Error("Failed to create spare part", map[string]interface{}{
			"error": err.Error(),
		})
		respondError(w, http.StatusInternalServerError, "Failed to create spare part")
		return
	}

	respondData(w, http.StatusCreated, p)
}

// GetSparePart возвращает запчасть по ID
// GET /api/v1/spare-parts/{id}
func (h *SparePartHandler) GetSparePart(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetUserClaims(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	id, err := parseUUIDParam(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid spare part ID")
		return
	}

	p, err := h.partService.GetSparePart(r.Context(), claims.UserID, id)
	if err != nil {
		if respondDomainError(w, err) {
			return
		}
		h.logger.Error("Failed to get spare part", map[string]interface{}{
			"error": err.Error(),
		})
		respondError(w, http.StatusInternalServerError, "Failed to get spare part")
		return
	}

	respondData(w, http.StatusOK, p)
}

// UpdateSparePart обновляет запчасть
// PUT /api/v1/spare-parts/{id}
func (h *SparePartHandler) UpdateSparePart(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetUserClaims(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	id, err := parseUUIDParam(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid spare part ID")
		return
	}

	var req sparepart.UpdateSparePartRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	p, err := h.partService.UpdateSparePart(r.Context(), claims.UserID, id, &req)
	if err != nil {
		if respondDomainError(w, err) {
			return
		}
		h.logger.Error("Failed to update spare part", map[string]interface{}{
			"error": err.Error(),
		})
		respondError(w, http.StatusInternalServerError, "Failed to update spare part")
		return
	}

	respondData(w, http.StatusOK, p)
}

// DeleteSparePart удаляет запчасть
// DELETE /api/v1/spare-parts/{id}
func (h *SparePartHandler) DeleteSparePart(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetUserClaims(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	id, err := parseUUIDParam(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid spare part ID")
		return
	}

	if err := h.partService.DeleteSparePart(r.Context(), claims.UserID, id); err != nil {
		if respondDomainError(w, err) {
			return
		}
		h.logger.Error("Failed to delete spare part", map[string]interface{}{
			"error": err.Error(),
		})
		respondError(w, http.StatusInternalServerError, "Failed to delete spare part")
		return
	}

	respondData(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// ListSpareParts возвращает запчасти текущего пользователя
// GET /api/v1/spare-parts
func (h *SparePartHandler) ListSpareParts(w http.ResponseWriter, r *http.Request) {
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

	page, err := h.partService.ListSpareParts(r.Context(), claims.UserID, params)
	if err != nil {
		if respondDomainError(w, err) {
			return
		}
		h.logger.Error("Failed to list spare parts", map[string]interface{}{
			"error": err.Error(),
		})
		respondError(w, http.StatusInternalServerError, "Failed to list spare parts")
		return
	}

	respondPage(w, page)
}
