package http

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/vkuznets/upkeep/internal/delivery/http/middleware"
	"github.com/vkuznets/upkeep/internal/domain"
	"github.com/vkuznets/upkeep/internal/pkg/logger"
	"github.com/vkuznets/upkeep/internal/usecase/activity"
)

// ActivityService определяет интерфейс для сервиса видов работ
type ActivityService interface {
	CreateActivity(ctx context.Context, req *activity.CreateActivityRequest) (*domain.Activity, error)
	GetActivity(ctx context.Context, ownerID, id uuid.UUID) (*domain.Activity, error)
	UpdateActivity(ctx context.Context, ownerID, id uuid.UUID, req *activity.UpdateActivityRequest) (*domain.Activity, error)
	DeleteActivity(ctx context.Context, ownerID, id uuid.UUID) error
	ListActivities(ctx context.Context, ownerID uuid.UUID, params domain.PageParams) (*domain.Page, error)
}

// ActivityHandler обрабатывает запросы связанные с видами работ
type ActivityHandler struct {
	activityService ActivityService
	logger          logger.Logger
}

// NewActivityHandler создает новый handler
func NewActivityHandler(activityService ActivityService, logger logger.Logger) *ActivityHandler {
	return &ActivityHandler{
		activityService: activityService,
		logger:          logger,
	}
}

// CreateActivity создает вид работ
// POST /api/v1/activities
func (h *ActivityHandler) CreateActivity(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetUserClaims(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req activity.CreateActivityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	req.OwnerID = claims.UserID

	a, err := h.activityService.CreateActivity(r.Context(), &req)
	if err != nil {
		if respondDomainError(w, err) {
			return
		}
		h.logger.Error("Failed to create activity", map[string]interface{}{
			"error": err.Error(),
		})
		respondError(w, http.StatusInternalServerError, "Failed to create activity")
		return
	}

	respondData(w, http.StatusCreated, a)
}

// GetActivity возвращает вид работ по ID
// GET /api/v1/activities/{id}
func (h *ActivityHandler) GetActivity(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetUserClaims(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	id, err := parseUUIDParam(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid activity ID")
		return
	}

	a, err := h.activityService.GetActivity(r.Context(), claims.UserID, id)
	if err != nil {
		if respondDomainError(w, err) {
			return
		}
		h.logger.Error("Failed to get activity", map[string]interface{}{
			"error": err.Error(),
		})
		respondError(w, http.StatusInternalServerError, "Failed to get activity")
		return
	}

	respondData(w, http.StatusOK, a)
}

// UpdateActivity обновляет вид работ
// PUT /api/v1/activities/{id}
func (h *ActivityHandler) UpdateActivity(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetUserClaims(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	id, err := parseUUIDParam(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid activity ID")
		return
	}

	var req activity.UpdateActivityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	a, err := h.activityService.UpdateActivity(r.Context(), claims.UserID, id, &req)
	if err != nil {
		if respondDomainError(w, err) {
			return
		}
		h.logger.Error("Failed to update activity", map[string]interface{}{
			"error": err.Error(),
		})
		respondError(w, http.StatusInternalServerError, "Failed to update activity")
		return
	}

	respondData(w, http.StatusOK, a)
}

// DeleteActivity удаляет вид работ
// DELETE /api/v1/activities/{id}
func (h *ActivityHandler) DeleteActivity(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetUserClaims(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	id, err := parseUUIDParam(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid activity ID")
		return
	}

	if err := h.activityService.DeleteActivity(r.Context(), claims.UserID, id); err != nil {
		if respondDomainError(w, err) {
			return
		}
		h.logger.Error("Failed to delete activity", map[string]interface{}{
			"error": err.Error(),
		})
		respondError(w, http.StatusInternalServerError, "Failed to delete activity")
		return
	}

	respondData(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// ListActivities возвращает виды работ текущего пользователя
// GET /api/v1/activities
func (h *ActivityHandler) ListActivities(w http.ResponseWriter, r *http.Request) {
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

	page, err := h.activityService.ListActivities(r.Context(), claims.UserID, params)
	if err != nil {
		if respondDomainError(w, err) {
			return
		}
		h.logger.Error("Failed to list activities", map[string]interface{}{
			"error": err.Error(),
		})
		respondError(w, http.StatusInternalServerError, "Failed to list activities")
		return
	}

	respondPage(w, page)
}
