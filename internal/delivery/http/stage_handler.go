package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/google/uuid"
	"github.com/vkuznets/upkeep/internal/delivery/http/middleware"
	"github.com/vkuznets/upkeep/internal/domain"
	"github.com/vkuznets/upkeep/internal/pkg/logger"
	"github.com/vkuznets/upkeep/internal/usecase/stage"
)

// StageService определяет интерфейс для сервиса этапов планов
type StageService interface {
	CreateStage(ctx context.Context, ownerID uuid.UUID, req *stage.CreateStageRequest) (*domain.MaintenanceStage, error)
	GetStage(ctx context.Context, ownerID, id uuid.UUID) (*domain.MaintenanceStage, error)
	UpdateStage(ctx context.Context, ownerID, id uuid.UUID, req *stage.UpdateStageRequest) (*domain.MaintenanceStage, error)
	DeleteStage(ctx context.Context, ownerID, id uuid.UUID) error
	ListStages(ctx context.Context, ownerID, planID uuid.UUID) ([]*domain.MaintenanceStage, error)
	ReorderStages(ctx context.Context, ownerID, planID uuid.UUID, stageIDs []uuid.UUID) ([]*domain.MaintenanceStage, error)
}

// StageHandler обрабатывает запросы связанные с этапами планов
type StageHandler struct {
	stageService StageService
	logger       logger.Logger
}

// NewStageHandler создает новый handler
func NewStageHandler(stageService StageService, logger logger.Logger) *StageHandler {
	return &StageHandler{
		stageService: stageService,
		logger:       logger,
	}
}

// CreateStage создает этап плана
// POST /api/v1/plans/{id}/stages
func (h *StageHandler) CreateStage(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetUserClaims(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	planID, err := parseUUIDParam(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid plan ID")
		return
	}

	var req stage.CreateStageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	req.PlanID = planID

	st, err := h.stageService.CreateStage(r.Context(), claims.UserID, &req)
	if err != nil {
		if respondDomainError(w, err) {
			return
		}
		h.logger.Error("Failed to create stage", map[string]interface{}{
			"error": err.Error(),
		})
		respondError(w, http.StatusInternalServerError, "Failed to create stage")
		return
	}

	respondData(w, http.StatusCreated, st)
}

// ListStages возвращает этапы плана в порядке stage_index
// GET /api/v1/plans/{id}/stages
func (h *StageHandler) ListStages(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetUserClaims(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	planID, err := parseUUIDParam(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid plan ID")
		return
	}

	stages, err := h.stageService.ListStages(r.Context(), claims.UserID, planID)
	if err != nil {
		if respondDomainError(w, err) {
			return
		}
		h.logger.Error("Failed to list stages", map[string]interface{}{
			"error": err.Error(),
		})
		respondError(w, http.StatusInternalServerError, "Failed to list stages")
		return
	}

	respondData(w, http.StatusOK, stages)
}

// reorderStagesRequest - тело явной переиндексации. stage_ids задает новый
// порядок; пустое тело означает нормализацию по порогам
type reorderStagesRequest struct {
	PlanID   uuid.UUID   `json:"plan_id"`
	StageIDs []uuid.UUID `json:"stage_ids"`
}

// ReorderStages переиндексирует этапы плана: по переданному списку ID или,
// без тела, по каноническому порядку порогов
// PUT /api/v1/stages/reorder
// POST /api/v1/plans/{id}/stages/reorder
func (h *StageHandler) ReorderStages(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetUserClaims(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	// Невалидный UUID в plan_id или stage_ids ломает декодирование
	var req reorderStagesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	planID := req.PlanID
	if raw := getPathParam(r, "id"); raw != "" {
		var err error
		planID, err = uuid.Parse(raw)
		if err != nil {
			respondError(w, http.StatusBadRequest, "Invalid plan ID")
			return
		}
	}
	if planID == uuid.Nil {
		respondError(w, http.StatusBadRequest, "Invalid plan ID")
		return
	}

	stages, err := h.stageService.ReorderStages(r.Context(), claims.UserID, planID, req.StageIDs)
	if err != nil {
		if respondDomainError(w, err) {
			return
		}
		h.logger.Error("Failed to reorder stages", map[string]interface{}{
			"error": err.Error(),
		})
		respondError(w, http.StatusInternalServerError, "Failed to reorder stages")
		return
	}

	respondData(w, http.StatusOK, stages)
}

// GetStage возвращает этап по ID
// GET /api/v1/stages/{id}
func (h *StageHandler) GetStage(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetUserClaims(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	id, err := parseUUIDParam(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid stage ID")
		return
	}

	st, err := h.stageService.GetStage(r.Context(), claims.UserID, id)
	if err != nil {
		if respondDomainError(w, err) {
			return
		}
		h.logger.Error("Failed to get stage", map[string]interface{}{
			"error": err.Error(),
		})
		respondError(w, http.StatusInternalServerError, "Failed to get stage")
		return
	}

	respondData(w, http.StatusOK, st)
}

// UpdateStage обновляет этап
// PUT /api/v1/stages/{id}
func (h *StageHandler) UpdateStage(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetUserClaims(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	id, err := parseUUIDParam(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid stage ID")
		return
	}

	var req stage.UpdateStageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	st, err := h.stageService.UpdateStage(r.Context(), claims.UserID, id, &req)
	if err != nil {
		if respondDomainError(w, err) {
			return
		}
		h.logger.Error("Failed to update stage", map[string]interface{}{
			"error": err.Error(),
		})
		respondError(w, http.StatusInternalServerError, "Failed to update stage")
		return
	}

	respondData(w, http.StatusOK, st)
}

// DeleteStage удаляет этап
// DELETE /api/v1/stages/{id}
func (h *StageHandler) DeleteStage(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetUserClaims(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	id, err := parseUUIDParam(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid stage ID")
		return
	}

	if err := h.stageService.DeleteStage(r.Context(), claims.UserID, id); err != nil {
		if respondDomainError(w, err) {
			return
		}
		h.logger.Error("Failed to delete stage", map[string]interface{}{
			"error": err.Error(),
		})
		respondError(w, http.StatusInternalServerError, "Failed to delete stage")
		return
	}

	respondData(w, http.StatusOK, map[string]string{"status": "deleted"})
}
