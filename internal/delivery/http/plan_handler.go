package http

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/vkuznets/upkeep/internal/delivery/http/middleware"
	"github.com/vkuznets/upkeep/internal/domain"
	"github.com/vkuznets/upkeep/internal/pkg/logger"
	"github.com/vkuznets/upkeep/internal/usecase/plan"
)

// PlanService определяет интерфейс для сервиса планов обслуживания
type PlanService interface {
	CreatePlan(ctx context.Context, req *plan.CreatePlanRequest) (*domain.MaintenancePlan, error)
	GetPlan(ctx context.Context, ownerID, id uuid.UUID) (*domain.MaintenancePlan, error)
	UpdatePlan(ctx context.Context, ownerID, id uuid.UUID, req *plan.UpdatePlanRequest) (*domain.MaintenancePlan, error)
	DeletePlan(ctx context.Context, ownerID, id uuid.UUID) error
	CanDeletePlan(ctx context.Context, ownerID, id uuid.UUID) (bool, error)
	ListPlans(ctx context.Context, ownerID uuid.UUID, params domain.PageParams) (*domain.Page, error)
}

// PlanHandler обрабатывает запросы связанные с планами обслуживания
type PlanHandler struct {
	planService PlanService
	logger      logger.Logger
}

// NewPlanHandler создает новый handler
func NewPlanHandler(planService PlanService, logger logger.Logger) *PlanHandler {
	return &PlanHandler{
		planService: planService,
		logger:      logger,
	}
}

// CreatePlan создает новый план обслуживания
// POST /api/v1/plans
func (h *PlanHandler) CreatePlan(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetUserClaims(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req plan.CreatePlanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	req.OwnerID = claims.UserID

	p, err := h.planService.CreatePlan(r.Context(), &req)
	if err != nil {
		if respondDomainError(w, err) {
			return
		}
		h.logger.Error("Failed to create plan", map[string]interface{}{
			"error": err.Error(),
		})
		respondError(w, http.StatusInternalServerError, "Failed to create plan")
		return
	}

	respondData(w, http.StatusCreated, p)
}

// GetPlan возвращает план вместе с этапами
// GET /api/v1/plans/{id}
func (h *PlanHandler) GetPlan(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetUserClaims(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	id, err := parseUUIDParam(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid plan ID")
		return
	}

	p, err := h.planService.GetPlan(r.Context(), claims.UserID, id)
	if err != nil {
		if respondDomainError(w, err) {
			return
		}
		h.logger.Error("Failed to get plan", map[string]interface{}{
			"error": err.Error(),
		})
		respondError(w, http.StatusInternalServerError, "Failed to get plan")
		return
	}

	respondData(w, http.StatusOK, p)
}

// UpdatePlan обновляет данные плана
// PUT /api/v1/plans/{id}
func (h *PlanHandler) UpdatePlan(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetUserClaims(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	id, err := parseUUIDParam(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid plan ID")
		return
	}

	var req plan.UpdatePlanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	p, err := h.planService.UpdatePlan(r.Context(), claims.UserID, id, &req)
	if err != nil {
		if respondDomainError(w, err) {
			return
		}
		h.logger.Error("Failed to update plan", map[string]interface{}{
			"error": err.Error(),
		})
		respondError(w, http.StatusInternalServerError, "Failed to update plan")
		return
	}

	respondData(w, http.StatusOK, p)
}

// DeletePlan удаляет план без этапов
// DELETE /api/v1/plans/{id}
func (h *PlanHandler) DeletePlan(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetUserClaims(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	id, err := parseUUIDParam(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid plan ID")
		return
	}

	if err := h.planService.DeletePlan(r.Context(), claims.UserID, id); err != nil {
		if respondDomainError(w, err) {
			return
		}
		h.logger.Error("Failed to delete plan", map[string]interface{}{
			"error": err.Error(),
		})
		respondError(w, http.StatusInternalServerError, "Failed to delete plan")
		return
	}

	respondData(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// CanDeletePlan проверяет, можно ли удалить план
// GET /api/v1/plans/{id}/can-delete
func (h *PlanHandler) CanDeletePlan(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetUserClaims(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	id, err := parseUUIDParam(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid plan ID")
		return
	}

	canDelete, err := h.planService.CanDeletePlan(r.Context(), claims.UserID, id)
	if err != nil {
		if respondDomainError(w, err) {
			return
		}
		h.logger.Error("Failed to check plan deletability", map[string]interface{}{
			"error": err.Error(),
		})
		respondError(w, http.StatusInternalServerError, "Failed to check plan deletability")
		return
	}

	respondData(w, http.StatusOK, map[string]bool{"can_delete": canDelete})
}

// ListPlans возвращает планы текущего пользователя
// GET /api/v1/plans
func (h *PlanHandler) ListPlans(w http.ResponseWriter, r *http.Request) {
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

	page, err := h.planService.ListPlans(r.Context(), claims.UserID, params)
	if err != nil {
		if respondDomainError(w, err) {
			return
		}
		h.logger.Error("Failed to list plans", map[string]interface{}{
			"error": err.Error(),
		})
		respondError(w, http.StatusInternalServerError, "Failed to list plans")
		return
	}

	respondPage(w, page)
}
