package http

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/vkuznets/upkeep/internal/delivery/http/middleware"
	"github.com/vkuznets/upkeep/internal/domain"
	"github.com/vkuznets/upkeep/internal/pkg/logger"
	"github.com/vkuznets/upkeep/internal/usecase/record"
)

// RecordService определяет интерфейс для сервиса записей об обслуживании
type RecordService interface {
	CreateRecord(ctx context.Context, req *record.CreateRecordRequest) (*domain.MaintenanceRecord, error)
	GetRecord(ctx context.Context, ownerID, id uuid.UUID) (*domain.MaintenanceRecord, error)
	UpdateRecord(ctx context.Context, ownerID, id uuid.UUID, req *record.UpdateRecordRequest) (*domain.MaintenanceRecord, error)
	DeleteRecord(ctx context.Context, ownerID, id uuid.UUID) error
	ListRecords(ctx context.Context, ownerID uuid.UUID, filter record.ListFilter, params domain.PageParams) (*domain.Page, error)
}

// RecordHandler обрабатывает запросы связанные с записями об обслуживании
type RecordHandler struct {
	recordService RecordService
	logger        logger.Logger
}

// NewRecordHandler создает новый handler
func NewRecordHandler(recordService RecordService, logger logger.Logger) *RecordHandler {
	return &RecordHandler{
		recordService: recordService,
		logger:        logger,
	}
}

// CreateRecord создает запись об обслуживании вместе с пробегом и строками
// POST /api/v1/maintenance-records
func (h *RecordHandler) CreateRecord(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetUserClaims(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req record.CreateRecordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	req.OwnerID = claims.UserID

	rec, err := h.recordService.CreateRecord(r.Context(), &req)
	if err != nil {
		if respondDomainError(w, err) {
			return
		}
		h.logger.Error("Failed to create maintenance record", map[string]interface{}{
			"error": err.Error(),
		})
		respondError(w, http.StatusInternalServerError, "Failed to create maintenance record")
		return
	}

	respondData(w, http.StatusCreated, rec)
}

// GetRecord возвращает запись вместе со строками запчастей и работ
// GET /api/v1/maintenance-records/{id}
func (h *RecordHandler) GetRecord(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetUserClaims(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	id, err := parseUUIDParam(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid record ID")
		return
	}

	rec, err := h.recordService.GetRecord(r.Context(), claims.UserID, id)
	if err != nil {
		if respondDomainError(w, err) {
			return
		}
		h.logger.Error("Failed to get maintenance record", map[string]interface{}{
			"error": err.Error(),
		})
		respondError(w, http.StatusInternalServerError, "Failed to get maintenance record")
		return
	}

	respondData(w, http.StatusOK, rec)
}

// UpdateRecord обновляет запись, пробег и строки одной транзакцией
// PUT /api/v1/maintenance-records/{id}
func (h *RecordHandler) UpdateRecord(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetUserClaims(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	id, err := parseUUIDParam(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid record ID")
		return
	}

	var req record.UpdateRecordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	rec, err := h.recordService.UpdateRecord(r.Context(), claims.UserID, id, &req)
	if err != nil {
		if respondDomainError(w, err) {
			return
		}
		h.logger.Error("Failed to update maintenance record", map[string]interface{}{
			"error": err.Error(),
		})
		respondError(w, http.StatusInternalServerError, "Failed to update maintenance record")
		return
	}

	respondData(w, http.StatusOK, rec)
}

// DeleteRecord удаляет запись вместе со строками
// DELETE /api/v1/maintenance-records/{id}
func (h *RecordHandler) DeleteRecord(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetUserClaims(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	id, err := parseUUIDParam(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid record ID")
		return
	}

	if err := h.recordService.DeleteRecord(r.Context(), claims.UserID, id); err != nil {
		if respondDomainError(w, err) {
			return
		}
		h.logger.Error("Failed to delete maintenance record", map[string]interface{}{
			"error": err.Error(),
		})
		respondError(w, http.StatusInternalServerError, "Failed to delete maintenance record")
		return
	}

	respondData(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// ListRecords возвращает записи текущего пользователя с фильтрами
// GET /api/v1/maintenance-records?status=...&priority=...
func (h *RecordHandler) ListRecords(w http.ResponseWriter, r *http.Request) {
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

	filter := record.ListFilter{
		Statuses:   parseStatusFilter(r),
		Priorities: parsePriorityFilter(r),
	}

	page, err := h.recordService.ListRecords(r.Context(), claims.UserID, filter, params)
	if err != nil {
		if respondDomainError(w, err) {
			return
		}
		h.logger.Error("Failed to list maintenance records", map[string]interface{}{
			"error": err.Error(),
		})
		respondError(w, http.StatusInternalServerError, "Failed to list maintenance records")
		return
	}

	respondPage(w, page)
}
