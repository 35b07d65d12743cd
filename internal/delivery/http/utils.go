package http

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/vkuznets/upkeep/internal/domain"
)

// respondJSON отправляет JSON ответ
func respondJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"success":false,"message":"Failed to marshal response"}`))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_, _ = w.Write(response)
}

// respondData отправляет успешный ответ в стандартном конверте
func respondData(w http.ResponseWriter, code int, data interface{}) {
	respondJSON(w, code, map[string]interface{}{
		"success": true,
		"data":    data,
	})
}

// respondPage отправляет списочный ответ с метаданными пагинации
func respondPage(w http.ResponseWriter, page *domain.Page) {
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"data":    page.Data,
		"total":   page.Total,
		"limit":   page.Limit,
		"offset":  page.Offset,
		"pages":   page.Pages,
	})
}

// respondError отправляет JSON ответ с ошибкой
func respondError(w http.ResponseWriter, code int, message string) {
	respondJSON(w, code, map[string]interface{}{
		"success": false,
		"message": message,
	})
}

// respondDomainError отображает доменную ошибку в HTTP статус.
// Неизвестные ошибки считаются внутренними и не раскрываются клиенту
func respondDomainError(w http.ResponseWriter, err error) bool {
	var code int

	switch err {
	case domain.ErrUserNotFound, domain.ErrEquipmentNotFound, domain.ErrPlanNotFound,
		domain.ErrStageNotFound, domain.ErrTypeNotFound, domain.ErrRecordNotFound,
		domain.ErrMileageNotFound, domain.ErrActivityNotFound, domain.ErrSparePartNotFound,
		domain.ErrNotFound:
		code = http.StatusNotFound
	case domain.ErrUserAlreadyExists, domain.ErrEquipmentAlreadyExists, domain.ErrSparePartAlreadyExists,
		domain.ErrMileageAlreadyExists, domain.ErrEquipmentInUse, domain.ErrPlanHasStages,
		domain.ErrTypeAlreadyExists, domain.ErrTypeHasChildren, domain.ErrActivityInUse, domain.ErrSparePartInUse,
		domain.ErrDuplicateKilometers, domain.ErrDuplicateDays, domain.ErrStageSetMismatch,
		domain.ErrConflict:
		code = http.StatusConflict
	case domain.ErrInvalidUserData, domain.ErrInvalidEmail, domain.ErrInvalidPassword, domain.ErrInvalidRole,
		domain.ErrInvalidEquipmentData, domain.ErrInvalidPlanData, domain.ErrInvalidStageData,
		domain.ErrInvalidTypeData, domain.ErrTypeCycle, domain.ErrInvalidRecordData,
		domain.ErrInvalidStatus, domain.ErrInvalidPriority, domain.ErrInvalidDateRange,
		domain.ErrInvalidMileageData, domain.ErrInvalidActivityData, domain.ErrInvalidSparePartData,
		domain.ErrInvalidPagination, domain.ErrBadRequest:
		code = http.StatusBadRequest
	case domain.ErrInvalidCredentials, domain.ErrUnauthorized, domain.ErrTokenExpired, domain.ErrInvalidToken:
		code = http.StatusUnauthorized
	case domain.ErrForbidden, domain.ErrUserInactive:
		code = http.StatusForbidden
	default:
		return false
	}

	respondError(w, code, err.Error())
	return true
}

// getPathParam извлекает параметр из пути URL через chi
func getPathParam(r *http.Request, param string) string {
	return chi.URLParam(r, param)
}

// parseUUIDParam извлекает и парсит UUID параметр из пути URL
func parseUUIDParam(r *http.Request, param string) (uuid.UUID, error) {
	return uuid.Parse(getPathParam(r, param))
}

// parsePagination извлекает limit/offset из query параметров.
// Отсутствующие параметры равны нулю: limit=0 означает "без пагинации".
// Отрицательные значения отклоняются
func parsePagination(r *http.Request) (domain.PageParams, error) {
	var params domain.PageParams

	if v := r.URL.Query().Get("limit"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil {
			return params, domain.ErrInvalidPagination
		}
		params.Limit = limit
	}

	if v := r.URL.Query().Get("offset"); v != "" {
		offset, err := strconv.Atoi(v)
		if err != nil {
			return params, domain.ErrInvalidPagination
		}
		params.Offset = offset
	}

	if err := params.Validate(); err != nil {
		return params, err
	}

	return params, nil
}

// parseStatusFilter извлекает повторяющийся query параметр status
func parseStatusFilter(r *http.Request) []domain.RecordStatus {
	values := r.URL.Query()["status"]
	if len(values) == 0 {
		return nil
	}
	statuses := make([]domain.RecordStatus, 0, len(values))
	for _, v := range values {
		statuses = append(statuses, domain.RecordStatus(v))
	}
	return statuses
}

// parsePriorityFilter извлекает повторяющийся query параметр priority
func parsePriorityFilter(r *http.Request) []domain.RecordPriority {
	values := r.URL.Query()["priority"]
	if len(values) == 0 {
		return nil
	}
	priorities := make([]domain.RecordPriority, 0, len(values))
	for _, v := range values {
		priorities = append(priorities, domain.RecordPriority(v))
	}
	return priorities
}
