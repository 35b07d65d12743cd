package domain

import (
	"time"

	"github.com/google/uuid"
)

// RecordStatus представляет статус записи об обслуживании
type RecordStatus string

const (
	StatusScheduled  RecordStatus = "scheduled"
	StatusInProgress RecordStatus = "in_progress"
	StatusCompleted  RecordStatus = "completed"
	StatusCancelled  RecordStatus = "cancelled"
)

// RecordPriority представляет приоритет записи об обслуживании
type RecordPriority string

const (
	PriorityLow      RecordPriority = "low"
	PriorityMedium   RecordPriority = "medium"
	PriorityHigh     RecordPriority = "high"
	PriorityCritical RecordPriority = "critical"
)

// MaintenanceRecord - запись о выполненном (или запланированном) обслуживании
// Владеет строками запчастей и работ; опционально ссылается на запись пробега
type MaintenanceRecord struct {
	ID              uuid.UUID      `json:"id"`
	OwnerID         uuid.UUID      `json:"owner_id"`
	EquipmentID     uuid.UUID      `json:"equipment_id"`
	TypeID          uuid.UUID      `json:"maintenance_type_id"`
	StartedAt       time.Time      `json:"started_at"`
	EndedAt         *time.Time     `json:"ended_at,omitempty"`
	Observations    string         `json:"observations,omitempty"`
	Status          RecordStatus   `json:"status"`
	Priority        RecordPriority `json:"priority"`
	MileageRecordID *uuid.UUID     `json:"mileage_record_id,omitempty"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`

	// Связанные данные (не хранятся в самой записи, заполняются при необходимости)
	SpareParts []*MaintenanceSparePart `json:"spare_parts,omitempty"`
	Activities []*MaintenanceActivity  `json:"activities,omitempty"`
}

// MaintenanceSparePart - строка запчасти в записи об обслуживании
type MaintenanceSparePart struct {
	ID          uuid.UUID `json:"id"`
	RecordID    uuid.UUID `json:"record_id"`
	SparePartID uuid.UUID `json:"spare_part_id"`
	Quantity    int       `json:"quantity"`
	UnitPrice   float64   `json:"unit_price"`
}

// MaintenanceActivity - строка работы в записи об обслуживании
type MaintenanceActivity struct {
	ID         uuid.UUID `json:"id"`
	RecordID   uuid.UUID `json:"record_id"`
	ActivityID uuid.UUID `json:"activity_id"`
	Notes      string    `json:"notes,omitempty"`
}

// ValidStatus проверяет, что значение статуса известно системе
func ValidStatus(s RecordStatus) bool {
	switch s {
	case StatusScheduled, StatusInProgress, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// ValidPriority проверяет, что значение приоритета известно системе
func ValidPriority(p RecordPriority) bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityCritical:
		return true
	}
	return false
}

// Validate проверяет корректность данных записи
func (r *MaintenanceRecord) Validate() error {
	if r.OwnerID == uuid.Nil || r.EquipmentID == uuid.Nil || r.TypeID == uuid.Nil {
		return ErrInvalidRecordData
	}
	if r.StartedAt.IsZero() {
		return ErrInvalidRecordData
	}
	if r.EndedAt != nil && r.EndedAt.Before(r.StartedAt) {
		return ErrInvalidDateRange
	}
	if !ValidStatus(r.Status) {
		return ErrInvalidStatus
	}
	if !ValidPriority(r.Priority) {
		return ErrInvalidPriority
	}
	for _, sp := range r.SpareParts {
		if sp.SparePartID == uuid.Nil || sp.Quantity <= 0 || sp.UnitPrice < 0 {
			return ErrInvalidRecordData
		}
	}
	for _, a := range r.Activities {
		if a.ActivityID == uuid.Nil {
			return ErrInvalidRecordData
		}
	}
	return nil
}

// DiffSpareParts возвращает ID строк запчастей, которые присутствовали в
// original, но отсутствуют в submitted - такие строки подлежат удалению
func DiffSpareParts(original, submitted []*MaintenanceSparePart) []uuid.UUID {
	keep := make(map[uuid.UUID]struct{}, len(submitted))
	for _, sp := range submitted {
		if sp.ID != uuid.Nil {
			keep[sp.ID] = struct{}{}
		}
	}
	var removed []uuid.UUID
	for _, sp := range original {
		if _, ok := keep[sp.ID]; !ok {
			removed = append(removed, sp.ID)
		}
	}
	return removed
}

// DiffActivities возвращает ID строк работ, которые присутствовали в
// original, но отсутствуют в submitted
func DiffActivities(original, submitted []*MaintenanceActivity) []uuid.UUID {
	keep := make(map[uuid.UUID]struct{}, len(submitted))
	for _, a := range submitted {
		if a.ID != uuid.Nil {
			keep[a.ID] = struct{}{}
		}
	}
	var removed []uuid.UUID
	for _, a := range original {
		if _, ok := keep[a.ID]; !ok {
			removed = append(removed, a.ID)
		}
	}
	return removed
}
