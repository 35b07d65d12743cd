package domain

import (
	"time"

	"github.com/google/uuid"
)

// MileageRecord - запись пробега техники на конкретную дату
// На пару (equipment_id, record_date) существует не более одной записи:
// повторная отправка пробега на ту же дату обновляет существующую запись
type MileageRecord struct {
	ID          uuid.UUID `json:"id"`
	OwnerID     uuid.UUID `json:"owner_id"`
	EquipmentID uuid.UUID `json:"equipment_id"`
	RecordDate  time.Time `json:"record_date"`
	Kilometers  int       `json:"kilometers"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// SameDate сравнивает календарные даты записей без учета времени
func SameDate(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// Validate проверяет корректность записи пробега
func (m *MileageRecord) Validate() error {
	if m.OwnerID == uuid.Nil || m.EquipmentID == uuid.Nil {
		return ErrInvalidMileageData
	}
	if m.RecordDate.IsZero() {
		return ErrInvalidMileageData
	}
	if m.Kilometers < 0 {
		return ErrInvalidMileageData
	}
	return nil
}
