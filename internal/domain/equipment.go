package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Equipment - единица техники (автомобиль, станок, агрегат)
// ВАЖНО: Техника ОБЯЗАТЕЛЬНО привязана к владельцу (OwnerID NOT NULL)
type Equipment struct {
	ID                uuid.UUID  `json:"id"`
	OwnerID           uuid.UUID  `json:"owner_id"`
	EquipmentType     string     `json:"equipment_type"`
	LicensePlate      string     `json:"license_plate"`
	Code              string     `json:"code"` // Инвентарный код (уникальный в рамках владельца)
	MaintenancePlanID *uuid.UUID `json:"maintenance_plan_id,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`

	// Связанные данные (не хранятся в БД, заполняются при необходимости)
	LastRecord *MaintenanceRecord `json:"last_record,omitempty"`
}

// NormalizeCode нормализует инвентарный код (убирает пробелы, приводит к верхнему регистру)
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.ReplaceAll(code, " ", ""))
}

// Validate проверяет корректность данных техники
func (e *Equipment) Validate() error {
	if e.OwnerID == uuid.Nil {
		return ErrInvalidEquipmentData
	}
	if strings.TrimSpace(e.EquipmentType) == "" {
		return ErrInvalidEquipmentData
	}
	if strings.TrimSpace(e.LicensePlate) == "" {
		return ErrInvalidEquipmentData
	}
	e.Code = NormalizeCode(e.Code)
	if e.Code == "" {
		return ErrInvalidEquipmentData
	}
	return nil
}
