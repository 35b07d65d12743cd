package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// MaintenancePlan - план обслуживания, владеет упорядоченным набором этапов
// Удаление плана запрещено, пока у него остаются этапы
type MaintenancePlan struct {
	ID          uuid.UUID `json:"id"`
	OwnerID     uuid.UUID `json:"owner_id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	// Связанные данные (не хранятся в БД, заполняются при необходимости)
	Stages []*MaintenanceStage `json:"stages,omitempty"`
}

// Validate проверяет корректность данных плана
func (p *MaintenancePlan) Validate() error {
	if p.OwnerID == uuid.Nil {
		return ErrInvalidPlanData
	}
	if strings.TrimSpace(p.Name) == "" {
		return ErrInvalidPlanData
	}
	return nil
}
