package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Activity - вид работ, привязанный к одной или нескольким категориям обслуживания
type Activity struct {
	ID          uuid.UUID `json:"id"`
	OwnerID     uuid.UUID `json:"owner_id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	TypeIDs     []uuid.UUID `json:"maintenance_type_ids,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Validate проверяет корректность данных вида работ
func (a *Activity) Validate() error {
	if a.OwnerID == uuid.Nil {
		return ErrInvalidActivityData
	}
	if strings.TrimSpace(a.Name) == "" {
		return ErrInvalidActivityData
	}
	for _, id := range a.TypeIDs {
		if id == uuid.Nil {
			return ErrInvalidActivityData
		}
	}
	return nil
}
