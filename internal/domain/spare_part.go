package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// SparePart - запчасть из справочника владельца
type SparePart struct {
	ID          uuid.UUID `json:"id"`
	OwnerID     uuid.UUID `json:"owner_id"`
	FactoryCode string    `json:"factory_code"` // Заводской код (уникальный в рамках владельца)
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Price       float64   `json:"price"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Validate проверяет корректность данных запчасти
func (p *SparePart) Validate() error {
	if p.OwnerID == uuid.Nil {
		return ErrInvalidSparePartData
	}
	p.FactoryCode = NormalizeCode(p.FactoryCode)
	if p.FactoryCode == "" {
		return ErrInvalidSparePartData
	}
	if strings.TrimSpace(p.Name) == "" {
		return ErrInvalidSparePartData
	}
	if p.Price < 0 {
		return ErrInvalidSparePartData
	}
	return nil
}
