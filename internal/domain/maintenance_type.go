package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// MaintenanceType - узел дерева категорий обслуживания
// Дерево самоссылающееся (ParentID), Level и Path - материализованные
// производные: Level равен числу предков (корень = 0), Path - цепочка
// значений Type от корня до узла, соединенная через "/"
type MaintenanceType struct {
	ID        uuid.UUID  `json:"id"`
	OwnerID   uuid.UUID  `json:"owner_id"`
	ParentID  *uuid.UUID `json:"parent_id,omitempty"`
	Type      string     `json:"type"`
	Level     int        `json:"level"`
	Path      string     `json:"path"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// Validate проверяет корректность данных узла
func (t *MaintenanceType) Validate() error {
	if t.OwnerID == uuid.Nil {
		return ErrInvalidTypeData
	}
	if strings.TrimSpace(t.Type) == "" {
		return ErrInvalidTypeData
	}
	// "/" - разделитель материализованного пути
	if strings.Contains(t.Type, "/") {
		return ErrInvalidTypeData
	}
	return nil
}

// Rebase пересчитывает Level и Path узла относительно нового родителя.
// parent == nil переводит узел в корень
func (t *MaintenanceType) Rebase(parent *MaintenanceType) {
	if parent == nil {
		t.ParentID = nil
		t.Level = 0
		t.Path = t.Type
		return
	}
	id := parent.ID
	t.ParentID = &id
	t.Level = parent.Level + 1
	t.Path = parent.Path + "/" + t.Type
}

// IsDescendantOf проверяет по материализованным путям, является ли узел
// потомком other (или самим other). Используется полным циклическим
// контролем при переносе узла
func (t *MaintenanceType) IsDescendantOf(other *MaintenanceType) bool {
	if t.ID == other.ID {
		return true
	}
	return strings.HasPrefix(t.Path, other.Path+"/")
}
