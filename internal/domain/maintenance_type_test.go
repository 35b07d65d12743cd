package domain

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

// TestMaintenanceType_Rebase тестирует пересчет level/path узла
func TestMaintenanceType_Rebase(t *testing.T) {
	root := &MaintenanceType{
		ID:      uuid.New(),
		OwnerID: uuid.New(),
		Type:    "Engine",
	}
	root.Rebase(nil)

	assert.Nil(t, root.ParentID)
	assert.Equal(t, 0, root.Level)
	assert.Equal(t, "Engine", root.Path)

	child := &MaintenanceType{
		ID:      uuid.New(),
		OwnerID: root.OwnerID,
		Type:    "Oil",
	}
	child.Rebase(root)

	assert.Equal(t, root.ID, *child.ParentID)
	assert.Equal(t, 1, child.Level)
	assert.Equal(t, "Engine/Oil", child.Path)

	grandchild := &MaintenanceType{
		ID:      uuid.New(),
		OwnerID: root.OwnerID,
		Type:    "Filter",
	}
	grandchild.Rebase(child)

	assert.Equal(t, 2, grandchild.Level)
	assert.Equal(t, "Engine/Oil/Filter", grandchild.Path)
}

// TestMaintenanceType_IsDescendantOf тестирует проверку цикла по путям
func TestMaintenanceType_IsDescendantOf(t *testing.T) {
	engine := &MaintenanceType{ID: uuid.New(), Type: "Engine", Path: "Engine"}
	oil := &MaintenanceType{ID: uuid.New(), Type: "Oil", Path: "Engine/Oil"}
	filter := &MaintenanceType{ID: uuid.New(), Type: "Filter", Path: "Engine/Oil/Filter"}
	brakes := &MaintenanceType{ID: uuid.New(), Type: "Brakes", Path: "Brakes"}

	assert.True(t, oil.IsDescendantOf(engine))
	assert.True(t, filter.IsDescendantOf(engine))
	assert.True(t, filter.IsDescendantOf(oil))
	assert.True(t, engine.IsDescendantOf(engine))

	assert.False(t, engine.IsDescendantOf(oil))
	assert.False(t, brakes.IsDescendantOf(engine))

	// Префикс имени без разделителя - не потомок
	engineOil := &MaintenanceType{ID: uuid.New(), Type: "EngineOil", Path: "EngineOil"}
	assert.False(t, engineOil.IsDescendantOf(engine))
}

// TestMaintenanceType_Validate тестирует валидацию узла
func TestMaintenanceType_Validate(t *testing.T) {
	valid := &MaintenanceType{OwnerID: uuid.New(), Type: "Engine"}
	assert.NoError(t, valid.Validate())

	empty := &MaintenanceType{OwnerID: uuid.New(), Type: "  "}
	assert.ErrorIs(t, empty.Validate(), ErrInvalidTypeData)

	// "/" зарезервирован как разделитель пути
	slash := &MaintenanceType{OwnerID: uuid.New(), Type: "Engine/Oil"}
	assert.ErrorIs(t, slash.Validate(), ErrInvalidTypeData)
}
