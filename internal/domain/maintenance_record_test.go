package domain

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

// TestDiffSpareParts тестирует вычисление удаляемых строк запчастей
func TestDiffSpareParts(t *testing.T) {
	kept := &MaintenanceSparePart{ID: uuid.New(), SparePartID: uuid.New(), Quantity: 1}
	dropped := &MaintenanceSparePart{ID: uuid.New(), SparePartID: uuid.New(), Quantity: 2}
	original := []*MaintenanceSparePart{kept, dropped}

	submitted := []*MaintenanceSparePart{
		{ID: kept.ID, SparePartID: kept.SparePartID, Quantity: 5},
		// Строка без ID - новая, на diff не влияет
		{SparePartID: uuid.New(), Quantity: 1},
	}

	removed := DiffSpareParts(original, submitted)
	assert.Equal(t, []uuid.UUID{dropped.ID}, removed)

	// Пустой запрос удаляет все строки
	removed = DiffSpareParts(original, nil)
	assert.ElementsMatch(t, []uuid.UUID{kept.ID, dropped.ID}, removed)
}

// TestDiffActivities тестирует вычисление удаляемых строк работ
func TestDiffActivities(t *testing.T) {
	kept := &MaintenanceActivity{ID: uuid.New(), ActivityID: uuid.New()}
	dropped := &MaintenanceActivity{ID: uuid.New(), ActivityID: uuid.New()}

	removed := DiffActivities(
		[]*MaintenanceActivity{kept, dropped},
		[]*MaintenanceActivity{{ID: kept.ID, ActivityID: kept.ActivityID}},
	)

	assert.Equal(t, []uuid.UUID{dropped.ID}, removed)
}

// TestMaintenanceRecord_Validate тестирует валидацию записи
func TestMaintenanceRecord_Validate(t *testing.T) {
	base := func() *MaintenanceRecord {
		return &MaintenanceRecord{
			OwnerID:     uuid.New(),
			EquipmentID: uuid.New(),
			TypeID:      uuid.New(),
			StartedAt:   time.Date(2026, 8, 20, 10, 0, 0, 0, time.UTC),
			Status:      StatusScheduled,
			Priority:    PriorityMedium,
		}
	}

	assert.NoError(t, base().Validate())

	t.Run("окончание раньше начала", func(t *testing.T) {
		rec := base()
		ended := rec.StartedAt.Add(-time.Hour)
		rec.EndedAt = &ended
		assert.ErrorIs(t, rec.Validate(), ErrInvalidDateRange)
	})

	t.Run("неизвестный статус", func(t *testing.T) {
		rec := base()
		rec.Status = "paused"
		assert.ErrorIs(t, rec.Validate(), ErrInvalidStatus)
	})

	t.Run("строка запчасти с нулевым количеством", func(t *testing.T) {
		rec := base()
		rec.SpareParts = []*MaintenanceSparePart{{SparePartID: uuid.New(), Quantity: 0}}
		assert.ErrorIs(t, rec.Validate(), ErrInvalidRecordData)
	})
}

// TestSameDate тестирует сравнение календарных дат
func TestSameDate(t *testing.T) {
	morning := time.Date(2026, 8, 20, 8, 0, 0, 0, time.UTC)
	evening := time.Date(2026, 8, 20, 22, 30, 0, 0, time.UTC)
	nextDay := time.Date(2026, 8, 21, 0, 0, 0, 0, time.UTC)

	assert.True(t, SameDate(morning, evening))
	assert.False(t, SameDate(evening, nextDay))
}
