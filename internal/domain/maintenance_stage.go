package domain

import (
	"sort"
	"time"

	"github.com/google/uuid"
)

// MaintenanceStage - этап плана обслуживания
// Порог срабатывания задается пробегом (Kilometers) и/или сроком (Days).
// StageIndex - персистентный ранг этапа внутри плана: всегда равен позиции
// этапа при сортировке всех этапов плана по (kilometers, days) по возрастанию
type MaintenanceStage struct {
	ID         uuid.UUID `json:"id"`
	PlanID     uuid.UUID `json:"plan_id"`
	TypeID     uuid.UUID `json:"maintenance_type_id"`
	Kilometers int       `json:"kilometers"`
	Days       int       `json:"days"`
	StageIndex int       `json:"stage_index"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Validate проверяет корректность данных этапа
func (s *MaintenanceStage) Validate() error {
	if s.PlanID == uuid.Nil || s.TypeID == uuid.Nil {
		return ErrInvalidStageData
	}
	if s.Kilometers < 0 || s.Days < 0 {
		return ErrInvalidStageData
	}
	return nil
}

// CheckThresholds проверяет, что пороги кандидата не дублируют пороги других
// этапов плана. Уникальность проверяется по каждой оси отдельно: два этапа
// одного плана не могут иметь одинаковый пробег И не могут иметь одинаковый срок.
// Этап с тем же ID (редактируемый) исключается из сравнения
func CheckThresholds(stages []*MaintenanceStage, candidate *MaintenanceStage) error {
	for _, st := range stages {
		if st.ID == candidate.ID {
			continue
		}
		if st.Kilometers == candidate.Kilometers {
			return ErrDuplicateKilometers
		}
		if st.Days == candidate.Days {
			return ErrDuplicateDays
		}
	}
	return nil
}

// MergeStage вливает кандидата в список этапов плана: заменяет этап с тем же
// ID, если он есть, иначе добавляет в конец. Исходный срез не модифицируется
func MergeStage(stages []*MaintenanceStage, candidate *MaintenanceStage) []*MaintenanceStage {
	merged := make([]*MaintenanceStage, 0, len(stages)+1)
	replaced := false
	for _, st := range stages {
		if st.ID == candidate.ID {
			merged = append(merged, candidate)
			replaced = true
			continue
		}
		merged = append(merged, st)
	}
	if !replaced {
		merged = append(merged, candidate)
	}
	return merged
}

// SortStages сортирует этапы по кортежу (kilometers, days) по возрастанию.
// Сортировка стабильная, сортируется копия среза
func SortStages(stages []*MaintenanceStage) []*MaintenanceStage {
	sorted := make([]*MaintenanceStage, len(stages))
	copy(sorted, stages)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Kilometers != sorted[j].Kilometers {
			return sorted[i].Kilometers < sorted[j].Kilometers
		}
		return sorted[i].Days < sorted[j].Days
	})
	return sorted
}

// ReindexedIDs сортирует этапы по (kilometers, days) и сравнивает позицию
// каждого этапа с его сохраненным StageIndex. Возвращает упорядоченный список
// ID и признак того, что хотя бы один индекс изменился и нужна переиндексация
func ReindexedIDs(stages []*MaintenanceStage) ([]uuid.UUID, bool) {
	sorted := SortStages(stages)

	ids := make([]uuid.UUID, len(sorted))
	changed := false
	for i, st := range sorted {
		ids[i] = st.ID
		// Индексы хранятся начиная с 1
		if st.StageIndex != i+1 {
			changed = true
		}
	}
	return ids, changed
}
