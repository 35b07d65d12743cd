package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/vkuznets/upkeep/internal/domain"
	"github.com/vkuznets/upkeep/internal/repository"
)

type maintenanceRecordRepository struct {
	db *pgxpool.Pool
}

func NewMaintenanceRecordRepository(db *pgxpool.Pool) repository.MaintenanceRecordRepository {
	return &maintenanceRecordRepository{db: db}
}

// upsertMileage вставляет или обновляет запись пробега в рамках транзакции
// и возвращает ее ID. Новая запись распознается по нулевому ID
func upsertMileage(ctx context.Context, tx pgx.Tx, m *domain.MileageRecord) (uuid.UUID, error) {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
		m.CreatedAt = time.Now()
		m.UpdatedAt = time.Now()

		query := `
			INSERT INTO mileage_records (id, owner_id, equipment_id, record_date, kilometers, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
		`
		_, err := tx.Exec(ctx, query,
			m.ID,
			m.OwnerID,
			m.EquipmentID,
			m.RecordDate,
			m.Kilometers,
			m.CreatedAt,
			m.UpdatedAt,
		)
		return m.ID, err
	}

	m.UpdatedAt = time.Now()

	query := `
		UPDATE mileage_records
		SET kilometers = $2, updated_at = $3
		WHERE id = $1
	`
	_, err := tx.Exec(ctx, query, m.ID, m.Kilometers, m.UpdatedAt)
	return m.ID, err
}

// upsertItems вставляет или обновляет строки запчастей и работ записи
func upsertItems(ctx context.Context, tx pgx.Tx, rec *domain.MaintenanceRecord) error {
	partQuery := `
		INSERT INTO maintenance_spare_parts (id, record_id, spare_part_id, quantity, unit_price)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE
		SET spare_part_id = EXCLUDED.spare_part_id,
		    quantity = EXCLUDED.quantity,
		    unit_price = EXCLUDED.unit_price
	`
	for _, sp := range rec.SpareParts {
		if sp.ID == uuid.Nil {
			sp.ID = uuid.New()
		}
		sp.RecordID = rec.ID
		if _, err := tx.Exec(ctx, partQuery, sp.ID, sp.RecordID, sp.SparePartID, sp.Quantity, sp.UnitPrice); err != nil {
			return err
		}
	}

	actQuery := `
		INSERT INTO maintenance_activities (id, record_id, activity_id, notes)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE
		SET activity_id = EXCLUDED.activity_id,
		    notes = EXCLUDED.notes
	`
	for _, a := range rec.Activities {
		if a.ID == uuid.Nil {
			a.ID = uuid.New()
		}
		a.RecordID = rec.ID
		if _, err := tx.Exec(ctx, actQuery, a.ID, a.RecordID, a.ActivityID, a.Notes); err != nil {
			return err
		}
	}

	return nil
}

// CreateWithItems создает запись обслуживания вместе с записью пробега и
// строками запчастей/работ. Все записи выполняются в одной транзакции:
// частичного состояния при сбое не остается
func (r *maintenanceRecordRepository) CreateWithItems(ctx context.Context, rec *domain.MaintenanceRecord, mileage *domain.MileageRecord) error {
	query := `
		INSERT INTO maintenance_records (id, owner_id, equipment_id, maintenance_type_id, started_at, ended_at,
		                                 observations, status, priority, mileage_record_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`

	rec.ID = uuid.New()
	rec.CreatedAt = time.Now()
	rec.UpdatedAt = time.Now()

	err := withTx(ctx, r.db, func(tx pgx.Tx) error {
		if mileage != nil {
			mileageID, err := upsertMileage(ctx, tx, mileage)
			if err != nil {
				return err
			}
			rec.MileageRecordID = &mileageID
		}

		_, err := tx.Exec(ctx, query,
			rec.ID,
			rec.OwnerID,
			rec.EquipmentID,
			rec.TypeID,
			rec.StartedAt,
			rec.EndedAt,
			rec.Observations,
			rec.Status,
			rec.Priority,
			rec.MileageRecordID,
			rec.CreatedAt,
			rec.UpdatedAt,
		)
		if err != nil {
			return err
		}

		return upsertItems(ctx, tx, rec)
	})

	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.ErrInvalidRecordData
		}
		return err
	}

	return nil
}

// UpdateWithItems обновляет запись, запись пробега и строки одной транзакцией.
// removedParts и removedActivities - строки, которые были в исходной записи,
// но отсутствуют в присланной версии
func (r *maintenanceRecordRepository) UpdateWithItems(ctx context.Context, rec *domain.MaintenanceRecord, mileage *domain.MileageRecord, removedParts, removedActivities []uuid.UUID) error {
	query := `
		UPDATE maintenance_records
		SET equipment_id = $2, maintenance_type_id = $3, started_at = $4, ended_at = $5,
		    observations = $6, status = $7, priority = $8, mileage_record_id = $9, updated_at = $10
		WHERE id = $1
	`

	rec.UpdatedAt = time.Now()

	err := withTx(ctx, r.db, func(tx pgx.Tx) error {
		if mileage != nil {
			mileageID, err := upsertMileage(ctx, tx, mileage)
			if err != nil {
				return err
			}
			rec.MileageRecordID = &mileageID
		}

		result, err := tx.Exec(ctx, query,
			rec.ID,
			rec.EquipmentID,
			rec.TypeID,
			rec.StartedAt,
			rec.EndedAt,
			rec.Observations,
			rec.Status,
			rec.Priority,
			rec.MileageRecordID,
			rec.UpdatedAt,
		)
		if err != nil {
			return err
		}
		if result.RowsAffected() == 0 {
			return domain.ErrRecordNotFound
		}

		if len(removedParts) > 0 {
			_, err = tx.Exec(ctx, `DELETE FROM maintenance_spare_parts WHERE record_id = $1 AND id = ANY($2)`, rec.ID, removedParts)
			if err != nil {
				return err
			}
		}
		if len(removedActivities) > 0 {
			_, err = tx.Exec(ctx, `DELETE FROM maintenance_activities WHERE record_id = $1 AND id = ANY($2)`, rec.ID, removedActivities)
			if err != nil {
				return err
			}
		}

		return upsertItems(ctx, tx, rec)
	})

	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.ErrInvalidRecordData
		}
		return err
	}

	return nil
}

func (r *maintenanceRecordRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.MaintenanceRecord, error) {
	query := `
		SELECT id, owner_id, equipment_id, maintenance_type_id, started_at, ended_at,
		       observations, status, priority, mileage_record_id, created_at, updated_at
		FROM maintenance_records
		WHERE id = $1
	`

	rec := &domain.MaintenanceRecord{}
	err := r.db.QueryRow(ctx, query, id).Scan(
		&rec.ID,
		&rec.OwnerID,
		&rec.EquipmentID,
		&rec.TypeID,
		&rec.StartedAt,
		&rec.EndedAt,
		&rec.Observations,
		&rec.Status,
		&rec.Priority,
		&rec.MileageRecordID,
		&rec.CreatedAt,
		&rec.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrRecordNotFound
		}
		return nil, err
	}

	if rec.SpareParts, err = r.listSpareParts(ctx, id); err != nil {
		return nil, err
	}
	if rec.Activities, err = r.listActivities(ctx, id); err != nil {
		return nil, err
	}

	return rec, nil
}

func (r *maintenanceRecordRepository) listSpareParts(ctx context.Context, recordID uuid.UUID) ([]*domain.MaintenanceSparePart, error) {
	query := `
		SELECT id, record_id, spare_part_id, quantity, unit_price
		FROM maintenance_spare_parts
		WHERE record_id = $1
		ORDER BY id
	`

	rows, err := r.db.Query(ctx, query, recordID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var parts []*domain.MaintenanceSparePart
	for rows.Next() {
		sp := &domain.MaintenanceSparePart{}
		if err := rows.Scan(&sp.ID, &sp.RecordID, &sp.SparePartID, &sp.Quantity, &sp.UnitPrice); err != nil {
			return nil, err
		}
		parts = append(parts, sp)
	}

	return parts, nil
}

func (r *maintenanceRecordRepository) listActivities(ctx context.Context, recordID uuid.UUID) ([]*domain.MaintenanceActivity, error) {
	query := `
		SELECT id, record_id, activity_id, notes
		FROM maintenance_activities
		WHERE record_id = $1
		ORDER BY id
	`

	rows, err := r.db.Query(ctx, query, recordID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var acts []*domain.MaintenanceActivity
	for rows.Next() {
		a := &domain.MaintenanceActivity{}
		if err := rows.Scan(&a.ID, &a.RecordID, &a.ActivityID, &a.Notes); err != nil {
			return nil, err
		}
		acts = append(acts, a)
	}

	return acts, nil
}

func (r *maintenanceRecordRepository) ListByOwner(ctx context.Context, ownerID uuid.UUID, filter repository.RecordFilter, limit, offset int) ([]*domain.MaintenanceRecord, int, error) {
	where := ` WHERE owner_id = $1`
	args := []interface{}{ownerID}

	if len(filter.Statuses) > 0 {
		args = append(args, filter.Statuses)
		where += fmt.Sprintf(" AND status = ANY($%d)", len(args))
	}
	if len(filter.Priorities) > 0 {
		args = append(args, filter.Priorities)
		where += fmt.Sprintf(" AND priority = ANY($%d)", len(args))
	}

	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM maintenance_records`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `
		SELECT id, owner_id, equipment_id, maintenance_type_id, started_at, ended_at,
		       observations, status, priority, mileage_record_id, created_at, updated_at
		FROM maintenance_records
	` + where + `
		ORDER BY started_at DESC
	`

	rows, err := queryPaged(ctx, r.db, query, args, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var records []*domain.MaintenanceRecord
	for rows.Next() {
		rec := &domain.MaintenanceRecord{}
		err := rows.Scan(
			&rec.ID,
			&rec.OwnerID,
			&rec.EquipmentID,
			&rec.TypeID,
			&rec.StartedAt,
			&rec.EndedAt,
			&rec.Observations,
			&rec.Status,
			&rec.Priority,
			&rec.MileageRecordID,
			&rec.CreatedAt,
			&rec.UpdatedAt,
		)
		if err != nil {
			return nil, 0, err
		}
		records = append(records, rec)
	}

	return records, total, nil
}

func (r *maintenanceRecordRepository) Delete(ctx context.Context, id uuid.UUID) error {
	// Строки запчастей и работ удаляются каскадно (ON DELETE CASCADE)
	query := `
		DELETE FROM maintenance_records
		WHERE id = $1
	`

	result, err := r.db.Exec(ctx, query, id)
	if err != nil {
		return err
	}

	if result.RowsAffected() == 0 {
		return domain.ErrRecordNotFound
	}

	return nil
}
