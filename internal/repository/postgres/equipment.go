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

type equipmentRepository struct {
	db *pgxpool.Pool
}

func NewEquipmentRepository(db *pgxpool.Pool) repository.EquipmentRepository {
	return &equipmentRepository{db: db}
}

func (r *equipmentRepository) Create(ctx context.Context, eq *domain.Equipment) error {
	query := `
		INSERT INTO equipment (id, owner_id, equipment_type, license_plate, code, maintenance_plan_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	eq.ID = uuid.New()
	eq.CreatedAt = time.Now()
	eq.UpdatedAt = time.Now()

	// Нормализуем инвентарный код перед сохранением
	eq.Code = domain.NormalizeCode(eq.Code)

	_, err := r.db.Exec(ctx, query,
		eq.ID,
		eq.OwnerID,
		eq.EquipmentType,
		eq.LicensePlate,
		eq.Code,
		eq.MaintenancePlanID,
		eq.CreatedAt,
		eq.UpdatedAt,
	)

	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrEquipmentAlreadyExists
		}
		if isForeignKeyViolation(err) {
			return domain.ErrPlanNotFound
		}
		return err
	}

	return nil
}

func (r *equipmentRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Equipment, error) {
	query := `
		SELECT id, owner_id, equipment_type, license_plate, code, maintenance_plan_id, created_at, updated_at
		FROM equipment
		WHERE id = $1
	`

	eq := &domain.Equipment{}
	err := r.db.QueryRow(ctx, query, id).Scan(
		&eq.ID,
		&eq.OwnerID,
		&eq.EquipmentType,
		&eq.LicensePlate,
		&eq.Code,
		&eq.MaintenancePlanID,
		&eq.CreatedAt,
		&eq.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrEquipmentNotFound
		}
		return nil, err
	}

	return eq, nil
}

func (r *equipmentRepository) GetByCode(ctx context.Context, ownerID uuid.UUID, code string) (*domain.Equipment, error) {
	query := `
		SELECT id, owner_id, equipment_type, license_plate, code, maintenance_plan_id, created_at, updated_at
		FROM equipment
		WHERE owner_id = $1 AND code = $2
	`

	eq := &domain.Equipment{}
	err := r.db.QueryRow(ctx, query, ownerID, domain.NormalizeCode(code)).Scan(
		&eq.ID,
		&eq.OwnerID,
		&eq.EquipmentType,
		&eq.LicensePlate,
		&eq.Code,
		&eq.MaintenancePlanID,
		&eq.CreatedAt,
		&eq.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrEquipmentNotFound
		}
		return nil, err
	}

	return eq, nil
}

func (r *equipmentRepository) Update(ctx context.Context, eq *domain.Equipment) error {
	query := `
		UPDATE equipment
		SET equipment_type = $2, license_plate = $3, code = $4, maintenance_plan_id = $5, updated_at = $6
		WHERE id = $1
	`

	eq.UpdatedAt = time.Now()
	eq.Code = domain.NormalizeCode(eq.Code)

	result, err := r.db.Exec(ctx, query,
		eq.ID,
		eq.EquipmentType,
		eq.LicensePlate,
		eq.Code,
		eq.MaintenancePlanID,
		eq.UpdatedAt,
	)

	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrEquipmentAlreadyExists
		}
		if isForeignKeyViolation(err) {
			return domain.ErrPlanNotFound
		}
		return err
	}

	if result.RowsAffected() == 0 {
		return domain.ErrEquipmentNotFound
	}

	return nil
}

func (r *equipmentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `
		DELETE FROM equipment
		WHERE id = $1
	`

	result, err := r.db.Exec(ctx, query, id)
	if err != nil {
		// FK RESTRICT из maintenance_records/mileage_records блокирует удаление
		if isForeignKeyViolation(err) {
			return domain.ErrEquipmentInUse
		}
		return err
	}

	if result.RowsAffected() == 0 {
		return domain.ErrEquipmentNotFound
	}

	return nil
}

func (r *equipmentRepository) ListByOwner(ctx context.Context, ownerID uuid.UUID, limit, offset int) ([]*domain.Equipment, int, error) {
	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM equipment WHERE owner_id = $1`, ownerID).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `
		SELECT id, owner_id, equipment_type, license_plate, code, maintenance_plan_id, created_at, updated_at
		FROM equipment
		WHERE owner_id = $1
		ORDER BY created_at DESC
	`

	rows, err := queryPaged(ctx, r.db, query, []interface{}{ownerID}, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var items []*domain.Equipment
	for rows.Next() {
		eq := &domain.Equipment{}
		err := rows.Scan(
			&eq.ID,
			&eq.OwnerID,
			&eq.EquipmentType,
			&eq.LicensePlate,
			&eq.Code,
			&eq.MaintenancePlanID,
			&eq.CreatedAt,
			&eq.UpdatedAt,
		)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, eq)
	}

	return items, total, nil
}

// ListWithLastRecord возвращает технику вместе с последней записью обслуживания.
// Фильтры применяются к этой записи: значения одной оси объединяются через OR
// (= ANY массива), оси между собой - через AND
func (r *equipmentRepository) ListWithLastRecord(ctx context.Context, ownerID uuid.UUID, filter repository.RecordFilter, limit, offset int) ([]*domain.Equipment, int, error) {
	where := `
		WHERE e.owner_id = $1
	`
	args := []interface{}{ownerID}

	if len(filter.Statuses) > 0 {
		args = append(args, filter.Statuses)
		where += fmt.Sprintf(" AND mr.status = ANY($%d)", len(args))
	}
	if len(filter.Priorities) > 0 {
		args = append(args, filter.Priorities)
		where += fmt.Sprintf(" AND mr.priority = ANY($%d)", len(args))
	}

	from := `
		FROM equipment e
		JOIN LATERAL (
			SELECT id, owner_id, equipment_id, maintenance_type_id, started_at, ended_at,
			       observations, status, priority, mileage_record_id, created_at, updated_at
			FROM maintenance_records
			WHERE equipment_id = e.id
			ORDER BY started_at DESC
			LIMIT 1
		) mr ON true
	`

	var total int
	if err := r.db.QueryRow(ctx, "SELECT COUNT(*) "+from+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `
		SELECT e.id, e.owner_id, e.equipment_type, e.license_plate, e.code, e.maintenance_plan_id,
		       e.created_at, e.updated_at,
		       mr.id, mr.owner_id, mr.equipment_id, mr.maintenance_type_id, mr.started_at, mr.ended_at,
		       mr.observations, mr.status, mr.priority, mr.mileage_record_id, mr.created_at, mr.updated_at
	` + from + where + `
		ORDER BY e.created_at DESC
	`

	rows, err := queryPaged(ctx, r.db, query, args, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var items []*domain.Equipment
	for rows.Next() {
		eq := &domain.Equipment{}
		rec := &domain.MaintenanceRecord{}
		err := rows.Scan(
			&eq.ID,
			&eq.OwnerID,
			&eq.EquipmentType,
			&eq.LicensePlate,
			&eq.Code,
			&eq.MaintenancePlanID,
			&eq.CreatedAt,
			&eq.UpdatedAt,
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
		eq.LastRecord = rec
		items = append(items, eq)
	}

	return items, total, nil
}
