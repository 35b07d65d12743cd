package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/vkuznets/upkeep/internal/domain"
	"github.com/vkuznets/upkeep/internal/repository"
)

type mileageRecordRepository struct {
	db *pgxpool.Pool
}

func NewMileageRecordRepository(db *pgxpool.Pool) repository.MileageRecordRepository {
	return &mileageRecordRepository{db: db}
}

func (r *mileageRecordRepository) Create(ctx context.Context, m *domain.MileageRecord) error {
	query := `
		INSERT INTO mileage_records (id, owner_id, equipment_id, record_date, kilometers, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	m.ID = uuid.New()
	m.CreatedAt = time.Now()
	m.UpdatedAt = time.Now()

	_, err := r.db.Exec(ctx, query,
		m.ID,
		m.OwnerID,
		m.EquipmentID,
		m.RecordDate,
		m.Kilometers,
		m.CreatedAt,
		m.UpdatedAt,
	)

	if err != nil {
		// (equipment_id, record_date) уникальна
		if isUniqueViolation(err) {
			return domain.ErrMileageAlreadyExists
		}
		if isForeignKeyViolation(err) {
			return domain.ErrEquipmentNotFound
		}
		return err
	}

	return nil
}

func (r *mileageRecordRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.MileageRecord, error) {
	query := `
		SELECT id, owner_id, equipment_id, record_date, kilometers, created_at, updated_at
		FROM mileage_records
		WHERE id = $1
	`

	m := &domain.MileageRecord{}
	err := r.db.QueryRow(ctx, query, id).Scan(
		&m.ID,
		&m.OwnerID,
		&m.EquipmentID,
		&m.RecordDate,
		&m.Kilometers,
		&m.CreatedAt,
		&m.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrMileageNotFound
		}
		return nil, err
	}

	return m, nil
}

func (r *mileageRecordRepository) GetByEquipmentAndDate(ctx context.Context, equipmentID uuid.UUID, date string) (*domain.MileageRecord, error) {
	query := `
		SELECT id, owner_id, equipment_id, record_date, kilometers, created_at, updated_at
		FROM mileage_records
		WHERE equipment_id = $1 AND record_date = $2::date
	`

	m := &domain.MileageRecord{}
	err := r.db.QueryRow(ctx, query, equipmentID, date).Scan(
		&m.ID,
		&m.OwnerID,
		&m.EquipmentID,
		&m.RecordDate,
		&m.Kilometers,
		&m.CreatedAt,
		&m.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrMileageNotFound
		}
		return nil, err
	}

	return m, nil
}

func (r *mileageRecordRepository) Update(ctx context.Context, m *domain.MileageRecord) error {
	query := `
		UPDATE mileage_records
		SET record_date = $2, kilometers = $3, updated_at = $4
		WHERE id = $1
	`

	m.UpdatedAt = time.Now()

	result, err := r.db.Exec(ctx, query,
		m.ID,
		m.RecordDate,
		m.Kilometers,
		m.UpdatedAt,
	)

	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrMileageAlreadyExists
		}
		return err
	}

	if result.RowsAffected() == 0 {
		return domain.ErrMileageNotFound
	}

	return nil
}

func (r *mileageRecordRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `
		DELETE FROM mileage_records
		WHERE id = $1
	`

	result, err := r.db.Exec(ctx, query, id)
	if err != nil {
		// Запись обслуживания еще ссылается на этот пробег
		if isForeignKeyViolation(err) {
			return domain.ErrConflict
		}
		return err
	}

	if result.RowsAffected() == 0 {
		return domain.ErrMileageNotFound
	}

	return nil
}

func (r *mileageRecordRepository) ListByEquipment(ctx context.Context, equipmentID uuid.UUID, limit, offset int) ([]*domain.MileageRecord, int, error) {
	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM mileage_records WHERE equipment_id = $1`, equipmentID).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `
		SELECT id, owner_id, equipment_id, record_date, kilometers, created_at, updated_at
		FROM mileage_records
		WHERE equipment_id = $1
		ORDER BY record_date DESC
	`

	rows, err := queryPaged(ctx, r.db, query, []interface{}{equipmentID}, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var records []*domain.MileageRecord
	for rows.Next() {
		m := &domain.MileageRecord{}
		err := rows.Scan(
			&m.ID,
			&m.OwnerID,
			&m.EquipmentID,
			&m.RecordDate,
			&m.Kilometers,
			&m.CreatedAt,
			&m.UpdatedAt,
		)
		if err != nil {
			return nil, 0, err
		}
		records = append(records, m)
	}

	return records, total, nil
}
