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

type activityRepository struct {
	db *pgxpool.Pool
}

func NewActivityRepository(db *pgxpool.Pool) repository.ActivityRepository {
	return &activityRepository{db: db}
}

// replaceTypeLinks заменяет связи вида работ с категориями обслуживания
func replaceTypeLinks(ctx context.Context, tx pgx.Tx, activityID uuid.UUID, typeIDs []uuid.UUID) error {
	if _, err := tx.Exec(ctx, `DELETE FROM activity_types WHERE activity_id = $1`, activityID); err != nil {
		return err
	}
	for _, typeID := range typeIDs {
		_, err := tx.Exec(ctx, `INSERT INTO activity_types (activity_id, maintenance_type_id) VALUES ($1, $2)`, activityID, typeID)
		if err != nil {
			return err
		}
	}
	return nil
}

func (r *activityRepository) Create(ctx context.Context, a *domain.Activity) error {
	query := `
		INSERT INTO activities (id, owner_id, name, description, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	a.ID = uuid.New()
	a.CreatedAt = time.Now()
	a.UpdatedAt = time.Now()

	err := withTx(ctx, r.db, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, query,
			a.ID,
			a.OwnerID,
			a.Name,
			a.Description,
			a.CreatedAt,
			a.UpdatedAt,
		)
		if err != nil {
			return err
		}
		return replaceTypeLinks(ctx, tx, a.ID, a.TypeIDs)
	})

	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.ErrTypeNotFound
		}
		return err
	}

	return nil
}

func (r *activityRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Activity, error) {
	query := `
		SELECT id, owner_id, name, description, created_at, updated_at
		FROM activities
		WHERE id = $1
	`

	a := &domain.Activity{}
	err := r.db.QueryRow(ctx, query, id).Scan(
		&a.ID,
		&a.OwnerID,
		&a.Name,
		&a.Description,
		&a.CreatedAt,
		&a.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrActivityNotFound
		}
		return nil, err
	}

	if a.TypeIDs, err = r.listTypeIDs(ctx, id); err != nil {
		return nil, err
	}

	return a, nil
}

func (r *activityRepository) listTypeIDs(ctx context.Context, activityID uuid.UUID) ([]uuid.UUID, error) {
	rows, err := r.db.Query(ctx, `SELECT maintenance_type_id FROM activity_types WHERE activity_id = $1`, activityID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}

	return ids, nil
}

func (r *activityRepository) Update(ctx context.Context, a *domain.Activity) error {
	query := `
		UPDATE activities
		SET name = $2, description = $3, updated_at = $4
		WHERE id = $1
	`

	a.UpdatedAt = time.Now()

	err := withTx(ctx, r.db, func(tx pgx.Tx) error {
		result, err := tx.Exec(ctx, query,
			a.ID,
			a.Name,
			a.Description,
			a.UpdatedAt,
		)
		if err != nil {
			return err
		}
		if result.RowsAffected() == 0 {
			return domain.ErrActivityNotFound
		}
		return replaceTypeLinks(ctx, tx, a.ID, a.TypeIDs)
	})

	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.ErrTypeNotFound
		}
		return err
	}

	return nil
}

func (r *activityRepository) Delete(ctx context.Context, id uuid.UUID) error {
	err := withTx(ctx, r.db, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM activity_types WHERE activity_id = $1`, id); err != nil {
			return err
		}

		result, err := tx.Exec(ctx, `DELETE FROM activities WHERE id = $1`, id)
		if err != nil {
			return err
		}
		if result.RowsAffected() == 0 {
			return domain.ErrActivityNotFound
		}
		return nil
	})

	if err != nil {
		// Строки записей обслуживания еще ссылаются на вид работ
		if isForeignKeyViolation(err) {
			return domain.ErrActivityInUse
		}
		return err
	}

	return nil
}

func (r *activityRepository) ListByOwner(ctx context.Context, ownerID uuid.UUID, limit, offset int) ([]*domain.Activity, int, error) {
	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM activities WHERE owner_id = $1`, ownerID).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `
		SELECT id, owner_id, name, description, created_at, updated_at
		FROM activities
		WHERE owner_id = $1
		ORDER BY name
	`

	rows, err := queryPaged(ctx, r.db, query, []interface{}{ownerID}, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var activities []*domain.Activity
	for rows.Next() {
		a := &domain.Activity{}
		err := rows.Scan(
			&a.ID,
			&a.OwnerID,
			&a.Name,
			&a.Description,
			&a.CreatedAt,
			&a.UpdatedAt,
		)
		if err != nil {
			return nil, 0, err
		}
		activities = append(activities, a)
	}
	rows.Close()

	for _, a := range activities {
		var err error
		if a.TypeIDs, err = r.listTypeIDs(ctx, a.ID); err != nil {
			return nil, 0, err
		}
	}

	return activities, total, nil
}
