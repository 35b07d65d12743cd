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

type maintenancePlanRepository struct {
	db *pgxpool.Pool
}

func NewMaintenancePlanRepository(db *pgxpool.Pool) repository.MaintenancePlanRepository {
	return &maintenancePlanRepository{db: db}
}

func (r *maintenancePlanRepository) Create(ctx context.Context, plan *domain.MaintenancePlan) error {
	query := `
		INSERT INTO maintenance_plans (id, owner_id, name, description, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	plan.ID = uuid.New()
	plan.CreatedAt = time.Now()
	plan.UpdatedAt = time.Now()

	_, err := r.db.Exec(ctx, query,
		plan.ID,
		plan.OwnerID,
		plan.Name,
		plan.Description,
		plan.CreatedAt,
		plan.UpdatedAt,
	)

	return err
}

func (r *maintenancePlanRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.MaintenancePlan, error) {
	query := `
		SELECT id, owner_id, name, description, created_at, updated_at
		FROM maintenance_plans
		WHERE id = $1
	`

	plan := &domain.MaintenancePlan{}
	err := r.db.QueryRow(ctx, query, id).Scan(
		&plan.ID,
		&plan.OwnerID,
		&plan.Name,
		&plan.Description,
		&plan.CreatedAt,
		&plan.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrPlanNotFound
		}
		return nil, err
	}

	return plan, nil
}

func (r *maintenancePlanRepository) Update(ctx context.Context, plan *domain.MaintenancePlan) error {
	query := `
		UPDATE maintenance_plans
		SET name = $2, description = $3, updated_at = $4
		WHERE id = $1
	`

	plan.UpdatedAt = time.Now()

	result, err := r.db.Exec(ctx, query,
		plan.ID,
		plan.Name,
		plan.Description,
		plan.UpdatedAt,
	)

	if err != nil {
		return err
	}

	if result.RowsAffected() == 0 {
		return domain.ErrPlanNotFound
	}

	return nil
}

func (r *maintenancePlanRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `
		DELETE FROM maintenance_plans
		WHERE id = $1
	`

	result, err := r.db.Exec(ctx, query, id)
	if err != nil {
		// Этапы или техника еще ссылаются на план
		if isForeignKeyViolation(err) {
			return domain.ErrPlanHasStages
		}
		return err
	}

	if result.RowsAffected() == 0 {
		return domain.ErrPlanNotFound
	}

	return nil
}

func (r *maintenancePlanRepository) ListByOwner(ctx context.Context, ownerID uuid.UUID, limit, offset int) ([]*domain.MaintenancePlan, int, error) {
	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM maintenance_plans WHERE owner_id = $1`, ownerID).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `
		SELECT id, owner_id, name, description, created_at, updated_at
		FROM maintenance_plans
		WHERE owner_id = $1
		ORDER BY created_at DESC
	`

	rows, err := queryPaged(ctx, r.db, query, []interface{}{ownerID}, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var plans []*domain.MaintenancePlan
	for rows.Next() {
		plan := &domain.MaintenancePlan{}
		err := rows.Scan(
			&plan.ID,
			&plan.OwnerID,
			&plan.Name,
			&plan.Description,
			&plan.CreatedAt,
			&plan.UpdatedAt,
		)
		if err != nil {
			return nil, 0, err
		}
		plans = append(plans, plan)
	}

	return plans, total, nil
}

func (r *maintenancePlanRepository) CountStages(ctx context.Context, planID uuid.UUID) (int, error) {
	var count int
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM maintenance_stages WHERE plan_id = $1`, planID).Scan(&count)
	return count, err
}
