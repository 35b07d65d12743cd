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

type maintenanceStageRepository struct {
	db *pgxpool.Pool
}

func NewMaintenanceStageRepository(db *pgxpool.Pool) repository.MaintenanceStageRepository {
	return &maintenanceStageRepository{db: db}
}

// reindexQuery присваивает stage_index = позиция в переданном массиве ID.
// Порядковый номер берется из unnest WITH ORDINALITY, вся операция - один UPDATE
const reindexQuery = `
	UPDATE maintenance_stages AS s
	SET stage_index = ord.idx, updated_at = NOW()
	FROM unnest($2::uuid[]) WITH ORDINALITY AS ord(id, idx)
	WHERE s.id = ord.id AND s.plan_id = $1
`

func (r *maintenanceStageRepository) Create(ctx context.Context, stage *domain.MaintenanceStage, orderedIDs []uuid.UUID) error {
	query := `
		INSERT INTO maintenance_stages (id, plan_id, maintenance_type_id, kilometers, days, stage_index, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	stage.CreatedAt = time.Now()
	stage.UpdatedAt = time.Now()

	// Вставка и переиндексация плана - одна транзакция: сбой переиндексации
	// откатывает и саму вставку
	err := withTx(ctx, r.db, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, query,
			stage.ID,
			stage.PlanID,
			stage.TypeID,
			stage.Kilometers,
			stage.Days,
			stage.StageIndex,
			stage.CreatedAt,
			stage.UpdatedAt,
		)
		if err != nil {
			return err
		}

		if len(orderedIDs) > 0 {
			if _, err := tx.Exec(ctx, reindexQuery, stage.PlanID, orderedIDs); err != nil {
				return err
			}
		}
		return nil
	})

	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.ErrInvalidStageData
		}
		return err
	}

	return nil
}

func (r *maintenanceStageRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.MaintenanceStage, error) {
	query := `
		SELECT id, plan_id, maintenance_type_id, kilometers, days, stage_index, created_at, updated_at
		FROM maintenance_stages
		WHERE id = $1
	`

	stage := &domain.MaintenanceStage{}
	err := r.db.QueryRow(ctx, query, id).Scan(
		&stage.ID,
		&stage.PlanID,
		&stage.TypeID,
		&stage.Kilometers,
		&stage.Days,
		&stage.StageIndex,
		&stage.CreatedAt,
		&stage.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrStageNotFound
		}
		return nil, err
	}

	return stage, nil
}

func (r *maintenanceStageRepository) Update(ctx context.Context, stage *domain.MaintenanceStage, orderedIDs []uuid.UUID) error {
	query := `
		UPDATE maintenance_stages
		SET maintenance_type_id = $2, kilometers = $3, days = $4, updated_at = $5
		WHERE id = $1
	`

	stage.UpdatedAt = time.Now()

	err := withTx(ctx, r.db, func(tx pgx.Tx) error {
		result, err := tx.Exec(ctx, query,
			stage.ID,
			stage.TypeID,
			stage.Kilometers,
			stage.Days,
			stage.UpdatedAt,
		)
		if err != nil {
			return err
		}
		if result.RowsAffected() == 0 {
			return domain.ErrStageNotFound
		}

		if len(orderedIDs) > 0 {
			if _, err := tx.Exec(ctx, reindexQuery, stage.PlanID, orderedIDs); err != nil {
				return err
			}
		}
		return nil
	})

	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.ErrInvalidStageData
		}
		return err
	}

	return nil
}

func (r *maintenanceStageRepository) Delete(ctx context.Context, id uuid.UUID) error {
	// Удаление и уплотнение индексов оставшихся этапов - одна транзакция
	return withTx(ctx, r.db, func(tx pgx.Tx) error {
		var planID uuid.UUID
		err := tx.QueryRow(ctx, `DELETE FROM maintenance_stages WHERE id = $1 RETURNING plan_id`, id).Scan(&planID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return domain.ErrStageNotFound
			}
			return err
		}

		compact := `
			UPDATE maintenance_stages AS s
			SET stage_index = ranked.idx
			FROM (
				SELECT id, ROW_NUMBER() OVER (ORDER BY stage_index) AS idx
				FROM maintenance_stages
				WHERE plan_id = $1
			) ranked
			WHERE s.id = ranked.id AND s.stage_index <> ranked.idx
		`
		_, err = tx.Exec(ctx, compact, planID)
		return err
	})
}

func (r *maintenanceStageRepository) ListByPlan(ctx context.Context, planID uuid.UUID) ([]*domain.MaintenanceStage, error) {
	query := `
		SELECT id, plan_id, maintenance_type_id, kilometers, days, stage_index, created_at, updated_at
		FROM maintenance_stages
		WHERE plan_id = $1
		ORDER BY stage_index
	`

	rows, err := r.db.Query(ctx, query, planID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var stages []*domain.MaintenanceStage
	for rows.Next() {
		stage := &domain.MaintenanceStage{}
		err := rows.Scan(
			&stage.ID,
			&stage.PlanID,
			&stage.TypeID,
			&stage.Kilometers,
			&stage.Days,
			&stage.StageIndex,
			&stage.CreatedAt,
			&stage.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		stages = append(stages, stage)
	}

	return stages, nil
}

func (r *maintenanceStageRepository) Reindex(ctx context.Context, planID uuid.UUID, orderedIDs []uuid.UUID) error {
	return withTx(ctx, r.db, func(tx pgx.Tx) error {
		result, err := tx.Exec(ctx, reindexQuery, planID, orderedIDs)
		if err != nil {
			return err
		}
		// Каждый переданный ID обязан принадлежать плану
		if int(result.RowsAffected()) != len(orderedIDs) {
			return domain.ErrStageSetMismatch
		}
		return nil
	})
}
