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

type maintenanceTypeRepository struct {
	db *pgxpool.Pool
}

func NewMaintenanceTypeRepository(db *pgxpool.Pool) repository.MaintenanceTypeRepository {
	return &maintenanceTypeRepository{db: db}
}

func (r *maintenanceTypeRepository) Create(ctx context.Context, mt *domain.MaintenanceType) error {
	query := `
		INSERT INTO maintenance_types (id, owner_id, parent_id, type, level, path, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	mt.ID = uuid.New()
	mt.CreatedAt = time.Now()
	mt.UpdatedAt = time.Now()

	_, err := r.db.Exec(ctx, query,
		mt.ID,
		mt.OwnerID,
		mt.ParentID,
		mt.Type,
		mt.Level,
		mt.Path,
		mt.CreatedAt,
		mt.UpdatedAt,
	)

	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrTypeAlreadyExists
		}
		if isForeignKeyViolation(err) {
			return domain.ErrTypeNotFound
		}
		return err
	}

	return nil
}

func (r *maintenanceTypeRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.MaintenanceType, error) {
	query := `
		SELECT id, owner_id, parent_id, type, level, path, created_at, updated_at
		FROM maintenance_types
		WHERE id = $1
	`

	mt := &domain.MaintenanceType{}
	err := r.db.QueryRow(ctx, query, id).Scan(
		&mt.ID,
		&mt.OwnerID,
		&mt.ParentID,
		&mt.Type,
		&mt.Level,
		&mt.Path,
		&mt.CreatedAt,
		&mt.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrTypeNotFound
		}
		return nil, err
	}

	return mt, nil
}

// Update переписывает узел и каскадно обновляет материализованные level/path
// всего его поддерева в одной транзакции. oldPath/oldLevel - значения узла
// до изменения, по ним находятся и сдвигаются потомки
func (r *maintenanceTypeRepository) Update(ctx context.Context, mt *domain.MaintenanceType, oldPath string, oldLevel int) error {
	query := `
		UPDATE maintenance_types
		SET parent_id = $2, type = $3, level = $4, path = $5, updated_at = $6
		WHERE id = $1
	`

	mt.UpdatedAt = time.Now()

	return withTx(ctx, r.db, func(tx pgx.Tx) error {
		result, err := tx.Exec(ctx, query,
			mt.ID,
			mt.ParentID,
			mt.Type,
			mt.Level,
			mt.Path,
			mt.UpdatedAt,
		)
		if err != nil {
			if isUniqueViolation(err) {
				return domain.ErrTypeAlreadyExists
			}
			if isForeignKeyViolation(err) {
				return domain.ErrTypeNotFound
			}
			return err
		}
		if result.RowsAffected() == 0 {
			return domain.ErrTypeNotFound
		}

		// Потомки получают новый префикс пути и сдвиг уровня
		if mt.Path != oldPath || mt.Level != oldLevel {
			subtree := `
				UPDATE maintenance_types
				SET path = $1 || substring(path FROM char_length($2) + 1),
				    level = level + $3,
				    updated_at = NOW()
				WHERE path LIKE $2 || '/%' AND owner_id = $4
			`
			_, err = tx.Exec(ctx, subtree, mt.Path, oldPath, mt.Level-oldLevel, mt.OwnerID)
			if err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *maintenanceTypeRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `
		DELETE FROM maintenance_types
		WHERE id = $1
	`

	result, err := r.db.Exec(ctx, query, id)
	if err != nil {
		// Ссылки дочерних узлов, этапов или записей блокируют удаление
		if isForeignKeyViolation(err) {
			return domain.ErrTypeHasChildren
		}
		return err
	}

	if result.RowsAffected() == 0 {
		return domain.ErrTypeNotFound
	}

	return nil
}

func (r *maintenanceTypeRepository) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*domain.MaintenanceType, error) {
	query := `
		SELECT id, owner_id, parent_id, type, level, path, created_at, updated_at
		FROM maintenance_types
		WHERE owner_id = $1
		ORDER BY path
	`

	rows, err := r.db.Query(ctx, query, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var types []*domain.MaintenanceType
	for rows.Next() {
		mt := &domain.MaintenanceType{}
		err := rows.Scan(
			&mt.ID,
			&mt.OwnerID,
			&mt.ParentID,
			&mt.Type,
			&mt.Level,
			&mt.Path,
			&mt.CreatedAt,
			&mt.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		types = append(types, mt)
	}

	return types, nil
}

func (r *maintenanceTypeRepository) HasChildren(ctx context.Context, id uuid.UUID) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM maintenance_types WHERE parent_id = $1)`, id).Scan(&exists)
	return exists, err
}

func (r *maintenanceTypeRepository) SiblingExists(ctx context.Context, ownerID uuid.UUID, parentID *uuid.UUID, name string, excludeID uuid.UUID) (bool, error) {
	query := `
		SELECT EXISTS(
			SELECT 1 FROM maintenance_types
			WHERE owner_id = $1
			  AND parent_id IS NOT DISTINCT FROM $2
			  AND type = $3
			  AND id <> $4
		)
	`

	var exists bool
	err := r.db.QueryRow(ctx, query, ownerID, parentID, name, excludeID).Scan(&exists)
	return exists, err
}
