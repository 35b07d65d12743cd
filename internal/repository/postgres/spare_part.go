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

type sparePartRepository struct {
	db *pgxpool.Pool
}

func NewSparePartRepository(db *pgxpool.Pool) repository.SparePartRepository {
	return &sparePartRepository{db: db}
}

func (r *sparePartRepository) Create(ctx context.Context, p *domain.SparePart) error {
	query := `
		INSERT INTO spare_parts (id, owner_id, factory_code, name, description, price, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	p.ID = uuid.New()
	p.CreatedAt = time.Now()
	p.UpdatedAt = time.Now()

	// Нормализуем заводской код перед сохранением
	p.FactoryCode = domain.NormalizeCode(p.FactoryCode)

	_, err := r.db.Exec(ctx, query,
		p.ID,
		p.OwnerID,
		p.FactoryCode,
		p.Name,
		p.Description,
		p.Price,
		p.CreatedAt,
		p.UpdatedAt,
	)

	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrSparePartAlreadyExists
		}
		return err
	}

	return nil
}

func (r *sparePartRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.SparePart, error) {
	query := `
		SELECT id, owner_id, factory_code, name, description, price, created_at, updated_at
		FROM spare_parts
		WHERE id = $1
	`

	p := &domain.SparePart{}
	err := r.db.QueryRow(ctx, query, id).Scan(
		&p.ID,
		&p.OwnerID,
		&p.FactoryCode,
		&p.Name,
		&p.Description,
		&p.Price,
		&p.CreatedAt,
		&p.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrSparePartNotFound
		}
		return nil, err
	}

	return p, nil
}

func (r *sparePartRepository) GetByFactoryCode(ctx context.Context, ownerID uuid.UUID, factoryCode string) (*domain.SparePart, error) {
	query := `
		SELECT id, owner_id, factory_code, name, description, price, created_at, updated_at
		FROM spare_parts
		WHERE owner_id = $1 AND factory_code = $2
	`

	p := &domain.SparePart{}
	err := r.db.QueryRow(ctx, query, ownerID, domain.NormalizeCode(factoryCode)).Scan(
		&p.ID,
		&p.OwnerID,
		&p.FactoryCode,
		&p.Name,
		&p.Description,
		&p.Price,
		&p.CreatedAt,
		&p.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrSparePartNotFound
		}
		return nil, err
	}

	return p, nil
}

func (r *sparePartRepository) Update(ctx context.Context, p *domain.SparePart) error {
	query := `
		UPDATE spare_parts
		SET factory_code = $2, name = $3, description = $4, price = $5, updated_at = $6
		WHERE id = $1
	`

	p.UpdatedAt = time.Now()
	p.FactoryCode = domain.NormalizeCode(p.FactoryCode)

	result, err := r.db.Exec(ctx, query,
		p.ID,
		p.FactoryCode,
		p.Name,
		p.Description,
		p.Price,
		p.UpdatedAt,
	)

	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrSparePartAlreadyExists
		}
		return err
	}

	if result.RowsAffected() == 0 {
		return domain.ErrSparePartNotFound
	}

	return nil
}

func (r *sparePartRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `
		DELETE FROM spare_parts
		WHERE id = $1
	`

	result, err := r.db.Exec(ctx, query, id)
	if err != nil {
		// Строки записей обслуживания еще ссылаются на запчасть
		if isForeignKeyViolation(err) {
			return domain.ErrSparePartInUse
		}
		return err
	}

	if result.RowsAffected() == 0 {
		return domain.ErrSparePartNotFound
	}

	return nil
}

func (r *sparePartRepository) ListByOwner(ctx context.Context, ownerID uuid.UUID, limit, offset int) ([]*domain.SparePart, int, error) {
	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM spare_parts WHERE owner_id = $1`, ownerID).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `
		SELECT id, owner_id, factory_code, name, description, price, created_at, updated_at
		FROM spare_parts
		WHERE owner_id = $1
		ORDER BY name
	`

	rows, err := queryPaged(ctx, r.db, query, []interface{}{ownerID}, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var parts []*domain.SparePart
	for rows.Next() {
		p := &domain.SparePart{}
		err := rows.Scan(
			&p.ID,
			&p.OwnerID,
			&p.FactoryCode,
			&p.Name,
			&p.Description,
			&p.Price,
			&p.CreatedAt,
			&p.UpdatedAt,
		)
		if err != nil {
			return nil, 0, err
		}
		parts = append(parts, p)
	}

	return parts, total, nil
}
