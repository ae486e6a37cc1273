package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cloo-solutions/pmstd/internal/domain"
)

const standardColumns = `s.id, s.code, s.name, s.version, s.publisher, s.description,
	(SELECT COUNT(*) FROM sections sec WHERE sec.standard_id = s.id), s.created_at, s.updated_at`

type StandardRepository struct {
	db dbtx
}

func NewStandardRepository(pool *pgxpool.Pool) *StandardRepository {
	return &StandardRepository{db: pool}
}

func NewStandardRepositoryWithTx(tx pgx.Tx) *StandardRepository {
	return &StandardRepository{db: tx}
}

// Upsert inserts a standard or updates the one with the same code, keeping its id.
func (r *StandardRepository) Upsert(ctx context.Context, s *domain.Standard) error {
	return r.db.QueryRow(ctx,
		`INSERT INTO standards (code, name, version, publisher, description, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 ON CONFLICT (code) DO UPDATE SET
		   name = EXCLUDED.name,
		   version = EXCLUDED.version,
		   publisher = EXCLUDED.publisher,
		   description = EXCLUDED.description,
		   updated_at = EXCLUDED.updated_at
		 RETURNING id, created_at`,
		s.Code, s.Name, s.Version, s.Publisher, s.Description, s.CreatedAt, s.UpdatedAt,
	).Scan(&s.ID, &s.CreatedAt)
}

func (r *StandardRepository) GetByID(ctx context.Context, id int64) (*domain.Standard, error) {
	row := r.db.QueryRow(ctx, `SELECT `+standardColumns+` FROM standards s WHERE s.id = $1`, id)
	return scanStandard(row)
}

func (r *StandardRepository) GetByCode(ctx context.Context, code string) (*domain.Standard, error) {
	row := r.db.QueryRow(ctx, `SELECT `+standardColumns+` FROM standards s WHERE s.code = $1`,
		domain.NormalizeStandardCode(code))
	return scanStandard(row)
}

func (r *StandardRepository) List(ctx context.Context) ([]*domain.Standard, error) {
	rows, err := r.db.Query(ctx, `SELECT `+standardColumns+` FROM standards s ORDER BY s.code`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	standards := []*domain.Standard{}
	for rows.Next() {
		s, err := scanStandard(rows)
		if err != nil {
			return nil, err
		}
		standards = append(standards, s)
	}
	return standards, rows.Err()
}

func scanStandard(row pgx.Row) (*domain.Standard, error) {
	var s domain.Standard
	err := row.Scan(&s.ID, &s.Code, &s.Name, &s.Version, &s.Publisher, &s.Description,
		&s.SectionCount, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrStandardNotFound
		}
		return nil, err
	}
	return &s, nil
}
