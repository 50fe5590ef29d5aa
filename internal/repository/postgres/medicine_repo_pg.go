package postgres

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"

	"github.com/medtrack/medtrack-api/internal/domain"
)

type MedicineRepository struct {
	db *sqlx.DB
}

func NewMedicineRepo(db *sqlx.DB) *MedicineRepository {
	return &MedicineRepository{db: db}
}

func (r *MedicineRepository) Create(ctx context.Context, name string, stock int, description, image *string) (*domain.Medicine, error) {
	const query = `
        INSERT INTO medicines (name, stock, description, image)
        VALUES ($1, $2, $3, $4)
        RETURNING id, name, stock, description, image, created_at, updated_at
    `
	row := r.db.QueryRowxContext(ctx, query, name, stock, description, image)
	var medicine domain.Medicine
	if err := row.StructScan(&medicine); err != nil {
		return nil, err
	}
	return &medicine, nil
}

func (r *MedicineRepository) FindByID(ctx context.Context, id int64) (*domain.Medicine, error) {
	const query = `
        SELECT id, name, stock, description, image, created_at, updated_at
        FROM medicines
        WHERE id = $1
    `
	var medicine domain.Medicine
	if err := r.db.GetContext(ctx, &medicine, query, id); err != nil {
		return nil, err
	}
	return &medicine, nil
}

func (r *MedicineRepository) List(ctx context.Context) ([]domain.Medicine, error) {
	const query = `
        SELECT id, name, stock, description, image, created_at, updated_at
        FROM medicines
        ORDER BY name
    `
	var medicines []domain.Medicine
	if err := r.db.SelectContext(ctx, &medicines, query); err != nil {
		return nil, err
	}
	return medicines, nil
}

func (r *MedicineRepository) Update(ctx context.Context, id int64, patch domain.MedicinePatch) (*domain.Medicine, error) {
	const query = `
        UPDATE medicines
        SET name = COALESCE($2, name),
            stock = COALESCE($3, stock),
            description = COALESCE($4, description),
            image = COALESCE($5, image),
            updated_at = NOW()
        WHERE id = $1
        RETURNING id, name, stock, description, image, created_at, updated_at
    `
	row := r.db.QueryRowxContext(ctx, query, id, patch.Name, patch.Stock, patch.Description, patch.Image)
	var medicine domain.Medicine
	if err := row.StructScan(&medicine); err != nil {
		return nil, err
	}
	return &medicine, nil
}

func (r *MedicineRepository) Delete(ctx context.Context, id int64) error {
	const query = `DELETE FROM medicines WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
