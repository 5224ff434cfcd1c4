package repository

import (
	"context"

	"github.com/Domenick1991/tablebooking/internal/domain"
)

type TableRepository interface {
	List(ctx context.Context) ([]domain.Table, error)
}

type PGTableRepository struct {
	db DB
}

func NewTableRepository(db DB) TableRepository {
	return &PGTableRepository{db: db}
}

func (r *PGTableRepository) List(ctx context.Context) ([]domain.Table, error) {
	rows, err := r.db.Query(ctx, `SELECT id, name, capacity, location, view, image, created_at, updated_at FROM restaurant_tables ORDER BY id`)
	if err != nil {
		return nil, mapError(err, nil)
	}
	defer rows.Close()

	tables := make([]domain.Table, 0)
	for rows.Next() {
		var t domain.Table
		if err := rows.Scan(&t.ID, &t.Name, &t.Capacity, &t.Location, &t.View, &t.Image, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, mapError(err, nil)
		}
		tables = append(tables, t)
	}
	return tables, mapError(rows.Err(), nil)
}

var _ TableRepository = (*PGTableRepository)(nil)
