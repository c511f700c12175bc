package catalog

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"shop-backend/internal/apperr"
	"shop-backend/internal/db"
)

type Repository interface {
	Get(ctx context.Context, productID int) (Product, error)
	List(ctx context.Context) ([]Product, error)
	Upsert(ctx context.Context, p Product) error
}

type PostgresRepository struct {
	db db.DB
}

func NewPostgresRepository(pool db.DB) *PostgresRepository {
	return &PostgresRepository{db: pool}
}

func (r *PostgresRepository) Get(ctx context.Context, productID int) (Product, error) {
	var p Product
	row := r.db.QueryRow(ctx, `
		SELECT id, name, description, price, category, available, quantity
		FROM products WHERE id=$1
	`, productID)
	if err := row.Scan(&p.ID, &p.Name, &p.Description, &p.Price, &p.Category, &p.Available, &p.Quantity); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Product{}, apperr.ErrNotFound
		}
		return Product{}, err
	}
	return p, nil
}

func (r *PostgresRepository) List(ctx context.Context) ([]Product, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, name, description, price, category, available, quantity
		FROM products ORDER BY id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var products []Product
	for rows.Next() {
		var p Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Description, &p.Price, &p.Category, &p.Available, &p.Quantity); err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

func (r *PostgresRepository) Upsert(ctx context.Context, p Product) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO products(id, name, description, price, category, available, quantity)
		VALUES($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO UPDATE SET
			name=EXCLUDED.name,
			description=EXCLUDED.description,
			price=EXCLUDED.price,
			category=EXCLUDED.category,
			available=EXCLUDED.available,
			quantity=EXCLUDED.quantity,
			updated_at=now()
	`, p.ID, p.Name, p.Description, p.Price, p.Category, p.Available, p.Quantity)
	return err
}
