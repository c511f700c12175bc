package cart

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"shop-backend/internal/apperr"
	"shop-backend/internal/db"
)

type Repository interface {
	// ListWithProducts returns the session's lines joined with their live
	// products, most recently touched first.
	ListWithProducts(ctx context.Context, sessionID string) ([]LineItem, error)
	FindByProduct(ctx context.Context, sessionID string, productID int) (Line, error)
	FindByID(ctx context.Context, sessionID string, lineID int64) (Line, error)
	Insert(ctx context.Context, line *Line) error
	UpdateQuantity(ctx context.Context, lineID int64, quantity int) error
	Delete(ctx context.Context, sessionID string, lineID int64) error
	Clear(ctx context.Context, sessionID string) error
}

type PostgresRepository struct {
	db db.DB
}

func NewPostgresRepository(pool db.DB) *PostgresRepository {
	return &PostgresRepository{db: pool}
}

func (r *PostgresRepository) ListWithProducts(ctx context.Context, sessionID string) ([]LineItem, error) {
	rows, err := r.db.Query(ctx, `
		SELECT ci.id, ci.session_id, ci.product_id, ci.quantity, ci.updated_at,
		       p.id, p.name, p.description, p.price, p.category, p.available, p.quantity
		FROM cart_items ci
		JOIN products p ON p.id = ci.product_id
		WHERE ci.session_id=$1
		ORDER BY ci.updated_at DESC, ci.id DESC
	`, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []LineItem
	for rows.Next() {
		var it LineItem
		if err := rows.Scan(
			&it.Line.ID, &it.Line.SessionID, &it.Line.ProductID, &it.Line.Quantity, &it.Line.UpdatedAt,
			&it.Product.ID, &it.Product.Name, &it.Product.Description, &it.Product.Price,
			&it.Product.Category, &it.Product.Available, &it.Product.Quantity,
		); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

func (r *PostgresRepository) FindByProduct(ctx context.Context, sessionID string, productID int) (Line, error) {
	return r.scanLine(r.db.QueryRow(ctx, `
		SELECT id, session_id, product_id, quantity, updated_at
		FROM cart_items WHERE session_id=$1 AND product_id=$2
	`, sessionID, productID))
}

func (r *PostgresRepository) FindByID(ctx context.Context, sessionID string, lineID int64) (Line, error) {
	return r.scanLine(r.db.QueryRow(ctx, `
		SELECT id, session_id, product_id, quantity, updated_at
		FROM cart_items WHERE id=$1 AND session_id=$2
	`, lineID, sessionID))
}

func (r *PostgresRepository) scanLine(row pgx.Row) (Line, error) {
	var l Line
	if err := row.Scan(&l.ID, &l.SessionID, &l.ProductID, &l.Quantity, &l.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Line{}, apperr.ErrNotFound
		}
		return Line{}, err
	}
	return l, nil
}

func (r *PostgresRepository) Insert(ctx context.Context, line *Line) error {
	row := r.db.QueryRow(ctx, `
		INSERT INTO cart_items(session_id, product_id, quantity)
		VALUES($1, $2, $3)
		RETURNING id, updated_at
	`, line.SessionID, line.ProductID, line.Quantity)
	return row.Scan(&line.ID, &line.UpdatedAt)
}

func (r *PostgresRepository) UpdateQuantity(ctx context.Context, lineID int64, quantity int) error {
	_, err := r.db.Exec(ctx, `
		UPDATE cart_items SET quantity=$2, updated_at=now() WHERE id=$1
	`, lineID, quantity)
	return err
}

// Delete is idempotent: removing an absent line is not an error.
func (r *PostgresRepository) Delete(ctx context.Context, sessionID string, lineID int64) error {
	_, err := r.db.Exec(ctx, `
		DELETE FROM cart_items WHERE id=$1 AND session_id=$2
	`, lineID, sessionID)
	return err
}

func (r *PostgresRepository) Clear(ctx context.Context, sessionID string) error {
	_, err := r.db.Exec(ctx, `DELETE FROM cart_items WHERE session_id=$1`, sessionID)
	return err
}
