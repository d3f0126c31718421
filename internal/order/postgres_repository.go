package order

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Shomirsaidov/chifir-food-ordering/internal/domain"
	"github.com/google/uuid"
	_ "github.com/lib/pq"
)

type PostgresRepository struct {
	db *sql.DB
}

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// CreateOrder inserts the order and its item snapshots in one transaction.
func (r *PostgresRepository) CreateOrder(ctx context.Context, order *domain.Order) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin order tx: %w", err)
	}
	defer tx.Rollback()

	query := `INSERT INTO orders
	          (id, user_id, status, delivery_type, delivery_address, phone_number,
	           payment_method, cash_change_from, utensils_count, comment,
	           total_amount, delivery_fee, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, NOW(), NOW())`

	_, err = tx.ExecContext(ctx, query,
		order.ID,
		order.UserID,
		order.Status,
		order.DeliveryType,
		nullable(order.DeliveryAddress),
		order.PhoneNumber,
		order.PaymentMethod,
		nullable(order.CashChangeFrom),
		order.UtensilsCount,
		nullable(order.Comment),
		order.TotalAmount,
		order.DeliveryFee)
	if err != nil {
		return fmt.Errorf("insert order: %w", err)
	}

	itemQuery := `INSERT INTO order_items
	              (id, order_id, menu_item_id, name, price, quantity, created_at)
	              VALUES ($1, $2, $3, $4, $5, $6, NOW())`

	for i := range order.Items {
		item := &order.Items[i]
		if item.ID == "" {
			item.ID = uuid.NewString()
		}
		item.OrderID = order.ID.String()

		_, err = tx.ExecContext(ctx, itemQuery,
			item.ID,
			item.OrderID,
			item.MenuItemID,
			item.Name,
			item.Price,
			item.Quantity)
		if err != nil {
			return fmt.Errorf("insert order item: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit order tx: %w", err)
	}
	return nil
}

const orderColumns = `id, user_id, status, delivery_type, delivery_address,
	phone_number, payment_method, cash_change_from, utensils_count, comment,
	total_amount, delivery_fee, created_at, updated_at`

func (r *PostgresRepository) GetOrderByID(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`

	order, err := scanOrder(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, err
	}

	if err := r.loadItems(ctx, order); err != nil {
		return nil, err
	}

	return order, nil
}

func (r *PostgresRepository) ListOrdersByUserID(ctx context.Context, userID int64) ([]*domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders
	          WHERE user_id = $1 ORDER BY created_at DESC`

	return r.queryOrders(ctx, query, userID)
}

func (r *PostgresRepository) CountOrdersByUserID(ctx context.Context, userID int64) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM orders WHERE user_id = $1`
	if err := r.db.QueryRowContext(ctx, query, userID).Scan(&count); err != nil {
		return 0, fmt.Errorf("count orders: %w", err)
	}
	return count, nil
}

func (r *PostgresRepository) ListOrdersByStatus(ctx context.Context, status domain.OrderStatus) ([]*domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders
	          WHERE status = $1 ORDER BY created_at DESC`

	return r.queryOrders(ctx, query, status)
}

// UpdateStatus moves an order from one status to another. The WHERE clause
// on the current status makes concurrent admin clicks lose cleanly.
func (r *PostgresRepository) UpdateStatus(ctx context.Context, id uuid.UUID, from, to domain.OrderStatus) error {
	query := `UPDATE orders SET status = $3, updated_at = NOW()
	          WHERE id = $1 AND status = $2`

	result, err := r.db.ExecContext(ctx, query, id, from, to)
	if err != nil {
		return fmt.Errorf("update order status: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		var exists bool
		if err := r.db.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM orders WHERE id = $1)`, id).Scan(&exists); err != nil {
			return fmt.Errorf("check order exists: %w", err)
		}
		if !exists {
			return ErrOrderNotFound
		}
		return ErrIllegalTransition
	}
	return nil
}

func (r *PostgresRepository) queryOrders(ctx context.Context, query string, args ...any) ([]*domain.Order, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query orders: %w", err)
	}
	defer rows.Close()

	var orders []*domain.Order
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, order)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	for _, order := range orders {
		if err := r.loadItems(ctx, order); err != nil {
			return nil, err
		}
	}

	return orders, nil
}

func (r *PostgresRepository) loadItems(ctx context.Context, order *domain.Order) error {
	query := `SELECT id, order_id, menu_item_id, name, price, quantity
	          FROM order_items WHERE order_id = $1 ORDER BY created_at, id`

	rows, err := r.db.QueryContext(ctx, query, order.ID)
	if err != nil {
		return fmt.Errorf("query order items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var item domain.OrderItem
		if err := rows.Scan(
			&item.ID,
			&item.OrderID,
			&item.MenuItemID,
			&item.Name,
			&item.Price,
			&item.Quantity,
		); err != nil {
			return fmt.Errorf("scan order item: %w", err)
		}
		order.Items = append(order.Items, item)
	}

	if err := rows.Err(); err != nil {
		return fmt.Errorf("row iteration error: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOrder(row rowScanner) (*domain.Order, error) {
	order := &domain.Order{}
	var address, changeFrom, comment sql.NullString

	err := row.Scan(
		&order.ID,
		&order.UserID,
		&order.Status,
		&order.DeliveryType,
		&address,
		&order.PhoneNumber,
		&order.PaymentMethod,
		&changeFrom,
		&order.UtensilsCount,
		&comment,
		&order.TotalAmount,
		&order.DeliveryFee,
		&order.CreatedAt,
		&order.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("scan order: %w", err)
	}

	order.DeliveryAddress = address.String
	order.CashChangeFrom = changeFrom.String
	order.Comment = comment.String
	return order, nil
}

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
