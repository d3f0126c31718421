package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Shomirsaidov/chifir-food-ordering/internal/domain"
	"github.com/google/uuid"
)

type PostgresRepository struct {
	db *sql.DB
}

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) ListCategories(ctx context.Context) ([]*domain.Category, error) {
	query := `SELECT id, name, sort_order, created_at
	          FROM categories ORDER BY sort_order, name`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query categories: %w", err)
	}
	defer rows.Close()

	var categories []*domain.Category
	for rows.Next() {
		c := &domain.Category{}
		if err := rows.Scan(&c.ID, &c.Name, &c.SortOrder, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		categories = append(categories, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return categories, nil
}

func (r *PostgresRepository) CreateCategory(ctx context.Context, c *domain.Category) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}

	query := `INSERT INTO categories (id, name, sort_order, created_at)
	          VALUES ($1, $2, $3, NOW())`

	if _, err := r.db.ExecContext(ctx, query, c.ID, c.Name, c.SortOrder); err != nil {
		return fmt.Errorf("insert category: %w", err)
	}
	return nil
}

func (r *PostgresRepository) UpdateCategory(ctx context.Context, c *domain.Category) error {
	query := `UPDATE categories SET name = $2, sort_order = $3 WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, c.ID, c.Name, c.SortOrder)
	if err != nil {
		return fmt.Errorf("update category: %w", err)
	}
	if affected, _ := result.RowsAffected(); affected == 0 {
		return ErrCategoryNotFound
	}
	return nil
}

func (r *PostgresRepository) DeleteCategory(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	if affected, _ := result.RowsAffected(); affected == 0 {
		return ErrCategoryNotFound
	}
	return nil
}

const itemColumns = `id, category_id, name, description, price, image_loc,
	is_active, sort_order, created_at, updated_at`

func (r *PostgresRepository) ListItems(ctx context.Context, activeOnly bool) ([]*domain.MenuItem, error) {
	query := `SELECT ` + itemColumns + ` FROM menu_items`
	if activeOnly {
		query += ` WHERE is_active`
	}
	query += ` ORDER BY sort_order, name`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query menu items: %w", err)
	}
	defer rows.Close()

	var items []*domain.MenuItem
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return items, nil
}

func (r *PostgresRepository) GetItem(ctx context.Context, id string) (*domain.MenuItem, error) {
	query := `SELECT ` + itemColumns + ` FROM menu_items WHERE id = $1`

	item, err := scanItem(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrItemNotFound
	}
	if err != nil {
		return nil, err
	}

	return item, nil
}

func (r *PostgresRepository) CreateItem(ctx context.Context, item *domain.MenuItem) error {
	if item.ID == "" {
		item.ID = uuid.NewString()
	}

	query := `INSERT INTO menu_items
	          (id, category_id, name, description, price, image_loc, is_active, sort_order, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW(), NOW())`

	_, err := r.db.ExecContext(ctx, query,
		item.ID,
		item.CategoryID,
		item.Name,
		item.Description,
		item.Price,
		item.ImageLoc,
		item.IsActive,
		item.SortOrder)
	if err != nil {
		return fmt.Errorf("insert menu item: %w", err)
	}
	return nil
}

func (r *PostgresRepository) UpdateItem(ctx context.Context, item *domain.MenuItem) error {
	query := `UPDATE menu_items
	          SET category_id = $2, name = $3, description = $4, price = $5,
	              image_loc = $6, is_active = $7, sort_order = $8, updated_at = NOW()
	          WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query,
		item.ID,
		item.CategoryID,
		item.Name,
		item.Description,
		item.Price,
		item.ImageLoc,
		item.IsActive,
		item.SortOrder)
	if err != nil {
		return fmt.Errorf("update menu item: %w", err)
	}
	if affected, _ := result.RowsAffected(); affected == 0 {
		return ErrItemNotFound
	}
	return nil
}

func (r *PostgresRepository) DeleteItem(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM menu_items WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete menu item: %w", err)
	}
	if affected, _ := result.RowsAffected(); affected == 0 {
		return ErrItemNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanItem(row rowScanner) (*domain.MenuItem, error) {
	item := &domain.MenuItem{}
	var description, imageLoc sql.NullString

	err := row.Scan(
		&item.ID,
		&item.CategoryID,
		&item.Name,
		&description,
		&item.Price,
		&imageLoc,
		&item.IsActive,
		&item.SortOrder,
		&item.CreatedAt,
		&item.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("scan menu item: %w", err)
	}

	item.Description = description.String
	item.ImageLoc = imageLoc.String
	return item, nil
}
