package user

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Shomirsaidov/chifir-food-ordering/internal/domain"
)

type PostgresRepository struct {
	db *sql.DB
}

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Upsert(ctx context.Context, u *domain.User) error {
	query := `INSERT INTO users (telegram_id, username, first_name, last_name, photo_url, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
	          ON CONFLICT (telegram_id) DO UPDATE
	          SET username = $2, first_name = $3, last_name = $4, photo_url = $5, updated_at = NOW()`

	_, err := r.db.ExecContext(ctx, query,
		u.TelegramID,
		u.Username,
		u.FirstName,
		u.LastName,
		u.PhotoURL)
	if err != nil {
		return fmt.Errorf("upsert user: %w", err)
	}
	return nil
}

func (r *PostgresRepository) Get(ctx context.Context, telegramID int64) (*domain.User, error) {
	query := `SELECT telegram_id, username, first_name, last_name, photo_url, created_at, updated_at
	          FROM users WHERE telegram_id = $1`

	u := &domain.User{}
	var username, lastName, photoURL sql.NullString
	err := r.db.QueryRowContext(ctx, query, telegramID).Scan(
		&u.TelegramID,
		&username,
		&u.FirstName,
		&lastName,
		&photoURL,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query user: %w", err)
	}

	u.Username = username.String
	u.LastName = lastName.String
	u.PhotoURL = photoURL.String
	return u, nil
}

func (r *PostgresRepository) List(ctx context.Context) ([]*domain.User, error) {
	query := `SELECT telegram_id, username, first_name, last_name, photo_url, created_at, updated_at
	          FROM users ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query users: %w", err)
	}
	defer rows.Close()

	var users []*domain.User
	for rows.Next() {
		u := &domain.User{}
		var username, lastName, photoURL sql.NullString
		if err := rows.Scan(
			&u.TelegramID,
			&username,
			&u.FirstName,
			&lastName,
			&photoURL,
			&u.CreatedAt,
			&u.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan user row: %w", err)
		}
		u.Username = username.String
		u.LastName = lastName.String
		u.PhotoURL = photoURL.String
		users = append(users, u)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return users, nil
}

func (r *PostgresRepository) IsAdminUsername(ctx context.Context, username string) (bool, error) {
	if username == "" {
		return false, nil
	}

	var exists bool
	query := `SELECT EXISTS (SELECT 1 FROM admins WHERE telegram_username = $1)`
	if err := r.db.QueryRowContext(ctx, query, username).Scan(&exists); err != nil {
		return false, fmt.Errorf("query admin username: %w", err)
	}
	return exists, nil
}
