package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/mpusnik/auctionhub/internal/shared/db"
	"github.com/mpusnik/auctionhub/internal/user/domain"
)

// UserRepository implements domain.UserRepository for PostgreSQL.
type UserRepository struct {
	pool db.PgxPool
}

func NewUserRepository(pool db.PgxPool) *UserRepository {
	return &UserRepository{pool: pool}
}

func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	query := `
        SELECT id, email, first_name, last_name, avatar, created_at, updated_at
        FROM users
        WHERE id = $1
    `
	u := &domain.User{}
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&u.ID,
		&u.Email,
		&u.FirstName,
		&u.LastName,
		&u.Avatar,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	return u, nil
}

func (r *UserRepository) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	var found uuid.UUID
	err := r.pool.QueryRow(ctx, `SELECT id FROM users WHERE id = $1`, id).Scan(&found)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (r *UserRepository) Create(ctx context.Context, u *domain.User) error {
	query := `
        INSERT INTO users (id, email, first_name, last_name, avatar)
        VALUES ($1, $2, $3, $4, $5)
    `
	_, err := r.pool.Exec(ctx, query, u.ID, u.Email, u.FirstName, u.LastName, u.Avatar)
	return err
}
