package roles

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dancrewzus/webinar-wizard/internal/models"
)

// ErrNotFound is returned when a role does not exist.
var ErrNotFound = errors.New("role not found")

// Repository handles role persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a role repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// GetByName returns a role by name.
func (r *Repository) GetByName(ctx context.Context, name string) (*models.Role, error) {
	var role models.Role
	err := r.pool.QueryRow(ctx, `SELECT id, name, is_primary FROM roles WHERE name = $1`, name).
		Scan(&role.ID, &role.Name, &role.Primary)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &role, nil
}

// EnsureDefaults inserts the built-in roles if missing. The client role is
// the primary role assigned to new registrations.
func (r *Repository) EnsureDefaults(ctx context.Context) error {
	const q = `INSERT INTO roles (id, name, is_primary) VALUES ($1, $2, $3)
		ON CONFLICT (name) DO NOTHING`
	for _, role := range []models.Role{
		{ID: uuid.New(), Name: models.RoleAdmin, Primary: false},
		{ID: uuid.New(), Name: models.RoleClient, Primary: true},
	} {
		if _, err := r.pool.Exec(ctx, q, role.ID, role.Name, role.Primary); err != nil {
			return err
		}
	}
	return nil
}
