package tracks

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dancrewzus/webinar-wizard/internal/models"
)

// Repository handles audit-trail persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a tracks repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Create inserts an audit entry.
func (r *Repository) Create(ctx context.Context, t *models.Track) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	const q = `INSERT INTO tracks (id, ip, description, module, user_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := r.pool.Exec(ctx, q, t.ID, t.IP, t.Description, t.Module, t.UserID, t.CreatedAt)
	return err
}

// ListByUser returns audit entries for a user, newest first.
func (r *Repository) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Track, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, ip, description, module, user_id, created_at
		FROM tracks WHERE user_id = $1 ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []models.Track
	for rows.Next() {
		var t models.Track
		if err := rows.Scan(&t.ID, &t.IP, &t.Description, &t.Module, &t.UserID, &t.CreatedAt); err != nil {
			return nil, err
		}
		list = append(list, t)
	}
	return list, rows.Err()
}
