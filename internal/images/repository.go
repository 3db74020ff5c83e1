package images

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dancrewzus/webinar-wizard/internal/models"
)

// ErrNotFound is returned when an image does not exist.
var ErrNotFound = errors.New("image not found")

// Repository handles image persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates an image repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Create inserts an image record.
func (r *Repository) Create(ctx context.Context, img *models.Image) error {
	const q = `INSERT INTO images (id, url, s3_key, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5)`
	_, err := r.pool.Exec(ctx, q, img.ID, img.URL, img.Key, img.CreatedBy, img.CreatedAt)
	return err
}

// GetByID returns an image by ID.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*models.Image, error) {
	var img models.Image
	err := r.pool.QueryRow(ctx, `SELECT id, url, s3_key, created_by, created_at FROM images WHERE id = $1`, id).
		Scan(&img.ID, &img.URL, &img.Key, &img.CreatedBy, &img.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &img, nil
}
