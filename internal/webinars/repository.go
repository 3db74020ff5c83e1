package webinars

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dancrewzus/webinar-wizard/internal/models"
)

// ErrNotFound is returned when a webinar does not exist.
var ErrNotFound = errors.New("webinar not found")

const webinarColumns = `id, title, slug, description, presenter, registration_link, date,
	duration_minutes, max_attendees, status, attendee_ids, created_by,
	deleted, COALESCE(deleted_at,''), created_at, updated_at`

// Repository handles webinar persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a webinar repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func scanWebinar(row pgx.Row) (*models.Webinar, error) {
	var w models.Webinar
	err := row.Scan(&w.ID, &w.Title, &w.Slug, &w.Description, &w.Presenter, &w.RegistrationLink,
		&w.Date, &w.Duration, &w.MaxAttendees, &w.Status, &w.AttendeeIDs, &w.CreatedBy,
		&w.Deleted, &w.DeletedAt, &w.CreatedAt, &w.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &w, nil
}

// Create inserts a new webinar.
func (r *Repository) Create(ctx context.Context, w *models.Webinar) error {
	const q = `INSERT INTO webinars (id, title, slug, description, presenter, registration_link, date,
			duration_minutes, max_attendees, status, attendee_ids, created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`
	_, err := r.pool.Exec(ctx, q, w.ID, w.Title, w.Slug, w.Description, w.Presenter, w.RegistrationLink,
		w.Date, w.Duration, w.MaxAttendees, w.Status, w.AttendeeIDs, w.CreatedBy, w.CreatedAt, w.UpdatedAt)
	return err
}

// GetByID returns a webinar by ID.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*models.Webinar, error) {
	return scanWebinar(r.pool.QueryRow(ctx, `SELECT `+webinarColumns+` FROM webinars WHERE id = $1`, id))
}

// GetBySlug returns a webinar by slug.
func (r *Repository) GetBySlug(ctx context.Context, slug string) (*models.Webinar, error) {
	return scanWebinar(r.pool.QueryRow(ctx, `SELECT `+webinarColumns+` FROM webinars WHERE slug = $1`, slug))
}

// List returns non-deleted webinars, optionally filtered by status.
func (r *Repository) List(ctx context.Context, status models.WebinarStatus) ([]models.Webinar, error) {
	q := `SELECT ` + webinarColumns + ` FROM webinars WHERE NOT deleted`
	var args []interface{}
	if status != "" {
		q += ` AND status = $1`
		args = append(args, status)
	}
	q += ` ORDER BY created_at`
	return r.list(ctx, q, args...)
}

// ListActive returns webinars still eligible for lifecycle transitions:
// scheduled or in-progress, not soft-deleted.
func (r *Repository) ListActive(ctx context.Context) ([]models.Webinar, error) {
	const q = `SELECT ` + webinarColumns + ` FROM webinars
		WHERE NOT deleted AND status IN ($1, $2)`
	return r.list(ctx, q, models.StatusScheduled, models.StatusInProgress)
}

func (r *Repository) list(ctx context.Context, q string, args ...interface{}) ([]models.Webinar, error) {
	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []models.Webinar
	for rows.Next() {
		w, err := scanWebinar(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, *w)
	}
	return list, rows.Err()
}

// Update persists the mutable webinar fields, including status.
func (r *Repository) Update(ctx context.Context, w *models.Webinar) error {
	const q = `UPDATE webinars SET title = $1, slug = $2, description = $3, presenter = $4,
			registration_link = $5, date = $6, duration_minutes = $7, max_attendees = $8,
			status = $9, updated_at = $10
		WHERE id = $11`
	tag, err := r.pool.Exec(ctx, q, w.Title, w.Slug, w.Description, w.Presenter,
		w.RegistrationLink, w.Date, w.Duration, w.MaxAttendees, w.Status, w.UpdatedAt, w.ID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// UpdateAttendees replaces the attendee list.
func (r *Repository) UpdateAttendees(ctx context.Context, id uuid.UUID, attendees []uuid.UUID, updatedAt string) error {
	if attendees == nil {
		attendees = []uuid.UUID{}
	}
	const q = `UPDATE webinars SET attendee_ids = $1, updated_at = $2 WHERE id = $3`
	tag, err := r.pool.Exec(ctx, q, attendees, updatedAt, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// SoftDelete marks the webinar deleted, clears its attendee list and stamps
// the deletion time.
func (r *Repository) SoftDelete(ctx context.Context, id uuid.UUID, at string) error {
	const q = `UPDATE webinars SET deleted = true, attendee_ids = '{}', deleted_at = $1, updated_at = $1
		WHERE id = $2`
	tag, err := r.pool.Exec(ctx, q, at, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// AttendeeEmails returns the email addresses of the webinar's attendees.
func (r *Repository) AttendeeEmails(ctx context.Context, id uuid.UUID) ([]string, error) {
	const q = `SELECT u.email FROM users u
		WHERE u.id = ANY(SELECT unnest(attendee_ids) FROM webinars WHERE id = $1)
		AND NOT u.deleted`
	rows, err := r.pool.Query(ctx, q, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var emails []string
	for rows.Next() {
		var email string
		if err := rows.Scan(&email); err != nil {
			return nil, err
		}
		emails = append(emails, email)
	}
	return emails, rows.Err()
}
