package users

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dancrewzus/webinar-wizard/internal/models"
)

// ErrNotFound is returned when a user does not exist.
var ErrNotFound = errors.New("user not found")

const userColumns = `u.id, u.email, u.password_hash, u.name, u.surname, u.gender, u.phone_number,
	u.role_id, COALESCE(r.name,''), u.profile_picture_id, u.webinar_ids,
	u.deleted, COALESCE(u.deleted_at,''), u.created_at, u.updated_at`

const userFrom = ` FROM users u LEFT JOIN roles r ON r.id = u.role_id `

// Repository handles user persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a user repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func scanUser(row pgx.Row) (*models.User, error) {
	var u models.User
	err := row.Scan(&u.ID, &u.Email, &u.Password, &u.Name, &u.Surname, &u.Gender, &u.PhoneNumber,
		&u.RoleID, &u.RoleName, &u.ProfilePictureID, &u.WebinarIDs,
		&u.Deleted, &u.DeletedAt, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

// Create inserts a new user.
func (r *Repository) Create(ctx context.Context, u *models.User) error {
	const q = `INSERT INTO users (id, email, password_hash, name, surname, gender, phone_number,
			role_id, webinar_ids, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	_, err := r.pool.Exec(ctx, q, u.ID, u.Email, u.Password, u.Name, u.Surname, u.Gender,
		u.PhoneNumber, u.RoleID, u.WebinarIDs, u.CreatedAt, u.UpdatedAt)
	return err
}

// GetByID returns a user by ID.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return scanUser(r.pool.QueryRow(ctx, `SELECT `+userColumns+userFrom+`WHERE u.id = $1`, id))
}

// GetByEmail returns a user by email.
func (r *Repository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return scanUser(r.pool.QueryRow(ctx, `SELECT `+userColumns+userFrom+`WHERE u.email = $1`, email))
}

// ListByIDs returns the users with the given IDs (missing IDs are skipped).
func (r *Repository) ListByIDs(ctx context.Context, ids []uuid.UUID) ([]models.User, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	rows, err := r.pool.Query(ctx, `SELECT `+userColumns+userFrom+`WHERE u.id = ANY($1)`, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []models.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, *u)
	}
	return list, rows.Err()
}

// UpdateWebinars replaces the user's webinar list.
func (r *Repository) UpdateWebinars(ctx context.Context, id uuid.UUID, webinars []uuid.UUID, updatedAt string) error {
	if webinars == nil {
		webinars = []uuid.UUID{}
	}
	const q = `UPDATE users SET webinar_ids = $1, updated_at = $2 WHERE id = $3`
	tag, err := r.pool.Exec(ctx, q, webinars, updatedAt, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// UpdateProfilePicture sets the user's profile picture reference.
func (r *Repository) UpdateProfilePicture(ctx context.Context, id, imageID uuid.UUID, updatedAt string) error {
	const q = `UPDATE users SET profile_picture_id = $1, updated_at = $2 WHERE id = $3`
	tag, err := r.pool.Exec(ctx, q, imageID, updatedAt, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
