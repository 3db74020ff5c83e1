package emaillogs

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dancrewzus/webinar-wizard/internal/models"
)

// Repository handles email_logs persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates an email logs repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Create inserts an email log row.
func (r *Repository) Create(ctx context.Context, el *models.EmailLog) error {
	if el.ID == uuid.Nil {
		el.ID = uuid.New()
	}
	const q = `INSERT INTO email_logs (id, webinar_id, kind, recipient, subject, status, error_message, sent_at, created_at)
		VALUES ($1, $2, $3, $4, NULLIF($5,''), $6, NULLIF($7,''), NULLIF($8,''), $9)`
	_, err := r.pool.Exec(ctx, q, el.ID, el.WebinarID, el.Kind, el.Recipient,
		el.Subject, el.Status, el.ErrorMessage, el.SentAt, el.CreatedAt)
	return err
}

// ListByWebinar returns email logs for a webinar, newest first.
func (r *Repository) ListByWebinar(ctx context.Context, webinarID uuid.UUID) ([]models.EmailLog, error) {
	const q = `SELECT id, webinar_id, kind, recipient, COALESCE(subject,''), status,
			COALESCE(error_message,''), COALESCE(sent_at,''), created_at
		FROM email_logs WHERE webinar_id = $1 ORDER BY created_at DESC`
	rows, err := r.pool.Query(ctx, q, webinarID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []models.EmailLog
	for rows.Next() {
		var el models.EmailLog
		if err := rows.Scan(&el.ID, &el.WebinarID, &el.Kind, &el.Recipient, &el.Subject,
			&el.Status, &el.ErrorMessage, &el.SentAt, &el.CreatedAt); err != nil {
			return nil, err
		}
		list = append(list, el)
	}
	return list, rows.Err()
}
