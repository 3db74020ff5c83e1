package mirror

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// tableCopier mirrors one table between two pools.
type tableCopier struct {
	src     *pgxpool.Pool
	dst     *pgxpool.Pool
	table   string
	columns []string
}

// NewTableCopier creates a Copier for one table.
func NewTableCopier(src, dst *pgxpool.Pool, table string, columns []string) Copier {
	return &tableCopier{src: src, dst: dst, table: table, columns: columns}
}

func (c *tableCopier) Collection() string { return c.table }

// Copy reads every production row, then replaces the backup table inside
// one transaction: a full delete followed by a bulk insert. The backup
// never holds a partial mix of old and new rows.
func (c *tableCopier) Copy(ctx context.Context) (int64, error) {
	rows, err := c.src.Query(ctx, "SELECT "+strings.Join(c.columns, ", ")+" FROM "+c.table)
	if err != nil {
		return 0, fmt.Errorf("read source: %w", err)
	}
	var data [][]interface{}
	for rows.Next() {
		vals, err := rows.Values()
		if err != nil {
			rows.Close()
			return 0, fmt.Errorf("read source row: %w", err)
		}
		data = append(data, vals)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return 0, fmt.Errorf("read source: %w", err)
	}

	tx, err := c.dst.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin backup tx: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, "DELETE FROM "+c.table); err != nil {
		return 0, fmt.Errorf("clear backup table: %w", err)
	}
	n, err := tx.CopyFrom(ctx, pgx.Identifier{c.table}, c.columns, pgx.CopyFromRows(data))
	if err != nil {
		return 0, fmt.Errorf("bulk insert: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit backup tx: %w", err)
	}
	return n, nil
}

// DefaultCopiers returns the copiers for every mirrored table, in the
// order rows must land: roles before users, users before everything that
// references them, webinars last.
func DefaultCopiers(src, dst *pgxpool.Pool) []Copier {
	return []Copier{
		NewTableCopier(src, dst, "roles", []string{"id", "name", "is_primary"}),
		NewTableCopier(src, dst, "users", []string{"id", "email", "password_hash", "name", "surname",
			"gender", "phone_number", "role_id", "profile_picture_id", "webinar_ids",
			"deleted", "deleted_at", "created_at", "updated_at"}),
		NewTableCopier(src, dst, "images", []string{"id", "url", "s3_key", "created_by", "created_at"}),
		NewTableCopier(src, dst, "tracks", []string{"id", "ip", "description", "module", "user_id", "created_at"}),
		NewTableCopier(src, dst, "webinars", []string{"id", "title", "slug", "description", "presenter",
			"registration_link", "date", "duration_minutes", "max_attendees", "status", "attendee_ids",
			"created_by", "deleted", "deleted_at", "created_at", "updated_at"}),
		NewTableCopier(src, dst, "email_logs", []string{"id", "webinar_id", "kind", "recipient",
			"subject", "status", "error_message", "sent_at", "created_at"}),
	}
}
