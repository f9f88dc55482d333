package outbox

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/garrettladley/fixit/internal/notification"
)

var _ notification.Outbox = (*SQLite)(nil)

// SQLite persists queued operations so they survive restarts.
type SQLite struct {
	db *sqlx.DB
}

func NewSQLite(db *sqlx.DB) *SQLite {
	return &SQLite{db: db}
}

type opRow struct {
	Seq            int64     `db:"seq"`
	Kind           string    `db:"kind"`
	NotificationID string    `db:"notification_id"`
	CreatedAt      time.Time `db:"created_at"`
}

func (s *SQLite) Enqueue(ctx context.Context, kind notification.OpKind, id notification.ID) error {
	_, err := s.db.NamedExecContext(ctx,
		`INSERT INTO outbox (kind, notification_id, created_at) VALUES (:kind, :notification_id, :created_at)`,
		opRow{Kind: string(kind), NotificationID: id.String(), CreatedAt: time.Now().UTC()},
	)
	if err != nil {
		return fmt.Errorf("failed to enqueue %s: %w", kind, err)
	}
	return nil
}

func (s *SQLite) Pending(ctx context.Context) ([]notification.Op, error) {
	var rows []opRow
	if err := s.db.SelectContext(ctx, &rows,
		`SELECT seq, kind, notification_id, created_at FROM outbox ORDER BY seq`,
	); err != nil {
		return nil, fmt.Errorf("failed to list outbox: %w", err)
	}

	ops := make([]notification.Op, len(rows))
	for i, r := range rows {
		ops[i] = notification.Op{
			Seq:            r.Seq,
			Kind:           notification.OpKind(r.Kind),
			NotificationID: notification.ID(r.NotificationID),
			CreatedAt:      r.CreatedAt,
		}
	}
	return ops, nil
}

func (s *SQLite) Remove(ctx context.Context, seq int64) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM outbox WHERE seq = ?`, seq); err != nil {
		return fmt.Errorf("failed to remove outbox entry %d: %w", seq, err)
	}
	return nil
}
