package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/kirinyoku/lodge-go/internal/domain"
)

type NotificationRepo struct {
	db DB
}

const notificationColumns = `id, recipient_id, target, message, status, send_at, expires_at, created_at`

func scanNotification(row pgx.Row) (domain.Notification, error) {
	var (
		n      domain.Notification
		target string
		status string
	)

	err := row.Scan(&n.ID, &n.RecipientID, &target, &n.Message, &status, &n.SendAt, &n.ExpiresAt, &n.CreatedAt)
	n.Target = domain.NotificationTarget(target)
	n.Status = domain.NotificationStatus(status)

	return n, err
}

// InsertBatch stores the notifications in one pipeline. Outside of a
// transaction the batch runs as a single implicit transaction, so either
// every record is written or none is.
func (r *NotificationRepo) InsertBatch(ctx context.Context, ns []domain.Notification) error {
	const op = "postgres.NotificationRepo.InsertBatch"

	if len(ns) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, n := range ns {
		batch.Queue(
			`INSERT INTO notifications(`+notificationColumns+`)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			n.ID, n.RecipientID, string(n.Target), n.Message, string(n.Status), n.SendAt, n.ExpiresAt, n.CreatedAt,
		)
	}
	if err := r.db.SendBatch(ctx, batch).Close(); err != nil {
		return wrapDBErr(op, err)
	}

	return nil
}

// ListForRecipient returns live notifications, newest first. Records whose
// send time is still in the future are not visible yet.
func (r *NotificationRepo) ListForRecipient(ctx context.Context, recipientID uuid.UUID, now time.Time) ([]domain.Notification, error) {
	const op = "postgres.NotificationRepo.ListForRecipient"

	rows, err := r.db.Query(ctx,
		`SELECT `+notificationColumns+`
		 FROM notifications
		 WHERE recipient_id = $1 AND expires_at > $2 AND send_at <= $2
		 ORDER BY send_at DESC, created_at DESC`,
		recipientID, now,
	)
	if err != nil {
		return nil, wrapDBErr(op, err)
	}

	out, err := collect(rows, func() (domain.Notification, error) {
		return scanNotification(rows)
	})
	if err != nil {
		return nil, wrapDBErr(op, err)
	}

	return out, nil
}

// ClaimDue flips due scheduled records to sent. SKIP LOCKED lets several
// dispatchers run without claiming the same record twice.
func (r *NotificationRepo) ClaimDue(ctx context.Context, now time.Time, limit int) ([]domain.Notification, error) {
	const op = "postgres.NotificationRepo.ClaimDue"

	rows, err := r.db.Query(ctx,
		`UPDATE notifications SET status = 'sent'
		 WHERE id IN (
			SELECT id FROM notifications
			WHERE status = 'scheduled' AND send_at <= $1
			ORDER BY send_at
			LIMIT $2
			FOR UPDATE SKIP LOCKED
		 )
		 RETURNING `+notificationColumns,
		now, limit,
	)
	if err != nil {
		return nil, wrapDBErr(op, err)
	}

	out, err := collect(rows, func() (domain.Notification, error) {
		return scanNotification(rows)
	})
	if err != nil {
		return nil, wrapDBErr(op, err)
	}

	return out, nil
}
