package repository

import (
	"context"
	"database/sql"

	sq "github.com/Masterminds/squirrel"
	"github.com/pkg/errors"
	"github.com/solventa/promo-api/internal/models"
)

// ViewRepository is the session view ledger: it tracks how many times each
// notification has been shown to each visitor session.
type ViewRepository interface {
	GetCount(ctx context.Context, sessionID string, notificationID int64) (int, error)
	RecordView(ctx context.Context, sessionID string, notificationID int64) error
	Reset(ctx context.Context, notificationID *int64) error
	Stats(ctx context.Context, notificationID *int64) (models.ViewStats, error)
}

type viewRepository struct {
	db *sql.DB
}

func NewViewRepository(db *sql.DB) ViewRepository {
	return &viewRepository{db: db}
}

func (r *viewRepository) GetCount(ctx context.Context, sessionID string, notificationID int64) (int, error) {
	const query = `
		SELECT view_count FROM promo.notification_views
		WHERE session_id = $1 AND notification_id = $2
	`
	var count int
	err := r.db.QueryRowContext(ctx, query, sessionID, notificationID).Scan(&count)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, storeErr("get view count", err)
	}
	return count, nil
}

// RecordView is the only ledger mutator. The upsert keeps the count
// monotonically non-decreasing and the (session, notification) pair unique.
// Callers must invoke it at most once per actual display.
func (r *viewRepository) RecordView(ctx context.Context, sessionID string, notificationID int64) error {
	const query = `
		INSERT INTO promo.notification_views (session_id, notification_id, view_count, last_viewed_at)
		VALUES ($1, $2, 1, now())
		ON CONFLICT (session_id, notification_id)
		DO UPDATE SET view_count = promo.notification_views.view_count + 1, last_viewed_at = now()
	`
	if _, err := r.db.ExecContext(ctx, query, sessionID, notificationID); err != nil {
		return storeErr("record view", err)
	}
	return nil
}

func (r *viewRepository) Reset(ctx context.Context, notificationID *int64) error {
	builder := sq.StatementBuilder.
		PlaceholderFormat(sq.Dollar).
		Delete("promo.notification_views")
	if notificationID != nil {
		builder = builder.Where(sq.Eq{"notification_id": *notificationID})
	}

	statement, args, err := builder.ToSql()
	if err != nil {
		return errors.Wrap(err, "unable to build reset statement")
	}
	if _, err := r.db.ExecContext(ctx, statement, args...); err != nil {
		return storeErr("reset view stats", err)
	}
	return nil
}

func (r *viewRepository) Stats(ctx context.Context, notificationID *int64) (models.ViewStats, error) {
	wrapMsg := "unable to load view stats"
	var stats models.ViewStats

	totals := sq.StatementBuilder.
		PlaceholderFormat(sq.Dollar).
		Select("COALESCE(SUM(view_count), 0)", "COUNT(DISTINCT session_id)").
		From("promo.notification_views")
	if notificationID != nil {
		totals = totals.Where(sq.Eq{"notification_id": *notificationID})
	}

	statement, args, err := totals.ToSql()
	if err != nil {
		return stats, errors.Wrap(err, wrapMsg)
	}
	if err := r.db.QueryRowContext(ctx, statement, args...).Scan(&stats.TotalViews, &stats.UniqueSessions); err != nil {
		return stats, storeErr("view stats totals", err)
	}

	perNotif := sq.StatementBuilder.
		PlaceholderFormat(sq.Dollar).
		Select("notification_id", "SUM(view_count)", "COUNT(DISTINCT session_id)").
		From("promo.notification_views").
		GroupBy("notification_id").
		OrderBy("notification_id")
	if notificationID != nil {
		perNotif = perNotif.Where(sq.Eq{"notification_id": *notificationID})
	}

	statement, args, err = perNotif.ToSql()
	if err != nil {
		return stats, errors.Wrap(err, wrapMsg)
	}
	rows, err := r.db.QueryContext(ctx, statement, args...)
	if err != nil {
		return stats, storeErr("view stats breakdown", err)
	}
	defer rows.Close()

	for rows.Next() {
		var stat models.NotificationViewStat
		if err := rows.Scan(&stat.NotificationID, &stat.Views, &stat.Sessions); err != nil {
			return stats, storeErr("view stats breakdown", err)
		}
		stats.PerNotification = append(stats.PerNotification, stat)
	}
	if err := rows.Err(); err != nil {
		return stats, storeErr("view stats breakdown", err)
	}
	return stats, nil
}
