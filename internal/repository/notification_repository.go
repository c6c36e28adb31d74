package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/solventa/promo-api/internal/apperr"
	"github.com/solventa/promo-api/internal/models"
)

// NotificationRepository is the single source of truth for which partner
// notifications exist and which are active.
type NotificationRepository interface {
	List(ctx context.Context) ([]models.Notification, error)
	ListActive(ctx context.Context) ([]models.Notification, error)
	Get(ctx context.Context, id int64) (models.Notification, error)
	Create(ctx context.Context, params CreateNotificationParams) (models.Notification, error)
	Update(ctx context.Context, id int64, params UpdateNotificationParams) (models.Notification, error)
	Delete(ctx context.Context, id int64) error
}

type notificationRepository struct {
	db *sql.DB
}

func NewNotificationRepository(db *sql.DB) NotificationRepository {
	return &notificationRepository{db: db}
}

// CreateNotificationParams carries the admin-supplied fields for a new
// notification. Optional throttling and scope fields default to
// {limitShows=false, max=1, showRandomly=false} and scope "pages".
type CreateNotificationParams struct {
	Title              string              `json:"title"`
	Body               string              `json:"body"`
	CTALabel           string              `json:"ctaLabel"`
	CTAURL             string              `json:"ctaUrl"`
	Active             bool                `json:"active"`
	ShowAfterSeconds   int                 `json:"showAfterSeconds"`
	ShowOnPages        models.PageTargets  `json:"showOnPages"`
	LimitShows         *bool               `json:"limitShows"`
	MaxShowsPerSession *int                `json:"maxShowsPerSession"`
	ShowRandomly       *bool               `json:"showRandomly"`
	TargetScope        *models.TargetScope `json:"targetScope"`
	TargetContentType  string              `json:"targetContentType"`
	TargetContentIDs   []int64             `json:"targetContentIds"`
}

// UpdateNotificationParams is a partial update; nil fields keep their stored
// value. Page flags merge per key via the patch type.
type UpdateNotificationParams struct {
	Title              *string                 `json:"title"`
	Body               *string                 `json:"body"`
	CTALabel           *string                 `json:"ctaLabel"`
	CTAURL             *string                 `json:"ctaUrl"`
	Active             *bool                   `json:"active"`
	ShowAfterSeconds   *int                    `json:"showAfterSeconds"`
	ShowOnPages        models.PageTargetsPatch `json:"showOnPages"`
	LimitShows         *bool                   `json:"limitShows"`
	MaxShowsPerSession *int                    `json:"maxShowsPerSession"`
	ShowRandomly       *bool                   `json:"showRandomly"`
	TargetScope        *models.TargetScope     `json:"targetScope"`
	TargetContentType  *string                 `json:"targetContentType"`
	TargetContentIDs   []int64                 `json:"targetContentIds"`
}

const notificationColumns = `
	id, title, body, cta_label, cta_url, active, show_after_seconds,
	show_on_home, show_on_blog, show_on_news, show_on_destinations,
	limit_shows, max_shows_per_session, show_randomly,
	target_scope, target_content_type, target_content_ids,
	created_at, updated_at`

func (r *notificationRepository) List(ctx context.Context) ([]models.Notification, error) {
	const query = `
		SELECT` + notificationColumns + `
		FROM promo.notifications
		ORDER BY created_at DESC, id DESC
	`
	return r.queryNotifications(ctx, query)
}

func (r *notificationRepository) ListActive(ctx context.Context) ([]models.Notification, error) {
	const query = `
		SELECT` + notificationColumns + `
		FROM promo.notifications
		WHERE active
		ORDER BY created_at DESC, id DESC
	`
	return r.queryNotifications(ctx, query)
}

func (r *notificationRepository) queryNotifications(ctx context.Context, query string, args ...interface{}) ([]models.Notification, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, storeErr("list notifications", err)
	}
	defer rows.Close()

	var notifications []models.Notification
	for rows.Next() {
		notif, err := scanNotification(rows)
		if err != nil {
			return nil, storeErr("scan notification", err)
		}
		notifications = append(notifications, notif)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("list notifications", err)
	}
	return notifications, nil
}

func (r *notificationRepository) Get(ctx context.Context, id int64) (models.Notification, error) {
	const query = `
		SELECT` + notificationColumns + `
		FROM promo.notifications
		WHERE id = $1
	`
	notif, err := scanNotification(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Notification{}, apperr.ErrNotFound
		}
		return models.Notification{}, storeErr("get notification", err)
	}
	return notif, nil
}

func (r *notificationRepository) Create(ctx context.Context, params CreateNotificationParams) (models.Notification, error) {
	notif := models.Notification{
		Title:              strings.TrimSpace(params.Title),
		Body:               strings.TrimSpace(params.Body),
		CTALabel:           strings.TrimSpace(params.CTALabel),
		CTAURL:             strings.TrimSpace(params.CTAURL),
		Active:             params.Active,
		ShowAfterSeconds:   params.ShowAfterSeconds,
		ShowOnPages:        params.ShowOnPages,
		LimitShows:         false,
		MaxShowsPerSession: 1,
		ShowRandomly:       false,
		TargetScope:        models.TargetScopePages,
		TargetContentType:  strings.TrimSpace(params.TargetContentType),
		TargetContentIDs:   params.TargetContentIDs,
	}
	if params.LimitShows != nil {
		notif.LimitShows = *params.LimitShows
	}
	if params.MaxShowsPerSession != nil {
		notif.MaxShowsPerSession = *params.MaxShowsPerSession
	}
	if params.ShowRandomly != nil {
		notif.ShowRandomly = *params.ShowRandomly
	}
	if params.TargetScope != nil {
		notif.TargetScope = *params.TargetScope
	}
	if err := notif.Validate(); err != nil {
		return models.Notification{}, err
	}

	const query = `
		INSERT INTO promo.notifications (
			title, body, cta_label, cta_url, active, show_after_seconds,
			show_on_home, show_on_blog, show_on_news, show_on_destinations,
			limit_shows, max_shows_per_session, show_randomly,
			target_scope, target_content_type, target_content_ids
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
		RETURNING` + notificationColumns + `
	`
	row := r.db.QueryRowContext(ctx, query,
		notif.Title, notif.Body, notif.CTALabel, notif.CTAURL, notif.Active, notif.ShowAfterSeconds,
		notif.ShowOnPages.Home, notif.ShowOnPages.Blog, notif.ShowOnPages.News, notif.ShowOnPages.Destinations,
		notif.LimitShows, notif.MaxShowsPerSession, notif.ShowRandomly,
		string(notif.TargetScope), nullableString(notif.TargetContentType), pq.Array(notif.TargetContentIDs),
	)
	created, err := scanNotification(row)
	if err != nil {
		return models.Notification{}, storeErr("create notification", err)
	}
	return created, nil
}

func (r *notificationRepository) Update(ctx context.Context, id int64, params UpdateNotificationParams) (models.Notification, error) {
	// Read-merge-write so partial updates never clobber fields the admin
	// did not touch.
	notif, err := r.Get(ctx, id)
	if err != nil {
		return models.Notification{}, err
	}

	if params.Title != nil {
		notif.Title = strings.TrimSpace(*params.Title)
	}
	if params.Body != nil {
		notif.Body = strings.TrimSpace(*params.Body)
	}
	if params.CTALabel != nil {
		notif.CTALabel = strings.TrimSpace(*params.CTALabel)
	}
	if params.CTAURL != nil {
		notif.CTAURL = strings.TrimSpace(*params.CTAURL)
	}
	if params.Active != nil {
		notif.Active = *params.Active
	}
	if params.ShowAfterSeconds != nil {
		notif.ShowAfterSeconds = *params.ShowAfterSeconds
	}
	notif.ShowOnPages = params.ShowOnPages.Apply(notif.ShowOnPages)
	if params.LimitShows != nil {
		notif.LimitShows = *params.LimitShows
	}
	if params.MaxShowsPerSession != nil {
		notif.MaxShowsPerSession = *params.MaxShowsPerSession
	}
	if params.ShowRandomly != nil {
		notif.ShowRandomly = *params.ShowRandomly
	}
	if params.TargetScope != nil {
		notif.TargetScope = *params.TargetScope
	}
	if params.TargetContentType != nil {
		notif.TargetContentType = strings.TrimSpace(*params.TargetContentType)
	}
	if params.TargetContentIDs != nil {
		notif.TargetContentIDs = params.TargetContentIDs
	}
	if err := notif.Validate(); err != nil {
		return models.Notification{}, err
	}

	const query = `
		UPDATE promo.notifications SET
			title = $2, body = $3, cta_label = $4, cta_url = $5, active = $6,
			show_after_seconds = $7,
			show_on_home = $8, show_on_blog = $9, show_on_news = $10, show_on_destinations = $11,
			limit_shows = $12, max_shows_per_session = $13, show_randomly = $14,
			target_scope = $15, target_content_type = $16, target_content_ids = $17,
			updated_at = now()
		WHERE id = $1
		RETURNING` + notificationColumns + `
	`
	row := r.db.QueryRowContext(ctx, query, id,
		notif.Title, notif.Body, notif.CTALabel, notif.CTAURL, notif.Active,
		notif.ShowAfterSeconds,
		notif.ShowOnPages.Home, notif.ShowOnPages.Blog, notif.ShowOnPages.News, notif.ShowOnPages.Destinations,
		notif.LimitShows, notif.MaxShowsPerSession, notif.ShowRandomly,
		string(notif.TargetScope), nullableString(notif.TargetContentType), pq.Array(notif.TargetContentIDs),
	)
	updated, err := scanNotification(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Notification{}, apperr.ErrNotFound
		}
		return models.Notification{}, storeErr("update notification", err)
	}
	return updated, nil
}

func (r *notificationRepository) Delete(ctx context.Context, id int64) error {
	const query = `DELETE FROM promo.notifications WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return storeErr("delete notification", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return storeErr("delete notification", err)
	}
	if affected == 0 {
		return apperr.ErrNotFound
	}
	return nil
}

func scanNotification(scanner interface {
	Scan(dest ...interface{}) error
}) (models.Notification, error) {
	var (
		notif       models.Notification
		scope       sql.NullString
		contentType sql.NullString
		contentIDs  pq.Int64Array
	)

	if err := scanner.Scan(
		&notif.ID,
		&notif.Title,
		&notif.Body,
		&notif.CTALabel,
		&notif.CTAURL,
		&notif.Active,
		&notif.ShowAfterSeconds,
		&notif.ShowOnPages.Home,
		&notif.ShowOnPages.Blog,
		&notif.ShowOnPages.News,
		&notif.ShowOnPages.Destinations,
		&notif.LimitShows,
		&notif.MaxShowsPerSession,
		&notif.ShowRandomly,
		&scope,
		&contentType,
		&contentIDs,
		&notif.CreatedAt,
		&notif.UpdatedAt,
	); err != nil {
		return models.Notification{}, err
	}

	// Records written before the targeting-scope column existed read back as
	// NULL; treat them as page-targeted.
	notif.TargetScope = models.TargetScopePages
	if scope.Valid && scope.String != "" {
		notif.TargetScope = models.TargetScope(scope.String)
	}
	if contentType.Valid {
		notif.TargetContentType = contentType.String
	}
	if len(contentIDs) > 0 {
		notif.TargetContentIDs = contentIDs
	}

	return notif, nil
}

func nullableString(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

func storeErr(op string, err error) error {
	return errors.Wrapf(apperr.ErrStoreUnavailable, "%s: %v", op, err)
}
