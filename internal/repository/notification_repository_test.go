package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/solventa/promo-api/internal/apperr"
	"github.com/solventa/promo-api/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var notificationRows = []string{
	"id", "title", "body", "cta_label", "cta_url", "active", "show_after_seconds",
	"show_on_home", "show_on_blog", "show_on_news", "show_on_destinations",
	"limit_shows", "max_shows_per_session", "show_randomly",
	"target_scope", "target_content_type", "target_content_ids",
	"created_at", "updated_at",
}

func addNotificationRow(rows *sqlmock.Rows, id int64, scope interface{}, pages models.PageTargets) *sqlmock.Rows {
	now := time.Now()
	return rows.AddRow(
		id, "Partner deal", "Save on your next trip", "See offer", "https://partner.example/offer",
		true, 30,
		pages.Home, pages.Blog, pages.News, pages.Destinations,
		false, 1, false,
		scope, nil, nil,
		now, now,
	)
}

func TestGetNotification(t *testing.T) {
	assert := assert.New(t)

	db, mock, err := sqlmock.New()
	require.NoError(t, err, "unable to open the mock database connection")
	defer db.Close()

	rows := addNotificationRow(sqlmock.NewRows(notificationRows), 7, "pages", models.PageTargets{Home: true})
	mock.ExpectQuery("(?s)SELECT.+FROM promo\\.notifications\\s+WHERE id =").
		WithArgs(int64(7)).
		WillReturnRows(rows)

	repo := NewNotificationRepository(db)
	notif, err := repo.Get(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(int64(7), notif.ID)
	assert.Equal(models.TargetScopePages, notif.TargetScope)
	assert.True(notif.ShowOnPages.Home)

	assert.NoError(mock.ExpectationsWereMet(), "not all mock expectations were met")
}

func TestGetNotificationNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("(?s)SELECT.+FROM promo\\.notifications\\s+WHERE id =").
		WithArgs(int64(99)).
		WillReturnError(sql.ErrNoRows)

	repo := NewNotificationRepository(db)
	_, err = repo.Get(context.Background(), 99)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetNotificationLegacyScopeDefaultsToPages(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	// Rows written before the scope column existed come back NULL and must
	// be treated as page-targeted.
	rows := addNotificationRow(sqlmock.NewRows(notificationRows), 3, nil, models.PageTargets{Blog: true})
	mock.ExpectQuery("(?s)SELECT.+FROM promo\\.notifications\\s+WHERE id =").
		WithArgs(int64(3)).
		WillReturnRows(rows)

	repo := NewNotificationRepository(db)
	notif, err := repo.Get(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, models.TargetScopePages, notif.TargetScope)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateNotificationDefaults(t *testing.T) {
	assert := assert.New(t)

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	// Unspecified throttling fields default to disabled/1/non-random and
	// scope defaults to "pages".
	mock.ExpectQuery("INSERT INTO promo.notifications").
		WithArgs(
			"Partner deal", "Save on your next trip", "See offer", "https://partner.example/offer",
			true, 30,
			true, false, false, false,
			false, 1, false,
			"pages", nil, nil,
		).
		WillReturnRows(addNotificationRow(sqlmock.NewRows(notificationRows), 1, "pages", models.PageTargets{Home: true}))

	repo := NewNotificationRepository(db)
	notif, err := repo.Create(context.Background(), CreateNotificationParams{
		Title:            "Partner deal",
		Body:             "Save on your next trip",
		CTALabel:         "See offer",
		CTAURL:           "https://partner.example/offer",
		Active:           true,
		ShowAfterSeconds: 30,
		ShowOnPages:      models.PageTargets{Home: true},
	})
	require.NoError(t, err)
	assert.Equal(int64(1), notif.ID)
	assert.NoError(mock.ExpectationsWereMet())
}

func TestCreateNotificationValidation(t *testing.T) {
	assert := assert.New(t)

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewNotificationRepository(db)

	// Out-of-range delay never reaches the database.
	_, err = repo.Create(context.Background(), CreateNotificationParams{
		Title:            "Partner deal",
		Body:             "Save on your next trip",
		CTALabel:         "See offer",
		CTAURL:           "https://partner.example/offer",
		ShowAfterSeconds: 4,
	})
	assert.True(apperr.IsValidation(err))

	_, err = repo.Create(context.Background(), CreateNotificationParams{
		ShowAfterSeconds: 30,
	})
	assert.True(apperr.IsValidation(err), "empty required text fields must be rejected")

	assert.NoError(mock.ExpectationsWereMet())
}

func TestUpdateNotificationMergesPageFlags(t *testing.T) {
	assert := assert.New(t)

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	// Stored flags: home, blog and destinations on.
	stored := addNotificationRow(sqlmock.NewRows(notificationRows), 5, "pages",
		models.PageTargets{Home: true, Blog: true, Destinations: true})
	mock.ExpectQuery("(?s)SELECT.+FROM promo\\.notifications\\s+WHERE id =").
		WithArgs(int64(5)).
		WillReturnRows(stored)

	// Patching only home leaves the other flags intact.
	mock.ExpectQuery("UPDATE promo.notifications SET").
		WithArgs(
			int64(5),
			"Partner deal", "Save on your next trip", "See offer", "https://partner.example/offer",
			true, 30,
			false, true, false, true,
			false, 1, false,
			"pages", nil, nil,
		).
		WillReturnRows(addNotificationRow(sqlmock.NewRows(notificationRows), 5, "pages",
			models.PageTargets{Blog: true, Destinations: true}))

	off := false
	repo := NewNotificationRepository(db)
	notif, err := repo.Update(context.Background(), 5, UpdateNotificationParams{
		ShowOnPages: models.PageTargetsPatch{Home: &off},
	})
	require.NoError(t, err)
	assert.False(notif.ShowOnPages.Home)
	assert.True(notif.ShowOnPages.Blog)
	assert.NoError(mock.ExpectationsWereMet(), "not all mock expectations were met")
}

func TestUpdateNotificationNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("(?s)SELECT.+FROM promo\\.notifications\\s+WHERE id =").
		WithArgs(int64(42)).
		WillReturnError(sql.ErrNoRows)

	title := "New title"
	repo := NewNotificationRepository(db)
	_, err = repo.Update(context.Background(), 42, UpdateNotificationParams{Title: &title})
	assert.ErrorIs(t, err, apperr.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteNotification(t *testing.T) {
	assert := assert.New(t)

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("DELETE FROM promo.notifications WHERE id =").
		WithArgs(int64(5)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("DELETE FROM promo.notifications WHERE id =").
		WithArgs(int64(6)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	repo := NewNotificationRepository(db)
	assert.NoError(repo.Delete(context.Background(), 5))
	assert.ErrorIs(repo.Delete(context.Background(), 6), apperr.ErrNotFound)
	assert.NoError(mock.ExpectationsWereMet())
}

func TestListActiveNotifications(t *testing.T) {
	assert := assert.New(t)

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	rows := sqlmock.NewRows(notificationRows)
	addNotificationRow(rows, 2, "pages", models.PageTargets{Home: true})
	addNotificationRow(rows, 1, "pages", models.PageTargets{News: true})
	mock.ExpectQuery("(?s)SELECT.+FROM promo\\.notifications\\s+WHERE active").
		WillReturnRows(rows)

	repo := NewNotificationRepository(db)
	active, err := repo.ListActive(context.Background())
	require.NoError(t, err)
	require.Len(t, active, 2)
	assert.Equal(int64(2), active[0].ID)
	assert.NoError(mock.ExpectationsWereMet())
}

func TestListNotificationsStoreUnavailable(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("(?s)SELECT.+FROM promo\\.notifications").
		WillReturnError(sql.ErrConnDone)

	repo := NewNotificationRepository(db)
	_, err = repo.List(context.Background())
	assert.ErrorIs(t, err, apperr.ErrStoreUnavailable)
	assert.NoError(t, mock.ExpectationsWereMet())
}
