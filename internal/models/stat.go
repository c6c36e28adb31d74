package models

import "time"

// NotificationViewStat holds the per-notification breakdown of recorded views.
type NotificationViewStat struct {
	NotificationID int64 `json:"notification_id" db:"notification_id"`
	Views          int64 `json:"views" db:"views"`
	Sessions       int64 `json:"sessions" db:"sessions"`
}

// ViewStats is the aggregated view report for the admin panel.
type ViewStats struct {
	TotalViews      int64                  `json:"total_views" db:"total_views"`
	UniqueSessions  int64                  `json:"unique_sessions" db:"unique_sessions"`
	PerNotification []NotificationViewStat `json:"per_notification"`
}

// SessionView is one (session, notification) counter row.
type SessionView struct {
	SessionID      string    `json:"session_id" db:"session_id"`
	NotificationID int64     `json:"notification_id" db:"notification_id"`
	ViewCount      int       `json:"view_count" db:"view_count"`
	LastViewedAt   time.Time `json:"last_viewed_at" db:"last_viewed_at"`
}
