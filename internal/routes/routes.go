package routes

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/solventa/promo-api/internal/handlers"
	"github.com/solventa/promo-api/internal/session"
)

// NewRouter sets up the API routes
func NewRouter(notification *handlers.NotificationHandler, stats *handlers.StatsHandler, display *handlers.DisplayHandler) *mux.Router {
	router := mux.NewRouter()

	// Health check route
	router.HandleFunc("/health", handlers.HealthCheck).Methods(http.MethodGet)

	// Admin CMS surface
	router.HandleFunc("/api/notifications", notification.List).Methods(http.MethodGet)
	router.HandleFunc("/api/notifications", notification.Create).Methods(http.MethodPost)
	router.HandleFunc("/api/notifications/stats", stats.Get).Methods(http.MethodGet)
	router.HandleFunc("/api/notifications/stats", stats.Reset).Methods(http.MethodDelete)
	router.HandleFunc("/api/notifications/{notificationID}", notification.Get).Methods(http.MethodGet)
	router.HandleFunc("/api/notifications/{notificationID}", notification.Update).Methods(http.MethodPut)
	router.HandleFunc("/api/notifications/{notificationID}", notification.Delete).Methods(http.MethodDelete)

	// Public display surface; the session middleware mints the visitor token.
	displayRoutes := router.PathPrefix("/api/display").Subrouter()
	displayRoutes.Use(session.Middleware)
	displayRoutes.HandleFunc("/page/{page}", display.SelectForPage).Methods(http.MethodGet)
	displayRoutes.HandleFunc("/content/{contentType}/{contentID}", display.SelectForContent).Methods(http.MethodGet)

	return router
}
