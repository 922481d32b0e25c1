package handlers

import (
	"context"
	"net/http"

	"github.com/Dias221467/habit_tracker/internal/config"
	"github.com/Dias221467/habit_tracker/pkg/middleware"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Router collects what NewRouter needs. Revocations, Activity and Health may be nil.
type Router struct {
	Config        *config.Config
	Users         *UserHandler
	Habits        *HabitHandler
	Stats         *StatsHandler
	Notifications *NotificationHandler

	Revocations middleware.RevocationChecker
	Activity    middleware.ActivityTracker
	Health      func(ctx context.Context) error
}

// NewRouter registers every route on a gorilla/mux router.
func NewRouter(rt Router) *mux.Router {
	router := mux.NewRouter()

	auth := middleware.AuthMiddleware(rt.Config.JWTSecret, rt.Revocations)
	protect := func(r *mux.Router) {
		r.Use(auth)
		if rt.Activity != nil {
			r.Use(middleware.UpdateLastActiveMiddleware(rt.Activity))
		}
	}

	router.HandleFunc("/healthz", healthHandler(rt.Health)).Methods("GET")
	router.Handle("/metrics", promhttp.Handler()).Methods("GET")

	// Register User routes
	router.HandleFunc("/users/register", rt.Users.RegisterUserHandler).Methods("POST")
	router.HandleFunc("/users/login", rt.Users.LoginUserHandler).Methods("POST")

	protectedUserRoutes := router.PathPrefix("/users").Subrouter()
	protect(protectedUserRoutes)
	protectedUserRoutes.HandleFunc("/me", rt.Users.GetMeHandler).Methods("GET")
	protectedUserRoutes.HandleFunc("/logout", rt.Users.LogoutHandler).Methods("POST")

	// Habit routes
	habitRoutes := router.PathPrefix("/habits").Subrouter()
	protect(habitRoutes)
	habitRoutes.HandleFunc("", rt.Habits.CreateHabitHandler).Methods("POST")
	habitRoutes.HandleFunc("", rt.Habits.GetHabitsHandler).Methods("GET")
	habitRoutes.HandleFunc("/{id}", rt.Habits.GetHabitHandler).Methods("GET")
	habitRoutes.HandleFunc("/{id}", rt.Habits.UpdateHabitHandler).Methods("PUT")
	habitRoutes.HandleFunc("/{id}", rt.Habits.DeleteHabitHandler).Methods("DELETE")
	habitRoutes.HandleFunc("/{id}/complete", rt.Habits.CompleteHabitHandler).Methods("POST")
	habitRoutes.HandleFunc("/{id}/completions", rt.Habits.GetCompletionsHandler).Methods("GET")

	statsRoutes := router.PathPrefix("/stats").Subrouter()
	protect(statsRoutes)
	statsRoutes.HandleFunc("", rt.Stats.GetStatsHandler).Methods("GET")

	// Notification routes
	notificationRoutes := router.PathPrefix("/notifications").Subrouter()
	protect(notificationRoutes)
	notificationRoutes.HandleFunc("", rt.Notifications.GetUserNotificationsHandler).Methods("GET")
	notificationRoutes.HandleFunc("/{id}/read", rt.Notifications.MarkAsReadHandler).Methods("POST")
	notificationRoutes.HandleFunc("/{id}", rt.Notifications.DeleteNotificationHandler).Methods("DELETE")

	// Admin routes
	adminRoutes := router.PathPrefix("/admin").Subrouter()
	adminRoutes.Use(auth)
	adminRoutes.Use(middleware.RequireRole("admin"))
	adminRoutes.HandleFunc("/habits", rt.Habits.AdminGetAllHabitsHandler).Methods("GET")

	// Apply middleware for logging
	router.Use(middleware.LoggingMiddleware)

	return router
}

func healthHandler(check func(ctx context.Context) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if check != nil {
			if err := check(r.Context()); err != nil {
				writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable", "error": err.Error()})
				return
			}
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
