package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Dias221467/habit_tracker/internal/cache"
	"github.com/Dias221467/habit_tracker/internal/config"
	"github.com/Dias221467/habit_tracker/internal/database"
	"github.com/Dias221467/habit_tracker/internal/handlers"
	"github.com/Dias221467/habit_tracker/internal/jobs"
	"github.com/Dias221467/habit_tracker/internal/repository"
	"github.com/Dias221467/habit_tracker/internal/repository/memory"
	"github.com/Dias221467/habit_tracker/internal/scheduler"
	"github.com/Dias221467/habit_tracker/internal/services"
	"github.com/Dias221467/habit_tracker/pkg/email"
	"github.com/Dias221467/habit_tracker/pkg/logger"
	"github.com/Dias221467/habit_tracker/pkg/middleware"
	"github.com/rs/cors"
)

type userStore interface {
	services.UserStore
	jobs.UserDirectory
}

type stores struct {
	habits        services.HabitStore
	completions   services.CompletionStore
	users         userStore
	notifications services.NotificationStore
	health        func(ctx context.Context) error
	close         func(ctx context.Context) error
}

func openStores(cfg *config.Config) (*stores, error) {
	if cfg.Storage == "memory" {
		logger.Log.Warn("Using in-memory storage, data is lost on restart")
		return &stores{
			habits:        memory.NewHabitStore(),
			completions:   memory.NewCompletionStore(),
			users:         memory.NewUserStore(),
			notifications: memory.NewNotificationStore(),
			close:         func(context.Context) error { return nil },
		}, nil
	}

	// Connect to MongoDB
	db, err := database.ConnectDB(cfg)
	if err != nil {
		return nil, err
	}
	return &stores{
		habits:        repository.NewHabitRepository(db),
		completions:   repository.NewCompletionRepository(db),
		users:         repository.NewUserRepository(db),
		notifications: repository.NewNotificationRepository(db),
		health:        func(ctx context.Context) error { return db.Client().Ping(ctx, nil) },
		close:         db.Client().Disconnect,
	}, nil
}

func main() {
	// Load configuration from .env file
	cfg := config.LoadConfig()

	logger.InitLogger()
	logger.Log.Info("Logger initialized")

	st, err := openStores(cfg)
	if err != nil {
		log.Fatalf("Database connection error: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Redis is optional: without it stats are computed on every request and logout
	// cannot revoke tokens server-side.
	var (
		statsCache  services.StatsCacher
		revoker     services.TokenRevoker
		revocations middleware.RevocationChecker
	)
	rdb, err := cache.NewRedisClient(ctx, cfg)
	if err != nil {
		logger.Log.WithError(err).Warn("Redis unavailable, running without cache and token revocation")
	} else {
		defer rdb.Close()
		statsCache = cache.NewStatsCache(rdb, cfg.StatsCacheTTL)
		tokens := cache.NewTokenRevocations(rdb)
		revoker = tokens
		revocations = tokens
	}

	// --- Services ---
	notificationService := services.NewNotificationService(st.notifications)
	habitService := services.NewHabitService(st.habits, st.completions, notificationService, statsCache, cfg.Location)
	statsService := services.NewStatsService(st.habits, st.completions, statsCache, cfg.Location)
	userService := services.NewUserService(st.users, revoker)

	// --- Jobs ---
	var reminder scheduler.Reminder
	if cfg.ReminderEnabled {
		var mailer jobs.Sender
		if m := email.NewMailer(cfg); m != nil && cfg.ReminderEmails {
			mailer = m
		}
		reminder = jobs.NewStreakReminder(habitService, notificationService, st.users, mailer)
	}
	jobRunner, err := scheduler.StartCronJobs(ctx, reminder, notificationService)
	if err != nil {
		log.Fatalf("Failed to schedule jobs: %v", err)
	}

	// --- Handlers ---
	router := handlers.NewRouter(handlers.Router{
		Config:        cfg,
		Users:         handlers.NewUserHandler(userService, cfg),
		Habits:        handlers.NewHabitHandler(habitService),
		Stats:         handlers.NewStatsHandler(statsService),
		Notifications: handlers.NewNotificationHandler(notificationService),
		Revocations:   revocations,
		Activity:      userService,
		Health:        st.health,
	})

	c := cors.New(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           c.Handler(router),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Log.Infof("Server running on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Log.WithError(err).Fatal("Server failed")
		}
	}()

	<-ctx.Done()
	logger.Log.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	<-jobRunner.Stop().Done()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Log.WithError(err).Warn("Graceful shutdown failed")
	}
	if err := st.close(shutdownCtx); err != nil {
		logger.Log.WithError(err).Warn("Failed to close storage")
	}
}
