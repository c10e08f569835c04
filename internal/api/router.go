package api

import (
	"log/slog"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/myusa/platform/internal/account"
	"github.com/myusa/platform/internal/activity"
	"github.com/myusa/platform/internal/api/handlers"
	"github.com/myusa/platform/internal/api/middleware"
	"github.com/myusa/platform/internal/auth"
	"github.com/myusa/platform/internal/cache"
	"github.com/myusa/platform/internal/config"
	"github.com/myusa/platform/internal/notification"
	"github.com/myusa/platform/internal/oauth"
	"github.com/myusa/platform/internal/queue"
	"github.com/myusa/platform/internal/task"
)

type Router struct {
	mux   *chi.Mux
	db    *pgxpool.Pool
	redis *redis.Client
	cfg   *config.Config
}

func NewRouter(db *pgxpool.Pool, rdb *redis.Client, cfg *config.Config) *Router {
	return &Router{
		mux:   chi.NewRouter(),
		db:    db,
		redis: rdb,
		cfg:   cfg,
	}
}

func (rt *Router) Setup() http.Handler {
	r := rt.mux

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logging)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.CORS([]string{"*"}))

	rl := middleware.NewRateLimiter(100, 200)
	r.Use(rl.Limit)

	// Health endpoints (no auth)
	health := handlers.NewHealthHandler(rt.db, rt.redis)
	r.Get("/healthz", health.Healthz)
	r.Get("/readyz", health.Readyz)

	// Services
	queueClient := queue.NewClient(rt.cfg.Redis)
	registry, err := notification.DefaultRegistry(queueClient)
	if err != nil {
		slog.Error("channel registry setup failed", "error", err)
		os.Exit(1)
	}

	notifStore := notification.NewPGStore(rt.db)
	dispatcher := notification.NewDispatcher(notifStore, registry)
	notifSvc := notification.NewService(notifStore, dispatcher)

	auditSvc := activity.NewService(activity.NewPGStore(rt.db))
	accountSvc := account.NewService(account.NewPGStore(rt.db), notifSvc, auditSvc, account.LogMailer{})
	taskSvc := task.NewService(task.NewPGStore(rt.db))

	validator := oauth.NewValidator(oauth.NewStore(rt.db), cache.NewCache(rt.redis), rt.cfg.Auth.TokenCacheTTL)
	gate := oauth.NewGate(validator)
	session := auth.NewSessionMiddleware(rt.cfg.Auth.JWTSecret, accountSvc)

	record := func(controller, action string) func(http.Handler) http.Handler {
		return activity.Middleware(auditSvc, controller, action)
	}

	// OAuth2-guarded API. Resolve runs for every call so the activity
	// recorder sees the same app/user the gate saw, even on denials.
	profileH := handlers.NewProfileHandler(accountSvc)
	notifH := handlers.NewNotificationHandler(notifSvc)
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(gate.Resolve)

		r.With(record("profile", "show"), gate.Require("profile.read")).
			Get("/profile", profileH.Show)

		r.With(record("notifications", "index"), gate.Require("notifications")).
			Get("/notifications", notifH.List)
		r.With(record("notifications", "create"), gate.Require("notifications")).
			Post("/notifications", notifH.Create)
	})

	// First-party routes
	accountH := handlers.NewAccountHandler(accountSvc)
	taskH := handlers.NewTaskItemHandler(taskSvc)

	r.Post("/users", accountH.Register)

	r.Group(func(r chi.Router) {
		r.Use(session.Authenticate)

		r.Get("/account/activity", accountH.Activity)
		r.Delete("/account", accountH.Delete)

		r.Get("/notifications", notifH.List)
		r.Post("/notifications/{id}/viewed", notifH.MarkViewed)
		r.Delete("/notifications/{id}", notifH.Delete)

		r.Patch("/tasks/items/{id}", taskH.Update)
		r.Post("/tasks/items/{id}", taskH.Update)
		r.Delete("/tasks/items/{id}", taskH.Destroy)
	})

	return r
}
