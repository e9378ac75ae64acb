package http

import (
	"context"
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/notecove/notecove/internal/auth"
	"github.com/notecove/notecove/internal/config"
	"github.com/notecove/notecove/internal/http/handlers"
	"github.com/notecove/notecove/internal/http/middlewares"
	"github.com/notecove/notecove/internal/observability"
	"github.com/notecove/notecove/internal/repo/postgres"
	"github.com/notecove/notecove/internal/session"
)

func NewRouter(log *slog.Logger, pool *pgxpool.Pool, sessions session.Store, cfg config.Config) *gin.Engine {
	if cfg.Env != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()

	// middleware
	r.Use(gin.Recovery())
	r.Use(otelgin.Middleware("notecove"))
	r.Use(RequestID())
	r.Use(RequestLogger(log))
	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddleware(cfg.CORSAllowedOrigins))
	r.Use(middlewares.RequireJSON())
	r.Use(middlewares.MaxBodyBytes(1 << 20)) // 1 MiB

	// metrics
	promReg := prometheus.NewRegistry()
	prom := observability.NewProm(promReg)
	r.Use(prom.GinHandleMiddleware())
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(promReg, promhttp.HandlerOpts{})))

	// health
	ping := func() error {
		if pool == nil {
			return nil
		}

		ctx, cancel := context.WithTimeout(context.Background(), 1*time.Second)
		defer cancel()

		return pool.Ping(ctx)
	}

	h := handlers.NewHealthHandler(ping)
	r.GET("/healthz", h.Healthz)
	r.GET("/readyz", h.Readyz)

	// wire up repositories
	usersRepo := postgres.NewUsersRepo(pool, prom)
	notesRepo := postgres.NewNotesRepo(pool, prom)

	tokens := auth.NewManager(cfg.SessionSecret, cfg.SessionTTL())
	sessionMw := middlewares.NewSessionMiddleware(tokens, sessions, cfg.SessionCookie)

	authHandler := handlers.NewAuthHandler(usersRepo, usersRepo, tokens, sessions, cfg, prom)
	notesHandler := handlers.NewNotesHandler(notesRepo, usersRepo)

	// credential endpoints are the only unauthenticated writes; keep them
	// behind a per-IP limiter
	authLimiter := middlewares.NewRateLimiter(10, time.Minute)

	authGroup := r.Group("/api/auth")
	authGroup.Use(authLimiter.RateLimiterMiddleware(middlewares.KeyByIP))
	authGroup.POST("/register", authHandler.Register)
	authGroup.POST("/login", authHandler.Login)
	authGroup.POST("/logout", authHandler.Logout)

	notesGroup := r.Group("/api/notes")
	notesGroup.Use(sessionMw.RequireSession())
	notesGroup.POST("", notesHandler.CreateNote)
	notesGroup.GET("", notesHandler.ListNotes)
	notesGroup.GET("/:id", notesHandler.GetNoteById)
	notesGroup.PUT("/:id", notesHandler.UpdateNote)
	notesGroup.DELETE("/:id", notesHandler.DeleteNote)

	return r
}
