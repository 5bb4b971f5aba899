package http

import (
	"context"
	"log/slog"
	"time"

	"github.com/candyhaus/sweetshop/internal/auth"
	"github.com/candyhaus/sweetshop/internal/cache"
	"github.com/candyhaus/sweetshop/internal/config"
	"github.com/candyhaus/sweetshop/internal/domain/user"
	"github.com/candyhaus/sweetshop/internal/http/handlers"
	"github.com/candyhaus/sweetshop/internal/http/middlewares"
	"github.com/candyhaus/sweetshop/internal/observability"
	"github.com/candyhaus/sweetshop/internal/repo/postgres"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

func NewRouter(log *slog.Logger, pool *pgxpool.Pool, store cache.Store, cfg config.Config) *gin.Engine {
	if cfg.Env != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()

	// metrics registry; process/go collectors plus our own
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	prom := observability.NewProm(reg)

	// middleware

	r.Use(gin.Recovery())
	if cfg.OTELEnabled {
		r.Use(otelgin.Middleware("sweetshop-api"))
	}
	r.Use(middlewares.RequestID())
	r.Use(middlewares.RequestLogger(log))
	r.Use(prom.GinHandleMiddleware())
	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddleware(cfg.AllowedOrigins))
	r.Use(middlewares.MaxBodyBytes(cfg.MaxBodyBytes))
	r.Use(middlewares.RequireJSON())

	// health + metrics
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
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))

	// wire up repositories
	usersRepo := postgres.NewUsersRepo(pool, prom)
	sweetsRepo := postgres.NewSweetsRepo(pool, prom)

	// token verification + issuing
	jwtManager := auth.NewManager(cfg.JWTSecret, cfg.JWTExpiresIn)
	authMW := middlewares.NewAuthMiddleware(jwtManager)

	// handlers
	authHandler := handlers.NewAuthHandler(usersRepo, jwtManager)
	sweetsHandler := handlers.NewSweetsHandlerWithCache(sweetsRepo, store)

	// unauthenticated auth endpoints, rate limited by IP
	authLimiter := middlewares.NewRateLimiter(cfg.RateLimit, cfg.RateLimitWindow)

	authGroup := r.Group("/api/auth")
	authGroup.Use(authLimiter.RateLimiterMiddleware(middlewares.KeyByIP))
	authGroup.POST("/register", authHandler.Register)
	authGroup.POST("/login", authHandler.Login)

	// inventory: any valid identity may browse/purchase, admin gates the rest
	sweets := r.Group("/api/sweets")
	sweets.Use(authMW.RequireAuth())

	sweets.POST("", sweetsHandler.CreateSweet)
	sweets.GET("", sweetsHandler.ListSweets)
	sweets.GET("/search", sweetsHandler.SearchSweets)
	sweets.PUT("/:id", sweetsHandler.UpdateSweet)
	sweets.POST("/:id/purchase", sweetsHandler.PurchaseSweet)

	sweets.DELETE("/:id", authMW.RequireRole(user.RoleAdmin), sweetsHandler.DeleteSweet)
	sweets.POST("/:id/restock", authMW.RequireRole(user.RoleAdmin), sweetsHandler.RestockSweet)

	return r
}
