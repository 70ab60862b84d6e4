package api

import (
	"github.com/astraschool/astra-platform/internal/api/handler"
	"github.com/astraschool/astra-platform/internal/api/middleware"
	"github.com/astraschool/astra-platform/internal/api/spec"
	"github.com/astraschool/astra-platform/internal/config"
	"github.com/astraschool/astra-platform/internal/idempotency"
	"github.com/astraschool/astra-platform/internal/repository"
	"github.com/astraschool/astra-platform/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	httpSwagger "github.com/swaggo/http-swagger/v2"
	"go.uber.org/zap"
)

type Router struct {
	cfg       *config.Config
	logger    *zap.Logger
	db        *pgxpool.Pool
	store     *repository.Store
	idemStore *idempotency.Store
	redis     redis.Cmdable
}

func NewRouter(cfg *config.Config, logger *zap.Logger, db *pgxpool.Pool, store *repository.Store, idemStore *idempotency.Store, redisClient redis.Cmdable) *Router {
	return &Router{
		cfg:       cfg,
		logger:    logger,
		db:        db,
		store:     store,
		idemStore: idemStore,
		redis:     redisClient,
	}
}

func (api *Router) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.TraceMiddleware)
	r.Use(middleware.RecoverMiddleware(api.logger))
	r.Use(middleware.LoggingMiddleware(api.logger))
	r.Use(middleware.MetricsMiddleware)

	// Services
	userSvc := service.NewUserService(api.store, api.cfg.StartingBalance)
	friendSvc := service.NewFriendService(api.store)
	transferSvc := service.NewTransferService(api.store)
	companySvc := service.NewCompanyService(api.store, api.cfg.StrictFounderEmails)
	investmentSvc := service.NewInvestmentService(api.store)
	earningsSvc := service.NewEarningsService(api.store)
	adminSvc := service.NewAdminService(api.store, api.cfg.StartingBalance, api.cfg.AdminStartingBalance)

	// Handlers
	healthHandler := handler.NewHealthHandler(api.db, api.redis)
	authHandler := handler.NewAuthHandler(userSvc)
	userHandler := handler.NewUserHandler(userSvc)
	friendHandler := handler.NewFriendHandler(friendSvc)
	transferHandler := handler.NewTransferHandler(transferSvc, friendSvc)
	companyHandler := handler.NewCompanyHandler(companySvc, investmentSvc, earningsSvc, adminSvc)
	adminHandler := handler.NewAdminHandler(adminSvc)

	// Operational endpoints
	r.Get("/healthz", healthHandler.Live)
	r.Get("/readyz", healthHandler.Ready)
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/openapi.yaml", spec.OpenAPIHandler())
	r.Get("/docs/*", httpSwagger.Handler(httpSwagger.URL("/openapi.yaml")))

	// Public routes
	r.Group(func(r chi.Router) {
		r.Use(middleware.PublicRateLimiter(api.cfg.PublicRateLimitRPS))
		r.Post("/v1/auth/register", authHandler.Register)
		r.Post("/v1/auth/login", authHandler.Login)
	})

	// Authenticated routes
	r.Group(func(r chi.Router) {
		r.Use(middleware.AuthMiddleware)
		r.Use(middleware.AuthRateLimiter(api.cfg.AuthRateLimitRPS))

		r.Get("/v1/me", userHandler.Me)
		r.Get("/v1/me/transactions", userHandler.History)
		r.Get("/v1/me/equity", userHandler.Equity)
		r.Get("/v1/me/payouts", userHandler.Payouts)

		r.Get("/v1/users/{userID}", userHandler.Profile)

		r.Post("/v1/friends", friendHandler.Add)
		r.Get("/v1/friends", friendHandler.List)
		r.Get("/v1/friends/requests", friendHandler.Requests)
		r.Get("/v1/friends/recommended", friendHandler.Recommended)
		r.Post("/v1/friends/requests/{senderID}", friendHandler.Respond)

		r.Get("/v1/companies", companyHandler.List)
		r.Get("/v1/companies/{companyID}", companyHandler.Get)
		r.Get("/v1/companies/{companyID}/equity", companyHandler.Equity)
		r.Get("/v1/companies/{companyID}/investments", companyHandler.Investments)
		r.Get("/v1/companies/{companyID}/payouts", companyHandler.Payouts)

		// Ledger-mutating routes carry the Idempotency-Key contract.
		r.Group(func(r chi.Router) {
			r.Use(middleware.IdempotencyMiddleware(api.idemStore, api.logger))
			r.Post("/v1/transfers", transferHandler.Send)
			r.Post("/v1/companies", companyHandler.Create)
			r.Post("/v1/companies/{companyID}/invest", companyHandler.Invest)
		})

		// Admin routes
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireRole(middleware.RoleAdmin))
			r.Get("/v1/admin/users", adminHandler.ListUsers)
			r.Post("/v1/admin/users/{userID}/ban", adminHandler.SetBanned)
			r.Post("/v1/admin/users/{userID}/role", adminHandler.SetAdmin)

			r.Group(func(r chi.Router) {
				r.Use(middleware.IdempotencyMiddleware(api.idemStore, api.logger))
				r.Post("/v1/admin/users/{userID}/balance", adminHandler.AdjustBalance)
				r.Post("/v1/companies/{companyID}/distribute", companyHandler.Distribute)
				r.Delete("/v1/companies/{companyID}", companyHandler.Delete)
			})
		})
	})

	return r
}
