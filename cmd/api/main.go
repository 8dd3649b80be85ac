package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/noah-isme/backend-logistik/internal/app"
	"github.com/noah-isme/backend-logistik/internal/audit"
	"github.com/noah-isme/backend-logistik/internal/auth"
	"github.com/noah-isme/backend-logistik/internal/common"
	"github.com/noah-isme/backend-logistik/internal/config"
	"github.com/noah-isme/backend-logistik/internal/health"
	"github.com/noah-isme/backend-logistik/internal/obs"
	"github.com/noah-isme/backend-logistik/internal/ratelimit"
	"github.com/noah-isme/backend-logistik/internal/resi"
	"github.com/noah-isme/backend-logistik/internal/resilience"
	"github.com/noah-isme/backend-logistik/internal/security"
)

const metricsNamespace = "logistik"

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger := obs.NewLoggerWithConfig(obs.LogConfig{
		Format: cfg.LogFormat,
		Level:  cfg.LogLevel,
		File:   cfg.LogFile,
	}).With().Str("env", cfg.AppEnv).Logger()

	obs.MustRegisterDomainMetrics(metricsNamespace, nil)
	resilience.MustRegisterMetrics(metricsNamespace, nil)

	shutdownTracer, err := obs.InitTracer(context.Background(), obs.TracingConfig{
		ServiceName:   "backend-logistik",
		Endpoint:      cfg.OTelEndpoint,
		Exporter:      cfg.OTelExporter,
		SamplingRatio: cfg.OTelSamplingRatio,
		Environment:   cfg.AppEnv,
	})
	if err != nil {
		logger.Error().Err(err).Msg("initialise tracing")
		shutdownTracer = func(context.Context) error { return nil }
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracer(ctx); err != nil {
			logger.Error().Err(err).Msg("shutdown tracer")
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	deps, err := app.New(ctx, cfg, logger, app.Options{
		ApplicationName: "logistik-api",
		Registerer:      prometheus.DefaultRegisterer,
		Namespace:       metricsNamespace,
	})
	cancel()
	if err != nil {
		logger.Fatal().Err(err).Msg("initialise dependencies")
	}
	defer deps.Close()

	authService, err := auth.NewService(auth.Config{
		Secret:      cfg.JWTSecret,
		Issuer:      cfg.JWTIssuer,
		Audience:    cfg.JWTAudience,
		MaxLifetime: cfg.JWTMaxLifetime,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("initialise auth service")
	}
	authMiddleware := auth.Middleware{Service: authService}

	limiter, err := ratelimit.NewRedisLimiter(deps.Redis, "logistik:ratelimit")
	if err != nil {
		logger.Fatal().Err(err).Msg("initialise rate limiter")
	}
	rateLimit := ratelimit.Handler{
		Limiter: limiter,
		Config: ratelimit.Config{
			Key:      ratelimit.PrincipalOrIP,
			Window:   time.Minute,
			Max:      int(cfg.RateLimitPerMinute),
			WriteMax: int(cfg.WriteLimitPerMin),
		},
		OnError: func(err error) { logger.Warn().Err(err).Msg("rate limiter unavailable") },
	}

	idem := common.Idem{R: deps.Redis, TTL: cfg.IdempotencyTTL}
	auditRecorder := audit.HTTPRecorder{
		Service: &deps.Audit,
		OnError: func(err error) { logger.Error().Err(err).Msg("record audit log") },
	}
	auditMutations := auditRecorder.Middleware(audit.HTTPConfig{
		ResourceType:       "return_line",
		ResourceIDParam:    "id",
		ResourceIDFromBody: audit.ReturnLineIDs,
		SkipStatus:         func(status int) bool { return status >= http.StatusInternalServerError },
	})

	resiHandler := resi.NewHandler(resi.HandlerConfig{Service: deps.Resi, Logger: logger})
	auditHandler := audit.Handler{Store: deps.Queries}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(obs.RoutePatternMiddleware)
	r.Use(obs.SpanRouteMiddleware)
	r.Use(obs.HTTPObs{Metrics: obs.NewHTTPMetrics(metricsNamespace, nil, nil)}.Middleware)
	r.Use(obs.RequestLogger{Logger: logger}.Middleware)
	r.Use(security.Headers{HSTS: cfg.IsProduction(), Exempt: []string{"/metrics"}}.Middleware)
	r.Use(security.BodyLimit{Max: cfg.BodyLimitBytes, RequireJSON: true}.Middleware)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins(cfg),
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "Idempotency-Key"},
		ExposedHeaders:   []string{"X-Total-Count", "Idempotent-Replayed"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Handle("/metrics", promhttp.Handler())

	healthHandler := health.Handler{
		Checker:      health.Deps{Pool: deps.DB, Redis: deps.Redis},
		DBTimeout:    500 * time.Millisecond,
		RedisTimeout: 300 * time.Millisecond,
	}
	r.Get("/health/live", healthHandler.Live)
	r.Get("/health/ready", healthHandler.Ready)

	r.Route("/api/v1", func(v chi.Router) {
		v.Use(authMiddleware.RequireAuth)
		v.Use(rateLimit.Middleware)

		v.Route("/resi-vuoti", func(rv chi.Router) {
			resiHandler.Routes(rv, func(next http.Handler) http.Handler {
				return idem.Middleware(auditMutations(next))
			})
		})

		v.With(auth.RequireRole("admin")).Get("/audit-logs", auditHandler.List)
	})

	srv := &http.Server{
		Addr:              cfg.HTTPAddr(),
		Handler:           otelhttp.NewHandler(r, "http.server"),
		ReadHeaderTimeout: 10 * time.Second,
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		logger.Info().Str("addr", srv.Addr).Msg("server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("server exited unexpectedly")
		}
	}()

	<-stop
	health.SetReady(false)
	logger.Info().Msg("shutting down")
	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancelShutdown()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown")
	}
}

func allowedOrigins(cfg *config.Config) []string {
	if len(cfg.CORSAllowedOrigins) == 0 {
		return []string{"*"}
	}
	return cfg.CORSAllowedOrigins
}
