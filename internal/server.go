package internal

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/2beens/formcheck/internal/analysis"
	"github.com/2beens/formcheck/internal/auth"
	"github.com/2beens/formcheck/internal/batch"
	"github.com/2beens/formcheck/internal/config"
	"github.com/2beens/formcheck/internal/db"
	"github.com/2beens/formcheck/internal/exercise"
	formcheckmcp "github.com/2beens/formcheck/internal/mcp"
	"github.com/2beens/formcheck/internal/middleware"
	"github.com/2beens/formcheck/internal/reports"
	"github.com/2beens/formcheck/internal/session"
	"github.com/2beens/formcheck/internal/telemetry/metrics"
	"github.com/2beens/formcheck/internal/telemetry/tracing"

	"github.com/IBM/pgxpoolprometheus"
	"github.com/getsentry/sentry-go"
	"github.com/go-redis/redis/extra/redisotel/v8"
	"github.com/go-redis/redis/v8"
	"github.com/go-redis/redis_rate/v9"
	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gorilla/mux/otelmux"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const (
	localStatsCacheBytes = 32 * 1024 * 1024
	sweepInterval        = time.Minute
)

type Server struct {
	httpServer        *http.Server
	metricsHttpServer *http.Server

	config      *config.Config
	dbPool      *pgxpool.Pool
	redisClient *redis.Client

	registry       *session.Registry
	statsStore     session.StatsStore
	reportsService *reports.Service
	rateLimiter    middleware.RequestRateLimiter
	tokenChecker   *auth.TokenChecker

	// metrics
	metricsManager *metrics.Manager
	promRegistry   *prometheus.Registry
	otelShutdown   func()
}

type NewServerParams struct {
	Config                  *config.Config
	RedisPassword           string
	PostgresPassword        string
	APITokenHash            string
	HoneycombTracingEnabled bool
}

func NewServer(
	ctx context.Context,
	params NewServerParams,
) (*Server, error) {
	cfg := params.Config

	dbPool, err := db.NewDBPool(ctx, db.NewDBPoolParams{
		DBHost:         cfg.PostgresHost,
		DBPort:         cfg.PostgresPort,
		DBName:         cfg.PostgresDBName,
		DBPassword:     params.PostgresPassword,
		TracingEnabled: params.HoneycombTracingEnabled,
	})
	if err != nil {
		return nil, fmt.Errorf("new db pool: %w", err)
	}

	if err := dbPool.Ping(ctx); err != nil {
		log.Warnf("failed to ping db: %s", err)
	}

	pgxpoolCollector := pgxpoolprometheus.NewCollector(
		dbPool,
		map[string]string{"db_name": cfg.PostgresDBName},
	)
	promRegistry := metrics.SetupPrometheus(pgxpoolCollector)
	metricsManager := metrics.NewManager("formcheck", "main", promRegistry)
	metricsManager.GaugeLifeSignal.Set(0)

	// use honeycomb distro to setup OpenTelemetry SDK
	otelShutdown, err := tracing.HoneycombSetup(params.HoneycombTracingEnabled, "formcheck")
	if err != nil {
		return nil, err
	}

	var (
		rdb        *redis.Client
		statsStore session.StatsStore
	)
	if cfg.RedisHost != "" {
		rdb = redis.NewClient(&redis.Options{
			Addr:     net.JoinHostPort(cfg.RedisHost, cfg.RedisPort),
			Password: params.RedisPassword,
			DB:       0, // use default DB
		})
		if params.HoneycombTracingEnabled {
			rdb.AddHook(redisotel.NewTracingHook())
		}

		rdbStatus := rdb.Ping(ctx)
		if err := rdbStatus.Err(); err != nil {
			log.Errorf("--> failed to ping redis: %s", err)
		} else {
			log.Debugf("redis ping: %s", rdbStatus.Val())
		}
		statsStore = session.NewRedisStatsStore(rdb, cfg.SessionTTL)
	} else {
		log.Warnln("redis host not set, session stats kept in process")
		statsStore = session.NewLocalStatsStore(localStatsCacheBytes, cfg.SessionTTL)
	}

	reportsRepo := reports.NewRepo(dbPool)
	if err := reportsRepo.EnsureSchema(ctx); err != nil {
		log.Errorf("ensure reports schema: %s", err)
	}

	runner := batch.NewRunner(
		batch.WithMaxFrames(cfg.MaxBatchFrames),
		batch.WithIssueWindow(cfg.IssueWindow),
		batch.WithDefaultFPS(cfg.BatchFPS),
	)

	registry := session.NewRegistry(cfg.SessionTTL, exercise.WithIssueWindow(cfg.IssueWindow))
	go registry.RunSweeper(ctx, sweepInterval)

	tokenChecker := auth.NewTokenChecker(params.APITokenHash, auth.DefaultCacheTTL)
	if !tokenChecker.Enabled() {
		log.Warnln("API token hash not set, mutating endpoints are NOT protected")
	}

	var rateLimiter middleware.RequestRateLimiter
	if rdb != nil {
		rateLimiter = redis_rate.NewLimiter(rdb)
	}

	return &Server{
		config:      cfg,
		dbPool:      dbPool,
		redisClient: rdb,

		registry:       registry,
		statsStore:     statsStore,
		reportsService: reports.NewService(reportsRepo, runner, metricsManager),
		rateLimiter:    rateLimiter,
		tokenChecker:   tokenChecker,

		// telemetry
		metricsManager: metricsManager,
		promRegistry:   promRegistry,
		otelShutdown:   otelShutdown,
	}, nil
}

func (s *Server) routerSetup() (*mux.Router, error) {
	if s.reportsService == nil || s.registry == nil || s.statsStore == nil {
		return nil, errors.New("server not fully initialized")
	}

	r := mux.NewRouter()
	r.Use(otelmux.Middleware("formcheck-router"))

	analysisHandler := analysis.NewHandler(
		analysis.NewService(s.registry, s.statsStore, s.reportsService, s.metricsManager),
		s.config.MaxBodyBytes,
	)
	analysisHandler.SetupRoutes(r)

	var batchMiddleware []mux.MiddlewareFunc
	if s.rateLimiter != nil {
		batchMiddleware = append(batchMiddleware, middleware.RateLimit(
			s.rateLimiter, "batch-analyze", s.config.BatchRateLimitPerMin, s.metricsManager,
		))
	} else {
		log.Warnln("no rate limiter available, batch endpoint not rate limited")
	}
	analysisHandler.SetupBatchRoute(r, batchMiddleware...)

	reportsHandler := reports.NewHandler(s.reportsService)
	reportsHandler.SetupRoutes(r)

	mcpServer := formcheckmcp.NewServer(s.reportsService)
	r.PathPrefix("/mcp").Handler(formcheckmcp.NewHTTPHandler(mcpServer)).Name("mcp")

	// all the rest - unhandled paths
	r.HandleFunc("/{unknown}", func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}).Methods("GET", "POST", "PUT", "OPTIONS").Name("unknown")

	r.Use(middleware.PanicRecovery(s.metricsManager))
	r.Use(middleware.LogRequest())
	r.Use(middleware.RequestMetrics(s.metricsManager))
	r.Use(middleware.Cors(s.config.AllowedOrigins))
	if s.tokenChecker != nil && s.tokenChecker.Enabled() {
		r.Use(middleware.NewAuthMiddlewareHandler(s.tokenChecker).AuthCheck())
	}
	r.Use(middleware.DrainAndCloseRequest())

	return r, nil
}

func (s *Server) Serve(host string, port int) {
	router, err := s.routerSetup()
	if err != nil {
		log.Fatalf("failed to setup router: %s", err)
	}

	ipAndPort := net.JoinHostPort(host, strconv.Itoa(port))
	s.httpServer = &http.Server{
		Handler: router,
		Addr:    ipAndPort,
		// batch uploads can be large and slow
		WriteTimeout: 5 * time.Minute,
		ReadTimeout:  5 * time.Minute,
		ConnState:    s.connStateMetrics,
	}

	metricsRouter := mux.NewRouter()
	metricsRouter.Handle("/metrics", otelhttp.NewHandler(
		promhttp.HandlerFor(s.promRegistry, promhttp.HandlerOpts{}),
		"metrics",
	))
	metricsAddr := net.JoinHostPort(s.config.PrometheusMetricsHost, s.config.PrometheusMetricsPort)
	s.metricsHttpServer = &http.Server{
		Addr:    metricsAddr,
		Handler: metricsRouter,
	}

	go func() {
		log.Infof(" > server listening on: [%s]", ipAndPort)
		err := s.httpServer.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("main service, listen and serve: %s", err)
		}
	}()

	go func() {
		log.Debugf(" > metrics listening on: [%s]", metricsAddr)
		err := s.metricsHttpServer.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("metrics service, listen and serve: %s", err)
		}
	}()

	s.metricsManager.GaugeLifeSignal.Set(1)
}

func (s *Server) GracefulShutdown() {
	log.Debug("graceful shutdown initiated ...")

	s.metricsManager.GaugeLifeSignal.Set(0)

	maxWaitDuration := time.Second * 15
	ctx, timeoutCancel := context.WithTimeout(context.Background(), maxWaitDuration)
	defer timeoutCancel()

	// stop taking requests first, stores are still needed by in-flight ones
	if s.httpServer != nil {
		if err := s.httpServer.Shutdown(ctx); err != nil {
			log.Error(" >>> failed to gracefully shutdown http server")
		}
		log.Warnln("server shut down")
	}

	if s.otelShutdown != nil {
		s.otelShutdown()
		log.Trace("otel shut down ...")
	}

	if s.redisClient != nil {
		if err := s.redisClient.Close(); err != nil {
			log.Errorf("failed to close redis client conn: %s", err)
		}
	}

	if s.dbPool != nil {
		log.Debugln("closing db pool ...")
		s.dbPool.Close() // blocking operation
		log.Debugln("db pool closed")
	}

	if ok := sentry.Flush(5 * time.Second); ok {
		log.Debugf("sentry flush ok: %t", ok)
	}

	if s.metricsHttpServer != nil {
		if err := s.metricsHttpServer.Shutdown(ctx); err != nil {
			log.Error(" >>> failed to gracefully shutdown metrics http server")
		}
		log.Warnln("metrics server shut down")
	}
}

func (s *Server) connStateMetrics(_ net.Conn, state http.ConnState) {
	switch state {
	case http.StateNew:
		s.metricsManager.GaugeRequests.Add(1)
	case http.StateClosed:
		s.metricsManager.GaugeRequests.Add(-1)
	default:
		// do nothing
	}
}
