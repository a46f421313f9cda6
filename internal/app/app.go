package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/uptrace/opentelemetry-go-extra/otelsql"
	"github.com/uptrace/opentelemetry-go-extra/otelsqlx"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"

	_ "github.com/lib/pq"

	"github.com/eormeno12/mipichanga-matches-api/internal/config"
	"github.com/eormeno12/mipichanga-matches-api/internal/domain/match"
	"github.com/eormeno12/mipichanga-matches-api/internal/infrastructure/account/portero"
	cacherepo "github.com/eormeno12/mipichanga-matches-api/internal/infrastructure/repository/cache"
	"github.com/eormeno12/mipichanga-matches-api/internal/infrastructure/repository/memory"
	"github.com/eormeno12/mipichanga-matches-api/internal/infrastructure/repository/postgres"
	"github.com/eormeno12/mipichanga-matches-api/internal/interfaces/httpapi"
	basecache "github.com/eormeno12/mipichanga-matches-api/internal/platform/cache"
	idgen "github.com/eormeno12/mipichanga-matches-api/internal/platform/id"
	"github.com/eormeno12/mipichanga-matches-api/internal/platform/logging"
	"github.com/eormeno12/mipichanga-matches-api/internal/platform/resilience"
	"github.com/eormeno12/mipichanga-matches-api/internal/usecase"
)

// App wires repositories, services and the HTTP server together.
type App struct {
	Server    *http.Server
	db        *sqlx.DB
	retention *usecase.RetentionService
	logger    *logging.Logger

	retentionCancel context.CancelFunc
}

func New(cfg config.Config, logger *logging.Logger) (*App, error) {
	if logger == nil {
		logger = logging.Default()
	}

	matchRepo, db, err := buildMatchRepository(cfg, logger)
	if err != nil {
		return nil, err
	}

	if cfg.CacheEnabled {
		matchRepo = cacherepo.NewMatchRepository(matchRepo, basecache.NewStore(cfg.CacheTTL))
	}

	matchSvc := usecase.NewMatchService(matchRepo, idgen.NewObjectIDGenerator(), logger)

	var retention *usecase.RetentionService
	if cfg.RetentionEnabled {
		retention = usecase.NewRetentionService(matchRepo, usecase.RetentionConfig{
			MaxAge:     cfg.RetentionMaxAge,
			Interval:   cfg.RetentionInterval,
			MaxWorkers: cfg.RetentionMaxWorkers,
		}, logger)
	}

	porteroClient := portero.NewClient(portero.ClientConfig{
		BaseURL:        cfg.PorteroBaseURL,
		IntrospectPath: cfg.PorteroIntrospectPath,
		Timeout:        cfg.PorteroTimeout,
		PrincipalTTL:   cfg.PorteroPrincipalTTL,
		CircuitBreaker: resilience.CircuitBreakerConfig{
			Enabled:          cfg.PorteroCircuitEnabled,
			FailureThreshold: cfg.PorteroCircuitFailureCount,
			OpenTimeout:      cfg.PorteroCircuitOpenTimeout,
			HalfOpenMaxReq:   cfg.PorteroCircuitHalfOpenMaxReq,
		},
	}, nil, logger)

	handler := httpapi.NewHandler(matchSvc, logger)
	router := httpapi.NewRouter(handler, porteroClient, logger, cfg.SwaggerEnabled, cfg.CORSAllowedOrigins)

	server := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	if server.Addr == "" {
		return nil, fmt.Errorf("http server addr cannot be empty")
	}

	return &App{
		Server:    server,
		db:        db,
		retention: retention,
		logger:    logger,
	}, nil
}

// Start launches the retention sweeper. The HTTP server is started by the
// caller so it owns the listen error.
func (a *App) Start() {
	if a.retention == nil {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	a.retentionCancel = cancel
	go a.retention.Run(ctx)
}

func (a *App) Shutdown(ctx context.Context) error {
	if a.retentionCancel != nil {
		a.retentionCancel()
	}

	if err := a.Server.Shutdown(ctx); err != nil {
		return err
	}

	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.logger.Warn("close db", "error", err)
		}
	}

	return nil
}

func buildMatchRepository(cfg config.Config, logger *logging.Logger) (match.Repository, *sqlx.DB, error) {
	if cfg.DBURL == "" {
		logger.Info("db url not set, using in-memory repository with seed data")
		repo := memory.NewMatchRepository()
		repo.Seed()
		return repo, nil, nil
	}

	dbURL := normalizeDBURL(cfg.DBURL, cfg.DBDisablePreparedBinary)

	db, err := otelsqlx.Open("postgres", dbURL,
		otelsql.WithAttributes(semconv.DBSystemPostgreSQL),
		otelsql.WithDBName(dbNameFromURL(cfg.DBURL)),
		otelsql.WithQueryFormatter(formatDBQueryForTrace),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("open db: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)

	pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("ping db: %w", err)
	}

	logger.Info("db connected", "db_name", dbNameFromURL(cfg.DBURL))

	return postgres.NewMatchRepository(db), db, nil
}
