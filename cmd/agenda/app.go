package main

import (
	"context"
	"fmt"
	"net/http"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/clinicdesk/agenda/internal/config"
	"github.com/clinicdesk/agenda/internal/domain/backup"
	"github.com/clinicdesk/agenda/internal/domain/documents"
	"github.com/clinicdesk/agenda/internal/domain/patient"
	"github.com/clinicdesk/agenda/internal/domain/profile"
	"github.com/clinicdesk/agenda/internal/domain/scheduling"
	"github.com/clinicdesk/agenda/internal/domain/search"
	"github.com/clinicdesk/agenda/internal/domain/workbench"
	"github.com/clinicdesk/agenda/internal/platform/blobstore"
	"github.com/clinicdesk/agenda/internal/platform/db"
	"github.com/clinicdesk/agenda/internal/platform/middleware"
	"github.com/clinicdesk/agenda/internal/platform/telemetry"
	"github.com/clinicdesk/agenda/migrations"
)

const version = "0.1.0"

// stores holds the repositories of the selected record store.
type stores struct {
	settings     profile.SettingsRepository
	patients     patient.Repository
	appointments scheduling.Repository
	documents    documents.Repository
	pinger       db.Pinger
	close        func()
}

func openStores(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (*stores, error) {
	if cfg.UsesPostgres() {
		pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBSchema, cfg.DBMaxConns, cfg.DBMinConns)
		if err != nil {
			return nil, err
		}
		if cfg.MigrationsAuto {
			n, err := db.NewMigrator(pool, migrations.FS).Up(ctx, cfg.DBSchema)
			if err != nil {
				pool.Close()
				return nil, fmt.Errorf("migrate: %w", err)
			}
			logger.Info().Int("applied", n).Str("schema", cfg.DBSchema).Msg("migrations up to date")
		}
		logger.Info().Str("driver", config.DriverPostgres).Msg("connected to record store")
		return postgresStores(pool), nil
	}

	gdb, err := db.OpenSQLite(cfg.SQLitePath, cfg.LogLevel == "debug",
		&profile.Setting{}, &patient.Patient{}, &scheduling.Appointment{}, &documents.Document{})
	if err != nil {
		return nil, err
	}
	logger.Info().Str("driver", config.DriverSQLite).Str("path", cfg.SQLitePath).Msg("opened record store")
	return sqliteStores(gdb)
}

func postgresStores(pool *pgxpool.Pool) *stores {
	return &stores{
		settings:     profile.NewSettingsRepoPG(pool),
		patients:     patient.NewRepoPG(pool),
		appointments: scheduling.NewRepoPG(pool),
		documents:    documents.NewRepoPG(pool),
		pinger:       pool,
		close:        pool.Close,
	}
}

func sqliteStores(gdb *gorm.DB) (*stores, error) {
	sqlDB, err := gdb.DB()
	if err != nil {
		return nil, fmt.Errorf("sqlite handle: %w", err)
	}
	return &stores{
		settings:     profile.NewSettingsRepoSQLite(gdb),
		patients:     patient.NewRepoSQLite(gdb),
		appointments: scheduling.NewRepoSQLite(gdb),
		documents:    documents.NewRepoSQLite(gdb),
		pinger:       db.SQLPinger{DB: sqlDB},
		close:        func() { sqlDB.Close() },
	}, nil
}

// services is the wired application. Handlers and CLI commands share it.
type services struct {
	profile    *profile.Service
	patients   *patient.Service
	scheduling *scheduling.Service
	documents  *documents.Service
	backup     *backup.Service
	search     *search.Service
	workbench  *workbench.Service
	metrics    *telemetry.Provider
}

// newServices wires the services over st. metrics may be nil.
func newServices(st *stores, logger zerolog.Logger, metrics *telemetry.Provider) *services {
	profileSvc := profile.NewService(st.settings)
	patientSvc := patient.NewService(st.patients)
	schedulingSvc := scheduling.NewService(st.appointments, documents.NewDraftPurger(st.documents))
	docSvc := documents.NewService(st.documents, schedulingSvc, profileSvc)
	if metrics != nil {
		docSvc.SetRecorder(metrics)
	}

	return &services{
		profile:    profileSvc,
		patients:   patientSvc,
		scheduling: schedulingSvc,
		documents:  docSvc,
		backup:     backup.NewService(profileSvc, st.patients, st.appointments, st.documents, logger),
		search:     search.NewService(schedulingSvc, docSvc),
		workbench:  workbench.NewService(schedulingSvc, docSvc),
		metrics:    metrics,
	}
}

// newServer builds the echo instance with the middleware chain and every
// route mounted under /api/v1.
func newServer(cfg *config.Config, st *stores, svc *services, logger zerolog.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recovery(logger))
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger))
	if svc.metrics != nil {
		e.Use(svc.metrics.MetricsMiddleware())
	}
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins:  cfg.CORSOrigins,
		AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
		AllowHeaders:  []string{"Content-Type", middleware.RequestIDHeader},
		ExposeHeaders: []string{echo.HeaderContentDisposition, middleware.RequestIDHeader},
	}))
	e.Use(middleware.SecurityHeaders())
	e.Use(middleware.BodyLimit(cfg.BodyLimit, cfg.BackupLimit))
	e.Use(middleware.RequestTimeout(cfg.RequestTimeout))

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"status":  "ok",
			"version": version,
		})
	})
	e.GET("/health/db", db.HealthHandler(st.pinger, cfg.StoreDriver))
	if svc.metrics != nil {
		e.GET("/metrics", svc.metrics.Handler())
	}

	exports := blobstore.NewDirStore(cfg.PDFDir)

	apiV1 := e.Group("/api/v1")
	profile.NewHandler(svc.profile).RegisterRoutes(apiV1)
	patient.NewHandler(svc.patients).RegisterRoutes(apiV1)
	scheduling.NewHandler(svc.scheduling).RegisterRoutes(apiV1)
	documents.NewHandler(svc.documents).WithExporter(exports).RegisterRoutes(apiV1)
	blobstore.NewBlobHandler(exports).RegisterRoutes(apiV1)
	backup.NewHandler(svc.backup).RegisterRoutes(apiV1)
	search.NewHandler(svc.search).RegisterRoutes(apiV1)
	workbench.NewHandler(svc.workbench).RegisterRoutes(apiV1)

	return e
}
