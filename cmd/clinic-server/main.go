package main

import (
	"context"
	crypto_rand "crypto/rand"
	"encoding/hex"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/clinicore/clinicore/internal/config"
	"github.com/clinicore/clinicore/internal/domain/admin"
	"github.com/clinicore/clinicore/internal/domain/auditlog"
	"github.com/clinicore/clinicore/internal/domain/dashboard"
	"github.com/clinicore/clinicore/internal/domain/documents"
	"github.com/clinicore/clinicore/internal/domain/evolutions"
	"github.com/clinicore/clinicore/internal/domain/identity"
	"github.com/clinicore/clinicore/internal/domain/patients"
	"github.com/clinicore/clinicore/internal/domain/reports"
	"github.com/clinicore/clinicore/internal/domain/scheduling"
	"github.com/clinicore/clinicore/internal/platform/audit"
	"github.com/clinicore/clinicore/internal/platform/auth"
	"github.com/clinicore/clinicore/internal/platform/db"
	"github.com/clinicore/clinicore/internal/platform/middleware"
	"github.com/clinicore/clinicore/internal/platform/rbac"
	"github.com/clinicore/clinicore/internal/platform/websocket"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "clinic-server",
		Short: "Clinic management API server",
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}
}

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
	}

	upCmd := &cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("dir")

			cfg, err := config.Load()
			if err != nil {
				return err
			}

			ctx := context.Background()
			pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
			if err != nil {
				return err
			}
			defer pool.Close()

			migrator := db.NewMigrator(pool, dir)
			count, err := migrator.Up(ctx)
			if err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}

			fmt.Printf("Applied %d migration(s) successfully.\n", count)
			return nil
		},
	}
	upCmd.Flags().String("dir", "./migrations", "Path to migrations directory")
	cmd.AddCommand(upCmd)

	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show migration status",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("dir")

			cfg, err := config.Load()
			if err != nil {
				return err
			}

			ctx := context.Background()
			pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
			if err != nil {
				return err
			}
			defer pool.Close()

			migrator := db.NewMigrator(pool, dir)
			statuses, err := migrator.Status(ctx)
			if err != nil {
				return fmt.Errorf("failed to get migration status: %w", err)
			}

			fmt.Printf("%-10s %-40s %-10s %s\n", "VERSION", "NAME", "STATUS", "APPLIED AT")
			fmt.Println("---------- ---------------------------------------- ---------- --------------------")
			for _, s := range statuses {
				status := "pending"
				appliedAt := ""
				if s.Applied {
					status = "applied"
					if s.AppliedAt != nil {
						appliedAt = s.AppliedAt.Format("2006-01-02 15:04:05")
					}
				}
				fmt.Printf("%-10d %-40s %-10s %s\n", s.Version, s.Name, status, appliedAt)
			}
			return nil
		},
	}
	statusCmd.Flags().String("dir", "./migrations", "Path to migrations directory")
	cmd.AddCommand(statusCmd)

	cmd.AddCommand(&cobra.Command{
		Use:   "down",
		Short: "Rollback last migration (not supported)",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Println("WARNING: migrate down is destructive and not supported by the built-in runner.")
			return nil
		},
	})

	return cmd
}

func runServer() error {
	// Logger
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	if os.Getenv("ENV") == "development" {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	}

	// Config
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}
	if err := cfg.Validate(); err != nil {
		logger.Fatal().Err(err).Msg("invalid configuration")
	}

	jwtSecret := []byte(cfg.JWTSecret)
	if len(jwtSecret) == 0 {
		// Development convenience: sessions die with the process.
		raw := make([]byte, 32)
		if _, err := crypto_rand.Read(raw); err != nil {
			logger.Fatal().Err(err).Msg("failed to generate session secret")
		}
		jwtSecret = []byte(hex.EncodeToString(raw))
		logger.Warn().Msg("JWT_SECRET not set, using ephemeral secret")
	}

	// Database
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pool.Close()
	logger.Info().Msg("connected to database")

	// Audit trail worker
	recorder := audit.NewRecorder(audit.NewStorePG(pool), logger, cfg.AuditQueueSize)
	go recorder.Start(ctx)

	// Permission guard with ownership resolution
	resolver := rbac.NewResolver(rbac.NewOwnershipStorePG(pool), logger)
	guard := rbac.NewGuard(rbac.DefaultTable(), recorder, resolver, logger)

	// Websocket hub
	hub := websocket.NewHub()

	// Echo server
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// Global middleware
	e.Use(middleware.Recovery(logger))
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger))
	e.Use(middleware.SecurityHeaders())
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Request-ID"},
		AllowCredentials: true,
	}))
	e.Use(auth.Middleware(jwtSecret))

	// Health check
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"status":  "ok",
			"version": "0.1.0",
		})
	})

	// API group
	api := e.Group("/api")
	api.Use(middleware.BodyLimit(cfg.BodyLimit))
	api.Use(middleware.RequestTimeout(30 * time.Second))

	rateLimitCfg := middleware.RateLimitConfig{
		RequestsPerSecond: cfg.RateLimitRPS,
		BurstSize:         cfg.RateLimitBurst,
	}
	if rateLimitCfg.RequestsPerSecond <= 0 {
		rateLimitCfg = middleware.DefaultRateLimitConfig()
	}
	api.Use(middleware.RateLimit(rateLimitCfg))

	// Identity
	userRepo := identity.NewUserRepoPG(pool)
	professionalRepo := identity.NewProfessionalRepoPG(pool)
	issuer := auth.NewTokenIssuer(jwtSecret, time.Duration(cfg.SessionTTL)*time.Hour)
	identitySvc := identity.NewService(userRepo, professionalRepo, issuer, identity.ScryptHasher{}, recorder)
	identity.NewHandler(identitySvc, guard).RegisterRoutes(api)

	// Administration: facilities, rooms, insurance plans
	adminSvc := admin.NewService(admin.NewFacilityRepoPG(pool), admin.NewRoomRepoPG(pool), admin.NewInsurancePlanRepoPG(pool))
	admin.NewHandler(adminSvc, guard).RegisterRoutes(api)

	// Patients
	patientSvc := patients.NewService(patients.NewRepoPG(pool), resolver)
	patients.NewHandler(patientSvc, guard).RegisterRoutes(api)

	// Scheduling
	schedulingSvc := scheduling.NewService(scheduling.NewRepoPG(pool), hub)
	scheduling.NewHandler(schedulingSvc, guard).RegisterRoutes(api)

	// Evolutions
	evolutionRepo := evolutions.NewRepoPG(pool)
	evolutionSvc := evolutions.NewService(evolutionRepo, evolutionRepo, schedulingSvc, hub, logger)
	evolutions.NewHandler(evolutionSvc, guard).RegisterRoutes(api)

	// Documents
	documentSvc := documents.NewService(documents.NewRepoPG(pool), hub)
	documents.NewHandler(documentSvc, guard).RegisterRoutes(api)

	// Reports
	reportRepo := reports.NewRepoPG(pool)
	reportSvc := reports.NewService(reportRepo, reportRepo)
	reports.NewHandler(reportSvc, guard).RegisterRoutes(api)

	// Audit log query surface
	auditlogSvc := auditlog.NewService(auditlog.NewRepoPG(pool))
	auditlog.NewHandler(auditlogSvc, guard).RegisterRoutes(api)

	// Dashboard
	dashboardSvc := dashboard.NewService(rbac.DefaultTable(), dashboard.NewRepoPG(pool))
	dashboard.NewHandler(dashboardSvc, guard).RegisterRoutes(api)

	// Websocket notifications
	websocket.NewHandler(hub, logger).RegisterRoutes(e.Group(""))

	// Start server
	go func() {
		addr := ":" + cfg.Port
		logger.Info().Str("addr", addr).Str("env", cfg.Env).Msg("server starting")
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server failed")
		}
	}()

	<-ctx.Done()
	logger.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown failed")
	}
	return nil
}
