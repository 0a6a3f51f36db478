package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/ehr/patientflow/internal/config"
	"github.com/ehr/patientflow/internal/domain/emergency"
	"github.com/ehr/patientflow/internal/domain/manchester"
	"github.com/ehr/patientflow/internal/domain/sla"
	"github.com/ehr/patientflow/internal/platform/auth"
	"github.com/ehr/patientflow/internal/platform/db"
	"github.com/ehr/patientflow/internal/platform/middleware"
	"github.com/ehr/patientflow/internal/platform/reporting"
	"github.com/ehr/patientflow/internal/platform/websocket"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "patientflow-server",
		Short: "Emergency department patient flow API",
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(flowsCmd())
	rootCmd.AddCommand(suggestCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the patient flow API server",
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

	// migrate up
	upCmd := &cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			migrator, closeFn, err := openMigrator(ctx)
			if err != nil {
				return err
			}
			defer closeFn()

			count, err := migrator.Up(ctx)
			if err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Applied %d migration(s) successfully.\n", count)
			return nil
		},
	}
	cmd.AddCommand(upCmd)

	// migrate status
	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show migration status",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			migrator, closeFn, err := openMigrator(ctx)
			if err != nil {
				return err
			}
			defer closeFn()

			statuses, err := migrator.Status(ctx)
			if err != nil {
				return fmt.Errorf("failed to get migration status: %w", err)
			}
			printMigrationStatus(cmd.OutOrStdout(), statuses)
			return nil
		},
	}
	cmd.AddCommand(statusCmd)

	return cmd
}

func openMigrator(ctx context.Context) (*db.Migrator, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	if !cfg.UsesDatabase() {
		return nil, nil, fmt.Errorf("DATABASE_URL is required for migrations")
	}
	pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
	if err != nil {
		return nil, nil, err
	}
	return db.NewMigrator(pool, db.Migrations(), cfg.DBSchema), pool.Close, nil
}

func printMigrationStatus(w io.Writer, statuses []db.MigrationStatus) {
	fmt.Fprintf(w, "%-10s %-40s %-10s %s\n", "VERSION", "NAME", "STATUS", "APPLIED AT")
	fmt.Fprintln(w, "---------- ---------------------------------------- ---------- --------------------")
	for _, s := range statuses {
		status := "pending"
		appliedAt := ""
		if s.Applied {
			status = "applied"
			if s.AppliedAt != nil {
				appliedAt = s.AppliedAt.Format("2006-01-02 15:04:05")
			}
		}
		fmt.Fprintf(w, "%-10d %-40s %-10s %s\n", s.Version, s.Name, status, appliedAt)
	}
}

func flowsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "flows",
		Short: "List the Manchester clinical flow catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			return printFlows(cmd.OutOrStdout(), manchester.Catalog())
		},
	}
}

func suggestCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "suggest <complaints> [symptoms]",
		Short: "Rank clinical flows for a free-text complaint",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			symptoms := ""
			if len(args) > 1 {
				symptoms = args[1]
			}
			flows := manchester.SuggestFlows(args[0], symptoms)
			if len(flows) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "no matching flows")
				return nil
			}
			return printFlows(cmd.OutOrStdout(), flows)
		},
	}
}

func printFlows(w io.Writer, flows []manchester.ClinicalFlow) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tDEFAULT\tRANGE\tSPECIALTY")
	for _, f := range flows {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s-%s\t%s\n",
			f.ID, f.Name, f.DefaultPriority, f.MinPriority, f.MaxPriority, manchester.SpecialtyLabel(f.Specialty))
	}
	return tw.Flush()
}

func newLogger(cfg *config.Config) zerolog.Logger {
	var logger zerolog.Logger
	if cfg.IsDev() {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	} else {
		logger = zerolog.New(os.Stdout).With().Timestamp().Logger()
	}
	return logger.Level(cfg.Level())
}

func runServer() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logger := newLogger(cfg)
	if err := cfg.Validate(); err != nil {
		logger.Fatal().Err(err).Msg("invalid configuration")
	}
	if cfg.IsDev() {
		logger.Warn().Msg("ENV=development: requests without a bearer token get admin access")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var pool *pgxpool.Pool
	var repo emergency.PatientRepository
	if cfg.UsesDatabase() {
		pool, err = db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to connect to database")
		}
		defer pool.Close()
		count, err := db.NewMigrator(pool, db.Migrations(), cfg.DBSchema).Up(ctx)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to apply migrations")
		}
		logger.Info().Int("applied", count).Msg("connected to database")
		repo = emergency.NewPatientRepoPG(pool)
	} else {
		logger.Info().Msg("DATABASE_URL not set, using in-memory storage")
		repo = emergency.NewMemoryRepo()
	}

	srv, err := newServer(cfg, logger, repo, pool)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to build server")
	}
	if err := srv.svc.RestoreTicketCounters(ctx); err != nil {
		logger.Fatal().Err(err).Msg("failed to restore ticket counters")
	}

	go srv.monitor.Start(ctx)

	go func() {
		addr := ":" + cfg.Port
		logger.Info().Str("addr", addr).Msg("starting server")
		if err := srv.echo.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	<-ctx.Done()

	logger.Info().Msg("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.echo.Shutdown(shutdownCtx); err != nil {
		logger.Fatal().Err(err).Msg("server shutdown failed")
	}
	logger.Info().Msg("server stopped")
	return nil
}

type server struct {
	echo    *echo.Echo
	svc     *emergency.Service
	hub     *websocket.Hub
	monitor *sla.Monitor
}

// newServer wires the HTTP surface over repo. pool may be nil when patients
// are kept in memory.
func newServer(cfg *config.Config, logger zerolog.Logger, repo emergency.PatientRepository, pool *pgxpool.Pool) (*server, error) {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recovery(logger))
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger))
	e.Use(middleware.SecurityHeaders())
	e.Use(middleware.RequestTimeout(cfg.RequestTimeout))
	e.Use(middleware.BodyLimit(cfg.BodyLimit))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost},
		AllowHeaders: []string{"Authorization", "Content-Type", middleware.RequestIDHeader},
	}))

	e.GET("/health", db.HealthHandler(pool))

	apiV1 := e.Group("/api/v1")
	if cfg.IsDev() {
		apiV1.Use(auth.DevAuthMiddleware())
	}
	if cfg.AuthSigningKey != "" {
		key, err := cfg.SigningKey()
		if err != nil {
			return nil, err
		}
		jwtMW := auth.JWTMiddleware(auth.JWTConfig{
			Issuer:     cfg.AuthIssuer,
			Audience:   cfg.AuthAudience,
			SigningKey: key,
		})
		if cfg.IsDev() {
			// Dev identities are only injected for requests without a token.
			jwtMW = onlyWithBearer(jwtMW)
		}
		apiV1.Use(jwtMW)
	}

	hub := websocket.NewHub(logger)

	matcher, err := manchester.NewMatcher(cfg.SuggestCacheSize, logger)
	if err != nil {
		return nil, fmt.Errorf("create flow matcher: %w", err)
	}

	svc := emergency.NewService(repo, logger)
	svc.SetPublisher(hub)

	eval := sla.NewEvaluator(logger)
	monitor := sla.NewMonitor(repo, eval, hub, cfg.SLAMonitorInterval, logger)

	var ticketMW []echo.MiddlewareFunc
	if cfg.TicketRatePerMinute > 0 {
		burst := cfg.TicketRateBurst
		if burst < 1 {
			burst = 1
		}
		limiter, err := middleware.RateLimit(middleware.RateLimitConfig{
			RequestsPerMinute: float64(cfg.TicketRatePerMinute),
			BurstSize:         burst,
		})
		if err != nil {
			return nil, fmt.Errorf("create ticket rate limiter: %w", err)
		}
		ticketMW = append(ticketMW, limiter)
	}

	manchester.NewHandler(matcher).RegisterRoutes(apiV1)
	emergency.NewHandler(svc).RegisterRoutes(apiV1, ticketMW...)
	sla.NewHandler(repo, eval).RegisterRoutes(apiV1)
	reporting.NewHandler(reporting.NewReporter(repo, eval)).RegisterRoutes(apiV1)
	websocket.NewHandler(hub, cfg.CORSOrigins).RegisterRoutes(apiV1)

	return &server{echo: e, svc: svc, hub: hub, monitor: monitor}, nil
}

func onlyWithBearer(mw echo.MiddlewareFunc) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		withJWT := mw(next)
		return func(c echo.Context) error {
			if strings.TrimSpace(c.Request().Header.Get("Authorization")) == "" {
				return next(c)
			}
			return withJWT(c)
		}
	}
}
