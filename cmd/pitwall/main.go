// Package main provides the entry point for the Pitwall motorsport cache service.
package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/yourusername/pitwall/internal/api"
	"github.com/yourusername/pitwall/internal/config"
	"github.com/yourusername/pitwall/internal/database"
	"github.com/yourusername/pitwall/internal/ergast"
	"github.com/yourusername/pitwall/internal/health"
	applogger "github.com/yourusername/pitwall/internal/logger"
	"github.com/yourusername/pitwall/internal/metrics"
	"github.com/yourusername/pitwall/internal/repository"
	"github.com/yourusername/pitwall/internal/scheduler"
	"github.com/yourusername/pitwall/internal/service"
)

var (
	configFile string

	cfg    *config.Config
	appLog *logrus.Logger
	db     *database.DB
	repos  *repository.Repositories
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "config/config.yaml", "Path to configuration file")
	rootCmd.AddCommand(serveCmd, syncScheduleCmd, importResultsCmd)
}

var rootCmd = &cobra.Command{
	Use:   "pitwall",
	Short: "Motorsport data cache service",
	Long:  `Pitwall caches Formula 1 schedules, results and standings from the public Ergast-compatible API and serves them over HTTP.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return setup(cmd.Context())
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if db != nil {
			db.Close()
		}
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the API, health and refresh servers",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd.Context())
	},
}

var syncScheduleCmd = &cobra.Command{
	Use:   "sync-schedule [season]",
	Short: "Import a season's race calendar and exit",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		season, err := seasonArg(args)
		if err != nil {
			return err
		}

		ingestion := buildIngestion()
		written, err := ingestion.ImportSchedule(cmd.Context(), season)
		if err != nil {
			return err
		}

		appLog.WithFields(logrus.Fields{"season": season, "events": written}).Info("Schedule sync complete")
		return nil
	},
}

var importResultsCmd = &cobra.Command{
	Use:   "import-results <season> <round>",
	Short: "Import one round's classified results and exit",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		season, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid season %q", args[0])
		}
		round, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("invalid round %q", args[1])
		}

		ingestion := buildIngestion()
		report, err := ingestion.ImportResults(cmd.Context(), season, round)
		if err != nil {
			return err
		}

		appLog.WithFields(logrus.Fields{
			"race":  report.RaceName,
			"saved": report.Saved,
		}).Info("Result import complete")
		return nil
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatalf("Error: %v", err)
	}
}

func setup(ctx context.Context) error {
	var err error

	cfg, err = config.LoadWithDefaults(configFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if os.Getenv("AWS_SECRETS_ENABLED") == "true" {
		region := os.Getenv("AWS_REGION")
		secretName := os.Getenv("AWS_SECRET_NAME")
		if region == "" || secretName == "" {
			return fmt.Errorf("AWS_REGION and AWS_SECRET_NAME must be set when AWS_SECRETS_ENABLED is true")
		}
		if err := config.LoadSecretsFromAWS(cfg, region, secretName); err != nil {
			return fmt.Errorf("failed to load secrets: %w", err)
		}
	}

	if err := config.Validate(cfg); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	appLog = applogger.NewLogger(cfg.App.LogLevel)
	appLog.WithFields(logrus.Fields{
		"environment": cfg.App.Environment,
		"log_level":   cfg.App.LogLevel,
	}).Info("Pitwall starting")

	db, err = database.NewDB(ctx, &cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	appLog.Info("Database connection established")

	if cfg.Database.EnsureSchema {
		if err := database.EnsureSchema(ctx, db); err != nil {
			return fmt.Errorf("failed to ensure schema: %w", err)
		}
		appLog.Info("Database schema ensured")
	}

	repos, err = repository.NewRepositories(db)
	if err != nil {
		return fmt.Errorf("failed to build repositories: %w", err)
	}

	return nil
}

func buildUpstream() ergast.API {
	httpCfg := ergast.DefaultHTTPClientConfig()
	httpCfg.Timeout = time.Duration(cfg.Upstream.TimeoutSeconds) * time.Second
	httpCfg.MaxRetries = cfg.Upstream.MaxRetries
	httpCfg.RateLimit = cfg.Upstream.RateLimitPerSec
	httpCfg.CircuitBreakerMax = cfg.Upstream.CircuitBreakerMax

	httpClient := ergast.NewRateLimitedHTTPClient(httpCfg, appLog)
	return ergast.NewClient(httpClient, cfg.Upstream.BaseURL, appLog)
}

func buildIngestion() *service.IngestionService {
	resolver := service.NewEntityResolver(
		repos.Venue,
		repos.Driver,
		repos.Team,
		time.Duration(cfg.Ingestion.ResolverCacheTTLMin)*time.Minute,
		appLog,
	)
	return service.NewIngestionService(buildUpstream(), resolver, repos.Event, repos.Result, repos.Standings, appLog)
}

func runServe(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	ingestion := buildIngestion()
	oracle := service.NewFreshnessOracle(repos.Event, repos.Standings, cfg.Ingestion.MinGridSize)
	reader := service.NewReadService(ingestion, oracle, repos.Event, repos.Result, repos.Standings, appLog)

	healthServer := health.NewServer(cfg.App.Name, cfg.Server.HealthPort, db, appLog)
	if err := healthServer.Start(ctx); err != nil {
		return fmt.Errorf("failed to start health server: %w", err)
	}

	apiServer := api.NewServer(reader, ingestion, cfg.Server.Port, appLog)
	if err := apiServer.Start(ctx); err != nil {
		return fmt.Errorf("failed to start API server: %w", err)
	}

	var metricsServer *http.Server
	if cfg.Metrics.Enabled {
		mux := http.NewServeMux()
		mux.Handle(cfg.Metrics.Path, metrics.Handler())
		metricsServer = &http.Server{
			Addr:    fmt.Sprintf(":%d", cfg.Metrics.Port),
			Handler: mux,
		}
		go func() {
			appLog.WithField("port", cfg.Metrics.Port).Info("Metrics server starting")
			if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				appLog.WithError(err).Error("Metrics server error")
			}
		}()
	}

	var refresh *scheduler.Scheduler
	if cfg.Ingestion.RefreshCron != "" {
		refresh = scheduler.NewScheduler(ingestion, cfg.Ingestion.DefaultSeason, appLog)
		if err := refresh.ScheduleRefresh(cfg.Ingestion.RefreshCron); err != nil {
			return fmt.Errorf("failed to schedule refresh: %w", err)
		}
		if err := refresh.Start(); err != nil {
			return fmt.Errorf("failed to start scheduler: %w", err)
		}
	}

	healthServer.SetReady(true)
	appLog.WithFields(logrus.Fields{
		"api_port":    cfg.Server.Port,
		"health_port": cfg.Server.HealthPort,
	}).Info("Pitwall ready")

	<-ctx.Done()

	appLog.Info("Shutdown signal received")
	healthServer.SetReady(false)

	if refresh != nil {
		refresh.Stop()
	}
	if err := apiServer.Shutdown(); err != nil {
		appLog.WithError(err).Error("API server shutdown error")
	}
	if metricsServer != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := metricsServer.Shutdown(shutdownCtx); err != nil {
			appLog.WithError(err).Error("Metrics server shutdown error")
		}
		cancel()
	}
	if err := healthServer.Shutdown(); err != nil {
		appLog.WithError(err).Error("Health server shutdown error")
	}

	appLog.Info("Pitwall stopped")
	return nil
}

func seasonArg(args []string) (int, error) {
	if len(args) == 0 {
		return cfg.Ingestion.DefaultSeason, nil
	}
	season, err := strconv.Atoi(args[0])
	if err != nil {
		return 0, fmt.Errorf("invalid season %q", args[0])
	}
	return season, nil
}
