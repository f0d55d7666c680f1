package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/mark3labs/mcp-go/server"

	"ContentGate/internal/checks"
	"ContentGate/internal/config"
	"ContentGate/internal/domain"
	"ContentGate/internal/infrastructure/httpprobe"
	"ContentGate/internal/infrastructure/scheduler"
	"ContentGate/internal/infrastructure/storage"
	"ContentGate/internal/infrastructure/telegram"
	"ContentGate/internal/logging"
	"ContentGate/internal/ports"
	"ContentGate/internal/transport/httpapi"
	"ContentGate/internal/transport/mcptools"
	"ContentGate/internal/usecase"
)

// DriverMemory keeps all state in process; useful for demos and tests.
const DriverMemory = "memory"

const shutdownTimeout = 10 * time.Second

// Application wires configs to use cases and lifecycle orchestration.
type Application struct {
	cfg    config.Config
	logger *slog.Logger
	db     *sql.DB

	Verifier  *usecase.Verifier
	Pipeline  *usecase.Pipeline
	Reviews   *usecase.Reviews
	scheduler *usecase.Scheduler
}

// New builds the repositories, adapters and use cases from cfg.
func New(ctx context.Context, cfg config.Config, baseLogger *slog.Logger) (*Application, error) {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level)
	}
	a := &Application{cfg: cfg, logger: baseLogger}

	content, records, err := a.openStorage(ctx)
	if err != nil {
		return nil, err
	}

	var notifier ports.Notifier
	if cfg.Notifications.Telegram.Enabled() {
		notifier = telegram.NewNotifier(cfg.Notifications.Telegram.BotToken, cfg.Notifications.Telegram.ChatID)
	}

	opts := checks.Options{
		ShortPostLimit:   cfg.Checks.Characters.ShortPostLimit,
		LongFormLimit:    cfg.Checks.Characters.LongFormLimit,
		LongFormAdvisory: cfg.Checks.Characters.LongFormAdvisory,
		ToneThreshold:    cfg.Checks.ToneThreshold,
		LinkConcurrency:  cfg.Checks.Links.Concurrency,
		LinkTimeout:      cfg.Checks.Links.Timeout,
	}

	a.Verifier = usecase.NewVerifier(usecase.VerifierDeps{
		Content:  content,
		Records:  records,
		Prober:   httpprobe.NewProber(cfg.Checks.Links.Timeout, cfg.Checks.Links.UserAgent),
		Notifier: notifier,
		Options:  opts,
		Logger:   logging.Component(baseLogger, "verifier"),
	})

	queue := scheduler.NewWorkerQueue(cfg.Scheduler.Workers, cfg.Scheduler.QueueSize, logging.Component(baseLogger, "queue"))

	a.Pipeline = usecase.NewPipeline(usecase.PipelineDeps{
		Content:  content,
		Queue:    queue,
		Verifier: a.Verifier,
		Logger:   logging.Component(baseLogger, "pipeline"),
	})
	a.Reviews = usecase.NewReviews(usecase.ReviewsDeps{
		Content: content,
		Records: records,
		Logger:  logging.Component(baseLogger, "reviews"),
		Weeks:   cfg.Stats.Weeks,
	})
	a.scheduler = usecase.NewScheduler(usecase.SchedulerDeps{
		Pool:       queue,
		Driver:     scheduler.NewSweeper(cfg.Scheduler.SweepInterval),
		Verifier:   a.Verifier,
		Pipeline:   a.Pipeline,
		StaleAfter: cfg.Scheduler.StaleAfter,
		Logger:     logging.Component(baseLogger, "scheduler"),
	})

	return a, nil
}

type repositories interface {
	ports.ContentRepository
	ports.VerificationRepository
}

func (a *Application) openStorage(ctx context.Context) (ports.ContentRepository, ports.VerificationRepository, error) {
	var repo repositories
	switch driver := a.cfg.Database.Driver; driver {
	case DriverMemory:
		repo = storage.NewMemoryRepository()
	case storage.DriverSQLite, storage.DriverPostgres:
		db, err := storage.Open(ctx, driver, a.cfg.Database.DSN)
		if err != nil {
			return nil, nil, fmt.Errorf("open %s storage: %w", driver, err)
		}
		a.db = db
		repo = storage.NewSQLRepository(db, driver)
	default:
		return nil, nil, fmt.Errorf("unknown database driver %q", driver)
	}
	a.logger.Info("storage ready", "driver", a.cfg.Database.Driver)
	return repo, repo, nil
}

// Start launches the verification workers and the stale sweep.
func (a *Application) Start(ctx context.Context) error {
	return a.scheduler.Start(ctx)
}

// Close stops background work and releases the database.
func (a *Application) Close(ctx context.Context) error {
	errs := []error{a.scheduler.Stop(ctx)}
	if a.db != nil {
		errs = append(errs, a.db.Close())
	}
	return errors.Join(errs...)
}

// Router builds the REST handler.
func (a *Application) Router() http.Handler {
	return httpapi.NewRouter(a.Pipeline, a.Reviews, logging.Component(a.logger, "http"))
}

// MCPServer builds the MCP tool server.
func (a *Application) MCPServer() *server.MCPServer {
	return mcptools.NewServer(a.Pipeline, a.Reviews)
}

// Serve runs the REST API and background work until ctx is cancelled.
func (a *Application) Serve(ctx context.Context) error {
	if err := a.Start(ctx); err != nil {
		return fmt.Errorf("start scheduler: %w", err)
	}

	srv := httpapi.NewServer(a.cfg.HTTP.Addr, a.Router())
	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("http server listening", "addr", a.cfg.HTTP.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	var serveErr error
	select {
	case <-ctx.Done():
	case serveErr = <-errCh:
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		a.logger.Warn("http shutdown", "error", err)
	}
	return errors.Join(serveErr, a.Close(shutdownCtx))
}

// ServeMCP runs the MCP server on stdio with background work until the
// client disconnects.
func (a *Application) ServeMCP(ctx context.Context) error {
	if err := a.Start(ctx); err != nil {
		return fmt.Errorf("start scheduler: %w", err)
	}
	serveErr := server.ServeStdio(a.MCPServer())

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return errors.Join(serveErr, a.Close(shutdownCtx))
}

// VerifyNow runs one synchronous verification, for the CLI.
func (a *Application) VerifyNow(ctx context.Context, id string) (domain.VerificationRecord, error) {
	return a.Pipeline.VerifyNow(ctx, id)
}
