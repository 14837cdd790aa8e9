// Package server initializes and runs the application server: database,
// migrations, the encrypted file store, business services, and the HTTP
// endpoint, with graceful shutdown on OS signals.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/lingvera/lingvera/internal/logging"
	"github.com/lingvera/lingvera/internal/server/config"
	"github.com/lingvera/lingvera/internal/server/httpapi"
	"github.com/lingvera/lingvera/internal/server/repositories/repomanager"
	"github.com/lingvera/lingvera/internal/server/services"
	"github.com/lingvera/lingvera/internal/vault"
)

type App struct {
	config         *config.Config
	logger         logging.Logger
	db             *sql.DB
	store          *vault.Store
	userService    *services.UserService
	projectService *services.ProjectService
	stagedService  *services.StagedUploadService
}

func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {

	logger := logging.NewSlogLogger(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	db, err := sql.Open("pgx", cfg.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	m := repomanager.NewPostgresRepositoryManager()
	if err := m.RunMigrations(ctx, db); err != nil {
		return nil, fmt.Errorf("migration error: %w", err)
	}

	store, err := vault.NewStore(cfg.EncryptionSecret, cfg.StorageDir, logger)
	if err != nil {
		return nil, fmt.Errorf("file store init error: %w", err)
	}

	us := services.NewUserService(db, m, cfg)
	ps := services.NewProjectService(db, m, store, cfg, logger)
	ss := services.NewStagedUploadService(cfg, ps, logger)

	return &App{
		config:         cfg,
		logger:         logger,
		db:             db,
		store:          store,
		userService:    us,
		projectService: ps,
		stagedService:  ss,
	}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {
	s := httpapi.NewHTTPServer(
		app.config.EndpointAddr,
		app.logger,
		app.userService,
		app.projectService,
		app.stagedService,
		app.config.SecretKey,
	)

	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()

	wg.Wait()

	app.store.Close()
	if err := app.db.Close(); err != nil {
		app.logger.Error(ctx, "db close error", "error", err.Error())
	}
}
