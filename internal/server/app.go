// Package server initializes and runs the application server. It opens the
// database, applies migrations, wires services, and starts the HTTP server
// with graceful shutdown on OS signals.
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

	"github.com/avelins/cliptube/internal/logging"
	"github.com/avelins/cliptube/internal/server/auth"
	"github.com/avelins/cliptube/internal/server/config"
	"github.com/avelins/cliptube/internal/server/httpapi"
	"github.com/avelins/cliptube/internal/server/repositories/repomanager"
	"github.com/avelins/cliptube/internal/server/services"
)

type App struct {
	config *config.Config
	logger logging.Logger
	db     *sql.DB
	server *httpapi.Server
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {

	slogger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	logger := logging.NewSlogLogger(slogger)

	db, err := sql.Open("pgx", c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		return nil, fmt.Errorf("db migration error: %w", err)
	}

	codec := auth.NewCodec(
		[]byte(c.AccessTokenSecret),
		[]byte(c.RefreshTokenSecret),
		c.AccessTokenValidityDuration,
		c.RefreshTokenValidityDuration,
	)

	us := services.NewUserService(db, rm, codec)
	ms := services.NewMediaService(db, rm, c, logger)
	vs := services.NewVideoService(db, rm, ms)

	srv := httpapi.NewServer(c, logger, us, ms, vs)

	return &App{config: c, logger: logger, db: db, server: srv}, nil
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
	if err := app.server.Run(ctx); err != nil {
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

	if err := app.db.Close(); err != nil {
		app.logger.Error(ctx, err.Error())
	}
}
