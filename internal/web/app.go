// Package web assembles the web front-end: it opens the configured record
// store and credential file, builds the HTTP server and runs it until a
// termination signal arrives.
package web

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/haclabs/haccare/internal/auth"
	"github.com/haclabs/haccare/internal/logging"
	"github.com/haclabs/haccare/internal/records"
	"github.com/haclabs/haccare/internal/services"
	"github.com/haclabs/haccare/internal/web/config"
	"github.com/haclabs/haccare/internal/web/server"
	"github.com/rs/zerolog"
)

const shutdownTimeout = 10 * time.Second

type App struct {
	config *config.Config
	logger *logging.ZerologLogger
	store  records.Store
	server *server.Server
}

// NewLogger returns the zerolog logger the web front-end writes with:
// console output in dev mode, JSON lines otherwise.
func NewLogger(w io.Writer, dev bool) zerolog.Logger {
	if dev {
		return zerolog.New(zerolog.ConsoleWriter{Out: w}).With().Timestamp().Logger()
	}
	return zerolog.New(w).With().Timestamp().Logger()
}

// OpenStore opens the record backend selected by c.
func OpenStore(ctx context.Context, c *config.Config) (records.Store, error) {
	switch c.Storage {
	case config.StorageSQLite:
		return records.OpenSQLite(ctx, c.DatabaseDSN)
	case config.StorageJSON:
		return records.NewFileStore(c.RecordsDir)
	default:
		return nil, fmt.Errorf("unknown storage %q", c.Storage)
	}
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger := logging.NewZerologLogger(NewLogger(os.Stdout, c.Dev))

	if c.SecretGenerated {
		logger.Warn(ctx, "no session secret configured, using a random one; sessions end on restart")
	}

	store, err := OpenStore(ctx, c)
	if err != nil {
		return nil, fmt.Errorf("record store init error: %w", err)
	}

	creds, err := auth.LoadCredentials(ctx, c.UsersFile, logger.With("component", "auth"))
	if err != nil {
		closeStore(store)
		return nil, fmt.Errorf("credentials init error: %w", err)
	}

	patients := services.NewPatientService(store, services.WithLogger(logger.With("component", "patients")))
	srv, err := server.New(patients, creds, server.Options{
		SecretKey:  []byte(c.SecretKey),
		SessionTTL: c.SessionTTL,
		Logger:     logger.Zerolog(),
	})
	if err != nil {
		closeStore(store)
		return nil, err
	}

	return &App{config: c, logger: logger, store: store, server: srv}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

// Run serves until ctx is cancelled or a signal arrives, then shuts the
// server down and closes the store.
func (app *App) Run(ctx context.Context) error {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "starting web front-end", "storage", app.config.Storage)
	app.initSignalHandler(cancelFunc)

	var (
		wg       sync.WaitGroup
		serveErr error
	)
	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := app.server.Start(app.config.Addr); err != nil {
			serveErr = err
			cancelFunc()
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	err := app.server.Shutdown(shutdownCtx)
	wg.Wait()
	closeStore(app.store)

	app.logger.Info(ctx, "web front-end stopped")
	return errors.Join(serveErr, err)
}

func closeStore(s records.Store) {
	if c, ok := s.(io.Closer); ok {
		_ = c.Close()
	}
}
