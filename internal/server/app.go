// Package server initializes and runs the archive gatekeeper server: it
// wires the repositories, the pool store, notification and the HTTP
// intake/review endpoint, and handles graceful shutdown.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/dpetrovs/archivegate/internal/logging"
	"github.com/dpetrovs/archivegate/internal/server/blobstore"
	"github.com/dpetrovs/archivegate/internal/server/config"
	"github.com/dpetrovs/archivegate/internal/server/httpapi"
	"github.com/dpetrovs/archivegate/internal/server/notify"
	"github.com/dpetrovs/archivegate/internal/server/services"
	"github.com/dpetrovs/archivegate/internal/server/shared/db"
)

type App struct {
	config        *config.Config
	logger        logging.Logger
	uploadService *services.UploadService
	queueService  *services.QueueService
}

func NewApp(c *config.Config) (*App, error) {

	slog := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	logger := logging.NewSlogLogger(slog)

	m, err := db.NewPostgresRepositoryManager(c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	store := blobstore.NewS3Store(c)
	notifier := notify.New(&notify.LogMailer{Logger: logger}, c.SenderAddress, logger)

	us := services.NewUploadService(logger, c, m, store, notifier)
	qs := services.NewQueueService(logger, m.Queue())

	return &App{config: c, logger: logger, uploadService: us, queueService: qs}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {

	s := httpapi.NewServer(app.config.EndpointAddrHTTP, []byte(app.config.SecretKey),
		app.config.IncomingDir, app.logger, app.uploadService, app.queueService)

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

}
