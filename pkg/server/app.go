package server

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	xhttp "CupoCast/pkg/http"
	pkgkafka "CupoCast/pkg/kafka"
	applogger "CupoCast/pkg/logger"
)

// Task is a background loop that runs until ctx is cancelled.
type Task struct {
	Name string
	Run  func(ctx context.Context)
}

// App encapsulates the application lifecycle.
type App struct {
	log             *applogger.Logger
	httpServer      *xhttp.Server
	consumer        *pkgkafka.Consumer
	shutdownTimeout time.Duration
	tasks           []Task

	wg sync.WaitGroup
}

// Option configures App.
type Option func(*App)

// WithConsumer starts c alongside the HTTP server. Handlers must already be registered.
func WithConsumer(c *pkgkafka.Consumer) Option {
	return func(a *App) { a.consumer = c }
}

// WithTask adds a background loop.
func WithTask(t Task) Option {
	return func(a *App) { a.tasks = append(a.tasks, t) }
}

// WithShutdownTimeout bounds graceful shutdown.
func WithShutdownTimeout(d time.Duration) Option {
	return func(a *App) { a.shutdownTimeout = d }
}

func New(log *applogger.Logger, httpServer *xhttp.Server, opts ...Option) *App {
	a := &App{log: log, httpServer: httpServer, shutdownTimeout: 15 * time.Second}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Run starts everything and blocks until SIGINT or SIGTERM.
func (a *App) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := a.Start(ctx); err != nil {
		return err
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	sig := <-sigCh
	a.log.Info("shutdown signal received", applogger.String("signal", sig.String()))

	cancel()
	return a.Shutdown(context.Background())
}

// Start launches background tasks, the consumer and the HTTP server.
func (a *App) Start(ctx context.Context) error {
	for _, t := range a.tasks {
		a.wg.Add(1)
		go func(t Task) {
			defer a.wg.Done()
			t.Run(ctx)
		}(t)
		a.log.Debug("background task started", applogger.String("task", t.Name))
	}

	if a.consumer != nil {
		if err := a.consumer.Start(); err != nil {
			a.log.Error("kafka consumer start error", applogger.Error(err))
			return err
		}
	}

	if err := a.httpServer.Start(); err != nil {
		a.log.Error("http server start error", applogger.Error(err))
		return err
	}
	return nil
}

// Shutdown stops intake first, then drains workers. Stores, caches and the
// producer stay open for the caller to release.
func (a *App) Shutdown(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, a.shutdownTimeout)
	defer cancel()

	a.log.Info("shutting down")
	if err := a.httpServer.Stop(ctx); err != nil {
		a.log.Error("http shutdown error", applogger.Error(err))
	}

	if a.consumer != nil {
		if err := a.consumer.Stop(ctx); err != nil {
			a.log.Warn("kafka consumer stop error", applogger.Error(err))
		}
	}

	a.wg.Wait()

	a.log.Info("shutdown complete")
	return nil
}
