package server

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	domrepo "github.com/quantfra/swingdesk/internal/domain/repository"
	"github.com/quantfra/swingdesk/internal/usecase"
	pkgch "github.com/quantfra/swingdesk/pkg/clickhouse"
	"github.com/quantfra/swingdesk/pkg/config"
	xhttp "github.com/quantfra/swingdesk/pkg/http"
	applogger "github.com/quantfra/swingdesk/pkg/logger"
	"github.com/quantfra/swingdesk/pkg/queue"
)

// App encapsulates the entire application lifecycle.
type App struct {
	cfg        *config.Config
	l          *applogger.Logger
	handler    xhttp.Handler
	trading    *usecase.TradingUseCase
	bars       domrepo.BarSource
	consumer   *queue.RedisQueue
	chClient   *pkgch.Client
	httpServer *xhttp.Server
}

// New creates a new App instance with all dependencies. The consumer
// and clickhouse client may be nil when their backends are disabled.
func New(
	cfg *config.Config,
	l *applogger.Logger,
	handler xhttp.Handler,
	trading *usecase.TradingUseCase,
	bars domrepo.BarSource,
	consumer *queue.RedisQueue,
	chClient *pkgch.Client,
) *App {
	return &App{
		cfg:      cfg,
		l:        l,
		handler:  handler,
		trading:  trading,
		bars:     bars,
		consumer: consumer,
		chClient: chClient,
	}
}

// Run starts the application and blocks until interrupted.
func (a *App) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := a.trading.Restore(ctx); err != nil {
		a.l.Error("portfolio restore failed", applogger.Error(err))
		return err
	}

	a.httpServer = xhttp.NewServer(a.handler,
		xhttp.WithPort(a.cfg.Server.Port),
		xhttp.WithTimeouts(a.cfg.Server.ReadTimeout, a.cfg.Server.WriteTimeout, a.cfg.Server.ShutdownTimeout),
		xhttp.WithCORS(a.cfg.Server.CORS),
	)

	if a.consumer != nil {
		if err := a.consumer.Start(); err != nil {
			a.l.Error("queue consumer start error", applogger.Error(err))
			return err
		}
		a.l.Info("scan queue consumer started", applogger.Int("workers", a.cfg.Queue.Workers))
	}

	if err := a.httpServer.Start(); err != nil {
		a.l.Error("http server start error", applogger.Error(err))
		return err
	}
	a.l.Info("server started",
		applogger.Int("port", a.cfg.Server.Port),
		applogger.String("backend", a.cfg.Provider.Backend),
	)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	a.l.Info("shutdown signal received")
	return a.shutdown(ctx)
}

// shutdown gracefully stops all services.
func (a *App) shutdown(ctx context.Context) error {
	shutdownCtx, cancel := context.WithTimeout(ctx, a.cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := a.httpServer.Stop(shutdownCtx); err != nil {
		a.l.Error("http shutdown error", applogger.Error(err))
	}

	if a.consumer != nil {
		if err := a.consumer.Stop(shutdownCtx); err != nil {
			a.l.Warn("queue consumer stop error", applogger.Error(err))
		}
	}

	// Closes the audit publisher; committed trades are already on disk.
	a.trading.Close()

	// The clickhouse-backed bar source shares the client's connection,
	// so only one of the two gets closed.
	if a.chClient != nil {
		if err := a.chClient.Close(); err != nil {
			a.l.Warn("clickhouse close error", applogger.Error(err))
		}
	} else if a.bars != nil {
		if err := a.bars.Close(); err != nil {
			a.l.Warn("bar source close error", applogger.Error(err))
		}
	}

	a.l.Info("shutdown complete")
	return nil
}
