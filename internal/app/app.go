// Package app wires configuration, logging, metrics, tracing and the HTTP
// surface around a routing service.
package app

import (
	"context"
	"io"
	"log"
	"net/http"
	"net/http/pprof"
	"os"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	servernet "trackroute/internal/net"
	"trackroute/internal/routing"
	"trackroute/internal/telemetry"
	"trackroute/internal/world"
	"trackroute/logging"
)

const (
	serviceName     = "trackroute"
	shutdownTimeout = 5 * time.Second
)

// App is a configured, not yet serving, trackroute server.
type App struct {
	cfg     Config
	logger  telemetry.Logger
	router  *logging.Router
	metrics *telemetry.Prometheus
	tracing *sdktrace.TracerProvider
	service *routing.Service
	handler http.Handler

	reloadMu sync.Mutex
}

// New loads the fixture and builds every component. stdout receives console
// logs and stdout spans; nil means os.Stdout.
func New(ctx context.Context, cfg Config, logger telemetry.Logger, stdout io.Writer) (*App, error) {
	if logger == nil {
		logger = telemetry.WrapLogger(log.Default())
	}
	if stdout == nil {
		stdout = os.Stdout
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	named, err := buildSinks(cfg.Logging, stdout)
	if err != nil {
		return nil, err
	}
	router, err := logging.NewRouter(logging.SystemClock{}, cfg.Logging, named)
	if err != nil {
		closeSinks(named)
		return nil, errors.Wrap(err, "construct logging router")
	}
	a := &App{cfg: cfg, logger: logger, router: router}

	m, err := world.LoadFixture(cfg.Fixture)
	if err != nil {
		a.Close(ctx)
		return nil, err
	}

	a.tracing, err = telemetry.NewTracerProvider(ctx, cfg.Tracing, serviceName, stdout)
	if err != nil {
		a.Close(ctx)
		return nil, err
	}
	a.metrics = telemetry.NewPrometheus(cfg.Metrics)

	a.service = routing.NewService(m, cfg.Pathfinder,
		routing.WithMetrics(a.metrics),
		routing.WithPublisher(router),
		routing.WithTracer(a.tracing.Tracer(serviceName)),
	)

	httpCfg := servernet.HTTPHandlerConfig{Logger: logger, Publisher: router}
	if cfg.Metrics.Enabled {
		httpCfg.Metrics = a.metrics.Handler()
	}
	handler := servernet.NewHTTPHandler(a.service, httpCfg)
	if cfg.Observability.EnablePprof {
		handler = withPprof(handler)
	}
	a.handler = handler
	return a, nil
}

func withPprof(next http.Handler) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/", next)
	mux.HandleFunc("/debug/pprof/", pprof.Index)
	mux.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
	mux.HandleFunc("/debug/pprof/profile", pprof.Profile)
	mux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
	mux.HandleFunc("/debug/pprof/trace", pprof.Trace)
	return mux
}

func (a *App) Service() *routing.Service { return a.service }

func (a *App) Handler() http.Handler { return a.handler }

// Publisher exposes the event router.
func (a *App) Publisher() logging.Publisher { return a.router }

// Reload reads the fixture again and swaps it in. A fixture that fails to
// load leaves the current world in place.
func (a *App) Reload(ctx context.Context) (uint64, error) {
	a.reloadMu.Lock()
	defer a.reloadMu.Unlock()

	m, err := world.LoadFixture(a.cfg.Fixture)
	if err != nil {
		return 0, err
	}
	return a.service.SwapWorld(ctx, m, a.cfg.Fixture)
}

// Run serves HTTP until ctx is cancelled or the server fails.
func (a *App) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var wg sync.WaitGroup
	if a.cfg.Watch {
		w, err := newFixtureWatcher(a.cfg.Fixture, a.logger)
		if err != nil {
			return err
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			w.run(ctx, func() {
				gen, err := a.Reload(ctx)
				if err != nil {
					a.logger.Printf("fixture reload failed: %v", err)
					return
				}
				a.logger.Printf("fixture reloaded, generation %d", gen)
			})
		}()
	}
	defer wg.Wait()

	srv := &http.Server{Addr: a.cfg.Listen, Handler: a.handler, ReadHeaderTimeout: 10 * time.Second}
	errCh := make(chan error, 1)
	go func() {
		a.logger.Printf("server listening on %s", srv.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return errors.Wrap(err, "server failed")
	case <-ctx.Done():
	}

	shutdownCtx, stop := context.WithTimeout(context.Background(), shutdownTimeout)
	defer stop()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return errors.Wrap(err, "shutdown")
	}
	return nil
}

// Close flushes traces and logs.
func (a *App) Close(ctx context.Context) error {
	var errs error
	if a.tracing != nil {
		if err := a.tracing.Shutdown(ctx); err != nil {
			errs = errors.CombineErrors(errs, errors.Wrap(err, "shutdown tracing"))
		}
	}
	if a.router != nil {
		if err := a.router.Close(ctx); err != nil {
			errs = errors.CombineErrors(errs, errors.Wrap(err, "close logging router"))
		}
	}
	return errs
}

// Run builds an App from cfg and serves until ctx is done.
func Run(ctx context.Context, cfg Config, logger telemetry.Logger) error {
	if logger == nil {
		logger = telemetry.WrapLogger(log.Default())
	}
	a, err := New(ctx, cfg, logger, nil)
	if err != nil {
		return err
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if cerr := a.Close(closeCtx); cerr != nil {
			logger.Printf("failed to close app: %v", cerr)
		}
	}()
	return a.Run(ctx)
}
