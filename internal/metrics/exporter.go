package metrics

import (
	"context"
	"time"

	"github.com/R1das67/globex-security/internal/logging"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/valyala/fasthttp"
	"github.com/valyala/fasthttp/fasthttpadaptor"
)

// HealthFunc reports whether the process should be considered live.
type HealthFunc func() bool

// Exporter serves /metrics and /healthz.
type Exporter struct {
	listen string
	server *fasthttp.Server
}

func NewExporter(listen string, healthy HealthFunc) *Exporter {
	promHandler := fasthttpadaptor.NewFastHTTPHandler(promhttp.Handler())

	handler := func(ctx *fasthttp.RequestCtx) {
		switch string(ctx.Path()) {
		case "/metrics":
			promHandler(ctx)
		case "/healthz":
			if healthy == nil || healthy() {
				ctx.SetStatusCode(fasthttp.StatusOK)
				ctx.SetBodyString("ok")
				return
			}
			ctx.SetStatusCode(fasthttp.StatusServiceUnavailable)
			ctx.SetBodyString("unhealthy")
		default:
			ctx.SetStatusCode(fasthttp.StatusNotFound)
		}
	}

	return &Exporter{
		listen: listen,
		server: &fasthttp.Server{
			Handler:      handler,
			Name:         "globex-security",
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 10 * time.Second,
		},
	}
}

func (e *Exporter) Handler() fasthttp.RequestHandler {
	return e.server.Handler
}

// Run serves until ctx is cancelled.
func (e *Exporter) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		logging.Info("Metrics listening on %s", e.listen)
		errCh <- e.server.ListenAndServe(e.listen)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return e.server.ShutdownWithContext(shutdownCtx)
	}
}
