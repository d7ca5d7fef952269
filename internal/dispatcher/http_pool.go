package dispatcher

import (
	"context"
	"crypto/tls"
	"sync/atomic"
	"time"

	"github.com/R1das67/globex-security/internal/logging"

	"github.com/valyala/fasthttp"
)

type HTTPPool struct {
	clients []*fasthttp.Client
	next    atomic.Uint32
}

type PoolOption func(*fasthttp.Client)

// WithDial routes every connection through dial. Tests use it with an in-memory listener.
func WithDial(dial fasthttp.DialFunc) PoolOption {
	return func(c *fasthttp.Client) {
		c.Dial = dial
	}
}

func NewHTTPPool(size int, opts ...PoolOption) *HTTPPool {
	if size < 1 {
		size = 1
	}
	clients := make([]*fasthttp.Client, size)

	tlsConfig := &tls.Config{
		MinVersion:         tls.VersionTLS12,
		ClientSessionCache: tls.NewLRUClientSessionCache(128),
	}

	for i := 0; i < size; i++ {
		c := &fasthttp.Client{
			Name:                "globex-security",
			MaxConnsPerHost:     256,
			MaxIdleConnDuration: 90 * time.Second,
			ReadTimeout:         5 * time.Second,
			WriteTimeout:        5 * time.Second,
			MaxConnWaitTimeout:  time.Second,

			MaxResponseBodySize: 1 << 20,

			MaxIdemponentCallAttempts: 1,

			TLSConfig: tlsConfig,
		}
		for _, opt := range opts {
			opt(c)
		}
		clients[i] = c
	}

	return &HTTPPool{clients: clients}
}

func (hp *HTTPPool) GetClient() *fasthttp.Client {
	i := hp.next.Add(1)
	return hp.clients[int(i)%len(hp.clients)]
}

// Warmup opens a connection to the API so the first sanction skips the TLS handshake.
func (hp *HTTPPool) Warmup(ctx context.Context, baseURL string) {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(baseURL + "/gateway")
	req.Header.SetMethod(fasthttp.MethodGet)

	deadline := time.Now().Add(2 * time.Second)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}

	for _, c := range hp.clients {
		if err := c.DoDeadline(req, resp, deadline); err != nil {
			logging.Warn("HTTP pool warmup failed: %v", err)
			return
		}
	}
	logging.Debug("HTTP pool warmed up (%d clients)", len(hp.clients))
}
