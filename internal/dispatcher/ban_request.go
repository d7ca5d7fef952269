package dispatcher

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/R1das67/globex-security/internal/metrics"
	"github.com/R1das67/globex-security/internal/models"

	"github.com/valyala/fasthttp"
)

const defaultRequestTimeout = 2 * time.Second

// BanRequestExecutor issues sanctions straight against the REST API.
type BanRequestExecutor struct {
	httpPool    *HTTPPool
	rateLimiter *RateLimitMonitor
	baseURL     string
	token       string
}

func NewBanRequestExecutor(httpPool *HTTPPool, rateLimiter *RateLimitMonitor, baseURL, token string) *BanRequestExecutor {
	return &BanRequestExecutor{
		httpPool:    httpPool,
		rateLimiter: rateLimiter,
		baseURL:     baseURL,
		token:       token,
	}
}

func (bre *BanRequestExecutor) Ban(ctx context.Context, guildID, userID, reason string) error {
	body, _ := json.Marshal(map[string]interface{}{
		"delete_message_seconds": 0,
	})
	return bre.do(ctx, "ban", guildID, fasthttp.MethodPut,
		fmt.Sprintf("%s/guilds/%s/bans/%s", bre.baseURL, guildID, userID), body, reason)
}

func (bre *BanRequestExecutor) Kick(ctx context.Context, guildID, userID, reason string) error {
	return bre.do(ctx, "kick", guildID, fasthttp.MethodDelete,
		fmt.Sprintf("%s/guilds/%s/members/%s", bre.baseURL, guildID, userID), nil, reason)
}

func (bre *BanRequestExecutor) Timeout(ctx context.Context, guildID, userID string, until time.Time, reason string) error {
	body, _ := json.Marshal(map[string]interface{}{
		"communication_disabled_until": until.UTC().Format(time.RFC3339),
	})
	return bre.do(ctx, "timeout", guildID, fasthttp.MethodPatch,
		fmt.Sprintf("%s/guilds/%s/members/%s", bre.baseURL, guildID, userID), body, reason)
}

func (bre *BanRequestExecutor) do(ctx context.Context, route, guildID, method, uri string, body []byte, reason string) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%s: %w: %v", route, models.ErrTransientPlatform, err)
	}
	if !bre.rateLimiter.CanExecute(route, guildID) {
		return fmt.Errorf("%s rate limited: %w", route, models.ErrTransientPlatform)
	}

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(uri)
	req.Header.SetMethod(method)
	req.Header.Set("Authorization", "Bot "+bre.token)
	if reason != "" {
		req.Header.Set("X-Audit-Log-Reason", url.PathEscape(reason))
	}
	if body != nil {
		req.Header.SetContentType("application/json")
		req.SetBody(body)
	}

	deadline, ok := ctx.Deadline()
	if !ok {
		deadline = time.Now().Add(defaultRequestTimeout)
	}

	start := time.Now()
	err := bre.httpPool.GetClient().DoDeadline(req, resp, deadline)
	if err != nil {
		metrics.RESTRequests.WithLabelValues(route, "error").Observe(time.Since(start).Seconds())
		return fmt.Errorf("%s: %w: %v", route, models.ErrTransientPlatform, err)
	}

	statusCode := resp.StatusCode()
	metrics.RESTRequests.WithLabelValues(route, strconv.Itoa(statusCode)).Observe(time.Since(start).Seconds())
	bre.rateLimiter.UpdateFromFastHTTPResponse(resp, route, guildID)

	if statusCode >= 200 && statusCode < 300 {
		return nil
	}
	return fmt.Errorf("%s failed with status %d: %w", route, statusCode, models.ErrTransientPlatform)
}

func (bre *BanRequestExecutor) BaseURL() string {
	return bre.baseURL
}
