package state

import (
	"context"
	"strings"
	"time"

	"github.com/R1das67/globex-security/internal/logging"
	"github.com/R1das67/globex-security/internal/metrics"
	"github.com/R1das67/globex-security/internal/models"

	"github.com/puzpuzpuz/xsync/v3"
)

type violationWindow struct {
	stamps []time.Time
	span   time.Duration
}

// ViolationTracker counts recent violations per (guild, user, module).
// Updates to one key are serialized by the map; distinct keys never contend.
type ViolationTracker struct {
	windows *xsync.MapOf[string, violationWindow]
	now     func() time.Time
}

type Option func(*ViolationTracker)

// WithClock replaces time.Now, mostly for tests.
func WithClock(now func() time.Time) Option {
	return func(t *ViolationTracker) {
		t.now = now
	}
}

func NewViolationTracker(opts ...Option) *ViolationTracker {
	t := &ViolationTracker{
		windows: xsync.NewMapOf[string, violationWindow](),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

func trackerKey(guildID, userID string, module models.Module) string {
	return guildID + ":" + userID + ":" + string(module)
}

// RecordAndCheck appends a violation stamped now, drops the ones that fell out
// of window and reports whether the remaining count reached limit.
func (t *ViolationTracker) RecordAndCheck(guildID, userID string, module models.Module, limit int, window time.Duration) bool {
	if limit <= 0 {
		limit = models.DefaultLimit
	}
	if window <= 0 {
		window = models.DefaultWindow
	}

	now := t.now()
	count := 0
	t.windows.Compute(trackerKey(guildID, userID, module), func(w violationWindow, _ bool) (violationWindow, bool) {
		w.stamps = prune(w.stamps, now, window)
		w.stamps = append(w.stamps, now)
		w.span = window
		count = len(w.stamps)
		return w, false
	})

	return count >= limit
}

// count returns the number of live violations without recording one.
func (t *ViolationTracker) count(guildID, userID string, module models.Module) int {
	w, ok := t.windows.Load(trackerKey(guildID, userID, module))
	if !ok {
		return 0
	}
	now := t.now()
	n := 0
	for _, ts := range w.stamps {
		if now.Sub(ts) < w.span {
			n++
		}
	}
	return n
}

// prune keeps stamps younger than window. Stamps are appended in order, so
// everything before the first live one is expired.
func prune(stamps []time.Time, now time.Time, window time.Duration) []time.Time {
	i := 0
	for i < len(stamps) && now.Sub(stamps[i]) >= window {
		i++
	}
	if i == 0 {
		return stamps
	}
	return append([]time.Time(nil), stamps[i:]...)
}

// Sweep removes keys whose every violation has expired and returns how many were dropped.
func (t *ViolationTracker) Sweep() int {
	now := t.now()
	var keys []string
	t.windows.Range(func(key string, _ violationWindow) bool {
		keys = append(keys, key)
		return true
	})

	removed := 0
	for _, key := range keys {
		t.windows.Compute(key, func(w violationWindow, loaded bool) (violationWindow, bool) {
			if !loaded {
				return w, true
			}
			w.stamps = prune(w.stamps, now, w.span)
			if len(w.stamps) == 0 {
				removed++
				return w, true
			}
			return w, false
		})
	}
	return removed
}

// ClearGuild forgets every violation recorded in guildID.
func (t *ViolationTracker) ClearGuild(guildID string) {
	prefix := guildID + ":"
	t.windows.Range(func(key string, _ violationWindow) bool {
		if strings.HasPrefix(key, prefix) {
			t.windows.Delete(key)
		}
		return true
	})
}

func (t *ViolationTracker) Size() int {
	return t.windows.Size()
}

// Run sweeps on every tick until ctx is cancelled.
func (t *ViolationTracker) Run(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			n := t.Sweep()
			size := t.Size()
			metrics.TrackedKeys.Set(float64(size))
			if n > 0 {
				logging.Debug("Tracker sweep dropped %d expired keys, %d live", n, size)
			}
		}
	}
}
