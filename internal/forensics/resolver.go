package forensics

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/R1das67/globex-security/internal/logging"
	"github.com/R1das67/globex-security/internal/metrics"
	"github.com/R1das67/globex-security/internal/models"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// AuditSource returns the most recent audit entry of one action kind in a guild,
// or nil when there is none.
type AuditSource interface {
	LatestAuditEntry(ctx context.Context, guildID string, action models.AuditAction) (*models.AuditEntry, error)
}

// Resolver finds out who caused a state change.
type Resolver struct {
	source AuditSource
	cache  *AuditCache
	maxAge time.Duration
	// entries already used for an event that names no target
	claimMu sync.Mutex
	claimed *expirable.LRU[string, struct{}]
	now     func() time.Time
}

// NewResolver builds a resolver that ignores audit entries created more than
// maxAge before the event was received. maxAge 0 disables the age check.
func NewResolver(source AuditSource, cache *AuditCache, maxAge time.Duration) *Resolver {
	claimTTL := maxAge
	if claimTTL <= 0 {
		claimTTL = time.Hour
	}
	return &Resolver{
		source:  source,
		cache:   cache,
		maxAge:  maxAge,
		claimed: expirable.NewLRU[string, struct{}](1024, nil, 2*claimTTL),
		now:     time.Now,
	}
}

// Observe feeds an entry pushed by the gateway into the cache.
func (r *Resolver) Observe(entry models.AuditEntry) {
	if r.cache != nil {
		r.cache.Store(entry)
	}
}

// Resolve returns the audit entry behind ev, or nil when it cannot be
// attributed. An entry about a different target than ev, or one too old to
// belong to ev, is not an attribution.
func (r *Resolver) Resolve(ctx context.Context, ev models.Event, action models.AuditAction) (*models.AuditEntry, error) {
	if r.cache != nil {
		if entry, ok := r.cache.Lookup(ev.GuildID, action, ev.TargetID); ok && r.fresh(ev, entry) {
			if !r.claim(ev, entry) {
				metrics.AttributionLookups.WithLabelValues("claimed").Inc()
				return nil, nil
			}
			metrics.AttributionLookups.WithLabelValues("cache").Inc()
			return &entry, nil
		}
	}

	entry, err := r.source.LatestAuditEntry(ctx, ev.GuildID, action)
	if err != nil {
		metrics.AttributionLookups.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("audit log %d for guild %s: %w", action, ev.GuildID, err)
	}
	if entry == nil || entry.ActorID == "" {
		metrics.AttributionLookups.WithLabelValues("missing").Inc()
		return nil, nil
	}
	if ev.TargetID != "" && entry.TargetID != "" && entry.TargetID != ev.TargetID {
		logging.Debug("Audit entry %s targets %s, event %s targets %s", entry.ID, entry.TargetID, ev.Kind, ev.TargetID)
		metrics.AttributionLookups.WithLabelValues("mismatch").Inc()
		return nil, nil
	}
	if !r.fresh(ev, *entry) {
		logging.Debug("Audit entry %s from %s is too old for %s", entry.ID, entry.CreatedAt.Format(time.RFC3339), ev.Kind)
		metrics.AttributionLookups.WithLabelValues("stale").Inc()
		return nil, nil
	}

	r.Observe(*entry)
	if !r.claim(ev, *entry) {
		metrics.AttributionLookups.WithLabelValues("claimed").Inc()
		return nil, nil
	}
	metrics.AttributionLookups.WithLabelValues("rest").Inc()
	return entry, nil
}

// fresh reports whether entry was created within maxAge of the event. Entries
// without a timestamp cannot be placed and are rejected.
func (r *Resolver) fresh(ev models.Event, entry models.AuditEntry) bool {
	if r.maxAge <= 0 {
		return true
	}
	if entry.CreatedAt.IsZero() {
		return false
	}
	ref := ev.ReceivedAt
	if ref.IsZero() {
		ref = r.now()
	}
	return ref.Sub(entry.CreatedAt) <= r.maxAge
}

// claim marks entry as used when ev names no target of its own, so that
// follow-up events such as a revert cannot be pinned on the same entry.
// Targeted events are matched by id and always succeed.
func (r *Resolver) claim(ev models.Event, entry models.AuditEntry) bool {
	if ev.TargetID != "" || entry.ID == "" {
		return true
	}
	key := ev.GuildID + ":" + entry.ID
	r.claimMu.Lock()
	defer r.claimMu.Unlock()
	if r.claimed.Contains(key) {
		return false
	}
	r.claimed.Add(key, struct{}{})
	return true
}
