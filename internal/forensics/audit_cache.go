package forensics

import (
	"strconv"
	"time"

	"github.com/R1das67/globex-security/internal/models"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// AuditCache holds the newest audit entry per (guild, action) as pushed by the gateway.
type AuditCache struct {
	entries *expirable.LRU[string, models.AuditEntry]
}

func NewAuditCache(size int, ttl time.Duration) *AuditCache {
	return &AuditCache{
		entries: expirable.NewLRU[string, models.AuditEntry](size, nil, ttl),
	}
}

func auditKey(guildID string, action models.AuditAction) string {
	return guildID + ":" + strconv.Itoa(int(action))
}

func (c *AuditCache) Store(entry models.AuditEntry) {
	key := auditKey(entry.GuildID, entry.Action)
	if prev, ok := c.entries.Peek(key); ok && prev.CreatedAt.After(entry.CreatedAt) {
		return
	}
	c.entries.Add(key, entry)
}

// Lookup returns the cached entry when it is about targetID. An empty
// targetID matches any entry.
func (c *AuditCache) Lookup(guildID string, action models.AuditAction, targetID string) (models.AuditEntry, bool) {
	entry, ok := c.entries.Get(auditKey(guildID, action))
	if !ok {
		return models.AuditEntry{}, false
	}
	if targetID != "" && entry.TargetID != targetID {
		return models.AuditEntry{}, false
	}
	return entry, true
}

func (c *AuditCache) Len() int {
	return c.entries.Len()
}
