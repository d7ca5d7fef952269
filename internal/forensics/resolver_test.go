package forensics

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/R1das67/globex-security/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubSource struct {
	entry *models.AuditEntry
	err   error
	calls int
}

func (s *stubSource) LatestAuditEntry(_ context.Context, _ string, _ models.AuditAction) (*models.AuditEntry, error) {
	s.calls++
	return s.entry, s.err
}

func TestResolveFromSource(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	src := &stubSource{entry: &models.AuditEntry{ID: "a1", GuildID: "g", Action: models.AuditChannelCreate, ActorID: "actor", TargetID: "chan"}}
	r := NewResolver(src, NewAuditCache(16, time.Minute), 0)

	ev := models.Event{Kind: models.EventChannelCreate, GuildID: "g", TargetID: "chan"}
	entry, err := r.Resolve(ctx, ev, models.AuditChannelCreate)
	require.NoError(t, err)
	require.NotNil(t, entry)
	assert.Equal("actor", entry.ActorID)

	entry, err = r.Resolve(ctx, ev, models.AuditChannelCreate)
	require.NoError(t, err)
	require.NotNil(t, entry)
	assert.Equal(1, src.calls)
}

func TestResolveMissingEntry(t *testing.T) {
	ctx := context.Background()
	r := NewResolver(&stubSource{}, NewAuditCache(16, time.Minute), 0)

	entry, err := r.Resolve(ctx, models.Event{GuildID: "g", TargetID: "chan"}, models.AuditChannelCreate)
	assert.NoError(t, err)
	assert.Nil(t, entry)
}

func TestResolveIgnoresEntryForOtherTarget(t *testing.T) {
	ctx := context.Background()
	src := &stubSource{entry: &models.AuditEntry{GuildID: "g", Action: models.AuditRoleCreate, ActorID: "actor", TargetID: "old-role"}}
	r := NewResolver(src, nil, 0)

	entry, err := r.Resolve(ctx, models.Event{GuildID: "g", TargetID: "new-role"}, models.AuditRoleCreate)
	assert.NoError(t, err)
	assert.Nil(t, entry)
}

func TestResolvePrefersMatchingCacheEntry(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	src := &stubSource{}
	r := NewResolver(src, NewAuditCache(16, time.Minute), 0)
	r.Observe(models.AuditEntry{GuildID: "g", Action: models.AuditBotAdd, ActorID: "inviter", TargetID: "bot", CreatedAt: time.Now()})

	entry, err := r.Resolve(ctx, models.Event{GuildID: "g", TargetID: "bot"}, models.AuditBotAdd)
	require.NoError(t, err)
	require.NotNil(t, entry)
	assert.Equal("inviter", entry.ActorID)
	assert.Equal(0, src.calls)

	entry, err = r.Resolve(ctx, models.Event{GuildID: "g", TargetID: "other-bot"}, models.AuditBotAdd)
	require.NoError(t, err)
	assert.Nil(entry)
	assert.Equal(1, src.calls)
}

func TestResolveSourceError(t *testing.T) {
	ctx := context.Background()
	boom := errors.New("503")
	r := NewResolver(&stubSource{err: boom}, nil, 0)

	entry, err := r.Resolve(ctx, models.Event{GuildID: "g"}, models.AuditWebhookCreate)
	assert.ErrorIs(t, err, boom)
	assert.Nil(t, entry)
}

func TestAuditCacheKeepsNewest(t *testing.T) {
	assert := assert.New(t)
	c := NewAuditCache(4, time.Minute)
	now := time.Now()

	c.Store(models.AuditEntry{GuildID: "g", Action: models.AuditRoleDelete, ActorID: "new", CreatedAt: now})
	c.Store(models.AuditEntry{GuildID: "g", Action: models.AuditRoleDelete, ActorID: "old", CreatedAt: now.Add(-time.Second)})

	entry, ok := c.Lookup("g", models.AuditRoleDelete, "")
	assert.True(ok)
	assert.Equal("new", entry.ActorID)

	_, ok = c.Lookup("g", models.AuditRoleCreate, "")
	assert.False(ok)
}

func TestResolveRejectsStaleEntries(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()
	now := time.Now()

	old := &models.AuditEntry{ID: "w1", GuildID: "g", Action: models.AuditWebhookCreate, ActorID: "X", TargetID: "hook-from-yesterday", CreatedAt: now.Add(-6 * time.Hour)}
	src := &stubSource{entry: old}
	r := NewResolver(src, NewAuditCache(16, time.Minute), 10*time.Second)

	ev := models.Event{Kind: models.EventWebhooksUpdate, GuildID: "g", ChannelID: "c1", ReceivedAt: now}
	entry, err := r.Resolve(ctx, ev, models.AuditWebhookCreate)
	require.NoError(t, err)
	assert.Nil(entry)

	// a stale entry pushed by the gateway is not used either
	r.Observe(*old)
	entry, err = r.Resolve(ctx, ev, models.AuditWebhookCreate)
	require.NoError(t, err)
	assert.Nil(entry)
	assert.Equal(2, src.calls)

	src.entry = &models.AuditEntry{ID: "w2", GuildID: "g", Action: models.AuditWebhookCreate, ActorID: "Y", TargetID: "hook", CreatedAt: now.Add(-2 * time.Second)}
	entry, err = r.Resolve(ctx, ev, models.AuditWebhookCreate)
	require.NoError(t, err)
	require.NotNil(t, entry)
	assert.Equal("Y", entry.ActorID)
}

func TestResolveRejectsEntryWithoutTimestamp(t *testing.T) {
	ctx := context.Background()
	src := &stubSource{entry: &models.AuditEntry{ID: "r1", GuildID: "g", Action: models.AuditRoleDelete, ActorID: "X", TargetID: "role"}}
	r := NewResolver(src, nil, 10*time.Second)

	entry, err := r.Resolve(ctx, models.Event{GuildID: "g", TargetID: "role", ReceivedAt: time.Now()}, models.AuditRoleDelete)
	assert.NoError(t, err)
	assert.Nil(t, entry)
}

func TestResolveUntargetedEntryAttributesOnce(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()
	now := time.Now()

	src := &stubSource{entry: &models.AuditEntry{ID: "w1", GuildID: "g", Action: models.AuditWebhookCreate, ActorID: "X", TargetID: "hook", CreatedAt: now}}
	r := NewResolver(src, NewAuditCache(16, time.Minute), 10*time.Second)

	ev := models.Event{Kind: models.EventWebhooksUpdate, GuildID: "g", ChannelID: "c1", ReceivedAt: now}
	entry, err := r.Resolve(ctx, ev, models.AuditWebhookCreate)
	require.NoError(t, err)
	require.NotNil(t, entry)
	assert.Equal("X", entry.ActorID)

	// the update fired by deleting the webhook again
	entry, err = r.Resolve(ctx, ev, models.AuditWebhookCreate)
	require.NoError(t, err)
	assert.Nil(entry)

	// targeted events are matched by id and may share an entry
	src.entry = &models.AuditEntry{ID: "b1", GuildID: "g", Action: models.AuditBotAdd, ActorID: "inviter", TargetID: "bot", CreatedAt: now}
	join := models.Event{GuildID: "g", TargetID: "bot", ReceivedAt: now}
	for i := 0; i < 2; i++ {
		entry, err = r.Resolve(ctx, join, models.AuditBotAdd)
		require.NoError(t, err)
		require.NotNil(t, entry)
	}
}
