package database

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/R1das67/globex-security/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *Database {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "globex.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestGetPolicyCreatesDefaults(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()
	db := openTestDB(t)

	p, err := db.GetPolicy(ctx, "100")
	require.NoError(t, err)
	assert.Equal("100", p.GuildID)
	for _, m := range models.AllModules {
		assert.False(p.Enabled(m), m)
		assert.Nil(p.Module(m).Punishment, m)
		assert.Equal(models.PunishRemove, p.PunishmentFor(m))
	}
	assert.False(p.LogEnabled)
	assert.Nil(p.LogChannelID)

	var rows int
	require.NoError(t, db.db.QueryRow(`SELECT COUNT(*) FROM settings WHERE guild_id = ?`, "100").Scan(&rows))
	assert.Equal(1, rows)

	_, err = db.GetPolicy(ctx, "100")
	require.NoError(t, err)
	require.NoError(t, db.db.QueryRow(`SELECT COUNT(*) FROM settings WHERE guild_id = ?`, "100").Scan(&rows))
	assert.Equal(1, rows)
}

func TestSetPolicyFields(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()
	db := openTestDB(t)

	require.NoError(t, db.SetModuleEnabled(ctx, "1", models.ModuleInvite, true))
	require.NoError(t, db.SetPunishment(ctx, "1", models.ModuleInvite, models.PunishBan))
	require.NoError(t, db.SetPunishment(ctx, "1", models.ModuleRoleDelete, "timeout"))
	require.NoError(t, db.SetLogging(ctx, "1", true))
	require.NoError(t, db.SetLogChannel(ctx, "1", "123456789012345678"))

	p, err := db.GetPolicy(ctx, "1")
	require.NoError(t, err)
	assert.True(p.Enabled(models.ModuleInvite))
	assert.False(p.Enabled(models.ModuleMention))
	assert.Equal(models.PunishBan, p.PunishmentFor(models.ModuleInvite))
	assert.Equal(models.PunishRestrict, p.PunishmentFor(models.ModuleRoleDelete))
	ch, ok := p.LogTarget()
	assert.True(ok)
	assert.Equal("123456789012345678", ch)
}

func TestSetPolicyRejectsMalformedInput(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()
	db := openTestDB(t)

	assert.True(errors.Is(db.SetPunishment(ctx, "1", models.ModuleInvite, "mute"), models.ErrMalformedConfig))
	assert.True(errors.Is(db.SetModuleEnabled(ctx, "1", "anti_spam", true), models.ErrMalformedConfig))
	assert.True(errors.Is(db.SetLogChannel(ctx, "1", "general"), models.ErrMalformedConfig))
}

func TestLimits(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()
	db := openTestDB(t)

	ls, err := db.GetLimits(ctx, "1")
	require.NoError(t, err)
	assert.Nil(ls.Invite.Count)
	assert.Equal(1, ls.Invite.EffectiveCount())
	assert.Equal(10*time.Second, ls.Invite.EffectiveWindow())

	window := 30
	require.NoError(t, db.SetLimit(ctx, "1", models.LimitInvite, 3, &window))
	require.NoError(t, db.SetLimit(ctx, "1", models.LimitBotJoin, 2, nil))

	ls, err = db.GetLimits(ctx, "1")
	require.NoError(t, err)
	assert.Equal(3, ls.Invite.EffectiveCount())
	assert.Equal(30*time.Second, ls.Invite.EffectiveWindow())
	assert.Equal(2, ls.BotJoin.EffectiveCount())
	assert.Nil(ls.Mention.Count)

	require.NoError(t, db.SetLimit(ctx, "1", models.LimitInvite, 5, nil))
	ls, err = db.GetLimits(ctx, "1")
	require.NoError(t, err)
	assert.Equal(5, ls.Invite.EffectiveCount())
	assert.Equal(30*time.Second, ls.Invite.EffectiveWindow())
}

func TestSetLimitValidation(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()
	db := openTestDB(t)

	tooLong := 100000
	zero := 0
	assert.ErrorIs(db.SetLimit(ctx, "1", models.LimitInvite, 0, nil), models.ErrMalformedConfig)
	assert.ErrorIs(db.SetLimit(ctx, "1", models.LimitInvite, 100, nil), models.ErrMalformedConfig)
	assert.ErrorIs(db.SetLimit(ctx, "1", models.LimitMention, 2, &tooLong), models.ErrMalformedConfig)
	assert.ErrorIs(db.SetLimit(ctx, "1", models.LimitMention, 2, &zero), models.ErrMalformedConfig)
	assert.ErrorIs(db.SetLimit(ctx, "1", models.LimitBotJoin, 2, &zero), models.ErrMalformedConfig)
	assert.ErrorIs(db.SetLimit(ctx, "1", "emoji", 2, nil), models.ErrMalformedConfig)
}

func TestListSetSemantics(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()
	db := openTestDB(t)

	require.NoError(t, db.AddToList(ctx, "1", "u1", models.ListWhitelist))
	require.NoError(t, db.AddToList(ctx, "1", "u1", models.ListWhitelist))
	require.NoError(t, db.AddToList(ctx, "1", "u2", models.ListWhitelist))
	require.NoError(t, db.AddToList(ctx, "1", "u1", models.ListTrusted))

	entries, err := db.ListMembers(ctx, "1", models.ListWhitelist)
	require.NoError(t, err)
	assert.Len(entries, 2)

	ok, err := db.IsOnList(ctx, "1", "u1", models.ListTrusted)
	require.NoError(t, err)
	assert.True(ok)

	ok, err = db.IsOnList(ctx, "1", "u2", models.ListTrusted)
	require.NoError(t, err)
	assert.False(ok)

	require.NoError(t, db.RemoveFromList(ctx, "1", "u1", models.ListWhitelist))
	require.NoError(t, db.RemoveFromList(ctx, "1", "u1", models.ListWhitelist))

	ok, err = db.IsOnList(ctx, "1", "u1", models.ListWhitelist)
	require.NoError(t, err)
	assert.False(ok)

	ok, err = db.IsOnList(ctx, "1", "u1", models.ListTrusted)
	require.NoError(t, err)
	assert.True(ok)
}

func TestStoreInvalidatesOnWrite(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()
	store := NewStore(openTestDB(t), 16, time.Minute)

	p, err := store.GetPolicy(ctx, "1")
	require.NoError(t, err)
	assert.False(p.Enabled(models.ModuleWebhook))

	require.NoError(t, store.SetModuleEnabled(ctx, "1", models.ModuleWebhook, true))
	p, err = store.GetPolicy(ctx, "1")
	require.NoError(t, err)
	assert.True(p.Enabled(models.ModuleWebhook))

	ok, err := store.IsOnList(ctx, "1", "u", models.ListWhitelist)
	require.NoError(t, err)
	assert.False(ok)

	require.NoError(t, store.AddToList(ctx, "1", "u", models.ListWhitelist))
	ok, err = store.IsOnList(ctx, "1", "u", models.ListWhitelist)
	require.NoError(t, err)
	assert.True(ok)

	_, err = store.GetLimits(ctx, "1")
	require.NoError(t, err)
	require.NoError(t, store.SetLimit(ctx, "1", models.LimitWebhook, 4, nil))
	ls, err := store.GetLimits(ctx, "1")
	require.NoError(t, err)
	assert.Equal(4, ls.Webhook.EffectiveCount())
}

func TestClosedDatabaseReportsStoreUnavailable(t *testing.T) {
	ctx := context.Background()
	db, err := Open(filepath.Join(t.TempDir(), "globex.db"))
	require.NoError(t, err)
	require.NoError(t, db.Close())

	_, err = db.GetPolicy(ctx, "1")
	assert.ErrorIs(t, err, models.ErrStoreUnavailable)
	assert.ErrorIs(t, db.Ping(ctx), models.ErrStoreUnavailable)
}
