package dispatcher

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/R1das67/globex-security/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sanctionCall struct {
	kind   string
	guild  string
	user   string
	until  time.Time
	reason string
}

type fakeSanctioner struct {
	mu    sync.Mutex
	calls []sanctionCall
	err   error
	block bool
}

func (f *fakeSanctioner) record(ctx context.Context, c sanctionCall) error {
	f.mu.Lock()
	f.calls = append(f.calls, c)
	f.mu.Unlock()
	if f.block {
		<-ctx.Done()
		return ctx.Err()
	}
	return f.err
}

func (f *fakeSanctioner) Ban(ctx context.Context, guildID, userID, reason string) error {
	return f.record(ctx, sanctionCall{kind: "ban", guild: guildID, user: userID, reason: reason})
}

func (f *fakeSanctioner) Kick(ctx context.Context, guildID, userID, reason string) error {
	return f.record(ctx, sanctionCall{kind: "kick", guild: guildID, user: userID, reason: reason})
}

func (f *fakeSanctioner) Timeout(ctx context.Context, guildID, userID string, until time.Time, reason string) error {
	return f.record(ctx, sanctionCall{kind: "timeout", guild: guildID, user: userID, until: until, reason: reason})
}

type fakeMembers map[string]string

func (f fakeMembers) DisplayName(_ context.Context, _ string, userID string) (string, error) {
	if name, ok := f[userID]; ok {
		return name, nil
	}
	return "", errors.New("unknown member")
}

type fakeLogs struct {
	records  []models.PunishmentRecord
	channels []string
	err      error
}

func (f *fakeLogs) SendPunishmentLog(_ context.Context, channelID string, rec models.PunishmentRecord) error {
	f.channels = append(f.channels, channelID)
	f.records = append(f.records, rec)
	return f.err
}

type fakePolicyReader struct {
	policy *models.Policy
	err    error
}

func (f *fakePolicyReader) GetPolicy(_ context.Context, _ string) (*models.Policy, error) {
	return f.policy, f.err
}

func newPolicy(kind *models.Punishment, logChannel string) *models.Policy {
	p := models.NewPolicy("g")
	p.Modules[models.ModuleInvite] = models.ModulePolicy{Enabled: true, Punishment: kind}
	if logChannel != "" {
		p.LogEnabled = true
		p.LogChannelID = &logChannel
	}
	return p
}

func punishment(p models.Punishment) *models.Punishment { return &p }

func TestApplyDefaultsToKick(t *testing.T) {
	assert := assert.New(t)
	sanctions := &fakeSanctioner{}
	logs := &fakeLogs{}
	p := NewPunisher(&fakePolicyReader{policy: newPolicy(nil, "")}, sanctions, fakeMembers{}, logs, time.Second)

	p.Apply(context.Background(), "g", "u", models.ModuleInvite)

	require.Len(t, sanctions.calls, 1)
	assert.Equal("kick", sanctions.calls[0].kind)
	assert.Equal("Globex Security: Anti Invite Protection", sanctions.calls[0].reason)
	assert.Empty(logs.records)
}

func TestApplyRestrictUsesOneHourTimeout(t *testing.T) {
	sanctions := &fakeSanctioner{}
	p := NewPunisher(&fakePolicyReader{policy: newPolicy(punishment(models.PunishRestrict), "")}, sanctions, nil, nil, time.Second)
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	p.now = func() time.Time { return now }

	p.Apply(context.Background(), "g", "u", models.ModuleInvite)

	require.Len(t, sanctions.calls, 1)
	assert.Equal(t, "timeout", sanctions.calls[0].kind)
	assert.Equal(t, now.Add(time.Hour), sanctions.calls[0].until)
}

func TestApplyBanAndLog(t *testing.T) {
	assert := assert.New(t)
	sanctions := &fakeSanctioner{}
	logs := &fakeLogs{}
	p := NewPunisher(&fakePolicyReader{policy: newPolicy(punishment(models.PunishBan), "123456789012345678")}, sanctions, fakeMembers{"u": "Mallory"}, logs, time.Second)

	p.Apply(context.Background(), "g", "u", models.ModuleInvite)

	require.Len(t, sanctions.calls, 1)
	assert.Equal("ban", sanctions.calls[0].kind)
	require.Len(t, logs.records, 1)
	assert.Equal("123456789012345678", logs.channels[0])
	assert.Equal("Mallory", logs.records[0].DisplayName)
	assert.Equal(models.PunishBan, logs.records[0].Punishment)
	assert.Equal(models.ModuleInvite, logs.records[0].Module)
}

func TestApplyLogFallsBackToUserID(t *testing.T) {
	logs := &fakeLogs{}
	p := NewPunisher(&fakePolicyReader{policy: newPolicy(nil, "123456789012345678")}, &fakeSanctioner{}, fakeMembers{}, logs, time.Second)

	p.Apply(context.Background(), "g", "u", models.ModuleInvite)

	require.Len(t, logs.records, 1)
	assert.Equal(t, "u", logs.records[0].DisplayName)
}

func TestApplySkipsLogOnInvalidChannel(t *testing.T) {
	logs := &fakeLogs{}
	p := NewPunisher(&fakePolicyReader{policy: newPolicy(nil, "Not yet processed")}, &fakeSanctioner{}, nil, logs, time.Second)

	p.Apply(context.Background(), "g", "u", models.ModuleInvite)
	assert.Empty(t, logs.records)
}

func TestApplyFailureIsSwallowedAndNotLogged(t *testing.T) {
	sanctions := &fakeSanctioner{err: models.ErrTransientPlatform}
	logs := &fakeLogs{}
	p := NewPunisher(&fakePolicyReader{policy: newPolicy(nil, "123456789012345678")}, sanctions, nil, logs, time.Second)

	assert.NotPanics(t, func() {
		p.Apply(context.Background(), "g", "u", models.ModuleInvite)
	})
	assert.Len(t, sanctions.calls, 1)
	assert.Empty(t, logs.records)
}

func TestApplyLogFailureKeepsPunishment(t *testing.T) {
	sanctions := &fakeSanctioner{}
	logs := &fakeLogs{err: errors.New("missing access")}
	p := NewPunisher(&fakePolicyReader{policy: newPolicy(nil, "123456789012345678")}, sanctions, nil, logs, time.Second)

	p.Apply(context.Background(), "g", "u", models.ModuleInvite)
	assert.Len(t, sanctions.calls, 1)
	assert.Len(t, logs.records, 1)
}

func TestApplyPolicyErrorSkipsSanction(t *testing.T) {
	sanctions := &fakeSanctioner{}
	p := NewPunisher(&fakePolicyReader{err: models.ErrStoreUnavailable}, sanctions, nil, nil, time.Second)

	p.Apply(context.Background(), "g", "u", models.ModuleInvite)
	assert.Empty(t, sanctions.calls)
}

func TestApplyIsBoundedByTimeout(t *testing.T) {
	sanctions := &fakeSanctioner{block: true}
	logs := &fakeLogs{}
	p := NewPunisher(&fakePolicyReader{policy: newPolicy(nil, "123456789012345678")}, sanctions, nil, logs, 50*time.Millisecond)

	start := time.Now()
	p.Apply(context.Background(), "g", "u", models.ModuleInvite)

	assert.Less(t, time.Since(start), 2*time.Second)
	assert.Empty(t, logs.records)
}
