package decision

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/R1das67/globex-security/internal/detectors"
	"github.com/R1das67/globex-security/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubDetector struct {
	module  models.Module
	verdict models.Verdict
	err     error
}

func (d stubDetector) Module() models.Module { return d.module }

func (d stubDetector) Evaluate(context.Context, models.Event) (models.Verdict, error) {
	if d.err != nil {
		return models.Verdict{}, d.err
	}
	v := d.verdict
	v.Module = d.module
	return v, nil
}

type recorder struct {
	mu    sync.Mutex
	steps []string
	fail  bool
}

func (r *recorder) add(s string) {
	r.mu.Lock()
	r.steps = append(r.steps, s)
	r.mu.Unlock()
}

func (r *recorder) DeleteMessage(_ context.Context, _, messageID string) error {
	r.add("delete:" + messageID)
	if r.fail {
		return models.ErrTransientPlatform
	}
	return nil
}

func (r *recorder) Revert(_ context.Context, _ string, rv models.Revert) error {
	r.add("revert:" + rv.Kind.String() + ":" + rv.TargetID)
	if r.fail {
		return models.ErrTransientPlatform
	}
	return nil
}

func (r *recorder) Apply(_ context.Context, _, userID string, module models.Module) {
	r.add("punish:" + userID + ":" + string(module))
}

func newEngine(rec *recorder, table detectors.Table, cooldown time.Duration) *Engine {
	return NewEngine(table, rec, rec, NewCooldownManager(cooldown), time.Second)
}

func TestHandleSuppressesOncePerMessage(t *testing.T) {
	assert := assert.New(t)
	rec := &recorder{}
	table := detectors.Table{
		models.EventMessageCreate: {
			stubDetector{module: models.ModuleInvite, verdict: models.Verdict{Suppress: true, PunishUserID: "u"}},
			stubDetector{module: models.ModuleMention, verdict: models.Verdict{Suppress: true, PunishUserID: "u"}},
		},
	}
	eng := newEngine(rec, table, 0)

	results := eng.Handle(context.Background(), models.Event{Kind: models.EventMessageCreate, GuildID: "g", TargetID: "m1"})

	assert.Equal([]string{"delete:m1", "punish:u:anti_invite"}, rec.steps)
	require.Len(t, results, 2)
	assert.Equal(models.OutcomePunished, results[0].Outcome)
}

func TestHandleRevertsBeforePunishing(t *testing.T) {
	rec := &recorder{}
	table := detectors.Table{
		models.EventChannelCreate: {
			stubDetector{module: models.ModuleChannelCreate, verdict: models.Verdict{
				Reverts:      []models.Revert{{Kind: models.RevertChannel, TargetID: "c1"}},
				PunishUserID: "a",
			}},
		},
	}
	eng := newEngine(rec, table, 0)

	results := eng.Handle(context.Background(), models.Event{Kind: models.EventChannelCreate, GuildID: "g", TargetID: "c1"})

	assert.Equal(t, []string{"revert:channel:c1", "punish:a:anti_channel_create"}, rec.steps)
	assert.Equal(t, models.OutcomeRevertedPunished, results[0].Outcome)
}

func TestHandleContinuesAfterPlatformFailures(t *testing.T) {
	rec := &recorder{fail: true}
	table := detectors.Table{
		models.EventRoleCreate: {
			stubDetector{module: models.ModuleRoleCreate, verdict: models.Verdict{
				Reverts:      []models.Revert{{Kind: models.RevertRole, TargetID: "r1"}},
				PunishUserID: "a",
			}},
		},
	}
	eng := newEngine(rec, table, 0)

	eng.Handle(context.Background(), models.Event{Kind: models.EventRoleCreate, GuildID: "g"})
	assert.Equal(t, []string{"revert:role:r1", "punish:a:anti_role_create"}, rec.steps)
}

func TestHandleDropsOnlyFailingDetector(t *testing.T) {
	rec := &recorder{}
	table := detectors.Table{
		models.EventMessageCreate: {
			stubDetector{module: models.ModuleInvite, err: models.ErrStoreUnavailable},
			stubDetector{module: models.ModuleMention, verdict: models.Verdict{Suppress: true}},
		},
	}
	eng := newEngine(rec, table, 0)

	results := eng.Handle(context.Background(), models.Event{Kind: models.EventMessageCreate, GuildID: "g", TargetID: "m"})

	require.Len(t, results, 1)
	assert.Equal(t, models.ModuleMention, results[0].Module)
	assert.Equal(t, models.OutcomeContentSuppressed, results[0].Outcome)
	assert.Equal(t, []string{"delete:m"}, rec.steps)
}

func TestHandleNoAction(t *testing.T) {
	rec := &recorder{}
	table := detectors.Table{
		models.EventChannelDelete: {stubDetector{module: models.ModuleChannelDelete}},
	}
	eng := newEngine(rec, table, 0)

	results := eng.Handle(context.Background(), models.Event{Kind: models.EventChannelDelete, GuildID: "g"})
	assert.Empty(t, rec.steps)
	assert.Equal(t, []Result{{Module: models.ModuleChannelDelete, Outcome: models.OutcomeNoAction}}, results)

	assert.Empty(t, eng.Handle(context.Background(), models.Event{Kind: models.EventUnknown}))
}

func TestHandleCooldownAcrossEvents(t *testing.T) {
	rec := &recorder{}
	table := detectors.Table{
		models.EventMessageCreate: {
			stubDetector{module: models.ModuleInvite, verdict: models.Verdict{Suppress: true, PunishUserID: "u"}},
		},
	}
	eng := newEngine(rec, table, time.Minute)
	ev := models.Event{Kind: models.EventMessageCreate, GuildID: "g", TargetID: "m"}

	eng.Handle(context.Background(), ev)
	eng.Handle(context.Background(), ev)

	assert.Equal(t, []string{"delete:m", "punish:u:anti_invite", "delete:m"}, rec.steps)
}

func TestCooldownManager(t *testing.T) {
	assert := assert.New(t)
	now := time.Unix(1000, 0)
	cm := NewCooldownManager(10 * time.Second)
	cm.now = func() time.Time { return now }

	assert.True(cm.TryAcquire("g", "u"))
	assert.False(cm.TryAcquire("g", "u"))
	assert.False(cm.CanExecute("g", "u"))
	assert.True(cm.CanExecute("g", "other"))
	assert.Equal(10*time.Second, cm.GetRemainingCooldown("g", "u"))

	now = now.Add(10 * time.Second)
	assert.True(cm.CanExecute("g", "u"))
	cm.Prune()
	assert.Zero(cm.GetRemainingCooldown("g", "u"))

	assert.True(cm.TryAcquire("g", "u"))
	cm.Reset("g")
	assert.True(cm.CanExecute("g", "u"))
}

func TestCooldownDisabled(t *testing.T) {
	cm := NewCooldownManager(0)
	assert.True(t, cm.TryAcquire("g", "u"))
	assert.True(t, cm.TryAcquire("g", "u"))
}
