package decision

import (
	"context"
	"time"

	"github.com/R1das67/globex-security/internal/detectors"
	"github.com/R1das67/globex-security/internal/logging"
	"github.com/R1das67/globex-security/internal/metrics"
	"github.com/R1das67/globex-security/internal/models"
)

// Executor performs the non-punitive platform mutations.
type Executor interface {
	DeleteMessage(ctx context.Context, channelID, messageID string) error
	Revert(ctx context.Context, guildID string, r models.Revert) error
}

type Punisher interface {
	Apply(ctx context.Context, guildID, userID string, module models.Module)
}

// Result is the outcome of one module for one event.
type Result struct {
	Module  models.Module
	Outcome models.Outcome
}

// Engine runs the detector table for an event and carries out the verdicts:
// content suppression first, then reverts, then punishment.
type Engine struct {
	table    detectors.Table
	exec     Executor
	punisher Punisher
	cooldown *CooldownManager
	timeout  time.Duration
}

func NewEngine(table detectors.Table, exec Executor, punisher Punisher, cooldown *CooldownManager, timeout time.Duration) *Engine {
	if cooldown == nil {
		cooldown = NewCooldownManager(0)
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Engine{
		table:    table,
		exec:     exec,
		punisher: punisher,
		cooldown: cooldown,
		timeout:  timeout,
	}
}

func (e *Engine) Cooldowns() *CooldownManager {
	return e.cooldown
}

// Handle evaluates ev and acts on it. It never fails: store and attribution
// problems drop only the affected module's verdict.
func (e *Engine) Handle(ctx context.Context, ev models.Event) []Result {
	start := time.Now()
	kind := ev.Kind.String()
	defer func() {
		metrics.EventDuration.WithLabelValues(kind).Observe(time.Since(start).Seconds())
	}()
	metrics.EventsProcessed.WithLabelValues(kind).Inc()

	verdicts, err := e.table.Evaluate(ctx, ev)
	if err != nil {
		metrics.EventErrors.WithLabelValues(kind).Inc()
		logging.Warn("Event %s in guild %s partially dropped: %v", kind, ev.GuildID, err)
	}

	results := make([]Result, 0, len(verdicts))
	for _, v := range verdicts {
		outcome := models.OutcomeOf(v)
		metrics.Outcomes.WithLabelValues(string(v.Module), outcome.String()).Inc()
		results = append(results, Result{Module: v.Module, Outcome: outcome})
	}

	e.suppress(ctx, ev, verdicts)
	e.revert(ctx, ev, verdicts)
	e.punish(ctx, ev, verdicts)

	return results
}

func (e *Engine) suppress(ctx context.Context, ev models.Event, verdicts []models.Verdict) {
	for _, v := range verdicts {
		if !v.Suppress {
			continue
		}
		callCtx, cancel := context.WithTimeout(ctx, e.timeout)
		err := e.exec.DeleteMessage(callCtx, ev.ChannelID, ev.TargetID)
		cancel()
		if err != nil {
			logging.Warn("Failed to delete message %s in channel %s: %v", ev.TargetID, ev.ChannelID, err)
		}
		// one delete per message, however many modules matched
		return
	}
}

func (e *Engine) revert(ctx context.Context, ev models.Event, verdicts []models.Verdict) {
	for _, v := range verdicts {
		for _, r := range v.Reverts {
			callCtx, cancel := context.WithTimeout(ctx, e.timeout)
			err := e.exec.Revert(callCtx, ev.GuildID, r)
			cancel()
			if err != nil {
				metrics.Reverts.WithLabelValues(r.Kind.String(), "failed").Inc()
				logging.Error("Failed to revert %s %s in guild %s: %v", r.Kind, r.TargetID, ev.GuildID, err)
				continue
			}
			metrics.Reverts.WithLabelValues(r.Kind.String(), "ok").Inc()
			logging.Info("Reverted %s %s in guild %s (%s)", r.Kind, r.TargetID, ev.GuildID, v.Module)
		}
	}
}

func (e *Engine) punish(ctx context.Context, ev models.Event, verdicts []models.Verdict) {
	punished := make(map[string]struct{}, 1)
	for _, v := range verdicts {
		if v.PunishUserID == "" {
			continue
		}
		if _, done := punished[v.PunishUserID]; done {
			continue
		}
		punished[v.PunishUserID] = struct{}{}

		if !e.cooldown.TryAcquire(ev.GuildID, v.PunishUserID) {
			logging.Debug("User %s in guild %s still cooling down, %s punishment skipped", v.PunishUserID, ev.GuildID, v.Module)
			continue
		}
		e.punisher.Apply(ctx, ev.GuildID, v.PunishUserID, v.Module)
	}
}
