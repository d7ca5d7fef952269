package detectors

import (
	"context"

	"github.com/R1das67/globex-security/internal/logging"
	"github.com/R1das67/globex-security/internal/models"
)

const botKickReason = "Anti-Bot Join Protection"

// BotJoinDetector removes bots added by anyone but the owner, the bot itself
// or a whitelisted user, and punishes inviters who reach the bot limit.
type BotJoinDetector struct {
	deps Deps
}

func NewBotJoinDetector(deps Deps) *BotJoinDetector {
	return &BotJoinDetector{deps: deps}
}

func (d *BotJoinDetector) Module() models.Module {
	return models.ModuleBotJoin
}

func (d *BotJoinDetector) Evaluate(ctx context.Context, ev models.Event) (models.Verdict, error) {
	v := models.Verdict{Module: models.ModuleBotJoin}
	if !ev.UserBot || ev.UserID == "" {
		return v, nil
	}

	policy, err := d.deps.policy(ctx, ev.GuildID)
	if err != nil {
		return v, err
	}
	if !policy.Enabled(models.ModuleBotJoin) {
		return v, nil
	}

	if ev.TargetID == "" {
		ev.TargetID = ev.UserID
	}
	entry, err := d.deps.Resolver.Resolve(ctx, ev, models.AuditBotAdd)
	if err != nil || entry == nil {
		return v, err
	}

	inviter := entry.ActorID
	exempt, err := d.deps.exempt(ctx, ev, inviter)
	if err != nil || exempt {
		return v, err
	}

	v.Reverts = []models.Revert{{Kind: models.RevertMember, TargetID: ev.UserID, Reason: botKickReason}}

	lim, err := d.deps.limit(ctx, ev.GuildID, models.LimitBotJoin)
	if err != nil {
		logging.Warn("Bot limit for guild %s unavailable, removing bot without tracking inviter: %v", ev.GuildID, err)
		return v, nil
	}
	if d.deps.Tracker.RecordAndCheck(ev.GuildID, inviter, models.ModuleBotJoin, lim.EffectiveCount(), models.BotJoinWindow) {
		v.PunishUserID = inviter
	}
	return v, nil
}
