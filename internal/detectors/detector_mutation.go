package detectors

import (
	"context"

	"github.com/R1das67/globex-security/internal/models"
)

// MutationDetector handles channel, role and webhook changes. The actor comes
// from the audit log; create events are reverted before the actor is punished.
type MutationDetector struct {
	deps   Deps
	module models.Module
	action models.AuditAction
	revert models.RevertKind
}

func NewMutationDetector(deps Deps, module models.Module, action models.AuditAction, revert models.RevertKind) *MutationDetector {
	return &MutationDetector{deps: deps, module: module, action: action, revert: revert}
}

func (d *MutationDetector) Module() models.Module {
	return d.module
}

func (d *MutationDetector) Evaluate(ctx context.Context, ev models.Event) (models.Verdict, error) {
	v := models.Verdict{Module: d.module}

	policy, err := d.deps.policy(ctx, ev.GuildID)
	if err != nil {
		return v, err
	}
	if !policy.Enabled(d.module) {
		return v, nil
	}

	entry, err := d.deps.Resolver.Resolve(ctx, ev, d.action)
	if err != nil || entry == nil {
		return v, err
	}

	exempt, err := d.deps.exempt(ctx, ev, entry.ActorID)
	if err != nil || exempt {
		return v, err
	}

	if d.revert != 0 {
		target := ev.TargetID
		if target == "" {
			target = entry.TargetID
		}
		if target != "" {
			v.Reverts = append(v.Reverts, models.Revert{Kind: d.revert, TargetID: target, Reason: d.module.Reason()})
		}
	}
	v.PunishUserID = entry.ActorID
	return v, nil
}
