package detectors

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/R1das67/globex-security/internal/models"
)

type PolicySource interface {
	GetPolicy(ctx context.Context, guildID string) (*models.Policy, error)
	GetLimits(ctx context.Context, guildID string) (*models.LimitSet, error)
}

type ListSource interface {
	IsOnList(ctx context.Context, guildID, userID string, list models.ListType) (bool, error)
}

type Attributor interface {
	Resolve(ctx context.Context, ev models.Event, action models.AuditAction) (*models.AuditEntry, error)
}

type Tracker interface {
	RecordAndCheck(guildID, userID string, module models.Module, limit int, window time.Duration) bool
}

// Deps is everything a detector reads. SelfID returns the bot's own user ID.
type Deps struct {
	Policies PolicySource
	Lists    ListSource
	Resolver Attributor
	Tracker  Tracker
	SelfID   func() string
}

// Detector evaluates one module against one event.
type Detector interface {
	Module() models.Module
	Evaluate(ctx context.Context, ev models.Event) (models.Verdict, error)
}

func (d Deps) self() string {
	if d.SelfID == nil {
		return ""
	}
	return d.SelfID()
}

func (d Deps) policy(ctx context.Context, guildID string) (*models.Policy, error) {
	p, err := d.Policies.GetPolicy(ctx, guildID)
	if err != nil {
		return nil, fmt.Errorf("policy for guild %s: %w", guildID, err)
	}
	return p, nil
}

func (d Deps) limit(ctx context.Context, guildID string, kind models.LimitKind) (models.Limit, error) {
	ls, err := d.Policies.GetLimits(ctx, guildID)
	if err != nil {
		return models.Limit{}, fmt.Errorf("limits for guild %s: %w", guildID, err)
	}
	return ls.For(kind), nil
}

// exempt reports whether userID is the bot itself, the guild owner or whitelisted.
func (d Deps) exempt(ctx context.Context, ev models.Event, userID string) (bool, error) {
	if userID == "" {
		return true, nil
	}
	if self := d.self(); self != "" && userID == self {
		return true, nil
	}
	if userID == ev.OwnerID {
		return true, nil
	}
	ok, err := d.Lists.IsOnList(ctx, ev.GuildID, userID, models.ListWhitelist)
	if err != nil {
		return false, fmt.Errorf("whitelist for guild %s: %w", ev.GuildID, err)
	}
	return ok, nil
}

// Table maps each event kind onto the detectors that run for it.
type Table map[models.EventKind][]Detector

func NewTable(deps Deps) Table {
	return Table{
		models.EventMessageCreate: {
			NewWebhookMessageDetector(deps),
			NewInviteDetector(deps),
			NewMentionDetector(deps),
		},
		models.EventChannelCreate:  {NewMutationDetector(deps, models.ModuleChannelCreate, models.AuditChannelCreate, models.RevertChannel)},
		models.EventChannelDelete:  {NewMutationDetector(deps, models.ModuleChannelDelete, models.AuditChannelDelete, 0)},
		models.EventRoleCreate:     {NewMutationDetector(deps, models.ModuleRoleCreate, models.AuditRoleCreate, models.RevertRole)},
		models.EventRoleDelete:     {NewMutationDetector(deps, models.ModuleRoleDelete, models.AuditRoleDelete, 0)},
		models.EventWebhooksUpdate: {NewMutationDetector(deps, models.ModuleWebhook, models.AuditWebhookCreate, models.RevertWebhook)},
		models.EventMemberJoin:     {NewBotJoinDetector(deps)},
	}
}

// Evaluate runs every detector bound to ev.Kind. Verdicts of detectors that
// failed are left out and their errors joined.
func (t Table) Evaluate(ctx context.Context, ev models.Event) ([]models.Verdict, error) {
	dets := t[ev.Kind]
	verdicts := make([]models.Verdict, 0, len(dets))
	var errs []error
	for _, det := range dets {
		v, err := det.Evaluate(ctx, ev)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", det.Module(), err))
			continue
		}
		verdicts = append(verdicts, v)
	}
	return verdicts, errors.Join(errs...)
}
