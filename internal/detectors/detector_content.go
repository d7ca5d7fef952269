package detectors

import (
	"context"
	"regexp"

	"github.com/R1das67/globex-security/internal/models"
)

var inviteRe = regexp.MustCompile(`(?i)(?:discord\.gg|discord(?:app)?\.com/invite)/\S+`)

func CountInvites(content string) int {
	return len(inviteRe.FindAllStringIndex(content, -1))
}

// ContentDetector scans message content. Matching content is always
// suppressed; the author is punished when the matches in this one message
// reach the limit or the tracker reports the window limit reached.
type ContentDetector struct {
	deps   Deps
	module models.Module
	kind   models.LimitKind
	count  func(models.Event) int
}

func NewInviteDetector(deps Deps) *ContentDetector {
	return &ContentDetector{
		deps:   deps,
		module: models.ModuleInvite,
		kind:   models.LimitInvite,
		count:  func(ev models.Event) int { return CountInvites(ev.Content) },
	}
}

// NewMentionDetector treats an everyone/here mention as a single match.
func NewMentionDetector(deps Deps) *ContentDetector {
	return &ContentDetector{
		deps:   deps,
		module: models.ModuleMention,
		kind:   models.LimitMention,
		count: func(ev models.Event) int {
			if ev.MentionEveryone {
				return 1
			}
			return 0
		},
	}
}

func (d *ContentDetector) Module() models.Module {
	return d.module
}

func (d *ContentDetector) Evaluate(ctx context.Context, ev models.Event) (models.Verdict, error) {
	v := models.Verdict{Module: d.module}
	if ev.WebhookID != "" || ev.UserBot || ev.UserID == "" || ev.UserID == d.deps.self() {
		return v, nil
	}

	matches := d.count(ev)
	if matches == 0 {
		return v, nil
	}

	policy, err := d.deps.policy(ctx, ev.GuildID)
	if err != nil {
		return v, err
	}
	if !policy.Enabled(d.module) {
		return v, nil
	}

	exempt, err := d.deps.exempt(ctx, ev, ev.UserID)
	if err != nil || exempt {
		return v, err
	}

	lim, err := d.deps.limit(ctx, ev.GuildID, d.kind)
	if err != nil {
		return v, err
	}
	limit := lim.EffectiveCount()

	// The window is recorded on every match, even when this message alone
	// already reaches the limit.
	windowHit := d.deps.Tracker.RecordAndCheck(ev.GuildID, ev.UserID, d.module, limit, lim.EffectiveWindow())

	v.Suppress = true
	if matches >= limit || windowHit {
		v.PunishUserID = ev.UserID
	}
	return v, nil
}

// WebhookMessageDetector deletes messages posted through webhooks while the
// webhook module is on. There is no member to punish.
type WebhookMessageDetector struct {
	deps Deps
}

func NewWebhookMessageDetector(deps Deps) *WebhookMessageDetector {
	return &WebhookMessageDetector{deps: deps}
}

func (d *WebhookMessageDetector) Module() models.Module {
	return models.ModuleWebhook
}

func (d *WebhookMessageDetector) Evaluate(ctx context.Context, ev models.Event) (models.Verdict, error) {
	v := models.Verdict{Module: models.ModuleWebhook}
	if ev.WebhookID == "" {
		return v, nil
	}

	policy, err := d.deps.policy(ctx, ev.GuildID)
	if err != nil {
		return v, err
	}
	v.Suppress = policy.Enabled(models.ModuleWebhook)
	return v, nil
}
