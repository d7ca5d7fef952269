package dispatcher

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/R1das67/globex-security/internal/logging"
	"github.com/R1das67/globex-security/internal/metrics"
	"github.com/R1das67/globex-security/internal/models"
)

type PolicyReader interface {
	GetPolicy(ctx context.Context, guildID string) (*models.Policy, error)
}

// Sanctioner performs the three sanctions against the platform.
type Sanctioner interface {
	Ban(ctx context.Context, guildID, userID, reason string) error
	Kick(ctx context.Context, guildID, userID, reason string) error
	Timeout(ctx context.Context, guildID, userID string, until time.Time, reason string) error
}

type MemberDirectory interface {
	DisplayName(ctx context.Context, guildID, userID string) (string, error)
}

type LogSink interface {
	SendPunishmentLog(ctx context.Context, channelID string, rec models.PunishmentRecord) error
}

// Punisher applies the configured sanction for a module and writes the log record.
type Punisher struct {
	policies  PolicyReader
	sanctions Sanctioner
	members   MemberDirectory
	logs      LogSink
	timeout   time.Duration
	now       func() time.Time
}

func NewPunisher(policies PolicyReader, sanctions Sanctioner, members MemberDirectory, logs LogSink, timeout time.Duration) *Punisher {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Punisher{
		policies:  policies,
		sanctions: sanctions,
		members:   members,
		logs:      logs,
		timeout:   timeout,
		now:       time.Now,
	}
}

// Apply never fails towards the caller; every problem is logged and counted.
func (p *Punisher) Apply(ctx context.Context, guildID, userID string, module models.Module) {
	log := logging.With("guild", guildID, "user", userID, "module", string(module))

	policy, err := p.policies.GetPolicy(ctx, guildID)
	if err != nil {
		log.Warnw("Punishment skipped, policy unavailable", "error", err)
		metrics.Punishments.WithLabelValues("unknown", "store_error").Inc()
		return
	}
	kind := policy.PunishmentFor(module)

	name := p.displayName(ctx, guildID, userID)

	callCtx, cancel := context.WithTimeout(ctx, p.timeout)
	err = p.execute(callCtx, kind, guildID, userID, module.Reason())
	cancel()
	if err != nil {
		result := "failed"
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(callCtx.Err(), context.DeadlineExceeded) {
			result = "timeout"
		}
		log.Errorw("Punishment failed", "punishment", string(kind), "error", err)
		metrics.Punishments.WithLabelValues(string(kind), result).Inc()
		return
	}
	log.Infow("Punishment applied", "punishment", string(kind))
	metrics.Punishments.WithLabelValues(string(kind), "ok").Inc()

	channelID, ok := policy.LogTarget()
	if !ok || p.logs == nil {
		return
	}

	rec := models.PunishmentRecord{
		GuildID:     guildID,
		UserID:      userID,
		DisplayName: name,
		Punishment:  kind,
		Module:      module,
		IssuedAt:    p.now(),
	}
	logCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()
	if err := p.logs.SendPunishmentLog(logCtx, channelID, rec); err != nil {
		log.Warnw("Punishment log not delivered", "channel", channelID, "error", err)
	}
}

func (p *Punisher) execute(ctx context.Context, kind models.Punishment, guildID, userID, reason string) error {
	switch kind {
	case models.PunishRestrict:
		return p.sanctions.Timeout(ctx, guildID, userID, p.now().Add(models.RestrictDuration), reason)
	case models.PunishRemove:
		return p.sanctions.Kick(ctx, guildID, userID, reason)
	case models.PunishBan:
		return p.sanctions.Ban(ctx, guildID, userID, reason)
	}
	return fmt.Errorf("punishment %q: %w", kind, models.ErrMalformedConfig)
}

// displayName is looked up before the sanction, while the member is still in the guild.
func (p *Punisher) displayName(ctx context.Context, guildID, userID string) string {
	if p.members == nil {
		return userID
	}
	lookupCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()
	name, err := p.members.DisplayName(lookupCtx, guildID, userID)
	if err != nil || name == "" {
		return userID
	}
	return name
}
