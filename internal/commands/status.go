package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/R1das67/globex-security/internal/models"
)

func (h *Handler) handleStatus(ctx context.Context, req Request) (string, error) {
	if err := h.checkPermissions(ctx, req, false); err != nil {
		return "", err
	}
	policy, err := h.store.GetPolicy(ctx, req.GuildID)
	if err != nil {
		return "", err
	}
	limits, err := h.store.GetLimits(ctx, req.GuildID)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	b.WriteString("**Globex Security**\n")
	for _, m := range models.AllModules {
		fmt.Fprintf(&b, "%s: %s, %s", m.Title(), onOff(policy.Enabled(m)), policy.PunishmentFor(m).Label())
		if kind, ok := m.LimitKind(); ok {
			l := limits.For(kind)
			fmt.Fprintf(&b, ", limit %d", l.EffectiveCount())
			if kind.HasWindow() {
				fmt.Fprintf(&b, " per %ds", int(l.EffectiveWindow().Seconds()))
			}
		}
		b.WriteString("\n")
	}

	channel := "not set"
	if policy.LogChannelID != nil {
		channel = "<#" + *policy.LogChannelID + ">"
	}
	fmt.Fprintf(&b, "Logging: %s, channel %s", onOff(policy.LogEnabled), channel)
	return b.String(), nil
}
