package commands

import (
	"context"
	"fmt"

	"github.com/R1das67/globex-security/internal/models"
)

type logsInput struct {
	Channel string `validate:"omitempty,numeric"`
}

func (h *Handler) handleLogs(ctx context.Context, req Request) (string, error) {
	if err := h.checkPermissions(ctx, req, false); err != nil {
		return "", err
	}
	in := logsInput{Channel: req.String("channel")}
	if err := h.validate.Struct(in); err != nil {
		return "", fmt.Errorf("%v: %w", err, models.ErrMalformedConfig)
	}
	enabled, hasEnabled := req.Bool("enabled")
	if !hasEnabled && in.Channel == "" {
		return "", fmt.Errorf("nothing to change: %w", models.ErrMalformedConfig)
	}

	if in.Channel != "" {
		if err := h.store.SetLogChannel(ctx, req.GuildID, in.Channel); err != nil {
			return "", err
		}
	}
	if hasEnabled {
		if err := h.store.SetLogging(ctx, req.GuildID, enabled); err != nil {
			return "", err
		}
	}

	policy, err := h.store.GetPolicy(ctx, req.GuildID)
	if err != nil {
		return "", err
	}
	if _, ok := policy.LogTarget(); policy.LogEnabled && !ok {
		return "Logging is on but no valid channel is set yet.", nil
	}
	return fmt.Sprintf("Logging is %s.", onOff(policy.LogEnabled)), nil
}
