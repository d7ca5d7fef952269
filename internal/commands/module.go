package commands

import (
	"context"
	"fmt"

	"github.com/R1das67/globex-security/internal/models"
)

type moduleInput struct {
	Module     string `validate:"required"`
	Punishment string `validate:"omitempty,oneof=restrict remove ban kick timeout"`
}

func (h *Handler) handleModule(ctx context.Context, req Request) (string, error) {
	if err := h.checkPermissions(ctx, req, false); err != nil {
		return "", err
	}
	in := moduleInput{Module: req.String("name"), Punishment: req.String("punishment")}
	if err := h.validate.Struct(in); err != nil {
		return "", fmt.Errorf("%v: %w", err, models.ErrMalformedConfig)
	}
	module, err := models.ParseModule(in.Module)
	if err != nil {
		return "", err
	}
	enabled, hasEnabled := req.Bool("enabled")
	if !hasEnabled && in.Punishment == "" {
		return "", fmt.Errorf("nothing to change: %w", models.ErrMalformedConfig)
	}

	if in.Punishment != "" {
		p, err := models.ParsePunishment(in.Punishment)
		if err != nil {
			return "", err
		}
		if err := h.store.SetPunishment(ctx, req.GuildID, module, p); err != nil {
			return "", err
		}
	}
	if hasEnabled {
		if err := h.store.SetModuleEnabled(ctx, req.GuildID, module, enabled); err != nil {
			return "", err
		}
	}

	policy, err := h.store.GetPolicy(ctx, req.GuildID)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s is now %s, punishment %s.", module.Title(), onOff(policy.Enabled(module)), policy.PunishmentFor(module).Label()), nil
}
