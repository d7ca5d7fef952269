package commands

import (
	"context"
	"fmt"

	"github.com/R1das67/globex-security/internal/database"
	"github.com/R1das67/globex-security/internal/models"
)

type limitInput struct {
	Kind    string `validate:"required,oneof=invite ping webhook bot"`
	Count   int    `validate:"min=1,max=99"`
	Seconds *int   `validate:"omitempty,min=1,max=99999"`
}

func (h *Handler) handleLimit(ctx context.Context, req Request) (string, error) {
	if err := h.checkPermissions(ctx, req, false); err != nil {
		return "", err
	}
	in := limitInput{Kind: req.String("kind")}
	in.Count, _ = req.Int("count")
	if secs, ok := req.Int("seconds"); ok {
		in.Seconds = &secs
	}
	if err := h.validate.Struct(in); err != nil {
		return "", fmt.Errorf("%v: %w", err, models.ErrMalformedConfig)
	}

	kind, ok := models.ParseLimitKind(in.Kind)
	if !ok {
		return "", fmt.Errorf("limit kind %q: %w", in.Kind, models.ErrMalformedConfig)
	}
	if err := database.ValidateLimit(kind, in.Count, in.Seconds); err != nil {
		return "", err
	}
	if err := h.store.SetLimit(ctx, req.GuildID, kind, in.Count, in.Seconds); err != nil {
		return "", err
	}

	if in.Seconds != nil {
		return fmt.Sprintf("%s limit set to %d per %ds.", kind, in.Count, *in.Seconds), nil
	}
	return fmt.Sprintf("%s limit set to %d.", kind, in.Count), nil
}
