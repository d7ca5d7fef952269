package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/R1das67/globex-security/internal/models"
)

type listInput struct {
	Action string `validate:"required,oneof=add remove view"`
	Type   string `validate:"required"`
	User   string `validate:"omitempty,numeric"`
}

// handleList is restricted to the guild owner.
func (h *Handler) handleList(ctx context.Context, req Request) (string, error) {
	if err := h.checkPermissions(ctx, req, true); err != nil {
		return "", err
	}
	in := listInput{Action: req.String("action"), Type: req.String("type"), User: req.String("user")}
	if err := h.validate.Struct(in); err != nil {
		return "", fmt.Errorf("%v: %w", err, models.ErrMalformedConfig)
	}
	list, err := models.ParseListType(in.Type)
	if err != nil {
		return "", err
	}

	if in.Action == "view" {
		entries, err := h.store.ListMembers(ctx, req.GuildID, list)
		if err != nil {
			return "", err
		}
		if len(entries) == 0 {
			return fmt.Sprintf("The %s is empty.", list), nil
		}
		var b strings.Builder
		fmt.Fprintf(&b, "**%s** (%d)\n", list, len(entries))
		for _, e := range entries {
			fmt.Fprintf(&b, "<@%s>\n", e.UserID)
		}
		return strings.TrimSuffix(b.String(), "\n"), nil
	}

	if in.User == "" {
		return "", fmt.Errorf("a user is required: %w", models.ErrMalformedConfig)
	}
	if in.Action == "add" {
		if err := h.store.AddToList(ctx, req.GuildID, in.User, list); err != nil {
			return "", err
		}
		return fmt.Sprintf("<@%s> added to the %s.", in.User, list), nil
	}
	if err := h.store.RemoveFromList(ctx, req.GuildID, in.User, list); err != nil {
		return "", err
	}
	return fmt.Sprintf("<@%s> removed from the %s.", in.User, list), nil
}
