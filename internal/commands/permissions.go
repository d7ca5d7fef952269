package commands

import (
	"context"
	"errors"
	"fmt"

	"github.com/R1das67/globex-security/internal/models"
)

var ErrNotAllowed = errors.New("not allowed")

// checkPermissions admits the guild owner and, unless ownerOnly is set,
// users on the trusted list.
func (h *Handler) checkPermissions(ctx context.Context, req Request, ownerOnly bool) error {
	if req.UserID != "" && req.UserID == req.OwnerID {
		return nil
	}
	if ownerOnly {
		return ErrNotAllowed
	}
	trusted, err := h.store.IsOnList(ctx, req.GuildID, req.UserID, models.ListTrusted)
	if err != nil {
		return fmt.Errorf("trusted check: %w", err)
	}
	if !trusted {
		return ErrNotAllowed
	}
	return nil
}
