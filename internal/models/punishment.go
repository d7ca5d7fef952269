package models

import (
	"fmt"
	"strings"
	"time"
)

// Punishment is the closed set of sanctions a module can be configured with.
type Punishment string

const (
	PunishRestrict Punishment = "restrict"
	PunishRemove   Punishment = "remove"
	PunishBan      Punishment = "ban"
)

const (
	DefaultPunishment = PunishRemove
	RestrictDuration  = time.Hour
)

var AllPunishments = []Punishment{PunishRestrict, PunishRemove, PunishBan}

// ParsePunishment accepts the canonical names plus the platform verbs
// "timeout" and "kick" that older rows were written with.
func ParsePunishment(s string) (Punishment, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "restrict", "timeout":
		return PunishRestrict, nil
	case "remove", "kick":
		return PunishRemove, nil
	case "ban":
		return PunishBan, nil
	}
	return "", fmt.Errorf("unknown punishment %q: %w", s, ErrMalformedConfig)
}

func (p Punishment) Label() string {
	switch p {
	case PunishRestrict:
		return "Timeout"
	case PunishRemove:
		return "Kick"
	case PunishBan:
		return "Ban"
	}
	return string(p)
}
