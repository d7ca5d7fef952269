package models

import (
	"fmt"
	"strings"
)

// Module is one independently toggleable protection rule.
type Module string

const (
	ModuleInvite        Module = "anti_invite"
	ModuleMention       Module = "anti_ping"
	ModuleWebhook       Module = "anti_webhook"
	ModuleChannelCreate Module = "anti_channel_create"
	ModuleChannelDelete Module = "anti_channel_delete"
	ModuleRoleCreate    Module = "anti_role_create"
	ModuleRoleDelete    Module = "anti_role_delete"
	ModuleBotJoin       Module = "anti_bot_join"
)

var AllModules = []Module{
	ModuleInvite,
	ModuleMention,
	ModuleWebhook,
	ModuleChannelCreate,
	ModuleChannelDelete,
	ModuleRoleCreate,
	ModuleRoleDelete,
	ModuleBotJoin,
}

var moduleTitles = map[Module]string{
	ModuleInvite:        "Anti Invite",
	ModuleMention:       "Anti Ping",
	ModuleWebhook:       "Anti Webhook",
	ModuleChannelCreate: "Anti Channel Create",
	ModuleChannelDelete: "Anti Channel Delete",
	ModuleRoleCreate:    "Anti Role Create",
	ModuleRoleDelete:    "Anti Role Delete",
	ModuleBotJoin:       "Anti Bot Join",
}

func ParseModule(s string) (Module, error) {
	m := Module(strings.ToLower(strings.TrimSpace(s)))
	if !m.Valid() {
		return "", fmt.Errorf("unknown module %q: %w", s, ErrMalformedConfig)
	}
	return m, nil
}

func (m Module) Valid() bool {
	_, ok := moduleTitles[m]
	return ok
}

// Title is the human readable module name used in log records.
func (m Module) Title() string {
	if t, ok := moduleTitles[m]; ok {
		return t
	}
	return string(m)
}

// Reason is the audit log reason attached to every sanction issued by the module.
func (m Module) Reason() string {
	return "Globex Security: " + m.Title() + " Protection"
}

// LimitKind maps a module onto the limit pair that parameterizes it.
func (m Module) LimitKind() (LimitKind, bool) {
	switch m {
	case ModuleInvite:
		return LimitInvite, true
	case ModuleMention:
		return LimitMention, true
	case ModuleWebhook:
		return LimitWebhook, true
	case ModuleBotJoin:
		return LimitBotJoin, true
	}
	return "", false
}
