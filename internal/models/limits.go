package models

import "time"

type LimitKind string

const (
	LimitInvite  LimitKind = "invite"
	LimitMention LimitKind = "ping"
	LimitWebhook LimitKind = "webhook"
	LimitBotJoin LimitKind = "bot"
)

const (
	DefaultLimit  = 1
	DefaultWindow = 10 * time.Second
	// BotJoinWindow is wide enough to count every invitation since the process started.
	BotJoinWindow = 315360000 * time.Second
)

// Limit is a stored (count, window) pair. Nil and zero both fall back to the
// defaults when evaluated; storage keeps them distinct.
type Limit struct {
	Count         *int
	WindowSeconds *int
}

func (l Limit) EffectiveCount() int {
	if l.Count == nil || *l.Count <= 0 {
		return DefaultLimit
	}
	return *l.Count
}

func (l Limit) EffectiveWindow() time.Duration {
	if l.WindowSeconds == nil || *l.WindowSeconds <= 0 {
		return DefaultWindow
	}
	return time.Duration(*l.WindowSeconds) * time.Second
}

// HasWindow reports whether the kind carries a configurable timeframe.
func (k LimitKind) HasWindow() bool {
	return k == LimitInvite || k == LimitMention
}

func ParseLimitKind(s string) (LimitKind, bool) {
	switch k := LimitKind(s); k {
	case LimitInvite, LimitMention, LimitWebhook, LimitBotJoin:
		return k, true
	}
	return "", false
}

type LimitSet struct {
	GuildID string
	Invite  Limit
	Mention Limit
	Webhook Limit
	BotJoin Limit
}

func (ls *LimitSet) For(kind LimitKind) Limit {
	if ls == nil {
		return Limit{}
	}
	switch kind {
	case LimitInvite:
		return ls.Invite
	case LimitMention:
		return ls.Mention
	case LimitWebhook:
		return ls.Webhook
	case LimitBotJoin:
		return ls.BotJoin
	}
	return Limit{}
}
