package models

import "time"

type EventKind uint8

const (
	EventUnknown EventKind = iota
	EventMessageCreate
	EventChannelCreate
	EventChannelDelete
	EventRoleCreate
	EventRoleDelete
	EventWebhooksUpdate
	EventMemberJoin
)

func (k EventKind) String() string {
	switch k {
	case EventMessageCreate:
		return "message_create"
	case EventChannelCreate:
		return "channel_create"
	case EventChannelDelete:
		return "channel_delete"
	case EventRoleCreate:
		return "role_create"
	case EventRoleDelete:
		return "role_delete"
	case EventWebhooksUpdate:
		return "webhooks_update"
	case EventMemberJoin:
		return "member_join"
	}
	return "unknown"
}

// Event is a platform event reduced to what the detectors read.
type Event struct {
	Kind    EventKind
	GuildID string
	OwnerID string

	// ChannelID is the channel a message was posted in or whose webhooks changed.
	ChannelID string
	// TargetID is the message, channel or role the event is about.
	TargetID string

	// UserID is the message author or the joining member.
	UserID  string
	UserBot bool

	Content         string
	MentionEveryone bool
	WebhookID       string

	ReceivedAt time.Time
}
