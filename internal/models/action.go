package models

type RevertKind uint8

const (
	RevertChannel RevertKind = iota + 1
	RevertRole
	RevertWebhook
	RevertMember
)

func (k RevertKind) String() string {
	switch k {
	case RevertChannel:
		return "channel"
	case RevertRole:
		return "role"
	case RevertWebhook:
		return "webhook"
	case RevertMember:
		return "member"
	}
	return "unknown"
}

// Revert undoes a state change: deletes a created object or expels a joined member.
type Revert struct {
	Kind     RevertKind
	TargetID string
	Reason   string
}

// Verdict is what one detector decided for one event.
type Verdict struct {
	Module   Module
	Suppress bool
	Reverts  []Revert
	// PunishUserID is empty when nobody is punished.
	PunishUserID string
}

func (v Verdict) IsNoop() bool {
	return !v.Suppress && len(v.Reverts) == 0 && v.PunishUserID == ""
}

type Outcome uint8

const (
	OutcomeNoAction Outcome = iota
	OutcomeContentSuppressed
	OutcomeReverted
	OutcomePunished
	OutcomeRevertedPunished
)

func (o Outcome) String() string {
	switch o {
	case OutcomeContentSuppressed:
		return "content_suppressed"
	case OutcomeReverted:
		return "reverted"
	case OutcomePunished:
		return "punished"
	case OutcomeRevertedPunished:
		return "reverted_punished"
	}
	return "no_action"
}

// OutcomeOf classifies a verdict by the strongest step it carries.
func OutcomeOf(v Verdict) Outcome {
	switch {
	case v.PunishUserID != "" && len(v.Reverts) > 0:
		return OutcomeRevertedPunished
	case v.PunishUserID != "":
		return OutcomePunished
	case len(v.Reverts) > 0:
		return OutcomeReverted
	case v.Suppress:
		return OutcomeContentSuppressed
	}
	return OutcomeNoAction
}
