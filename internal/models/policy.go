package models

import "strconv"

// ModulePolicy is the stored state of one module. A nil Punishment means the
// operator never chose one and DefaultPunishment applies.
type ModulePolicy struct {
	Enabled    bool
	Punishment *Punishment
}

func (mp ModulePolicy) EffectivePunishment() Punishment {
	if mp.Punishment == nil {
		return DefaultPunishment
	}
	return *mp.Punishment
}

// Policy is the per-guild settings row.
type Policy struct {
	GuildID      string
	Modules      map[Module]ModulePolicy
	LogEnabled   bool
	LogChannelID *string
}

func NewPolicy(guildID string) *Policy {
	return &Policy{
		GuildID: guildID,
		Modules: make(map[Module]ModulePolicy, len(AllModules)),
	}
}

func (p *Policy) Module(m Module) ModulePolicy {
	if p == nil {
		return ModulePolicy{}
	}
	return p.Modules[m]
}

func (p *Policy) Enabled(m Module) bool {
	return p.Module(m).Enabled
}

func (p *Policy) PunishmentFor(m Module) Punishment {
	return p.Module(m).EffectivePunishment()
}

// LogTarget returns the channel punishment records go to, if logging is on
// and the stored channel is a usable snowflake.
func (p *Policy) LogTarget() (string, bool) {
	if p == nil || !p.LogEnabled || p.LogChannelID == nil {
		return "", false
	}
	if !IsSnowflake(*p.LogChannelID) {
		return "", false
	}
	return *p.LogChannelID, true
}

func IsSnowflake(id string) bool {
	if id == "" {
		return false
	}
	_, err := strconv.ParseUint(id, 10, 64)
	return err == nil
}
