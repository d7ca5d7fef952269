package decision

import (
	"sync"
	"time"
)

// CooldownManager remembers when a user was last punished in a guild.
// A zero duration disables it.
type CooldownManager struct {
	mu        sync.RWMutex
	cooldowns map[string]map[string]time.Time
	duration  time.Duration
	now       func() time.Time
}

func NewCooldownManager(duration time.Duration) *CooldownManager {
	return &CooldownManager{
		cooldowns: make(map[string]map[string]time.Time),
		duration:  duration,
		now:       time.Now,
	}
}

func (cm *CooldownManager) CanExecute(guildID, userID string) bool {
	if cm.duration <= 0 {
		return true
	}
	cm.mu.RLock()
	defer cm.mu.RUnlock()

	last, exists := cm.cooldowns[guildID][userID]
	if !exists {
		return true
	}
	return cm.now().Sub(last) >= cm.duration
}

// TryAcquire checks and records in one step so concurrent events for the
// same user punish at most once per cooldown.
func (cm *CooldownManager) TryAcquire(guildID, userID string) bool {
	if cm.duration <= 0 {
		return true
	}
	cm.mu.Lock()
	defer cm.mu.Unlock()

	now := cm.now()
	guildCooldowns, exists := cm.cooldowns[guildID]
	if !exists {
		guildCooldowns = make(map[string]time.Time)
		cm.cooldowns[guildID] = guildCooldowns
	}
	if last, ok := guildCooldowns[userID]; ok && now.Sub(last) < cm.duration {
		return false
	}
	guildCooldowns[userID] = now
	return true
}

func (cm *CooldownManager) Reset(guildID string) {
	cm.mu.Lock()
	defer cm.mu.Unlock()

	delete(cm.cooldowns, guildID)
}

func (cm *CooldownManager) GetRemainingCooldown(guildID, userID string) time.Duration {
	cm.mu.RLock()
	defer cm.mu.RUnlock()

	last, exists := cm.cooldowns[guildID][userID]
	if !exists {
		return 0
	}

	remaining := cm.duration - cm.now().Sub(last)
	if remaining < 0 {
		return 0
	}
	return remaining
}

// Prune drops entries whose cooldown has elapsed.
func (cm *CooldownManager) Prune() {
	cm.mu.Lock()
	defer cm.mu.Unlock()

	now := cm.now()
	for guildID, users := range cm.cooldowns {
		for userID, last := range users {
			if now.Sub(last) >= cm.duration {
				delete(users, userID)
			}
		}
		if len(users) == 0 {
			delete(cm.cooldowns, guildID)
		}
	}
}
