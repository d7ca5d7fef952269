package database

import (
	"context"
	"strings"
	"time"

	"github.com/R1das67/globex-security/internal/models"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// Store fronts the Database with short-lived read caches. Every write made
// through the Store drops the affected cache entries, so only writes from
// another process can be observed late.
type Store struct {
	*Database

	policies *expirable.LRU[string, *models.Policy]
	limits   *expirable.LRU[string, *models.LimitSet]
	lists    *expirable.LRU[string, bool]
}

func NewStore(db *Database, size int, ttl time.Duration) *Store {
	return &Store{
		Database: db,
		policies: expirable.NewLRU[string, *models.Policy](size, nil, ttl),
		limits:   expirable.NewLRU[string, *models.LimitSet](size, nil, ttl),
		lists:    expirable.NewLRU[string, bool](size*4, nil, ttl),
	}
}

func listKey(guildID, userID string, list models.ListType) string {
	return guildID + ":" + userID + ":" + string(list)
}

func (s *Store) GetPolicy(ctx context.Context, guildID string) (*models.Policy, error) {
	if p, ok := s.policies.Get(guildID); ok {
		return p, nil
	}
	p, err := s.Database.GetPolicy(ctx, guildID)
	if err != nil {
		return nil, err
	}
	s.policies.Add(guildID, p)
	return p, nil
}

func (s *Store) GetLimits(ctx context.Context, guildID string) (*models.LimitSet, error) {
	if l, ok := s.limits.Get(guildID); ok {
		return l, nil
	}
	l, err := s.Database.GetLimits(ctx, guildID)
	if err != nil {
		return nil, err
	}
	s.limits.Add(guildID, l)
	return l, nil
}

func (s *Store) IsOnList(ctx context.Context, guildID, userID string, list models.ListType) (bool, error) {
	key := listKey(guildID, userID, list)
	if v, ok := s.lists.Get(key); ok {
		return v, nil
	}
	v, err := s.Database.IsOnList(ctx, guildID, userID, list)
	if err != nil {
		return false, err
	}
	s.lists.Add(key, v)
	return v, nil
}

func (s *Store) SetModuleEnabled(ctx context.Context, guildID string, module models.Module, enabled bool) error {
	defer s.policies.Remove(guildID)
	return s.Database.SetModuleEnabled(ctx, guildID, module, enabled)
}

func (s *Store) SetPunishment(ctx context.Context, guildID string, module models.Module, punishment models.Punishment) error {
	defer s.policies.Remove(guildID)
	return s.Database.SetPunishment(ctx, guildID, module, punishment)
}

func (s *Store) SetLogging(ctx context.Context, guildID string, enabled bool) error {
	defer s.policies.Remove(guildID)
	return s.Database.SetLogging(ctx, guildID, enabled)
}

func (s *Store) SetLogChannel(ctx context.Context, guildID, channelID string) error {
	defer s.policies.Remove(guildID)
	return s.Database.SetLogChannel(ctx, guildID, channelID)
}

func (s *Store) SetLimit(ctx context.Context, guildID string, kind models.LimitKind, count int, windowSeconds *int) error {
	defer s.limits.Remove(guildID)
	return s.Database.SetLimit(ctx, guildID, kind, count, windowSeconds)
}

func (s *Store) AddToList(ctx context.Context, guildID, userID string, list models.ListType) error {
	defer s.lists.Remove(listKey(guildID, userID, list))
	return s.Database.AddToList(ctx, guildID, userID, list)
}

func (s *Store) RemoveFromList(ctx context.Context, guildID, userID string, list models.ListType) error {
	defer s.lists.Remove(listKey(guildID, userID, list))
	return s.Database.RemoveFromList(ctx, guildID, userID, list)
}

// Forget drops everything cached for a guild.
func (s *Store) Forget(guildID string) {
	s.policies.Remove(guildID)
	s.limits.Remove(guildID)
	for _, key := range s.lists.Keys() {
		if strings.HasPrefix(key, guildID+":") {
			s.lists.Remove(key)
		}
	}
}
