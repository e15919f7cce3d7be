package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"hustings/contexts/identity-access/access-control/domain/entities"
	"hustings/contexts/identity-access/access-control/ports"
)

// Store is an in-memory role repository for tests and single-process runs.
type Store struct {
	mu            sync.RWMutex
	administrator string
	commissioners map[string]entities.Commissioner
}

// NewStore seeds the administrator, who always starts with a commissioner
// grant of their own.
func NewStore(administrator string) *Store {
	administrator = strings.TrimSpace(administrator)
	store := &Store{
		administrator: administrator,
		commissioners: make(map[string]entities.Commissioner),
	}
	if administrator != "" {
		store.commissioners[administrator] = entities.Commissioner{
			Address: administrator,
			AddedBy: administrator,
			AddedAt: time.Now().UTC(),
		}
	}
	return store
}

func (s *Store) Administrator(_ context.Context) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.administrator, nil
}

func (s *Store) SetAdministrator(_ context.Context, address string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.administrator = strings.TrimSpace(address)
	return nil
}

func (s *Store) IsCommissioner(_ context.Context, address string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.commissioners[strings.TrimSpace(address)]
	return ok, nil
}

func (s *Store) AddCommissioner(_ context.Context, grant entities.Commissioner) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	address := strings.TrimSpace(grant.Address)
	if _, exists := s.commissioners[address]; exists {
		return nil
	}
	grant.Address = address
	s.commissioners[address] = grant
	return nil
}

func (s *Store) RemoveCommissioner(_ context.Context, address string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.commissioners, strings.TrimSpace(address))
	return nil
}

func (s *Store) ListCommissioners(_ context.Context) ([]entities.Commissioner, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	items := make([]entities.Commissioner, 0, len(s.commissioners))
	for _, grant := range s.commissioners {
		items = append(items, grant)
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].AddedAt.Equal(items[j].AddedAt) {
			return items[i].Address < items[j].Address
		}
		return items[i].AddedAt.Before(items[j].AddedAt)
	})
	return items, nil
}

func (s *Store) Now() time.Time {
	return time.Now().UTC()
}

var _ ports.RoleRepository = (*Store)(nil)
var _ ports.Clock = (*Store)(nil)
