package directory

import (
	"context"
	"sync"

	"github.com/yabetsTesfaye/addiscares-backend/pkg/domain"
	"github.com/yabetsTesfaye/addiscares-backend/pkg/platform/sentinel"
)

type InMemoryStore struct {
	mu         sync.RWMutex
	principals map[domain.PrincipalID]Principal
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{principals: make(map[domain.PrincipalID]Principal)}
}

func (s *InMemoryStore) Save(_ context.Context, p Principal) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.principals[p.ID] = p
	return nil
}

func (s *InMemoryStore) FindByID(_ context.Context, id domain.PrincipalID) (Principal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.principals[id]
	if !ok {
		return Principal{}, sentinel.ErrNotFound
	}
	return p, nil
}

func (s *InMemoryStore) ListByRole(_ context.Context, role domain.Role) ([]Principal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var members []Principal
	for _, p := range s.principals {
		if p.Role == role && p.Active {
			members = append(members, p)
		}
	}
	return members, nil
}
