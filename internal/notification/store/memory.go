package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/yabetsTesfaye/addiscares-backend/internal/notification/models"
	"github.com/yabetsTesfaye/addiscares-backend/pkg/domain"
	"github.com/yabetsTesfaye/addiscares-backend/pkg/platform/sentinel"
)

// InMemoryStore keeps documents in a map behind one mutex. The lock scope
// makes every operation a single atomic unit per the Store contract, which
// is what lets the unit suites exercise the same semantics the Postgres
// store provides transactionally.
type InMemoryStore struct {
	mu   sync.RWMutex
	docs map[domain.NotificationID]*models.Notification
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{docs: make(map[domain.NotificationID]*models.Notification)}
}

func (s *InMemoryStore) Create(_ context.Context, n *models.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.docs[n.ID]; exists {
		return sentinel.ErrConflict
	}
	s.docs[n.ID] = n.Clone()
	return nil
}

func (s *InMemoryStore) FindByID(_ context.Context, id domain.NotificationID) (*models.Notification, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n, ok := s.docs[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return n.Clone(), nil
}

func (s *InMemoryStore) ListForUser(_ context.Context, user domain.PrincipalID, role domain.Role, opts models.ListOptions) ([]models.InboxItem, error) {
	opts = opts.Normalize()

	s.mu.RLock()
	var items []models.InboxItem
	for _, n := range s.docs {
		if !models.VisibleTo(n, user, role) {
			continue
		}
		readByUser := n.ReadByUser(user)
		if opts.ReadFilter != nil && readByUser != *opts.ReadFilter {
			continue
		}
		items = append(items, models.InboxItem{Notification: n.Clone(), ReadByUser: readByUser})
	}
	s.mu.RUnlock()

	sortNewestFirst(items)
	if opts.Skip >= len(items) {
		return nil, nil
	}
	items = items[opts.Skip:]
	if len(items) > opts.Limit {
		items = items[:opts.Limit]
	}
	return items, nil
}

func (s *InMemoryStore) ListSent(_ context.Context, sender domain.PrincipalID) ([]*models.Notification, error) {
	s.mu.RLock()
	var sent []*models.Notification
	for _, n := range s.docs {
		if n.Sender == sender {
			sent = append(sent, n.Clone())
		}
	}
	s.mu.RUnlock()

	sort.Slice(sent, func(i, j int) bool {
		if !sent[i].CreatedAt.Equal(sent[j].CreatedAt) {
			return sent[i].CreatedAt.After(sent[j].CreatedAt)
		}
		return sent[i].ID.String() < sent[j].ID.String()
	})
	return sent, nil
}

func (s *InMemoryStore) ListUnreadIDs(_ context.Context, user domain.PrincipalID, role domain.Role) ([]domain.NotificationID, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var ids []domain.NotificationID
	for _, n := range s.docs {
		if models.VisibleTo(n, user, role) && !n.ReadByUser(user) {
			ids = append(ids, n.ID)
		}
	}
	return ids, nil
}

func (s *InMemoryStore) CountUnread(_ context.Context, user domain.PrincipalID, role domain.Role) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	count := 0
	for _, n := range s.docs {
		if models.VisibleTo(n, user, role) && !n.ReadByUser(user) {
			count++
		}
	}
	return count, nil
}

func (s *InMemoryStore) MarkRead(_ context.Context, id domain.NotificationID, user domain.PrincipalID, at time.Time) (*models.Notification, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, ok := s.docs[id]
	if !ok {
		return nil, false, sentinel.ErrNotFound
	}
	newly := n.AppendRead(user, at)
	if newly {
		n.UpdatedAt = at
	}
	return n.Clone(), newly, nil
}

func (s *InMemoryStore) Hide(_ context.Context, id domain.NotificationID, user domain.PrincipalID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, ok := s.docs[id]
	if !ok {
		return false, sentinel.ErrNotFound
	}
	return n.AppendHidden(user), nil
}

func (s *InMemoryStore) SoftDelete(_ context.Context, id domain.NotificationID, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, ok := s.docs[id]
	if !ok {
		return sentinel.ErrNotFound
	}
	n.IsDeleted = true
	n.UpdatedAt = at
	return nil
}

func (s *InMemoryStore) HardDelete(_ context.Context, id domain.NotificationID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.docs[id]; !ok {
		return sentinel.ErrNotFound
	}
	delete(s.docs, id)
	return nil
}

func (s *InMemoryStore) Modify(_ context.Context, id domain.NotificationID, by domain.PrincipalID, update models.ContentUpdate, at time.Time) (*models.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, ok := s.docs[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	n.ApplyContentUpdate(update, by, at)
	return n.Clone(), nil
}

func sortNewestFirst(items []models.InboxItem) {
	sort.Slice(items, func(i, j int) bool {
		if !items[i].CreatedAt.Equal(items[j].CreatedAt) {
			return items[i].CreatedAt.After(items[j].CreatedAt)
		}
		return items[i].ID.String() < items[j].ID.String()
	})
}
