package service

import (
	"context"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"github.com/yabetsTesfaye/addiscares-backend/internal/directory"
	"github.com/yabetsTesfaye/addiscares-backend/internal/notification/events"
	"github.com/yabetsTesfaye/addiscares-backend/internal/notification/models"
	"github.com/yabetsTesfaye/addiscares-backend/internal/notification/store"
	"github.com/yabetsTesfaye/addiscares-backend/pkg/domain"
	dErrors "github.com/yabetsTesfaye/addiscares-backend/pkg/domain-errors"
	"github.com/yabetsTesfaye/addiscares-backend/pkg/platform/sentinel"
	"github.com/yabetsTesfaye/addiscares-backend/pkg/requestcontext"
)

// captureEmitter records emitted events synchronously for assertions.
type captureEmitter struct {
	mu     sync.Mutex
	events []events.Event
}

func (c *captureEmitter) Emit(_ context.Context, event events.Event) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, event)
}

func (c *captureEmitter) actions() []events.Action {
	c.mu.Lock()
	defer c.mu.Unlock()
	actions := make([]events.Action, 0, len(c.events))
	for _, e := range c.events {
		actions = append(actions, e.Action)
	}
	return actions
}

type ServiceSuite struct {
	suite.Suite
	ctx     context.Context
	store   *store.InMemoryStore
	dir     *MockDirectory
	known   map[domain.PrincipalID]directory.Principal
	emitter *captureEmitter
	service *Service
	now     time.Time
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.now = time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	s.ctx = requestcontext.WithTime(context.Background(), s.now)
	s.store = store.NewInMemoryStore()
	s.known = make(map[domain.PrincipalID]directory.Principal)
	s.emitter = &captureEmitter{}

	ctrl := gomock.NewController(s.T())
	s.dir = NewMockDirectory(ctrl)
	s.dir.EXPECT().FindByID(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, id domain.PrincipalID) (directory.Principal, error) {
			if p, ok := s.known[id]; ok {
				return p, nil
			}
			return directory.Principal{}, sentinel.ErrNotFound
		}).AnyTimes()

	s.service = NewService(s.store, s.dir, s.emitter, nil, nil, slog.Default())
}

func (s *ServiceSuite) register(role domain.Role) domain.PrincipalID {
	id := domain.PrincipalID(uuid.New())
	s.known[id] = directory.Principal{ID: id, Name: "p-" + id.String()[:8], Role: role, Active: true}
	return id
}

func (s *ServiceSuite) create(sender domain.PrincipalID, a models.Addressing) *models.Notification {
	n, err := s.service.Create(s.ctx, sender, CreateInput{
		Title:      "Report Status Updated",
		Message:    "your report moved to in_progress",
		Addressing: a,
	})
	s.Require().NoError(err)
	return n
}

func (s *ServiceSuite) TestCreateValidation() {
	sender := s.register(domain.RoleGovernment)
	recipient := s.register(domain.RoleReporter)

	s.Run("missing sender is unauthorized", func() {
		_, err := s.service.Create(s.ctx, domain.PrincipalID{}, CreateInput{
			Title: "t", Message: "m", Addressing: models.DirectTo(recipient),
		})
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})

	s.Run("blank title rejected", func() {
		_, err := s.service.Create(s.ctx, sender, CreateInput{
			Title: "   ", Message: "m", Addressing: models.DirectTo(recipient),
		})
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeBadRequest))
	})

	s.Run("blank message rejected", func() {
		_, err := s.service.Create(s.ctx, sender, CreateInput{
			Title: "t", Message: "", Addressing: models.DirectTo(recipient),
		})
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeBadRequest))
	})

	s.Run("zero addressing rejected", func() {
		_, err := s.service.Create(s.ctx, sender, CreateInput{Title: "t", Message: "m"})
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeBadRequest))
	})

	s.Run("unknown recipient rejected", func() {
		_, err := s.service.Create(s.ctx, sender, CreateInput{
			Title: "t", Message: "m",
			Addressing: models.DirectTo(domain.PrincipalID(uuid.New())),
		})
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeBadRequest))
		s.Contains(err.Error(), "not a known principal")
	})
}

func (s *ServiceSuite) TestCreateShapes() {
	sender := s.register(domain.RoleGovernment)
	recipient := s.register(domain.RoleReporter)

	s.Run("direct pre-marks the sender", func() {
		n := s.create(sender, models.DirectTo(recipient))
		s.True(n.ReadByUser(sender))
		s.False(n.ReadByUser(recipient))
		s.False(n.Read, "flag follows the intended recipient, not the sender")
	})

	s.Run("bulk never pre-marks the sender", func() {
		n := s.create(sender, models.BulkTo([]models.RecipientEntry{{User: recipient}}))
		s.Empty(n.ReadBy)
	})

	s.Run("broadcast pre-marks the sender", func() {
		n := s.create(sender, models.BroadcastToAll())
		s.True(n.ReadByUser(sender))
	})

	s.Run("defaults to the info type and stamps request time", func() {
		n := s.create(sender, models.DirectTo(recipient))
		s.Equal(domain.TypeInfo, n.Type)
		s.Equal(s.now, n.CreatedAt)
	})

	s.Run("emits a created event", func() {
		s.Contains(s.emitter.actions(), events.ActionCreated)
	})
}

func (s *ServiceSuite) TestFindForUser() {
	sender := s.register(domain.RoleGovernment)
	recipient := s.register(domain.RoleReporter)
	n := s.create(sender, models.DirectTo(recipient))

	s.Run("invalid role rejected", func() {
		_, err := s.service.FindForUser(s.ctx, recipient, domain.Role("mayor"), models.ListOptions{})
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeBadRequest))
	})

	s.Run("ledger overlays the legacy read flag", func() {
		_, err := s.service.MarkAsRead(s.ctx, n.ID, recipient)
		s.Require().NoError(err)

		items, err := s.service.FindForUser(s.ctx, recipient, domain.RoleReporter, models.ListOptions{})
		s.Require().NoError(err)
		s.Require().Len(items, 1)
		s.True(items[0].ReadByUser)
		s.True(items[0].Read, "legacy flag mirrors the per-caller value in responses")
	})

	s.Run("sender does not see their own notification", func() {
		items, err := s.service.FindForUser(s.ctx, sender, domain.RoleGovernment, models.ListOptions{})
		s.Require().NoError(err)
		s.Empty(items)
	})
}

func (s *ServiceSuite) TestFindSent() {
	sender := s.register(domain.RoleGovernment)
	recipient := s.register(domain.RoleReporter)
	n := s.create(sender, models.DirectTo(recipient))

	_, err := s.service.MarkAsRead(s.ctx, n.ID, recipient)
	s.Require().NoError(err)

	items, err := s.service.FindSent(s.ctx, sender)
	s.Require().NoError(err)
	s.Require().Len(items, 1)
	s.Equal(2, items[0].ReadCount, "sender pre-mark plus the recipient receipt")
	s.False(items[0].WasModified)
}

func (s *ServiceSuite) TestMarkAsRead() {
	sender := s.register(domain.RoleGovernment)
	recipient := s.register(domain.RoleReporter)
	n := s.create(sender, models.DirectTo(recipient))

	first, err := s.service.MarkAsRead(s.ctx, n.ID, recipient)
	s.Require().NoError(err)
	s.True(first.Read)

	again, err := s.service.MarkAsRead(s.ctx, n.ID, recipient)
	s.Require().NoError(err)
	s.Len(again.ReadBy, 2)

	readEvents := 0
	for _, a := range s.emitter.actions() {
		if a == events.ActionRead {
			readEvents++
		}
	}
	s.Equal(1, readEvents, "re-marking emits nothing")

	s.Run("unknown notification maps to not found", func() {
		_, err := s.service.MarkAsRead(s.ctx, domain.NewNotificationID(), recipient)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}

func (s *ServiceSuite) TestMarkAllAsRead() {
	sender := s.register(domain.RoleGovernment)
	recipient := s.register(domain.RoleReporter)
	for range 5 {
		s.create(sender, models.DirectTo(recipient))
	}

	updated, err := s.service.MarkAllAsRead(s.ctx, recipient, domain.RoleReporter)
	s.Require().NoError(err)
	s.Equal(5, updated)

	s.Run("a re-run converges to zero", func() {
		updated, err := s.service.MarkAllAsRead(s.ctx, recipient, domain.RoleReporter)
		s.Require().NoError(err)
		s.Zero(updated)
	})

	s.Run("count drops to zero", func() {
		s.Zero(s.service.UnreadCount(s.ctx, recipient, domain.RoleReporter))
	})
}

func (s *ServiceSuite) TestMarkAllAsReadPartialFailure() {
	sender := s.register(domain.RoleGovernment)
	recipient := s.register(domain.RoleReporter)
	a := s.create(sender, models.DirectTo(recipient))
	b := s.create(sender, models.DirectTo(recipient))

	failing := &flakyStore{InMemoryStore: s.store, failOn: a.ID}
	svc := NewService(failing, s.dir, s.emitter, nil, nil, slog.Default())

	updated, err := svc.MarkAllAsRead(s.ctx, recipient, domain.RoleReporter)
	s.Require().NoError(err, "item failures never fail the batch")
	s.Equal(1, updated)

	s.Run("the failed item is still unread and a re-run picks it up", func() {
		failing.failOn = domain.NotificationID{}
		updated, err := svc.MarkAllAsRead(s.ctx, recipient, domain.RoleReporter)
		s.Require().NoError(err)
		s.Equal(1, updated)

		final, err := s.store.FindByID(s.ctx, b.ID)
		s.Require().NoError(err)
		s.True(final.ReadByUser(recipient))
	})
}

func (s *ServiceSuite) TestUnreadCountFailSoft() {
	recipient := s.register(domain.RoleReporter)
	broken := &brokenCountStore{InMemoryStore: s.store}
	svc := NewService(broken, s.dir, s.emitter, nil, nil, slog.Default())

	s.Zero(svc.UnreadCount(s.ctx, recipient, domain.RoleReporter), "store failure degrades to zero")
}

func (s *ServiceSuite) TestHide() {
	sender := s.register(domain.RoleGovernment)
	recipient := s.register(domain.RoleReporter)
	n := s.create(sender, models.DirectTo(recipient))

	s.Require().NoError(s.service.Hide(s.ctx, n.ID, recipient))
	s.Require().NoError(s.service.Hide(s.ctx, n.ID, recipient), "re-hide is a no-op")

	hiddenEvents := 0
	for _, a := range s.emitter.actions() {
		if a == events.ActionHidden {
			hiddenEvents++
		}
	}
	s.Equal(1, hiddenEvents)

	items, err := s.service.FindForUser(s.ctx, recipient, domain.RoleReporter, models.ListOptions{})
	s.Require().NoError(err)
	s.Empty(items)
}

func (s *ServiceSuite) TestDelete() {
	sender := s.register(domain.RoleGovernment)
	recipient := s.register(domain.RoleReporter)
	admin := s.register(domain.RoleAdmin)

	s.Run("random principal is forbidden", func() {
		n := s.create(sender, models.DirectTo(recipient))
		_, err := s.service.Delete(s.ctx, n.ID, recipient, domain.RoleReporter)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeForbidden))
	})

	s.Run("sender delete of a live document is hard", func() {
		n := s.create(sender, models.DirectTo(recipient))
		hard, err := s.service.Delete(s.ctx, n.ID, sender, domain.RoleGovernment)
		s.Require().NoError(err)
		s.True(hard)

		_, err = s.store.FindByID(s.ctx, n.ID)
		s.Require().ErrorIs(err, sentinel.ErrNotFound)
	})

	s.Run("sender delete of an already soft-deleted document stays soft", func() {
		n := s.create(sender, models.DirectTo(recipient))
		s.Require().NoError(s.store.SoftDelete(s.ctx, n.ID, s.now))

		hard, err := s.service.Delete(s.ctx, n.ID, sender, domain.RoleGovernment)
		s.Require().NoError(err)
		s.False(hard)

		found, err := s.store.FindByID(s.ctx, n.ID)
		s.Require().NoError(err)
		s.True(found.IsDeleted, "document is retained with the deleted mark")
	})

	s.Run("admin delete is always hard", func() {
		n := s.create(sender, models.DirectTo(recipient))
		s.Require().NoError(s.store.SoftDelete(s.ctx, n.ID, s.now))

		hard, err := s.service.Delete(s.ctx, n.ID, admin, domain.RoleAdmin)
		s.Require().NoError(err)
		s.True(hard)

		_, err = s.store.FindByID(s.ctx, n.ID)
		s.Require().ErrorIs(err, sentinel.ErrNotFound)
	})
}

func (s *ServiceSuite) TestModify() {
	sender := s.register(domain.RoleGovernment)
	recipient := s.register(domain.RoleReporter)
	official := s.register(domain.RoleGovernment)

	s.Run("empty update rejected", func() {
		n := s.create(sender, models.DirectTo(recipient))
		_, err := s.service.Modify(s.ctx, n.ID, sender, domain.RoleGovernment, models.ContentUpdate{})
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeBadRequest))
	})

	s.Run("blank replacement rejected", func() {
		n := s.create(sender, models.DirectTo(recipient))
		blank := "  "
		_, err := s.service.Modify(s.ctx, n.ID, sender, domain.RoleGovernment, models.ContentUpdate{Title: &blank})
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeBadRequest))
	})

	s.Run("reporter who is not the sender is forbidden", func() {
		n := s.create(sender, models.DirectTo(recipient))
		title := "edited"
		_, err := s.service.Modify(s.ctx, n.ID, recipient, domain.RoleReporter, models.ContentUpdate{Title: &title})
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeForbidden))
	})

	s.Run("government official may edit and the snapshot is first-edit-wins", func() {
		n := s.create(sender, models.DirectTo(recipient))

		first := "first edit"
		updated, err := s.service.Modify(s.ctx, n.ID, official, domain.RoleGovernment, models.ContentUpdate{Title: &first})
		s.Require().NoError(err)
		s.Require().NotNil(updated.OriginalTitle)
		s.Equal("Report Status Updated", *updated.OriginalTitle)
		s.Equal(official, updated.LastModifiedBy)

		second := "second edit"
		updated, err = s.service.Modify(s.ctx, n.ID, sender, domain.RoleGovernment, models.ContentUpdate{Title: &second})
		s.Require().NoError(err)
		s.Equal("Report Status Updated", *updated.OriginalTitle)
		s.Equal("second edit", updated.Title)
	})
}

// flakyStore fails MarkRead for one specific notification.
type flakyStore struct {
	*store.InMemoryStore
	failOn domain.NotificationID
}

func (f *flakyStore) MarkRead(ctx context.Context, id domain.NotificationID, user domain.PrincipalID, at time.Time) (*models.Notification, bool, error) {
	if id == f.failOn {
		return nil, false, sentinel.ErrUnavailable
	}
	return f.InMemoryStore.MarkRead(ctx, id, user, at)
}

// brokenCountStore fails CountUnread unconditionally.
type brokenCountStore struct {
	*store.InMemoryStore
}

func (b *brokenCountStore) CountUnread(context.Context, domain.PrincipalID, domain.Role) (int, error) {
	return 0, sentinel.ErrUnavailable
}
