package producer

import (
	"context"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"github.com/yabetsTesfaye/addiscares-backend/internal/directory"
	"github.com/yabetsTesfaye/addiscares-backend/internal/notification/models"
	"github.com/yabetsTesfaye/addiscares-backend/internal/notification/service"
	"github.com/yabetsTesfaye/addiscares-backend/internal/notification/store"
	"github.com/yabetsTesfaye/addiscares-backend/pkg/domain"
)

type ProducerSuite struct {
	suite.Suite
	ctx      context.Context
	store    *store.InMemoryStore
	dir      *directory.InMemoryStore
	producer *Producer

	official domain.PrincipalID
	reporter domain.PrincipalID
	admin    domain.PrincipalID
}

func TestProducerSuite(t *testing.T) {
	suite.Run(t, new(ProducerSuite))
}

func (s *ProducerSuite) SetupTest() {
	s.ctx = context.Background()
	s.store = store.NewInMemoryStore()
	s.dir = directory.NewInMemoryStore()

	s.official = s.register(domain.RoleGovernment)
	s.reporter = s.register(domain.RoleReporter)
	s.admin = s.register(domain.RoleAdmin)

	svc := service.NewService(s.store, s.dir, nil, nil, nil, slog.Default())
	s.producer = New(svc)
}

func (s *ProducerSuite) register(role domain.Role) domain.PrincipalID {
	id := domain.PrincipalID(uuid.New())
	s.Require().NoError(s.dir.Save(s.ctx, directory.Principal{ID: id, Name: "p", Role: role, Active: true}))
	return id
}

func (s *ProducerSuite) inboxOf(user domain.PrincipalID, role domain.Role) []models.InboxItem {
	items, err := s.store.ListForUser(s.ctx, user, role, models.ListOptions{})
	s.Require().NoError(err)
	return items
}

func (s *ProducerSuite) TestReportStatusChanged() {
	err := s.producer.ReportStatusChanged(s.ctx, s.official, s.reporter, domain.ReportID("report-42"), "in_progress")
	s.Require().NoError(err)

	items := s.inboxOf(s.reporter, domain.RoleReporter)
	s.Require().Len(items, 1)
	s.Equal("Report Status Updated: in_progress", items[0].Title)
	s.Equal(domain.TypeStatusChange, items[0].Type)
	s.Equal(domain.ReportID("report-42"), items[0].Report)
	s.Equal(s.reporter, items[0].Recipient)
}

func (s *ProducerSuite) TestNewComment() {
	err := s.producer.NewComment(s.ctx, s.official, s.reporter, domain.ReportID("report-7"))
	s.Require().NoError(err)

	items := s.inboxOf(s.reporter, domain.RoleReporter)
	s.Require().Len(items, 1)
	s.Equal(domain.TypeComment, items[0].Type)
}

func (s *ProducerSuite) TestAppealDecided() {
	s.Require().NoError(s.producer.AppealDecided(s.ctx, s.admin, s.reporter, true))

	items := s.inboxOf(s.reporter, domain.RoleReporter)
	s.Require().Len(items, 1)
	s.Equal("Appeal approved", items[0].Title)
	s.Equal(domain.TypeAppeal, items[0].Type)
}

func (s *ProducerSuite) TestReporterRegistered() {
	s.Require().NoError(s.producer.ReporterRegistered(s.ctx, s.official, "new reporter"))

	s.Run("reaches every admin via the role entry", func() {
		items := s.inboxOf(s.admin, domain.RoleAdmin)
		s.Require().Len(items, 1)
		s.Equal(domain.TypeRegistration, items[0].Type)
	})

	s.Run("does not reach reporters", func() {
		s.Empty(s.inboxOf(s.reporter, domain.RoleReporter))
	})

	s.Run("role-only list has no sender pre-mark", func() {
		items := s.inboxOf(s.admin, domain.RoleAdmin)
		s.Empty(items[0].ReadBy)
	})
}

func (s *ProducerSuite) TestAdminBroadcast() {
	s.Require().NoError(s.producer.AdminBroadcast(s.ctx, s.admin, "Maintenance", "The portal will be down tonight."))

	s.Run("reaches every role", func() {
		s.Len(s.inboxOf(s.reporter, domain.RoleReporter), 1)
		s.Len(s.inboxOf(s.official, domain.RoleGovernment), 1)
	})

	s.Run("not the sender", func() {
		s.Empty(s.inboxOf(s.admin, domain.RoleAdmin))
	})
}
