// Package producer holds the notification-producing flows of the reporting
// backend: registration, report status changes, comments, appeal decisions,
// and explicit admin broadcasts. Each flow decides who should be notified
// and with which addressing shape; the notification core only stores and
// serves what it is given.
package producer

import (
	"context"
	"fmt"

	"github.com/yabetsTesfaye/addiscares-backend/internal/notification/models"
	"github.com/yabetsTesfaye/addiscares-backend/internal/notification/service"
	"github.com/yabetsTesfaye/addiscares-backend/pkg/domain"
)

type Producer struct {
	notifications *service.Service
}

func New(notifications *service.Service) *Producer {
	return &Producer{notifications: notifications}
}

// ReportStatusChanged notifies the reporter that an official moved their
// report to a new status.
func (p *Producer) ReportStatusChanged(ctx context.Context, official, reporter domain.PrincipalID, report domain.ReportID, status string) error {
	_, err := p.notifications.Create(ctx, official, service.CreateInput{
		Title:      "Report Status Updated: " + status,
		Message:    fmt.Sprintf("Your report has been moved to status %s.", status),
		Type:       domain.TypeStatusChange,
		Report:     report,
		Addressing: models.DirectTo(reporter),
	})
	return err
}

// NewComment notifies the report owner about a comment on their report.
func (p *Producer) NewComment(ctx context.Context, commenter, owner domain.PrincipalID, report domain.ReportID) error {
	_, err := p.notifications.Create(ctx, commenter, service.CreateInput{
		Title:      "New Comment on Your Report",
		Message:    "Someone commented on your report.",
		Type:       domain.TypeComment,
		Report:     report,
		Addressing: models.DirectTo(owner),
	})
	return err
}

// AppealDecided notifies the reporter of the outcome of their appeal.
func (p *Producer) AppealDecided(ctx context.Context, admin, reporter domain.PrincipalID, approved bool) error {
	outcome := "rejected"
	if approved {
		outcome = "approved"
	}
	_, err := p.notifications.Create(ctx, admin, service.CreateInput{
		Title:      "Appeal " + outcome,
		Message:    "Your account appeal has been " + outcome + ".",
		Type:       domain.TypeAppeal,
		Addressing: models.DirectTo(reporter),
	})
	return err
}

// ReporterRegistered notifies every admin that a new reporter signed up.
// A role-only entry addresses the whole role without pinning users, so
// admins hired later still see it and the aggregate read flag never waits
// on a fixed list.
func (p *Producer) ReporterRegistered(ctx context.Context, system domain.PrincipalID, reporterName string) error {
	_, err := p.notifications.Create(ctx, system, service.CreateInput{
		Title:      "New Reporter Registration",
		Message:    fmt.Sprintf("Reporter %q has registered.", reporterName),
		Type:       domain.TypeRegistration,
		Addressing: models.BulkTo([]models.RecipientEntry{{Role: domain.RoleAdmin}}),
	})
	return err
}

// AdminBroadcast sends an announcement to every active principal.
func (p *Producer) AdminBroadcast(ctx context.Context, admin domain.PrincipalID, title, message string) error {
	_, err := p.notifications.Create(ctx, admin, service.CreateInput{
		Title:      title,
		Message:    message,
		Type:       domain.TypeBroadcast,
		Addressing: models.BroadcastToAll(),
	})
	return err
}
