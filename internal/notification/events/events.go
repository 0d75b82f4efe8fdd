// Package events publishes notification lifecycle events for downstream
// consumers (audit trail, analytics). Emission is best-effort and strictly
// off the request path: a full buffer drops the event and bumps a counter
// rather than blocking or failing the operation that produced it.
package events

import (
	"context"
	"time"

	"github.com/yabetsTesfaye/addiscares-backend/pkg/domain"
)

// Action names what happened to a notification.
type Action string

const (
	ActionCreated  Action = "notification.created"
	ActionRead     Action = "notification.read"
	ActionReadAll  Action = "notification.read_all"
	ActionHidden   Action = "notification.hidden"
	ActionModified Action = "notification.modified"
	ActionDeleted  Action = "notification.deleted"
)

// Event is one lifecycle record. RequestID is the request-scoped correlation
// id minted by middleware; ClientIP/UserAgent come from the same request
// metadata, so one user action can be traced across logs and this stream.
type Event struct {
	Action         Action                `json:"action"`
	NotificationID domain.NotificationID `json:"notification_id"`
	Actor          domain.PrincipalID    `json:"actor"`
	Detail         string                `json:"detail,omitempty"`
	RequestID      string                `json:"request_id,omitempty"`
	ClientIP       string                `json:"client_ip,omitempty"`
	UserAgent      string                `json:"user_agent,omitempty"`
	At             time.Time             `json:"at"`
}

// Sink is where the worker delivers events.
type Sink interface {
	Publish(ctx context.Context, event Event) error
	Close() error
}

// NoopSink discards events; used when no broker is configured.
type NoopSink struct{}

func (NoopSink) Publish(context.Context, Event) error { return nil }
func (NoopSink) Close() error                         { return nil }
