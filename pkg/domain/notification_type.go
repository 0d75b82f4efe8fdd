package domain

import dErrors "github.com/yabetsTesfaye/addiscares-backend/pkg/domain-errors"

// NotificationType is a display category. It carries no behavior in the
// core; producers pick one so clients can render an icon or group items.
type NotificationType string

const (
	TypeInfo         NotificationType = "info"
	TypeStatusChange NotificationType = "status_change"
	TypeComment      NotificationType = "comment"
	TypeAppeal       NotificationType = "appeal"
	TypeRegistration NotificationType = "registration"
	TypeBroadcast    NotificationType = "broadcast"
)

var validTypes = map[NotificationType]bool{
	TypeInfo:         true,
	TypeStatusChange: true,
	TypeComment:      true,
	TypeAppeal:       true,
	TypeRegistration: true,
	TypeBroadcast:    true,
}

// ParseNotificationType constructs a NotificationType from external input.
// An empty value falls back to TypeInfo so producers that don't care about
// categorization still create valid notifications.
func ParseNotificationType(s string) (NotificationType, error) {
	if s == "" {
		return TypeInfo, nil
	}
	t := NotificationType(s)
	if !validTypes[t] {
		return "", dErrors.New(dErrors.CodeInvalidInput, "invalid notification type: "+s)
	}
	return t, nil
}

func (t NotificationType) String() string { return string(t) }
