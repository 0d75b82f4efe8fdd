package handler

import (
	"time"

	"github.com/yabetsTesfaye/addiscares-backend/internal/notification/models"
	"github.com/yabetsTesfaye/addiscares-backend/pkg/domain"
	dErrors "github.com/yabetsTesfaye/addiscares-backend/pkg/domain-errors"
)

// createRequest is the wire shape of a create call. Exactly one of
// recipient, recipients or broadcast must be set.
type createRequest struct {
	Title      string             `json:"title"`
	Message    string             `json:"message"`
	Type       string             `json:"type,omitempty"`
	Report     string             `json:"report,omitempty"`
	Recipient  string             `json:"recipient,omitempty"`
	Recipients []recipientPayload `json:"recipients,omitempty"`
	Broadcast  bool               `json:"broadcast,omitempty"`
}

type recipientPayload struct {
	Role string `json:"role,omitempty"`
	User string `json:"user,omitempty"`
	Read bool   `json:"read,omitempty"`
}

// addressing translates the wire fields into the closed addressing variant,
// rejecting requests that set more or fewer than one mode.
func (req createRequest) addressing() (models.Addressing, error) {
	modes := 0
	if req.Recipient != "" {
		modes++
	}
	if len(req.Recipients) > 0 {
		modes++
	}
	if req.Broadcast {
		modes++
	}
	if modes != 1 {
		return models.Addressing{}, dErrors.New(dErrors.CodeBadRequest,
			"exactly one of recipient, recipients or broadcast must be set")
	}

	switch {
	case req.Broadcast:
		return models.BroadcastToAll(), nil
	case req.Recipient != "":
		id, err := domain.ParsePrincipalID(req.Recipient)
		if err != nil {
			return models.Addressing{}, err
		}
		return models.DirectTo(id), nil
	default:
		entries := make([]models.RecipientEntry, 0, len(req.Recipients))
		for _, p := range req.Recipients {
			entry := models.RecipientEntry{}
			if p.User != "" {
				id, err := domain.ParsePrincipalID(p.User)
				if err != nil {
					return models.Addressing{}, err
				}
				entry.User = id
			}
			if p.Role != "" {
				role, err := domain.ParseRole(p.Role)
				if err != nil {
					return models.Addressing{}, err
				}
				entry.Role = role
			}
			entries = append(entries, entry)
		}
		return models.BulkTo(entries), nil
	}
}

type modifyRequest struct {
	Title   *string `json:"title,omitempty"`
	Message *string `json:"message,omitempty"`
}

// notificationResponse is the wire shape shared by create, read and list
// endpoints. Per-caller fields (read) are overlaid where the endpoint has
// a caller to derive them for.
type notificationResponse struct {
	ID          string             `json:"id"`
	Title       string             `json:"title"`
	Message     string             `json:"message"`
	Sender      string             `json:"sender"`
	Recipient   string             `json:"recipient,omitempty"`
	Recipients  []recipientPayload `json:"recipients,omitempty"`
	Broadcast   bool               `json:"broadcast,omitempty"`
	Type        string             `json:"type"`
	Read        bool               `json:"read"`
	Report      string             `json:"report,omitempty"`
	Modified    bool               `json:"modified"`
	CreatedAt   time.Time          `json:"created_at"`
	UpdatedAt   time.Time          `json:"updated_at"`
	ReadCount   *int               `json:"read_count,omitempty"`
	HiddenCount *int               `json:"hidden_count,omitempty"`
}

func toResponse(n *models.Notification) notificationResponse {
	resp := notificationResponse{
		ID:        n.ID.String(),
		Title:     n.Title,
		Message:   n.Message,
		Sender:    n.Sender.String(),
		Broadcast: n.IsBroadcast,
		Type:      string(n.Type),
		Read:      n.Read,
		Report:    string(n.Report),
		Modified:  n.LastModifiedAt != nil,
		CreatedAt: n.CreatedAt,
		UpdatedAt: n.UpdatedAt,
	}
	if !n.Recipient.IsNil() {
		resp.Recipient = n.Recipient.String()
	}
	for _, e := range n.Recipients {
		p := recipientPayload{Role: string(e.Role), Read: e.Read}
		if e.HasUser() {
			p.User = e.User.String()
		}
		resp.Recipients = append(resp.Recipients, p)
	}
	return resp
}

func toInboxResponse(item models.InboxItem) notificationResponse {
	resp := toResponse(item.Notification)
	resp.Read = item.ReadByUser
	return resp
}

func toSentResponse(item models.SentItem) notificationResponse {
	resp := toResponse(item.Notification)
	resp.Modified = item.WasModified
	readCount, hiddenCount := item.ReadCount, item.HiddenCount
	resp.ReadCount = &readCount
	resp.HiddenCount = &hiddenCount
	return resp
}

type unreadCountResponse struct {
	Count int `json:"count"`
}

type readAllResponse struct {
	Updated int `json:"updated"`
}

type deleteResponse struct {
	Deleted string `json:"deleted"`
}
