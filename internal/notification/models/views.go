package models

// Views returned by list operations. They carry the per-call derived fields
// that the persisted document cannot: the ledger is per-user truth, so
// "read by the caller" only exists relative to a request.

// InboxItem is one entry of a principal's inbox. ReadByUser is derived from
// the ledger for the requesting principal and overlaid onto the legacy Read
// flag for backward-compatible consumers.
type InboxItem struct {
	*Notification
	ReadByUser bool
}

// SentItem is one entry of a sender's "sent" listing, enriched with
// aggregate stats over the ledgers.
type SentItem struct {
	*Notification
	ReadCount   int
	HiddenCount int
	WasModified bool
}

// NewSentItem derives the aggregate view for one sent notification.
func NewSentItem(n *Notification) SentItem {
	return SentItem{
		Notification: n,
		ReadCount:    len(n.ReadBy),
		HiddenCount:  len(n.HiddenFor),
		WasModified:  n.LastModifiedAt != nil,
	}
}

// Pagination bounds for inbox listings.
const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// ListOptions controls inbox listing. ReadFilter filters on the derived
// ReadByUser value (nil means no filter); Skip/Limit paginate after the
// filter so pages stay stable for a given filter. Sort is fixed: creation
// time descending.
type ListOptions struct {
	ReadFilter *bool
	Skip       int
	Limit      int
}

// Normalize clamps pagination to sane bounds.
func (o ListOptions) Normalize() ListOptions {
	if o.Skip < 0 {
		o.Skip = 0
	}
	if o.Limit <= 0 {
		o.Limit = DefaultPageSize
	}
	if o.Limit > MaxPageSize {
		o.Limit = MaxPageSize
	}
	return o
}
