package notifications

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/surplusmarket-backend/pkg/db/models"
	"github.com/angelmondragon/surplusmarket-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/surplusmarket-backend/pkg/errors"
	"github.com/angelmondragon/surplusmarket-backend/pkg/pagination"
)

// Inbox serves the in-app copy of delivered notifications to their recipients.
type Inbox struct {
	repo Repository
	now  func() time.Time
}

// ListParams configures pagination for a recipient's inbox.
type ListParams struct {
	RecipientID uuid.UUID
	Limit       int
	Cursor      string
	UnreadOnly  bool
}

// NotificationView is the recipient-facing shape of a stored notification.
type NotificationView struct {
	ID        uuid.UUID                  `json:"id"`
	OrderID   uuid.UUID                  `json:"order_id"`
	Audience  enums.NotificationAudience `json:"audience"`
	Template  string                     `json:"template"`
	Params    map[string]string          `json:"params"`
	Read      bool                       `json:"read"`
	CreatedAt time.Time                  `json:"created_at"`
}

// ListResult wraps returned notifications and the cursor for the next page.
type ListResult struct {
	Items  []NotificationView `json:"items"`
	Cursor string             `json:"cursor,omitempty"`
}

func NewInbox(repo Repository) (*Inbox, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "notifications repository required")
	}
	return &Inbox{repo: repo, now: time.Now}, nil
}

func (i *Inbox) List(ctx context.Context, params ListParams) (*ListResult, error) {
	if params.RecipientID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "recipient id required")
	}

	query := listNotificationsParams{
		RecipientID: params.RecipientID,
		Limit:       params.Limit,
		UnreadOnly:  params.UnreadOnly,
	}
	if params.Cursor != "" {
		cursor, err := pagination.ParseCursor(params.Cursor)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
		}
		query.Cursor = cursor
	}

	rows, next, err := i.repo.List(ctx, query)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list notifications")
	}

	result := &ListResult{Items: make([]NotificationView, 0, len(rows))}
	for _, row := range rows {
		result.Items = append(result.Items, toView(row))
	}
	if next != nil {
		result.Cursor = pagination.EncodeCursor(*next)
	}
	return result, nil
}

func (i *Inbox) MarkRead(ctx context.Context, recipientID, notificationID uuid.UUID) error {
	if recipientID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "recipient id required")
	}
	if notificationID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "notification id required")
	}

	result, err := i.repo.MarkRead(ctx, recipientID, notificationID, i.now().UTC())
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark notification read")
	}
	if !result.Found {
		return pkgerrors.New(pkgerrors.CodeNotFound, "notification not found")
	}
	return nil
}

func (i *Inbox) MarkAllRead(ctx context.Context, recipientID uuid.UUID) (int64, error) {
	if recipientID == uuid.Nil {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "recipient id required")
	}

	count, err := i.repo.MarkAllRead(ctx, recipientID, i.now().UTC())
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark notifications read")
	}
	return count, nil
}

func toView(row models.Notification) NotificationView {
	return NotificationView{
		ID:        row.ID,
		OrderID:   row.OrderID,
		Audience:  row.Audience,
		Template:  row.Template,
		Params:    row.Params,
		Read:      row.ReadAt != nil,
		CreatedAt: row.CreatedAt,
	}
}
