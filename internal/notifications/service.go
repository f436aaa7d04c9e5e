package notifications

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/vendorahq/vendora-backend/pkg/db/models"
	pkgerrors "github.com/vendorahq/vendora-backend/pkg/errors"
	"github.com/vendorahq/vendora-backend/pkg/pagination"
)

// ListParams configures pagination for a recipient's feed.
type ListParams struct {
	Limit      int
	Cursor     string
	UnreadOnly bool
}

// NotificationList is one page of a recipient's feed.
type NotificationList struct {
	Items  []models.Notification `json:"items"`
	Cursor string                `json:"cursor"`
}

// Service exposes the recipient-facing notification operations.
type Service interface {
	List(ctx context.Context, recipientID uuid.UUID, params ListParams) (*NotificationList, error)
	UnreadCount(ctx context.Context, recipientID uuid.UUID) (int64, error)
	MarkRead(ctx context.Context, recipientID, notificationID uuid.UUID) error
	MarkAllRead(ctx context.Context, recipientID uuid.UUID) (int64, error)
	PruneRead(ctx context.Context, cutoff time.Time) (int64, error)
}

type service struct {
	repo *Repository
}

// NewService wires notification dependencies.
func NewService(repo *Repository) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "notifications repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) List(ctx context.Context, recipientID uuid.UUID, params ListParams) (*NotificationList, error) {
	if recipientID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "recipient id required")
	}

	repoParams := listNotificationsParams{
		RecipientID: recipientID,
		UnreadOnly:  params.UnreadOnly,
		Limit:       pagination.LimitWithBuffer(params.Limit),
	}
	if params.Cursor != "" {
		cursor, err := pagination.ParseCursor(params.Cursor)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
		}
		repoParams.Cursor = cursor
	}

	rows, next, err := s.repo.listNotifications(ctx, repoParams)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list notifications")
	}

	cursor := ""
	if next != nil {
		cursor = pagination.EncodeCursor(*next)
	}
	return &NotificationList{Items: rows, Cursor: cursor}, nil
}

func (s *service) UnreadCount(ctx context.Context, recipientID uuid.UUID) (int64, error) {
	if recipientID == uuid.Nil {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "recipient id required")
	}
	count, err := s.repo.UnreadCount(ctx, recipientID)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count unread notifications")
	}
	return count, nil
}

// MarkRead is idempotent: marking an already-read notification is a no-op.
func (s *service) MarkRead(ctx context.Context, recipientID, notificationID uuid.UUID) error {
	if recipientID == uuid.Nil || notificationID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "recipient and notification ids required")
	}
	result, err := s.repo.MarkRead(ctx, recipientID, notificationID, time.Now().UTC())
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark notification read")
	}
	if !result.Found {
		return pkgerrors.New(pkgerrors.CodeNotFound, "notification not found")
	}
	return nil
}

func (s *service) MarkAllRead(ctx context.Context, recipientID uuid.UUID) (int64, error) {
	if recipientID == uuid.Nil {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "recipient id required")
	}
	updated, err := s.repo.MarkAllRead(ctx, recipientID, time.Now().UTC())
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark all notifications read")
	}
	return updated, nil
}

func (s *service) PruneRead(ctx context.Context, cutoff time.Time) (int64, error) {
	deleted, err := s.repo.DeleteReadBefore(ctx, cutoff)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "prune read notifications")
	}
	return deleted, nil
}
