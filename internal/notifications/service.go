package notifications

import (
	"context"
	"strings"
	"time"

	"github.com/angelmondragon/backoffice/pkg/clock"
	pkgerrors "github.com/angelmondragon/backoffice/pkg/errors"
)

const (
	defaultListLimit = 20
	maxListLimit     = 100
)

// Service exposes the notification feed to the UI.
type Service interface {
	List(ctx context.Context, params ListParams) (*ListResult, error)
	MarkRead(ctx context.Context, notificationID string) error
	MarkAllRead(ctx context.Context) (int, error)
	UnreadCount(ctx context.Context) int
	PruneRead(ctx context.Context, cutoff time.Time) int
}

// ListParams configures the feed query.
type ListParams struct {
	Limit      int
	UnreadOnly bool
}

// ListResult wraps returned notifications and the unread badge count.
type ListResult struct {
	Items       []Notification `json:"items"`
	UnreadCount int            `json:"unread_count"`
}

// Feed is the in-memory notification service. It is filled by Consume.
type Feed struct {
	repo  *memoryRepository
	clock clock.Clock
}

var _ Service = (*Feed)(nil)

// NewFeed builds a feed holding at most feedSize entries.
func NewFeed(feedSize int, clk clock.Clock) *Feed {
	return &Feed{repo: newMemoryRepository(feedSize), clock: clock.OrSystem(clk)}
}

func (s *Feed) List(_ context.Context, params ListParams) (*ListResult, error) {
	limit := params.Limit
	switch {
	case limit < 0:
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "limit must not be negative")
	case limit == 0:
		limit = defaultListLimit
	case limit > maxListLimit:
		limit = maxListLimit
	}
	return &ListResult{
		Items:       s.repo.List(limit, params.UnreadOnly),
		UnreadCount: s.repo.UnreadCount(),
	}, nil
}

func (s *Feed) MarkRead(_ context.Context, notificationID string) error {
	notificationID = strings.TrimSpace(notificationID)
	if notificationID == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "notification id required")
	}
	if !s.repo.MarkRead(notificationID, s.clock.Now()).Found {
		return pkgerrors.New(pkgerrors.CodeNotFound, "notification not found")
	}
	return nil
}

func (s *Feed) MarkAllRead(_ context.Context) (int, error) {
	return s.repo.MarkAllRead(s.clock.Now()), nil
}

func (s *Feed) UnreadCount(_ context.Context) int {
	return s.repo.UnreadCount()
}

func (s *Feed) PruneRead(_ context.Context, cutoff time.Time) int {
	return s.repo.PruneRead(cutoff)
}
