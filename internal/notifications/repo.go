package notifications

import (
	"sync"
	"time"

	"github.com/angelmondragon/backoffice/pkg/enums"
)

// DefaultFeedSize bounds the feed when no size is configured.
const DefaultFeedSize = 200

// Severity drives how the UI renders the toast.
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
)

// Notification is one entry in the back-office feed.
type Notification struct {
	ID            string              `json:"id"`
	EventType     enums.EventType     `json:"event_type"`
	AggregateType enums.AggregateType `json:"aggregate_type"`
	AggregateID   string              `json:"aggregate_id"`
	Title         string              `json:"title"`
	Message       string              `json:"message"`
	Severity      Severity            `json:"severity"`
	ActorID       string              `json:"actor_id,omitempty"`
	CreatedAt     time.Time           `json:"created_at"`
	ReadAt        *time.Time          `json:"read_at,omitempty"`
}

type notificationMarkResult struct {
	Found bool
}

// memoryRepository keeps the newest notifications, dropping the oldest once full.
type memoryRepository struct {
	mu       sync.RWMutex
	capacity int
	rows     []Notification
}

func newMemoryRepository(capacity int) *memoryRepository {
	if capacity <= 0 {
		capacity = DefaultFeedSize
	}
	return &memoryRepository{capacity: capacity}
}

func (r *memoryRepository) Create(n Notification) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rows = append(r.rows, n)
	if overflow := len(r.rows) - r.capacity; overflow > 0 {
		r.rows = append([]Notification(nil), r.rows[overflow:]...)
	}
}

// List returns newest first.
func (r *memoryRepository) List(limit int, unreadOnly bool) []Notification {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Notification, 0, min(limit, len(r.rows)))
	for i := len(r.rows) - 1; i >= 0 && len(out) < limit; i-- {
		row := r.rows[i]
		if unreadOnly && row.ReadAt != nil {
			continue
		}
		out = append(out, cloneNotification(row))
	}
	return out
}

func (r *memoryRepository) UnreadCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	count := 0
	for _, row := range r.rows {
		if row.ReadAt == nil {
			count++
		}
	}
	return count
}

func (r *memoryRepository) MarkRead(id string, now time.Time) notificationMarkResult {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.rows {
		if r.rows[i].ID != id {
			continue
		}
		if r.rows[i].ReadAt == nil {
			at := now
			r.rows[i].ReadAt = &at
		}
		return notificationMarkResult{Found: true}
	}
	return notificationMarkResult{}
}

func (r *memoryRepository) MarkAllRead(now time.Time) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	count := 0
	for i := range r.rows {
		if r.rows[i].ReadAt == nil {
			at := now
			r.rows[i].ReadAt = &at
			count++
		}
	}
	return count
}

// PruneRead drops read notifications created before cutoff.
func (r *memoryRepository) PruneRead(cutoff time.Time) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	kept := r.rows[:0]
	for _, row := range r.rows {
		if row.ReadAt != nil && row.CreatedAt.Before(cutoff) {
			continue
		}
		kept = append(kept, row)
	}
	removed := len(r.rows) - len(kept)
	clear(r.rows[len(kept):])
	r.rows = kept
	return removed
}

func cloneNotification(n Notification) Notification {
	if n.ReadAt != nil {
		at := *n.ReadAt
		n.ReadAt = &at
	}
	return n
}
