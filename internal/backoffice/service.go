package backoffice

import (
	"context"
	"fmt"
	"time"

	"github.com/angelmondragon/backoffice/internal/inventory"
	"github.com/angelmondragon/backoffice/internal/ledger"
	"github.com/angelmondragon/backoffice/internal/notifications"
	"github.com/angelmondragon/backoffice/internal/sales"
	"github.com/angelmondragon/backoffice/internal/withdrawals"
	"github.com/angelmondragon/backoffice/pkg/clock"
	pkgerrors "github.com/angelmondragon/backoffice/pkg/errors"
	"github.com/angelmondragon/backoffice/pkg/events"
	"github.com/angelmondragon/backoffice/pkg/logger"
	"github.com/angelmondragon/backoffice/pkg/metrics"
)

// Deps wires the facade. Only Store is required.
type Deps struct {
	Store    *ledger.Store
	Bus      *events.Bus
	Metrics  *metrics.LedgerMetrics
	Logger   *logger.Logger
	FeedSize int
}

// Service is the single entry point used by the UI layer. It runs every
// operation against the ledger, then publishes domain events, records
// metrics and logs the outcome.
type Service struct {
	store       *ledger.Store
	inventory   *inventory.Controller
	sales       *sales.Coordinator
	withdrawals *withdrawals.Workflow
	bus         *events.Bus
	feed        *notifications.Feed
	metrics     *metrics.LedgerMetrics
	logg        *logger.Logger
	clock       clock.Clock
}

func NewService(deps Deps) (*Service, error) {
	if deps.Store == nil {
		return nil, fmt.Errorf("ledger store required")
	}
	logg := deps.Logger
	if logg == nil {
		logg = logger.Nop()
	}
	bus := deps.Bus
	if bus == nil {
		bus = events.NewBus(logg)
	}
	clk := deps.Store.Clock()

	controller, err := inventory.NewController(deps.Store, clk)
	if err != nil {
		return nil, err
	}
	coordinator, err := sales.NewCoordinator(deps.Store, controller)
	if err != nil {
		return nil, err
	}
	workflow, err := withdrawals.NewWorkflow(deps.Store, clk)
	if err != nil {
		return nil, err
	}

	feedSize := deps.FeedSize
	if feedSize <= 0 {
		feedSize = notifications.DefaultFeedSize
	}
	feed := notifications.NewFeed(feedSize, clk)
	bus.Subscribe(feed.Consume)

	svc := &Service{
		store:       deps.Store,
		inventory:   controller,
		sales:       coordinator,
		withdrawals: workflow,
		bus:         bus,
		feed:        feed,
		metrics:     deps.Metrics,
		logg:        logg,
		clock:       clk,
	}
	svc.refreshStockLevels()
	return svc, nil
}

// Notifications exposes the in-memory feed filled from domain events.
func (s *Service) Notifications() notifications.Service {
	return s.feed
}

// Bus exposes the event bus for additional subscribers.
func (s *Service) Bus() *events.Bus {
	return s.bus
}

func (s *Service) publish(ctx context.Context, event events.DomainEvent) {
	if actor := ActorFrom(ctx); actor != "" {
		event.Actor = &events.ActorRef{ID: actor}
	}
	if event.OccurredAt.IsZero() {
		event.OccurredAt = s.clock.Now()
	}
	if _, err := s.bus.Emit(ctx, event); err != nil {
		s.logg.Error(ctx, "failed to emit domain event", err)
	}
}

// finish records the outcome of operation and normalises untyped errors.
func (s *Service) finish(ctx context.Context, operation string, started time.Time, err error) error {
	took := time.Since(started)
	if err == nil {
		s.metrics.Observe(operation, took, "")
		return nil
	}

	typed := pkgerrors.As(err)
	if typed == nil {
		typed = pkgerrors.Wrap(pkgerrors.CodeInternal, err, operation+" failed")
	}
	s.metrics.Observe(operation, took, string(typed.Code()))

	logCtx := s.logg.WithFields(ctx, map[string]any{
		"operation":  operation,
		"error_code": typed.Code(),
	})
	if typed.Code() == pkgerrors.CodeInternal {
		s.logg.Error(logCtx, "operation failed", typed)
	} else {
		s.logg.Warn(logCtx, "operation rejected: "+typed.Message())
	}
	return typed
}

func (s *Service) committed(ctx context.Context, operation string, fields map[string]any) {
	if fields == nil {
		fields = map[string]any{}
	}
	fields["operation"] = operation
	s.logg.Info(s.logg.WithFields(ctx, fields), "operation committed")
}

func (s *Service) refreshStockLevels() {
	counts := map[string]int{}
	for _, item := range s.store.Inventory() {
		counts[string(item.Status)]++
	}
	s.metrics.SetStockLevels(counts)
}
