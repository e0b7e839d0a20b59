// Package events reconciles asynchronous daemon lifecycle notifications
// against the synchronous launch path. Each launch attempt holds its own
// subscription; there is no process-wide bus.
package events

import (
	"context"
	"time"

	dockerevents "github.com/docker/docker/api/types/events"
	"github.com/google/uuid"

	"github.com/quayside/stevedore/internal/domain"
	"github.com/quayside/stevedore/pkg/logger"
)

// EventSource is the daemon notification stream scoped to one container.
type EventSource interface {
	Events(ctx context.Context, containerRef string) (<-chan dockerevents.Message, <-chan error)
}

// Subscription is the per-launch handle. Its lifetime matches the launch
// attempt: Close cancels the stream and waits for the watcher to drain.
type Subscription struct {
	ID     string
	cancel context.CancelFunc
	done   chan struct{}
}

// Close tears the subscription down. Safe to call once per subscription;
// events delivered after Close are dropped by the daemon client.
func (s *Subscription) Close() {
	s.cancel()
	<-s.done
}

// Reconciler turns daemon messages into lifecycle callbacks. It is
// best-effort and purely additive: a missed or duplicate notification must
// not break the synchronous path, so callbacks are expected to be idempotent.
type Reconciler struct {
	source EventSource
	log    *logger.Logger
}

// NewReconciler returns a Reconciler over the given source.
func NewReconciler(source EventSource) *Reconciler {
	return &Reconciler{source: source, log: logger.GetLogger()}
}

// Subscribe registers a watch for containerRef and invokes onDied once per
// observed die/stop notification. Registration happens before the caller
// starts the container, so an exit is observable even when the start call
// itself blocks until completion.
func (r *Reconciler) Subscribe(ctx context.Context, containerRef string, onDied func(domain.LifecycleEvent)) *Subscription {
	subCtx, cancel := context.WithCancel(ctx)
	sub := &Subscription{
		ID:     uuid.New().String(),
		cancel: cancel,
		done:   make(chan struct{}),
	}

	msgs, errs := r.source.Events(subCtx, containerRef)
	go r.watch(subCtx, sub, containerRef, msgs, errs, onDied)

	r.log.Debug("lifecycle subscription registered",
		"subscription_id", sub.ID, "container", containerRef)
	return sub
}

func (r *Reconciler) watch(ctx context.Context, sub *Subscription, containerRef string,
	msgs <-chan dockerevents.Message, errs <-chan error, onDied func(domain.LifecycleEvent)) {
	defer close(sub.done)

	for {
		select {
		case msg, open := <-msgs:
			if !open {
				return
			}
			event, ok := translate(containerRef, msg)
			if !ok {
				continue
			}
			r.log.Debug("daemon lifecycle event",
				"subscription_id", sub.ID, "container", containerRef, "type", string(event.Type))
			if event.Type == domain.EventContainerDied {
				onDied(event)
			}
		case err := <-errs:
			if err != nil && ctx.Err() == nil {
				r.log.Warn("daemon event stream failed",
					"subscription_id", sub.ID, "container", containerRef, "error", err)
			}
			return
		case <-ctx.Done():
			return
		}
	}
}

// translate maps a daemon message onto a LifecycleEvent. Actions outside the
// started/died/removed set are dropped.
func translate(containerRef string, msg dockerevents.Message) (domain.LifecycleEvent, bool) {
	var eventType domain.LifecycleEventType
	switch msg.Action {
	case dockerevents.ActionStart:
		eventType = domain.EventContainerStarted
	case dockerevents.ActionDie, dockerevents.ActionStop:
		eventType = domain.EventContainerDied
	case dockerevents.ActionDestroy:
		eventType = domain.EventContainerRemoved
	default:
		return domain.LifecycleEvent{}, false
	}

	timestamp := time.Now()
	if msg.TimeNano > 0 {
		timestamp = time.Unix(0, msg.TimeNano)
	}
	return domain.LifecycleEvent{
		ContainerID: containerRef,
		Type:        eventType,
		Timestamp:   timestamp,
	}, true
}
