package domain

import "time"

// LifecycleEventType is the kind of daemon notification observed for a
// container.
type LifecycleEventType string

const (
	EventContainerStarted LifecycleEventType = "started"
	EventContainerDied    LifecycleEventType = "died"
	EventContainerRemoved LifecycleEventType = "removed"
)

// LifecycleEvent is an asynchronous notification from the container daemon.
// Events are ephemeral: consumed once by the reconciler, never persisted.
type LifecycleEvent struct {
	ContainerID string
	Type        LifecycleEventType
	Timestamp   time.Time
}
