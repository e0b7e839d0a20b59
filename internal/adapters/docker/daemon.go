// Package docker is the thin observation adapter over the container daemon.
// All mutations go through the privileged helper; the daemon API is used
// only to watch events, probe liveness, and answer existence queries.
package docker

import (
	"context"
	"fmt"

	cerrdefs "github.com/containerd/errdefs"
	"github.com/docker/docker/api/types/events"
	"github.com/docker/docker/api/types/filters"
	"github.com/docker/docker/client"
)

// Daemon wraps a docker API client scoped to one configured endpoint.
type Daemon struct {
	cli *client.Client
}

// NewDaemon connects a client to the configured daemon endpoint.
func NewDaemon(daemonURL string) (*Daemon, error) {
	cli, err := client.NewClientWithOpts(
		client.WithHost(daemonURL),
		client.WithAPIVersionNegotiation(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create daemon client for %s: %w", daemonURL, err)
	}
	return &Daemon{cli: cli}, nil
}

// NewDaemonWithClient wraps an existing client (for testing).
func NewDaemonWithClient(cli *client.Client) *Daemon {
	return &Daemon{cli: cli}
}

// Ping checks that the daemon is responsive.
func (d *Daemon) Ping(ctx context.Context) error {
	if _, err := d.cli.Ping(ctx); err != nil {
		return fmt.Errorf("daemon ping failed: %w", err)
	}
	return nil
}

// ContainerExists reports whether the daemon still knows the container,
// by id or name. A not-found answer is not an error.
func (d *Daemon) ContainerExists(ctx context.Context, ref string) (bool, error) {
	_, err := d.cli.ContainerInspect(ctx, ref)
	if err != nil {
		if cerrdefs.IsNotFound(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to inspect container %s: %w", ref, err)
	}
	return true, nil
}

// Events opens the daemon notification stream filtered to one container's
// lifecycle events. The stream lives until ctx is canceled.
func (d *Daemon) Events(ctx context.Context, containerRef string) (<-chan events.Message, <-chan error) {
	f := filters.NewArgs()
	f.Add("container", containerRef)
	f.Add("type", string(events.ContainerEventType))

	return d.cli.Events(ctx, events.ListOptions{Filters: f})
}

// Close releases the underlying client.
func (d *Daemon) Close() error {
	return d.cli.Close()
}
