package executor

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/quayside/stevedore/internal/config"
	"github.com/quayside/stevedore/internal/domain"
	"github.com/quayside/stevedore/internal/events"
	"github.com/quayside/stevedore/internal/invoker"
	"github.com/quayside/stevedore/pkg/logger"
)

// LaunchOrchestrator is the capability that runs one validated launch plan
// to completion and reports the raw invocation result.
type LaunchOrchestrator interface {
	Launch(ctx context.Context, req domain.LaunchRequest, plan domain.LaunchPlan) (invoker.Result, error)
}

// LifecycleSubscriber registers a per-launch watch on the daemon's
// notification stream.
type LifecycleSubscriber interface {
	Subscribe(ctx context.Context, containerRef string, onDied func(domain.LifecycleEvent)) *events.Subscription
}

// ContainerLookup answers whether the daemon still knows a container.
type ContainerLookup interface {
	ContainerExists(ctx context.Context, ref string) (bool, error)
}

// NewOrchestrator selects the configured launch strategy.
func NewOrchestrator(cfg *config.Config, inv invoker.Invoker, subscriber LifecycleSubscriber, lookup ContainerLookup) (LaunchOrchestrator, error) {
	argv := &invoker.ArgvBuilder{
		HelperPath: cfg.Launcher.HelperPath,
		DockerPath: cfg.Launcher.DockerPath,
	}
	switch cfg.Launcher.Strategy {
	case config.StrategyRun:
		return &RunStrategy{Argv: argv, Inv: inv}, nil
	case config.StrategyCreateStartRemove:
		return &StepStrategy{Argv: argv, Inv: inv, Subscriber: subscriber, Lookup: lookup}, nil
	default:
		return nil, fmt.Errorf("strategy %q: %w", cfg.Launcher.Strategy, domain.ErrUnknownStrategy)
	}
}

// RunStrategy issues the single combined create-and-run invocation; the
// daemon removes the container itself when it exits.
type RunStrategy struct {
	Argv *invoker.ArgvBuilder
	Inv  invoker.Invoker
}

func (s *RunStrategy) Launch(ctx context.Context, req domain.LaunchRequest, plan domain.LaunchPlan) (invoker.Result, error) {
	return s.Inv.Invoke(ctx, s.Argv.RunArgv(req, plan), req.Env)
}

// StepStrategy creates the container, starts it attached, and removes it
// afterwards. A lifecycle subscription registered before the start makes the
// cleanup observable via daemon events as well, since the attached start
// blocks until the container exits.
type StepStrategy struct {
	Argv       *invoker.ArgvBuilder
	Inv        invoker.Invoker
	Subscriber LifecycleSubscriber
	Lookup     ContainerLookup
}

func (s *StepStrategy) Launch(ctx context.Context, req domain.LaunchRequest, plan domain.LaunchPlan) (invoker.Result, error) {
	log := logger.GetLogger()

	createRes, err := s.Inv.Invoke(ctx, s.Argv.CreateArgv(req, plan), req.Env)
	if err != nil {
		return createRes, err
	}
	if createRes.ExitCode != domain.ExitSuccess {
		return createRes, nil
	}

	// The create call prints the daemon-assigned container id followed by a
	// newline; the trimmed id is the event correlation key.
	daemonID := strings.TrimSpace(createRes.Output)
	eventRef := daemonID
	if eventRef == "" {
		eventRef = req.ContainerID
	}
	log.Debug("container created", "container_id", req.ContainerID, "daemon_id", daemonID)

	remove := s.removeOnce(req, plan)

	if s.Subscriber != nil {
		sub := s.Subscriber.Subscribe(ctx, eventRef, func(domain.LifecycleEvent) {
			remove(ctx)
		})
		defer sub.Close()
	}

	startRes, err := s.Inv.Invoke(ctx, s.Argv.StartArgv(req, plan), req.Env)
	if err != nil {
		return startRes, err
	}

	remove(ctx)
	return startRes, nil
}

// removeOnce builds the idempotent remove trigger shared by the synchronous
// path and the event reconciler. Only the first trigger invokes the helper;
// a container already gone from the daemon is treated as removed.
func (s *StepStrategy) removeOnce(req domain.LaunchRequest, plan domain.LaunchPlan) func(context.Context) {
	log := logger.GetLogger()
	var once sync.Once
	return func(ctx context.Context) {
		once.Do(func() {
			if s.Lookup != nil {
				exists, err := s.Lookup.ContainerExists(ctx, req.ContainerID)
				if err == nil && !exists {
					log.Debug("container already removed", "container_id", req.ContainerID)
					return
				}
			}
			res, err := s.Inv.Invoke(ctx, s.Argv.RemoveArgv(req, plan), req.Env)
			if err != nil {
				log.Warn("failed to execute container remove", "container_id", req.ContainerID, "error", err)
				return
			}
			if res.ExitCode != domain.ExitSuccess {
				log.Debug("container remove returned non-zero",
					"container_id", req.ContainerID, "exit_code", res.ExitCode, "output", res.Output)
			}
		})
	}
}
