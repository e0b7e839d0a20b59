// Package executor sequences one container launch attempt end-to-end:
// validate, check liveness, invoke through the privileged helper, classify
// the exit code, report diagnostics.
package executor

import (
	"context"
	"fmt"
	"strings"

	"github.com/quayside/stevedore/internal/config"
	"github.com/quayside/stevedore/internal/domain"
	"github.com/quayside/stevedore/internal/invoker"
	"github.com/quayside/stevedore/pkg/logger"
)

// ContainerTracker is the framework's answer to "is this container still
// wanted". The check happens before any privileged invocation; a container
// may have been cancelled between scheduling and launch.
type ContainerTracker interface {
	IsActive(containerID string) bool
}

// DiagnosticsSink receives the human-readable explanation of a launch
// outcome, out-of-band from the integer exit code. At most one update is
// emitted per launch attempt; success is silent.
type DiagnosticsSink interface {
	Update(containerID, diagnostics string)
}

// Executor is the lifecycle controller for launch attempts. The caller
// guarantees that each container id is processed by at most one attempt at
// a time.
type Executor struct {
	cfg          *config.Config
	tracker      ContainerTracker
	diagnostics  DiagnosticsSink
	orchestrator LaunchOrchestrator
	log          *logger.Logger
}

// New assembles the controller.
func New(cfg *config.Config, tracker ContainerTracker, diagnostics DiagnosticsSink, orchestrator LaunchOrchestrator) *Executor {
	return &Executor{
		cfg:          cfg,
		tracker:      tracker,
		diagnostics:  diagnostics,
		orchestrator: orchestrator,
		log:          logger.GetLogger(),
	}
}

// LaunchContainer runs one attempt and returns the exit code surfaced to the
// framework. A non-nil error means a precondition (image validation) failed
// before any process was spawned; every invocation result, including
// failures, is returned as a code with a nil error, with diagnostics
// reported through the sink.
func (e *Executor) LaunchContainer(ctx context.Context, req domain.LaunchRequest) (int, error) {
	plan, err := ResolvePlan(req, e.cfg)
	if err != nil {
		return domain.ExitCouldNotStart, err
	}

	if !e.tracker.IsActive(req.ContainerID) {
		e.log.Info("container was marked inactive, returning terminated sentinel",
			"container_id", req.ContainerID)
		return domain.ExitTerminated, nil
	}

	res, invokeErr := e.orchestrator.Launch(ctx, req, plan)
	if invokeErr != nil {
		// The helper never ran, so no container-specific state exists to
		// attach diagnostics to.
		e.log.Error("failed to execute container launch",
			"container_id", req.ContainerID, "error", invokeErr)
		return domain.ExitCouldNotStart, nil
	}

	outcome := classify(res)
	e.report(req.ContainerID, outcome)
	return outcome.ExitCode, nil
}

func classify(res invoker.Result) domain.LaunchOutcome {
	class := domain.ClassifyExitCode(res.ExitCode)
	outcome := domain.LaunchOutcome{ExitCode: res.ExitCode, Class: class}

	switch class {
	case domain.ClassNormal:
		// Success is silent.
	case domain.ClassForcedKill, domain.ClassRequestedTermination:
		outcome.Diagnostics = fmt.Sprintf("Container killed on request. Exit code is %d", res.ExitCode)
	case domain.ClassInvocationFailure:
		// The helper never produced container state to attach diagnostics to.
	default:
		outcome.Diagnostics = fmt.Sprintf("Failure from container launch with exit code %d:\n%s",
			res.ExitCode, res.Output)
	}
	return outcome
}

func (e *Executor) report(containerID string, outcome domain.LaunchOutcome) {
	switch outcome.Class {
	case domain.ClassNormal:
		return
	case domain.ClassInvocationFailure:
		e.log.Warn("helper invocation failed before any container state existed",
			"container_id", containerID, "exit_code", outcome.ExitCode)
		return
	case domain.ClassForcedKill, domain.ClassRequestedTermination:
		// Benign: the framework asked for it. No error-level logging.
		e.diagnostics.Update(containerID, outcome.Diagnostics)
	default:
		e.log.Warn("container launch failed",
			"container_id", containerID, "exit_code", outcome.ExitCode)
		e.logOutput(outcome.Diagnostics)
		e.diagnostics.Update(containerID, outcome.Diagnostics)
	}
}

// logOutput mirrors the captured process output line by line so multi-line
// daemon output stays readable in the launcher log.
func (e *Executor) logOutput(output string) {
	for _, line := range strings.Split(strings.TrimRight(output, "\n"), "\n") {
		if line != "" {
			e.log.Warn(line)
		}
	}
}
