package domain

import "golang.org/x/sys/unix"

// ExitCodeClass is the semantic category of a raw exit code. Diagnostics and
// log severity are driven by the class, never by the raw integer.
type ExitCodeClass string

const (
	// ClassNormal is a clean zero exit. Success is silent.
	ClassNormal ExitCodeClass = "normal"
	// ClassForcedKill means the process received the kill signal (SIGKILL).
	ClassForcedKill ExitCodeClass = "forced-kill"
	// ClassRequestedTermination means the framework asked for termination
	// (SIGTERM). Benign, same diagnostic as a forced kill.
	ClassRequestedTermination ExitCodeClass = "requested-termination"
	// ClassAlreadyInactive means the container was torn down before any
	// process was spawned. No invocation happens for this class.
	ClassAlreadyInactive ExitCodeClass = "already-inactive"
	// ClassInvocationFailure means the helper process could not be started
	// or completed at all.
	ClassInvocationFailure ExitCodeClass = "invocation-failure"
	// ClassApplicationFailure is any other non-zero exit; the captured
	// output is attached to the diagnostic.
	ClassApplicationFailure ExitCodeClass = "application-failure"
)

// Exit codes surfaced to the framework. ExitTerminated is also the reserved
// sentinel returned when a container is already inactive at launch time.
const (
	ExitSuccess       = 0
	ExitCouldNotStart = -1
)

var (
	// ExitForceKilled is the shell convention for a SIGKILL death (137).
	ExitForceKilled = 128 + int(unix.SIGKILL)
	// ExitTerminated is the shell convention for a SIGTERM death (143).
	ExitTerminated = 128 + int(unix.SIGTERM)
)

// ClassifyExitCode maps a raw exit code from an invocation to its class.
// The already-inactive sentinel is not produced here: that class is assigned
// by the lifecycle controller before any invocation exists.
func ClassifyExitCode(code int) ExitCodeClass {
	switch {
	case code == ExitSuccess:
		return ClassNormal
	case code == ExitCouldNotStart:
		return ClassInvocationFailure
	case code == ExitForceKilled:
		return ClassForcedKill
	case code == ExitTerminated:
		return ClassRequestedTermination
	default:
		return ClassApplicationFailure
	}
}
