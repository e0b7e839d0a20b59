package invoker

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"sort"
	"strings"
	"syscall"

	"golang.org/x/sys/unix"

	"github.com/quayside/stevedore/internal/domain"
	"github.com/quayside/stevedore/pkg/logger"
)

// Result is the faithful record of one invocation: the raw exit code and the
// combined stdout/stderr output. Interpretation of the code belongs to the
// lifecycle controller, never to the invoker.
type Result struct {
	ExitCode int
	Output   string
}

// Invoker executes one privileged argument vector. The returned error is
// non-nil only when the process could not be started or completed at all;
// a process that ran and exited non-zero is a Result, not an error.
type Invoker interface {
	Invoke(ctx context.Context, argv []string, env map[string]string) (Result, error)
}

// ShellInvoker runs invocations as child processes with the container's
// sanitized environment instead of the host's.
type ShellInvoker struct {
	log *logger.Logger
}

// NewShellInvoker returns a ready ShellInvoker.
func NewShellInvoker() *ShellInvoker {
	return &ShellInvoker{log: logger.GetLogger()}
}

// Invoke executes argv and captures combined output. Process and pipe
// resources are released on every exit path: CombinedOutput always reaps the
// child, and a context cancellation kills it.
func (s *ShellInvoker) Invoke(ctx context.Context, argv []string, env map[string]string) (Result, error) {
	if len(argv) == 0 {
		return Result{ExitCode: domain.ExitCouldNotStart}, errors.New("empty argument vector")
	}

	s.log.Debug("invoking privileged command", "argv", strings.Join(argv, " "))

	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Env = flattenEnv(env)

	out, err := cmd.CombinedOutput()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return Result{ExitCode: exitStatus(exitErr), Output: string(out)}, nil
		}
		return Result{ExitCode: domain.ExitCouldNotStart, Output: string(out)},
			fmt.Errorf("failed to execute %s: %w", argv[0], err)
	}
	return Result{ExitCode: domain.ExitSuccess, Output: string(out)}, nil
}

// exitStatus maps an exited process to its code. A signal death has no exit
// code of its own (ExitCode reports -1, which is reserved for could-not-start),
// so it is translated to the 128+signal shell convention.
func exitStatus(exitErr *exec.ExitError) int {
	if status, ok := exitErr.Sys().(syscall.WaitStatus); ok {
		if ws := unix.WaitStatus(status); ws.Signaled() {
			return 128 + int(ws.Signal())
		}
	}
	return exitErr.ExitCode()
}

func flattenEnv(env map[string]string) []string {
	flat := make([]string, 0, len(env))
	for key, value := range env {
		flat = append(flat, key+"="+value)
	}
	sort.Strings(flat)
	return flat
}
