// Package invoker constructs and executes privileged helper invocations.
//
// Every invocation is a two-hop command: the setuid helper executable first,
// which re-executes the docker client argv appended after its own positional
// arguments. The helper parses its arguments positionally, so the ordering
// here is a frozen contract.
package invoker

import "strconv"

// OpCode is the numeric operation passed to the privileged helper. The set
// is closed and the values are stable: the helper binary switches on them
// positionally. Codes 0-3 belong to the helper's non-container path and are
// listed to reserve them.
type OpCode int

const (
	OpInitializeContainer OpCode = 0
	OpLaunchContainer     OpCode = 1
	OpSignalContainer     OpCode = 2
	OpDeleteAsUser        OpCode = 3
	// OpRunContainer creates and starts the container in one combined step.
	OpRunContainer OpCode = 4
	// OpCreateContainer creates the container without starting it.
	OpCreateContainer OpCode = 5
	// OpManageContainer starts and supervises a created container.
	OpManageContainer OpCode = 6
	// OpRemoveContainer removes a stopped container from the daemon.
	OpRemoveContainer OpCode = 7
)

func (c OpCode) String() string {
	return strconv.Itoa(int(c))
}
