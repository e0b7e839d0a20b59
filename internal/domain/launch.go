// Package domain contains the pure launch types shared across the launcher.
// These types carry no framework or daemon dependencies.
package domain

// LaunchRequest describes one launch attempt. It is created once per launch
// call by the framework boundary and never mutated afterwards; the lifecycle
// controller owns it exclusively for the duration of the attempt.
type LaunchRequest struct {
	// ContainerID is the cluster-assigned identifier, opaque and globally
	// unique for the lifetime of the attempt. It doubles as the daemon-side
	// container name and as the correlation key for lifecycle events.
	ContainerID string
	// User is the submitting user. The privileged helper receives it both as
	// the real and the effective identity to assume.
	User string
	// AppID identifies the owning application.
	AppID string
	// WorkDir is the container working directory on the host.
	WorkDir string
	// LocalDirs and LogDirs are the host directories the container must see,
	// in framework order.
	LocalDirs []string
	LogDirs   []string
	// ScriptPath and TokensPath are framework-private files staged for the
	// helper; they never appear inside the container image itself.
	ScriptPath string
	TokensPath string
	// Env is the container's sanitized environment. The raw image reference
	// is sourced from it under the configured variable name.
	Env map[string]string
}

// MountSpec is one bind mount. Host and container paths are equal by
// construction in this design, which removes a class of path-confusion bugs.
type MountSpec struct {
	HostPath      string
	ContainerPath string
}

// NewBindMount returns the identity bind mount for dir.
func NewBindMount(dir string) MountSpec {
	return MountSpec{HostPath: dir, ContainerPath: dir}
}

// BuildMounts turns an ordered directory list into one MountSpec per entry.
// An empty list yields no mounts. Duplicates are preserved on purpose: the
// daemon tolerates repeated identical binds and the framework relies on the
// argument count matching the directory count.
func BuildMounts(dirs []string) []MountSpec {
	if len(dirs) == 0 {
		return nil
	}
	mounts := make([]MountSpec, 0, len(dirs))
	for _, dir := range dirs {
		mounts = append(mounts, NewBindMount(dir))
	}
	return mounts
}

// LaunchPlan is the derived, immutable view of a request after validation.
// It is only ever constructed from an image reference that passed validation.
type LaunchPlan struct {
	// Image is the validated image reference.
	Image string
	// DaemonURL is the endpoint the docker client argv connects to.
	DaemonURL string
	// LocalMounts and LogMounts are the bind mounts for the request's
	// local and log directories.
	LocalMounts []MountSpec
	LogMounts   []MountSpec
	// ScriptInContainer is the fully qualified path of the rendered launch
	// script as seen inside the container.
	ScriptInContainer string
}

// LaunchOutcome is the terminal result of one launch attempt. It is reported
// exactly once to the framework's diagnostics channel.
type LaunchOutcome struct {
	ExitCode    int
	Class       ExitCodeClass
	Diagnostics string
}
