package invoker

import (
	"strings"

	"github.com/quayside/stevedore/internal/domain"
)

// passwdBindMount exposes the host's user identity file read-only so the
// --user mapping resolves inside the image.
const passwdBindMount = "/etc/passwd:/etc/passwd:ro"

// ArgvBuilder renders full argument vectors for privileged operations.
type ArgvBuilder struct {
	// HelperPath locates the privileged helper executable.
	HelperPath string
	// DockerPath locates the docker client the helper re-executes.
	DockerPath string
}

// helperPrefix is the stable positional prefix every invocation starts with:
// helper, real user, effective user, op code, app id, container id, workdir,
// private script path, private tokens path, csv local dirs, csv log dirs.
func (b *ArgvBuilder) helperPrefix(op OpCode, req domain.LaunchRequest) []string {
	return []string{
		b.HelperPath,
		req.User,
		req.User,
		op.String(),
		req.AppID,
		req.ContainerID,
		req.WorkDir,
		req.ScriptPath,
		req.TokensPath,
		strings.Join(req.LocalDirs, ","),
		strings.Join(req.LogDirs, ","),
	}
}

// createOptions are the docker options shared by create and run: host
// networking, container name equal to the container id, user mapping,
// working directory, the read-only passwd bind, one bind per local/log dir,
// then the validated image and the in-container script invocation.
func createOptions(req domain.LaunchRequest, plan domain.LaunchPlan) []string {
	args := []string{
		"--net", "host",
		"--name", req.ContainerID,
		"--user", req.User,
		"--workdir", req.WorkDir,
		"-v", passwdBindMount,
	}
	for _, mount := range plan.LocalMounts {
		args = append(args, "-v", mount.HostPath+":"+mount.ContainerPath)
	}
	for _, mount := range plan.LogMounts {
		args = append(args, "-v", mount.HostPath+":"+mount.ContainerPath)
	}
	args = append(args, plan.Image, "bash", plan.ScriptInContainer)
	return args
}

// CreateArgv builds the create-without-start invocation.
func (b *ArgvBuilder) CreateArgv(req domain.LaunchRequest, plan domain.LaunchPlan) []string {
	argv := b.helperPrefix(OpCreateContainer, req)
	argv = append(argv, b.DockerPath, "-H", plan.DaemonURL, "create")
	return append(argv, createOptions(req, plan)...)
}

// RunArgv builds the combined create-and-run invocation. The container is
// removed by the daemon when it exits.
func (b *ArgvBuilder) RunArgv(req domain.LaunchRequest, plan domain.LaunchPlan) []string {
	argv := b.helperPrefix(OpRunContainer, req)
	argv = append(argv, b.DockerPath, "-H", plan.DaemonURL, "run", "--rm")
	return append(argv, createOptions(req, plan)...)
}

// StartArgv builds the attached start invocation; the call blocks until the
// container exits and its exit code is the container's.
func (b *ArgvBuilder) StartArgv(req domain.LaunchRequest, plan domain.LaunchPlan) []string {
	argv := b.helperPrefix(OpManageContainer, req)
	return append(argv, b.DockerPath, "-H", plan.DaemonURL, "start", "-a", req.ContainerID)
}

// RemoveArgv builds the remove invocation for a stopped container.
func (b *ArgvBuilder) RemoveArgv(req domain.LaunchRequest, plan domain.LaunchPlan) []string {
	argv := b.helperPrefix(OpRemoveContainer, req)
	return append(argv, b.DockerPath, "-H", plan.DaemonURL, "rm", req.ContainerID)
}
