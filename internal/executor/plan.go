package executor

import (
	"path"

	"github.com/quayside/stevedore/internal/config"
	"github.com/quayside/stevedore/internal/domain"
	"github.com/quayside/stevedore/pkg/validation"
)

// ScriptName is the rendered launch script's file name inside the container
// working directory.
const ScriptName = "launch_container.sh"

// ResolvePlan derives the immutable launch plan from a request and the
// configuration. It is a pure function: no partially constructed state can
// escape, and a plan is never produced for an image reference that fails
// validation.
func ResolvePlan(req domain.LaunchRequest, cfg *config.Config) (domain.LaunchPlan, error) {
	image, err := validation.ValidateImageReference(req.Env[cfg.Daemon.ImageEnvVar])
	if err != nil {
		return domain.LaunchPlan{}, err
	}

	return domain.LaunchPlan{
		Image:             image,
		DaemonURL:         cfg.Daemon.URL,
		LocalMounts:       domain.BuildMounts(req.LocalDirs),
		LogMounts:         domain.BuildMounts(req.LogDirs),
		ScriptInContainer: path.Join(req.WorkDir, ScriptName),
	}, nil
}
