package cmd

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	charmlog "github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	dockeradapter "github.com/quayside/stevedore/internal/adapters/docker"
	"github.com/quayside/stevedore/internal/config"
	"github.com/quayside/stevedore/internal/envfile"
	"github.com/quayside/stevedore/internal/events"
	"github.com/quayside/stevedore/internal/executor"
	"github.com/quayside/stevedore/internal/invoker"
	"github.com/quayside/stevedore/internal/request"
	"github.com/quayside/stevedore/internal/script"
	"github.com/quayside/stevedore/pkg/logger"
)

// cancelMarker is the file the framework touches in the container working
// directory to withdraw a container between scheduling and launch.
const cancelMarker = ".cancelled"

var (
	requestPath string
	envFilePath string
)

var launchCmd = &cobra.Command{
	Use:   "launch",
	Short: "Launch one container on behalf of the framework",
	Long: `Render the launch script for a framework request, invoke the privileged
helper to create and run the container, and exit with the launch's exit code.`,
	RunE: runLaunch,
}

func init() {
	rootCmd.AddCommand(launchCmd)
	launchCmd.Flags().StringVar(&requestPath, "request", "", "launch request document (YAML)")
	launchCmd.Flags().StringVar(&envFilePath, "env-file", "", "container environment file")
	_ = launchCmd.MarkFlagRequired("request")
}

func runLaunch(cmd *cobra.Command, args []string) error {
	log := logger.GetLogger()
	log.ConfigureFromEnv()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	log.SetLogLevel(cfg.LogLevel)

	doc, err := request.Load(requestPath)
	if err != nil {
		return err
	}
	fileEnv, err := envfile.Load(envFilePath)
	if err != nil {
		return err
	}
	req := doc.ToLaunchRequest(fileEnv)

	log.Info("launching container",
		"container_id", req.ContainerID, "app_id", req.AppID, "user", req.User,
		"strategy", cfg.Launcher.Strategy)

	if err := renderLaunchScript(cfg, doc, req.Env); err != nil {
		return err
	}

	var (
		subscriber executor.LifecycleSubscriber
		lookup     executor.ContainerLookup
	)
	daemon, err := dockeradapter.NewDaemon(cfg.Daemon.URL)
	if err != nil {
		// Event reconciliation is best-effort; the helper path still works
		// through -H even when the local client cannot connect.
		log.Warn("daemon client unavailable, lifecycle events disabled", "error", err)
	} else {
		defer daemon.Close()
		pingCtx, cancel := context.WithTimeout(cmd.Context(), 5*time.Second)
		if pingErr := daemon.Ping(pingCtx); pingErr != nil {
			log.Warn("daemon not reachable from launcher", "url", cfg.Daemon.URL, "error", pingErr)
		}
		cancel()
		subscriber = events.NewReconciler(daemon)
		lookup = daemon
	}

	orchestrator, err := executor.NewOrchestrator(cfg, invoker.NewShellInvoker(), subscriber, lookup)
	if err != nil {
		return err
	}

	exec := executor.New(cfg,
		markerTracker{workDir: req.WorkDir},
		fileDiagnostics{path: filepath.Join(req.WorkDir, "container-diagnostics.txt")},
		orchestrator)

	code, err := exec.LaunchContainer(cmd.Context(), req)
	if err != nil {
		return err
	}

	log.Info("launch finished", "container_id", req.ContainerID, "exit_code", code)
	if code != 0 {
		os.Exit(processExitStatus(code))
	}
	return nil
}

// renderLaunchScript writes the in-container script to the framework-private
// script path. Resource targets are sorted so the output is reproducible.
func renderLaunchScript(cfg *config.Config, doc *request.Document, env map[string]string) error {
	builder := script.NewBuilder(cfg.Daemon.ImageEnvVar)
	builder.SetEnv(env)

	targets := make([]string, 0, len(doc.Resources))
	for target := range doc.Resources {
		targets = append(targets, target)
	}
	sort.Strings(targets)
	for _, target := range targets {
		for _, link := range doc.Resources[target] {
			builder.Symlink(target, link)
		}
	}
	builder.SetCommand(doc.Command)

	log := logger.GetLogger()
	if log.GetLevel() <= charmlog.DebugLevel {
		var preview bytes.Buffer
		if err := builder.Render(&preview); err == nil {
			log.Debug("rendered launch script", "path", doc.ScriptPath, "script", preview.String())
		}
	}

	out, err := os.OpenFile(doc.ScriptPath, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o700)
	if err != nil {
		return fmt.Errorf("failed to create launch script %s: %w", doc.ScriptPath, err)
	}
	return builder.RenderAndClose(out)
}

// processExitStatus clamps a launch exit code onto the 0-255 range a process
// can actually exit with; -1 (helper never started) becomes 255.
func processExitStatus(code int) int {
	if code < 0 || code > 255 {
		return 255
	}
	return code
}

// markerTracker treats a container as inactive once the framework has placed
// the cancel marker in its working directory.
type markerTracker struct {
	workDir string
}

func (t markerTracker) IsActive(containerID string) bool {
	// Only a confirmed marker means cancelled; a failing stat (permissions,
	// broken workdir) must not silently skip the launch.
	_, err := os.Stat(filepath.Join(t.workDir, cancelMarker))
	return err != nil
}

// fileDiagnostics appends diagnostics updates to a framework-readable file
// next to the container's other launch artifacts.
type fileDiagnostics struct {
	path string
}

func (d fileDiagnostics) Update(containerID, diagnostics string) {
	f, err := os.OpenFile(d.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600)
	if err != nil {
		logger.GetLogger().Warn("failed to write diagnostics", "container_id", containerID, "error", err)
		return
	}
	defer f.Close()
	fmt.Fprintf(f, "%s: %s\n", containerID, diagnostics)
}
