// Package config loads and validates the launcher configuration.
package config

import (
	"fmt"

	"github.com/spf13/viper"

	"github.com/quayside/stevedore/internal/domain"
)

// Launch strategies. The original selection rule was undocumented, so the
// choice is an explicit configuration surface.
const (
	// StrategyRun issues one combined create-and-run invocation.
	StrategyRun = "run"
	// StrategyCreateStartRemove creates, starts attached, then removes, with
	// the daemon event reconciler registered before the start.
	StrategyCreateStartRemove = "create-start-remove"
)

type Config struct {
	Daemon   DaemonConfig   `mapstructure:"daemon"`
	Launcher LauncherConfig `mapstructure:"launcher"`
	Security SecurityConfig `mapstructure:"security"`
	LogLevel string         `mapstructure:"log_level"`
}

type DaemonConfig struct {
	// URL is the daemon endpoint the docker client argv connects to.
	// Required; startup fails fast when unset.
	URL string `mapstructure:"url"`
	// ImageEnvVar names the container environment variable that carries the
	// raw image reference.
	ImageEnvVar string `mapstructure:"image_env_var"`
}

type LauncherConfig struct {
	// HelperPath locates the pre-installed privileged helper executable.
	HelperPath string `mapstructure:"helper_path"`
	// DockerPath locates the docker client binary the helper re-executes.
	DockerPath string `mapstructure:"docker_path"`
	// Strategy selects the invocation shape; see the strategy constants.
	Strategy string `mapstructure:"strategy"`
}

type SecurityConfig struct {
	// AuthMode must be "simple": the privilege-separation model of the
	// helper is the access control, so stronger cluster authentication
	// modes are rejected at startup.
	AuthMode string `mapstructure:"auth_mode"`
}

// Load reads the configuration through viper and validates it. Configuration
// errors are fatal: no launch is ever attempted on a bad config.
func Load() (*Config, error) {
	viper.SetDefault("daemon.url", "unix:///var/run/docker.sock")
	viper.SetDefault("daemon.image_env_var", "STEVEDORE_IMAGE_NAME")
	viper.SetDefault("launcher.helper_path", "/usr/local/bin/stevedore-helper")
	viper.SetDefault("launcher.docker_path", "docker")
	viper.SetDefault("launcher.strategy", StrategyRun)
	viper.SetDefault("security.auth_mode", "simple")
	viper.SetDefault("log_level", "info")

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate enforces the configuration error taxonomy.
func (c *Config) Validate() error {
	if c.Daemon.URL == "" {
		return domain.ErrDaemonURLRequired
	}
	if c.Security.AuthMode != "simple" {
		return fmt.Errorf("auth mode %q: %w", c.Security.AuthMode, domain.ErrAuthModeUnsupported)
	}
	if c.Launcher.Strategy != StrategyRun && c.Launcher.Strategy != StrategyCreateStartRemove {
		return fmt.Errorf("strategy %q: %w", c.Launcher.Strategy, domain.ErrUnknownStrategy)
	}
	if c.Launcher.HelperPath == "" {
		return fmt.Errorf("launcher.helper_path is required")
	}
	if c.Launcher.DockerPath == "" {
		return fmt.Errorf("launcher.docker_path is required")
	}
	return nil
}
