// Package request decodes the launch request document the framework hands to
// the launcher.
package request

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/quayside/stevedore/internal/domain"
)

// Document is the on-disk YAML form of a launch request. Besides the request
// fields proper it carries the workload command and the localized-resource
// links the launch script is rendered from.
type Document struct {
	ContainerID string            `yaml:"container_id"`
	User        string            `yaml:"user"`
	AppID       string            `yaml:"app_id"`
	WorkDir     string            `yaml:"work_dir"`
	LocalDirs   []string          `yaml:"local_dirs"`
	LogDirs     []string          `yaml:"log_dirs"`
	ScriptPath  string            `yaml:"script_path"`
	TokensPath  string            `yaml:"tokens_path"`
	Env         map[string]string `yaml:"env"`
	// Command is the workload command, the launch script's last statement.
	Command []string `yaml:"command"`
	// Resources maps a localized resource path to the link names it must be
	// symlinked at inside the container working directory.
	Resources map[string][]string `yaml:"resources"`
}

// Load reads and validates a launch request document.
func Load(path string) (*Document, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read request file %s: %w", path, err)
	}
	return Parse(content)
}

// Parse decodes a launch request document from raw YAML.
func Parse(content []byte) (*Document, error) {
	var doc Document
	if err := yaml.Unmarshal(content, &doc); err != nil {
		return nil, fmt.Errorf("failed to unmarshal request: %w", err)
	}
	if err := doc.validate(); err != nil {
		return nil, err
	}
	return &doc, nil
}

// ToLaunchRequest builds the immutable request, overlaying the document's
// own env entries on top of the framework env file contents.
func (d *Document) ToLaunchRequest(fileEnv map[string]string) domain.LaunchRequest {
	env := make(map[string]string, len(fileEnv)+len(d.Env))
	for key, value := range fileEnv {
		env[key] = value
	}
	for key, value := range d.Env {
		env[key] = value
	}

	return domain.LaunchRequest{
		ContainerID: d.ContainerID,
		User:        d.User,
		AppID:       d.AppID,
		WorkDir:     d.WorkDir,
		LocalDirs:   d.LocalDirs,
		LogDirs:     d.LogDirs,
		ScriptPath:  d.ScriptPath,
		TokensPath:  d.TokensPath,
		Env:         env,
	}
}

func (d *Document) validate() error {
	checks := []struct {
		field string
		value string
	}{
		{"container_id", d.ContainerID},
		{"user", d.User},
		{"app_id", d.AppID},
		{"work_dir", d.WorkDir},
		{"script_path", d.ScriptPath},
		{"tokens_path", d.TokensPath},
	}
	for _, check := range checks {
		if check.value == "" {
			return fmt.Errorf("request field %s is required", check.field)
		}
	}
	if len(d.Command) == 0 {
		return fmt.Errorf("request field command is required")
	}
	return nil
}
