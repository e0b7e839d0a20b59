// Package script renders the self-contained launch script executed inside
// the container: exported environment, symlinked resources, final command.
package script

import (
	"fmt"
	"io"
	"sort"
	"strings"
)

// DefaultExclusions is the fixed set of launcher/runtime installation
// variables that must never leak into the image environment. They describe
// the host-side installation and are meaningless or dangerous inside the
// container. The image-name source variable is appended at build time since
// its name is configurable.
var DefaultExclusions = []string{
	"STEVEDORE_HOME",
	"STEVEDORE_CONF_DIR",
	"FRAMEWORK_HOME",
	"FRAMEWORK_CONF_DIR",
}

type symlink struct {
	target string
	link   string
}

// Builder accumulates the script contents and renders them deterministically:
// same inputs, byte-identical output.
type Builder struct {
	env        map[string]string
	links      []symlink
	command    []string
	exclusions map[string]struct{}
}

// NewBuilder returns a Builder that omits the given variable names on top of
// DefaultExclusions.
func NewBuilder(extraExclusions ...string) *Builder {
	exclusions := make(map[string]struct{}, len(DefaultExclusions)+len(extraExclusions))
	for _, name := range DefaultExclusions {
		exclusions[name] = struct{}{}
	}
	for _, name := range extraExclusions {
		if name != "" {
			exclusions[name] = struct{}{}
		}
	}
	return &Builder{
		env:        make(map[string]string),
		exclusions: exclusions,
	}
}

// SetEnv registers the container environment. Excluded keys are dropped here
// so the rendered script never sees them.
func (b *Builder) SetEnv(env map[string]string) {
	for key, value := range env {
		if _, excluded := b.exclusions[key]; excluded {
			continue
		}
		b.env[key] = value
	}
}

// Symlink adds a link creation statement for a localized resource.
func (b *Builder) Symlink(target, link string) {
	b.links = append(b.links, symlink{target: target, link: link})
}

// SetCommand sets the final command, executed as the script's last statement.
func (b *Builder) SetCommand(command []string) {
	b.command = command
}

// Render writes the script to w. Environment exports are sorted by key;
// symlinks keep registration order.
func (b *Builder) Render(w io.Writer) error {
	if _, err := io.WriteString(w, "#!/usr/bin/env bash\n\n"); err != nil {
		return fmt.Errorf("failed to write script header: %w", err)
	}

	keys := make([]string, 0, len(b.env))
	for key := range b.env {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		if _, err := fmt.Fprintf(w, "export %s=%q\n", key, b.env[key]); err != nil {
			return fmt.Errorf("failed to write export for %s: %w", key, err)
		}
	}

	for _, ln := range b.links {
		if _, err := fmt.Fprintf(w, "ln -sf %q %q\n", ln.target, ln.link); err != nil {
			return fmt.Errorf("failed to write symlink for %s: %w", ln.link, err)
		}
	}

	if len(b.command) > 0 {
		if _, err := fmt.Fprintf(w, "%s\n", strings.Join(b.command, " ")); err != nil {
			return fmt.Errorf("failed to write command: %w", err)
		}
	}
	return nil
}

// RenderAndClose renders to wc and closes it on every exit path. A close
// failure is reported only when rendering itself succeeded; it never masks
// the primary error.
func (b *Builder) RenderAndClose(wc io.WriteCloser) error {
	renderErr := b.Render(wc)
	closeErr := wc.Close()
	if renderErr != nil {
		return renderErr
	}
	if closeErr != nil {
		return fmt.Errorf("failed to close script output: %w", closeErr)
	}
	return nil
}
