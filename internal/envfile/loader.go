// Package envfile loads the container's sanitized environment from the
// framework-written env file accompanying a launch request.
package envfile

import (
	"fmt"

	"github.com/joho/godotenv"
)

// Load reads the env file at path. An empty path means the framework passed
// no extra environment and yields an empty map, not an error.
func Load(path string) (map[string]string, error) {
	if path == "" {
		return map[string]string{}, nil
	}
	env, err := godotenv.Read(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read env file %s: %w", path, err)
	}
	return env, nil
}
