package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateImageReference_Accepts(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"plain repository", "ubuntu", "ubuntu"},
		{"repository with tag", "myrepo/worker:1.2", "myrepo/worker:1.2"},
		{"registry host", "registry.example.com/app", "registry.example.com/app"},
		{"registry host with port", "registry.example.com:5000/app:latest", "registry.example.com:5000/app:latest"},
		{"dots and hyphens", "my-org.io/some-image:v1.0.0", "my-org.io/some-image:v1.0.0"},
		{"double quoted", `"myrepo/worker:1.2"`, "myrepo/worker:1.2"},
		{"single quoted", "'ubuntu:22.04'", "ubuntu:22.04"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ValidateImageReference(tt.raw)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestValidateImageReference_Rejects(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"empty", ""},
		{"only quotes", `""`},
		{"space", "bad image"},
		{"quoted space", `"bad image"`},
		{"semicolon", "ubuntu;rm -rf /"},
		{"backtick", "ubuntu`id`"},
		{"pipe", "ubuntu|cat"},
		{"dollar", "ubuntu$PATH"},
		{"ampersand", "ubuntu&"},
		{"newline", "ubuntu\nrm"},
		{"otherwise valid content with space", "registry.example.com:5000/app latest"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ValidateImageReference(tt.raw)
			assert.Error(t, err)
		})
	}
}
