package request

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validDoc = `
container_id: container_1_0001
user: alice
app_id: app_42
work_dir: /work/container_1_0001
local_dirs:
  - /d1
  - /d2
log_dirs:
  - /logs
script_path: /private/launch.sh
tokens_path: /private/tokens
env:
  STEVEDORE_IMAGE_NAME: myrepo/worker:1.2
command:
  - python3
  - job.py
resources:
  /cache/app.jar:
    - app.jar
`

func TestParse_ValidDocument(t *testing.T) {
	doc, err := Parse([]byte(validDoc))

	require.NoError(t, err)
	assert.Equal(t, "container_1_0001", doc.ContainerID)
	assert.Equal(t, "alice", doc.User)
	assert.Equal(t, []string{"/d1", "/d2"}, doc.LocalDirs)
	assert.Equal(t, []string{"python3", "job.py"}, doc.Command)
	assert.Equal(t, []string{"app.jar"}, doc.Resources["/cache/app.jar"])
}

func TestParse_MissingRequiredField(t *testing.T) {
	doc := `
user: alice
app_id: app_42
work_dir: /work
script_path: /private/launch.sh
tokens_path: /private/tokens
command: ["true"]
`
	_, err := Parse([]byte(doc))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "container_id")
}

func TestParse_MissingCommand(t *testing.T) {
	doc := `
container_id: container_1_0001
user: alice
app_id: app_42
work_dir: /work
script_path: /private/launch.sh
tokens_path: /private/tokens
`
	_, err := Parse([]byte(doc))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "command")
}

func TestParse_MalformedYAML(t *testing.T) {
	_, err := Parse([]byte("container_id: [unclosed"))

	assert.Error(t, err)
}

func TestToLaunchRequest_DocumentEnvOverlaysFileEnv(t *testing.T) {
	doc, err := Parse([]byte(validDoc))
	require.NoError(t, err)

	req := doc.ToLaunchRequest(map[string]string{
		"PATH":                 "/usr/bin",
		"STEVEDORE_IMAGE_NAME": "stale/image:0.1",
	})

	assert.Equal(t, "/usr/bin", req.Env["PATH"])
	assert.Equal(t, "myrepo/worker:1.2", req.Env["STEVEDORE_IMAGE_NAME"],
		"document entries win over env file entries")
	assert.Equal(t, "container_1_0001", req.ContainerID)
}

func TestLoad_FromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "request.yaml")
	require.NoError(t, os.WriteFile(path, []byte(validDoc), 0o600))

	doc, err := Load(path)

	require.NoError(t, err)
	assert.Equal(t, "container_1_0001", doc.ContainerID)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))

	assert.Error(t, err)
}
