package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildMounts_Empty(t *testing.T) {
	assert.Empty(t, BuildMounts(nil))
	assert.Empty(t, BuildMounts([]string{}))
}

func TestBuildMounts_HostEqualsContainer(t *testing.T) {
	mounts := BuildMounts([]string{"/d1", "/d2", "/d3"})

	assert.Len(t, mounts, 3)
	for i, dir := range []string{"/d1", "/d2", "/d3"} {
		assert.Equal(t, dir, mounts[i].HostPath)
		assert.Equal(t, dir, mounts[i].ContainerPath)
	}
}

func TestBuildMounts_KeepsDuplicates(t *testing.T) {
	mounts := BuildMounts([]string{"/d1", "/d1"})

	assert.Len(t, mounts, 2)
	assert.Equal(t, mounts[0], mounts[1])
}
