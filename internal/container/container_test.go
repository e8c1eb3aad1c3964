package container

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type call struct {
	dir  string
	name string
	args []string
}

type fakeRunner struct {
	runErr    error
	outputErr error
	output    string
	calls     []call
}

func (f *fakeRunner) Run(_ context.Context, dir string, name string, args ...string) error {
	f.calls = append(f.calls, call{dir: dir, name: name, args: args})
	return f.runErr
}

func (f *fakeRunner) Output(_ context.Context, name string, args ...string) (string, error) {
	f.calls = append(f.calls, call{name: name, args: args})
	return f.output, f.outputErr
}

func TestName(t *testing.T) {
	client := NewClientAt("/usr/bin/podman", &fakeRunner{})
	assert.Equal(t, "podman", client.Name())
}

func TestBuild(t *testing.T) {
	runner := &fakeRunner{}
	client := NewClientAt("/usr/bin/docker", runner)

	require.NoError(t, client.Build(context.Background(), "binwalk-3.1.0", "binwalkv3"))

	require.Len(t, runner.calls, 1)
	assert.Equal(t, "binwalk-3.1.0", runner.calls[0].dir)
	assert.Equal(t, "/usr/bin/docker", runner.calls[0].name)
	assert.Equal(t, []string{"build", "-t", "binwalkv3", "."}, runner.calls[0].args)
}

func TestBuildFailure(t *testing.T) {
	runner := &fakeRunner{runErr: errors.New("exit status 1")}
	client := NewClientAt("/usr/bin/docker", runner)

	err := client.Build(context.Background(), "binwalk-3.1.0", "binwalkv3")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "docker build failed")
}

func TestImageExists(t *testing.T) {
	runner := &fakeRunner{output: "[{...}]"}
	client := NewClientAt("/usr/bin/docker", runner)

	assert.True(t, client.ImageExists(context.Background(), "binwalkv3"))
	assert.Equal(t, []string{"image", "inspect", "binwalkv3"}, runner.calls[0].args)

	runner.outputErr = errors.New("exit status 1")
	assert.False(t, client.ImageExists(context.Background(), "binwalkv3"))
}

func TestRemoveImage(t *testing.T) {
	runner := &fakeRunner{}
	client := NewClientAt("/usr/bin/docker", runner)

	require.NoError(t, client.RemoveImage(context.Background(), "binwalkv3"))
	assert.Equal(t, []string{"image", "rm", "binwalkv3"}, runner.calls[0].args)

	runner.runErr = errors.New("image is in use")
	err := client.RemoveImage(context.Background(), "binwalkv3")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "binwalkv3")
}

func TestVersion(t *testing.T) {
	runner := &fakeRunner{output: "Docker version 27.4.1"}
	client := NewClientAt("/usr/bin/docker", runner)

	version, err := client.Version(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Docker version 27.4.1", version)
}

func TestFindRuntimeMissing(t *testing.T) {
	t.Setenv("PATH", t.TempDir())

	_, err := findRuntime()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "docs.docker.com")
	assert.Contains(t, err.Error(), "docker group")
}
