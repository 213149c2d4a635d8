package main

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"cgapply/cgroups/subsystems"
	"cgapply/config"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordRunner struct {
	calls  []string
	failOn string
}

func (r *recordRunner) Run(argv []string) error {
	cmd := strings.Join(argv, " ")
	r.calls = append(r.calls, cmd)
	if cmd == r.failOn {
		return errors.New("exit status 1")
	}
	return nil
}

func runApp(t *testing.T, runner *recordRunner, args ...string) error {
	t.Helper()
	app := newApp(runner)
	app.Writer = io.Discard
	app.ErrWriter = io.Discard
	return app.Run(append([]string{"cgapply", "--log-level", "panic"}, args...))
}

func writeConfig(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cgapply.toml")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0644))
	return path
}

const example = `
["cron"]
"memory.max_usage_in_bytes" = 500000
"cpu.shares" = 512

["cron/special_task"]
"memory.max_usage_in_bytes" = 600000
"blkio.weight" = 100
`

func TestApply(t *testing.T) {
	runner := &recordRunner{}
	require.NoError(t, runApp(t, runner, "--config", writeConfig(t, example)))
	assert.Equal(t, []string{
		"cgcreate -g memory,cpu:/cron",
		"cgset -r memory.max_usage_in_bytes=500000 /cron",
		"cgset -r cpu.shares=512 /cron",
		"cgcreate -g memory,blkio:/cron/special_task",
		"cgset -r memory.max_usage_in_bytes=600000 /cron/special_task",
		"cgset -r blkio.weight=100 /cron/special_task",
	}, runner.calls)
}

func TestMissingConfig(t *testing.T) {
	runner := &recordRunner{}
	path := filepath.Join(t.TempDir(), "missing.toml")

	err := runApp(t, runner, "--config", path)
	require.Error(t, err)
	assert.True(t, errors.Is(err, config.ErrNotFound))
	assert.Contains(t, err.Error(), path)
	assert.Empty(t, runner.calls)
}

func TestMalformedKeyAbortsRun(t *testing.T) {
	runner := &recordRunner{}
	path := writeConfig(t, `
["cron"]
"cpu.shares" = 512

["broken"]
"invalidkey" = 1

["later"]
"cpu.shares" = 128
`)

	err := runApp(t, runner, "--config", path)
	require.Error(t, err)
	assert.True(t, errors.Is(err, subsystems.ErrMalformedKey))
	assert.Empty(t, runner.calls)
}

func TestFailureIsNotFatal(t *testing.T) {
	runner := &recordRunner{failOn: "cgcreate -g memory,cpu:/cron"}
	path := writeConfig(t, example)

	require.NoError(t, runApp(t, runner, "--config", path))
	assert.Contains(t, runner.calls, "cgcreate -g memory,blkio:/cron/special_task")
	assert.Len(t, runner.calls, 4)
}

func TestStrict(t *testing.T) {
	runner := &recordRunner{failOn: "cgcreate -g memory,cpu:/cron"}
	path := writeConfig(t, example)

	err := runApp(t, runner, "--strict", "--config", path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cgroup cron")
	assert.Len(t, runner.calls, 4)
}

func TestDryRun(t *testing.T) {
	runner := &recordRunner{}
	require.NoError(t, runApp(t, runner, "--dry-run", "--config", writeConfig(t, example)))
	assert.Empty(t, runner.calls)
}

func TestCustomTools(t *testing.T) {
	runner := &recordRunner{}
	path := writeConfig(t, `
["cron"]
"cpu.shares" = 512
`)

	require.NoError(t, runApp(t, runner, "--cgcreate", "sudo -n cgcreate", "--cgset", "'/usr/local/bin/cgset'", "--config", path))
	assert.Equal(t, []string{
		"sudo -n cgcreate -g cpu:/cron",
		"/usr/local/bin/cgset -r cpu.shares=512 /cron",
	}, runner.calls)
}

func TestConfigFromEnv(t *testing.T) {
	runner := &recordRunner{}
	t.Setenv("CGAPPLY_CONFIG", writeConfig(t, `
["env"]
"cpu.shares" = 2
`))

	require.NoError(t, runApp(t, runner))
	assert.Equal(t, []string{"cgcreate -g cpu:/env", "cgset -r cpu.shares=2 /env"}, runner.calls)
}

func TestBadArguments(t *testing.T) {
	runner := &recordRunner{}
	path := writeConfig(t, example)

	assert.Error(t, runApp(t, runner, "--config", path, "extra"))
	assert.Error(t, runApp(t, runner, "--cgset", "", "--config", path))
	assert.Error(t, runApp(t, runner, "--log-format", "xml", "--config", path))
	assert.Empty(t, runner.calls)
}
