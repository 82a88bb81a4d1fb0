package main

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/aretw0/todomvc"
	"github.com/aretw0/todomvc/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type harness struct {
	t    *testing.T
	path string
}

func newCLI(t *testing.T) *harness {
	return &harness{t: t, path: t.TempDir()}
}

func (c *harness) run(stdin string, args ...string) (string, error) {
	c.t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(append([]string{"--store", "file", "--store-path", c.path}, args...))
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func (c *harness) mustRun(args ...string) string {
	c.t.Helper()
	out, err := c.run("", args...)
	require.NoError(c.t, err, out)
	return out
}

func TestTaskCommands(t *testing.T) {
	c := newCLI(t)

	out := c.mustRun("add", "Walk", "dog")
	assert.Contains(t, out, "1. [ ] Walk dog")
	assert.Contains(t, out, "**1** item left")

	c.mustRun("add", "Buy milk")
	out = c.mustRun("toggle", "1")
	assert.Contains(t, out, "1. [x] Walk dog")
	assert.Contains(t, out, "**1** item left, 1 completed")

	out = c.mustRun("ls", "active")
	assert.Contains(t, out, "Buy milk")
	assert.NotContains(t, out, "Walk dog")

	out = c.mustRun("edit", "2", "Buy", "oat", "milk")
	assert.Contains(t, out, "2. [ ] Buy oat milk")

	out = c.mustRun("toggle-all")
	assert.Contains(t, out, "**0** items left, 2 completed")

	out = c.mustRun("toggle-all", "--off")
	assert.Contains(t, out, "**2** items left")

	out = c.mustRun("rm", "1")
	assert.NotContains(t, out, "Walk dog")

	c.mustRun("toggle", "1")
	out = c.mustRun("clear")
	assert.Contains(t, out, "Nothing to show")
}

func TestTaskCommands_Errors(t *testing.T) {
	c := newCLI(t)
	c.mustRun("add", "Walk dog")

	_, err := c.run("", "toggle", "9")
	assert.ErrorIs(t, err, domain.ErrTaskNotFound)

	_, err = c.run("", "ls", "done")
	assert.Error(t, err)

	_, err = c.run("", "ls", "--store", "postgres")
	assert.Error(t, err)
}

func TestStoreCommands(t *testing.T) {
	c := newCLI(t)
	c.mustRun("add", "Walk dog")
	c.mustRun("add", "Other list", "--namespace", "groceries")

	out := c.mustRun("store", "inspect")
	assert.Contains(t, out, `"title":"Walk dog"`)

	out = c.mustRun("store", "inspect", "--keys")
	assert.Contains(t, out, "todos-jquery")
	assert.Contains(t, out, "groceries")

	out = c.mustRun("store", "reset", "groceries")
	assert.Contains(t, out, "reset groceries")

	out = c.mustRun("store", "inspect", "--keys")
	assert.NotContains(t, out, "groceries")
}

func TestShell(t *testing.T) {
	c := newCLI(t)
	out, err := c.run("add Walk dog\ntoggle 1\nexit\n", "shell", "--headless")
	require.NoError(t, err, out)
	assert.Contains(t, out, "[x] Walk dog")

	out = c.mustRun("ls")
	assert.Contains(t, out, "[x] Walk dog")
}

func TestVersion(t *testing.T) {
	out := newCLI(t).mustRun("version")
	assert.Equal(t, "todomvc version "+strings.TrimSpace(todomvc.Version)+"\n", out)
}
