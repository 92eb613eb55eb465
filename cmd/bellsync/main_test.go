package main

import (
	"bytes"
	"errors"
	"testing"

	"github.com/cristianoliveira/bellsync/cmd"
	"github.com/cristianoliveira/bellsync/internal/version"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunExitCodes(t *testing.T) {
	console := captureConsole(t)

	assert.Equal(t, 0, run(func() error { return nil }))
	assert.Empty(t, console.String())

	assert.Equal(t, 1, run(func() error { return errors.New("boom") }))
	assert.Contains(t, console.String(), "boom")
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, NewVersionCmd())
	require.NoError(t, err)
	assert.Equal(t, "bellsync version "+version.String()+"\n", out)
}

func TestRootHelpListsCommandsInOrder(t *testing.T) {
	var out bytes.Buffer
	cmd.RootCmd.SetOut(&out)
	cmd.RootCmd.SetArgs([]string{"--help"})
	t.Cleanup(func() {
		cmd.RootCmd.SetOut(nil)
		cmd.RootCmd.SetArgs(nil)
	})

	require.NoError(t, cmd.Execute())

	help := out.String()
	assert.Contains(t, help, "COMMANDS:")
	for _, name := range []string{"list", "read-all", "status", "watch", "follow", "version"} {
		assert.Contains(t, help, "    "+name)
	}
	assert.Less(t, bytes.Index(out.Bytes(), []byte("    list")), bytes.Index(out.Bytes(), []byte("    watch")))
	assert.Less(t, bytes.Index(out.Bytes(), []byte("    watch")), bytes.Index(out.Bytes(), []byte("    version")))
}

func TestRootRegistersEveryCommand(t *testing.T) {
	var names []string
	for _, c := range cmd.RootCmd.Commands() {
		names = append(names, c.Name())
	}
	assert.Subset(t, names, []string{
		"list", "read", "unread", "archive", "unarchive", "delete",
		"read-all", "seen-all", "status", "watch", "follow", "version",
	})
}
