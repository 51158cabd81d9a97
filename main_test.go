package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runCommand(t *testing.T, args ...string) string {
	t.Helper()
	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	require.NoError(t, cmd.Execute())
	return out.String()
}

func TestRenderTable(t *testing.T) {
	out := renderTable([]string{"Metric", "Value"}, [][]string{{"Due now", "3"}, {"short"}}, []columnAlignment{alignLeft, alignRight})
	assert.Contains(t, out, "METRIC")
	assert.Contains(t, out, "Due now")
	assert.Equal(t, "", renderTable(nil, nil, nil))
}

func TestImportStatsAndDue(t *testing.T) {
	t.Setenv("DB_TYPE", "sqlite")
	t.Setenv("LOG_LEVEL", "error")
	dataDir := t.TempDir()
	envFile := filepath.Join(dataDir, "none.env")

	csvPath := filepath.Join(dataDir, "words.csv")
	require.NoError(t, os.WriteFile(csvPath, []byte("word,definition\nlucid,clear\nvivid,bright\n"), 0o644))

	out := runCommand(t, "--env", envFile, "--data-dir", dataDir, "import", csvPath)
	assert.Contains(t, out, "CREATED")
	assert.True(t, strings.Contains(out, "2"))

	out = runCommand(t, "--env", envFile, "--data-dir", dataDir, "stats")
	assert.Contains(t, out, "Words in list")
	assert.Regexp(t, `Words in list\s*│\s*2`, out)

	out = runCommand(t, "--env", envFile, "--data-dir", dataDir, "due")
	assert.Contains(t, out, "No words are due.")
}
