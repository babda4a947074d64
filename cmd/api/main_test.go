package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/5w1tchy/textbooks-api/internal/service"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func useTempStore(t *testing.T) {
	t.Helper()
	t.Setenv("DATABASE_URL", "bolt://"+filepath.Join(t.TempDir(), "cli.db"))
	t.Setenv("MONGODB_URI", "")
	t.Setenv("REDIS_URL", "")
	t.Setenv("LOG_LEVEL", "error")
}

func TestRootCommand_Subcommands(t *testing.T) {
	var names []string
	for _, c := range newRootCmd().Commands() {
		names = append(names, c.Name())
	}
	assert.Subset(t, names, []string{"serve", "courses", "audit"})
}

func TestCoursesImport_ThenAudit(t *testing.T) {
	useTempStore(t)

	file := filepath.Join(t.TempDir(), "courses.json")
	data, err := json.Marshal([]service.CourseInput{
		{Department: "cs", Number: "101", Title: "Intro"},
		{Department: "CS", Number: "101", Title: "Intro again"},
		{Department: "math", Number: "200", Title: "Proofs"},
	})
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(file, data, 0o600))

	out, err := run(t, "courses", "import", file)
	require.NoError(t, err)
	assert.Contains(t, out, "created 2, skipped 1")

	out, err = run(t, "audit")
	require.NoError(t, err)
	var report service.Report
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.True(t, report.OK())
}

func TestCoursesImport_BadFile(t *testing.T) {
	useTempStore(t)

	file := filepath.Join(t.TempDir(), "courses.json")
	require.NoError(t, os.WriteFile(file, []byte(`{"not":"an array"}`), 0o600))

	_, err := run(t, "courses", "import", file)
	assert.ErrorContains(t, err, "courses.json")

	_, err = run(t, "courses", "import", filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}

func TestRoot_InvalidConfig(t *testing.T) {
	t.Setenv("DATABASE_URL", "mysql://nope")
	_, err := run(t, "audit")
	assert.ErrorContains(t, err, "DATABASE_URL")
}
