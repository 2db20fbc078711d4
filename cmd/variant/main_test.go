package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dattu/lab_variants/pkg/storage"
)

func TestRunRequiresStudentID(t *testing.T) {
	root := t.TempDir()
	for _, args := range [][]string{
		{"--paths-root", root},
		{"--paths-root", root, "   "},
	} {
		var out, errOut bytes.Buffer
		assert.Equal(t, 1, run(args, &out, &errOut), "args %q", args)
		assert.NotEmpty(t, errOut.String())
		assert.NoFileExists(t, filepath.Join(root, storage.DefaultArtifact))
	}
}

func TestRunWritesArtifact(t *testing.T) {
	root := t.TempDir()
	var out, errOut bytes.Buffer
	require.Equal(t, 0, run([]string{"--paths-root", root, " johndoe123 "}, &out, &errOut), errOut.String())

	b, err := storage.Load(filepath.Join(root, storage.DefaultArtifact))
	require.NoError(t, err)
	assert.Equal(t, "johndoe123", b.StudentID)
	assert.NotNil(t, b.GeneratedAt)

	assert.Contains(t, out.String(), "Generated variant for student: johndoe123")
	assert.Contains(t, out.String(), "Circle radius: 4.6")
	assert.Contains(t, out.String(), "Rectangle: 8.59 x 6.99")
	assert.Contains(t, out.String(), "Event types: [submit debug data_update click]")
}

func TestRunRecordsHistoryAndMetrics(t *testing.T) {
	root := t.TempDir()
	prom := filepath.Join(root, "variant.prom")
	args := []string{"--paths-root", root, "--paths-history", "history.db", "--metrics-textfile", prom, "alice"}

	var out, errOut bytes.Buffer
	require.Equal(t, 0, run(args, &out, &errOut), errOut.String())
	assert.NotContains(t, out.String(), "unchanged")

	out.Reset()
	require.Equal(t, 0, run(args, &out, &errOut), errOut.String())
	assert.Contains(t, out.String(), "Content unchanged since")

	h, err := storage.OpenHistory(filepath.Join(root, "history.db"))
	require.NoError(t, err)
	defer h.Close()
	rec, err := h.Lookup("alice")
	require.NoError(t, err)
	assert.Equal(t, 2, rec.Runs)

	raw, err := os.ReadFile(prom)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `lab_variant_generate_total{outcome="ok"} 1`)
}

func TestRunRoster(t *testing.T) {
	root := t.TempDir()
	roster := filepath.Join(root, "roster.txt")
	require.NoError(t, os.WriteFile(roster, []byte("# cohort A\nalice\n\nbob42\nstudent/0\n"), 0o644))

	var out, errOut bytes.Buffer
	code := run([]string{"--paths-root", root, "--roster", roster, "--out-dir", "out", "--worker-concurrency", "2"}, &out, &errOut)
	require.Equal(t, 0, code, errOut.String())
	assert.Contains(t, out.String(), "Generated 3/3 variants")

	for id, file := range map[string]string{"alice": "alice.json", "bob42": "bob42.json", "student/0": "student_0.json"} {
		b, err := storage.Load(filepath.Join(root, "out", file))
		require.NoError(t, err, id)
		assert.Equal(t, id, b.StudentID)
	}
	assert.Equal(t, 3, strings.Count(out.String(), "Variant configuration saved to:"))
}

func TestRunRosterEmpty(t *testing.T) {
	root := t.TempDir()
	roster := filepath.Join(root, "roster.txt")
	require.NoError(t, os.WriteFile(roster, []byte("# nobody\n"), 0o644))

	var out, errOut bytes.Buffer
	assert.Equal(t, 1, run([]string{"--paths-root", root, "--roster", roster}, &out, &errOut))
}

func TestArtifactName(t *testing.T) {
	assert.Equal(t, "johndoe123.json", artifactName("johndoe123"))
	assert.Equal(t, "a_b_c.json", artifactName("a/b c"))
}
