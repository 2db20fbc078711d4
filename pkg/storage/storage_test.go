package storage

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dattu/lab_variants/pkg/variant"
)

func mustGenerate(t *testing.T, id string) *variant.Bundle {
	t.Helper()
	b, err := variant.Generate(id)
	require.NoError(t, err)
	return b
}

func TestAtomicWriteOverwrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "out.json")
	require.NoError(t, AtomicWrite(path, []byte("first"), 0o644))
	require.NoError(t, AtomicWrite(path, []byte("second"), 0o644))

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "second", string(got))

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp files must not be left behind")
}

func TestSaveStampsAndLoadRoundTrips(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultArtifact)
	b := mustGenerate(t, "johndoe123")
	now := time.Date(2026, 10, 14, 9, 30, 0, 0, time.FixedZone("X", 3*3600))

	require.NoError(t, SaveAt(b, path, now))
	require.NotNil(t, b.GeneratedAt)
	assert.Equal(t, time.UTC, b.GeneratedAt.Location())

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	var generic map[string]any
	require.NoError(t, json.Unmarshal(raw, &generic))
	assert.Equal(t, "2026-10-14T06:30:00Z", generic["generated_at"])

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.True(t, loaded.GeneratedAt.Equal(now))
	loaded.GeneratedAt, b.GeneratedAt = nil, nil
	assert.Equal(t, b, loaded)
}

func TestSaveTwiceRefreshesOnlyTimestamp(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultArtifact)
	first := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	require.NoError(t, SaveAt(mustGenerate(t, "alice"), path, first))
	a, err := Load(path)
	require.NoError(t, err)

	require.NoError(t, SaveAt(mustGenerate(t, "alice"), path, first.Add(time.Hour)))
	b, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, time.Hour, b.GeneratedAt.Sub(*a.GeneratedAt))
	da, err := ContentDigest(a)
	require.NoError(t, err)
	db, err := ContentDigest(b)
	require.NoError(t, err)
	assert.Equal(t, da, db)
}

func TestLoadMissing(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.json"))
	require.ErrorIs(t, err, ErrMissingArtifact)
}

func TestLoadRejectsInvalidArtifact(t *testing.T) {
	dir := t.TempDir()
	cases := map[string]string{
		"not json":       `{"student_id":`,
		"missing shapes": `{"student_id":"x","lab":"l","payment_tests":{},"observer_tests":{},"composition_tests":{}}`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(dir, name+".json")
			require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
			_, err := Load(path)
			require.Error(t, err)
			assert.NotErrorIs(t, err, ErrMissingArtifact)
		})
	}
}

func TestValidateRejectsShortEventList(t *testing.T) {
	b := mustGenerate(t, "bob42")
	b.Observer.EventTypes = b.Observer.EventTypes[:3]
	raw, err := json.Marshal(b)
	require.NoError(t, err)
	require.Error(t, Validate(raw))

	b.Observer.EventTypes = variant.Default().Observer.EventTypes
	raw, err = json.Marshal(b)
	require.NoError(t, err)
	require.NoError(t, Validate(raw))
}

func TestContentDigestIgnoresTimestamp(t *testing.T) {
	a := mustGenerate(t, "alice")
	b := mustGenerate(t, "alice")
	now := time.Now()
	b.GeneratedAt = &now

	da, err := ContentDigest(a)
	require.NoError(t, err)
	db, err := ContentDigest(b)
	require.NoError(t, err)
	assert.Equal(t, da, db)
	assert.Len(t, da, 64)
	require.NotNil(t, b.GeneratedAt, "digest must not clear the caller's stamp")

	other, err := ContentDigest(mustGenerate(t, "bob42"))
	require.NoError(t, err)
	assert.NotEqual(t, da, other)
}

func TestHistoryRecordAndLookup(t *testing.T) {
	h, err := OpenHistory(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	defer h.Close()

	_, err = h.Lookup("alice")
	require.ErrorIs(t, err, ErrNoRecord)

	now := time.Date(2026, 10, 14, 0, 0, 0, 0, time.UTC)
	prev, err := h.Record(Record{StudentID: "alice", Digest: "d1", GeneratedAt: now})
	require.NoError(t, err)
	assert.Nil(t, prev)

	prev, err = h.Record(Record{StudentID: "alice", Digest: "d1", GeneratedAt: now.Add(time.Minute)})
	require.NoError(t, err)
	require.NotNil(t, prev)
	assert.Equal(t, 1, prev.Runs)

	rec, err := h.Lookup("alice")
	require.NoError(t, err)
	assert.Equal(t, 2, rec.Runs)
	assert.Equal(t, "d1", rec.Digest)
	assert.NotEqual(t, prev.RunID, rec.RunID)
	assert.True(t, rec.GeneratedAt.Equal(now.Add(time.Minute)))

	_, err = h.Record(Record{StudentID: "bob42", Digest: "d2", GeneratedAt: now})
	require.NoError(t, err)
	all, err := h.List()
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "alice", all[0].StudentID)
	assert.Equal(t, "bob42", all[1].StudentID)
}

func TestBatcherFlushesOnClose(t *testing.T) {
	h, err := OpenHistory(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	defer h.Close()

	b := NewBatcher(h)
	for i := 0; i < 3; i++ {
		b.Put(Record{StudentID: "carol", Digest: "d", GeneratedAt: time.Now()})
	}
	b.Put(Record{StudentID: "dave", Digest: "d", GeneratedAt: time.Now()})
	b.Close()
	b.Close()

	rec, err := h.Lookup("carol")
	require.NoError(t, err)
	assert.Equal(t, 3, rec.Runs)
	_, err = h.Lookup("dave")
	require.NoError(t, err)
}
