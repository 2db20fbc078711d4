package fixtures

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dattu/lab_variants/pkg/storage"
	"github.com/dattu/lab_variants/pkg/variant"
)

func TestLoadFallsBackToDefault(t *testing.T) {
	f, err := Load(filepath.Join(t.TempDir(), storage.DefaultArtifact))
	require.NoError(t, err)

	assert.True(t, f.IsDefault())
	assert.Equal(t, variant.DefaultStudentID, f.StudentID())
	assert.Equal(t, 5.0, f.Circle().Radius)
	assert.Equal(t, 12.0, f.Rectangle().ExpectedArea)
	assert.Equal(t, map[string]float64{"credit_card": 3.0, "paypal": 2.9, "crypto_discount": 2.0}, f.PaymentFees())
	assert.Equal(t, []float64{51.5, 103.0, 257.5}, f.ExpectedPayments()["credit_card"])
	assert.Equal(t, []int{2, 3, 1}, f.EmitCounts())
	assert.Equal(t, []string{"Car", "Boat", "Plane"}, f.VehicleTypes())
	assert.Equal(t, 0.01, f.Tolerance())
}

func TestLoadReadsArtifact(t *testing.T) {
	path := filepath.Join(t.TempDir(), storage.DefaultArtifact)
	b, err := variant.Generate("bob42")
	require.NoError(t, err)
	require.NoError(t, storage.Save(b, path))

	f, err := Load(path)
	require.NoError(t, err)
	assert.False(t, f.IsDefault())
	assert.Equal(t, "bob42", f.StudentID())
	assert.Equal(t, 6.48, f.Circle().Radius)
	assert.Equal(t, []string{"hover", "data_update", "submit", "user_login"}, f.EventTypes())
	assert.Equal(t, 242, f.TestPayloads().Message.ID)
	assert.Equal(t, b.Shapes, f.Shapes())
	assert.Equal(t, b.Payments.Amounts, f.PaymentAmounts())
	assert.NotNil(t, f.Bundle().GeneratedAt)
}

func TestLoadMalformedArtifactIsError(t *testing.T) {
	path := filepath.Join(t.TempDir(), storage.DefaultArtifact)
	require.NoError(t, os.WriteFile(path, []byte(`{"student_id": 7}`), 0o644))
	_, err := Load(path)
	require.Error(t, err)
}

// recorder captures failures without failing the enclosing test.
type recorder struct {
	testing.TB
	failed bool
}

func (r *recorder) Helper()               {}
func (r *recorder) Errorf(string, ...any) { r.failed = true }

func TestAssertFloatEqual(t *testing.T) {
	f := New(variant.Default())

	ok := &recorder{TB: t}
	f.AssertFloatEqual(ok, 78.54, 78.5398, "circle")
	assert.False(t, ok.failed)

	bad := &recorder{TB: t}
	f.AssertFloatEqual(bad, 78.6, 78.5398, "circle")
	assert.True(t, bad.failed)
}
