package spec

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/specplan/internal/domain"
)

func normalized(t *testing.T) []Requirement {
	t.Helper()
	reqs, err := Normalize(sampleDocument())
	require.NoError(t, err)
	return reqs
}

func TestHash_Stable(t *testing.T) {
	reqs := normalized(t)

	h1, err := Hash(reqs[0])
	require.NoError(t, err)
	h2, err := Hash(reqs[0])
	require.NoError(t, err)

	assert.Equal(t, h1, h2)
	assert.Len(t, h1, 64)
}

func TestHash_OwnershipIsOrderInsensitive(t *testing.T) {
	a := Requirement{ID: "R1", Owns: []string{"b.go", "a.go"}}
	b := Requirement{ID: "R1", Owns: []string{"a.go", "b.go"}}

	ha, err := Hash(a)
	require.NoError(t, err)
	hb, err := Hash(b)
	require.NoError(t, err)
	assert.Equal(t, ha, hb)
}

func TestHash_ChangesWithConfidence(t *testing.T) {
	reqs := normalized(t)
	before, err := Hash(reqs[0])
	require.NoError(t, err)

	reqs[0].Confidence = 10
	after, err := Hash(reqs[0])
	require.NoError(t, err)
	assert.NotEqual(t, before, after)
}

func TestDigest_OrderSensitive(t *testing.T) {
	reqs := normalized(t)
	d1, err := Digest(reqs)
	require.NoError(t, err)

	swapped := []Requirement{reqs[1], reqs[0], reqs[2]}
	d2, err := Digest(swapped)
	require.NoError(t, err)
	assert.NotEqual(t, d1, d2)
}

func TestLock_Compare(t *testing.T) {
	reqs := normalized(t)
	lock, err := NewLock(reqs, "1.0.0")
	require.NoError(t, err)
	require.Len(t, lock.Requirements, 3)
	assert.Equal(t, 1, lock.Requirements["FR-002"].Position)

	drift, err := lock.Compare(reqs)
	require.NoError(t, err)
	assert.True(t, drift.IsEmpty())

	edited := append([]Requirement(nil), reqs[:2]...)
	edited[0].Title = "Create item (v2)"
	edited = append(edited, Requirement{ID: "FR-100", Confidence: 50})

	drift, err = lock.Compare(edited)
	require.NoError(t, err)
	assert.Equal(t, []domain.RequirementID{"FR-100"}, drift.Added)
	assert.Equal(t, []domain.RequirementID{"FR-003"}, drift.Removed)
	assert.Equal(t, []domain.RequirementID{"FR-001"}, drift.Changed)
}

func TestSaveLoadLock(t *testing.T) {
	reqs := normalized(t)
	lock, err := NewLock(reqs, "1.0.0")
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "nested", "spec.lock.json")
	require.NoError(t, SaveLock(lock, path))

	loaded, err := LoadLock(path)
	require.NoError(t, err)
	assert.Equal(t, lock.Digest, loaded.Digest)
	assert.Equal(t, lock.Requirements, loaded.Requirements)
}

func TestLoadLock_Missing(t *testing.T) {
	_, err := LoadLock(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}
