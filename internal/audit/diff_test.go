package audit

import (
	"encoding/json"
	"testing"

	"github.com/netsentry/netsentry/internal/datastore/entities"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeDiff_SingleFieldChange(t *testing.T) {
	t.Parallel()

	oldImg := map[string]any{"name": "ssh-scan", "pattern": "old", "enabled": true}
	newImg := map[string]any{"name": "ssh-scan", "pattern": "new", "enabled": true}

	diffs := computeDiff(oldImg, newImg)
	require.Len(t, diffs, 1)
	assert.Equal(t, "pattern", diffs[0].Field)
	assert.Equal(t, "old", diffs[0].Old)
	assert.Equal(t, "new", diffs[0].New)
}

func TestComputeDiff_SortedFieldOrder(t *testing.T) {
	t.Parallel()

	oldImg := map[string]any{"zeta": 1, "alpha": 1, "mid": 1}
	newImg := map[string]any{"zeta": 2, "alpha": 2, "mid": 2}

	diffs := computeDiff(oldImg, newImg)
	require.Len(t, diffs, 3)
	assert.Equal(t, "alpha", diffs[0].Field)
	assert.Equal(t, "mid", diffs[1].Field)
	assert.Equal(t, "zeta", diffs[2].Field)
}

func TestComputeDiff_UnionOfFieldNames(t *testing.T) {
	t.Parallel()

	oldImg := map[string]any{"only_old": "x"}
	newImg := map[string]any{"only_new": "y"}

	diffs := computeDiff(oldImg, newImg)
	require.Len(t, diffs, 2)
	assert.Equal(t, "only_new", diffs[0].Field)
	assert.Nil(t, diffs[0].Old)
	assert.Equal(t, "y", diffs[0].New)
	assert.Equal(t, "only_old", diffs[1].Field)
	assert.Equal(t, "x", diffs[1].Old)
	assert.Nil(t, diffs[1].New)
}

func TestComputeDiff_NilVersusEmptyString(t *testing.T) {
	t.Parallel()

	diffs := computeDiff(map[string]any{"owner_id": nil}, map[string]any{"owner_id": ""})
	require.Len(t, diffs, 1)
	assert.Equal(t, "owner_id", diffs[0].Field)
}

// Textual comparison cannot tell a boolean from its string spelling. This
// pins the behavior rather than endorsing it.
func TestComputeDiff_TextuallyEqualValuesCompareUnchanged(t *testing.T) {
	t.Parallel()

	diffs := computeDiff(map[string]any{"enabled": true}, map[string]any{"enabled": "true"})
	assert.Empty(t, diffs)
}

func TestComputeDiff_EmptyDiffMarshalsToArray(t *testing.T) {
	t.Parallel()

	img := map[string]any{"name": "same"}
	diffs := computeDiff(img, img)
	out, err := json.Marshal(diffs)
	require.NoError(t, err)
	assert.Equal(t, "[]", string(out))
}

func TestImageOf_ExcludesIdentifierAndTimestamps(t *testing.T) {
	t.Parallel()

	owner := uint(7)
	img := imageOf(&entities.Rule{ID: 3, Name: "n", OwnerID: &owner, Pattern: "p"})
	assert.NotContains(t, img, "id")
	assert.NotContains(t, img, "created_at")
	assert.NotContains(t, img, "updated_at")
	assert.Equal(t, uint(7), img["owner_id"])
}

func TestFullImageOf_IncludesIdentifierAndTimestamps(t *testing.T) {
	t.Parallel()

	img := fullImageOf(&entities.Rule{ID: 3, Name: "n", Pattern: "p"})
	assert.Equal(t, uint(3), img["id"])
	assert.Contains(t, img, "created_at")
	assert.Contains(t, img, "updated_at")
	assert.Nil(t, img["owner_id"])
}
