package ingest

import (
	"testing"

	"github.com/siherrmann/etfrag/model"
	"github.com/stretchr/testify/assert"
)

func TestResolve(t *testing.T) {
	t.Run("Missing document resolves to insert at version 1", func(t *testing.T) {
		resolution := Resolve("abc123", nil)
		assert.Equal(t, ActionInsert, resolution.Action)
		assert.Equal(t, 1, resolution.Version)
	})

	t.Run("Equal hash resolves to skip keeping the version", func(t *testing.T) {
		existing := &model.Document{IdentityKey: "KR_069500", ContentHash: "abc123", Version: 3}
		resolution := Resolve("abc123", existing)
		assert.Equal(t, ActionSkip, resolution.Action)
		assert.Equal(t, 3, resolution.Version)
	})

	t.Run("Changed hash resolves to update with version bumped", func(t *testing.T) {
		existing := &model.Document{IdentityKey: "KR_069500", ContentHash: "abc123", Version: 3}
		resolution := Resolve("def456", existing)
		assert.Equal(t, ActionUpdate, resolution.Action)
		assert.Equal(t, 4, resolution.Version)
	})
}

func TestActionString(t *testing.T) {
	assert.Equal(t, "insert", ActionInsert.String())
	assert.Equal(t, "update", ActionUpdate.String())
	assert.Equal(t, "skip", ActionSkip.String())
	assert.Equal(t, "unknown", Action(42).String())
}

func TestCandidateIdentityKey(t *testing.T) {
	tests := []struct {
		name     string
		source   model.SourceID
		key      string
		expected string
	}{
		{"Domestic listing", model.SourceDomesticListing, "069500", "KR_069500"},
		{"Foreign listing", model.SourceForeignListing, "SPY", "US_SPY"},
		{"Filing", model.SourceFiling, "20260815000123", "DART_20260815000123"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			candidate := Candidate{Source: tt.source, NaturalKey: tt.key}
			assert.Equal(t, tt.expected, candidate.IdentityKey())
		})
	}
}
