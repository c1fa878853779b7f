package id

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerate(t *testing.T) {
	generated, err := Generate(PrefixItem)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(generated, "item-"))
	// NanoID default length is 21 plus "item-" prefix.
	assert.Len(t, generated, len("item-")+21)
}

func TestGenerate_Unique(t *testing.T) {
	seen := make(map[string]bool)
	for range 1000 {
		generated, err := Generate(PrefixItem)
		require.NoError(t, err)
		assert.False(t, seen[generated], "duplicate id %s", generated)
		seen[generated] = true
	}
}

func TestMustGenerate(t *testing.T) {
	assert.NotPanics(t, func() {
		generated := MustGenerate(PrefixItem)
		assert.NotEmpty(t, generated)
	})
}
