package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeTag(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"lowercase passthrough", "fantasy", "fantasy"},
		{"uppercase", "Fantasy", "fantasy"},
		{"surrounding whitespace", "  sci-fi  ", "sci-fi"},
		{"blank", "   ", ""},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, NormalizeTag(tt.input))
		})
	}
}

func TestNormalizeTags(t *testing.T) {
	t.Run("dedupes case-insensitively", func(t *testing.T) {
		got := NormalizeTags([]string{"Fantasy", " fantasy ", "FANTASY", "horror"})
		assert.Equal(t, []string{"fantasy", "horror"}, got)
	})

	t.Run("drops empties", func(t *testing.T) {
		got := NormalizeTags([]string{"", "  ", "x"})
		assert.Equal(t, []string{"x"}, got)
	})

	t.Run("caps at MaxTags", func(t *testing.T) {
		input := []string{"a", "b", "c", "d", "e", "f", "g", "h", "i", "j", "k", "l"}
		got := NormalizeTags(input)
		assert.Len(t, got, MaxTags)
		assert.Equal(t, "j", got[len(got)-1])
	})

	t.Run("idempotent", func(t *testing.T) {
		once := NormalizeTags([]string{"A", "b ", "A"})
		twice := NormalizeTags(once)
		assert.Equal(t, once, twice)
	})
}

func TestItem_EnforceOriginalNameCoupling(t *testing.T) {
	item := &Item{OriginalName: "something.cbz", IsOriginalNameNA: true}
	item.EnforceOriginalNameCoupling()
	assert.Equal(t, OriginalNameNA, item.OriginalName)

	item = &Item{OriginalName: "keepme.epub", IsOriginalNameNA: false}
	item.EnforceOriginalNameCoupling()
	assert.Equal(t, "keepme.epub", item.OriginalName)
}

func TestItem_Timestamps(t *testing.T) {
	item := &Item{}
	item.InitTimestamps()
	assert.False(t, item.CreatedAt.IsZero())
	assert.Equal(t, item.CreatedAt, item.UpdatedAt)

	time.Sleep(5 * time.Millisecond)
	item.Touch()
	assert.True(t, item.UpdatedAt.After(item.CreatedAt))
}

func TestCalibredStatus_Valid(t *testing.T) {
	assert.True(t, CalibredYes.Valid())
	assert.True(t, CalibredNo.Valid())
	assert.True(t, CalibredNA.Valid())
	assert.False(t, CalibredStatus("maybe").Valid())
	assert.False(t, CalibredStatus("").Valid())
}

func TestImageRefForms(t *testing.T) {
	assert.Equal(t, "upload:item-abc", UploadRef("item-abc"))
	assert.True(t, IsUploadRef("upload:item-abc"))
	assert.False(t, IsUploadRef("https://example.com/cover.jpg"))
	assert.True(t, IsDataURI("data:image/png;base64,iVBOR"))
	assert.False(t, IsDataURI("upload:item-abc"))
}
