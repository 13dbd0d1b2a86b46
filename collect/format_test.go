package collect_test

import (
	"testing"

	"github.com/fwojciec/biorag/collect"
	"github.com/stretchr/testify/assert"
)

func TestTruncateURL(t *testing.T) {
	t.Parallel()

	t.Run("returns URL unchanged when shorter than max", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, "https://x.com", collect.TruncateURL("https://x.com", 50))
	})

	t.Run("truncates with ellipsis when longer than max", func(t *testing.T) {
		t.Parallel()
		url := "https://en.wikisource.org/wiki/Gettysburg_Address"
		result := collect.TruncateURL(url, 20)
		assert.Equal(t, "...ettysburg_Address", result)
		assert.Len(t, result, 20)
	})

	t.Run("returns empty string when maxLen is not positive", func(t *testing.T) {
		t.Parallel()
		assert.Empty(t, collect.TruncateURL("https://example.com", 0))
		assert.Empty(t, collect.TruncateURL("https://example.com", -1))
	})

	t.Run("returns prefix of URL when maxLen is very small", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, "htt", collect.TruncateURL("https://example.com", 3))
		assert.Equal(t, "a", collect.TruncateURL("a", 2))
	})
}

func TestFormatBytes(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "512 B", collect.FormatBytes(512))
	assert.Equal(t, "1.5 KB", collect.FormatBytes(1536))
	assert.Equal(t, "2.0 MB", collect.FormatBytes(2*1024*1024))
}

func TestFormatTokens(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "tokens unknown", collect.FormatTokens(0))
	assert.Equal(t, "~500 tokens", collect.FormatTokens(500))
	assert.Equal(t, "~10k tokens", collect.FormatTokens(10000))
	assert.Equal(t, "~2k tokens", collect.FormatTokens(1500))
}
