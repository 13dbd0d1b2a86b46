package htmltomarkdown_test

import (
	"testing"

	"github.com/fwojciec/biorag"
	"github.com/fwojciec/biorag/htmltomarkdown"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConverter_Convert(t *testing.T) {
	t.Parallel()

	t.Run("converts paragraphs", func(t *testing.T) {
		t.Parallel()

		md, err := htmltomarkdown.NewConverter().Convert(`<p>I have a dream.</p><p>Let freedom ring.</p>`)

		require.NoError(t, err)
		assert.Equal(t, "I have a dream.\n\nLet freedom ring.", md)
	})

	t.Run("converts headings", func(t *testing.T) {
		t.Parallel()

		md, err := htmltomarkdown.NewConverter().Convert(`<h1>Speeches</h1><h2>1963</h2>`)

		require.NoError(t, err)
		assert.Contains(t, md, "# Speeches")
		assert.Contains(t, md, "## 1963")
	})

	t.Run("keeps emphasis and links", func(t *testing.T) {
		t.Parallel()

		md, err := htmltomarkdown.NewConverter().Convert(`<p>Read the <a href="https://example.com/letter">letter</a> <em>now</em>.</p>`)

		require.NoError(t, err)
		assert.Contains(t, md, "[letter](https://example.com/letter)")
		assert.Contains(t, md, "*now*")
	})

	t.Run("converts lists and blockquotes", func(t *testing.T) {
		t.Parallel()

		md, err := htmltomarkdown.NewConverter().Convert(`<ul><li>First</li><li>Second</li></ul><blockquote>Quoted</blockquote>`)

		require.NoError(t, err)
		assert.Contains(t, md, "- First")
		assert.Contains(t, md, "- Second")
		assert.Contains(t, md, "> Quoted")
	})

	t.Run("drops images", func(t *testing.T) {
		t.Parallel()

		md, err := htmltomarkdown.NewConverter().Convert(`<p>Portrait <img src="/portrait.jpg" alt="Portrait of the author"></p>`)

		require.NoError(t, err)
		assert.NotContains(t, md, "portrait.jpg")
	})

	t.Run("converts tables", func(t *testing.T) {
		t.Parallel()

		md, err := htmltomarkdown.NewConverter().Convert(`<table><thead><tr><th>Year</th><th>Work</th></tr></thead><tbody><tr><td>1852</td><td>Speech</td></tr></tbody></table>`)

		require.NoError(t, err)
		assert.Contains(t, md, "| Year")
		assert.Contains(t, md, "1852")
	})

	t.Run("rejects empty input", func(t *testing.T) {
		t.Parallel()

		_, err := htmltomarkdown.NewConverter().Convert("   ")

		assert.Equal(t, biorag.EINVALID, biorag.ErrorCode(err))
	})
}
