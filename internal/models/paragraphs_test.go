package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParagraphs(t *testing.T) {
	t.Parallel()

	t.Run("splits on blank lines", func(t *testing.T) {
		t.Parallel()
		got := Paragraphs("first paragraph\n\nsecond paragraph\n\nthird")
		assert.Equal(t, []string{"first paragraph", "second paragraph", "third"}, got)
	})

	t.Run("drops empty segments and trims whitespace", func(t *testing.T) {
		t.Parallel()
		got := Paragraphs("  hello  \n\n\n\nworld\n\n")
		assert.Equal(t, []string{"hello", "world"}, got)
	})

	t.Run("empty text yields no paragraphs", func(t *testing.T) {
		t.Parallel()
		assert.Empty(t, Paragraphs(""))
	})

	t.Run("single newline does not split", func(t *testing.T) {
		t.Parallel()
		got := Paragraphs("line one\nline two")
		assert.Equal(t, []string{"line one\nline two"}, got)
	})
}

func TestJoinParagraphs(t *testing.T) {
	t.Parallel()

	joined := JoinParagraphs([]string{"a", "b"})
	assert.Equal(t, "a\n\nb", joined)
	assert.Equal(t, []string{"a", "b"}, Paragraphs(joined))
}
