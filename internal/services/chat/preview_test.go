package chat

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMakePreviewStripsMarkup(t *testing.T) {
	assert.Equal(t, "hello world", MakePreview("<p>hello <strong>world</strong></p>"))
}

func TestMakePreviewDecodesEntities(t *testing.T) {
	assert.Equal(t, "fish & chips", MakePreview("fish &amp; chips"))
}

func TestMakePreviewTruncatesRunes(t *testing.T) {
	long := strings.Repeat("é", 150)
	preview := MakePreview(long)
	assert.Equal(t, 100, len([]rune(preview)))
}

func TestMakePreviewTrimsWhitespace(t *testing.T) {
	assert.Equal(t, "hi", MakePreview("  <div> hi </div>  "))
}
