package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderMarkdownSanitises(t *testing.T) {
	html, err := RenderMarkdown("# Title\n\nhello <script>alert(1)</script> **world**")
	require.NoError(t, err)

	assert.Contains(t, html, "<strong>world</strong>")
	assert.Contains(t, html, "Title</h1>")
	assert.NotContains(t, html, "<script>")
}

func TestRenderMarkdownImagesAreLazy(t *testing.T) {
	html, err := RenderMarkdown("![cat](https://example.com/cat.png)")
	require.NoError(t, err)

	assert.Contains(t, html, `loading="lazy"`)
	assert.Contains(t, html, `referrerpolicy="no-referrer"`)
}

func TestYouTubeEmbed(t *testing.T) {
	html, err := RenderMarkdown("https://youtu.be/dQw4w9WgXcQ")
	require.NoError(t, err)
	assert.True(t, strings.Contains(html, "youtube-nocookie.com/embed/dQw4w9WgXcQ"), html)

	assert.Equal(t, "", youtubeID(`https://youtu.be/x"onload="y`))
}

func TestPasswordHash(t *testing.T) {
	hash, err := HashPassword("hunter22")
	require.NoError(t, err)

	assert.True(t, CheckPasswordHash("hunter22", hash))
	assert.False(t, CheckPasswordHash("hunter23", hash))
}
