package markdown

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToHTML(t *testing.T) {
	r := NewRenderer()

	out, err := r.ToHTML("*Fix* this `call`")
	require.NoError(t, err)
	assert.Equal(t, "<p><em>Fix</em> this <code>call</code></p>\n", out)
}

func TestToHTMLEscapesRawHTML(t *testing.T) {
	r := NewRenderer()

	out, err := r.ToHTML("<script>alert(1)</script>")
	require.NoError(t, err)
	assert.NotContains(t, out, "<script>")
}
