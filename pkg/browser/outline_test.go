package browser

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const samplePage = `<!DOCTYPE html>
<html>
<head>
  <title>Login</title>
  <style>body { color: red; }</style>
  <script>console.log("noise");</script>
</head>
<body>
  <h1>Welcome back</h1>
  <p>Sign in to continue to your dashboard.</p>
  <form action="/login" method="post">
    <input type="text" name="username" id="username" placeholder="Username">
    <input type="password" name="password" id="password">
    <button type="submit">Sign in</button>
  </form>
  <a href="/forgot">Forgot password?</a>
</body>
</html>`

func TestOutlinePageExtractsStructure(t *testing.T) {
	outline, err := OutlinePage(samplePage, 0)
	require.NoError(t, err)

	assert.Equal(t, "Login", outline.Title)
	assert.Equal(t, []string{"Welcome back"}, outline.Headings)
	require.Len(t, outline.Links, 1)
	assert.Equal(t, "Forgot password? -> /forgot", outline.Links[0])
	require.Len(t, outline.Inputs, 3)
	assert.Contains(t, outline.Inputs[0], "input type=text name=username id=username placeholder=Username")
	assert.Contains(t, outline.Inputs[2], "button type=submit")
	assert.Contains(t, outline.Inputs[2], "text=Sign in")
}

func TestOutlinePageDropsScriptsAndStyles(t *testing.T) {
	outline, err := OutlinePage(samplePage, 0)
	require.NoError(t, err)

	assert.NotContains(t, outline.Body, "console.log")
	assert.NotContains(t, outline.Body, "color: red")
	assert.Contains(t, outline.Body, "Sign in to continue")
	assert.False(t, outline.Truncated)
}

func TestOutlinePageTruncatesBody(t *testing.T) {
	long := "<html><body><p>" + strings.Repeat("word ", 500) + "</p></body></html>"

	outline, err := OutlinePage(long, 100)
	require.NoError(t, err)

	assert.True(t, outline.Truncated)
	assert.LessOrEqual(t, len(outline.Body), 100)
	assert.Contains(t, outline.String(), "[content truncated]")
}

func TestOutlinePageTruncationKeepsValidUTF8(t *testing.T) {
	// The budget of 101 bytes lands mid-rune inside the two-byte é
	// sequence; the cut must back off to the rune boundary.
	long := "<html><body><p>" + strings.Repeat("é", 200) + "</p></body></html>"

	outline, err := OutlinePage(long, 101)
	require.NoError(t, err)

	assert.True(t, outline.Truncated)
	assert.True(t, utf8.ValidString(outline.Body))
	assert.LessOrEqual(t, len(outline.Body), 101)
	assert.True(t, utf8.ValidString(outline.String()))
}

func TestOutlineStringSections(t *testing.T) {
	outline, err := OutlinePage(samplePage, 0)
	require.NoError(t, err)

	text := outline.String()
	assert.Contains(t, text, "Title: Login")
	assert.Contains(t, text, "Headings:")
	assert.Contains(t, text, "Links:")
	assert.Contains(t, text, "Controls:")
	assert.Contains(t, text, "Content:")
}
