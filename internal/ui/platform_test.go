package ui

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestMain stubs the browser opener so no test starts a real process.
func TestMain(m *testing.M) {
	restore := StubPlatformActions(nil)
	code := m.Run()
	restore()
	os.Exit(code)
}

func TestOpenURLSchemes(t *testing.T) {
	var opened []string
	restore := StubPlatformActions(&opened)
	defer restore()

	require.NoError(t, OpenURL("https://example.com/docs"))
	require.Error(t, OpenURL("file:///etc/passwd"))
	require.Error(t, OpenURL("javascript:alert(1)"))
	assert.Equal(t, []string{"https://example.com/docs"}, opened)
}
