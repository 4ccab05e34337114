package clipboard

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorder(t *testing.T) {
	var r Recorder
	assert.Equal(t, "", r.Last())

	require.NoError(t, r.Copy("a"))
	require.NoError(t, r.Copy("b"))
	assert.Equal(t, []string{"a", "b"}, r.Texts())
	assert.Equal(t, "b", r.Last())
}
