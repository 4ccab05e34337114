package cmd

import (
	"bytes"
	"testing"

	"github.com/go-logr/logr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oakwood-commons/structview/internal/config"
	"github.com/oakwood-commons/structview/internal/ui"
	"github.com/oakwood-commons/structview/internal/value"
	"github.com/oakwood-commons/structview/pkg/settings"
)

func TestWriteDataCircular(t *testing.T) {
	obj := value.NewObject(1)
	obj.Set("self", obj)

	var buf bytes.Buffer
	err := writeData(&buf, obj, settings.OutputJSON)
	require.ErrorContains(t, err, "circular")

	require.Error(t, writeData(&buf, 1, settings.OutputHTML))
}

func TestWriteHTMLRunsAnnotations(t *testing.T) {
	cfg, err := config.Default()
	require.NoError(t, err)
	cfg.Struct.Annotations = append(cfg.Struct.Annotations, parseAnnotationFlag(`"note"`))

	var buf bytes.Buffer
	require.NoError(t, writeHTML(&buf, []any{1}, cfg, logr.Discard()))
	assert.Contains(t, buf.String(), `<span class="value-annotation style-default after has-text">note</span>`)
}

func TestSelectTheme(t *testing.T) {
	cfg, err := config.Default()
	require.NoError(t, err)

	assert.Equal(t, ui.PlainTheme(), selectTheme(cfg, true, true))
	assert.Equal(t, ui.PlainTheme(), selectTheme(cfg, false, false))

	t.Setenv("NO_COLOR", "")
	assert.Equal(t, ui.ThemeFromConfig(cfg.SelectedTheme()), selectTheme(cfg, false, true))
}
