package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/go-logr/logr"

	"github.com/oakwood-commons/structview/internal/clipboard"
	"github.com/oakwood-commons/structview/internal/config"
	"github.com/oakwood-commons/structview/internal/formatter"
	"github.com/oakwood-commons/structview/internal/ui"
	"github.com/oakwood-commons/structview/pkg/core"
	"github.com/oakwood-commons/structview/pkg/settings"
)

const jsonOutputIndent = 2

// writeData prints the selected value as JSON or YAML.
func writeData(w io.Writer, data any, output string) error {
	var (
		text string
		err  error
	)
	switch output {
	case settings.OutputJSON:
		text, err = formatter.MarshalJSON(data, jsonOutputIndent)
		text += "\n"
	case settings.OutputYAML:
		text, err = formatter.FormatYAML(data, formatter.YAMLFormatOptions{LiteralBlockStrings: true})
	default:
		return fmt.Errorf("unsupported data output %q", output)
	}
	if err != nil {
		return fmt.Errorf("format %s: %w", output, err)
	}
	_, err = io.WriteString(w, text)
	return err
}

// writeHTML renders the value headlessly, runs every annotation turn and
// prints the markup of the view root.
func writeHTML(w io.Writer, data any, cfg *config.Config, log logr.Logger) error {
	engine, err := core.New(core.WithLogger(log), core.WithViewerOptions(cfg.ViewerOptions()...))
	if err != nil {
		return err
	}
	out, err := engine.RenderHTML(data, cfg.ViewConfig())
	if err != nil {
		return err
	}
	_, err = io.WriteString(w, out+"\n")
	return err
}

// selectTheme returns the configured palette, or plain styles when colors
// are off or stdout is not a terminal.
func selectTheme(cfg *config.Config, noColor, tty bool) ui.Theme {
	if noColor || !tty || os.Getenv("NO_COLOR") != "" {
		return ui.PlainTheme()
	}
	return ui.ThemeFromConfig(cfg.SelectedTheme())
}

func newModel(data any, cfg *config.Config, theme ui.Theme, copier clipboard.Copier, log logr.Logger) (*ui.Model, error) {
	return ui.NewModel(data, ui.Options{
		Config:    cfg.ViewConfig(),
		Viewer:    cfg.ViewerOptions(),
		Theme:     theme,
		Clipboard: copier,
		Logger:    log,
		Width:     cfg.UI.Width,
		Height:    cfg.UI.Height,
	})
}

// writeText prints the settled tree without any frame.
func writeText(w io.Writer, data any, cfg *config.Config, opts *rootOptions, log logr.Logger) error {
	m, err := newModel(data, cfg, selectTheme(cfg, opts.noColor, stdoutIsTerminal()), &clipboard.Recorder{}, log)
	if err != nil {
		return err
	}
	defer m.Close()
	_, err = io.WriteString(w, ui.RenderText(m, cfg.UI.Width))
	return err
}

// writeSnapshot prints one interactive frame after replaying --press.
func writeSnapshot(w io.Writer, data any, cfg *config.Config, opts *rootOptions, log logr.Logger) error {
	m, err := newModel(data, cfg, selectTheme(cfg, opts.noColor, stdoutIsTerminal()), &clipboard.Recorder{}, log)
	if err != nil {
		return err
	}
	defer m.Close()

	width, height := cfg.UI.Width, cfg.UI.Height
	if width <= 0 || height <= 0 {
		tw, th := ui.TerminalSize()
		if width <= 0 {
			width = tw
		}
		if height <= 0 {
			height = th
		}
	}
	out := ui.RenderSnapshot(m, ui.SnapshotConfig{Width: width, Height: height, StartKeys: opts.press})
	_, err = fmt.Fprintln(w, out)
	return err
}

// runInteractive hands the value to the terminal browser. Piped input
// reads keys from the controlling terminal instead.
func runInteractive(data any, cfg *config.Config, opts *rootOptions, run *settings.Run, log logr.Logger) error {
	m, err := newModel(data, cfg, selectTheme(cfg, opts.noColor, true), clipboard.System{}, log)
	if err != nil {
		return err
	}
	progOpts, cleanup := programOptions(run.Input.FromStdin)
	defer cleanup()
	return ui.Run(m, opts.press, progOpts...)
}
