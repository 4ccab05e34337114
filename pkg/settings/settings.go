// Package settings provides build metadata, per-run options, and context
// helpers shared by the structview CLI and its packages.
package settings

// CliBinaryName is the canonical binary name for this tool.
const CliBinaryName = "structview"

// VersionInformation is populated at build time via ldflags.
var VersionInformation = VersionInfo{
	Commit:       "unknown",
	BuildVersion: "v0.0.0-nightly",
	BuildTime:    "unknown",
}

// Output formats for non-interactive runs.
const (
	OutputText = "text"
	OutputHTML = "html"
	OutputJSON = "json"
	OutputYAML = "yaml"
)

// Input describes where the viewed document comes from.
type Input struct {
	Path      string
	FromStdin bool
}

// VersionInfo holds metadata about the build.
type VersionInfo struct {
	Commit       string
	BuildVersion string
	BuildTime    string
}

// Run holds the settings for a single execution of the CLI.
type Run struct {
	MinLogLevel int8
	Input       Input
	Output      string
	Interactive bool
	NoColor     bool
	ExitOnError bool
}

// NewCliParams returns the defaults for a command line run: text output
// read from stdin until a path is given.
func NewCliParams() *Run {
	return &Run{
		Input:       Input{FromStdin: true},
		Output:      OutputText,
		ExitOnError: true,
	}
}

// OutputFormats lists the accepted values of Run.Output.
func OutputFormats() []string {
	return []string{OutputText, OutputHTML, OutputJSON, OutputYAML}
}
