package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"runtime"
	"slices"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"golang.org/x/term"

	"github.com/oakwood-commons/structview/internal/cel"
	"github.com/oakwood-commons/structview/internal/config"
	"github.com/oakwood-commons/structview/internal/limiter"
	"github.com/oakwood-commons/structview/pkg/core"
	"github.com/oakwood-commons/structview/pkg/loader"
	"github.com/oakwood-commons/structview/pkg/logger"
	"github.com/oakwood-commons/structview/pkg/settings"
)

// errShowHelp is returned when there is no input to view.
var errShowHelp = errors.New("no input provided")

// rootOptions holds the flag values of one invocation.
type rootOptions struct {
	interactive    bool
	expression     string
	expanded       int
	limit          int
	limitCollapsed int
	annotations    []string
	match          string
	output         string
	snapshot       bool
	width          int
	height         int
	press          []string
	records        limiter.Config
	configFile     string
	theme          string
	decode         bool
	debug          bool
	noColor        bool
}

// stdinIsTerminal is replaced in tests.
var stdinIsTerminal = func() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

var stdoutIsTerminal = func() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:   settings.CliBinaryName + " [file]",
		Short: "Incremental viewer for JSON, YAML, TOML and NDJSON values",
		Long: `structview renders a structured document as an expandable tree.

Large collections are paginated, long strings can be expanded in place and
CEL annotation rules decorate values once the first frame is on screen.
Without a file the document is read from stdin.`,
		Example: "\n  structview data.json\n  structview data.yaml -e '_.items[0]' --expanded 2\n  cat data.json | structview -i\n  structview data.json --annotation '_ > 100' --annotation 'before:ctx.key == \"id\" ? \"pk\" : \"\"'\n  structview data.json -o html > view.html",
		Version:       versionString(),
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			var level int8
			if opts.debug {
				level = -1
			}
			lgr := logger.Get(level).WithValues("command", cmd.Name())
			run := settings.NewCliParams()
			run.MinLogLevel = level
			run.NoColor = opts.noColor
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			ctx = logger.WithLogger(ctx, &lgr)
			cmd.SetContext(settings.IntoContext(ctx, run))
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			err := runRoot(cmd, opts, args)
			if errors.Is(err, errShowHelp) {
				return cmd.Help()
			}
			return err
		},
	}

	addViewFlags(cmd.Flags(), opts)
	addOutputFlags(cmd.Flags(), opts)
	addConfigFlags(cmd.Flags(), opts)
	cmd.Flags().BoolVar(&opts.decode, "decode", false, "decode string values that hold JSON or YAML collections")
	cmd.Flags().BoolVar(&opts.debug, "debug", false, "log debug output to stderr")
	cmd.Flags().BoolVar(&opts.noColor, "no-color", false, "disable colors")

	cmd.AddCommand(newVersionCmd(), newFunctionsCmd(), newConfigCmd(opts), newThemesCmd(opts))
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := fmt.Fprintln(cmd.OutOrStdout(), settings.CliBinaryName+" "+versionString())
			return err
		},
	}
}

func newFunctionsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "functions",
		Short: "List the CEL functions available to expressions and annotations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			fns, err := cel.DiscoverFunctions()
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			for _, fn := range fns {
				if _, err := fmt.Fprintln(w, fn); err != nil {
					return err
				}
			}
			return nil
		},
	}
}

func newConfigCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Print the merged configuration as YAML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd, opts)
			if err != nil {
				return err
			}
			return writeConfig(cmd.OutOrStdout(), cfg)
		},
	}
	addConfigFlags(cmd.Flags(), opts)
	return cmd
}

func newThemesCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "themes",
		Short: "List the configured color themes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd, opts)
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			for _, name := range cfg.ThemeNames() {
				marker := "  "
				if name == cfg.UI.Theme {
					marker = "* "
				}
				if _, err := fmt.Fprintln(w, marker+name); err != nil {
					return err
				}
			}
			return nil
		},
	}
	addConfigFlags(cmd.Flags(), opts)
	return cmd
}

func versionString() string {
	v := settings.VersionInformation
	return fmt.Sprintf("%s (commit %s, built %s, %s)", v.BuildVersion, v.Commit, v.BuildTime, runtime.Version())
}

func runRoot(cmd *cobra.Command, opts *rootOptions, args []string) error {
	if !slices.Contains(settings.OutputFormats(), opts.output) {
		return fmt.Errorf("invalid --output %q (expected %s)", opts.output, strings.Join(settings.OutputFormats(), ", "))
	}
	if err := opts.records.Validate(); err != nil {
		return err
	}
	log := logger.FromContext(cmd.Context())

	cfg, err := loadConfig(cmd, opts)
	if err != nil {
		return err
	}

	run := settings.FromContextOrDefault(cmd.Context())
	data, err := loadInput(cmd.InOrStdin(), args, run)
	if err != nil {
		return err
	}
	log.V(1).Info("input loaded", "path", run.Input.Path, "stdin", run.Input.FromStdin)

	if opts.decode {
		data = loader.RecursiveDecode(data)
	}
	if strings.TrimSpace(opts.expression) != "" {
		engine, err := core.New(core.WithLogger(*log))
		if err != nil {
			return err
		}
		if data, err = engine.NodeAtPath(data, opts.expression); err != nil {
			return err
		}
	}
	data = opts.records.Apply(data)

	run.Output = opts.output
	run.Interactive = opts.interactive && !opts.snapshot
	w := cmd.OutOrStdout()
	switch {
	case run.Output == settings.OutputJSON, run.Output == settings.OutputYAML:
		return writeData(w, data, run.Output)
	case run.Output == settings.OutputHTML:
		return writeHTML(w, data, cfg, *log)
	case opts.snapshot:
		return writeSnapshot(w, data, cfg, opts, *log)
	case run.Interactive:
		return runInteractive(data, cfg, opts, run, *log)
	}
	return writeText(w, data, cfg, opts, *log)
}

// loadInput reads the file named by args or stdin. An interactive stdin
// without a file means there is nothing to view.
func loadInput(stdin io.Reader, args []string, run *settings.Run) (any, error) {
	if len(args) == 1 && args[0] != "-" {
		run.Input = settings.Input{Path: args[0]}
		return core.LoadFile(args[0])
	}
	run.Input = settings.Input{FromStdin: true}
	if stdin == os.Stdin && stdinIsTerminal() {
		return nil, errShowHelp
	}
	return core.LoadReader(stdin)
}

func addViewFlags(f *pflag.FlagSet, opts *rootOptions) {
	f.BoolVarP(&opts.interactive, "interactive", "i", false, "browse the value in the terminal")
	f.StringVarP(&opts.expression, "expression", "e", "", "CEL expression using '_' as root, e.g. '_.items[0]' or '_.items.filter(x, x.active)'")
	f.IntVar(&opts.expanded, "expanded", 0, "number of levels expanded on render (default from config)")
	f.IntVar(&opts.limit, "limit", 0, "entries shown per expanded collection before 'show more' (0 shows all; default from config)")
	f.IntVar(&opts.limitCollapsed, "limit-collapsed", 0, "entries previewed in a collapsed collection (0 shows all; default from config)")
	f.StringArrayVar(&opts.annotations, "annotation", nil, "CEL annotation rule; prefix with 'before:' to place it before the value (repeatable)")
	f.StringVar(&opts.match, "match", "", "regular expression highlighted in object keys")
	f.IntVar(&opts.records.Limit, "record-limit", 0, "keep only the first N entries of the root value")
	f.IntVar(&opts.records.Offset, "record-offset", 0, "skip the first N entries of the root value")
	f.IntVar(&opts.records.Tail, "record-tail", 0, "keep only the last N entries of the root value (excludes --record-limit)")
}

func addOutputFlags(f *pflag.FlagSet, opts *rootOptions) {
	f.StringVarP(&opts.output, "output", "o", settings.OutputText, "output format: "+strings.Join(settings.OutputFormats(), "|"))
	f.BoolVar(&opts.snapshot, "snapshot", false, "render a single interactive frame and exit; honors --width, --height and --press")
	f.IntVar(&opts.width, "width", 0, "output width in columns (0 detects the terminal)")
	f.IntVar(&opts.height, "height", 0, "snapshot height in rows (0 detects the terminal)")
	f.StringArrayVar(&opts.press, "press", nil, "keys replayed on startup, e.g. --press '<Down><CR>' or --press '/name<CR>'")
}

// addConfigFlags registers the flags shared by every command that reads
// the config file.
func addConfigFlags(f *pflag.FlagSet, opts *rootOptions) {
	f.StringVar(&opts.configFile, "config-file", "", "path to a YAML config file")
	f.StringVar(&opts.theme, "theme", "", "color theme (see 'structview themes')")
}

// Execute runs the root command.
func Execute() error {
	return newRootCmd().Execute()
}

// loadConfig loads the config file and applies the flags the user set on
// top of it.
func loadConfig(cmd *cobra.Command, opts *rootOptions) (*config.Config, error) {
	cfg, err := config.Load(resolveConfigPath(opts.configFile))
	if err != nil {
		return nil, err
	}
	applyFlagOverrides(cfg, opts, cmd.Flags().Changed)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
