package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/mvp-joe/cortex-extract/internal/config"
	"github.com/mvp-joe/cortex-extract/internal/graph"
	"github.com/mvp-joe/cortex-extract/internal/indexer"
	"github.com/mvp-joe/cortex-extract/internal/indexer/extraction"
)

// extractOptions holds the flags of the extract command.
type extractOptions struct {
	quiet      bool
	output     string
	tree       bool
	noPrivate  bool
	noDocs     bool
	deps       bool
	workers    int
	configFile string
}

var extractOpts extractOptions

// extractCmd represents the extract command
var extractCmd = &cobra.Command{
	Use:   "extract [path]",
	Short: "Extract a code model from a Rust project or file",
	Long: `Extract discovers Rust source files under a project root, parses them in
parallel and writes the resulting model as JSON.

Files that fail to parse are reported and skipped; the run only fails when no
file could be extracted.

Examples:
  # Extract the current directory and print JSON to stdout
  cortex-extract extract

  # Write the model to a file and show the element hierarchy
  cortex-extract extract ./my-crate -o model.json --tree

  # Extract a single file
  cortex-extract extract src/lib.rs

  # Public API only, with manifest dependencies
  cortex-extract extract --no-private --deps
`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		path := "."
		if len(args) == 1 {
			path = args[0]
		}

		opts := extractOpts
		opts.configFile = cfgFile
		return runExtract(ctx, path, opts, cmd.OutOrStdout(), cmd.ErrOrStderr())
	},
}

func init() {
	rootCmd.AddCommand(extractCmd)
	f := extractCmd.Flags()
	f.BoolVarP(&extractOpts.quiet, "quiet", "q", false, "Disable progress bars and summary output")
	f.StringVarP(&extractOpts.output, "output", "o", "", "Write JSON to this file instead of stdout")
	f.BoolVar(&extractOpts.tree, "tree", false, "Print the element hierarchy instead of JSON")
	f.BoolVar(&extractOpts.noPrivate, "no-private", false, "Exclude private items")
	f.BoolVar(&extractOpts.noDocs, "no-docs", false, "Exclude documentation comments")
	f.BoolVar(&extractOpts.deps, "deps", false, "Read dependencies from Cargo.toml")
	f.IntVarP(&extractOpts.workers, "workers", "j", 0, "Number of parallel workers (default: number of CPUs)")
}

// runExtract loads configuration for path, applies flag overrides and runs the
// extraction. The model goes to stdout (or the output file); progress and the
// summary go to stderr.
func runExtract(ctx context.Context, path string, opts extractOptions, stdout, stderr io.Writer) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("cannot access %s: %w", path, err)
	}

	root := path
	if !info.IsDir() {
		root = filepath.Dir(path)
	}

	cfg, err := loadConfig(root, opts.configFile)
	if err != nil {
		return err
	}
	applyFlagOverrides(cfg, opts)

	var progress indexer.ProgressReporter = &indexer.NoOpProgressReporter{}
	if !opts.quiet && info.IsDir() {
		progress = NewCLIProgressReporter(stderr, false)
	}

	x, err := indexer.New(cfg,
		indexer.WithLogger(slog.Default()),
		indexer.WithProgress(progress),
	)
	if err != nil {
		return err
	}

	if !info.IsDir() {
		file, err := x.ExtractFile(ctx, path)
		if err != nil {
			return err
		}
		if opts.tree {
			return printTree(stdout, []extraction.FileModel{*file})
		}
		return writeJSON(stdout, opts.output, file)
	}

	model, err := x.ExtractProject(ctx, root)
	if err != nil {
		return err
	}

	if !opts.quiet {
		printFailures(stderr, model.Failures)
	}
	if opts.tree {
		return printTree(stdout, model.Files)
	}
	return writeJSON(stdout, opts.output, model)
}

func loadConfig(root, configFile string) (*config.Config, error) {
	if configFile != "" {
		return config.NewFileLoader(configFile).Load()
	}
	return config.NewLoader(root).Load()
}

// applyFlagOverrides lets explicit command-line flags win over file and env config.
func applyFlagOverrides(cfg *config.Config, opts extractOptions) {
	if opts.noPrivate {
		cfg.Extraction.IncludePrivate = false
	}
	if opts.noDocs {
		cfg.Extraction.IncludeDocs = false
	}
	if opts.deps {
		cfg.Extraction.ParseDependencies = true
	}
	if opts.workers > 0 {
		cfg.Extraction.Workers = opts.workers
	}
}

func writeJSON(stdout io.Writer, output string, v any) error {
	w := stdout
	if output != "" {
		f, err := os.Create(output)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		w = f
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to write model: %w", err)
	}
	return nil
}

func printFailures(w io.Writer, failures extraction.PartialFailure) {
	if failures.FailedCount == 0 {
		return
	}
	fmt.Fprintf(w, "⚠ %s of %s files failed:\n", formatNumber(failures.FailedCount), formatNumber(failures.TotalCount))
	for _, msg := range failures.Errors {
		fmt.Fprintf(w, "  - %s\n", msg)
	}
}

// printTree renders each file's element forest, one element per line.
func printTree(w io.Writer, files []extraction.FileModel) error {
	for _, file := range files {
		h, err := graph.Build(file.Elements)
		if err != nil {
			return fmt.Errorf("%s: %w", file.RelativePath, err)
		}

		fmt.Fprintln(w, file.RelativePath)
		h.Walk(func(e *extraction.Element, depth int) bool {
			fmt.Fprintf(w, "%s%s %s", strings.Repeat("  ", depth+1), e.Kind, e.Name)
			if e.Complexity != nil && e.Kind.HasBody() {
				fmt.Fprintf(w, " (cc=%d)", e.Complexity.Cyclomatic)
			}
			fmt.Fprintln(w)
			return true
		})
	}
	return nil
}
