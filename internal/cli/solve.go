package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/cellsolve/pkg/config"
	"github.com/matzehuels/cellsolve/pkg/exchange"
	"github.com/matzehuels/cellsolve/pkg/pipeline"
)

// artifactExt maps each artifact format to the suffix appended to the base
// output path.
var artifactExt = map[string]string{
	pipeline.FormatJSON:      ".solved.json",
	pipeline.FormatDOT:       ".dot",
	pipeline.FormatHierarchy: ".hierarchy.svg",
	pipeline.FormatFloorplan: ".floorplan.svg",
}

// solveFlags are the solver flags shared by every command that solves.
// Flags left at their defaults keep the value from the config file.
type solveFlags struct {
	backend      string
	domainMin    int64
	domainMax    int64
	minFootprint int64
	timeBudget   time.Duration
	noFootprint  bool
	resolve      bool
	refresh      bool
	noCache      bool
}

func (f *solveFlags) register(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.StringVar(&f.backend, "backend", config.DefaultBackend, "solver backend")
	fs.Int64Var(&f.domainMin, "domain-min", 0, "lower bound of every coordinate")
	fs.Int64Var(&f.domainMax, "domain-max", 0, "upper bound of every coordinate")
	fs.Int64Var(&f.minFootprint, "min-footprint", 0, "minimum width and height of unconstrained leaves")
	fs.DurationVar(&f.timeBudget, "time-budget", 0, "solver time budget per solve (e.g. 10s)")
	fs.BoolVar(&f.noFootprint, "no-footprint", false, "do not give unconstrained leaves a minimum size")
	fs.BoolVar(&f.resolve, "resolve", false, "re-solve documents that already carry every box")
	fs.BoolVar(&f.refresh, "refresh", false, "ignore cached layouts")
	fs.BoolVar(&f.noCache, "no-cache", false, "disable caching")
}

// options builds pipeline options from cfg, overridden by every flag the
// user set explicitly.
func (f *solveFlags) options(cmd *cobra.Command, cfg *config.Config) pipeline.Options {
	opts := pipeline.FromConfig(cfg)
	fs := cmd.Flags()
	if fs.Changed("backend") {
		opts.Backend = f.backend
	}
	if fs.Changed("domain-min") {
		opts.DomainMin = f.domainMin
	}
	if fs.Changed("domain-max") {
		opts.DomainMax = f.domainMax
	}
	if fs.Changed("min-footprint") {
		opts.MinFootprint = f.minFootprint
	}
	if fs.Changed("time-budget") {
		opts.TimeBudgetMS = f.timeBudget.Milliseconds()
	}
	if fs.Changed("no-footprint") {
		opts.NoFootprint = f.noFootprint
	}
	opts.Resolve = f.resolve
	opts.Refresh = f.refresh
	return opts
}

// solveCommand creates the solve command.
func (c *CLI) solveCommand() *cobra.Command {
	var (
		flags      solveFlags
		formatsStr string
		output     string
		labels     bool
		boxes      bool
		layers     bool
	)

	cmd := &cobra.Command{
		Use:   "solve [document]",
		Short: "Solve a layout document and write artifacts",
		Long: `Solve a layout document (JSON, TOML or YAML) and write the requested artifacts.

Blocks are solved and frozen or fixed in declaration order, then the root is
solved. Solved layouts are cached by document content and solver options.

Artifacts:
  json       the solved document with every box (default)
  dot        the cell hierarchy as Graphviz source
  hierarchy  the cell hierarchy rendered to SVG
  floorplan  the leaf rectangles as SVG, colored by layer`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			opts := flags.options(cmd, cfg)
			opts.Formats = parseFormats(formatsStr)
			opts.Labels, opts.ShowBoxes, opts.ShowLayers = labels, boxes, layers
			if err := pipeline.ValidateFormats(opts.Formats); err != nil {
				return err
			}
			return c.runSolve(cmd.Context(), cmd.OutOrStdout(), args[0], cfg, opts, output, flags.noCache)
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (single format, '-' for stdout) or base path (multiple)")
	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "artifact format(s): json (default), dot, hierarchy, floorplan (comma-separated)")
	cmd.Flags().BoolVar(&labels, "labels", false, "label floorplan rectangles")
	cmd.Flags().BoolVar(&boxes, "boxes", false, "show boxes in hierarchy output")
	cmd.Flags().BoolVar(&layers, "layers", true, "show layers in hierarchy output")

	return cmd
}

func (c *CLI) runSolve(ctx context.Context, stdout io.Writer, input string, cfg *config.Config, opts pipeline.Options, output string, noCache bool) error {
	logger := loggerFromContext(ctx)
	prog := newProgress(logger)

	doc, err := exchange.ReadFile(input)
	if err != nil {
		return err
	}

	runner, err := c.newRunner(ctx, cfg, noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()
	opts.Logger = logger

	spinner := newSpinner(ctx, fmt.Sprintf("Solving %s...", filepath.Base(input)))
	spinner.Start()
	result, err := runner.Execute(ctx, doc, opts)
	if err != nil {
		spinner.StopWithError("Solve failed")
		return err
	}
	spinner.Stop()
	prog.done("pipeline finished", "input", input)

	toStdout := output == "-"
	if !toStdout {
		printSuccess("Solved %s", StyleHighlight.Render(result.Root.Name()))
		fmt.Println("  " + solveSummary(result))
	}

	paths, err := writeArtifacts(stdout, result.Artifacts, opts.Formats, input, output)
	if err != nil {
		return err
	}
	for _, p := range paths {
		printFile(p)
	}
	return nil
}

// writeArtifacts writes one file per format and returns the written paths.
// A single format goes to output when it is set ("-" means stdout); with
// several formats output is a base path.
func writeArtifacts(stdout io.Writer, artifacts map[string][]byte, formats []string, input, output string) ([]string, error) {
	if output == "-" {
		if len(formats) != 1 {
			return nil, fmt.Errorf("stdout output needs exactly one format, got %d", len(formats))
		}
		_, err := stdout.Write(artifacts[formats[0]])
		return nil, err
	}

	var paths []string
	for _, f := range formats {
		path := artifactPath(f, input, output, len(formats) == 1)
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return paths, err
			}
		}
		if err := os.WriteFile(path, artifacts[f], 0o644); err != nil {
			return paths, fmt.Errorf("write %s: %w", path, err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}

// artifactPath derives the output file for one format.
func artifactPath(format, input, output string, single bool) string {
	if single && output != "" {
		return output
	}
	return basePath(output, input) + artifactExt[format]
}

// basePath strips the document or artifact extension from output, or from
// input when output is empty.
func basePath(output, input string) string {
	p := output
	if p == "" {
		p = input
	}
	for _, ext := range artifactExt {
		if strings.HasSuffix(p, ext) {
			return strings.TrimSuffix(p, ext)
		}
	}
	if _, err := exchange.FormatOf(p); err == nil {
		return strings.TrimSuffix(p, filepath.Ext(p))
	}
	if ext := filepath.Ext(p); ext == ".svg" {
		return strings.TrimSuffix(p, ext)
	}
	return p
}
