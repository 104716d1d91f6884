package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/ariel-frischer/quacker/contract"
	"github.com/ariel-frischer/quacker/failure"
	"github.com/ariel-frischer/quacker/internal/catalog"
	clierrors "github.com/ariel-frischer/quacker/internal/errors"
	"github.com/ariel-frischer/quacker/internal/progress"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var (
	checkFormat      string
	checkConcurrency int
)

var checkCmd = &cobra.Command{
	Use:   "check [contract...]",
	Short: "Run built-in contracts against their candidates",
	Long: `Run contracts from the built-in catalog. With no arguments every
contract runs. Each contract is first checked for self-consistency, then
its candidate is verified against it.

Exit status is 1 when any contract fails and 2 for usage or configuration errors.`,
	Example: `  # Run everything
  quacker check

  # Run two contracts with at most 4 checks in flight
  quacker check upper atoi --concurrency 4

  # Machine-readable report
  quacker check --format yaml`,
	ValidArgsFunction: func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return catalog.Names(), cobra.ShellCompDirectiveNoFileComp
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("format") {
			cfg.ReportFormat = checkFormat
		}
		if cmd.Flags().Changed("concurrency") {
			cfg.MaxConcurrency = checkConcurrency
		}

		opts, err := cfg.ContractOptions(cmd.ErrOrStderr())
		if err != nil {
			return clierrors.Wrap(err, clierrors.Configuration)
		}

		entries, err := selectEntries(args)
		if err != nil {
			return err
		}

		caps := progress.DetectTerminalCapabilities(os.Stdout)
		caps.SupportsColor = cfg.UseColor(caps.IsTTY)
		return runCheck(cmd.Context(), cmd.OutOrStdout(), checkRun{
			entries: entries,
			format:  cfg.ReportFormat,
			opts:    opts,
			caps:    caps,
		})
	},
}

func init() {
	checkCmd.GroupID = GroupVerification
	checkCmd.Flags().StringVarP(&checkFormat, "format", "f", "text", "Failure report format: text | yaml")
	checkCmd.Flags().IntVar(&checkConcurrency, "concurrency", 0, "Max sibling checks in flight (0 = unbounded)")
	rootCmd.AddCommand(checkCmd)
}

// checkRun holds everything runCheck needs, resolved from flags and config.
type checkRun struct {
	entries []catalog.Entry
	format  string
	opts    contract.Options
	caps    progress.TerminalCapabilities
}

// contractResult is the outcome of one catalog entry.
type contractResult struct {
	Name     string          `yaml:"name"`
	Passed   bool            `yaml:"passed"`
	Duration string          `yaml:"duration"`
	Failures []failure.Entry `yaml:"failures,omitempty"`

	err error
}

func selectEntries(names []string) ([]catalog.Entry, error) {
	if len(names) == 0 {
		return catalog.All(), nil
	}
	entries := make([]catalog.Entry, 0, len(names))
	for _, name := range names {
		e, ok := catalog.Lookup(name)
		if !ok {
			return nil, clierrors.UnknownContract(name, catalog.Names())
		}
		entries = append(entries, e)
	}
	return entries, nil
}

func runCheck(ctx context.Context, out io.Writer, run checkRun) error {
	if run.format != "text" && run.format != "yaml" {
		return clierrors.NewArgumentError(
			fmt.Sprintf("unknown report format: %s", run.format),
			"Use --format text or --format yaml",
		)
	}
	// YAML goes to out on its own, so progress lines are suppressed.
	displayOut := out
	if run.format == "yaml" {
		displayOut = io.Discard
	}
	display := progress.NewDisplay(displayOut, run.caps)
	defer display.Close()

	results := make([]contractResult, 0, len(run.entries))
	failed := 0
	for _, e := range run.entries {
		display.Start(e.Name)
		start := time.Now()
		err := e.Check(ctx, run.opts)
		elapsed := time.Since(start)
		display.Finish(e.Name, elapsed, err)

		if ctxErr := ctx.Err(); ctxErr != nil {
			return clierrors.WrapWithMessage(ctxErr, clierrors.Runtime, "check interrupted")
		}

		result := contractResult{Name: e.Name, Passed: err == nil, Duration: elapsed.Round(time.Microsecond).String(), err: err}
		if err != nil {
			failed++
			result.Failures = failure.NewReport(err).Failures
		}
		results = append(results, result)
	}

	if err := renderResults(out, run, results); err != nil {
		return err
	}
	if failed > 0 {
		return clierrors.ContractsFailed(failed, len(run.entries))
	}
	return nil
}

func renderResults(out io.Writer, run checkRun, results []contractResult) error {
	if run.format == "yaml" {
		data, err := yaml.Marshal(struct {
			Contracts []contractResult `yaml:"contracts"`
		}{results})
		if err != nil {
			return clierrors.WrapWithMessage(err, clierrors.Runtime, "rendering report")
		}
		_, err = out.Write(data)
		return err
	}

	heading := color.New(color.Bold)
	if run.caps.SupportsColor {
		heading.EnableColor()
	} else {
		heading.DisableColor()
	}
	for _, r := range results {
		if r.err == nil {
			continue
		}
		fmt.Fprintf(out, "\n%s\n", heading.Sprintf("%s:", r.Name))
		fmt.Fprint(out, failure.Format(r.err, run.caps.SupportsColor))
	}
	return nil
}
