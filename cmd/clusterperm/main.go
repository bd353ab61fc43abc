package main

import (
	"encoding/json"
	"fmt"
	"os"
	"sync/atomic"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"clusterperm/adapters/excel"
	adapterstats "clusterperm/adapters/stats"
	"clusterperm/app"
	"clusterperm/domain/cluster"
	"clusterperm/domain/field"
	"clusterperm/internal"
	"clusterperm/internal/clustering"
	"clusterperm/internal/permutation"
	"clusterperm/internal/report"
	"clusterperm/ports"
)

func main() {
	// Optional .env for local development
	godotenv.Load()

	rootCmd := &cobra.Command{
		Use:   "clusterperm",
		Short: "Cluster-based permutation testing for spatially structured data",
	}

	rootCmd.AddCommand(
		newOneSampleCmd(),
		newIndependentCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// runFlags are shared between the one-sample and independent commands
type runFlags struct {
	tail         int
	threshold    float64
	autoThresh   bool
	alpha        float64
	permutations int
	seed         int64
	workers      int
	minSize      int
	tfce         bool
	jsonOut      bool
	reportPath   string
}

func (f *runFlags) register(cmd *cobra.Command) {
	cmd.Flags().IntVar(&f.tail, "tail", 0, "Test tail: -1 left, 0 both, +1 right")
	cmd.Flags().Float64Var(&f.threshold, "threshold", 2.0, "Cluster-forming threshold magnitude")
	cmd.Flags().BoolVar(&f.autoThresh, "auto-threshold", false, "Derive the threshold from the statistic distribution at alpha")
	cmd.Flags().Float64Var(&f.alpha, "alpha", 0.05, "Significance level")
	cmd.Flags().IntVar(&f.permutations, "permutations", 1024, "Number of permutations (includes the observed arrangement)")
	cmd.Flags().Int64Var(&f.seed, "seed", 42, "Random seed for deterministic permutation draws")
	cmd.Flags().IntVar(&f.workers, "workers", 0, "Worker goroutines, 0 uses all CPUs")
	cmd.Flags().IntVar(&f.minSize, "min-cluster-size", 0, "Drop clusters smaller than this")
	cmd.Flags().BoolVar(&f.tfce, "tfce", false, "Use threshold-free cluster enhancement instead of a fixed threshold")
	cmd.Flags().BoolVar(&f.jsonOut, "json", false, "Print the full result as JSON instead of a report")
	cmd.Flags().StringVar(&f.reportPath, "report", "", "Write the markdown report to this file")
}

func (f *runFlags) options() permutation.Options {
	opts := permutation.Options{
		Threshold:       f.threshold,
		Tail:            cluster.Tail(f.tail),
		NumPermutations: f.permutations,
		Seed:            f.seed,
		Workers:         f.workers,
		MinClusterSize:  f.minSize,
		Progress:        progressBar(),
	}
	if f.tfce {
		p := clustering.DefaultTFCEParams()
		opts.TFCE = &p
	}
	return opts
}

func newOneSampleCmd() *cobra.Command {
	var flags runFlags
	var popMean float64

	cmd := &cobra.Command{
		Use:   "onesample [data-file]",
		Short: "One-sample cluster test of a group against a population mean",
		Long: `Run a sign-flip permutation cluster test of one group against a population mean.

The data file (.xlsx or .csv) holds one observation per row, one location per
column. With few observations all sign assignments are enumerated exhaustively.

Example: clusterperm onesample subjects.xlsx --threshold 2.1 --permutations 4096 --seed 7`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := excel.NewGroupReader(args[0]).ReadGroup("")
			if err != nil {
				return err
			}
			opts := flags.options()
			if popMean != 0 {
				opts.Statistic = &adapterstats.OneSampleT{PopMean: popMean}
			}
			if flags.autoThresh && !flags.tfce {
				thr, err := adapterstats.TThreshold(float64(g.Len()-1), flags.alpha, opts.Tail)
				if err != nil {
					return err
				}
				opts.Threshold = thr
			}

			service := app.NewClusterService(nil)
			start := time.Now()
			res, err := service.PermutationCluster1SampTest(cmd.Context(), g, opts)
			if err != nil {
				return err
			}
			return emit(res, flags, time.Since(start))
		},
	}

	flags.register(cmd)
	cmd.Flags().Float64Var(&popMean, "pop-mean", 0, "Population mean to test against")
	return cmd
}

func newIndependentCmd() *cobra.Command {
	var flags runFlags
	var statName string

	cmd := &cobra.Command{
		Use:   "independent [group-files...]",
		Short: "Independent-samples cluster test across two or more groups",
		Long: `Run a label-shuffle permutation cluster test across independent groups,
one data file per group. Two groups default to Welch's t; more use one-way F.

Example: clusterperm independent patients.csv controls.csv --tail 1 --threshold 1.7`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			groups, err := readGroups(args)
			if err != nil {
				return err
			}
			opts := flags.options()
			switch statName {
			case "t":
				opts.Statistic = adapterstats.NewIndependentT()
			case "f":
				opts.Statistic = adapterstats.NewFOneway()
			case "":
				if len(groups) == 2 {
					opts.Statistic = adapterstats.NewIndependentT()
				}
			default:
				return fmt.Errorf("unknown statistic %q (want t or f)", statName)
			}

			service := app.NewClusterService(nil)
			start := time.Now()
			res, err := service.PermutationClusterTest(cmd.Context(), groups, opts)
			if err != nil {
				return err
			}
			return emit(res, flags, time.Since(start))
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVar(&statName, "statistic", "", "Statistic: t (Welch, 2 groups) or f (one-way ANOVA)")
	return cmd
}

// readGroups loads one group per data file through the reader port
func readGroups(paths []string) ([]*field.Group, error) {
	groups := make([]*field.Group, len(paths))
	for i, path := range paths {
		var reader ports.GroupReader = excel.NewGroupReader(path)
		g, err := reader.ReadGroup("")
		if err != nil {
			return nil, err
		}
		groups[i] = g
	}
	return groups, nil
}

// emit prints the run result as JSON or a markdown report, optionally also
// writing the report to a file.
func emit(res *cluster.Result, flags runFlags, elapsed time.Duration) error {
	fmt.Fprintf(os.Stderr, "\ncompleted %d permutations in %s\n\n", res.NumPermutations, elapsed.Round(time.Millisecond))

	if flags.jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	}

	md := report.Markdown(res, flags.alpha)
	if flags.reportPath != "" {
		if err := os.WriteFile(flags.reportPath, []byte(md), 0o644); err != nil {
			return fmt.Errorf("failed to write report: %w", err)
		}
		internal.DefaultLogger.Info("report written to %s", flags.reportPath)
	}
	fmt.Print(md)
	return nil
}

// progressBar reports permutation progress to stderr in 10% steps. Workers
// report concurrently, so the high-water mark is atomic.
func progressBar() ports.ProgressReporter {
	var lastDecile atomic.Int64
	return ports.ProgressFunc(func(completed, total int) {
		if total == 0 {
			return
		}
		decile := int64(completed * 10 / total)
		for {
			prev := lastDecile.Load()
			if decile <= prev {
				return
			}
			if lastDecile.CompareAndSwap(prev, decile) {
				fmt.Fprintf(os.Stderr, "%d%% ", decile*10)
				return
			}
		}
	})
}
