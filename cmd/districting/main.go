// Command districting partitions a demand point instance into k districts
// and reports, renders and optionally stores the result.
//
// Usage:
//
//	districting -instance points.csv -k 6 [-starts 20 -objective loadRange] \
//	    [-png map.png] [-html map.html] [-report report.json] [-db runs.db]
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"text/tabwriter"

	"github.com/banshee-data/districting/internal/config"
	"github.com/banshee-data/districting/internal/districting"
	"github.com/banshee-data/districting/internal/districting/distance"
	"github.com/banshee-data/districting/internal/districting/instance"
	"github.com/banshee-data/districting/internal/districting/render"
	"github.com/banshee-data/districting/internal/districting/storage/sqlite"
	"github.com/banshee-data/districting/internal/monitoring"
	"github.com/banshee-data/districting/internal/security"
	"github.com/banshee-data/districting/internal/timeutil"
	"github.com/banshee-data/districting/internal/version"
)

// options holds the parsed command line.
type options struct {
	Instance   string
	ConfigPath string

	Format    string
	K         int
	Seed      int64
	Formula   string
	Strategy  string
	Starts    int
	RankBy    string
	OutputDir string
	Database  string

	PNG    string
	HTML   string
	Report string

	ListObjectives bool
	ShowVersion    bool
	Verbose        bool

	// set records which flags appeared on the command line.
	set map[string]bool
}

func parseFlags(args []string, stderr io.Writer) (*options, error) {
	o := &options{set: make(map[string]bool)}
	fs := flag.NewFlagSet("districting", flag.ContinueOnError)
	fs.SetOutput(stderr)

	fs.StringVar(&o.Instance, "instance", "", "Instance file (CSV or legacy text)")
	fs.StringVar(&o.ConfigPath, "config", "", "Run config file (.json, .yaml or .yml)")
	fs.StringVar(&o.Format, "format", "", "Instance format: csv or text (default: from extension)")
	fs.IntVar(&o.K, "k", config.DefaultK, "Number of districts")
	fs.Int64Var(&o.Seed, "seed", districting.DefaultSeed, "Random seed")
	fs.StringVar(&o.Formula, "formula", config.DefaultFormula, "Distance formula: planar, greatcircle or geodesic")
	fs.StringVar(&o.Strategy, "strategy", config.DefaultStrategy, "Construction strategy: demand-greedy or random-round-robin")
	fs.IntVar(&o.Starts, "starts", 0, "Extra randomized starts to rank against the greedy solution")
	fs.StringVar(&o.RankBy, "objective", config.DefaultRankBy, "Objective used to rank multi-start solutions")
	fs.StringVar(&o.OutputDir, "output", config.DefaultOutputDir, "Directory for rendered files")
	fs.StringVar(&o.Database, "db", "", "SQLite run store; empty disables persistence")
	fs.StringVar(&o.PNG, "png", "", "Write a PNG scatter plot to this file under -output")
	fs.StringVar(&o.HTML, "html", "", "Write an HTML map to this file under -output")
	fs.StringVar(&o.Report, "report", "", "Write a report (.json or text) to this file under -output")
	fs.BoolVar(&o.ListObjectives, "list-objectives", false, "List objectives and exit")
	fs.BoolVar(&o.ShowVersion, "version", false, "Print version and exit")
	fs.BoolVar(&o.Verbose, "v", false, "Verbose logging")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	fs.Visit(func(f *flag.Flag) { o.set[f.Name] = true })
	return o, nil
}

// runConfig merges the config file (if any) with explicitly set flags.
func (o *options) runConfig() (*config.RunConfig, error) {
	cfg := config.DefaultRunConfig()
	if o.ConfigPath != "" {
		loaded, err := config.LoadRunConfig(o.ConfigPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if o.set["format"] {
		cfg.Format = &o.Format
	}
	if o.set["k"] {
		cfg.K = &o.K
	}
	if o.set["seed"] {
		cfg.Seed = &o.Seed
	}
	if o.set["formula"] {
		cfg.Formula = &o.Formula
	}
	if o.set["strategy"] {
		cfg.Strategy = &o.Strategy
	}
	if o.set["starts"] {
		cfg.Starts = &o.Starts
	}
	if o.set["objective"] {
		cfg.RankBy = &o.RankBy
	}
	if o.set["output"] {
		cfg.OutputDir = &o.OutputDir
	}
	if o.set["db"] {
		cfg.Database = &o.Database
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func main() {
	log.SetFlags(0)
	o, err := parseFlags(os.Args[1:], os.Stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		os.Exit(2)
	}
	if err := run(context.Background(), o, os.Stdout); err != nil {
		log.Fatalf("districting: %v", err)
	}
}

func run(ctx context.Context, o *options, stdout io.Writer) error {
	monitoring.SetVerbose(o.Verbose)

	if o.ShowVersion {
		fmt.Fprintf(stdout, "districting %s (git %s, built %s)\n", version.Version, version.GitSHA, version.BuildTime)
		return nil
	}
	if o.ListObjectives {
		return listObjectives(stdout)
	}
	if o.Instance == "" {
		return errors.New("-instance is required")
	}

	cfg, err := o.runConfig()
	if err != nil {
		return err
	}

	format, err := instance.ParseFormat(cfg.GetFormat())
	if err != nil {
		return err
	}
	in, err := instance.Load(o.Instance, format)
	if err != nil {
		return fmt.Errorf("failed to load instance: %w", err)
	}
	monitoring.Logf("loaded %s: %d points, total demand %g", in.Name, in.Len(), in.TotalDemand())

	clock := timeutil.RealClock{}
	start := clock.Now()

	formula := cfg.GetFormula()
	table, err := distance.BuildTable(in.Points, formula)
	if err != nil {
		return fmt.Errorf("failed to build distance table: %w", err)
	}

	sol, seed, err := solve(cfg, in, table)
	if err != nil {
		return err
	}
	monitoring.Logf("solved %s with k=%d in %v", in.Name, cfg.GetK(), timeutil.Elapsed(clock, start))

	info := render.RunInfo{
		Instance: in.Name,
		K:        cfg.GetK(),
		Strategy: sol.Strategy.String(),
		Formula:  formula.String(),
		Seed:     seed,
		Starts:   cfg.GetStarts(),
	}

	if path := cfg.GetDatabase(); path != "" {
		runID, err := persist(ctx, path, in, info, sol)
		if err != nil {
			return err
		}
		info.RunID = runID
	}

	report, err := render.NewReport(info, sol)
	if err != nil {
		return err
	}
	report.KeepObjectives(cfg.GetObjectives())
	if err := report.WriteText(stdout); err != nil {
		return err
	}

	return writeOutputs(render.NewOutput(cfg.GetOutputDir()), o, in, report, sol)
}

// solve runs the configured strategy, or a ranked multi-start when starts > 0.
// It returns the chosen solution and the seed that produced it.
func solve(cfg *config.RunConfig, in *districting.Instance, table districting.DistanceTable) (*districting.Solution, int64, error) {
	if cfg.GetStarts() == 0 {
		eng := districting.NewEngine(
			districting.WithStrategy(cfg.GetStrategy()),
			districting.WithRand(districting.NewRand(cfg.GetSeed())),
		)
		sol, err := eng.Build(cfg.GetK(), in.Points, table)
		if err != nil {
			return nil, 0, err
		}
		return sol, cfg.GetSeed(), nil
	}

	ranked, err := districting.RunMultiStart(districting.MultiStartConfig{
		K:         cfg.GetK(),
		Starts:    cfg.GetStarts(),
		Seed:      cfg.GetSeed(),
		Objective: cfg.GetRankBy(),
	}, in.Points, table)
	if err != nil {
		return nil, 0, err
	}
	best := ranked[0]
	monitoring.Logf("multi-start: best of %d is start %d with %s=%g", len(ranked), best.Start, cfg.GetRankBy(), best.Score)
	seed := best.Seed
	if best.Start == 0 {
		seed = cfg.GetSeed()
	}
	return best.Solution, seed, nil
}

func persist(ctx context.Context, path string, in *districting.Instance, info render.RunInfo, sol *districting.Solution) (string, error) {
	store, err := sqlite.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open run store: %w", err)
	}
	defer store.Close()

	instanceID, err := store.SaveInstance(ctx, in)
	if err != nil {
		return "", fmt.Errorf("failed to save instance: %w", err)
	}
	runID, err := store.SaveRun(ctx, sqlite.RunParams{
		InstanceID: instanceID,
		K:          info.K,
		Strategy:   info.Strategy,
		Seed:       info.Seed,
		Formula:    info.Formula,
	}, sol)
	if err != nil {
		return "", fmt.Errorf("failed to save run: %w", err)
	}
	monitoring.Logf("stored run %s for instance %s in %s", runID, instanceID, path)
	return runID, nil
}

func writeOutputs(out *render.Output, o *options, in *districting.Instance, report *render.Report, sol *districting.Solution) error {
	title := fmt.Sprintf("%s (k=%d)", in.Name, report.K)
	stem := security.SanitizeFilename(in.Name)

	if o.PNG != "" {
		path, err := out.WritePNG(defaultName(o.PNG, stem, ".png"), title, sol)
		if err != nil {
			return err
		}
		monitoring.Logf("wrote %s", path)
	}
	if o.HTML != "" {
		path, err := out.WriteHTML(defaultName(o.HTML, stem, ".html"), title, sol)
		if err != nil {
			return err
		}
		monitoring.Logf("wrote %s", path)
	}
	if o.Report != "" {
		path, err := out.WriteReport(defaultName(o.Report, stem, ".txt"), report)
		if err != nil {
			return err
		}
		monitoring.Logf("wrote %s", path)
	}
	return nil
}

// defaultName lets "-png auto" derive the file name from the instance name.
func defaultName(name, stem, ext string) string {
	if name == "auto" {
		return stem + ext
	}
	return name
}

func listObjectives(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tDESCRIPTION")
	for _, info := range districting.Objectives() {
		fmt.Fprintf(tw, "%s\t%s\n", info.Name, info.Description)
	}
	return tw.Flush()
}
