// Command lightcurve synthesizes a transit light curve from a parameter
// file and writes it out as a plot, a chart, a CSV table, or a stored run.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/banshee-data/lightcurve/internal/config"
	"github.com/banshee-data/lightcurve/internal/db"
	"github.com/banshee-data/lightcurve/internal/ldtable"
	"github.com/banshee-data/lightcurve/internal/monitoring"
	"github.com/banshee-data/lightcurve/internal/report"
	"github.com/banshee-data/lightcurve/internal/transit"
	"github.com/banshee-data/lightcurve/internal/version"
)

var (
	paramsPath  = flag.String("params", "", "JSON or YAML parameter file (defaults describe WASP-50 b)")
	ldTable     = flag.String("ld-table", "", "limb-darkening coefficient table; overrides u with its quadratic means")
	grid        = flag.String("grid", "", "time grid as start:end:n")
	workers     = flag.Int("workers", 1, "parallel workers (-1 for one per CPU)")
	expTime     = flag.Float64("exp-time", 0, "exposure time in days for supersampling")
	supersample = flag.Int("supersample", 1, "samples per exposure")
	pngOut      = flag.String("png", "", "write a PNG plot to this path")
	htmlOut     = flag.String("html", "", "write an interactive HTML chart to this path")
	csvOut      = flag.String("csv", "", "write a CSV table to this path")
	dbPath      = flag.String("db", "", "store the run in this SQLite database")
	label       = flag.String("label", "", "label for the stored run")
	listRuns    = flag.Int("list", 0, "list the N most recent runs in -db and exit")
	timeout     = flag.Duration("timeout", 0, "abort synthesis after this long (0 for no limit)")
	quiet       = flag.Bool("quiet", false, "suppress diagnostic logging")
	showVersion = flag.Bool("version", false, "print version and exit")
)

// options is everything a run needs after flag parsing.
type options struct {
	cfg     *config.ParamsConfig
	png     string
	html    string
	csv     string
	db      string
	label   string
	timeout time.Duration
}

func main() {
	flag.Parse()

	if *showVersion {
		fmt.Println("lightcurve", version.String())
		return
	}
	if *quiet {
		monitoring.SetLogger(nil)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if *listRuns > 0 {
		if *dbPath == "" {
			log.Fatal("-list requires -db")
		}
		if err := list(ctx, *dbPath, *listRuns, os.Stdout); err != nil {
			log.Fatalf("failed to list runs: %v", err)
		}
		return
	}

	cfg := config.EmptyParamsConfig()
	if *paramsPath != "" {
		var err error
		if cfg, err = config.LoadParamsConfig(*paramsPath); err != nil {
			log.Fatalf("failed to load parameters: %v", err)
		}
	}
	applyFlags(cfg)
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid parameters: %v", err)
	}

	opts := options{
		cfg:     cfg,
		png:     *pngOut,
		html:    *htmlOut,
		csv:     *csvOut,
		db:      *dbPath,
		label:   *label,
		timeout: *timeout,
	}
	if err := run(ctx, opts, os.Stdout); err != nil {
		log.Fatalf("lightcurve: %v", err)
	}
}

// applyFlags copies explicitly set flags over the loaded config.
func applyFlags(cfg *config.ParamsConfig) {
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "ld-table":
			cfg.LDTable = ldTable
		case "grid":
			cfg.Grid = grid
		case "workers":
			cfg.Workers = workers
		case "exp-time":
			cfg.ExpTime = expTime
		case "supersample":
			cfg.Supersample = supersample
		}
	})
}

// run synthesizes the configured light curve and writes the requested
// outputs. A summary line goes to out.
func run(ctx context.Context, opts options, out io.Writer) error {
	cfg := opts.cfg
	params := cfg.Params()

	if path := cfg.GetLDTable(); path != "" {
		if params.Law != transit.LawQuadratic {
			return fmt.Errorf("ld_table supplies quadratic coefficients but limb_dark is %q", params.Law)
		}
		tbl, err := ldtable.Load(path)
		if err != nil {
			return err
		}
		u1, u2, err := tbl.Quadratic()
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		params = params.WithU(transit.LawQuadratic, u1, u2)
		monitoring.Logf("using quadratic coefficients u1=%.4f u2=%.4f from %s", u1, u2, path)
	}

	spec := cfg.GetGrid()
	times := spec.Times()

	if opts.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.timeout)
		defer cancel()
	}

	synth := transit.NewSynthesizer(transit.WithWorkers(cfg.GetWorkers()))
	flux, elapsed, err := synthesize(ctx, synth, params, times, cfg)
	if err != nil {
		return err
	}

	series := report.Series{Name: seriesName(opts.label, params), Times: times, Flux: flux}
	sum, err := report.Summarize(series)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "samples=%d grid=%s min_flux=%.7f at t=%g depth=%.3g%% elapsed=%s\n",
		sum.Samples, spec, sum.MinFlux, sum.MinTime, sum.Depth*100, elapsed.Round(time.Microsecond))

	if err := writeOutputs(ctx, opts, synth, params, series); err != nil {
		return err
	}

	if opts.db != "" {
		runID, err := store(ctx, opts, params, series, elapsed)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "stored run %s in %s\n", runID, opts.db)
	}
	return nil
}

func synthesize(ctx context.Context, synth *transit.Synthesizer, params transit.Params, times []float64, cfg *config.ParamsConfig) ([]float64, time.Duration, error) {
	defer monitoring.Timed("synthesized %d samples", len(times))()
	start := time.Now()

	var (
		flux []float64
		err  error
	)
	if n := cfg.GetSupersample(); n > 1 {
		flux, err = synth.SynthesizeExposure(ctx, params, times, cfg.GetExpTime(), n)
	} else {
		flux, err = synth.Synthesize(ctx, params, times)
	}
	return flux, time.Since(start), err
}

func writeOutputs(ctx context.Context, opts options, synth *transit.Synthesizer, params transit.Params, series report.Series) error {
	title := fmt.Sprintf("Transit light curve: %s", series.Name)
	subtitle := fmt.Sprintf("rp=%g a=%g inc=%g ecc=%g w=%g %s u=%v", params.Rp, params.A, params.Inc, params.Ecc, params.W, params.Law, params.U)

	if opts.png != "" {
		if err := report.WritePNG(opts.png, title, series); err != nil {
			return err
		}
		monitoring.Logf("wrote %s", opts.png)
	}
	if opts.html != "" {
		if err := report.WriteHTML(opts.html, title, subtitle, series); err != nil {
			return err
		}
		monitoring.Logf("wrote %s", opts.html)
	}
	if opts.csv != "" {
		geo, err := synth.Geometry(ctx, params, series.Times)
		if err != nil {
			return err
		}
		if err := report.WriteCSVFile(opts.csv, series, geo); err != nil {
			return err
		}
		monitoring.Logf("wrote %s", opts.csv)
	}
	return nil
}

func store(ctx context.Context, opts options, params transit.Params, series report.Series, elapsed time.Duration) (string, error) {
	database, err := db.Open(opts.db)
	if err != nil {
		return "", err
	}
	defer database.Close()

	run := &db.Run{
		Label:       opts.label,
		Params:      params,
		LDSource:    opts.cfg.GetLDTable(),
		Workers:     opts.cfg.GetWorkers(),
		ExpTime:     opts.cfg.GetExpTime(),
		Supersample: opts.cfg.GetSupersample(),
		Duration:    elapsed,
		Times:       series.Times,
		Flux:        series.Flux,
	}
	if err := db.NewRunStore(database).Insert(ctx, run); err != nil {
		return "", fmt.Errorf("failed to store run: %w", err)
	}
	return run.RunID, nil
}

func list(ctx context.Context, path string, limit int, out io.Writer) error {
	database, err := db.Open(path)
	if err != nil {
		return err
	}
	defer database.Close()

	runs, err := db.NewRunStore(database).List(ctx, limit)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "RUN ID\tCREATED\tLABEL\tLAW\tSAMPLES\tMIN FLUX")
	for _, r := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%.7f\n", r.RunID,
			time.Unix(0, r.CreatedAt).UTC().Format(time.RFC3339), r.Label, r.Params.Law, r.NSamples, r.MinFlux)
	}
	return w.Flush()
}

func seriesName(label string, p transit.Params) string {
	if label != "" {
		return label
	}
	return fmt.Sprintf("%s rp=%g", p.Law, p.Rp)
}
