package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/san-kum/clothsim/internal/analysis"
	"github.com/san-kum/clothsim/internal/cloth"
	"github.com/san-kum/clothsim/internal/config"
	"github.com/san-kum/clothsim/internal/dynamo"
	"github.com/san-kum/clothsim/internal/experiment"
	"github.com/san-kum/clothsim/internal/export"
	"github.com/san-kum/clothsim/internal/integrators"
	"github.com/san-kum/clothsim/internal/optim"
	"github.com/san-kum/clothsim/internal/storage"
	"github.com/san-kum/clothsim/internal/viz"
)

var (
	dataDir    string
	configFile string
	preset     string
	force      bool

	// overrides, applied only when the flag is set
	dt         float64
	duration   float64
	integrator string
	rows       int
	cols       int
	gravity    float64
	stiffness  float64
	damping    float64
	wind       float64

	jsonOut     string
	outFile     string
	gifPath     string
	noSave      bool
	benchSteps  int
	benchSizes  []int
	minChunk    int
	sweepSteps  int
	workers     int
	trials      int
	perturb     float64
	seed        int64
	plotSamples int
	frameIndex  int
	svgOut      string
	traceOut    string
	axis        string
	gridParams  []string
	metricName  string
)

// main registers the clothsim commands. With no subcommand it opens the
// interactive preset menu.
func main() {
	rootCmd := &cobra.Command{
		Use:   "clothsim",
		Short: "mass-spring cloth simulation lab",
		RunE: func(cmd *cobra.Command, args []string) error {
			return viz.RunMenu(gifPath)
		},
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".clothsim", "data directory")
	rootCmd.PersistentFlags().StringVar(&gifPath, "gif", "clothsim.gif", "recording output for the live view")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run a cloth simulation and store it",
		Args:  cobra.NoArgs,
		RunE:  runSimulation,
	}
	addConfigFlags(runCmd)
	runCmd.Flags().StringVar(&jsonOut, "json", "", "also write the run as JSON to this file")
	runCmd.Flags().BoolVar(&noSave, "no-save", false, "do not store the run")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list stored runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot the hem of a stored run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().IntVar(&plotSamples, "width", 80, "plot width")

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export a stored run to JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}
	exportJSONCmd.Flags().StringVarP(&outFile, "out", "o", "", "output file (default stdout)")

	spectrumCmd := &cobra.Command{
		Use:   "spectrum [run_id]",
		Short: "flutter frequency of the hem",
		Args:  cobra.ExactArgs(1),
		RunE:  spectrumRun,
	}
	spectrumCmd.Flags().StringVar(&axis, "axis", "z", "hem coordinate to analyze (x, y or z)")

	snapshotCmd := &cobra.Command{
		Use:   "snapshot [run_id]",
		Short: "render a stored frame as SVG",
		Args:  cobra.ExactArgs(1),
		RunE:  snapshotRun,
	}
	snapshotCmd.Flags().IntVar(&frameIndex, "frame", -1, "frame to render (negative counts from the end)")
	snapshotCmd.Flags().StringVarP(&svgOut, "out", "o", "cloth.svg", "wireframe output file")
	snapshotCmd.Flags().StringVar(&traceOut, "trace", "", "also write the hem path seen from above to this file")

	meshCmd := &cobra.Command{
		Use:   "mesh",
		Short: "simulate, then write the final vertex buffer and triangle list",
		Args:  cobra.NoArgs,
		RunE:  exportMesh,
	}
	addConfigFlags(meshCmd)
	meshCmd.Flags().StringVarP(&outFile, "out", "o", "", "output file (default stdout)")

	liveCmd := &cobra.Command{
		Use:   "live [preset]",
		Short: "watch the cloth in the terminal",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runLive,
	}
	addConfigFlags(liveCmd)

	benchCmd := &cobra.Command{
		Use:   "bench",
		Short: "measure step throughput",
		Args:  cobra.NoArgs,
		RunE:  benchCloth,
	}
	addConfigFlags(benchCmd)
	benchCmd.Flags().IntVar(&benchSteps, "steps", 1000, "steps per grid")
	benchCmd.Flags().IntSliceVar(&benchSizes, "sizes", nil, "square grid sizes to time (default: configured grid)")
	benchCmd.Flags().IntVar(&minChunk, "min-chunk", 0, "smallest particle range per force worker")

	compareCmd := &cobra.Command{
		Use:   "compare [integrator]...",
		Short: "run the same cloth under several integrators",
		RunE:  compareIntegrators,
	}
	addConfigFlags(compareCmd)

	sweepCmd := &cobra.Command{
		Use:   "sweep [param] [min] [max]",
		Short: "sweep one cloth parameter",
		Args:  cobra.ExactArgs(3),
		RunE:  runSweep,
	}
	addConfigFlags(sweepCmd)
	sweepCmd.Flags().IntVar(&sweepSteps, "steps", 5, "number of values")
	sweepCmd.Flags().IntVar(&workers, "workers", 0, "parallel runs (default GOMAXPROCS)")

	monteCarloCmd := &cobra.Command{
		Use:   "montecarlo",
		Short: "run randomly perturbed cloths and count stable ones",
		Args:  cobra.NoArgs,
		RunE:  runMonteCarlo,
	}
	addConfigFlags(monteCarloCmd)
	monteCarloCmd.Flags().IntVar(&trials, "trials", 20, "number of trials")
	monteCarloCmd.Flags().Float64Var(&perturb, "perturb", 0.2, "relative parameter jitter")
	monteCarloCmd.Flags().Int64Var(&seed, "seed", time.Now().UnixNano(), "random seed")
	monteCarloCmd.Flags().IntVar(&workers, "workers", 0, "parallel runs (default GOMAXPROCS)")

	optimizeCmd := &cobra.Command{
		Use:   "optimize",
		Short: "grid-search parameters for the lowest metric",
		Args:  cobra.NoArgs,
		RunE:  runOptimize,
	}
	addConfigFlags(optimizeCmd)
	optimizeCmd.Flags().StringArrayVar(&gridParams, "param", nil, "parameter range as name=min:max:steps (repeatable)")
	optimizeCmd.Flags().StringVar(&metricName, "metric", "max_sag", "metric to minimize")
	optimizeCmd.Flags().IntVar(&workers, "workers", 0, "parallel runs (default GOMAXPROCS)")

	scenarioCmd := &cobra.Command{
		Use:   "scenario [file]",
		Short: "run a scripted sequence of cloths",
		Args:  cobra.ExactArgs(1),
		RunE:  runScenario,
	}

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		RunE: func(cmd *cobra.Command, args []string) error {
			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tGRID\tSTIFFNESS\tWIND\tDT\tDURATION")
			for _, name := range config.ListPresets() {
				c := config.GetPreset(name)
				fmt.Fprintf(w, "%s\t%dx%d\t%g\t%g\t%g\t%gs\n",
					name, c.Grid.Rows, c.Grid.Cols, c.Physics.Stiffness, c.Physics.Wind, c.Run.Dt, c.Run.Duration)
			}
			return w.Flush()
		},
	}

	rootCmd.AddCommand(runCmd, listCmd, plotCmd, spectrumCmd, snapshotCmd, exportJSONCmd, meshCmd, liveCmd, benchCmd, compareCmd, sweepCmd, monteCarloCmd, optimizeCmd, scenarioCmd, presetsCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func addConfigFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	cmd.Flags().StringVar(&preset, "preset", "", "start from a preset")
	cmd.Flags().BoolVar(&force, "force", false, "allow dt above the stability bound")
	cmd.Flags().Float64Var(&dt, "dt", config.DefaultDt, "timestep")
	cmd.Flags().Float64Var(&duration, "time", config.DefaultDuration, "duration")
	cmd.Flags().StringVar(&integrator, "integrator", integrators.Default, "integrator")
	cmd.Flags().IntVar(&rows, "rows", config.DefaultRows, "grid rows")
	cmd.Flags().IntVar(&cols, "cols", config.DefaultCols, "grid columns")
	cmd.Flags().Float64Var(&gravity, "gravity", config.DefaultGravity, "gravity")
	cmd.Flags().Float64Var(&stiffness, "stiffness", config.DefaultStiffness, "spring stiffness")
	cmd.Flags().Float64Var(&damping, "damping", config.DefaultDamping, "velocity damping")
	cmd.Flags().Float64Var(&wind, "wind", config.DefaultWind, "wind strength")
}

// loadConfig resolves preset, then config file, then explicitly set flags.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()

	if preset != "" {
		cfg = config.GetPreset(preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
	}

	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("dt") {
		cfg.Run.Dt = dt
	}
	if flags.Changed("time") {
		cfg.Run.Duration = duration
	}
	if flags.Changed("integrator") {
		cfg.Run.Integrator = integrator
	}
	if flags.Changed("rows") {
		cfg.Grid.Rows = rows
	}
	if flags.Changed("cols") {
		cfg.Grid.Cols = cols
	}
	if flags.Changed("gravity") {
		cfg.Physics.Gravity = gravity
	}
	if flags.Changed("stiffness") {
		cfg.Physics.Stiffness = stiffness
	}
	if flags.Changed("damping") {
		cfg.Physics.Damping = damping
	}
	if flags.Changed("wind") {
		cfg.Physics.Wind = wind
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, checkStable(cfg)
}

// checkStable refuses a dt above the cloth's stability bound unless --force.
func checkStable(cfg *config.Config) error {
	if force {
		return nil
	}
	sim, err := cloth.New(cfg.Params())
	if err != nil {
		return err
	}
	if limit := sim.MaxStableDt(); cfg.Run.Dt > limit {
		return fmt.Errorf("%w: dt %g exceeds %.4g for this cloth (use --force to run anyway)", dynamo.ErrUnstable, cfg.Run.Dt, limit)
	}
	return nil
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt)
}

func printMetrics(metrics map[string]float64) {
	names := make([]string, 0, len(metrics))
	for name := range metrics {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Printf("  %s: %.6f\n", name, metrics[name])
	}
}

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	exp, err := experiment.New(cfg)
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	fmt.Printf("running %dx%d cloth (%s, dt=%g, %gs)...\n", cfg.Grid.Rows, cfg.Grid.Cols, cfg.Run.Integrator, cfg.Run.Dt, cfg.Run.Duration)
	start := time.Now()

	result, err := exp.Run(ctx)
	if err != nil && result == nil {
		return err
	}
	if err != nil {
		fmt.Printf("interrupted: %v\n", err)
	}

	elapsed := time.Since(start)

	if !noSave {
		st := storage.New(dataDir)
		if err := st.Init(); err != nil {
			return err
		}
		runID, err := st.Save(cfg, result)
		if err != nil {
			return err
		}
		fmt.Printf("run id: %s\n", runID)
	}

	if jsonOut != "" {
		f, err := os.Create(jsonOut)
		if err != nil {
			return err
		}
		defer f.Close()
		if err := storage.ExportJSON(f, cfg, result); err != nil {
			return err
		}
		fmt.Printf("wrote %s\n", jsonOut)
	}

	fmt.Printf("completed in %v\n", elapsed)
	fmt.Printf("steps: %d (%d frames)\n", result.StepsTaken, len(result.States))
	fmt.Printf("energy drift: %.6f\n", result.EnergyDrift)
	for _, e := range result.Errors {
		fmt.Printf("error: %v\n", e)
	}
	fmt.Println("\nmetrics:")
	printMetrics(result.Metrics)

	return nil
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tGRID\tTIME\tDURATION\tDT\tINTEG\tSTEPS\tDRIFT")

	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%dx%d\t%s\t%.2fs\t%.4fs\t%s\t%d\t%.4g\n",
			run.ID,
			run.Config.Grid.Rows,
			run.Config.Grid.Cols,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Config.Run.Duration,
			run.Config.Run.Dt,
			run.Config.Run.Integrator,
			run.Steps,
			run.EnergyDrift,
		)
	}

	return w.Flush()
}

// plotRun charts the bottom-center particle, which swings the most under
// wind, and the lowest point of the cloth.
func plotRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}

	frames, _, err := st.LoadFrames(runID)
	if err != nil {
		return err
	}

	if len(frames) == 0 {
		return fmt.Errorf("no data to plot")
	}

	grid := meta.Config.Grid
	hemY, err := analysis.HemSeries(frames, grid.Rows, grid.Cols, 1)
	if err != nil {
		return err
	}
	hemZ, err := analysis.HemSeries(frames, grid.Rows, grid.Cols, 2)
	if err != nil {
		return err
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("grid: %dx%d\n", grid.Rows, grid.Cols)
	fmt.Printf("samples: %d\n\n", len(frames))

	lowest := make([]float64, len(frames))
	for i, frame := range frames {
		lowest[i] = frame[0].Y()
		for _, p := range frame {
			lowest[i] = min(lowest[i], p.Y())
		}
	}

	for _, series := range []struct {
		caption string
		data    []float64
	}{
		{"hem center y", hemY},
		{"hem center z (wind deflection)", hemZ},
		{"lowest point y", lowest},
	} {
		graph := asciigraph.Plot(series.data,
			asciigraph.Height(10),
			asciigraph.Width(plotSamples),
			asciigraph.Caption(series.caption),
		)
		fmt.Println(graph)
		fmt.Println()
	}

	return nil
}

func exportJSON(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	if outFile == "" {
		return st.ExportRun(os.Stdout, args[0])
	}

	f, err := os.Create(outFile)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := st.ExportRun(f, args[0]); err != nil {
		return err
	}
	fmt.Printf("exported %s to %s\n", args[0], outFile)
	return nil
}

func exportMesh(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	exp, err := experiment.New(cfg)
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	result, err := exp.Run(ctx)
	if err != nil {
		return err
	}
	if len(result.Errors) > 0 {
		return result.Errors[0]
	}

	mesh := storage.NewMesh(exp.Cloth())
	if outFile == "" {
		return storage.ExportMesh(os.Stdout, mesh)
	}

	f, err := os.Create(outFile)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := storage.ExportMesh(f, mesh); err != nil {
		return err
	}
	fmt.Printf("wrote %d vertices and %d triangles to %s\n", len(mesh.Vertices)/mesh.Stride, len(mesh.Indices)/3, outFile)
	return nil
}

func runLive(cmd *cobra.Command, args []string) error {
	if len(args) == 1 {
		preset = args[0]
	}
	if preset == "" && configFile == "" && !cmd.Flags().Changed("rows") && !cmd.Flags().Changed("cols") {
		return viz.RunMenu(gifPath)
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	integ, err := integrators.Get(cfg.Run.Integrator)
	if err != nil {
		return err
	}

	m, err := viz.NewMonitor(cfg.Params(), integ, cfg.Run.Dt, gifPath)
	if err != nil {
		return err
	}
	return viz.RunMonitor(m)
}

func benchCloth(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	integ, err := integrators.Get(cfg.Run.Integrator)
	if err != nil {
		return err
	}
	opts := []cloth.Option{cloth.WithIntegrator(integ)}
	if minChunk > 0 {
		opts = append(opts, cloth.WithParallelThreshold(minChunk))
	}

	sizes := benchSizes
	if len(sizes) == 0 {
		sizes = []int{0}
	}

	fmt.Printf("benchmarking %s, %d steps per grid (dt=%g)...\n\n", cfg.Run.Integrator, benchSteps, cfg.Run.Dt)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "GRID\tSTEPS\tELAPSED\tSTEPS/SEC\tPARTICLE-STEPS/SEC")
	for _, size := range sizes {
		params := cfg.Params()
		if size > 0 {
			params.Rows, params.Cols = size, size
		}

		res, err := experiment.Bench(params, cfg.Run.Dt, benchSteps, opts...)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "%dx%d\t%d\t%v\t%.0f\t%.3g\n",
			res.Rows, res.Cols, res.Steps, res.Elapsed.Round(time.Microsecond), res.StepsPerSecond(), res.ParticleStepsPerSecond())
	}

	return w.Flush()
}

func compareIntegrators(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	names := args
	if len(names) == 0 {
		names = integrators.Names()
	}

	ctx, cancel := signalContext()
	defer cancel()

	fmt.Printf("comparing integrators on a %dx%d cloth (dt=%g, %gs)...\n\n", cfg.Grid.Rows, cfg.Grid.Cols, cfg.Run.Dt, cfg.Run.Duration)

	results, err := experiment.Compare(ctx, cfg, names)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "INTEGRATOR\tENERGY DRIFT\tSTABILITY\tPIN DRIFT\tMAX SAG\tTIME\tSTATUS")

	for _, r := range results {
		status := "ok"
		if len(r.Errors) > 0 {
			status = r.Errors[0].Error()
		}
		fmt.Fprintf(w, "%s\t%.6e\t%.4f\t%.2e\t%.4f\t%v\t%s\n",
			r.Integrator,
			r.EnergyDrift,
			r.Metrics["stability"],
			r.Metrics["pin_drift"],
			r.Metrics["max_sag"],
			r.Elapsed.Round(time.Millisecond),
			status,
		)
	}

	return w.Flush()
}

func runSweep(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	lo, err := strconv.ParseFloat(args[1], 64)
	if err != nil {
		return fmt.Errorf("invalid min %q: %w", args[1], err)
	}
	hi, err := strconv.ParseFloat(args[2], 64)
	if err != nil {
		return fmt.Errorf("invalid max %q: %w", args[2], err)
	}

	sweep := &experiment.Sweep{
		Base:    cfg,
		Param:   args[0],
		Min:     lo,
		Max:     hi,
		Steps:   sweepSteps,
		Workers: workers,
	}

	ctx, cancel := signalContext()
	defer cancel()

	fmt.Printf("sweeping %s over [%g, %g] in %d steps...\n\n", sweep.Param, lo, hi, sweepSteps)

	results, err := experiment.RunSweep(ctx, sweep)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "%s\tENERGY DRIFT\tSTABILITY\tMAX SAG\tMEAN SPEED\tSTATUS\n", sweep.Param)
	for _, r := range results {
		status := "ok"
		if len(r.Errors) > 0 {
			status = r.Errors[0].Error()
		}
		fmt.Fprintf(w, "%.4g\t%.6e\t%.4f\t%.4f\t%.4f\t%s\n",
			r.ParamValue, r.EnergyDrift, r.Metrics["stability"], r.Metrics["max_sag"], r.Metrics["mean_speed"], status)
	}

	return w.Flush()
}

func runMonteCarlo(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	fmt.Printf("running %d trials with ±%.0f%% parameter jitter (seed %d)...\n", trials, perturb*100, seed)

	results, err := experiment.RunMonteCarlo(ctx, &experiment.MonteCarloConfig{
		Base:         cfg,
		Perturbation: perturb,
		NumTrials:    trials,
		Seed:         seed,
		Workers:      workers,
	})
	if err != nil {
		return err
	}

	stable, unstable := experiment.MonteCarloStats(results)
	fmt.Printf("stable: %d, unstable: %d (%.1f%% stable)\n", stable, unstable, 100*float64(stable)/float64(len(results)))

	if unstable > 0 {
		fmt.Println("\nunstable trials:")
		for _, r := range results {
			if !r.Stable {
				fmt.Printf("  #%d stiffness=%.4g point_mass=%.4g damping=%.4g\n",
					r.TrialID, r.Params["stiffness"], r.Params["point_mass"], r.Params["damping"])
			}
		}
	}

	return nil
}

func runScenario(cmd *cobra.Command, args []string) error {
	sc, err := experiment.LoadScenario(args[0])
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	fmt.Printf("scenario: %s\n", sc.Name)
	if sc.Description != "" {
		fmt.Printf("%s\n", sc.Description)
	}
	fmt.Println()

	results, err := experiment.RunScenario(ctx, sc, os.Stdout)
	if err != nil {
		return err
	}

	fmt.Println()
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "STEP\tPRESET\tSTEPS\tENERGY DRIFT\tMAX SAG")
	for i, r := range results {
		fmt.Fprintf(w, "%d\t%s\t%d\t%.6e\t%.4f\n", i+1, sc.Steps[i].Preset, r.StepsTaken, r.EnergyDrift, r.Metrics["max_sag"])
	}
	return w.Flush()
}

var axes = map[string]int{"x": 0, "y": 1, "z": 2}

func spectrumRun(cmd *cobra.Command, args []string) error {
	axisIdx, ok := axes[axis]
	if !ok {
		return fmt.Errorf("unknown axis %q (use x, y or z)", axis)
	}

	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}
	frames, times, err := st.LoadFrames(args[0])
	if err != nil {
		return err
	}
	if len(times) < 2 {
		return fmt.Errorf("run %s has too few frames", args[0])
	}

	grid := meta.Config.Grid
	series, err := analysis.HemSeries(frames, grid.Rows, grid.Cols, axisIdx)
	if err != nil {
		return err
	}

	sampleDt, n, err := analysis.UniformPrefix(times)
	if err != nil {
		return err
	}
	series = series[:n]
	bins, err := analysis.Spectrum(series, sampleDt)
	if err != nil {
		return err
	}
	freq, err := analysis.DominantFrequency(series, sampleDt)
	if err != nil {
		return err
	}

	power := make([]float64, len(bins))
	for i, b := range bins {
		power[i] = b.Power
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("samples: %d every %gs (resolution %.3f Hz)\n\n", len(series), sampleDt, bins[1].Freq)
	fmt.Println(asciigraph.Plot(power,
		asciigraph.Height(10),
		asciigraph.Width(80),
		asciigraph.Caption(fmt.Sprintf("hem %s power spectrum, 0 to %.1f Hz", axis, bins[len(bins)-1].Freq)),
	))
	fmt.Printf("\ndominant frequency: %.3f Hz\n", freq)
	return nil
}

func snapshotRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}
	frames, times, err := st.LoadFrames(args[0])
	if err != nil {
		return err
	}
	if len(frames) == 0 {
		return fmt.Errorf("run %s has no frames", args[0])
	}

	idx := frameIndex
	if idx < 0 {
		idx += len(frames)
	}
	if idx < 0 || idx >= len(frames) {
		return fmt.Errorf("frame %d out of range (run has %d)", frameIndex, len(frames))
	}

	grid := meta.Config.Grid
	topo := cloth.BuildTopology(grid.Rows, grid.Cols)
	if len(frames[idx]) != topo.Len() {
		return fmt.Errorf("run %s has %d particles, expected %d", args[0], len(frames[idx]), topo.Len())
	}

	canvas := viz.NewCanvas(80, 40)
	camera := viz.NewCamera()
	camera.Fit(frames[idx])
	viz.Render3D(canvas, viz.ClothWireframe(topo, frames[idx]), camera)

	if err := os.WriteFile(svgOut, []byte(export.CanvasToSVG(canvas, 4, string(viz.ThemeCyberpunk.Primary))), 0644); err != nil {
		return err
	}
	fmt.Printf("wrote frame %d (t=%.2fs) to %s\n", idx, times[idx], svgOut)

	if traceOut != "" {
		hemX, err := analysis.HemSeries(frames, grid.Rows, grid.Cols, 0)
		if err != nil {
			return err
		}
		hemZ, err := analysis.HemSeries(frames, grid.Rows, grid.Cols, 2)
		if err != nil {
			return err
		}
		points := make([]mgl64.Vec2, len(frames))
		for i := range points {
			points[i] = mgl64.Vec2{hemX[i], hemZ[i]}
		}
		if err := os.WriteFile(traceOut, []byte(export.TraceSVG(points, 600, 400, string(viz.ThemeCyberpunk.Accent))), 0644); err != nil {
			return err
		}
		fmt.Printf("wrote hem trace to %s\n", traceOut)
	}
	return nil
}

// parseRange reads name=min:max:steps.
func parseRange(arg string) (string, []float64, error) {
	name, bounds, ok := strings.Cut(arg, "=")
	parts := strings.Split(bounds, ":")
	if !ok || len(parts) != 3 {
		return "", nil, fmt.Errorf("invalid range %q (want name=min:max:steps)", arg)
	}
	lo, err := strconv.ParseFloat(parts[0], 64)
	if err != nil {
		return "", nil, fmt.Errorf("invalid range %q: %w", arg, err)
	}
	hi, err := strconv.ParseFloat(parts[1], 64)
	if err != nil {
		return "", nil, fmt.Errorf("invalid range %q: %w", arg, err)
	}
	n, err := strconv.Atoi(parts[2])
	if err != nil || n < 1 {
		return "", nil, fmt.Errorf("invalid range %q: steps must be a positive integer", arg)
	}
	return name, (&experiment.Sweep{Min: lo, Max: hi, Steps: n}).Values(), nil
}

func runOptimize(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if len(gridParams) == 0 {
		return fmt.Errorf("at least one --param is required")
	}

	search := &optim.GridSearch{Base: cfg, Metric: metricName, Workers: workers}
	for _, arg := range gridParams {
		name, values, err := parseRange(arg)
		if err != nil {
			return err
		}
		search.Names = append(search.Names, name)
		search.Ranges = append(search.Ranges, values)
	}

	ctx, cancel := signalContext()
	defer cancel()

	fmt.Printf("searching %d combinations for the lowest %s...\n\n", len(search.Points()), metricName)

	best, all, err := search.Search(ctx)
	if err != nil && !errors.Is(err, optim.ErrNoCandidate) {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "%s\t%s\tSTABLE\n", strings.Join(search.Names, "\t"), metricName)
	for _, c := range all {
		for _, name := range search.Names {
			fmt.Fprintf(w, "%.4g\t", c.Params[name])
		}
		fmt.Fprintf(w, "%.6g\t%v\n", c.Value, c.Stable)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if errors.Is(err, optim.ErrNoCandidate) {
		return err
	}
	fmt.Printf("\nbest: %v (%s=%.6g)\n", best.Params, metricName, best.Value)
	return nil
}
