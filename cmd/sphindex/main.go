package main

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/charmbracelet/log"
	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/sphindex/internal/config"
	"github.com/san-kum/sphindex/internal/dynamo"
	"github.com/san-kum/sphindex/internal/experiment"
	"github.com/san-kum/sphindex/internal/export"
	"github.com/san-kum/sphindex/internal/metrics"
	"github.com/san-kum/sphindex/internal/optim"
	"github.com/san-kum/sphindex/internal/physics"
	"github.com/san-kum/sphindex/internal/sim"
	"github.com/san-kum/sphindex/internal/storage"
	"github.com/san-kum/sphindex/internal/viz"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var (
	dataDir string
	verbose bool

	// Config file
	configFile string
	// Preset name
	preset string

	indexName   string
	integrator  string
	particles   int
	frames      int
	subSteps    int
	recordEvery int
	seed        int64
	workers     int
	width       float64
	height      float64

	// snapshot
	outFile     string
	showOverlay bool
	scale       float64

	// plot
	svgFile string

	benchSizes []int

	// sweep
	sweepParams []string
	sweepMetric string

	logger *log.Logger
)

// main registers commands and flags, opens the interactive view when no
// subcommand is given, and exits with status 1 on error.
func main() {
	rootCmd := &cobra.Command{
		Use:          "sphindex",
		Short:        "particle fluid simulation over interchangeable spatial indexes",
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logger = newLogger(verbose)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return viz.RunInteractive(experiment.NewRegistry())
		},
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".sphindex", "data directory")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run a simulation and store its frames",
		Args:  cobra.NoArgs,
		RunE:  runSimulation,
	}
	addConfigFlags(runCmd)

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot kinetic energy of a stored run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().StringVar(&svgFile, "svg", "", "also write the chart as SVG")

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "export run metadata",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export run frames to JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export run frames to CSV",
		Args:  cobra.ExactArgs(1),
		RunE:  exportCSV,
	}

	benchCmd := &cobra.Command{
		Use:   "bench [index...]",
		Short: "benchmark indexes over particle counts",
		RunE:  benchIndexes,
	}
	addConfigFlags(benchCmd)
	benchCmd.Flags().IntSliceVar(&benchSizes, "sizes", []int{200, 800, 2000}, "particle counts")

	compareCmd := &cobra.Command{
		Use:   "compare [index...]",
		Short: "run the same world on several indexes and compare",
		RunE:  compareIndexes,
	}
	addConfigFlags(compareCmd)

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "run simulation with live visualization",
		Args:  cobra.NoArgs,
		RunE:  runLive,
	}
	addConfigFlags(liveCmd)

	snapshotCmd := &cobra.Command{
		Use:   "snapshot",
		Short: "run a simulation and write the last frame as SVG",
		Args:  cobra.NoArgs,
		RunE:  snapshot,
	}
	addConfigFlags(snapshotCmd)
	snapshotCmd.Flags().StringVarP(&outFile, "out", "o", "snapshot.svg", "output file")
	snapshotCmd.Flags().BoolVar(&showOverlay, "overlay", true, "draw the index structure")
	snapshotCmd.Flags().Float64Var(&scale, "scale", 1, "pixels per world unit")

	sweepCmd := &cobra.Command{
		Use:   "sweep",
		Short: "grid search physics parameters for the lowest metric",
		Args:  cobra.NoArgs,
		RunE:  sweep,
	}
	addConfigFlags(sweepCmd)
	sweepCmd.Flags().StringArrayVarP(&sweepParams, "param", "p", nil, "name=v1,v2,... (repeatable)")
	sweepCmd.Flags().StringVar(&sweepMetric, "metric", "max_speed", "metric to minimise")

	presetsCmd := &cobra.Command{
		Use:   "presets [name]",
		Short: "list presets, or print one as YAML",
		Args:  cobra.MaximumNArgs(1),
		RunE:  listPresets,
	}
	presetsCmd.Flags().StringVarP(&outFile, "out", "o", "", "write the preset to a config file")

	rootCmd.AddCommand(runCmd, listCmd, plotCmd, exportCmd, exportJSONCmd, exportCSVCmd, benchCmd, compareCmd, liveCmd, snapshotCmd, sweepCmd, presetsCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newLogger(debug bool) *log.Logger {
	l := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		TimeFormat:      time.Kitchen,
		Prefix:          "sphindex",
	})
	if debug {
		l.SetLevel(log.DebugLevel)
	}
	return l
}

func addConfigFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVar(&configFile, "config", "", "config file path (yaml)")
	f.StringVar(&preset, "preset", "", "use preset configuration")
	f.StringVar(&indexName, "index", "quadtree", "spatial index")
	f.StringVar(&integrator, "integrator", "rk4", "integrator")
	f.IntVarP(&particles, "particles", "n", config.DefaultParticles, "number of particles")
	f.IntVar(&frames, "frames", config.DefaultFrames, "frames to run")
	f.IntVar(&subSteps, "substeps", config.DefaultSubSteps, "sub-steps per frame")
	f.IntVar(&recordEvery, "record-every", config.DefaultRecordEvery, "record every n frames (0 disables)")
	f.Int64Var(&seed, "seed", 1, "random seed")
	f.IntVar(&workers, "workers", 0, "force evaluation workers (0 or 1 runs serially)")
	f.Float64Var(&width, "width", config.DefaultWidth, "domain width")
	f.Float64Var(&height, "height", config.DefaultHeight, "domain height")
}

// buildConfig layers preset, config file and explicitly set flags, in
// that order.
func buildConfig(cmd *cobra.Command) (*config.Config, error) {
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
	if flags.Changed("index") {
		cfg.Index = indexName
	}
	if flags.Changed("integrator") {
		cfg.Integrator = integrator
	}
	if flags.Changed("particles") {
		cfg.Particles = particles
	}
	if flags.Changed("frames") {
		cfg.Frames = frames
	}
	if flags.Changed("substeps") {
		cfg.SubSteps = subSteps
	}
	if flags.Changed("record-every") {
		cfg.RecordEvery = recordEvery
	}
	if flags.Changed("seed") {
		cfg.Seed = seed
	}
	if flags.Changed("workers") {
		cfg.Workers = workers
	}
	if flags.Changed("width") {
		cfg.Width = width
	}
	if flags.Changed("height") {
		cfg.Height = height
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// signalContext is canceled on interrupt so long runs stop between frames
// and keep their partial result.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt)
}

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	exp, err := experiment.New(cfg, experiment.NewRegistry(), logger)
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	logger.Info("running", "index", cfg.Index, "integrator", cfg.Integrator, "particles", cfg.Particles, "frames", cfg.Frames)
	result, runErr := exp.Run(ctx)
	if result == nil {
		return runErr
	}
	if runErr != nil {
		logger.Warn("run stopped early", "frames", result.FramesRun, "err", runErr)
	}

	runID, err := st.Save(cfg, result)
	if err != nil {
		return err
	}

	fmt.Printf("completed in %v\n", result.Elapsed.Round(time.Millisecond))
	fmt.Printf("run id: %s\n", runID)
	fmt.Printf("frames: %d (%.0f steps/s)\n", result.FramesRun, result.StepsPerSecond())
	fmt.Printf("snapshots: %d\n", len(result.Snapshots))
	fmt.Println("\nmetrics:")
	printMetrics(result.Metrics)
	return runErr
}

func printMetrics(m map[string]float64) {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	for _, metric := range metrics.All() {
		name := metric.Name()
		if v, ok := m[name]; ok {
			fmt.Fprintf(w, "  %s\t%.6f\n", name, v)
		}
	}
	w.Flush()
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
	fmt.Fprintln(w, "ID\tINDEX\tTIME\tPARTICLES\tFRAMES\tINTEG\tELAPSED")
	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%s\t%.0fms\n",
			run.ID,
			run.Index,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Particles,
			run.Frames,
			run.Integrator,
			run.ElapsedMS,
		)
	}
	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	snaps, err := st.LoadFrames(runID)
	if err != nil {
		return err
	}
	if len(snaps) == 0 {
		return fmt.Errorf("no data to plot")
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("index: %s\n", meta.Index)
	fmt.Printf("samples: %d\n\n", len(snaps))

	energy := make([]float64, len(snaps))
	speed := make([]float64, len(snaps))
	for i, s := range snaps {
		energy[i] = metrics.MeanKinetic(s.Particles)
		for _, p := range s.Particles {
			speed[i] = max(speed[i], p.Velocity.Len())
		}
	}

	for _, series := range []struct {
		data    []float64
		caption string
	}{
		{energy, "mean kinetic energy"},
		{speed, "max speed"},
	} {
		graph := asciigraph.Plot(series.data,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(series.caption),
		)
		fmt.Println(graph)
		fmt.Println()
	}

	if svgFile != "" {
		svg := export.SeriesToSVG(energy, 800, 300, "#00ff88")
		if err := os.WriteFile(svgFile, []byte(svg), 0644); err != nil {
			return err
		}
		logger.Info("wrote chart", "path", svgFile)
	}
	return nil
}

func exportRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(meta)
}

func exportJSON(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	snaps, err := st.LoadFrames(runID)
	if err != nil {
		return err
	}

	result := &sim.Result{
		Snapshots: snaps,
		Metrics:   meta.Metrics,
		FramesRun: meta.Frames,
		SubSteps:  meta.SubSteps,
	}
	return storage.ExportJSON(os.Stdout, meta.Config(), result)
}

func exportCSV(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	snaps, err := st.LoadFrames(args[0])
	if err != nil {
		return err
	}
	if len(snaps) == 0 {
		return fmt.Errorf("no data to export")
	}

	w := csv.NewWriter(os.Stdout)
	defer w.Flush()

	if err := w.Write([]string{"frame", "time", "id", "x", "y", "vx", "vy"}); err != nil {
		return err
	}
	format := func(v float64) string { return strconv.FormatFloat(v, 'f', 6, 64) }
	for _, s := range snaps {
		for id, p := range s.Particles {
			row := []string{
				strconv.Itoa(s.Frame),
				format(s.Time),
				strconv.Itoa(id),
				format(p.Position.X),
				format(p.Position.Y),
				format(p.Velocity.X),
				format(p.Velocity.Y),
			}
			if err := w.Write(row); err != nil {
				return err
			}
		}
	}
	return nil
}

// indexArgs returns args, or every registered index when args is empty.
func indexArgs(reg *experiment.Registry, args []string) []string {
	if len(args) == 0 {
		return reg.ListIndexes()
	}
	return args
}

func benchIndexes(cmd *cobra.Command, args []string) error {
	base, err := buildConfig(cmd)
	if err != nil {
		return err
	}
	reg := experiment.NewRegistry()
	names := indexArgs(reg, args)

	if !cmd.Flags().Changed("frames") && base.Frames == config.DefaultFrames {
		base.Frames = 50
	}
	simCfg := sim.Config{Frames: base.Frames, SubSteps: base.SubSteps}

	fmt.Printf("benchmarking %d frames x %d sub-steps\n\n", base.Frames, base.SubSteps)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "INDEX\tPARTICLES\tTIME\tSTEPS/SEC\tNEIGHBORS/P\tDROPPED")

	for _, name := range names {
		for _, n := range benchSizes {
			cfg := *base
			cfg.Index = name
			cfg.Particles = n

			world, err := experiment.NewWorld(&cfg, reg)
			if err != nil {
				return err
			}
			s := sim.New(logger)
			s.AddMetric(metrics.NewNeighborLoad())

			result, err := s.Run(context.Background(), world, simCfg)
			if err != nil {
				return err
			}
			fmt.Fprintf(w, "%s\t%d\t%v\t%.0f\t%.2f\t%d\n",
				name, n, result.Elapsed.Round(time.Millisecond), result.StepsPerSecond(),
				result.Metrics["neighbor_load"], result.Dropped)
		}
	}
	return w.Flush()
}

// compareIndexes runs one seeded world per index concurrently and reports
// how far each final state is from the first index's.
func compareIndexes(cmd *cobra.Command, args []string) error {
	base, err := buildConfig(cmd)
	if err != nil {
		return err
	}
	reg := experiment.NewRegistry()
	names := indexArgs(reg, args)

	worlds := make([]*physics.World, len(names))
	for i, name := range names {
		cfg := *base
		cfg.Index = name
		if worlds[i], err = experiment.NewWorld(&cfg, reg); err != nil {
			return err
		}
	}

	ens := sim.NewEnsemble(func() *sim.Simulator {
		s := sim.New(logger)
		for _, m := range reg.DefaultMetrics() {
			s.AddMetric(m)
		}
		return s
	}, 0)

	ctx, cancel := signalContext()
	defer cancel()

	simCfg := sim.Config{Frames: base.Frames, SubSteps: base.SubSteps, ValidateState: true}
	results, err := ens.Run(ctx, worlds, simCfg)
	if err != nil {
		return err
	}

	fmt.Printf("comparing %d indexes (particles=%d, frames=%d, seed=%d)\n\n", len(names), base.Particles, base.Frames, base.Seed)
	fmt.Printf("%-18s  %12s  %12s  %10s  %8s  %10s\n", "index", "energy", "max_dev", "neighbors", "dropped", "time_ms")
	fmt.Println(strings.Repeat("-", 78))

	ref := results[0].FinalState
	for i, r := range results {
		fmt.Printf("%-18s  %12.4f  %12.2e  %10.2f  %8d  %10.2f\n",
			names[i],
			r.Metrics["kinetic_energy"],
			maxDeviation(ref, r.FinalState),
			r.Metrics["neighbor_load"],
			r.Dropped,
			float64(r.Elapsed.Microseconds())/1000,
		)
	}
	return nil
}

// maxDeviation is the largest position distance between matching particles.
func maxDeviation(a, b []dynamo.Particle) float64 {
	d := 0.0
	for i := range min(len(a), len(b)) {
		d = max(d, a[i].Position.DistanceTo(b[i].Position))
	}
	return d
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}
	return viz.Run(cfg, experiment.NewRegistry())
}

func snapshot(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}
	exp, err := experiment.New(cfg, experiment.NewRegistry(), logger)
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	simCfg := exp.SimConfig()
	simCfg.RecordEvery = 0
	if _, err := exp.GetSimulator().Run(ctx, exp.World(), simCfg); err != nil {
		return err
	}

	w := exp.World()
	svg := export.FrameToSVG(w.Particles(), w.Width(), w.Height(), scale, export.WorldOverlay(w, showOverlay))
	if err := os.WriteFile(outFile, []byte(svg), 0644); err != nil {
		return err
	}
	logger.Info("wrote snapshot", "path", outFile, "index", cfg.Index, "frames", cfg.Frames)
	return nil
}

// parseSweep turns "name=v1,v2" flags into grid search axes.
func parseSweep(specs []string) ([]string, [][]float64, error) {
	names := make([]string, 0, len(specs))
	ranges := make([][]float64, 0, len(specs))
	for _, spec := range specs {
		name, list, ok := strings.Cut(spec, "=")
		if !ok || name == "" || list == "" {
			return nil, nil, fmt.Errorf("bad --param %q, want name=v1,v2", spec)
		}
		var vals []float64
		for _, f := range strings.Split(list, ",") {
			v, err := strconv.ParseFloat(strings.TrimSpace(f), 64)
			if err != nil {
				return nil, nil, fmt.Errorf("bad --param %q: %w", spec, err)
			}
			vals = append(vals, v)
		}
		names = append(names, name)
		ranges = append(ranges, vals)
	}
	return names, ranges, nil
}

func sweep(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}
	names, ranges, err := parseSweep(sweepParams)
	if err != nil {
		return err
	}
	if len(names) == 0 {
		return fmt.Errorf("no --param given")
	}
	cfg.RecordEvery = 0

	reg := experiment.NewRegistry()
	ctx, cancel := signalContext()
	defer cancel()

	trials, err := optim.NewGridSearch(names, ranges).Search(ctx, func() (*experiment.Experiment, error) {
		return experiment.New(cfg, reg, logger)
	}, sweepMetric)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, strings.ToUpper(strings.Join(names, "\t"))+"\t"+strings.ToUpper(sweepMetric))
	for _, tr := range trials {
		for _, n := range names {
			fmt.Fprintf(w, "%g\t", tr.Params[n])
		}
		fmt.Fprintf(w, "%.6f\n", tr.Value)
	}
	return w.Flush()
}

func listPresets(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "NAME\tINDEX\tPARTICLES\tSIZE\tGRAVITY")
		for _, name := range config.ListPresets() {
			p := config.GetPreset(name)
			fmt.Fprintf(w, "%s\t%s\t%d\t%gx%g\t%g\n", name, p.Index, p.Particles, p.Width, p.Height, p.Physics.GravityY)
		}
		return w.Flush()
	}

	p := config.GetPreset(args[0])
	if p == nil {
		return fmt.Errorf("unknown preset: %s (available: %v)", args[0], config.ListPresets())
	}
	if outFile != "" {
		if err := config.Save(outFile, p); err != nil {
			return err
		}
		logger.Info("wrote preset", "name", args[0], "path", outFile)
		return nil
	}

	enc := yaml.NewEncoder(os.Stdout)
	enc.SetIndent(2)
	defer enc.Close()
	return enc.Encode(p)
}
