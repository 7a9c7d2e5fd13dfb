package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"text/tabwriter"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/broadphase/internal/analysis"
	"github.com/san-kum/broadphase/internal/automation"
	"github.com/san-kum/broadphase/internal/config"
	"github.com/san-kum/broadphase/internal/experiment"
	"github.com/san-kum/broadphase/internal/export"
	"github.com/san-kum/broadphase/internal/metrics"
	"github.com/san-kum/broadphase/internal/optim"
	"github.com/san-kum/broadphase/internal/sim"
	"github.com/san-kum/broadphase/internal/storage"
	"github.com/san-kum/broadphase/internal/stream"
	"github.com/san-kum/broadphase/internal/viz"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	dataDir   string
	logLevel  string
	logFormat string

	configFile  string
	preset      string
	integrator  string
	dt          float64
	steps       int
	seed        int64
	bodies      int
	margin      float64
	multiplier  float64
	maxPairs    int
	metricsAddr string

	runs         int
	plotField    string
	analyzeField string
	xField       string
	yField       string

	sweepParam string
	sweepMin   float64
	sweepMax   float64
	sweepSteps int

	listenAddr  string
	streamEvery int

	theme        string
	plotSVG      string
	snapshotOut  string
	tightOnly    bool
	margins      []float64
	multipliers  []float64
	reinsertCost float64
)

var log = logrus.New()

func main() {
	rootCmd := &cobra.Command{
		Use:           "bpsim",
		Short:         "broad-phase collision lab",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return setupLogger(logLevel, logFormat)
		},
	}
	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".bpsim", "data directory")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "text", "log format (text, json)")

	runCmd := &cobra.Command{
		Use:   "run [scene]",
		Short: "run a scene and store the step log",
		Args:  cobra.ExactArgs(1),
		RunE:  runScene,
	}
	sceneFlags(runCmd)
	runCmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "serve prometheus metrics on this address while running")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list stored runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot step statistics of a run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().StringVar(&plotField, "field", "", "plot a single field ("+strings.Join(analysis.Fields(), ", ")+")")
	plotCmd.Flags().StringVar(&plotSVG, "svg", "", "write the field (default candidates) as SVG to this file")

	snapshotCmd := &cobra.Command{
		Use:   "snapshot [scene]",
		Short: "step a scene and draw its boxes and candidate pairs as SVG",
		Args:  cobra.ExactArgs(1),
		RunE:  snapshotScene,
	}
	sceneFlags(snapshotCmd)
	snapshotCmd.Flags().StringVar(&snapshotOut, "out", "snapshot.svg", "output file")
	snapshotCmd.Flags().BoolVar(&tightOnly, "tight", false, "skip fat boxes")
	snapshotCmd.Flags().StringVar(&theme, "theme", viz.DefaultTheme.Name, "stroke colors ("+strings.Join(viz.ThemeNames(), ", ")+")")

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "print run metadata",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export metadata and step log as JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export the step log as CSV",
		Args:  cobra.ExactArgs(1),
		RunE:  exportCSV,
	}

	benchCmd := &cobra.Command{
		Use:   "bench [scene]",
		Short: "run several seeds concurrently and report throughput",
		Args:  cobra.ExactArgs(1),
		RunE:  benchScene,
	}
	sceneFlags(benchCmd)
	benchCmd.Flags().IntVar(&runs, "runs", 4, "number of seeds")

	analyzeCmd := &cobra.Command{
		Use:   "analyze [run_id]",
		Short: "summary statistics and spectrum of a run",
		Args:  cobra.ExactArgs(1),
		RunE:  analyzeRun,
	}
	analyzeCmd.Flags().StringVar(&analyzeField, "field", "candidates", "field for the spectrum")
	analyzeCmd.Flags().StringVar(&xField, "x", "moved", "scatter x field")
	analyzeCmd.Flags().StringVar(&yField, "y", "candidates", "scatter y field")

	liveCmd := &cobra.Command{
		Use:   "live [scene]",
		Short: "run a scene with live visualization",
		Args:  cobra.ExactArgs(1),
		RunE:  runLive,
	}
	sceneFlags(liveCmd)
	liveCmd.Flags().StringVar(&theme, "theme", viz.DefaultTheme.Name, "color theme ("+strings.Join(viz.ThemeNames(), ", ")+")")

	compareCmd := &cobra.Command{
		Use:   "compare [scene] [integrator1] [integrator2] ...",
		Short: "compare integrators on the same scene",
		Args:  cobra.MinimumNArgs(2),
		RunE:  compareIntegrators,
	}
	sceneFlags(compareCmd)

	presetsCmd := &cobra.Command{
		Use:   "presets [scene]",
		Short: "list presets for a scene",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			presets := config.ListPresets(args[0])
			if len(presets) == 0 {
				fmt.Printf("no presets for scene: %s\n", args[0])
				return nil
			}
			fmt.Printf("presets for %s:\n", args[0])
			for _, p := range presets {
				cfg := config.GetPreset(args[0], p)
				fmt.Printf("  %-10s bodies=%d world=%.0f speed=%.1f\n", p, cfg.Bodies, cfg.WorldSize, cfg.MaxSpeed)
			}
			return nil
		},
	}

	scenesCmd := &cobra.Command{
		Use:   "scenes",
		Short: "list scenes and integrators",
		Run: func(cmd *cobra.Command, args []string) {
			reg := experiment.NewRegistry()
			fmt.Printf("scenes:      %s\n", strings.Join(reg.ListScenes(), ", "))
			fmt.Printf("integrators: %s\n", strings.Join(reg.ListIntegrators(), ", "))
		},
	}

	scriptCmd := &cobra.Command{
		Use:   "script [file...]",
		Short: "replay broad-phase scripts and check their expectations",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runScripts,
	}

	sweepCmd := &cobra.Command{
		Use:   "sweep [scene]",
		Short: "sweep a tree option and compare metrics",
		Args:  cobra.ExactArgs(1),
		RunE:  runSweep,
	}
	sceneFlags(sweepCmd)
	sweepCmd.Flags().StringVar(&sweepParam, "param", "margin", "tree option (margin, displacement_multiplier)")
	sweepCmd.Flags().Float64Var(&sweepMin, "min", 0, "first value")
	sweepCmd.Flags().Float64Var(&sweepMax, "max", 1, "last value")
	sweepCmd.Flags().IntVar(&sweepSteps, "n", 5, "number of values")

	tuneCmd := &cobra.Command{
		Use:   "tune [scene]",
		Short: "grid search margin and displacement multiplier for the lowest step cost",
		Args:  cobra.ExactArgs(1),
		RunE:  tuneScene,
	}
	sceneFlags(tuneCmd)
	tuneCmd.Flags().Float64SliceVar(&margins, "margins", []float64{0, 0.05, 0.1, 0.2, 0.4}, "margins to try")
	tuneCmd.Flags().Float64SliceVar(&multipliers, "multipliers", []float64{0, 1, 1.7, 3}, "displacement multipliers to try")
	tuneCmd.Flags().Float64Var(&reinsertCost, "reinsert-cost", 20, "cost of one reinsert relative to one candidate pair, per proxy")

	serveCmd := &cobra.Command{
		Use:   "serve [scene]",
		Short: "run a scene forever, streaming steps over websocket and exposing metrics",
		Args:  cobra.ExactArgs(1),
		RunE:  serveScene,
	}
	sceneFlags(serveCmd)
	serveCmd.Flags().StringVar(&listenAddr, "addr", ":8080", "listen address")
	serveCmd.Flags().IntVar(&streamEvery, "every", 10, "forward every n-th step")

	rootCmd.AddCommand(runCmd, listCmd, plotCmd, exportCmd, exportJSONCmd, exportCSVCmd, benchCmd, analyzeCmd,
		liveCmd, compareCmd, presetsCmd, scenesCmd, scriptCmd, sweepCmd, tuneCmd, snapshotCmd, serveCmd)

	if err := rootCmd.Execute(); err != nil {
		log.WithError(err).Error("command failed")
		os.Exit(1)
	}
}

func setupLogger(level, format string) error {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return err
	}
	log.SetLevel(lvl)
	log.SetOutput(os.Stderr)
	switch format {
	case "text":
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	case "json":
		log.SetFormatter(&logrus.JSONFormatter{})
	default:
		return fmt.Errorf("unknown log format %q", format)
	}
	return nil
}

func sceneFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	cmd.Flags().StringVar(&preset, "preset", "", "use preset configuration")
	cmd.Flags().StringVar(&integrator, "integrator", config.DefaultIntegrator, "integrator")
	cmd.Flags().Float64Var(&dt, "dt", config.DefaultDt, "timestep")
	cmd.Flags().IntVar(&steps, "steps", config.DefaultSteps, "number of steps")
	cmd.Flags().Int64Var(&seed, "seed", time.Now().UnixNano(), "random seed")
	cmd.Flags().IntVar(&bodies, "bodies", 0, "number of bodies")
	cmd.Flags().Float64Var(&margin, "margin", 0, "fat box margin")
	cmd.Flags().Float64Var(&multiplier, "multiplier", 0, "displacement multiplier")
	cmd.Flags().IntVar(&maxPairs, "max-pairs", 0, "pair buffer limit (0 = unbounded)")
}

// buildConfig layers defaults, preset, config file and explicitly set flags,
// in that order.
func buildConfig(cmd *cobra.Command, scene string) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if preset != "" {
		cfg = config.GetPreset(scene, preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets(scene))
		}
	}
	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}
	cfg.Scene = scene

	flags := cmd.Flags()
	if flags.Changed("integrator") {
		cfg.Integrator = integrator
	}
	if flags.Changed("dt") {
		cfg.Dt = dt
	}
	if flags.Changed("steps") {
		cfg.Steps = steps
	}
	if flags.Changed("seed") || cfg.Seed == 0 {
		cfg.Seed = seed
	}
	if flags.Changed("bodies") {
		cfg.Bodies = bodies
	}
	if flags.Changed("margin") {
		cfg.Tree.Margin = margin
	}
	if flags.Changed("multiplier") {
		cfg.Tree.DisplacementMultiplier = multiplier
	}
	if flags.Changed("max-pairs") {
		cfg.MaxPairs = maxPairs
	}
	return cfg, cfg.Validate()
}

func setupExperiment(cmd *cobra.Command, scene string) (*experiment.Experiment, error) {
	cfg, err := buildConfig(cmd, scene)
	if err != nil {
		return nil, err
	}
	exp := experiment.New(cfg)
	if err := exp.Setup(experiment.NewRegistry(), log); err != nil {
		return nil, err
	}
	return exp, nil
}

// serveMetrics starts a metrics endpoint and returns a func that stops it.
func serveMetrics(addr string, c *metrics.Collector) func() {
	mux := http.NewServeMux()
	mux.Handle("/metrics", c.Handler())
	srv := &http.Server{Addr: addr, Handler: mux}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Error("metrics server")
		}
	}()
	log.WithField("addr", addr).Info("serving metrics")
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		srv.Shutdown(ctx)
	}
}

func runScene(cmd *cobra.Command, args []string) error {
	exp, err := setupExperiment(cmd, args[0])
	if err != nil {
		return err
	}
	cfg := exp.Config()

	if metricsAddr != "" {
		collector := metrics.NewCollector(cfg.Scene)
		exp.Simulator().AddObserver(collector)
		stop := serveMetrics(metricsAddr, collector)
		defer stop()
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	fmt.Printf("running %s with %d bodies...\n", cfg.Scene, cfg.Bodies)
	result, err := exp.Run(ctx)
	if err != nil && result == nil {
		return err
	}
	if err != nil {
		log.WithError(err).Warn("run stopped early, saving partial result")
	}

	runID, serr := st.Save(cfg, result)
	if serr != nil {
		return serr
	}

	fmt.Printf("completed in %v\n", result.Elapsed)
	fmt.Printf("run id: %s\n", runID)
	fmt.Printf("steps: %d\n", result.StepsTaken)
	fmt.Println("\nmetrics:")
	for name, val := range result.Metrics {
		fmt.Printf("  %s: %.6f\n", name, val)
	}
	return err
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
	fmt.Fprintln(w, "ID\tSCENE\tTIME\tBODIES\tSTEPS\tDT\tINTEG\tMARGIN")
	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%.4fs\t%s\t%.2f\n",
			run.ID,
			run.Scene,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Bodies,
			run.Steps,
			run.Dt,
			run.Integrator,
			run.Tree.Margin,
		)
	}
	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}
	stepLog, err := st.LoadSteps(args[0])
	if err != nil {
		return err
	}
	if len(stepLog) == 0 {
		return fmt.Errorf("no data to plot")
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("scene: %s\n", meta.Scene)
	fmt.Printf("steps: %d\n\n", len(stepLog))

	if plotSVG != "" {
		f := plotField
		if f == "" {
			f = "candidates"
		}
		data, err := analysis.Series(stepLog, f)
		if err != nil {
			return err
		}
		if err := os.WriteFile(plotSVG, []byte(export.SeriesToSVG(data, 800, 300, "#00ff00")), 0644); err != nil {
			return err
		}
		fmt.Printf("wrote %s to %s\n", f, plotSVG)
		return nil
	}

	fields := []string{"candidates", "contacts", "moved", "reinserted", "height"}
	if plotField != "" {
		fields = []string{plotField}
	}
	for _, f := range fields {
		data, err := analysis.Series(stepLog, f)
		if err != nil {
			return err
		}
		fmt.Println(asciigraph.Plot(data,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(f+" per step"),
		))
		fmt.Println()
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

// storedRun rebuilds the config and result of a saved run.
func storedRun(st *storage.Store, runID string) (*config.Config, *sim.Result, error) {
	meta, err := st.Load(runID)
	if err != nil {
		return nil, nil, err
	}
	stepLog, err := st.LoadSteps(runID)
	if err != nil {
		return nil, nil, err
	}

	cfg := config.DefaultConfig()
	cfg.Scene = meta.Scene
	cfg.Integrator = meta.Integrator
	cfg.Seed = meta.Seed
	cfg.Dt = meta.Dt
	cfg.Steps = meta.Steps
	cfg.Bodies = meta.Bodies
	cfg.Restitution = meta.Restitution
	cfg.Tree = meta.Tree
	cfg.MaxPairs = meta.MaxPairs

	result := &sim.Result{
		Steps:      stepLog,
		Metrics:    meta.Metrics,
		StepsTaken: len(stepLog),
		Elapsed:    meta.Elapsed,
	}
	return cfg, result, nil
}

func exportJSON(cmd *cobra.Command, args []string) error {
	cfg, result, err := storedRun(storage.New(dataDir), args[0])
	if err != nil {
		return err
	}
	return storage.ExportJSON(os.Stdout, cfg, result)
}

func exportCSV(cmd *cobra.Command, args []string) error {
	stepLog, err := storage.New(dataDir).LoadSteps(args[0])
	if err != nil {
		return err
	}
	if len(stepLog) == 0 {
		return fmt.Errorf("no data to export")
	}
	return storage.WriteStepsCSV(os.Stdout, stepLog)
}

func benchScene(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args[0])
	if err != nil {
		return err
	}
	reg := experiment.NewRegistry()
	newScene, err := reg.SceneFactory(cfg.Scene, cfg.Params)
	if err != nil {
		return err
	}
	newIntegrator, err := reg.IntegratorFactory(cfg.Integrator)
	if err != nil {
		return err
	}

	fmt.Printf("benchmarking %s: %d bodies, %d steps, %d seeds\n\n", cfg.Scene, cfg.Bodies, cfg.Steps, runs)

	start := time.Now()
	results, err := sim.NewEnsemble(newScene, newIntegrator, runs, cfg.Seed).Run(context.Background(), cfg.SimConfig())
	if err != nil {
		return err
	}
	wall := time.Since(start)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SEED\tSTEPS\tTIME\tSTEPS/SEC\tCAND/STEP\tPRECISION\tREINSERT/STEP")
	total := 0
	for i, r := range results {
		candidates, contacts, reinserts := 0, 0, 0
		for _, st := range r.Steps {
			candidates += st.Candidates
			contacts += st.Contacts
			reinserts += st.Reinserted
		}
		precision := 1.0
		if candidates > 0 {
			precision = float64(contacts) / float64(candidates)
		}
		n := max(r.StepsTaken, 1)
		total += r.StepsTaken
		fmt.Fprintf(w, "%d\t%d\t%v\t%.0f\t%.1f\t%.3f\t%.2f\n",
			cfg.Seed+int64(i), r.StepsTaken, r.Elapsed.Round(time.Millisecond),
			float64(r.StepsTaken)/r.Elapsed.Seconds(),
			float64(candidates)/float64(n), precision, float64(reinserts)/float64(n))
	}
	if err := w.Flush(); err != nil {
		return err
	}
	fmt.Printf("\nwall time %v, %.0f steps/sec overall\n", wall.Round(time.Millisecond), float64(total)/wall.Seconds())
	return nil
}

func analyzeRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}
	stepLog, err := st.LoadSteps(args[0])
	if err != nil {
		return err
	}
	if len(stepLog) == 0 {
		return fmt.Errorf("no data")
	}

	fmt.Printf("analysis: %s\n", meta.ID)
	fmt.Printf("scene: %s\n\n", meta.Scene)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "FIELD\tMEAN\tSTD\tMIN\tP50\tP95\tMAX")
	for _, f := range analysis.Fields() {
		data, err := analysis.Series(stepLog, f)
		if err != nil {
			return err
		}
		s := analysis.Summarize(data)
		fmt.Fprintf(w, "%s\t%.2f\t%.2f\t%.2f\t%.2f\t%.2f\t%.2f\n", f, s.Mean, s.Std, s.Min, s.P50, s.P95, s.Max)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	fmt.Println()

	data, err := analysis.Series(stepLog, analyzeField)
	if err != nil {
		return err
	}
	ps := analysis.PowerSpectrum(data)
	if len(ps) > 8 {
		fmt.Println(asciigraph.Plot(ps[1:len(ps)/2],
			asciigraph.Height(12),
			asciigraph.Width(80),
			asciigraph.Caption("power spectrum ("+analyzeField+")"),
		))
		fmt.Println()
	}
	freq, mag := analysis.DominantFrequency(data, meta.Dt)
	fmt.Printf("dominant frequency of %s: %.3f hz (magnitude %.2f)\n", analyzeField, freq, mag)
	if freq > 0 {
		fmt.Printf("period: %.3f s\n", 1.0/freq)
	}

	xs, err := analysis.Series(stepLog, xField)
	if err != nil {
		return err
	}
	ys, err := analysis.Series(stepLog, yField)
	if err != nil {
		return err
	}
	points, err := analysis.Scatter(xs, ys)
	if err != nil {
		return err
	}
	fmt.Printf("\n%s vs %s\n", yField, xField)
	fmt.Println(analysis.ScatterToASCII(points, 70, 20))
	return nil
}

func runLive(cmd *cobra.Command, args []string) error {
	exp, err := setupExperiment(cmd, args[0])
	if err != nil {
		return err
	}
	cfg := exp.Config()
	reg := experiment.NewRegistry()

	// the program owns the terminal
	log.SetOutput(io.Discard)
	viz.SetTheme(theme)

	newWorld := func() (*sim.World, error) {
		scene, err := reg.GetScene(cfg.Scene, cfg.Params)
		if err != nil {
			return nil, err
		}
		integ, err := reg.GetIntegrator(cfg.Integrator)
		if err != nil {
			return nil, err
		}
		return sim.NewWorld(scene, integ, cfg.SimConfig())
	}
	m, err := viz.NewModel(cfg.Scene, newWorld)
	if err != nil {
		return err
	}

	p := tea.NewProgram(m, tea.WithAltScreen())
	_, err = p.Run()
	return err
}

func compareIntegrators(cmd *cobra.Command, args []string) error {
	scene := args[0]
	names := args[1:]

	fmt.Printf("comparing integrators for %s (dt=%.4f, steps=%d)\n\n", scene, dt, steps)
	fmt.Printf("%-12s  %-12s  %-12s  %-12s  %-12s\n", "integrator", "candidates", "precision", "reinserts", "time_ms")
	fmt.Println(strings.Repeat("-", 66))

	for _, name := range names {
		cmd.Flags().Set("integrator", name)
		exp, err := setupExperiment(cmd, scene)
		if err != nil {
			fmt.Printf("%-12s  error: %v\n", name, err)
			continue
		}
		result, err := exp.Run(context.Background())
		if err != nil {
			fmt.Printf("%-12s  error: %v\n", name, err)
			continue
		}
		fmt.Printf("%-12s  %12.1f  %12.3f  %12.3f  %12.2f\n", name,
			result.Metrics["candidate_rate"], result.Metrics["precision"], result.Metrics["reinsert_ratio"],
			float64(result.Elapsed.Microseconds())/1000)
	}
	return nil
}

func runScripts(cmd *cobra.Command, args []string) error {
	failed := 0
	for _, path := range args {
		script, err := automation.LoadScript(path)
		if err != nil {
			return err
		}
		report, err := automation.RunScript(script, log)
		if err != nil {
			failed++
			fmt.Printf("FAIL %s: %v\n", script.Name, err)
			continue
		}
		fmt.Printf("ok   %s (%d ops, %d proxies, height %d)\n", script.Name, len(report.Results), report.Stats.Proxies, report.Stats.Height)
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d scripts failed", failed, len(args))
	}
	return nil
}

func runSweep(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args[0])
	if err != nil {
		return err
	}
	sweep := &automation.ParameterSweep{
		Base:      cfg,
		ParamName: sweepParam,
		ParamMin:  sweepMin,
		ParamMax:  sweepMax,
		NumSteps:  sweepSteps,
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	results, err := automation.RunSweep(ctx, sweep, experiment.NewRegistry(), log)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "%s\tCAND/STEP\tPRECISION\tREINSERT\tMAX_HEIGHT\tTIME\n", strings.ToUpper(sweepParam))
	for _, r := range results {
		fmt.Fprintf(w, "%.3f\t%.1f\t%.3f\t%.3f\t%.0f\t%v\n", r.ParamValue,
			r.Metrics["candidate_rate"], r.Metrics["precision"], r.Metrics["reinsert_ratio"], r.Metrics["max_height"],
			r.Elapsed.Round(time.Millisecond))
	}
	return w.Flush()
}

func serveScene(cmd *cobra.Command, args []string) error {
	exp, err := setupExperiment(cmd, args[0])
	if err != nil {
		return err
	}
	cfg := exp.Config()
	cfg.Steps = 0

	hub := stream.NewHub(cfg.Scene, streamEvery, log)
	defer hub.Close()
	collector := metrics.NewCollector(cfg.Scene)
	exp.Simulator().AddObserver(hub)
	exp.Simulator().AddObserver(collector)

	mux := http.NewServeMux()
	mux.Handle("/ws", hub)
	mux.Handle("/metrics", collector.Handler())
	srv := &http.Server{Addr: listenAddr, Handler: mux}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	errc := make(chan error, 1)
	go func() {
		log.WithField("addr", listenAddr).Info("serving /ws and /metrics")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
			cancel()
		}
	}()

	// pace the world so clients see it evolve in real time
	ticker := time.NewTicker(time.Duration(cfg.Dt * float64(time.Second)))
	defer ticker.Stop()
	runErr := exp.RunWithCallback(ctx, func(w *sim.World, st sim.StepStats) bool {
		select {
		case <-ctx.Done():
			return false
		case <-ticker.C:
			return true
		}
	})

	shutdownCtx, done := context.WithTimeout(context.Background(), 2*time.Second)
	defer done()
	srv.Shutdown(shutdownCtx)

	select {
	case err := <-errc:
		return err
	default:
	}
	if errors.Is(runErr, context.Canceled) {
		return nil
	}
	return runErr
}

func tuneScene(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args[0])
	if err != nil {
		return err
	}
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	g := optim.NewGridSearch(
		[]string{"margin", "displacement_multiplier"},
		[][]float64{margins, multipliers},
	)
	res, err := g.Search(ctx, cfg, experiment.NewRegistry(), optim.StepCost(reinsertCost), log)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "MARGIN\tMULTIPLIER\tCAND/STEP\tREINSERT\tCOST")
	for _, ev := range res.Evaluations {
		fmt.Fprintf(w, "%.3f\t%.2f\t%.1f\t%.4f\t%.2f\n", ev.Params["margin"], ev.Params["displacement_multiplier"],
			ev.Metrics["candidate_rate"], ev.Metrics["reinsert_ratio"], ev.Value)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	fmt.Printf("\nbest: margin=%.3f multiplier=%.2f cost=%.2f\n", res.Best["margin"], res.Best["displacement_multiplier"], res.BestValue)
	return nil
}

func snapshotScene(cmd *cobra.Command, args []string) error {
	exp, err := setupExperiment(cmd, args[0])
	if err != nil {
		return err
	}

	var last *sim.World
	err = exp.RunWithCallback(context.Background(), func(w *sim.World, st sim.StepStats) bool {
		last = w
		return true
	})
	if err != nil {
		return err
	}

	f, err := os.Create(snapshotOut)
	if err != nil {
		return err
	}
	defer f.Close()

	opts := export.DefaultWorldOptions()
	opts.Fat = !tightOnly
	opts.Theme = viz.GetTheme(theme)
	if err := export.WriteWorldSVG(f, last, opts); err != nil {
		return err
	}
	fmt.Printf("wrote step %d of %s to %s\n", last.StepCount(), exp.Config().Scene, snapshotOut)
	return nil
}
