package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/rigidsim/internal/analysis"
	"github.com/san-kum/rigidsim/internal/automation"
	"github.com/san-kum/rigidsim/internal/config"
	"github.com/san-kum/rigidsim/internal/export"
	"github.com/san-kum/rigidsim/internal/generalized"
	"github.com/san-kum/rigidsim/internal/logging"
	"github.com/san-kum/rigidsim/internal/metrics"
	"github.com/san-kum/rigidsim/internal/optim"
	"github.com/san-kum/rigidsim/internal/positional"
	"github.com/san-kum/rigidsim/internal/rollout"
	"github.com/san-kum/rigidsim/internal/scene"
	"github.com/san-kum/rigidsim/internal/store"
	"github.com/san-kum/rigidsim/internal/viz"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	dataDir string
	verbose bool

	steps      int
	sample     int
	dtFlag     float64
	presetName string
	sceneFile  string
	configFile string

	policyKind string
	kp         float64
	kd         float64
	targets    []float64
	amp        float64
	freq       float64

	liveSteps int

	coord     int
	svgWidth  int
	svgHeight int
	kpGrid    []float64
	kdGrid    []float64

	log *zap.SugaredLogger
)

func main() {
	envCfg, err := config.FromEnv()
	if err != nil {
		envCfg = config.Env{DataDir: ".rigidsim"}
	}

	rootCmd := &cobra.Command{
		Use:   "rigidsim",
		Short: "position based rigid body simulation lab",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			log, err = logging.New(verbose)
			if err != nil {
				return fmt.Errorf("init logger: %w", err)
			}
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if log != nil {
				_ = log.Sync()
			}
		},
	}
	rootCmd.PersistentFlags().StringVar(&dataDir, "data", envCfg.DataDir, "data directory")
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", envCfg.Verbose, "debug logging")

	runCmd := &cobra.Command{
		Use:   "run [scene]",
		Short: "run a scene and store the trajectory",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runScene,
	}
	addRunFlags(runCmd)
	runCmd.Flags().IntVar(&sample, "sample", config.DefaultSample, "record every n-th step")
	runCmd.Flags().StringVar(&configFile, "config", "", "run config file (yaml)")

	scenesCmd := &cobra.Command{
		Use:   "scenes",
		Short: "list built-in scenes",
		RunE:  listScenes,
	}

	presetsCmd := &cobra.Command{
		Use:   "presets [scene]",
		Short: "list available presets for a scene",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			presets := scene.ListPresets(args[0])
			if len(presets) == 0 {
				fmt.Printf("no presets for scene: %s\n", args[0])
				return nil
			}
			fmt.Printf("presets for %s:\n", args[0])
			for _, p := range presets {
				fmt.Printf("  %s\n", p)
			}
			return nil
		},
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list stored runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot stored coordinates",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "export run metadata",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export run samples to CSV",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRunCSV,
	}

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export run samples to JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRunJSON,
	}

	deleteCmd := &cobra.Command{
		Use:   "delete [run_id]",
		Short: "delete a stored run",
		Args:  cobra.ExactArgs(1),
		RunE:  deleteRun,
	}

	compareCmd := &cobra.Command{
		Use:   "compare [scene]",
		Short: "compare the positional solver against reduced coordinates",
		Args:  cobra.ExactArgs(1),
		RunE:  comparePipelines,
	}
	compareCmd.Flags().IntVar(&steps, "steps", config.DefaultSteps, "steps to simulate")
	compareCmd.Flags().Float64Var(&dtFlag, "dt", 0, "timestep override")

	benchCmd := &cobra.Command{
		Use:   "bench [scene]",
		Short: "benchmark solver throughput",
		Args:  cobra.ExactArgs(1),
		RunE:  benchScene,
	}

	liveCmd := &cobra.Command{
		Use:   "live [scene]",
		Short: "run a scene with live visualization",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runLive,
	}
	addRunFlags(liveCmd)
	liveCmd.Flags().IntVar(&liveSteps, "max-steps", 0, "stop after this many steps (0 runs forever)")

	analyzeCmd := &cobra.Command{
		Use:   "analyze [run_id]",
		Short: "frequency analysis of a stored run",
		Args:  cobra.ExactArgs(1),
		RunE:  analyzeRun,
	}
	analyzeCmd.Flags().IntVar(&coord, "coord", 0, "coordinate to analyze")

	exportSVGCmd := &cobra.Command{
		Use:   "export-svg [run_id]",
		Short: "export a phase portrait as SVG",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRunSVG,
	}
	exportSVGCmd.Flags().IntVar(&coord, "coord", 0, "coordinate to plot")
	exportSVGCmd.Flags().IntVar(&svgWidth, "width", 800, "image width")
	exportSVGCmd.Flags().IntVar(&svgHeight, "height", 600, "image height")

	tuneCmd := &cobra.Command{
		Use:   "tune [scene]",
		Short: "grid search pd gains against tracking error",
		Args:  cobra.ExactArgs(1),
		RunE:  tuneScene,
	}
	tuneCmd.Flags().IntVar(&steps, "steps", config.DefaultSteps, "steps per evaluation")
	tuneCmd.Flags().Float64Var(&dtFlag, "dt", 0, "timestep override")
	tuneCmd.Flags().Float64SliceVar(&targets, "target", nil, "pd joint targets")
	tuneCmd.Flags().Float64SliceVar(&kpGrid, "kp-grid", []float64{1, 5, 10, 20, 50}, "kp candidates")
	tuneCmd.Flags().Float64SliceVar(&kdGrid, "kd-grid", []float64{0.1, 0.5, 1, 2, 5}, "kd candidates")

	scriptCmd := &cobra.Command{
		Use:   "script [file]",
		Short: "execute a scenario file",
		Args:  cobra.ExactArgs(1),
		RunE:  runScript,
	}

	rootCmd.AddCommand(runCmd, scenesCmd, presetsCmd, listCmd, plotCmd, exportCmd, exportCSVCmd, exportJSONCmd, exportSVGCmd, deleteCmd, compareCmd, benchCmd, liveCmd, analyzeCmd, tuneCmd, scriptCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func addRunFlags(cmd *cobra.Command) {
	cmd.Flags().IntVar(&steps, "steps", config.DefaultSteps, "steps to simulate")
	cmd.Flags().Float64Var(&dtFlag, "dt", 0, "timestep override")
	cmd.Flags().StringVar(&presetName, "preset", "", "use a named preset")
	cmd.Flags().StringVar(&sceneFile, "scene-file", "", "load scene from a yaml file")
	cmd.Flags().StringVar(&policyKind, "policy", "none", "actuation policy (none, pd, sine)")
	cmd.Flags().Float64Var(&kp, "kp", config.DefaultKp, "pd proportional gain")
	cmd.Flags().Float64Var(&kd, "kd", config.DefaultKd, "pd derivative gain")
	cmd.Flags().Float64SliceVar(&targets, "target", nil, "pd joint targets")
	cmd.Flags().Float64Var(&amp, "amp", config.DefaultAmp, "sine amplitude")
	cmd.Flags().Float64Var(&freq, "freq", config.DefaultFreq, "sine frequency (hz)")
}

// resolveScene picks the scene for a command: preset and scene-file beat the
// built-in name, and a run config file fills any flag the caller left unset.
func resolveScene(cmd *cobra.Command, name string) (*scene.Scene, error) {
	if configFile != "" {
		rc, err := config.LoadRun(configFile)
		if err != nil {
			return nil, fmt.Errorf("load config: %w", err)
		}
		if name == "" {
			name = rc.Scene
		}
		if !cmd.Flags().Changed("steps") {
			steps = rc.Steps
		}
		if !cmd.Flags().Changed("sample") {
			sample = rc.Sample
		}
		if !cmd.Flags().Changed("dt") && rc.Timestep > 0 {
			dtFlag = rc.Timestep
		}
		if !cmd.Flags().Changed("preset") && rc.Preset != "" {
			presetName = rc.Preset
		}
		if !cmd.Flags().Changed("scene-file") && rc.SceneFile != "" {
			sceneFile = rc.SceneFile
		}
		if !cmd.Flags().Changed("policy") {
			policyKind = rc.Policy.Kind
		}
		if !cmd.Flags().Changed("kp") && rc.Policy.Kp > 0 {
			kp = rc.Policy.Kp
		}
		if !cmd.Flags().Changed("kd") && rc.Policy.Kd > 0 {
			kd = rc.Policy.Kd
		}
		if !cmd.Flags().Changed("target") && len(rc.Policy.Targets) > 0 {
			targets = rc.Policy.Targets
		}
		if !cmd.Flags().Changed("amp") && rc.Policy.Amp > 0 {
			amp = rc.Policy.Amp
		}
		if !cmd.Flags().Changed("freq") && rc.Policy.Freq > 0 {
			freq = rc.Policy.Freq
		}
	}
	if name == "" {
		name = "pendulum"
	}

	var sc *scene.Scene
	var err error
	switch {
	case presetName != "":
		p := scene.GetPreset(name, presetName)
		if p == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", presetName, scene.ListPresets(name))
		}
		sc, err = p.Resolve()
		if err == nil && p.Steps > 0 && !cmd.Flags().Changed("steps") {
			steps = p.Steps
		}
	case sceneFile != "":
		sc, err = scene.Load(sceneFile)
	default:
		sc, err = scene.Get(name)
	}
	if err != nil {
		return nil, err
	}

	if dtFlag > 0 {
		sc.Sys.Opts.Timestep = dtFlag
	}
	return sc, nil
}

func buildPolicy(sc *scene.Scene) (rollout.Policy, error) {
	switch policyKind {
	case "", "none":
		return nil, nil
	case "pd":
		return rollout.NewPD(sc.Sys, kp, kd, targets), nil
	case "sine":
		return rollout.NewSine(sc.Sys, amp, freq), nil
	default:
		return nil, fmt.Errorf("unknown policy: %s (available: none, pd, sine)", policyKind)
	}
}

func defaultMetrics(sc *scene.Scene) []rollout.Metric {
	return []rollout.Metric{
		metrics.NewEnergy(sc.Sys),
		metrics.NewEnergyDrift(sc.Sys),
		metrics.NewStability(100),
		metrics.NewMaxPenetration(sc.Sys),
		metrics.NewJointDrift(sc.Sys),
		metrics.NewControlEffort(),
	}
}

func openStore() (*store.Store, error) {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, err
	}
	st, err := store.Open(filepath.Join(dataDir, "runs.db"))
	if err != nil {
		return nil, err
	}
	st.Log = log
	return st, nil
}

func runScene(cmd *cobra.Command, args []string) error {
	name := ""
	if len(args) > 0 {
		name = args[0]
	}

	sc, err := resolveScene(cmd, name)
	if err != nil {
		return err
	}
	policy, err := buildPolicy(sc)
	if err != nil {
		return err
	}

	st, err := positional.Init(sc.Sys, sc.Q, sc.QD)
	if err != nil {
		return err
	}

	runner := rollout.New(sc.Sys, policy)
	runner.Log = log
	for _, m := range defaultMetrics(sc) {
		runner.AddMetric(m)
	}

	db, err := openStore()
	if err != nil {
		return err
	}
	defer db.Close()

	fmt.Printf("running %s...\n", sc.Name)
	start := time.Now()

	res, err := runner.Run(context.Background(), st, rollout.Config{Steps: steps, SampleEvery: sample})
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	id, err := db.SaveRun(context.Background(), sc.Name, sc.Sys.Opts.Timestep, res)
	if err != nil {
		return err
	}

	fmt.Printf("completed in %v\n", elapsed)
	fmt.Printf("run id: %d\n", id)
	fmt.Printf("steps: %d\n", res.StepsTaken)
	fmt.Println("\nmetrics:")
	for name, val := range res.Metrics {
		fmt.Printf("  %s: %.6f\n", name, val)
	}

	return nil
}

func listScenes(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tLINKS\tACTUATORS\tPLANES")

	for _, name := range scene.Names() {
		sc, err := scene.Get(name)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "%s\t%d\t%d\t%d\n", name, sc.Sys.NumLinks(), len(sc.Sys.Actuators), len(sc.Sys.Planes))
	}

	return w.Flush()
}

func listRuns(cmd *cobra.Command, args []string) error {
	db, err := openStore()
	if err != nil {
		return err
	}
	defer db.Close()

	runs, err := db.ListRuns(context.Background())
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSCENE\tTIME\tSTEPS\tDT")
	for _, run := range runs {
		fmt.Fprintf(w, "%d\t%s\t%s\t%d\t%.4fs\n",
			run.ID,
			run.Scene,
			run.CreatedAt.Local().Format("2006-01-02 15:04:05"),
			run.Steps,
			run.Timestep,
		)
	}

	return w.Flush()
}

func parseRunID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid run id: %s", arg)
	}
	return id, nil
}

func plotRun(cmd *cobra.Command, args []string) error {
	id, err := parseRunID(args[0])
	if err != nil {
		return err
	}

	db, err := openStore()
	if err != nil {
		return err
	}
	defer db.Close()

	ctx := context.Background()
	run, err := db.GetRun(ctx, id)
	if err != nil {
		return err
	}
	samples, err := db.Samples(ctx, id)
	if err != nil {
		return err
	}
	if len(samples) == 0 {
		return fmt.Errorf("no data to plot")
	}

	fmt.Printf("run: %d\n", run.ID)
	fmt.Printf("scene: %s\n", run.Scene)
	fmt.Printf("samples: %d\n\n", len(samples))

	coords := len(samples[0].Q)
	if coords > 6 {
		coords = 6
	}
	for j := 0; j < coords; j++ {
		data := make([]float64, len(samples))
		for i := range samples {
			if j < len(samples[i].Q) {
				data[i] = samples[i].Q[j]
			}
		}
		graph := asciigraph.Plot(data,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(fmt.Sprintf("q%d vs time", j)),
		)
		fmt.Println(graph)
		fmt.Println()
	}

	return nil
}

func analyzeRun(cmd *cobra.Command, args []string) error {
	id, err := parseRunID(args[0])
	if err != nil {
		return err
	}

	db, err := openStore()
	if err != nil {
		return err
	}
	defer db.Close()

	ctx := context.Background()
	run, err := db.GetRun(ctx, id)
	if err != nil {
		return err
	}
	samples, err := db.Samples(ctx, id)
	if err != nil {
		return err
	}
	if len(samples) < 2 {
		return fmt.Errorf("need at least 2 samples to analyze")
	}
	if coord < 0 || coord >= len(samples[0].Q) {
		return fmt.Errorf("coordinate %d out of range (run has %d)", coord, len(samples[0].Q))
	}

	data := make([]float64, len(samples))
	for i := range samples {
		data[i] = samples[i].Q[coord]
	}
	d := samples[1].T - samples[0].T

	fmt.Printf("run: %d (%s)\n", run.ID, run.Scene)
	fmt.Printf("samples: %d, spacing: %.4fs\n\n", len(samples), d)

	ps := analysis.Spectrum(data)
	graph := asciigraph.Plot(ps[:len(ps)/4],
		asciigraph.Height(15),
		asciigraph.Width(80),
		asciigraph.Caption(fmt.Sprintf("power spectrum (q%d)", coord)),
	)
	fmt.Println(graph)
	fmt.Println()

	if f := analysis.Dominant(data, d); f > 0 {
		fmt.Printf("dominant frequency: %.3f hz\n", f)
		fmt.Printf("period: %.3f s\n", 1/f)
	} else {
		fmt.Println("no dominant frequency found")
	}

	return nil
}

func exportRun(cmd *cobra.Command, args []string) error {
	id, err := parseRunID(args[0])
	if err != nil {
		return err
	}

	db, err := openStore()
	if err != nil {
		return err
	}
	defer db.Close()

	run, err := db.GetRun(context.Background(), id)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(run)
}

// loadResult rebuilds a rollout result from stored samples for the exporters.
func loadResult(ctx context.Context, db *store.Store, id int64) (*store.Run, *rollout.Result, error) {
	run, err := db.GetRun(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	samples, err := db.Samples(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	res := &rollout.Result{Metrics: run.Metrics, StepsTaken: run.Steps}
	for i := range samples {
		res.States = append(res.States, &positional.State{Q: samples[i].Q, QD: samples[i].QD})
		res.Times = append(res.Times, samples[i].T)
	}
	return run, res, nil
}

func exportRunCSV(cmd *cobra.Command, args []string) error {
	id, err := parseRunID(args[0])
	if err != nil {
		return err
	}

	db, err := openStore()
	if err != nil {
		return err
	}
	defer db.Close()

	_, res, err := loadResult(context.Background(), db, id)
	if err != nil {
		return err
	}
	if len(res.States) == 0 {
		return fmt.Errorf("no data to export")
	}
	return store.ExportCSV(os.Stdout, res)
}

func exportRunJSON(cmd *cobra.Command, args []string) error {
	id, err := parseRunID(args[0])
	if err != nil {
		return err
	}

	db, err := openStore()
	if err != nil {
		return err
	}
	defer db.Close()

	run, res, err := loadResult(context.Background(), db, id)
	if err != nil {
		return err
	}
	return store.ExportJSON(os.Stdout, run.Scene, run.Timestep, res)
}

func exportRunSVG(cmd *cobra.Command, args []string) error {
	id, err := parseRunID(args[0])
	if err != nil {
		return err
	}

	db, err := openStore()
	if err != nil {
		return err
	}
	defer db.Close()

	samples, err := db.Samples(context.Background(), id)
	if err != nil {
		return err
	}
	if len(samples) < 2 {
		return fmt.Errorf("not enough samples to draw")
	}
	if coord < 0 || coord >= len(samples[0].Q) || coord >= len(samples[0].QD) {
		return fmt.Errorf("coordinate %d out of range", coord)
	}

	points := make([]export.Point, len(samples))
	for i := range samples {
		points[i] = export.Point{X: samples[i].Q[coord], Y: samples[i].QD[coord]}
	}

	fmt.Println(export.PhaseSVG(points, svgWidth, svgHeight, ""))
	return nil
}

func deleteRun(cmd *cobra.Command, args []string) error {
	id, err := parseRunID(args[0])
	if err != nil {
		return err
	}

	db, err := openStore()
	if err != nil {
		return err
	}
	defer db.Close()

	if err := db.DeleteRun(context.Background(), id); err != nil {
		return err
	}
	fmt.Printf("deleted run %d\n", id)
	return nil
}

func comparePipelines(cmd *cobra.Command, args []string) error {
	sc, err := resolveScene(cmd, args[0])
	if err != nil {
		return err
	}
	dt := sc.Sys.Opts.Timestep

	gst, err := generalized.Init(sc.Sys, sc.Q, sc.QD)
	if err != nil {
		return err
	}
	pst, err := positional.Init(sc.Sys, sc.Q, sc.QD)
	if err != nil {
		return err
	}

	fmt.Printf("comparing pipelines on %s (dt=%g, steps=%d)\n\n", sc.Name, dt, steps)

	maxDiff := 0.0
	posStart := time.Now()
	genElapsed := time.Duration(0)
	for i := 0; i < steps; i++ {
		pst, err = positional.Step(sc.Sys, pst, nil)
		if err != nil {
			return fmt.Errorf("positional step %d: %w", i, err)
		}
		gs := time.Now()
		gst, err = generalized.Step(sc.Sys, gst, nil)
		if err != nil {
			return fmt.Errorf("reduced step %d: %w", i, err)
		}
		genElapsed += time.Since(gs)

		for j := range pst.Q {
			d := pst.Q[j] - gst.Q[j]
			if d < 0 {
				d = -d
			}
			if d > maxDiff {
				maxDiff = d
			}
		}
	}
	posElapsed := time.Since(posStart) - genElapsed

	fmt.Printf("%-12s  %-12s  %-12s\n", "pipeline", "final_q0", "time_ms")
	fmt.Println(strings.Repeat("-", 40))
	fmt.Printf("%-12s  %12.6f  %12.2f\n", "positional", pst.Q[0], float64(posElapsed.Microseconds())/1000)
	fmt.Printf("%-12s  %12.6f  %12.2f\n", "reduced", gst.Q[0], float64(genElapsed.Microseconds())/1000)
	fmt.Printf("\nmax coordinate divergence: %.6f\n", maxDiff)

	return nil
}

func benchScene(cmd *cobra.Command, args []string) error {
	name := args[0]

	durations := []float64{1.0, 5.0, 10.0}
	dts := []float64{1e-4, 1e-3, 1e-2}

	fmt.Printf("benchmarking %s\n\n", name)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "DURATION\tDT\tSTEPS\tTIME\tSTEPS/SEC")

	for _, dur := range durations {
		for _, dt := range dts {
			sc, err := scene.Get(name)
			if err != nil {
				return err
			}
			sc.Sys.Opts.Timestep = dt

			st, err := positional.Init(sc.Sys, sc.Q, sc.QD)
			if err != nil {
				return err
			}

			n := int(dur / dt)
			start := time.Now()
			for i := 0; i < n; i++ {
				st, err = positional.Step(sc.Sys, st, nil)
				if err != nil {
					return fmt.Errorf("step %d: %w", i, err)
				}
			}
			elapsed := time.Since(start)

			fmt.Fprintf(w, "%.1fs\t%.4fs\t%d\t%v\t%.0f\n",
				dur, dt, n, elapsed, float64(n)/elapsed.Seconds())
		}
	}

	return w.Flush()
}

func tuneScene(cmd *cobra.Command, args []string) error {
	name := args[0]

	probe, err := scene.Get(name)
	if err != nil {
		return err
	}
	if len(probe.Sys.Actuators) == 0 {
		return fmt.Errorf("scene %s has no actuators to tune", name)
	}

	gs, err := optim.NewGridSearch([]string{"kp", "kd"}, [][]float64{kpGrid, kdGrid})
	if err != nil {
		return err
	}
	fmt.Printf("tuning pd gains on %s (%d combinations, %d steps each)\n", name, gs.Size(), steps)

	eval := func(p map[string]float64) (float64, error) {
		sc, err := scene.Get(name)
		if err != nil {
			return 0, err
		}
		if dtFlag > 0 {
			sc.Sys.Opts.Timestep = dtFlag
		}

		st, err := positional.Init(sc.Sys, sc.Q, sc.QD)
		if err != nil {
			return 0, err
		}

		runner := rollout.New(sc.Sys, rollout.NewPD(sc.Sys, p["kp"], p["kd"], targets))
		tracking := metrics.NewTrackingError(sc.Sys, targets)
		runner.AddMetric(tracking)

		if _, err := runner.Run(context.Background(), st, rollout.Config{Steps: steps, SampleEvery: steps}); err != nil {
			return 0, err
		}
		if log != nil {
			log.Debugw("evaluated gains", "kp", p["kp"], "kd", p["kd"], "tracking_error", tracking.Value())
		}
		return tracking.Value(), nil
	}

	best, value, err := gs.Search(context.Background(), eval)
	if err != nil {
		return err
	}

	fmt.Printf("\nbest kp: %.3f\n", best["kp"])
	fmt.Printf("best kd: %.3f\n", best["kd"])
	fmt.Printf("tracking error: %.6f\n", value)
	return nil
}

func runScript(cmd *cobra.Command, args []string) error {
	s, err := automation.LoadScenario(args[0])
	if err != nil {
		return err
	}

	db, err := openStore()
	if err != nil {
		return err
	}
	defer db.Close()

	fmt.Printf("executing %s (%d runs)\n", s.Name, len(s.Runs))
	if s.Description != "" {
		fmt.Println(s.Description)
	}
	fmt.Println()

	summaries, execErr := s.Execute(context.Background(), db, log)
	if len(summaries) > 0 {
		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "SCENE\tRUN_ID\tSTEPS\tENERGY\tSTABILITY")
		for _, sum := range summaries {
			fmt.Fprintf(w, "%s\t%d\t%d\t%.4f\t%.2f\n",
				sum.Scene, sum.RunID, sum.Steps, sum.Metrics["energy"], sum.Metrics["stability"])
		}
		if err := w.Flush(); err != nil {
			return err
		}
	}
	return execErr
}

func runLive(cmd *cobra.Command, args []string) error {
	name := ""
	if len(args) > 0 {
		name = args[0]
	}

	sc, err := resolveScene(cmd, name)
	if err != nil {
		return err
	}
	policy, err := buildPolicy(sc)
	if err != nil {
		return err
	}

	return viz.Run(sc.Sys, sc.Name, sc.Q, sc.QD, policy, liveSteps)
}
