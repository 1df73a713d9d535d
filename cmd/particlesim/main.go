package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/particlesim/internal/config"
	"github.com/san-kum/particlesim/internal/dynamo"
	"github.com/san-kum/particlesim/internal/metrics"
	"github.com/san-kum/particlesim/internal/optim"
	"github.com/san-kum/particlesim/internal/scene"
	"github.com/san-kum/particlesim/internal/sim"
	"github.com/san-kum/particlesim/internal/viz"
	"github.com/spf13/cobra"
)

var (
	dt         float64
	duration   float64
	substeps   int
	gravity    float64
	strength   float64
	damping    float64
	seed       int64
	links      int
	electrons  int
	configFile string
	preset     string
	debug      bool
	// run output
	plotMetric string
	// live view
	theme string
	// ensemble size
	runs int
	// sweep grid
	sweepParams []string
	sweepMetric string
)

// main registers the commands and flags and executes the root command. It
// exits with status 1 if a command fails.
func main() {
	var logFile *os.File
	rootCmd := &cobra.Command{
		Use:           "particlesim",
		Short:         "constraint and force-field particle simulation",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logFile = setupLogging(debug)
		},
	}
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "write diagnostics to logs/particlesim.log")

	runCmd := &cobra.Command{
		Use:   "run [scene]",
		Short: "run a scene headless and report metrics",
		Args:  cobra.ExactArgs(1),
		RunE:  runScene,
	}
	addSceneFlags(runCmd)
	runCmd.Flags().StringVar(&plotMetric, "plot", "", "plot a recorded metric series")

	liveCmd := &cobra.Command{
		Use:   "live [scene]",
		Short: "run a scene with live terminal visualization",
		Args:  cobra.ExactArgs(1),
		RunE:  runLive,
	}
	addSceneFlags(liveCmd)
	liveCmd.Flags().StringVar(&theme, "theme", viz.Themes[0].Name, "color theme: "+strings.Join(viz.ThemeNames(), ", "))

	ensembleCmd := &cobra.Command{
		Use:   "ensemble [scene]",
		Short: "run independently seeded copies of a scene in parallel",
		Args:  cobra.ExactArgs(1),
		RunE:  runEnsemble,
	}
	addSceneFlags(ensembleCmd)
	ensembleCmd.Flags().IntVar(&runs, "runs", 4, "number of runs")

	sweepCmd := &cobra.Command{
		Use:   "sweep [scene]",
		Short: "grid search parameters minimising a metric",
		Long: "Runs the scene once per grid cell. Each --param takes name=v1,v2,...\n" +
			"Parameters: " + strings.Join(config.ParamNames(), ", "),
		Args: cobra.ExactArgs(1),
		RunE: runSweep,
	}
	addSceneFlags(sweepCmd)
	sweepCmd.Flags().StringArrayVar(&sweepParams, "param", nil, "parameter grid, name=v1,v2,... (repeatable)")
	sweepCmd.Flags().StringVar(&sweepMetric, "metric", "link_strain", "metric to minimise")

	benchCmd := &cobra.Command{
		Use:   "bench [scene]",
		Short: "measure step throughput",
		Args:  cobra.ExactArgs(1),
		RunE:  benchScene,
	}
	addSceneFlags(benchCmd)

	scenesCmd := &cobra.Command{
		Use:   "scenes",
		Short: "list available scenes",
		Run: func(cmd *cobra.Command, args []string) {
			for _, name := range scene.NewRegistry().List() {
				fmt.Printf("  %s\n", name)
			}
		},
	}

	presetsCmd := &cobra.Command{
		Use:   "presets [scene]",
		Short: "list available presets for a scene",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			presets := config.ListPresets(presetScene(args[0]))
			if len(presets) == 0 {
				fmt.Printf("no presets for scene: %s\n", args[0])
				return nil
			}
			sort.Strings(presets)
			fmt.Printf("presets for %s:\n", args[0])
			for _, p := range presets {
				fmt.Printf("  %s\n", p)
			}
			return nil
		},
	}

	rootCmd.AddCommand(runCmd, liveCmd, ensembleCmd, sweepCmd, benchCmd, scenesCmd, presetsCmd)

	err := rootCmd.Execute()
	if logFile != nil {
		logFile.Close()
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func addSceneFlags(cmd *cobra.Command) {
	def := config.DefaultConfig()
	cmd.Flags().Float64Var(&dt, "dt", def.Dt, "frame timestep (s)")
	cmd.Flags().Float64Var(&duration, "time", def.Duration, "duration (s)")
	cmd.Flags().IntVar(&substeps, "substeps", def.Solver.Substeps, "solver substeps per frame")
	cmd.Flags().Float64Var(&gravity, "gravity", def.Solver.Gravity, "vertical gravity (units/s^2)")
	cmd.Flags().Float64Var(&strength, "strength", def.Field.ForceConstant, "electron force constant")
	cmd.Flags().Float64Var(&damping, "damping", def.Field.Damping, "electron velocity damping (1/s)")
	cmd.Flags().Int64Var(&seed, "seed", def.Seed, "random seed")
	cmd.Flags().IntVar(&links, "links", def.Chain.Links, "chain links")
	cmd.Flags().IntVar(&electrons, "electrons", def.Electrons.Count, "electron count")
	cmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	cmd.Flags().StringVar(&preset, "preset", "", "use preset configuration")
}

// presetScene maps scene aliases onto the preset table they share.
func presetScene(name string) string {
	if name == "pendulum" {
		return "chain"
	}
	return name
}

// resolveConfig layers defaults, then a preset, then a config file, then any
// flags set explicitly on the command line.
func resolveConfig(cmd *cobra.Command, sceneName string) (*config.Config, error) {
	cfg := config.DefaultConfig()

	if preset != "" {
		p := config.GetPreset(presetScene(sceneName), preset)
		if p == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets(presetScene(sceneName)))
		}
		cfg = p
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
		cfg.Dt = dt
	}
	if flags.Changed("time") {
		cfg.Duration = duration
	}
	if flags.Changed("substeps") {
		cfg.Solver.Substeps = substeps
	}
	if flags.Changed("gravity") {
		cfg.Solver.Gravity = gravity
	}
	if flags.Changed("strength") {
		cfg.Field.ForceConstant = strength
	}
	if flags.Changed("damping") {
		cfg.Field.Damping = damping
	}
	if flags.Changed("seed") {
		cfg.Seed = seed
	}
	if flags.Changed("links") {
		cfg.Chain.Links = links
	}
	if flags.Changed("electrons") {
		cfg.Electrons.Count = electrons
	}
	cfg.Scene = sceneName

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	log.Printf("config: scene=%s dt=%g duration=%g substeps=%d seed=%d", cfg.Scene, cfg.Dt, cfg.Duration, cfg.Solver.Substeps, cfg.Seed)
	return cfg, nil
}

func simConfig(cfg *config.Config) sim.Config {
	return sim.Config{
		Dt:            cfg.Dt,
		Duration:      cfg.Duration,
		ValidateState: cfg.ValidateState,
	}
}

func runScene(cmd *cobra.Command, args []string) error {
	name := args[0]
	cfg, err := resolveConfig(cmd, name)
	if err != nil {
		return err
	}

	sc, err := scene.NewRegistry().Build(name, cfg)
	if err != nil {
		return err
	}

	s := sim.New(sc.Stepper)
	for _, m := range sc.Metrics {
		s.AddMetric(m)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	fmt.Printf("running %s simulation...\n", name)
	result, runErr := s.Run(ctx, simConfig(cfg))
	if result == nil {
		return runErr
	}
	if runErr != nil {
		log.Printf("run %s: %v", name, runErr)
		var simErr *dynamo.SimulationError
		if errors.As(runErr, &simErr) {
			fmt.Printf("stopped at tick %d (t=%.3fs)\n", simErr.Tick, simErr.Time)
		}
	}

	fmt.Printf("completed in %v\n", result.Wall)
	fmt.Printf("frames: %d\n\n", result.Frames)
	if err := printMetrics(result); err != nil {
		return err
	}

	if plotMetric != "" {
		series, ok := result.Series[plotMetric]
		if !ok || len(series) == 0 {
			return fmt.Errorf("no series recorded for metric: %s", plotMetric)
		}
		graph := asciigraph.Plot(series,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(plotMetric+" vs frame"),
		)
		fmt.Println()
		fmt.Println(graph)
	}
	return runErr
}

func printMetrics(result *sim.Result) error {
	names := make([]string, 0, len(result.Metrics))
	for name := range result.Metrics {
		names = append(names, name)
	}
	sort.Strings(names)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "METRIC\tVALUE\tMEAN\tSTDDEV\tMIN\tMAX")
	for _, name := range names {
		series, ok := result.Series[name]
		if !ok {
			fmt.Fprintf(w, "%s\t%.6g\t-\t-\t-\t-\n", name, result.Metrics[name])
			continue
		}
		sum := metrics.Summarize(series)
		fmt.Fprintf(w, "%s\t%.6g\t%.6g\t%.3g\t%.6g\t%.6g\n",
			name, result.Metrics[name], sum.Mean, sum.StdDev, sum.Min, sum.Max)
	}
	return w.Flush()
}

func runLive(cmd *cobra.Command, args []string) error {
	name := args[0]
	cfg, err := resolveConfig(cmd, name)
	if err != nil {
		return err
	}

	registry := scene.NewRegistry()
	build := func() (*scene.Scene, error) { return registry.Build(name, cfg) }

	m, err := viz.NewModel(name, build, cfg.Dt)
	if err != nil {
		return err
	}
	m = m.WithTheme(theme)

	p := tea.NewProgram(m, tea.WithAltScreen())
	final, err := p.Run()
	if err != nil {
		return err
	}
	if fm, ok := final.(viz.Model); ok && fm.Err() != nil {
		return fm.Err()
	}
	return nil
}

func runEnsemble(cmd *cobra.Command, args []string) error {
	name := args[0]
	cfg, err := resolveConfig(cmd, name)
	if err != nil {
		return err
	}
	if runs < 1 {
		return fmt.Errorf("runs must be at least 1, got %d", runs)
	}

	registry := scene.NewRegistry()
	factory := func(runSeed int64) (dynamo.Stepper, []sim.Metric, error) {
		c := *cfg
		c.Seed = runSeed
		sc, err := registry.Build(name, &c)
		if err != nil {
			return nil, nil, err
		}
		return sc.Stepper, sc.Metrics, nil
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	fmt.Printf("running %d %s simulations...\n", runs, name)
	start := time.Now()
	results, err := sim.NewEnsemble(factory, runs, cfg.Seed).Run(ctx, simConfig(cfg))
	if err != nil {
		return err
	}
	fmt.Printf("completed in %v\n\n", time.Since(start))

	finals := make(map[string][]float64)
	for _, res := range results {
		for k, v := range res.Metrics {
			finals[k] = append(finals[k], v)
		}
	}
	names := make([]string, 0, len(finals))
	for k := range finals {
		names = append(names, k)
	}
	sort.Strings(names)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "METRIC\tRUNS\tMEAN\tSTDDEV\tMIN\tMAX")
	for _, k := range names {
		sum := metrics.Summarize(finals[k])
		fmt.Fprintf(w, "%s\t%d\t%.6g\t%.3g\t%.6g\t%.6g\n", k, sum.Samples, sum.Mean, sum.StdDev, sum.Min, sum.Max)
	}
	return w.Flush()
}

// parseGrid splits "name=v1,v2" entries into parallel name and value slices.
func parseGrid(entries []string) ([]string, [][]float64, error) {
	names := make([]string, 0, len(entries))
	ranges := make([][]float64, 0, len(entries))
	for _, entry := range entries {
		name, list, ok := strings.Cut(entry, "=")
		if !ok || name == "" || list == "" {
			return nil, nil, fmt.Errorf("bad --param %q, want name=v1,v2,...", entry)
		}
		var values []float64
		for _, f := range strings.Split(list, ",") {
			v, err := strconv.ParseFloat(strings.TrimSpace(f), 64)
			if err != nil {
				return nil, nil, fmt.Errorf("bad value in --param %q: %w", entry, err)
			}
			values = append(values, v)
		}
		names = append(names, name)
		ranges = append(ranges, values)
	}
	return names, ranges, nil
}

func runSweep(cmd *cobra.Command, args []string) error {
	name := args[0]
	cfg, err := resolveConfig(cmd, name)
	if err != nil {
		return err
	}
	if len(sweepParams) == 0 {
		return fmt.Errorf("sweep needs at least one --param")
	}
	names, ranges, err := parseGrid(sweepParams)
	if err != nil {
		return err
	}
	grid, err := optim.NewGridSearch(names, ranges)
	if err != nil {
		return err
	}

	registry := scene.NewRegistry()
	trial := func(ctx context.Context, params map[string]float64) (*sim.Result, error) {
		c := *cfg
		for k, v := range params {
			if err := c.Set(k, v); err != nil {
				return nil, err
			}
		}
		sc, err := registry.Build(name, &c)
		if err != nil {
			return nil, err
		}
		s := sim.New(sc.Stepper)
		for _, m := range sc.Metrics {
			s.AddMetric(m)
		}
		return s.Run(ctx, simConfig(&c))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	fmt.Printf("sweeping %d %s configurations...\n\n", grid.Size(), name)
	best, points, err := grid.Search(ctx, trial, sweepMetric)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "PARAMS\t%s\n", strings.ToUpper(sweepMetric))
	for _, p := range points {
		if p.Err != nil {
			fmt.Fprintf(w, "%s\tfailed: %v\n", optim.FormatParams(p.Params), p.Err)
			continue
		}
		fmt.Fprintf(w, "%s\t%.6g\n", optim.FormatParams(p.Params), p.Value)
	}
	if ferr := w.Flush(); ferr != nil {
		return ferr
	}
	if err != nil {
		return err
	}
	fmt.Printf("\nbest: %s (%s=%.6g)\n", optim.FormatParams(best.Params), sweepMetric, best.Value)
	return nil
}

func benchScene(cmd *cobra.Command, args []string) error {
	name := args[0]
	cfg, err := resolveConfig(cmd, name)
	if err != nil {
		return err
	}
	registry := scene.NewRegistry()

	fmt.Printf("benchmarking %s\n\n", name)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SUBSTEPS\tTICKS\tTIME\tTICKS/SEC")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	// Each row stops after benchTicks frames or benchBudget of wall time.
	const (
		benchTicks  = 100
		benchBudget = 5 * time.Second
	)
	for _, n := range []int{10, 100, cfg.Solver.Substeps} {
		c := *cfg
		c.Solver.Substeps = n
		sc, err := registry.Build(name, &c)
		if err != nil {
			return err
		}
		runCfg := simConfig(&c)
		runCfg.Duration = benchTicks * c.Dt

		ticks := 0
		start := time.Now()
		err = sim.New(sc.Stepper).RunWithCallback(ctx, runCfg, func(frame int, _ float64) bool {
			ticks = frame + 1
			return time.Since(start) < benchBudget
		})
		elapsed := time.Since(start)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "%d\t%d\t%v\t%.0f\n", n, ticks, elapsed, float64(ticks)/elapsed.Seconds())
	}
	return w.Flush()
}
