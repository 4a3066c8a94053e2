package main

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"os/signal"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/guptarohit/asciigraph"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/kmishmael/dieselops/internal/analysis"
	"github.com/kmishmael/dieselops/internal/config"
	"github.com/kmishmael/dieselops/internal/console"
	"github.com/kmishmael/dieselops/internal/export"
	"github.com/kmishmael/dieselops/internal/metrics"
	"github.com/kmishmael/dieselops/internal/optim"
	"github.com/kmishmael/dieselops/internal/scenario"
	"github.com/kmishmael/dieselops/internal/sim"
	"github.com/kmishmael/dieselops/internal/storage"
	"github.com/kmishmael/dieselops/internal/telemetry"
	"github.com/kmishmael/dieselops/internal/tui"
)

var (
	dataDir    string
	configFile string
	preset     string
	dt         float64
	duration   float64
	speed      float64
	seed       int64
	noNoise    bool
	label      string
	outFile    string

	// serve
	httpPort   int
	mqttBroker string
	mqttPrefix string

	// sweep
	sweepParam string
	sweepMin   float64
	sweepMax   float64
	sweepSteps int

	// montecarlo
	trials  int
	perturb float64

	// analyze
	analyzeSeries string

	// tune
	tuneLoop string
	gainMin  float64
	gainMax  float64
	gainN    int
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "dieselops",
		Short: "diesel plant simulation and control lab",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, _, err := buildSimulator(cmd)
			if err != nil {
				return err
			}
			return tui.Run(s)
		},
	}
	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".dieselops", "data directory")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path (yaml)")
	rootCmd.PersistentFlags().StringVar(&preset, "preset", "", "use preset configuration")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "headless closed-loop run",
		RunE:  runHeadless,
	}
	runCmd.Flags().Float64Var(&dt, "dt", config.DefaultDt, "timestep")
	runCmd.Flags().Float64Var(&duration, "time", config.DefaultDuration, "duration in simulated seconds")
	runCmd.Flags().Float64Var(&speed, "speed", config.DefaultSpeed, "simulation speed multiplier")
	runCmd.Flags().Int64Var(&seed, "seed", time.Now().UnixNano(), "noise seed")
	runCmd.Flags().BoolVar(&noNoise, "no-noise", false, "disable plant noise")
	runCmd.Flags().StringVar(&label, "label", "run", "label for the stored run")

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "interactive dashboard",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, _, err := buildSimulator(cmd)
			if err != nil {
				return err
			}
			return tui.Run(s)
		},
	}

	consoleCmd := &cobra.Command{
		Use:   "console",
		Short: "line-based operator console",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, _, err := buildSimulator(cmd)
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
			defer stop()
			err = console.New(s).Run(ctx)
			if err == context.Canceled {
				return nil
			}
			return err
		},
	}

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "run with prometheus and optional mqtt telemetry",
		RunE:  runServe,
	}
	serveCmd.Flags().IntVar(&httpPort, "port", 9090, "telemetry http port")
	serveCmd.Flags().StringVar(&mqttBroker, "mqtt", "", "mqtt broker url (empty disables)")
	serveCmd.Flags().StringVar(&mqttPrefix, "mqtt-prefix", "dieselops", "mqtt topic prefix")
	serveCmd.Flags().Float64Var(&speed, "speed", config.DefaultSpeed, "simulation speed multiplier")

	scenarioCmd := &cobra.Command{
		Use:   "scenario [file]",
		Short: "replay a scripted operating sequence",
		Args:  cobra.ExactArgs(1),
		RunE:  runScenario,
	}
	scenarioCmd.Flags().StringVar(&label, "label", "", "store the run under this label")

	sweepCmd := &cobra.Command{
		Use:   "sweep",
		Short: "sweep one parameter across a range",
		RunE:  runSweep,
	}
	sweepCmd.Flags().StringVar(&sweepParam, "param", "power.kp", "parameter as <loop>.<kp|ki|kd|target>")
	sweepCmd.Flags().Float64Var(&sweepMin, "min", 0.1, "range start")
	sweepCmd.Flags().Float64Var(&sweepMax, "max", 1.0, "range end")
	sweepCmd.Flags().IntVar(&sweepSteps, "steps", 5, "number of points")

	monteCmd := &cobra.Command{
		Use:   "montecarlo",
		Short: "repeat a run with perturbed initial actuators",
		RunE:  runMonteCarlo,
	}
	monteCmd.Flags().IntVar(&trials, "trials", 20, "number of trials")
	monteCmd.Flags().Float64Var(&perturb, "perturb", 10, "actuator perturbation half-width, percentage points")
	monteCmd.Flags().Int64Var(&seed, "seed", 0, "trial seed (0 = wall clock)")

	tuneCmd := &cobra.Command{
		Use:   "tune",
		Short: "grid-search PID gains for one loop",
		RunE:  runTune,
	}
	tuneCmd.Flags().StringVar(&tuneLoop, "loop", "power", "loop to tune")
	tuneCmd.Flags().Float64Var(&gainMin, "min", 0.05, "gain range start")
	tuneCmd.Flags().Float64Var(&gainMax, "max", 1.0, "gain range end")
	tuneCmd.Flags().IntVar(&gainN, "steps", 4, "points per gain axis")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list stored runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot a stored run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}

	analyzeCmd := &cobra.Command{
		Use:   "analyze [run_id]",
		Short: "frequency analysis of a stored run",
		Args:  cobra.ExactArgs(1),
		RunE:  analyzeRun,
	}
	analyzeCmd.Flags().StringVar(&analyzeSeries, "series", "power", "series to analyze (power|temperature|efficiency)")

	exportSVGCmd := &cobra.Command{
		Use:   "export-svg [run_id]",
		Short: "render run series to an svg chart",
		Args:  cobra.ExactArgs(1),
		RunE:  exportSVG,
	}
	exportSVGCmd.Flags().StringVar(&outFile, "out", "", "output file (default <run_id>.svg)")

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "print run metadata as json",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st := storage.New(dataDir)
			meta, err := st.Load(args[0])
			if err != nil {
				return err
			}
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(meta)
		},
	}

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export run samples to csv",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st := storage.New(dataDir)
			records, err := st.LoadSamples(args[0])
			if err != nil {
				return err
			}
			return storage.ExportCSVFile(outFile, records)
		},
	}
	exportCSVCmd.Flags().StringVar(&outFile, "out", "", "output file (default stdout)")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, name := range config.ListPresets() {
				fmt.Println(name)
			}
			return nil
		},
	}

	rootCmd.AddCommand(runCmd, liveCmd, consoleCmd, serveCmd, scenarioCmd,
		sweepCmd, monteCmd, tuneCmd, listCmd, plotCmd, analyzeCmd,
		exportCmd, exportCSVCmd, exportSVGCmd, presetsCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadConfig resolves preset, config file and flag overrides, in that
// order.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()

	if preset != "" {
		p := config.GetPreset(preset)
		if p == nil {
			return nil, fmt.Errorf("unknown preset %q (available: %s)",
				preset, strings.Join(config.ListPresets(), ", "))
		}
		cfg = p
	}
	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if cmd.Flags().Changed("dt") {
		cfg.Dt = dt
	}
	if cmd.Flags().Changed("time") {
		cfg.Duration = duration
	}
	if cmd.Flags().Changed("speed") {
		cfg.Speed = speed
	}
	if cmd.Flags().Changed("seed") {
		cfg.Noise.Seed = seed
	}
	if cmd.Flags().Changed("no-noise") {
		cfg.Noise.Disabled = noNoise
	}
	return cfg, nil
}

func buildSimulator(cmd *cobra.Command) (*sim.Simulator, *config.Config, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, nil, err
	}
	s, err := cfg.NewSimulator()
	if err != nil {
		return nil, nil, err
	}
	return s, cfg, nil
}

func runHeadless(cmd *cobra.Command, args []string) error {
	s, cfg, err := buildSimulator(cmd)
	if err != nil {
		return err
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	// Sample once per whole simulated second for persistence.
	var records []storage.Record
	lastSecond := -1.0
	observer := func(snap sim.Snapshot) {
		if sec := math.Floor(snap.Plant.Time); sec > lastSecond {
			records = append(records, storage.RecordFrom(snap))
			lastSecond = sec
		}
	}

	fmt.Printf("running %.0fs of plant time at dt=%.2fs...\n", cfg.Duration, cfg.Dt)
	start := time.Now()

	runCfg := sim.RunConfig{Dt: cfg.Dt, Duration: cfg.Duration}
	result, err := sim.Run(context.Background(), s, runCfg, metrics.Standard(), observer)
	if err != nil {
		return err
	}

	runID, err := st.Save(label, cfg.Dt, cfg.Duration, cfg.Noise.Seed, result, records)
	if err != nil {
		return err
	}

	fmt.Printf("completed in %v\n", time.Since(start))
	fmt.Printf("run id: %s\n", runID)
	fmt.Printf("steps: %d\n", result.StepsTaken)
	fmt.Println("\nmetrics:")
	printMetrics(result.Metrics)
	return nil
}

func runServe(cmd *cobra.Command, args []string) error {
	// .env supplies broker credentials without putting them on the
	// command line.
	_ = godotenv.Load()

	s, _, err := buildSimulator(cmd)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	reg := prometheus.NewRegistry()
	gauges := telemetry.NewMetrics(reg)
	telemetry.Serve(httpPort, telemetry.Handler(reg))

	var publisher *telemetry.Publisher
	if mqttBroker == "" {
		mqttBroker = os.Getenv("MQTT_BROKER")
	}
	if mqttBroker != "" {
		publisher, err = telemetry.NewPublisher(ctx, telemetry.MQTTConfig{
			Broker:   mqttBroker,
			Username: os.Getenv("MQTT_USERNAME"),
			Password: os.Getenv("MQTT_PASSWORD"),
			Prefix:   mqttPrefix,
		})
		if err != nil {
			return err
		}
	}

	fmt.Printf("serving telemetry on :%d (ctrl+c to stop)\n", httpPort)

	const tick = 100 * time.Millisecond
	ticker := time.NewTicker(tick)
	defer ticker.Stop()

	publishEvery := time.Second
	lastPublish := time.Now()

	for {
		select {
		case <-ticker.C:
			s.Update(tick.Seconds())
			snap := s.Snapshot()
			gauges.Publish(snap)
			if publisher != nil && time.Since(lastPublish) >= publishEvery {
				publisher.PublishSnapshot(snap)
				lastPublish = time.Now()
			}
		case <-ctx.Done():
			return nil
		}
	}
}

func runScenario(cmd *cobra.Command, args []string) error {
	sc, err := scenario.Load(args[0])
	if err != nil {
		return err
	}

	fmt.Printf("scenario: %s\n", sc.Name)
	if sc.Description != "" {
		fmt.Println(sc.Description)
	}

	res, err := sc.Run(context.Background())
	if err != nil {
		return err
	}

	fmt.Printf("steps applied: %d\n", res.Applied)
	fmt.Println("\nmetrics:")
	printMetrics(res.Run.Metrics)

	if label != "" {
		st := storage.New(dataDir)
		if err := st.Init(); err != nil {
			return err
		}
		records := make([]storage.Record, 0, len(res.Samples))
		for _, snap := range res.Samples {
			records = append(records, storage.RecordFrom(snap))
		}
		runID, err := st.Save(label, sc.Config.Dt, sc.Config.Duration, sc.Config.Noise.Seed, res.Run, records)
		if err != nil {
			return err
		}
		fmt.Printf("run id: %s\n", runID)
	}
	return nil
}

func runSweep(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	sw := &scenario.ParameterSweep{
		Config:    *cfg,
		Parameter: sweepParam,
		Min:       sweepMin,
		Max:       sweepMax,
		Steps:     sweepSteps,
	}
	points, err := sw.Run(context.Background())
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "%s\tTRACKING\tEFFORT\tPEAK TEMP\tFUEL L\n", strings.ToUpper(sweepParam))
	for _, p := range points {
		loop := strings.SplitN(sweepParam, ".", 2)[0]
		fmt.Fprintf(w, "%.4f\t%.2f\t%.2f\t%.1f\t%.2f\n",
			p.Value,
			p.Metrics["tracking_error_"+loop],
			p.Metrics["control_effort"],
			p.Metrics["peak_temperature"],
			p.Metrics["fuel_consumed"])
	}
	return w.Flush()
}

func runMonteCarlo(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	mc := &scenario.MonteCarlo{
		Config:       *cfg,
		Perturbation: perturb,
		Trials:       trials,
		Seed:         seed,
	}
	results, err := mc.Run(context.Background())
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "TRIAL\tFUEL\tCOOLING\tLOAD\tPEAK TEMP\tSTABLE")
	for _, tr := range results {
		fmt.Fprintf(w, "%d\t%.1f\t%.1f\t%.1f\t%.1f\t%v\n",
			tr.ID, tr.Initial.FuelInjectionRate, tr.Initial.CoolingSystemPower,
			tr.Initial.Load, tr.Metrics["peak_temperature"], tr.Stable)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	fmt.Printf("\nstable: %.0f%%\n", scenario.StableFraction(results)*100)
	return nil
}

func runTune(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	loop, err := sim.ParseLoop(tuneLoop)
	if err != nil {
		return err
	}

	span := optim.Span(gainMin, gainMax, gainN)
	// Derivative and integral axes scale down from the proportional one.
	kiSpan := optim.Span(gainMin/10, gainMax/10, gainN)
	kdSpan := optim.Span(gainMin/5, gainMax/5, gainN)
	if loop == sim.LoopTemperature {
		span = negate(span)
		kiSpan = negate(kiSpan)
		kdSpan = negate(kdSpan)
	}

	g := &optim.GridSearch{
		Config: *cfg,
		Loop:   loop,
		Kp:     span,
		Ki:     kiSpan,
		Kd:     kdSpan,
	}

	fmt.Printf("searching %d gain combinations for %s...\n", len(span)*len(kiSpan)*len(kdSpan), loop)
	start := time.Now()

	best, err := g.Search(context.Background())
	if err != nil {
		return err
	}

	fmt.Printf("done in %v (%d evaluations)\n", time.Since(start), best.Evaluated)
	fmt.Printf("best: kp=%.4f ki=%.4f kd=%.4f  tracking error %.2f\n",
		best.Kp, best.Ki, best.Kd, best.Objective)
	return nil
}

func negate(vals []float64) []float64 {
	out := make([]float64, len(vals))
	for i, v := range vals {
		out[i] = -v
	}
	return out
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
	fmt.Fprintln(w, "ID\tLABEL\tTIME\tDURATION\tDT\tALERTS")
	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%.0fs\t%.2fs\t%d\n",
			run.ID, run.Label,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Duration, run.Dt, len(run.Alerts))
	}
	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}
	records, err := st.LoadSamples(args[0])
	if err != nil {
		return err
	}
	if len(records) == 0 {
		return fmt.Errorf("no data to plot")
	}

	fmt.Printf("run: %s\nsamples: %d\n\n", meta.ID, len(records))

	plots := []struct {
		caption string
		pick    func(storage.Record) float64
	}{
		{"power output (MW)", func(r storage.Record) float64 { return r.PowerOutput }},
		{"engine temperature (°C)", func(r storage.Record) float64 { return r.EngineTemperature }},
		{"efficiency (%)", func(r storage.Record) float64 { return r.Efficiency }},
		{"NOx (kg/h)", func(r storage.Record) float64 { return r.NOx }},
	}
	for _, p := range plots {
		data := make([]float64, len(records))
		for i, rec := range records {
			data[i] = p.pick(rec)
		}
		graph := asciigraph.Plot(data,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(p.caption),
		)
		fmt.Println(graph)
		fmt.Println()
	}
	return nil
}

func analyzeRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}
	records, err := st.LoadSamples(args[0])
	if err != nil {
		return err
	}
	if len(records) < 4 {
		return fmt.Errorf("not enough samples to analyze")
	}

	pick, err := seriesPicker(analyzeSeries)
	if err != nil {
		return err
	}
	data := make([]float64, len(records))
	for i, rec := range records {
		data[i] = pick(rec)
	}

	// Stored samples are one per simulated second.
	osc := analysis.Analyze(data, 1.0)

	fmt.Printf("run: %s  series: %s  samples: %d\n\n", meta.ID, analyzeSeries, len(records))
	graph := asciigraph.Plot(osc.Spectrum[:len(osc.Spectrum)/2],
		asciigraph.Height(10),
		asciigraph.Width(80),
		asciigraph.Caption("power spectrum (low bins)"),
	)
	fmt.Println(graph)
	fmt.Println()

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "  mean\t%.2f\n", osc.MeanValue)
	fmt.Fprintf(w, "  peak-to-peak\t%.2f\n", osc.PeakToPeak)
	if osc.DominantHz > 0 {
		fmt.Fprintf(w, "  dominant frequency\t%.4f Hz\n", osc.DominantHz)
		fmt.Fprintf(w, "  oscillation period\t%.1f s\n", osc.PeriodSec)
	} else {
		fmt.Fprintf(w, "  dominant frequency\tnone\n")
	}
	fmt.Fprintf(w, "  damped (5%%)\t%v\n", osc.Damped(0.05))
	return w.Flush()
}

func exportSVG(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}
	records, err := st.LoadSamples(args[0])
	if err != nil {
		return err
	}
	if len(records) < 2 {
		return fmt.Errorf("not enough samples to chart")
	}

	series := []export.Series{
		{Label: "power (MW)", Color: "#00ff88"},
		{Label: "temperature (°C)", Color: "#ffaa00"},
		{Label: "efficiency (%)", Color: "#00aaff"},
	}
	picks := []func(storage.Record) float64{
		func(r storage.Record) float64 { return r.PowerOutput },
		func(r storage.Record) float64 { return r.EngineTemperature },
		func(r storage.Record) float64 { return r.Efficiency },
	}
	for i := range series {
		pts := make([]export.Point, len(records))
		for j, rec := range records {
			pts[j] = export.Point{X: rec.Time, Y: picks[i](rec)}
		}
		series[i].Points = pts
	}

	path := outFile
	if path == "" {
		path = meta.ID + ".svg"
	}
	svg := export.ChartSVG(series, 800, 400, meta.ID)
	if err := os.WriteFile(path, []byte(svg), 0o644); err != nil {
		return err
	}
	fmt.Printf("wrote %s\n", path)
	return nil
}

func seriesPicker(name string) (func(storage.Record) float64, error) {
	switch name {
	case "power":
		return func(r storage.Record) float64 { return r.PowerOutput }, nil
	case "temperature":
		return func(r storage.Record) float64 { return r.EngineTemperature }, nil
	case "efficiency":
		return func(r storage.Record) float64 { return r.Efficiency }, nil
	default:
		return nil, fmt.Errorf("unknown series %q", name)
	}
}

func printMetrics(vals map[string]float64) {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	for name, val := range vals {
		fmt.Fprintf(w, "  %s\t%.4f\n", name, val)
	}
	w.Flush()
}
