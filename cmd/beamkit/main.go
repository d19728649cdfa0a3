package main

import (
	"context"
	"fmt"
	"math"
	"os"
	"text/tabwriter"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/beamkit/beamkit/internal/analysis"
	"github.com/beamkit/beamkit/internal/beam"
	"github.com/beamkit/beamkit/internal/config"
	"github.com/beamkit/beamkit/internal/monitor"
	"github.com/beamkit/beamkit/internal/report"
	"github.com/beamkit/beamkit/internal/storage"
	"github.com/beamkit/beamkit/internal/track"
	"github.com/beamkit/beamkit/internal/viz"
)

var (
	dataDir    string
	verbose    bool
	configFile string
	preset     string
	// Aperture scan geometry
	scanTurns int
	scanRays  int
	scanRMax  float64
	scanRStep float64
	scanDelta float64
	htmlOut   string
	// Probe amplitudes for tune tracking
	tuneTurns int
	probeX    float64
	probeY    float64
	// Momentum offset for the transfer matrix orbit
	orbitDelta float64
	// Series selection for plot
	series string
	// Report output path
	reportOut string
	// Preset written by init
	initPreset string

	logger *zap.Logger
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "beamkit",
		Short: "symplectic particle tracking for accelerator lattices",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// The live view owns the terminal; keep the logger quiet there.
			if cmd.Name() == "live" {
				logger = zap.NewNop()
				return nil
			}
			zcfg := zap.NewProductionConfig()
			if verbose {
				zcfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
			}
			var err error
			logger, err = zcfg.Build()
			if err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if logger != nil {
				_ = logger.Sync()
			}
		},
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".beamkit", "data directory")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")

	trackCmd := &cobra.Command{
		Use:   "track",
		Short: "track a bunch and store the run",
		RunE:  runTrack,
	}
	trackCmd.Flags().StringVar(&configFile, "config", "", "lattice config file (yaml)")
	trackCmd.Flags().StringVar(&preset, "preset", "", "use preset lattice")
	trackCmd.Flags().Int("turns", config.DefaultTurns, "number of turns")
	trackCmd.Flags().Int("particles", config.DefaultParticles, "bunch population")
	trackCmd.Flags().Int("workers", 0, "worker goroutines (0 = all cpus)")
	trackCmd.Flags().Uint64("seed", config.DefaultSeed, "random seed")

	scanCmd := &cobra.Command{
		Use:   "scan",
		Short: "scan the dynamic aperture",
		RunE:  runScan,
	}
	scanCmd.Flags().StringVar(&configFile, "config", "", "lattice config file (yaml)")
	scanCmd.Flags().StringVar(&preset, "preset", "", "use preset lattice")
	scanCmd.Flags().IntVar(&scanTurns, "turns", 256, "turns each probe must survive")
	scanCmd.Flags().IntVar(&scanRays, "rays", 16, "polar rays over the upper half plane")
	scanCmd.Flags().Float64Var(&scanRMax, "rmax", 0.05, "largest radius probed (m)")
	scanCmd.Flags().Float64Var(&scanRStep, "rstep", 0.001, "radial step (m)")
	scanCmd.Flags().Float64Var(&scanDelta, "delta", 0, "momentum offset of the probes")
	scanCmd.Flags().StringVar(&htmlOut, "html", "", "write an HTML report to this path")

	matrixCmd := &cobra.Command{
		Use:   "matrix",
		Short: "print the one-turn transfer matrix",
		RunE:  runMatrix,
	}
	matrixCmd.Flags().StringVar(&configFile, "config", "", "lattice config file (yaml)")
	matrixCmd.Flags().StringVar(&preset, "preset", "", "use preset lattice")
	matrixCmd.Flags().Float64Var(&orbitDelta, "delta", 0, "momentum offset of the closed orbit")

	opticsCmd := &cobra.Command{
		Use:   "optics",
		Short: "linear optics from the one-turn matrix",
		RunE:  runOptics,
	}
	opticsCmd.Flags().StringVar(&configFile, "config", "", "lattice config file (yaml)")
	opticsCmd.Flags().StringVar(&preset, "preset", "", "use preset lattice")
	opticsCmd.Flags().Float64Var(&orbitDelta, "delta", 0, "momentum offset of the closed orbit")

	tuneCmd := &cobra.Command{
		Use:   "tune",
		Short: "betatron tunes from turn-by-turn tracking",
		RunE:  runTune,
	}
	tuneCmd.Flags().StringVar(&configFile, "config", "", "lattice config file (yaml)")
	tuneCmd.Flags().StringVar(&preset, "preset", "", "use preset lattice")
	tuneCmd.Flags().IntVar(&tuneTurns, "turns", 512, "number of turns")
	tuneCmd.Flags().Float64Var(&probeX, "x", 1e-4, "horizontal probe amplitude (m)")
	tuneCmd.Flags().Float64Var(&probeY, "y", 1e-4, "vertical probe amplitude (m)")
	tuneCmd.Flags().StringVar(&htmlOut, "html", "", "write an HTML spectrum to this path")

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "track with live phase-space view",
		RunE:  runLive,
	}
	liveCmd.Flags().StringVar(&configFile, "config", "", "lattice config file (yaml)")
	liveCmd.Flags().StringVar(&preset, "preset", "", "use preset lattice")
	liveCmd.Flags().Int("particles", config.DefaultParticles, "bunch population")
	liveCmd.Flags().Uint64("seed", config.DefaultSeed, "random seed")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list stored runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot stored run series",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().StringVar(&series, "series", "", "plot a single series (alive, std_x, std_y, emit_x, emit_y, mean_x, mean_y)")

	reportCmd := &cobra.Command{
		Use:   "report [run_id]",
		Short: "write an HTML report of a stored run",
		Args:  cobra.ExactArgs(1),
		RunE:  reportRun,
	}
	reportCmd.Flags().StringVar(&reportOut, "out", "", "output path (default <run_id>.html)")

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export run series to CSV",
		Args:  cobra.ExactArgs(1),
		RunE:  exportCSV,
	}

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export run data to JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}

	initCmd := &cobra.Command{
		Use:   "init [path]",
		Short: "write a starter lattice config",
		Args:  cobra.MaximumNArgs(1),
		RunE:  initConfig,
	}
	initCmd.Flags().StringVar(&initPreset, "preset", "fodo", "preset to write")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list built-in lattices",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Println("available presets:")
			for _, name := range config.ListPresets() {
				fmt.Printf("  %s\n", name)
			}
			return nil
		},
	}

	rootCmd.AddCommand(trackCmd, scanCmd, matrixCmd, opticsCmd, tuneCmd, liveCmd,
		listCmd, plotCmd, reportCmd, exportCSVCmd, exportJSONCmd, initCmd, presetsCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadConfig resolves preset, config file, and flag overrides, in that
// order. CLI flags win over the file when set.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()

	if preset != "" {
		p := config.GetPreset(preset)
		if p == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
		cp := *p
		cfg = &cp
	}

	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	if cmd.Flags().Changed("turns") {
		cfg.Track.Turns, _ = cmd.Flags().GetInt("turns")
	}
	if cmd.Flags().Changed("particles") {
		cfg.Track.Particles, _ = cmd.Flags().GetInt("particles")
	}
	if cmd.Flags().Changed("workers") {
		cfg.Track.Workers, _ = cmd.Flags().GetInt("workers")
	}
	if cmd.Flags().Changed("seed") {
		cfg.Track.Seed, _ = cmd.Flags().GetUint64("seed")
	}

	return cfg, nil
}

func runTrack(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	lat, err := cfg.BuildLattice()
	if err != nil {
		return err
	}
	ps, err := cfg.BuildBunch()
	if err != nil {
		return err
	}
	logger.Debug("lattice built",
		zap.String("lattice", lat.Name()),
		zap.Int("elements", lat.Len()),
		zap.Float64("length_m", lat.Length()))

	st, err := storage.Open(dataDir)
	if err != nil {
		return err
	}
	defer st.Close()

	loss := monitor.NewLossMonitor()
	stats := monitor.NewBeamStats()

	tr := track.New(lat)
	tr.AddObserver(loss)
	tr.AddObserver(stats)

	fmt.Printf("tracking %d particles for %d turns through %s...\n", len(ps), cfg.Track.Turns, lat.Name())
	start := time.Now()

	result, err := tr.Run(context.Background(), ps, track.Config{
		Turns:   cfg.Track.Turns,
		Workers: cfg.Track.Workers,
	})
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	runID, err := st.SaveRun(storage.RunMeta{
		Lattice:   lat.Name(),
		Energy:    cfg.Energy,
		Species:   cfg.Species,
		Turns:     result.Turns,
		Particles: len(ps),
		Survivors: result.Survivors,
		Seed:      cfg.Track.Seed,
	}, stats, loss)
	if err != nil {
		return err
	}

	fmt.Printf("completed in %v\n", elapsed)
	fmt.Printf("run id: %s\n", runID)
	fmt.Printf("survivors: %d / %d (%.1f%%)\n", result.Survivors, len(ps), 100*loss.Transmission(len(ps)))

	if n := stats.Turns(); n > 0 && result.Survivors > 0 {
		fmt.Println("\nfinal beam:")
		fmt.Printf("  std_x:  %.4g m\n", stats.StdX[n-1])
		fmt.Printf("  std_y:  %.4g m\n", stats.StdY[n-1])
		fmt.Printf("  emit_x: %.4g m rad\n", stats.EmitX[n-1])
		fmt.Printf("  emit_y: %.4g m rad\n", stats.EmitY[n-1])
	}
	if len(result.Losses) > 0 {
		first := result.Losses[0].Turn
		for _, l := range result.Losses[1:] {
			if l.Turn < first {
				first = l.Turn
			}
		}
		fmt.Printf("\nfirst loss on turn %d\n", first)
	}

	return nil
}

func runScan(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	lat, err := cfg.BuildLattice()
	if err != nil {
		return err
	}

	dacfg := analysis.DAConfig{
		Turns:  scanTurns,
		Angles: scanRays,
		RMax:   scanRMax,
		RStep:  scanRStep,
		Delta:  scanDelta,
	}
	logger.Debug("scan configured",
		zap.String("lattice", lat.Name()),
		zap.Int("rays", dacfg.Angles),
		zap.Int("turns", dacfg.Turns),
		zap.Float64("rmax_m", dacfg.RMax))

	fmt.Printf("scanning %d rays out to %.1f mm, %d turns each...\n", dacfg.Angles, dacfg.RMax*1e3, dacfg.Turns)
	start := time.Now()

	points, err := analysis.DynamicAperture(context.Background(), lat, dacfg)
	if err != nil {
		return err
	}
	fmt.Printf("completed in %v\n\n", time.Since(start))

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ANGLE\tX (mm)\tY (mm)\tRADIUS (mm)")
	sum := 0.0
	for _, p := range points {
		x := p.Radius * math.Cos(p.Angle) * 1e3
		y := p.Radius * math.Sin(p.Angle) * 1e3
		fmt.Fprintf(w, "%.3f\t%+.2f\t%.2f\t%.2f\n", p.Angle, x, y, p.Radius*1e3)
		sum += p.Radius
	}
	if err := w.Flush(); err != nil {
		return err
	}
	fmt.Printf("\nmean radius: %.2f mm\n", sum/float64(len(points))*1e3)

	if htmlOut != "" {
		f, err := os.Create(htmlOut)
		if err != nil {
			return err
		}
		defer f.Close()
		if err := report.Aperture(f, lat.Name(), points, dacfg); err != nil {
			return err
		}
		fmt.Printf("wrote %s\n", htmlOut)
	}

	return nil
}

func runMatrix(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	lat, err := cfg.BuildLattice()
	if err != nil {
		return err
	}

	var orbit beam.Coords
	orbit[beam.Delta] = orbitDelta

	m, err := analysis.TransferMatrix(lat, orbit, 0)
	if err != nil {
		return err
	}

	fmt.Printf("one-turn matrix of %s:\n\n", lat.Name())
	for i := 0; i < 6; i++ {
		for j := 0; j < 6; j++ {
			fmt.Printf("%13.6f", m.At(i, j))
		}
		fmt.Println()
	}
	return nil
}

func runOptics(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	lat, err := cfg.BuildLattice()
	if err != nil {
		return err
	}

	var orbit beam.Coords
	orbit[beam.Delta] = orbitDelta

	m, err := analysis.TransferMatrix(lat, orbit, 0)
	if err != nil {
		return err
	}
	hor, ver, err := analysis.LinearOptics(m)
	if err != nil {
		return err
	}

	fmt.Printf("linear optics of %s:\n\n", lat.Name())
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "PLANE\tSTABLE\tTUNE\tBETA (m)\tALPHA")
	fmt.Fprintf(w, "horizontal\t%v\t%.4f\t%.3f\t%+.3f\n", hor.Stable, hor.Tune, hor.Beta, hor.Alpha)
	fmt.Fprintf(w, "vertical\t%v\t%.4f\t%.3f\t%+.3f\n", ver.Stable, ver.Tune, ver.Beta, ver.Alpha)
	return w.Flush()
}

func runTune(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	lat, err := cfg.BuildLattice()
	if err != nil {
		return err
	}

	rec := monitor.NewTurnRecorder(0)
	tr := track.New(lat)
	tr.AddObserver(rec)

	ps := beam.Bunch{{probeX, 0, probeY, 0, 0, 0}}
	if _, err := tr.Run(context.Background(), ps, track.Config{Turns: tuneTurns}); err != nil {
		return err
	}
	if ps[0].Lost() {
		return fmt.Errorf("probe particle lost; reduce the amplitude")
	}

	fmt.Printf("qx: %.4f\n", analysis.Tune(rec.X))
	fmt.Printf("qy: %.4f\n\n", analysis.Tune(rec.Y))

	graph := asciigraph.Plot(analysis.Spectrum(rec.X),
		asciigraph.Height(12),
		asciigraph.Width(80),
		asciigraph.Caption("horizontal spectrum (0 .. 0.5)"),
	)
	fmt.Println(graph)

	if htmlOut != "" {
		f, err := os.Create(htmlOut)
		if err != nil {
			return err
		}
		defer f.Close()
		if err := report.Spectrum(f, lat.Name(), analysis.Spectrum(rec.X), analysis.Spectrum(rec.Y), len(rec.X)); err != nil {
			return err
		}
		fmt.Printf("wrote %s\n", htmlOut)
	}
	return nil
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	lat, err := cfg.BuildLattice()
	if err != nil {
		return err
	}
	ps, err := cfg.BuildBunch()
	if err != nil {
		return err
	}

	p := tea.NewProgram(viz.NewModel(lat, ps))
	if _, err := p.Run(); err != nil {
		return err
	}
	return nil
}

func listRuns(cmd *cobra.Command, args []string) error {
	st, err := storage.Open(dataDir)
	if err != nil {
		return err
	}
	defer st.Close()

	runs, err := st.List()
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tLATTICE\tTIME\tTURNS\tPARTICLES\tSURVIVORS\tSEED")
	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%d\t%d\n",
			run.ID,
			run.Lattice,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Turns,
			run.Particles,
			run.Survivors,
			run.Seed,
		)
	}
	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st, err := storage.Open(dataDir)
	if err != nil {
		return err
	}
	defer st.Close()

	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	td, err := st.LoadTurns(runID)
	if err != nil {
		return err
	}
	if td.Len() == 0 {
		return fmt.Errorf("no data to plot")
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("lattice: %s\n", meta.Lattice)
	fmt.Printf("turns: %d\n\n", td.Len())

	names := []string{"alive", "std_x", "std_y", "emit_x", "emit_y"}
	if series != "" {
		names = []string{series}
	}

	for _, name := range names {
		vals, err := td.Select(name)
		if err != nil {
			return err
		}
		graph := asciigraph.Plot(vals,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(name),
		)
		fmt.Println(graph)
		fmt.Println()
	}
	return nil
}

func reportRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st, err := storage.Open(dataDir)
	if err != nil {
		return err
	}
	defer st.Close()

	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	td, err := st.LoadTurns(runID)
	if err != nil {
		return err
	}

	out := reportOut
	if out == "" {
		out = runID + ".html"
	}
	f, err := os.Create(out)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := report.Tracking(f, meta, td); err != nil {
		return err
	}
	fmt.Printf("wrote %s\n", out)
	return nil
}

func exportCSV(cmd *cobra.Command, args []string) error {
	st, err := storage.Open(dataDir)
	if err != nil {
		return err
	}
	defer st.Close()

	td, err := st.LoadTurns(args[0])
	if err != nil {
		return err
	}
	return storage.WriteCSV(os.Stdout, td)
}

func exportJSON(cmd *cobra.Command, args []string) error {
	st, err := storage.Open(dataDir)
	if err != nil {
		return err
	}
	defer st.Close()

	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}
	td, err := st.LoadTurns(args[0])
	if err != nil {
		return err
	}
	return storage.ExportJSON(os.Stdout, meta, td)
}

func initConfig(cmd *cobra.Command, args []string) error {
	path := "beamkit.yaml"
	if len(args) > 0 {
		path = args[0]
	}

	cfg := config.GetPreset(initPreset)
	if cfg == nil {
		return fmt.Errorf("unknown preset: %s (available: %v)", initPreset, config.ListPresets())
	}
	if err := config.Save(path, cfg); err != nil {
		return err
	}
	fmt.Printf("wrote %s\n", path)
	return nil
}
