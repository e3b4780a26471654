package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/helicalc/busgrid/internal/catalog"
	"github.com/helicalc/busgrid/internal/conductor"
	"github.com/helicalc/busgrid/internal/config"
	"github.com/helicalc/busgrid/internal/failure"
	"github.com/helicalc/busgrid/internal/geometry"
	"github.com/helicalc/busgrid/internal/persist"
	"github.com/helicalc/busgrid/internal/run"
	"github.com/helicalc/busgrid/internal/viz"
)

var (
	configFile  string
	dataDir     string
	geometryDir string
	paramName   string
	verbose     bool

	limit      int
	plotWidth  int
	plotHeight int

	logger *zap.Logger
)

// runOptions are the flags of one computing command. Each command owns
// its own set so flag defaults never leak from one command to another.
type runOptions struct {
	region    string
	device    int
	jacobian  bool
	step      float64
	testing   bool
	infile    string
	full      bool
	tui       bool
	batchSize int

	conductor int
	category  string
	devices   int
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(exitCode(err))
	}
}

// exitCode is 2 for configuration errors and 1 for every other failure.
func exitCode(err error) int {
	if errors.Is(err, failure.ErrConfiguration) {
		return 2
	}
	return 1
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "busgrid",
		Short: "bus-bar field maps on evaluation grids",
		Long: `busgrid computes the magnetic field of a single bus-bar arc, transfer arc
or connector on a named evaluation region and writes the result as one
CSV field map per conductor.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			zc := zap.NewProductionConfig()
			if verbose {
				zc.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
			}
			var err error
			logger, err = zc.Build()
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

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path (yaml)")
	rootCmd.PersistentFlags().StringVar(&dataDir, "data", config.DefaultDataDir, "data directory for field maps")
	rootCmd.PersistentFlags().StringVar(&geometryDir, "geometry", config.DefaultGeometryDir, "directory of geom_v<N>.yaml files")
	rootCmd.PersistentFlags().StringVar(&paramName, "param", config.DefaultParamName, "geometry parameter set name")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	arcOpts := &runOptions{}
	arcCmd := &cobra.Command{
		Use:   "arc",
		Short: "field map of one bus-bar arc (transfer arcs from conductor 25 on)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return computeOne(cmd, arcOpts, conductor.ArcCategory(arcOpts.conductor))
		},
	}
	addRunFlags(arcCmd, arcOpts)
	arcCmd.Flags().IntVarP(&arcOpts.conductor, "conductor", "C", 1, "conductor number")

	connOpts := &runOptions{}
	connectorCmd := &cobra.Command{
		Use:   "connector",
		Short: "field map of one bus-bar connector",
		RunE: func(cmd *cobra.Command, args []string) error {
			return computeOne(cmd, connOpts, geometry.Connector)
		},
	}
	addRunFlags(connectorCmd, connOpts)
	connectorCmd.Flags().IntVarP(&connOpts.conductor, "coil", "C", 56, "connector number")

	runOpts := &runOptions{}
	runCmd := &cobra.Command{
		Use:   "run",
		Short: "field map of one conductor of any category",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := parseCategory(runOpts.category)
			if err != nil {
				return err
			}
			return computeOne(cmd, runOpts, c)
		},
	}
	addRunFlags(runCmd, runOpts)
	runCmd.Flags().StringVar(&runOpts.category, "category", string(geometry.Arc), "arc, arc-transfer or connector")
	runCmd.Flags().IntVarP(&runOpts.conductor, "conductor", "C", 0, "conductor number (0 for the category default)")

	sweepOpts := &runOptions{}
	sweepCmd := &cobra.Command{
		Use:   "sweep [conductor...]",
		Short: "field maps of several conductors, spread over devices",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return sweep(cmd, sweepOpts, args)
		},
	}
	addRunFlags(sweepCmd, sweepOpts)
	sweepCmd.Flags().StringVar(&sweepOpts.category, "category", "", "category for all conductors (default: arcs by number)")
	sweepCmd.Flags().IntVar(&sweepOpts.devices, "devices", 1, "number of devices to run on concurrently")

	regionsCmd := &cobra.Command{
		Use:   "regions",
		Short: "list evaluation regions",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			reg, err := cfg.Registry()
			if err != nil {
				return err
			}
			fmt.Print(viz.RegionTable(reg))
			return nil
		},
	}

	conductorsCmd := &cobra.Command{
		Use:   "conductors",
		Short: "list conductors of the geometry and their sampling resolution",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			t, err := geometry.NewLoader(cfg.GeometryDir).Load(geometry.VersionFromParamName(cfg.ParamName))
			if err != nil {
				return err
			}
			fmt.Print(viz.ConductorTable(t))
			return nil
		},
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list recorded runs",
		RunE:  listRuns,
	}
	listCmd.Flags().IntVarP(&limit, "limit", "n", 20, "maximum number of runs")

	inspectCmd := &cobra.Command{
		Use:   "inspect [artifact.csv]",
		Short: "plot |B| along the rows of a field map",
		Args:  cobra.ExactArgs(1),
		RunE:  inspect,
	}
	inspectCmd.Flags().IntVar(&plotWidth, "width", 70, "plot width")
	inspectCmd.Flags().IntVar(&plotHeight, "height", 12, "plot height")

	rootCmd.AddCommand(arcCmd, connectorCmd, runCmd, sweepCmd, regionsCmd, conductorsCmd, listCmd, inspectCmd)

	return rootCmd
}

func addRunFlags(cmd *cobra.Command, o *runOptions) {
	cmd.Flags().StringVarP(&o.region, "region", "r", config.DefaultRegion, "evaluation region")
	cmd.Flags().IntVarP(&o.device, "device", "D", 0, "device index")
	cmd.Flags().BoolVarP(&o.jacobian, "jacobian", "j", false, "add the six finite-difference neighbours of every point")
	cmd.Flags().Float64VarP(&o.step, "dxyz-jacobian", "d", config.DefaultJacobianStep, "Jacobian step (m)")
	cmd.Flags().BoolVarP(&o.testing, "testing", "t", false, "truncate the grid for a quick test run")
	cmd.Flags().StringVarP(&o.infile, "infile", "i", "", "input grid (CSV with X,Y,Z,HP) for external regions")
	cmd.Flags().BoolVar(&o.full, "full", false, "keep grouping and auxiliary columns")
	cmd.Flags().BoolVar(&o.tui, "tui", false, "show progress in a terminal UI")
	cmd.Flags().IntVar(&o.batchSize, "batch-size", 0, "points per kernel call (0 for the category default)")
}

func parseCategory(s string) (geometry.Category, error) {
	c, err := geometry.ParseCategory(s)
	if err != nil {
		return "", fmt.Errorf("%w: %v", failure.ErrConfiguration, err)
	}
	return c, nil
}

func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if configFile != "" {
		var err error
		if cfg, err = config.Load(configFile); err != nil {
			return nil, fmt.Errorf("%w: failed to load config: %v", failure.ErrConfiguration, err)
		}
	}
	// CLI flags override the config file.
	if configFile == "" || cmd.Flags().Changed("data") {
		cfg.DataDir = dataDir
	}
	if configFile == "" || cmd.Flags().Changed("geometry") {
		cfg.GeometryDir = geometryDir
	}
	if configFile == "" || cmd.Flags().Changed("param") {
		cfg.ParamName = paramName
	}
	if cfg.Catalog != "" && !filepath.IsAbs(cfg.Catalog) {
		cfg.Catalog = filepath.Join(cfg.DataDir, cfg.Catalog)
	}
	return cfg, nil
}

func (o *runOptions) params(c geometry.Category, n int) run.Params {
	cols := persist.Reduced
	if o.full {
		cols = persist.Full
	}
	return run.Params{
		Region:       o.region,
		Category:     c,
		Conductor:    n,
		Device:       o.device,
		Jacobian:     o.jacobian,
		JacobianStep: o.step,
		Testing:      o.testing,
		BatchSize:    o.batchSize,
		InputFile:    o.infile,
		Columns:      cols,
	}
}

// newCoordinator wires the configuration, geometry cache and catalog. The
// returned cleanup closes the catalog.
func newCoordinator(cmd *cobra.Command, log *zap.Logger) (*run.Coordinator, func(), error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, nil, err
	}
	cache := geometry.NewCache(geometry.NewLoader(cfg.GeometryDir))
	coord, err := run.New(cfg, cache, log)
	if err != nil {
		return nil, nil, err
	}

	cleanup := func() {}
	if cfg.Catalog != "" {
		cat, err := catalog.Open(cfg.Catalog)
		if err != nil {
			logger.Warn("run catalog unavailable", zap.String("path", cfg.Catalog), zap.Error(err))
		} else {
			coord.SetCatalog(cat)
			cleanup = func() { cat.Close() }
		}
	}
	return coord, cleanup, nil
}

func computeOne(cmd *cobra.Command, o *runOptions, c geometry.Category) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	log := logger
	if o.tui {
		log = zap.NewNop()
	}
	coord, cleanup, err := newCoordinator(cmd, log)
	if err != nil {
		return err
	}
	defer cleanup()

	plan, err := coord.Plan(o.params(c, o.conductor))
	if err != nil {
		return err
	}

	var out *run.Outcome
	if o.tui {
		out, err = runWithTUI(ctx, coord, plan)
	} else {
		fmt.Println(viz.PlanSummary(plan))
		out, err = coord.Run(ctx, plan)
	}
	if err != nil {
		return err
	}
	fmt.Println(viz.Summary(out))
	return nil
}

type result struct {
	out *run.Outcome
	err error
}

func runWithTUI(ctx context.Context, coord *run.Coordinator, plan *run.Plan) (*run.Outcome, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	prog := tea.NewProgram(viz.NewProgressModel(plan.Artifact))
	coord.AddObserver(viz.Observer(prog))

	done := make(chan result, 1)
	go func() {
		out, err := coord.Run(ctx, plan)
		prog.Send(viz.DoneMsg{Err: err})
		done <- result{out, err}
	}()

	if _, err := prog.Run(); err != nil {
		cancel()
		<-done
		return nil, err
	}
	// Quitting the UI early cancels the run.
	cancel()
	r := <-done
	return r.out, r.err
}

func sweep(cmd *cobra.Command, o *runOptions, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	var fixed geometry.Category
	if o.category != "" {
		c, err := parseCategory(o.category)
		if err != nil {
			return err
		}
		fixed = c
	}

	runs := make([]run.Params, 0, len(args))
	for _, a := range args {
		n, err := strconv.Atoi(a)
		if err != nil {
			return fmt.Errorf("%w: conductor %q is not a number", failure.ErrConfiguration, a)
		}
		c := fixed
		if c == "" {
			c = conductor.ArcCategory(n)
		}
		runs = append(runs, o.params(c, n))
	}

	coord, cleanup, err := newCoordinator(cmd, logger)
	if err != nil {
		return err
	}
	defer cleanup()

	outs, err := coord.Sweep(ctx, runs, o.devices)
	if err != nil {
		return err
	}
	for _, out := range outs {
		fmt.Println(viz.Summary(out))
	}
	return nil
}

func listRuns(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if cfg.Catalog == "" {
		return fmt.Errorf("%w: no run catalog configured", failure.ErrConfiguration)
	}
	cat, err := catalog.Open(cfg.Catalog)
	if err != nil {
		return err
	}
	defer cat.Close()

	runs, err := cat.List(cmd.Context(), limit)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("no runs recorded")
		return nil
	}
	fmt.Print(viz.RunTable(runs))
	return nil
}

func inspect(cmd *cobra.Command, args []string) error {
	t, err := persist.Read(args[0])
	if err != nil {
		return err
	}
	chart, err := viz.Plot(t, plotWidth, plotHeight)
	if err != nil {
		return err
	}

	fmt.Println(viz.Title.Render(filepath.Base(args[0])))
	fmt.Println(viz.Row("Rows", strconv.Itoa(t.Len())))
	fmt.Println(viz.Row("Jacobian", strconv.FormatBool(t.Jacobian)))
	if len(t.AuxColumns) > 0 {
		fmt.Println(viz.Row("Aux", fmt.Sprint(t.AuxColumns)))
	}
	fmt.Println()
	fmt.Println(chart)
	return nil
}
