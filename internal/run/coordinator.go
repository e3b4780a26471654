package run

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/helicalc/busgrid/internal/catalog"
	"github.com/helicalc/busgrid/internal/compute"
	"github.com/helicalc/busgrid/internal/conductor"
	"github.com/helicalc/busgrid/internal/config"
	"github.com/helicalc/busgrid/internal/dispatch"
	"github.com/helicalc/busgrid/internal/failure"
	"github.com/helicalc/busgrid/internal/geometry"
	"github.com/helicalc/busgrid/internal/grid"
	"github.com/helicalc/busgrid/internal/logsink"
	"github.com/helicalc/busgrid/internal/persist"
)

// BackendFunc returns the compute backend for a device.
type BackendFunc func(device int) (compute.Backend, error)

// Outcome describes a finished run.
type Outcome struct {
	RunID    string
	Artifact string
	Path     string
	LogPath  string
	Backend  string
	Rows     int
	Batches  int
	Started  time.Time
	Duration time.Duration
}

type Coordinator struct {
	cfg     *config.Config
	regions grid.Registry
	tables  *geometry.Cache
	writer  *persist.Writer
	logger  *zap.Logger
	level   zapcore.Level

	backend   BackendFunc
	catalog   *catalog.Catalog
	observers []dispatch.Observer
	now       func() time.Time
}

func New(cfg *config.Config, tables *geometry.Cache, logger *zap.Logger) (*Coordinator, error) {
	regions, err := cfg.Registry()
	if err != nil {
		return nil, err
	}
	level := zapcore.InfoLevel
	if cfg.LogLevel != "" {
		if level, err = zapcore.ParseLevel(cfg.LogLevel); err != nil {
			return nil, fmt.Errorf("%w: log level: %v", failure.ErrConfiguration, err)
		}
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	workers := cfg.Workers
	return &Coordinator{
		cfg:     cfg,
		regions: regions,
		tables:  tables,
		writer:  persist.NewWriter(cfg.DataDir),
		logger:  logger,
		level:   level,
		backend: func(device int) (compute.Backend, error) {
			return compute.AutoSelect(device, workers)
		},
		now: time.Now,
	}, nil
}

func (c *Coordinator) SetBackend(f BackendFunc) { c.backend = f }

// SetCatalog makes the coordinator record finished runs in cat.
func (c *Coordinator) SetCatalog(cat *catalog.Catalog) { c.catalog = cat }

// AddObserver registers o for the batch progress of every run. Observers
// are called from concurrent runs during a sweep.
func (c *Coordinator) AddObserver(o dispatch.Observer) { c.observers = append(c.observers, o) }

func (c *Coordinator) Regions() grid.Registry { return c.regions }

// Plan resolves p against the configuration and the geometry table.
func (c *Coordinator) Plan(p Params) (*Plan, error) {
	if p.Category == "" {
		return nil, fmt.Errorf("%w: no conductor category given", failure.ErrConfiguration)
	}
	if _, err := geometry.ParseCategory(string(p.Category)); err != nil {
		return nil, fmt.Errorf("%w: %v", failure.ErrConfiguration, err)
	}
	cc := c.cfg.Category(p.Category)

	if p.ParamName == "" {
		p.ParamName = c.cfg.ParamName
	}
	if p.Region == "" {
		p.Region = config.DefaultRegion
	}
	if p.Conductor == 0 {
		p.Conductor = cc.DefaultConductor
	}
	if p.JacobianStep == 0 {
		p.JacobianStep = c.cfg.JacobianStep
	}
	if p.TestRows == 0 {
		p.TestRows = cc.TestRows
	}
	if p.BatchSize == 0 {
		p.BatchSize = cc.BatchSize
	}

	if p.Device < 0 {
		return nil, fmt.Errorf("%w: negative device index %d", failure.ErrConfiguration, p.Device)
	}
	if p.JacobianStep <= 0 || math.IsNaN(p.JacobianStep) || math.IsInf(p.JacobianStep, 0) {
		return nil, fmt.Errorf("%w: Jacobian step must be positive and finite, got %g", failure.ErrConfiguration, p.JacobianStep)
	}
	if p.BatchSize < 1 || p.TestRows < 1 {
		return nil, fmt.Errorf("%w: batch size %d and test rows %d must be positive", failure.ErrConfiguration, p.BatchSize, p.TestRows)
	}

	region, err := c.regions.Lookup(p.Region)
	if err != nil {
		return nil, err
	}
	if region.Kind == grid.External {
		if p.InputFile == "" {
			return nil, failure.Configf(failure.ErrMissingInput, "region %s needs an input grid file", region.Name)
		}
		if _, err := os.Stat(p.InputFile); err != nil {
			return nil, failure.Configf(failure.ErrMissingInput, "region %s: %v", region.Name, err)
		}
	}

	version := geometry.VersionFromParamName(p.ParamName)
	table, err := c.tables.Get(version)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", failure.ErrConfiguration, err)
	}
	rec, err := conductor.Select(table, p.Category, p.Conductor)
	if err != nil {
		return nil, err
	}
	res, err := conductor.Resolve(rec)
	if err != nil {
		return nil, err
	}

	tag := conductor.Tag(p.Category, p.Conductor)
	outDir := cc.OutputDir
	if p.Testing {
		outDir = filepath.Join(outDir, "tests")
	}

	return &Plan{
		Params:     p,
		Version:    version,
		Region:     region,
		Record:     rec,
		Resolution: res,
		Tag:        tag,
		Label:      cc.Label,
		Artifact:   ArtifactName(p.ParamName, region.Name, p.Testing, cc.Label, p.Jacobian, p.JacobianStep, p.Columns == persist.Full, tag),
		OutputDir:  outDir,
	}, nil
}

// Execute plans and runs p.
func (c *Coordinator) Execute(ctx context.Context, p Params) (*Outcome, error) {
	plan, err := c.Plan(p)
	if err != nil {
		return nil, err
	}
	return c.Run(ctx, plan)
}

// Run executes a plan. Diagnostics go to a log file under the output
// directory; the coordinator's own logger only sees start and end.
func (c *Coordinator) Run(ctx context.Context, plan *Plan) (*Outcome, error) {
	id := uuid.NewString()
	started := c.now()

	logDir := filepath.Join(c.cfg.DataDir, plan.OutputDir, "logs")
	sink, err := logsink.Acquire(logDir, plan.LogName(id), started, c.level,
		zap.String("run_id", id),
		zap.String("artifact", plan.Artifact),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", failure.ErrPersistence, err)
	}
	defer func() {
		if err := sink.Release(); err != nil {
			c.logger.Warn("release run log", zap.String("path", sink.Path()), zap.Error(err))
		}
	}()

	c.logger.Info("run started",
		zap.String("run_id", id),
		zap.String("artifact", plan.Artifact),
		zap.String("log", sink.Path()),
	)

	out, err := c.run(ctx, plan, sink.Logger())
	if err != nil {
		sink.Logger().Error("run failed", zap.Error(err))
		c.logger.Error("run failed", zap.String("run_id", id), zap.Error(err))
		return nil, err
	}

	out.RunID = id
	out.LogPath = sink.Path()
	out.Started = started
	out.Duration = c.now().Sub(started)
	sink.Logger().Info("run finished", zap.Int("rows", out.Rows), zap.Duration("duration", out.Duration))

	if c.catalog != nil {
		rec := catalog.Run{
			ID:        id,
			Artifact:  plan.Artifact,
			ParamName: plan.Params.ParamName,
			Region:    plan.Region.Name,
			Category:  string(plan.Params.Category),
			Conductor: plan.Params.Conductor,
			Testing:   plan.Params.Testing,
			Jacobian:  plan.Params.Jacobian,
			Device:    fmt.Sprintf("%s:%d", out.Backend, plan.Params.Device),
			Rows:      out.Rows,
			Batches:   out.Batches,
			StartedAt: started,
			Duration:  out.Duration,
		}
		if err := c.catalog.Record(ctx, rec); err != nil {
			c.logger.Warn("catalog record", zap.String("run_id", id), zap.Error(err))
		}
	}

	c.logger.Info("run finished",
		zap.String("run_id", id),
		zap.String("path", out.Path),
		zap.Int("rows", out.Rows),
		zap.Duration("duration", out.Duration),
	)
	return out, nil
}

func (c *Coordinator) run(ctx context.Context, plan *Plan, log *zap.Logger) (*Outcome, error) {
	p := plan.Params
	log.Info("plan",
		zap.String("region", plan.Region.Name),
		zap.String("category", string(p.Category)),
		zap.Int("conductor", p.Conductor),
		zap.String("resolution", plan.Resolution.String()),
		zap.Int("batch_size", p.BatchSize),
		zap.Bool("testing", p.Testing),
		zap.Bool("jacobian", p.Jacobian),
	)

	g, err := c.buildGrid(plan)
	if err != nil {
		return nil, err
	}
	log.Info("grid ready", zap.Int("rows", len(g)))

	backend, err := c.backend(p.Device)
	if err != nil {
		if !errors.Is(err, failure.ErrConfiguration) {
			err = fmt.Errorf("%w: select backend: %v", failure.ErrIntegration, err)
		}
		return nil, err
	}
	defer backend.Cleanup()

	integ, err := backend.NewIntegrator(plan.Record, plan.Resolution, p.Device)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", failure.ErrIntegration, err)
	}
	log.Info("backend ready", zap.String("backend", backend.Name()), zap.Int("device", p.Device))

	d := dispatch.New(p.BatchSize)
	d.AddObserver(logObserver(log))
	for _, o := range c.observers {
		d.AddObserver(o)
	}

	table, err := d.Run(ctx, g, integ)
	if err != nil {
		return nil, err
	}
	table.Jacobian = p.Jacobian

	path, err := c.writer.Write(table, plan.Rel(), p.Columns)
	if err != nil {
		return nil, err
	}
	log.Info("artifact written", zap.String("path", path), zap.Stringer("columns", p.Columns))

	spans, _ := dispatch.Partition(len(g), p.BatchSize)
	return &Outcome{
		Artifact: plan.Artifact,
		Path:     path,
		Backend:  backend.Name(),
		Rows:     table.Len(),
		Batches:  len(spans),
	}, nil
}

// buildGrid generates or loads the region grid, then truncates and
// augments it. Truncation comes first so a test run with Jacobians has
// at most 7*TestRows rows.
func (c *Coordinator) buildGrid(plan *Plan) (grid.Grid, error) {
	var (
		g   grid.Grid
		err error
	)
	if plan.Region.Kind == grid.External {
		g, err = grid.LoadExternal(plan.Params.InputFile)
	} else if g, err = grid.Generate(plan.Region); err != nil {
		err = fmt.Errorf("%w: %v", failure.ErrConfiguration, err)
	}
	if err != nil {
		return nil, err
	}

	if plan.Params.Testing {
		g = grid.Truncate(g, plan.Params.TestRows)
	}
	if plan.Params.Jacobian {
		g = grid.AugmentJacobian(g, plan.Params.JacobianStep)
	}
	return g, nil
}

func logObserver(log *zap.Logger) dispatch.Observer {
	return dispatch.ObserverFunc(func(p dispatch.Progress) {
		log.Debug("batch done",
			zap.Int("batch", p.Batch),
			zap.Int("batches", p.Batches),
			zap.Int("points", p.Points),
			zap.Int("total", p.Total),
		)
	})
}
