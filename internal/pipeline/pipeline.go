// Package pipeline runs the feature stages as a dependency graph.
//
// Built-in graph:
//
//	validate -> normalize -> driver_form  -> race_context -> assemble
//	                      -> team_pace   ->
package pipeline

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/heimdalr/dag"

	"github.com/okian/podium/internal/domain/features"
	"github.com/okian/podium/internal/domain/model"
	"github.com/okian/podium/pkg/logger"
	"github.com/okian/podium/pkg/metrics"
)

// Stage IDs.
const (
	StageValidate    = "validate"
	StageNormalize   = "normalize"
	StageDriverForm  = "driver_form"
	StageTeamPace    = "team_pace"
	StageRaceContext = "race_context"
	StageAssemble    = "assemble"
)

// Run outcomes for metrics.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

// State is the mutable run state handed to each stage.
type State struct {
	RunID   string
	Windows features.Windows
	Frame   *features.Frame
	Report  features.NormalizeReport
	Records []model.FeatureRecord
}

// Stage is one vertex of the graph.
type Stage struct {
	ID        string
	DependsOn []string
	Run       func(ctx context.Context, st *State) error
}

// Result is the outcome of a successful run.
type Result struct {
	RunID    string
	Records  []model.FeatureRecord
	Report   features.NormalizeReport
	Missing  map[string]int
	Duration time.Duration
}

// Pipeline executes stages in dependency order.
type Pipeline struct {
	windows features.Windows
	log     logger.Logger
	extra   []Stage

	graph  *dag.DAG
	stages map[string]Stage
	order  []string
}

// New builds the stage graph. It fails on unknown dependencies or cycles.
func New(opts ...Option) (*Pipeline, error) {
	p := &Pipeline{
		windows: features.DefaultWindows(),
		log:     logger.Get().Named("pipeline"),
	}
	for _, opt := range opts {
		opt(p)
	}
	if err := p.windows.Validate(); err != nil {
		return nil, err
	}

	all := append(builtinStages(), p.extra...)
	if err := p.buildGraph(all); err != nil {
		return nil, err
	}
	return p, nil
}

func builtinStages() []Stage {
	return []Stage{
		{ID: StageValidate, Run: func(_ context.Context, st *State) error {
			return features.Validate(st.Frame)
		}},
		{ID: StageNormalize, DependsOn: []string{StageValidate}, Run: func(_ context.Context, st *State) error {
			st.Report = features.Normalize(st.Frame)
			return nil
		}},
		{ID: StageDriverForm, DependsOn: []string{StageNormalize}, Run: func(_ context.Context, st *State) error {
			return features.DriverForm(st.Frame, st.Windows)
		}},
		{ID: StageTeamPace, DependsOn: []string{StageNormalize}, Run: func(_ context.Context, st *State) error {
			return features.TeamPace(st.Frame, st.Windows)
		}},
		{ID: StageRaceContext, DependsOn: []string{StageDriverForm, StageTeamPace}, Run: func(_ context.Context, st *State) error {
			features.RaceContext(st.Frame)
			return nil
		}},
		{ID: StageAssemble, DependsOn: []string{StageRaceContext}, Run: func(_ context.Context, st *State) error {
			st.Records = features.Assemble(st.Frame)
			return nil
		}},
	}
}

func (p *Pipeline) buildGraph(stages []Stage) error {
	p.graph = dag.NewDAG()
	p.stages = make(map[string]Stage, len(stages))

	for _, s := range stages {
		if err := p.graph.AddVertexByID(s.ID, s.ID); err != nil {
			return fmt.Errorf("%w: add stage %s: %w", ErrInvalidGraph, s.ID, err)
		}
		p.stages[s.ID] = s
	}

	// Edges run dependency -> dependent.
	for _, s := range stages {
		for _, dep := range s.DependsOn {
			if _, ok := p.stages[dep]; !ok {
				return fmt.Errorf("%w: %s depends on %s", ErrUnknownStage, s.ID, dep)
			}
			if err := p.graph.AddEdge(dep, s.ID); err != nil {
				return fmt.Errorf("%w: %s -> %s: %w", ErrInvalidGraph, dep, s.ID, err)
			}
		}
	}

	order, err := p.topoOrder()
	if err != nil {
		return err
	}
	p.order = order
	return nil
}

// topoOrder sorts stages by their number of transitive dependencies, then by
// id. A stage always has strictly more ancestors than any of its ancestors.
func (p *Pipeline) topoOrder() ([]string, error) {
	depth := make(map[string]int, len(p.stages))
	for id := range p.graph.GetVertices() {
		ancestors, err := p.graph.GetAncestors(id)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrInvalidGraph, id, err)
		}
		depth[id] = len(ancestors)
	}

	order := make([]string, 0, len(depth))
	for id := range depth {
		order = append(order, id)
	}
	sort.Slice(order, func(i, j int) bool {
		if depth[order[i]] != depth[order[j]] {
			return depth[order[i]] < depth[order[j]]
		}
		return order[i] < order[j]
	})
	return order, nil
}

// Stages returns the stage ids in execution order.
func (p *Pipeline) Stages() []string {
	out := make([]string, len(p.order))
	copy(out, p.order)
	return out
}

// Run executes every stage on rows and returns the feature records in input
// order. rows is modified in place: race ids are filled and durations parsed.
func (p *Pipeline) Run(ctx context.Context, rows []model.Result, raw features.RawDurations) (*Result, error) {
	start := time.Now()
	st := &State{
		RunID:   uuid.NewString(),
		Windows: p.windows,
		Frame:   features.NewFrame(rows, raw),
	}
	log := p.log.With(logger.String("run_id", st.RunID))

	metrics.RecordRowsIngested(len(rows))
	log.Info(ctx, "pipeline run started", logger.Int("rows", len(rows)))

	for _, id := range p.order {
		if err := ctx.Err(); err != nil {
			return nil, p.fail(ctx, log, id, start, err)
		}

		stageStart := time.Now()
		if err := p.stages[id].Run(ctx, st); err != nil {
			return nil, p.fail(ctx, log, id, start, fmt.Errorf("stage %s: %w", id, err))
		}
		elapsed := time.Since(stageStart)
		metrics.RecordStageDuration(id, elapsed)
		log.Debug(ctx, "stage done", logger.String("stage", id), logger.Duration("elapsed", elapsed))
	}

	for column, n := range st.Report.Failures {
		metrics.RecordDurationParseFailures(column, n)
		if n > 0 {
			log.Debug(ctx, "unparseable durations", logger.String("column", column), logger.Int("count", n))
		}
	}

	missing := features.MissingCounts(st.Records)
	for feature, n := range missing {
		metrics.RecordMissingFeatureValues(feature, n)
	}

	elapsed := time.Since(start)
	metrics.RecordRowsEmitted(len(st.Records))
	metrics.RecordPipelineRun(OutcomeSuccess, elapsed)
	metrics.UpdateLastRunRows(len(st.Records))
	log.Info(ctx, "pipeline run finished",
		logger.Int("rows", len(st.Records)),
		logger.Int("duration_parse_failures", st.Report.Total()),
		logger.Duration("elapsed", elapsed))

	return &Result{
		RunID:    st.RunID,
		Records:  st.Records,
		Report:   st.Report,
		Missing:  missing,
		Duration: elapsed,
	}, nil
}

func (p *Pipeline) fail(ctx context.Context, log logger.Logger, stage string, start time.Time, err error) error {
	metrics.RecordPipelineRun(OutcomeFailure, time.Since(start))
	metrics.RecordErrorByComponent("pipeline", stage)
	log.Error(ctx, "pipeline run failed", logger.String("stage", stage), logger.Error(err))
	return err
}

// Features runs the pipeline and returns only the records.
func (p *Pipeline) Features(ctx context.Context, rows []model.Result, raw features.RawDurations) ([]model.FeatureRecord, error) {
	res, err := p.Run(ctx, rows, raw)
	if err != nil {
		return nil, err
	}
	return res.Records, nil
}
