// Package service ties the feature pipeline, table I/O and acquisition
// together behind the operations exposed by the CLI and the HTTP API.
package service

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/okian/podium/internal/adapters/http/api"
	"github.com/okian/podium/internal/adapters/http/swagger"
	"github.com/okian/podium/internal/adapters/table"
	"github.com/okian/podium/internal/adapters/telemetry"
	"github.com/okian/podium/internal/config"
	"github.com/okian/podium/internal/domain/encoding"
	"github.com/okian/podium/internal/domain/features"
	"github.com/okian/podium/internal/domain/model"
	"github.com/okian/podium/internal/domain/podium"
	"github.com/okian/podium/internal/domain/split"
	"github.com/okian/podium/internal/domain/upcoming"
	"github.com/okian/podium/internal/pipeline"
	"github.com/okian/podium/internal/synth"
	"github.com/okian/podium/pkg/logger"
)

// Prepared dataset file names.
const (
	FileXTrain     = "X_train.csv"
	FileYTrain     = "y_train.csv"
	FileXVal       = "X_val.csv"
	FileYVal       = "y_val.csv"
	FileXTest      = "X_test.csv"
	FileYTest      = "y_test.csv"
	FileVocabulary = "circuits.txt"

	directoryPermission = 0o750
)

// Service runs the podium operations with one configuration.
type Service struct {
	mu sync.RWMutex

	cfg      *config.Config
	logger   logger.Logger
	provider telemetry.Provider
	pipeline *pipeline.Pipeline

	started bool

	// Last feature run, for /stats.
	runs     int
	failures int
	lastRun  *pipeline.Result
	lastAt   time.Time
}

// New constructs a Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		cfg: config.New(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start builds the pipeline and the telemetry provider.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.logger == nil {
		s.logger = logger.Get()
	}

	p, err := pipeline.New(
		pipeline.WithWindows(s.windows()),
		pipeline.WithLogger(s.logger),
	)
	if err != nil {
		return err
	}
	s.pipeline = p

	if s.provider == nil {
		s.provider = telemetry.NewErgastProvider(s.cfg.TelemetryBaseURL,
			telemetry.WithTimeout(time.Duration(s.cfg.TelemetryTimeoutMS)*time.Millisecond),
		)
	}

	s.started = true
	s.logger.Info(ctx, "podium service started",
		logger.Int("shortWindow", s.cfg.ShortWindow),
		logger.Int("longWindow", s.cfg.LongWindow),
		logger.Any("stages", p.Stages()),
	)
	return nil
}

// Stop releases the service; it can be started again.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}
	s.started = false
	s.logger.Info(context.Background(), "podium service stopped")
}

func (s *Service) windows() features.Windows {
	return features.Windows{Short: s.cfg.ShortWindow, Long: s.cfg.LongWindow}
}

func (s *Service) policy() podium.Policy {
	return podium.Policy{Threshold: s.cfg.PodiumThreshold, Size: s.cfg.PodiumSize}
}

func (s *Service) runner() (*pipeline.Pipeline, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return nil, ErrNotStarted
	}
	return s.pipeline, nil
}

// Features runs the pipeline over rows and records the run for GetStats.
func (s *Service) Features(ctx context.Context, rows []model.Result, raw features.RawDurations) ([]model.FeatureRecord, error) {
	p, err := s.runner()
	if err != nil {
		return nil, err
	}

	res, err := p.Run(ctx, rows, raw)

	s.mu.Lock()
	s.runs++
	if err != nil {
		s.failures++
	} else {
		s.lastRun = res
		s.lastAt = time.Now()
	}
	s.mu.Unlock()

	if err != nil {
		return nil, err
	}
	return res.Records, nil
}

// BuildFeatures reads a results table from in and writes the feature table to out.
func (s *Service) BuildFeatures(ctx context.Context, in io.Reader, out io.Writer) (int, error) {
	res, err := table.ReadResults(in)
	if err != nil {
		return 0, err
	}
	records, err := s.Features(ctx, res.Rows, res.Raw)
	if err != nil {
		return 0, err
	}
	if err := table.WriteFeatures(out, records, res.ExtraColumns); err != nil {
		return 0, err
	}
	return len(records), nil
}

// Prepare reads a feature table, splits it chronologically and writes the
// model matrices and the circuit vocabulary into dir.
func (s *Service) Prepare(ctx context.Context, in io.Reader, dir string) (*split.Dataset, error) {
	records, _, err := table.ReadFeatures(in)
	if err != nil {
		return nil, err
	}
	ds, err := split.Prepare(records, split.Boundaries{Train: s.cfg.TrainRows, Validation: s.cfg.ValidationRows})
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(dir, directoryPermission); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrWriteOutput, dir, err)
	}
	parts := []struct {
		x, y string
		part *split.Part
	}{
		{FileXTrain, FileYTrain, &ds.Train},
		{FileXVal, FileYVal, &ds.Validation},
		{FileXTest, FileYTest, &ds.Test},
	}
	for _, p := range parts {
		part := p.part
		if err := writeFile(filepath.Join(dir, p.x), func(w io.Writer) error {
			return table.WriteMatrix(w, ds.Columns, part.X)
		}); err != nil {
			return nil, err
		}
		if err := writeFile(filepath.Join(dir, p.y), func(w io.Writer) error {
			return table.WriteTarget(w, model.ColIsPodium, part.Y)
		}); err != nil {
			return nil, err
		}
	}
	if err := writeFile(filepath.Join(dir, FileVocabulary), func(w io.Writer) error {
		return table.WriteVocabulary(w, model.ColCircuitName, ds.Encoder.Vocabulary())
	}); err != nil {
		return nil, err
	}

	s.log().Info(ctx, "prepared datasets",
		logger.String("dir", dir),
		logger.Int("train", ds.Train.Len()),
		logger.Int("validation", ds.Validation.Len()),
		logger.Int("test", ds.Test.Len()),
		logger.Int("circuits", ds.Encoder.Len()),
	)
	return ds, nil
}

// UpcomingRequest names the inputs for an upcoming race.
type UpcomingRequest struct {
	History    io.Reader
	Qualifying io.Reader
	Vocabulary io.Reader
	Race       upcoming.Race
}

// Upcoming builds the prediction rows for a race that has not run and
// writes them with driver_id, driver_code and race_id leading.
func (s *Service) Upcoming(ctx context.Context, req UpcomingRequest, out io.Writer) (*upcoming.Input, error) {
	hist, err := table.ReadResults(req.History)
	if err != nil {
		return nil, err
	}
	report := features.Normalize(features.NewFrame(hist.Rows, hist.Raw))

	qualifiers, err := table.ReadQualifying(req.Qualifying)
	if err != nil {
		return nil, err
	}
	vocab, err := table.ReadVocabulary(req.Vocabulary)
	if err != nil {
		return nil, err
	}
	enc, err := encoding.FromVocabulary(vocab)
	if err != nil {
		return nil, err
	}

	input, err := upcoming.Build(ctx, s, hist.Rows, qualifiers, req.Race, enc)
	if err != nil {
		return nil, err
	}
	for _, driver := range input.UnknownConstructors {
		s.log().Warn(ctx, "qualifier has no known constructor; imputing team features",
			logger.Int("driver_id", driver))
	}
	if input.UnknownCircuit {
		s.log().Warn(ctx, "circuit not in vocabulary; encoding as all zeros",
			logger.String("circuit", req.Race.Circuit))
	}
	for col, n := range input.Imputed {
		s.log().Info(ctx, "imputed column median", logger.String("column", col), logger.Int("cells", n))
	}
	if report.Total() > 0 {
		s.log().Warn(ctx, "history has unparseable durations", logger.Int("cells", report.Total()))
	}

	n := len(input.Records)
	ids, codes, races := make([]string, n), make([]string, n), make([]string, n)
	for i := range input.Records {
		r := &input.Records[i]
		ids[i] = strconv.Itoa(r.DriverID)
		codes[i] = r.DriverCode
		races[i] = r.RaceID
	}
	if err := table.WriteMatrix(out, input.Columns, input.X,
		table.Column{Name: model.ColDriverID, Values: ids},
		table.Column{Name: model.ColDriverCode, Values: codes},
		table.Column{Name: model.ColRaceID, Values: races},
	); err != nil {
		return nil, err
	}
	return input, nil
}

// Select reads scored rows and writes the predicted podium.
func (s *Service) Select(ctx context.Context, in io.Reader, out io.Writer) ([]podium.Entry, error) {
	entries, err := table.ReadPredictions(in)
	if err != nil {
		return nil, err
	}
	picked, err := podium.Select(entries, s.policy())
	if err != nil {
		return nil, err
	}
	s.log().Debug(ctx, "selected podium", logger.Int("entries", len(entries)), logger.Int("picked", len(picked)))
	return picked, table.WriteSelection(out, picked)
}

// Evaluate scores labelled predictions.
func (s *Service) Evaluate(ctx context.Context, in io.Reader) (podium.Report, error) {
	entries, err := table.ReadPredictions(in)
	if err != nil {
		return podium.Report{}, err
	}
	report, err := podium.Evaluate(entries, s.policy())
	if err != nil {
		return podium.Report{}, err
	}
	s.log().Info(ctx, "evaluated predictions",
		logger.Int("entries", report.Entries),
		logger.Int("races", report.Races),
		logger.Float64("rocAUC", report.ROCAUC),
		logger.Float64("podiumHitRate", report.PodiumHitRate),
	)
	return report, nil
}

// Fetch collects the configured seasons and writes them as a results table.
func (s *Service) Fetch(ctx context.Context, out io.Writer) (int, error) {
	s.mu.RLock()
	started, provider := s.started, s.provider
	s.mu.RUnlock()
	if !started {
		return 0, ErrNotStarted
	}

	c := telemetry.NewCollector(provider,
		telemetry.WithMaxRetries(s.cfg.TelemetryMaxRetries),
		telemetry.WithRetryDelay(time.Duration(s.cfg.TelemetryRetryDelayMS)*time.Millisecond),
		telemetry.WithLogger(s.log()),
		telemetry.WithWorkers(s.cfg.TelemetryWorkers),
	)
	rows, err := c.Collect(ctx, s.cfg.StartSeason, s.cfg.EndSeason)
	if err != nil {
		return 0, err
	}
	return len(rows), table.WriteResults(out, rows, nil)
}

// Generate writes synthetic seasons as a raw results table.
func (s *Service) Generate(ctx context.Context, cfg synth.Config, out io.Writer) (int, error) {
	gen, err := synth.Generate(ctx, cfg)
	if err != nil {
		return 0, err
	}
	return len(gen.Rows), table.WriteRawResults(out, &table.Results{Rows: gen.Rows, Raw: gen.Raw})
}

// Register attaches the API and its docs to mux.
func (s *Service) Register(ctx context.Context, mux *http.ServeMux) {
	swagger.Register(ctx, mux)
	api.NewServer(s, s, s.policy()).Register(ctx, mux)
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]any{
		"started":      s.started,
		"shortWindow":  s.cfg.ShortWindow,
		"longWindow":   s.cfg.LongWindow,
		"runs":         s.runs,
		"failedRuns":   s.failures,
		"podiumPolicy": map[string]any{"threshold": s.cfg.PodiumThreshold, "size": s.cfg.PodiumSize},
	}
	if s.lastRun != nil {
		stats["lastRun"] = map[string]any{
			"runId":         s.lastRun.RunID,
			"rows":          len(s.lastRun.Records),
			"missing":       s.lastRun.Missing,
			"parseFailures": s.lastRun.Report.Total(),
			"durationMs":    s.lastRun.Duration.Milliseconds(),
			"at":            s.lastAt.UTC().Format(time.RFC3339),
		}
	}
	return stats
}

func (s *Service) log() logger.Logger {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.logger == nil {
		return logger.Get()
	}
	return s.logger
}

func writeFile(path string, fn func(io.Writer) error) (err error) {
	f, err := os.Create(path) //nolint:gosec // path comes from the operator
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrWriteOutput, path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("%w: %s: %w", ErrWriteOutput, path, cerr)
		}
	}()
	return fn(f)
}
