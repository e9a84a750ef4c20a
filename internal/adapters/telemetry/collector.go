package telemetry

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/okian/podium/internal/adapters/mq/queue"
	"github.com/okian/podium/internal/adapters/mq/worker"
	"github.com/okian/podium/internal/domain/duration"
	"github.com/okian/podium/internal/domain/model"
	"github.com/okian/podium/pkg/logger"
	"github.com/okian/podium/pkg/metrics"
)

// Attempt outcomes for metrics.
const (
	outcomeSuccess = "success"
	outcomeFailure = "failure"
)

// Collector walks season calendars and turns each race weekend into result rows.
type Collector struct {
	provider   Provider
	maxRetries int
	retryDelay time.Duration
	workers    int
	log        logger.Logger
}

// eventJob is one race weekend and its position in the season calendar.
type eventJob struct {
	index int
	event Event
}

// NewCollector creates a Collector with 3 attempts, a 2s pause and one
// race weekend in flight at a time.
func NewCollector(p Provider, opts ...Option) *Collector {
	c := &Collector{
		provider:   p,
		maxRetries: 3,
		retryDelay: 2 * time.Second,
		workers:    1,
		log:        logger.Get().Named("telemetry"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Collect gathers every race of seasons [start, end]. Races whose sessions
// stay unavailable after the retries are skipped with a warning.
func (c *Collector) Collect(ctx context.Context, start, end int) ([]model.Result, error) {
	if end < start {
		return nil, fmt.Errorf("%w: %d..%d", ErrInvalidSeasons, start, end)
	}

	var rows []model.Result
	for season := start; season <= end; season++ {
		got, err := c.CollectSeason(ctx, season)
		if err != nil {
			return nil, err
		}
		rows = append(rows, got...)
	}
	model.FillConstructorIDs(rows)
	return rows, nil
}

// CollectSeason gathers one season.
func (c *Collector) CollectSeason(ctx context.Context, season int) ([]model.Result, error) {
	var events []Event
	err := c.retry(ctx, SessionSchedule, fmt.Sprintf("season %d", season), func(ctx context.Context) error {
		var err error
		events, err = c.provider.Schedule(ctx, season)
		return err
	})
	if err != nil {
		return nil, err
	}
	c.log.Info(ctx, "season schedule loaded", logger.Int("season", season), logger.Int("events", len(events)))

	loaded, errs, err := c.collectEvents(ctx, events)
	if err != nil {
		return nil, err
	}

	var rows []model.Result
	for i, ev := range events {
		got := loaded[i]
		if err := errs[i]; err != nil {
			metrics.RecordRaceSkipped()
			c.log.Warn(ctx, "skipping race",
				logger.String("race_id", ev.Key.ID()),
				logger.String("event", ev.Name),
				logger.Int("attempts", c.maxRetries),
				logger.Error(err))
			continue
		}
		if len(got) == 0 {
			c.log.Info(ctx, "no results yet", logger.String("race_id", ev.Key.ID()), logger.String("event", ev.Name))
			continue
		}
		metrics.RecordRaceCollected()
		rows = append(rows, got...)
	}
	return rows, nil
}

// collectEvents loads every event on a worker pool. Results keep calendar
// order regardless of which worker finished first.
func (c *Collector) collectEvents(ctx context.Context, events []Event) ([][]model.Result, []error, error) {
	loaded := make([][]model.Result, len(events))
	errs := make([]error, len(events))
	if len(events) == 0 {
		return loaded, errs, nil
	}

	q := queue.NewInMemoryQueue[eventJob](queue.WithCapacity(len(events)))
	for i, ev := range events {
		if !q.Enqueue(ctx, eventJob{index: i, event: ev}) {
			return nil, nil, ctx.Err()
		}
	}

	pool := worker.NewPool[eventJob](min(c.workers, len(events)), q,
		func(ctx context.Context, j eventJob) error {
			loaded[j.index], errs[j.index] = c.collectEvent(ctx, j.event)
			return errs[j.index]
		},
		worker.WithName("telemetry"),
		worker.WithLogger(c.log),
	)
	pool.Start(ctx)
	if err := pool.Wait(ctx); err != nil {
		return nil, nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}
	return loaded, errs, nil
}

func (c *Collector) collectEvent(ctx context.Context, ev Event) ([]model.Result, error) {
	label := ev.Key.ID() + " " + ev.Name

	var race []RaceEntry
	if err := c.retry(ctx, SessionRace, label, func(ctx context.Context) error {
		var err error
		race, err = c.provider.RaceResults(ctx, ev)
		return err
	}); err != nil {
		return nil, err
	}
	if len(race) == 0 {
		return nil, nil
	}

	var quali []QualifyingEntry
	if err := c.retry(ctx, SessionQualifying, label, func(ctx context.Context) error {
		var err error
		quali, err = c.provider.QualifyingResults(ctx, ev)
		return err
	}); err != nil {
		return nil, err
	}
	return Merge(ev, race, quali), nil
}

// retry runs fn up to maxRetries times, pausing between failures.
func (c *Collector) retry(ctx context.Context, session, label string, fn func(context.Context) error) error {
	var err error
	for attempt := 1; attempt <= c.maxRetries; attempt++ {
		if err = fn(ctx); err == nil {
			metrics.RecordAcquisitionAttempt(session, outcomeSuccess)
			return nil
		}
		metrics.RecordAcquisitionAttempt(session, outcomeFailure)
		c.log.Warn(ctx, "session load failed",
			logger.String("session", session),
			logger.String("target", label),
			logger.Int("attempt", attempt),
			logger.Error(err))

		if attempt == c.maxRetries {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(c.retryDelay):
		}
	}
	return fmt.Errorf("%w: %s %s after %d attempts: %w", ErrSessionUnavailable, session, label, c.maxRetries, err)
}

// Merge joins race and qualifying entries on driver number. The qualifying
// time is the fastest of Q1..Q3; the grid comes from the qualifying position
// and falls back to the race grid.
func Merge(ev Event, race []RaceEntry, quali []QualifyingEntry) []model.Result {
	byDriver := make(map[int]QualifyingEntry, len(quali))
	for _, q := range quali {
		byDriver[q.DriverNumber] = q
	}

	out := make([]model.Result, 0, len(race))
	for _, r := range race {
		row := model.Result{
			DriverID:          r.DriverNumber,
			DriverCode:        r.DriverCode,
			ConstructorID:     r.ConstructorID,
			ConstructorName:   r.ConstructorName,
			Season:            ev.Key.Season,
			Round:             ev.Key.Round,
			RaceID:            ev.Key.ID(),
			CircuitName:       ev.Name,
			GridPosition:      r.Grid,
			FinishPosition:    r.Position,
			Status:            r.Status,
			QualifyingSeconds: math.NaN(),
		}
		row.FastestLapSeconds, _ = duration.Seconds(r.FastestLap)

		if q, ok := byDriver[r.DriverNumber]; ok {
			row.QualifyingSeconds = bestQualifying(q)
			if q.Position > 0 {
				row.GridPosition = q.Position
			}
			if row.ConstructorID == "" {
				row.ConstructorID = q.ConstructorID
			}
		}
		out = append(out, row)
	}
	return out
}

func bestQualifying(q QualifyingEntry) float64 {
	best := math.NaN()
	for _, raw := range []string{q.Q1, q.Q2, q.Q3} {
		v, ok := duration.Seconds(raw)
		if ok && (math.IsNaN(best) || v < best) {
			best = v
		}
	}
	return best
}
