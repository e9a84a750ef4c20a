package pipeline_test

import (
	"context"
	"errors"
	"io"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/okian/podium/internal/domain/features"
	"github.com/okian/podium/internal/domain/model"
	"github.com/okian/podium/internal/pipeline"
	"github.com/okian/podium/pkg/logger"
)

func init() {
	if err := logger.Init(logger.WithOutput(io.Discard)); err != nil {
		panic(err)
	}
}

func rows() []model.Result {
	mk := func(driver int, team string, round, finish int) model.Result {
		return model.Result{
			DriverID:          driver,
			ConstructorID:     team,
			Season:            2024,
			Round:             round,
			CircuitName:       "Monza",
			GridPosition:      finish,
			FinishPosition:    finish,
			Status:            model.FinishedStatus,
			FastestLapSeconds: math.NaN(),
			QualifyingSeconds: math.NaN(),
		}
	}
	return []model.Result{
		mk(1, "ferrari", 1, 1),
		mk(2, "ferrari", 1, 2),
		mk(1, "ferrari", 2, 3),
		mk(2, "ferrari", 2, 4),
	}
}

func TestNew_StageOrder(t *testing.T) {
	p, err := pipeline.New()
	require.NoError(t, err)

	order := p.Stages()
	require.Len(t, order, 6)
	assert.Equal(t, pipeline.StageValidate, order[0])
	assert.Equal(t, pipeline.StageNormalize, order[1])
	assert.ElementsMatch(t, []string{pipeline.StageDriverForm, pipeline.StageTeamPace}, order[2:4])
	assert.Equal(t, pipeline.StageRaceContext, order[4])
	assert.Equal(t, pipeline.StageAssemble, order[5])
}

func TestNew_UnknownDependency(t *testing.T) {
	_, err := pipeline.New(pipeline.WithStage(pipeline.Stage{
		ID:        "export",
		DependsOn: []string{"missing"},
		Run:       func(context.Context, *pipeline.State) error { return nil },
	}))
	require.Error(t, err)
	assert.True(t, errors.Is(err, pipeline.ErrUnknownStage))
}

func TestNew_DuplicateStage(t *testing.T) {
	_, err := pipeline.New(pipeline.WithStage(pipeline.Stage{
		ID:  pipeline.StageValidate,
		Run: func(context.Context, *pipeline.State) error { return nil },
	}))
	require.Error(t, err)
	assert.True(t, errors.Is(err, pipeline.ErrInvalidGraph))
}

func TestNew_InvalidWindows(t *testing.T) {
	_, err := pipeline.New(pipeline.WithWindows(features.Windows{Short: 5, Long: 0}))
	require.Error(t, err)
	assert.True(t, errors.Is(err, features.ErrInvalidWindow))
}

func TestRun(t *testing.T) {
	var seen int
	p, err := pipeline.New(
		pipeline.WithWindows(features.Windows{Short: 1, Long: 1}),
		pipeline.WithStage(pipeline.Stage{
			ID:        "count",
			DependsOn: []string{pipeline.StageAssemble},
			Run: func(_ context.Context, st *pipeline.State) error {
				seen = len(st.Records)
				return nil
			},
		}),
	)
	require.NoError(t, err)
	assert.Equal(t, "count", p.Stages()[len(p.Stages())-1])

	res, err := p.Run(context.Background(), rows(), features.RawDurations{
		FastestLap: []string{"1:30.100", "1:30.500", "bad", ""},
	})
	require.NoError(t, err)

	assert.NotEmpty(t, res.RunID)
	assert.Len(t, res.Records, 4)
	assert.Equal(t, 4, seen)
	assert.Equal(t, 1, res.Report.Failures[model.ColFastestLap])
	assert.Equal(t, "2024_2", res.Records[2].RaceID)

	// Window of one prior race.
	assert.Equal(t, 1.0, res.Records[2].AvgFinishPositionL5)
	assert.Equal(t, 2.0, res.Records[3].AvgFinishPositionL5)
	assert.Equal(t, 1.0, res.Records[3].OverallReliabilityRateL22)
	assert.Equal(t, 2, res.Missing[model.ColAvgFinishPositionL5])
}

func TestRun_StructuralError(t *testing.T) {
	p, err := pipeline.New()
	require.NoError(t, err)

	in := rows()
	in[1].DriverID = 1

	_, err = p.Run(context.Background(), in, features.RawDurations{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, features.ErrDuplicateKey))
	assert.Contains(t, err.Error(), pipeline.StageValidate)
}

func TestRun_Cancelled(t *testing.T) {
	p, err := pipeline.New()
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = p.Run(ctx, rows(), features.RawDurations{})
	assert.ErrorIs(t, err, context.Canceled)
}
