package measure_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/askiada/go-lazypipe/pkg/pipeline"
	"github.com/askiada/go-lazypipe/pkg/pipeline/measure"
	"github.com/askiada/go-lazypipe/pkg/pipeline/model"
)

func TestDefaultMetric(t *testing.T) {
	t.Parallel()

	msr := measure.NewDefaultMeasure()
	mt := msr.AddMetric("stage", 1)

	assert.Zero(t, mt.AVGDuration())

	mt.AddDuration(2 * time.Millisecond)
	mt.AddDuration(4 * time.Millisecond)
	mt.AddTransportDuration("parent", 10*time.Millisecond)
	mt.AddTransportDuration("parent", 20*time.Millisecond)
	mt.SetTotalDuration(time.Second)

	assert.Equal(t, int64(2), mt.Total())
	assert.Equal(t, 3*time.Millisecond, mt.AVGDuration())
	assert.Equal(t, time.Second, mt.GetTotalDuration())

	// averages are computed on a copy, asking twice gives the same answer
	for range 2 {
		transports := mt.AVGTransportDuration()
		require.Contains(t, transports, "parent")
		assert.Equal(t, 15*time.Millisecond, transports["parent"].Elapsed)
	}

	assert.Same(t, mt, msr.GetMetric("stage"))
	assert.Nil(t, msr.GetMetric("unknown"))
	assert.Len(t, msr.AllMetrics(), 1)
}

func TestPipelineMeasure(t *testing.T) {
	t.Parallel()

	msr := measure.NewDefaultMeasure()

	pipe, err := pipeline.From[int]([]int{1, 2, 3, 4}, measure.PipelineMeasure(msr))
	require.NoError(t, err)

	evens := pipe.Filter(func(_ context.Context, n int) (bool, error) {
		return n%2 == 0, nil
	})

	sum, err := pipeline.Reduce(t.Context(), evens, func(_ context.Context, acc, n int) (int, error) {
		return acc + n, nil
	}, 0)
	require.NoError(t, err)
	assert.Equal(t, 6, sum)

	metrics := msr.AllMetrics()
	assert.Len(t, metrics, 5)
	require.Contains(t, metrics, model.StartStage.Name)
	require.Contains(t, metrics, model.EndStage.Name)

	assert.Equal(t, int64(4), metrics["source-1"].Total())
	assert.Equal(t, int64(2), metrics["filter-2"].Total())
	assert.Equal(t, int64(2), metrics["reduce-3"].Total())
	assert.Contains(t, metrics["filter-2"].AVGTransportDuration(), "source-1")
	assert.Contains(t, metrics["reduce-3"].AVGTransportDuration(), "filter-2")
	assert.Positive(t, metrics["reduce-3"].GetTotalDuration())
}

func TestPipelineMeasureUnknownStage(t *testing.T) {
	t.Parallel()

	opt := measure.PipelineMeasure(measure.NewDefaultMeasure())
	stage := model.NewStageInfo(model.MapStageKind, "never-prepared")

	require.NoError(t, opt.OnStageOutput(model.StartStage, stage, time.Millisecond, time.Millisecond))
	require.NoError(t, opt.AfterSink(stage, time.Millisecond, nil))
}
