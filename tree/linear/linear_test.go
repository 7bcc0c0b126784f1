package linear

import (
	"context"
	"testing"

	"github.com/jay-ng-mc/river/dataset"
	"github.com/jay-ng-mc/river/feature"
	"github.com/stretchr/testify/require"
)

func TestRegressionLearnsConstantTarget(t *testing.T) {
	ctx := context.Background()
	x := feature.NewContinuousFeature("x")
	r := New([]feature.Feature{x}, 0)
	s := dataset.NewSample(map[string]interface{}{"x": 1.0})
	for i := 0; i < 1000; i++ {
		err := r.FitOne(ctx, s, 5.0, 1.0)
		require.NoError(t, err)
	}
	p, err := r.PredictOne(ctx, s)
	require.NoError(t, err)
	require.InDelta(t, 5.0, p, 0.01)
}

func TestRegressionLearnsLinearTrend(t *testing.T) {
	ctx := context.Background()
	x := feature.NewContinuousFeature("x")
	r := New([]feature.Feature{x}, 0)
	s1 := dataset.NewSample(map[string]interface{}{"x": 1.0})
	s2 := dataset.NewSample(map[string]interface{}{"x": 2.0})
	for i := 0; i < 2000; i++ {
		require.NoError(t, r.FitOne(ctx, s1, 2.0, 1.0))
		require.NoError(t, r.FitOne(ctx, s2, 4.0, 1.0))
	}
	p, err := r.PredictOne(ctx, dataset.NewSample(map[string]interface{}{"x": 3.0}))
	require.NoError(t, err)
	require.InDelta(t, 6.0, p, 0.1)
}

func TestRegressionLearnsDiscreteFeatures(t *testing.T) {
	ctx := context.Background()
	color := feature.NewDiscreteFeature("color", []string{"red", "blue"})
	r := New([]feature.Feature{color}, 0)
	red := dataset.NewSample(map[string]interface{}{"color": "red"})
	blue := dataset.NewSample(map[string]interface{}{"color": "blue"})
	for i := 0; i < 2000; i++ {
		require.NoError(t, r.FitOne(ctx, red, 1.0, 1.0))
		require.NoError(t, r.FitOne(ctx, blue, 3.0, 1.0))
	}
	p, err := r.PredictOne(ctx, red)
	require.NoError(t, err)
	require.InDelta(t, 1.0, p, 0.1)
	p, err = r.PredictOne(ctx, blue)
	require.NoError(t, err)
	require.InDelta(t, 3.0, p, 0.1)
}

func TestRegressionIgnoresUndefinedFeatures(t *testing.T) {
	ctx := context.Background()
	x := feature.NewContinuousFeature("x")
	r := New([]feature.Feature{x}, 0)
	s := dataset.NewSample(map[string]interface{}{"x": 1.0})
	for i := 0; i < 1000; i++ {
		require.NoError(t, r.FitOne(ctx, s, 5.0, 1.0))
	}
	p, err := r.PredictOne(ctx, dataset.NewSample(map[string]interface{}{}))
	require.NoError(t, err)
	require.InDelta(t, 2.5, p, 0.1)
}

func TestRegressionCloneIsIndependent(t *testing.T) {
	ctx := context.Background()
	x := feature.NewContinuousFeature("x")
	r := New([]feature.Feature{x}, 0)
	s := dataset.NewSample(map[string]interface{}{"x": 1.0})
	for i := 0; i < 500; i++ {
		require.NoError(t, r.FitOne(ctx, s, 5.0, 1.0))
	}
	before, err := r.PredictOne(ctx, s)
	require.NoError(t, err)

	clone := r.Clone()
	for i := 0; i < 500; i++ {
		require.NoError(t, clone.FitOne(ctx, s, 0.0, 1.0))
	}
	after, err := r.PredictOne(ctx, s)
	require.NoError(t, err)
	require.Equal(t, before, after)

	p, err := clone.PredictOne(ctx, s)
	require.NoError(t, err)
	require.Less(t, p, before)
}

func TestRegressionJSONRoundTrip(t *testing.T) {
	ctx := context.Background()
	x := feature.NewContinuousFeature("x")
	color := feature.NewDiscreteFeature("color", []string{"red", "blue"})
	features := []feature.Feature{x, color}
	r := New(features, 0.05)
	s := dataset.NewSample(map[string]interface{}{"x": 2.0, "color": "red"})
	for i := 0; i < 100; i++ {
		require.NoError(t, r.FitOne(ctx, s, 3.0, 1.0))
	}
	data, err := r.MarshalJSON()
	require.NoError(t, err)

	restored, err := DecodeJSON(features, data)
	require.NoError(t, err)
	want, err := r.PredictOne(ctx, s)
	require.NoError(t, err)
	got, err := restored.PredictOne(ctx, s)
	require.NoError(t, err)
	require.InDelta(t, want, got, 1e-9)
}
