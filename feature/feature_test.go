package feature

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

type mapSample map[string]interface{}

func (ms mapSample) ValueFor(ctx context.Context, f Feature) (interface{}, error) {
	return ms[f.Name()], nil
}

func TestContinuousFeatureValidatesValues(t *testing.T) {
	f := NewContinuousFeature("x")

	ok, err := f.Valid(nil)
	require.True(t, ok)
	require.NoError(t, err)

	ok, err = f.Valid(1.5)
	require.True(t, ok)
	require.NoError(t, err)

	ok, err = f.Valid("1.5")
	require.False(t, ok)
	require.Error(t, err)
	require.Contains(t, err.Error(), "float64")
}

func TestDiscreteFeatureValidatesValues(t *testing.T) {
	f := NewDiscreteFeature("color", []string{"red", "blue"})

	ok, err := f.Valid(nil)
	require.True(t, ok)
	require.NoError(t, err)

	ok, err = f.Valid("red")
	require.True(t, ok)
	require.NoError(t, err)

	ok, err = f.Valid("green")
	require.False(t, ok)
	require.Error(t, err)
	require.Contains(t, err.Error(), "green")

	ok, err = f.Valid(1.5)
	require.False(t, ok)
	require.Error(t, err)
}

func TestContinuousCriterionMatchesItsInterval(t *testing.T) {
	ctx := context.Background()
	f := NewContinuousFeature("x")
	c := NewContinuousCriterion(f, 1.0, 3.0)

	for value, expected := range map[float64]bool{0.5: false, 1.0: true, 2.9: true, 3.0: false} {
		ok, err := c.SatisfiedBy(ctx, mapSample{"x": value})
		require.NoError(t, err)
		require.Equal(t, expected, ok, "value %f", value)
	}

	ok, err := c.SatisfiedBy(ctx, mapSample{})
	require.NoError(t, err)
	require.False(t, ok)
}

func TestContinuousCriterionOpenEnds(t *testing.T) {
	ctx := context.Background()
	f := NewContinuousFeature("x")

	below := NewContinuousCriterion(f, math.Inf(-1), 2.0)
	ok, err := below.SatisfiedBy(ctx, mapSample{"x": -100.0})
	require.NoError(t, err)
	require.True(t, ok)

	above := NewContinuousCriterion(f, 2.0, math.Inf(1))
	ok, err = above.SatisfiedBy(ctx, mapSample{"x": 1e9})
	require.NoError(t, err)
	require.True(t, ok)
}

func TestDiscreteCriterionMatchesItsValue(t *testing.T) {
	ctx := context.Background()
	f := NewDiscreteFeature("color", []string{"red", "blue"})
	c := NewDiscreteCriterion(f, "red")

	ok, err := c.SatisfiedBy(ctx, mapSample{"color": "red"})
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = c.SatisfiedBy(ctx, mapSample{"color": "blue"})
	require.NoError(t, err)
	require.False(t, ok)

	ok, err = c.SatisfiedBy(ctx, mapSample{})
	require.NoError(t, err)
	require.False(t, ok)
}

func TestExcludedDiscreteCriterionMatchesOtherValues(t *testing.T) {
	ctx := context.Background()
	f := NewDiscreteFeature("color", []string{"red", "blue"})
	c := NewExcludedDiscreteCriterion(f, "red")

	ok, err := c.SatisfiedBy(ctx, mapSample{"color": "blue"})
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = c.SatisfiedBy(ctx, mapSample{"color": "red"})
	require.NoError(t, err)
	require.False(t, ok)

	ok, err = c.SatisfiedBy(ctx, mapSample{})
	require.NoError(t, err)
	require.False(t, ok)
}

func TestUndefinedCriterionIsAlwaysSatisfied(t *testing.T) {
	ctx := context.Background()
	c := NewUndefinedCriterion(NewContinuousFeature("x"))

	ok, err := c.SatisfiedBy(ctx, mapSample{})
	require.NoError(t, err)
	require.True(t, ok)
}
