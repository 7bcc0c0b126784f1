package json_test

import (
	"math"
	"testing"

	"github.com/jay-ng-mc/river/feature"
	fjson "github.com/jay-ng-mc/river/feature/json"
	"github.com/stretchr/testify/require"
)

func codecFeatures() (*feature.ContinuousFeature, *feature.DiscreteFeature, fjson.CriteriaEncodeDecoder) {
	x := feature.NewContinuousFeature("x")
	color := feature.NewDiscreteFeature("color", []string{"red", "blue"})
	return x, color, fjson.NewCriteriaEncodeDecoder([]feature.Feature{x, color})
}

func TestContinuousCriterionRoundTrip(t *testing.T) {
	x, _, ced := codecFeatures()

	for _, interval := range [][2]float64{
		{1.0, 3.0},
		{math.Inf(-1), 2.0},
		{2.0, math.Inf(1)},
	} {
		data, err := ced.Encode(feature.NewContinuousCriterion(x, interval[0], interval[1]))
		require.NoError(t, err)
		decoded, err := ced.Decode(data)
		require.NoError(t, err)

		cc, ok := decoded.(feature.ContinuousCriterion)
		require.True(t, ok)
		require.Equal(t, "x", cc.Feature().Name())
		a, b := cc.Interval()
		require.Equal(t, interval[0], a)
		require.Equal(t, interval[1], b)
	}
}

func TestContinuousCriterionKeepsExactThresholds(t *testing.T) {
	x, _, ced := codecFeatures()
	pivot := (0.1 + 0.2) / 2

	data, err := ced.Encode(feature.NewContinuousCriterion(x, math.Inf(-1), pivot))
	require.NoError(t, err)
	decoded, err := ced.Decode(data)
	require.NoError(t, err)

	_, b := decoded.(feature.ContinuousCriterion).Interval()
	require.Equal(t, pivot, b)
}

func TestDiscreteCriteriaRoundTrip(t *testing.T) {
	_, color, ced := codecFeatures()

	data, err := ced.Encode(feature.NewDiscreteCriterion(color, "red"))
	require.NoError(t, err)
	decoded, err := ced.Decode(data)
	require.NoError(t, err)
	dc, ok := decoded.(feature.DiscreteCriterion)
	require.True(t, ok)
	require.Equal(t, "red", dc.Value())

	data, err = ced.Encode(feature.NewExcludedDiscreteCriterion(color, "red"))
	require.NoError(t, err)
	decoded, err = ced.Decode(data)
	require.NoError(t, err)
	edc, ok := decoded.(feature.ExcludedDiscreteCriterion)
	require.True(t, ok)
	require.Equal(t, "red", edc.ExcludedValue())
}

func TestUndefinedCriterionRoundTrip(t *testing.T) {
	x, _, ced := codecFeatures()

	data, err := ced.Encode(feature.NewUndefinedCriterion(x))
	require.NoError(t, err)
	decoded, err := ced.Decode(data)
	require.NoError(t, err)
	_, ok := decoded.(feature.UndefinedCriterion)
	require.True(t, ok)
	require.Equal(t, "x", decoded.Feature().Name())
}

func TestDiscreteCriteriaOverContinuousFeatureRoundTrip(t *testing.T) {
	_, _, ced := codecFeatures()
	rendition := feature.NewDiscreteFeature("x", []string{"0", "1"})

	data, err := ced.Encode(feature.NewDiscreteCriterion(rendition, "1"))
	require.NoError(t, err)
	decoded, err := ced.Decode(data)
	require.NoError(t, err)
	dc, ok := decoded.(feature.DiscreteCriterion)
	require.True(t, ok)
	require.Equal(t, "x", dc.Feature().Name())
	require.Equal(t, "1", dc.Value())
	df, ok := dc.Feature().(*feature.DiscreteFeature)
	require.True(t, ok)
	require.Equal(t, []string{"0", "1"}, df.AvailableValues())

	data, err = ced.Encode(feature.NewExcludedDiscreteCriterion(rendition, "1"))
	require.NoError(t, err)
	decoded, err = ced.Decode(data)
	require.NoError(t, err)
	edc, ok := decoded.(feature.ExcludedDiscreteCriterion)
	require.True(t, ok)
	require.Equal(t, "x", edc.Feature().Name())
	require.Equal(t, "1", edc.ExcludedValue())
}

func TestDecodeRejectsUnknownFeature(t *testing.T) {
	_, _, ced := codecFeatures()

	_, err := ced.Decode([]byte(`{"t":"continuous","f":"height","a":"0","b":"1"}`))
	require.Error(t, err)
	require.Contains(t, err.Error(), "unknown feature")
}

func TestDecodeRejectsMismatchedFeatureKind(t *testing.T) {
	_, _, ced := codecFeatures()

	_, err := ced.Decode([]byte(`{"t":"continuous","f":"color","a":"0","b":"1"}`))
	require.Error(t, err)
	require.Contains(t, err.Error(), "expected continuous feature")
}
