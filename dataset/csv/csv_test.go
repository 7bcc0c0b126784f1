package csv

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/jay-ng-mc/river/dataset"
	"github.com/jay-ng-mc/river/feature"
	"github.com/stretchr/testify/require"
)

func csvTestFeatures() []feature.Feature {
	return []feature.Feature{
		feature.NewContinuousFeature("x"),
		feature.NewDiscreteFeature("color", []string{"red", "blue"}),
	}
}

func collectSamples(t *testing.T, s dataset.Stream) []dataset.Sample {
	t.Helper()
	var samples []dataset.Sample
	sampleStream, errStream := s.Read(context.Background())
	for sample := range sampleStream {
		samples = append(samples, sample)
	}
	require.NoError(t, <-errStream)
	return samples
}

func TestReadCollectionParsesSamplesAndUndefinedValues(t *testing.T) {
	ctx := context.Background()
	features := csvTestFeatures()
	input := "x,color\n1.5,red\n?,blue\n2.0,?\n"

	collection, err := ReadCollection(strings.NewReader(input), features, dataset.New)
	require.NoError(t, err)
	n, err := collection.Count(ctx)
	require.NoError(t, err)
	require.Equal(t, 3, n)

	samples := collectSamples(t, collection)
	require.Len(t, samples, 3)

	v, err := samples[0].ValueFor(ctx, features[0])
	require.NoError(t, err)
	require.Equal(t, 1.5, v)
	v, err = samples[0].ValueFor(ctx, features[1])
	require.NoError(t, err)
	require.Equal(t, "red", v)

	v, err = samples[1].ValueFor(ctx, features[0])
	require.NoError(t, err)
	require.Nil(t, v)

	v, err = samples[2].ValueFor(ctx, features[1])
	require.NoError(t, err)
	require.Nil(t, v)
}

func TestReadCollectionRejectsUnknownValue(t *testing.T) {
	features := csvTestFeatures()
	input := "x,color\n1.0,green\n"

	_, err := ReadCollection(strings.NewReader(input), features, dataset.New)
	require.Error(t, err)
	require.Contains(t, err.Error(), "line 2")
	require.Contains(t, err.Error(), "green")
}

func TestReadCollectionRejectsUnknownHeaderColumn(t *testing.T) {
	features := csvTestFeatures()
	input := "bogus,x,color\nzzz,1.0,red\n"

	_, err := ReadCollection(strings.NewReader(input), features, dataset.New)
	require.Error(t, err)
	require.Contains(t, err.Error(), "unknown feature bogus")
}

func TestReadCollectionIgnoresTrailingUnknownColumn(t *testing.T) {
	ctx := context.Background()
	features := csvTestFeatures()
	input := "x,color,extra\n1.0,red,zzz\n"

	collection, err := ReadCollection(strings.NewReader(input), features, dataset.New)
	require.NoError(t, err)
	samples := collectSamples(t, collection)
	require.Len(t, samples, 1)
	v, err := samples[0].ValueFor(ctx, features[0])
	require.NoError(t, err)
	require.Equal(t, 1.0, v)
}

func TestReadBySampleStopsWhenToldTo(t *testing.T) {
	features := csvTestFeatures()
	input := "x,color\n1.0,red\n2.0,blue\n3.0,red\n"

	var calls int
	err := ReadBySample(strings.NewReader(input), features, func(i int, s dataset.Sample) (bool, error) {
		calls++
		return false, nil
	})
	require.NoError(t, err)
	require.Equal(t, 1, calls)
}

func TestStreamDeliversSamplesInOrder(t *testing.T) {
	ctx := context.Background()
	features := csvTestFeatures()
	input := "x,color\n1.0,red\n2.0,blue\n"

	samples := collectSamples(t, NewStream(strings.NewReader(input), features))
	require.Len(t, samples, 2)
	v, err := samples[0].ValueFor(ctx, features[0])
	require.NoError(t, err)
	require.Equal(t, 1.0, v)
	v, err = samples[1].ValueFor(ctx, features[0])
	require.NoError(t, err)
	require.Equal(t, 2.0, v)
}

func TestStreamReportsParseErrors(t *testing.T) {
	features := csvTestFeatures()
	input := "x,color\nnotanumber,red\n"

	sampleStream, errStream := NewStream(strings.NewReader(input), features).Read(context.Background())
	for range sampleStream {
	}
	err := <-errStream
	require.Error(t, err)
	require.Contains(t, err.Error(), "notanumber")
}

func TestWriteCSVStreamRoundTrip(t *testing.T) {
	ctx := context.Background()
	features := csvTestFeatures()
	collection := dataset.New([]dataset.Sample{
		dataset.NewSample(map[string]interface{}{"x": 1.5, "color": "red"}),
		dataset.NewSample(map[string]interface{}{"x": nil, "color": "blue"}),
	})

	var buf bytes.Buffer
	require.NoError(t, WriteCSVStream(ctx, &buf, collection, features))

	decoded, err := ReadCollection(&buf, features, dataset.New)
	require.NoError(t, err)
	samples := collectSamples(t, decoded)
	require.Len(t, samples, 2)
	v, err := samples[0].ValueFor(ctx, features[0])
	require.NoError(t, err)
	require.Equal(t, 1.5, v)
	v, err = samples[1].ValueFor(ctx, features[0])
	require.NoError(t, err)
	require.Nil(t, v)
}
