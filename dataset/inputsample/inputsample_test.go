package inputsample

import (
	"context"
	"strings"
	"testing"

	"github.com/jay-ng-mc/river/feature"
	"github.com/stretchr/testify/require"
)

type recordingRequester struct {
	requested []string
	rejected  []interface{}
}

func (rr *recordingRequester) RequestValueFor(f feature.Feature) error {
	rr.requested = append(rr.requested, f.Name())
	return nil
}

func (rr *recordingRequester) RejectValueFor(f feature.Feature, v interface{}) error {
	rr.rejected = append(rr.rejected, v)
	return nil
}

func TestValueForParsesContinuousValue(t *testing.T) {
	ctx := context.Background()
	x := feature.NewContinuousFeature("x")
	rr := &recordingRequester{}
	s := New(strings.NewReader("abc\n4.2\n"), []feature.Feature{x}, rr, "?")

	v, err := s.ValueFor(ctx, x)
	require.NoError(t, err)
	require.Equal(t, 4.2, v)
	require.Equal(t, []string{"x"}, rr.requested)
	require.Equal(t, []interface{}{"abc"}, rr.rejected)

	// a second read comes from the obtained values, not the reader
	v, err = s.ValueFor(ctx, x)
	require.NoError(t, err)
	require.Equal(t, 4.2, v)
	require.Len(t, rr.requested, 1)
}

func TestValueForReadsUndefinedValue(t *testing.T) {
	ctx := context.Background()
	x := feature.NewContinuousFeature("x")
	s := New(strings.NewReader("?\n"), []feature.Feature{x}, &recordingRequester{}, "?")

	v, err := s.ValueFor(ctx, x)
	require.NoError(t, err)
	require.Nil(t, v)
}

func TestValueForRejectsUnavailableDiscreteValues(t *testing.T) {
	ctx := context.Background()
	color := feature.NewDiscreteFeature("color", []string{"red", "blue"})
	rr := &recordingRequester{}
	s := New(strings.NewReader("green\nred\n"), []feature.Feature{color}, rr, "?")

	v, err := s.ValueFor(ctx, color)
	require.NoError(t, err)
	require.Equal(t, "red", v)
	require.Equal(t, []interface{}{"green"}, rr.rejected)
}

func TestValueForUnknownFeature(t *testing.T) {
	ctx := context.Background()
	x := feature.NewContinuousFeature("x")
	y := feature.NewContinuousFeature("y")
	s := New(strings.NewReader("1.0\n"), []feature.Feature{x}, &recordingRequester{}, "?")

	_, err := s.ValueFor(ctx, y)
	require.Error(t, err)
	require.Contains(t, err.Error(), "no information about feature y")
}

func TestValueForReportsEOF(t *testing.T) {
	ctx := context.Background()
	x := feature.NewContinuousFeature("x")
	s := New(strings.NewReader(""), []feature.Feature{x}, &recordingRequester{}, "?")

	_, err := s.ValueFor(ctx, x)
	require.Error(t, err)
	require.Contains(t, err.Error(), "EOF")
}
