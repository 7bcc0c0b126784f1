package stats

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestVarMatchesDirectComputation(t *testing.T) {
	values := []float64{2, 4, 4, 4, 5, 5, 7, 9}
	v := NewVar()
	for _, x := range values {
		v.Update(x, 1)
	}
	require.InDelta(t, 5.0, v.Mean(), 1e-12)
	require.InDelta(t, 8.0, v.Total(), 1e-12)
	require.InDelta(t, 32.0/7.0, v.Get(), 1e-12)
}

func TestVarWeightedUpdates(t *testing.T) {
	v := NewVar()
	v.Update(1, 2)
	v.Update(4, 1)
	require.InDelta(t, 2.0, v.Mean(), 1e-12)
	require.InDelta(t, 3.0, v.Get(), 1e-12)

	w := NewVar()
	w.Update(1, 1)
	w.Update(1, 1)
	w.Update(4, 1)
	require.InDelta(t, w.Mean(), v.Mean(), 1e-12)
	require.InDelta(t, w.Get(), v.Get(), 1e-12)
}

func TestVarIgnoresNonPositiveWeights(t *testing.T) {
	v := NewVar()
	v.Update(42, 0)
	v.Update(42, -1)
	require.Equal(t, 0.0, v.Total())
	require.Equal(t, 0.0, v.Get())
}

func TestVarAddAndSub(t *testing.T) {
	left := NewVar()
	for _, x := range []float64{2, 4, 4, 4} {
		left.Update(x, 1)
	}
	right := NewVar()
	for _, x := range []float64{5, 5, 7, 9} {
		right.Update(x, 1)
	}
	full := NewVar()
	for _, x := range []float64{2, 4, 4, 4, 5, 5, 7, 9} {
		full.Update(x, 1)
	}

	merged := left.Clone()
	merged.Add(right)
	require.InDelta(t, full.Total(), merged.Total(), 1e-12)
	require.InDelta(t, full.Mean(), merged.Mean(), 1e-12)
	require.InDelta(t, full.Get(), merged.Get(), 1e-12)

	merged.Sub(right)
	require.InDelta(t, left.Total(), merged.Total(), 1e-9)
	require.InDelta(t, left.Mean(), merged.Mean(), 1e-9)
	require.InDelta(t, left.Get(), merged.Get(), 1e-9)
}

func TestVarAddIntoEmpty(t *testing.T) {
	empty := NewVar()
	other := NewVar()
	other.Update(3, 1)
	other.Update(5, 1)
	empty.Add(other)
	require.InDelta(t, other.Mean(), empty.Mean(), 1e-12)
	require.InDelta(t, other.Get(), empty.Get(), 1e-12)
}

func TestVarSubToEmpty(t *testing.T) {
	v := NewVar()
	v.Update(3, 1)
	other := v.Clone()
	v.Sub(other)
	require.Equal(t, 0.0, v.Total())
	require.Equal(t, 0.0, v.Mean())
	require.Equal(t, 0.0, v.Get())
}

func TestVarJSONRoundTrip(t *testing.T) {
	v := NewVar()
	for _, x := range []float64{1, 2, 3, 4, 5} {
		v.Update(x, 1)
	}
	data, err := json.Marshal(v)
	require.NoError(t, err)
	decoded := NewVar()
	require.NoError(t, json.Unmarshal(data, decoded))
	require.InDelta(t, v.Total(), decoded.Total(), 1e-12)
	require.InDelta(t, v.Mean(), decoded.Mean(), 1e-12)
	require.InDelta(t, v.Get(), decoded.Get(), 1e-12)
}

func TestMean(t *testing.T) {
	m := &Mean{}
	require.Equal(t, 0.0, m.Get())
	m.Update(10, 1)
	m.Update(20, 1)
	m.Update(60, 2)
	require.InDelta(t, 37.5, m.Get(), 1e-12)
	require.InDelta(t, 4.0, m.Total(), 1e-12)
}

func TestMinMax(t *testing.T) {
	mn := NewMin()
	mx := NewMax()
	require.True(t, math.IsInf(mn.Get(), 1))
	require.True(t, math.IsInf(mx.Get(), -1))
	for _, x := range []float64{3, -1, 7, 2} {
		mn.Update(x)
		mx.Update(x)
	}
	require.Equal(t, -1.0, mn.Get())
	require.Equal(t, 7.0, mx.Get())
}
