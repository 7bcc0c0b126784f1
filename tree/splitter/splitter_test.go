package splitter

import (
	"math"
	"testing"

	"github.com/jay-ng-mc/river/feature"
	"github.com/jay-ng-mc/river/stats"
	"github.com/stretchr/testify/require"
)

func TestCriterionMerit(t *testing.T) {
	pre := stats.NewVar()
	left := stats.NewVar()
	right := stats.NewVar()
	for _, y := range []float64{0, 0, 0, 0, 0} {
		pre.Update(y, 1)
		left.Update(y, 1)
	}
	for _, y := range []float64{10, 10, 10, 10, 10} {
		pre.Update(y, 1)
		right.Update(y, 1)
	}
	c := Criterion{MinSamplesSplit: 1}
	merit := c.Merit(pre, []*stats.Var{left, right})
	require.InDelta(t, pre.Get(), merit, 1e-9)

	c = Criterion{MinSamplesSplit: 6}
	require.Equal(t, 0.0, c.Merit(pre, []*stats.Var{left, right}))

	require.Equal(t, 0.0, c.Merit(pre, []*stats.Var{left}))
	require.Equal(t, 1.0, c.Range(pre))
}

func TestEBSTSuggestFindsSeparatingPivot(t *testing.T) {
	f := feature.NewContinuousFeature("x")
	e := NewEBST()
	pre := stats.NewVar()
	for x := 1.0; x <= 10.0; x++ {
		y := 0.0
		if x > 5 {
			y = 10
		}
		e.Update(x, y, 1)
		pre.Update(y, 1)
	}
	s := e.Suggest(Criterion{MinSamplesSplit: 1}, pre, f, false)
	require.Equal(t, f, s.Feature)
	require.InDelta(t, 5.5, s.Pivot, 1e-9)
	require.InDelta(t, pre.Get(), s.Merit, 1e-9)
	require.Len(t, s.Post, 2)
	require.InDelta(t, 5.0, s.Post[0].Total(), 1e-9)
	require.InDelta(t, 5.0, s.Post[1].Total(), 1e-9)
	require.InDelta(t, 0.0, s.Post[0].Mean(), 1e-9)
	require.InDelta(t, 10.0, s.Post[1].Mean(), 1e-9)
}

func TestEBSTSuggestWithoutSplitPoints(t *testing.T) {
	f := feature.NewContinuousFeature("x")
	e := NewEBST()
	pre := stats.NewVar()

	s := e.Suggest(Criterion{MinSamplesSplit: 1}, pre, f, false)
	require.Nil(t, s.Feature)
	require.True(t, math.IsInf(s.Merit, -1))

	for i := 0; i < 5; i++ {
		e.Update(3.0, float64(i), 1)
		pre.Update(float64(i), 1)
	}
	s = e.Suggest(Criterion{MinSamplesSplit: 1}, pre, f, false)
	require.Nil(t, s.Feature)
	require.True(t, math.IsInf(s.Merit, -1))
}

func TestEBSTIgnoresUnusableValues(t *testing.T) {
	e := NewEBST()
	e.Update(nil, 1, 1)
	e.Update("a", 1, 1)
	require.Equal(t, 0, e.ByteSize())
	e.Update(1.0, 1, 1)
	require.Equal(t, ebstNodeBytes, e.ByteSize())
}

func TestEBSTRemoveBadSplits(t *testing.T) {
	f := feature.NewContinuousFeature("x")
	e := NewEBST()
	pre := stats.NewVar()
	for x := 1.0; x <= 8.0; x++ {
		e.Update(x, x, 1)
		pre.Update(x, 1)
	}
	c := Criterion{MinSamplesSplit: 1}
	best := e.Suggest(c, pre, f, false)
	require.InDelta(t, 4.5, best.Pivot, 1e-9)
	require.Equal(t, 8*ebstNodeBytes, e.ByteSize())

	e.RemoveBadSplits(c, pre, 1.0, best.Merit, 0.05)
	require.Less(t, e.ByteSize(), 8*ebstNodeBytes)

	after := e.Suggest(c, pre, f, false)
	require.InDelta(t, 4.5, after.Pivot, 1e-9)
	require.InDelta(t, best.Merit, after.Merit, 1e-9)
}

func TestNominalSuggest(t *testing.T) {
	f := feature.NewDiscreteFeature("color", []string{"red", "green", "blue"})
	n := NewNominal()
	pre := stats.NewVar()
	feed := func(v string, y float64, times int) {
		for i := 0; i < times; i++ {
			n.Update(v, y, 1)
			pre.Update(y, 1)
		}
	}
	feed("red", 0, 5)
	feed("green", 10, 5)
	feed("blue", 10, 5)

	s := n.Suggest(Criterion{MinSamplesSplit: 1}, pre, f, false)
	require.Equal(t, f, s.Feature)
	require.True(t, s.Merit > 0)

	binary := n.Suggest(Criterion{MinSamplesSplit: 1}, pre, f, true)
	require.False(t, binary.Multiway)
	require.Len(t, binary.Post, 2)
	require.Equal(t, []string{"red"}, binary.Values)
	require.InDelta(t, 5.0, binary.Post[0].Total(), 1e-9)
	require.InDelta(t, 10.0, binary.Post[1].Total(), 1e-9)
}

func TestNominalSuggestRestChildExcludesUndefinedWeight(t *testing.T) {
	f := feature.NewDiscreteFeature("color", []string{"red", "green"})
	n := NewNominal()
	pre := stats.NewVar()
	for i := 0; i < 5; i++ {
		n.Update("red", 0, 1)
		pre.Update(0, 1)
		n.Update("green", 10, 1)
		pre.Update(10, 1)
	}
	// samples defining no value for the feature reach the leaf stats
	// but never the splitter
	for i := 0; i < 5; i++ {
		pre.Update(20, 1)
	}

	s := n.Suggest(Criterion{MinSamplesSplit: 1}, pre, f, true)
	require.Equal(t, []string{"red"}, s.Values)
	require.InDelta(t, 5.0, s.Post[0].Total(), 1e-9)
	require.InDelta(t, 5.0, s.Post[1].Total(), 1e-9)
	require.InDelta(t, 10.0, s.Post[1].Mean(), 1e-9)
}

func TestNominalSuggestSingleCategory(t *testing.T) {
	f := feature.NewDiscreteFeature("color", []string{"red", "green"})
	n := NewNominal()
	pre := stats.NewVar()
	for i := 0; i < 10; i++ {
		n.Update("red", float64(i), 1)
		pre.Update(float64(i), 1)
	}
	s := n.Suggest(Criterion{MinSamplesSplit: 1}, pre, f, false)
	require.Nil(t, s.Feature)
	require.True(t, math.IsInf(s.Merit, -1))
}

func TestNominalFormatsNonStringValues(t *testing.T) {
	n := NewNominal()
	for i := 0; i < 5; i++ {
		n.Update(0.0, 0, 1)
		n.Update(1.0, 10, 1)
	}
	require.Equal(t, 2*nominalCategoryBytes, n.ByteSize())
}

func TestCloneReturnsEmptySplitters(t *testing.T) {
	e := NewEBST()
	e.Update(1.0, 1, 1)
	clone := e.Clone()
	require.Equal(t, 0, clone.ByteSize())

	n := NewNominal()
	n.Update("a", 1, 1)
	require.Equal(t, 0, n.Clone().ByteSize())
}
