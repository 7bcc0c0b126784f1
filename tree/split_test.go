package tree

import (
	"context"
	"testing"

	"github.com/jay-ng-mc/river/feature"
	"github.com/jay-ng-mc/river/stats"
	"github.com/jay-ng-mc/river/tree/splitter"
	"github.com/stretchr/testify/require"
)

type testSample map[string]interface{}

func (s testSample) ValueFor(ctx context.Context, f feature.Feature) (interface{}, error) {
	return s[f.Name()], nil
}

type stubSplitter struct {
	suggestion splitter.Suggestion
}

func (ss *stubSplitter) Update(value interface{}, target, weight float64) {}

func (ss *stubSplitter) Suggest(c splitter.Criterion, pre *stats.Var, f feature.Feature, binaryOnly bool) splitter.Suggestion {
	return ss.suggestion
}

func (ss *stubSplitter) RemoveBadSplits(c splitter.Criterion, pre *stats.Var, lastCheckRatio, lastCheckMerit, bound float64) {
}

func (ss *stubSplitter) Clone() splitter.Splitter {
	return &stubSplitter{ss.suggestion}
}

func (ss *stubSplitter) ByteSize() int {
	return 0
}

func numericSuggestion(f feature.Feature, merit, pivot float64) splitter.Suggestion {
	left := stats.NewVar()
	left.Update(0, 100)
	right := stats.NewVar()
	right.Update(10, 100)
	return splitter.Suggestion{Feature: f, Merit: merit, Pivot: pivot, Post: []*stats.Var{left, right}}
}

/*
splitTestTree builds a tree over continuous features with the given
names and a root leaf of weight 200 whose splitter for each feature
suggests a split with the given merit.
*/
func splitTestTree(opts *Options, merits map[string]float64) (*Tree, *Leaf) {
	features := make([]feature.Feature, 0, len(merits))
	splitters := make(map[string]splitter.Splitter, len(merits))
	for _, name := range []string{"a", "b", "c"} {
		merit, ok := merits[name]
		if !ok {
			continue
		}
		f := feature.NewContinuousFeature(name)
		features = append(features, f)
		splitters[name] = &stubSplitter{numericSuggestion(f, merit, 0.5)}
	}
	tr := New(features, opts)
	leaf := tr.newLeafNode(0, nil, nil)
	leaf.Stats.Update(5, 200)
	leaf.splitters = splitters
	tr.root = leaf
	return tr, leaf
}

func TestHoeffdingBound(t *testing.T) {
	tr := New(nil, nil)
	require.InDelta(t, 0.200737, tr.hoeffdingBound(1, 200), 1e-5)
	require.InDelta(t, 0.044886, tr.hoeffdingBound(1, 4000), 1e-5)

	tr = New(nil, &Options{SplitConfidence: 0.05})
	require.InDelta(t, 0.122387, tr.hoeffdingBound(1, 100), 1e-5)
}

func TestAttemptSplitClearWinner(t *testing.T) {
	tr, leaf := splitTestTree(nil, map[string]float64{"a": 10, "b": 1})
	tr.attemptSplit(leaf, nil, -1)

	branch, ok := tr.root.(*Branch)
	require.True(t, ok)
	require.Equal(t, "a", branch.Feature.Name())
	require.Len(t, branch.Children, 2)
	require.Equal(t, []float64{100, 100}, branch.Weights)
	require.Equal(t, Summary{3, 2, 0, 0, 0}, tr.Summary())

	left, ok := branch.Children[0].(*Leaf)
	require.True(t, ok)
	require.InDelta(t, 0.0, left.Stats.Mean(), 1e-12)
	require.Equal(t, 1, left.Depth)
	right, ok := branch.Children[1].(*Leaf)
	require.True(t, ok)
	require.InDelta(t, 10.0, right.Stats.Mean(), 1e-12)
}

func TestAttemptSplitTieThresholdForcesSplit(t *testing.T) {
	tr, leaf := splitTestTree(nil, map[string]float64{"a": 10, "b": 9.9})
	leaf.Stats.Update(5, 3800)
	tr.attemptSplit(leaf, nil, -1)

	branch, ok := tr.root.(*Branch)
	require.True(t, ok)
	require.Equal(t, "a", branch.Feature.Name())
	require.Equal(t, Summary{3, 2, 0, 0, 0}, tr.Summary())
}

func TestAttemptSplitAmbiguityCreatesOptionBranch(t *testing.T) {
	tr, leaf := splitTestTree(nil, map[string]float64{"a": 10, "b": 9.9})
	tr.attemptSplit(leaf, nil, -1)

	ob, ok := tr.root.(*OptionBranch)
	require.True(t, ok)
	// three candidates were adjudicated, the null one and one per
	// feature, and only the featureful ones became children
	require.Equal(t, 3, ob.Multiplicity)
	require.Len(t, ob.Children, 2)
	var names []string
	for _, child := range ob.Children {
		branch, ok := child.(*Branch)
		require.True(t, ok)
		require.Equal(t, 1, branch.Depth)
		names = append(names, branch.Feature.Name())
	}
	require.ElementsMatch(t, []string{"a", "b"}, names)
	require.Equal(t, Summary{7, 4, 0, 1, 2}, tr.Summary())
}

func TestAttemptSplitZeroMeritDoesNothing(t *testing.T) {
	tr, leaf := splitTestTree(nil, map[string]float64{"a": 0, "b": 0})
	tr.attemptSplit(leaf, nil, -1)

	require.Equal(t, leaf, tr.root)
	require.True(t, leaf.Active)
	require.Equal(t, Summary{1, 1, 0, 0, 0}, tr.Summary())
}

func TestAttemptSplitNullWinnerDeactivatesLeaf(t *testing.T) {
	tr, leaf := splitTestTree(nil, map[string]float64{})
	tr.attemptSplit(leaf, nil, -1)

	require.Equal(t, leaf, tr.root)
	require.False(t, leaf.Active)
	require.Equal(t, Summary{1, 0, 1, 0, 0}, tr.Summary())
}

func TestAttemptSplitWithoutCandidatesNorPrepruneDoesNothing(t *testing.T) {
	tr, leaf := splitTestTree(&Options{NoMeritPreprune: true}, map[string]float64{})
	tr.attemptSplit(leaf, nil, -1)

	require.Equal(t, leaf, tr.root)
	require.True(t, leaf.Active)
	require.Equal(t, Summary{1, 1, 0, 0, 0}, tr.Summary())
}

func TestAttemptSplitSingleCandidateSplitsImmediately(t *testing.T) {
	tr, leaf := splitTestTree(&Options{NoMeritPreprune: true}, map[string]float64{"a": 0.1})
	tr.attemptSplit(leaf, nil, -1)
	_, ok := tr.root.(*Branch)
	require.True(t, ok)

	tr, leaf = splitTestTree(nil, map[string]float64{"a": 0.1})
	tr.attemptSplit(leaf, nil, -1)
	_, ok = tr.root.(*Branch)
	require.True(t, ok)
}

func TestAttemptSplitDisablesPoorFeatures(t *testing.T) {
	opts := &Options{RemovePoorAttrs: true, MaxDepth: 1}
	tr, leaf := splitTestTree(opts, map[string]float64{"a": 10, "b": 9.9, "c": 0.1})
	tr.attemptSplit(leaf, nil, -1)

	require.Equal(t, leaf, tr.root)
	require.True(t, leaf.featureDisabled("c"))
	require.False(t, leaf.featureDisabled("a"))
	require.False(t, leaf.featureDisabled("b"))
	require.NotContains(t, leaf.splitters, "c")
	require.Equal(t, Summary{1, 1, 0, 0, 0}, tr.Summary())
}

func TestOptionBranchNeedsRoomUnderDepthCap(t *testing.T) {
	opts := &Options{MaxDepth: 1}
	tr, leaf := splitTestTree(opts, map[string]float64{"a": 10, "b": 9.9})
	tr.attemptSplit(leaf, nil, -1)
	require.Equal(t, leaf, tr.root)

	opts = &Options{MaxDepth: 2}
	tr, leaf = splitTestTree(opts, map[string]float64{"a": 10, "b": 9.9})
	tr.attemptSplit(leaf, nil, -1)
	_, ok := tr.root.(*OptionBranch)
	require.True(t, ok)
}

type stubModel struct {
	fitted int
}

func (m *stubModel) FitOne(ctx context.Context, s feature.Sample, target, weight float64) error {
	m.fitted++
	return nil
}

func (m *stubModel) PredictOne(ctx context.Context, s feature.Sample) (float64, error) {
	return 42.0, nil
}

func (m *stubModel) Clone() Model {
	return &stubModel{}
}

func (m *stubModel) ByteSize() int {
	return 8
}

func TestSplitChildrenInheritLeafModel(t *testing.T) {
	tr, leaf := splitTestTree(&Options{Model: &stubModel{}}, map[string]float64{"a": 10, "b": 1})
	require.NotNil(t, leaf.Model)
	tr.attemptSplit(leaf, nil, -1)

	branch := tr.root.(*Branch)
	for _, child := range branch.Children {
		childLeaf := child.(*Leaf)
		require.NotNil(t, childLeaf.Model)
		require.NotSame(t, leaf.Model, childLeaf.Model)
	}
}

func TestSplitChildrenFallBackToDefaultModel(t *testing.T) {
	tr, leaf := splitTestTree(&Options{Model: &stubModel{}}, map[string]float64{"a": 10, "b": 1})
	leaf.Model = nil
	tr.attemptSplit(leaf, nil, -1)

	branch := tr.root.(*Branch)
	for _, child := range branch.Children {
		require.NotNil(t, child.(*Leaf).Model)
	}
}
