package tree

import (
	"math"
	"sort"

	"github.com/jay-ng-mc/river/feature"
	"github.com/jay-ng-mc/river/tree/splitter"
)

/*
hoeffdingBound returns the Hoeffding bound for the given merit range
after observing the given weight: the margin by which the observed
merit of a candidate split may still differ from its true merit, with
probability 1 minus the configured split confidence.
*/
func (t *Tree) hoeffdingBound(meritRange, weight float64) float64 {
	return math.Sqrt(meritRange * meritRange * math.Log(1/t.opts.SplitConfidence) / (2 * weight))
}

/*
splitSuggestions gathers the split suggested by each splitter of the
leaf, sorted by increasing merit so that the best candidate comes
last. Unless merit pre-pruning is disabled, the candidates start with
a null suggestion representing not splitting at all, so that a leaf
with nothing better to offer is deactivated rather than split.
*/
func (t *Tree) splitSuggestions(leaf *Leaf) []splitter.Suggestion {
	suggestions := make([]splitter.Suggestion, 0, len(leaf.splitters)+1)
	if !t.opts.NoMeritPreprune {
		suggestions = append(suggestions, splitter.NoSuggestion())
	}
	for _, f := range t.features {
		sp := leaf.splitters[f.Name()]
		if sp == nil {
			continue
		}
		suggestions = append(suggestions, sp.Suggest(t.criterion, leaf.Stats, f, t.opts.BinarySplit))
	}
	sort.SliceStable(suggestions, func(i, j int) bool {
		return suggestions[i].Merit < suggestions[j].Merit
	})
	return suggestions
}

/*
attemptSplit evaluates the split candidates of a leaf and restructures
the tree according to the outcome.

A single candidate is applied immediately. With two or more, the
candidate merits are compared through the Hoeffding bound: when the
best candidate wins with enough confidence, or the bound is already
below the tie threshold, the leaf is replaced with a branch on the
winning candidate. When no winner emerges among several candidates of
positive merit, the leaf is replaced with an option branch growing
every featureful candidate in parallel, as long as the depth cap
leaves room for the extra level; when it does not, the leaf's
splitters are asked to shed their least promising state instead.

A winning candidate with no feature means no split is worth its
structure, and deactivates the leaf.
*/
func (t *Tree) attemptSplit(leaf *Leaf, parent Node, index int) {
	suggestions := t.splitSuggestions(leaf)
	if len(suggestions) == 0 {
		return
	}
	var shouldSplit, shouldOption bool
	if len(suggestions) < 2 {
		shouldSplit = true
	} else {
		best := suggestions[len(suggestions)-1]
		second := suggestions[len(suggestions)-2]
		bound := t.hoeffdingBound(t.criterion.Range(leaf.Stats), leaf.Stats.Total())
		ratio := second.Merit / best.Merit
		leaf.lastCheckRatio = ratio
		leaf.lastCheckMerit = best.Merit
		leaf.lastCheckBound = bound
		if best.Merit > 0 && (ratio < 1-bound || bound < t.opts.TieThreshold) {
			shouldSplit = true
		}
		if t.opts.RemovePoorAttrs {
			for _, sug := range suggestions {
				if sug.Feature != nil && sug.Merit/best.Merit < ratio-2*bound {
					leaf.disableFeature(sug.Feature.Name())
				}
			}
		}
		if !shouldSplit && best.Merit > 0 && second.Merit > 0 {
			if t.optionDepthAllowed(leaf) {
				shouldOption = true
			} else {
				t.manageLeafMemory(leaf, ratio, best.Merit, bound)
			}
		}
	}
	if shouldSplit {
		best := suggestions[len(suggestions)-1]
		if best.Feature == nil {
			t.deactivateLeaf(leaf)
		} else {
			// the branch takes the replaced leaf's slot in the node
			// count
			branch := t.assembleBranch(leaf, best, leaf.Depth)
			t.replaceChild(parent, index, branch)
			t.activeLeafCount--
		}
		t.enforceSizeLimit()
	} else if shouldOption {
		// multiplicity records how many candidates were adjudicated,
		// including the unmaterialized null one
		ob := &OptionBranch{leaf.Depth, len(suggestions), nil}
		for _, sug := range suggestions {
			if sug.Feature == nil {
				continue
			}
			ob.Children = append(ob.Children, t.assembleBranch(leaf, sug, leaf.Depth+1))
			t.nodeCount++
		}
		// the option branch takes the replaced leaf's slot in the
		// node count
		t.replaceChild(parent, index, ob)
		t.activeLeafCount--
		t.optionNodeCount++
		t.optionBranchCount += len(ob.Children)
		t.enforceSizeLimit()
	}
}

/*
optionDepthAllowed returns whether an option branch may replace the
given leaf: option branches grow their alternatives one level below
the leaf they replace, so they need room for an extra level under the
depth cap.
*/
func (t *Tree) optionDepthAllowed(leaf *Leaf) bool {
	return t.opts.MaxDepth <= 0 || leaf.Depth+2 <= t.opts.MaxDepth
}

/*
assembleBranch builds the branch materializing a split candidate at
the given depth: its criteria over the candidate's feature and one
fresh leaf per reported child statistics, warm-started on the split
leaf's model.
*/
func (t *Tree) assembleBranch(leaf *Leaf, sug splitter.Suggestion, depth int) *Branch {
	if len(sug.Values) > 0 {
		return t.assembleNominalBranch(leaf, sug, depth)
	}
	f := sug.Feature.(*feature.ContinuousFeature)
	criteria := []feature.Criterion{
		feature.NewContinuousCriterion(f, math.Inf(-1), sug.Pivot),
		feature.NewContinuousCriterion(f, sug.Pivot, math.Inf(1)),
	}
	children := []Node{
		t.newLeafNode(depth+1, sug.Post[0], leaf.Model),
		t.newLeafNode(depth+1, sug.Post[1], leaf.Model),
	}
	weights := []float64{sug.Post[0].Total(), sug.Post[1].Total()}
	return &Branch{depth, sug.Feature, criteria, children, weights}
}

/*
assembleNominalBranch builds the branch for a candidate over feature
categories: one child per category for a multiway candidate, or one
child for the selected category and one for the rest. Candidates over
features not declared discrete test a discrete rendition of the
feature covering the categories observed so far.
*/
func (t *Tree) assembleNominalBranch(leaf *Leaf, sug splitter.Suggestion, depth int) *Branch {
	df, ok := sug.Feature.(*feature.DiscreteFeature)
	if !ok {
		df = feature.NewDiscreteFeature(sug.Feature.Name(), sug.Values)
	}
	var criteria []feature.Criterion
	var children []Node
	var weights []float64
	if sug.Multiway {
		for i, v := range sug.Values {
			criteria = append(criteria, feature.NewDiscreteCriterion(df, v))
			children = append(children, t.newLeafNode(depth+1, sug.Post[i], leaf.Model))
			weights = append(weights, sug.Post[i].Total())
		}
	} else {
		v := sug.Values[0]
		criteria = []feature.Criterion{
			feature.NewDiscreteCriterion(df, v),
			feature.NewExcludedDiscreteCriterion(df, v),
		}
		children = []Node{
			t.newLeafNode(depth+1, sug.Post[0], leaf.Model),
			t.newLeafNode(depth+1, sug.Post[1], leaf.Model),
		}
		weights = []float64{sug.Post[0].Total(), sug.Post[1].Total()}
	}
	return &Branch{depth, sug.Feature, criteria, children, weights}
}
