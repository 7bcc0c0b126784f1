package tree

import (
	"context"
	"fmt"

	"github.com/jay-ng-mc/river/feature"
	"github.com/jay-ng-mc/river/stats"
	"github.com/jay-ng-mc/river/tree/splitter"
)

const (
	leafBaseBytes   = 160
	branchBaseBytes = 128
	optionBaseBytes = 64
	criterionBytes  = 48
)

/*
Node is a node of a tree: a Leaf, a Branch or an OptionBranch.
*/
type Node interface {
	// byteSize returns an estimation of the memory the node holds on
	// its own, in bytes, not counting nodes below it.
	byteSize() int
}

/*
Leaf is a node that accumulates samples and predicts from them. An
active leaf keeps one splitter per observed feature so that it can
eventually be replaced with a branch, an inactive one only maintains
its target statistics and model.
*/
type Leaf struct {
	// The depth at which the leaf stands in its tree
	Depth int
	// Whether the leaf is a candidate to be split. Inactive leaves
	// keep learning their target statistics and model but drop their
	// splitters and are never split.
	Active bool
	// The target statistics accumulated by the leaf
	Stats *stats.Var
	// The model the leaf predicts with, nil for leaves that predict
	// the mean of their target statistics
	Model Model
	// The weight the leaf had accumulated when it last attempted to
	// split
	LastSplitAttempt float64

	splitters map[string]splitter.Splitter
	disabled  map[string]bool

	lastCheckRatio float64
	lastCheckMerit float64
	lastCheckBound float64
}

/*
newLeaf returns an active leaf at the given depth with the given target
statistics and model. The leaf will not attempt to split until it
accumulates a full grace period beyond the weight already in the given
statistics.
*/
func newLeaf(depth int, leafStats *stats.Var, model Model) *Leaf {
	if leafStats == nil {
		leafStats = stats.NewVar()
	}
	return &Leaf{
		Depth:            depth,
		Active:           true,
		Stats:            leafStats,
		Model:            model,
		LastSplitAttempt: leafStats.Total(),
	}
}

/*
prediction returns the leaf's prediction for the given sample: the
prediction of its model, or the mean of its target statistics for
leaves without a model.
*/
func (l *Leaf) prediction(ctx context.Context, s feature.Sample) (float64, error) {
	if l.Model == nil {
		return l.Stats.Mean(), nil
	}
	return l.Model.PredictOne(ctx, s)
}

/*
promise returns the weight accumulated by the leaf, as an indication of
how much evidence backs an eventual split of the leaf.
*/
func (l *Leaf) promise() float64 {
	return l.Stats.Total()
}

func (l *Leaf) deactivate() {
	l.Active = false
	l.splitters = nil
}

func (l *Leaf) activate() {
	l.Active = true
}

func (l *Leaf) disableFeature(name string) {
	if l.disabled == nil {
		l.disabled = make(map[string]bool)
	}
	l.disabled[name] = true
	delete(l.splitters, name)
}

func (l *Leaf) featureDisabled(name string) bool {
	return l.disabled[name]
}

func (l *Leaf) byteSize() int {
	size := leafBaseBytes
	for _, s := range l.splitters {
		size += s.ByteSize()
	}
	if l.Model != nil {
		size += l.Model.ByteSize()
	}
	return size
}

/*
Branch is a node that tests one feature and routes samples to the child
whose criterion they satisfy.
*/
type Branch struct {
	// The depth at which the branch stands in its tree
	Depth int
	// The feature the branch tests
	Feature feature.Feature
	// The criteria on the branch's feature that select each child.
	// The i-th child receives the samples satisfying the i-th
	// criterion.
	Criteria []feature.Criterion
	// The nodes under this branch
	Children []Node
	// The weight routed so far to each child. Samples that satisfy no
	// criterion, because their value for the branch's feature is
	// undefined or was never seen while growing, follow the heaviest
	// child.
	Weights []float64
}

/*
branchFor returns the index of the child the given sample must follow:
the first child whose criterion the sample satisfies, or the heaviest
child when the sample satisfies none.
*/
func (b *Branch) branchFor(ctx context.Context, s feature.Sample) (int, error) {
	for i, c := range b.Criteria {
		ok, err := c.SatisfiedBy(ctx, s)
		if err != nil {
			return 0, fmt.Errorf("routing sample on feature %s: %v", b.Feature.Name(), err)
		}
		if ok {
			return i, nil
		}
	}
	return b.heaviestChild(), nil
}

/*
heaviestChild returns the index of the child that has received the most
weight, the lowest one in case of ties.
*/
func (b *Branch) heaviestChild() int {
	var heaviest int
	for i, w := range b.Weights {
		if w > b.Weights[heaviest] {
			heaviest = i
		}
	}
	return heaviest
}

func (b *Branch) byteSize() int {
	return branchBaseBytes + len(b.Criteria)*criterionBytes
}

/*
OptionBranch is a node that keeps several branches over the same grown
region, so that samples follow all of them and predictions average
their results.
*/
type OptionBranch struct {
	// The depth at which the option branch stands in its tree
	Depth int
	// The number of split candidates adjudicated when the option
	// branch was created
	Multiplicity int
	// The alternative branches kept by this node
	Children []Node
}

func (ob *OptionBranch) byteSize() int {
	return optionBaseBytes
}
