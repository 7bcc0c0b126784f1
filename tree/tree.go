/*
Package tree provides an incremental regression tree that learns from a
stream of samples, one sample at a time.

A tree starts as a single leaf that accumulates target statistics,
per-feature split statistics and an optional leaf model. Once enough
weight accumulates, the leaf compares its candidate splits with the
Hoeffding bound: when the best candidate is better than the rest with
enough confidence the leaf becomes a branch, and when several
candidates remain too close to separate an option branch keeps the
best of them growing in parallel. Predictions descend the tree through
every kept alternative and average the predictions of the reached
leaves.
*/
package tree

import (
	"context"
	"fmt"
	"strings"

	"github.com/jay-ng-mc/river/feature"
	"github.com/jay-ng-mc/river/stats"
	"github.com/jay-ng-mc/river/tree/splitter"
)

/*
Tree is an incremental regression tree. Trees must be built with New or
Rebuild.
*/
type Tree struct {
	features []feature.Feature
	nominal  map[string]bool
	opts     Options

	criterion splitter.Criterion
	maxBytes  int

	root Node

	nodeCount         int
	activeLeafCount   int
	inactiveLeafCount int
	optionNodeCount   int
	optionBranchCount int

	trainWeight   float64
	sinceEstimate int
	byteEstimate  int
	growthAllowed bool
}

/*
Summary describes the structure of a tree at a point of its growth.
*/
type Summary struct {
	// The number of nodes in the tree
	Nodes int
	// The number of leaves that are candidates to be split
	ActiveLeaves int
	// The number of leaves that keep learning but will not be split
	InactiveLeaves int
	// The number of option branches in the tree
	OptionNodes int
	// The number of alternative branches kept under option branches
	OptionBranches int
}

/*
New takes the features samples will be described with and a set of
options, and returns an empty tree that grows according to the options.
A nil options value selects every default.
*/
func New(features []feature.Feature, opts *Options) *Tree {
	o := withDefaults(opts)
	nominal := make(map[string]bool)
	for _, name := range o.NominalAttributes {
		nominal[name] = true
	}
	return &Tree{
		features:      features,
		nominal:       nominal,
		opts:          o,
		criterion:     splitter.Criterion{MinSamplesSplit: o.MinSamplesSplit},
		maxBytes:      int(o.MaxSize * 1024.0 * 1024.0),
		growthAllowed: true,
	}
}

/*
Rebuild takes the features samples are described with, a set of
options, a root node and the total weight learned so far, and returns a
tree over the given nodes with its node accounting recomputed from
them. It is meant to restore trees from snapshots.
*/
func Rebuild(features []feature.Feature, opts *Options, root Node, weight float64) *Tree {
	t := New(features, opts)
	t.root = root
	t.trainWeight = weight
	t.recount(root)
	return t
}

/*
Learn makes the tree learn from the given sample and its target value,
with the given weight. The sample traverses the tree to one leaf, or to
several when option branches are crossed, and each reached leaf updates
its statistics, its splitters and its model with it. Leaves that have
accumulated a grace period worth of weight then attempt to split.

An error is returned when a value for a feature cannot be obtained from
the sample or a leaf model fails to learn it, in which case the tree
may have learned the sample only partially.
*/
func (t *Tree) Learn(ctx context.Context, s feature.Sample, target, weight float64) error {
	if weight <= 0 {
		return nil
	}
	if t.root == nil {
		t.root = t.newLeafNode(0, nil, nil)
	}
	refs, err := t.routeLearn(ctx, t.root, nil, -1, s, weight, nil)
	if err != nil {
		return fmt.Errorf("learning sample: %v", err)
	}
	for _, ref := range refs {
		err = t.trainLeaf(ctx, ref, s, target, weight)
		if err != nil {
			return fmt.Errorf("learning sample: %v", err)
		}
	}
	t.trainWeight += weight
	t.sinceEstimate++
	if t.sinceEstimate >= t.opts.MemoryEstimatePeriod {
		t.sinceEstimate = 0
		t.estimateSize()
		if t.byteEstimate > t.maxBytes {
			t.enforceSizeLimit()
		}
	}
	return nil
}

/*
Predict takes a sample and returns the tree's prediction for it: the
average of the predictions of every leaf the sample reaches. A tree
that has not learned any sample yet predicts 0.
*/
func (t *Tree) Predict(ctx context.Context, s feature.Sample) (float64, error) {
	if t == nil || t.root == nil {
		return 0.0, nil
	}
	leaves, err := t.searchLeaves(ctx, t.root, s, nil)
	if err != nil {
		return 0.0, fmt.Errorf("predicting sample: %v", err)
	}
	var total float64
	for _, l := range leaves {
		p, err := l.prediction(ctx, s)
		if err != nil {
			return 0.0, fmt.Errorf("predicting sample: %v", err)
		}
		total += p
	}
	return total / float64(len(leaves)), nil
}

/*
Summary returns a Summary with the current structure counters of the
tree.
*/
func (t *Tree) Summary() Summary {
	return Summary{t.nodeCount, t.activeLeafCount, t.inactiveLeafCount, t.optionNodeCount, t.optionBranchCount}
}

/*
Root returns the root node of the tree, nil before any sample is
learned.
*/
func (t *Tree) Root() Node {
	return t.root
}

/*
Features returns the features the tree describes its samples with.
*/
func (t *Tree) Features() []feature.Feature {
	return t.features
}

/*
Weight returns the total weight of the samples the tree has learned.
*/
func (t *Tree) Weight() float64 {
	return t.trainWeight
}

/*
ByteSize returns the tree's last estimation of its own memory, in
bytes.
*/
func (t *Tree) ByteSize() int {
	return t.byteEstimate
}

type leafRef struct {
	leaf   *Leaf
	parent Node
	index  int
}

/*
routeLearn descends the tree with a sample for learning, accumulating a
reference to every leaf the sample reaches together with the node the
leaf hangs from. Branches crossed on the way add the sample's weight to
their routing bookkeeping.
*/
func (t *Tree) routeLearn(ctx context.Context, n Node, parent Node, index int, s feature.Sample, weight float64, refs []leafRef) ([]leafRef, error) {
	switch node := n.(type) {
	case *Leaf:
		refs = append(refs, leafRef{node, parent, index})
	case *Branch:
		i, err := node.branchFor(ctx, s)
		if err != nil {
			return nil, err
		}
		node.Weights[i] += weight
		return t.routeLearn(ctx, node.Children[i], node, i, s, weight, refs)
	case *OptionBranch:
		var err error
		for i, child := range node.Children {
			refs, err = t.routeLearn(ctx, child, node, i, s, weight, refs)
			if err != nil {
				return nil, err
			}
		}
	}
	return refs, nil
}

/*
searchLeaves descends the tree with a sample for predicting,
accumulating every leaf the sample reaches.
*/
func (t *Tree) searchLeaves(ctx context.Context, n Node, s feature.Sample, leaves []*Leaf) ([]*Leaf, error) {
	switch node := n.(type) {
	case *Leaf:
		leaves = append(leaves, node)
	case *Branch:
		i, err := node.branchFor(ctx, s)
		if err != nil {
			return nil, err
		}
		return t.searchLeaves(ctx, node.Children[i], s, leaves)
	case *OptionBranch:
		var err error
		for _, child := range node.Children {
			leaves, err = t.searchLeaves(ctx, child, s, leaves)
			if err != nil {
				return nil, err
			}
		}
	}
	return leaves, nil
}

/*
trainLeaf updates a reached leaf with a sample, its target and its
weight, and lets the leaf attempt to split when it is active, growth is
allowed and a grace period has passed since its last attempt. Leaves
standing at the maximum depth are deactivated instead.
*/
func (t *Tree) trainLeaf(ctx context.Context, ref leafRef, s feature.Sample, target, weight float64) error {
	leaf := ref.leaf
	leaf.Stats.Update(target, weight)
	if leaf.Model != nil {
		err := leaf.Model.FitOne(ctx, s, target, weight)
		if err != nil {
			return fmt.Errorf("updating leaf model: %v", err)
		}
	}
	if leaf.Active {
		err := t.updateSplitters(ctx, leaf, s, target, weight)
		if err != nil {
			return err
		}
	}
	if !t.growthAllowed || !leaf.Active {
		return nil
	}
	if t.opts.MaxDepth > 0 && leaf.Depth >= t.opts.MaxDepth {
		t.deactivateLeaf(leaf)
		return nil
	}
	if leaf.Stats.Total()-leaf.LastSplitAttempt >= float64(t.opts.GracePeriod) {
		t.attemptSplit(leaf, ref.parent, ref.index)
		leaf.LastSplitAttempt = leaf.Stats.Total()
	}
	return nil
}

/*
updateSplitters feeds a sample's feature values and target to the
splitters of a leaf, skipping undefined values and features disabled at
the leaf. Splitters are created the first time their feature is
observed at the leaf.
*/
func (t *Tree) updateSplitters(ctx context.Context, leaf *Leaf, s feature.Sample, target, weight float64) error {
	for _, f := range t.features {
		if leaf.featureDisabled(f.Name()) {
			continue
		}
		v, err := s.ValueFor(ctx, f)
		if err != nil {
			return fmt.Errorf("reading feature %s: %v", f.Name(), err)
		}
		if v == nil {
			continue
		}
		sp := leaf.splitters[f.Name()]
		if sp == nil {
			sp = t.newSplitterFor(f)
			if leaf.splitters == nil {
				leaf.splitters = make(map[string]splitter.Splitter)
			}
			leaf.splitters[f.Name()] = sp
		}
		sp.Update(v, target, weight)
	}
	return nil
}

/*
newSplitterFor returns a fresh splitter for the given feature: a
nominal one for discrete features and features declared nominal, and a
clone of the configured splitter prototype otherwise.
*/
func (t *Tree) newSplitterFor(f feature.Feature) splitter.Splitter {
	if _, ok := f.(*feature.DiscreteFeature); ok || t.nominal[f.Name()] {
		return splitter.NewNominal()
	}
	return t.opts.Splitter.Clone()
}

/*
newLeafNode returns a fresh active leaf and accounts for it in the
tree's counters. The leaf inherits a clone of the given model when not
nil, or of the tree's model prototype otherwise.
*/
func (t *Tree) newLeafNode(depth int, leafStats *stats.Var, model Model) *Leaf {
	if model != nil {
		model = model.Clone()
	} else if t.opts.Model != nil {
		model = t.opts.Model.Clone()
	}
	l := newLeaf(depth, leafStats, model)
	t.nodeCount++
	t.activeLeafCount++
	return l
}

func (t *Tree) deactivateLeaf(l *Leaf) {
	if !l.Active {
		return
	}
	l.deactivate()
	t.activeLeafCount--
	t.inactiveLeafCount++
}

func (t *Tree) activateLeaf(l *Leaf) {
	if l.Active {
		return
	}
	l.activate()
	t.activeLeafCount++
	t.inactiveLeafCount--
}

/*
replaceChild puts a node where another node stood: at the given index
of the given parent, or at the root of the tree for a nil parent.
*/
func (t *Tree) replaceChild(parent Node, index int, n Node) {
	switch p := parent.(type) {
	case nil:
		t.root = n
	case *Branch:
		p.Children[index] = n
	case *OptionBranch:
		p.Children[index] = n
	}
}

/*
recount walks the nodes under n recomputing the tree's structure
counters.
*/
func (t *Tree) recount(n Node) {
	if n == nil {
		return
	}
	t.nodeCount++
	switch node := n.(type) {
	case *Leaf:
		if node.Active {
			t.activeLeafCount++
		} else {
			t.inactiveLeafCount++
		}
	case *Branch:
		for _, child := range node.Children {
			t.recount(child)
		}
	case *OptionBranch:
		t.optionNodeCount++
		t.optionBranchCount += len(node.Children)
		for _, child := range node.Children {
			t.recount(child)
		}
	}
}

func (t *Tree) String() string {
	if t == nil || t.root == nil {
		return "[]\n"
	}
	return t.nodeString(t.root)
}

/*
nodeString renders the subtree under a node as an indented multi-line
block, one node per line, with the criterion that selects each child of
a branch rendered before the child's own block.
*/
func (t *Tree) nodeString(n Node) string {
	var result string
	var blocks []string
	switch node := n.(type) {
	case *Leaf:
		result = fmt.Sprintf("[leaf weight=%.1f mean=%.3f]\n", node.Stats.Total(), node.Stats.Mean())
		if !node.Active {
			result = fmt.Sprintf("[inactive leaf weight=%.1f mean=%.3f]\n", node.Stats.Total(), node.Stats.Mean())
		}
		return result
	case *Branch:
		result = fmt.Sprintf("[branch on %s]\n", node.Feature.Name())
		for i, child := range node.Children {
			blocks = append(blocks, fmt.Sprintf("{ %v }\n%s", node.Criteria[i], t.nodeString(child)))
		}
	case *OptionBranch:
		result = fmt.Sprintf("[option x%d]\n", len(node.Children))
		for _, child := range node.Children {
			blocks = append(blocks, t.nodeString(child))
		}
	}
	for i, block := range blocks {
		for j, line := range strings.Split(block, "\n") {
			if len(line) == 0 {
				continue
			}
			if j == 0 {
				result = fmt.Sprintf("%s|__%s\n", result, line)
			} else if i == len(blocks)-1 {
				result = fmt.Sprintf("%s   %s\n", result, line)
			} else {
				result = fmt.Sprintf("%s|  %s\n", result, line)
			}
		}
	}
	return result
}
