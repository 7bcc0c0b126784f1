package tree

import "sort"

/*
estimateSize recomputes the tree's memory estimate by walking its
nodes. The walk is linear in the size of the tree, so it runs at most
once per memory estimate period, and once per structural change to
keep the estimate from drifting between periods.
*/
func (t *Tree) estimateSize() {
	t.byteEstimate = t.subtreeBytes(t.root)
}

func (t *Tree) subtreeBytes(n Node) int {
	if n == nil {
		return 0
	}
	size := n.byteSize()
	switch node := n.(type) {
	case *Branch:
		for _, child := range node.Children {
			size += t.subtreeBytes(child)
		}
	case *OptionBranch:
		for _, child := range node.Children {
			size += t.subtreeBytes(child)
		}
	}
	return size
}

/*
enforceSizeLimit relieves memory pressure after a structural change
when the tree's memory estimate exceeds its budget. A tree configured
to stop memory management simply stops growing for good. Any other
tree deactivates its least promising active leaves until the estimate
fits the budget and, when poor attribute removal is enabled, has the
splitters of the surviving leaves shed their least promising state.
When the estimate fits the budget, the most promising inactive leaves
are activated back instead, as long as the estimate leaves room for
them.
*/
func (t *Tree) enforceSizeLimit() {
	t.estimateSize()
	if t.byteEstimate <= t.maxBytes {
		t.reactivateLeaves()
		return
	}
	if t.opts.StopMemManagement {
		t.growthAllowed = false
		return
	}
	leaves := t.collectLeaves(t.root, nil)
	sort.Slice(leaves, func(i, j int) bool {
		return leaves[i].promise() < leaves[j].promise()
	})
	for _, l := range leaves {
		if t.byteEstimate <= t.maxBytes {
			break
		}
		if !l.Active {
			continue
		}
		before := l.byteSize()
		t.deactivateLeaf(l)
		t.byteEstimate -= before - l.byteSize()
	}
	if t.opts.RemovePoorAttrs {
		for _, l := range leaves {
			if l.Active && l.lastCheckMerit > 0 {
				t.manageLeafMemory(l, l.lastCheckRatio, l.lastCheckMerit, l.lastCheckBound)
			}
		}
	}
}

/*
reactivateLeaves activates the most promising inactive leaves back,
charging the memory estimate the cost of an average active leaf for
each one.
*/
func (t *Tree) reactivateLeaves() {
	if t.inactiveLeafCount == 0 {
		return
	}
	leaves := t.collectLeaves(t.root, nil)
	avg := t.averageActiveLeafBytes(leaves)
	sort.Slice(leaves, func(i, j int) bool {
		return leaves[i].promise() > leaves[j].promise()
	})
	for _, l := range leaves {
		if l.Active {
			continue
		}
		if t.byteEstimate+avg > t.maxBytes {
			break
		}
		t.activateLeaf(l)
		t.byteEstimate += avg
	}
}

func (t *Tree) averageActiveLeafBytes(leaves []*Leaf) int {
	var total, count int
	for _, l := range leaves {
		if l.Active {
			total += l.byteSize()
			count++
		}
	}
	if count == 0 {
		return leafBaseBytes
	}
	return total / count
}

func (t *Tree) collectLeaves(n Node, leaves []*Leaf) []*Leaf {
	switch node := n.(type) {
	case *Leaf:
		leaves = append(leaves, node)
	case *Branch:
		for _, child := range node.Children {
			leaves = t.collectLeaves(child, leaves)
		}
	case *OptionBranch:
		for _, child := range node.Children {
			leaves = t.collectLeaves(child, leaves)
		}
	}
	return leaves
}

/*
manageLeafMemory has every splitter of a leaf drop the split points
that fared clearly worse than the best candidate at the leaf's last
adjudication, freeing their memory without structural change.
*/
func (t *Tree) manageLeafMemory(leaf *Leaf, lastCheckRatio, lastCheckMerit, bound float64) {
	for _, sp := range leaf.splitters {
		sp.RemoveBadSplits(t.criterion, leaf.Stats, lastCheckRatio, lastCheckMerit, bound)
	}
}
