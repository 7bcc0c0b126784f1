package splitter

import (
	"github.com/jay-ng-mc/river/feature"
	"github.com/jay-ng-mc/river/stats"
)

const ebstNodeBytes = 96

/*
EBST is a Splitter for continuous features. It keeps the observed values
in a binary search tree, each node accumulating the target statistics of
the samples observed with its exact value, so that an in-order walk can
evaluate the split at the midpoint between every pair of adjacent
observed values using interval statistics only.
*/
type EBST struct {
	root  *ebstNode
	nodes int
}

type ebstNode struct {
	value       float64
	stats       *stats.Var
	left, right *ebstNode
}

/*
NewEBST returns an empty *EBST.
*/
func NewEBST() *EBST {
	return &EBST{}
}

/*
Update feeds the splitter a sample's feature value along with its target
and weight. Nil and non-float64 values are ignored.
*/
func (e *EBST) Update(value interface{}, target, weight float64) {
	v, ok := value.(float64)
	if !ok {
		return
	}
	if e.root == nil {
		e.root = e.newNode(v, target, weight)
		return
	}
	node := e.root
	for {
		if v == node.value {
			node.stats.Update(target, weight)
			return
		}
		if v < node.value {
			if node.left == nil {
				node.left = e.newNode(v, target, weight)
				return
			}
			node = node.left
		} else {
			if node.right == nil {
				node.right = e.newNode(v, target, weight)
				return
			}
			node = node.right
		}
	}
}

func (e *EBST) newNode(value, target, weight float64) *ebstNode {
	vs := stats.NewVar()
	vs.Update(target, weight)
	e.nodes++
	return &ebstNode{value: value, stats: vs}
}

/*
Suggest walks the observed values in order and returns the midpoint
threshold achieving the best merit under the given criterion, with the
target statistics of the two intervals it delimits. When fewer than two
distinct values have been observed it returns NoSuggestion.
*/
func (e *EBST) Suggest(c Criterion, pre *stats.Var, f feature.Feature, binaryOnly bool) Suggestion {
	best := NoSuggestion()
	if e.root == nil || pre.Total() == 0 {
		return best
	}
	observed := e.observed()
	aux := stats.NewVar()
	var prev float64
	var walk func(node *ebstNode)
	walk = func(node *ebstNode) {
		if node == nil {
			return
		}
		walk(node.left)
		if aux.Total() > 0 {
			left := aux.Clone()
			right := observed.Clone()
			right.Sub(aux)
			post := []*stats.Var{left, right}
			if merit := c.Merit(pre, post); merit > best.Merit {
				best = Suggestion{Feature: f, Merit: merit, Pivot: (prev + node.value) / 2, Post: post}
			}
		}
		aux.Add(node.stats)
		prev = node.value
		walk(node.right)
	}
	walk(e.root)
	return best
}

/*
RemoveBadSplits walks the observed values scoring each split point as in
Suggest and discards every subtree all of whose split points score below
lastCheckRatio minus twice the bound, relative to lastCheckMerit. The
target statistics of discarded values are implicitly merged into the
interval to their right on later suggestions.
*/
func (e *EBST) RemoveBadSplits(c Criterion, pre *stats.Var, lastCheckRatio, lastCheckMerit, bound float64) {
	if e.root == nil || lastCheckMerit <= 0 || pre.Total() == 0 {
		return
	}
	cutoff := lastCheckRatio - 2*bound
	observed := e.observed()
	aux := stats.NewVar()
	var walk func(node *ebstNode) bool
	walk = func(node *ebstNode) bool {
		if node == nil {
			return true
		}
		leftBad := walk(node.left)
		bad := true
		if aux.Total() > 0 {
			left := aux.Clone()
			right := observed.Clone()
			right.Sub(aux)
			merit := c.Merit(pre, []*stats.Var{left, right})
			bad = merit/lastCheckMerit < cutoff
		}
		aux.Add(node.stats)
		rightBad := walk(node.right)
		if leftBad && node.left != nil {
			node.left = nil
		}
		if rightBad && node.right != nil {
			node.right = nil
		}
		return bad && leftBad && rightBad
	}
	if walk(e.root) {
		e.root = nil
	}
	e.nodes = e.countNodes(e.root)
}

/*
observed accumulates the target statistics of every value in the tree:
the statistics of the samples that defined a value for the feature,
excluding the weight the leaf saw with no value for it.
*/
func (e *EBST) observed() *stats.Var {
	total := stats.NewVar()
	var walk func(node *ebstNode)
	walk = func(node *ebstNode) {
		if node == nil {
			return
		}
		total.Add(node.stats)
		walk(node.left)
		walk(node.right)
	}
	walk(e.root)
	return total
}

func (e *EBST) countNodes(node *ebstNode) int {
	if node == nil {
		return 0
	}
	return 1 + e.countNodes(node.left) + e.countNodes(node.right)
}

/*
Clone returns a fresh empty *EBST.
*/
func (e *EBST) Clone() Splitter {
	return NewEBST()
}

/*
ByteSize returns an estimation of the memory the splitter holds.
*/
func (e *EBST) ByteSize() int {
	return e.nodes * ebstNodeBytes
}
