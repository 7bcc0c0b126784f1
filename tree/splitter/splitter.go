/*
Package splitter provides per-feature split proposers for incremental
regression trees: they accumulate the joint distribution of one feature's
values and a numeric target, and at any point report the best way found
so far to partition the samples on that feature.
*/
package splitter

import (
	"math"

	"github.com/jay-ng-mc/river/feature"
	"github.com/jay-ng-mc/river/stats"
)

/*
Suggestion represents a candidate split of a leaf's samples on a feature:
for continuous features a threshold (Pivot) splitting them in two, for
discrete features either one child per value (Multiway) or the value in
Values versus every other one.

A Suggestion with a nil Feature represents not splitting: splitters
return one when they have no evaluable split point, and trees rank one
against the found splits when merit pre-pruning is on.

Post holds the target statistics of the samples each resulting child
would receive, in child order.
*/
type Suggestion struct {
	Feature  feature.Feature
	Merit    float64
	Pivot    float64
	Values   []string
	Multiway bool
	Post     []*stats.Var
}

/*
NoSuggestion returns the Suggestion representing the absence of any
evaluable split point.
*/
func NoSuggestion() Suggestion {
	return Suggestion{Merit: math.Inf(-1)}
}

/*
Splitter represents the split proposer for a single feature of a leaf.

Its Update method feeds it a sample's value for the feature along with
the sample's target and weight. Nil values and values of an unexpected
type are ignored.

Its Suggest method returns the best split found for the accumulated
distribution, scored with the given criterion against the leaf's
pre-split target statistics. Proposers for discrete features only emit
one-vs-rest splits when binaryOnly is set.

Its RemoveBadSplits method discards split points whose merit relative to
lastCheckMerit, the best merit seen at the leaf's last split attempt,
falls below lastCheckRatio minus twice the bound, freeing their memory.

Its Clone method returns a fresh, empty splitter of the same kind, used
to derive per-feature splitters from a configured prototype.

Its ByteSize method reports an estimation of the memory the splitter
holds, in bytes.
*/
type Splitter interface {
	Update(value interface{}, target, weight float64)
	Suggest(c Criterion, pre *stats.Var, f feature.Feature, binaryOnly bool) Suggestion
	RemoveBadSplits(c Criterion, pre *stats.Var, lastCheckRatio, lastCheckMerit, bound float64)
	Clone() Splitter
	ByteSize() int
}
