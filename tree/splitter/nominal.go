package splitter

import (
	"fmt"
	"sort"

	"github.com/jay-ng-mc/river/feature"
	"github.com/jay-ng-mc/river/stats"
)

const nominalCategoryBytes = 64

/*
Nominal is a Splitter for discrete features. It accumulates target
statistics per observed category and proposes either the multiway split
with one child per category or the best one-vs-rest binary split.
*/
type Nominal struct {
	categories map[string]*stats.Var
}

/*
NewNominal returns an empty *Nominal.
*/
func NewNominal() *Nominal {
	return &Nominal{make(map[string]*stats.Var)}
}

/*
Update feeds the splitter a sample's feature value along with its target
and weight. Nil values are ignored and non-string values are keyed by
their default formatting.
*/
func (n *Nominal) Update(value interface{}, target, weight float64) {
	if value == nil {
		return
	}
	v, ok := value.(string)
	if !ok {
		v = fmt.Sprintf("%v", value)
	}
	vs, ok := n.categories[v]
	if !ok {
		vs = stats.NewVar()
		n.categories[v] = vs
	}
	vs.Update(target, weight)
}

/*
Suggest scores the multiway split over every observed category (unless
binaryOnly is set) and the one-vs-rest split for each category, and
returns the best under the given criterion. When fewer than two
categories have been observed it returns NoSuggestion.
*/
func (n *Nominal) Suggest(c Criterion, pre *stats.Var, f feature.Feature, binaryOnly bool) Suggestion {
	best := NoSuggestion()
	if len(n.categories) < 2 || pre.Total() == 0 {
		return best
	}
	values := make([]string, 0, len(n.categories))
	for v := range n.categories {
		values = append(values, v)
	}
	sort.Strings(values)
	if !binaryOnly {
		post := make([]*stats.Var, 0, len(values))
		for _, v := range values {
			post = append(post, n.categories[v].Clone())
		}
		if merit := c.Merit(pre, post); merit > best.Merit {
			best = Suggestion{Feature: f, Merit: merit, Values: values, Multiway: true, Post: post}
		}
	}
	// the rest child spans the other observed categories only, not
	// the weight the leaf saw with no value for the feature
	observed := stats.NewVar()
	for _, v := range values {
		observed.Add(n.categories[v])
	}
	for _, v := range values {
		actual := n.categories[v].Clone()
		rest := observed.Clone()
		rest.Sub(actual)
		post := []*stats.Var{actual, rest}
		if merit := c.Merit(pre, post); merit > best.Merit {
			best = Suggestion{Feature: f, Merit: merit, Values: []string{v}, Post: post}
		}
	}
	return best
}

/*
RemoveBadSplits is a no-op: the memory a nominal splitter holds is
bounded by the feature's cardinality.
*/
func (n *Nominal) RemoveBadSplits(c Criterion, pre *stats.Var, lastCheckRatio, lastCheckMerit, bound float64) {
}

/*
Clone returns a fresh empty *Nominal.
*/
func (n *Nominal) Clone() Splitter {
	return NewNominal()
}

/*
ByteSize returns an estimation of the memory the splitter holds.
*/
func (n *Nominal) ByteSize() int {
	return len(n.categories) * nominalCategoryBytes
}
