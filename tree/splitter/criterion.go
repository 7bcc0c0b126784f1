package splitter

import "github.com/jay-ng-mc/river/stats"

/*
Criterion scores candidate partitions of a leaf's samples by the
reduction in target variance they achieve. A partition only scores when
every resulting child would hold at least MinSamplesSplit weight,
otherwise its merit is 0.
*/
type Criterion struct {
	MinSamplesSplit float64
}

/*
Merit takes the target statistics accumulated at a leaf and the target
statistics of the children a candidate split would produce, and returns
the variance reduction the split achieves: the leaf's target variance
minus the weighted average of the children's target variances.
*/
func (c Criterion) Merit(pre *stats.Var, post []*stats.Var) float64 {
	if len(post) < 2 {
		return 0
	}
	n := pre.Total()
	if n == 0 {
		return 0
	}
	for _, dist := range post {
		if dist.Total() < c.MinSamplesSplit {
			return 0
		}
	}
	merit := pre.Get()
	for _, dist := range post {
		merit -= dist.Total() / n * dist.Get()
	}
	return merit
}

/*
Range returns the range the merit of a split of the given distribution
can span, used to scale the Hoeffding bound.
*/
func (c Criterion) Range(pre *stats.Var) float64 {
	return 1
}
