/*
Package stats provides running statistic accumulators that are updated
one observation at a time and queried at any point, without keeping the
observations around.
*/
package stats

import (
	"encoding/json"
	"math"
)

/*
Var accumulates a weighted running estimation of the variance of a
stream of values, along with their mean and total weight. The update
uses Welford's recurrence so a single pass is enough.

Two Var can be combined with Add and split apart again with Sub, which
makes them usable as interval statistics: the stats for an interval can
be obtained by subtracting the stats accumulated up to its start from
the stats accumulated up to its end.
*/
type Var struct {
	n float64
	m float64
	s float64
}

/*
NewVar returns an empty *Var.
*/
func NewVar() *Var {
	return &Var{}
}

/*
Update feeds the accumulator a value x observed with the given weight.
Updates with non-positive weights are ignored.
*/
func (v *Var) Update(x, weight float64) {
	if weight <= 0 {
		return
	}
	v.n += weight
	d := x - v.m
	v.m += (weight / v.n) * d
	v.s += weight * d * (x - v.m)
}

/*
Get returns the current sample variance estimation, 0 until more than
one unit of weight has been accumulated.
*/
func (v *Var) Get() float64 {
	if v.n > 1 {
		value := v.s / (v.n - 1)
		if value < 0 {
			return 0
		}
		return value
	}
	return 0
}

/*
Mean returns the current weighted mean of the accumulated values.
*/
func (v *Var) Mean() float64 {
	return v.m
}

/*
Total returns the total weight accumulated.
*/
func (v *Var) Total() float64 {
	return v.n
}

/*
Add merges the accumulated state of other into v, leaving v as if it had
been fed every observation both accumulators were fed.
*/
func (v *Var) Add(other *Var) {
	if other.n == 0 {
		return
	}
	if v.n == 0 {
		v.n, v.m, v.s = other.n, other.m, other.s
		return
	}
	d := v.m - other.m
	n := v.n + other.n
	v.s += other.s + d*d*(v.n*other.n)/n
	v.m = (v.n*v.m + other.n*other.m) / n
	v.n = n
}

/*
Sub removes the accumulated state of other from v, undoing a previous
Add or the feeding of other's observations to v.
*/
func (v *Var) Sub(other *Var) {
	if other.n == 0 {
		return
	}
	oldN := v.n
	v.n -= other.n
	if v.n <= 0 {
		v.n, v.m, v.s = 0, 0, 0
		return
	}
	v.m = (oldN*v.m - other.n*other.m) / v.n
	d := v.m - other.m
	v.s -= other.s + d*d*(v.n*other.n)/oldN
	if v.s < 0 {
		v.s = 0
	}
}

/*
Clone returns a new *Var with a copy of the accumulated state of v.
*/
func (v *Var) Clone() *Var {
	return &Var{v.n, v.m, v.s}
}

type varJSON struct {
	N    float64 `json:"n"`
	Mean float64 `json:"mean"`
	S    float64 `json:"s"`
}

/*
MarshalJSON serializes the accumulated state as a JSON object.
*/
func (v *Var) MarshalJSON() ([]byte, error) {
	return json.Marshal(varJSON{v.n, v.m, v.s})
}

/*
UnmarshalJSON replaces the accumulated state with one deserialized from
a JSON object produced by MarshalJSON.
*/
func (v *Var) UnmarshalJSON(data []byte) error {
	vj := &varJSON{}
	err := json.Unmarshal(data, vj)
	if err != nil {
		return err
	}
	v.n, v.m, v.s = vj.N, vj.Mean, vj.S
	return nil
}

/*
Mean accumulates a weighted running mean of a stream of values.
*/
type Mean struct {
	n float64
	m float64
}

/*
Update feeds the accumulator a value x observed with the given weight.
Updates with non-positive weights are ignored.
*/
func (m *Mean) Update(x, weight float64) {
	if weight <= 0 {
		return
	}
	m.n += weight
	m.m += (weight / m.n) * (x - m.m)
}

/*
Get returns the current weighted mean, 0 before any update.
*/
func (m *Mean) Get() float64 {
	return m.m
}

/*
Total returns the total weight accumulated.
*/
func (m *Mean) Total() float64 {
	return m.n
}

/*
Min keeps the minimum of a stream of values.
*/
type Min struct {
	v float64
}

/*
NewMin returns a *Min that will report +Inf until its first update.
*/
func NewMin() *Min {
	return &Min{math.Inf(1)}
}

/*
Update feeds the accumulator a value.
*/
func (m *Min) Update(x float64) {
	if x < m.v {
		m.v = x
	}
}

/*
Get returns the minimum value observed so far.
*/
func (m *Min) Get() float64 {
	return m.v
}

/*
Max keeps the maximum of a stream of values.
*/
type Max struct {
	v float64
}

/*
NewMax returns a *Max that will report -Inf until its first update.
*/
func NewMax() *Max {
	return &Max{math.Inf(-1)}
}

/*
Update feeds the accumulator a value.
*/
func (m *Max) Update(x float64) {
	if x > m.v {
		m.v = x
	}
}

/*
Get returns the maximum value observed so far.
*/
func (m *Max) Get() float64 {
	return m.v
}
