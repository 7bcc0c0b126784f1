package dataset

import (
	"context"
	"fmt"

	"github.com/jay-ng-mc/river/feature"
)

/*
Sample represents an item to learn from or for which to predict a target.

Its ValueFor method returns the value of the sample corresponding to the
feature passed as parameter, or nil when the sample does not define one.
*/
type Sample interface {
	feature.Sample
}

type sample struct {
	featureValues map[string]interface{}
}

/*
NewSample takes a map of feature string names to values and returns a
sample backed by it.
*/
func NewSample(featureValues map[string]interface{}) Sample {
	return &sample{featureValues}
}

func (s *sample) ValueFor(ctx context.Context, f feature.Feature) (interface{}, error) {
	return s.featureValues[f.Name()], nil
}

func (s *sample) String() string {
	return fmt.Sprintf("[%v]", s.featureValues)
}
