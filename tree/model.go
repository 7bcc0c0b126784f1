package tree

import (
	"context"

	"github.com/jay-ng-mc/river/feature"
)

/*
Model represents an incremental regression model held at a leaf.

Its FitOne method feeds the model a sample along with its target value
and weight.

Its PredictOne method returns the model's prediction for a sample.

Its Clone method returns an independent deep copy of the model,
including any state learned so far, so that the leaves resulting from a
split can start warm from their parent's model.

Its ByteSize method reports an estimation of the memory the model
holds, in bytes.
*/
type Model interface {
	FitOne(ctx context.Context, s feature.Sample, target, weight float64) error
	PredictOne(ctx context.Context, s feature.Sample) (float64, error)
	Clone() Model
	ByteSize() int
}
