// Package river grows regression models from streams of samples, one
// sample at a time.
package river

import (
	"context"
	"fmt"
	"math"

	"github.com/jay-ng-mc/river/dataset"
	"github.com/jay-ng-mc/river/feature"
	"github.com/jay-ng-mc/river/stats"
)

// TrainingError represents an error found with a sample while training
// or evaluating a regressor on a stream.
type TrainingError string

// ErrMissingTarget is the error returned by Train and Evaluate when a
// sample on the stream does not define a value for the target feature.
const ErrMissingTarget = TrainingError("sample does not define a value for the target feature")

func (te TrainingError) Error() string {
	return string(te)
}

// Regressor represents an online regression learner: a model that
// learns labeled samples one at a time and predicts a numeric target
// for unlabeled ones. Learning and predicting may interleave freely.
type Regressor interface {
	// Learn makes the regressor learn from the given sample, its
	// target value and its weight
	Learn(ctx context.Context, s feature.Sample, target, weight float64) error
	// Predict returns the regressor's target prediction for the
	// given sample
	Predict(ctx context.Context, s feature.Sample) (float64, error)
}

// TrainOptions allow tuning how Train reports its progress.
type TrainOptions struct {
	// ReportEvery is the number of learned samples between progress
	// reports. Non-positive values disable reporting.
	ReportEvery int
	// Logf is the function progress reports are made through. A nil
	// Logf disables reporting.
	Logf func(format string, a ...interface{})
}

// Train takes a context, a regressor, a stream of samples, a target
// feature and a set of options, and makes the regressor learn every
// sample on the stream with the sample's value for the target feature
// as its target, each with weight 1. It returns the number of samples
// learned and an error if the stream failed, the context was cancelled
// or a sample could not be learned. A sample without a value for the
// target feature stops the training with ErrMissingTarget.
func Train(ctx context.Context, r Regressor, s dataset.Stream, target feature.Feature, opts *TrainOptions) (int, error) {
	var o TrainOptions
	if opts != nil {
		o = *opts
	}
	count := 0
	sampleStream, errStream := s.Read(ctx)
	for sample := range sampleStream {
		tv, err := targetValue(ctx, sample, target)
		if err != nil {
			return count, err
		}
		err = r.Learn(ctx, sample, tv, 1.0)
		if err != nil {
			return count, err
		}
		count++
		if o.Logf != nil && o.ReportEvery > 0 && count%o.ReportEvery == 0 {
			o.Logf("learned %d samples", count)
		}
	}
	if err := <-errStream; err != nil {
		return count, err
	}
	return count, nil
}

// Report describes how well a regressor predicted the samples of a
// stream during an evaluation.
type Report struct {
	// The number of samples evaluated
	Count int
	// The mean absolute difference between predictions and target values
	MAE float64
	// The square root of the mean squared difference between
	// predictions and target values
	RMSE float64
	// The largest absolute difference between a prediction and its
	// target value
	MaxError float64
	// The smallest and largest target values observed on the stream,
	// as a scale to judge the errors against
	TargetMin float64
	TargetMax float64
}

// Evaluate takes a context, a regressor, a stream of samples and a
// target feature and runs a prequential evaluation: every sample on
// the stream is first predicted and the prediction compared against
// the sample's value for the target feature, and then learned. Because
// each sample is predicted before the regressor has seen it, the
// accumulated errors estimate the regressor's performance on unseen
// data while the whole stream remains available for learning.
//
// It returns a report with the accumulated error metrics and an error
// if the stream failed, the context was cancelled or a sample could
// not be predicted or learned. A sample without a value for the target
// feature stops the evaluation with ErrMissingTarget.
func Evaluate(ctx context.Context, r Regressor, s dataset.Stream, target feature.Feature) (*Report, error) {
	var absErr, sqErr stats.Mean
	worst := stats.NewMax()
	low, high := stats.NewMin(), stats.NewMax()
	count := 0
	sampleStream, errStream := s.Read(ctx)
	for sample := range sampleStream {
		tv, err := targetValue(ctx, sample, target)
		if err != nil {
			return nil, fmt.Errorf("evaluating sample %d: %v", count+1, err)
		}
		p, err := r.Predict(ctx, sample)
		if err != nil {
			return nil, fmt.Errorf("evaluating sample %d: %v", count+1, err)
		}
		e := math.Abs(p - tv)
		absErr.Update(e, 1.0)
		sqErr.Update(e*e, 1.0)
		worst.Update(e)
		low.Update(tv)
		high.Update(tv)
		err = r.Learn(ctx, sample, tv, 1.0)
		if err != nil {
			return nil, fmt.Errorf("evaluating sample %d: %v", count+1, err)
		}
		count++
	}
	if err := <-errStream; err != nil {
		return nil, err
	}
	if count == 0 {
		return &Report{}, nil
	}
	return &Report{
		Count:     count,
		MAE:       absErr.Get(),
		RMSE:      math.Sqrt(sqErr.Get()),
		MaxError:  worst.Get(),
		TargetMin: low.Get(),
		TargetMax: high.Get(),
	}, nil
}

func (r *Report) String() string {
	return fmt.Sprintf("%d samples evaluated: MAE %.4f RMSE %.4f worst absolute error %.4f, targets in [%.4f, %.4f]", r.Count, r.MAE, r.RMSE, r.MaxError, r.TargetMin, r.TargetMax)
}

// targetValue extracts the value a sample defines for the target
// feature as a float64.
func targetValue(ctx context.Context, s dataset.Sample, target feature.Feature) (float64, error) {
	v, err := s.ValueFor(ctx, target)
	if err != nil {
		return 0.0, fmt.Errorf("reading target feature %s: %v", target.Name(), err)
	}
	if v == nil {
		return 0.0, ErrMissingTarget
	}
	tv, ok := v.(float64)
	if !ok {
		return 0.0, fmt.Errorf("target feature %s has non-numeric value %v", target.Name(), v)
	}
	return tv, nil
}
