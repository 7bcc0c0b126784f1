/*
Package linear provides an incremental least-squares linear regression
to use as leaf model on regression trees.
*/
package linear

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jay-ng-mc/river/feature"
	"github.com/jay-ng-mc/river/tree"
)

const (
	defaultLearningRate = 0.01

	weightBytes    = 48
	modelBaseBytes = 96
)

/*
Regression is an incremental linear regression fit by stochastic
gradient descent on the squared error. Continuous features contribute
their value, discrete features contribute one indicator term per
observed category.
*/
type Regression struct {
	features  []feature.Feature
	rate      float64
	intercept float64
	weights   map[string]float64
}

/*
New takes the features samples are described with and a learning rate,
and returns a *Regression over them. Non-positive learning rates are
replaced with the default 0.01.
*/
func New(features []feature.Feature, learningRate float64) *Regression {
	if learningRate <= 0 {
		learningRate = defaultLearningRate
	}
	return &Regression{
		features: features,
		rate:     learningRate,
		weights:  make(map[string]float64),
	}
}

/*
FitOne performs one gradient step on the squared error of the model's
prediction for the given sample against the given target, scaled by the
given weight.
*/
func (r *Regression) FitOne(ctx context.Context, s feature.Sample, target, weight float64) error {
	terms, err := r.terms(ctx, s)
	if err != nil {
		return fmt.Errorf("fitting sample: %v", err)
	}
	gradient := r.predict(terms) - target
	for name, value := range terms {
		r.weights[name] -= r.rate * gradient * value * weight
	}
	r.intercept -= r.rate * gradient * weight
	return nil
}

/*
PredictOne returns the model's prediction for the given sample.
*/
func (r *Regression) PredictOne(ctx context.Context, s feature.Sample) (float64, error) {
	terms, err := r.terms(ctx, s)
	if err != nil {
		return 0.0, fmt.Errorf("predicting sample: %v", err)
	}
	return r.predict(terms), nil
}

/*
Clone returns an independent copy of the model, including the weights
learned so far.
*/
func (r *Regression) Clone() tree.Model {
	weights := make(map[string]float64, len(r.weights))
	for name, w := range r.weights {
		weights[name] = w
	}
	return &Regression{r.features, r.rate, r.intercept, weights}
}

/*
ByteSize returns an estimation of the memory the model holds, in
bytes.
*/
func (r *Regression) ByteSize() int {
	return modelBaseBytes + len(r.weights)*weightBytes
}

/*
terms returns the linear terms of the given sample: one per defined
continuous feature valued with the feature's value, and one indicator
per defined discrete feature valued 1. Undefined features contribute
no term.
*/
func (r *Regression) terms(ctx context.Context, s feature.Sample) (map[string]float64, error) {
	terms := make(map[string]float64, len(r.features))
	for _, f := range r.features {
		v, err := s.ValueFor(ctx, f)
		if err != nil {
			return nil, fmt.Errorf("reading feature %s: %v", f.Name(), err)
		}
		switch value := v.(type) {
		case float64:
			terms[f.Name()] = value
		case string:
			terms[fmt.Sprintf("%s=%s", f.Name(), value)] = 1.0
		}
	}
	return terms, nil
}

func (r *Regression) predict(terms map[string]float64) float64 {
	prediction := r.intercept
	for name, value := range terms {
		prediction += r.weights[name] * value
	}
	return prediction
}

type regressionJSON struct {
	Rate      float64            `json:"rate"`
	Intercept float64            `json:"intercept"`
	Weights   map[string]float64 `json:"weights"`
}

/*
MarshalJSON serializes the state of the model, leaving out the
features it runs over, which must be provided again to DecodeJSON when
restoring it.
*/
func (r *Regression) MarshalJSON() ([]byte, error) {
	return json.Marshal(&regressionJSON{r.rate, r.intercept, r.weights})
}

/*
DecodeJSON takes the features samples are described with and a
serialized model and returns the restored *Regression, or an error if
the data does not parse.
*/
func DecodeJSON(features []feature.Feature, data []byte) (*Regression, error) {
	rj := &regressionJSON{}
	err := json.Unmarshal(data, rj)
	if err != nil {
		return nil, fmt.Errorf("parsing linear regression model: %v", err)
	}
	r := New(features, rj.Rate)
	r.intercept = rj.Intercept
	if rj.Weights != nil {
		r.weights = rj.Weights
	}
	return r, nil
}
