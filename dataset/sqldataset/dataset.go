package sqldataset

import (
	"context"
	"fmt"

	"github.com/jay-ng-mc/river/dataset"
	"github.com/jay-ng-mc/river/feature"
)

type sqlDataset struct {
	db                    Adapter
	features              []feature.Feature
	featureNamesColumns   map[string]string
	columnFeatures        map[string]feature.Feature
	discreteValues        map[int]string
	inverseDiscreteValues map[string]int
	dfColumns             []string
	cfColumns             []string
}

/*
Open takes an Adapter to a db backend and a slice of feature.Feature
and returns a dataset.Collection backed by the given adapter or an
error if no collection is available through the given adapter.

This function expects the adapter to have the samples and discrete value
tables already created, and the discrete value table initialized with all
the values of the discrete features in the features slice.
*/
func Open(ctx context.Context, dbAdapter Adapter, features []feature.Feature) (dataset.Collection, error) {
	sd := &sqlDataset{db: dbAdapter, features: features}
	err := sd.initFeatureColumns()
	if err != nil {
		return nil, err
	}
	err = sd.init(ctx)
	if err != nil {
		return nil, err
	}
	return sd, nil
}

/*
Create takes an Adapter and a slice of feature.Feature and returns a
dataset.Collection backed by the given adapter or an error.

This function will ensure that the samples and discrete value tables are
created on the database, and that the discrete value table has all the
values for the discrete features on the features slice.
*/
func Create(ctx context.Context, dbAdapter Adapter, features []feature.Feature) (dataset.Collection, error) {
	sd := &sqlDataset{db: dbAdapter, features: features}
	err := sd.initFeatureColumns()
	if err != nil {
		return nil, err
	}
	err = sd.initDB(ctx)
	if err != nil {
		return nil, err
	}
	return sd, nil
}

func (sd *sqlDataset) Count(ctx context.Context) (int, error) {
	return sd.db.CountSamples(ctx)
}

func (sd *sqlDataset) Write(ctx context.Context, samples []dataset.Sample) (int, error) {
	if len(samples) == 0 {
		return 0, nil
	}
	rawSamples := make([]map[string]interface{}, 0, len(samples))
	for _, s := range samples {
		rs, err := sd.newRawSample(ctx, s)
		if err != nil {
			return 0, err
		}
		rawSamples = append(rawSamples, rs)
	}
	return sd.db.AddSamples(ctx, rawSamples, sd.dfColumns, sd.cfColumns)
}

func (sd *sqlDataset) Read(ctx context.Context) (<-chan dataset.Sample, <-chan error) {
	sampleStream := make(chan dataset.Sample)
	errStream := make(chan error, 1)
	go func() {
		defer close(sampleStream)
		defer close(errStream)
		err := sd.db.IterateOnSamples(
			ctx,
			sd.dfColumns,
			sd.cfColumns,
			func(n int, rs map[string]interface{}) (bool, error) {
				s := &Sample{
					Values:                rs,
					DiscreteFeatureValues: sd.discreteValues,
					FeatureNamesColumns:   sd.featureNamesColumns}
				select {
				case <-ctx.Done():
					return false, ctx.Err()
				case sampleStream <- s:
				}
				return true, nil
			})
		if err != nil {
			errStream <- err
		}
	}()
	return sampleStream, errStream
}

func (sd *sqlDataset) initDB(ctx context.Context) error {
	err := sd.db.CreateDiscreteValuesTable(ctx)
	if err != nil {
		return err
	}
	err = sd.db.CreateSampleTable(ctx, sd.dfColumns, sd.cfColumns)
	if err != nil {
		return err
	}
	sd.discreteValues, err = sd.db.ListDiscreteValues(ctx)
	if err != nil {
		return err
	}
	newValues := sd.unavailableDiscreteValues()
	_, err = sd.db.AddDiscreteValues(ctx, newValues)
	if err != nil {
		return err
	}
	return sd.init(ctx)
}

func (sd *sqlDataset) unavailableDiscreteValues() []string {
	var unavailableDiscreteValues []string
	for _, f := range sd.features {
		df, ok := f.(*feature.DiscreteFeature)
		if !ok {
			continue
		}
		for _, fv := range df.AvailableValues() {
			var present bool
			for _, pv := range sd.discreteValues {
				if fv == pv {
					present = true
					break
				}
			}
			if !present {
				for _, uv := range unavailableDiscreteValues {
					if fv == uv {
						present = true
						break
					}
				}
				if !present {
					unavailableDiscreteValues = append(unavailableDiscreteValues, fv)
				}
			}
		}
	}
	return unavailableDiscreteValues
}

func (sd *sqlDataset) init(ctx context.Context) error {
	var err error
	sd.discreteValues, err = sd.db.ListDiscreteValues(ctx)
	if err != nil {
		return err
	}
	sd.inverseDiscreteValues = make(map[string]int)
	for k, v := range sd.discreteValues {
		sd.inverseDiscreteValues[v] = k
	}
	return nil
}

func (sd *sqlDataset) newRawSample(ctx context.Context, s dataset.Sample) (map[string]interface{}, error) {
	rs := make(map[string]interface{})
	for _, f := range sd.features {
		v, err := s.ValueFor(ctx, f)
		if err != nil {
			return nil, err
		}
		if v == nil {
			continue
		}
		if _, ok := f.(*feature.DiscreteFeature); ok {
			vs, ok := v.(string)
			if !ok {
				return nil, fmt.Errorf("expected string value for discrete feature %s of sample, got %T", f.Name(), v)
			}
			iv, ok := sd.inverseDiscreteValues[vs]
			if !ok {
				return nil, fmt.Errorf("unknown value %q for discrete feature %s", vs, f.Name())
			}
			v = iv
		}
		rs[sd.featureNamesColumns[f.Name()]] = v
	}
	return rs, nil
}

func (sd *sqlDataset) initFeatureColumns() error {
	sd.columnFeatures = make(map[string]feature.Feature)
	sd.featureNamesColumns = make(map[string]string)
	for _, f := range sd.features {
		column, err := sd.db.ColumnName(f.Name())
		if err != nil {
			return fmt.Errorf("invalid feature %s: %v", f.Name(), err)
		}
		of, ok := sd.columnFeatures[column]
		if ok {
			return fmt.Errorf("%s and %s feature names translate to the same column name %s", f.Name(), of.Name(), column)
		}
		sd.columnFeatures[column] = f
		sd.featureNamesColumns[f.Name()] = column
	}
	for _, f := range sd.features {
		if _, ok := f.(*feature.DiscreteFeature); ok {
			sd.dfColumns = append(sd.dfColumns, sd.featureNamesColumns[f.Name()])
		} else {
			sd.cfColumns = append(sd.cfColumns, sd.featureNamesColumns[f.Name()])
		}
	}
	return nil
}
