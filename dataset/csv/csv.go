package csv

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/jay-ng-mc/river/dataset"
	"github.com/jay-ng-mc/river/feature"
)

/*
Writer is an interface for a destination to which samples
can be written as CSV rows.
*/
type Writer interface {
	// Write will attempt to write the given number
	// of samples and will return the actually written
	// number of samples and an error (if not all samples
	// could be written)
	Write(context.Context, []dataset.Sample) (int, error)
	// Count returns the total number of samples written
	// to the writer
	Count() int
	// Flush ensures any pending written operations finish
	// before returning. It returns an error if that cannot
	// be ensured.
	Flush() error
}

/*
CollectionGenerator is a function that takes a slice of samples
and generates a dataset.Collection with them.
*/
type CollectionGenerator func([]dataset.Sample) dataset.Collection

type csvWriter struct {
	count    int
	features []feature.Feature
	w        *csv.Writer
}

type stream struct {
	r        io.Reader
	closer   io.Closer
	features []feature.Feature
}

/*
NewStream takes an io.Reader for a CSV stream and a slice of features and
returns a dataset.Stream that parses and delivers the samples on the
reader as they are requested, without holding the whole collection in
memory. The stream can only be read once.

The header or first row of the CSV content is expected to consist of the
names of the features in the given slice. The rest of the rows should
consist of valid values for the all features and/or the '?' string to
indicate an undefined value.
*/
func NewStream(reader io.Reader, features []feature.Feature) dataset.Stream {
	return &stream{r: reader, features: features}
}

/*
StreamFromFilePath takes a filepath string and a slice of features and
returns a dataset.Stream that parses and delivers the samples on the
file as they are requested. If the filepath is "" os.Stdin is used
instead. The file is closed when the stream is exhausted or cancelled.
An error is returned if the given filepath cannot be opened for reading.
*/
func StreamFromFilePath(filepath string, features []feature.Feature) (dataset.Stream, error) {
	if filepath == "" {
		return &stream{r: os.Stdin, features: features}, nil
	}
	f, err := os.Open(filepath)
	if err != nil {
		return nil, fmt.Errorf("reading samples: %v", err)
	}
	return &stream{r: f, closer: f, features: features}, nil
}

func (cs *stream) Read(ctx context.Context) (<-chan dataset.Sample, <-chan error) {
	sampleStream := make(chan dataset.Sample)
	errStream := make(chan error, 1)
	go func() {
		defer close(sampleStream)
		defer close(errStream)
		if cs.closer != nil {
			defer cs.closer.Close()
		}
		err := ReadBySample(cs.r, cs.features, func(_ int, s dataset.Sample) (bool, error) {
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

/*
ReadCollection takes an io.Reader for a CSV stream, a slice of features and a
CollectionGenerator and returns a dataset.Collection built with the
CollectionGenerator and the samples parsed from the reader or an error.

The header or first row of the CSV content is expected to consist of the names
of the features in the given slice. The rest of the rows should consist of valid
values for the all features and/or the '?' string to indicate an undefined value.
*/
func ReadCollection(reader io.Reader, features []feature.Feature, cg CollectionGenerator) (dataset.Collection, error) {
	samples := []dataset.Sample{}
	err := ReadBySample(reader, features, func(_ int, s dataset.Sample) (bool, error) {
		samples = append(samples, s)
		return true, nil
	})
	if err != nil {
		return nil, err
	}
	return cg(samples), nil
}

/*
ReadBySample takes an io.Reader for a CSV stream, a slice of features and a
lambda function on an integer and a dataset.Sample that returns a boolean value.
It parses the samples from the reader and for each it calls the lambda function
with the sample and its index as parameters. If the lambda function returns true,
it will continue processing the next sample, otherwise it will stop. An error is
returned if something goes wrong when reading the stream or parsing a sample.

The header or first row of the CSV content is expected to consist of the names
of the features in the given slice. The rest of the rows should consist of valid
values for the all features and/or the '?' string to indicate an undefined value.
*/
func ReadBySample(reader io.Reader, features []feature.Feature, lambda func(int, dataset.Sample) (bool, error)) error {
	featuresByName := featureSliceToMap(features)
	r := csv.NewReader(reader)
	header, err := r.Read()
	if err != nil {
		return fmt.Errorf("reading header: %v", err)
	}
	features, err = parseFeaturesFromCSVHeader(header, featuresByName)
	if err != nil {
		return err
	}
	for l := 2; ; l++ {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("reading body: %v", err)
		}
		sample, err := parseSampleFromCSVRow(row, features)
		if err != nil {
			return fmt.Errorf("parsing line %d: %v", l, err)
		}
		ok, err := lambda(l-2, sample)
		if err != nil {
			return err
		}
		if !ok {
			break
		}
	}
	return nil
}

/*
ReadCollectionFromFilePath takes a filepath string, a slice of features and a
CollectionGenerator, opens the file to which the filepath points to and uses
ReadCollection to return a dataset.Collection or an error read from it. If the
filepath is "" os.Stdin is used instead. It will return an error if the given
filepath cannot be opened for reading.
*/
func ReadCollectionFromFilePath(filepath string, features []feature.Feature, cg CollectionGenerator) (dataset.Collection, error) {
	var f *os.File
	var err error
	if filepath == "" {
		f = os.Stdin
	} else {
		f, err = os.Open(filepath)
		if err != nil {
			return nil, fmt.Errorf("reading samples: %v", err)
		}
	}
	defer f.Close()
	collection, err := ReadCollection(f, features, cg)
	if err != nil {
		err = fmt.Errorf("parsing CSV file %s: %v", filepath, err)
	}
	return collection, err
}

/*
NewWriter takes an io.Writer and a slice of feature.Features and
returns a Writer that will write any samples on the io.Writer.
*/
func NewWriter(writer io.Writer, features []feature.Feature) (Writer, error) {
	w := csv.NewWriter(writer)
	record := make([]string, len(features))
	for i, f := range features {
		record[i] = f.Name()
	}
	err := w.Write(record)
	if err != nil {
		return nil, fmt.Errorf("writing CSV header: %v", err)
	}
	return &csvWriter{features: features, w: w}, nil
}

/*
WriteCSVStream takes a writer, a dataset.Stream and a slice of features
and dumps on the writer the samples of the stream in CSV format,
specifying only the features in the given slice for the samples. It
returns an error if something went wrong when reading the stream,
writing to the writer or codifying the samples.
*/
func WriteCSVStream(ctx context.Context, writer io.Writer, s dataset.Stream, features []feature.Feature) error {
	cw, err := NewWriter(writer, features)
	if err != nil {
		return err
	}
	sampleStream, errStream := s.Read(ctx)
	for sample := range sampleStream {
		_, err = cw.Write(ctx, []dataset.Sample{sample})
		if err != nil {
			return err
		}
	}
	if err = <-errStream; err != nil {
		return err
	}
	return cw.Flush()
}

func parseFeaturesFromCSVHeader(header []string, features map[string]feature.Feature) ([]feature.Feature, error) {
	featureOrder := []feature.Feature{}
	for i, name := range header {
		f, ok := features[name]
		if ok {
			featureOrder = append(featureOrder, f)
		} else {
			if i != len(header)-1 {
				return nil, fmt.Errorf("parsing header: reference to unknown feature %s", name)
			}
		}
	}
	return featureOrder, nil
}

func parseSampleFromCSVRow(row []string, featureOrder []feature.Feature) (dataset.Sample, error) {
	featureValues := make(map[string]interface{})
	for i, f := range featureOrder {
		v := row[i]
		var value interface{}
		var err error
		var ok bool
		if v != "?" {
			if _, ok = f.(*feature.ContinuousFeature); ok {
				value, err = strconv.ParseFloat(v, 64)
				if err != nil {
					return nil, fmt.Errorf("converting %s to float64: %v", v, err)
				}
			} else {
				value = v
			}
		}
		if ok, err = f.Valid(value); !ok {
			return nil, fmt.Errorf("invalid value %v of type %T for feature %s: %v", value, value, f.Name(), err)
		}
		featureValues[f.Name()] = value
	}
	return dataset.NewSample(featureValues), nil
}

func (cw *csvWriter) Count() int {
	return cw.count
}

func (cw *csvWriter) Write(ctx context.Context, samples []dataset.Sample) (int, error) {
	n := 0
	var err error
	for ; n < len(samples); n++ {
		err = cw.writeSample(ctx, samples[n])
		if err != nil {
			return n, err
		}
	}
	return len(samples), nil
}

func (cw *csvWriter) writeSample(ctx context.Context, sample dataset.Sample) error {
	record := make([]string, len(cw.features))
	for j, f := range cw.features {
		v, err := sample.ValueFor(ctx, f)
		if err != nil {
			return err
		}
		if v == nil {
			record[j] = "?"
		} else {
			record[j] = fmt.Sprintf("%v", v)
		}
	}
	err := cw.w.Write(record)
	if err != nil {
		return fmt.Errorf("writing CSV row for sample %d: %v", cw.count+1, err)
	}
	cw.count++
	return nil
}

func (cw *csvWriter) Flush() error {
	cw.w.Flush()
	return cw.w.Error()
}

func featureSliceToMap(features []feature.Feature) map[string]feature.Feature {
	result := make(map[string]feature.Feature)
	for _, f := range features {
		result[f.Name()] = f
	}
	return result
}
