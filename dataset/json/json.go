/*
Package json provides a dataset.Stream and a Writer that read and write
samples as JSON objects, one per line.
*/
package json

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/jay-ng-mc/river/dataset"
	"github.com/jay-ng-mc/river/feature"
)

/*
Writer is an interface for a destination to which samples
can be written as JSON objects.
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

type jsonWriter struct {
	count    int
	features []feature.Feature
	w        *bufio.Writer
}

type stream struct {
	r        io.Reader
	closer   io.Closer
	features []feature.Feature
}

/*
NewStream takes an io.Reader and a slice of features and returns a
dataset.Stream that parses and delivers the samples on the reader as
they are requested. The stream can only be read once.

Each line of the content is expected to be a JSON object with a
property per defined feature value. Missing or null properties are
interpreted as undefined values.
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

func (js *stream) Read(ctx context.Context) (<-chan dataset.Sample, <-chan error) {
	sampleStream := make(chan dataset.Sample)
	errStream := make(chan error, 1)
	go func() {
		defer close(sampleStream)
		defer close(errStream)
		if js.closer != nil {
			defer js.closer.Close()
		}
		scanner := bufio.NewScanner(js.r)
		for l := 1; scanner.Scan(); l++ {
			line := scanner.Bytes()
			if len(line) == 0 {
				continue
			}
			s, err := parseSample(line, js.features)
			if err != nil {
				errStream <- fmt.Errorf("parsing line %d: %v", l, err)
				return
			}
			select {
			case <-ctx.Done():
				errStream <- ctx.Err()
				return
			case sampleStream <- s:
			}
		}
		if err := scanner.Err(); err != nil {
			errStream <- err
		}
	}()
	return sampleStream, errStream
}

/*
NewWriter takes an io.Writer and a slice of feature.Features and
returns a Writer that will write any samples on the io.Writer as
JSON objects, one per line.
*/
func NewWriter(writer io.Writer, features []feature.Feature) Writer {
	return &jsonWriter{features: features, w: bufio.NewWriter(writer)}
}

/*
WriteJSONStream takes a writer, a dataset.Stream and a slice of
features and dumps on the writer the samples of the stream as JSON
objects, one per line, specifying only the features in the given slice
for the samples. It returns an error if something went wrong when
reading the stream, writing to the writer or codifying the samples.
*/
func WriteJSONStream(ctx context.Context, writer io.Writer, s dataset.Stream, features []feature.Feature) error {
	jw := NewWriter(writer, features)
	sampleStream, errStream := s.Read(ctx)
	for sample := range sampleStream {
		_, err := jw.Write(ctx, []dataset.Sample{sample})
		if err != nil {
			return err
		}
	}
	if err := <-errStream; err != nil {
		return err
	}
	return jw.Flush()
}

func parseSample(line []byte, features []feature.Feature) (dataset.Sample, error) {
	var doc map[string]interface{}
	err := json.Unmarshal(line, &doc)
	if err != nil {
		return nil, err
	}
	featureValues := make(map[string]interface{})
	for _, f := range features {
		v := doc[f.Name()]
		if ok, err := f.Valid(v); !ok {
			return nil, fmt.Errorf("invalid value %v of type %T for feature %s: %v", v, v, f.Name(), err)
		}
		featureValues[f.Name()] = v
	}
	return dataset.NewSample(featureValues), nil
}

func (jw *jsonWriter) Count() int {
	return jw.count
}

func (jw *jsonWriter) Write(ctx context.Context, samples []dataset.Sample) (int, error) {
	n := 0
	var err error
	for ; n < len(samples); n++ {
		err = jw.writeSample(ctx, samples[n])
		if err != nil {
			return n, err
		}
	}
	return len(samples), nil
}

func (jw *jsonWriter) writeSample(ctx context.Context, sample dataset.Sample) error {
	doc := make(map[string]interface{})
	for _, f := range jw.features {
		v, err := sample.ValueFor(ctx, f)
		if err != nil {
			return err
		}
		if v != nil {
			doc[f.Name()] = v
		}
	}
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encoding sample %d: %v", jw.count+1, err)
	}
	_, err = jw.w.Write(data)
	if err == nil {
		err = jw.w.WriteByte('\n')
	}
	if err != nil {
		return fmt.Errorf("writing sample %d: %v", jw.count+1, err)
	}
	jw.count++
	return nil
}

func (jw *jsonWriter) Flush() error {
	return jw.w.Flush()
}
