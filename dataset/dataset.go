/*
Package dataset provides sample streams for learners to consume: sources
that yield labeled samples one at a time, so that a model can be grown
without ever materializing the whole collection.
*/
package dataset

import "context"

/*
Stream represents a sequential source of samples.

Its Read method returns a channel on which the samples of the stream are
delivered in order, and a channel on which at most one error is delivered
if the stream fails to produce further samples. Both channels are closed
when the stream is exhausted, fails or the given context is cancelled.
*/
type Stream interface {
	Read(context.Context) (<-chan Sample, <-chan error)
}

/*
Writer represents a destination to which samples can be written.

Its Write method attempts to write the given samples and returns the
number actually written and an error when not all of them could be.
*/
type Writer interface {
	Write(context.Context, []Sample) (int, error)
}

/*
Collection represents a finite readable and writable set of samples.
*/
type Collection interface {
	Stream
	Writer
	Count(context.Context) (int, error)
}

type memoryCollection struct {
	samples []Sample
}

/*
New takes a slice of samples and returns an in-memory Collection holding
them. The collection assumes writers and readers are serialized by the
caller.
*/
func New(samples []Sample) Collection {
	return &memoryCollection{samples}
}

func (mc *memoryCollection) Count(ctx context.Context) (int, error) {
	return len(mc.samples), nil
}

func (mc *memoryCollection) Write(ctx context.Context, samples []Sample) (int, error) {
	for n, s := range samples {
		select {
		case <-ctx.Done():
			return n, ctx.Err()
		default:
		}
		mc.samples = append(mc.samples, s)
	}
	return len(samples), nil
}

func (mc *memoryCollection) Read(ctx context.Context) (<-chan Sample, <-chan error) {
	sampleStream := make(chan Sample)
	errStream := make(chan error, 1)
	samples := make([]Sample, len(mc.samples))
	copy(samples, mc.samples)
	go func() {
		defer close(sampleStream)
		defer close(errStream)
		for _, s := range samples {
			select {
			case <-ctx.Done():
				errStream <- ctx.Err()
				return
			case sampleStream <- s:
			}
		}
	}()
	return sampleStream, errStream
}
