/*
Package mongodataset provides an implementation of dataset.Collection
that uses a MongoDB database as backend.

Samples are stored as documents on a single collection, with one field
per defined feature value.
*/
package mongodataset

import (
	"context"
	"fmt"
	"strings"

	"github.com/jay-ng-mc/river/dataset"
	"github.com/jay-ng-mc/river/feature"
	mgo "gopkg.in/mgo.v2"
	"gopkg.in/mgo.v2/bson"
)

type mongoDataset struct {
	session  *mgo.Session
	features []feature.Feature
}

const (
	samplesCollectionName = "samples"
)

/*
Open takes a MongoDB database session and a slice of feature.Feature and
returns a dataset.Collection that works on the default database for that
session or an error if it fails to prepare the samples collection.
*/
func Open(ctx context.Context, session *mgo.Session, features []feature.Feature) (dataset.Collection, error) {
	mds := &mongoDataset{session, features}
	err := mds.ensureIndexes()
	if err != nil {
		return nil, err
	}
	return mds, nil
}

func (mds *mongoDataset) Count(context.Context) (int, error) {
	return mds.samplesCollection().Find(bson.M{}).Count()
}

func (mds *mongoDataset) Write(ctx context.Context, samples []dataset.Sample) (int, error) {
	docs := make([]interface{}, 0, len(samples))
	for _, s := range samples {
		doc := make(bson.M)
		for _, f := range mds.features {
			value, err := s.ValueFor(ctx, f)
			if err != nil {
				return 0, err
			}
			if value != nil {
				doc[f.Name()] = value
			}
		}
		docs = append(docs, doc)
	}
	err := mds.samplesCollection().Insert(docs...)
	if err != nil {
		return 0, err
	}
	return len(samples), nil
}

func (mds *mongoDataset) Read(ctx context.Context) (<-chan dataset.Sample, <-chan error) {
	samples := make(chan dataset.Sample)
	errs := make(chan error, 1)
	go func() {
		defer close(samples)
		defer close(errs)
		iter := mds.samplesCollection().Find(bson.M{}).Iter()
		defer iter.Close()
		for {
			var doc bson.M
			if !iter.Next(&doc) {
				break
			}
			s := dataset.NewSample(doc)
			select {
			case <-ctx.Done():
				errs <- ctx.Err()
				return
			case samples <- s:
			}
		}
		if err := iter.Err(); err != nil {
			errs <- err
		}
	}()
	return samples, errs
}

func (mds *mongoDataset) ensureIndexes() error {
	for _, f := range mds.features {
		fName := f.Name()
		if fName == "_id" {
			return fmt.Errorf("invalid feature name %q: reserved collection field", "_id")
		}
		if strings.ContainsAny(fName, ".$") {
			return fmt.Errorf("invalid feature name %q: contains reserved characters %q or %q", fName, ".", "$")
		}
		index := mgo.Index{
			Key:        []string{fName},
			Background: true,
			Sparse:     true,
		}
		err := mds.samplesCollection().EnsureIndex(index)
		if err != nil {
			return err
		}
	}
	return nil
}

func (mds *mongoDataset) samplesCollection() *mgo.Collection {
	return mds.session.DB("").C(samplesCollectionName)
}
