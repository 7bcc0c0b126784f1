package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/jay-ng-mc/river/dataset"
	"github.com/jay-ng-mc/river/dataset/csv"
	"github.com/jay-ng-mc/river/dataset/json"
	"github.com/jay-ng-mc/river/dataset/mongodataset"
	"github.com/jay-ng-mc/river/dataset/sqldataset"
	"github.com/jay-ng-mc/river/dataset/sqldataset/pgadapter"
	"github.com/jay-ng-mc/river/dataset/sqldataset/sqlite3adapter"
	"github.com/jay-ng-mc/river/feature"
	mgo "gopkg.in/mgo.v2"
)

type writableDataset interface {
	dataset.Writer
	Flush() error
}

type flushableSampleWriter struct {
	dataset.Writer
}

func (fsw *flushableSampleWriter) Flush() error {
	return nil
}

/*
datasetInput returns a dataset.Stream with the samples at the given
input: a PostgreSQL DB for postgresql:// URLs, a MongoDB for mongodb://
URLs, a SQLite3 DB for .db filepaths, a JSON file for .json filepaths
and a CSV file for any other filepath. An empty input selects STDIN,
interpreted as CSV.
*/
func (rcc *rootCmdConfig) datasetInput(input string, features []feature.Feature) (dataset.Stream, error) {
	switch {
	case input == "":
		rcc.Logf("Reading input dataset from STDIN...")
		return csv.NewStream(os.Stdin, features), nil
	case strings.HasPrefix(input, "postgresql://") || strings.HasPrefix(input, "postgres://"):
		rcc.Logf("Creating PostgreSQL adapter for url %s to read input dataset...", input)
		adapter, err := pgadapter.New(input)
		if err != nil {
			return nil, err
		}
		return sqldataset.Open(rcc.Context(), adapter, features)
	case strings.HasPrefix(input, "mongodb://"):
		rcc.Logf("Dialing MongoDB at %s to read input dataset...", input)
		session, err := mgo.Dial(input)
		if err != nil {
			return nil, fmt.Errorf("dialing MongoDB at %s: %v", input, err)
		}
		return mongodataset.Open(rcc.Context(), session, features)
	case strings.HasSuffix(input, ".db"):
		rcc.Logf("Creating SQLite3 adapter for file %s to read input dataset...", input)
		adapter, err := sqlite3adapter.New(input)
		if err != nil {
			return nil, err
		}
		return sqldataset.Open(rcc.Context(), adapter, features)
	case strings.HasSuffix(input, ".json"):
		rcc.Logf("Opening %s to read input dataset...", input)
		return json.StreamFromFilePath(input, features)
	default:
		rcc.Logf("Opening %s to read input dataset...", input)
		return csv.StreamFromFilePath(input, features)
	}
}

/*
datasetOutput returns a writableDataset on the given output: a
PostgreSQL DB for postgresql:// URLs, a MongoDB for mongodb:// URLs, a
SQLite3 DB for .db filepaths, a JSON file for .json filepaths and a CSV
file for any other filepath. An empty output selects STDOUT in CSV. DB
outputs are created, file outputs are created or truncated.
*/
func (rcc *rootCmdConfig) datasetOutput(output string, features []feature.Feature) (writableDataset, error) {
	switch {
	case output == "":
		rcc.Logf("Using STDOUT to dump output dataset...")
		return csv.NewWriter(os.Stdout, features)
	case strings.HasPrefix(output, "postgresql://") || strings.HasPrefix(output, "postgres://"):
		rcc.Logf("Creating PostgreSQL adapter for url %s to dump output dataset...", output)
		adapter, err := pgadapter.New(output)
		if err != nil {
			return nil, err
		}
		collection, err := sqldataset.Create(rcc.Context(), adapter, features)
		if err != nil {
			return nil, err
		}
		return &flushableSampleWriter{collection}, nil
	case strings.HasPrefix(output, "mongodb://"):
		rcc.Logf("Dialing MongoDB at %s to dump output dataset...", output)
		session, err := mgo.Dial(output)
		if err != nil {
			return nil, fmt.Errorf("dialing MongoDB at %s: %v", output, err)
		}
		collection, err := mongodataset.Open(rcc.Context(), session, features)
		if err != nil {
			return nil, err
		}
		return &flushableSampleWriter{collection}, nil
	case strings.HasSuffix(output, ".db"):
		rcc.Logf("Creating SQLite3 adapter for file %s to dump output dataset...", output)
		adapter, err := sqlite3adapter.New(output)
		if err != nil {
			return nil, err
		}
		collection, err := sqldataset.Create(rcc.Context(), adapter, features)
		if err != nil {
			return nil, err
		}
		return &flushableSampleWriter{collection}, nil
	case strings.HasSuffix(output, ".json"):
		rcc.Logf("Creating %s to dump output dataset...", output)
		outputFile, err := os.Create(output)
		if err != nil {
			return nil, err
		}
		return json.NewWriter(outputFile, features), nil
	default:
		rcc.Logf("Creating %s to dump output dataset...", output)
		outputFile, err := os.Create(output)
		if err != nil {
			return nil, err
		}
		return csv.NewWriter(outputFile, features)
	}
}
