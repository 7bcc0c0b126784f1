package main

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"

	"github.com/jay-ng-mc/river/feature"
	fjson "github.com/jay-ng-mc/river/feature/json"
	"github.com/jay-ng-mc/river/tree"
	tjson "github.com/jay-ng-mc/river/tree/json"
	"github.com/jay-ng-mc/river/tree/linear"
	"github.com/jay-ng-mc/river/tree/redisstore"
	redis "gopkg.in/redis.v5"
)

const redisTreePrefix = "trees"

/*
treeCodec returns the node codec trees are stored and loaded with:
criteria are resolved against the given features and leaf models are
decoded as linear regressions.
*/
func treeCodec(features []feature.Feature) tjson.NodeEncodeDecoder {
	md := func(data []byte) (tree.Model, error) {
		return linear.DecodeJSON(features, data)
	}
	return tjson.NewNodeEncodeDecoder(fjson.NewCriteriaEncodeDecoder(features), features, md)
}

/*
loadTree loads a tree from the given location: a redis DB for redis://
URLs, which must name the tree to load, and a JSON file for any other
path. The returned tree grows according to the given options when it
keeps learning.
*/
func (rcc *rootCmdConfig) loadTree(location string, features []feature.Feature, opts *tree.Options) (*tree.Tree, error) {
	if strings.HasPrefix(location, "redis://") {
		ts, name, err := rcc.redisTreeStore(location, features)
		if err != nil {
			return nil, err
		}
		defer ts.Close(rcc.Context())
		if name == "" {
			return nil, fmt.Errorf("loading tree from %s: the URL does not name the tree to load", location)
		}
		rcc.Logf("Loading tree %s from redis...", name)
		t, err := ts.Load(rcc.Context(), name, opts)
		if err != nil {
			return nil, fmt.Errorf("loading tree %s from redis: %v", name, err)
		}
		if t == nil {
			return nil, fmt.Errorf("no tree named %s found on %s", name, location)
		}
		return t, nil
	}
	f, err := os.Open(location)
	if err != nil {
		return nil, fmt.Errorf("reading tree in JSON from %s: %v", location, err)
	}
	defer f.Close()
	t, err := tjson.ReadJSONTree(rcc.Context(), features, opts, treeCodec(features), f)
	if err != nil {
		err = fmt.Errorf("parsing tree in JSON from %s: %v", location, err)
	}
	return t, err
}

/*
storeTree stores a tree at the given location: a redis DB for redis://
URLs and a JSON file for any other path. A redis URL that does not name
the tree stores it under a fresh random name, which is printed. An
empty location selects STDOUT.
*/
func (rcc *rootCmdConfig) storeTree(location string, t *tree.Tree, features []feature.Feature) error {
	if strings.HasPrefix(location, "redis://") {
		ts, name, err := rcc.redisTreeStore(location, features)
		if err != nil {
			return err
		}
		defer ts.Close(rcc.Context())
		if name == "" {
			name, err = ts.Create(rcc.Context(), t)
			if err != nil {
				return fmt.Errorf("storing tree on redis: %v", err)
			}
			fmt.Printf("Stored tree as %s\n", name)
			return nil
		}
		rcc.Logf("Storing tree %s on redis...", name)
		return ts.Save(rcc.Context(), name, t)
	}
	var f *os.File
	var err error
	if location == "" {
		f = os.Stdout
	} else {
		f, err = os.Create(location)
		if err != nil {
			return fmt.Errorf("writing tree to %s: %v", location, err)
		}
	}
	defer f.Close()
	err = tjson.WriteJSONTree(rcc.Context(), t, treeCodec(features), f)
	if err != nil {
		return fmt.Errorf("writing tree to %s: %v", location, err)
	}
	return nil
}

/*
redisTreeStore parses a redis://[:password@]host:port[/db][/name] URL
and returns a tree store on the redis DB it points to, along with the
tree name on the URL, empty when the URL does not include one.
*/
func (rcc *rootCmdConfig) redisTreeStore(rawurl string, features []feature.Feature) (redisstore.TreeStore, string, error) {
	opts, name, err := parseRedisTreeURL(rawurl)
	if err != nil {
		return nil, "", err
	}
	rc := redis.NewClient(opts)
	return redisstore.New(rc, redisTreePrefix, features, treeCodec(features)), name, nil
}

func parseRedisTreeURL(rawurl string) (*redis.Options, string, error) {
	u, err := url.Parse(rawurl)
	if err != nil {
		return nil, "", fmt.Errorf("parsing redis URL %s: %v", rawurl, err)
	}
	opts := &redis.Options{Addr: u.Host}
	if u.User != nil {
		if password, ok := u.User.Password(); ok {
			opts.Password = password
		}
	}
	var name string
	segments := strings.Split(strings.Trim(u.Path, "/"), "/")
	switch {
	case len(segments) == 1 && segments[0] == "":
	case len(segments) == 1:
		// a single segment is a DB number when numeric, a tree name otherwise
		db, err := strconv.Atoi(segments[0])
		if err != nil {
			name = segments[0]
		} else {
			opts.DB = db
		}
	case len(segments) == 2:
		db, err := strconv.Atoi(segments[0])
		if err != nil {
			return nil, "", fmt.Errorf("parsing redis URL %s: %s is not a DB number", rawurl, segments[0])
		}
		opts.DB = db
		name = segments[1]
	default:
		return nil, "", fmt.Errorf("parsing redis URL %s: expected redis://[:password@]host:port[/db][/name]", rawurl)
	}
	return opts, name, nil
}
