/*
Package redisstore stores serialized trees on a redis database under
names, so that a tree grown by one process can be loaded and resumed
by another.
*/
package redisstore

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/jay-ng-mc/river/feature"
	"github.com/jay-ng-mc/river/tree"
	tjson "github.com/jay-ng-mc/river/tree/json"
	"gopkg.in/redis.v5"
)

/*
TreeStore is an interface for objects that store trees under names
and can load them back, enumerate them and delete them.
*/
type TreeStore interface {

	//Save serializes the given tree and stores it under the
	//given name, replacing any tree previously stored under it.
	Save(ctx context.Context, name string, t *tree.Tree) error

	//Create serializes the given tree, stores it under a fresh
	//random name and returns the name.
	Create(ctx context.Context, t *tree.Tree) (string, error)

	//Load returns the tree stored under the given name rebuilt
	//with the given options, or nil if no tree is stored under it.
	Load(ctx context.Context, name string, opts *tree.Options) (*tree.Tree, error)

	//Names returns the names of the stored trees.
	Names(ctx context.Context) ([]string, error)

	//Delete removes the tree stored under the given name.
	Delete(ctx context.Context, name string) error

	//Close closes the store, releasing its connection.
	Close(ctx context.Context) error
}

type redisStore struct {
	rc       *redis.Client
	prefix   string
	features []feature.Feature
	nencdec  tjson.NodeEncodeDecoder
}

//New builds a TreeStore backed by a redis DB
func New(rc *redis.Client, prefix string, features []feature.Feature, nencdec tjson.NodeEncodeDecoder) TreeStore {
	return &redisStore{rc, prefix, features, nencdec}
}

func (rs *redisStore) Save(ctx context.Context, name string, t *tree.Tree) error {
	data, err := rs.encode(ctx, t)
	if err != nil {
		return fmt.Errorf("storing tree %q: encoding tree: %v", name, err)
	}
	_, err = rs.rc.Set(rs.keyFor(name), data, 0).Result()
	if err != nil {
		return fmt.Errorf("storing tree %q in redis: %v", name, err)
	}
	return nil
}

func (rs *redisStore) Create(ctx context.Context, t *tree.Tree) (string, error) {
	data, err := rs.encode(ctx, t)
	if err != nil {
		return "", fmt.Errorf("creating tree: encoding tree: %v", err)
	}
	var name string
	var ok bool
	for !ok {
		name = randString(20)
		ok, err = rs.rc.SetNX(rs.keyFor(name), data, 0).Result()
		if err != nil {
			return "", fmt.Errorf("creating tree in redis: %v", err)
		}
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
	}
	return name, nil
}

func (rs *redisStore) Load(ctx context.Context, name string, opts *tree.Options) (*tree.Tree, error) {
	data, err := rs.rc.Get(rs.keyFor(name)).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("retrieving tree %q: %v", name, err)
	}
	t, err := tjson.ReadJSONTree(ctx, rs.features, opts, rs.nencdec, strings.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("retrieving tree %q: decoding: %v", name, err)
	}
	return t, nil
}

func (rs *redisStore) Names(ctx context.Context) ([]string, error) {
	keys, err := rs.rc.Keys(fmt.Sprintf("%s:*", rs.prefix)).Result()
	if err != nil {
		return nil, fmt.Errorf("listing trees in redis: %v", err)
	}
	names := make([]string, 0, len(keys))
	for _, k := range keys {
		names = append(names, strings.TrimPrefix(k, fmt.Sprintf("%s:", rs.prefix)))
	}
	return names, nil
}

func (rs *redisStore) Delete(ctx context.Context, name string) error {
	_, err := rs.rc.Del(rs.keyFor(name)).Result()
	if err != nil {
		return fmt.Errorf("deleting tree %q from redis: %v", name, err)
	}
	return nil
}

func (rs *redisStore) Close(ctx context.Context) error {
	return rs.rc.Close()
}

func (rs *redisStore) encode(ctx context.Context, t *tree.Tree) ([]byte, error) {
	var buf bytes.Buffer
	err := tjson.WriteJSONTree(ctx, t, rs.nencdec, &buf)
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (rs *redisStore) keyFor(name string) string {
	return fmt.Sprintf("%s:%s", rs.prefix, name)
}
