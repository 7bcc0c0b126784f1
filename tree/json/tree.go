/*
Package json serializes trees to JSON and rebuilds them, so that a tree
grown on one stream can be stored away and keep learning later or
somewhere else.
*/
package json

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/jay-ng-mc/river/feature"
	"github.com/jay-ng-mc/river/stats"
	"github.com/jay-ng-mc/river/tree"
)

/*
WriteJSONTree takes a context.Context, a pointer to a tree.Tree,
a NodeEncodeDecoder and an io.Writer and serializes the given tree
as JSON onto the io.Writer.
A tree is serialized as a JSON object with the following fields:
* "weight": the total sample weight the tree has learned from
* "rootID": a string with the ID of the node at the root of the tree
* "nodes": an array containing the nodes of the tree, flattened and
  serialized by the given NodeEncodeDecoder.
An error is returned if the tree cannot be flattened, serialized or
written onto the io.Writer.
*/
func WriteJSONTree(ctx context.Context, t *tree.Tree, ned NodeEncodeDecoder, w io.Writer) error {
	nodes, err := flattenTree(t)
	if err != nil {
		return err
	}
	err = marshalJSONTreeHeader(t, w)
	if err != nil {
		return err
	}
	for i, n := range nodes {
		if err := ctx.Err(); err != nil {
			return err
		}
		err = writeNode(i, n, ned, w)
		if err != nil {
			return err
		}
	}
	return marshalJSONTreeFooter(w)
}

/*
ReadJSONTree takes a context.Context, a slice of feature.Feature, a
set of tree options, a NodeEncodeDecoder and an io.Reader, unmarshals
the contents of the io.Reader and returns the tree rebuilt from them.
A tree is expected to be a JSON object with the following fields:
* "weight": the total sample weight the tree has learned from
* "rootID": a string with the ID of the node at the root of the tree
* "nodes": an array containing the flattened nodes of the tree,
  unmarshalled by the given NodeEncodeDecoder.
An error is returned if the JSON cannot be read from the io.Reader,
unmarshalled, or linked back into a tree.
*/
func ReadJSONTree(ctx context.Context, features []feature.Feature, opts *tree.Options, ned NodeEncodeDecoder, r io.Reader) (*tree.Tree, error) {
	dec := json.NewDecoder(r)
	jt := &struct {
		Weight float64            `json:"weight"`
		RootID string             `json:"rootID"`
		Nodes  []*json.RawMessage `json:"nodes"`
	}{}
	err := dec.Decode(jt)
	if err != nil {
		return nil, err
	}
	if jt.RootID == "" {
		return nil, fmt.Errorf("no root node id available")
	}
	byID := make(map[string]*Node)
	for _, jn := range jt.Nodes {
		n, err := ned.Decode(*jn)
		if err != nil {
			return nil, err
		}
		byID[n.ID] = n
	}
	root, err := linkNodes(byID, jt.RootID, 0, make(map[string]bool))
	if err != nil {
		return nil, err
	}
	return tree.Rebuild(features, opts, root, jt.Weight), nil
}

func flattenTree(t *tree.Tree) ([]*Node, error) {
	root := t.Root()
	if root == nil {
		return nil, fmt.Errorf("tree has no root node")
	}
	var nodes []*Node
	pending := []tree.Node{root}
	for len(pending) > 0 {
		n := pending[0]
		pending = pending[1:]
		fn := &Node{ID: strconv.Itoa(len(nodes))}
		switch node := n.(type) {
		case *tree.Leaf:
			fn.Stats = node.Stats
			fn.Model = node.Model
			fn.Inactive = !node.Active
			fn.LastSplitAttempt = node.LastSplitAttempt
		case *tree.Branch:
			fn.Feature = node.Feature
			fn.Criteria = node.Criteria
			fn.Weights = node.Weights
			for _, child := range node.Children {
				fn.ChildIDs = append(fn.ChildIDs, strconv.Itoa(len(nodes)+len(pending)+1))
				pending = append(pending, child)
			}
		case *tree.OptionBranch:
			fn.Multiplicity = node.Multiplicity
			for _, child := range node.Children {
				fn.ChildIDs = append(fn.ChildIDs, strconv.Itoa(len(nodes)+len(pending)+1))
				pending = append(pending, child)
			}
		default:
			return nil, fmt.Errorf("unknown type of tree.Node %T", n)
		}
		nodes = append(nodes, fn)
	}
	return nodes, nil
}

func linkNodes(byID map[string]*Node, id string, depth int, seen map[string]bool) (tree.Node, error) {
	if seen[id] {
		return nil, fmt.Errorf("node %q linked more than once", id)
	}
	seen[id] = true
	fn := byID[id]
	if fn == nil {
		return nil, fmt.Errorf("missing node %q", id)
	}
	switch {
	case fn.Feature != nil:
		if len(fn.Criteria) != len(fn.ChildIDs) {
			return nil, fmt.Errorf("node %q has %d criteria for %d children", id, len(fn.Criteria), len(fn.ChildIDs))
		}
		children, err := linkChildren(byID, fn.ChildIDs, depth+1, seen)
		if err != nil {
			return nil, err
		}
		weights := fn.Weights
		if weights == nil {
			weights = make([]float64, len(children))
		}
		return &tree.Branch{
			Depth:    depth,
			Feature:  fn.Feature,
			Criteria: fn.Criteria,
			Children: children,
			Weights:  weights,
		}, nil
	case fn.Multiplicity > 0:
		children, err := linkChildren(byID, fn.ChildIDs, depth+1, seen)
		if err != nil {
			return nil, err
		}
		return &tree.OptionBranch{
			Depth:        depth,
			Multiplicity: fn.Multiplicity,
			Children:     children,
		}, nil
	default:
		leafStats := fn.Stats
		if leafStats == nil {
			leafStats = stats.NewVar()
		}
		return &tree.Leaf{
			Depth:            depth,
			Active:           !fn.Inactive,
			Stats:            leafStats,
			Model:            fn.Model,
			LastSplitAttempt: fn.LastSplitAttempt,
		}, nil
	}
}

func linkChildren(byID map[string]*Node, ids []string, depth int, seen map[string]bool) ([]tree.Node, error) {
	var children []tree.Node
	for _, id := range ids {
		child, err := linkNodes(byID, id, depth, seen)
		if err != nil {
			return nil, err
		}
		children = append(children, child)
	}
	return children, nil
}

func marshalJSONTreeHeader(t *tree.Tree, w io.Writer) error {
	jweight, err := json.Marshal(t.Weight())
	if err != nil {
		return err
	}
	header := fmt.Sprintf(`{"weight":%s,"rootID":"0","nodes":[`, jweight)
	_, err = w.Write([]byte(header))
	return err
}

func writeNode(i int, n *Node, ned NodeEncodeDecoder, w io.Writer) error {
	if i != 0 {
		_, err := w.Write([]byte(","))
		if err != nil {
			return err
		}
	}
	jn, err := ned.Encode(n)
	if err != nil {
		return err
	}
	_, err = w.Write(jn)
	return err
}

func marshalJSONTreeFooter(w io.Writer) error {
	_, err := w.Write([]byte(`]}`))
	return err
}
