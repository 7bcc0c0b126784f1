package json

import (
	"encoding/json"
	"fmt"

	"github.com/jay-ng-mc/river/feature"
	fjson "github.com/jay-ng-mc/river/feature/json"
	"github.com/jay-ng-mc/river/stats"
	"github.com/jay-ng-mc/river/tree"
)

/*
Node is the flattened form of a tree node: the node's own state plus the
IDs of its children instead of the children themselves. Exactly one of
the three node kinds is set:
* a leaf carries Stats and optionally a Model, no ChildIDs
* a branch carries Feature, Criteria, Weights and its ChildIDs
* an option carries Multiplicity and its ChildIDs
*/
type Node struct {
	ID               string
	ChildIDs         []string
	Feature          feature.Feature
	Criteria         []feature.Criterion
	Weights          []float64
	Multiplicity     int
	Stats            *stats.Var
	Model            tree.Model
	Inactive         bool
	LastSplitAttempt float64
}

/*
NodeEncodeDecoder is an interface for objects
that allow encoding flattened nodes into slices of
bytes and decoding them back to nodes.
*/
type NodeEncodeDecoder interface {

	//Encode receives a *Node
	//and returns a slice of bytes with the node
	//encoded or an error if the encoding could not
	//be performed for some reason.
	Encode(*Node) ([]byte, error)

	//Decode receives a slice of bytes
	//and returns a *Node decoded from the
	//slice of bytes or an error if the decoding
	//could not be performed for some reason.
	Decode([]byte) (*Node, error)
}

/*
ModelDecoder is a function that rebuilds a leaf model from the slice of
bytes its json.Marshaler produced.
*/
type ModelDecoder func(data []byte) (tree.Model, error)

type nodeEncodeDecoder struct {
	fjson.CriteriaEncodeDecoder
	features []feature.Feature
	md       ModelDecoder
}

type jsonNode struct {
	ID           string             `json:"id"`
	ChildIDs     []string           `json:"cIds,omitempty"`
	Feature      string             `json:"f,omitempty"`
	Criteria     []*json.RawMessage `json:"c,omitempty"`
	Weights      []float64          `json:"w,omitempty"`
	Multiplicity int                `json:"opts,omitempty"`
	Stats        *stats.Var         `json:"stats,omitempty"`
	Model        *json.RawMessage   `json:"model,omitempty"`
	Inactive     bool               `json:"inactive,omitempty"`
	LastSplit    float64            `json:"lastSplit,omitempty"`
}

/*
NewNodeEncodeDecoder returns a NodeEncodeDecoder that uses the
given CriteriaEncodeDecoder to encode/decode branch criteria and the
given ModelDecoder to rebuild leaf models. The ModelDecoder may be nil
when the encoded trees carry no leaf models.
*/
func NewNodeEncodeDecoder(ced fjson.CriteriaEncodeDecoder, features []feature.Feature, md ModelDecoder) NodeEncodeDecoder {
	return &nodeEncodeDecoder{ced, features, md}
}

func (ned *nodeEncodeDecoder) Encode(n *Node) ([]byte, error) {
	jn := &jsonNode{
		ID:           n.ID,
		Multiplicity: n.Multiplicity,
		Stats:        n.Stats,
		Inactive:     n.Inactive,
		LastSplit:    n.LastSplitAttempt,
	}
	if len(n.ChildIDs) > 0 {
		jn.ChildIDs = n.ChildIDs
	}
	if len(n.Weights) > 0 {
		jn.Weights = n.Weights
	}
	if n.Feature != nil {
		jn.Feature = n.Feature.Name()
	}
	for _, c := range n.Criteria {
		jc, err := ned.CriteriaEncodeDecoder.Encode(c)
		if err != nil {
			return nil, err
		}
		rjc := json.RawMessage(jc)
		jn.Criteria = append(jn.Criteria, &rjc)
	}
	if n.Model != nil {
		m, ok := n.Model.(json.Marshaler)
		if !ok {
			return nil, fmt.Errorf("encoding node %v: model %T does not support JSON encoding", n.ID, n.Model)
		}
		jm, err := m.MarshalJSON()
		if err != nil {
			return nil, err
		}
		rjm := json.RawMessage(jm)
		jn.Model = &rjm
	}
	return json.Marshal(jn)
}

func (ned *nodeEncodeDecoder) Decode(data []byte) (*Node, error) {
	jn := &jsonNode{}
	err := json.Unmarshal(data, jn)
	if err != nil {
		return nil, err
	}
	n := &Node{
		ID:               jn.ID,
		Multiplicity:     jn.Multiplicity,
		Stats:            jn.Stats,
		Inactive:         jn.Inactive,
		LastSplitAttempt: jn.LastSplit,
	}
	if len(jn.ChildIDs) > 0 {
		n.ChildIDs = jn.ChildIDs
	}
	if len(jn.Weights) > 0 {
		n.Weights = jn.Weights
	}
	if jn.Feature != "" {
		var nf feature.Feature
		for _, f := range ned.features {
			if f.Name() == jn.Feature {
				nf = f
				break
			}
		}
		if nf == nil {
			return nil, fmt.Errorf("unmarshalling node %v: unknown feature %v", n.ID, jn.Feature)
		}
		n.Feature = nf
	}
	for _, jc := range jn.Criteria {
		c, err := ned.CriteriaEncodeDecoder.Decode(*jc)
		if err != nil {
			return nil, fmt.Errorf("unmarshalling node %v: %v", n.ID, err)
		}
		n.Criteria = append(n.Criteria, c)
	}
	if jn.Model != nil {
		if ned.md == nil {
			return nil, fmt.Errorf("unmarshalling node %v: no model decoder available", n.ID)
		}
		n.Model, err = ned.md(*jn.Model)
		if err != nil {
			return nil, fmt.Errorf("unmarshalling node %v: decoding model: %v", n.ID, err)
		}
	}
	return n, nil
}
