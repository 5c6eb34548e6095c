// Package wire implements the JSON encoding of the live-eval core's
// outward-facing types (spec.md §6): NodeList snapshots, NodeListUpdate
// diffs, and NodeState. Encoding is kept separate from the data model
// itself (internal/nodelist, internal/dageval) so those packages stay
// free of marshalling concerns.
package wire

import (
	"encoding/json"
	"fmt"

	"github.com/daios-ai/liveeval/internal/dageval"
	"github.com/daios-ai/liveeval/internal/nodelist"
)

// eltTagJSON is the wire spelling of nodelist.EltTag (spec.md §6:
// `{tag: "create"|"update"|"delete", value?}`).
type eltTagJSON string

const (
	tagCreate eltTagJSON = "create"
	tagUpdate eltTagJSON = "update"
	tagDelete eltTagJSON = "delete"
)

func (tag eltTagJSON) fromElt(t nodelist.EltTag) (eltTagJSON, error) {
	switch t {
	case nodelist.EltCreate:
		return tagCreate, nil
	case nodelist.EltUpdate:
		return tagUpdate, nil
	case nodelist.EltDelete:
		return tagDelete, nil
	default:
		return "", fmt.Errorf("wire: unknown EltTag %v", t)
	}
}

type mapEltJSON[A any] struct {
	Tag   eltTagJSON `json:"tag"`
	Value *A         `json:"value,omitempty"`
}

type tailUpdateJSON struct {
	NumDropped int              `json:"numDropped"`
	NewTail    []nodelist.NodeId `json:"newTail"`
}

// nodeListUpdateJSON mirrors spec.md §6's
// `{orderedNodesUpdate: {...}, nodeMapUpdate: {...}}` shape.
type nodeListUpdateJSON[A any] struct {
	OrderedNodesUpdate tailUpdateJSON                      `json:"orderedNodesUpdate"`
	NodeMapUpdate      map[string]mapEltJSON[A]             `json:"nodeMapUpdate"`
}

// EncodeUpdate marshals a NodeListUpdate[A] to the wire JSON shape.
func EncodeUpdate[A any](u nodelist.NodeListUpdate[A]) ([]byte, error) {
	out := nodeListUpdateJSON[A]{
		OrderedNodesUpdate: tailUpdateJSON{
			NumDropped: u.Tail.NumDropped,
			NewTail:    u.Tail.NewTail,
		},
		NodeMapUpdate: make(map[string]mapEltJSON[A], len(u.Map)),
	}
	var zeroTag eltTagJSON
	for id, elt := range u.Map {
		tag, err := zeroTag.fromElt(elt.Tag)
		if err != nil {
			return nil, err
		}
		m := mapEltJSON[A]{Tag: tag}
		if elt.Tag != nodelist.EltDelete {
			v := elt.Value
			m.Value = &v
		}
		out.NodeMapUpdate[fmt.Sprintf("%d", id)] = m
	}
	return json.Marshal(out)
}

// nodeStateJSON mirrors spec.md §6:
// `{input: <SourceBlock JSON>, status: "Waiting"|"Running"|{Complete: <Result>}}`.
type nodeStateJSON[I, O any] struct {
	Input  I               `json:"input"`
	Status json.RawMessage `json:"status"`
}

// EncodeNodeState marshals one dageval.NodeState[I,O] to its wire shape.
func EncodeNodeState[I, O any](ns dageval.NodeState[I, O]) ([]byte, error) {
	status, err := encodeStatus(ns.Status)
	if err != nil {
		return nil, err
	}
	return json.Marshal(nodeStateJSON[I, O]{Input: ns.Input, Status: status})
}

func encodeStatus[O any](s dageval.NodeEvalStatus[O]) (json.RawMessage, error) {
	switch s.Tag {
	case dageval.Waiting:
		return json.Marshal("Waiting")
	case dageval.Running:
		return json.Marshal("Running")
	case dageval.Complete:
		return json.Marshal(struct {
			Complete O `json:"Complete"`
		}{Complete: s.Result})
	default:
		return nil, fmt.Errorf("wire: unknown NodeEvalStatus tag %v", s.Tag)
	}
}

// EncodeSnapshot marshals a full NodeList[NodeState[I,O]] as the initial
// frame of a subscribe stream: an ordered array of {id, state} pairs.
func EncodeSnapshot[I, O any](nl *nodelist.NodeList[dageval.NodeState[I, O]]) ([]byte, error) {
	type entry struct {
		ID    nodelist.NodeId `json:"id"`
		State json.RawMessage `json:"state"`
	}
	ids := nl.Ordered()
	out := make([]entry, len(ids))
	for i, id := range ids {
		raw, err := EncodeNodeState(nl.MustGet(id))
		if err != nil {
			return nil, err
		}
		out[i] = entry{ID: id, State: raw}
	}
	return json.Marshal(out)
}
