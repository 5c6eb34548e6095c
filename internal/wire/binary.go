package wire

import (
	"github.com/funvibe/funbit/pkg/funbit"

	"github.com/daios-ai/liveeval/internal/dageval"
	"github.com/daios-ai/liveeval/internal/nodelist"
)

// EncodeSnapshotBinary builds the compact binary `liveeval export` format:
// a 64-bit record count followed by that many (NodeId as a 64-bit integer
// segment, JSON value as a 32-bit-length-prefixed binary segment) records,
// using funbit's bit-pattern
// construction instead of a length-prefixed encoding/binary.Write loop —
// this is the one binary-schema library anywhere in the pack, so the
// export format is built with it rather than a hand-rolled framer.
func EncodeSnapshotBinary[I, O any](nl *nodelist.NodeList[dageval.NodeState[I, O]]) ([]byte, error) {
	builder := funbit.NewBuilder()
	ids := nl.Ordered()

	funbit.AddInteger(builder, int64(len(ids)), funbit.WithSize(64))
	for _, id := range ids {
		raw, err := EncodeNodeState(nl.MustGet(id))
		if err != nil {
			return nil, err
		}
		funbit.AddInteger(builder, int64(id), funbit.WithSize(64))
		funbit.AddInteger(builder, int64(len(raw)), funbit.WithSize(32))
		funbit.AddBinary(builder, raw)
	}

	result, err := funbit.Build(builder)
	if err != nil {
		return nil, err
	}
	return result.ToBytes(), nil
}
