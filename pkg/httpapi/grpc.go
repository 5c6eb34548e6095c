package httpapi

import (
	"google.golang.org/grpc"
	"google.golang.org/protobuf/reflect/protoreflect"
	"google.golang.org/protobuf/types/dynamicpb"

	"github.com/daios-ai/liveeval/internal/dageval"
	"github.com/daios-ai/liveeval/pkg/liveevalpb"
)

// newEnvelope wraps one JSON-encoded diff in a dynamicpb NodeListUpdateEnvelope
// built against liveevalpb's runtime-parsed descriptor — there are no
// protoc-generated Go types for this message; dynamicpb is the message
// implementation.
func newEnvelope(payloadJSON []byte) *dynamicpb.Message {
	msg := dynamicpb.NewMessage(liveevalpb.EnvelopeDescriptor())
	field := msg.Descriptor().Fields().ByNumber(liveevalpb.PayloadJSONField)
	msg.Set(field, protoreflect.ValueOfBytes(payloadJSON))
	return msg
}

// grpcServiceDesc describes LiveEvalService with Subscribe as a plain
// server-streaming method against the dynamic envelope type, so a
// subscribing non-browser client gets the same diff stream as
// GET /subscribe but over a real streaming RPC (spec.md §6, DOMAIN STACK).
func (s *Server[I, O, S]) grpcServiceDesc() grpc.ServiceDesc {
	return grpc.ServiceDesc{
		ServiceName: liveevalpb.FullServiceName,
		HandlerType: (*any)(nil),
		Streams: []grpc.StreamDesc{
			{
				StreamName:    liveevalpb.SubscribeMethodName,
				Handler:       s.handleGRPCSubscribe,
				ServerStreams: true,
			},
		},
		Metadata: "liveeval.proto",
	}
}

func (s *Server[I, O, S]) handleGRPCSubscribe(_ any, stream grpc.ServerStream) error {
	mb := newChanMailbox[dageval.NodeState[I, O]](64)
	snapshot, unsubscribe := s.subscribe(mb)
	defer unsubscribe()

	if payload, err := s.encodeSnapshot(snapshot); err == nil {
		if err := stream.SendMsg(newEnvelope(payload)); err != nil {
			return err
		}
	}

	for {
		select {
		case <-stream.Context().Done():
			return stream.Context().Err()
		case diff, ok := <-mb.ch:
			if !ok {
				return nil
			}
			payload, err := s.encodeDiff(diff)
			if err != nil {
				continue
			}
			if err := stream.SendMsg(newEnvelope(payload)); err != nil {
				return err
			}
		}
	}
}
