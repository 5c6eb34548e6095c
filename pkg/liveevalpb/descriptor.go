// Package liveevalpb describes the LiveEvalService contract without a
// protoc codegen step: liveeval.proto is parsed at process startup via
// jhump/protoreflect's protoparse, and pkg/httpapi builds its gRPC
// messages dynamically against the resulting descriptor (google.golang.org/
// protobuf's dynamicpb). This is the schema-free-gateway pattern those two
// libraries are built for, and avoids hand-faking protoc-gen-go output.
package liveevalpb

import (
	_ "embed"
	"fmt"

	"github.com/jhump/protoreflect/desc"
	"github.com/jhump/protoreflect/desc/protoparse"
	"google.golang.org/protobuf/reflect/protodesc"
	"google.golang.org/protobuf/reflect/protoreflect"
)

//go:embed liveeval.proto
var protoSource string

const protoFileName = "liveeval.proto"

var (
	fileDescriptor   *desc.FileDescriptor
	envelopeDesc     protoreflect.MessageDescriptor
	serviceDesc      protoreflect.ServiceDescriptor
)

func init() {
	parser := protoparse.Parser{
		Accessor: protoparse.FileContentsFromMap(map[string]string{
			protoFileName: protoSource,
		}),
	}
	fds, err := parser.ParseFiles(protoFileName)
	if err != nil {
		panic(fmt.Sprintf("liveevalpb: parsing embedded proto: %v", err))
	}
	fileDescriptor = fds[0]

	reflectFile, err := protodesc.NewFile(fileDescriptor.AsFileDescriptorProto(), nil)
	if err != nil {
		panic(fmt.Sprintf("liveevalpb: building protoreflect descriptor: %v", err))
	}

	msgs := reflectFile.Messages()
	for i := 0; i < msgs.Len(); i++ {
		m := msgs.Get(i)
		if m.Name() == "NodeListUpdateEnvelope" {
			envelopeDesc = m
		}
	}
	if envelopeDesc == nil {
		panic("liveevalpb: liveeval.proto missing NodeListUpdateEnvelope message")
	}

	svcs := reflectFile.Services()
	for i := 0; i < svcs.Len(); i++ {
		s := svcs.Get(i)
		if s.Name() == "LiveEvalService" {
			serviceDesc = s
		}
	}
	if serviceDesc == nil {
		panic("liveevalpb: liveeval.proto missing LiveEvalService")
	}
}

// EnvelopeDescriptor returns the runtime-parsed descriptor for
// NodeListUpdateEnvelope, used to build dynamicpb messages without
// generated Go types.
func EnvelopeDescriptor() protoreflect.MessageDescriptor { return envelopeDesc }

// PayloadJSONField is the field number of NodeListUpdateEnvelope.payload_json.
const PayloadJSONField = 1

// ServiceDescriptor returns the runtime-parsed LiveEvalService descriptor.
func ServiceDescriptor() protoreflect.ServiceDescriptor { return serviceDesc }

// FullServiceName is the gRPC service name used when registering the
// dynamic LiveEvalService handler.
const FullServiceName = "liveeval.LiveEvalService"

// SubscribeMethodName is the one streaming method LiveEvalService exposes.
const SubscribeMethodName = "Subscribe"

// File returns the jhump/protoreflect descriptor for the whole .proto,
// the same descriptor Describe renders for `liveeval describe`.
func File() *desc.FileDescriptor { return fileDescriptor }
