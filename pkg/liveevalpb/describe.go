package liveevalpb

import "github.com/jhump/protoreflect/desc/protoprint"

// Describe renders the LiveEvalService wire schema back to .proto source,
// for the `liveeval describe` debug subcommand — lets an operator inspect
// the wire contract without keeping the .proto file or a generated
// descriptor import anywhere else in the binary.
func Describe() (string, error) {
	printer := protoprint.Printer{}
	return printer.PrintProtoToString(fileDescriptor)
}
