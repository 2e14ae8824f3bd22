// Package capture stores received chunks as length-delimited protobuf records.
package capture

import (
	"fmt"
	"sync"
	"time"

	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/reflect/protodesc"
	"google.golang.org/protobuf/reflect/protoreflect"
	"google.golang.org/protobuf/reflect/protoregistry"
	"google.golang.org/protobuf/types/descriptorpb"
	"google.golang.org/protobuf/types/dynamicpb"
)

// Record is one captured chunk.
type Record struct {
	ConnID     string
	Seq        int
	Peer       string
	Data       []byte
	Last       bool
	ReceivedAt time.Time
}

// Field numbers of the wire message. They must never change.
const (
	fieldConnID     = 1
	fieldSeq        = 2
	fieldPeer       = 3
	fieldData       = 4
	fieldLast       = 5
	fieldReceivedAt = 6
)

// recordDescriptor builds the message descriptor for:
//
//	message Record {
//	  string conn_id = 1;
//	  int64 seq = 2;
//	  string peer = 3;
//	  bytes data = 4;
//	  bool last = 5;
//	  int64 received_at_unix_nano = 6;
//	}
var recordDescriptor = sync.OnceValue(func() protoreflect.MessageDescriptor {
	field := func(name string, number int32, typ descriptorpb.FieldDescriptorProto_Type) *descriptorpb.FieldDescriptorProto {
		return &descriptorpb.FieldDescriptorProto{
			Name:   proto.String(name),
			Number: proto.Int32(number),
			Label:  descriptorpb.FieldDescriptorProto_LABEL_OPTIONAL.Enum(),
			Type:   typ.Enum(),
		}
	}

	file := &descriptorpb.FileDescriptorProto{
		Name:    proto.String("tcplistener/capture/record.proto"),
		Package: proto.String("tcplistener.capture"),
		Syntax:  proto.String("proto3"),
		MessageType: []*descriptorpb.DescriptorProto{{
			Name: proto.String("Record"),
			Field: []*descriptorpb.FieldDescriptorProto{
				field("conn_id", fieldConnID, descriptorpb.FieldDescriptorProto_TYPE_STRING),
				field("seq", fieldSeq, descriptorpb.FieldDescriptorProto_TYPE_INT64),
				field("peer", fieldPeer, descriptorpb.FieldDescriptorProto_TYPE_STRING),
				field("data", fieldData, descriptorpb.FieldDescriptorProto_TYPE_BYTES),
				field("last", fieldLast, descriptorpb.FieldDescriptorProto_TYPE_BOOL),
				field("received_at_unix_nano", fieldReceivedAt, descriptorpb.FieldDescriptorProto_TYPE_INT64),
			},
		}},
	}

	fd, err := protodesc.NewFile(file, new(protoregistry.Files))
	if err != nil {
		panic(fmt.Sprintf("capture: invalid record descriptor: %v", err))
	}
	return fd.Messages().ByName("Record")
})

// Encode encodes the record into bytes using protobuf.
func (r *Record) Encode() ([]byte, error) {
	data, err := proto.Marshal(r.toProto())
	if err != nil {
		return nil, fmt.Errorf("failed to encode record: %w", err)
	}
	return data, nil
}

// Decode decodes bytes into a record using protobuf.
func (r *Record) Decode(data []byte) error {
	msg := dynamicpb.NewMessage(recordDescriptor())
	if err := proto.Unmarshal(data, msg); err != nil {
		return fmt.Errorf("failed to decode record: %w", err)
	}
	r.fromProto(msg)
	return nil
}

func (r *Record) toProto() *dynamicpb.Message {
	desc := recordDescriptor()
	fields := desc.Fields()
	msg := dynamicpb.NewMessage(desc)

	msg.Set(fields.ByNumber(fieldConnID), protoreflect.ValueOfString(r.ConnID))
	msg.Set(fields.ByNumber(fieldSeq), protoreflect.ValueOfInt64(int64(r.Seq)))
	msg.Set(fields.ByNumber(fieldPeer), protoreflect.ValueOfString(r.Peer))
	if len(r.Data) > 0 {
		msg.Set(fields.ByNumber(fieldData), protoreflect.ValueOfBytes(r.Data))
	}
	msg.Set(fields.ByNumber(fieldLast), protoreflect.ValueOfBool(r.Last))
	if !r.ReceivedAt.IsZero() {
		msg.Set(fields.ByNumber(fieldReceivedAt), protoreflect.ValueOfInt64(r.ReceivedAt.UnixNano()))
	}
	return msg
}

func (r *Record) fromProto(msg protoreflect.Message) {
	fields := msg.Descriptor().Fields()

	r.ConnID = msg.Get(fields.ByNumber(fieldConnID)).String()
	r.Seq = int(msg.Get(fields.ByNumber(fieldSeq)).Int())
	r.Peer = msg.Get(fields.ByNumber(fieldPeer)).String()
	r.Data = append([]byte{}, msg.Get(fields.ByNumber(fieldData)).Bytes()...)
	r.Last = msg.Get(fields.ByNumber(fieldLast)).Bool()
	r.ReceivedAt = time.Time{}
	if ns := msg.Get(fields.ByNumber(fieldReceivedAt)).Int(); ns != 0 {
		r.ReceivedAt = time.Unix(0, ns)
	}
}
