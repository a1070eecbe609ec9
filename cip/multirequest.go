package cip

import (
	"encoding/binary"

	"github.com/renej-github/etherip/enip"
)

const maxMultiRequests = 200

// MultiRequestBody is the CIP_MultiRequest (0x0A) leaf body, addressed
// to the MessageRouter object (class 0x02, instance 1). It batches
// several already-built sub-requests into one round trip; each
// sub-request is itself a standalone *MessageRouter (service + path +
// body), encoded and decoded exactly as it would be alone (spec.md
// §4.5). Errors holds one slot per request: a per-sub-request decode
// failure doesn't abort decoding the rest (spec.md Open Question (a)).
type MultiRequestBody struct {
	Requests []*MessageRouter

	Errors []error
}

func (mr *MultiRequestBody) headerLen() int { return 2 + len(mr.Requests)*2 }

func (mr *MultiRequestBody) RequestSize() int {
	size := mr.headerLen()
	for _, r := range mr.Requests {
		size += r.RequestSize()
	}
	return size
}

func (mr *MultiRequestBody) Encode(buf []byte) []byte {
	buf = binary.LittleEndian.AppendUint16(buf, uint16(len(mr.Requests)))

	offset := uint16(mr.headerLen())
	offsets := make([]uint16, len(mr.Requests))
	for i, r := range mr.Requests {
		offsets[i] = offset
		offset += uint16(r.RequestSize())
	}
	for _, off := range offsets {
		buf = binary.LittleEndian.AppendUint16(buf, off)
	}
	for _, r := range mr.Requests {
		buf = r.Encode(buf)
	}
	return buf
}

func (mr *MultiRequestBody) ResponseSize(buffered []byte) (int, bool) { return len(buffered), true }

func (mr *MultiRequestBody) Decode(data []byte) error {
	if len(data) < 2 {
		return enip.New(enip.KindFraming, "CIP_MultiRequest reply truncated: have %d bytes", len(data))
	}
	count := int(binary.LittleEndian.Uint16(data[0:2]))
	if count != len(mr.Requests) {
		return enip.New(enip.KindFraming, "CIP_MultiRequest reply count %d does not match request count %d", count, len(mr.Requests))
	}

	headerLen := 2 + count*2
	if len(data) < headerLen {
		return enip.New(enip.KindFraming, "CIP_MultiRequest reply offsets truncated")
	}
	offsets := make([]int, count)
	for i := 0; i < count; i++ {
		offsets[i] = int(binary.LittleEndian.Uint16(data[2+i*2 : 4+i*2]))
	}

	mr.Errors = make([]error, count)
	for i := 0; i < count; i++ {
		start := offsets[i]
		end := len(data)
		if i+1 < count {
			end = offsets[i+1]
		}
		if start < 0 || start > len(data) || start > end {
			mr.Errors[i] = enip.New(enip.KindFraming, "sub-response %d has an invalid offset", i)
			continue
		}
		mr.Errors[i] = mr.Requests[i].Decode(data[start:end])
	}
	return nil
}

// NewReadManyRequest builds a CIP_MultiRequest MessageRouter for
// read_many over the given tags, each reading a single element.
func NewReadManyRequest(tags []string) (*MessageRouter, error) {
	if len(tags) == 0 {
		return nil, enip.New(enip.KindArgument, "read_many requires at least one tag")
	}
	if len(tags) > maxMultiRequests {
		return nil, enip.New(enip.KindArgument, "read_many: %d tags exceeds the %d-request batch limit", len(tags), maxMultiRequests)
	}

	reqs := make([]*MessageRouter, len(tags))
	for i, tag := range tags {
		path, err := NewPath().Symbol(tag).Build()
		if err != nil {
			return nil, err
		}
		reqs[i] = &MessageRouter{Service: SvcReadTag, Path: path, Body: &ReadTagBody{Elements: 1}}
	}
	return multiRequestRouter(reqs), nil
}

// NewWriteManyRequest builds a CIP_MultiRequest MessageRouter for
// write_many over the given tags and values, which must be equal length.
func NewWriteManyRequest(tags []string, values []*Value) (*MessageRouter, error) {
	if len(tags) != len(values) {
		return nil, enip.New(enip.KindArgument, "write_many: %d tags but %d values", len(tags), len(values))
	}
	if len(tags) == 0 {
		return nil, enip.New(enip.KindArgument, "write_many requires at least one tag")
	}
	if len(tags) > maxMultiRequests {
		return nil, enip.New(enip.KindArgument, "write_many: %d tags exceeds the %d-request batch limit", len(tags), maxMultiRequests)
	}

	reqs := make([]*MessageRouter, len(tags))
	for i, tag := range tags {
		path, err := NewPath().Symbol(tag).Build()
		if err != nil {
			return nil, err
		}
		reqs[i] = &MessageRouter{Service: SvcWriteTag, Path: path, Body: &WriteTagBody{Value: values[i]}}
	}
	return multiRequestRouter(reqs), nil
}

func multiRequestRouter(reqs []*MessageRouter) *MessageRouter {
	path, _ := NewPath().Class(ClassMessageRouter).Instance(1).Build()
	return &MessageRouter{
		Service: SvcMultipleServicePacket,
		Path:    path,
		Body:    &MultiRequestBody{Requests: reqs},
	}
}
