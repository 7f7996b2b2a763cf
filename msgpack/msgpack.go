// Package msgpack provides a MessagePack codec implementation.
//
// Fields without a msgpack tag fall back to their json tag, so models tagged
// for JSON responses serialize under the same keys.
package msgpack

import (
	"bytes"

	"github.com/vmihailenco/msgpack/v5"
	"github.com/zoobzio/prism"
)

// fallbackTag is consulted when a field has no msgpack tag.
const fallbackTag = "json"

// msgpackCodec implements prism.Codec for MessagePack.
type msgpackCodec struct{}

// New returns a MessagePack codec.
func New() prism.Codec {
	return &msgpackCodec{}
}

// ContentType returns the MIME type for MessagePack.
func (c *msgpackCodec) ContentType() string {
	return "application/msgpack"
}

// Marshal encodes v as MessagePack.
func (c *msgpackCodec) Marshal(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := msgpack.NewEncoder(&buf)
	enc.SetCustomStructTag(fallbackTag)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Unmarshal decodes MessagePack data into v.
func (c *msgpackCodec) Unmarshal(data []byte, v any) error {
	dec := msgpack.NewDecoder(bytes.NewReader(data))
	dec.SetCustomStructTag(fallbackTag)
	return dec.Decode(v)
}
