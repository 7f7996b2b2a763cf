// Package bson provides a BSON codec implementation.
//
// Fields without a bson tag fall back to their json tag. BSON requires a
// document at the top level, so send single models or pages; bare lists
// cannot be encoded.
package bson

import (
	"bytes"

	"github.com/zoobzio/prism"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsonrw"
)

// bsonCodec implements prism.Codec for BSON.
type bsonCodec struct{}

// New returns a BSON codec.
func New() prism.Codec {
	return &bsonCodec{}
}

// ContentType returns the MIME type for BSON.
func (c *bsonCodec) ContentType() string {
	return "application/bson"
}

// Marshal encodes v as a BSON document.
func (c *bsonCodec) Marshal(v any) ([]byte, error) {
	var buf bytes.Buffer
	vw, err := bsonrw.NewBSONValueWriter(&buf)
	if err != nil {
		return nil, err
	}
	enc, err := bson.NewEncoder(vw)
	if err != nil {
		return nil, err
	}
	enc.UseJSONStructTags()
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Unmarshal decodes a BSON document into v.
func (c *bsonCodec) Unmarshal(data []byte, v any) error {
	dec, err := bson.NewDecoder(bsonrw.NewBSONDocumentReader(data))
	if err != nil {
		return err
	}
	dec.UseJSONStructTags()
	return dec.Decode(v)
}
