// Package testing provides fixtures and helpers for testing code that uses
// prism.
package testing

import (
	"fmt"
	"testing"

	"github.com/zoobzio/prism"
)

// Audit is an embeddable base model with bookkeeping fields.
type Audit struct {
	ID        string `json:"id" yaml:"id" msgpack:"id" bson:"id"`
	CreatedBy string `json:"createdBy,omitempty" yaml:"createdBy,omitempty" msgpack:"createdBy,omitempty" bson:"createdBy,omitempty" send.exclude:"public"`
	Revision  int    `json:"revision,omitempty" yaml:"revision,omitempty" msgpack:"revision,omitempty" bson:"revision,omitempty" send.exclude:"*"`
}

// SimpleUser is a fixture with no projection tags.
type SimpleUser struct {
	ID   string `json:"id" yaml:"id" msgpack:"id" bson:"id"`
	Name string `json:"name" yaml:"name" msgpack:"name" bson:"name"`
}

// Clone implements prism.Cloner.
func (u SimpleUser) Clone() SimpleUser { return u }

// Profile exercises every tag: inherited exclusion, masking, marker opt-in
// and inbound hashing.
type Profile struct {
	Audit
	Name     string   `json:"name" yaml:"name" msgpack:"name" bson:"name" send.mask:"name" desc:"full name"`
	Phone    string   `json:"phone" yaml:"phone" msgpack:"phone" bson:"phone" send.mask:"phone"`
	Email    string   `json:"email" yaml:"email" msgpack:"email" bson:"email" send.mask:"email"`
	IDCard   string   `json:"idCard,omitempty" yaml:"idCard,omitempty" msgpack:"idCard,omitempty" bson:"idCard,omitempty" send.mask:"idcard" send.expose:"owner,admin"`
	Devices  []string `json:"devices,omitempty" yaml:"devices,omitempty" msgpack:"devices,omitempty" bson:"devices,omitempty" send.mask:"ip"`
	Password string   `json:"password,omitempty" yaml:"password,omitempty" msgpack:"password,omitempty" bson:"password,omitempty" receive.hash:"sha256" send.exclude:"*"`
	Balance  int      `json:"balance,omitempty" yaml:"balance,omitempty" msgpack:"balance,omitempty" bson:"balance,omitempty" send.expose:"owner"`
	Remark   string   `json:"remark,omitempty" yaml:"remark,omitempty" msgpack:"remark,omitempty" bson:"remark,omitempty" send.exclude:"public"`
}

// Description implements prism.Describer.
func (Profile) Description() string { return "user profile" }

// Clone implements prism.Cloner.
func (p Profile) Clone() Profile {
	c := p
	if p.Devices != nil {
		c.Devices = append([]string(nil), p.Devices...)
	}
	return c
}

// SampleProfile returns a fully populated profile.
func SampleProfile(id string) Profile {
	return Profile{
		Audit:    Audit{ID: id, CreatedBy: "import", Revision: 3},
		Name:     "Grace Hopper",
		Phone:    "13812345678",
		Email:    "grace@example.com",
		IDCard:   "110101199003071234",
		Devices:  []string{"192.168.1.100", "10.0.0.1"},
		Password: "5e884898da28047151d0e56f8dc6292773603d0d6aabbdd62a11ef721d1542d8",
		Balance:  4200,
		Remark:   "prefers email",
	}
}

// SampleProfiles returns n profiles with ids p1..pn.
func SampleProfiles(n int) []Profile {
	out := make([]Profile, n)
	for i := range out {
		out[i] = SampleProfile(fmt.Sprintf("p%d", i+1))
	}
	return out
}

// MustProcessor builds a processor or fails the test.
func MustProcessor[T any](tb testing.TB, codec prism.Codec, opts ...prism.Option) *prism.Processor[T] {
	tb.Helper()
	proc, err := prism.NewProcessor[T](codec, opts...)
	if err != nil {
		tb.Fatalf("NewProcessor[%T]() error: %v", *new(T), err)
	}
	return proc
}

// MustProjector builds a projector or fails the test.
func MustProjector(tb testing.TB, opts ...prism.Option) *prism.Projector {
	tb.Helper()
	p, err := prism.New(opts...)
	if err != nil {
		tb.Fatalf("New() error: %v", err)
	}
	return p
}
