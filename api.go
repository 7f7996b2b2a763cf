// Package prism provides declarative response projection: per-response field
// filtering and desensitization driven by struct tags.
//
// A projection takes an outbound value (a single model, a list of models, or a
// Page wrapper) and an active Marker naming the viewing scenario, and returns
// a copy of the same shape with invisible fields zeroed and sensitive string
// fields masked. The original value is never mutated.
//
// # Tag Syntax
//
// Field behavior is declared via compound struct tags:
//
//	send.expose:"public,admin"   - visible only under the listed markers
//	send.exclude:"public"        - hidden under the listed markers
//	send.exclude:"*"             - always hidden
//	send.mask:"phone"            - mask with a preset kind
//	send.mask:"custom,head=2,tail=1,symbol=#"
//	send.mask:"full"             - replace every rune with the mask symbol
//	receive.hash:"bcrypt"        - hash inbound passwords
//	desc:"Mobile phone"          - descriptive label
//
// Fields tagged json:"-" and unexported fields are never projected. Types
// that embed a struct pointer through an unexported field are rejected by
// Register, since the promoted fields would be serialized but not projected.
//
// # Visibility
//
// Visibility is default-open: for types that do not implement Concealer, a
// field with no send tags is visible under every marker. Exclude always wins
// over Expose. A field that declares Expose markers becomes opt-in: it is
// visible only under those markers. Types implementing Concealer hide every
// declared field, tagged or not, that does not opt in through Expose. When no marker is active, fields restricted by
// Exclude are hidden as the least privileged view.
//
// # Basic Usage
//
//	type User struct {
//	    ID       string `json:"id"`
//	    Phone    string `json:"phone" send.mask:"phone"`
//	    Password string `json:"password,omitempty" receive.hash:"bcrypt" send.exclude:"*"`
//	    Salary   int    `json:"salary,omitempty" send.expose:"admin"`
//	}
//
//	proc, _ := prism.NewProcessor[User](json.New())
//
//	// Receive from API (hashes password, rejects masked writes)
//	user, _ := proc.Receive(ctx, body, stored)
//
//	// Send to API (hides password, masks phone, salary only for admin)
//	out, _ := proc.Send(ctx, user, "public")
//
// # Untyped Projection
//
// Projector works on any value shape without a codec:
//
//	p, err := prism.New(prism.WithDefaultMarker("public"))
//	if err != nil {
//	    return err
//	}
//	projected := prism.Apply(ctx, p, page, "admin")
//
// # Masking
//
// Built-in maskers preserve rune length:
//
//   - name: John Smith → J*** S****
//   - phone: 13812345678 → 138****5678
//   - idcard: 110101199003071234 → 110101********1234
//   - bankcard: 6222021234567890 → 6222********7890
//   - email: alice@example.com → a****@example.com
//   - ip: 192.168.1.100 → 192.168.*.***
//   - uuid: 550e8400-e29b-... → 550e8400-****-****-****-************
//
// # Codec Providers
//
// The following codec implementations are available as subpackages:
//
//   - json - JSON encoding (application/json)
//   - xml - XML encoding (application/xml)
//   - yaml - YAML encoding (application/yaml)
//   - msgpack - MessagePack encoding (application/msgpack)
//   - bson - BSON encoding (application/bson)
package prism
