package prism

import (
	"reflect"
)

// Concealer is implemented by types that hide every declared field unless
// the field opts in with send.expose. The decision applies to the fields the
// type declares itself; fields promoted from embedded types follow their own
// declaring type.
//
//	type Account struct { ... }
//
//	func (Account) Conceal() bool { return true }
type Concealer interface {
	Conceal() bool
}

var concealerType = reflect.TypeFor[Concealer]()

// isConcealer reports whether rt (or *rt) implements Concealer and asks for
// concealment. The method is called on a zero value.
func isConcealer(rt reflect.Type) (concealed bool) {
	defer func() {
		if recover() != nil {
			concealed = false
		}
	}()

	switch {
	case rt.Implements(concealerType):
		return reflect.Zero(rt).Interface().(Concealer).Conceal()
	case reflect.PointerTo(rt).Implements(concealerType):
		return reflect.New(rt).Interface().(Concealer).Conceal()
	default:
		return false
	}
}

// Visible reports whether f is part of the response under marker m.
//
// The policy is default-open with Exclude taking precedence:
//
//  1. Exclude containing AnyMarker hides the field everywhere.
//  2. Exclude containing m hides the field, whatever Expose says.
//  3. With no marker, any Exclude restriction hides the field.
//  4. A non-empty Expose makes the field opt-in: visible only for AnyMarker
//     or m itself.
//  5. Fields declared by a Concealer type are hidden.
//  6. Everything else is visible.
func Visible(f Field, m Marker) bool {
	if f.Excludes(AnyMarker) {
		return false
	}

	if m == NoMarker {
		if len(f.Exclude) > 0 {
			return false
		}
	} else if f.Excludes(m) {
		return false
	}

	if len(f.Expose) > 0 {
		return f.Exposes(AnyMarker) || (m != NoMarker && f.Exposes(m))
	}

	return !f.Concealed
}
