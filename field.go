package prism

import (
	"reflect"
)

// Field describes the projection rules of one serializable field.
//
// Fields are derived once per type and shared between callers; treat them as
// read-only.
type Field struct {
	// Name is the Go field name. Promoted fields may repeat a Name when their
	// serialized keys differ.
	Name string

	// Key is the serialized name taken from the json tag, or Name. Keys are
	// unique within a type's field set.
	Key string

	// Index is the reflect.Value.FieldByIndex access path, crossing embedded
	// structs.
	Index []int

	// Declaring is the struct type that declares the field. For promoted
	// fields this is the embedded type, not the outer one.
	Declaring reflect.Type

	// Type is the field's declared type.
	Type reflect.Type

	// Description is the desc tag label, empty when absent.
	Description string

	// Expose lists the markers the field opts in to.
	Expose []Marker

	// Exclude lists the markers the field is hidden from.
	Exclude []Marker

	// Mask is the desensitization rule, nil when the field is not masked.
	Mask *MaskRule

	// Hash is the inbound hashing algorithm, empty when not hashed.
	Hash HashAlgo

	// Concealed is true when the declaring type hides fields by default.
	Concealed bool

	ptrIndices []int // positions in Index where an embedded pointer is dereferenced
	kind       fieldKind
}

// fieldKind classifies how projection treats a field's value.
type fieldKind uint8

const (
	kindOther fieldKind = iota
	kindString
	kindStringPtr
	kindStringSlice
	kindNested
)

// Exposes reports whether m is one of the field's Expose markers.
func (f Field) Exposes(m Marker) bool {
	return containsMarker(f.Expose, m)
}

// Excludes reports whether m is one of the field's Exclude markers.
func (f Field) Excludes(m Marker) bool {
	return containsMarker(f.Exclude, m)
}

// Restricted reports whether the field carries any visibility rule.
func (f Field) Restricted() bool {
	return len(f.Expose) > 0 || len(f.Exclude) > 0 || f.Concealed
}

// label returns the field name with its description, for messages.
func (f Field) label() string {
	if f.Description == "" {
		return f.Name
	}
	return f.Name + " (" + f.Description + ")"
}

// classify determines the fieldKind for a field type.
func classify(t reflect.Type) fieldKind {
	switch {
	case t.Kind() == reflect.String:
		return kindString
	case t.Kind() == reflect.Pointer && t.Elem().Kind() == reflect.String:
		return kindStringPtr
	case t.Kind() == reflect.Slice && t.Elem().Kind() == reflect.String:
		return kindStringSlice
	case mayContainModels(t):
		return kindNested
	default:
		return kindOther
	}
}

// mayContainModels reports whether values of t can hold structs that
// projection must descend into.
func mayContainModels(t reflect.Type) bool {
	return containsModels(t, make(map[reflect.Type]bool))
}

func containsModels(t reflect.Type, visiting map[reflect.Type]bool) bool {
	switch t.Kind() {
	case reflect.Interface:
		return true
	case reflect.Pointer, reflect.Slice, reflect.Array, reflect.Map:
		return containsModels(t.Elem(), visiting)
	case reflect.Struct:
		if visiting[t] {
			return true
		}
		visiting[t] = true
		return isModelStruct(t)
	default:
		return false
	}
}

// isModelStruct reports whether t has anything projection can see.
// Structs made only of unexported state (time.Time) are treated as scalars.
func isModelStruct(t reflect.Type) bool {
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		if sf.IsExported() || sf.Anonymous {
			return true
		}
	}
	return false
}
