package prism

import (
	"reflect"
)

// Describer labels a type for documentation and error messages.
type Describer interface {
	Description() string
}

var describerType = reflect.TypeFor[Describer]()

// Describe returns the label of t, if t or *t implements Describer.
// Labels never influence projection.
func Describe(t reflect.Type) (label string, ok bool) {
	rt := structType(t)
	if rt == nil {
		return "", false
	}

	defer func() {
		if recover() != nil {
			label, ok = "", false
		}
	}()

	switch {
	case rt.Implements(describerType):
		label = reflect.Zero(rt).Interface().(Describer).Description()
	case reflect.PointerTo(rt).Implements(describerType):
		label = reflect.New(rt).Interface().(Describer).Description()
	}
	return label, label != ""
}

// DescribeField returns the desc tag of the field named name (Go name or
// serialized key) in t.
func DescribeField(t reflect.Type, name string) (string, bool) {
	for _, f := range Fields(t) {
		if f.Name == name || f.Key == name {
			return f.Description, f.Description != ""
		}
	}
	return "", false
}
