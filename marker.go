package prism

import (
	"reflect"
	"strings"
)

// Marker names a response filtering scenario ("public", "admin", "export").
// It carries no behavior and is only compared against tag values.
type Marker string

const (
	// NoMarker means no scenario was requested.
	NoMarker Marker = ""

	// AnyMarker matches every scenario when used in a tag.
	AnyMarker Marker = "*"
)

// MarkerOf derives a marker from a Go type, for callers that prefer type
// tokens over string keys:
//
//	type AdminView struct{}
//	proc.Send(ctx, user, prism.MarkerOf[AdminView]())
//
// Tags refer to such markers by the type's qualified name, e.g.
// send.expose:"views.AdminView".
func MarkerOf[T any]() Marker {
	return Marker(reflect.TypeFor[T]().String())
}

// parseMarkers splits a comma separated tag value into markers.
func parseMarkers(val string) []Marker {
	parts := strings.Split(val, ",")
	markers := make([]Marker, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		markers = append(markers, Marker(part))
	}
	return markers
}

// containsMarker reports whether m appears in markers.
func containsMarker(markers []Marker, m Marker) bool {
	for _, candidate := range markers {
		if candidate == m {
			return true
		}
	}
	return false
}
