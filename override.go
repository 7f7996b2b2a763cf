package prism

// Projectable lets a type project itself instead of going through
// reflection. When a model implements Projectable (on its pointer), the
// projector copies it and calls Project on the copy; tags on the type and its
// nested models are then not consulted.
//
// This serves two purposes:
// 1. Performance: generated Project methods avoid reflection on hot paths
// 2. Custom logic: rules that can't be expressed via tags
//
// An error leaves the element unmodified in the response (or zeroed when the
// projector fails closed) and is reported through SignalProjectFailed.
type Projectable interface {
	// Project filters and masks the receiver's fields for marker m.
	// The receiver is a copy, so mutations are safe.
	// The maskers map contains all registered maskers keyed by kind.
	Project(m Marker, maskers map[MaskKind]Masker) error
}
