package prism

import (
	"reflect"
	"sync"
)

// processorKey identifies a cached processor: one per model type and wire
// format.
type processorKey struct {
	model       reflect.Type
	contentType string
}

var (
	processors   = make(map[processorKey]any)
	processorsMu sync.RWMutex
)

// Use returns the shared processor for T and the codec's content type,
// building it on first use. Options only take effect on that first build.
//
// A processor is validated before it is shared, so a missing masker or
// hasher fails here and is never cached.
func Use[T any](codec Codec, opts ...Option) (*Processor[T], error) {
	key := processorKey{model: reflect.TypeFor[T](), contentType: codec.ContentType()}

	processorsMu.RLock()
	cached, ok := processors[key]
	processorsMu.RUnlock()
	if ok {
		return cached.(*Processor[T]), nil
	}

	processorsMu.Lock()
	defer processorsMu.Unlock()

	// Another caller may have built it while we waited.
	if cached, ok := processors[key]; ok {
		return cached.(*Processor[T]), nil
	}

	proc, err := NewProcessor[T](codec, opts...)
	if err != nil {
		return nil, err
	}
	if err := proc.Validate(); err != nil {
		return nil, err
	}

	processors[key] = proc
	return proc, nil
}

// Reset drops every shared processor and all cached type metadata.
// Tests use it to isolate registrations.
func Reset() {
	processorsMu.Lock()
	defer processorsMu.Unlock()
	processors = make(map[processorKey]any)
	plans.Range(func(key, _ any) bool {
		plans.Delete(key)
		return true
	})
	modelTypes.Range(func(key, _ any) bool {
		modelTypes.Delete(key)
		return true
	})
}
