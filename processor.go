package prism

import (
	"context"
	"reflect"
	"sync"
	"time"
)

// Processor binds projection and inbound protection of one model type to a
// codec. Use Send, SendList and SendPage for responses and Receive for
// request bodies.
//
// Processors are safe for concurrent use. SetMasker and SetHasher may be
// called at any time.
//
// Validation occurs automatically on first operation. Configure all required
// handlers before the first call to Send or Receive.
type Processor[T any] struct {
	codec     Codec
	projector *Projector

	// Mutable configuration protected by mu
	mu      sync.RWMutex
	hashers map[HashAlgo]Hasher

	// Validation state (runs once on first operation)
	validateOnce sync.Once
	validateErr  error

	plan     *typePlan
	typeName string
}

// NewProcessor creates a new Processor for struct type T.
//
// T is registered first, so malformed tags fail here rather than being
// skipped at projection time. The processor starts with the builtin maskers
// and hashers; options override them.
func NewProcessor[T any](codec Codec, opts ...Option) (*Processor[T], error) {
	if err := Register[T](); err != nil {
		return nil, err
	}

	o := buildOptions(opts)
	if err := o.cfg.Validate(); err != nil {
		return nil, err
	}

	hashers := builtinHashers()
	for algo, h := range o.hashers {
		hashers[algo] = h
	}

	plan := planFor(reflect.TypeFor[T]())
	p := &Processor[T]{
		codec:     codec,
		projector: newProjector(o),
		hashers:   hashers,
		plan:      plan,
		typeName:  plan.typeName,
	}

	emitProcessorCreated(context.Background(), codec.ContentType(), plan.typeName)
	return p, nil
}

// Projector returns the processor's projector.
func (p *Processor[T]) Projector() *Projector {
	return p.projector
}

// SetMasker registers a masker for the given kind.
// Returns the processor for chaining. Safe for concurrent use.
func (p *Processor[T]) SetMasker(kind MaskKind, m Masker) *Processor[T] {
	p.projector.SetMasker(kind, m)
	return p
}

// SetHasher registers a hasher for the given algorithm.
// Returns the processor for chaining. Safe for concurrent use.
func (p *Processor[T]) SetHasher(algo HashAlgo, h Hasher) *Processor[T] {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.hashers[algo] = h
	return p
}

// Validate checks that all required capabilities are configured.
// Returns an error if any field's required masker or hasher is not
// registered.
//
// Validation also runs automatically on first operation. Calling Validate
// explicitly allows catching configuration errors at startup.
func (p *Processor[T]) Validate() error {
	return p.ensureValidated()
}

// ensureValidated runs validation once and caches the result.
func (p *Processor[T]) ensureValidated() error {
	p.validateOnce.Do(func() {
		p.validateErr = p.validateCapabilities()
	})
	return p.validateErr
}

// validateCapabilities ensures all required capabilities are registered.
// Masker checks are skipped when T projects itself.
func (p *Processor[T]) validateCapabilities() error {
	var zero T
	_, projects := any(&zero).(Projectable)

	if !projects {
		p.projector.mu.RLock()
		for _, idx := range p.plan.masked {
			f := p.plan.fields[idx]
			if m, ok := p.projector.maskers[f.Mask.Kind]; !ok || m == nil {
				p.projector.mu.RUnlock()
				return newConfigError(ErrMissingMasker, string(f.Mask.Kind), f.label(), nil)
			}
		}
		p.projector.mu.RUnlock()
	}

	p.mu.RLock()
	defer p.mu.RUnlock()
	for _, idx := range p.plan.hashed {
		f := p.plan.fields[idx]
		if h, ok := p.hashers[f.Hash]; !ok || h == nil {
			return newConfigError(ErrMissingHasher, string(f.Hash), f.label(), nil)
		}
	}

	return nil
}

// Send projects obj for marker m and marshals the result.
// The original value is not modified.
func (p *Processor[T]) Send(ctx context.Context, obj *T, m Marker) ([]byte, error) {
	return p.send(ctx, m, func() any {
		if obj == nil {
			return nil
		}
		return p.projector.Project(ctx, p.clone(obj), m)
	})
}

// SendList projects every element of list for marker m and marshals the
// result, preserving order.
func (p *Processor[T]) SendList(ctx context.Context, list []T, m Marker) ([]byte, error) {
	return p.send(ctx, m, func() any {
		return p.projector.Project(ctx, p.cloneList(list), m)
	})
}

// SendPage projects the list of a page for marker m and marshals the page.
// Total, page count, paging and sort information are sent unchanged.
func (p *Processor[T]) SendPage(ctx context.Context, page *Page[T], m Marker) ([]byte, error) {
	return p.send(ctx, m, func() any {
		if page == nil {
			return nil
		}
		cp := *page
		cp.List = p.cloneList(page.List)
		return p.projector.Project(ctx, &cp, m)
	})
}

// send marshals the projected payload with signal bookkeeping.
func (p *Processor[T]) send(ctx context.Context, m Marker, build func() any) ([]byte, error) {
	if err := p.ensureValidated(); err != nil {
		return nil, err
	}

	start := time.Now()
	emitSendStart(ctx, p.codec.ContentType(), p.typeName, m)

	var retErr error
	var retData []byte
	defer func() {
		emitSendComplete(ctx, p.codec.ContentType(), p.typeName,
			len(retData), time.Since(start), retErr)
	}()

	data, err := p.codec.Marshal(build())
	if err != nil {
		retErr = newCodecError(ErrMarshal, err)
		return nil, retErr
	}

	retData = data
	return retData, nil
}

// clone returns a deep copy when T implements Cloner.
func (p *Processor[T]) clone(obj *T) *T {
	if c, ok := any(*obj).(Cloner[T]); ok {
		cloned := c.Clone()
		return &cloned
	}
	return obj
}

func (p *Processor[T]) cloneList(list []T) []T {
	if list == nil {
		return nil
	}
	var zero T
	if _, ok := any(zero).(Cloner[T]); !ok {
		return list
	}
	out := make([]T, len(list))
	for i := range list {
		out[i] = any(list[i]).(Cloner[T]).Clone()
	}
	return out
}

// Receive unmarshals a request body and protects stored data from it.
//
// Fields tagged send.mask whose inbound value is still in masked form (a
// client echoing a response back) are restored from stored. Without a stored
// value such a write is rejected with ErrMaskedWrite. Fields tagged
// receive.hash are hashed; an empty inbound value, or one equal to the stored
// hash, keeps the stored hash.
func (p *Processor[T]) Receive(ctx context.Context, data []byte, stored *T) (*T, error) {
	if err := p.ensureValidated(); err != nil {
		return nil, err
	}

	start := time.Now()
	emitReceiveStart(ctx, p.codec.ContentType(), p.typeName)

	var retErr error
	var hashed, restored int
	defer func() {
		emitReceiveComplete(ctx, p.codec.ContentType(), p.typeName,
			time.Since(start), hashed, restored, retErr)
	}()

	var obj T
	if err := p.codec.Unmarshal(data, &obj); err != nil {
		retErr = newCodecError(ErrUnmarshal, err)
		return nil, retErr
	}

	rv := reflect.ValueOf(&obj).Elem()
	var sv reflect.Value
	if stored != nil {
		sv = reflect.ValueOf(stored).Elem()
	}

	var err error
	if restored, err = p.restoreMasked(rv, sv); err != nil {
		retErr = err
		return nil, retErr
	}

	if hashed, err = p.applyHash(rv, sv); err != nil {
		retErr = err
		return nil, retErr
	}

	return &obj, nil
}

// restoreMasked replaces inbound masked values with their stored originals.
func (p *Processor[T]) restoreMasked(rv, sv reflect.Value) (int, error) {
	restored := 0

	for _, idx := range p.plan.masked {
		f := p.plan.fields[idx]

		field, ok := fieldValue(rv, f)
		if !ok || !field.CanSet() {
			continue
		}

		var original reflect.Value
		if sv.IsValid() {
			original, _ = fieldValue(sv, f)
		}

		switch f.kind {
		case kindString:
			if !p.projector.IsMasked(field.String(), *f.Mask) {
				continue
			}
			if !original.IsValid() {
				return restored, newTransformError(ErrMaskedWrite, "restore", f.label(), nil)
			}
			field.SetString(original.String())
			restored++

		case kindStringPtr:
			if field.IsNil() || !p.projector.IsMasked(field.Elem().String(), *f.Mask) {
				continue
			}
			if !original.IsValid() || original.IsNil() {
				return restored, newTransformError(ErrMaskedWrite, "restore", f.label(), nil)
			}
			value := reflect.New(field.Type().Elem())
			value.Elem().SetString(original.Elem().String())
			field.Set(value)
			restored++

		case kindStringSlice:
			for i := 0; i < field.Len(); i++ {
				elem := field.Index(i)
				if !p.projector.IsMasked(elem.String(), *f.Mask) {
					continue
				}
				if !original.IsValid() || i >= original.Len() {
					return restored, newTransformError(ErrMaskedWrite, "restore", f.label(), nil)
				}
				elem.SetString(original.Index(i).String())
				restored++
			}
		}
	}

	return restored, nil
}

// applyHash hashes inbound receive.hash fields.
func (p *Processor[T]) applyHash(rv, sv reflect.Value) (int, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	hashed := 0
	for _, idx := range p.plan.hashed {
		f := p.plan.fields[idx]

		field, ok := fieldValue(rv, f)
		if !ok || !field.CanSet() {
			continue
		}

		var original reflect.Value
		if sv.IsValid() {
			original, _ = fieldValue(sv, f)
		}

		plaintext := field.String()
		if original.IsValid() && (plaintext == "" || plaintext == original.String()) {
			field.SetString(original.String())
			continue
		}
		if plaintext == "" {
			continue
		}

		digest, err := p.hashers[f.Hash].Hash([]byte(plaintext))
		if err != nil {
			return hashed, newTransformError(ErrHash, "hash", f.label(), err)
		}
		field.SetString(digest)
		hashed++
	}

	return hashed, nil
}

// Verify reports whether plaintext matches a hash produced by the hasher
// registered for algo.
func (p *Processor[T]) Verify(algo HashAlgo, hashed string, plaintext []byte) (bool, error) {
	p.mu.RLock()
	h, ok := p.hashers[algo]
	p.mu.RUnlock()

	if !ok || h == nil {
		return false, newConfigError(ErrMissingHasher, string(algo), "", nil)
	}
	return h.Verify(hashed, plaintext)
}
