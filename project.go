package prism

import (
	"context"
	"fmt"
	"reflect"
	"sync"
	"time"
)

// Shape classifies the payload handed to Project.
type Shape string

const (
	ShapeSingle      Shape = "single"
	ShapeList        Shape = "list"
	ShapePage        Shape = "page"
	ShapePassThrough Shape = "passthrough"
)

// Projector filters and masks outbound values.
//
// Projectors are safe for concurrent use. Each Project call works on its own
// copy of the value; the only shared state is the per-type field metadata
// and the masker registry, which SetMasker may update at any time.
type Projector struct {
	cfg Config

	mu      sync.RWMutex
	maskers map[MaskKind]Masker
}

// New creates a Projector with the builtin maskers.
func New(opts ...Option) (*Projector, error) {
	o := buildOptions(opts)
	if err := o.cfg.Validate(); err != nil {
		return nil, err
	}
	return newProjector(o), nil
}

func newProjector(o options) *Projector {
	maskers := builtinMaskers()
	for kind, m := range o.maskers {
		maskers[kind] = m
	}
	return &Projector{
		cfg:     o.cfg,
		maskers: maskers,
	}
}

// Config returns the projector's configuration.
func (p *Projector) Config() Config {
	return p.cfg
}

// SetMasker registers a masker for the given kind.
// Returns the projector for chaining. Safe for concurrent use.
func (p *Projector) SetMasker(kind MaskKind, m Masker) *Projector {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.maskers[kind] = m
	return p
}

// Visible reports whether f is visible under m, substituting the configured
// default marker when m is NoMarker.
func (p *Projector) Visible(f Field, m Marker) bool {
	return Visible(f, p.marker(m))
}

// Mask desensitizes value with the masker registered for rule.Kind.
func (p *Projector) Mask(value string, rule MaskRule) string {
	p.mu.RLock()
	defer p.mu.RUnlock()

	rule = p.resolveRule(rule)
	masker := p.masker(rule.Kind)
	if value == "" || isMaskedBy(masker, value, rule) {
		return value
	}
	return masker.Mask(value, rule)
}

// IsMasked reports whether value already carries the masked form of rule.
func (p *Projector) IsMasked(value string, rule MaskRule) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()

	rule = p.resolveRule(rule)
	return isMaskedBy(p.masker(rule.Kind), value, rule)
}

// Project returns a copy of v with every model filtered and masked for
// marker m. The result has the same shape and type as v: a struct, a pointer
// to a struct, a slice, array or map of models, or a *Page. Other values are
// returned as-is.
//
// Project never fails. An element whose projection panics or whose
// Projectable override returns an error is passed through unmodified (or
// zeroed when the projector fails closed); failures are reported once per
// call through SignalProjectFailed.
func (p *Projector) Project(ctx context.Context, v any, m Marker) any {
	start := time.Now()
	marker := p.marker(m)

	shape, name, count := inspect(v)
	if shape == ShapePassThrough {
		emitProjectComplete(ctx, shape, name, marker, count, 0, 0, time.Since(start))
		return v
	}

	p.mu.RLock()
	run := &projection{
		cfg:     p.cfg,
		marker:  marker,
		maskers: p.maskers,
	}
	out := run.element(reflect.ValueOf(v), 0)
	p.mu.RUnlock()

	emitProjectComplete(ctx, shape, name, marker, count, run.hidden, run.masked, time.Since(start))
	if run.failed > 0 {
		emitProjectFailed(ctx, name, marker, run.failed, run.firstErr)
	}

	return out.Interface()
}

// Apply is Project with the static type preserved.
func Apply[T any](ctx context.Context, p *Projector, v T, m Marker) T {
	out, ok := p.Project(ctx, v, m).(T)
	if !ok {
		return v
	}
	return out
}

func (p *Projector) marker(m Marker) Marker {
	if m == NoMarker {
		return p.cfg.DefaultMarker
	}
	return m
}

// resolveRule fills the configured symbol into rules that name none.
func (p *Projector) resolveRule(rule MaskRule) MaskRule {
	if rule.Symbol == "" {
		rule.Symbol = p.cfg.MaskSymbol
	}
	return rule
}

// masker returns the registered masker, falling back to plain windows so a
// missing registration never leaks the raw value.
func (p *Projector) masker(kind MaskKind) Masker {
	if m, ok := p.maskers[kind]; ok && m != nil {
		return m
	}
	return WindowMasker()
}

func isMaskedBy(m Masker, value string, rule MaskRule) bool {
	if d, ok := m.(MaskDetector); ok {
		return d.Masked(value, rule)
	}
	return IsMasked(value, rule)
}

// inspect determines the payload shape, a type name for signals, and the
// number of top-level elements.
func inspect(v any) (Shape, string, int) {
	if v == nil {
		return ShapePassThrough, "", 0
	}

	rv := reflect.ValueOf(v)
	name := rv.Type().String()

	if pg, ok := v.(pager); ok {
		if rv.Kind() == reflect.Pointer && rv.IsNil() {
			return ShapePassThrough, name, 0
		}
		return ShapePage, name, pg.Len()
	}

	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return ShapePassThrough, name, 0
		}
		rv = rv.Elem()
	}

	switch rv.Kind() {
	case reflect.Struct:
		if isModelStruct(rv.Type()) {
			return ShapeSingle, name, 1
		}
	case reflect.Slice, reflect.Array, reflect.Map:
		if modelish(rv.Type().Elem()) {
			return ShapeList, name, rv.Len()
		}
	}
	return ShapePassThrough, name, 0
}

// modelTypes memoizes mayContainModels.
var modelTypes sync.Map

func modelish(t reflect.Type) bool {
	if cached, ok := modelTypes.Load(t); ok {
		return cached.(bool)
	}
	actual, _ := modelTypes.LoadOrStore(t, mayContainModels(t))
	return actual.(bool)
}

// projection carries the state of one Project call.
type projection struct {
	cfg     Config
	marker  Marker
	maskers map[MaskKind]Masker

	hidden   int
	masked   int
	failed   int
	firstErr error
}

// element projects one value, containing any failure to that value.
func (r *projection) element(v reflect.Value, depth int) (out reflect.Value) {
	defer func() {
		if rec := recover(); rec != nil {
			out = r.fail(v, fmt.Errorf("panic: %v", rec))
		}
	}()

	projected, err := r.value(v, depth)
	if err != nil {
		return r.fail(v, err)
	}
	return projected
}

func (r *projection) fail(v reflect.Value, err error) reflect.Value {
	r.failed++
	if r.firstErr == nil {
		r.firstErr = newTransformError(ErrProject, "project", v.Type().String(), err)
	}
	if r.cfg.FailClosed {
		return reflect.Zero(v.Type())
	}
	return v
}

// value returns a projected copy of v with the same type.
func (r *projection) value(v reflect.Value, depth int) (reflect.Value, error) {
	if depth > r.cfg.MaxDepth {
		if isNil(v) || !modelish(v.Type()) {
			return v, nil
		}
		return r.fail(v, errMaxDepth), nil
	}

	switch v.Kind() {
	case reflect.Interface:
		if v.IsNil() {
			return v, nil
		}
		inner, err := r.value(v.Elem(), depth)
		if err != nil {
			return v, err
		}
		out := reflect.New(v.Type()).Elem()
		out.Set(inner)
		return out, nil

	case reflect.Pointer:
		if v.IsNil() || !modelish(v.Type().Elem()) {
			return v, nil
		}
		inner, err := r.value(v.Elem(), depth)
		if err != nil {
			return v, err
		}
		out := reflect.New(v.Type().Elem())
		out.Elem().Set(inner)
		return out, nil

	case reflect.Struct:
		return r.model(v, depth)

	case reflect.Slice:
		if v.IsNil() || !modelish(v.Type().Elem()) {
			return v, nil
		}
		out := reflect.MakeSlice(v.Type(), v.Len(), v.Len())
		for i := 0; i < v.Len(); i++ {
			out.Index(i).Set(r.element(v.Index(i), depth+1))
		}
		return out, nil

	case reflect.Array:
		if !modelish(v.Type().Elem()) {
			return v, nil
		}
		out := reflect.New(v.Type()).Elem()
		for i := 0; i < v.Len(); i++ {
			out.Index(i).Set(r.element(v.Index(i), depth+1))
		}
		return out, nil

	case reflect.Map:
		if v.IsNil() || !modelish(v.Type().Elem()) {
			return v, nil
		}
		out := reflect.MakeMapWithSize(v.Type(), v.Len())
		iter := v.MapRange()
		for iter.Next() {
			out.SetMapIndex(iter.Key(), r.element(iter.Value(), depth+1))
		}
		return out, nil

	default:
		return v, nil
	}
}

// model filters and masks a copy of one struct value.
func (r *projection) model(v reflect.Value, depth int) (reflect.Value, error) {
	t := v.Type()
	if !isModelStruct(t) {
		return v, nil
	}

	out := reflect.New(t).Elem()
	out.Set(v)
	detachEmbedded(out, 0)

	// Check for override interface
	if pr, ok := out.Addr().Interface().(Projectable); ok {
		if err := pr.Project(r.marker, r.maskers); err != nil {
			return v, err
		}
		return out, nil
	}

	plan := planFor(t)
	for _, p := range plan.opaque {
		if embedded, ok := fieldValue(out, Field{Index: p.index, ptrIndices: p.ptrIndices}); ok && !embedded.IsNil() {
			return v, newTransformError(ErrUnexportedEmbed, "project", embedded.Type().String(), nil)
		}
	}
	for i := range plan.fields {
		f := &plan.fields[i]

		field, ok := fieldValue(out, *f)
		if !ok || !field.CanSet() {
			continue
		}

		if !Visible(*f, r.marker) {
			if !field.IsZero() {
				field.Set(reflect.Zero(field.Type()))
				r.hidden++
			}
			continue
		}

		if f.Mask != nil {
			r.mask(field, f)
			continue
		}

		if f.kind == kindNested {
			nested, err := r.value(field, depth+1)
			if err != nil {
				return v, err
			}
			field.Set(nested)
		}
	}

	return out, nil
}

func isNil(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Slice, reflect.Map:
		return v.IsNil()
	default:
		return false
	}
}

// detachEmbedded replaces embedded struct pointers in a copied struct with
// copies of their targets, so writes through promoted fields stay local.
func detachEmbedded(v reflect.Value, depth int) {
	if depth >= maxEmbedDepth {
		return
	}

	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		if !sf.Anonymous {
			continue
		}

		field := v.Field(i)
		switch sf.Type.Kind() {
		case reflect.Pointer:
			if !sf.IsExported() || field.IsNil() || sf.Type.Elem().Kind() != reflect.Struct {
				continue
			}
			detached := reflect.New(sf.Type.Elem())
			detached.Elem().Set(field.Elem())
			field.Set(detached)
			detachEmbedded(detached.Elem(), depth+1)
		case reflect.Struct:
			detachEmbedded(field, depth+1)
		}
	}
}

// mask desensitizes a visible string, *string or []string field in place.
func (r *projection) mask(field reflect.Value, f *Field) {
	rule := *f.Mask
	if rule.Symbol == "" {
		rule.Symbol = r.cfg.MaskSymbol
	}

	masker, ok := r.maskers[rule.Kind]
	if !ok || masker == nil {
		masker = WindowMasker()
	}

	apply := func(s string) string {
		if s == "" || isMaskedBy(masker, s, rule) {
			return s
		}
		r.masked++
		return masker.Mask(s, rule)
	}

	switch f.kind {
	case kindString:
		field.SetString(apply(field.String()))

	case kindStringPtr:
		if field.IsNil() {
			return
		}
		masked := reflect.New(field.Type().Elem())
		masked.Elem().SetString(apply(field.Elem().String()))
		field.Set(masked)

	case kindStringSlice:
		if field.IsNil() {
			return
		}
		masked := reflect.MakeSlice(field.Type(), field.Len(), field.Len())
		for i := 0; i < field.Len(); i++ {
			masked.Index(i).SetString(apply(field.Index(i).String()))
		}
		field.Set(masked)
	}
}
