package prism

import (
	"context"
	"reflect"
	"strings"
	"sync"

	"github.com/zoobzio/sentinel"
)

// Struct tag keys.
const (
	tagExpose  = "send.expose"
	tagExclude = "send.exclude"
	tagMask    = "send.mask"
	tagHash    = "receive.hash"
	tagDesc    = "desc"
)

// maxEmbedDepth bounds recursion through self-embedding pointer types.
const maxEmbedDepth = 16

func init() {
	// Register compound tags with sentinel
	sentinel.Tag(tagExpose)
	sentinel.Tag(tagExclude)
	sentinel.Tag(tagMask)
	sentinel.Tag(tagHash)
	sentinel.Tag(tagDesc)
}

// typePlan is the derived, immutable projection metadata of one struct type.
type typePlan struct {
	typ      reflect.Type
	typeName string
	fields   []Field
	errs     []error     // malformed fields, skipped from fields
	masked   []int       // indexes into fields carrying a mask rule
	hashed   []int       // indexes into fields carrying a hash algorithm
	opaque   []embedPath // unexported embedded pointers projection cannot copy
}

// embedPath locates an embedded pointer field.
type embedPath struct {
	index      []int
	ptrIndices []int
}

// plans caches typePlans per reflect.Type. Concurrent first callers may each
// build a plan; LoadOrStore publishes exactly one and every caller uses it.
var plans sync.Map

// planFor returns the cached plan for a struct type, building it on first use.
func planFor(rt reflect.Type) *typePlan {
	if cached, ok := plans.Load(rt); ok {
		return cached.(*typePlan)
	}
	actual, _ := plans.LoadOrStore(rt, buildTypePlan(rt))
	return actual.(*typePlan)
}

// Fields returns the projection metadata of t's serializable fields: the
// type's own fields in declaration order, then the fields promoted from
// embedded structs, shallowest embedding first. Collisions resolve the way
// encoding/json resolves them: by serialized key, the shallowest field wins,
// a tagged field breaks a tie at equal depth, and an unbroken tie drops every
// contender.
//
// Pointer types are dereferenced. A nil or non-struct type yields no fields.
// Fields with malformed tags are skipped; use Register to surface them.
func Fields(t reflect.Type) []Field {
	rt := structType(t)
	if rt == nil {
		return nil
	}
	plan := planFor(rt)
	out := make([]Field, len(plan.fields))
	copy(out, plan.fields)
	return out
}

// FieldsOf returns Fields for T.
func FieldsOf[T any]() []Field {
	return Fields(reflect.TypeFor[T]())
}

// Register scans T once, validates its tags, and publishes its metadata.
// Calling Register at startup turns tag mistakes into errors instead of
// silently skipped fields.
func Register[T any]() error {
	typ := reflect.TypeFor[T]()
	if typ.Kind() != reflect.Struct {
		return newConfigError(ErrNotStruct, typ.String(), "", nil)
	}

	spec := sentinel.Scan[T]()
	plan := buildTypePlan(typ)
	if len(plan.errs) > 0 {
		return plan.errs[0]
	}
	if spec.TypeName != "" {
		plan.typeName = spec.TypeName
	}

	plans.Store(typ, plan)
	emitTypeRegistered(context.Background(), plan.typeName, len(plan.fields))
	return nil
}

// structType dereferences pointers and returns t if it is a struct.
func structType(t reflect.Type) reflect.Type {
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == nil || t.Kind() != reflect.Struct {
		return nil
	}
	return t
}

// buildTypePlan creates the field plan for rt by scanning struct tags.
func buildTypePlan(rt reflect.Type) *typePlan {
	plan := &typePlan{
		typ:      rt,
		typeName: typeName(rt),
	}

	scanFields(plan, rt)

	for i, f := range plan.fields {
		if f.Mask != nil {
			plan.masked = append(plan.masked, i)
		}
		if f.Hash != "" {
			plan.hashed = append(plan.hashed, i)
		}
	}
	return plan
}

// typeName prefers sentinel's registered name, falling back to reflection.
func typeName(rt reflect.Type) string {
	if spec, ok := sentinel.Lookup(rt.String()); ok && spec.TypeName != "" {
		return spec.TypeName
	}
	if rt.Name() != "" {
		return rt.Name()
	}
	return rt.String()
}

// embedLevel is a struct type reached through embedding.
type embedLevel struct {
	typ        reflect.Type
	index      []int
	ptrIndices []int
}

// candidate is a field found while walking embedded structs, before
// collisions are resolved.
type candidate struct {
	field  Field
	depth  int
	tagged bool
}

// scanFields walks rt and its embedded structs breadth first and keeps the
// dominant field for every serialized key.
func scanFields(plan *typePlan, rt reflect.Type) {
	var found []candidate
	visited := make(map[reflect.Type]bool)
	current := []embedLevel{{typ: rt}}

	for depth := 0; len(current) > 0 && depth <= maxEmbedDepth; depth++ {
		var next []embedLevel
		level := make(map[reflect.Type]bool)

		for _, lvl := range current {
			// Fields of a type walked at a shallower depth are dominated.
			if visited[lvl.typ] {
				continue
			}
			level[lvl.typ] = true
			concealed := isConcealer(lvl.typ)

			for i := 0; i < lvl.typ.NumField(); i++ {
				sf := lvl.typ.Field(i)

				name, skip := jsonName(sf)
				if skip {
					continue
				}

				if sf.Anonymous && name == "" && structType(sf.Type) != nil {
					index := append(append([]int{}, lvl.index...), i)
					ft := sf.Type
					ptrs := lvl.ptrIndices
					if ft.Kind() == reflect.Pointer {
						ft = ft.Elem()
						if !sf.IsExported() {
							// Serializers still emit these fields, but the
							// pointer cannot be replaced with a copy.
							if isModelStruct(ft) {
								plan.opaque = append(plan.opaque, embedPath{index: index, ptrIndices: ptrs})
								plan.errs = append(plan.errs,
									newConfigError(ErrUnexportedEmbed, sf.Type.String(), sf.Name, nil))
							}
							continue
						}
						ptrs = append(append([]int{}, lvl.ptrIndices...), len(index)-1)
					}
					next = append(next, embedLevel{typ: ft, index: index, ptrIndices: ptrs})
					continue
				}

				if !sf.IsExported() {
					continue
				}

				key := name
				if key == "" {
					key = sf.Name
				}

				field, err := buildField(sf, lvl.typ, key, lvl.index, lvl.ptrIndices, concealed)
				if err != nil {
					plan.errs = append(plan.errs, err)
					continue
				}
				found = append(found, candidate{field: field, depth: depth, tagged: name != ""})
			}
		}

		for t := range level {
			visited[t] = true
		}
		current = next
	}

	plan.fields = dominantFields(found)
}

// dominantFields resolves key collisions and keeps walk order.
func dominantFields(found []candidate) []Field {
	byKey := make(map[string][]int, len(found))
	for i, c := range found {
		byKey[c.field.Key] = append(byKey[c.field.Key], i)
	}

	keep := make([]bool, len(found))
	for _, idxs := range byKey {
		if i, ok := dominant(found, idxs); ok {
			keep[i] = true
		}
	}

	fields := make([]Field, 0, len(found))
	for i, c := range found {
		if keep[i] {
			fields = append(fields, c.field)
		}
	}
	return fields
}

// dominant picks the winner among candidates sharing a key.
func dominant(found []candidate, idxs []int) (int, bool) {
	if len(idxs) == 1 {
		return idxs[0], true
	}

	minDepth := found[idxs[0]].depth
	for _, i := range idxs[1:] {
		minDepth = min(minDepth, found[i].depth)
	}

	var shallow []int
	for _, i := range idxs {
		if found[i].depth == minDepth {
			shallow = append(shallow, i)
		}
	}
	if len(shallow) == 1 {
		return shallow[0], true
	}

	winner, tagged := -1, 0
	for _, i := range shallow {
		if found[i].tagged {
			winner = i
			tagged++
		}
	}
	if tagged == 1 {
		return winner, true
	}
	return 0, false
}

// jsonName returns the explicit json name of a field and whether the field
// is transient (json:"-").
func jsonName(sf reflect.StructField) (string, bool) {
	tag, ok := sf.Tag.Lookup("json")
	if !ok {
		return "", false
	}
	if tag == "-" {
		return "", true
	}
	name, _, _ := strings.Cut(tag, ",")
	return name, false
}

// buildField parses the projection tags of a single field.
func buildField(sf reflect.StructField, declaring reflect.Type, key string, parentIndex, ptrIndices []int, concealed bool) (Field, error) {
	field := Field{
		Name:        sf.Name,
		Key:         key,
		Index:       append(append([]int{}, parentIndex...), sf.Index...),
		Declaring:   declaring,
		Type:        sf.Type,
		Description: sf.Tag.Get(tagDesc),
		Concealed:   concealed,
		ptrIndices:  ptrIndices,
		kind:        classify(sf.Type),
	}

	if val, ok := sf.Tag.Lookup(tagExpose); ok {
		field.Expose = parseMarkers(val)
	}

	if val, ok := sf.Tag.Lookup(tagExclude); ok {
		field.Exclude = parseMarkers(val)
	}

	if val, ok := sf.Tag.Lookup(tagMask); ok {
		if field.kind != kindString && field.kind != kindStringPtr && field.kind != kindStringSlice {
			return Field{}, newConfigError(ErrInvalidTag, val, field.label(), errMaskNeedsString)
		}
		rule, err := parseMaskRule(val)
		if err != nil {
			return Field{}, newConfigError(ErrInvalidTag, val, field.label(), err)
		}
		field.Mask = &rule
	}

	if val, ok := sf.Tag.Lookup(tagHash); ok {
		if field.kind != kindString {
			return Field{}, newConfigError(ErrInvalidTag, val, field.label(), errHashNeedsString)
		}
		if !IsValidHashAlgo(HashAlgo(val)) {
			return Field{}, newConfigError(ErrInvalidTag, val, field.label(), errUnknownHashAlgo)
		}
		field.Hash = HashAlgo(val)
	}

	return field, nil
}

// fieldValue navigates a field path, dereferencing embedded pointers as
// needed. It returns false when an embedded pointer on the path is nil.
func fieldValue(rv reflect.Value, f Field) (reflect.Value, bool) {
	if len(f.ptrIndices) == 0 {
		return rv.FieldByIndex(f.Index), true
	}

	current := rv
	next := 0
	for i, idx := range f.Index {
		current = current.Field(idx)

		if next < len(f.ptrIndices) && f.ptrIndices[next] == i {
			next++
			if current.IsNil() {
				return reflect.Value{}, false
			}
			current = current.Elem()
		}
	}

	return current, true
}
