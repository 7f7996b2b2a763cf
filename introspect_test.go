package prism

import (
	"errors"
	"reflect"
	"sync"
	"testing"
)

type Entity struct {
	ID        string `json:"id"`
	CreatedAt int64  `json:"createdAt" send.exclude:"public"`
}

type person struct {
	Entity
	Name     string `json:"name" desc:"display name"`
	Phone    string `json:"phone" send.mask:"phone"`
	Password string `json:"password" receive.hash:"sha256" send.exclude:"*"`
	Cache    string `json:"-"`
	internal string
}

func (person) Description() string { return "a registered person" }

type shadowed struct {
	Entity
	ID string `json:"identifier"`
}

type pointerEmbed struct {
	*Entity
	Label string `json:"label"`
}

type deepInner struct {
	X string `json:"x"`
}

type deepOuter struct {
	deepInner
}

type shallowX struct {
	X string `json:"x" send.exclude:"*"`
}

// nestedCollision promotes x at depth 2 through deepOuter and depth 1
// through shallowX.
type nestedCollision struct {
	deepOuter
	shallowX
}

type aliasBase struct {
	Secret string `json:",omitempty" send.exclude:"*"`
}

type aliasOuter struct {
	aliasBase
	Secret string `json:"alias"`
}

type tieA struct {
	Name string
}

type tieB struct {
	Name string
}

type untaggedTie struct {
	tieA
	tieB
	ID string `json:"id"`
}

type taggedA struct {
	Name string `json:"Name" send.exclude:"public"`
}

type taggedTie struct {
	taggedA
	tieB
}

type token struct {
	Value string `json:"token"`
}

type hiddenEmbed struct {
	*token
	ID string `json:"id"`
}

type badMaskTarget struct {
	Age int `send.mask:"phone"`
}

type badMaskKind struct {
	Phone string `send.mask:"ssn"`
}

type badHashAlgo struct {
	Password string `receive.hash:"md5"`
}

type badHashTarget struct {
	Password []string `receive.hash:"sha256"`
}

func fieldNames(fields []Field) []string {
	names := make([]string, len(fields))
	for i, f := range fields {
		names[i] = f.Name
	}
	return names
}

func TestFields_OwnThenInherited(t *testing.T) {
	fields := FieldsOf[person]()

	want := []string{"Name", "Phone", "Password", "ID", "CreatedAt"}
	if got := fieldNames(fields); !reflect.DeepEqual(got, want) {
		t.Fatalf("field names = %v, want %v", got, want)
	}

	if fields[0].Key != "name" || fields[0].Description != "display name" {
		t.Errorf("Name field = %+v", fields[0])
	}
	if fields[1].Mask == nil || *fields[1].Mask != PresetRule(MaskPhone) {
		t.Errorf("Phone mask = %v, want phone preset", fields[1].Mask)
	}
	if fields[2].Hash != HashSHA256 || !fields[2].Excludes(AnyMarker) {
		t.Errorf("Password field = %+v", fields[2])
	}
	if fields[3].Declaring != reflect.TypeFor[Entity]() {
		t.Errorf("ID declared by %v, want Entity", fields[3].Declaring)
	}
	if !reflect.DeepEqual(fields[3].Index, []int{0, 0}) {
		t.Errorf("ID index = %v, want [0 0]", fields[3].Index)
	}
	if !fields[4].Excludes("public") {
		t.Error("CreatedAt should exclude public")
	}
}

func TestFields_SkipsTransientAndUnexported(t *testing.T) {
	for _, f := range FieldsOf[person]() {
		if f.Name == "Cache" || f.Name == "internal" {
			t.Errorf("field %s should be skipped", f.Name)
		}
	}
}

func fieldKeys(fields []Field) []string {
	keys := make([]string, len(fields))
	for i, f := range fields {
		keys[i] = f.Key
	}
	return keys
}

func TestFields_RenamedOuterKeepsAncestor(t *testing.T) {
	fields := FieldsOf[shadowed]()

	want := []string{"identifier", "id", "createdAt"}
	if got := fieldKeys(fields); !reflect.DeepEqual(got, want) {
		t.Fatalf("field keys = %v, want %v", got, want)
	}
	if fields[0].Name != "ID" || fields[1].Name != "ID" {
		t.Errorf("field names = %v, want both IDs", fieldNames(fields))
	}
	if fields[1].Declaring != reflect.TypeFor[Entity]() {
		t.Errorf("id declared by %v, want Entity", fields[1].Declaring)
	}
}

func TestFields_KeyCollisions(t *testing.T) {
	tests := []struct {
		name      string
		fields    []Field
		wantKeys  []string
		declaring []reflect.Type
	}{
		{
			name:      "shallower promoted field wins",
			fields:    FieldsOf[nestedCollision](),
			wantKeys:  []string{"x"},
			declaring: []reflect.Type{reflect.TypeFor[shallowX]()},
		},
		{
			name:     "renamed outer field keeps ancestor",
			fields:   FieldsOf[aliasOuter](),
			wantKeys: []string{"alias", "Secret"},
			declaring: []reflect.Type{
				reflect.TypeFor[aliasOuter](),
				reflect.TypeFor[aliasBase](),
			},
		},
		{
			name:      "untagged tie drops every contender",
			fields:    FieldsOf[untaggedTie](),
			wantKeys:  []string{"id"},
			declaring: []reflect.Type{reflect.TypeFor[untaggedTie]()},
		},
		{
			name:      "tagged field breaks tie",
			fields:    FieldsOf[taggedTie](),
			wantKeys:  []string{"Name"},
			declaring: []reflect.Type{reflect.TypeFor[taggedA]()},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := fieldKeys(tt.fields); !reflect.DeepEqual(got, tt.wantKeys) {
				t.Fatalf("field keys = %v, want %v", got, tt.wantKeys)
			}
			for i, want := range tt.declaring {
				if tt.fields[i].Declaring != want {
					t.Errorf("%s declared by %v, want %v", tt.fields[i].Key, tt.fields[i].Declaring, want)
				}
			}
		})
	}
}

func TestFields_UnexportedEmbeddedPointer(t *testing.T) {
	want := []string{"id"}
	if got := fieldKeys(FieldsOf[hiddenEmbed]()); !reflect.DeepEqual(got, want) {
		t.Errorf("field keys = %v, want %v", got, want)
	}

	err := Register[hiddenEmbed]()
	if !errors.Is(err, ErrUnexportedEmbed) {
		t.Fatalf("Register[hiddenEmbed]() = %v, want ErrUnexportedEmbed", err)
	}
	var cfgErr *ConfigError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("error should be a *ConfigError, got %T", err)
	}
	if cfgErr.Field != "token" {
		t.Errorf("Field = %q, want token", cfgErr.Field)
	}
}

func TestFields_EmbeddedPointer(t *testing.T) {
	fields := FieldsOf[pointerEmbed]()

	want := []string{"Label", "ID", "CreatedAt"}
	if got := fieldNames(fields); !reflect.DeepEqual(got, want) {
		t.Fatalf("field names = %v, want %v", got, want)
	}

	v := reflect.ValueOf(pointerEmbed{Label: "x"})
	if _, ok := fieldValue(v, fields[1]); ok {
		t.Error("fieldValue through nil embedded pointer should report false")
	}

	v = reflect.ValueOf(pointerEmbed{Entity: &Entity{ID: "42"}})
	got, ok := fieldValue(v, fields[1])
	if !ok || got.String() != "42" {
		t.Errorf("fieldValue = %v, %v; want 42, true", got, ok)
	}
}

func TestFields_NilAndNonStruct(t *testing.T) {
	if got := Fields(nil); got != nil {
		t.Errorf("Fields(nil) = %v, want nil", got)
	}
	if got := Fields(reflect.TypeFor[int]()); got != nil {
		t.Errorf("Fields(int) = %v, want nil", got)
	}
	if got := Fields(reflect.TypeFor[*person]()); len(got) != 5 {
		t.Errorf("Fields(*person) returned %d fields, want 5", len(got))
	}
}

func TestFields_ReturnsCopy(t *testing.T) {
	fields := FieldsOf[person]()
	fields[0].Name = "mutated"

	if FieldsOf[person]()[0].Name != "Name" {
		t.Error("mutating the result must not affect cached metadata")
	}
}

func TestFields_SkipsMalformed(t *testing.T) {
	if got := FieldsOf[badMaskKind](); len(got) != 0 {
		t.Errorf("malformed field should be skipped, got %v", fieldNames(got))
	}
}

func TestPlanFor_ComputedOnce(t *testing.T) {
	rt := reflect.TypeFor[person]()

	var wg sync.WaitGroup
	results := make([]*typePlan, 16)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = planFor(rt)
		}(i)
	}
	wg.Wait()

	for i, plan := range results {
		if plan != results[0] {
			t.Fatalf("goroutine %d observed a different plan", i)
		}
	}
}

func TestPlan_IndexesCapabilities(t *testing.T) {
	plan := planFor(reflect.TypeFor[person]())

	if len(plan.masked) != 1 || plan.fields[plan.masked[0]].Name != "Phone" {
		t.Errorf("masked = %v", plan.masked)
	}
	if len(plan.hashed) != 1 || plan.fields[plan.hashed[0]].Name != "Password" {
		t.Errorf("hashed = %v", plan.hashed)
	}
}

func TestRegister(t *testing.T) {
	if err := Register[person](); err != nil {
		t.Fatalf("Register[person]() error: %v", err)
	}

	if err := Register[int](); !errors.Is(err, ErrNotStruct) {
		t.Errorf("Register[int]() = %v, want ErrNotStruct", err)
	}
}

func TestRegister_InvalidTags(t *testing.T) {
	tests := []struct {
		name     string
		register func() error
		value    string
	}{
		{"mask on int", Register[badMaskTarget], "phone"},
		{"unknown mask kind", Register[badMaskKind], "ssn"},
		{"unknown hash algo", Register[badHashAlgo], "md5"},
		{"hash on slice", Register[badHashTarget], "sha256"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.register()
			if !errors.Is(err, ErrInvalidTag) {
				t.Fatalf("error = %v, want ErrInvalidTag", err)
			}
			var cfgErr *ConfigError
			if !errors.As(err, &cfgErr) {
				t.Fatalf("error should be a *ConfigError, got %T", err)
			}
			if cfgErr.Value != tt.value {
				t.Errorf("Value = %q, want %q", cfgErr.Value, tt.value)
			}
			if cfgErr.Cause == nil {
				t.Error("Cause should explain the failure")
			}
		})
	}
}

func TestDescribe(t *testing.T) {
	label, ok := Describe(reflect.TypeFor[person]())
	if !ok || label != "a registered person" {
		t.Errorf("Describe(person) = %q, %v", label, ok)
	}

	if _, ok := Describe(reflect.TypeFor[Entity]()); ok {
		t.Error("Describe(Entity) should report no label")
	}
	if _, ok := Describe(nil); ok {
		t.Error("Describe(nil) should report no label")
	}
}

func TestDescribeField(t *testing.T) {
	rt := reflect.TypeFor[person]()

	for _, name := range []string{"Name", "name"} {
		if desc, ok := DescribeField(rt, name); !ok || desc != "display name" {
			t.Errorf("DescribeField(%q) = %q, %v", name, desc, ok)
		}
	}
	if _, ok := DescribeField(rt, "phone"); ok {
		t.Error("phone has no description")
	}
	if _, ok := DescribeField(rt, "missing"); ok {
		t.Error("missing field should report false")
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		typ  reflect.Type
		want fieldKind
	}{
		{reflect.TypeFor[string](), kindString},
		{reflect.TypeFor[*string](), kindStringPtr},
		{reflect.TypeFor[[]string](), kindStringSlice},
		{reflect.TypeFor[Entity](), kindNested},
		{reflect.TypeFor[[]*Entity](), kindNested},
		{reflect.TypeFor[map[string]Entity](), kindNested},
		{reflect.TypeFor[any](), kindNested},
		{reflect.TypeFor[int](), kindOther},
		{reflect.TypeFor[[]int](), kindOther},
		{reflect.TypeFor[struct{ x int }](), kindOther},
	}

	for _, tt := range tests {
		if got := classify(tt.typ); got != tt.want {
			t.Errorf("classify(%s) = %d, want %d", tt.typ, got, tt.want)
		}
	}
}
