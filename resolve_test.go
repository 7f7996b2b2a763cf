package prism

import (
	"reflect"
	"testing"
)

func TestVisible(t *testing.T) {
	tests := []struct {
		name   string
		field  Field
		marker Marker
		want   bool
	}{
		{"untagged no marker", Field{}, NoMarker, true},
		{"untagged any marker", Field{}, "admin", true},

		{"exclude wildcard", Field{Exclude: []Marker{AnyMarker}}, "admin", false},
		{"exclude wildcard no marker", Field{Exclude: []Marker{AnyMarker}}, NoMarker, false},

		{"exclude matching", Field{Exclude: []Marker{"public"}}, "public", false},
		{"exclude other", Field{Exclude: []Marker{"public"}}, "admin", true},
		{"exclude no marker", Field{Exclude: []Marker{"public"}}, NoMarker, false},

		{"expose matching", Field{Expose: []Marker{"admin"}}, "admin", true},
		{"expose other", Field{Expose: []Marker{"admin"}}, "public", false},
		{"expose no marker", Field{Expose: []Marker{"admin"}}, NoMarker, false},
		{"expose wildcard", Field{Expose: []Marker{AnyMarker}}, "public", true},
		{"expose wildcard no marker", Field{Expose: []Marker{AnyMarker}}, NoMarker, true},

		{"exclude wins over expose", Field{Expose: []Marker{"admin"}, Exclude: []Marker{"admin"}}, "admin", false},
		{"exclude wildcard wins over expose", Field{Expose: []Marker{"admin"}, Exclude: []Marker{AnyMarker}}, "admin", false},
		{"expose and unrelated exclude", Field{Expose: []Marker{"admin"}, Exclude: []Marker{"public"}}, "admin", true},

		{"concealed", Field{Concealed: true}, "admin", false},
		{"concealed no marker", Field{Concealed: true}, NoMarker, false},
		{"concealed exposed", Field{Concealed: true, Expose: []Marker{"admin"}}, "admin", true},
		{"concealed exposed other", Field{Concealed: true, Expose: []Marker{"admin"}}, "public", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Visible(tt.field, tt.marker); got != tt.want {
				t.Errorf("Visible(%+v, %q) = %v, want %v", tt.field, tt.marker, got, tt.want)
			}
		})
	}
}

type vault struct {
	Token string `json:"token"`
	Hint  string `json:"hint" send.expose:"owner"`
}

func (vault) Conceal() bool { return true }

type lockbox struct {
	Code string `json:"code"`
}

func (*lockbox) Conceal() bool { return true }

type openbox struct {
	Code string `json:"code"`
}

func (openbox) Conceal() bool { return false }

func TestConcealer(t *testing.T) {
	tests := []struct {
		typ  reflect.Type
		want bool
	}{
		{reflect.TypeFor[vault](), true},
		{reflect.TypeFor[lockbox](), true},
		{reflect.TypeFor[openbox](), false},
		{reflect.TypeFor[struct{ A string }](), false},
	}

	for _, tt := range tests {
		if got := isConcealer(tt.typ); got != tt.want {
			t.Errorf("isConcealer(%s) = %v, want %v", tt.typ, got, tt.want)
		}
	}
}

func TestConcealer_FieldsFollowPolicy(t *testing.T) {
	fields := FieldsOf[vault]()
	if len(fields) != 2 {
		t.Fatalf("FieldsOf[vault]() returned %d fields, want 2", len(fields))
	}

	token, hint := fields[0], fields[1]
	if !token.Concealed || !token.Restricted() {
		t.Error("Token should be concealed")
	}
	if Visible(token, "owner") {
		t.Error("Token should be hidden for every marker")
	}
	if !Visible(hint, "owner") {
		t.Error("Hint should be visible for owner")
	}
	if Visible(hint, "public") {
		t.Error("Hint should be hidden for public")
	}
}

func TestField_Helpers(t *testing.T) {
	f := Field{Expose: []Marker{"admin", "owner"}, Exclude: []Marker{"public"}}

	if !f.Exposes("owner") || f.Exposes("public") {
		t.Error("Exposes mismatch")
	}
	if !f.Excludes("public") || f.Excludes("admin") {
		t.Error("Excludes mismatch")
	}
	if !f.Restricted() {
		t.Error("Restricted() = false, want true")
	}
	if (Field{}).Restricted() {
		t.Error("untagged field should not be restricted")
	}
}

type adminView struct{}

func TestMarkerOf(t *testing.T) {
	if got := MarkerOf[adminView](); got != "prism.adminView" {
		t.Errorf("MarkerOf[adminView]() = %q, want %q", got, "prism.adminView")
	}
}

func TestParseMarkers(t *testing.T) {
	got := parseMarkers(" admin, ,owner,*")
	want := []Marker{"admin", "owner", AnyMarker}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("parseMarkers() = %v, want %v", got, want)
	}
}
