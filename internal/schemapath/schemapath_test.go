package schemapath_test

import (
	"testing"

	"github.com/petasbytes/form-agent/internal/schemapath"
)

func TestPointers(t *testing.T) {
	cases := []struct {
		name string
		got  string
		want string
	}{
		{"properties root", schemapath.Properties(""), "/jsonSchema/properties"},
		{"properties nested", schemapath.Properties("address"), "/jsonSchema/properties/address/properties"},
		{"required root", schemapath.Required(""), "/jsonSchema/required"},
		{"required nested", schemapath.Required("a.b"), "/jsonSchema/properties/a/properties/b/required"},
		{"property root", schemapath.Property("", "name"), "/jsonSchema/properties/name"},
		{"property nested", schemapath.Property("address", "street"), "/jsonSchema/properties/address/properties/street"},
		{"ui root", schemapath.UIProperty("", "email"), "/uiSchema/email"},
		{"ui nested is flat", schemapath.UIProperty("address", "street"), "/uiSchema/address.street"},
		{"escaping", schemapath.Property("", "a/b~c"), "/jsonSchema/properties/a~1b~0c"},
	}
	for _, tc := range cases {
		if tc.got != tc.want {
			t.Errorf("%s: got %q want %q", tc.name, tc.got, tc.want)
		}
	}
}

func TestSplitJoin(t *testing.T) {
	cases := []struct {
		path, parent, name string
	}{
		{"name", "", "name"},
		{"address.street", "address", "street"},
		{"a.b.c", "a.b", "c"},
	}
	for _, tc := range cases {
		parent, name := schemapath.Split(tc.path)
		if parent != tc.parent || name != tc.name {
			t.Errorf("Split(%q) = (%q, %q), want (%q, %q)", tc.path, parent, name, tc.parent, tc.name)
		}
		if got := schemapath.Join(parent, name); got != tc.path {
			t.Errorf("Join(%q, %q) = %q, want %q", parent, name, got, tc.path)
		}
	}
}

func TestNormalize(t *testing.T) {
	cases := map[string]string{
		"":                                     "",
		"#":                                    "",
		"address.street":                       "address.street",
		"#/properties/vorname":                 "vorname",
		"#/properties/address/properties/city": "address.city",
		"/properties/a~1b":                     "a/b",
		"  #/properties/x ":                    "x",
		"properties.address":                   "address",
		"properties.address.properties.city":   "address.city",
		"jsonSchema.properties.address":        "address",
		"properties":                           "properties",
		"address.properties":                   "address.properties",
		"properties.a.b":                       "properties.a.b",
	}
	for in, want := range cases {
		if got := schemapath.Normalize(in); got != want {
			t.Errorf("Normalize(%q) = %q, want %q", in, got, want)
		}
	}
}
