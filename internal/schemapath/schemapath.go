// Package schemapath maps dot-notation property paths onto RFC 6901 pointers
// inside a {jsonSchema, uiSchema} document pair.
//
// Addressing:
//   - "" is the document root; "address.street" is the property "street" nested
//     in the object property "address".
//   - jsonSchema nesting goes through "properties" maps at every level.
//   - uiSchema is flat: each property's UI options live under one key holding the
//     full dotted path ("address.street"), not under a nested mirror.
package schemapath

import "strings"

const (
	JSONSchemaRoot = "/jsonSchema"
	UISchemaRoot   = "/uiSchema"
)

var escaper = strings.NewReplacer("~", "~0", "/", "~1")
var unescaper = strings.NewReplacer("~1", "/", "~0", "~")

// Escape encodes a single reference token per RFC 6901.
func Escape(token string) string { return escaper.Replace(token) }

// Unescape decodes a single reference token per RFC 6901.
func Unescape(token string) string { return unescaper.Replace(token) }

// Segments splits a dotted path. The root path yields no segments.
func Segments(path string) []string {
	if path == "" {
		return nil
	}
	return strings.Split(path, ".")
}

// Split separates the last segment from its parent path.
func Split(path string) (parent, name string) {
	i := strings.LastIndexByte(path, '.')
	if i < 0 {
		return "", path
	}
	return path[:i], path[i+1:]
}

// Join is the inverse of Split.
func Join(parent, name string) string {
	if parent == "" {
		return name
	}
	return parent + "." + name
}

// Object returns the pointer of the schema object a path addresses.
// Object("") is the jsonSchema root itself.
func Object(path string) string {
	var b strings.Builder
	b.WriteString(JSONSchemaRoot)
	for _, seg := range Segments(path) {
		b.WriteString("/properties/")
		b.WriteString(Escape(seg))
	}
	return b.String()
}

// Properties returns the pointer of the properties map owned by path.
func Properties(path string) string { return Object(path) + "/properties" }

// Required returns the pointer of the required array owned by path.
func Required(path string) string { return Object(path) + "/required" }

// Property returns the pointer of the schema slot for name under path.
func Property(path, name string) string { return Properties(path) + "/" + Escape(name) }

// UIProperty returns the pointer of the flat uiSchema slot for name under path.
func UIProperty(path, name string) string { return UI(Join(path, name)) }

// UI returns the pointer of the flat uiSchema slot keyed by a full dotted path.
func UI(path string) string { return UISchemaRoot + "/" + Escape(path) }

// Normalize accepts a dotted path, a JSON Forms scope or a jsonSchema-relative
// dotted path and returns the dotted property form. Scopes look like
// "#/properties/a/properties/b" or "/properties/a"; tokens other than the names
// following "properties" are dropped. Schema-relative paths look like
// "properties.a.properties.b", optionally prefixed with "jsonSchema.".
func Normalize(p string) string {
	p = strings.TrimSpace(p)
	if p == "#" || p == "/" || p == "#/" {
		return ""
	}
	if !strings.HasPrefix(p, "#/") && !strings.HasPrefix(p, "/") {
		return fromSchemaRelative(p)
	}
	tokens := strings.Split(strings.TrimPrefix(strings.TrimPrefix(p, "#"), "/"), "/")
	names := make([]string, 0, len(tokens)/2)
	for i := 0; i < len(tokens); i++ {
		if tokens[i] == "properties" && i+1 < len(tokens) {
			names = append(names, Unescape(tokens[i+1]))
			i++
		}
	}
	return strings.Join(names, ".")
}

// fromSchemaRelative rewrites "properties.a.properties.b" to "a.b". Anything
// that does not alternate "properties" and a name is returned unchanged.
func fromSchemaRelative(p string) string {
	p = strings.TrimPrefix(p, "jsonSchema.")
	segs := Segments(p)
	if len(segs) == 0 || len(segs)%2 != 0 {
		return p
	}
	names := make([]string, 0, len(segs)/2)
	for i := 0; i < len(segs); i += 2 {
		if segs[i] != "properties" || segs[i+1] == "" {
			return p
		}
		names = append(names, segs[i+1])
	}
	return strings.Join(names, ".")
}
