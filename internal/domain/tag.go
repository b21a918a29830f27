package domain

import "strings"

// TagKind identifies what signal a derived tag carries. Only hostname
// and FQDN tags are strong enough to drive correlation merges; the rest
// are search/display metadata.
type TagKind string

const (
	TagHostname TagKind = "hostname"
	TagFqdn     TagKind = "fqdn"
	TagIP       TagKind = "ip"
	TagVendor   TagKind = "vendor"
	TagOther    TagKind = "other"
)

// Tag is a typed key:value descriptor derived from host attributes
type Tag struct {
	Kind  TagKind
	Value string
}

// ParseTag splits a stored "key:value" string into a typed tag.
// Unknown keys become TagOther with the full key preserved in Value
// ("key=value") so nothing is silently lost.
func ParseTag(s string) Tag {
	key, value, found := strings.Cut(s, ":")
	if !found {
		return Tag{Kind: TagOther, Value: s}
	}
	switch TagKind(key) {
	case TagHostname, TagFqdn, TagIP, TagVendor:
		return Tag{Kind: TagKind(key), Value: value}
	default:
		return Tag{Kind: TagOther, Value: key + "=" + value}
	}
}

// String renders the tag back to its stored key:value form
func (t Tag) String() string {
	if t.Kind == TagOther {
		return strings.Replace(t.Value, "=", ":", 1)
	}
	return string(t.Kind) + ":" + t.Value
}

// HighConfidence reports whether the tag is a strong identity signal
func (t Tag) HighConfidence() bool {
	return t.Kind == TagHostname || t.Kind == TagFqdn
}

// ambiguousHostnames are values shared by many unrelated machines;
// tag groups keyed on them must never be merged.
var ambiguousHostnames = map[string]struct{}{
	"localhost":             {},
	"localhost.localdomain": {},
	"unknown":               {},
	"router":                {},
	"gateway":               {},
	"_gateway":              {},
}

// AmbiguousHostname reports whether a hostname value is too generic to
// identify a single device
func AmbiguousHostname(value string) bool {
	_, ok := ambiguousHostnames[strings.ToLower(value)]
	return ok
}
