// Package domain defines the relay model shared by both delivery directions:
// the schema-less CXone payload, the resolved outbound message and the
// acknowledgement returned to CXone.
package domain

import (
	"strings"

	"github.com/tidwall/gjson"
)

// Payload is a CXone post body of unknown shape, addressed by dotted key paths.
//
// Paths are literal: each dot separates an object key, and no other gjson
// syntax (wildcards, queries, modifiers) is interpreted.
type Payload struct {
	raw []byte
}

// ParsePayload validates that raw is a JSON object and wraps it.
func ParsePayload(raw []byte) (*Payload, error) {
	if !gjson.ValidBytes(raw) || !gjson.ParseBytes(raw).IsObject() {
		return nil, ErrInvalidPayload
	}
	return &Payload{raw: raw}, nil
}

// Lookup returns the value at path rendered as a string.
//
// Strings are returned as is and numbers in their JSON form. Objects, arrays,
// booleans, null and missing keys report false.
func (p *Payload) Lookup(path string) (string, bool) {
	result := gjson.GetBytes(p.raw, EscapePath(path))
	switch result.Type {
	case gjson.String:
		return result.Str, true
	case gjson.Number:
		return result.Raw, true
	default:
		return "", false
	}
}

// Raw returns the underlying JSON document.
func (p *Payload) Raw() []byte {
	return p.raw
}

// gjsonSpecial lists the characters gjson gives meaning to inside a path component.
const gjsonSpecial = `\*?|#@!=<>%~"`

// EscapePath turns a dotted key path into a gjson path that matches keys literally.
func EscapePath(path string) string {
	var b strings.Builder
	b.Grow(len(path))
	for _, r := range path {
		if strings.ContainsRune(gjsonSpecial, r) {
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}
