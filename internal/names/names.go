// Package names converts entry names between the container's legacy
// Shift-JIS (CP932) encoding and Go strings.
//
// The null terminator that frames names on the wire belongs to the index
// codec, not to this package.
package names

import (
	"golang.org/x/text/encoding/japanese"
)

// Encode converts name to Shift-JIS bytes.
//
// When name contains a rune the encoding cannot represent, Encode falls
// back to the raw UTF-8 bytes and reports fallback=true so the caller can
// emit a diagnostic. The fallback is non-fatal: the engine treats names as
// opaque byte strings.
func Encode(name string) (raw []byte, fallback bool) {
	enc := japanese.ShiftJIS.NewEncoder()
	raw, err := enc.Bytes([]byte(name))
	if err != nil {
		return []byte(name), true
	}
	return raw, false
}

// Decode converts Shift-JIS bytes to a string, replacing undecodable
// sequences with U+FFFD. Decode never fails; a corrupt name must not
// abort an otherwise parseable index.
func Decode(raw []byte) string {
	dec := japanese.ShiftJIS.NewDecoder()
	out, err := dec.Bytes(raw)
	if err != nil {
		// The decoder substitutes U+FFFD rather than erroring, but keep
		// the raw bytes as a last resort.
		return string(raw)
	}
	return string(out)
}
