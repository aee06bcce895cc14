// Package attrs implements the attribute-stream wire format used inside
// encrypted token payloads and the keyring file.
//
// An attribute stream is a self-delimiting concatenation of records of the
// form "name=value;" where a backslash escapes any literal ';' or '\' in
// the value. Attribute names are short ASCII strings. Unsigned integers
// and timestamps (seconds since the epoch) are written as ASCII decimal;
// byte strings are written raw after escaping.
//
// Structs are mapped to attribute streams through `attr` field tags, in
// the manner of encoding/json:
//
//	type entry struct {
//	    Creation   int64  `attr:"ct"`
//	    ValidAfter int64  `attr:"va"`
//	    KeyType    uint32 `attr:"kt"`
//	    KeyData    []byte `attr:"kd"`
//	}
//
//	type file struct {
//	    Version uint32  `attr:"v"`
//	    Entries []entry `attr:"n"`
//	}
//
// Supported field types are string, []byte, uint32, int64 (a timestamp),
// and a slice of structs. A slice field encodes as a repeated group: the
// field's own attribute carries the element count and each element's
// attributes are suffixed with the element index ("ct0", "ct1", ...).
//
// Strings and byte slices are emitted only when non-empty. Numeric fields
// are always emitted unless tagged with the "optional" option and zero.
// Unknown attributes are ignored when decoding, so new attributes can be
// added without breaking old readers.
package attrs
