package attrs

import (
	"bytes"
	"math"
	"reflect"
	"strconv"
	"strings"

	"github.com/opd-ai/webauth"
)

const (
	recordSep  = ';'
	escapeChar = '\\'
	nameSep    = '='
)

// fieldRule is one attribute binding derived from a struct tag.
type fieldRule struct {
	name     string
	optional bool
	index    int
}

// rulesOf extracts the attribute bindings of a struct type, in field
// declaration order. Fields without an attr tag are skipped.
func rulesOf(t reflect.Type) []fieldRule {
	rules := make([]fieldRule, 0, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		tag, ok := t.Field(i).Tag.Lookup("attr")
		if !ok || tag == "-" || tag == "" {
			continue
		}
		name, opts, _ := strings.Cut(tag, ",")
		rules = append(rules, fieldRule{
			name:     name,
			optional: opts == "optional",
			index:    i,
		})
	}
	return rules
}

// Marshal encodes a struct (or pointer to struct) into an attribute
// stream. See the package documentation for the type mapping.
func Marshal(v interface{}) ([]byte, error) {
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Ptr {
		if rv.IsNil() {
			return nil, webauth.New(webauth.CodeInvalid, "cannot encode nil value")
		}
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return nil, webauth.New(webauth.CodeInvalid,
			"cannot encode %s as an attribute stream", rv.Kind())
	}
	var buf bytes.Buffer
	if err := encodeStruct(&buf, rv, ""); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func encodeStruct(buf *bytes.Buffer, rv reflect.Value, suffix string) error {
	for _, rule := range rulesOf(rv.Type()) {
		fv := rv.Field(rule.index)
		name := rule.name + suffix
		switch fv.Kind() {
		case reflect.String:
			if s := fv.String(); s != "" {
				writeAttr(buf, name, []byte(s))
			}
		case reflect.Uint32:
			if n := fv.Uint(); n != 0 || !rule.optional {
				writeAttr(buf, name, []byte(strconv.FormatUint(n, 10)))
			}
		case reflect.Int64:
			if n := fv.Int(); n != 0 || !rule.optional {
				writeAttr(buf, name, []byte(strconv.FormatInt(n, 10)))
			}
		case reflect.Slice:
			if fv.Type().Elem().Kind() == reflect.Uint8 {
				if fv.Len() > 0 {
					writeAttr(buf, name, fv.Bytes())
				}
				continue
			}
			if fv.Type().Elem().Kind() != reflect.Struct {
				return webauth.New(webauth.CodeInvalid,
					"unsupported slice element type %s for attribute %s",
					fv.Type().Elem(), rule.name)
			}
			if suffix != "" {
				return webauth.New(webauth.CodeInvalid,
					"nested repeated group for attribute %s", rule.name)
			}
			writeAttr(buf, name, []byte(strconv.Itoa(fv.Len())))
			for i := 0; i < fv.Len(); i++ {
				if err := encodeStruct(buf, fv.Index(i), strconv.Itoa(i)); err != nil {
					return err
				}
			}
		default:
			return webauth.New(webauth.CodeInvalid,
				"unsupported field type %s for attribute %s", fv.Kind(), rule.name)
		}
	}
	return nil
}

// writeAttr appends one name=value; record, escaping ';' and '\' in the
// value.
func writeAttr(buf *bytes.Buffer, name string, value []byte) {
	buf.WriteString(name)
	buf.WriteByte(nameSep)
	for _, b := range value {
		if b == recordSep || b == escapeChar {
			buf.WriteByte(escapeChar)
		}
		buf.WriteByte(b)
	}
	buf.WriteByte(recordSep)
}

// Unmarshal decodes an attribute stream into the struct pointed to by v.
// Attributes without a matching field are ignored; fields without a
// matching attribute are left at their zero value, except for repeated
// group members, whose numeric attributes must all be present.
func Unmarshal(data []byte, v interface{}) error {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Ptr || rv.IsNil() {
		return webauth.New(webauth.CodeInvalid, "decode target must be a non-nil pointer")
	}
	rv = rv.Elem()
	if rv.Kind() != reflect.Struct {
		return webauth.New(webauth.CodeInvalid,
			"cannot decode an attribute stream into %s", rv.Kind())
	}
	parsed, err := parse(data)
	if err != nil {
		return err
	}
	return decodeStruct(parsed, rv, "", false)
}

// parse splits an attribute stream into its name/value records,
// unescaping values. The final record must be terminated.
func parse(data []byte) (map[string][]byte, error) {
	parsed := make(map[string][]byte)
	for pos := 0; pos < len(data); {
		eq := bytes.IndexByte(data[pos:], nameSep)
		if eq < 0 {
			return nil, webauth.New(webauth.CodeCorrupt,
				"malformed attribute stream: unterminated name at offset %d", pos)
		}
		name := string(data[pos : pos+eq])
		if strings.ContainsAny(name, ";\\") {
			return nil, webauth.New(webauth.CodeCorrupt,
				"malformed attribute stream: invalid name at offset %d", pos)
		}
		pos += eq + 1
		value := make([]byte, 0, 16)
		terminated := false
		for pos < len(data) {
			b := data[pos]
			if b == escapeChar {
				if pos+1 >= len(data) {
					return nil, webauth.New(webauth.CodeCorrupt,
						"malformed attribute stream: trailing escape in %s", name)
				}
				value = append(value, data[pos+1])
				pos += 2
				continue
			}
			pos++
			if b == recordSep {
				terminated = true
				break
			}
			value = append(value, b)
		}
		if !terminated {
			return nil, webauth.New(webauth.CodeCorrupt,
				"malformed attribute stream: unterminated value for %s", name)
		}
		parsed[name] = value
	}
	return parsed, nil
}

func decodeStruct(parsed map[string][]byte, rv reflect.Value, suffix string, inGroup bool) error {
	for _, rule := range rulesOf(rv.Type()) {
		fv := rv.Field(rule.index)
		name := rule.name + suffix
		value, present := parsed[name]
		switch fv.Kind() {
		case reflect.String:
			if present {
				fv.SetString(string(value))
			}
		case reflect.Uint32:
			if !present {
				if inGroup {
					return webauth.New(webauth.CodeCorrupt,
						"missing attribute %s in repeated group", name)
				}
				continue
			}
			n, err := strconv.ParseUint(string(value), 10, 32)
			if err != nil {
				return webauth.New(webauth.CodeCorrupt,
					"invalid numeric value for attribute %s", name)
			}
			fv.SetUint(n)
		case reflect.Int64:
			if !present {
				if inGroup {
					return webauth.New(webauth.CodeCorrupt,
						"missing attribute %s in repeated group", name)
				}
				continue
			}
			n, err := strconv.ParseInt(string(value), 10, 64)
			if err != nil || n < 0 {
				return webauth.New(webauth.CodeCorrupt,
					"invalid time value for attribute %s", name)
			}
			fv.SetInt(n)
		case reflect.Slice:
			if fv.Type().Elem().Kind() == reflect.Uint8 {
				if present {
					fv.SetBytes(append([]byte(nil), value...))
				}
				continue
			}
			if fv.Type().Elem().Kind() != reflect.Struct {
				return webauth.New(webauth.CodeInvalid,
					"unsupported slice element type %s for attribute %s",
					fv.Type().Elem(), rule.name)
			}
			if !present {
				continue
			}
			count, err := strconv.ParseUint(string(value), 10, 32)
			if err != nil || count > math.MaxInt32 {
				return webauth.New(webauth.CodeCorrupt,
					"invalid count value for attribute %s", name)
			}
			// Every group element carries at least one attribute, so a
			// count beyond the number of parsed records cannot be
			// satisfied and is rejected before allocating for it.
			if count > uint64(len(parsed)) {
				return webauth.New(webauth.CodeCorrupt,
					"count %d for attribute %s exceeds stream contents", count, name)
			}
			group := reflect.MakeSlice(fv.Type(), int(count), int(count))
			for i := 0; i < int(count); i++ {
				if err := decodeStruct(parsed, group.Index(i), strconv.Itoa(i), true); err != nil {
					return err
				}
			}
			fv.Set(group)
		default:
			return webauth.New(webauth.CodeInvalid,
				"unsupported field type %s for attribute %s", fv.Kind(), rule.name)
		}
	}
	return nil
}
