package attrs

import (
	"bytes"
	"reflect"
	"testing"

	"github.com/opd-ai/webauth"
)

type simple struct {
	Subject    string `attr:"s"`
	Data       []byte `attr:"d"`
	Count      uint32 `attr:"c"`
	Level      uint32 `attr:"loa,optional"`
	Expiration int64  `attr:"et"`
}

type groupMember struct {
	Creation   int64  `attr:"ct"`
	ValidAfter int64  `attr:"va"`
	KeyType    uint32 `attr:"kt"`
	KeyData    []byte `attr:"kd"`
}

type grouped struct {
	Version uint32        `attr:"v"`
	Entries []groupMember `attr:"n"`
}

func TestMarshalSimple(t *testing.T) {
	t.Parallel()

	in := simple{
		Subject:    "alice",
		Data:       []byte{0x01, 0x02},
		Count:      7,
		Expiration: 1234567890,
	}
	got, err := Marshal(&in)
	if err != nil {
		t.Fatalf("Marshal() error: %v", err)
	}
	want := "s=alice;d=\x01\x02;c=7;et=1234567890;"
	if string(got) != want {
		t.Errorf("Marshal() = %q, want %q", got, want)
	}
}

func TestMarshalOmitsEmptyAndOptional(t *testing.T) {
	t.Parallel()

	got, err := Marshal(simple{Count: 1, Level: 0, Expiration: 5})
	if err != nil {
		t.Fatalf("Marshal() error: %v", err)
	}
	if bytes.Contains(got, []byte("s=")) || bytes.Contains(got, []byte("d=")) {
		t.Errorf("Marshal() emitted empty string/bytes attributes: %q", got)
	}
	if bytes.Contains(got, []byte("loa=")) {
		t.Errorf("Marshal() emitted zero optional attribute: %q", got)
	}
}

func TestMarshalEscaping(t *testing.T) {
	t.Parallel()

	got, err := Marshal(simple{Subject: `a;b\c`, Count: 1, Expiration: 1})
	if err != nil {
		t.Fatalf("Marshal() error: %v", err)
	}
	want := `s=a\;b\\c;`
	if !bytes.Contains(got, []byte(want)) {
		t.Errorf("Marshal() = %q, want escaped record %q", got, want)
	}
}

func TestRoundTrip(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		in   simple
	}{
		{"all fields", simple{Subject: "bob", Data: []byte("blob"), Count: 3, Level: 2, Expiration: 99}},
		{"escapes", simple{Subject: ";;\\;", Count: 1, Expiration: 1}},
		{"binary data", simple{Data: []byte{0, 1, ';', '\\', 255}, Count: 1, Expiration: 1}},
		{"zero optional", simple{Subject: "x", Count: 1, Expiration: 1}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			data, err := Marshal(tc.in)
			if err != nil {
				t.Fatalf("Marshal() error: %v", err)
			}
			var out simple
			if err := Unmarshal(data, &out); err != nil {
				t.Fatalf("Unmarshal() error: %v", err)
			}
			if !reflect.DeepEqual(tc.in, out) {
				t.Errorf("round trip mismatch: in %+v, out %+v", tc.in, out)
			}
		})
	}
}

func TestRoundTripRepeatedGroup(t *testing.T) {
	t.Parallel()

	in := grouped{
		Version: 1,
		Entries: []groupMember{
			{Creation: 100, ValidAfter: 100, KeyType: 1, KeyData: []byte("0123456789abcdef")},
			{Creation: 200, ValidAfter: 300, KeyType: 1, KeyData: bytes.Repeat([]byte{';'}, 16)},
		},
	}
	data, err := Marshal(in)
	if err != nil {
		t.Fatalf("Marshal() error: %v", err)
	}
	if !bytes.Contains(data, []byte("n=2;")) {
		t.Errorf("Marshal() missing count attribute: %q", data)
	}
	if !bytes.Contains(data, []byte("ct0=100;")) || !bytes.Contains(data, []byte("ct1=200;")) {
		t.Errorf("Marshal() missing index-suffixed members: %q", data)
	}
	var out grouped
	if err := Unmarshal(data, &out); err != nil {
		t.Fatalf("Unmarshal() error: %v", err)
	}
	if !reflect.DeepEqual(in, out) {
		t.Errorf("round trip mismatch: in %+v, out %+v", in, out)
	}
}

func TestUnmarshalIgnoresUnknownAttributes(t *testing.T) {
	t.Parallel()

	var out simple
	err := Unmarshal([]byte("s=alice;future=stuff;c=2;et=10;"), &out)
	if err != nil {
		t.Fatalf("Unmarshal() error: %v", err)
	}
	if out.Subject != "alice" || out.Count != 2 || out.Expiration != 10 {
		t.Errorf("Unmarshal() = %+v, known attributes not decoded", out)
	}
}

func TestUnmarshalCorrupt(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name  string
		input string
	}{
		{"unterminated name", "noequals"},
		{"unterminated value", "s=alice"},
		{"trailing escape", `s=alice\`},
		{"bad number", "c=12x;"},
		{"negative time", "et=-5;"},
		{"count too large", "v=1;n=400;ct0=1;va0=1;kt0=1;kd0=k;"},
		{"missing group member", "v=1;n=2;ct0=1;va0=1;kt0=1;kd0=k;"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var s simple
			var g grouped
			var err error
			if tc.name == "count too large" || tc.name == "missing group member" {
				err = Unmarshal([]byte(tc.input), &g)
			} else {
				err = Unmarshal([]byte(tc.input), &s)
			}
			if err == nil {
				t.Fatalf("Unmarshal(%q) expected error, got nil", tc.input)
			}
			if code := webauth.CodeOf(err); code != webauth.CodeCorrupt {
				t.Errorf("Unmarshal(%q) code = %v, want CodeCorrupt", tc.input, code)
			}
		})
	}
}

func TestUnmarshalEmptyStream(t *testing.T) {
	t.Parallel()

	var out simple
	if err := Unmarshal(nil, &out); err != nil {
		t.Fatalf("Unmarshal(nil) error: %v", err)
	}
	if !reflect.DeepEqual(out, simple{}) {
		t.Errorf("Unmarshal(nil) = %+v, want zero value", out)
	}
}

func TestMarshalRejectsUnsupported(t *testing.T) {
	t.Parallel()

	type bad struct {
		F float64 `attr:"f"`
	}
	if _, err := Marshal(bad{F: 1.5}); err == nil {
		t.Fatal("Marshal() expected error for unsupported field type")
	}
	if _, err := Marshal(42); err == nil {
		t.Fatal("Marshal() expected error for non-struct value")
	}
}
