package segment

import (
	"bytes"
	"testing"
)

func TestFromBytesCopiesInput(t *testing.T) {
	raw := []byte{0x00, 0x01, 0x00, 0xff}
	seg := FromBytes(raw)
	raw[0] = 0xaa
	if !bytes.Equal(seg.Bytes(), []byte{0x00, 0x01, 0x00, 0xff}) {
		t.Fatalf("segment aliased caller buffer: %x", seg.Bytes())
	}
	if seg.Len() != 4 {
		t.Fatalf("unexpected len: %d", seg.Len())
	}
}

func TestWrapTakesOwnership(t *testing.T) {
	raw := []byte("abc")
	seg := Wrap(raw)
	if &seg.Bytes()[0] != &raw[0] {
		t.Fatalf("expected wrap to reuse buffer")
	}
}

func TestFromTextAndString(t *testing.T) {
	seg := FromText("héllo")
	if seg.Len() != 6 {
		t.Fatalf("unexpected utf-8 length: %d", seg.Len())
	}
	if seg.String() != "héllo" {
		t.Fatalf("unexpected string: %q", seg.String())
	}
}

func TestAppendExtendsInPlace(t *testing.T) {
	seg := FromText("Hello, ")
	seg.Append(FromText("World!"))
	if seg.String() != "Hello, World!" {
		t.Fatalf("unexpected append result: %q", seg.String())
	}
	if seg.Len() != 13 {
		t.Fatalf("unexpected len: %d", seg.Len())
	}
}

func TestAppendDoesNotShareWithCopies(t *testing.T) {
	for name, base := range map[string]Segment{
		"text":  FromText("ab"),
		"bytes": FromBytes([]byte("ab")),
		"wrap":  Wrap(append(make([]byte, 0, 16), 'a', 'b')),
	} {
		a := base
		b := a
		a.Append(FromText("X"))
		b.Append(FromText("Y"))
		if a.String() != "abX" || b.String() != "abY" {
			t.Fatalf("%s: copies interfered: a=%q b=%q", name, a.String(), b.String())
		}
		if base.String() != "ab" {
			t.Fatalf("%s: original changed: %q", name, base.String())
		}
	}
}

func TestStringIsLossy(t *testing.T) {
	tests := []struct {
		name string
		in   []byte
		want string
	}{
		{name: "single bad byte", in: []byte{'o', 'k', 0xff, '!'}, want: "ok\ufffd!"},
		{name: "run of bad bytes", in: []byte{'a', 0xff, 0xfe, 'b'}, want: "a\ufffd\ufffdb"},
		{name: "truncated three byte", in: []byte{0xe2, 0x82, 'a'}, want: "\ufffda"},
		{name: "truncated four byte at end", in: []byte{'x', 0xf0, 0x9f, 0x98}, want: "x\ufffd"},
		{name: "surrogate", in: []byte{0xed, 0xa0, 0x80}, want: "\ufffd\ufffd\ufffd"},
		{name: "overlong", in: []byte{0xc0, 0xaf}, want: "\ufffd\ufffd"},
		{name: "lone continuation", in: []byte{0x80, 'z'}, want: "\ufffdz"},
		{name: "encoded replacement kept", in: []byte("\ufffd"), want: "\ufffd"},
	}
	for _, tt := range tests {
		if got := FromBytes(tt.in).String(); got != tt.want {
			t.Fatalf("%s: got=%q want=%q", tt.name, got, tt.want)
		}
	}
}

func TestEmptySegment(t *testing.T) {
	var zero Segment
	if zero.Len() != 0 || zero.String() != "" {
		t.Fatalf("zero segment not empty: len=%d str=%q", zero.Len(), zero.String())
	}
	if !Equal(zero, FromBytes([]byte{})) {
		t.Fatalf("zero segment should equal empty segment")
	}
}

func TestReadable(t *testing.T) {
	got := Readable([]Segment{FromText("a"), FromBytes([]byte{0xc3}), FromText("")})
	want := []string{"a", "\ufffd", ""}
	if len(got) != len(want) {
		t.Fatalf("unexpected count: %d", len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("segment %d: got=%q want=%q", i, got[i], want[i])
		}
	}
}
