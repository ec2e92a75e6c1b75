package mysql

import (
	"bytes"
	"testing"
)

func TestLengthEncodedIntegerRoundTrip(t *testing.T) {
	values := []uint64{0, 1, 250, 251, 0xfb, 0xfc, 0xffff, 0x10000, 0xffffff, 0x1000000, 1 << 40}

	for _, v := range values {
		enc := appendLengthEncodedInteger(nil, v)
		got, isNull, n, err := readLengthEncodedInteger(enc)
		if err != nil {
			t.Fatalf("readLengthEncodedInteger(%x): %v", enc, err)
		}
		if isNull {
			t.Fatalf("readLengthEncodedInteger(%x): unexpected NULL", enc)
		}
		if n != len(enc) {
			t.Fatalf("readLengthEncodedInteger(%x): consumed %d, want %d", enc, n, len(enc))
		}
		if got != v {
			t.Fatalf("readLengthEncodedInteger(%x) = %d, want %d", enc, got, v)
		}
	}
}

func TestLengthEncodedIntegerNullSentinel(t *testing.T) {
	_, isNull, n, err := readLengthEncodedInteger([]byte{0xfb})
	if err != nil || !isNull || n != 1 {
		t.Fatalf("isNull=%v n=%d err=%v, want true 1 nil", isNull, n, err)
	}
}

func TestLengthEncodedIntegerInvalidLeadByte(t *testing.T) {
	_, _, _, err := readLengthEncodedInteger([]byte{0xff})
	if err == nil {
		t.Fatal("expected error for 0xFF lead byte")
	}
}

func TestLengthEncodedStringRoundTrip(t *testing.T) {
	for _, s := range [][]byte{nil, []byte("x"), bytes.Repeat([]byte("ab"), 200)} {
		enc := appendLengthEncodedString(nil, s)
		got, isNull, n, err := readLengthEncodedString(enc)
		if err != nil || isNull {
			t.Fatalf("readLengthEncodedString: err=%v isNull=%v", err, isNull)
		}
		if n != len(enc) || !bytes.Equal(got, s) {
			t.Fatalf("readLengthEncodedString roundtrip mismatch: got %q n=%d, want %q n=%d", got, n, s, len(enc))
		}
	}
}

func TestNULStringRoundTrip(t *testing.T) {
	enc := appendNULString(nil, "hello")
	got, n, err := readNULString(enc)
	if err != nil {
		t.Fatalf("readNULString: %v", err)
	}
	if string(got) != "hello" || n != len("hello")+1 {
		t.Fatalf("readNULString = %q n=%d, want %q n=%d", got, n, "hello", 6)
	}
}

func TestNullBitmapRowOffset(t *testing.T) {
	// Binary row NULL bitmap reserves 2 bits ahead of column 0 (§4.5).
	b := newNullBitmap(9, 2)
	if len(b) != (9+2+7)/8 {
		t.Fatalf("len(bitmap) = %d, want %d", len(b), (9+2+7)/8)
	}
	b.setNull(0, 2)
	b.setNull(8, 2)
	for i := 0; i < 9; i++ {
		want := i == 0 || i == 8
		if got := b.isNull(i, 2); got != want {
			t.Fatalf("isNull(%d)=%v, want %v", i, got, want)
		}
	}
}

func TestNullBitmapParamNoOffset(t *testing.T) {
	// Binary parameter NULL bitmap has no reserved offset (§4.5).
	b := newNullBitmap(3, 0)
	if len(b) != 1 {
		t.Fatalf("len(bitmap) = %d, want 1", len(b))
	}
	b.setNull(1, 0)
	if b.isNull(0, 0) || !b.isNull(1, 0) || b.isNull(2, 0) {
		t.Fatalf("bitmap bits = %08b, want only bit 1 set", b[0])
	}
}
