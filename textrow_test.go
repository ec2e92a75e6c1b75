package mysql

import "testing"

func TestDecodeTextRow(t *testing.T) {
	cols := []*ColumnDefinition{
		{Type: FieldTypeLong},
		{Type: FieldTypeVarString},
		{Type: FieldTypeVarString},
		{Type: FieldTypeDouble},
	}

	var data []byte
	data = appendLengthEncodedString(data, []byte("42"))
	data = appendLengthEncodedString(data, []byte("hello"))
	data = append(data, 0xfb) // NULL sentinel
	data = appendLengthEncodedString(data, []byte("3.5"))

	row, err := decodeTextRow(data, cols)
	if err != nil {
		t.Fatalf("decodeTextRow: %v", err)
	}

	if v, ok := row[0].Int64(); !ok || v != 42 {
		t.Fatalf("row[0] = %v, want 42", row[0])
	}
	if b, _, ok := row[1].Bytes(); !ok || string(b) != "hello" {
		t.Fatalf("row[1] = %v, want hello", row[1])
	}
	if !row[2].IsNull() {
		t.Fatalf("row[2] = %v, want NULL", row[2])
	}
	if f, ok := row[3].Float64(); !ok || f != 3.5 {
		t.Fatalf("row[3] = %v, want 3.5", row[3])
	}
}

func TestDecodeTextRowDateTime(t *testing.T) {
	cols := []*ColumnDefinition{{Type: FieldTypeDateTime}}
	var data []byte
	data = appendLengthEncodedString(data, []byte("2024-03-14 09:30:05"))

	row, err := decodeTextRow(data, cols)
	if err != nil {
		t.Fatalf("decodeTextRow: %v", err)
	}
	dt, ok := row[0].DateTime()
	if !ok {
		t.Fatalf("row[0].DateTime() ok=false, got %v", row[0])
	}
	if dt.Year != 2024 || dt.Month != 3 || dt.Day != 14 || dt.Hour != 9 || dt.Minute != 30 || dt.Second != 5 {
		t.Fatalf("decoded DateTime = %+v", dt)
	}
}
