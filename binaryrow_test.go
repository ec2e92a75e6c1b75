package mysql

import "testing"

// buildBinaryRow assembles a COM_STMT_EXECUTE response row packet (leading
// 0x00, a 2-bit-offset NULL bitmap, then non-null values) from the same
// appendParamValue encoder the outbound parameter path uses, since §4.5's
// per-type binary encoding is shared between parameters and result rows.
func buildBinaryRow(cols []*ColumnDefinition, vals []Param) []byte {
	data := []byte{iOK}
	bitmap := newNullBitmap(len(cols), 2)
	for i, v := range vals {
		if v.null {
			bitmap.setNull(i, 2)
		}
	}
	data = append(data, bitmap...)
	for _, v := range vals {
		if v.null {
			continue
		}
		data = appendParamValue(data, v)
	}
	return data
}

func TestDecodeBinaryRowRoundTrip(t *testing.T) {
	cols := []*ColumnDefinition{
		{Type: FieldTypeLong},
		{Type: FieldTypeVarString},
		{Type: FieldTypeNULL},
		{Type: FieldTypeDouble},
		{Type: FieldTypeLongLong, Flags: FlagUnsigned},
	}
	vals := []Param{
		ParamInt32(42),
		ParamString("hello"),
		ParamNull(),
		ParamFloat64(3.5),
		ParamUint64(18446744073709551615),
	}

	data := buildBinaryRow(cols, vals)
	row, err := decodeBinaryRow(data, cols)
	if err != nil {
		t.Fatalf("decodeBinaryRow: %v", err)
	}
	if len(row) != len(cols) {
		t.Fatalf("len(row) = %d, want %d", len(row), len(cols))
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
	if u, ok := row[4].Uint64(); !ok || u != 18446744073709551615 {
		t.Fatalf("row[4] = %v, want max uint64", row[4])
	}
}

func TestDecodeBinaryRowDateTime(t *testing.T) {
	cols := []*ColumnDefinition{{Type: FieldTypeDateTime}}
	vals := []Param{ParamDateTime(DateTime{Year: 2024, Month: 3, Day: 14, Hour: 9, Minute: 30, Second: 5})}

	data := buildBinaryRow(cols, vals)
	row, err := decodeBinaryRow(data, cols)
	if err != nil {
		t.Fatalf("decodeBinaryRow: %v", err)
	}
	dt, ok := row[0].DateTime()
	if !ok {
		t.Fatalf("row[0].DateTime() ok=false")
	}
	if dt.Year != 2024 || dt.Month != 3 || dt.Day != 14 || dt.Hour != 9 || dt.Minute != 30 || dt.Second != 5 {
		t.Fatalf("decoded DateTime = %+v, want 2024-03-14 09:30:05", dt)
	}
}

func TestEncodeBinaryParamsNullBitmapNoOffset(t *testing.T) {
	params := []Param{ParamInt32(1), ParamNull(), ParamInt32(3)}
	encoded := encodeBinaryParams(nil, params)

	// First byte is the NULL bitmap (ceil(3/8) = 1 byte, no offset); bit 1
	// (param index 1) must be set and no others.
	if encoded[0] != 0b010 {
		t.Fatalf("null bitmap byte = %08b, want %08b", encoded[0], 0b010)
	}
	if encoded[1] != 1 {
		t.Fatalf("new_params_bound flag = %d, want 1", encoded[1])
	}
}
