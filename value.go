package mysql

import "fmt"

// ValueKind discriminates the tagged Value variant described in §4.6.
type ValueKind int

const (
	KindNull ValueKind = iota
	KindInt
	KindUint
	KindFloat
	KindDouble
	KindBytes
	KindDateTime
	KindDuration
	KindDecimal
)

// DateTime is the Y-M-D h:m:s[.micro] triple used by DATE, DATETIME and
// TIMESTAMP columns (YEAR decodes as an integer). Fields beyond what the wire actually sent are
// left zero (e.g. a DATE-only value has Hour==Minute==Second==0).
type DateTime struct {
	Year        uint16
	Month       uint8
	Day         uint8
	Hour        uint8
	Minute      uint8
	Second      uint8
	Microsecond uint32
}

// Duration is the [sign][days] h:m:s[.micro] representation used by TIME
// columns, which (unlike DateTime) can exceed 24 hours and can be negative.
type Duration struct {
	Negative    bool
	Days        uint32
	Hour        uint8
	Minute      uint8
	Second      uint8
	Microsecond uint32
}

// Decimal carries a NEWDECIMAL/DECIMAL column's textual representation
// unchanged, since the wire format is already a decimal-digit string and
// converting through float64 would lose precision.
type Decimal string

func (d Decimal) String() string { return string(d) }

// Value is one decoded column value, tagged by Kind. Only the field(s)
// matching Kind are meaningful; the zero Value is KindNull.
type Value struct {
	Kind      ValueKind
	i64       int64
	u64       uint64
	f32       float32
	f64       float64
	bytes     []byte
	collation uint16
	dt        DateTime
	dur       Duration
	dec       Decimal
}

func nullValue() Value { return Value{Kind: KindNull} }

func intValue(v int64) Value { return Value{Kind: KindInt, i64: v} }

func uintValue(v uint64) Value { return Value{Kind: KindUint, u64: v} }

func floatValue(v float32) Value { return Value{Kind: KindFloat, f32: v} }

func doubleValue(v float64) Value { return Value{Kind: KindDouble, f64: v} }

func bytesValue(b []byte, collation uint16) Value {
	return Value{Kind: KindBytes, bytes: b, collation: collation}
}

func dateTimeValue(dt DateTime) Value { return Value{Kind: KindDateTime, dt: dt} }

func durationValue(d Duration) Value { return Value{Kind: KindDuration, dur: d} }

func decimalValue(d Decimal) Value { return Value{Kind: KindDecimal, dec: d} }

func (v Value) IsNull() bool { return v.Kind == KindNull }

// Int64 returns the value as a signed integer; valid for KindInt.
func (v Value) Int64() (int64, bool) {
	if v.Kind != KindInt {
		return 0, false
	}
	return v.i64, true
}

// Uint64 returns the value as an unsigned integer; valid for KindUint.
func (v Value) Uint64() (uint64, bool) {
	if v.Kind != KindUint {
		return 0, false
	}
	return v.u64, true
}

func (v Value) Float32() (float32, bool) {
	if v.Kind != KindFloat {
		return 0, false
	}
	return v.f32, true
}

func (v Value) Float64() (float64, bool) {
	if v.Kind != KindDouble {
		return 0, false
	}
	return v.f64, true
}

// Bytes returns the raw column bytes and their collation id; valid for
// KindBytes. Per §1 the library never interprets the bytes beyond tagging
// them with a collation id — callers decide how to decode non-UTF-8 text.
func (v Value) Bytes() ([]byte, uint16, bool) {
	if v.Kind != KindBytes {
		return nil, 0, false
	}
	return v.bytes, v.collation, true
}

func (v Value) DateTime() (DateTime, bool) {
	if v.Kind != KindDateTime {
		return DateTime{}, false
	}
	return v.dt, true
}

func (v Value) Duration() (Duration, bool) {
	if v.Kind != KindDuration {
		return Duration{}, false
	}
	return v.dur, true
}

func (v Value) Decimal() (Decimal, bool) {
	if v.Kind != KindDecimal {
		return "", false
	}
	return v.dec, true
}

// decodeErrorAt builds a DecodeError for column i of type t.
func decodeErrorAt(i int, t FieldType, msg string) error {
	return &DecodeError{Column: i, Type: t, Msg: msg}
}

func (v Value) String() string {
	switch v.Kind {
	case KindNull:
		return "<nil>"
	case KindInt:
		return fmt.Sprintf("%d", v.i64)
	case KindUint:
		return fmt.Sprintf("%d", v.u64)
	case KindFloat:
		return fmt.Sprintf("%g", v.f32)
	case KindDouble:
		return fmt.Sprintf("%g", v.f64)
	case KindBytes:
		return string(v.bytes)
	case KindDateTime:
		return fmt.Sprintf("%04d-%02d-%02d %02d:%02d:%02d.%06d",
			v.dt.Year, v.dt.Month, v.dt.Day, v.dt.Hour, v.dt.Minute, v.dt.Second, v.dt.Microsecond)
	case KindDuration:
		sign := ""
		if v.dur.Negative {
			sign = "-"
		}
		return fmt.Sprintf("%s%dd %02d:%02d:%02d.%06d",
			sign, v.dur.Days, v.dur.Hour, v.dur.Minute, v.dur.Second, v.dur.Microsecond)
	case KindDecimal:
		return string(v.dec)
	default:
		return "<invalid>"
	}
}
