package mysql

import "math"

// Param is one caller-supplied COM_STMT_EXECUTE parameter. Unlike a decoded
// Value, a Param also pins the wire FieldType it should be sent as — the
// binary protocol requires the type tag up front (§4.5), and a bare int
// doesn't say whether the caller meant a TINY, LONG or LONGLONG.
type Param struct {
	Type     FieldType
	Unsigned bool
	null     bool
	i64      int64
	f32      float32
	f64      float64
	bytes    []byte
	dt       DateTime
	dur      Duration
}

func ParamNull() Param { return Param{Type: FieldTypeNULL, null: true} }

func ParamInt8(v int8) Param   { return Param{Type: FieldTypeTiny, i64: int64(v)} }
func ParamInt16(v int16) Param { return Param{Type: FieldTypeShort, i64: int64(v)} }
func ParamInt32(v int32) Param { return Param{Type: FieldTypeLong, i64: int64(v)} }
func ParamInt64(v int64) Param { return Param{Type: FieldTypeLongLong, i64: v} }

func ParamUint8(v uint8) Param {
	return Param{Type: FieldTypeTiny, Unsigned: true, i64: int64(v)}
}
func ParamUint16(v uint16) Param {
	return Param{Type: FieldTypeShort, Unsigned: true, i64: int64(v)}
}
func ParamUint32(v uint32) Param {
	return Param{Type: FieldTypeLong, Unsigned: true, i64: int64(v)}
}
func ParamUint64(v uint64) Param {
	return Param{Type: FieldTypeLongLong, Unsigned: true, i64: int64(v)}
}

func ParamFloat32(v float32) Param { return Param{Type: FieldTypeFloat, f32: v} }
func ParamFloat64(v float64) Param { return Param{Type: FieldTypeDouble, f64: v} }

func ParamBytes(b []byte) Param  { return Param{Type: FieldTypeVarString, bytes: b} }
func ParamString(s string) Param { return Param{Type: FieldTypeVarString, bytes: []byte(s)} }
func ParamDecimal(d Decimal) Param {
	return Param{Type: FieldTypeNewDecimal, bytes: []byte(d)}
}

func ParamDate(dt DateTime) Param     { return Param{Type: FieldTypeDate, dt: dt} }
func ParamDateTime(dt DateTime) Param { return Param{Type: FieldTypeDateTime, dt: dt} }
func ParamTime(d Duration) Param      { return Param{Type: FieldTypeTime, dur: d} }

// encodeBinaryParams builds the four trailing sections of a COM_STMT_EXECUTE
// request (§4.5): the NULL bitmap (ceil(P/8) bytes, no reserved offset —
// unlike a response row's bitmap), the "new params bound" flag, the
// [type,flag] pairs, and the parameter values themselves.
func encodeBinaryParams(dst []byte, params []Param) []byte {
	if len(params) == 0 {
		return dst
	}

	bitmap := newNullBitmap(len(params), 0)
	for i, p := range params {
		if p.null {
			bitmap.setNull(i, 0)
		}
	}
	dst = append(dst, bitmap...)

	dst = append(dst, 1) // new_params_bound_flag

	for _, p := range params {
		flag := byte(0)
		if p.Unsigned {
			flag = 0x80
		}
		dst = append(dst, byte(p.Type), flag)
	}

	for _, p := range params {
		if p.null {
			continue
		}
		dst = appendParamValue(dst, p)
	}
	return dst
}

func appendParamValue(dst []byte, p Param) []byte {
	switch p.Type {
	case FieldTypeTiny:
		return append(dst, byte(p.i64))

	case FieldTypeShort:
		return appendUint16(dst, uint16(p.i64))

	case FieldTypeLong:
		return appendUint32(dst, uint32(p.i64))

	case FieldTypeLongLong:
		return appendUint64(dst, uint64(p.i64))

	case FieldTypeFloat:
		return appendUint32(dst, math.Float32bits(p.f32))

	case FieldTypeDouble:
		return appendUint64(dst, math.Float64bits(p.f64))

	case FieldTypeDate:
		return appendBinaryDate(dst, p.dt)

	case FieldTypeDateTime, FieldTypeTimestamp:
		return appendBinaryDateTime(dst, p.dt)

	case FieldTypeTime:
		return appendBinaryTime(dst, p.dur)

	default:
		return appendLengthEncodedString(dst, p.bytes)
	}
}

func appendBinaryDate(dst []byte, dt DateTime) []byte {
	if dt.Year == 0 && dt.Month == 0 && dt.Day == 0 {
		return append(dst, 0)
	}
	dst = append(dst, 4)
	dst = appendUint16(dst, dt.Year)
	return append(dst, dt.Month, dt.Day)
}

func appendBinaryDateTime(dst []byte, dt DateTime) []byte {
	switch {
	case dt.Microsecond != 0:
		dst = append(dst, 11)
		dst = appendUint16(dst, dt.Year)
		dst = append(dst, dt.Month, dt.Day, dt.Hour, dt.Minute, dt.Second)
		return appendUint32(dst, dt.Microsecond)
	case dt.Hour != 0 || dt.Minute != 0 || dt.Second != 0:
		dst = append(dst, 7)
		dst = appendUint16(dst, dt.Year)
		return append(dst, dt.Month, dt.Day, dt.Hour, dt.Minute, dt.Second)
	case dt.Year != 0 || dt.Month != 0 || dt.Day != 0:
		dst = append(dst, 4)
		dst = appendUint16(dst, dt.Year)
		return append(dst, dt.Month, dt.Day)
	default:
		return append(dst, 0)
	}
}

func appendBinaryTime(dst []byte, d Duration) []byte {
	if !d.Negative && d.Days == 0 && d.Hour == 0 && d.Minute == 0 && d.Second == 0 && d.Microsecond == 0 {
		return append(dst, 0)
	}
	sign := byte(0)
	if d.Negative {
		sign = 1
	}
	if d.Microsecond != 0 {
		dst = append(dst, 12, sign)
		dst = appendUint32(dst, d.Days)
		dst = append(dst, d.Hour, d.Minute, d.Second)
		return appendUint32(dst, d.Microsecond)
	}
	dst = append(dst, 8, sign)
	dst = appendUint32(dst, d.Days)
	return append(dst, d.Hour, d.Minute, d.Second)
}
