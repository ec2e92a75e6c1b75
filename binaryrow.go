package mysql

import "math"

// decodeBinaryRow decodes one COM_STMT_EXECUTE result row (§4.5): a leading
// 0x00, a NULL bitmap of ceil((len(columns)+2)/8) bytes offset by 2 bits,
// then the non-null column values in their per-type binary encoding.
func decodeBinaryRow(data []byte, columns []*ColumnDefinition) ([]Value, error) {
	if len(data) < 1 || data[0] != iOK {
		return nil, ErrMalformedPacket
	}

	bitmapLen := (len(columns) + 2 + 7) / 8
	if len(data) < 1+bitmapLen {
		return nil, ErrMalformedPacket
	}
	bitmap := nullBitmap(data[1 : 1+bitmapLen])
	pos := 1 + bitmapLen

	values := make([]Value, len(columns))
	for i, col := range columns {
		if bitmap.isNull(i, 2) {
			values[i] = nullValue()
			continue
		}

		v, n, err := decodeBinaryValue(data[pos:], col)
		if err != nil {
			return nil, decodeErrorAt(i, col.Type, err.Error())
		}
		values[i] = v
		pos += n
	}
	return values, nil
}

// decodeBinaryValue decodes one non-null binary column value per the table
// in §4.5, returning the value and the number of bytes it consumed.
func decodeBinaryValue(data []byte, col *ColumnDefinition) (Value, int, error) {
	unsigned := isUnsigned(col)

	switch col.Type {
	case FieldTypeNULL:
		return nullValue(), 0, nil

	case FieldTypeTiny:
		if len(data) < 1 {
			return Value{}, 0, errShortBinaryValue
		}
		if unsigned {
			return uintValue(uint64(data[0])), 1, nil
		}
		return intValue(int64(int8(data[0]))), 1, nil

	case FieldTypeShort, FieldTypeYear:
		if len(data) < 2 {
			return Value{}, 0, errShortBinaryValue
		}
		u := readUint16(data)
		if unsigned {
			return uintValue(uint64(u)), 2, nil
		}
		return intValue(int64(int16(u))), 2, nil

	case FieldTypeInt24, FieldTypeLong:
		if len(data) < 4 {
			return Value{}, 0, errShortBinaryValue
		}
		u := readUint32(data)
		if unsigned {
			return uintValue(uint64(u)), 4, nil
		}
		return intValue(int64(int32(u))), 4, nil

	case FieldTypeLongLong:
		if len(data) < 8 {
			return Value{}, 0, errShortBinaryValue
		}
		u := readUint64(data)
		if unsigned {
			return uintValue(u), 8, nil
		}
		return intValue(int64(u)), 8, nil

	case FieldTypeFloat:
		if len(data) < 4 {
			return Value{}, 0, errShortBinaryValue
		}
		return floatValue(math.Float32frombits(readUint32(data))), 4, nil

	case FieldTypeDouble:
		if len(data) < 8 {
			return Value{}, 0, errShortBinaryValue
		}
		return doubleValue(math.Float64frombits(readUint64(data))), 8, nil

	case FieldTypeDate, FieldTypeNewDate:
		dt, n, err := decodeBinaryDate(data)
		if err != nil {
			return Value{}, 0, err
		}
		return dateTimeValue(dt), n, nil

	case FieldTypeDateTime, FieldTypeTimestamp:
		dt, n, err := decodeBinaryDateTime(data)
		if err != nil {
			return Value{}, 0, err
		}
		return dateTimeValue(dt), n, nil

	case FieldTypeTime:
		d, n, err := decodeBinaryTime(data)
		if err != nil {
			return Value{}, 0, err
		}
		return durationValue(d), n, nil

	case FieldTypeNewDecimal, FieldTypeDecimal:
		raw, _, n, err := readLengthEncodedString(data)
		if err != nil {
			return Value{}, 0, err
		}
		return decimalValue(Decimal(raw)), n, nil

	default:
		raw, _, n, err := readLengthEncodedString(data)
		if err != nil {
			return Value{}, 0, err
		}
		return bytesValue(raw, col.CharsetID), n, nil
	}
}

func decodeBinaryDate(data []byte) (DateTime, int, error) {
	if len(data) < 1 {
		return DateTime{}, 0, errShortBinaryValue
	}
	length := int(data[0])
	if length == 0 {
		return DateTime{}, 1, nil
	}
	if length != 4 || len(data) < 5 {
		return DateTime{}, 0, errShortBinaryValue
	}
	return DateTime{
		Year:  readUint16(data[1:3]),
		Month: data[3],
		Day:   data[4],
	}, 5, nil
}

func decodeBinaryDateTime(data []byte) (DateTime, int, error) {
	if len(data) < 1 {
		return DateTime{}, 0, errShortBinaryValue
	}
	length := int(data[0])
	if length == 0 {
		return DateTime{}, 1, nil
	}
	if len(data) < 1+length {
		return DateTime{}, 0, errShortBinaryValue
	}
	dt := DateTime{
		Year:  readUint16(data[1:3]),
		Month: data[3],
		Day:   data[4],
	}
	switch length {
	case 4:
		return dt, 5, nil
	case 7, 11:
		dt.Hour, dt.Minute, dt.Second = data[5], data[6], data[7]
		if length == 11 {
			dt.Microsecond = readUint32(data[8:12])
			return dt, 12, nil
		}
		return dt, 8, nil
	default:
		return DateTime{}, 0, errShortBinaryValue
	}
}

func decodeBinaryTime(data []byte) (Duration, int, error) {
	if len(data) < 1 {
		return Duration{}, 0, errShortBinaryValue
	}
	length := int(data[0])
	if length == 0 {
		return Duration{}, 1, nil
	}
	if len(data) < 1+length {
		return Duration{}, 0, errShortBinaryValue
	}
	d := Duration{
		Negative: data[1] != 0,
		Days:     readUint32(data[2:6]),
		Hour:     data[6],
		Minute:   data[7],
		Second:   data[8],
	}
	switch length {
	case 8:
		return d, 9, nil
	case 12:
		d.Microsecond = readUint32(data[9:13])
		return d, 13, nil
	default:
		return Duration{}, 0, errShortBinaryValue
	}
}

var errShortBinaryValue = &ProtocolError{Msg: "binary row value truncated"}
