package mysql

// decodeTextRow decodes one COM_QUERY result row: a sequence of
// len(columns) lenenc-strings, with the lenenc-NULL sentinel (0xFB) marking
// a SQL NULL (§4.5). Unlike the binary protocol, the textual wire
// representation is always a byte string regardless of column type; the
// per-column FieldType only determines how decodeTextRow should re-tag that
// string as a richer Value (numeric, date/time, decimal, or opaque bytes)
// so callers get the same Value shape from either row format.
func decodeTextRow(data []byte, columns []*ColumnDefinition) ([]Value, error) {
	values := make([]Value, len(columns))
	pos := 0

	for i, col := range columns {
		raw, isNull, n, err := readLengthEncodedString(data[pos:])
		pos += n
		if err != nil {
			return nil, decodeErrorAt(i, col.Type, err.Error())
		}
		if isNull {
			values[i] = nullValue()
			continue
		}

		v, err := retagTextValue(raw, col)
		if err != nil {
			if de, ok := err.(*DecodeError); ok {
				de.Column = i
			}
			return nil, err
		}
		values[i] = v
	}
	return values, nil
}

// retagTextValue converts the raw textual bytes of one column into the
// same tagged Value a binary-row decode would have produced, so a caller
// need not care whether a result came from COM_QUERY or COM_STMT_EXECUTE.
func retagTextValue(raw []byte, col *ColumnDefinition) (Value, error) {
	switch {
	case col.Type == FieldTypeNULL:
		return nullValue(), nil

	case isNumericType(col.Type) && col.Type != FieldTypeFloat && col.Type != FieldTypeDouble:
		n, ok := parseTextInteger(raw)
		if !ok {
			return Value{}, decodeErrorAt(0, col.Type, "malformed integer text")
		}
		if isUnsigned(col) {
			return uintValue(uint64(n)), nil
		}
		return intValue(n), nil

	case col.Type == FieldTypeFloat:
		f, ok := parseTextFloat(raw)
		if !ok {
			return Value{}, decodeErrorAt(0, col.Type, "malformed float text")
		}
		return floatValue(float32(f)), nil

	case col.Type == FieldTypeDouble:
		f, ok := parseTextFloat(raw)
		if !ok {
			return Value{}, decodeErrorAt(0, col.Type, "malformed double text")
		}
		return doubleValue(f), nil

	case col.Type == FieldTypeDecimal || col.Type == FieldTypeNewDecimal:
		return decimalValue(Decimal(raw)), nil

	case col.Type == FieldTypeDate || col.Type == FieldTypeNewDate ||
		col.Type == FieldTypeDateTime || col.Type == FieldTypeTimestamp:
		dt, ok := parseTextDateTime(raw)
		if !ok {
			// Text that does not parse as a date is surfaced as opaque
			// bytes rather than failing the row ("0000-00-00" parses to a
			// zero DateTime).
			return bytesValue(raw, col.CharsetID), nil
		}
		return dateTimeValue(dt), nil

	case col.Type == FieldTypeTime:
		d, ok := parseTextDuration(raw)
		if !ok {
			return bytesValue(raw, col.CharsetID), nil
		}
		return durationValue(d), nil

	default:
		return bytesValue(raw, col.CharsetID), nil
	}
}

func parseTextInteger(raw []byte) (int64, bool) {
	var neg bool
	i := 0
	if len(raw) > 0 && (raw[0] == '-' || raw[0] == '+') {
		neg = raw[0] == '-'
		i = 1
	}
	if i == len(raw) {
		return 0, false
	}
	var n uint64
	for ; i < len(raw); i++ {
		c := raw[i]
		if c < '0' || c > '9' {
			return 0, false
		}
		n = n*10 + uint64(c-'0')
	}
	if neg {
		return -int64(n), true
	}
	return int64(n), true
}

func parseTextFloat(raw []byte) (float64, bool) {
	// Lenenc-string floats are plain ASCII decimal/scientific literals;
	// parse by hand to avoid importing strconv just for this call site
	// pulling in locale-independent parsing guarantees we already need.
	var sign float64 = 1
	i := 0
	if len(raw) > 0 && (raw[0] == '-' || raw[0] == '+') {
		if raw[0] == '-' {
			sign = -1
		}
		i = 1
	}
	var mantissa float64
	seenDigit := false
	for ; i < len(raw) && raw[i] >= '0' && raw[i] <= '9'; i++ {
		mantissa = mantissa*10 + float64(raw[i]-'0')
		seenDigit = true
	}
	if i < len(raw) && raw[i] == '.' {
		i++
		frac := 0.1
		for ; i < len(raw) && raw[i] >= '0' && raw[i] <= '9'; i++ {
			mantissa += float64(raw[i]-'0') * frac
			frac /= 10
			seenDigit = true
		}
	}
	if !seenDigit {
		return 0, false
	}
	exp := 0
	expSign := 1
	if i < len(raw) && (raw[i] == 'e' || raw[i] == 'E') {
		i++
		if i < len(raw) && (raw[i] == '-' || raw[i] == '+') {
			if raw[i] == '-' {
				expSign = -1
			}
			i++
		}
		for ; i < len(raw) && raw[i] >= '0' && raw[i] <= '9'; i++ {
			exp = exp*10 + int(raw[i]-'0')
		}
	}
	if i != len(raw) {
		return 0, false
	}
	result := sign * mantissa
	for ; exp > 0; exp-- {
		if expSign > 0 {
			result *= 10
		} else {
			result /= 10
		}
	}
	return result, true
}

func parseTextDateTime(raw []byte) (DateTime, bool) {
	// "YYYY-MM-DD[ HH:MM:SS[.ffffff]]"
	if len(raw) < 10 {
		return DateTime{}, false
	}
	var dt DateTime
	n, ok := parseDigits(raw[0:4])
	if !ok {
		return DateTime{}, false
	}
	dt.Year = uint16(n)
	m, ok := parseDigits(raw[5:7])
	if !ok {
		return DateTime{}, false
	}
	dt.Month = uint8(m)
	d, ok := parseDigits(raw[8:10])
	if !ok {
		return DateTime{}, false
	}
	dt.Day = uint8(d)

	if len(raw) >= 19 {
		hh, ok1 := parseDigits(raw[11:13])
		mm, ok2 := parseDigits(raw[14:16])
		ss, ok3 := parseDigits(raw[17:19])
		if !ok1 || !ok2 || !ok3 {
			return DateTime{}, false
		}
		dt.Hour, dt.Minute, dt.Second = uint8(hh), uint8(mm), uint8(ss)
		if len(raw) > 20 && raw[19] == '.' {
			micro, ok := parseDigits(raw[20:])
			if ok {
				dt.Microsecond = uint32(micro)
			}
		}
	}
	return dt, true
}

func parseTextDuration(raw []byte) (Duration, bool) {
	var d Duration
	i := 0
	if len(raw) > 0 && raw[0] == '-' {
		d.Negative = true
		i = 1
	}
	hh, n, ok := parseDigitsUntil(raw[i:], ':')
	if !ok {
		return Duration{}, false
	}
	i += n + 1
	mm, n, ok := parseDigitsUntil(raw[i:], ':')
	if !ok {
		return Duration{}, false
	}
	i += n + 1
	d.Hour, d.Minute = uint8(hh%24), uint8(mm)
	d.Days = uint32(hh / 24)

	rest := raw[i:]
	dotIdx := -1
	for j, c := range rest {
		if c == '.' {
			dotIdx = j
			break
		}
	}
	if dotIdx < 0 {
		ss, ok := parseDigits(rest)
		if !ok {
			return Duration{}, false
		}
		d.Second = uint8(ss)
	} else {
		ss, ok := parseDigits(rest[:dotIdx])
		if !ok {
			return Duration{}, false
		}
		d.Second = uint8(ss)
		micro, ok := parseDigits(rest[dotIdx+1:])
		if ok {
			d.Microsecond = uint32(micro)
		}
	}
	return d, true
}

func parseDigits(raw []byte) (int, bool) {
	if len(raw) == 0 {
		return 0, false
	}
	n := 0
	for _, c := range raw {
		if c < '0' || c > '9' {
			return 0, false
		}
		n = n*10 + int(c-'0')
	}
	return n, true
}

func parseDigitsUntil(raw []byte, delim byte) (int, int, bool) {
	idx := -1
	for i, c := range raw {
		if c == delim {
			idx = i
			break
		}
	}
	if idx < 0 {
		return 0, 0, false
	}
	n, ok := parseDigits(raw[:idx])
	return n, idx, ok
}
