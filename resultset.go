package mysql

// OKPacket is the server's generic success acknowledgement (§4.4), also
// used — under CLIENT_DEPRECATE_EOF — in place of the legacy EOF packet
// that used to terminate column/row sequences.
type OKPacket struct {
	AffectedRows uint64
	LastInsertID uint64
	StatusFlags  StatusFlag
	WarningCount uint16
	Info         string
}

// isOKPacket reports whether data should be parsed as an OK packet given
// the negotiated capabilities: 0x00 always is; 0xFE is, only under
// CLIENT_DEPRECATE_EOF and only when short enough to not be a real result
// row (§4.4).
func isOKPacket(data []byte, capabilities ClientFlag) bool {
	if len(data) == 0 {
		return false
	}
	if data[0] == iOK {
		return true
	}
	if data[0] == iEOF && capabilities&ClientDeprecateEOF != 0 && len(data) < 9 {
		return true
	}
	return false
}

func parseOKPacket(data []byte, capabilities ClientFlag) (*OKPacket, error) {
	if len(data) == 0 {
		return nil, ErrMalformedPacket
	}
	pos := 1

	affected, _, n, err := readLengthEncodedInteger(data[pos:])
	if err != nil {
		return nil, ErrMalformedPacket
	}
	pos += n

	insertID, _, n, err := readLengthEncodedInteger(data[pos:])
	if err != nil {
		return nil, ErrMalformedPacket
	}
	pos += n

	ok := &OKPacket{AffectedRows: affected, LastInsertID: insertID}

	if capabilities&ClientProtocol41 != 0 {
		if len(data) < pos+4 {
			return nil, ErrMalformedPacket
		}
		ok.StatusFlags = StatusFlag(readUint16(data[pos:]))
		pos += 2
		ok.WarningCount = readUint16(data[pos:])
		pos += 2
	} else if capabilities&ClientTransactions != 0 {
		if len(data) < pos+2 {
			return nil, ErrMalformedPacket
		}
		ok.StatusFlags = StatusFlag(readUint16(data[pos:]))
		pos += 2
	}

	if pos < len(data) {
		ok.Info = string(data[pos:])
	}
	return ok, nil
}

// isEOFPacket reports whether data is a legacy (non-DEPRECATE_EOF) EOF
// packet terminating a column or row sequence (§4.4).
func isEOFPacket(data []byte, capabilities ClientFlag) bool {
	return len(data) > 0 && data[0] == iEOF && len(data) < 9 && capabilities&ClientDeprecateEOF == 0
}

// EOFPacket is the legacy end-of-sequence marker.
type EOFPacket struct {
	Warnings    uint16
	StatusFlags StatusFlag
}

func parseEOFPacket(data []byte) (*EOFPacket, error) {
	if len(data) < 1 {
		return nil, ErrMalformedPacket
	}
	e := &EOFPacket{}
	if len(data) >= 5 {
		e.Warnings = readUint16(data[1:3])
		e.StatusFlags = StatusFlag(readUint16(data[3:5]))
	}
	return e, nil
}

// parseErrPacket decodes an ERR packet (leading byte 0xFF) into a
// *ServerError (§4.4).
func parseErrPacket(data []byte, capabilities ClientFlag) (*ServerError, error) {
	if len(data) < 3 || data[0] != iERR {
		return nil, ErrMalformedPacket
	}
	se := &ServerError{Code: readUint16(data[1:3])}
	pos := 3

	if capabilities&ClientProtocol41 != 0 && len(data) >= pos+6 && data[pos] == '#' {
		se.SQLState = string(data[pos+1 : pos+6])
		pos += 6
	}
	se.Message = string(data[pos:])
	return se, nil
}

// ColumnDefinition41 is the per-column metadata of a result set (§3, §4.4).
type ColumnDefinition struct {
	Catalog      string
	Schema       string
	Table        string
	OrgTable     string
	Name         string
	OrgName      string
	CharsetID    uint16
	ColumnLength uint32
	Type         FieldType
	Flags        FieldFlag
	Decimals     byte
}

func parseColumnDefinition41(data []byte) (*ColumnDefinition, error) {
	col := &ColumnDefinition{}
	pos := 0

	readStr := func() (string, error) {
		s, isNull, n, err := readLengthEncodedString(data[pos:])
		if err != nil || isNull {
			return "", ErrMalformedPacket
		}
		pos += n
		return string(s), nil
	}

	var err error
	if col.Catalog, err = readStr(); err != nil {
		return nil, err
	}
	if col.Schema, err = readStr(); err != nil {
		return nil, err
	}
	if col.Table, err = readStr(); err != nil {
		return nil, err
	}
	if col.OrgTable, err = readStr(); err != nil {
		return nil, err
	}
	if col.Name, err = readStr(); err != nil {
		return nil, err
	}
	if col.OrgName, err = readStr(); err != nil {
		return nil, err
	}

	// lenenc-int "length of fixed-length fields", always 0x0C.
	_, _, n, err := readLengthEncodedInteger(data[pos:])
	if err != nil {
		return nil, ErrMalformedPacket
	}
	pos += n

	if len(data) < pos+10 {
		return nil, ErrMalformedPacket
	}
	col.CharsetID = readUint16(data[pos:])
	pos += 2
	col.ColumnLength = readUint32(data[pos:])
	pos += 4
	col.Type = FieldType(data[pos])
	pos++
	col.Flags = FieldFlag(readUint16(data[pos:]))
	pos += 2
	col.Decimals = data[pos]

	return col, nil
}
