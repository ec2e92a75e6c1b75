package mysql

// typeName maps a FieldType to the SQL type name a caller would expect to
// see, mirroring the teacher's fields.go typeDatabaseName table.
var typeName = map[FieldType]string{
	FieldTypeDecimal:    "DECIMAL",
	FieldTypeTiny:       "TINYINT",
	FieldTypeShort:      "SMALLINT",
	FieldTypeLong:       "INT",
	FieldTypeFloat:      "FLOAT",
	FieldTypeDouble:     "DOUBLE",
	FieldTypeNULL:       "NULL",
	FieldTypeTimestamp:  "TIMESTAMP",
	FieldTypeLongLong:   "BIGINT",
	FieldTypeInt24:      "MEDIUMINT",
	FieldTypeDate:       "DATE",
	FieldTypeTime:       "TIME",
	FieldTypeDateTime:   "DATETIME",
	FieldTypeYear:       "YEAR",
	FieldTypeNewDate:    "DATE",
	FieldTypeVarChar:    "VARCHAR",
	FieldTypeBit:        "BIT",
	FieldTypeJSON:       "JSON",
	FieldTypeNewDecimal: "DECIMAL",
	FieldTypeEnum:       "ENUM",
	FieldTypeSet:        "SET",
	FieldTypeTinyBLOB:   "TINYBLOB",
	FieldTypeMediumBLOB: "MEDIUMBLOB",
	FieldTypeLongBLOB:   "LONGBLOB",
	FieldTypeBLOB:       "BLOB",
	FieldTypeVarString:  "VARSTRING",
	FieldTypeString:     "STRING",
	FieldTypeGeometry:   "GEOMETRY",
}

// TypeName returns the SQL type name for t, or "" if unknown.
func TypeName(t FieldType) string { return typeName[t] }

func isUnsigned(col *ColumnDefinition) bool { return col.Flags&FlagUnsigned != 0 }

// isNumericType reports whether t is one of the fixed-width numeric column
// types whose binary protocol encoding is a little-endian integer or IEEE
// float (as opposed to the lenenc-string family).
func isNumericType(t FieldType) bool {
	switch t {
	case FieldTypeTiny, FieldTypeShort, FieldTypeYear, FieldTypeInt24, FieldTypeLong,
		FieldTypeLongLong, FieldTypeFloat, FieldTypeDouble:
		return true
	default:
		return false
	}
}

// isStringFamily reports whether non-null values of t are encoded as a
// lenenc-string in both the textual and binary row protocols (§4.5).
func isStringFamily(t FieldType) bool {
	switch t {
	case FieldTypeDecimal, FieldTypeNewDecimal, FieldTypeVarChar,
		FieldTypeBit, FieldTypeEnum, FieldTypeSet,
		FieldTypeTinyBLOB, FieldTypeMediumBLOB, FieldTypeLongBLOB,
		FieldTypeBLOB, FieldTypeVarString, FieldTypeString,
		FieldTypeGeometry, FieldTypeJSON:
		return true
	default:
		return false
	}
}
