package utils

import (
	"strconv"

	"github.com/google/uuid"
)

// IsValidSessionID accepts only canonical UUIDv4 strings in lowercase, so one
// id has exactly one stored spelling.
func IsValidSessionID(s string) bool {
	if len(s) != 36 {
		return false
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return false
	}
	return id.Version() == 4 && id.Variant() == uuid.RFC4122 && id.String() == s
}

// IsValidRecordID accepts the shape of an auto-increment primary key:
// a positive decimal integer without sign or leading zeros.
func IsValidRecordID(s string) bool {
	_, ok := ParseRecordID(s)
	return ok
}

// ParseRecordID converts a path or body value into a record key.
func ParseRecordID(s string) (uint, bool) {
	if s == "" || len(s) > 20 || s[0] < '1' || s[0] > '9' {
		return 0, false
	}
	for i := 1; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return 0, false
		}
	}
	n, err := strconv.ParseUint(s, 10, strconv.IntSize)
	if err != nil {
		return 0, false
	}
	return uint(n), true
}
