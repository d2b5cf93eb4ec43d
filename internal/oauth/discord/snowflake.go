package discord

import (
	"math/big"
	"time"
)

// EpochMs is the first millisecond of 2015, Discord's snowflake epoch.
const EpochMs int64 = 1420070400000

// snowflakeTimestampShift drops worker, process and increment bits.
const snowflakeTimestampShift = 22

var epochBig = big.NewInt(EpochMs)

// DeriveCreationTime decodes the creation timestamp embedded in a snowflake id:
// floor(id / 2^22) + EpochMs milliseconds. big.Int keeps ids wider than 64 bits exact.
func DeriveCreationTime(id string) (time.Time, error) {
	if !isDecimal(id) {
		return time.Time{}, &DecodeError{ID: id, Reason: "not a non-negative integer"}
	}
	n, ok := new(big.Int).SetString(id, 10)
	if !ok {
		return time.Time{}, &DecodeError{ID: id, Reason: "not a non-negative integer"}
	}
	n.Rsh(n, snowflakeTimestampShift)
	n.Add(n, epochBig)
	if !n.IsInt64() {
		return time.Time{}, &DecodeError{ID: id, Reason: "timestamp out of range"}
	}
	return time.UnixMilli(n.Int64()).UTC(), nil
}

func isDecimal(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
