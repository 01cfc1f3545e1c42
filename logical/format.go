package logical

import (
	"encoding/binary"
	"math"
	"strconv"
	"time"

	"github.com/vegasq/pqview/metadata"
)

const (
	secondsPerDay = 86400
	nanosPerDay   = secondsPerDay * 1_000_000_000

	// julianUnixEpoch is the Julian day number of 1970-01-01.
	julianUnixEpoch = 2440588
)

// FormatDate renders days since the Unix epoch as YYYY-MM-DD.
func FormatDate(days int64) string {
	return time.Unix(days*secondsPerDay, 0).UTC().Format(time.DateOnly)
}

// FormatTimestamp renders v units since the Unix epoch as
// "YYYY-MM-DD HH:MM:SS" followed by a fraction with as many digits as the
// unit has: none for seconds, 3 for millis, 6 for micros, 9 for nanos.
// Instants before the epoch round toward negative infinity.
func FormatTimestamp(unit metadata.TimeUnit, v int64) string {
	per := unit.PerSecond()
	if per == 0 {
		return strconv.FormatInt(v, 10)
	}
	sec, frac := floorDivMod(v, per)
	b := time.Unix(sec, 0).UTC().AppendFormat(make([]byte, 0, 32), time.DateTime)
	return string(appendFraction(b, unit, frac))
}

// FormatTime renders v units since midnight as HH:MM:SS with the same
// fraction rules as FormatTimestamp. Values outside one day wrap.
func FormatTime(unit metadata.TimeUnit, v int64) string {
	per := unit.PerSecond()
	if per == 0 {
		return strconv.FormatInt(v, 10)
	}
	sec, frac := floorDivMod(v, per)
	_, sec = floorDivMod(sec, secondsPerDay)

	b := make([]byte, 0, 18)
	b = appendTwo(b, sec/3600)
	b = append(b, ':')
	b = appendTwo(b, sec/60%60)
	b = append(b, ':')
	b = appendTwo(b, sec%60)
	return string(appendFraction(b, unit, frac))
}

func floorDivMod(v, d int64) (int64, int64) {
	q, r := v/d, v%d
	if r < 0 {
		q--
		r += d
	}
	return q, r
}

func appendTwo(b []byte, v int64) []byte {
	return append(b, byte('0'+v/10), byte('0'+v%10))
}

func fractionDigits(unit metadata.TimeUnit) int {
	switch unit {
	case metadata.Millis:
		return 3
	case metadata.Micros:
		return 6
	case metadata.Nanos:
		return 9
	default:
		return 0
	}
}

func appendFraction(b []byte, unit metadata.TimeUnit, frac int64) []byte {
	digits := fractionDigits(unit)
	if digits == 0 {
		return b
	}
	b = append(b, '.')
	s := strconv.FormatInt(frac, 10)
	for i := len(s); i < digits; i++ {
		b = append(b, '0')
	}
	return append(b, s...)
}

// Int96Nanos converts a legacy INT96 timestamp (8 bytes of nanoseconds of
// the day, then 4 bytes of Julian day, both little-endian) to nanoseconds
// since the Unix epoch. ok is false when the instant does not fit in int64.
func Int96Nanos(b []byte) (nanos int64, ok bool) {
	if len(b) != 12 {
		return 0, false
	}
	ofDay := binary.LittleEndian.Uint64(b[:8])
	days := int64(binary.LittleEndian.Uint32(b[8:])) - julianUnixEpoch
	if ofDay > math.MaxInt64 {
		return 0, false
	}
	if days > math.MaxInt64/nanosPerDay || days < math.MinInt64/nanosPerDay {
		return 0, false
	}
	base := days * nanosPerDay
	if base > 0 && int64(ofDay) > math.MaxInt64-base {
		return 0, false
	}
	return base + int64(ofDay), true
}

// Float16 decodes an IEEE 754 half-precision value stored little-endian.
func Float16(b []byte) float32 {
	h := binary.LittleEndian.Uint16(b)
	sign := uint32(h>>15) << 31
	exp := uint32(h>>10) & 0x1f
	mant := uint32(h) & 0x3ff

	switch {
	case exp == 0 && mant == 0:
		return math.Float32frombits(sign)
	case exp == 0:
		// subnormal: mant * 2^-24
		f := float32(mant) / (1 << 24)
		if sign != 0 {
			return -f
		}
		return f
	case exp == 0x1f:
		return math.Float32frombits(sign | 0x7f800000 | mant<<13)
	default:
		return math.Float32frombits(sign | (exp+127-15)<<23 | mant<<13)
	}
}
