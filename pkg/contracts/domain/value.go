package domain

import (
	"strconv"
	"strings"
	"time"
)

// Kind identifies which variant a Value holds.
type Kind uint8

const (
	KindMissing Kind = iota
	KindString
	KindNumber
	KindDate
	KindTime
)

// String returns the kind name
func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindNumber:
		return "number"
	case KindDate:
		return "date"
	case KindTime:
		return "time"
	default:
		return "missing"
	}
}

// Value is a single table cell. The zero value is Missing.
// A missing cell is distinct from zero and from the empty string.
type Value struct {
	kind Kind
	str  string
	num  float64
	t    time.Time
}

// MissingValue returns the missing sentinel
func MissingValue() Value { return Value{} }

// StringValue wraps a string cell
func StringValue(s string) Value { return Value{kind: KindString, str: s} }

// NumberValue wraps a numeric cell
func NumberValue(f float64) Value { return Value{kind: KindNumber, num: f} }

// DateValue wraps a calendar date (optionally carrying a time of day)
func DateValue(t time.Time) Value { return Value{kind: KindDate, t: t} }

// TimeValue wraps a time of day. Only the clock part of t is kept.
func TimeValue(t time.Time) Value {
	return Value{kind: KindTime, t: time.Date(0, 1, 1, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), time.UTC)}
}

// Kind returns the variant held by v
func (v Value) Kind() Kind { return v.kind }

// IsMissing reports whether v is the missing sentinel
func (v Value) IsMissing() bool { return v.kind == KindMissing }

// Str returns the string payload
func (v Value) Str() (string, bool) { return v.str, v.kind == KindString }

// Num returns the numeric payload
func (v Value) Num() (float64, bool) { return v.num, v.kind == KindNumber }

// Date returns the date payload
func (v Value) Date() (time.Time, bool) { return v.t, v.kind == KindDate }

// Clock returns the time-of-day payload
func (v Value) Clock() (time.Time, bool) { return v.t, v.kind == KindTime }

// Equal reports whether two cells hold the same variant and payload.
// Two missing cells are equal.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindString:
		return v.str == o.str
	case KindNumber:
		return v.num == o.num
	case KindDate, KindTime:
		return v.t.Equal(o.t)
	default:
		return true
	}
}

// Compare orders v against o: -1, 0 or +1.
// Values of the same kind compare naturally. Missing sorts after everything
// else and mixed kinds order by kind.
func (v Value) Compare(o Value) int {
	if v.kind != o.kind {
		if v.kind == KindMissing {
			return 1
		}
		if o.kind == KindMissing {
			return -1
		}
		if v.kind < o.kind {
			return -1
		}
		return 1
	}
	switch v.kind {
	case KindString:
		return strings.Compare(v.str, o.str)
	case KindNumber:
		switch {
		case v.num < o.num:
			return -1
		case v.num > o.num:
			return 1
		}
		return 0
	case KindDate, KindTime:
		return v.t.Compare(o.t)
	}
	return 0
}

// String renders the cell the way it is written to exported files
func (v Value) String() string {
	switch v.kind {
	case KindString:
		return v.str
	case KindNumber:
		return strconv.FormatFloat(v.num, 'f', -1, 64)
	case KindDate:
		if v.t.Hour() == 0 && v.t.Minute() == 0 && v.t.Second() == 0 && v.t.Nanosecond() == 0 {
			return v.t.Format("2006-01-02")
		}
		return v.t.Format("2006-01-02 15:04:05")
	case KindTime:
		return v.t.Format("15:04:05")
	}
	return ""
}

// Interface returns the payload as a plain Go value (nil when missing).
// Spreadsheet writers use this to keep cell types.
func (v Value) Interface() interface{} {
	switch v.kind {
	case KindString:
		return v.str
	case KindNumber:
		return v.num
	case KindDate:
		return v.t
	case KindTime:
		return v.t.Format("15:04:05")
	}
	return nil
}

// Key returns a kind-tagged encoding of v usable as a map key.
// Equal values share a key.
func (v Value) Key() string {
	switch v.kind {
	case KindString:
		return "s" + v.str
	case KindNumber:
		return "n" + strconv.FormatFloat(v.num, 'g', -1, 64)
	case KindDate:
		return "d" + v.t.UTC().Format(time.RFC3339Nano)
	case KindTime:
		return "t" + v.t.Format("15:04:05.999999999")
	}
	return "m"
}
