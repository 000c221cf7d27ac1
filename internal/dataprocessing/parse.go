package dataprocessing

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"salesetl/pkg/contracts/domain"
)

// Date layouts tried in order. Day-first layouts come before their
// month-first counterparts so that 03/04/2024 reads as 3 April; the
// month-first ones only match what day-first cannot (01/13/2024).
var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04:05.999999999",
	time.RFC3339,
	time.RFC3339Nano,
	"2006/01/02",
	"2006/01/02 15:04:05",
	"20060102",

	"2/1/2006",
	"2/1/2006 15:04:05",
	"2/1/2006 15:04",
	"2-1-2006",
	"2-1-2006 15:04:05",
	"2-1-2006 15:04",
	"2.1.2006",
	"2/1/06",
	"2-1-06",
	"2.1.06",
	"2 Jan 2006",
	"2 January 2006",
	"2-Jan-2006",
	"2-Jan-06",
	"Jan 2, 2006",
	"January 2, 2006",
	"Jan 2 2006",
	"Mon, 2 Jan 2006",
	"Monday, January 2, 2006",

	"1/2/2006",
	"1/2/2006 15:04:05",
	"1/2/2006 15:04",
	"1-2-2006",
	"1-2-2006 15:04:05",
	"1/2/06",
	"1-2-06",
}

// Time layouts tried after the strict HH:MM:SS one fails
var timeLayouts = []string{
	"15:04",
	"15:04:05.999999999",
	"3:04:05 PM",
	"3:04:05PM",
	"3:04 PM",
	"3:04PM",
	"3PM",
	"3 PM",
	"15.04.05",
	"15.04",
}

// Excel stores dates as day counts; this bounds 9999-12-31
const maxExcelSerial = 2958465

// ParseDate coerces a cell to a calendar date. Anything unparseable
// becomes missing.
func ParseDate(v domain.Value) domain.Value {
	switch v.Kind() {
	case domain.KindDate:
		return v
	case domain.KindNumber:
		f, _ := v.Num()
		return dateFromSerial(f)
	case domain.KindString:
		s, _ := v.Str()
		s = strings.TrimSpace(s)
		if s == "" {
			return domain.MissingValue()
		}
		for _, layout := range dateLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return domain.DateValue(t)
			}
		}
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return dateFromSerial(f)
		}
	}
	return domain.MissingValue()
}

func dateFromSerial(f float64) domain.Value {
	if math.IsNaN(f) || f < 1 || f > maxExcelSerial {
		return domain.MissingValue()
	}
	t, err := excelize.ExcelDateToTime(f, false)
	if err != nil {
		return domain.MissingValue()
	}
	return domain.DateValue(t)
}

// ParseTime coerces a cell to a time of day. The strict 15:04:05 layout is
// tried first, then a tolerant set.
func ParseTime(v domain.Value) domain.Value {
	switch v.Kind() {
	case domain.KindTime:
		return v
	case domain.KindDate:
		t, _ := v.Date()
		return domain.TimeValue(t)
	case domain.KindNumber:
		f, _ := v.Num()
		return timeFromFraction(f)
	case domain.KindString:
		s, _ := v.Str()
		s = strings.TrimSpace(s)
		if s == "" {
			return domain.MissingValue()
		}
		if t, err := time.Parse("15:04:05", s); err == nil {
			return domain.TimeValue(t)
		}
		return parseTimeTolerant(s)
	}
	return domain.MissingValue()
}

func parseTimeTolerant(s string) domain.Value {
	upper := strings.ToUpper(s)
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, upper); err == nil {
			return domain.TimeValue(t)
		}
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return domain.TimeValue(t)
		}
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return timeFromFraction(f)
	}
	return domain.MissingValue()
}

// timeFromFraction reads the fractional part of an Excel serial as a time of day
func timeFromFraction(f float64) domain.Value {
	if math.IsNaN(f) || math.IsInf(f, 0) || f < 0 {
		return domain.MissingValue()
	}
	_, frac := math.Modf(f)
	secs := math.Round(frac * 86400)
	if secs >= 86400 {
		secs = 0
	}
	d := time.Duration(secs) * time.Second
	return domain.TimeValue(time.Date(0, 1, 1, 0, 0, 0, 0, time.UTC).Add(d))
}

// ParseNumber strips everything except digits, '.' and '-' and parses the
// rest as a decimal number. "$1,234.50" reads as 1234.5.
func ParseNumber(v domain.Value) domain.Value {
	switch v.Kind() {
	case domain.KindNumber:
		return v
	case domain.KindString:
		s, _ := v.Str()
		cleaned := strings.Map(func(r rune) rune {
			if (r >= '0' && r <= '9') || r == '.' || r == '-' {
				return r
			}
			return -1
		}, s)
		if cleaned == "" {
			return domain.MissingValue()
		}
		f, err := strconv.ParseFloat(cleaned, 64)
		if err != nil {
			return domain.MissingValue()
		}
		return domain.NumberValue(f)
	}
	return domain.MissingValue()
}

// TrimText trims a textual cell and turns the null-like tokens "nan" and
// "None" into missing. Non-text cells pass through.
func TrimText(v domain.Value) domain.Value {
	s, ok := v.Str()
	if !ok {
		return v
	}
	s = strings.TrimSpace(s)
	if s == "nan" || s == "None" {
		return domain.MissingValue()
	}
	return domain.StringValue(s)
}
