package dataprocessing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"salesetl/pkg/contracts/domain"
)

func TestParseDate(t *testing.T) {
	tests := []struct {
		name string
		in   domain.Value
		want string // "" means missing
	}{
		{"iso", domain.StringValue("2024-01-15"), "2024-01-15"},
		{"iso with time", domain.StringValue("2024-01-15 08:30:00"), "2024-01-15 08:30:00"},
		{"day first wins when ambiguous", domain.StringValue("03/04/2024"), "2024-04-03"},
		{"day first unpadded", domain.StringValue("3/4/2024"), "2024-04-03"},
		{"month first fallback", domain.StringValue("01/13/2024"), "2024-01-13"},
		{"dashes", domain.StringValue("15-01-2024"), "2024-01-15"},
		{"dots", domain.StringValue("15.01.2024"), "2024-01-15"},
		{"two digit year", domain.StringValue("15/01/24"), "2024-01-15"},
		{"named month", domain.StringValue("15 Jan 2024"), "2024-01-15"},
		{"us named month", domain.StringValue("January 15, 2024"), "2024-01-15"},
		{"excel serial string", domain.StringValue("45306"), "2024-01-15"},
		{"excel serial number", domain.NumberValue(45306), "2024-01-15"},
		{"garbage", domain.StringValue("not a date"), ""},
		{"impossible", domain.StringValue("31/02/2024"), ""},
		{"empty", domain.StringValue(""), ""},
		{"missing", domain.MissingValue(), ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseDate(tt.in)
			if tt.want == "" {
				assert.True(t, got.IsMissing(), "got %v", got)
				return
			}
			assert.Equal(t, domain.KindDate, got.Kind())
			assert.Equal(t, tt.want, got.String())
		})
	}
}

func TestParseDate_PassesDatesThrough(t *testing.T) {
	d := domain.DateValue(time.Date(2023, 12, 31, 0, 0, 0, 0, time.UTC))
	assert.Equal(t, d, ParseDate(d))
}

func TestParseTime(t *testing.T) {
	tests := []struct {
		name string
		in   domain.Value
		want string
	}{
		{"strict", domain.StringValue("07:06:05"), "07:06:05"},
		{"single digit hour", domain.StringValue("7:06:05"), "07:06:05"},
		{"hours and minutes", domain.StringValue("14:30"), "14:30:00"},
		{"pm", domain.StringValue("2:30 PM"), "14:30:00"},
		{"lowercase pm", domain.StringValue("2:30pm"), "14:30:00"},
		{"fractional seconds", domain.StringValue("10:00:00.250"), "10:00:00"},
		{"datetime", domain.StringValue("2024-01-15 09:15:00"), "09:15:00"},
		{"excel fraction", domain.StringValue("0.5"), "12:00:00"},
		{"excel fraction number", domain.NumberValue(45306.75), "18:00:00"},
		{"garbage", domain.StringValue("lunch"), ""},
		{"missing", domain.MissingValue(), ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseTime(tt.in)
			if tt.want == "" {
				assert.True(t, got.IsMissing(), "got %v", got)
				return
			}
			assert.Equal(t, domain.KindTime, got.Kind())
			assert.Equal(t, tt.want, got.String())
		})
	}
}

func TestParseNumber(t *testing.T) {
	tests := []struct {
		name    string
		in      domain.Value
		want    float64
		missing bool
	}{
		{"plain", domain.StringValue("2"), 2, false},
		{"currency", domain.StringValue("$3.50"), 3.5, false},
		{"rupee with thousands", domain.StringValue("₹1,234.50"), 1234.5, false},
		{"negative", domain.StringValue("-4"), -4, false},
		{"units suffix", domain.StringValue("3 pcs"), 3, false},
		{"number passes", domain.NumberValue(7.25), 7.25, false},
		{"letters only", domain.StringValue("abc"), 0, true},
		{"dot only", domain.StringValue("."), 0, true},
		{"two minus signs", domain.StringValue("1-2"), 0, true},
		{"missing", domain.MissingValue(), 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseNumber(tt.in)
			if tt.missing {
				assert.True(t, got.IsMissing())
				return
			}
			f, ok := got.Num()
			assert.True(t, ok)
			assert.InDelta(t, tt.want, f, 1e-9)
		})
	}
}

func TestTrimText(t *testing.T) {
	assert.Equal(t, domain.StringValue("Latte"), TrimText(domain.StringValue("  Latte ")))
	assert.True(t, TrimText(domain.StringValue("nan")).IsMissing())
	assert.True(t, TrimText(domain.StringValue(" None ")).IsMissing())
	assert.Equal(t, domain.StringValue("NaN"), TrimText(domain.StringValue("NaN")), "only the exact tokens are null-like")
	assert.Equal(t, domain.NumberValue(1), TrimText(domain.NumberValue(1)))
}
