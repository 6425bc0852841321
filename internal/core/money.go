// Package core provides money parsing and handling utilities.
//
// Amounts are whole Rupiah. The currency has no minor unit in everyday use,
// so nothing here deals with fractions.
package core

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"unicode"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// Money is an amount in whole Rupiah.
type Money int64

var rupiahFormatter = money.NewFormatter(0, ",", ".", "Rp", "$1")

func (m Money) Validate() error {
	if m <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

// String renders the amount the way id-ID renders IDR, e.g. Rp1.500.000.
func (m Money) String() string {
	return rupiahFormatter.Format(int64(m))
}

// Abbreviate shortens amounts of a million and up: Rp 1.5JT, Rp 2M.
// Smaller amounts use the full form.
func (m Money) Abbreviate() string {
	switch {
	case m >= 1_000_000_000:
		return "Rp " + oneDecimal(decimal.NewFromInt(int64(m)).Div(decimal.NewFromInt(1_000_000_000))) + "M"
	case m >= 1_000_000:
		return "Rp " + oneDecimal(decimal.NewFromInt(int64(m)).Div(decimal.NewFromInt(1_000_000))) + "JT"
	}
	return m.String()
}

func oneDecimal(d decimal.Decimal) string {
	return strings.TrimSuffix(d.StringFixed(1), ".0")
}

var (
	maxMoney = decimal.NewFromInt(math.MaxInt64)
	minMoney = decimal.NewFromInt(math.MinInt64)
)

// UnmarshalJSON accepts a JSON number or a formatted string such as "1.500.000".
func (m *Money) UnmarshalJSON(b []byte) error {
	var n json.Number
	if err := json.Unmarshal(b, &n); err == nil {
		d, err := decimal.NewFromString(n.String())
		if err != nil {
			return ErrInvalidAmount
		}
		d = d.Round(0)
		if d.GreaterThan(maxMoney) || d.LessThan(minMoney) {
			return ErrInvalidAmount
		}
		*m = Money(d.IntPart())
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return ErrInvalidAmount
	}
	*m = ParseRupiah(s)
	return nil
}

// ParseRupiah strips every non-digit and reads what is left.
// Unparseable or empty input yields 0.
//
// Examples:
//
//	ParseRupiah("1.500.000") -> 1500000
//	ParseRupiah("Rp 25.000") -> 25000
//	ParseRupiah("abc")       -> 0
func ParseRupiah(s string) Money {
	digits := onlyDigits(s)
	if digits == "" {
		return 0
	}
	v, err := strconv.ParseInt(digits, 10, 64)
	if err != nil {
		return 0
	}
	return Money(v)
}

// FormatInputRupiah groups the digits of s in threes with dots, for input fields.
func FormatInputRupiah(s string) string {
	digits := onlyDigits(s)
	if len(digits) <= 3 {
		return digits
	}
	var b strings.Builder
	lead := len(digits) % 3
	if lead > 0 {
		b.WriteString(digits[:lead])
	}
	for i := lead; i < len(digits); i += 3 {
		if b.Len() > 0 {
			b.WriteByte('.')
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}

func onlyDigits(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r < 128 && unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Percent returns round(part/whole*100) clamped to [0, 100], or 0 when whole <= 0.
func Percent(part, whole Money) int {
	if whole <= 0 {
		return 0
	}
	p := decimal.NewFromInt(int64(part)).
		Mul(decimal.NewFromInt(100)).
		Div(decimal.NewFromInt(int64(whole))).
		Round(0).
		IntPart()
	switch {
	case p < 0:
		return 0
	case p > 100:
		return 100
	}
	return int(p)
}
