package middleware

import (
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cast"
)

var (
	ErrExpectedNumber   = errors.New("Expected number")
	ErrExpectedInteger  = errors.New("Expected integer")
	ErrExpectedString   = errors.New("Expected string")
	ErrExpectedArray    = errors.New("Expected array")
	ErrExpectedDatetime = errors.New("Invalid datetime")
	ErrMoneyScale       = errors.New("Number must have at most 2 decimal places")
	ErrMoneyRange       = errors.New("Number must be less than 10000000000")
)

const (
	// maxNumberLength bounds the text of a number, and with it the digits
	// of its coefficient
	maxNumberLength = 64
	// maxExponent bounds the power of ten a number may carry
	maxExponent = 64
	// maxInt64Digits is the digit count of math.MaxInt64
	maxInt64Digits = 19

	// Money columns are NUMERIC(12, 2)
	moneyScale     = 2
	moneyPrecision = 12
)

var maxMoney = decimal.New(1, moneyPrecision-moneyScale)

// NumberMode selects how loosely numeric input is read
type NumberMode int

const (
	// Strict accepts JSON numbers only
	Strict NumberMode = iota
	// Coerce also accepts numeric strings such as "12.50"
	Coerce
)

// ToDecimal reads a JSON number, or in Coerce mode a numeric string.
// Numbers with overlong text or an exponent beyond maxExponent are rejected
// before anything expands them.
func ToDecimal(v interface{}, mode NumberMode) (decimal.Decimal, error) {
	var text string
	switch n := v.(type) {
	case json.Number:
		text = n.String()
	case float64:
		return boundExponent(decimal.NewFromFloat(n))
	case string:
		if mode != Coerce {
			return decimal.Zero, ErrExpectedNumber
		}
		text = strings.TrimSpace(n)
	default:
		return decimal.Zero, ErrExpectedNumber
	}

	if len(text) > maxNumberLength {
		return decimal.Zero, ErrExpectedNumber
	}

	d, err := decimal.NewFromString(text)
	if err != nil {
		return decimal.Zero, ErrExpectedNumber
	}
	return boundExponent(d)
}

func boundExponent(d decimal.Decimal) (decimal.Decimal, error) {
	if exp := d.Exponent(); exp > maxExponent || exp < -maxExponent {
		return decimal.Zero, ErrExpectedNumber
	}
	return d, nil
}

// ToInt64 reads an integral number under the same rules as ToDecimal
func ToInt64(v interface{}, mode NumberMode) (int64, error) {
	d, err := ToDecimal(v, mode)
	if err != nil {
		return 0, err
	}

	// |d| < 10^(digits+exponent); anything wider cannot fit an int64
	digits := len(d.Abs().Coefficient().String())
	if digits+int(d.Exponent()) > maxInt64Digits {
		return 0, ErrExpectedInteger
	}
	if !d.IsInteger() {
		return 0, ErrExpectedInteger
	}

	n, err := cast.ToInt64E(d.String())
	if err != nil {
		return 0, ErrExpectedInteger
	}
	return n, nil
}

// ToMoney reads an amount that a money column stores exactly: at most two
// decimal places and below 10^10 in magnitude
func ToMoney(v interface{}, mode NumberMode) (decimal.Decimal, error) {
	d, err := ToDecimal(v, mode)
	if err != nil {
		return decimal.Zero, err
	}
	if !d.Equal(d.Truncate(moneyScale)) {
		return decimal.Zero, ErrMoneyScale
	}
	if d.Abs().GreaterThanOrEqual(maxMoney) {
		return decimal.Zero, ErrMoneyRange
	}
	return d, nil
}

// ToOptionalString accepts a string, null or an absent value
func ToOptionalString(v interface{}, present bool) (*string, error) {
	if !present || v == nil {
		return nil, nil
	}
	s, ok := v.(string)
	if !ok {
		return nil, ErrExpectedString
	}
	return &s, nil
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ToTimestamp parses the timestamp formats the store accepts for created_at
func ToTimestamp(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, ErrExpectedDatetime
}
