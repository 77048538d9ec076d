package model

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// DefaultCurrency is the Peruvian sol symbol
const DefaultCurrency = "S/"

// Money is an amount in cents
type Money int64

// NewMoney converts a decimal amount, rounding to the nearest cent
func NewMoney(amount float64) Money {
	return Money(math.Round(amount * 100))
}

func (m Money) Float() float64 {
	return float64(m) / 100
}

func (m Money) Mul(qty int) Money {
	return m * Money(qty)
}

// Amount formats without the currency symbol, e.g. "150.00"
func (m Money) Amount() string {
	sign := ""
	v := int64(m)
	if v < 0 {
		sign = "-"
		v = -v
	}
	return fmt.Sprintf("%s%d.%02d", sign, v/100, v%100)
}

// Format prefixes the amount with symbol, e.g. "US$ 150.00"
func (m Money) Format(symbol string) string {
	if symbol == "" {
		symbol = DefaultCurrency
	}
	return symbol + " " + m.Amount()
}

// String formats in the default currency, e.g. "S/ 150.00"
func (m Money) String() string {
	return m.Format(DefaultCurrency)
}

func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(m.Amount()), nil
}

// UnmarshalJSON accepts numbers and numeric strings
func (m *Money) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "null" {
		*m = 0
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("invalid amount %s: %w", string(b), err)
	}
	*m = NewMoney(f)
	return nil
}

// ID is a backend identifier. The backend emits numeric ids in some modules
// and string ids in others; both decode to the same string form.
type ID string

func (id *ID) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*id = ""
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("invalid id %s", string(b))
	}
	*id = ID(n.String())
	return nil
}

func (id ID) String() string {
	return string(id)
}
