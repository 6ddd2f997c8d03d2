// Package money formats decimal amounts for display using integer minor
// units and ISO-4217 currency metadata. Domain math stays in
// shopspring/decimal; this package only touches the edges where amounts are
// rendered or parsed.
package money

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// Currency codes the statement profiles produce.
const (
	INR = "INR" // Indian Rupee
	EUR = "EUR" // Euro
	USD = "USD" // US Dollar
	GBP = "GBP" // British Pound
	PLN = "PLN" // Polish Zloty
)

// Money is a monetary value with currency, stored in minor units.
type Money struct {
	m *money.Money
}

// New creates Money from minor units (cents, paise) and a currency code.
func New(minorUnits int64, currencyCode string) *Money {
	return &Money{m: money.New(minorUnits, currencyCode)}
}

// NewFromDecimal creates Money from a decimal amount in major units,
// rounding to the currency's fraction.
func NewFromDecimal(amount decimal.Decimal, currencyCode string) *Money {
	currency := money.GetCurrency(currencyCode)
	if currency == nil {
		currency = money.GetCurrency(INR)
	}

	multiplier := decimal.New(1, int32(currency.Fraction))
	return New(amount.Mul(multiplier).Round(0).IntPart(), currencyCode)
}

// NewFromString parses an amount like "1,234.56" or "1.234,56" (European).
func NewFromString(amount string, currencyCode string, europeanFormat bool) (*Money, error) {
	amount = strings.TrimSpace(amount)
	amount = strings.ReplaceAll(amount, " ", "")
	for _, sym := range []string{"₹", "€", "$", "£", "zł"} {
		amount = strings.ReplaceAll(amount, sym, "")
	}

	if europeanFormat {
		amount = strings.ReplaceAll(amount, ".", "")
		amount = strings.ReplaceAll(amount, ",", ".")
	} else {
		amount = strings.ReplaceAll(amount, ",", "")
	}

	d, err := decimal.NewFromString(amount)
	if err != nil {
		return nil, fmt.Errorf("invalid amount: %w", err)
	}
	return NewFromDecimal(d, currencyCode), nil
}

// Zero returns a zero value in the given currency.
func Zero(currencyCode string) *Money {
	return New(0, currencyCode)
}

// Amount returns the value in minor units.
func (m *Money) Amount() int64 {
	if m == nil || m.m == nil {
		return 0
	}
	return m.m.Amount()
}

// Currency returns the ISO-4217 code.
func (m *Money) Currency() string {
	if m == nil || m.m == nil {
		return ""
	}
	return m.m.Currency().Code
}

// IsZero reports whether the amount is zero.
func (m *Money) IsZero() bool {
	return m == nil || m.m == nil || m.m.IsZero()
}

// IsNegative reports whether the amount is below zero.
func (m *Money) IsNegative() bool {
	return m != nil && m.m != nil && m.m.IsNegative()
}

// Add sums two values. Currencies must match.
func (m *Money) Add(other *Money) (*Money, error) {
	if m == nil || m.m == nil {
		return other, nil
	}
	if other == nil || other.m == nil {
		return m, nil
	}

	result, err := m.m.Add(other.m)
	if err != nil {
		return nil, err
	}
	return &Money{m: result}, nil
}

// Subtract subtracts other from m. Currencies must match.
func (m *Money) Subtract(other *Money) (*Money, error) {
	if m == nil || m.m == nil {
		if other == nil || other.m == nil {
			return Zero(INR), nil
		}
		return &Money{m: other.m.Negative()}, nil
	}
	if other == nil || other.m == nil {
		return m, nil
	}

	result, err := m.m.Subtract(other.m)
	if err != nil {
		return nil, err
	}
	return &Money{m: result}, nil
}

// Display renders the value with symbol and grouping, e.g. "₹1,234.56".
func (m *Money) Display() string {
	if m == nil || m.m == nil {
		return ""
	}
	return m.m.Display()
}

// String returns the bare decimal amount, e.g. "1234.56".
func (m *Money) String() string {
	if m == nil || m.m == nil {
		return "0"
	}
	return m.ToDecimal().String()
}

// ToDecimal converts back to major units for domain math.
func (m *Money) ToDecimal() decimal.Decimal {
	if m == nil || m.m == nil {
		return decimal.Zero
	}
	return decimal.NewFromInt(m.m.Amount()).Div(decimal.New(1, int32(m.m.Currency().Fraction)))
}

// MarshalJSON emits amount, currency, and the formatted display string.
func (m *Money) MarshalJSON() ([]byte, error) {
	if m == nil || m.m == nil {
		return json.Marshal(nil)
	}
	return json.Marshal(map[string]any{
		"amount":   m.String(),
		"currency": m.Currency(),
		"display":  m.Display(),
	})
}

// UnmarshalJSON reads the shape MarshalJSON emits.
func (m *Money) UnmarshalJSON(data []byte) error {
	var v struct {
		Amount   string `json:"amount"`
		Currency string `json:"currency"`
	}
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}

	d, err := decimal.NewFromString(v.Amount)
	if err != nil {
		return fmt.Errorf("invalid amount: %w", err)
	}
	m.m = NewFromDecimal(d, v.Currency).m
	return nil
}
