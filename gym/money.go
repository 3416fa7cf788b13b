package gym

import "github.com/shopspring/decimal"

// =============================================================================
// MONEY - currency amount with 2-decimal rounding
// =============================================================================

// Money is a currency amount backed by decimal arithmetic. No currency code
// is carried: the engine operates in a single local currency and performs no
// conversion.
type Money struct {
	d decimal.Decimal
}

func NewMoney(value float64) Money {
	return Money{d: decimal.NewFromFloat(value)}
}

func MoneyFromDecimal(d decimal.Decimal) Money { return Money{d: d} }

// MoneyFromString parses a decimal string ("33.33"). Invalid input yields
// zero, mirroring how unparseable stored amounts are treated.
func MoneyFromString(s string) Money {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}
	}
	return Money{d: d}
}

func ZeroMoney() Money { return Money{} }

// Arithmetic

func (m Money) Add(other Money) Money      { return Money{d: m.d.Add(other.d)} }
func (m Money) Sub(other Money) Money      { return Money{d: m.d.Sub(other.d)} }
func (m Money) MulInt(n int) Money         { return Money{d: m.d.Mul(decimal.NewFromInt(int64(n)))} }
func (m Money) MulFloat(f float64) Money   { return Money{d: m.d.Mul(decimal.NewFromFloat(f))} }
func (m Money) DivInt(n int) Money         { return Money{d: m.d.Div(decimal.NewFromInt(int64(n)))} }

// Round2 rounds to two decimals, half away from zero. This is the single
// rounding rule for every amount the engine produces.
func (m Money) Round2() Money { return Money{d: m.d.Round(2)} }

// Comparison

func (m Money) Equal(other Money) bool       { return m.d.Equal(other.d) }
func (m Money) LessThan(other Money) bool    { return m.d.LessThan(other.d) }
func (m Money) GreaterThan(other Money) bool { return m.d.GreaterThan(other.d) }
func (m Money) IsNegative() bool             { return m.d.IsNegative() }
func (m Money) IsZero() bool                 { return m.d.IsZero() }
func (m Money) IsPositive() bool             { return m.d.IsPositive() }

// Conversion

func (m Money) Decimal() decimal.Decimal { return m.d }
func (m Money) Float64() float64         { f, _ := m.d.Float64(); return f }

// String renders with exactly two decimals ("80.00").
func (m Money) String() string { return m.d.StringFixed(2) }
