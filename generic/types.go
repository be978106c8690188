/*
Package generic provides the primitives the safe harbor engine is built on.

PURPOSE:
  This package contains domain-agnostic types shared by the rules kernel,
  the contract drafter, the stores and the HTTP layer. Nothing in here knows
  about tax credits; it only knows about calendar dates, money and
  percentages.

KEY CONCEPTS IN THIS FILE (types.go):
  - Money: A US dollar amount backed by decimal.Decimal
  - Percent: A percentage value (5 means 5%, not 0.05)
  - MW: Nameplate capacity in megawatts AC

DESIGN PRINCIPLES:
  1. Precision: Uses decimal.Decimal to avoid floating-point errors at the
     5% boundary and in liquidated-damages figures
  2. Type Safety: Money, Percent and MW are distinct types so a capacity can
     never be passed where a cost is expected
  3. Totality: Ratio() never divides by zero; callers get ok=false instead

USAGE:
  total := generic.NewMoney(8_000_000)
  paid := generic.NewMoney(520_000)
  pct, ok := paid.Ratio(total) // 6.5, true

SEE ALSO:
  - time.go: Calendar dates and deadline arithmetic
  - errors.go: Sentinel and structured errors
*/
package generic

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// =============================================================================
// MONEY - US dollars
// =============================================================================

type Money struct {
	Value decimal.Decimal
}

func NewMoney(value float64) Money {
	return Money{Value: decimal.NewFromFloat(value)}
}

func NewMoneyFromInt(value int64) Money {
	return Money{Value: decimal.NewFromInt(value)}
}

func ParseMoney(s string) (Money, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, fmt.Errorf("%w: %q", ErrInvalidCost, s)
	}
	return Money{Value: d}, nil
}

func MustParseDecimal(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

func (m Money) Add(b Money) Money        { return Money{Value: m.Value.Add(b.Value)} }
func (m Money) Sub(b Money) Money        { return Money{Value: m.Value.Sub(b.Value)} }
func (m Money) IsNegative() bool         { return m.Value.IsNegative() }
func (m Money) IsZero() bool             { return m.Value.IsZero() }
func (m Money) IsPositive() bool         { return m.Value.IsPositive() }
func (m Money) GreaterThan(b Money) bool { return m.Value.GreaterThan(b.Value) }
func (m Money) Round() Money             { return Money{Value: m.Value.Round(2)} }
func (m Money) String() string           { return m.Value.StringFixed(2) }

// Percent returns p percent of m, rounded to the cent.
func (m Money) Percent(p Percent) Money {
	return Money{Value: m.Value.Mul(p.Value).Div(hundred).Round(2)}
}

// Ratio returns m as a percentage of total. ok is false when total is not
// positive, so a zero-cost project can never look qualified.
func (m Money) Ratio(total Money) (Percent, bool) {
	if !total.IsPositive() {
		return Percent{}, false
	}
	return Percent{Value: m.Value.Div(total.Value).Mul(hundred)}, true
}

// Money travels as a JSON number, matching what the UI collaborator sends.
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(m.Value.StringFixed(2)), nil
}

func (m *Money) UnmarshalJSON(data []byte) error {
	var d decimal.Decimal
	if err := json.Unmarshal(data, &d); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidCost, string(data))
	}
	m.Value = d
	return nil
}

// =============================================================================
// PERCENT
// =============================================================================

type Percent struct {
	Value decimal.Decimal
}

func NewPercent(value float64) Percent {
	return Percent{Value: decimal.NewFromFloat(value)}
}

func (p Percent) Round2() Percent                   { return Percent{Value: p.Value.Round(2)} }
func (p Percent) GreaterThanOrEqual(b Percent) bool { return p.Value.GreaterThanOrEqual(b.Value) }
func (p Percent) String() string                    { return p.Value.StringFixed(2) }
func (p Percent) Float64() float64                  { return p.Value.InexactFloat64() }

// =============================================================================
// CAPACITY
// =============================================================================

// MW is nameplate capacity in megawatts AC.
type MW struct {
	Value decimal.Decimal
}

func NewMW(value float64) MW {
	return MW{Value: decimal.NewFromFloat(value)}
}

func (c MW) IsPositive() bool          { return c.Value.IsPositive() }
func (c MW) GreaterThan(b MW) bool     { return c.Value.GreaterThan(b.Value) }
func (c MW) LessThanOrEqual(b MW) bool { return c.Value.LessThanOrEqual(b.Value) }
func (c MW) String() string            { return c.Value.String() }

func (c MW) MarshalJSON() ([]byte, error) {
	return []byte(c.Value.String()), nil
}

func (c *MW) UnmarshalJSON(data []byte) error {
	var d decimal.Decimal
	if err := json.Unmarshal(data, &d); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidCapacity, string(data))
	}
	c.Value = d
	return nil
}
