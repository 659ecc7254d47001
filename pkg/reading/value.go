package reading

import (
	"bytes"
	"fmt"

	"github.com/cockroachdb/apd/v3"
)

var thousand = apd.New(1000, 0)

// milliContext truncates toward zero, the way the meter totals are scaled.
var milliContext = func() *apd.Context {
	c := apd.BaseContext.WithPrecision(34)
	c.Rounding = apd.RoundDown
	return c
}()

// Value is a numeric meter reading kept as the exact decimal the meter sent.
type Value struct {
	d apd.Decimal
}

func NewValue(s string) (*Value, error) {
	v := &Value{}
	_, _, err := v.d.SetString(s)
	if err != nil {
		return nil, fmt.Errorf("invalid reading %q: %w", s, err)
	}
	return v, nil
}

func (v *Value) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || b[0] == '"' {
		return fmt.Errorf("reading must be a number, got %s", string(b))
	}
	_, _, err := v.d.SetString(string(b))
	if err != nil {
		return fmt.Errorf("invalid reading %s: %w", string(b), err)
	}
	return nil
}

func (v *Value) MarshalJSON() ([]byte, error) {
	return []byte(v.d.String()), nil
}

func (v *Value) String() string {
	return v.d.String()
}

func (v *Value) Float64() float64 {
	f, _ := v.d.Float64()
	return f
}

// Positive reports whether the reading is strictly greater than zero.
func (v *Value) Positive() bool {
	return v.d.Sign() > 0
}

// Milli returns v×1000 truncated to an integer.
func (v *Value) Milli() int64 {
	return Milli(v)
}

// Milli returns the sum of values ×1000, truncated to an integer after summing.
func Milli(values ...*Value) int64 {
	var sum apd.Decimal
	for _, v := range values {
		milliContext.Add(&sum, &sum, &v.d)
	}
	milliContext.Mul(&sum, &sum, thousand)

	var integ apd.Decimal
	milliContext.RoundToIntegralValue(&integ, &sum)
	i, err := integ.Int64()
	if err != nil {
		return 0
	}
	return i
}
