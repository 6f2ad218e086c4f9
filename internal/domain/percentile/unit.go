package percentile

import (
	"fmt"
	"math"
	"strconv"
)

// Unit is a display unit for nanosecond durations.
type Unit string

const (
	Seconds      Unit = "s"
	Milliseconds Unit = "ms"
	Microseconds Unit = "us"
	Nanoseconds  Unit = "ns"
)

// String returns the string representation of the unit.
func (u Unit) String() string {
	return string(u)
}

// Validate checks if the unit is known.
func (u Unit) Validate() error {
	switch u {
	case Seconds, Milliseconds, Microseconds, Nanoseconds:
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrUnknownUnit, string(u))
	}
}

// Divisor returns the number of nanoseconds in one unit.
func (u Unit) Divisor() float64 {
	switch u {
	case Seconds:
		return 1e9
	case Milliseconds:
		return 1e6
	case Microseconds:
		return 1e3
	default:
		return 1
	}
}

// ParseUnit parses a unit name. "µs" is accepted as an alias for "us".
func ParseUnit(s string) (Unit, error) {
	if s == "µs" {
		return Microseconds, nil
	}
	u := Unit(s)
	if err := u.Validate(); err != nil {
		return "", err
	}
	return u, nil
}

// Convert converts nanoseconds into the unit without rounding.
func Convert(ns float64, u Unit) float64 {
	return ns / u.Divisor()
}

// FormatTime converts nanoseconds into the unit. Whole results are returned
// as-is; anything else is rounded to precision decimal places.
func FormatTime(ns float64, u Unit, precision int) float64 {
	v := Convert(ns, u)
	if v == math.Trunc(v) {
		return v
	}
	return Round(v, precision)
}

// Round rounds v to precision decimal places. Exact ties go to the even
// digit, so 0.25 rounds to 0.2 at one decimal.
func Round(v float64, precision int) float64 {
	if precision < 0 {
		precision = 0
	}
	r, err := strconv.ParseFloat(strconv.FormatFloat(v, 'f', precision, 64), 64)
	if err != nil {
		return v
	}
	return r
}

// FormatValue renders a value without trailing zeros.
func FormatValue(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
