// Package sqltype defines the semantic column types produced by type
// decoding, independent of how values travel on the wire.
package sqltype

import (
	"fmt"
	"strings"
)

// Kind is the value domain of a column.
type Kind int

const (
	KindInteger Kind = iota
	KindFloat
	KindDecimal
	KindDecimalWithoutScale // fixed-point numeric whose values carry no fractional part
	KindString
	KindText
	KindBoolean
	KindDate
	KindTime
	KindDateTime
)

func (k Kind) String() string {
	switch k {
	case KindInteger:
		return "integer"
	case KindFloat:
		return "float"
	case KindDecimal:
		return "decimal"
	case KindDecimalWithoutScale:
		return "decimal_without_scale"
	case KindString:
		return "string"
	case KindText:
		return "text"
	case KindBoolean:
		return "boolean"
	case KindDate:
		return "date"
	case KindTime:
		return "time"
	case KindDateTime:
		return "datetime"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// MarshalText lets kinds render as their names in JSON and YAML.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText parses a kind name produced by MarshalText.
func (k *Kind) UnmarshalText(b []byte) error {
	name := strings.TrimSpace(string(b))
	for c := KindInteger; c <= KindDateTime; c++ {
		if c.String() == name {
			*k = c
			return nil
		}
	}
	return fmt.Errorf("unknown type kind %q", name)
}

// Type is a decoded column type. Facets that were not declared are nil.
type Type struct {
	Kind      Kind `json:"kind"`
	Limit     *int `json:"limit,omitempty"`     // byte width for integers, character limit for strings
	Precision *int `json:"precision,omitempty"` // digits for decimals, fractional second digits for datetimes
	Scale     *int `json:"scale,omitempty"`
}

// Integer returns an integer type stored in width bytes.
func Integer(width int) Type {
	return Type{Kind: KindInteger, Limit: &width}
}

// Float returns a floating point type.
func Float() Type {
	return Type{Kind: KindFloat}
}

// Decimal returns a fixed-point type. Either facet may be nil.
func Decimal(precision, scale *int) Type {
	return Type{Kind: KindDecimal, Precision: precision, Scale: scale}
}

// DecimalWithoutScale returns a fixed-point type with no fractional digits.
func DecimalWithoutScale(precision *int) Type {
	return Type{Kind: KindDecimalWithoutScale, Precision: precision}
}

// String returns a size-limited character type. limit may be nil.
func String(limit *int) Type {
	return Type{Kind: KindString, Limit: limit}
}

// Text returns an unbounded character type.
func Text() Type {
	return Type{Kind: KindText}
}

// Boolean returns the boolean type.
func Boolean() Type {
	return Type{Kind: KindBoolean}
}

// Date returns the calendar date type.
func Date() Type {
	return Type{Kind: KindDate}
}

// Time returns the time-of-day type.
func Time() Type {
	return Type{Kind: KindTime}
}

// DateTime returns a timestamp type with optional fractional-second precision.
func DateTime(precision *int) Type {
	return Type{Kind: KindDateTime, Precision: precision}
}

// Int is a convenience for building optional facets.
func Int(v int) *int {
	return &v
}

// Equal reports whether t and o describe the same type, comparing facet
// values rather than pointers.
func (t Type) Equal(o Type) bool {
	return t.Kind == o.Kind &&
		eqInt(t.Limit, o.Limit) &&
		eqInt(t.Precision, o.Precision) &&
		eqInt(t.Scale, o.Scale)
}

// String renders the type like "decimal(10,2)" or "integer(limit: 4)".
func (t Type) String() string {
	var sb strings.Builder
	sb.WriteString(t.Kind.String())
	switch {
	case t.Precision != nil && t.Scale != nil:
		fmt.Fprintf(&sb, "(%d,%d)", *t.Precision, *t.Scale)
	case t.Precision != nil:
		fmt.Fprintf(&sb, "(%d)", *t.Precision)
	}
	if t.Limit != nil {
		fmt.Fprintf(&sb, "(limit: %d)", *t.Limit)
	}
	return sb.String()
}

func eqInt(a, b *int) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
