package sqltype

import (
	"database/sql/driver"
	"fmt"
	"math"
	"math/big"
	"strconv"
	"strings"
	"time"

	"github.com/koustreak/rsadapter/internal/errs"
	"github.com/shopspring/decimal"
)

// Layouts accepted for textual temporal values, most specific first.
var (
	dateTimeLayouts = []string{
		time.RFC3339Nano,
		"2006-01-02 15:04:05.999999999Z07:00",
		"2006-01-02 15:04:05.999999999Z07",
		"2006-01-02 15:04:05.999999999",
		"2006-01-02T15:04:05.999999999",
	}
	timeLayouts = []string{
		"15:04:05.999999999",
		"15:04",
	}
)

// timeOfDayBase is the date time-of-day values are anchored to.
var timeOfDayBase = time.Date(2000, time.January, 1, 0, 0, 0, 0, time.UTC)

// Cast converts a raw value read from the wire into the Go representation of
// t: int64, float64, decimal.Decimal, *big.Int, string, bool or time.Time.
// nil stays nil.
func (t Type) Cast(v any) (any, error) {
	if v == nil {
		return nil, nil
	}
	if valuer, ok := v.(driver.Valuer); ok {
		if _, isDecimal := v.(decimal.Decimal); !isDecimal {
			raw, err := valuer.Value()
			if err != nil {
				return nil, errs.Wrap(errs.ErrKindInvalidInput, "reading driver value", err)
			}
			return t.Cast(raw)
		}
	}

	switch t.Kind {
	case KindInteger:
		return t.castInteger(v)
	case KindFloat:
		return castFloat(v)
	case KindDecimal:
		d, err := castDecimal(v)
		if err != nil {
			return nil, err
		}
		if t.Scale != nil {
			d = d.Round(int32(*t.Scale))
		}
		return d, nil
	case KindDecimalWithoutScale:
		d, err := castDecimal(v)
		if err != nil {
			return nil, err
		}
		return d.BigInt(), nil
	case KindString, KindText:
		return castString(v), nil
	case KindBoolean:
		return castBool(v)
	case KindDate:
		ts, err := castTime(v, []string{time.DateOnly})
		if err != nil {
			return nil, err
		}
		y, m, d := ts.Date()
		return time.Date(y, m, d, 0, 0, 0, 0, ts.Location()), nil
	case KindTime:
		ts, err := castTime(v, timeLayouts)
		if err != nil {
			return nil, err
		}
		return timeOfDayBase.Add(time.Duration(ts.Hour())*time.Hour +
			time.Duration(ts.Minute())*time.Minute +
			time.Duration(ts.Second())*time.Second +
			time.Duration(ts.Nanosecond())), nil
	case KindDateTime:
		ts, err := castTime(v, dateTimeLayouts)
		if err != nil {
			return nil, err
		}
		if t.Precision != nil && *t.Precision < 9 {
			ts = ts.Truncate(time.Duration(math.Pow10(9 - *t.Precision)))
		}
		return ts, nil
	}
	return nil, errs.Newf(errs.ErrKindTypeDecode, "no cast for kind %s", t.Kind)
}

func (t Type) castInteger(v any) (int64, error) {
	var n int64
	switch x := v.(type) {
	case int:
		n = int64(x)
	case int8:
		n = int64(x)
	case int16:
		n = int64(x)
	case int32:
		n = int64(x)
	case int64:
		n = x
	case uint8:
		n = int64(x)
	case uint16:
		n = int64(x)
	case uint32:
		n = int64(x)
	case uint64:
		if x > math.MaxInt64 {
			return 0, errs.Newf(errs.ErrKindInvalidInput, "integer %d out of range", x)
		}
		n = int64(x)
	case string, []byte:
		parsed, err := strconv.ParseInt(strings.TrimSpace(castString(x)), 10, 64)
		if err != nil {
			return 0, errs.Wrap(errs.ErrKindInvalidInput, "parsing integer", err)
		}
		n = parsed
	default:
		return 0, errs.Newf(errs.ErrKindInvalidInput, "cannot cast %T to integer", v)
	}

	if t.Limit != nil && *t.Limit < 8 {
		bits := uint(*t.Limit * 8)
		lo, hi := -(int64(1) << (bits - 1)), int64(1)<<(bits-1)-1
		if n < lo || n > hi {
			return 0, errs.Newf(errs.ErrKindInvalidInput, "integer %d out of range for %d-byte column", n, *t.Limit)
		}
	}
	return n, nil
}

func castFloat(v any) (float64, error) {
	switch x := v.(type) {
	case float64:
		return x, nil
	case float32:
		return float64(x), nil
	case int:
		return float64(x), nil
	case int16:
		return float64(x), nil
	case int32:
		return float64(x), nil
	case int64:
		return float64(x), nil
	case string, []byte:
		f, err := strconv.ParseFloat(strings.TrimSpace(castString(x)), 64)
		if err != nil {
			return 0, errs.Wrap(errs.ErrKindInvalidInput, "parsing float", err)
		}
		return f, nil
	}
	return 0, errs.Newf(errs.ErrKindInvalidInput, "cannot cast %T to float", v)
}

func castDecimal(v any) (decimal.Decimal, error) {
	switch x := v.(type) {
	case decimal.Decimal:
		return x, nil
	case float64:
		return decimal.NewFromFloat(x), nil
	case float32:
		return decimal.NewFromFloat32(x), nil
	case int:
		return decimal.NewFromInt(int64(x)), nil
	case int32:
		return decimal.NewFromInt32(x), nil
	case int64:
		return decimal.NewFromInt(x), nil
	case *big.Int:
		return decimal.NewFromBigInt(x, 0), nil
	case string, []byte:
		d, err := decimal.NewFromString(strings.TrimSpace(castString(x)))
		if err != nil {
			return decimal.Zero, errs.Wrap(errs.ErrKindInvalidInput, "parsing decimal", err)
		}
		return d, nil
	}
	return decimal.Zero, errs.Newf(errs.ErrKindInvalidInput, "cannot cast %T to decimal", v)
}

func castString(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case []byte:
		return string(x)
	case fmt.Stringer:
		return x.String()
	}
	return fmt.Sprint(v)
}

func castBool(v any) (bool, error) {
	switch x := v.(type) {
	case bool:
		return x, nil
	case int64:
		return x != 0, nil
	case int:
		return x != 0, nil
	case string, []byte:
		switch strings.ToLower(strings.TrimSpace(castString(x))) {
		case "t", "true", "1", "y", "yes", "on":
			return true, nil
		case "f", "false", "0", "n", "no", "off":
			return false, nil
		}
	}
	return false, errs.Newf(errs.ErrKindInvalidInput, "cannot cast %v to boolean", v)
}

func castTime(v any, layouts []string) (time.Time, error) {
	switch x := v.(type) {
	case time.Time:
		return x, nil
	case string, []byte:
		s := strings.TrimSpace(castString(x))
		for _, layout := range layouts {
			if ts, err := time.Parse(layout, s); err == nil {
				return ts, nil
			}
		}
		return time.Time{}, errs.Newf(errs.ErrKindInvalidInput, "cannot parse %q as time", s)
	}
	return time.Time{}, errs.Newf(errs.ErrKindInvalidInput, "cannot cast %T to time", v)
}
