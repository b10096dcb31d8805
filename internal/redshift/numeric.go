package redshift

import (
	"regexp"
	"strconv"

	"github.com/koustreak/rsadapter/internal/sqltype"
)

var (
	limitPattern     = regexp.MustCompile(`\((.*)\)`)
	precisionPattern = regexp.MustCompile(`\((\d+)(,\d+)?\)`)
	bareScalePattern = regexp.MustCompile(`\((\d+)\)`)
	scalePattern     = regexp.MustCompile(`\((\d+),(\d+)\)`)
)

// UnpackNumericModifier splits a numeric type modifier into precision and
// scale. The catalog stores ((precision << 16) | scale) + 4.
func UnpackNumericModifier(fmod int32) (precision, scale int) {
	v := int64(fmod) - 4
	return int((v >> 16) & 0xFFFF), int(v & 0xFFFF)
}

// hasPackedScale reports whether fmod carries a non-zero scale. A scale
// packed as zero cannot be told apart from no scale at all, and is treated
// as the latter.
func hasPackedScale(fmod int32) bool {
	_, scale := UnpackNumericModifier(fmod)
	return scale != 0
}

// decodeNumeric reads precision and scale from the formatted type and uses
// the modifier only to decide whether the column is whole-number-only.
func decodeNumeric(fmod *int32, sqlType string) (sqltype.Type, error) {
	precision := extractPrecision(sqlType)
	if fmod != nil && !hasPackedScale(*fmod) {
		return sqltype.DecimalWithoutScale(precision), nil
	}
	return sqltype.Decimal(precision, extractScale(sqlType)), nil
}

// extractLimit returns the integer inside the first parentheses, e.g. 255
// for "character varying(255)".
func extractLimit(sqlType string) *int {
	m := limitPattern.FindStringSubmatch(sqlType)
	if m == nil {
		return nil
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return nil
	}
	return &n
}

// extractPrecision returns p from "(p)" or "(p,s)".
func extractPrecision(sqlType string) *int {
	m := precisionPattern.FindStringSubmatch(sqlType)
	if m == nil {
		return nil
	}
	n, _ := strconv.Atoi(m[1])
	return &n
}

// extractScale returns 0 for "(p)" and s for "(p,s)".
func extractScale(sqlType string) *int {
	if bareScalePattern.MatchString(sqlType) {
		return sqltype.Int(0)
	}
	m := scalePattern.FindStringSubmatch(sqlType)
	if m == nil {
		return nil
	}
	n, _ := strconv.Atoi(m[2])
	return &n
}
