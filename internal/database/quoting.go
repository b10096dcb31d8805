package database

import (
	"encoding/hex"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// QuoteIdent wraps a SQL identifier in double-quotes (ANSI standard).
// This safely handles reserved words and mixed-case names.
func QuoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// QuoteTableName quotes a possibly schema-qualified name such as
// "analytics.events". Parts that are already quoted are left alone.
func QuoteTableName(name string) string {
	schema, table, ok := splitQualified(name)
	if !ok {
		return quotePart(name)
	}
	return quotePart(schema) + "." + quotePart(table)
}

func quotePart(p string) string {
	if len(p) >= 2 && strings.HasPrefix(p, `"`) && strings.HasSuffix(p, `"`) {
		return p
	}
	return QuoteIdent(p)
}

// splitQualified splits on the first dot outside double quotes.
func splitQualified(name string) (string, string, bool) {
	inQuotes := false
	for i, r := range name {
		switch r {
		case '"':
			inQuotes = !inQuotes
		case '.':
			if !inQuotes {
				return name[:i], name[i+1:], true
			}
		}
	}
	return "", "", false
}

// Quote renders v as a SQL literal.
func Quote(v any) string {
	switch x := v.(type) {
	case nil:
		return "NULL"
	case string:
		return quoteString(x)
	case []byte:
		return `'\x` + hex.EncodeToString(x) + `'`
	case bool:
		if x {
			return "TRUE"
		}
		return "FALSE"
	case int:
		return strconv.Itoa(x)
	case int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return fmt.Sprintf("%d", x)
	case float32:
		return quoteFloat(float64(x))
	case float64:
		return quoteFloat(x)
	case decimal.Decimal:
		return x.String()
	case time.Time:
		return quoteString(x.Format(time.RFC3339Nano))
	case fmt.Stringer:
		return quoteString(x.String())
	}
	return quoteString(fmt.Sprint(v))
}

func quoteString(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

func quoteFloat(f float64) string {
	switch {
	case math.IsNaN(f):
		return "'NaN'"
	case math.IsInf(f, 1):
		return "'Infinity'"
	case math.IsInf(f, -1):
		return "'-Infinity'"
	}
	return strconv.FormatFloat(f, 'g', -1, 64)
}
