package database

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/koustreak/rsadapter/internal/sqltype"
)

// Column is a decoded table column.
type Column struct {
	Name            string       `json:"name"`
	SQLType         string       `json:"sql_type"`
	Default         *string      `json:"default,omitempty"`
	DefaultFunction *string      `json:"default_function,omitempty"`
	Null            bool         `json:"null"`
	Type            sqltype.Type `json:"type"`
	TypeOID         uint32       `json:"type_oid"`
	TypeModifier    *int32       `json:"type_modifier,omitempty"`
}

var (
	quotedDefault  = regexp.MustCompile(`(?s)^[(B]?'(.*)'::`)
	numericDefault = regexp.MustCompile(`^\(?(-?\d+(?:\.\d*)?)\)?(?:::bigint)?$`)
	functionCall   = regexp.MustCompile(`\w+"?\(.*\)`)
)

// BuildColumn decodes one catalog descriptor through the type map.
func BuildColumn(d ColumnDescriptor, types *TypeMap) (Column, error) {
	t, err := types.LookupOID(d.TypeOID, d.TypeModifier, d.FormattedType)
	if err != nil {
		return Column{}, fmt.Errorf("column %q: %w", d.Name, err)
	}

	col := Column{
		Name:         d.Name,
		SQLType:      d.FormattedType,
		Null:         !d.NotNull,
		Type:         t,
		TypeOID:      d.TypeOID,
		TypeModifier: d.TypeModifier,
	}
	if d.DefaultExpression != nil {
		col.Default, col.DefaultFunction = extractDefault(*d.DefaultExpression)
	}
	return col, nil
}

// extractDefault splits a catalog default expression into a literal value or
// a function the server evaluates. NULL defaults yield neither.
func extractDefault(expr string) (value, function *string) {
	expr = strings.TrimSpace(expr)
	switch {
	case quotedDefault.MatchString(expr):
		v := strings.ReplaceAll(quotedDefault.FindStringSubmatch(expr)[1], "''", "'")
		return &v, nil
	case expr == "true" || expr == "false":
		return &expr, nil
	case numericDefault.MatchString(expr):
		v := numericDefault.FindStringSubmatch(expr)[1]
		return &v, nil
	case strings.HasPrefix(strings.ToUpper(expr), "NULL"):
		return nil, nil
	case functionCall.MatchString(expr):
		return nil, &expr
	}
	return nil, nil
}
