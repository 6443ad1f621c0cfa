package resolver

import (
	"encoding/json"
	"fmt"
	"strings"
)

// formatValue turns a resolved reference value into the text substituted at
// the reference's site. Condition expressions get CEL-literal formatting
// (quoted strings, bare null) since they are spliced into an expression
// string that is later parsed and evaluated; every other consumer gets the
// value's plain textual form.
func formatValue(value interface{}, forCondition bool) string {
	if forCondition {
		return formatForCondition(value)
	}
	return formatPlain(value)
}

func formatForCondition(value interface{}) string {
	switch v := value.(type) {
	case nil:
		return "null"
	case string:
		return quoteCELString(v)
	case bool:
		return fmt.Sprint(v)
	case float64, int, int64:
		return fmt.Sprint(v)
	default:
		b, err := json.Marshal(v)
		if err != nil {
			return "null"
		}
		return string(b)
	}
}

func formatPlain(value interface{}) string {
	switch v := value.(type) {
	case nil:
		return "null"
	case string:
		return v
	case bool, float64, int, int64:
		return fmt.Sprint(v)
	default:
		b, err := json.Marshal(v)
		if err != nil {
			return ""
		}
		return string(b)
	}
}

// quoteCELString renders s as a double-quoted CEL string literal.
func quoteCELString(s string) string {
	var b strings.Builder
	b.WriteByte('"')
	for _, r := range s {
		switch r {
		case '\\':
			b.WriteString(`\\`)
		case '"':
			b.WriteString(`\"`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		default:
			b.WriteRune(r)
		}
	}
	b.WriteByte('"')
	return b.String()
}
