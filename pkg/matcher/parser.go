package matcher

import (
	"strconv"
	"strings"
)

// ParseDefinition parses a compact matcher string of the form
// "type:value" into a Definition. Numeric values are decoded as
// float64, "true"/"false" as booleans, anything else stays a
// string. Without a colon the whole string is the type.
//
// Examples:
//
//	"be_nil"        -> {Type: "be_nil"}
//	"eq:hello"      -> {Type: "eq", Value: "hello"}
//	"<:10"          -> {Type: "<", Value: 10.0}
//	"!be_true"      -> {Type: "be_true", Negate: true}
func ParseDefinition(s string) Definition {
	var def Definition
	if strings.HasPrefix(s, "!") {
		def.Negate = true
		s = s[1:]
	}

	parts := strings.SplitN(s, ":", 2)
	def.Type = parts[0]
	if len(parts) > 1 {
		def.Value = parseScalar(parts[1])
	}
	return def
}

func parseScalar(s string) any {
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	if b, err := strconv.ParseBool(s); err == nil {
		return b
	}
	return s
}
