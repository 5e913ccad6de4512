// Package literal turns the raw text of an inventory variable into a typed
// cty.Value. Coercion follows a fixed precedence so that the same text always
// yields the same type:
//
//  1. text containing '#' is kept verbatim
//  2. booleans (true, True, false, False)
//  3. null (None, null)
//  4. integers (decimal, 0x, 0o, 0b, underscores)
//  5. floats
//  6. single- or double-quoted strings, unwrapped
//  7. list, tuple and map literals, evaluated as literal-only HCL expressions
//  8. anything else is a plain string
//
// Coercion never fails: malformed literals fall back to the raw string.
package literal

import (
	"math/big"
	"regexp"
	"strconv"
	"strings"

	"github.com/zclconf/go-cty/cty"
)

var (
	decimalIntPattern  = regexp.MustCompile(`^[-+]?(0|[1-9](_?[0-9])*)$`)
	prefixedIntPattern = regexp.MustCompile(`^[-+]?0([xX](_?[0-9a-fA-F])+|[oO](_?[0-7])+|[bB](_?[01])+)$`)
	pointFloatPattern  = regexp.MustCompile(`^[-+]?([0-9](_?[0-9])*\.([0-9](_?[0-9])*)?|\.[0-9](_?[0-9])*)([eE][-+]?[0-9](_?[0-9])*)?$`)
	expFloatPattern    = regexp.MustCompile(`^[-+]?[0-9](_?[0-9])*[eE][-+]?[0-9](_?[0-9])*$`)
)

// Coerce converts trimmed variable text into a cty.Value.
func Coerce(raw string) cty.Value {
	if strings.Contains(raw, "#") {
		return cty.StringVal(raw)
	}
	if v, ok := Bool(raw); ok {
		return v
	}
	if raw == "None" || raw == "null" {
		return cty.NullVal(cty.DynamicPseudoType)
	}
	if v, ok := Int(raw); ok {
		return v
	}
	if v, ok := Float(raw); ok {
		return v
	}
	if s, ok := Unquote(raw); ok {
		return cty.StringVal(s)
	}
	if v, ok := Container(raw); ok {
		return v
	}
	return cty.StringVal(raw)
}

// Bool recognizes boolean literals.
func Bool(raw string) (cty.Value, bool) {
	switch raw {
	case "true", "True":
		return cty.True, true
	case "false", "False":
		return cty.False, true
	}
	return cty.NilVal, false
}

// Int recognizes integer literals. Decimal literals with a leading zero are
// not integers.
func Int(raw string) (cty.Value, bool) {
	if !decimalIntPattern.MatchString(raw) && !prefixedIntPattern.MatchString(raw) {
		return cty.NilVal, false
	}
	if n, err := strconv.ParseInt(raw, 0, 64); err == nil {
		return cty.NumberIntVal(n), true
	}

	// Out of int64 range.
	clean := strings.TrimPrefix(strings.ReplaceAll(raw, "_", ""), "+")
	bi, ok := new(big.Int).SetString(clean, 0)
	if !ok {
		return cty.NilVal, false
	}
	return cty.NumberVal(new(big.Float).SetInt(bi)), true
}

// Float recognizes decimal floating point literals. Spellings such as inf or
// NaN are not literals.
func Float(raw string) (cty.Value, bool) {
	if !pointFloatPattern.MatchString(raw) && !expFloatPattern.MatchString(raw) {
		return cty.NilVal, false
	}
	f, err := strconv.ParseFloat(strings.ReplaceAll(raw, "_", ""), 64)
	if err != nil {
		return cty.NilVal, false
	}
	return cty.NumberFloatVal(f), true
}

// Unquote unwraps a single- or double-quoted string, processing escapes.
func Unquote(raw string) (string, bool) {
	if len(raw) < 2 {
		return "", false
	}
	first, last := raw[0], raw[len(raw)-1]
	if first != last || (first != '"' && first != '\'') {
		return "", false
	}
	if first == '\'' {
		raw = `"` + requoteBody(raw[1:len(raw)-1]) + `"`
	}
	s, err := strconv.Unquote(raw)
	if err != nil {
		return "", false
	}
	return s, true
}

// requoteBody rewrites the body of a single-quoted string so it is valid
// inside double quotes.
func requoteBody(body string) string {
	var sb strings.Builder
	for i := 0; i < len(body); i++ {
		c := body[i]
		switch {
		case c == '\\' && i+1 < len(body) && body[i+1] == '\'':
			sb.WriteByte('\'')
			i++
		case c == '\\' && i+1 < len(body):
			sb.WriteByte(c)
			sb.WriteByte(body[i+1])
			i++
		case c == '"':
			sb.WriteString(`\"`)
		default:
			sb.WriteByte(c)
		}
	}
	return sb.String()
}
