package literal

import (
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/zclconf/go-cty/cty"
)

// Container evaluates a list ([...]), tuple ((...)) or map ({...}) literal.
// The text is parsed as an HCL expression and accepted only if every node is
// a literal: no variables, function calls or operators other than numeric
// negation. Python-style single quotes and the True, False and None keywords
// are accepted. Parentheses holding a comma, or nothing, form a tuple;
// otherwise they only group.
func Container(raw string) (cty.Value, bool) {
	if len(raw) < 2 {
		return cty.NilVal, false
	}
	first, last := raw[0], raw[len(raw)-1]
	if !(first == '[' && last == ']') && !(first == '{' && last == '}') && !(first == '(' && last == ')') {
		return cty.NilVal, false
	}

	src, ok := normalizeContainer(raw)
	if !ok {
		return cty.NilVal, false
	}

	expr, diags := hclsyntax.ParseExpression(tupleParens(src), "value", hcl.Pos{Line: 1, Column: 1})
	if diags.HasErrors() {
		return cty.NilVal, false
	}
	if diags := hclsyntax.VisitAll(expr, requireLiteral); diags.HasErrors() {
		return cty.NilVal, false
	}

	val, diags := expr.Value(nil)
	if diags.HasErrors() || !val.IsWhollyKnown() {
		return cty.NilVal, false
	}
	return val, true
}

func requireLiteral(node hclsyntax.Node) hcl.Diagnostics {
	switch n := node.(type) {
	case *hclsyntax.LiteralValueExpr,
		*hclsyntax.TemplateExpr,
		*hclsyntax.TupleConsExpr,
		*hclsyntax.ObjectConsExpr,
		*hclsyntax.ObjectConsKeyExpr,
		*hclsyntax.ParenthesesExpr:
		return nil
	case *hclsyntax.UnaryOpExpr:
		if n.Op == hclsyntax.OpNegate {
			return nil
		}
	}
	return hcl.Diagnostics{{
		Severity: hcl.DiagError,
		Summary:  "Non-literal expression",
		Detail:   "Only literal values are allowed in inventory variables.",
		Subject:  node.Range().Ptr(),
	}}
}

// normalizeContainer rewrites single-quoted strings as double-quoted ones and
// maps True, False and None outside strings onto their HCL spellings. It
// reports false for an unterminated string.
func normalizeContainer(raw string) (string, bool) {
	var sb strings.Builder
	for i := 0; i < len(raw); {
		c := raw[i]
		switch {
		case c == '"' || c == '\'':
			end := closingQuote(raw, i)
			if end < 0 {
				return "", false
			}
			body := raw[i+1 : end]
			if c == '\'' {
				body = requoteBody(body)
			}
			sb.WriteByte('"')
			sb.WriteString(body)
			sb.WriteByte('"')
			i = end + 1
		case isIdentStart(c):
			j := i
			for j < len(raw) && isIdentPart(raw[j]) {
				j++
			}
			switch word := raw[i:j]; word {
			case "True":
				sb.WriteString("true")
			case "False":
				sb.WriteString("false")
			case "None":
				sb.WriteString("null")
			default:
				sb.WriteString(word)
			}
			i = j
		default:
			sb.WriteByte(c)
			i++
		}
	}
	return sb.String(), true
}

// tupleParens turns every tuple-forming pair of parentheses in src into
// brackets. src must already be normalized, so all strings are double-quoted.
func tupleParens(src string) []byte {
	type opener struct {
		pos   int
		comma bool
	}
	b := []byte(src)
	var stack []opener
	for i := 0; i < len(b); i++ {
		switch b[i] {
		case '"':
			if end := closingQuote(src, i); end > 0 {
				i = end
			}
		case '(', '[', '{':
			stack = append(stack, opener{pos: i})
		case ',':
			if n := len(stack); n > 0 {
				stack[n-1].comma = true
			}
		case ')', ']', '}':
			n := len(stack)
			if n == 0 {
				continue
			}
			top := stack[n-1]
			stack = stack[:n-1]
			if b[i] != ')' || b[top.pos] != '(' {
				continue
			}
			if top.comma || strings.TrimSpace(src[top.pos+1:i]) == "" {
				b[top.pos], b[i] = '[', ']'
			}
		}
	}
	return b
}

func closingQuote(s string, start int) int {
	q := s[start]
	for i := start + 1; i < len(s); i++ {
		switch s[i] {
		case '\\':
			i++
		case q:
			return i
		}
	}
	return -1
}

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentPart(c byte) bool {
	return isIdentStart(c) || (c >= '0' && c <= '9')
}
