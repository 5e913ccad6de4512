package ini

import (
	"errors"
	"strings"

	shlex "github.com/anmitsu/go-shlex"
	"github.com/vk/hostgrid/internal/hostpattern"
	"github.com/vk/hostgrid/internal/literal"
	"github.com/zclconf/go-cty/cty"
)

// portVariable receives the port given as "host:port".
const portVariable = "ansible_port"

type hostVariable struct {
	key   string
	value cty.Value
}

// hostDefinition is one parsed host line: the expanded host names and the
// variables assigned to each of them, in source order.
type hostDefinition struct {
	names []string
	vars  []hostVariable
}

// parseHostDefinition reads "pattern [key=value ...] [# comment]". The line
// is split with shell quoting rules, so values may be quoted to contain
// spaces.
func parseHostDefinition(line string) (*hostDefinition, error) {
	tokens, err := shlex.Split(line, true)
	if err != nil {
		return nil, &ParseError{Expected: "host definition", Err: err}
	}
	tokens = stripComment(tokens)
	if len(tokens) == 0 {
		return nil, &ParseError{Expected: "host definition", Err: errors.New("no host name")}
	}

	names, port, err := hostpattern.ParseAndExpand(tokens[0])
	if err != nil {
		return nil, &ParseError{Expected: "host definition", Err: err}
	}

	def := &hostDefinition{names: names}
	if port != 0 {
		def.vars = append(def.vars, hostVariable{key: portVariable, value: cty.NumberIntVal(int64(port))})
	}
	for _, tok := range tokens[1:] {
		key, value, ok := strings.Cut(tok, "=")
		if !ok || key == "" {
			return nil, &ParseError{Expected: "key=value host variable assignment"}
		}
		def.vars = append(def.vars, hostVariable{key: key, value: literal.Coerce(value)})
	}
	return def, nil
}

// stripComment drops everything from the first token that starts a comment.
func stripComment(tokens []string) []string {
	for i, tok := range tokens {
		if strings.HasPrefix(tok, "#") {
			return tokens[:i]
		}
	}
	return tokens
}
