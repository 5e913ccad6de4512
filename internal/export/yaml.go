package export

import (
	"bytes"
	"fmt"
	"math/big"
	"sort"

	"github.com/vk/hostgrid/internal/inventory"
	"github.com/zclconf/go-cty/cty"
	"gopkg.in/yaml.v3"
)

// YAML returns the inventory as a nested YAML inventory rooted at "all".
// Children and hosts keep their registration order. A host's variables are
// written at its first appearance only.
func YAML(inv *inventory.Inventory) ([]byte, error) {
	w := &yamlWriter{seenHosts: make(map[*inventory.Host]bool)}
	root := mapping()
	addPair(root, inventory.AllGroup, w.group(inv.All(), make(map[*inventory.Group]bool)))

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(root); err != nil {
		return nil, fmt.Errorf("failed to encode inventory: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("failed to encode inventory: %w", err)
	}
	return buf.Bytes(), nil
}

type yamlWriter struct {
	seenHosts map[*inventory.Host]bool
}

// group builds the node for g. path guards against cycles in inventories
// parsed with cycles allowed.
func (w *yamlWriter) group(g *inventory.Group, path map[*inventory.Group]bool) *yaml.Node {
	path[g] = true
	defer delete(path, g)

	node := mapping()
	if hosts := g.Hosts(); len(hosts) > 0 {
		hostsNode := mapping()
		for _, h := range hosts {
			vars := map[string]cty.Value(nil)
			if !w.seenHosts[h] {
				w.seenHosts[h] = true
				vars = h.Vars()
			}
			addPair(hostsNode, h.Name(), varsNode(vars))
		}
		addPair(node, "hosts", hostsNode)
	}
	if vars := g.Vars(); len(vars) > 0 {
		addPair(node, "vars", varsNode(vars))
	}

	children := mapping()
	for _, c := range g.Children() {
		if path[c] {
			continue
		}
		addPair(children, c.Name(), w.group(c, path))
	}
	if len(children.Content) > 0 {
		addPair(node, "children", children)
	}
	return node
}

func mapping() *yaml.Node {
	return &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
}

func addPair(m *yaml.Node, key string, value *yaml.Node) {
	m.Content = append(m.Content, scalar("!!str", key), value)
}

func scalar(tag, value string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: tag, Value: value}
}

func varsNode(vars map[string]cty.Value) *yaml.Node {
	node := mapping()
	keys := make([]string, 0, len(vars))
	for k := range vars {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		addPair(node, k, valueNode(vars[k]))
	}
	return node
}

// valueNode converts a variable value into a YAML node.
func valueNode(v cty.Value) *yaml.Node {
	if v.IsNull() || !v.IsKnown() {
		return scalar("!!null", "null")
	}

	ty := v.Type()
	switch {
	case ty == cty.String:
		return scalar("!!str", v.AsString())
	case ty == cty.Bool:
		if v.True() {
			return scalar("!!bool", "true")
		}
		return scalar("!!bool", "false")
	case ty == cty.Number:
		return numberNode(v.AsBigFloat())
	case ty.IsTupleType() || ty.IsListType() || ty.IsSetType():
		seq := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
		for it := v.ElementIterator(); it.Next(); {
			_, elem := it.Element()
			seq.Content = append(seq.Content, valueNode(elem))
		}
		return seq
	case ty.IsObjectType() || ty.IsMapType():
		return varsNode(v.AsValueMap())
	}
	return scalar("!!str", v.GoString())
}

func numberNode(f *big.Float) *yaml.Node {
	if f.IsInt() {
		i, _ := f.Int(nil)
		return scalar("!!int", i.String())
	}
	return scalar("!!float", f.Text('g', -1))
}
