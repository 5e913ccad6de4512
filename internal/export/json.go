// Package export renders an inventory for other tools: the JSON document an
// inventory script prints for "--list", a nested YAML inventory and a plain
// text tree of the group hierarchy.
package export

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/vk/hostgrid/internal/inventory"
	"github.com/zclconf/go-cty/cty"
	ctyjson "github.com/zclconf/go-cty/cty/json"
)

// JSON returns the inventory as a dynamic inventory document. Group
// variables stay on their groups and "_meta.hostvars" holds each host's own
// variables, so loading the document again reproduces the inventory.
func JSON(inv *inventory.Inventory) ([]byte, error) {
	doc := make(map[string]cty.Value, len(inv.Groups())+1)
	for _, g := range inv.Groups() {
		doc[g.Name()] = groupValue(g)
	}

	hostvars := make(map[string]cty.Value)
	for _, h := range inv.Hosts() {
		if vars := h.Vars(); len(vars) > 0 {
			hostvars[h.Name()] = cty.ObjectVal(vars)
		}
	}
	doc["_meta"] = cty.ObjectVal(map[string]cty.Value{"hostvars": cty.ObjectVal(hostvars)})

	return marshal(cty.ObjectVal(doc))
}

// HostJSON returns the effective variables of h, the answer to an
// inventory script's "--host" query.
func HostJSON(inv *inventory.Inventory, h *inventory.Host) ([]byte, error) {
	return marshal(cty.ObjectVal(inv.HostVars(h)))
}

func groupValue(g *inventory.Group) cty.Value {
	attrs := make(map[string]cty.Value)
	if hosts := g.Hosts(); len(hosts) > 0 {
		names := make([]cty.Value, 0, len(hosts))
		for _, h := range hosts {
			names = append(names, cty.StringVal(h.Name()))
		}
		attrs["hosts"] = cty.ListVal(names)
	}
	if children := g.Children(); len(children) > 0 {
		names := make([]cty.Value, 0, len(children))
		for _, c := range children {
			names = append(names, cty.StringVal(c.Name()))
		}
		attrs["children"] = cty.ListVal(names)
	}
	if vars := g.Vars(); len(vars) > 0 {
		attrs["vars"] = cty.ObjectVal(vars)
	}
	return cty.ObjectVal(attrs)
}

// marshal encodes v as indented JSON.
func marshal(v cty.Value) ([]byte, error) {
	v, err := concreteNulls(v)
	if err != nil {
		return nil, err
	}
	raw, err := ctyjson.Marshal(v, v.Type())
	if err != nil {
		return nil, fmt.Errorf("failed to encode inventory: %w", err)
	}

	var out bytes.Buffer
	if err := json.Indent(&out, raw, "", "    "); err != nil {
		return nil, fmt.Errorf("failed to format inventory: %w", err)
	}
	out.WriteByte('\n')
	return out.Bytes(), nil
}

// concreteNulls gives untyped nulls a string type. cty/json would otherwise
// encode them with a type wrapper instead of a plain null.
func concreteNulls(v cty.Value) (cty.Value, error) {
	return cty.Transform(v, func(_ cty.Path, v cty.Value) (cty.Value, error) {
		if v.IsNull() && v.Type() == cty.DynamicPseudoType {
			return cty.NullVal(cty.String), nil
		}
		return v, nil
	})
}

// formatValue renders v on one line: strings as they are, anything else as
// compact JSON.
func formatValue(v cty.Value) string {
	if !v.IsNull() && v.Type() == cty.String {
		return v.AsString()
	}
	v, err := concreteNulls(v)
	if err != nil {
		return v.GoString()
	}
	raw, err := ctyjson.Marshal(v, v.Type())
	if err != nil {
		return v.GoString()
	}
	return string(raw)
}
