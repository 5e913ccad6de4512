package inventory

import "github.com/zclconf/go-cty/cty"

// Host is a named target machine carrying host-scoped variables.
type Host struct {
	name   string
	vars   map[string]cty.Value
	groups []*Group
}

// Name returns the host name.
func (h *Host) Name() string { return h.name }

// Groups returns the groups h was directly assigned to, in assignment order.
func (h *Host) Groups() []*Group { return append([]*Group(nil), h.groups...) }

// SetVariable sets a host-scoped variable. The last write wins.
func (h *Host) SetVariable(key string, value cty.Value) {
	h.vars[key] = value
}

// Variable returns a single host-scoped variable.
func (h *Host) Variable(key string) (cty.Value, bool) {
	v, ok := h.vars[key]
	return v, ok
}

// Vars returns a copy of the host-scoped variables.
func (h *Host) Vars() map[string]cty.Value {
	return copyVars(h.vars)
}

// VarNames returns the variable names in sorted order.
func (h *Host) VarNames() []string {
	return sortedKeys(h.vars)
}
