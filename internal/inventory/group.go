package inventory

import (
	"fmt"
	"sort"

	"github.com/zclconf/go-cty/cty"
)

// Group is a named collection of hosts and child groups carrying
// group-scoped variables.
// Parent and child links live in the inventory's hierarchy graph.
type Group struct {
	name  string
	inv   *Inventory
	hosts []*Host
	vars  map[string]cty.Value
}

// Name returns the group name.
func (g *Group) Name() string { return g.name }

// Children returns the direct child groups in insertion order.
func (g *Group) Children() []*Group {
	return g.inv.groupsNamed(g.inv.hierarchy.Successors(g.name))
}

// Parents returns the direct parent groups in insertion order.
func (g *Group) Parents() []*Group {
	return g.inv.groupsNamed(g.inv.hierarchy.Predecessors(g.name))
}

// Hosts returns the directly assigned hosts in insertion order.
func (g *Group) Hosts() []*Host { return append([]*Host(nil), g.hosts...) }

// AddChildGroup links child under g in both directions. Adding an existing
// edge is a no-op. A *CycleError is returned when child is g itself or, unless
// the inventory allows cycles, one of g's ancestors.
func (g *Group) AddChildGroup(child *Group) error {
	if child == nil {
		return fmt.Errorf("nil child group for %q", g.name)
	}
	if child.inv != g.inv {
		return fmt.Errorf("adding %q to %q: %w", child.name, g.name, ErrForeignGroup)
	}
	if child.name == AllGroup {
		return ErrRootChild
	}
	if child == g {
		return &CycleError{Parent: g.name, Child: child.name}
	}

	h := g.inv.hierarchy
	if h.HasEdge(g.name, child.name) {
		return nil
	}
	if !g.inv.allowCycles && h.Reachable(child.name, g.name) {
		return &CycleError{Parent: g.name, Child: child.name}
	}
	if _, err := h.AddEdge(g.name, child.name); err != nil {
		return fmt.Errorf("linking %q under %q: %w", child.name, g.name, err)
	}
	return nil
}

// AddHost assigns h to g and records the membership on h. It is idempotent.
func (g *Group) AddHost(h *Host) {
	for _, existing := range g.hosts {
		if existing == h {
			return
		}
	}
	g.hosts = append(g.hosts, h)
	h.groups = append(h.groups, g)
}

// HasHost reports whether h is directly assigned to g.
func (g *Group) HasHost(h *Host) bool {
	for _, existing := range g.hosts {
		if existing == h {
			return true
		}
	}
	return false
}

// SetVariable sets a group-scoped variable. The last write wins.
func (g *Group) SetVariable(key string, value cty.Value) {
	g.vars[key] = value
}

// Variable returns a single group-scoped variable.
func (g *Group) Variable(key string) (cty.Value, bool) {
	v, ok := g.vars[key]
	return v, ok
}

// Vars returns a copy of the group-scoped variables.
func (g *Group) Vars() map[string]cty.Value {
	return copyVars(g.vars)
}

// VarNames returns the variable names in sorted order.
func (g *Group) VarNames() []string {
	return sortedKeys(g.vars)
}

// Depth is 0 for a group without parents, otherwise one more than the
// deepest parent.
func (g *Group) Depth() int {
	return g.depth(make(map[*Group]int), make(map[*Group]bool))
}

func (g *Group) depth(memo map[*Group]int, visiting map[*Group]bool) int {
	if d, ok := memo[g]; ok {
		return d
	}
	if visiting[g] {
		// Only reachable when cycles are allowed.
		return 0
	}
	visiting[g] = true
	d := 0
	for _, p := range g.Parents() {
		if pd := p.depth(memo, visiting) + 1; pd > d {
			d = pd
		}
	}
	delete(visiting, g)
	memo[g] = d
	return d
}

// Ancestors returns every group reachable through parent links, nearest
// first, without duplicates.
func (g *Group) Ancestors() []*Group {
	return walk(g.Parents(), (*Group).Parents, g)
}

// Descendants returns every group reachable through child links, nearest
// first, without duplicates.
func (g *Group) Descendants() []*Group {
	return walk(g.Children(), (*Group).Children, g)
}

// AllHosts returns the hosts of g and of all its descendants, without
// duplicates, in discovery order.
func (g *Group) AllHosts() []*Host {
	seen := make(map[*Host]bool)
	var out []*Host
	for _, grp := range append([]*Group{g}, g.Descendants()...) {
		for _, h := range grp.hosts {
			if !seen[h] {
				seen[h] = true
				out = append(out, h)
			}
		}
	}
	return out
}

func walk(start []*Group, next func(*Group) []*Group, self *Group) []*Group {
	seen := map[*Group]bool{self: true}
	var out []*Group
	queue := append([]*Group(nil), start...)
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if seen[cur] {
			continue
		}
		seen[cur] = true
		out = append(out, cur)
		queue = append(queue, next(cur)...)
	}
	return out
}

func copyVars(in map[string]cty.Value) map[string]cty.Value {
	out := make(map[string]cty.Value, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

func sortedKeys(in map[string]cty.Value) []string {
	keys := make([]string, 0, len(in))
	for k := range in {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
