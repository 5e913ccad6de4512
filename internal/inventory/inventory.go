package inventory

import (
	"fmt"

	"github.com/vk/hostgrid/internal/dag"
	"github.com/zclconf/go-cty/cty"
)

const (
	// AllGroup is the implicit root of every inventory.
	AllGroup = "all"
	// UngroupedGroup collects hosts declared before any section header.
	UngroupedGroup = "ungrouped"
)

// Option configures an Inventory.
type Option func(*Inventory)

// AllowCycles disables cycle rejection in Group.AddChildGroup. A group can
// still never be its own direct child. Callers that enable this should run
// Validate before traversing the hierarchy. Finalize attaches a group that is
// only reachable through a cycle under "all", unless a group registered
// before it already leads there.
func AllowCycles() Option {
	return func(inv *Inventory) {
		inv.allowCycles = true
	}
}

// Inventory owns the group and host registries of one parse.
type Inventory struct {
	groups     map[string]*Group
	groupOrder []*Group
	hosts      map[string]*Host
	hostOrder  []*Host

	// hierarchy mirrors the parent -> child edges of groups.
	hierarchy   *dag.Graph
	allowCycles bool
}

// New returns an inventory holding only the "all" and "ungrouped" groups.
func New(opts ...Option) *Inventory {
	inv := &Inventory{
		groups:    make(map[string]*Group),
		hosts:     make(map[string]*Host),
		hierarchy: dag.New(),
	}
	for _, opt := range opts {
		opt(inv)
	}
	inv.GetOrCreateGroup(AllGroup)
	inv.GetOrCreateGroup(UngroupedGroup)
	return inv
}

// GetOrCreateGroup returns the group registered under name, creating and
// registering it on first use.
func (inv *Inventory) GetOrCreateGroup(name string) *Group {
	if g, ok := inv.groups[name]; ok {
		return g
	}
	g := &Group{
		name: name,
		inv:  inv,
		vars: make(map[string]cty.Value),
	}
	inv.groups[name] = g
	inv.groupOrder = append(inv.groupOrder, g)
	inv.hierarchy.AddNode(name)
	return g
}

// GetOrCreateHost returns the host registered under name, creating and
// registering it on first use.
func (inv *Inventory) GetOrCreateHost(name string) *Host {
	if h, ok := inv.hosts[name]; ok {
		return h
	}
	h := &Host{
		name: name,
		vars: make(map[string]cty.Value),
	}
	inv.hosts[name] = h
	inv.hostOrder = append(inv.hostOrder, h)
	return h
}

// Group looks up a group by name.
func (inv *Inventory) Group(name string) (*Group, bool) {
	g, ok := inv.groups[name]
	return g, ok
}

// Host looks up a host by name.
func (inv *Inventory) Host(name string) (*Host, bool) {
	h, ok := inv.hosts[name]
	return h, ok
}

// HasGroup reports whether a group with the given name is registered.
func (inv *Inventory) HasGroup(name string) bool {
	_, ok := inv.groups[name]
	return ok
}

// Groups returns every group in registration order.
func (inv *Inventory) Groups() []*Group {
	return append([]*Group(nil), inv.groupOrder...)
}

// Hosts returns every host in registration order.
func (inv *Inventory) Hosts() []*Host {
	return append([]*Host(nil), inv.hostOrder...)
}

// All returns the root group.
func (inv *Inventory) All() *Group {
	return inv.groups[AllGroup]
}

// Ungrouped returns the group of hosts declared outside any section.
func (inv *Inventory) Ungrouped() *Group {
	return inv.groups[UngroupedGroup]
}

// Finalize attaches every top-level group other than "all" as a child of
// "all". It is idempotent: attached groups are no longer top-level.
func (inv *Inventory) Finalize() error {
	all := inv.All()
	// Attaching a top-level group never changes whether another group has
	// parents, so one memo serves the whole pass.
	memo, visiting := make(map[*Group]int), make(map[*Group]bool)
	for _, g := range inv.groupOrder {
		if g == all || g.depth(memo, visiting) != 0 {
			continue
		}
		if err := all.AddChildGroup(g); err != nil {
			return fmt.Errorf("attaching %q to %q: %w", g.name, AllGroup, err)
		}
	}
	if !inv.allowCycles {
		return nil
	}

	// A group whose every ancestor sits on a cycle has no top-level ancestor.
	reached := map[*Group]bool{all: true}
	for _, d := range all.Descendants() {
		reached[d] = true
	}
	for _, g := range inv.groupOrder {
		if reached[g] {
			continue
		}
		if err := all.AddChildGroup(g); err != nil {
			return fmt.Errorf("attaching %q to %q: %w", g.name, AllGroup, err)
		}
		reached[g] = true
		for _, d := range g.Descendants() {
			reached[d] = true
		}
	}
	return nil
}

// groupsNamed maps hierarchy node IDs back to their groups. Every group
// registers its node on creation, so err is only set for foreign names.
func (inv *Inventory) groupsNamed(names []string, err error) []*Group {
	if err != nil {
		return nil
	}
	out := make([]*Group, 0, len(names))
	for _, name := range names {
		if g, ok := inv.groups[name]; ok {
			out = append(out, g)
		}
	}
	return out
}

// Validate reports a cycle in the group hierarchy, which can only exist when
// the inventory was created with AllowCycles.
func (inv *Inventory) Validate() error {
	if err := inv.hierarchy.DetectCycles(); err != nil {
		return fmt.Errorf("invalid group hierarchy: %w", err)
	}
	return nil
}
