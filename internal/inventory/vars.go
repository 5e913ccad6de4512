package inventory

import (
	"sort"

	"github.com/zclconf/go-cty/cty"
)

// HostGroups returns the direct groups of h together with all of their
// ancestors, ordered by depth and then by name. This is the order in which
// group variables are layered for h.
func (inv *Inventory) HostGroups(h *Host) []*Group {
	seen := make(map[*Group]bool)
	var groups []*Group
	for _, g := range h.groups {
		for _, grp := range append([]*Group{g}, g.Ancestors()...) {
			if !seen[grp] {
				seen[grp] = true
				groups = append(groups, grp)
			}
		}
	}

	depths := make(map[*Group]int, len(groups))
	visiting := make(map[*Group]bool)
	for _, g := range groups {
		depths[g] = g.depth(depths, visiting)
	}
	sort.SliceStable(groups, func(i, j int) bool {
		if depths[groups[i]] != depths[groups[j]] {
			return depths[groups[i]] < depths[groups[j]]
		}
		return groups[i].name < groups[j].name
	})
	return groups
}

// HostVars resolves the effective variables of h: group variables from
// shallow to deep groups, then the host's own variables. Later layers win.
func (inv *Inventory) HostVars(h *Host) map[string]cty.Value {
	out := make(map[string]cty.Value)
	for _, g := range inv.HostGroups(h) {
		for k, v := range g.vars {
			out[k] = v
		}
	}
	for k, v := range h.vars {
		out[k] = v
	}
	return out
}
