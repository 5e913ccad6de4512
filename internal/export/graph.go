package export

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/vk/hostgrid/internal/inventory"
)

// Graph writes the hierarchy below root as an indented tree:
//
//	@all:
//	  |--@ungrouped:
//	  |--@prod:
//	  |  |--@web:
//	  |  |  |--web1
//
// Child groups come first, then hosts, each sorted by name. Hosts assigned
// directly to "all" are not listed. With vars set, each group's and host's
// own variables follow its line.
func Graph(w io.Writer, root *inventory.Group, vars bool) error {
	gw := &graphWriter{w: w, vars: vars, path: make(map[*inventory.Group]bool)}
	gw.group(root, 0)
	return gw.err
}

type graphWriter struct {
	w    io.Writer
	vars bool
	path map[*inventory.Group]bool
	err  error
}

func (gw *graphWriter) line(depth int, text string) {
	if gw.err != nil {
		return
	}
	if depth > 0 {
		text = strings.Repeat("  |", depth) + "--" + text
	}
	_, gw.err = fmt.Fprintln(gw.w, text)
}

func (gw *graphWriter) group(g *inventory.Group, depth int) {
	gw.line(depth, "@"+g.Name()+":")
	if gw.path[g] {
		return
	}
	gw.path[g] = true
	defer delete(gw.path, g)

	depth++
	if gw.vars {
		gw.variables(depth, g.VarNames(), func(k string) string {
			v, _ := g.Variable(k)
			return formatValue(v)
		})
	}

	children := g.Children()
	sort.Slice(children, func(i, j int) bool { return children[i].Name() < children[j].Name() })
	for _, c := range children {
		gw.group(c, depth)
	}

	if g.Name() == inventory.AllGroup {
		return
	}
	hosts := g.Hosts()
	sort.Slice(hosts, func(i, j int) bool { return hosts[i].Name() < hosts[j].Name() })
	for _, h := range hosts {
		gw.line(depth, h.Name())
		if gw.vars {
			gw.variables(depth+1, h.VarNames(), func(k string) string {
				v, _ := h.Variable(k)
				return formatValue(v)
			})
		}
	}
}

func (gw *graphWriter) variables(depth int, keys []string, value func(string) string) {
	for _, k := range keys {
		gw.line(depth, "{"+k+" = "+value(k)+"}")
	}
}
