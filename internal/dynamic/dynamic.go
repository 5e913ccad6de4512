// Package dynamic loads the JSON document printed by an external inventory
// script ("script --list") into an inventory model.
//
// The document maps group names either to a list of host names or to an
// object with optional "hosts", "vars" and "children" members. The reserved
// "_meta" member carries per-host variables under "hostvars":
//
//	{
//	  "web":  ["web1", "web2"],
//	  "prod": {"children": ["web"], "vars": {"env": "prod"}},
//	  "_meta": {"hostvars": {"web1": {"http_port": 80}}}
//	}
//
// Members are applied in name order, so the result does not depend on the
// key order of the document.
package dynamic

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/vk/hostgrid/internal/ctxlog"
	"github.com/vk/hostgrid/internal/inventory"
	"github.com/zclconf/go-cty/cty"
	ctyjson "github.com/zclconf/go-cty/cty/json"
)

const metaKey = "_meta"

// ErrInvalidDocument is wrapped by every error caused by the shape of the
// document rather than by I/O.
var ErrInvalidDocument = errors.New("invalid inventory document")

// DocumentError points at the member of the document that could not be
// loaded.
type DocumentError struct {
	File string
	// Path is the member path, for example "prod.children[1]".
	Path string
	Err  error
}

func (e *DocumentError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("%s: %v", e.File, e.Err)
	}
	return fmt.Sprintf("%s: %s: %v", e.File, e.Path, e.Err)
}

func (e *DocumentError) Unwrap() error { return e.Err }

// LoadFile reads the document at path. A path of "-" reads standard input.
func LoadFile(ctx context.Context, path string, opts ...inventory.Option) (*inventory.Inventory, error) {
	if path == "-" {
		return Load(ctx, "<stdin>", os.Stdin, opts...)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open inventory: %w", err)
	}
	defer f.Close()

	return Load(ctx, path, f, opts...)
}

// Load decodes a document from r. name is used in error messages only.
func Load(ctx context.Context, name string, r io.Reader, opts ...inventory.Option) (*inventory.Inventory, error) {
	logger := ctxlog.FromContext(ctx)

	src, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read inventory %s: %w", name, err)
	}

	ty, err := ctyjson.ImpliedType(src)
	if err != nil {
		return nil, &DocumentError{File: name, Err: fmt.Errorf("%w: %v", ErrInvalidDocument, err)}
	}
	if !ty.IsObjectType() {
		return nil, &DocumentError{File: name, Err: fmt.Errorf("%w: top level must be an object, got %s", ErrInvalidDocument, ty.FriendlyName())}
	}
	doc, err := ctyjson.Unmarshal(src, ty)
	if err != nil {
		return nil, &DocumentError{File: name, Err: fmt.Errorf("%w: %v", ErrInvalidDocument, err)}
	}

	l := &loader{file: name, inv: inventory.New(opts...)}
	for it := doc.ElementIterator(); it.Next(); {
		k, v := it.Element()
		group := k.AsString()
		if group == metaKey {
			continue
		}
		if err := l.loadGroup(group, v); err != nil {
			return nil, err
		}
		logger.Debug("Loaded group.", "group", group)
	}
	if ty.HasAttribute(metaKey) {
		if err := l.loadMeta(doc.GetAttr(metaKey)); err != nil {
			return nil, err
		}
	}

	if err := l.inv.Finalize(); err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	logger.Debug("Dynamic inventory loaded.",
		"file", name,
		"groups", len(l.inv.Groups()),
		"hosts", len(l.inv.Hosts()),
	)
	return l.inv, nil
}

type loader struct {
	file string
	inv  *inventory.Inventory
}

func (l *loader) fail(path string, format string, args ...any) error {
	return &DocumentError{File: l.file, Path: path, Err: fmt.Errorf("%w: "+format, append([]any{ErrInvalidDocument}, args...)...)}
}

// loadGroup applies one group member, which is either a host list or a
// group object.
func (l *loader) loadGroup(name string, v cty.Value) error {
	g := l.inv.GetOrCreateGroup(name)
	if v.IsNull() {
		return nil
	}

	ty := v.Type()
	if ty.IsTupleType() || ty.IsListType() {
		return l.addHosts(g, name, v)
	}
	if !ty.IsObjectType() {
		return l.fail(name, "expected a host list or an object, got %s", ty.FriendlyName())
	}

	for attr := range ty.AttributeTypes() {
		switch attr {
		case "hosts", "vars", "children":
		default:
			return l.fail(name, "unexpected member %q", attr)
		}
	}
	if ty.HasAttribute("hosts") {
		if err := l.addHosts(g, name+".hosts", v.GetAttr("hosts")); err != nil {
			return err
		}
	}
	if ty.HasAttribute("vars") {
		vars, err := l.vars(name+".vars", v.GetAttr("vars"))
		if err != nil {
			return err
		}
		for k, val := range vars {
			g.SetVariable(k, val)
		}
	}
	if ty.HasAttribute("children") {
		children, err := l.names(name+".children", v.GetAttr("children"))
		if err != nil {
			return err
		}
		for i, child := range children {
			if err := g.AddChildGroup(l.inv.GetOrCreateGroup(child)); err != nil {
				return &DocumentError{File: l.file, Path: fmt.Sprintf("%s.children[%d]", name, i), Err: err}
			}
		}
	}
	return nil
}

func (l *loader) addHosts(g *inventory.Group, path string, v cty.Value) error {
	hosts, err := l.names(path, v)
	if err != nil {
		return err
	}
	for _, h := range hosts {
		g.AddHost(l.inv.GetOrCreateHost(h))
	}
	return nil
}

// loadMeta applies "_meta.hostvars". A host that no group lists is placed in
// "ungrouped".
func (l *loader) loadMeta(meta cty.Value) error {
	if meta.IsNull() {
		return nil
	}
	if !meta.Type().IsObjectType() {
		return l.fail(metaKey, "expected an object, got %s", meta.Type().FriendlyName())
	}
	if !meta.Type().HasAttribute("hostvars") {
		return nil
	}

	hostvars := meta.GetAttr("hostvars")
	if hostvars.IsNull() {
		return nil
	}
	if !hostvars.Type().IsObjectType() {
		return l.fail(metaKey+".hostvars", "expected an object, got %s", hostvars.Type().FriendlyName())
	}

	for it := hostvars.ElementIterator(); it.Next(); {
		k, v := it.Element()
		name := k.AsString()
		vars, err := l.vars(metaKey+".hostvars."+name, v)
		if err != nil {
			return err
		}

		h, ok := l.inv.Host(name)
		if !ok {
			h = l.inv.GetOrCreateHost(name)
			l.inv.Ungrouped().AddHost(h)
		}
		for key, val := range vars {
			h.SetVariable(key, val)
		}
	}
	return nil
}

// names reads a list of strings.
func (l *loader) names(path string, v cty.Value) ([]string, error) {
	if v.IsNull() {
		return nil, nil
	}
	ty := v.Type()
	if !ty.IsTupleType() && !ty.IsListType() {
		return nil, l.fail(path, "expected a list of names, got %s", ty.FriendlyName())
	}

	var out []string
	for it := v.ElementIterator(); it.Next(); {
		idx, elem := it.Element()
		i, _ := idx.AsBigFloat().Int64()
		if elem.IsNull() || elem.Type() != cty.String {
			return nil, l.fail(fmt.Sprintf("%s[%d]", path, i), "expected a string, got %s", elem.Type().FriendlyName())
		}
		if elem.AsString() == "" {
			return nil, l.fail(fmt.Sprintf("%s[%d]", path, i), "empty name")
		}
		out = append(out, elem.AsString())
	}
	return out, nil
}

// vars reads a variable object. Values are kept as decoded.
func (l *loader) vars(path string, v cty.Value) (map[string]cty.Value, error) {
	if v.IsNull() {
		return nil, nil
	}
	if !v.Type().IsObjectType() {
		return nil, l.fail(path, "expected an object of variables, got %s", v.Type().FriendlyName())
	}
	return v.AsValueMap(), nil
}
