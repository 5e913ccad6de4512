package ini

import (
	"context"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/vk/hostgrid/internal/ctxlog"
	"github.com/vk/hostgrid/internal/inventory"
	"github.com/vk/hostgrid/internal/literal"
)

var (
	// sectionPattern matches [name], [name:vars] and [name:children],
	// ignoring trailing whitespace and the start of a comment.
	sectionPattern = regexp.MustCompile(`^\[([^:\]\s]+)(?::(vars|children))?\]\s*#*`)
	// unknownSectionPattern matches a header whose tag is neither vars nor
	// children. Host ranges such as [a:c].example.com do not match.
	unknownSectionPattern = regexp.MustCompile(`^\[([^:\]\s]+):(\w+)\]\s*(?:[#;].*)?$`)
	// groupNamePattern matches a bare group name on a :children line.
	groupNamePattern = regexp.MustCompile(`^([^:\]\s]+)\s*(?:[#;].*)?$`)
)

// sectionKind tells the parser how to read lines inside a section.
type sectionKind int

const (
	kindHosts sectionKind = iota
	kindVars
	kindChildren
)

func (k sectionKind) String() string {
	switch k {
	case kindHosts:
		return "hosts"
	case kindVars:
		return "vars"
	case kindChildren:
		return "children"
	}
	return fmt.Sprintf("sectionKind(%d)", int(k))
}

func kindFromTag(tag string) sectionKind {
	switch tag {
	case "vars":
		return kindVars
	case "children":
		return kindChildren
	}
	return kindHosts
}

// pendingDeclaration records a forward reference to a group that has not
// been declared yet.
type pendingDeclaration struct {
	kind   sectionKind
	group  string
	parent string
	line   int
	loc    location
}

// Option configures a parse.
type Option func(*options)

type options struct {
	inventory []inventory.Option
}

// AllowCycles lets ":children" sections form cycles between groups instead of
// failing the parse. Callers should run Inventory.Validate afterwards.
func AllowCycles() Option {
	return func(o *options) {
		o.inventory = append(o.inventory, inventory.AllowCycles())
	}
}

// parser holds the state of a single pass over one input.
type parser struct {
	filename string
	src      []byte
	inv      *inventory.Inventory

	section string
	kind    sectionKind

	pending      map[string]*pendingDeclaration
	pendingOrder []string
}

// ParseFile reads and parses the inventory file at path.
func ParseFile(ctx context.Context, path string, opts ...Option) (*inventory.Inventory, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open inventory: %w", err)
	}
	defer f.Close()

	return Parse(ctx, path, f, opts...)
}

// ParseString parses an inventory held in memory. filename is used in error
// messages only.
func ParseString(ctx context.Context, filename, content string, opts ...Option) (*inventory.Inventory, error) {
	return Parse(ctx, filename, strings.NewReader(content), opts...)
}

// Parse reads all of r and parses it as an inventory. filename is used in
// error messages only. On error no inventory is returned.
func Parse(ctx context.Context, filename string, r io.Reader, opts ...Option) (*inventory.Inventory, error) {
	logger := ctxlog.FromContext(ctx)

	var o options
	for _, opt := range opts {
		opt(&o)
	}

	src, err := readSource(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read inventory %s: %w", filename, err)
	}

	p := &parser{
		filename: filename,
		src:      src,
		inv:      inventory.New(o.inventory...),
		section:  inventory.UngroupedGroup,
		kind:     kindHosts,
		pending:  make(map[string]*pendingDeclaration),
	}
	logger.Debug("Parsing inventory.", "file", filename, "bytes", len(src))

	if err := p.scan(ctx); err != nil {
		return nil, err
	}
	if err := p.checkPending(); err != nil {
		return nil, err
	}
	if err := p.inv.Finalize(); err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}

	logger.Debug("Inventory parsed.",
		"file", filename,
		"groups", len(p.inv.Groups()),
		"hosts", len(p.inv.Hosts()),
	)
	return p.inv, nil
}

// scan makes the single pass over the input lines.
func (p *parser) scan(ctx context.Context) error {
	logger := ctxlog.FromContext(ctx)

	offset := 0
	for i, raw := range strings.SplitAfter(string(p.src), "\n") {
		lineNo := i + 1
		loc := p.locate(lineNo, offset, raw)
		offset += len(raw)

		text := strings.TrimRight(raw, "\r\n")
		line := strings.TrimSpace(text)
		if line == "" || strings.HasPrefix(line, ";") || strings.HasPrefix(line, "#") {
			continue
		}

		if m := sectionPattern.FindStringSubmatch(line); m != nil {
			p.enterSection(m[1], kindFromTag(m[2]), lineNo, loc)
			logger.Debug("Entered section.", "section", p.section, "kind", p.kind.String(), "line", lineNo)
			continue
		}
		if m := unknownSectionPattern.FindStringSubmatch(line); m != nil {
			err := &ParseError{Expected: "section header", Err: fmt.Errorf("section [%s:%s] has unknown type %q", m[1], m[2], m[2])}
			return p.annotate(err, lineNo, text, loc)
		}

		var err error
		switch p.kind {
		case kindHosts:
			err = p.parseHosts(line)
		case kindVars:
			err = p.parseVariable(line)
		case kindChildren:
			err = p.parseChild(line, lineNo, loc)
		default:
			err = &ParseError{Expected: p.kind.String() + " definition"}
		}
		if err != nil {
			return p.annotate(err, lineNo, text, loc)
		}
	}
	return nil
}

// enterSection switches to a new section and tracks forward references made
// by :vars headers.
func (p *parser) enterSection(name string, kind sectionKind, lineNo int, loc location) {
	p.section, p.kind = name, kind

	if !p.inv.HasGroup(name) {
		p.inv.GetOrCreateGroup(name)
		if kind == kindVars {
			p.addPending(&pendingDeclaration{kind: kindVars, group: name, line: lineNo, loc: loc})
		}
		return
	}

	// [name] and [name:children] declare the group.
	if kind != kindVars {
		p.resolve(name)
	}
}

// parseHosts adds every host of a host definition line to the current group.
func (p *parser) parseHosts(line string) error {
	def, err := parseHostDefinition(line)
	if err != nil {
		return err
	}

	group := p.inv.GetOrCreateGroup(p.section)
	for _, name := range def.names {
		h := p.inv.GetOrCreateHost(name)
		for _, v := range def.vars {
			h.SetVariable(v.key, v.value)
		}
		group.AddHost(h)
	}
	return nil
}

// parseVariable sets a key=value assignment on the current group.
func (p *parser) parseVariable(line string) error {
	key, value, ok := strings.Cut(line, "=")
	key = strings.TrimSpace(key)
	if !ok || key == "" {
		return &ParseError{Expected: "key=value"}
	}
	p.inv.GetOrCreateGroup(p.section).SetVariable(key, literal.Coerce(strings.TrimSpace(value)))
	return nil
}

// parseChild links the named group under the current section. A group seen
// here for the first time must be declared later in the input.
func (p *parser) parseChild(line string, lineNo int, loc location) error {
	m := groupNamePattern.FindStringSubmatch(line)
	if m == nil {
		return &ParseError{Expected: "group name"}
	}
	name := m[1]

	if !p.inv.HasGroup(name) {
		p.addPending(&pendingDeclaration{
			kind:   kindChildren,
			group:  name,
			parent: p.section,
			line:   lineNo,
			loc:    loc,
		})
	} else if pd, ok := p.pending[name]; ok && pd.kind == kindVars {
		// Inclusion as a child declares a group whose :vars came first.
		p.resolve(name)
	}

	child := p.inv.GetOrCreateGroup(name)
	if err := p.inv.GetOrCreateGroup(p.section).AddChildGroup(child); err != nil {
		return &ParseError{Err: err}
	}
	return nil
}

func (p *parser) addPending(pd *pendingDeclaration) {
	p.pending[pd.group] = pd
	p.pendingOrder = append(p.pendingOrder, pd.group)
}

func (p *parser) resolve(name string) {
	delete(p.pending, name)
}

// checkPending reports the first forward reference that was never resolved.
func (p *parser) checkPending() error {
	for _, name := range p.pendingOrder {
		pd, ok := p.pending[name]
		if !ok {
			continue
		}
		return &UnresolvedReferenceError{
			File:   p.filename,
			Line:   pd.line,
			Group:  pd.group,
			Kind:   pd.kind.String(),
			Parent: pd.parent,
			loc:    pd.loc,
		}
	}
	return nil
}

// annotate fills in the location of an error raised by a line parser.
func (p *parser) annotate(err error, lineNo int, text string, loc location) error {
	pe, ok := err.(*ParseError)
	if !ok {
		pe = &ParseError{Err: err}
	}
	pe.File = p.filename
	pe.Line = lineNo
	pe.Text = text
	pe.loc = loc
	return pe
}

// locate builds the source range of a line for diagnostics.
func (p *parser) locate(lineNo, offset int, raw string) location {
	content := strings.TrimRight(raw, "\r\n")
	return location{
		rng: hcl.Range{
			Filename: p.filename,
			Start:    hcl.Pos{Line: lineNo, Column: 1, Byte: offset},
			End:      hcl.Pos{Line: lineNo, Column: len(content) + 1, Byte: offset + len(content)},
		},
		src: p.src,
	}
}
