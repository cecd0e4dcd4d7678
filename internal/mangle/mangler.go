package mangle

import (
	"strings"

	"ffigen/internal/native"
)

// Identifier is the pair of names of one declaration.
type Identifier struct {
	// C is the flat identifier, usable as a C name.
	C string
	// Cpp is the fully qualified C++ name.
	Cpp string
}

// Mangler computes identifiers and caches them per declaration. A scope
// tree does not change during a run, so cached entries stay valid until
// Reset. A Mangler is not safe for concurrent use.
type Mangler struct {
	cfg   Config
	cache map[native.Decl]Identifier
}

// New returns a Mangler using cfg; empty fields take their defaults.
func New(cfg Config) *Mangler {
	return &Mangler{
		cfg:   cfg.WithDefaults(),
		cache: make(map[native.Decl]Identifier),
	}
}

// Config returns the effective configuration.
func (m *Mangler) Config() Config { return m.cfg }

// Reset drops every cached identifier.
func (m *Mangler) Reset() {
	clear(m.cache)
}

// Identifier returns the names of d. Failures are not cached.
func (m *Mangler) Identifier(d native.Decl) (Identifier, error) {
	if id, ok := m.cache[d]; ok {
		return id, nil
	}
	c, err := m.cName(d)
	if err != nil {
		return Identifier{}, err
	}
	id := Identifier{C: c, Cpp: m.cppName(d)}
	m.cache[d] = id
	return id, nil
}

func (m *Mangler) cppName(d native.Decl) string {
	name := native.QualifiedName(d)
	if rd, ok := d.(*native.RecordDecl); ok && rd.Specialization != nil {
		name += native.PrintTemplateArgs(rd.Specialization.Args)
	}
	if m.cfg.CppSeparator != "::" {
		name = strings.ReplaceAll(name, "::", m.cfg.CppSeparator)
	}
	return name
}

func (m *Mangler) cName(d native.Decl) (string, error) {
	fail := func(kind ErrorKind) (string, error) {
		return "", &Error{Kind: kind, Qualified: native.QualifiedName(d)}
	}
	if p := d.Parent(); p != nil && native.IsFunctionContext(p) {
		return fail(KindInFunction)
	}

	var contexts []native.Decl
	for p := d.Parent(); p != nil; p = p.Parent() {
		if _, ok := p.(*native.LinkageSpecDecl); ok {
			continue
		}
		contexts = append(contexts, p)
	}

	sep := m.cfg.CSeparator
	var sb strings.Builder
	sb.WriteString(m.cfg.RootPrefix)
	for i := len(contexts) - 1; i >= 0; i-- {
		switch ctx := contexts[i].(type) {
		case *native.RecordDecl:
			if ctx.Specialization != nil {
				sb.WriteString(ctx.Name())
				sb.WriteString(sep)
				m.writeArgs(&sb, ctx.Specialization.Args)
				break
			}
			if ctx.Name() == "" {
				return fail(KindAnonymousRecord)
			}
			sb.WriteString(ctx.Name())
		case *native.NamespaceDecl:
			if ctx.IsAnonymous() {
				return fail(KindAnonymousNamespace)
			}
			sb.WriteString(ctx.Name())
		case *native.FunctionDecl, *native.MethodDecl, *native.ObjCMethodDecl:
			return fail(KindInFunction)
		case *native.EnumDecl:
			// Unscoped enumerators are visible in the enclosing scope.
			if !ctx.Scoped {
				continue
			}
			sb.WriteString(ctx.Name())
		default:
			sb.WriteString(ctx.Name())
		}
		sb.WriteString(sep)
	}

	switch {
	case d.Name() != "":
		sb.WriteString(d.Name())
	case d.DisplayName() != "":
		sb.WriteString(d.DisplayName())
	default:
		return fail(KindAnonymousDecl)
	}
	if rd, ok := d.(*native.RecordDecl); ok && rd.Specialization != nil {
		sb.WriteString(sep)
		m.writeArgs(&sb, rd.Specialization.Args)
	}
	return m.Sanitize(sb.String()), nil
}

// writeArgs flattens template arguments joined by the C separator. Packs
// are expanded in place; an empty pack adds nothing.
func (m *Mangler) writeArgs(sb *strings.Builder, args []native.TemplateArg) {
	first := true
	for _, a := range args {
		if a.Kind == native.ArgPack {
			if len(a.Pack) > 0 && !first {
				sb.WriteString(m.cfg.CSeparator)
			}
			m.writeArgs(sb, a.Pack)
		} else {
			if !first {
				sb.WriteString(m.cfg.CSeparator)
			}
			sb.WriteString(a.String())
		}
		first = false
	}
}

// operatorWords is applied in order; "()" and "[]" must precede their
// single characters.
var operatorWords = []struct {
	from, to string
}{
	{"()", "call"},
	{"[]", "idx"},
	{"+", "add"},
	{"*", "mul"},
	{"/", "div"},
	{"-", "sub"},
	{"=", "set"},
	{".", "dot"},
	{" ", ""},
}

// Sanitize replaces operator characters and spaces in name by words
// wrapped in the C separator.
func (m *Mangler) Sanitize(name string) string {
	sep := m.cfg.CSeparator
	for _, w := range operatorWords {
		repl := sep + w.to + sep
		if strings.Contains(repl, w.from) {
			// A separator containing the character would never settle.
			name = strings.ReplaceAll(name, w.from, repl)
			continue
		}
		for strings.Contains(name, w.from) {
			name = strings.ReplaceAll(name, w.from, repl)
		}
	}
	return name
}
