package generator

import (
	"fmt"
	"io"
	"strings"

	"github.com/emirpasic/gods/v2/maps/treemap"

	"github.com/lgrafx/dispatchgen/parser"
)

// NumDynamicEntries is the number of reserved dynamically-added slots
// appended after the static region of the dispatch table.
const NumDynamicEntries = 256

const indent = "   "

// Printer projects a validated entry set into the C text fragments of
// one API flavor. Emission is a pure function of the entries and the
// configuration; rendering the same model twice produces byte-identical
// output.
type Printer struct {
	cfg     Config
	entries []*parser.Entry

	// byName is the name-ordered view used for string-pool and stub
	// emission. It never mutates the canonical slot order.
	byName *treemap.Map[string, *parser.Entry]

	noopWarn    string
	noopGeneric string
}

// New builds a Printer over entries, which must already be in canonical
// order as produced by parser.Parse.
func New(entries []*parser.Entry, cfg Config) *Printer {
	byName := treemap.New[string, *parser.Entry]()
	for _, ent := range entries {
		byName.Put(ent.Name, ent)
	}

	return &Printer{
		cfg:         cfg,
		entries:     entries,
		byName:      byName,
		noopWarn:    "noop_warn",
		noopGeneric: "noop_generic",
	}
}

// Header returns the banner placed at the top of every artifact.
func (p *Printer) Header() string {
	return "/* This file is automatically generated by dispatchgen.  Do not modify. */"
}

// Includes returns the defines and includes of the client API headers.
func (p *Printer) Includes() string {
	var lines []string
	for _, d := range p.cfg.Defines {
		lines = append(lines, "#define "+d)
	}
	for _, h := range p.cfg.Headers {
		lines = append(lines, "#include "+h)
	}

	return strings.Join(lines, "\n")
}

func (p *Printer) numStatic() int {
	n := 0
	for _, ent := range p.entries {
		if ent.Alias == "" {
			n++
		}
	}

	return n
}

// TableDefines returns the defines of the dispatch table size.
func (p *Printer) TableDefines() string {
	return fmt.Sprintf("#define MAPI_TABLE_NUM_STATIC %d\n#define MAPI_TABLE_NUM_DYNAMIC %d",
		p.numStatic(), NumDynamicEntries)
}

// TableInitializer returns the array initializer backing runtime
// dispatch: one prefixed function pointer per primary, in slot order.
func (p *Printer) TableInitializer(prefix string) string {
	var names []string
	for _, ent := range p.entries {
		if ent.Alias == "" {
			names = append(names, ent.Name)
		}
	}

	pre := indent + "(mapi_proc) " + prefix
	return pre + strings.Join(names, ",\n"+pre)
}

// TableSpec returns the table specification string: a leading version
// marker, then one null-separated name group per slot in slot order. A
// runtime uses it to bind application calls to slots by name.
func (p *Printer) TableSpec() string {
	var groups []string
	line := `"1`
	for _, ent := range p.entries {
		if ent.Alias == "" {
			line += `\0"` + "\n"
			groups = append(groups, line)
			line = `"`
		}
		line += ent.Name + `\0`
	}
	line += `";`
	groups = append(groups, line)

	return indent + strings.Join(groups, indent)
}

// decl returns the C declaration for the entry under the given symbol
// prefix, with the flavor's export attributes attached.
func (p *Printer) decl(ent *parser.Entry, prefix string) string {
	d := fmt.Sprintf("%s %s %s%s(%s)", ent.CReturn(), p.cfg.Entry, prefix, ent.Name, ent.CParams())
	if p.cfg.Attrs != "" {
		d += " " + p.cfg.Attrs
	}

	return d
}

// cast returns the function-pointer cast matching the entry's signature.
func (p *Printer) cast(ent *parser.Entry) string {
	return fmt.Sprintf("%s (%s *)(%s)", ent.CReturn(), p.cfg.Entry, ent.CParams())
}

// PrivateDeclarations returns the prototypes of the per-primary
// implementation functions.
func (p *Printer) PrivateDeclarations(prefix string) string {
	var decls []string
	for _, ent := range p.entries {
		if ent.Alias == "" {
			decls = append(decls, p.decl(ent, prefix))
		}
	}

	return strings.Join(decls, ";\n") + ";"
}

// PublicDispatches returns the public trampolines: every non-hidden
// entry fetches the current table, indexes it at the entry's slot and
// tail-calls through a cast to the exact signature.
func (p *Printer) PublicDispatches(prefix string) string {
	var dispatches []string
	for _, ent := range p.entries {
		if ent.Hidden {
			continue
		}

		ret := ""
		if ent.Ret != "" {
			ret = "return "
		}

		var b strings.Builder
		fmt.Fprintf(&b, "%s %s\n{\n", p.cfg.Call, p.decl(ent, prefix))
		fmt.Fprintf(&b, "%sconst struct mapi_table *tbl = u_current_get();\n", indent)
		fmt.Fprintf(&b, "%smapi_func func = ((const mapi_func *) tbl)[%d];\n", indent, ent.Slot)
		fmt.Fprintf(&b, "%s%s((%s) func)(%s);\n}", indent, ret, p.cast(ent), ent.CArgs())

		dispatches = append(dispatches, b.String())
	}

	return strings.Join(dispatches, "\n\n")
}

// StubStringPool returns the name pool used by the public stubs,
// ordered by name, together with each entry's byte offset into it.
func (p *Printer) StubStringPool() (string, map[*parser.Entry]int) {
	offsets := make(map[*parser.Entry]int)
	var names []string
	count := 0
	for _, ent := range p.byName.Values() {
		offsets[ent] = count
		names = append(names, ent.Name)
		count += len(ent.Name) + 1
	}

	pool := indent + `"` + strings.Join(names, `\0"`+"\n"+indent+`"`) + `";`
	return pool, offsets
}

// StubInitializer returns the mapi_stub array initializer, ordered by
// name to allow binary search at load time.
func (p *Printer) StubInitializer(prefix string, offsets map[*parser.Entry]int) string {
	var stubs []string
	for _, ent := range p.byName.Values() {
		stubs = append(stubs, fmt.Sprintf("%s{ (mapi_func) %s%s, %d, (void *) %d }",
			indent, prefix, ent.Name, ent.Slot, offsets[ent]))
	}

	return strings.Join(stubs, ",\n")
}

// NoopFunctions returns the fallback implementations: one per primary,
// reporting the unimplemented call before returning a zero value.
func (p *Printer) NoopFunctions(prefix, warnPrefix string) string {
	var noops []string
	for _, ent := range p.entries {
		if ent.Alias != "" {
			continue
		}

		var b strings.Builder
		fmt.Fprintf(&b, "static %s\n{\n", p.decl(ent, prefix))
		fmt.Fprintf(&b, "%s%s(\"%s%s\");\n", indent, p.noopWarn, warnPrefix, ent.Name)
		if ent.Ret != "" {
			fmt.Fprintf(&b, "%sreturn (%s) 0;\n", indent, ent.Ret)
		}
		b.WriteString("}")

		noops = append(noops, b.String())
	}

	return strings.Join(noops, "\n\n")
}

// NoopInitializer returns the initializer of the no-op dispatch table:
// the static region followed by NumDynamicEntries generic fillers.
// With useGeneric every static slot collapses to the generic no-op,
// for builds that carry no per-entry names.
func (p *Printer) NoopInitializer(prefix string, useGeneric bool) string {
	var names []string
	for _, ent := range p.entries {
		if ent.Alias != "" {
			continue
		}
		if useGeneric {
			names = append(names, p.noopGeneric)
		} else {
			names = append(names, prefix+ent.Name)
		}
	}
	for i := 0; i < NumDynamicEntries; i++ {
		names = append(names, p.noopGeneric)
	}

	pre := indent + "(mapi_func) "
	return pre + strings.Join(names, ",\n"+pre)
}

// AsmGCC returns the platform trampoline assembly. Aliases bind with a
// .set directive to the most recently emitted concrete stub, so the
// canonical order must be preserved exactly.
func (p *Printer) AsmGCC(prefix string) string {
	var asm []string
	toName := ""

	asm = append(asm, "__asm__(")
	for _, ent := range p.entries {
		name := prefix + ent.Name

		if ent.Hidden {
			asm = append(asm, fmt.Sprintf(`".hidden %s\n"`, name))
		}

		if ent.Alias != "" {
			asm = append(asm, fmt.Sprintf(`".globl %s\n"`, name))
			asm = append(asm, fmt.Sprintf(`".set %s, %s\n"`, name, toName))
		} else {
			asm = append(asm, fmt.Sprintf(`STUB_ASM_ENTRY("%s")"\n"`, name))
			asm = append(asm, fmt.Sprintf(`"\t"STUB_ASM_CODE("%d")"\n"`, ent.Slot))
			toName = name
		}
	}
	asm = append(asm, ");")

	return strings.Join(asm, "\n")
}

// Lib renders the dispatchable library artifact: every fragment wrapped
// in its fixed macro-guarded region so the surrounding build can select
// the piece it needs. The guard names are a downstream contract.
func (p *Printer) Lib() string {
	var b strings.Builder
	line := func(s string) {
		b.WriteString(s)
		b.WriteByte('\n')
	}

	line(p.Header())
	line("")
	line("#ifdef MAPI_TMP_DEFINES")
	line(p.Includes())
	line("#undef MAPI_TMP_DEFINES")
	line("#endif /* MAPI_TMP_DEFINES */")
	line("")
	line("#ifdef MAPI_TMP_TABLE")
	line(p.TableDefines())
	line("#undef MAPI_TMP_TABLE")
	line("#endif /* MAPI_TMP_TABLE */")
	line("")

	pool, offsets := p.StubStringPool()
	line("#ifdef MAPI_TMP_PUBLIC_STUBS")
	line("static const char public_string_pool[] =")
	line(pool)
	line("")
	line("static const struct mapi_stub public_stubs[] = {")
	line(p.StubInitializer(p.cfg.PrefixLib, offsets))
	line("};")
	line("#undef MAPI_TMP_PUBLIC_STUBS")
	line("#endif /* MAPI_TMP_PUBLIC_STUBS */")
	line("")

	line("#ifdef MAPI_TMP_PUBLIC_ENTRIES")
	line(p.PublicDispatches(p.cfg.PrefixLib))
	line("#undef MAPI_TMP_PUBLIC_ENTRIES")
	line("#endif /* MAPI_TMP_PUBLIC_ENTRIES */")
	line("")

	line("#ifdef MAPI_TMP_NOOP_ARRAY")
	line("#ifdef DEBUG")
	line("")
	line(p.NoopFunctions(p.cfg.PrefixNoop, p.cfg.PrefixLib))
	line("")
	line(fmt.Sprintf("const mapi_func table_%s_array[] = {", p.cfg.PrefixNoop))
	line(p.NoopInitializer(p.cfg.PrefixNoop, false))
	line("};")
	line("")
	line("#else /* DEBUG */")
	line("")
	line(fmt.Sprintf("const mapi_func table_%s_array[] = {", p.cfg.PrefixNoop))
	line(p.NoopInitializer(p.cfg.PrefixNoop, true))
	line("};")
	line("#endif /* DEBUG */")
	line("#undef MAPI_TMP_NOOP_ARRAY")
	line("#endif /* MAPI_TMP_NOOP_ARRAY */")
	line("")

	line("#ifdef MAPI_TMP_STUB_ASM_GCC")
	line(p.AsmGCC(p.cfg.PrefixLib))
	line("#undef MAPI_TMP_STUB_ASM_GCC")
	line("#endif /* MAPI_TMP_STUB_ASM_GCC */")

	return b.String()
}

// App renders the application-side artifact: a static table of
// procedure pointers plus the table specification string.
func (p *Printer) App() string {
	var b strings.Builder
	line := func(s string) {
		b.WriteString(s)
		b.WriteByte('\n')
	}

	line(p.Header())
	line("")
	line(p.PrivateDeclarations(p.cfg.PrefixApp))
	line("")
	line("#ifdef API_TMP_DEFINE_SPEC")
	line("")
	line(fmt.Sprintf("static const char %s_spec[] =", p.cfg.PrefixApp))
	line(p.TableSpec())
	line("")
	line(fmt.Sprintf("static const mapi_proc %s_procs[] = {", p.cfg.PrefixApp))
	line(p.TableInitializer(p.cfg.PrefixApp))
	line("};")
	line("")
	line("#endif /* API_TMP_DEFINE_SPEC */")

	return b.String()
}

// WriteLib writes the library artifact to w.
func (p *Printer) WriteLib(w io.Writer) error {
	_, err := io.WriteString(w, p.Lib())
	return err
}

// WriteApp writes the application artifact to w.
func (p *Printer) WriteApp(w io.Writer) error {
	_, err := io.WriteString(w, p.App())
	return err
}
