package parser

import (
	"fmt"
	"strings"
)

// Param is one declared parameter of an entry point. Array is the
// declared array length, 0 when the parameter is not an array.
type Param struct {
	Type  string
	Name  string
	Array int
}

// Entry is one API entry point together with its resolved dispatch
// metadata. Ret is empty when the entry returns void. Alias names the
// primary entry whose slot this entry shares, and is empty when the
// entry owns its slot.
type Entry struct {
	Name   string
	Ret    string
	Params []Param
	Slot   int
	Hidden bool
	Alias  string
}

// CReturn returns the C return type, "void" for entries that return nothing.
func (e *Entry) CReturn() string {
	if e.Ret == "" {
		return "void"
	}
	return e.Ret
}

// CParams returns the parameter list used in the entry prototype. An
// empty parameter list renders as the single marker "void".
func (e *Entry) CParams() string {
	var params []string
	for _, p := range e.Params {
		sep := " "
		if strings.HasSuffix(p.Type, "*") {
			sep = ""
		}
		decl := p.Type + sep + p.Name
		if p.Array > 0 {
			decl += fmt.Sprintf("[%d]", p.Array)
		}
		params = append(params, decl)
	}
	if len(params) == 0 {
		params = append(params, "void")
	}

	return strings.Join(params, ", ")
}

// CArgs returns the argument list used in the entry invocation.
func (e *Entry) CArgs() string {
	args := make([]string, len(e.Params))
	for i, p := range e.Params {
		args[i] = p.Name
	}

	return strings.Join(args, ", ")
}

// CPrototype returns the full C prototype of the entry.
func (e *Entry) CPrototype() string {
	return fmt.Sprintf("%s %s(%s)", e.CReturn(), e.Name, e.CParams())
}

func (e *Entry) String() string {
	return e.CPrototype()
}
