package parser

import (
	"bufio"
	"cmp"
	"fmt"
	"io"
	"regexp"
	"slices"
	"strconv"
	"strings"
)

var paramRe = regexp.MustCompile(`^([\w\s*]+?)(\w+)(?:\[(\d+)\])?$`)

// attributes are the optional colon-separated tokens carried in the
// first column of a line, ahead of the return type. slot is -1 when no
// explicit slot was declared.
type attributes struct {
	slot   int
	hidden bool
	alias  string
}

// Parse reads a whole entry specification and returns the validated
// entry set in canonical order: ascending slot, the slot's primary
// ahead of its aliases, ties broken by name. Any malformed line or
// layout violation aborts parsing with a non-nil error.
func Parse(r io.Reader) ([]*Entry, error) {
	var entries []*Entry
	byName := make(map[string]*Entry)
	nextSlot := 0

	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		attrs, cols, err := parseLine(line)
		if err != nil {
			return nil, fmt.Errorf("%w in %q", err, line)
		}

		// Aliases take the slot of a previously defined entry;
		// forward references are unsupported.
		slot := nextSlot
		if attrs.alias != "" {
			target, ok := byName[attrs.alias]
			if !ok {
				return nil, fmt.Errorf("%w: failed to alias %s", ErrUnknownAlias, attrs.alias)
			}
			slot = target.Slot
			if target.Alias != "" {
				attrs.alias = target.Alias
			}
		} else {
			nextSlot++
		}

		// An explicit slot= exists for cross-checking, not renumbering.
		if attrs.slot >= 0 && attrs.slot != slot {
			return nil, fmt.Errorf("%w in %q: declared %d, computed %d",
				ErrSlotConflict, line, attrs.slot, slot)
		}

		ent, err := newEntry(cols, attrs, slot)
		if err != nil {
			return nil, fmt.Errorf("%w in %q", err, line)
		}
		if _, ok := byName[ent.Name]; ok {
			return nil, fmt.Errorf("%w: %s is duplicated", ErrDuplicateEntry, ent.Name)
		}
		byName[ent.Name] = ent
		entries = append(entries, ent)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}

	slices.SortFunc(entries, Compare)
	if err := validateLayout(entries, nextSlot); err != nil {
		return nil, err
	}

	return entries, nil
}

// Compare is the canonical entry ordering: by slot, then primaries
// ahead of aliases, then by name. Emitters rely on this ordering for
// deterministic output.
func Compare(a, b *Entry) int {
	if a.Slot != b.Slot {
		return cmp.Compare(a.Slot, b.Slot)
	}
	if (a.Alias == "") != (b.Alias == "") {
		if a.Alias == "" {
			return -1
		}
		return 1
	}

	return cmp.Compare(a.Name, b.Name)
}

// parseLine splits a line into its trimmed columns and extracts the
// attribute tokens prefixed to the first column.
func parseLine(line string) (attributes, []string, error) {
	cols := strings.Split(line, ",")
	for i := range cols {
		cols[i] = strings.TrimSpace(cols[i])
	}

	attrs := attributes{slot: -1}

	vals := strings.Split(cols[0], ":")
	for len(vals) > 1 {
		val := vals[0]
		vals = vals[1:]

		switch {
		case strings.HasPrefix(val, "slot="):
			slot, err := strconv.Atoi(strings.TrimPrefix(val, "slot="))
			if err != nil {
				return attrs, nil, fmt.Errorf("%w %q", ErrUnknownAttribute, val)
			}
			attrs.slot = slot
		case val == "hidden":
			attrs.hidden = true
		case strings.HasPrefix(val, "alias="):
			attrs.alias = strings.TrimPrefix(val, "alias=")
		case val == "":
		default:
			return attrs, nil, fmt.Errorf("%w %q", ErrUnknownAttribute, val)
		}
	}
	cols[0] = vals[0]

	return attrs, cols, nil
}

// newEntry builds an Entry from the declaration columns: return type,
// name, then parameter declarations or the single literal "void".
func newEntry(cols []string, attrs attributes, slot int) (*Entry, error) {
	if len(cols) < 3 {
		return nil, fmt.Errorf("%w: missing parameter list", ErrMalformedParameter)
	}

	ret := cols[0]
	if ret == "void" {
		ret = ""
	}

	ent := Entry{
		Name:   cols[1],
		Ret:    ret,
		Slot:   slot,
		Hidden: attrs.hidden,
		Alias:  attrs.alias,
	}

	params := cols[2:]
	if len(params) == 1 && params[0] == "void" {
		return &ent, nil
	}
	for _, tok := range params {
		p, err := parseParam(tok)
		if err != nil {
			return nil, err
		}
		ent.Params = append(ent.Params, p)
	}

	return &ent, nil
}

func parseParam(tok string) (Param, error) {
	m := paramRe.FindStringSubmatch(tok)
	if m == nil {
		return Param{}, fmt.Errorf("%w %q", ErrMalformedParameter, tok)
	}

	p := Param{
		Type: strings.TrimSpace(m[1]),
		Name: m[2],
	}
	if m[3] != "" {
		// the regexp only matches digits here
		p.Array, _ = strconv.Atoi(m[3])
	}

	return p, nil
}

// validateLayout walks the sorted entry set and checks that the slots
// form the dense range [0, numSlots) and that the first entry recorded
// for every slot is a primary. The generated dispatch table is a dense
// array with exactly one concrete implementation per index; this is
// where that guarantee is enforced.
func validateLayout(entries []*Entry, numSlots int) error {
	i := 0
	for slot := 0; slot < numSlots; slot++ {
		if i >= len(entries) || entries[i].Slot != slot {
			return fmt.Errorf("%w: entries are not ordered by slots", ErrInvalidSlotLayout)
		}
		if entries[i].Alias != "" {
			return fmt.Errorf("%w: first entry of slot %d aliases %s",
				ErrInvalidSlotLayout, slot, entries[i].Alias)
		}
		for i < len(entries) && entries[i].Slot == slot {
			i++
		}
	}
	if i < len(entries) {
		return fmt.Errorf("%w: %d entries outside the static slot range",
			ErrInvalidSlotLayout, len(entries)-i)
	}

	return nil
}
