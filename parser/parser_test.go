package parser

import (
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parseString(t *testing.T, src string) []*Entry {
	t.Helper()

	entries, err := Parse(strings.NewReader(src))
	require.NoError(t, err)

	return entries
}

func TestParseAssignsSlotsInOrder(t *testing.T) {
	entries := parseString(t, `
void,Foo,GLint a
hidden:void,Bar,void
alias=Foo:void,Baz,GLint a
`)
	require.Len(t, entries, 3)

	assert.Equal(t, "Foo", entries[0].Name)
	assert.Equal(t, 0, entries[0].Slot)
	assert.Empty(t, entries[0].Alias)
	assert.False(t, entries[0].Hidden)

	assert.Equal(t, "Baz", entries[1].Name)
	assert.Equal(t, 0, entries[1].Slot)
	assert.Equal(t, "Foo", entries[1].Alias)

	assert.Equal(t, "Bar", entries[2].Name)
	assert.Equal(t, 1, entries[2].Slot)
	assert.Empty(t, entries[2].Alias)
	assert.True(t, entries[2].Hidden)
}

func TestParseVoidParameterList(t *testing.T) {
	entries := parseString(t, "void,Flush,void")

	require.Len(t, entries, 1)
	assert.Empty(t, entries[0].Params)
	assert.Equal(t, "void", entries[0].CParams())
	assert.Equal(t, "", entries[0].CArgs())
	assert.Equal(t, "void Flush(void)", entries[0].CPrototype())
}

func TestParsePointerAndArrayParams(t *testing.T) {
	entries := parseString(t, `
void,LoadMatrixf,const GLfloat *m
void,GetBytes,GLubyte data[4]
`)
	require.Len(t, entries, 2)

	m := entries[0].Params[0]
	assert.Equal(t, "const GLfloat *", m.Type)
	assert.Equal(t, "m", m.Name)
	assert.Zero(t, m.Array)
	assert.Equal(t, "const GLfloat *m", entries[0].CParams())

	data := entries[1].Params[0]
	assert.Equal(t, "GLubyte", data.Type)
	assert.Equal(t, "data", data.Name)
	assert.Equal(t, 4, data.Array)
	assert.Equal(t, "GLubyte data[4]", entries[1].CParams())
}

func TestParseReturnType(t *testing.T) {
	entries := parseString(t, "const GLubyte *,GetString,GLenum name")

	require.Len(t, entries, 1)
	assert.Equal(t, "const GLubyte *", entries[0].Ret)
	assert.Equal(t, "const GLubyte *", entries[0].CReturn())
}

func TestParseSkipsCommentsAndBlankLines(t *testing.T) {
	entries := parseString(t, `
# a comment
void,Foo,void

  # an indented comment
void,Bar,void
`)
	require.Len(t, entries, 2)
	assert.Equal(t, 0, entries[0].Slot)
	assert.Equal(t, 1, entries[1].Slot)
}

func TestParseExplicitSlotCrossCheck(t *testing.T) {
	entries := parseString(t, `
slot=0:void,Foo,void
slot=1:hidden:void,Bar,void
`)
	require.Len(t, entries, 2)
	assert.Equal(t, 1, entries[1].Slot)
	assert.True(t, entries[1].Hidden)
}

func TestParseSlotConflict(t *testing.T) {
	_, err := Parse(strings.NewReader("slot=5:void,Only,void"))
	assert.ErrorIs(t, err, ErrSlotConflict)
}

func TestParseDuplicateEntryName(t *testing.T) {
	_, err := Parse(strings.NewReader(`
void,Foo,void
void,Foo,GLint a
`))
	assert.ErrorIs(t, err, ErrDuplicateEntry)
}

func TestParseUnknownAlias(t *testing.T) {
	_, err := Parse(strings.NewReader("alias=Missing:void,Foo,void"))
	assert.ErrorIs(t, err, ErrUnknownAlias)
}

func TestParseForwardAliasUnsupported(t *testing.T) {
	_, err := Parse(strings.NewReader(`
alias=Foo:void,Baz,void
void,Foo,void
`))
	assert.ErrorIs(t, err, ErrUnknownAlias)
}

func TestParseUnknownAttribute(t *testing.T) {
	_, err := Parse(strings.NewReader("frobnicate:void,Foo,void"))
	assert.ErrorIs(t, err, ErrUnknownAttribute)
}

func TestParseMalformedParameter(t *testing.T) {
	_, err := Parse(strings.NewReader("void,Foo,???"))
	assert.ErrorIs(t, err, ErrMalformedParameter)
}

func TestParseMissingParameterList(t *testing.T) {
	_, err := Parse(strings.NewReader("void,Foo"))
	assert.ErrorIs(t, err, ErrMalformedParameter)
}

func TestParseAliasOfAliasCollapses(t *testing.T) {
	entries := parseString(t, `
void,Foo,void
alias=Foo:void,Bar,void
alias=Bar:void,Baz,void
`)
	require.Len(t, entries, 3)

	// canonical order within slot 0: primary first, aliases by name
	assert.Equal(t, "Foo", entries[0].Name)
	assert.Equal(t, "Bar", entries[1].Name)
	assert.Equal(t, "Foo", entries[1].Alias)
	assert.Equal(t, "Baz", entries[2].Name)
	assert.Equal(t, "Foo", entries[2].Alias)
	assert.Equal(t, 0, entries[2].Slot)
}

func TestParseSlotsAreDense(t *testing.T) {
	entries := parseString(t, `
void,A,void
alias=A:void,B,void
void,C,void
void,D,void
alias=C:void,E,void
`)

	var slots []int
	for _, ent := range entries {
		if ent.Alias == "" {
			slots = append(slots, ent.Slot)
		}
	}
	assert.Equal(t, []int{0, 1, 2}, slots)
}

func TestCompareOrdering(t *testing.T) {
	primary := &Entry{Name: "M", Slot: 1}
	aliasA := &Entry{Name: "A", Slot: 1, Alias: "M"}
	aliasZ := &Entry{Name: "Z", Slot: 1, Alias: "M"}
	earlier := &Entry{Name: "Q", Slot: 0}

	assert.Negative(t, Compare(earlier, primary))
	assert.Positive(t, Compare(primary, earlier))

	// primary sorts ahead of its aliases regardless of name
	assert.Negative(t, Compare(primary, aliasA))
	assert.Positive(t, Compare(aliasA, primary))

	// aliases tie-break by name
	assert.Negative(t, Compare(aliasA, aliasZ))
	assert.Positive(t, Compare(aliasZ, aliasA))
	assert.Zero(t, Compare(aliasA, aliasA))
}

func TestValidateLayoutRejections(t *testing.T) {
	t.Run("alias first in slot", func(t *testing.T) {
		entries := []*Entry{{Name: "B", Slot: 0, Alias: "A"}}
		err := validateLayout(entries, 1)
		assert.ErrorIs(t, err, ErrInvalidSlotLayout)
	})

	t.Run("slot out of range", func(t *testing.T) {
		entries := []*Entry{{Name: "A", Slot: 0}, {Name: "B", Slot: 5}}
		err := validateLayout(entries, 1)
		assert.ErrorIs(t, err, ErrInvalidSlotLayout)
	})

	t.Run("missing slot", func(t *testing.T) {
		entries := []*Entry{{Name: "A", Slot: 1}}
		err := validateLayout(entries, 2)
		assert.ErrorIs(t, err, ErrInvalidSlotLayout)
	})
}

func TestParseSampleSpec(t *testing.T) {
	f, err := os.Open("../testdata/gl.spec")
	require.NoError(t, err)
	defer f.Close()

	entries, err := Parse(f)
	require.NoError(t, err)
	require.Len(t, entries, 8)

	byName := make(map[string]*Entry)
	numStatic := 0
	for _, ent := range entries {
		byName[ent.Name] = ent
		if ent.Alias == "" {
			numStatic++
		}
	}

	assert.Equal(t, 7, numStatic)
	assert.Equal(t, 6, byName["GetString"].Slot)
	assert.Equal(t, "TexImage3DEXT", byName["TexImage3D"].Alias)
	assert.Equal(t, byName["TexImage3DEXT"].Slot, byName["TexImage3D"].Slot)
	assert.True(t, byName["TexImage3DEXT"].Hidden)
}
