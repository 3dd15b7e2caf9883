package generator

import "sort"

// Config is the constant bundle for one API flavor. Every flavor runs
// the identical emission algorithm; only these strings differ, so
// adding a flavor is a data change, not a code change.
type Config struct {
	Name string

	// defines and headers emitted into the MAPI_TMP_DEFINES region.
	Defines []string
	Headers []string

	// calling-convention and export-attribute tokens.
	Call  string
	Entry string
	Attrs string

	// symbol prefixes for the library, application and no-op sides.
	PrefixLib  string
	PrefixApp  string
	PrefixNoop string

	HasLibMode bool
	HasAppMode bool
}

var flavors = map[string]Config{
	"glapi": {
		Name:       "glapi",
		Defines:    []string{"GL_GLEXT_PROTOTYPES"},
		Headers:    []string{`"GL/gl.h"`, `"GL/glext.h"`},
		Call:       "GLAPI",
		Entry:      "APIENTRY",
		PrefixLib:  "gl",
		PrefixApp:  "_mesa_",
		PrefixNoop: "noop",
		HasLibMode: true,
	},
	"es1api": {
		Name:       "es1api",
		Defines:    []string{"GL_GLEXT_PROTOTYPES"},
		Headers:    []string{`"GLES/gl.h"`, `"GLES/glext.h"`},
		Call:       "GL_API",
		Entry:      "GL_APIENTRY",
		PrefixLib:  "gl",
		PrefixApp:  "_mesa_",
		PrefixNoop: "noop",
		HasLibMode: true,
	},
	"es2api": {
		Name:       "es2api",
		Defines:    []string{"GL_GLEXT_PROTOTYPES"},
		Headers:    []string{`"GLES2/gl2.h"`, `"GLES2/gl2ext.h"`},
		Call:       "GL_APICALL",
		Entry:      "GL_APIENTRY",
		PrefixLib:  "gl",
		PrefixApp:  "_mesa_",
		PrefixNoop: "noop",
		HasLibMode: true,
	},
	"vgapi": {
		Name:       "vgapi",
		Defines:    []string{"VG_VGEXT_PROTOTYPES"},
		Headers:    []string{`"VG/openvg.h"`, `"VG/vgext.h"`},
		Call:       "VG_API_CALL",
		Entry:      "VG_API_ENTRY",
		Attrs:      "VG_API_EXIT",
		PrefixLib:  "vg",
		PrefixApp:  "vega",
		PrefixNoop: "noop",
		HasLibMode: true,
		HasAppMode: true,
	},
}

// Lookup returns the configuration registered for the named flavor.
func Lookup(name string) (Config, bool) {
	cfg, ok := flavors[name]
	return cfg, ok
}

// Flavors returns the registered flavor names in sorted order.
func Flavors() []string {
	names := make([]string, 0, len(flavors))
	for name := range flavors {
		names = append(names, name)
	}
	sort.Strings(names)

	return names
}
