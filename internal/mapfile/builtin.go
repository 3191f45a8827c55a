package mapfile

import (
	"embed"
	"sort"

	"github.com/BurntSushi/toml"

	"scarlet/internal/diag"
	"scarlet/internal/sig"
	"scarlet/internal/source"
)

//go:embed builtin/*.toml
var builtinFS embed.FS

// BuiltinNames lists the embedded mapfiles, sorted.
func BuiltinNames() []string {
	entries, err := builtinFS.ReadDir("builtin")
	if err != nil {
		return nil
	}
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		out = append(out, "builtin/"+e.Name())
	}
	sort.Strings(out)
	return out
}

// builtinFor returns the embedded mapfile matching a game and language.
func builtinFor(game, language string) (name string, data []byte, ok bool) {
	for _, n := range BuiltinNames() {
		b, err := builtinFS.ReadFile(n)
		if err != nil {
			continue
		}
		var doc fileDoc
		if err := toml.Unmarshal(b, &doc); err != nil {
			continue
		}
		if doc.Meta.Game == game && doc.Meta.Language == language {
			return n, b, true
		}
	}
	return "", nil, false
}

// Load builds a table for one game and language: the matching built-in
// layer (unless disabled), then user mapfiles in order.
func Load(game, language string, userPaths []string, noBuiltins bool) (*sig.Table, *diag.Bag, error) {
	l := NewLoader()
	if !noBuiltins {
		if name, data, ok := builtinFor(game, language); ok {
			l.AddBytes(name, data)
		}
	}
	for _, p := range userPaths {
		if err := l.AddFile(p); err != nil {
			return nil, nil, err
		}
	}
	table, bag := l.Build()
	if table.Format().Game == "" {
		bag.Add(diag.NewError(diag.MapBadSource, source.Span{},
			"no mapfile defines game "+game+"/"+language))
	}
	return table, bag, nil
}
