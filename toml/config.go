// Package toml loads command-line defaults from TOML configuration files.
package toml

import (
	"io"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/fwojciec/biorag"
	"github.com/pelletier/go-toml/v2"
)

// Loader is a kong.ConfigurationLoader reading flat TOML files. Keys are
// flag names, with dashes or underscores:
//
//	max_documents = 20
//	provider = "anthropic"
func Loader(r io.Reader) (kong.Resolver, error) {
	values := map[string]any{}
	if err := toml.NewDecoder(r).Decode(&values); err != nil {
		return nil, biorag.Errorf(biorag.EINVALID, "invalid config file: %v", err)
	}
	return kong.ResolverFunc(func(_ *kong.Context, _ *kong.Path, flag *kong.Flag) (any, error) {
		return lookup(values, flag.Name), nil
	}), nil
}

func lookup(values map[string]any, name string) any {
	for _, key := range []string{name, strings.ReplaceAll(name, "-", "_")} {
		if v, ok := values[key]; ok {
			return normalize(v)
		}
	}
	return nil
}

// normalize converts TOML integers to int so kong's mappers accept them
// for every integer flag kind.
func normalize(v any) any {
	switch x := v.(type) {
	case int64:
		return int(x)
	case []any:
		out := make([]string, 0, len(x))
		for _, e := range x {
			if s, ok := e.(string); ok {
				out = append(out, s)
			}
		}
		return strings.Join(out, ",")
	default:
		return v
	}
}
