package lang

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// ErrNoResource is returned by LoadDir when no directory is configured.
var ErrNoResource = errors.New("no language resource directory configured")

// Registry is an immutable, ordered set of languages.
// Detection rules are evaluated in registration order.
type Registry struct {
	order []string
	langs map[string]Language
	stops map[string]map[string]struct{}
}

// NewRegistry builds a registry from languages in the given order.
// A later language with the same code replaces the earlier one in place.
func NewRegistry(langs ...Language) *Registry {
	r := &Registry{
		langs: make(map[string]Language, len(langs)),
		stops: make(map[string]map[string]struct{}, len(langs)),
	}
	for _, l := range langs {
		r.put(l.clone())
	}
	return r
}

// Builtin returns the fallback registry with English and Russian.
func Builtin() *Registry {
	return NewRegistry(builtinLanguages()...)
}

func (r *Registry) put(l Language) {
	if _, ok := r.langs[l.Code]; !ok {
		r.order = append(r.order, l.Code)
	}
	r.langs[l.Code] = l
	set := make(map[string]struct{}, len(l.StopWords))
	for _, w := range l.StopWords {
		set[w] = struct{}{}
	}
	r.stops[l.Code] = set
}

// LoadDir reads every *.json language document in dir, sorted by file name.
// Any unreadable or malformed document fails the whole load.
func LoadDir(dir string) (*Registry, error) {
	if dir == "" {
		return nil, ErrNoResource
	}
	paths, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil {
		return nil, fmt.Errorf("glob language dir: %w", err)
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("no language documents in %s", dir)
	}
	sort.Strings(paths)

	langs := make([]Language, 0, len(paths))
	for _, p := range paths {
		b, err := os.ReadFile(p)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", filepath.Base(p), err)
		}
		var l Language
		if err := json.Unmarshal(b, &l); err != nil {
			return nil, fmt.Errorf("parse %s: %w", filepath.Base(p), err)
		}
		if l.Code == "" {
			l.Code = strings.TrimSuffix(filepath.Base(p), ".json")
		}
		langs = append(langs, l)
	}
	return NewRegistry(langs...), nil
}

// Merge returns a new registry with overrides applied. Existing languages get
// their stop words appended and other set fields replaced; unknown codes are
// registered after the existing languages, in code order.
func (r *Registry) Merge(overrides map[string]Override) *Registry {
	out := NewRegistry()
	for _, code := range r.order {
		l := r.langs[code]
		if o, ok := overrides[code]; ok {
			l = l.merge(o)
		}
		out.put(l)
	}

	var added []string
	for code := range overrides {
		if _, ok := r.langs[code]; !ok {
			added = append(added, code)
		}
	}
	sort.Strings(added)
	for _, code := range added {
		l := Language{Code: code, Name: code}.merge(overrides[code])
		out.put(l)
	}
	return out
}

// Lookup returns the language registered under code.
func (r *Registry) Lookup(code string) (Language, bool) {
	l, ok := r.langs[code]
	if !ok {
		return Language{}, false
	}
	return l.clone(), true
}

// Codes returns language codes in registration order.
func (r *Registry) Codes() []string {
	return append([]string(nil), r.order...)
}

// IsStopWord reports whether word is a stop word for the language.
func (r *Registry) IsStopWord(code, word string) bool {
	_, ok := r.stops[code][word]
	return ok
}
