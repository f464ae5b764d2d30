// Package prompt holds the parameterized instruction templates sent to
// the generation models and renders them by placeholder substitution.
package prompt

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/BurntSushi/toml"
)

// ID names one of the fixed templates.
type ID string

const (
	Analysis ID = "analysis"
	Title    ID = "title"
	Stats    ID = "stats"
	Art      ID = "art"
)

// placeholderNames is the full supplier set: every placeholder any
// template may reference has a matching field on card.Analysis.
var placeholderNames = []string{
	"subject", "visualTraits", "category", "strength", "stamina", "agility",
}

var placeholderPattern = regexp.MustCompile(`\{\{([a-zA-Z][a-zA-Z0-9]*)\}\}`)

// Overrides replaces template bodies wholesale, keyed by template id.
type Overrides map[ID]string

// Registry is an immutable set of named templates. Construct once,
// inject into the assembler.
type Registry struct {
	templates map[ID]string
}

// NewRegistry builds a registry from the built-in templates plus any
// overrides. Overrides referencing an unknown template id or an unknown
// placeholder are rejected here, not at render time.
func NewRegistry(overrides Overrides) (*Registry, error) {
	templates := map[ID]string{
		Analysis: strings.ReplaceAll(defaultAnalysisTemplate, "{{categories}}", categoryList()),
		Title:    defaultTitleTemplate,
		Stats:    defaultStatsTemplate,
		Art:      defaultArtTemplate,
	}

	for id, body := range overrides {
		if _, ok := templates[id]; !ok {
			return nil, fmt.Errorf("override for unknown template %q", id)
		}
		if strings.TrimSpace(body) == "" {
			return nil, fmt.Errorf("override for template %q is empty", id)
		}
		templates[id] = body
	}

	for id, body := range templates {
		for _, name := range scanPlaceholders(body) {
			if !knownPlaceholder(name) {
				return nil, fmt.Errorf("template %q references unknown placeholder %q", id, name)
			}
		}
	}

	return &Registry{templates: templates}, nil
}

// Render substitutes every supplied placeholder into the template body.
// Placeholders absent from values are left in place so the drift is
// visible downstream rather than silently masked.
func (r *Registry) Render(id ID, values map[string]string) (string, error) {
	body, ok := r.templates[id]
	if !ok {
		return "", fmt.Errorf("unknown template %q", id)
	}
	for name, value := range values {
		body = strings.ReplaceAll(body, "{{"+name+"}}", value)
	}
	return body, nil
}

// Placeholders lists the distinct placeholders a template references,
// in order of first appearance.
func (r *Registry) Placeholders(id ID) []string {
	return scanPlaceholders(r.templates[id])
}

// LoadOverrides reads template overrides from a TOML file of the form:
//
//	[templates]
//	title = "..."
func LoadOverrides(path string) (Overrides, error) {
	var file struct {
		Templates map[string]string `toml:"templates"`
	}
	if _, err := toml.DecodeFile(path, &file); err != nil {
		return nil, fmt.Errorf("load template overrides: %w", err)
	}

	overrides := make(Overrides, len(file.Templates))
	for id, body := range file.Templates {
		overrides[ID(id)] = body
	}
	return overrides, nil
}

func categoryList() string {
	var b strings.Builder
	for _, c := range Categories {
		b.WriteString("- " + c + "\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func scanPlaceholders(body string) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, m := range placeholderPattern.FindAllStringSubmatch(body, -1) {
		name := m[1]
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}
	return out
}

func knownPlaceholder(name string) bool {
	for _, known := range placeholderNames {
		if known == name {
			return true
		}
	}
	return false
}
