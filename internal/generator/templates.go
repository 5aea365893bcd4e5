package generator

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"text/template"

	"gopkg.in/yaml.v3"

	"codeforge/internal/logging"
)

// Template is a reusable code skeleton keyed by "<language>_<type>".
type Template struct {
	Name        string   `yaml:"name"`
	Language    Language `yaml:"language"`
	Text        string   `yaml:"template"`
	Variables   []string `yaml:"variables"`
	Description string   `yaml:"description"`
}

// templateData is what built-in and user templates render against.
type templateData struct {
	Name        string // exported identifier derived from the description
	Description string
	Body        string
}

// TemplateRegistry holds built-in and user-loaded templates.
type TemplateRegistry struct {
	mu        sync.RWMutex
	templates map[string]Template
}

// NewTemplateRegistry returns a registry seeded with the built-ins.
func NewTemplateRegistry() *TemplateRegistry {
	r := &TemplateRegistry{templates: make(map[string]Template)}
	for _, t := range builtinTemplates() {
		r.templates[t.Name] = t
	}
	return r
}

// Get looks up a template by key.
func (r *TemplateRegistry) Get(key string) (Template, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.templates[key]
	return t, ok
}

// Put adds or replaces a template.
func (r *TemplateRegistry) Put(t Template) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.templates[t.Name] = t
}

// Names returns all registered template keys.
func (r *TemplateRegistry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.templates))
	for name := range r.templates {
		names = append(names, name)
	}
	return names
}

// Render fills a template for a request.
func (r *TemplateRegistry) Render(key string, req Request) (string, error) {
	t, ok := r.Get(key)
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrNoTemplate, key)
	}

	tmpl, err := template.New(t.Name).Parse(t.Text)
	if err != nil {
		return "", fmt.Errorf("template %s is malformed: %w", t.Name, err)
	}

	data := templateData{
		Name:        identifierFrom(req.Description),
		Description: req.Description,
		Body:        "// TODO: implement " + req.Description,
	}

	var sb strings.Builder
	if err := tmpl.Execute(&sb, data); err != nil {
		return "", fmt.Errorf("failed to render template %s: %w", t.Name, err)
	}
	return sb.String(), nil
}

// LoadDir loads user template packs (*.yaml) into the registry.
// Malformed files are skipped with a log line, not fatal.
func (r *TemplateRegistry) LoadDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("failed to read templates dir: %w", err)
	}

	loaded := 0
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".yaml") {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		if err := r.loadFile(path); err != nil {
			logging.Get(logging.CategoryTemplates).Warn("skipping %s: %v", path, err)
			continue
		}
		loaded++
	}

	logging.Templates("loaded %d user template packs from %s", loaded, dir)
	return nil
}

// loadFile loads one template pack file. A file may hold one template or
// a list.
func (r *TemplateRegistry) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	var many []Template
	if err := yaml.Unmarshal(data, &many); err == nil && len(many) > 0 {
		for _, t := range many {
			if t.Name == "" {
				return fmt.Errorf("template without name in %s", path)
			}
			r.Put(t)
		}
		return nil
	}

	var one Template
	if err := yaml.Unmarshal(data, &one); err != nil {
		return fmt.Errorf("failed to parse template pack: %w", err)
	}
	if one.Name == "" {
		return fmt.Errorf("template without name in %s", path)
	}
	r.Put(one)
	return nil
}

// builtinTemplates returns the compiled-in fallback templates.
func builtinTemplates() []Template {
	return []Template{
		{
			Name:        "go_function",
			Language:    LangGo,
			Description: "Template for Go functions",
			Variables:   []string{"Name", "Description", "Body"},
			Text: `// {{.Name}} {{.Description}}
func {{.Name}}() error {
	{{.Body}}
	return nil
}
`,
		},
		{
			Name:        "go_struct",
			Language:    LangGo,
			Description: "Template for Go struct types",
			Variables:   []string{"Name", "Description", "Body"},
			Text: `// {{.Name}} {{.Description}}
type {{.Name}} struct {
}

// New{{.Name}} creates a {{.Name}}.
func New{{.Name}}() *{{.Name}} {
	{{.Body}}
	return &{{.Name}}{}
}
`,
		},
		{
			Name:        "go_test",
			Language:    LangGo,
			Description: "Template for Go test functions",
			Variables:   []string{"Name", "Description", "Body"},
			Text: `// Test{{.Name}} {{.Description}}
func Test{{.Name}}(t *testing.T) {
	{{.Body}}
}
`,
		},
	}
}
