package provider

import (
	"sort"
)

// Document is a declarative bundle of packages, configuration files, and
// manifest scripts that amaris can apply to a project.
type Document struct {
	Name           string        `json:"name"`
	Description    string        `json:"description"`
	PackageManager string        `json:"package_manager"`
	Packages       []string      `json:"packages"`
	Configuration  []ConfigEntry `json:"configuration"`
	Scripts        []ScriptEntry `json:"scripts"`
}

// ConfigEntry describes one configuration file to materialize into the
// project. FileLocation is a directory relative to the project root and
// SourceFrom locates the template content (path under the provider's configs
// dir, or an http(s) URL).
type ConfigEntry struct {
	FileLocation string `json:"file_location"`
	FileName     string `json:"file_name"`
	SourceFrom   string `json:"source_from"`
}

// ScriptEntry describes one package.json script.
type ScriptEntry struct {
	Name   string `json:"name"`
	Script string `json:"script"`
}

// Registry holds loaded provider documents keyed by name.
type Registry struct {
	providers map[string]Document
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{providers: map[string]Document{}}
}

// Register adds or replaces a document under its name.
func (r *Registry) Register(doc Document) {
	r.providers[doc.Name] = doc
}

// Get returns the document for a name.
func (r *Registry) Get(name string) (Document, bool) {
	doc, ok := r.providers[name]
	return doc, ok
}

// Names returns registered provider names in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.providers))
	for name := range r.providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// List returns registered documents ordered by name.
func (r *Registry) List() []Document {
	docs := make([]Document, 0, len(r.providers))
	for _, name := range r.Names() {
		docs = append(docs, r.providers[name])
	}
	return docs
}
