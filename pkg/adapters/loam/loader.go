package loam

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/aretw0/loam"
	"github.com/aretw0/loam/pkg/core"
	"github.com/aretw0/turing/pkg/domain"
	"github.com/aretw0/turing/pkg/schema"
	"gopkg.in/yaml.v3"
)

// Loader adapts a Loam repository of machine documents to ports.DefinitionLoader.
// Each document carries a definition in its frontmatter; the body is free
// text used as the description when the frontmatter has none.
type Loader struct {
	repo  core.Repository
	typed *loam.TypedRepository[DefinitionMetadata]
}

// New wraps an initialised Loam repository.
func New(repo core.Repository) *Loader {
	return &Loader{
		repo:  repo,
		typed: loam.NewTypedRepository[DefinitionMetadata](repo),
	}
}

// Open initialises a read-only, strict repository rooted at dir.
func Open(dir string) (*Loader, error) {
	absPath, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve absolute path: %w", err)
	}
	repo, err := loam.Init(absPath,
		loam.WithStrict(true),
		loam.WithReadOnly(true),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize loam: %w", err)
	}
	return New(repo), nil
}

// OpenWritable initialises a repository that Save can write to.
func OpenWritable(dir string) (*Loader, error) {
	absPath, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve absolute path: %w", err)
	}
	repo, err := loam.Init(absPath, loam.WithVersioning(false))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize loam: %w", err)
	}
	return New(repo), nil
}

// Get resolves a machine by name. The document ID is tried first, then the
// name declared in each document's frontmatter.
func (l *Loader) Get(ctx context.Context, name string) (*domain.Definition, error) {
	if doc, err := l.typed.Get(ctx, name); err == nil {
		return compile(doc.ID, doc.Data, doc.Content)
	}

	docs, err := l.documents(ctx)
	if err != nil {
		return nil, err
	}
	doc, ok := docs[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrMachineNotFound, name)
	}
	return compile(doc.ID, doc.Data, doc.Content)
}

// List returns the names of all machine documents.
func (l *Loader) List(ctx context.Context) ([]string, error) {
	docs, err := l.documents(ctx)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(docs))
	for name := range docs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// documents loads every document keyed by machine name. List entries come
// from the repository index and carry no frontmatter, so each one is read.
func (l *Loader) documents(ctx context.Context) (map[string]*loam.DocumentModel[DefinitionMetadata], error) {
	entries, err := l.typed.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("loam list failed: %w", err)
	}

	docs := make(map[string]*loam.DocumentModel[DefinitionMetadata], len(entries))
	for _, entry := range entries {
		doc, err := l.typed.Get(ctx, entry.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", entry.ID, err)
		}
		name := machineName(doc.ID, doc.Data)
		if existing, ok := docs[name]; ok {
			return nil, fmt.Errorf("collision detected: machine '%s' is defined in both '%s' and '%s'", name, existing.ID, doc.ID)
		}
		docs[name] = doc
	}
	return docs, nil
}

// Save writes def as a markdown document named after the machine.
func (l *Loader) Save(ctx context.Context, def *domain.Definition) error {
	front, err := yaml.Marshal(schema.FromDefinition(def))
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", def.Name, err)
	}

	var b strings.Builder
	b.WriteString("---\n")
	b.Write(front)
	b.WriteString("---\n")
	fmt.Fprintf(&b, "# %s\n", def.Name)
	if def.Description != "" {
		fmt.Fprintf(&b, "\n%s\n", def.Description)
	}

	return l.repo.Save(ctx, core.Document{
		ID:      def.Name + ".md",
		Content: b.String(),
	})
}

func compile(id string, meta DefinitionMetadata, content string) (*domain.Definition, error) {
	if meta.Name == "" {
		meta.Name = trimExtension(id)
	}
	if meta.Description == "" {
		meta.Description = summary(content)
	}
	def, err := schema.FromMap(meta.raw())
	if err != nil {
		return nil, fmt.Errorf("document %s: %w", id, err)
	}
	return def, nil
}

func machineName(id string, meta DefinitionMetadata) string {
	if meta.Name != "" {
		return meta.Name
	}
	return trimExtension(id)
}

// summary returns the first paragraph of the body that is not a heading.
func summary(content string) string {
	for _, para := range strings.Split(content, "\n\n") {
		para = strings.TrimSpace(para)
		if para == "" || strings.HasPrefix(para, "#") {
			continue
		}
		return strings.Join(strings.Fields(para), " ")
	}
	return ""
}

func trimExtension(id string) string {
	ext := filepath.Ext(id)
	if ext != "" {
		return filepath.ToSlash(strings.TrimSuffix(id, ext))
	}
	return filepath.ToSlash(id)
}
