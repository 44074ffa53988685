// Package skill exposes the embedded Arazzo authoring guide, its reference documents and examples.
package skill

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"io/fs"
	"path"
	"path/filepath"
	"regexp"
	"slices"
	"strings"

	"github.com/SteakFisher/arazzo-writer/errors"
	"github.com/SteakFisher/arazzo-writer/internal/logger"
	"github.com/SteakFisher/arazzo-writer/system"
	"github.com/SteakFisher/arazzo-writer/validator"
	"github.com/yuin/goldmark"
	meta "github.com/yuin/goldmark-meta"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
)

// FileName is the entry document of the bundle.
const FileName = "SKILL.md"

const (
	ErrDocumentNotFound = errors.Error("document not found")
	ErrMissingMetadata  = errors.Error("missing frontmatter")
	ErrInvalidSkill     = errors.Error("invalid skill")
	ErrFileExists       = errors.Error("file already exists")
)

const maxDescriptionLength = 1024

var nameRegex = regexp.MustCompile(`^[a-z0-9-]{1,64}$`)

//go:embed bundle
var bundle embed.FS

// Document is one file of the bundle.
type Document struct {
	// Name is the slash separated path within the bundle, for example references/validation.md.
	Name  string
	Title string
	Size  int
}

// Heading is a markdown heading.
type Heading struct {
	Level int
	Text  string
}

// Skill is a loaded bundle.
type Skill struct {
	Name        string
	Description string
	// Body is SKILL.md without its frontmatter.
	Body string

	fsys fs.FS
	out  system.WritableFS
	docs []Document
}

// Option configures Load.
type Option func(s *Skill)

// WithBundle loads the skill from fsys instead of the embedded bundle.
func WithBundle(fsys fs.FS) Option {
	return func(s *Skill) {
		s.fsys = fsys
	}
}

// WithOutputFS sets the filesystem Install writes to.
func WithOutputFS(fsys system.WritableFS) Option {
	return func(s *Skill) {
		s.out = fsys
	}
}

// Load reads the bundle and its SKILL.md frontmatter.
func Load(opts ...Option) (*Skill, error) {
	sub, err := fs.Sub(bundle, "bundle")
	if err != nil {
		return nil, err
	}

	s := &Skill{fsys: sub, out: &system.FileSystem{}}
	for _, opt := range opts {
		opt(s)
	}

	content, err := fs.ReadFile(s.fsys, FileName)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", FileName, err)
	}

	pctx := parser.NewContext()
	md := goldmark.New(goldmark.WithExtensions(meta.Meta))
	md.Parser().Parse(text.NewReader(content), parser.WithContext(pctx))

	metaData, err := meta.TryGet(pctx)
	if err != nil {
		return nil, ErrMissingMetadata.Wrap(err)
	}
	if len(metaData) == 0 {
		return nil, ErrMissingMetadata
	}

	s.Name, _ = metaData["name"].(string)
	s.Description, _ = metaData["description"].(string)
	s.Body = stripFrontmatter(string(content))

	if err := fs.WalkDir(s.fsys, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		data, err := fs.ReadFile(s.fsys, p)
		if err != nil {
			return err
		}
		s.docs = append(s.docs, Document{Name: p, Title: title(p, data), Size: len(data)})
		return nil
	}); err != nil {
		return nil, fmt.Errorf("failed to list bundle: %w", err)
	}

	slices.SortFunc(s.docs, func(a, b Document) int {
		// SKILL.md first, then alphabetical
		switch {
		case a.Name == FileName:
			return -1
		case b.Name == FileName:
			return 1
		}
		return strings.Compare(a.Name, b.Name)
	})

	return s, nil
}

func stripFrontmatter(content string) string {
	if !strings.HasPrefix(content, "---") {
		return content
	}

	rest := content[3:]
	end := strings.Index(rest, "\n---")
	if end < 0 {
		return content
	}
	rest = rest[end+len("\n---"):]

	return strings.TrimLeft(rest, "\r\n")
}

// title is the first level one heading of a markdown document, or the file name.
func title(name string, data []byte) string {
	if path.Ext(name) == ".md" {
		for _, h := range headings(data) {
			if h.Level == 1 {
				return h.Text
			}
		}
	}
	return path.Base(name)
}

// Documents lists every file of the bundle, SKILL.md first.
func (s *Skill) Documents() []Document {
	return slices.Clone(s.docs)
}

// Read returns the content of a bundle document.
func (s *Skill) Read(name string) ([]byte, error) {
	name = path.Clean(strings.TrimPrefix(filepath.ToSlash(name), "/"))
	if !slices.ContainsFunc(s.docs, func(d Document) bool { return d.Name == name }) {
		return nil, ErrDocumentNotFound.Wrapf("%s", name)
	}
	return fs.ReadFile(s.fsys, name)
}

// Headings returns the headings of a markdown document in order.
func (s *Skill) Headings(name string) ([]Heading, error) {
	data, err := s.Read(name)
	if err != nil {
		return nil, err
	}
	return headings(data), nil
}

func parse(data []byte) ast.Node {
	return goldmark.New(goldmark.WithExtensions(meta.Meta)).Parser().Parse(text.NewReader(data))
}

func headings(data []byte) []Heading {
	var out []Heading
	_ = ast.Walk(parse(data), func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		h, ok := n.(*ast.Heading)
		if !ok || !entering {
			return ast.WalkContinue, nil
		}
		out = append(out, Heading{Level: h.Level, Text: inlineText(h, data)})
		return ast.WalkSkipChildren, nil
	})
	return out
}

func links(data []byte) []string {
	var out []string
	_ = ast.Walk(parse(data), func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if l, ok := n.(*ast.Link); ok && entering {
			out = append(out, string(l.Destination))
		}
		return ast.WalkContinue, nil
	})
	return out
}

func inlineText(n ast.Node, source []byte) string {
	var buf bytes.Buffer
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		if t, ok := c.(*ast.Text); ok {
			buf.Write(t.Segment.Value(source))
			if t.SoftLineBreak() {
				buf.WriteByte(' ')
			}
			continue
		}
		buf.WriteString(inlineText(c, source))
	}
	return buf.String()
}

// Check verifies the bundle is publishable: valid metadata, no dangling links from SKILL.md and
// examples that pass the in-process validation stages.
func (s *Skill) Check(ctx context.Context) []error {
	var errs []error

	if !nameRegex.MatchString(s.Name) {
		errs = append(errs, ErrInvalidSkill.Wrapf("name %q must match %s", s.Name, nameRegex))
	}
	switch {
	case s.Description == "":
		errs = append(errs, ErrInvalidSkill.Wrapf("description is required"))
	case len(s.Description) > maxDescriptionLength:
		errs = append(errs, ErrInvalidSkill.Wrapf("description is %d characters, at most %d are allowed", len(s.Description), maxDescriptionLength))
	}

	for _, dest := range links([]byte(s.Body)) {
		if isExternal(dest) {
			continue
		}
		target, _, _ := strings.Cut(dest, "#")
		if target == "" {
			continue
		}
		if _, err := s.Read(target); err != nil {
			errs = append(errs, ErrInvalidSkill.Wrapf("%s links to %s which is not part of the bundle", FileName, target))
		}
	}

	v := validator.New()
	for _, d := range s.docs {
		if !isArazzoExample(d.Name) {
			continue
		}
		data, err := s.Read(d.Name)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		res, err := v.ValidateBytes(ctx, d.Name, data)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		for _, finding := range res.Findings() {
			errs = append(errs, fmt.Errorf("%s: %w", d.Name, finding))
		}
		if !res.Passed() && len(res.Findings()) == 0 {
			errs = append(errs, ErrInvalidSkill.Wrapf("%s failed validation", d.Name))
		}
	}

	return errs
}

func isExternal(dest string) bool {
	return strings.Contains(dest, "://") || strings.HasPrefix(dest, "mailto:") || strings.HasPrefix(dest, "#")
}

func isArazzoExample(name string) bool {
	return strings.HasPrefix(name, "examples/") && (strings.HasSuffix(name, ".yaml") || strings.HasSuffix(name, ".yml") || strings.HasSuffix(name, ".json"))
}

// Install writes the bundle to dir/<name>/ and returns the paths written.
// Existing files are only overwritten when force is set; otherwise nothing is written.
func (s *Skill) Install(ctx context.Context, dir string, force bool) ([]string, error) {
	if dir == "" {
		return nil, ErrInvalidSkill.Wrapf("install directory is required")
	}
	root := filepath.Join(dir, s.Name)

	if !force {
		for _, d := range s.docs {
			target := filepath.Join(root, filepath.FromSlash(d.Name))
			if _, err := s.out.Stat(target); err == nil {
				return nil, ErrFileExists.Wrapf("%s", target)
			}
		}
	}

	var written []string
	for _, d := range s.docs {
		if err := ctx.Err(); err != nil {
			return written, err
		}

		data, err := fs.ReadFile(s.fsys, d.Name)
		if err != nil {
			return written, err
		}

		target := filepath.Join(root, filepath.FromSlash(d.Name))
		if err := s.out.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return written, fmt.Errorf("failed to create %s: %w", filepath.Dir(target), err)
		}
		if err := s.out.WriteFile(target, data, 0o644); err != nil {
			return written, fmt.Errorf("failed to write %s: %w", target, err)
		}

		logger.G(ctx).WithField("file", target).Debug("installed skill document")
		written = append(written, target)
	}

	return written, nil
}
