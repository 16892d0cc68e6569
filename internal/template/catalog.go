package template

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
)

var (
	// ErrNotFound is returned when a requested template doesn't exist
	ErrNotFound = errors.New("template not found")
	// ErrInvalidName is returned for names that escape the catalog root
	ErrInvalidName = errors.New("invalid template name")
	// ErrTooLarge is returned when a template exceeds the read cap
	ErrTooLarge = errors.New("template too large")
)

// DefaultMaxBytes caps how much of a template file Get will read.
const DefaultMaxBytes = 256 << 10

// titleProbeBytes is how much of a file List inspects for a title line.
const titleProbeBytes = 512

// Info describes one template without its content.
type Info struct {
	Name  string
	Title string
	Size  int64
}

// Template is a fully loaded template.
type Template struct {
	Name    string
	Title   string
	Content string
}

// Catalog enumerates and reads templates under a directory.
type Catalog struct {
	dir      string
	maxBytes int64
}

// NewCatalog creates a Catalog rooted at dir.
func NewCatalog(dir string) *Catalog {
	return &Catalog{
		dir:      dir,
		maxBytes: DefaultMaxBytes,
	}
}

// List returns every template under the catalog root, ordered by name.
func (c *Catalog) List(ctx context.Context) ([]Info, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var infos []Info
	err := filepath.Walk(c.dir, func(p string, fi os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if fi.IsDir() {
			// Skip hidden directories, but never the root itself
			if strings.HasPrefix(fi.Name(), ".") && p != c.dir {
				return filepath.SkipDir
			}
			return nil
		}
		if !allowedExt(p) {
			return nil
		}

		rel, err := filepath.Rel(c.dir, p)
		if err != nil {
			return err
		}
		name := filepath.ToSlash(rel)
		infos = append(infos, Info{
			Name:  name,
			Title: c.probeTitle(p, name),
			Size:  fi.Size(),
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list templates: %w", err)
	}

	sort.Slice(infos, func(i, j int) bool { return infos[i].Name < infos[j].Name })
	return infos, nil
}

// Get reads one template by name.
func (c *Catalog) Get(ctx context.Context, name string) (*Template, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := validateName(name); err != nil {
		return nil, err
	}
	if !allowedExt(name) {
		return nil, ErrNotFound
	}

	full := filepath.Join(c.dir, filepath.FromSlash(name))
	fi, err := os.Stat(full)
	if err != nil || fi.IsDir() {
		return nil, ErrNotFound
	}
	if fi.Size() > c.maxBytes {
		return nil, fmt.Errorf("%w: %d bytes exceeds cap of %d", ErrTooLarge, fi.Size(), c.maxBytes)
	}

	content, err := os.ReadFile(full)
	if err != nil {
		return nil, ErrNotFound
	}

	return &Template{
		Name:    name,
		Title:   titleFor(string(content), name),
		Content: string(content),
	}, nil
}

// validateName rejects names that could resolve outside the catalog root
func validateName(name string) error {
	if name == "" {
		return ErrInvalidName
	}
	if strings.ContainsAny(name, "\\\x00") {
		return ErrInvalidName
	}
	if !filepath.IsLocal(filepath.FromSlash(name)) {
		return ErrInvalidName
	}
	return nil
}

// allowedExt reports whether the file is a servable template
func allowedExt(name string) bool {
	switch strings.ToLower(path.Ext(filepath.ToSlash(name))) {
	case ".tmpl", ".txt":
		return true
	}
	return false
}

// probeTitle reads the head of a file and extracts a title from it
func (c *Catalog) probeTitle(fullPath, name string) string {
	f, err := os.Open(fullPath)
	if err != nil {
		return titleFromName(name)
	}
	defer func() { _ = f.Close() }()

	buf := make([]byte, titleProbeBytes)
	n, _ := f.Read(buf)
	return titleFor(string(buf[:n]), name)
}

// titleFor finds the first comment heading in content, falling back to
// a name-derived title.
func titleFor(content, name string) string {
	for _, line := range strings.SplitN(content, "\n", 10) {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		var title string
		switch {
		case strings.HasPrefix(trimmed, "#"):
			title = strings.TrimLeft(trimmed, "#")
		case strings.HasPrefix(trimmed, "//"):
			title = strings.TrimLeft(trimmed, "/")
		default:
			return titleFromName(name)
		}
		title = strings.TrimSpace(title)
		if title != "" {
			return title
		}
		return titleFromName(name)
	}
	return titleFromName(name)
}

// titleFromName derives a readable title from a template name
func titleFromName(name string) string {
	base := path.Base(filepath.ToSlash(name))
	base = strings.TrimSuffix(base, path.Ext(base))
	base = strings.ReplaceAll(base, "_", " ")
	base = strings.ReplaceAll(base, "-", " ")
	return base
}
