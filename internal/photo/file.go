package photo

import (
	"bytes"
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// OSFile is a file on disk. Its declared type is sniffed from content once at
// construction.
type OSFile struct {
	path     string
	mimeType string
}

// NewOSFile sniffs path and returns it as a File.
func NewOSFile(path string) (*OSFile, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%s is a directory", path)
	}

	var typ string
	if m, err := mimetype.DetectFile(path); err == nil {
		typ = m.String()
	}
	// Sniffing yields application/octet-stream for unknown content; trust the
	// extension in that case.
	if typ == "" || strings.HasPrefix(typ, "application/octet-stream") {
		if byExt := mime.TypeByExtension(strings.ToLower(filepath.Ext(path))); byExt != "" {
			typ = byExt
		}
	}
	return &OSFile{path: path, mimeType: typ}, nil
}

func (f *OSFile) Name() string                 { return filepath.Base(f.path) }
func (f *OSFile) Path() string                 { return f.path }
func (f *OSFile) Type() string                 { return f.mimeType }
func (f *OSFile) Open() (io.ReadCloser, error) { return os.Open(f.path) }

// OpenPaths expands each pattern (plain paths or globs) into files, in
// argument order. Patterns matching nothing and unreadable entries are
// returned as errors alongside whatever did resolve.
func OpenPaths(patterns ...string) ([]File, []error) {
	var (
		files []File
		errs  []error
	)
	for _, p := range patterns {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		p = expandHome(p)

		matches, err := filepath.Glob(p)
		if err != nil {
			errs = append(errs, fmt.Errorf("pattern %q: %w", p, err))
			continue
		}
		if len(matches) == 0 {
			errs = append(errs, fmt.Errorf("no files match %q", p))
			continue
		}
		sort.Strings(matches)
		for _, m := range matches {
			f, err := NewOSFile(m)
			if err != nil {
				errs = append(errs, err)
				continue
			}
			files = append(files, f)
		}
	}
	return files, errs
}

// SplitPatterns splits user input on commas and whitespace.
func SplitPatterns(input string) []string {
	return strings.FieldsFunc(input, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t' || r == '\n'
	})
}

func expandHome(p string) string {
	if !strings.HasPrefix(p, "~/") {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return p
	}
	return filepath.Join(home, p[2:])
}

// MemFile is an in-memory File with an explicit declared type.
type MemFile struct {
	name     string
	mimeType string
	data     []byte
}

func NewMemFile(name, mimeType string, data []byte) *MemFile {
	return &MemFile{name: name, mimeType: mimeType, data: data}
}

func (f *MemFile) Name() string { return f.name }
func (f *MemFile) Type() string { return f.mimeType }
func (f *MemFile) Open() (io.ReadCloser, error) {
	return io.NopCloser(bytes.NewReader(f.data)), nil
}
