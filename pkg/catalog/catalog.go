package catalog

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	errs "github.com/matzehuels/infcat/pkg/errors"
)

// Default OS and OSAttr strings: Windows 7, 8 and 10, x64.
const (
	DefaultOS     = "7X64,8X64,10X64"
	DefaultOSAttr = "2:6.1,2:6.2,2:6.4"
)

// Request is everything the catalog step consumes.
type Request struct {
	OutputPath string   // catalog (.cat) to produce
	HardwareID string   // optional
	SearchDir  string   // directory holding the listed files
	Files      []string // manifest entries relative to SearchDir, in order
	OS         string
	OSAttr     string
}

// Validate checks the fields every builder requires.
func (r Request) Validate() error {
	switch {
	case r.OutputPath == "":
		return errs.New(errs.ErrCodeInvalidInput, "catalog output path is required")
	case r.SearchDir == "":
		return errs.New(errs.ErrCodeInvalidInput, "driver directory is required")
	case len(r.Files) == 0:
		return errs.New(errs.ErrCodeInvalidInput, "file list is empty")
	}
	return nil
}

// Builder produces a catalog from a request.
type Builder interface {
	Build(ctx context.Context, req Request) error
}

// CheckFiles locates every requested file under SearchDir and returns their
// paths in request order. Lookups fall back to a case-insensitive match per
// path element, as on the Windows file system the descriptor was written
// for. All missing files are reported together as FILE_NOT_FOUND.
func CheckFiles(req Request) ([]string, error) {
	paths := make([]string, 0, len(req.Files))
	var missing []string
	listings := make(map[string][]os.DirEntry)

	for _, name := range req.Files {
		if err := errs.ValidateFileName(name); err != nil {
			return nil, err
		}
		p, ok := lookup(req.SearchDir, name, listings)
		if !ok {
			missing = append(missing, name)
			continue
		}
		paths = append(paths, p)
	}

	if len(missing) > 0 {
		return nil, errs.New(errs.ErrCodeFileNotFound, "%d file(s) missing from %s: %s",
			len(missing), req.SearchDir, strings.Join(missing, ", "))
	}
	return paths, nil
}

func lookup(dir, name string, listings map[string][]os.DirEntry) (string, bool) {
	cur := dir
	elems := strings.FieldsFunc(name, func(r rune) bool { return r == '/' || r == '\\' })
	for i, elem := range elems {
		next := filepath.Join(cur, elem)
		if _, err := os.Stat(next); err != nil {
			found, ok := matchFold(cur, elem, listings)
			if !ok {
				return "", false
			}
			next = filepath.Join(cur, found)
		}
		if i == len(elems)-1 {
			info, err := os.Stat(next)
			if err != nil || info.IsDir() {
				return "", false
			}
		}
		cur = next
	}
	return cur, len(elems) > 0
}

func matchFold(dir, elem string, listings map[string][]os.DirEntry) (string, bool) {
	entries, ok := listings[dir]
	if !ok {
		entries, _ = os.ReadDir(dir)
		listings[dir] = entries
	}
	for _, e := range entries {
		if strings.EqualFold(e.Name(), elem) {
			return e.Name(), true
		}
	}
	return "", false
}
