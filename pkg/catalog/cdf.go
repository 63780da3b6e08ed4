package catalog

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	errs "github.com/matzehuels/infcat/pkg/errors"
)

// Catalog attribute flags: CRYPTCAT_ATTR_NAMEASCII | CRYPTCAT_ATTR_DATAASCII |
// CRYPTCAT_ATTR_AUTHENTICATED.
const attrFlags = "0x10010001"

// CDFBuilder writes a MakeCat catalog definition file for a request.
type CDFBuilder struct {
	// Path is where the definition is written. Empty means the request's
	// output path with a .cdf extension.
	Path string
}

// CDFPath returns the default definition path for a catalog output path.
func CDFPath(output string) string {
	return strings.TrimSuffix(output, filepath.Ext(output)) + ".cdf"
}

func (b *CDFBuilder) path(req Request) string {
	if b != nil && b.Path != "" {
		return b.Path
	}
	return CDFPath(req.OutputPath)
}

// Build validates the request, checks the files and writes the definition.
func (b *CDFBuilder) Build(ctx context.Context, req Request) error {
	_, err := b.write(ctx, req)
	return err
}

func (b *CDFBuilder) write(ctx context.Context, req Request) (string, error) {
	if err := req.Validate(); err != nil {
		return "", err
	}
	paths, err := CheckFiles(req)
	if err != nil {
		return "", err
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	path := b.path(req)
	f, err := os.Create(path)
	if err != nil {
		return "", errs.Wrap(errs.ErrCodeCatalogFailed, err, "create %s", path)
	}
	if err := WriteCDF(f, req, paths); err != nil {
		f.Close()
		return "", errs.Wrap(errs.ErrCodeCatalogFailed, err, "write %s", path)
	}
	if err := f.Close(); err != nil {
		return "", errs.Wrap(errs.ErrCodeCatalogFailed, err, "write %s", path)
	}
	return path, nil
}

// WriteCDF writes the catalog definition. paths are the on-disk locations
// of req.Files, index for index.
func WriteCDF(w io.Writer, req Request, paths []string) error {
	if len(paths) != len(req.Files) {
		return fmt.Errorf("have %d paths for %d files", len(paths), len(req.Files))
	}

	bw := bufio.NewWriter(w)
	fmt.Fprint(bw, "[CatalogHeader]\r\n")
	fmt.Fprintf(bw, "Name=%s\r\n", filepath.Base(req.OutputPath))
	fmt.Fprintf(bw, "ResultDir=%s\r\n", filepath.Dir(req.OutputPath))
	fmt.Fprint(bw, "PublicVersion=0x0000001\r\n")
	fmt.Fprint(bw, "EncodingType=0x00010001\r\n")

	attrs := catalogAttrs(req)
	for i, a := range attrs {
		fmt.Fprintf(bw, "CATATTR%d=%s:%s\r\n", i+1, attrFlags, a)
	}

	fmt.Fprint(bw, "\r\n[CatalogFiles]\r\n")
	labels := make(map[string]int, len(req.Files))
	for i, name := range req.Files {
		label := fileLabel(name, labels)
		fmt.Fprintf(bw, "<hash>%s=%s\r\n", label, paths[i])
		if req.OSAttr != "" {
			fmt.Fprintf(bw, "<hash>%sATTR1=%s:OSAttr:%s\r\n", label, attrFlags, req.OSAttr)
		}
	}
	return bw.Flush()
}

func catalogAttrs(req Request) []string {
	var attrs []string
	if req.OS != "" {
		attrs = append(attrs, "OS:"+req.OS)
	}
	if req.OSAttr != "" {
		attrs = append(attrs, "OSAttr:"+req.OSAttr)
	}
	if req.HardwareID != "" {
		attrs = append(attrs, "HWID1:"+strings.ToLower(req.HardwareID))
	}
	return attrs
}

// fileLabel returns a unique member label. Repeated names get a numeric
// suffix, since the manifest is not deduplicated.
func fileLabel(name string, seen map[string]int) string {
	base := strings.ReplaceAll(strings.ReplaceAll(name, "\\", "_"), "/", "_")
	key := strings.ToLower(base)
	seen[key]++
	if n := seen[key]; n > 1 {
		return fmt.Sprintf("%s_%d", base, n)
	}
	return base
}
