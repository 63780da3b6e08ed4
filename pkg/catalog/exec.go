package catalog

import (
	"context"
	"os/exec"
	"path/filepath"
	"strings"

	errs "github.com/matzehuels/infcat/pkg/errors"
)

// DefaultCommand is the catalog tool ExecBuilder runs when none is set.
const DefaultCommand = "makecat"

// ExecBuilder writes a catalog definition and runs an external catalog
// tool on it. The definition path is appended to Args.
type ExecBuilder struct {
	Command string   // default DefaultCommand
	Args    []string // default ["-v"]
	CDF     CDFBuilder
}

// Build writes the definition and runs the tool in the output directory.
// Every path handed to the tool is absolute, so relative request paths
// resolve against the caller's working directory rather than the tool's.
// A failing tool is CATALOG_FAILED with the tool's output attached.
func (b *ExecBuilder) Build(ctx context.Context, req Request) error {
	req, err := absRequest(req)
	if err != nil {
		return err
	}
	gen := b.CDF
	if gen.Path != "" {
		if gen.Path, err = filepath.Abs(gen.Path); err != nil {
			return errs.Wrap(errs.ErrCodeInvalidPath, err, "cdf path %s", gen.Path)
		}
	}
	cdf, err := gen.write(ctx, req)
	if err != nil {
		return err
	}

	name := b.Command
	if name == "" {
		name = DefaultCommand
	}
	args := b.Args
	if args == nil {
		args = []string{"-v"}
	}

	cmd := exec.CommandContext(ctx, name, append(append([]string(nil), args...), cdf)...)
	cmd.Dir = filepath.Dir(req.OutputPath)
	out, err := cmd.CombinedOutput()
	if err != nil {
		msg := strings.TrimSpace(string(out))
		if msg == "" {
			msg = "no output"
		}
		return errs.Wrap(errs.ErrCodeCatalogFailed, err, "%s %s: %s", name, cdf, msg)
	}
	return nil
}

func absRequest(req Request) (Request, error) {
	var err error
	if req.OutputPath != "" {
		if req.OutputPath, err = filepath.Abs(req.OutputPath); err != nil {
			return req, errs.Wrap(errs.ErrCodeInvalidPath, err, "output path %s", req.OutputPath)
		}
	}
	if req.SearchDir != "" {
		if req.SearchDir, err = filepath.Abs(req.SearchDir); err != nil {
			return req, errs.Wrap(errs.ErrCodeInvalidPath, err, "search dir %s", req.SearchDir)
		}
	}
	return req, nil
}
