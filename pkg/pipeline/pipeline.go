// Package pipeline runs infcat end to end: resolve a driver descriptor into
// a hardware id and file manifest, append extra files, and hand the result
// to a catalog builder.
//
// # Usage
//
//	runner := pipeline.NewRunner(fileCache, nil, nil, logger)
//	defer runner.Close()
//	res, err := runner.Execute(ctx, pipeline.Options{
//	    InfPath:    "usbdrv.inf",
//	    DriverDir:  "dist/driver",
//	    OutputPath: "dist/driver/usbdrv.cat",
//	})
//
// Resolution results are cached by descriptor content and resolve options;
// the catalog step always runs.
package pipeline

import (
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/infcat/pkg/cache"
	"github.com/matzehuels/infcat/pkg/catalog"
	errs "github.com/matzehuels/infcat/pkg/errors"
	"github.com/matzehuels/infcat/pkg/inf"
	"github.com/matzehuels/infcat/pkg/resolve"
)

// Options configures a pipeline run.
type Options struct {
	// InfPath is the descriptor to resolve. A relative path names a file
	// inside DriverDir; an absolute path is read as given. Empty skips
	// resolution and catalogs only Files.
	InfPath    string `json:"inf_file,omitempty"`
	DriverDir  string `json:"drv_path"`
	OutputPath string `json:"out"`
	HardwareID string `json:"hwid,omitempty"`

	// Files are appended after the resolved manifest by base name.
	Files []string `json:"files,omitempty"`

	OS     string `json:"os,omitempty"`
	OSAttr string `json:"os_attr,omitempty"`

	Strict           bool `json:"strict,omitempty"`
	Dedupe           bool `json:"dedupe,omitempty"`
	MaxFiles         int  `json:"max_files,omitempty"`
	RequireSignature bool `json:"require_signature,omitempty"`

	// Refresh ignores cached results but still stores the new one.
	Refresh bool `json:"refresh,omitempty"`

	// Trace records the walk. Traced resolutions bypass the cache.
	Trace bool `json:"-"`

	Logger *log.Logger `json:"-"`
}

// Result is the outcome of a pipeline run.
type Result struct {
	RunID      string
	Descriptor string
	HardwareID string
	Files      []string
	Trace      *resolve.Node
	OS         string
	OSAttr     string

	// CacheHit reports whether the resolution came from the cache.
	CacheHit bool
	Stats    Stats
}

// Stats contains stage timings.
type Stats struct {
	ResolveTime time.Duration
	CatalogTime time.Duration
}

// Manifest returns the JSON manifest form of r.
func (r *Result) Manifest() catalog.Manifest {
	return catalog.Manifest{
		RunID:      r.RunID,
		Descriptor: r.Descriptor,
		HardwareID: r.HardwareID,
		Files:      r.Files,
		OS:         r.OS,
		OSAttr:     r.OSAttr,
		Cached:     r.CacheHit,
	}
}

// SetDefaults fills the OS strings and a discarding logger.
func (o *Options) SetDefaults() {
	if o.OS == "" {
		o.OS = catalog.DefaultOS
	}
	if o.OSAttr == "" {
		o.OSAttr = catalog.DefaultOSAttr
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// ValidateForResolve checks the fields resolution needs.
func (o *Options) ValidateForResolve() error {
	if o.InfPath == "" {
		return errs.New(errs.ErrCodeInvalidInput, "inf file is required")
	}
	if o.MaxFiles < 0 {
		return errs.New(errs.ErrCodeInvalidInput, "max files must not be negative")
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return nil
}

// ValidateAndSetDefaults checks the fields a full run needs and applies
// defaults.
func (o *Options) ValidateAndSetDefaults() error {
	if o.OutputPath == "" {
		return errs.New(errs.ErrCodeInvalidInput, "output catalog path is required")
	}
	if o.DriverDir == "" {
		return errs.New(errs.ErrCodeInvalidInput, "driver path is required")
	}
	if o.MaxFiles < 0 {
		return errs.New(errs.ErrCodeInvalidInput, "max files must not be negative")
	}
	o.SetDefaults()
	return nil
}

// SeedAndPath returns the manifest seed for InfPath and the path to read
// it from. A relative InfPath is listed as written and read from inside
// DriverDir. An absolute one is listed by base name and read as given.
func (o *Options) SeedAndPath() (seed []string, path string) {
	if o.InfPath == "" {
		return nil, ""
	}
	if isAbs(o.InfPath) {
		return []string{baseName(o.InfPath)}, o.InfPath
	}
	return []string{o.InfPath}, filepath.Join(o.DriverDir, o.InfPath)
}

// ResolveOptions converts o to resolver options with the given seed.
func (o *Options) ResolveOptions(seed []string) resolve.Options {
	mode := resolve.Lenient
	if o.Strict {
		mode = resolve.Strict
	}
	return resolve.Options{
		Seed:       seed,
		HardwareID: o.HardwareID,
		Mode:       mode,
		Dedupe:     o.Dedupe,
		MaxFiles:   o.MaxFiles,
		Trace:      o.Trace,
		Load:       inf.Options{RequireSignature: o.RequireSignature},
		Logger:     o.Logger,
	}
}

// ResolveKeyOpts returns the cache key options for a resolution.
func (o *Options) ResolveKeyOpts(seed []string) cache.ResolveKeyOpts {
	return cache.ResolveKeyOpts{
		Seed:             seed,
		HardwareID:       o.HardwareID,
		Strict:           o.Strict,
		Dedupe:           o.Dedupe,
		MaxFiles:         o.MaxFiles,
		RequireSignature: o.RequireSignature,
	}
}

func isAbs(p string) bool {
	return strings.HasPrefix(p, "/") || strings.HasPrefix(p, "\\") || filepath.IsAbs(p)
}

// AppendFiles appends the base names of the extra files to resolved and
// enforces MaxFiles over the combined list.
func (o Options) AppendFiles(resolved []string) ([]string, error) {
	files := append(resolved, BaseNames(o.Files)...)
	if o.MaxFiles > 0 && len(files) > o.MaxFiles {
		return nil, errs.New(errs.ErrCodeCapacity,
			"%d files exceed the limit of %d", len(files), o.MaxFiles)
	}
	return files, nil
}

// BaseNames returns the base name of each path, splitting on both slash
// and backslash. Extra catalog files are listed this way.
func BaseNames(paths []string) []string {
	names := make([]string, 0, len(paths))
	for _, p := range paths {
		names = append(names, baseName(p))
	}
	return names
}

// baseName strips everything up to the last slash or backslash.
func baseName(p string) string {
	if i := strings.LastIndexAny(p, `/\`); i >= 0 {
		return p[i+1:]
	}
	return p
}
