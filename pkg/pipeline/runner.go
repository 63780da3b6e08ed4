package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/infcat/pkg/cache"
	"github.com/matzehuels/infcat/pkg/catalog"
	errs "github.com/matzehuels/infcat/pkg/errors"
	"github.com/matzehuels/infcat/pkg/inf"
	"github.com/matzehuels/infcat/pkg/observability"
	"github.com/matzehuels/infcat/pkg/resolve"
)

const keyTypeResolve = "resolve"

// Runner executes the pipeline with caching.
//
// The Runner holds no per-run state; concurrent runs with different
// options may share one.
type Runner struct {
	Cache   cache.Cache
	Keyer   cache.Keyer
	Builder catalog.Builder
	Logger  *log.Logger

	// TTL is how long resolved manifests stay cached. Zero means
	// cache.TTLResolve.
	TTL time.Duration
}

// NewRunner fills nil arguments with a NullCache, the default keyer, an
// ExecBuilder running makecat, and the default logger.
func NewRunner(c cache.Cache, keyer cache.Keyer, builder catalog.Builder, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if builder == nil {
		builder = &catalog.ExecBuilder{}
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:   c,
		Keyer:   keyer,
		Builder: builder,
		Logger:  logger,
	}
}

// Execute resolves the descriptor (if any), appends the extra files and
// builds the catalog.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}

	runID := uuid.NewString()
	opts.Logger = opts.Logger.With("run", runID[:8])
	result := &Result{
		RunID:      runID,
		HardwareID: opts.HardwareID,
		OS:         opts.OS,
		OSAttr:     opts.OSAttr,
	}

	if opts.InfPath != "" {
		start := time.Now()
		res, hit, err := r.Resolve(ctx, opts)
		if err != nil {
			return nil, fmt.Errorf("resolve %s: %w", opts.InfPath, err)
		}
		result.Descriptor = opts.InfPath
		result.HardwareID = res.HardwareID
		result.Files = res.Files
		result.Trace = res.Trace
		result.CacheHit = hit
		result.Stats.ResolveTime = time.Since(start)

		opts.Logger.Info("resolved descriptor",
			"inf", opts.InfPath,
			"files", len(res.Files),
			"cached", hit,
			"duration", result.Stats.ResolveTime)
	}

	files, err := opts.AppendFiles(result.Files)
	if err != nil {
		return nil, err
	}
	result.Files = files

	opts.Logger.Debug("hardware id", "hwid", result.HardwareID)
	for i, f := range result.Files {
		opts.Logger.Debug("manifest entry", "index", i, "file", f)
	}

	start := time.Now()
	observability.Catalog().OnCatalogStart(ctx, opts.OutputPath, len(result.Files))
	err = r.Builder.Build(ctx, catalog.Request{
		OutputPath: opts.OutputPath,
		HardwareID: result.HardwareID,
		SearchDir:  opts.DriverDir,
		Files:      result.Files,
		OS:         opts.OS,
		OSAttr:     opts.OSAttr,
	})
	result.Stats.CatalogTime = time.Since(start)
	observability.Catalog().OnCatalogComplete(ctx, opts.OutputPath, result.Stats.CatalogTime, err)
	if err != nil {
		return nil, fmt.Errorf("build catalog: %w", err)
	}

	opts.Logger.Info("built catalog",
		"out", opts.OutputPath,
		"files", len(result.Files),
		"duration", result.Stats.CatalogTime)

	return result, nil
}

// Resolve resolves opts.InfPath, consulting the cache first. The bool
// reports a cache hit.
func (r *Runner) Resolve(ctx context.Context, opts Options) (resolve.Result, bool, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForResolve(); err != nil {
		return resolve.Result{}, false, err
	}
	seed, path := opts.SeedAndPath()

	data, err := os.ReadFile(path)
	if err != nil {
		return resolve.Result{}, false, errs.Wrap(errs.ErrCodeInvalidFormat, err, "read %s", path)
	}

	useCache := !opts.Trace
	cacheKey := r.Keyer.ResolveKey(cache.Hash(data), opts.ResolveKeyOpts(seed))

	if useCache && !opts.Refresh {
		if cached, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			var res resolve.Result
			if err := json.Unmarshal(cached, &res); err == nil {
				observability.Cache().OnCacheHit(ctx, keyTypeResolve)
				opts.Logger.Debug("resolve cache hit", "key", cacheKey)
				return res, true, nil
			}
		} else if err != nil {
			opts.Logger.Warn("cache read failed", "err", err)
		}
		observability.Cache().OnCacheMiss(ctx, keyTypeResolve)
	}

	start := time.Now()
	observability.Resolve().OnResolveStart(ctx, path)
	res, err := r.resolve(ctx, data, path, seed, opts)
	observability.Resolve().OnResolveComplete(ctx, path, len(res.Files), time.Since(start), err)
	if err != nil {
		return resolve.Result{}, false, err
	}

	if useCache {
		if encoded, err := json.Marshal(res); err == nil {
			if err := r.Cache.Set(ctx, cacheKey, encoded, r.ttl()); err != nil {
				opts.Logger.Warn("cache write failed", "err", err)
			} else {
				observability.Cache().OnCacheSet(ctx, keyTypeResolve, len(encoded))
			}
		}
	}
	return res, false, nil
}

func (r *Runner) resolve(ctx context.Context, data []byte, path string, seed []string, opts Options) (resolve.Result, error) {
	d, err := inf.Parse(data, path, inf.Options{RequireSignature: opts.RequireSignature})
	if err != nil {
		return resolve.Result{}, err
	}
	defer d.Close()
	return resolve.ResolveDescriptor(ctx, d, opts.ResolveOptions(seed))
}

// Close releases the cache.
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

func (r *Runner) ttl() time.Duration {
	if r.TTL > 0 {
		return r.TTL
	}
	return cache.TTLResolve
}

func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
