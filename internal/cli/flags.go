package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/infcat/internal/config"
	"github.com/matzehuels/infcat/pkg/catalog"
	"github.com/matzehuels/infcat/pkg/pipeline"
)

// flags holds every command-line value. Values not given on the command
// line are filled from the config file in applyConfig.
type flags struct {
	configPath string
	verbose    bool

	drvPath          string
	infFile          string
	hwid             string
	strict           bool
	dedupe           bool
	maxFiles         int
	requireSignature bool
	noCache          bool
	refresh          bool

	out     string
	os      string
	osAttr  string
	makecat string
	cdfOnly bool
}

// registerPersistent adds the flags shared by the root, resolve and
// explain commands.
func (f *flags) registerPersistent(cmd *cobra.Command) {
	pf := cmd.PersistentFlags()
	pf.StringVar(&f.configPath, "config", "", "config file (default $XDG_CONFIG_HOME/infcat/config.toml)")
	pf.BoolVarP(&f.verbose, "verbose", "v", false, "enable verbose logging")
	pf.StringVarP(&f.drvPath, "drv-path", "d", "", "directory containing the driver files")
	pf.StringVarP(&f.infFile, "inf-file", "i", "", "INF file, relative to --drv-path unless absolute")
	pf.StringVarP(&f.hwid, "hwid", "h", "", "hardware id (overrides the one found in the INF)")
	pf.BoolVar(&f.strict, "strict", false, "fail on malformed lines and enumeration errors instead of skipping them")
	pf.BoolVar(&f.dedupe, "dedupe", false, "drop repeated file names (case-insensitive)")
	pf.IntVar(&f.maxFiles, "max-files", 0, "maximum number of catalog entries (0 = unlimited)")
	pf.BoolVar(&f.requireSignature, "require-signature", true, "reject INFs without a recognised [Version] Signature")
	pf.BoolVar(&f.noCache, "no-cache", false, "disable the resolve cache")
	pf.BoolVar(&f.refresh, "refresh", false, "ignore cached results")
}

// registerBuild adds the catalog flags of the root command.
func (f *flags) registerBuild(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.StringVarP(&f.out, "out", "o", "", "output catalog file")
	fs.StringVarP(&f.os, "OS", "O", catalog.DefaultOS, "catalog OS attribute")
	fs.StringVarP(&f.osAttr, "OSAttr", "A", catalog.DefaultOSAttr, "catalog OSAttr attribute")
	fs.StringVar(&f.makecat, "makecat", catalog.DefaultCommand, "catalog tool to run on the generated CDF")
	fs.BoolVar(&f.cdfOnly, "cdf-only", false, "write the catalog definition file without running the catalog tool")
}

// applyConfig copies config values into flags the user did not set.
func (f *flags) applyConfig(cmd *cobra.Command, cfg *config.Config) {
	changed := func(name string) bool {
		fl := cmd.Flags().Lookup(name)
		return fl != nil && fl.Changed
	}
	if !changed("strict") {
		f.strict = cfg.Strict
	}
	if !changed("dedupe") {
		f.dedupe = cfg.Dedupe
	}
	if !changed("max-files") {
		f.maxFiles = cfg.MaxFiles
	}
	if !changed("require-signature") {
		f.requireSignature = cfg.RequireSignature
	}
	if !changed("OS") {
		f.os = cfg.OS
	}
	if !changed("OSAttr") {
		f.osAttr = cfg.OSAttr
	}
	if !changed("makecat") {
		f.makecat = cfg.Makecat.Command
	}
}

// pipelineOptions converts the flags and trailing arguments.
func (f *flags) pipelineOptions(args []string) pipeline.Options {
	return pipeline.Options{
		InfPath:          f.infFile,
		DriverDir:        f.drvPath,
		OutputPath:       f.out,
		HardwareID:       f.hwid,
		Files:            args,
		OS:               f.os,
		OSAttr:           f.osAttr,
		Strict:           f.strict,
		Dedupe:           f.dedupe,
		MaxFiles:         f.maxFiles,
		RequireSignature: f.requireSignature,
		Refresh:          f.refresh,
	}
}
