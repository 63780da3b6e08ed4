package resolve

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/log"

	errs "github.com/matzehuels/infcat/pkg/errors"
	"github.com/matzehuels/infcat/pkg/inf"
)

const (
	sectionManufacturer = "Manufacturer"
	keyCopyFiles        = "CopyFiles"
)

// Descriptor is the lookup surface the walk needs. *inf.Descriptor
// implements it.
type Descriptor interface {
	FirstLine(section, key string) (*inf.Cursor, error)
	EnumSection(index int) (string, error)
}

// Result is the resolved manifest.
type Result struct {
	HardwareID string   `json:"hwid,omitempty"`
	Files      []string `json:"files"`
	Trace      *Node    `json:"trace,omitempty"`
}

// Resolve opens the descriptor at path, walks it and closes it again,
// whatever the outcome.
func Resolve(ctx context.Context, path string, opts Options) (Result, error) {
	d, err := inf.Open(path, opts.Load)
	if err != nil {
		return Result{}, err
	}
	defer d.Close()

	return ResolveDescriptor(ctx, d, opts)
}

// ResolveDescriptor walks an open descriptor. The caller keeps ownership of
// d. On failure the returned Result is empty.
func ResolveDescriptor(ctx context.Context, d Descriptor, opts Options) (Result, error) {
	agg, err := newAggregator(opts)
	if err != nil {
		return Result{}, err
	}

	w := &walker{
		ctx:    ctx,
		d:      d,
		mode:   opts.Mode,
		logger: opts.logger(),
		agg:    agg,
	}
	var root *Node
	if opts.Trace {
		root = &Node{Kind: KindDescriptor, Name: descriptorName(d)}
	}

	if err := w.run(root); err != nil {
		return Result{}, err
	}

	res := agg.result()
	res.Trace = root
	return res, nil
}

func descriptorName(d Descriptor) string {
	if n, ok := d.(interface{ Name() string }); ok {
		return n.Name()
	}
	return "descriptor"
}

type walker struct {
	ctx    context.Context
	d      Descriptor
	mode   Mode
	logger *log.Logger
	agg    *aggregator
}

func (w *walker) run(root *Node) error {
	c, err := w.d.FirstLine(sectionManufacturer, "")
	if err != nil {
		if errs.Is(err, errs.ErrCodeNotFound) {
			return errs.Wrap(errs.ErrCodeNotFound, err, "empty Manufacturer section")
		}
		return fmt.Errorf("read Manufacturer section: %w", err)
	}

	for ok := true; ok; ok = c.Next() {
		if err := w.ctx.Err(); err != nil {
			return err
		}
		if err := w.manufacturer(c, root); err != nil {
			return err
		}
	}
	return nil
}

// manufacturer walks the models sections of one Manufacturer line.
func (w *walker) manufacturer(c *inf.Cursor, parent *Node) error {
	label, _ := c.Field(0)
	base, err := c.Field(1)
	if err != nil {
		return w.skipLine(err)
	}
	w.logger.Debug("models section name", "manufacturer", label, "section", base)

	tags := make([]string, 0, c.FieldCount())
	for f := 2; f <= c.FieldCount(); f++ {
		tag, err := c.Field(f)
		if err != nil {
			return w.skipLine(err)
		}
		w.logger.Debug("target OS version", "tag", tag)
		tags = append(tags, tag)
	}

	node := parent.add(KindManufacturer, label, base)
	for _, name := range modelSections(base, tags) {
		if err := w.models(name, node); err != nil {
			return err
		}
	}
	return nil
}

// models walks the device description lines of one models section.
func (w *walker) models(name string, parent *Node) error {
	w.logger.Debug("model", "section", name)
	node := parent.add(KindModels, name, "")

	c, err := w.d.FirstLine(name, "")
	if err != nil {
		if errs.Is(err, errs.ErrCodeNotFound) {
			node.missing()
			return nil
		}
		return err
	}

	for ok := true; ok; ok = c.Next() {
		if err := w.ctx.Err(); err != nil {
			return err
		}
		if err := w.device(c, node); err != nil {
			return err
		}
	}
	return nil
}

// device handles one device description line: it records the hardware id
// if none is known yet and collects the files of its install sections.
func (w *walker) device(c *inf.Cursor, parent *Node) error {
	label, _ := c.Field(0)
	install, err := c.Field(1)
	if err != nil {
		return w.skipLine(err)
	}

	var hwid string
	if c.FieldCount() >= 2 {
		raw, err := c.Field(2)
		if err != nil {
			return w.skipLine(err)
		}
		hwid = StripHardwareID(raw)
		if w.agg.setHardwareID(hwid) {
			w.logger.Debug("hardware id", "hwid", hwid)
		}
	}
	w.logger.Debug("device", "desc", label, "install", install, "hwid", hwid)

	return w.installSections(install, parent.add(KindDevice, label, hwid))
}

// installSections enumerates every section and collects the files of those
// matching the install base name, in enumeration order.
func (w *walker) installSections(install string, parent *Node) error {
	for name, err := range inf.Enumerate(w.d) {
		if err != nil {
			if errors.Is(err, inf.ErrClosed) {
				return err
			}
			perr := errs.Wrap(errs.ErrCodePlatform, err, "enumerate sections for %q", install)
			if w.mode == Strict {
				return perr
			}
			w.logger.Warn("section enumeration failed, skipping entry", "install", install, "err", err)
			continue
		}
		if !MatchInstallSection(install, name) {
			continue
		}
		w.logger.Debug("install section", "section", name)
		if err := w.copyFiles(name, parent.add(KindInstall, name, "")); err != nil {
			return err
		}
	}
	return nil
}

func (w *walker) skipLine(err error) error {
	if w.mode == Strict {
		return err
	}
	w.logger.Warn("skipping malformed line", "err", err)
	return nil
}

// literalPrefix marks a CopyFiles value naming a single file directly.
const literalPrefix = "@"

// copyFiles resolves the CopyFiles directives of one install section.
func (w *walker) copyFiles(section string, parent *Node) error {
	c, err := w.d.FirstLine(section, keyCopyFiles)
	if err != nil {
		if errs.Is(err, errs.ErrCodeNotFound) {
			return nil
		}
		return err
	}

	for ok := true; ok; ok = c.Next() {
		value, err := c.Field(1)
		if err != nil {
			if err := w.skipLine(err); err != nil {
				return err
			}
			continue
		}
		w.logger.Debug("copy files", "section", section, "value", value)

		if name, ok := strings.CutPrefix(value, literalPrefix); ok {
			if err := w.addFile(name, parent); err != nil {
				return err
			}
			continue
		}
		if err := w.fileList(value, parent.add(KindFileList, value, "")); err != nil {
			return err
		}
	}
	return nil
}

// fileList collects field 1 of every line of a file-list section. A missing
// section skips the directive.
func (w *walker) fileList(section string, node *Node) error {
	c, err := w.d.FirstLine(section, "")
	if err != nil {
		if errs.Is(err, errs.ErrCodeNotFound) {
			w.logger.Debug("file list section absent, skipping", "section", section)
			node.missing()
			return nil
		}
		return err
	}

	for ok := true; ok; ok = c.Next() {
		name, err := c.Field(1)
		if err != nil {
			if err := w.skipLine(err); err != nil {
				return err
			}
			continue
		}
		if err := w.addFile(name, node); err != nil {
			return err
		}
	}
	return nil
}

func (w *walker) addFile(name string, parent *Node) error {
	if name == "" {
		w.logger.Warn("ignoring empty file name")
		return nil
	}
	added, err := w.agg.add(name)
	if err != nil {
		return err
	}
	if added {
		w.logger.Debug("file", "index", len(w.agg.files)-1, "name", name)
		parent.add(KindFile, name, "")
	}
	return nil
}
