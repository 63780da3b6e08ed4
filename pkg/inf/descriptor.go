package inf

import (
	"errors"
	"iter"
	"os"
	"strings"

	errs "github.com/matzehuels/infcat/pkg/errors"
	"github.com/matzehuels/infcat/pkg/textenc"
)

var (
	// ErrNoMoreItems is returned by EnumSection past the last section.
	// It terminates enumeration and is not a failure.
	ErrNoMoreItems = errors.New("no more items")

	// ErrClosed is returned by any lookup on a closed descriptor.
	ErrClosed = errors.New("descriptor closed")
)

// Options configures descriptor loading.
type Options struct {
	// RequireSignature rejects descriptors whose [Version] section lacks a
	// "$Windows NT$" or "$Chicago$" signature.
	RequireSignature bool
}

// Line is one logical line of a section.
type Line struct {
	Key    string   // field 0, empty when the line has no "="
	Values []string // fields 1..N
	Number int      // 1-based source line where the logical line starts
}

// Section is a named, ordered group of lines.
type Section struct {
	Name  string
	Lines []Line
}

// Descriptor is a loaded INF file. It is read-only after loading and must be
// closed when the caller is done with it.
type Descriptor struct {
	name     string
	encoding textenc.Encoding
	sections []*Section
	index    map[string]int
	closed   bool
}

// Open reads, decodes and parses the descriptor at path.
func Open(path string, opts Options) (*Descriptor, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeInvalidFormat, err, "open %s", path)
	}
	return Parse(data, path, opts)
}

// Parse decodes and parses descriptor bytes. name is used in error messages.
func Parse(data []byte, name string, opts Options) (*Descriptor, error) {
	text, enc, err := textenc.Decode(data)
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeInvalidFormat, err, "decode %s", name)
	}

	d := &Descriptor{
		name:     name,
		encoding: enc,
		index:    make(map[string]int),
	}
	if err := d.parse(text); err != nil {
		return nil, err
	}
	d.substituteStrings()

	if opts.RequireSignature {
		if err := d.checkSignature(); err != nil {
			return nil, err
		}
	}
	return d, nil
}

// Name returns the path or label the descriptor was loaded from.
func (d *Descriptor) Name() string { return d.name }

// Encoding returns the detected source encoding.
func (d *Descriptor) Encoding() textenc.Encoding { return d.encoding }

// SectionCount returns the number of distinct sections.
func (d *Descriptor) SectionCount() int { return len(d.sections) }

// Section returns the named section.
func (d *Descriptor) Section(name string) (*Section, bool) {
	if d.closed {
		return nil, false
	}
	i, ok := d.index[strings.ToLower(name)]
	if !ok {
		return nil, false
	}
	return d.sections[i], true
}

// FirstLine returns a cursor on the first line of section whose key equals
// key. An empty key matches every line. A missing section, an empty section
// or no matching line is NOT_FOUND.
func (d *Descriptor) FirstLine(section, key string) (*Cursor, error) {
	if d.closed {
		return nil, ErrClosed
	}
	sec, ok := d.Section(section)
	if !ok {
		return nil, errs.New(errs.ErrCodeNotFound, "section %q not found", section)
	}
	c := &Cursor{d: d, section: sec, key: key, pos: -1}
	if !c.Next() {
		if key == "" {
			return nil, errs.New(errs.ErrCodeNotFound, "section %q is empty", section)
		}
		return nil, errs.New(errs.ErrCodeNotFound, "no %q line in section %q", key, section)
	}
	return c, nil
}

// EnumSection returns the name of the section at index, in order of first
// appearance. Past the last section it returns ErrNoMoreItems.
func (d *Descriptor) EnumSection(index int) (string, error) {
	if d.closed {
		return "", ErrClosed
	}
	if index < 0 || index >= len(d.sections) {
		return "", ErrNoMoreItems
	}
	return d.sections[index].Name, nil
}

// Close releases the descriptor. Further lookups return ErrClosed.
func (d *Descriptor) Close() error {
	d.closed = true
	d.sections = nil
	d.index = nil
	return nil
}

// SectionEnumerator is the index-based enumeration primitive.
type SectionEnumerator interface {
	EnumSection(index int) (string, error)
}

// Enumerate lazily yields every section name of e. It stops at
// ErrNoMoreItems. Any other error is yielded with the index it occurred at
// and enumeration moves on to the next index, except ErrClosed, which ends
// the sequence after being yielded. Consumers stop early by breaking out of
// the loop.
func Enumerate(e SectionEnumerator) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		for i := 0; ; i++ {
			name, err := e.EnumSection(i)
			if errors.Is(err, ErrNoMoreItems) {
				return
			}
			if !yield(name, err) || errors.Is(err, ErrClosed) {
				return
			}
		}
	}
}

// Sections lazily yields every section name in order of first appearance.
func (d *Descriptor) Sections() iter.Seq2[string, error] {
	return Enumerate(d)
}

var validSignatures = []string{"$windows nt$", "$chicago$", "$windows 95$"}

func (d *Descriptor) checkSignature() error {
	c, err := d.FirstLine("Version", "Signature")
	if err != nil {
		return errs.Wrap(errs.ErrCodeInvalidFormat, err, "%s: missing INF signature", d.name)
	}
	sig, err := c.Field(1)
	if err != nil {
		return errs.Wrap(errs.ErrCodeInvalidFormat, err, "%s: empty INF signature", d.name)
	}
	for _, s := range validSignatures {
		if strings.EqualFold(sig, s) {
			return nil
		}
	}
	return errs.New(errs.ErrCodeInvalidFormat, "%s: unsupported INF signature %q", d.name, sig)
}
