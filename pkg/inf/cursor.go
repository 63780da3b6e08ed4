package inf

import (
	"strings"

	errs "github.com/matzehuels/infcat/pkg/errors"
)

// Cursor points at one line of a section and iterates the lines that pass
// its key filter. Line accessors are valid while the last positioning call
// (FirstLine or Next) succeeded.
type Cursor struct {
	d       *Descriptor
	section *Section
	key     string
	pos     int
}

// Next advances to the next line matching the cursor's key filter.
// It returns false at the end of the section.
func (c *Cursor) Next() bool {
	if c.d.closed {
		return false
	}
	for c.pos+1 < len(c.section.Lines) {
		c.pos++
		if c.key == "" || strings.EqualFold(c.section.Lines[c.pos].Key, c.key) {
			return true
		}
	}
	c.pos = len(c.section.Lines)
	return false
}

// Section returns the name of the section the cursor walks.
func (c *Cursor) Section() string { return c.section.Name }

// Line returns the current line.
func (c *Cursor) Line() Line { return c.section.Lines[c.pos] }

// FieldCount returns the number of value fields on the current line.
// Field 0 (the key) is not counted.
func (c *Cursor) FieldCount() int { return len(c.section.Lines[c.pos].Values) }

// Field returns field index of the current line. Index 0 is the key, 1..N
// are the values. Indices outside 0..FieldCount are OUT_OF_RANGE.
func (c *Cursor) Field(index int) (string, error) {
	if c.d.closed {
		return "", ErrClosed
	}
	line := c.section.Lines[c.pos]
	if index == 0 {
		return line.Key, nil
	}
	if index < 0 || index > len(line.Values) {
		return "", errs.New(errs.ErrCodeOutOfRange,
			"field %d out of range: [%s] line %d has %d fields", index, c.section.Name, line.Number, len(line.Values))
	}
	return line.Values[index-1], nil
}
