package inf

import (
	"strings"

	errs "github.com/matzehuels/infcat/pkg/errors"
)

const stringsSection = "strings"

func (d *Descriptor) parse(text string) error {
	var (
		current *Section
		pending strings.Builder
		start   int
	)

	physical := strings.Split(text, "\n")
	for i, raw := range physical {
		lineNo := i + 1
		content, err := stripComment(strings.TrimSuffix(raw, "\r"))
		if err != nil {
			return errs.Wrap(errs.ErrCodeInvalidFormat, err, "%s:%d", d.name, lineNo)
		}

		if pending.Len() == 0 {
			start = lineNo
		}
		trimmed := strings.TrimRight(content, " \t")
		if strings.HasSuffix(trimmed, "\\") {
			pending.WriteString(strings.TrimSuffix(trimmed, "\\"))
			continue
		}
		pending.WriteString(content)
		logical := strings.TrimSpace(pending.String())
		pending.Reset()

		if logical == "" {
			continue
		}

		if logical[0] == '[' {
			name, err := sectionName(logical)
			if err != nil {
				return errs.Wrap(errs.ErrCodeInvalidFormat, err, "%s:%d", d.name, start)
			}
			current = d.section(name)
			continue
		}

		if current == nil {
			return errs.New(errs.ErrCodeInvalidFormat, "%s:%d: line outside of any section", d.name, start)
		}
		line := parseLine(logical)
		line.Number = start
		current.Lines = append(current.Lines, line)
	}

	if pending.Len() > 0 {
		return errs.New(errs.ErrCodeInvalidFormat, "%s:%d: line continuation at end of file", d.name, start)
	}
	return nil
}

// section returns the named section, creating it on first sight.
// Repeated headers append to the existing section.
func (d *Descriptor) section(name string) *Section {
	key := strings.ToLower(name)
	if i, ok := d.index[key]; ok {
		return d.sections[i]
	}
	sec := &Section{Name: name}
	d.index[key] = len(d.sections)
	d.sections = append(d.sections, sec)
	return sec
}

func sectionName(s string) (string, error) {
	end := strings.IndexByte(s, ']')
	if end < 0 {
		return "", errs.New(errs.ErrCodeInvalidFormat, "unterminated section header %q", s)
	}
	name := strings.TrimSpace(s[1:end])
	if name == "" {
		return "", errs.New(errs.ErrCodeInvalidFormat, "empty section name")
	}
	return name, nil
}

// stripComment removes a ";" comment outside of double quotes.
func stripComment(s string) (string, error) {
	inQuote := false
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '"':
			inQuote = !inQuote
		case ';':
			if !inQuote {
				return s[:i], nil
			}
		}
	}
	if inQuote {
		return "", errs.New(errs.ErrCodeInvalidFormat, "unterminated quoted string")
	}
	return s, nil
}

// parseLine splits a logical line into its key and value fields.
func parseLine(s string) Line {
	var line Line
	rest := s
	if eq := indexUnquoted(s, '='); eq >= 0 {
		line.Key = unquote(strings.TrimSpace(s[:eq]))
		rest = s[eq+1:]
	}
	if strings.TrimSpace(rest) == "" {
		return line
	}
	for _, raw := range splitUnquoted(rest, ',') {
		line.Values = append(line.Values, unquote(strings.TrimSpace(raw)))
	}
	return line
}

func indexUnquoted(s string, sep byte) int {
	inQuote := false
	for i := 0; i < len(s); i++ {
		switch {
		case s[i] == '"':
			inQuote = !inQuote
		case s[i] == sep && !inQuote:
			return i
		}
	}
	return -1
}

func splitUnquoted(s string, sep byte) []string {
	var parts []string
	for {
		i := indexUnquoted(s, sep)
		if i < 0 {
			return append(parts, s)
		}
		parts = append(parts, s[:i])
		s = s[i+1:]
	}
}

// unquote drops double quotes; "" inside a quoted run is a literal quote.
func unquote(s string) string {
	if strings.IndexByte(s, '"') < 0 {
		return s
	}
	var b strings.Builder
	inQuote := false
	for i := 0; i < len(s); i++ {
		if s[i] != '"' {
			b.WriteByte(s[i])
			continue
		}
		if inQuote && i+1 < len(s) && s[i+1] == '"' {
			b.WriteByte('"')
			i++
			continue
		}
		inQuote = !inQuote
	}
	return b.String()
}

// substituteStrings expands %token% references from the [Strings] section
// in every other section.
func (d *Descriptor) substituteStrings() {
	table, ok := d.Section(stringsSection)
	if !ok {
		return
	}
	values := make(map[string]string, len(table.Lines))
	for _, l := range table.Lines {
		if l.Key == "" || len(l.Values) == 0 {
			continue
		}
		values[strings.ToLower(l.Key)] = l.Values[0]
	}

	for _, sec := range d.sections {
		if sec == table {
			continue
		}
		for i := range sec.Lines {
			l := &sec.Lines[i]
			l.Key = expand(l.Key, values)
			for j, v := range l.Values {
				l.Values[j] = expand(v, values)
			}
		}
	}
}

func expand(s string, values map[string]string) string {
	if strings.IndexByte(s, '%') < 0 {
		return s
	}
	var b strings.Builder
	for {
		open := strings.IndexByte(s, '%')
		if open < 0 {
			break
		}
		closing := strings.IndexByte(s[open+1:], '%')
		if closing < 0 {
			break
		}
		closing += open + 1
		b.WriteString(s[:open])
		token := s[open+1 : closing]
		switch v, ok := values[strings.ToLower(token)]; {
		case token == "":
			b.WriteByte('%')
		case ok:
			b.WriteString(v)
		default:
			b.WriteString(s[open : closing+1])
		}
		s = s[closing+1:]
	}
	b.WriteString(s)
	return b.String()
}
