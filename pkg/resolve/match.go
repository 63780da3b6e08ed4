package resolve

import "strings"

// MatchInstallSection reports whether name is the install section base or a
// decorated variant of it: base itself, or base followed by "." and any
// suffix. A name that merely shares a character prefix ("Foo2" for "Foo")
// does not match. Comparison is case-insensitive.
func MatchInstallSection(base, name string) bool {
	if len(name) < len(base) || !strings.EqualFold(name[:len(base)], base) {
		return false
	}
	return len(name) == len(base) || name[len(base)] == '.'
}

// modelSections returns the models section names a Manufacturer line
// designates: base alone when the line has no OS tags, otherwise base.tag
// for every tag and not base itself.
func modelSections(base string, tags []string) []string {
	if len(tags) == 0 {
		return []string{base}
	}
	names := make([]string, 0, len(tags))
	for _, tag := range tags {
		names = append(names, base+"."+tag)
	}
	return names
}

// StripHardwareID removes exactly one leading "*" from a device line's
// hardware id field.
func StripHardwareID(id string) string {
	return strings.TrimPrefix(id, "*")
}
