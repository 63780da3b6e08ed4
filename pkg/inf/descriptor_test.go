package inf

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	errs "github.com/matzehuels/infcat/pkg/errors"
	"github.com/matzehuels/infcat/pkg/textenc"
)

const sampleINF = `[Version]
Signature = "$Windows NT$"

[Manufacturer]
VendorX = ModelsX

[ModelsX]
Desc = Install1, *HW001

[Install1]
CopyFiles = @driver.sys
AddReg = Install1.Reg
CopyFiles = Install1.Files

[Install1.Files]
driver.cat
`

func TestOpen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sample.inf")
	if err := os.WriteFile(path, []byte(sampleINF), 0644); err != nil {
		t.Fatal(err)
	}

	d, err := Open(path, Options{RequireSignature: true})
	if err != nil {
		t.Fatalf("Open() error: %v", err)
	}
	defer d.Close()

	if d.Name() != path {
		t.Errorf("Name() = %q, want %q", d.Name(), path)
	}
	if d.Encoding() != textenc.UTF8 {
		t.Errorf("Encoding() = %q, want %q", d.Encoding(), textenc.UTF8)
	}
}

func TestOpenMissingFile(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "missing.inf"), Options{})
	if !errs.Is(err, errs.ErrCodeInvalidFormat) {
		t.Fatalf("Open() error = %v, want %v", err, errs.ErrCodeInvalidFormat)
	}
}

func TestFirstLineKeyFilter(t *testing.T) {
	d := mustParse(t, sampleINF)

	c, err := d.FirstLine("install1", "copyfiles")
	if err != nil {
		t.Fatalf("FirstLine() error: %v", err)
	}

	var got []string
	for {
		v, err := c.Field(1)
		if err != nil {
			t.Fatalf("Field(1) error: %v", err)
		}
		got = append(got, v)
		if !c.Next() {
			break
		}
	}

	want := []string{"@driver.sys", "Install1.Files"}
	if len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
		t.Errorf("CopyFiles values = %q, want %q", got, want)
	}
}

func TestFirstLineNotFound(t *testing.T) {
	d := mustParse(t, sampleINF+"\n[Empty]\n")

	tests := []struct {
		name    string
		section string
		key     string
	}{
		{"missing section", "Nope", ""},
		{"empty section", "Empty", ""},
		{"no matching key", "Install1", "DelFiles"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := d.FirstLine(tt.section, tt.key)
			if !errs.Is(err, errs.ErrCodeNotFound) {
				t.Errorf("FirstLine(%q, %q) error = %v, want %v", tt.section, tt.key, err, errs.ErrCodeNotFound)
			}
		})
	}
}

func TestFieldBounds(t *testing.T) {
	d := mustParse(t, sampleINF)

	c, err := d.FirstLine("ModelsX", "")
	if err != nil {
		t.Fatalf("FirstLine() error: %v", err)
	}
	if got := c.FieldCount(); got != 2 {
		t.Fatalf("FieldCount() = %d, want 2", got)
	}

	tests := []struct {
		index   int
		want    string
		wantErr bool
	}{
		{0, "Desc", false},
		{1, "Install1", false},
		{2, "*HW001", false},
		{3, "", true},
		{-1, "", true},
	}
	for _, tt := range tests {
		got, err := c.Field(tt.index)
		if (err != nil) != tt.wantErr {
			t.Errorf("Field(%d) error = %v, wantErr %v", tt.index, err, tt.wantErr)
			continue
		}
		if err != nil && !errs.Is(err, errs.ErrCodeOutOfRange) {
			t.Errorf("Field(%d) code = %v, want %v", tt.index, errs.GetCode(err), errs.ErrCodeOutOfRange)
		}
		if got != tt.want {
			t.Errorf("Field(%d) = %q, want %q", tt.index, got, tt.want)
		}
	}
}

func TestKeylessFieldZero(t *testing.T) {
	d := mustParse(t, sampleINF)

	c, err := d.FirstLine("Install1.Files", "")
	if err != nil {
		t.Fatalf("FirstLine() error: %v", err)
	}
	if v, err := c.Field(0); err != nil || v != "" {
		t.Errorf("Field(0) = %q, %v; want empty label", v, err)
	}
	if v, _ := c.Field(1); v != "driver.cat" {
		t.Errorf("Field(1) = %q, want driver.cat", v)
	}
}

func TestEnumSection(t *testing.T) {
	d := mustParse(t, sampleINF)

	want := []string{"Version", "Manufacturer", "ModelsX", "Install1", "Install1.Files"}
	for i, name := range want {
		got, err := d.EnumSection(i)
		if err != nil {
			t.Fatalf("EnumSection(%d) error: %v", i, err)
		}
		if got != name {
			t.Errorf("EnumSection(%d) = %q, want %q", i, got, name)
		}
	}

	if _, err := d.EnumSection(len(want)); !errors.Is(err, ErrNoMoreItems) {
		t.Errorf("EnumSection(past end) error = %v, want ErrNoMoreItems", err)
	}
}

func TestSections(t *testing.T) {
	d := mustParse(t, sampleINF)

	var got []string
	for name, err := range d.Sections() {
		if err != nil {
			t.Fatalf("Sections() error: %v", err)
		}
		got = append(got, name)
	}
	if len(got) != 5 {
		t.Errorf("Sections() yielded %d names, want 5: %q", len(got), got)
	}
}

type flakyEnumerator struct {
	names []string
	fail  map[int]bool
}

func (f *flakyEnumerator) EnumSection(i int) (string, error) {
	if f.fail[i] {
		return "", errors.New("transient")
	}
	if i >= len(f.names) {
		return "", ErrNoMoreItems
	}
	return f.names[i], nil
}

func TestEnumerateContinuesPastErrors(t *testing.T) {
	e := &flakyEnumerator{names: []string{"a", "b", "c"}, fail: map[int]bool{1: true}}

	var names []string
	var failures int
	for name, err := range Enumerate(e) {
		if err != nil {
			failures++
			continue
		}
		names = append(names, name)
	}

	if failures != 1 {
		t.Errorf("failures = %d, want 1", failures)
	}
	if len(names) != 2 || names[0] != "a" || names[1] != "c" {
		t.Errorf("names = %q, want [a c]", names)
	}
}

func TestClose(t *testing.T) {
	d := mustParse(t, sampleINF)
	c, err := d.FirstLine("Install1", "CopyFiles")
	if err != nil {
		t.Fatalf("FirstLine() error: %v", err)
	}

	if err := d.Close(); err != nil {
		t.Fatalf("Close() error: %v", err)
	}
	if err := d.Close(); err != nil {
		t.Errorf("second Close() error: %v", err)
	}

	if _, err := d.FirstLine("Install1", ""); !errors.Is(err, ErrClosed) {
		t.Errorf("FirstLine after Close error = %v, want ErrClosed", err)
	}
	if _, err := d.EnumSection(0); !errors.Is(err, ErrClosed) {
		t.Errorf("EnumSection after Close error = %v, want ErrClosed", err)
	}
	if _, err := c.Field(1); !errors.Is(err, ErrClosed) {
		t.Errorf("Field after Close error = %v, want ErrClosed", err)
	}
	if c.Next() {
		t.Error("Next after Close = true, want false")
	}

	var n int
	for range d.Sections() {
		n++
	}
	if n != 1 {
		t.Errorf("Sections after Close yielded %d items, want the single ErrClosed", n)
	}
}
