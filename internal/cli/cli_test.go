package cli

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"

	"github.com/matzehuels/infcat/pkg/catalog"
	errs "github.com/matzehuels/infcat/pkg/errors"
)

const testINF = `[Version]
Signature = "$Windows NT$"

[Manufacturer]
%Mfg% = Devices, NTamd64

[Devices.NTamd64]
%Dev% = USB_Install, USB\VID_1234&PID_5678

[USB_Install]
CopyFiles = USB_Files

[USB_Files]
usbdrv.sys

[Strings]
Mfg = "Acme"
Dev = "Acme USB Device"
`

// testEnv isolates config and cache directories and writes a driver
// directory containing the test INF and its payload.
func testEnv(t *testing.T) string {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("XDG_CACHE_HOME", t.TempDir())

	dir := t.TempDir()
	for name, body := range map[string]string{
		"usb.inf":    testINF,
		"usbdrv.sys": "sys",
		"README.txt": "readme",
	} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	c := New(io.Discard, LogInfo)
	root := c.RootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(io.Discard)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestBuildCDFOnly(t *testing.T) {
	dir := testEnv(t)
	out := filepath.Join(dir, "usb.cat")

	_, err := run(t, "-d", dir, "-i", "usb.inf", "-o", out, "--cdf-only", filepath.Join("docs", "README.txt"))
	if err != nil {
		t.Fatalf("build error: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "usb.cdf"))
	if err != nil {
		t.Fatal(err)
	}
	cdf := string(data)
	for _, want := range []string{
		"<hash>usb.inf=",
		"<hash>usbdrv.sys=",
		"<hash>README.txt=",
		"HWID1:usb\\vid_1234&pid_5678",
		"OS:" + catalog.DefaultOS,
	} {
		if !strings.Contains(cdf, want) {
			t.Errorf("CDF missing %q:\n%s", want, cdf)
		}
	}
}

func TestHelpFlag(t *testing.T) {
	for _, args := range [][]string{
		{"--help"},
		{"resolve", "--help"},
		{"cache", "path", "--help"},
	} {
		out, err := run(t, args...)
		if err != nil {
			t.Fatalf("%v: %v", args, err)
		}
		if !strings.Contains(out, "-h, --hwid") {
			t.Errorf("%v: help does not list -h as --hwid:\n%s", args, out)
		}
		if strings.Contains(out, "-h, --help") {
			t.Errorf("%v: -h bound to help:\n%s", args, out)
		}
	}
}

func TestBuildHardwareIDFlag(t *testing.T) {
	dir := testEnv(t)
	out := filepath.Join(dir, "usb.cat")

	if _, err := run(t, "-d", dir, "-i", "usb.inf", "-o", out, "--cdf-only", "-h", `PCI\VEN_8086`, "-O", "10X64"); err != nil {
		t.Fatal(err)
	}
	data, _ := os.ReadFile(filepath.Join(dir, "usb.cdf"))
	if !strings.Contains(string(data), `HWID1:pci\ven_8086`) {
		t.Errorf("hwid flag not used:\n%s", data)
	}
	if !strings.Contains(string(data), "OS:10X64") {
		t.Errorf("OS flag not used:\n%s", data)
	}
}

func TestBuildRequiresOutAndDrvPath(t *testing.T) {
	testEnv(t)
	if _, err := run(t, "-i", "usb.inf"); err == nil {
		t.Fatal("expected error without --out and --drv-path")
	}
}

func TestBuildMissingFile(t *testing.T) {
	dir := testEnv(t)
	_, err := run(t, "-d", dir, "-i", "usb.inf", "-o", filepath.Join(dir, "x.cat"), "--cdf-only", "missing.dll")
	if err == nil || !strings.Contains(err.Error(), "missing.dll") {
		t.Fatalf("err = %v, want missing file reported", err)
	}
}

func TestResolveText(t *testing.T) {
	dir := testEnv(t)

	out, err := run(t, "resolve", "-d", dir, "-i", "usb.inf", "extra/notes.txt")
	if err != nil {
		t.Fatal(err)
	}
	want := "USB\\VID_1234&PID_5678\nusb.inf\nusbdrv.sys\nnotes.txt\n"
	if out != want {
		t.Errorf("output = %q, want %q", out, want)
	}
}

func TestResolveJSON(t *testing.T) {
	dir := testEnv(t)

	out, err := run(t, "resolve", "-d", dir, "-i", "usb.inf", "--format", "json", "--no-cache")
	if err != nil {
		t.Fatal(err)
	}
	var m catalog.Manifest
	if err := json.Unmarshal([]byte(out), &m); err != nil {
		t.Fatalf("invalid JSON %q: %v", out, err)
	}
	if m.HardwareID != `USB\VID_1234&PID_5678` || len(m.Files) != 2 {
		t.Errorf("manifest = %+v", m)
	}
	if m.OS != catalog.DefaultOS {
		t.Errorf("OS = %q", m.OS)
	}
}

func TestResolveBadFormat(t *testing.T) {
	dir := testEnv(t)
	if _, err := run(t, "resolve", "-d", dir, "-i", "usb.inf", "--format", "xml"); err == nil {
		t.Fatal("expected error for unknown format")
	}
}

func TestResolveRequiresInf(t *testing.T) {
	testEnv(t)
	if _, err := run(t, "resolve"); err == nil {
		t.Fatal("expected error without --inf-file")
	}
}

func TestResolveConfigFile(t *testing.T) {
	dir := testEnv(t)
	cfg := filepath.Join(t.TempDir(), "infcat.toml")
	if err := os.WriteFile(cfg, []byte("max_files = 1\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := run(t, "resolve", "--config", cfg, "-d", dir, "-i", "usb.inf"); err == nil {
		t.Fatal("max_files from config not applied")
	}
	if _, err := run(t, "resolve", "--config", cfg, "--max-files", "5", "-d", dir, "-i", "usb.inf"); err != nil {
		t.Fatalf("flag should override config: %v", err)
	}
}

func TestResolveMaxFilesCountsExtras(t *testing.T) {
	dir := testEnv(t)

	if _, err := run(t, "resolve", "--max-files", "2", "-d", dir, "-i", "usb.inf"); err != nil {
		t.Fatalf("descriptor alone fits: %v", err)
	}
	_, err := run(t, "resolve", "--max-files", "2", "-d", dir, "-i", "usb.inf", "README.txt")
	if !errs.Is(err, errs.ErrCodeCapacity) {
		t.Fatalf("error = %v, want CAPACITY_EXCEEDED", err)
	}
}

func TestResolveRequiresSignatureByDefault(t *testing.T) {
	dir := testEnv(t)
	unsigned := strings.Replace(testINF, "[Version]\nSignature = \"$Windows NT$\"\n", "", 1)
	if err := os.WriteFile(filepath.Join(dir, "plain.inf"), []byte(unsigned), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := run(t, "resolve", "-d", dir, "-i", "plain.inf"); err == nil {
		t.Fatal("INF without a [Version] signature accepted")
	}
	out, err := run(t, "resolve", "--require-signature=false", "-d", dir, "-i", "plain.inf")
	if err != nil {
		t.Fatalf("--require-signature=false: %v", err)
	}
	if !strings.Contains(out, "usbdrv.sys") {
		t.Errorf("output missing usbdrv.sys:\n%s", out)
	}
}

func TestExplainDOT(t *testing.T) {
	dir := testEnv(t)

	out, err := run(t, "explain", "-d", dir, "-i", "usb.inf")
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"digraph trace", "Devices.NTamd64", "usbdrv.sys"} {
		if !strings.Contains(out, want) {
			t.Errorf("DOT missing %q:\n%s", want, out)
		}
	}
}

func TestCachePath(t *testing.T) {
	testEnv(t)
	out, err := run(t, "cache", "path")
	if err != nil {
		t.Fatal(err)
	}
	want, _ := cacheDir()
	if strings.TrimSpace(out) != want {
		t.Errorf("cache path = %q, want %q", out, want)
	}
}

func TestCacheClear(t *testing.T) {
	dir := testEnv(t)
	if _, err := run(t, "resolve", "-d", dir, "-i", "usb.inf"); err != nil {
		t.Fatal(err)
	}
	cd, _ := cacheDir()
	shards, _ := os.ReadDir(cd)
	if len(shards) == 0 {
		t.Fatal("resolve did not populate the cache")
	}

	if _, err := run(t, "cache", "clear"); err != nil {
		t.Fatal(err)
	}
	shards, _ = os.ReadDir(cd)
	if len(shards) != 0 {
		t.Errorf("%d shards left after clear", len(shards))
	}
}

func TestResolveYAML(t *testing.T) {
	dir := testEnv(t)

	out, err := run(t, "resolve", "-d", dir, "-i", "usb.inf", "--format", "yaml")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "- usb.inf\n") || !strings.Contains(out, "- usbdrv.sys\n") {
		t.Errorf("unexpected YAML:\n%s", out)
	}
}

func TestCompletion(t *testing.T) {
	testEnv(t)
	out, err := run(t, "completion", "bash")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "infcat") {
		t.Errorf("bash completion does not mention infcat:\n%.200s", out)
	}

	out, err = run(t, cobra.ShellCompRequestCmd, "resolve", "--format", "")
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"text", "json", "yaml"} {
		if !strings.Contains(out, want) {
			t.Errorf("format completions missing %q:\n%s", want, out)
		}
	}
}
