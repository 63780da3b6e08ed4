package catalog

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestWriteCDF(t *testing.T) {
	req := Request{
		OutputPath: filepath.Join("out", "usb.cat"),
		HardwareID: "USB\\VID_1234&PID_5678",
		Files:      []string{"usb.inf", "amd64\\usb.sys", "USB.INF"},
		OS:         DefaultOS,
		OSAttr:     DefaultOSAttr,
	}
	paths := []string{"/d/usb.inf", "/d/amd64/usb.sys", "/d/usb.inf"}

	var buf bytes.Buffer
	if err := WriteCDF(&buf, req, paths); err != nil {
		t.Fatalf("WriteCDF() error: %v", err)
	}
	got := buf.String()

	for _, want := range []string{
		"[CatalogHeader]\r\n",
		"Name=usb.cat\r\n",
		"ResultDir=out\r\n",
		"CATATTR1=0x10010001:OS:7X64,8X64,10X64\r\n",
		"CATATTR2=0x10010001:OSAttr:2:6.1,2:6.2,2:6.4\r\n",
		"CATATTR3=0x10010001:HWID1:usb\\vid_1234&pid_5678\r\n",
		"[CatalogFiles]\r\n",
		"<hash>usb.inf=/d/usb.inf\r\n",
		"<hash>amd64_usb.sys=/d/amd64/usb.sys\r\n",
		"<hash>USB.INF_2=/d/usb.inf\r\n",
		"<hash>usb.infATTR1=0x10010001:OSAttr:2:6.1,2:6.2,2:6.4\r\n",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("CDF missing %q\n%s", want, got)
		}
	}
}

func TestWriteCDFNoHardwareID(t *testing.T) {
	var buf bytes.Buffer
	req := Request{OutputPath: "a.cat", Files: []string{"a.inf"}, OS: "10X64"}
	if err := WriteCDF(&buf, req, []string{"a.inf"}); err != nil {
		t.Fatal(err)
	}
	if strings.Contains(buf.String(), "HWID") || strings.Contains(buf.String(), "OSAttr") {
		t.Errorf("unexpected attributes:\n%s", buf.String())
	}
}

func TestWriteCDFLengthMismatch(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteCDF(&buf, Request{Files: []string{"a", "b"}}, []string{"a"}); err == nil {
		t.Fatal("expected error")
	}
}

func TestCDFPath(t *testing.T) {
	tests := map[string]string{
		"usb.cat":        "usb.cdf",
		"out/driver.cat": "out/driver.cdf",
		"noext":          "noext.cdf",
	}
	for in, want := range tests {
		if got := CDFPath(in); got != want {
			t.Errorf("CDFPath(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestCDFBuilderBuild(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "usb.inf", "usb.sys")
	out := filepath.Join(dir, "usb.cat")

	b := &CDFBuilder{}
	err := b.Build(context.Background(), Request{
		OutputPath: out,
		SearchDir:  dir,
		Files:      []string{"usb.inf", "usb.sys"},
		OS:         DefaultOS,
	})
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}
	data, err := os.ReadFile(filepath.Join(dir, "usb.cdf"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "<hash>usb.sys=") {
		t.Errorf("CDF:\n%s", data)
	}
}
