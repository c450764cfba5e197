// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package fileutil

import (
	"bytes"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/jongio/fileex/logutil"
	"github.com/jongio/fileex/testutil"
)

func TestExists(t *testing.T) {
	tmpDir := t.TempDir()
	file := testutil.WriteFile(t, tmpDir, "test.txt", []byte("test"))

	tests := []struct {
		name string
		path string
		want bool
	}{
		{"existing file", file, true},
		{"existing directory", tmpDir, true},
		{"non-existing file", filepath.Join(tmpDir, "missing.txt"), false},
		{"missing parent", filepath.Join(tmpDir, "missing", "x.txt"), false},
		{"file used as directory", filepath.Join(file, "x"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Exists(tt.path); got != tt.want {
				t.Errorf("Exists() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestExists_DanglingSymlink(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("Symlinks require elevated privileges on Windows")
	}

	tmpDir := t.TempDir()
	link := filepath.Join(tmpDir, "dangling")
	if err := os.Symlink(filepath.Join(tmpDir, "nowhere"), link); err != nil {
		t.Fatalf("Failed to create symlink: %v", err)
	}

	if !Exists(link) {
		t.Error("Exists() = false for dangling symlink, want true")
	}
	if IsRegularFile(link) || IsDirectory(link) {
		t.Error("dangling symlink should be neither a regular file nor a directory")
	}
}

func TestEntryType(t *testing.T) {
	tmpDir := t.TempDir()
	file := testutil.WriteFile(t, tmpDir, "test.txt", nil)

	tests := []struct {
		name        string
		path        string
		wantDir     bool
		wantRegular bool
	}{
		{"file", file, false, true},
		{"directory", tmpDir, true, false},
		{"missing", filepath.Join(tmpDir, "missing"), false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsDirectory(tt.path); got != tt.wantDir {
				t.Errorf("IsDirectory() = %v, want %v", got, tt.wantDir)
			}
			if got := IsRegularFile(tt.path); got != tt.wantRegular {
				t.Errorf("IsRegularFile() = %v, want %v", got, tt.wantRegular)
			}
		})
	}
}

func TestFileSize(t *testing.T) {
	tmpDir := t.TempDir()

	tests := []struct {
		name     string
		path     string
		want     uint64
		wantKind ErrorKind
		wantErr  bool
	}{
		{"empty file", testutil.WriteFile(t, tmpDir, "empty", nil), 0, 0, false},
		{"small file", testutil.WriteFile(t, tmpDir, "small", []byte("hello")), 5, 0, false},
		{"missing", filepath.Join(tmpDir, "missing"), 0, KindNotFound, true},
		{"directory", tmpDir, 0, KindIO, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := FileSize(tt.path)
			if (err != nil) != tt.wantErr {
				t.Fatalf("FileSize() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				if KindOf(err) != tt.wantKind {
					t.Errorf("FileSize() kind = %v, want %v", KindOf(err), tt.wantKind)
				}
				return
			}
			if got != tt.want {
				t.Errorf("FileSize() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestNonexistentPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nope.txt")

	if Exists(path) {
		t.Error("Exists() = true for missing path")
	}
	if _, err := ReadTextFile(path); !errors.Is(err, ErrNotFound) {
		t.Errorf("ReadTextFile() error = %v, want ErrNotFound", err)
	}
	if _, err := ReadBinaryFile(path); !errors.Is(err, ErrNotFound) {
		t.Errorf("ReadBinaryFile() error = %v, want ErrNotFound", err)
	}
	if _, err := FileSize(path); !errors.Is(err, ErrNotFound) {
		t.Errorf("FileSize() error = %v, want ErrNotFound", err)
	}
}

func TestEmptyPathPanics(t *testing.T) {
	tests := []struct {
		name string
		fn   func()
	}{
		{"Exists", func() { Exists("") }},
		{"IsDirectory", func() { IsDirectory("") }},
		{"IsRegularFile", func() { IsRegularFile("") }},
		{"IsReadable", func() { IsReadable("") }},
		{"IsWritable", func() { IsWritable("") }},
		{"FileSize", func() { _, _ = FileSize("") }},
		{"ReadTextFile", func() { _, _ = ReadTextFile("") }},
		{"ReadBinaryFile", func() { _, _ = ReadBinaryFile("") }},
		{"WriteFile", func() { _ = WriteFile("", nil, Truncate) }},
		{"StringExistsInFile", func() { _, _ = StringExistsInFile("", "x", true) }},
		{"EnsureDir", func() { _ = EnsureDir("") }},
		{"AtomicWriteFile", func() { _ = AtomicWriteFile("", nil, FilePermission) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			defer func() {
				if r := recover(); r == nil {
					t.Errorf("%s(\"\") did not panic", tt.name)
				}
			}()
			tt.fn()
		})
	}
}

func TestEnsureDir(t *testing.T) {
	tmpDir := t.TempDir()

	tests := []struct {
		name    string
		path    string
		wantErr bool
	}{
		{"create new directory", filepath.Join(tmpDir, "newdir"), false},
		{"create nested directories", filepath.Join(tmpDir, "nested", "deep", "path"), false},
		{"existing directory", tmpDir, false},
		{"existing file", testutil.WriteFile(t, tmpDir, "file", nil), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := EnsureDir(tt.path)
			if (err != nil) != tt.wantErr {
				t.Fatalf("EnsureDir() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && !IsDirectory(tt.path) {
				t.Errorf("Directory doesn't exist after EnsureDir(): %s", tt.path)
			}
		})
	}
}

func TestNoDescriptorLeak(t *testing.T) {
	tmpDir := t.TempDir()
	file := testutil.WriteFile(t, tmpDir, "data.txt", []byte("hello"))
	big := testutil.WriteFile(t, tmpDir, "big.txt", make([]byte, 64))
	bad := testutil.WriteFile(t, tmpDir, "bad.txt", []byte{0xff})
	missing := filepath.Join(tmpDir, "missing", "x.txt")

	before := testutil.OpenFDs(t)
	for i := 0; i < 50; i++ {
		_, _ = ReadTextFile(file)
		_, _ = ReadTextFile(missing)
		_, _ = ReadTextFile(bad)
		_, _ = ReadBinaryFile(big, WithReadLimit(8))
		_, _ = ReadBinaryFile(tmpDir)
		_ = WriteTextFile(file, "hello", Truncate)
		_ = WriteTextFile(missing, "x", Append)
		_ = WriteTextFile(tmpDir, "x", Truncate)
		_, _ = CountStringInFile(file, "l", true)
		_, _ = FileSize(file)
	}
	after := testutil.OpenFDs(t)

	if after != before {
		t.Errorf("open descriptors changed from %d to %d", before, after)
	}
}

func TestMetricsRecorded(t *testing.T) {
	tmpDir := t.TempDir()
	missing := filepath.Join(tmpDir, "missing")

	okBefore := operationCount(t, opWrite, "ok")
	notFoundBefore := operationCount(t, opReadText, "NotFound")

	if err := WriteTextFile(filepath.Join(tmpDir, "a.txt"), "x", Truncate); err != nil {
		t.Fatal(err)
	}
	_, _ = ReadTextFile(missing)

	if got := operationCount(t, opWrite, "ok"); got != okBefore+1 {
		t.Errorf("write ok count = %v, want %v", got, okBefore+1)
	}
	if got := operationCount(t, opReadText, "NotFound"); got != notFoundBefore+1 {
		t.Errorf("read_text NotFound count = %v, want %v", got, notFoundBefore+1)
	}
}

// operationCount reads fileex_operations_total{op, result} from the default registry.
func operationCount(t *testing.T, op, result string) float64 {
	t.Helper()
	families, err := prometheus.DefaultGatherer.Gather()
	if err != nil {
		t.Fatalf("Failed to gather metrics: %v", err)
	}
	for _, mf := range families {
		if mf.GetName() != "fileex_operations_total" {
			continue
		}
		for _, m := range mf.GetMetric() {
			labels := map[string]string{}
			for _, lp := range m.GetLabel() {
				labels[lp.GetName()] = lp.GetValue()
			}
			if labels["op"] == op && labels["result"] == result {
				return m.GetCounter().GetValue()
			}
		}
	}
	return 0
}

func TestFailureLogged(t *testing.T) {
	var buf bytes.Buffer
	logutil.SetupLogger(&buf, logutil.FormatText)
	logutil.SetLevel(slog.LevelDebug)
	t.Cleanup(func() {
		logutil.SetupLogger(os.Stderr, logutil.FormatText)
		logutil.SetLevel(slog.LevelInfo)
	})

	path := filepath.Join(t.TempDir(), "missing.txt")
	if _, err := ReadTextFile(path); !errors.Is(err, ErrNotFound) {
		t.Fatalf("ReadTextFile() error = %v, want ErrNotFound", err)
	}

	out := buf.String()
	for _, want := range []string{"component=fileutil", "op=read_text", "missing.txt", "kind=NotFound"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in log output, got: %s", want, out)
		}
	}
}

func TestConstants(t *testing.T) {
	if DirPermission != 0750 {
		t.Errorf("DirPermission = %o, want 0750", DirPermission)
	}
	if FilePermission != 0644 {
		t.Errorf("FilePermission = %o, want 0644", FilePermission)
	}
	if DefaultReadLimit != 32<<20 {
		t.Errorf("DefaultReadLimit = %d, want %d", DefaultReadLimit, 32<<20)
	}
}
