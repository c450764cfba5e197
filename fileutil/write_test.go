// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package fileutil

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"testing"

	"github.com/jongio/fileex/testutil"
)

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read %s: %v", path, err)
	}
	return string(data)
}

func TestWriteFile_Modes(t *testing.T) {
	type write struct {
		content string
		mode    WriteMode
	}

	tests := []struct {
		name   string
		writes []write
		want   string
	}{
		{
			name:   "truncate then append",
			writes: []write{{"abc", Truncate}, {"def", Append}},
			want:   "abcdef",
		},
		{
			name:   "truncate twice is idempotent",
			writes: []write{{"abc", Truncate}, {"abc", Truncate}},
			want:   "abc",
		},
		{
			name:   "append creates the file",
			writes: []write{{"x", Append}, {"y", Append}},
			want:   "xy",
		},
		{
			name:   "shorter truncate drops the tail",
			writes: []write{{"long content", Truncate}, {"ab", Truncate}},
			want:   "ab",
		},
		{
			name:   "empty truncate empties the file",
			writes: []write{{"abc", Truncate}, {"", Truncate}},
			want:   "",
		},
		{
			name:   "empty append changes nothing",
			writes: []write{{"abc", Truncate}, {"", Append}},
			want:   "abc",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "out.txt")
			for _, w := range tt.writes {
				if err := WriteTextFile(path, w.content, w.mode); err != nil {
					t.Fatalf("WriteTextFile(%q, %v) error = %v", w.content, w.mode, err)
				}
			}
			if got := readFile(t, path); got != tt.want {
				t.Errorf("content = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRoundTrip(t *testing.T) {
	tmpDir := t.TempDir()
	src := make([]byte, 4096)
	for i := range src {
		src[i] = byte(i * 7)
	}
	srcPath := testutil.WriteFile(t, tmpDir, "src.bin", src)
	dstPath := filepath.Join(tmpDir, "dst.bin")

	data, err := ReadBinaryFile(srcPath)
	if err != nil {
		t.Fatal(err)
	}
	if err := WriteFile(dstPath, data, Truncate); err != nil {
		t.Fatal(err)
	}
	got, err := ReadBinaryFile(dstPath)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got, src) {
		t.Error("round trip changed the content")
	}
}

func TestWriteFile_Errors(t *testing.T) {
	tmpDir := t.TempDir()
	file := testutil.WriteFile(t, tmpDir, "file.txt", nil)

	tests := []struct {
		name     string
		path     string
		wantKind ErrorKind
	}{
		{"missing parent not created", filepath.Join(tmpDir, "missing", "out.txt"), KindNotFound},
		{"parent is a file", filepath.Join(file, "out.txt"), KindNotFound},
		{"target is a directory", tmpDir, KindIO},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, mode := range []WriteMode{Truncate, Append} {
				err := WriteTextFile(tt.path, "x", mode)
				if KindOf(err) != tt.wantKind || err == nil {
					t.Errorf("WriteTextFile(%v) error = %v, want kind %v", mode, err, tt.wantKind)
				}
			}
			if Exists(filepath.Join(tmpDir, "missing")) {
				t.Error("WriteFile created a parent directory")
			}
		})
	}
}

func TestWriteFile_PermissionDenied(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("Mode bits do not restrict writes on Windows")
	}
	if os.Geteuid() == 0 {
		t.Skip("root bypasses file permissions")
	}

	path := testutil.WriteFile(t, t.TempDir(), "ro.txt", []byte("keep"))
	if err := os.Chmod(path, 0444); err != nil {
		t.Fatal(err)
	}

	if err := WriteTextFile(path, "x", Truncate); !errors.Is(err, ErrPermissionDenied) {
		t.Errorf("WriteTextFile() error = %v, want ErrPermissionDenied", err)
	}
	if got := readFile(t, path); got != "keep" {
		t.Errorf("read-only file changed to %q", got)
	}
	if IsWritable(path) {
		t.Error("IsWritable() = true for mode 0444")
	}
}

func TestWriteFile_Options(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("Permission bits are not preserved on Windows")
	}
	tmpDir := t.TempDir()

	path := filepath.Join(tmpDir, "private.txt")
	if err := WriteTextFile(path, "x", Truncate, WithPerm(0600), WithSync()); err != nil {
		t.Fatal(err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Errorf("mode = %o, want 0600", perm)
	}

	// Permissions apply only when the file is created.
	if err := WriteTextFile(path, "y", Append, WithPerm(0644)); err != nil {
		t.Fatal(err)
	}
	info, _ = os.Stat(path)
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Errorf("mode changed to %o on existing file", perm)
	}
}

func TestWriteFile_ConcurrentAppend(t *testing.T) {
	path := filepath.Join(t.TempDir(), "log.txt")
	const (
		writers = 8
		writes  = 50
	)
	payload := func(w int) string {
		return strings.Repeat(string(rune('a'+w)), 100) + "\n"
	}

	var wg sync.WaitGroup
	errs := make(chan error, writers*writes)
	for w := 0; w < writers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < writes; i++ {
				if err := WriteTextFile(path, payload(w), Append); err != nil {
					errs <- err
				}
			}
		}(w)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Errorf("WriteTextFile() error = %v", err)
	}

	content := readFile(t, path)
	if want := writers * writes * 101; len(content) != want {
		t.Fatalf("length = %d, want %d", len(content), want)
	}
	// Each append lands whole.
	for _, line := range strings.Split(strings.TrimSuffix(content, "\n"), "\n") {
		if len(line) != 100 || strings.Count(line, line[:1]) != 100 {
			t.Fatalf("interleaved line %q", line)
		}
	}
}

func TestWriteTo(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fd.txt")
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	if err := WriteTextTo(f, "abc"); err != nil {
		t.Fatalf("WriteTextTo() error = %v", err)
	}
	if err := WriteTo(f, []byte("def")); err != nil {
		t.Fatalf("WriteTo() error = %v", err)
	}
	if got := readFile(t, path); got != "abcdef" {
		t.Errorf("content = %q, want %q", got, "abcdef")
	}

	// Reading back through the same descriptor sees the writes.
	if got, err := ReadTextFrom(f); err != nil || got != "abcdef" {
		t.Errorf("ReadTextFrom() = %q, %v", got, err)
	}
}

func TestWriteTo_ReadOnlyDescriptor(t *testing.T) {
	path := testutil.WriteFile(t, t.TempDir(), "ro.txt", nil)
	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	if err := WriteTextTo(f, "x"); err == nil {
		t.Error("WriteTextTo() on a read-only descriptor succeeded")
	}
}

func TestParseWriteMode(t *testing.T) {
	tests := []struct {
		input   string
		want    WriteMode
		wantErr bool
	}{
		{"truncate", Truncate, false},
		{"", Truncate, false},
		{"APPEND", Append, false},
		{" append ", Append, false},
		{"prepend", Truncate, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseWriteMode(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseWriteMode(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseWriteMode(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}

	if s := WriteMode(7).String(); s != "WriteMode(7)" {
		t.Errorf("String() = %q", s)
	}
}

func TestWriteFile_InvalidModePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("WriteFile with an invalid mode did not panic")
		}
	}()
	_ = WriteFile(filepath.Join(t.TempDir(), "x"), nil, WriteMode(9))
}

func TestAtomicWriteFile(t *testing.T) {
	tmpDir := t.TempDir()
	overwrite := testutil.WriteFile(t, tmpDir, "overwrite.txt", []byte("old content"))

	tests := []struct {
		name     string
		path     string
		data     []byte
		perm     os.FileMode
		wantKind ErrorKind
		wantErr  bool
	}{
		{"simple write", filepath.Join(tmpDir, "simple.txt"), []byte("Hello, World!"), 0644, 0, false},
		{"binary data", filepath.Join(tmpDir, "binary.dat"), []byte{0x00, 0xFF, 0xAB, 0xCD}, 0600, 0, false},
		{"empty file", filepath.Join(tmpDir, "empty.txt"), []byte{}, 0644, 0, false},
		{"overwrite existing", overwrite, []byte("new"), 0644, 0, false},
		{"invalid directory", filepath.Join(tmpDir, "nonexistent", "file.txt"), []byte("data"), 0644, KindNotFound, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := AtomicWriteFile(tt.path, tt.data, tt.perm)
			if (err != nil) != tt.wantErr {
				t.Fatalf("AtomicWriteFile() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				if KindOf(err) != tt.wantKind {
					t.Errorf("AtomicWriteFile() kind = %v, want %v", KindOf(err), tt.wantKind)
				}
				return
			}
			if got := readFile(t, tt.path); got != string(tt.data) {
				t.Errorf("AtomicWriteFile() wrote %q, want %q", got, tt.data)
			}
			if runtime.GOOS != "windows" {
				info, _ := os.Stat(tt.path)
				if info.Mode().Perm() != tt.perm {
					t.Errorf("mode = %o, want %o", info.Mode().Perm(), tt.perm)
				}
			}
		})
	}

	// No temp files are left behind.
	matches, err := filepath.Glob(filepath.Join(tmpDir, "*.tmp.*"))
	if err != nil {
		t.Fatal(err)
	}
	if len(matches) != 0 {
		t.Errorf("temp files left behind: %v", matches)
	}
}

func TestAtomicWriteFile_Concurrency(t *testing.T) {
	// Windows doesn't allow renaming over a file another writer holds open.
	if runtime.GOOS == "windows" {
		t.Skip("Skipping concurrent atomic write test on Windows due to file locking behavior")
	}

	path := filepath.Join(t.TempDir(), "concurrent.txt")
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			if err := AtomicWriteFile(path, []byte("data-"+string(rune('0'+n))), 0644); err != nil {
				t.Errorf("AtomicWriteFile() error for goroutine %d: %v", n, err)
			}
		}(i)
	}
	wg.Wait()

	// Exactly one complete payload wins.
	got := readFile(t, path)
	if len(got) != 6 || !strings.HasPrefix(got, "data-") {
		t.Errorf("corrupted content %q", got)
	}
}
