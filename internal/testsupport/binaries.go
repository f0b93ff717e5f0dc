package testsupport

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

// StubBinary writes an executable shell script named name into a temp bin
// directory and returns its absolute path. body is appended after the
// shebang line.
func StubBinary(t testing.TB, name, body string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("stub binaries require a POSIX shell")
	}

	return writeStub(t, newBinDir(t), name, body)
}

// StubOnPath writes stub binaries that exit 0 and prepends their directory
// to PATH for the duration of the test.
func StubOnPath(t testing.TB, names ...string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("stub binaries require a POSIX shell")
	}
	binDir := newBinDir(t)
	for _, name := range names {
		writeStub(t, binDir, name, "exit 0")
	}
	PrependPath(t, binDir)
	return binDir
}

// PrependPath puts dir in front of PATH until the test finishes.
func PrependPath(t testing.TB, dir string) {
	t.Helper()
	t.Setenv("PATH", dir+string(os.PathListSeparator)+os.Getenv("PATH"))
}

// Fixture returns the absolute path of a file under the caller's testdata directory.
func Fixture(t testing.TB, name string) string {
	t.Helper()
	path, err := filepath.Abs(filepath.Join("testdata", name))
	if err != nil {
		t.Fatalf("resolve fixture %s: %v", name, err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("fixture %s: %v", name, err)
	}
	return path
}

func newBinDir(t testing.TB) string {
	t.Helper()
	binDir := filepath.Join(t.TempDir(), "bin")
	if err := os.MkdirAll(binDir, 0o755); err != nil {
		t.Fatalf("mkdir bin dir: %v", err)
	}
	return binDir
}

func writeStub(t testing.TB, dir, name, body string) string {
	t.Helper()
	target := filepath.Join(dir, name)
	script := "#!/bin/sh\n" + body + "\n"
	if err := os.WriteFile(target, []byte(script), 0o755); err != nil {
		t.Fatalf("write stub %s: %v", name, err)
	}
	return target
}
