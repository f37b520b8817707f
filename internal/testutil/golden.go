package testutil

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"testing"
)

// UpdateEnv names the environment variable that rewrites golden files
// instead of comparing against them.
const UpdateEnv = "TASKFLOW_UPDATE_GOLDEN"

// Golden compares got against testdata/<name>.golden.
// CRLF line endings in the golden file are ignored.
func Golden(t *testing.T, name string, got []byte) {
	t.Helper()

	path := filepath.Join("testdata", name+".golden")

	if os.Getenv(UpdateEnv) != "" {
		if err := os.MkdirAll("testdata", 0755); err != nil {
			t.Fatalf("create testdata: %v", err)
		}
		if err := os.WriteFile(path, got, 0644); err != nil {
			t.Fatalf("update %s: %v", path, err)
		}
		return
	}

	want, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v (set %s=1 to create it)\ngot:\n%s", path, err, UpdateEnv, got)
	}
	want = bytes.ReplaceAll(want, []byte("\r\n"), []byte("\n"))

	if !bytes.Equal(got, want) {
		t.Errorf("%s mismatch at %s\nwant:\n%s\ngot:\n%s", name, firstDiff(want, got), want, got)
	}
}

// GoldenString is like Golden but takes a string.
func GoldenString(t *testing.T, name string, got string) {
	t.Helper()
	Golden(t, name, []byte(got))
}

// firstDiff reports the first line where a and b disagree.
func firstDiff(a, b []byte) string {
	al := bytes.Split(a, []byte("\n"))
	bl := bytes.Split(b, []byte("\n"))
	for i := 0; i < len(al) && i < len(bl); i++ {
		if !bytes.Equal(al[i], bl[i]) {
			return fmt.Sprintf("line %d: %q != %q", i+1, al[i], bl[i])
		}
	}
	return fmt.Sprintf("line %d (length differs)", min(len(al), len(bl))+1)
}
